// Package report persists a batch outcome: one JSON file of records
// and one plain-text file of failed references. The failure file feeds
// straight back into the reference validator, so an interrupted run
// can be resumed from it.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/go-scripts/recipecrawl/internal/batch"
	"github.com/go-scripts/recipecrawl/internal/extract"
	"github.com/go-scripts/recipecrawl/internal/refs"
)

// Writer serializes reports under a single output directory.
type Writer struct {
	dir string
}

// NewWriter creates the output directory if needed.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	return &Writer{dir: dir}, nil
}

// Write persists both halves of the report.
func (w *Writer) Write(rep batch.Report, recordsName, failedName string) error {
	if err := w.WriteRecords(recordsName, rep.Records); err != nil {
		return err
	}
	if err := w.WriteFailed(failedName, rep.FailedRefs); err != nil {
		return err
	}
	log.Info("report written", "dir", w.dir,
		"records", len(rep.Records), "failed", len(rep.FailedRefs))
	return nil
}

// WriteRecords writes the ordered record sequence as indented JSON.
func (w *Writer) WriteRecords(name string, records []extract.Record) error {
	if records == nil {
		records = []extract.Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode records: %w", err)
	}
	return w.writeAtomic(name, append(data, '\n'))
}

// WriteFailed writes the failed references one raw locator per line.
func (w *Writer) WriteFailed(name string, failed []refs.Reference) error {
	var b strings.Builder
	for _, ref := range failed {
		b.WriteString(ref.URL)
		b.WriteByte('\n')
	}
	return w.writeAtomic(name, []byte(b.String()))
}

// writeAtomic stages the content in a temp file and renames it into
// place, so a crash mid-write never leaves a truncated report behind.
func (w *Writer) writeAtomic(name string, data []byte) error {
	tmp, err := os.CreateTemp(w.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("stage %s: %w", name, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("stage %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("stage %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(w.dir, name)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
