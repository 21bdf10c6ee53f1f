// Package batch drives the scrape over an ordered reference list: one
// reference at a time, bounded retries with linear backoff, outcomes
// accumulated into a report in input order.
package batch

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/log"

	"github.com/go-scripts/recipecrawl/internal/extract"
	"github.com/go-scripts/recipecrawl/internal/fetch"
	"github.com/go-scripts/recipecrawl/internal/refs"
)

// Options are the pass-through run parameters.
type Options struct {
	// MaxRetries is the total number of attempts per reference.
	MaxRetries int
	// Delay is the base backoff unit; attempt n waits Delay*n before
	// the next try.
	Delay time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxRetries <= 0 {
		o.MaxRetries = 3
	}
	if o.Delay <= 0 {
		o.Delay = 2 * time.Second
	}
	return o
}

// Report is the aggregate outcome of one run. Records and failed
// references keep input order so runs diff cleanly.
type Report struct {
	TotalReferences int              `json:"totalReferences"`
	SuccessCount    int              `json:"successCount"`
	FailureCount    int              `json:"failureCount"`
	Records         []extract.Record `json:"records"`
	FailedRefs      []refs.Reference `json:"failedReferences"`
}

// Runner processes references sequentially. The upstream transport
// allows one in-flight request with a minimum spacing, so there is
// nothing to gain from fanning out, and the report needs no
// synchronization beyond the snapshot lock.
type Runner struct {
	fetcher   fetch.Fetcher
	assembler *extract.Assembler
	opts      Options
	spin      *spinner.Spinner

	// sleep is a seam for tests; backoff blocks the whole batch by
	// design, matching the transport's rate contract.
	sleep func(time.Duration)

	mu     sync.Mutex
	report Report
}

// New returns a runner over the given fetcher and assembler.
func New(fetcher fetch.Fetcher, assembler *extract.Assembler, opts Options) *Runner {
	return &Runner{
		fetcher:   fetcher,
		assembler: assembler,
		opts:      opts.withDefaults(),
		sleep:     time.Sleep,
	}
}

// WithProgress attaches a terminal spinner showing the reference in
// flight.
func (r *Runner) WithProgress() *Runner {
	r.spin = spinner.New(spinner.CharSets[9], 100*time.Millisecond)
	return r
}

// Run processes every reference in input order and returns the final
// report. Cancellation is honored between references; the partial
// report is returned alongside the context error so the host can still
// flush it. Per-reference failures never abort the run.
func (r *Runner) Run(ctx context.Context, references []refs.Reference) (Report, error) {
	r.mu.Lock()
	r.report = Report{
		TotalReferences: len(references),
		Records:         []extract.Record{},
		FailedRefs:      []refs.Reference{},
	}
	r.mu.Unlock()

	log.Info("starting batch", "references", len(references),
		"max_retries", r.opts.MaxRetries, "delay", r.opts.Delay)

	for i, ref := range references {
		if err := ctx.Err(); err != nil {
			log.Warn("batch cancelled", "processed", i, "remaining", len(references)-i)
			return r.Snapshot(), err
		}

		r.startProgress(i, len(references), ref)
		record, failure := r.attempt(ctx, ref)
		r.stopProgress()

		r.mu.Lock()
		if failure != nil {
			r.report.FailureCount++
			r.report.FailedRefs = append(r.report.FailedRefs, ref)
			r.mu.Unlock()
			log.Error("reference failed", "url", ref.URL, "kind", failure.Kind, "err", failure.Err)
			continue
		}
		r.report.SuccessCount++
		r.report.Records = append(r.report.Records, record)
		r.mu.Unlock()
		log.Info("recipe extracted", "id", record.RecipeID, "name", record.Name,
			"materials", len(record.Materials))
	}

	return r.Snapshot(), nil
}

// Snapshot returns a copy of the report as it stands. Safe to call
// while a run is in flight, so a host can flush partial state on
// interruption.
func (r *Runner) Snapshot() Report {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := r.report
	snap.Records = append([]extract.Record(nil), r.report.Records...)
	snap.FailedRefs = append([]refs.Reference(nil), r.report.FailedRefs...)
	return snap
}

// attempt wraps a single-reference extraction with bounded retries.
// Transport failures and the two retryable assembly failures all back
// off linearly; success short-circuits. The last failure is returned
// verbatim once attempts are exhausted.
func (r *Runner) attempt(ctx context.Context, ref refs.Reference) (extract.Record, *extract.Failure) {
	var last *extract.Failure
	for n := 1; n <= r.opts.MaxRetries; n++ {
		if n > 1 {
			r.sleep(r.opts.Delay * time.Duration(n-1))
		}

		content, err := r.fetcher.Fetch(ctx, ref.URL)
		if err != nil {
			last = classifyTransport(err, ref)
			log.Warn("fetch failed", "url", ref.URL, "attempt", n, "err", err)
			continue
		}

		record, err := r.assembler.Assemble(content, ref)
		if err != nil {
			last = asFailure(err, ref)
			log.Warn("assembly failed", "url", ref.URL, "attempt", n, "kind", last.Kind)
			continue
		}
		return record, nil
	}
	return extract.Record{}, last
}

func classifyTransport(err error, ref refs.Reference) *extract.Failure {
	if !fetch.IsTransport(err) {
		// Fetcher implementations outside this module can return bare
		// errors; those still retry as plain fetch failures.
		return &extract.Failure{Kind: extract.KindFetchError, Ref: ref, Err: err}
	}
	kind := extract.KindFetchError
	if errors.Is(err, fetch.ErrTimeout) {
		kind = extract.KindFetchTimeout
	}
	return &extract.Failure{Kind: kind, Ref: ref, Err: err}
}

func asFailure(err error, ref refs.Reference) *extract.Failure {
	var failure *extract.Failure
	if errors.As(err, &failure) {
		return failure
	}
	return &extract.Failure{Kind: extract.KindMalformedDocument, Ref: ref, Err: err}
}

func (r *Runner) startProgress(i, total int, ref refs.Reference) {
	if r.spin == nil {
		return
	}
	r.spin.Suffix = fmt.Sprintf(" [%d/%d] %s", i+1, total, trimURL(ref.URL))
	r.spin.Start()
}

func (r *Runner) stopProgress() {
	if r.spin != nil {
		r.spin.Stop()
	}
}

// trimURL shortens a locator for the spinner line, keeping the host
// and the tail of the path.
func trimURL(raw string) string {
	const maxLen = 40
	if len(raw) <= maxLen {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "..." + raw[len(raw)-maxLen:]
	}
	host, p := u.Host, u.Path
	if len(p) > maxLen-len(host)-3 {
		p = "..." + p[len(p)-(maxLen-len(host)-3):]
	}
	return host + p
}
