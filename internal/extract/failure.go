package extract

import (
	"fmt"

	"github.com/go-scripts/recipecrawl/internal/refs"
)

// FailureKind classifies why a reference could not be turned into a
// record.
type FailureKind string

const (
	// KindMissingName means the document had no primary title. A page
	// that rendered without its heading usually rendered without its
	// tooltip too, so this is retried before it becomes terminal.
	KindMissingName FailureKind = "missing_name"
	// KindMalformedDocument means the fetched content was not
	// parseable at all.
	KindMalformedDocument FailureKind = "malformed_document"
	// KindFetchTimeout and KindFetchError are transport failures
	// classified by the fetch layer.
	KindFetchTimeout FailureKind = "fetch_timeout"
	KindFetchError   FailureKind = "fetch_error"
)

// Failure is a typed extraction failure: the kind, the reference that
// produced it, and the underlying cause when there is one.
type Failure struct {
	Kind FailureKind
	Ref  refs.Reference
	Err  error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Ref.URL, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Ref.URL)
}

func (f *Failure) Unwrap() error {
	return f.Err
}
