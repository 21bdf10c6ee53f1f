// Package fetch retrieves rendered page content. The scraper only ever
// sees the Fetcher interface; the chromedp implementation lives behind
// it so extraction stays testable without a browser.
package fetch

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Transport error classes. The retry orchestrator treats both as
// transient.
var (
	ErrTimeout = errors.New("fetch: timed out")
	ErrFetch   = errors.New("fetch: transport failure")
)

// IsTransport reports whether err is a transport-classified failure.
func IsTransport(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrFetch)
}

// Fetcher returns the rendered content of a page. Implementations must
// not return before client-side rendering has settled.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Limiter enforces the source's politeness contract: a minimum
// interval between requests, one request in flight at a time.
type Limiter struct {
	interval time.Duration

	mu   sync.Mutex
	last time.Time
}

// NewLimiter returns a limiter with the given minimum inter-request
// interval. A zero or negative interval disables waiting.
func NewLimiter(interval time.Duration) *Limiter {
	return &Limiter{interval: interval}
}

// Wait blocks until the next request is allowed or ctx is done. The
// lock is held for the duration of the wait so callers serialize.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if wait := l.interval - time.Since(l.last); wait > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	l.last = time.Now()
	return nil
}
