package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/chromedp/chromedp"
)

// BrowserOptions configures the headless browser transport.
type BrowserOptions struct {
	// Timeout bounds one navigate-and-capture cycle.
	Timeout time.Duration
	// Settle is how long to wait after the body is ready, giving the
	// page's own scripts time to fill in the tooltip markup.
	Settle time.Duration
	// RateLimit is the minimum interval between requests.
	RateLimit time.Duration
	Headless  bool
}

// Browser fetches rendered pages through a shared headless Chrome
// instance. Each Fetch runs in its own tab context.
type Browser struct {
	opts    BrowserOptions
	ctx     context.Context
	cancel  context.CancelFunc
	limiter *Limiter
}

// NewBrowser starts the browser allocator shared by all fetches.
func NewBrowser(opts BrowserOptions) (*Browser, error) {
	copts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
	)
	if opts.Headless {
		copts = append(copts, chromedp.Headless)
	}

	allocCtx, _ := chromedp.NewExecAllocator(context.Background(), copts...)
	browserCtx, cancel := chromedp.NewContext(allocCtx)

	return &Browser{
		opts:    opts,
		ctx:     browserCtx,
		cancel:  cancel,
		limiter: NewLimiter(opts.RateLimit),
	}, nil
}

// Close releases the browser.
func (b *Browser) Close() {
	b.cancel()
}

// Fetch navigates to url in a fresh tab, waits for rendering to
// settle, and returns the page's outer HTML. Transport problems come
// back wrapped as ErrTimeout or ErrFetch.
func (b *Browser) Fetch(ctx context.Context, url string) (string, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetch, err)
	}

	tabCtx, cancel := chromedp.NewContext(b.ctx)
	defer cancel()
	timeoutCtx, timeoutCancel := context.WithTimeout(tabCtx, b.opts.Timeout)
	defer timeoutCancel()

	tasks := []chromedp.Action{
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
	}
	if b.opts.Settle > 0 {
		tasks = append(tasks, chromedp.Sleep(b.opts.Settle))
	}
	var pageHTML string
	tasks = append(tasks, chromedp.OuterHTML("html", &pageHTML))

	log.Debug("fetching page", "url", url)
	if err := chromedp.Run(timeoutCtx, tasks...); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %s: %v", ErrTimeout, url, err)
		}
		return "", fmt.Errorf("%w: %s: %v", ErrFetch, url, err)
	}
	return pageHTML, nil
}
