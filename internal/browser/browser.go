// Package browser starts headless Chrome sessions shared by page rendering and PDF printing.
package browser

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
)

// DefaultTimeout bounds a whole browser session.
const DefaultTimeout = 60 * time.Second

// AllocatorOptions returns the exec allocator flags for a headless session.
func AllocatorOptions() []chromedp.ExecAllocatorOption {
	return append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("mute-audio", true),
	)
}

// New starts a headless browser tab bounded by timeout. A non-positive
// timeout uses DefaultTimeout. The returned cancel func shuts the browser down.
func New(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, AllocatorOptions()...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	timeoutCtx, cancelTimeout := context.WithTimeout(tabCtx, timeout)

	return timeoutCtx, func() {
		cancelTimeout()
		cancelTab()
		cancelAlloc()
	}
}
