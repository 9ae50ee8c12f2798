package fetch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"

	"github.com/jonathan/resume-builder/internal/browser"
	"github.com/jonathan/resume-builder/internal/logging"
)

// MinContentLength is the extracted text length below which a page is
// treated as a client-rendered app and re-rendered in a browser.
const MinContentLength = 500

// ShouldUseBrowser reports whether extracted text is too thin to use.
func ShouldUseBrowser(extractedText string) bool {
	return len(strings.TrimSpace(extractedText)) < MinContentLength
}

// BrowserOptions configures headless rendering.
type BrowserOptions struct {
	Timeout time.Duration
	// Settle is how long scripts get to render after the body is ready.
	Settle time.Duration
	Logger logrus.FieldLogger
}

// Render loads url in headless Chrome and returns the rendered HTML.
// Chrome or Chromium must be installed.
func Render(ctx context.Context, url string, opts BrowserOptions) (string, error) {
	if opts.Settle <= 0 {
		opts.Settle = 3 * time.Second
	}
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	log = log.WithField("url", url)
	log.Debug("rendering page in headless browser")

	browserCtx, cancel := browser.New(ctx, opts.Timeout)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(opts.Settle),
		chromedp.ActionFunc(func(ctx context.Context) error {
			// cookie banners are optional; a miss is not an error
			_ = chromedp.Click(`button[id*="accept"], button[class*="accept"]`, chromedp.NodeVisible, chromedp.AtLeast(0)).Do(ctx)
			return nil
		}),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("browser rendering failed: %w", err)
	}

	log.WithField("bytes", len(html)).Debug("rendered page")
	return html, nil
}
