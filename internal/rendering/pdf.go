package rendering

import (
	"context"
	"encoding/base64"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"

	"github.com/jonathan/resume-builder/internal/browser"
	"github.com/jonathan/resume-builder/internal/logging"
)

// A4 paper and print margins, in inches.
const (
	PaperWidth   = 8.27
	PaperHeight  = 11.69
	MarginTop    = 0.8
	MarginBottom = 0.8
	MarginLeft   = 0.5
	MarginRight  = 0.5
)

// DefaultSettle is how long fonts and images get to load before printing.
const DefaultSettle = 2 * time.Second

// PDFRenderer prints HTML pages to PDF with headless Chrome.
type PDFRenderer struct {
	Timeout time.Duration
	Settle  time.Duration
	// TempDir holds the intermediate HTML file; empty uses os.TempDir.
	TempDir string
	Logger  logrus.FieldLogger
}

// NewPDFRenderer returns a renderer with the default settle delay.
func NewPDFRenderer(log logrus.FieldLogger) *PDFRenderer {
	return &PDFRenderer{Settle: DefaultSettle, Logger: log}
}

// PrintParams returns the print command for an A4 page with background graphics.
func PrintParams() *page.PrintToPDFParams {
	return page.PrintToPDF().
		WithPrintBackground(true).
		WithPaperWidth(PaperWidth).
		WithPaperHeight(PaperHeight).
		WithMarginTop(MarginTop).
		WithMarginBottom(MarginBottom).
		WithMarginLeft(MarginLeft).
		WithMarginRight(MarginRight)
}

// RenderPDF writes html to a temporary file, loads it in headless Chrome and
// prints it. The temporary file is always removed.
func (r *PDFRenderer) RenderPDF(ctx context.Context, html string) ([]byte, error) {
	log := r.Logger
	if log == nil {
		log = logging.Discard()
	}

	tmp, err := os.CreateTemp(r.TempDir, "resume-*.html")
	if err != nil {
		return nil, &RenderError{Message: "failed to create temporary HTML file", Cause: err}
	}
	tmpPath := tmp.Name()
	defer func() {
		if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
			log.WithError(err).WithField("path", tmpPath).Warn("failed to remove temporary HTML file")
		}
	}()

	if _, err := tmp.WriteString(html); err != nil {
		_ = tmp.Close()
		return nil, &RenderError{Message: "failed to write temporary HTML file", Cause: err}
	}
	if err := tmp.Close(); err != nil {
		return nil, &RenderError{Message: "failed to close temporary HTML file", Cause: err}
	}

	fileURL, err := FileURL(tmpPath)
	if err != nil {
		return nil, &RenderError{Message: "failed to resolve temporary HTML path", Cause: err}
	}

	settle := r.Settle
	if settle < 0 {
		settle = 0
	}

	browserCtx, cancel := browser.New(ctx, r.Timeout)
	defer cancel()

	start := time.Now()
	var pdf []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate(fileURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(settle),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = PrintParams().Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, &RenderError{Message: "failed to print PDF", Cause: err}
	}

	log.WithFields(logrus.Fields{
		"bytes":    len(pdf),
		"duration": time.Since(start).Round(time.Millisecond),
	}).Debug("printed PDF")
	return pdf, nil
}

// FileURL returns the file:// URL of a local path.
func FileURL(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String(), nil
}

// EncodeBase64 returns the standard base64 encoding of a PDF.
func EncodeBase64(pdf []byte) []byte {
	out := make([]byte, base64.StdEncoding.EncodedLen(len(pdf)))
	base64.StdEncoding.Encode(out, pdf)
	return out
}

// IsPDF reports whether data starts with the PDF magic bytes.
func IsPDF(data []byte) bool {
	return len(data) >= 5 && string(data[:5]) == "%PDF-"
}
