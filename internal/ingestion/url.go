package ingestion

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/jonathan/resume-builder/internal/fetch"
)

var (
	// ErrInvalidURL is returned when URL is malformed
	ErrInvalidURL = errors.New("invalid URL")
	// ErrHTTPRequestFailed is returned when HTTP request fails
	ErrHTTPRequestFailed = errors.New("HTTP request failed")
	// ErrContentExtractionFailed is returned when no usable text is found
	ErrContentExtractionFailed = errors.New("content extraction failed")
)

// URLOptions configures IngestFromURL.
type URLOptions struct {
	// UseBrowser re-renders thin pages in headless Chrome.
	UseBrowser bool
	Fetch      *fetch.Options
	Browser    fetch.BrowserOptions
	Logger     logrus.FieldLogger
}

// IngestFromURL fetches a job posting, extracts its main text with the
// selectors of the detected job board, and returns cleaned text with metadata.
func IngestFromURL(ctx context.Context, urlStr string, opts URLOptions) (string, *Metadata, error) {
	log := loggerOrDiscard(opts.Logger).WithField("url", urlStr)

	platform := fetch.DetectPlatform(urlStr)
	log.WithField("platform", platform).Debug("detected job board")

	result, err := fetch.URL(ctx, urlStr, opts.Fetch)
	if err != nil {
		var fetchErr *fetch.Error
		if errors.As(err, &fetchErr) && fetchErr.Message == "invalid URL" {
			return "", nil, fmt.Errorf("%w: %s", ErrInvalidURL, urlStr)
		}
		return "", nil, fmt.Errorf("%w: %w", ErrHTTPRequestFailed, err)
	}
	log.WithField("bytes", len(result.HTML)).Debug("fetched job posting")

	contentSelectors := fetch.PlatformContentSelectors(platform)
	noiseSelectors := fetch.PlatformNoiseSelectors(platform)

	text, err := fetch.ExtractMainText(result.HTML, contentSelectors, noiseSelectors...)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrContentExtractionFailed, err)
	}

	if opts.UseBrowser && fetch.ShouldUseBrowser(text) {
		log.WithField("chars", len(text)).Info("job posting looks client-rendered, retrying in headless browser")
		browserOpts := opts.Browser
		if browserOpts.Logger == nil {
			browserOpts.Logger = log
		}
		rendered, renderErr := fetch.Render(ctx, urlStr, browserOpts)
		if renderErr != nil {
			log.WithError(renderErr).Warn("browser rendering failed, using HTTP content")
		} else if browserText, extractErr := fetch.ExtractMainText(rendered, contentSelectors, noiseSelectors...); extractErr != nil {
			log.WithError(extractErr).Warn("browser content extraction failed, using HTTP content")
		} else if len(browserText) > len(text) {
			text = browserText
			result.HTML = rendered
		}
	}

	cleaned := CleanText(text)
	if cleaned == "" {
		return "", nil, fmt.Errorf("%w: no text found at %s", ErrContentExtractionFailed, urlStr)
	}
	log.WithField("chars", len(cleaned)).Debug("cleaned job posting")

	metadata := NewMetadata(cleaned, urlStr)
	metadata.Platform = string(platform)
	metadata.Title = fetch.Title(result.HTML)
	return cleaned, metadata, nil
}
