// Package ingestion turns a job posting URL or text into the job description
// that tailors the generated resume.
package ingestion

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/logging"
	"github.com/jonathan/resume-builder/internal/prompts"
)

// ErrConflictingSources is returned when both a job URL and job text are given.
var ErrConflictingSources = errors.New("job URL and job text are mutually exclusive")

// Options selects the job posting source. At most one of URL and Text may be set.
type Options struct {
	URL  string
	Text string
	URLOptions
}

// Posting is a cleaned job posting and its summary.
type Posting struct {
	Text     string
	Summary  string
	Metadata *Metadata
}

// Ingest returns the cleaned posting named by opts, or nil when neither a URL
// nor text is given.
func Ingest(ctx context.Context, opts Options) (*Posting, error) {
	url := strings.TrimSpace(opts.URL)
	text := strings.TrimSpace(opts.Text)

	switch {
	case url != "" && text != "":
		return nil, ErrConflictingSources
	case url != "":
		cleaned, metadata, err := IngestFromURL(ctx, url, opts.URLOptions)
		if err != nil {
			return nil, err
		}
		return &Posting{Text: cleaned, Metadata: metadata}, nil
	case text != "":
		cleaned := CleanText(text)
		return &Posting{Text: cleaned, Metadata: NewMetadata(cleaned, "")}, nil
	default:
		return nil, nil
	}
}

// Summarize condenses a cleaned posting into the brief used by the job-tailored prompts.
func Summarize(ctx context.Context, client llm.Client, text string) (string, error) {
	prompt, err := prompts.Render(prompts.JobDescriptionFile, "summarize", map[string]string{"JobText": text})
	if err != nil {
		return "", err
	}

	summary, err := llm.Generate(ctx, client, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to summarize job description: %w", err)
	}

	summary = strings.TrimSpace(llm.CleanCodeBlock(summary))
	if summary == "" {
		return "", errors.New("job description summary was empty")
	}
	return summary, nil
}

// Resolve ingests the posting named by opts and summarizes it. It returns
// nil when no job posting was given.
func Resolve(ctx context.Context, client llm.Client, opts Options) (*Posting, error) {
	posting, err := Ingest(ctx, opts)
	if err != nil || posting == nil {
		return posting, err
	}

	log := loggerOrDiscard(opts.Logger)
	log.WithFields(logrus.Fields{
		"chars":    len(posting.Text),
		"platform": posting.Metadata.Platform,
	}).Debug("summarizing job posting")

	posting.Summary, err = Summarize(ctx, client, posting.Text)
	if err != nil {
		return nil, err
	}
	return posting, nil
}

func loggerOrDiscard(log logrus.FieldLogger) logrus.FieldLogger {
	if log == nil {
		return logging.Discard()
	}
	return log
}
