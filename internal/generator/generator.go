package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/logging"
	"github.com/jonathan/resume-builder/internal/prompts"
	"github.com/jonathan/resume-builder/internal/types"
)

// DefaultWorkers is the size of the section worker pool.
const DefaultWorkers = 4

// ErrEmptySection is recorded for a section whose completion was blank.
var ErrEmptySection = errors.New("section completion was empty")

// SectionError is returned in strict mode when sections fail.
type SectionError struct {
	Failed map[Section]error
}

func (e *SectionError) Error() string {
	var parts []string
	for _, section := range Order {
		if err, ok := e.Failed[section]; ok {
			parts = append(parts, fmt.Sprintf("%s: %v", section, err))
		}
	}
	return fmt.Sprintf("%d section(s) failed: %s", len(e.Failed), strings.Join(parts, "; "))
}

// SectionResult is the outcome of one section task
type SectionResult struct {
	Section  Section
	Content  string
	Err      error
	Duration time.Duration
}

// Results holds every section outcome, keyed by section.
type Results struct {
	mu       sync.Mutex
	sections map[Section]SectionResult
}

func newResults() *Results {
	return &Results{sections: make(map[Section]SectionResult, len(Order))}
}

func (r *Results) set(res SectionResult) {
	r.mu.Lock()
	r.sections[res.Section] = res
	r.mu.Unlock()
}

// Get returns the outcome of a section.
func (r *Results) Get(section Section) (SectionResult, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.sections[section]
	return res, ok
}

// Content returns the non-empty section contents.
func (r *Results) Content() map[Section]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[Section]string, len(r.sections))
	for section, res := range r.sections {
		if res.Err == nil && res.Content != "" {
			out[section] = res.Content
		}
	}
	return out
}

// Failed returns the failed sections in assembly order.
func (r *Results) Failed() []Section {
	r.mu.Lock()
	defer r.mu.Unlock()
	var failed []Section
	for _, section := range Order {
		if res, ok := r.sections[section]; ok && res.Err != nil {
			failed = append(failed, section)
		}
	}
	return failed
}

// Ordered returns every recorded outcome in assembly order.
func (r *Results) Ordered() []SectionResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]SectionResult, 0, len(r.sections))
	for _, section := range Order {
		if res, ok := r.sections[section]; ok {
			out = append(out, res)
		}
	}
	return out
}

// Generator drafts resume sections with a completion client
type Generator struct {
	client  llm.Client
	workers int
	strict  bool
	log     logrus.FieldLogger
}

// Option configures a Generator
type Option func(*Generator)

// WithWorkers sets the worker pool size. Values below 1 use DefaultWorkers.
func WithWorkers(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.workers = n
		}
	}
}

// WithStrict makes Generate fail when any section fails.
func WithStrict(strict bool) Option {
	return func(g *Generator) { g.strict = strict }
}

// WithLogger sets the logger for section failures.
func WithLogger(log logrus.FieldLogger) Option {
	return func(g *Generator) { g.log = log }
}

// New returns a Generator using client for every section.
func New(client llm.Client, opts ...Option) *Generator {
	g := &Generator{
		client:  client,
		workers: DefaultWorkers,
		log:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate drafts every section concurrently and assembles the document body.
// A non-empty jobDescription selects the job-tailored prompts. Failed sections
// are logged and left empty; in strict mode they also produce a *SectionError
// alongside the assembled body.
func (g *Generator) Generate(ctx context.Context, resume *types.Resume, jobDescription string) (string, *Results, error) {
	if resume == nil {
		return "", nil, fmt.Errorf("resume is required")
	}

	promptFile := prompts.SectionsFile
	if jobDescription != "" {
		promptFile = prompts.SectionsJobFile
	}

	results := newResults()
	var eg errgroup.Group
	eg.SetLimit(g.workers)

	for _, section := range Order {
		eg.Go(func() error {
			results.set(g.generateSection(ctx, section, promptFile, resume, jobDescription))
			return nil
		})
	}
	_ = eg.Wait()

	body := Assemble(results.Content())

	if failed := results.Failed(); len(failed) > 0 && g.strict {
		sectionErr := &SectionError{Failed: make(map[Section]error, len(failed))}
		for _, section := range failed {
			res, _ := results.Get(section)
			sectionErr.Failed[section] = res.Err
		}
		return body, results, sectionErr
	}

	return body, results, nil
}

func (g *Generator) generateSection(ctx context.Context, section Section, promptFile string, resume *types.Resume, jobDescription string) SectionResult {
	start := time.Now()
	ctx, span := otel.Tracer("github.com/jonathan/resume-builder/internal/generator").Start(ctx, "generator.section",
		trace.WithAttributes(attribute.String("resume.section", string(section))))
	defer span.End()

	res := SectionResult{Section: section}
	res.Content, res.Err = g.draft(ctx, section, promptFile, resume, jobDescription)
	res.Duration = time.Since(start)

	if res.Err != nil {
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, res.Err.Error())
		g.log.WithError(res.Err).WithField("section", section).Error("section generation failed")
		res.Content = ""
	} else {
		g.log.WithFields(logrus.Fields{
			"section":  section,
			"duration": res.Duration.Round(time.Millisecond),
		}).Debug("section generated")
	}
	return res
}

func (g *Generator) draft(ctx context.Context, section Section, promptFile string, resume *types.Resume, jobDescription string) (string, error) {
	data, err := promptData(section, resume, jobDescription)
	if err != nil {
		return "", err
	}

	prompt, err := prompts.Render(promptFile, string(section), data)
	if err != nil {
		return "", err
	}

	reply, err := llm.Generate(ctx, g.client, prompt)
	if err != nil {
		return "", err
	}

	content := llm.CleanCodeBlock(reply)
	if content == "" {
		return "", ErrEmptySection
	}
	return content, nil
}
