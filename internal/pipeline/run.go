// Package pipeline runs resume generation end to end: resume, style, job
// description, sections, HTML and PDF.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jonathan/resume-builder/internal/db"
	"github.com/jonathan/resume-builder/internal/experience"
	"github.com/jonathan/resume-builder/internal/fetch"
	"github.com/jonathan/resume-builder/internal/generator"
	"github.com/jonathan/resume-builder/internal/ingestion"
	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/logging"
	"github.com/jonathan/resume-builder/internal/observability"
	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/jonathan/resume-builder/internal/style"
	"github.com/jonathan/resume-builder/internal/types"
	"github.com/jonathan/resume-builder/internal/validation"
)

// ErrNoStyle is returned when no style was chosen.
var ErrNoStyle = errors.New("a style must be chosen before generating the resume")

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	RunID    string `json:"run_id,omitempty"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// PDFRenderer prints an HTML page to PDF.
type PDFRenderer interface {
	RenderPDF(ctx context.Context, html string) ([]byte, error)
}

// Store persists runs and their artifacts; *db.DB satisfies it.
type Store interface {
	CreateRun(ctx context.Context, in db.RunInput) (uuid.UUID, error)
	CompleteRun(ctx context.Context, runID uuid.UUID, status string, runErr error) error
	SaveArtifact(ctx context.Context, runID uuid.UUID, step, category string, content any) error
	SaveTextArtifact(ctx context.Context, runID uuid.UUID, step, category, text string) error
}

// RunOptions holds configuration for one pipeline run
type RunOptions struct {
	// Resume is used when set; otherwise ResumePath is loaded.
	Resume     *types.Resume
	ResumePath string
	StyleName  string
	JobURL     string
	JobText    string
	UseBrowser bool
	// OutputPath receives the PDF, or the HTML when HTMLOnly is set. Empty skips writing.
	OutputPath string
	Base64     bool
	HTMLOnly   bool
	OnProgress ProgressCallback
}

// Result is the outcome of a run
type Result struct {
	RunID      uuid.UUID
	Resume     *types.Resume
	Posting    *ingestion.Posting
	Sections   []generator.SectionResult
	HTML       string
	PDF        []byte
	OutputPath string
	Violations *validation.Violations
	Duration   time.Duration
}

// Runner holds the collaborators of a pipeline run.
type Runner struct {
	Client   llm.Client
	Styles   *style.Manager
	Renderer PDFRenderer
	// Store is optional.
	Store      Store
	Validation validation.Options
	Workers    int
	Strict     bool
	Verbose    bool
	Out        io.Writer
	Logger     logrus.FieldLogger
}

type run struct {
	*Runner
	opts    RunOptions
	log     logrus.FieldLogger
	printer *observability.Printer
	runID   uuid.UUID
	step    int
	steps   int
}

func (r *run) progress(step, category, message string, content any) {
	if r.opts.OnProgress == nil {
		return
	}
	event := ProgressEvent{Step: step, Category: category, Message: message, Content: content}
	if r.runID != uuid.Nil {
		event.RunID = r.runID.String()
	}
	r.opts.OnProgress(event)
}

//nolint:errcheck // writing to stdout; errors are not recoverable
func (r *run) stepf(format string, args ...any) {
	r.step++
	fmt.Fprintf(r.Out, "Step %d/%d: %s\n", r.step, r.steps, fmt.Sprintf(format, args...))
}

func (r *run) saveArtifact(ctx context.Context, step, category string, content any) {
	if r.Store == nil || r.runID == uuid.Nil {
		return
	}
	if err := r.Store.SaveArtifact(ctx, r.runID, step, category, content); err != nil {
		r.log.WithError(err).WithField("step", step).Warn("failed to save artifact")
	}
}

func (r *run) saveText(ctx context.Context, step, category, text string) {
	if r.Store == nil || r.runID == uuid.Nil {
		return
	}
	if err := r.Store.SaveTextArtifact(ctx, r.runID, step, category, text); err != nil {
		r.log.WithError(err).WithField("step", step).Warn("failed to save artifact")
	}
}

// Run generates a resume. Failed sections are left empty unless the Runner is
// strict, in which case the run fails with a *generator.SectionError.
func (rn *Runner) Run(ctx context.Context, opts RunOptions) (res *Result, err error) {
	start := time.Now()
	if rn.Client == nil {
		return nil, errors.New("pipeline: completion client is required")
	}
	if opts.JobURL != "" && opts.JobText != "" {
		return nil, ingestion.ErrConflictingSources
	}
	if opts.StyleName == "" {
		return nil, ErrNoStyle
	}

	cfg := *rn
	r := &run{Runner: &cfg, opts: opts, log: rn.Logger}
	if r.Out == nil {
		r.Out = io.Discard
	}
	if r.log == nil {
		r.log = logging.Discard()
	}
	if r.Styles == nil {
		r.Styles = style.Builtin(r.log)
	}
	r.printer = observability.NewPrinter(r.Out)
	r.steps = 6
	if !opts.HTMLOnly {
		r.steps++
	}

	res = &Result{}
	defer func() {
		res.Duration = time.Since(start)
		r.finish(ctx, res, err)
	}()

	// Step 1: resume
	if opts.Resume != nil {
		r.stepf("Using provided resume...")
		res.Resume = opts.Resume
	} else {
		r.stepf("Loading resume from %s...", opts.ResumePath)
		res.Resume, err = experience.LoadResume(opts.ResumePath)
		if err != nil {
			return res, fmt.Errorf("failed to load resume: %w", err)
		}
	}
	r.progress(db.StepResume, db.CategoryInput, "Loaded resume of "+res.Resume.PersonalInformation.FullName(), nil)

	// Step 2: style
	r.stepf("Loading style %q...", opts.StyleName)
	css, err := r.Styles.Read(opts.StyleName)
	if err != nil {
		return res, err
	}

	if r.Store != nil {
		r.runID, err = r.Store.CreateRun(ctx, db.RunInput{
			Candidate: res.Resume.PersonalInformation.FullName(),
			Style:     opts.StyleName,
			JobURL:    opts.JobURL,
			Model:     r.Client.Model(),
		})
		if err != nil {
			r.log.WithError(err).Warn("failed to create database run, continuing without persistence")
			err = nil
		} else {
			res.RunID = r.runID
			ctx = db.WithRunID(ctx, r.runID)
			r.log.WithField("run_id", r.runID).Debug("created database run")
		}
	}
	r.saveArtifact(ctx, db.StepResume, db.CategoryInput, res.Resume)

	// Step 3: job description
	jobDescription, err := r.jobDescription(ctx, res)
	if err != nil {
		return res, err
	}

	// Step 4: sections
	r.stepf("Generating resume sections...")
	gen := generator.New(r.Client,
		generator.WithWorkers(r.Workers),
		generator.WithStrict(r.Strict),
		generator.WithLogger(r.log),
	)
	body, results, genErr := gen.Generate(ctx, res.Resume, jobDescription)
	if results != nil {
		res.Sections = results.Ordered()
		r.saveArtifact(ctx, db.StepSections, db.CategoryLLM, results.Content())
		if r.Verbose {
			r.printer.PrintSectionReport(res.Sections)
		}
		if failed := results.Failed(); len(failed) > 0 {
			r.log.WithField("sections", failed).Warn("some sections failed and were left empty")
		}
	}
	if genErr != nil {
		return res, genErr
	}
	r.progress(db.StepSections, db.CategoryLLM, fmt.Sprintf("Generated %d sections", len(res.Sections)), nil)

	// Step 5: HTML
	r.stepf("Rendering HTML document...")
	res.HTML, err = rendering.RenderDocument(rendering.Document{
		Body:  body,
		CSS:   css,
		Title: res.Resume.PersonalInformation.FullName() + " - Resume",
	})
	if err != nil {
		return res, err
	}
	r.saveText(ctx, db.StepHTML, db.CategoryOutput, res.HTML)
	r.progress(db.StepHTML, db.CategoryOutput, "Rendered HTML document", nil)

	output := []byte(res.HTML)

	// Step 6: PDF
	if !opts.HTMLOnly {
		if r.Renderer == nil {
			return res, errors.New("pipeline: PDF renderer is required")
		}
		r.stepf("Printing PDF...")
		res.PDF, err = r.Renderer.RenderPDF(ctx, res.HTML)
		if err != nil {
			return res, err
		}
		output = res.PDF
		if opts.Base64 {
			output = rendering.EncodeBase64(res.PDF)
		}
	}

	r.validate(ctx, res)

	// Step 7: output
	if opts.OutputPath == "" {
		r.stepf("Skipping output file")
		return res, nil
	}
	r.stepf("Writing %s...", opts.OutputPath)
	if err := WriteOutput(opts.OutputPath, output); err != nil {
		return res, err
	}
	res.OutputPath = opts.OutputPath
	return res, nil
}

// jobDescription ingests and summarizes the job posting, if any.
func (r *run) jobDescription(ctx context.Context, res *Result) (string, error) {
	if r.opts.JobURL == "" && r.opts.JobText == "" {
		r.stepf("No job description given, generating a general resume")
		return "", nil
	}

	if r.opts.JobURL != "" {
		r.stepf("Ingesting job posting from URL: %s...", r.opts.JobURL)
	} else {
		r.stepf("Ingesting job posting from text...")
	}

	posting, err := ingestion.Resolve(ctx, r.Client, ingestion.Options{
		URL:  r.opts.JobURL,
		Text: r.opts.JobText,
		URLOptions: ingestion.URLOptions{
			UseBrowser: r.opts.UseBrowser,
			Browser:    fetch.BrowserOptions{Logger: r.log},
			Logger:     r.log,
		},
	})
	if err != nil {
		return "", fmt.Errorf("job description failed: %w", err)
	}

	res.Posting = posting
	if r.Verbose {
		r.printer.PrintJobPosting(posting)
	}
	r.saveText(ctx, db.StepJobPosting, db.CategoryInput, posting.Text)
	r.saveText(ctx, db.StepJobDescription, db.CategoryLLM, posting.Summary)
	r.progress(db.StepJobDescription, db.CategoryLLM, "Summarized job description", posting.Metadata)
	return posting.Summary, nil
}

// validate checks the rendered resume. Violations are reported, never fatal.
func (r *run) validate(ctx context.Context, res *Result) {
	violations, err := validation.Validate(res.HTML, res.PDF, r.Validation)
	if err != nil {
		r.log.WithError(err).Warn("failed to validate resume")
		return
	}
	res.Violations = violations
	for _, v := range violations.Violations {
		r.log.WithFields(logrus.Fields{
			"type":     v.Type,
			"severity": v.Severity,
			"section":  v.Section,
		}).Warn(v.Details)
	}
	if r.Verbose {
		r.printer.PrintViolations(violations)
	}
	r.saveArtifact(ctx, db.StepValidation, db.CategoryOutput, violations)
}

// finish records the run outcome.
func (r *run) finish(ctx context.Context, res *Result, runErr error) {
	failed := 0
	for _, s := range res.Sections {
		if s.Err != nil {
			failed++
		}
	}

	fields := logrus.Fields{"duration": res.Duration.Round(time.Millisecond)}
	if runErr != nil {
		r.log.WithError(runErr).WithFields(fields).Error("resume generation failed")
	} else {
		r.log.WithFields(fields).WithField("failed_sections", failed).Info("resume generation finished")
	}

	if r.Store == nil || r.runID == uuid.Nil {
		return
	}
	status := db.StatusCompleted
	switch {
	case runErr != nil:
		status = db.StatusFailed
	case failed > 0:
		status = db.StatusPartial
	}
	if err := r.Store.CompleteRun(context.WithoutCancel(ctx), r.runID, status, runErr); err != nil {
		r.log.WithError(err).Warn("failed to complete database run")
	}
}

// WriteOutput writes data to path, creating the parent directory.
func WriteOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
