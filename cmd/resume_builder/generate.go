package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-builder/internal/ingestion"
	"github.com/jonathan/resume-builder/internal/pipeline"
	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/jonathan/resume-builder/internal/style"
	"github.com/jonathan/resume-builder/internal/ui"
	"github.com/jonathan/resume-builder/internal/validation"
)

var generateCommand = &cobra.Command{
	Use:   "generate",
	Short: "Generate a styled PDF resume",
	Long: `Drafts every resume section with the configured model, wraps them in the chosen style and prints the page to PDF with headless Chrome.

Without --style the style is chosen interactively, followed by an optional job posting URL. Command-line flags override config file values.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runGenerate(cmd, false)
	},
}

var htmlCommand = &cobra.Command{
	Use:   "html",
	Short: "Generate the styled HTML resume only (no browser needed)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runGenerate(cmd, true)
	},
}

// prompter is swapped in tests.
var prompter ui.Prompter = ui.Terminal{}

func init() {
	for _, c := range []*cobra.Command{generateCommand, htmlCommand} {
		f := c.Flags()
		f.StringP("resume", "r", "", "Path to the YAML resume (default plain_text_resume.yaml)")
		f.StringP("style", "s", "", "Style name (prompted for when empty)")
		f.String("styles-dir", "", "Directory of CSS styles (default built-in styles)")
		f.StringP("output", "o", "", "Output file path")
		f.String("job-url", "", "URL of the job posting to tailor the resume to (mutually exclusive with --job-text/--job-file)")
		f.String("job-text", "", "Job posting text to tailor the resume to")
		f.String("job-file", "", "Path to a job posting text file")
		f.Bool("use-browser", false, "Use headless browser for SPA job pages (requires Chrome)")
		f.Bool("strict", false, "Fail when any section cannot be generated")
		f.Int("workers", 0, "Concurrent section requests")
		f.Int("rpm", 0, "Maximum model requests per minute (0 disables pacing)")
		f.Int("max-pages", 0, "Warn when the PDF has more pages (0 disables the check)")
		f.String("provider", "", "Model provider: openai or gemini")
		f.String("model", "", "Model name override")
		f.String("api-url", "", "OpenAI-compatible base URL")
		f.String("api-key", "", "API key (optional, defaults to OPENAI_API_KEY or GEMINI_API_KEY)")
		f.Float64("temperature", 0, "Sampling temperature")
		f.Int("max-attempts", 0, "Attempts per completion before giving up")
		f.Duration("initial-delay", 0, "First retry delay, doubled on each retry")
		f.String("usage-log", "", "NDJSON file receiving one record per completion")
		rootCmd.AddCommand(c)
	}
	generateCommand.Flags().Bool("base64", false, "Write the PDF base64-encoded")
}

func runGenerate(cmd *cobra.Command, htmlOnly bool) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	cfg := a.cfg

	jobFile, _ := cmd.Flags().GetString("job-file")
	if jobFile != "" {
		if cfg.JobURL != "" || cfg.JobText != "" {
			return ingestion.ErrConflictingSources
		}
		text, _, err := ingestion.IngestFromFile(jobFile)
		if err != nil {
			return err
		}
		cfg.JobText = text
	}

	styles := a.styles()
	interactive := cfg.Style == ""
	if interactive {
		name, err := chooseStyle(prompter, styles, a.out)
		if err != nil {
			return err
		}
		if name == "" {
			return nil
		}
		cfg.Style = name

		if cfg.JobURL == "" && cfg.JobText == "" {
			cfg.JobURL, err = askJobURL(prompter)
			if err != nil {
				return err
			}
		}
	}

	if err := a.connectDB(ctx); err != nil {
		return err
	}
	client, err := a.client(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	output := cfg.Output
	if htmlOnly && strings.HasSuffix(output, ".pdf") {
		output = strings.TrimSuffix(output, ".pdf") + ".html"
	}

	runner := &pipeline.Runner{
		Client:   client,
		Styles:   styles,
		Renderer: rendering.NewPDFRenderer(a.log),
		Validation: validation.Options{
			ForbiddenPhrases: cfg.ForbiddenPhrases,
			MaxPages:         cfg.MaxPages,
		},
		Workers: cfg.Workers,
		Strict:  cfg.Strict,
		Verbose: cfg.Verbose,
		Out:     a.out,
		Logger:  a.log,
	}
	if a.db != nil {
		runner.Store = a.db
	}

	res, err := runner.Run(ctx, pipeline.RunOptions{
		ResumePath: cfg.Resume,
		StyleName:  cfg.Style,
		JobURL:     cfg.JobURL,
		JobText:    cfg.JobText,
		UseBrowser: cfg.UseBrowser,
		OutputPath: output,
		Base64:     cfg.Base64,
		HTMLOnly:   htmlOnly,
	})
	if err != nil {
		return err
	}

	printSummary(a.out, res)
	return nil
}

// chooseStyle asks for a style. It returns an empty name when the user asked
// how to create a style instead.
func chooseStyle(p ui.Prompter, styles *style.Manager, out io.Writer) (string, error) {
	choices := styles.Choices()
	if len(choices) <= 1 {
		return "", errors.New("no styles found; set --styles-dir or use the built-in styles")
	}
	choice, err := p.Select("Which style would you like to adopt?", choices)
	if err != nil {
		return "", err
	}
	if choice == style.CreateStyleChoice {
		_, _ = fmt.Fprintf(out, "\nWe are excited to see your own resume style!\nFollow the tutorial at %s\n", style.TutorialURL)
		return "", nil
	}
	return style.NameFromChoice(choice), nil
}

func askJobURL(p ui.Prompter) (string, error) {
	url, err := p.Input("Job posting URL to tailor the resume to (leave empty for a general resume)", "https://")
	if err != nil {
		return "", err
	}
	url = strings.TrimSpace(url)
	if url == "https://" {
		return "", nil
	}
	return url, nil
}

//nolint:errcheck // writing to stdout; errors are not recoverable
func printSummary(out io.Writer, res *pipeline.Result) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Resume generated successfully!")
	if res.OutputPath != "" {
		fmt.Fprintf(out, "Output: %s\n", res.OutputPath)
	}
	failed := 0
	for _, s := range res.Sections {
		if s.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		fmt.Fprintf(out, "Warning: %d section(s) could not be generated and were left empty\n", failed)
	}
	if n := res.Violations.Count(); n > 0 {
		fmt.Fprintf(out, "Warning: %d resume check(s) failed, run with --verbose for details\n", n)
	}
	fmt.Fprintf(out, "Duration: %s\n", res.Duration.Round(time.Millisecond))
}
