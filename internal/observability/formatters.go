// Package observability prints human-readable run summaries for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jonathan/resume-builder/internal/generator"
	"github.com/jonathan/resume-builder/internal/ingestion"
	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/style"
	"github.com/jonathan/resume-builder/internal/validation"
)

const (
	// boxWidth is the width of formatted output boxes
	boxWidth = 60
	// maxItemsToShow caps list lengths inside a box
	maxItemsToShow = 5
)

// Printer writes boxed summaries
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// truncate shortens s to at most width runes, marking the cut with "...".
func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width-3]) + "..."
}

// pad right-pads s with spaces to width runes.
func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	inner := boxWidth - 4
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(truncate(title, inner), inner))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(truncate(line, inner), inner))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintStyles lists the available styles with their authors.
func (p *Printer) PrintStyles(styles []style.Style) {
	if len(styles) == 0 {
		p.printBox("AVAILABLE STYLES", "No styles found.\nCreate one: "+style.TutorialURL)
		return
	}

	var sb strings.Builder
	for i, s := range styles {
		sb.WriteString(fmt.Sprintf("• %s\n", s.Name))
		sb.WriteString(fmt.Sprintf("  by %s\n", s.AuthorLink))
		if i < len(styles)-1 {
			sb.WriteString("\n")
		}
	}
	p.printBox(fmt.Sprintf("AVAILABLE STYLES (%d)", len(styles)), strings.TrimSuffix(sb.String(), "\n"))
}

// PrintJobPosting summarizes the ingested job posting.
func (p *Printer) PrintJobPosting(posting *ingestion.Posting) {
	if posting == nil {
		return
	}

	var sb strings.Builder
	if m := posting.Metadata; m != nil {
		if m.Title != "" {
			sb.WriteString(fmt.Sprintf("Title:    %s\n", m.Title))
		}
		if m.URL != "" {
			sb.WriteString(fmt.Sprintf("URL:      %s\n", m.URL))
		}
		if m.Platform != "" && m.Platform != "unknown" {
			sb.WriteString(fmt.Sprintf("Platform: %s\n", m.Platform))
		}
	}
	sb.WriteString(fmt.Sprintf("Posting:  %d chars\n", len(posting.Text)))

	if posting.Summary != "" {
		sb.WriteString("\nSummary:\n")
		lines := strings.Split(posting.Summary, "\n")
		count := min(len(lines), maxItemsToShow)
		for _, line := range lines[:count] {
			sb.WriteString("  " + line + "\n")
		}
		if len(lines) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more lines\n", len(lines)-maxItemsToShow))
		}
	}

	p.printBox("JOB DESCRIPTION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSectionReport shows the outcome and duration of every section.
func (p *Printer) PrintSectionReport(results []generator.SectionResult) {
	if len(results) == 0 {
		return
	}

	var sb strings.Builder
	failed := 0
	for _, r := range results {
		mark := "✓"
		detail := fmt.Sprintf("%d chars", len(r.Content))
		if r.Err != nil {
			mark = "✗"
			detail = r.Err.Error()
			failed++
		}
		sb.WriteString(fmt.Sprintf("%s %-18s %6s  %s\n", mark, r.Section, r.Duration.Round(100*time.Millisecond), detail))
	}
	sb.WriteString(fmt.Sprintf("\n%d/%d sections generated", len(results)-failed, len(results)))

	p.printBox("SECTIONS", sb.String())
}

// PrintUsageSummary shows calls, tokens and cost per model.
func (p *Printer) PrintUsageSummary(summary llm.UsageSummary) {
	if summary.Calls == 0 {
		p.printBox("LLM USAGE", "No calls recorded.")
		return
	}

	var sb strings.Builder
	for _, m := range summary.ByModel {
		sb.WriteString(fmt.Sprintf("%s\n", m.Model))
		sb.WriteString(fmt.Sprintf("  calls: %d  tokens: %d in / %d out\n", m.Calls, m.InputTokens, m.OutputTokens))
		sb.WriteString(fmt.Sprintf("  cost:  $%.6f\n\n", m.TotalCost))
	}
	sb.WriteString(fmt.Sprintf("Total: %d calls, $%.6f", summary.Calls, summary.TotalCost))

	p.printBox("LLM USAGE", sb.String())
}

// PrintViolations outputs any problems found in the generated resume.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintViolations(violations *validation.Violations) {
	if violations.Count() == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %s │\n", pad("✅ NO VIOLATIONS FOUND", boxWidth-4))
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d violations:\n\n", violations.Count()))
	for i, v := range violations.Violations {
		mark := "⚠"
		if v.Severity == validation.SeverityError {
			mark = "✗"
		}
		label := v.Type
		if v.Section != "" {
			label += " (" + v.Section + ")"
		}
		sb.WriteString(fmt.Sprintf("%s %s\n", mark, label))
		sb.WriteString(fmt.Sprintf("  %s\n", truncate(v.Details, boxWidth-8)))
		if i < len(violations.Violations)-1 {
			sb.WriteString("\n")
		}
	}
	if violations.Pages > 0 {
		sb.WriteString(fmt.Sprintf("\nPages: %d", violations.Pages))
	}

	p.printBox("RESUME CHECKS", strings.TrimSuffix(sb.String(), "\n"))
}
