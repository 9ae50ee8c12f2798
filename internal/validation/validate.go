// Package validation checks a generated resume for missing sections,
// unfilled template placeholders, forbidden phrases and page overflow.
package validation

import "fmt"

// Options configures Validate
type Options struct {
	ForbiddenPhrases []string
	// MaxPages is the page limit of the PDF; 0 disables the check.
	MaxPages int
}

// Validate checks the generated HTML and, when given, the printed PDF.
func Validate(html string, pdf []byte, opts Options) (*Violations, error) {
	blocks, err := Blocks(html)
	if err != nil {
		return nil, err
	}

	result := &Violations{}
	result.Violations = append(result.Violations, CheckSections(blocks)...)
	result.Violations = append(result.Violations, CheckPlaceholders(blocks)...)
	result.Violations = append(result.Violations, CheckForbiddenPhrases(blocks, opts.ForbiddenPhrases)...)

	if len(pdf) == 0 {
		return result, nil
	}

	pages, err := CountPDFPages(pdf)
	if err != nil {
		// If page counting fails, add as a warning violation but continue
		result.Violations = append(result.Violations, Violation{
			Type:     TypePageOverflow,
			Severity: SeverityWarning,
			Details:  fmt.Sprintf("Could not determine page count: %v", err),
		})
		return result, nil
	}
	result.Pages = pages
	if opts.MaxPages > 0 && pages > opts.MaxPages {
		result.Violations = append(result.Violations, Violation{
			Type:     TypePageOverflow,
			Severity: SeverityError,
			Details:  fmt.Sprintf("Resume has %d pages, maximum allowed is %d", pages, opts.MaxPages),
		})
	}
	return result, nil
}
