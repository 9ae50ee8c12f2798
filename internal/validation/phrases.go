package validation

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

// placeholderPattern matches bracketed template slots such as "[Company]"
// that a model copied instead of filling in.
var placeholderPattern = regexp.MustCompile(`\[[A-Z][A-Za-z ]{1,60}\]|\{\{\s*\.?[A-Za-z]+\s*\}\}`)

// CheckPlaceholders reports lines that still contain template placeholders.
func CheckPlaceholders(blocks []Block) []Violation {
	var violations []Violation
	for _, b := range blocks {
		for i, line := range strings.Split(b.Text, "\n") {
			if match := placeholderPattern.FindString(line); match != "" {
				violations = append(violations, Violation{
					Type:       TypePlaceholder,
					Severity:   SeverityError,
					Details:    fmt.Sprintf("Line %d contains unfilled placeholder: %s", i+1, match),
					Section:    b.ID,
					LineNumber: intPtr(i + 1),
				})
			}
		}
	}
	return violations
}

// CheckForbiddenPhrases reports lines containing any of the given phrases,
// case-insensitively. Only the first match of a line is reported.
func CheckForbiddenPhrases(blocks []Block, phrases []string) []Violation {
	if len(phrases) == 0 {
		return nil
	}

	normalized := make([]string, 0, len(phrases))
	for _, phrase := range phrases {
		if p := normalizeForMatching(phrase); p != "" {
			normalized = append(normalized, p)
		}
	}

	var violations []Violation
	for _, b := range blocks {
		for i, line := range strings.Split(b.Text, "\n") {
			line = normalizeForMatching(line)
			for _, phrase := range normalized {
				if strings.Contains(line, phrase) {
					violations = append(violations, Violation{
						Type:       TypeForbiddenPhrase,
						Severity:   SeverityError,
						Details:    fmt.Sprintf("Line %d contains forbidden phrase: %s", i+1, phrase),
						Section:    b.ID,
						LineNumber: intPtr(i + 1),
					})
					break
				}
			}
		}
	}
	return violations
}

// normalizeForMatching unescapes HTML entities, collapses whitespace and lowercases.
func normalizeForMatching(text string) string {
	text = html.UnescapeString(text)
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}
