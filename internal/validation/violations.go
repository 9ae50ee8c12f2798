package validation

// Violation types
const (
	TypeMissingSection  = "missing_section"
	TypeEmptySection    = "empty_section"
	TypePlaceholder     = "placeholder"
	TypeForbiddenPhrase = "forbidden_phrase"
	TypePageOverflow    = "page_overflow"
)

// Severities
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Violation represents a single validation failure
type Violation struct {
	Type       string `json:"type"`
	Severity   string `json:"severity"`
	Details    string `json:"details"`
	Section    string `json:"section,omitempty"`
	LineNumber *int   `json:"line_number,omitempty"`
}

// Violations represents a collection of validation failures
type Violations struct {
	Violations []Violation `json:"violations"`
	Pages      int         `json:"pages,omitempty"`
}

// HasErrors reports whether any violation has error severity.
func (v *Violations) HasErrors() bool {
	if v == nil {
		return false
	}
	for _, violation := range v.Violations {
		if violation.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Count returns the number of violations.
func (v *Violations) Count() int {
	if v == nil {
		return 0
	}
	return len(v.Violations)
}

func intPtr(i int) *int {
	return &i
}
