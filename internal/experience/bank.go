// Package experience loads the candidate's resume record.
package experience

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/resume-builder/internal/schemas"
	"github.com/jonathan/resume-builder/internal/types"
	rootschemas "github.com/jonathan/resume-builder/schemas"
)

// LoadResume loads a resume record from a YAML file
func LoadResume(path string) (*types.Resume, error) {
	// Read file
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{
			Message: fmt.Sprintf("failed to read file %s", path),
			Cause:   err,
		}
	}

	return ParseResume(content)
}

// ParseResume decodes and validates resume YAML content. The document is
// checked against the resume JSON Schema before it is decoded into the
// typed record, then the record's field rules are applied.
func ParseResume(content []byte) (*types.Resume, error) {
	var document interface{}
	if err := yaml.Unmarshal(content, &document); err != nil {
		return nil, &LoadError{
			Message: "failed to unmarshal YAML",
			Cause:   err,
		}
	}
	if document == nil {
		return nil, &LoadError{Message: "resume is empty"}
	}

	if err := schemas.ValidateDocument("resume.schema.json", rootschemas.Resume, document); err != nil {
		return nil, &LoadError{
			Message: "schema validation failed",
			Cause:   err,
		}
	}

	var resume types.Resume
	if err := yaml.Unmarshal(content, &resume); err != nil {
		return nil, &LoadError{
			Message: "failed to decode resume",
			Cause:   err,
		}
	}

	if err := resume.Validate(); err != nil {
		return nil, &LoadError{
			Message: "invalid resume fields",
			Cause:   err,
		}
	}

	return &resume, nil
}
