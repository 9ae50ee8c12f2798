package schemas

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	rootschemas "github.com/jonathan/resume-builder/schemas"
)

const nameSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["name"],
	"properties": {
		"name": {"type": "string"}
	}
}`

func TestValidateJSONString_Valid(t *testing.T) {
	err := ValidateJSONString(nameSchema, `{"name": "test"}`)
	assert.NoError(t, err)
}

func TestValidateJSONString_Invalid(t *testing.T) {
	err := ValidateJSONString(nameSchema, `{"age": 30}`)
	require.Error(t, err)

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Greater(t, len(validationErr.Errors), 0)
}

func TestValidateJSONString_MalformedSchema(t *testing.T) {
	err := ValidateJSONString(`{ not json`, `{}`)
	require.Error(t, err)

	var loadErr *SchemaLoadError
	assert.True(t, errors.As(err, &loadErr))
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Errors: []FieldError{
			{Field: "name", Message: "is required"},
			{Field: "age", Message: "must be a number"},
		},
	}

	errorMsg := err.Error()
	assert.Contains(t, errorMsg, "validation failed")
	assert.Contains(t, errorMsg, "name")
	assert.Contains(t, errorMsg, "age")
}

func decodeYAML(t *testing.T, content string) interface{} {
	t.Helper()
	var doc interface{}
	require.NoError(t, yaml.Unmarshal([]byte(content), &doc))
	return doc
}

func TestValidateDocument_ResumeSchema(t *testing.T) {
	tests := []struct {
		name    string
		content string
		field   string
	}{
		{
			name: "valid with exam list",
			content: `
personal_information: {name: Jane, surname: Doe}
education_details:
  - university: Example University
    exam:
      - Algorithms: A
      - Databases: 30
experience_details:
  - {position: Engineer, company: Acme, skills_acquired: [Go]}
projects:
  - {name: cli, link: "https://example.com"}
interests: [chess]
`,
		},
		{
			name: "valid with exam mapping",
			content: `
personal_information: {name: Jane, surname: Doe}
education_details:
  - university: Example University
    exam: {Algorithms: A}
`,
		},
		{
			name:    "missing surname",
			content: "personal_information: {name: Jane}\n",
			field:   "personal_information",
		},
		{
			name:    "missing personal information",
			content: "interests: [chess]\n",
			field:   "(root)",
		},
		{
			name: "experience without company",
			content: `
personal_information: {name: Jane, surname: Doe}
experience_details:
  - position: Engineer
`,
			field: "experience_details.0",
		},
		{
			name: "skills must be strings",
			content: `
personal_information: {name: Jane, surname: Doe}
experience_details:
  - {position: Engineer, company: Acme, skills_acquired: [{nested: true}]}
`,
			field: "experience_details.0.skills_acquired.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocument("resume.schema.json", rootschemas.Resume, decodeYAML(t, tt.content))
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}

			var validationErr *ValidationError
			require.True(t, errors.As(err, &validationErr), "expected validation error, got %v", err)
			fields := make([]string, 0, len(validationErr.Errors))
			for _, fe := range validationErr.Errors {
				fields = append(fields, fe.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}
