package db

import (
	"time"

	"github.com/google/uuid"
)

// Run statuses
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusPartial   = "partial"
	StatusFailed    = "failed"
)

// Artifact steps written by the pipeline
const (
	StepResume         = "resume"
	StepJobPosting     = "job_posting"
	StepJobDescription = "job_description"
	StepSections       = "sections"
	StepHTML           = "html"
	StepValidation     = "validation"
)

// Artifact categories
const (
	CategoryInput  = "input"
	CategoryLLM    = "llm"
	CategoryOutput = "output"
)

// Run is one resume generation
type Run struct {
	ID          uuid.UUID  `json:"id"`
	Candidate   string     `json:"candidate"`
	Style       string     `json:"style"`
	JobURL      string     `json:"job_url"`
	Model       string     `json:"model"`
	Status      string     `json:"status"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// RunInput describes a run being started
type RunInput struct {
	Candidate string
	Style     string
	JobURL    string
	Model     string
}

// ModelCost is the persisted spend of one model
type ModelCost struct {
	Model        string  `json:"model"`
	Calls        int     `json:"calls"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	TotalCost    float64 `json:"total_cost"`
}
