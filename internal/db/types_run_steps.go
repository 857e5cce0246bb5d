package db

import (
	"time"

	"github.com/google/uuid"
)

// StepStatus constants
const (
	StepStatusCompleted = "completed"
	StepStatusFailed    = "failed"
	StepStatusSkipped   = "skipped"
)

// RunStatus constants
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	// RunStatusDegraded marks a run that reached the end with at least one failed step
	RunStatusDegraded = "degraded"
)

// Run represents a pipeline run
type Run struct {
	ID           uuid.UUID  `json:"id"`
	SourceURL    string     `json:"source_url"`
	FileBaseName string     `json:"file_base_name"`
	FileFormat   string     `json:"file_format"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// RunStep represents a single step execution for a pipeline run
type RunStep struct {
	ID           uuid.UUID              `json:"id"`
	RunID        uuid.UUID              `json:"run_id"`
	Step         string                 `json:"step"`
	Status       string                 `json:"status"`
	DurationMs   *int                   `json:"duration_ms,omitempty"`
	ErrorMessage *string                `json:"error_message,omitempty"`
	Parameters   map[string]interface{} `json:"parameters,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
}

// RunStepInput represents input for recording a run step
type RunStepInput struct {
	Step         string
	Status       string
	Duration     time.Duration
	ErrorMessage string
	Parameters   map[string]interface{}
}
