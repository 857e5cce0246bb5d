package db

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestStatusConstants(t *testing.T) {
	statuses := []string{
		StepStatusCompleted,
		StepStatusFailed,
		StepStatusSkipped,
		RunStatusRunning,
		RunStatusCompleted,
		RunStatusDegraded,
	}

	for _, status := range statuses {
		assert.NotEmpty(t, status, "status constant should not be empty")
	}
}

func TestRunType(t *testing.T) {
	run := Run{
		ID:           uuid.New(),
		SourceURL:    "https://shop.example.com/collections/women",
		FileBaseName: "fashion_collections",
		FileFormat:   "csv",
		Status:       RunStatusRunning,
	}

	assert.Equal(t, "fashion_collections", run.FileBaseName)
	assert.Equal(t, RunStatusRunning, run.Status)
	assert.Nil(t, run.CompletedAt)
}

func TestRunStepInput(t *testing.T) {
	input := RunStepInput{
		Step:         "extract_data",
		Status:       StepStatusFailed,
		Duration:     1500 * time.Millisecond,
		ErrorMessage: "fetch error",
		Parameters:   map[string]interface{}{"records": 0},
	}

	assert.Equal(t, int64(1500), input.Duration.Milliseconds())
	assert.Equal(t, "fetch error", input.ErrorMessage)
}
