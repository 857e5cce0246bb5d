package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// -----------------------------------------------------------------------------
// Run Steps Methods
// -----------------------------------------------------------------------------

// RecordStep stores the outcome of one step, replacing an earlier record for the same step
func (db *DB) RecordStep(ctx context.Context, runID uuid.UUID, input *RunStepInput) error {
	var parametersJSON []byte
	if input.Parameters != nil {
		var err error
		parametersJSON, err = json.Marshal(input.Parameters)
		if err != nil {
			return fmt.Errorf("failed to marshal parameters: %w", err)
		}
	}

	durationMs := int(input.Duration.Milliseconds())
	var errorMessage *string
	if input.ErrorMessage != "" {
		errorMessage = &input.ErrorMessage
	}

	_, err := db.pool.Exec(ctx,
		`INSERT INTO run_steps (run_id, step, status, duration_ms, error_message, parameters)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (run_id, step) DO UPDATE
		 SET status = $3, duration_ms = $4, error_message = $5, parameters = $6`,
		runID, input.Step, input.Status, durationMs, errorMessage, parametersJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to record run step: %w", err)
	}
	return nil
}

// ListRunSteps retrieves all steps for a run in the order they were recorded
func (db *DB) ListRunSteps(ctx context.Context, runID uuid.UUID) ([]RunStep, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, run_id, step, status, duration_ms, error_message, parameters, created_at
		 FROM run_steps
		 WHERE run_id = $1
		 ORDER BY created_at, id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list run steps: %w", err)
	}
	defer rows.Close()

	var steps []RunStep
	for rows.Next() {
		var step RunStep
		var parametersJSON []byte

		if err := rows.Scan(&step.ID, &step.RunID, &step.Step, &step.Status,
			&step.DurationMs, &step.ErrorMessage, &parametersJSON, &step.CreatedAt); err != nil {
			return nil, err
		}

		if parametersJSON != nil {
			_ = json.Unmarshal(parametersJSON, &step.Parameters)
		}

		steps = append(steps, step)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate run steps: %w", err)
	}

	return steps, nil
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
