// Package db provides optional PostgreSQL persistence of pipeline run history.
package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaSQL creates the run history tables if they do not exist yet
const schemaSQL = `
CREATE TABLE IF NOT EXISTS pipeline_runs (
	id             UUID PRIMARY KEY,
	source_url     TEXT NOT NULL,
	file_base_name TEXT NOT NULL,
	file_format    TEXT NOT NULL,
	status         TEXT NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	completed_at   TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS run_steps (
	id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	run_id        UUID NOT NULL REFERENCES pipeline_runs(id) ON DELETE CASCADE,
	step          TEXT NOT NULL,
	status        TEXT NOT NULL,
	duration_ms   INTEGER,
	error_message TEXT,
	parameters    JSONB,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (run_id, step)
);
`

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// EnsureSchema creates the run history tables when missing
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// CreateRun inserts a pipeline run record with status running
func (db *DB) CreateRun(ctx context.Context, runID uuid.UUID, sourceURL, fileBaseName, fileFormat string) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO pipeline_runs (id, source_url, file_base_name, file_format, status)
		 VALUES ($1, $2, $3, $4, $5)`,
		runID, sourceURL, fileBaseName, fileFormat, RunStatusRunning,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// CompleteRun marks a pipeline run as finished with the given status
func (db *DB) CompleteRun(ctx context.Context, runID uuid.UUID, status string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE pipeline_runs SET status = $1, completed_at = NOW() WHERE id = $2`,
		status, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID, or nil when it does not exist
func (db *DB) GetRun(ctx context.Context, runID uuid.UUID) (*Run, error) {
	var run Run
	err := db.pool.QueryRow(ctx,
		`SELECT id, source_url, file_base_name, file_format, status, created_at, completed_at
		 FROM pipeline_runs WHERE id = $1`,
		runID,
	).Scan(&run.ID, &run.SourceURL, &run.FileBaseName, &run.FileFormat, &run.Status,
		&run.CreatedAt, &run.CompletedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}
