// Package db provides PostgreSQL persistence for speech runs, per-stage
// artifacts, and the opening-paragraph history.
//
// Expected schema:
//
//	CREATE TABLE speech_runs (
//	    id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
//	    topic         TEXT NOT NULL,
//	    length_preset TEXT NOT NULL,
//	    status        TEXT NOT NULL,
//	    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
//	    completed_at  TIMESTAMPTZ
//	);
//
//	CREATE TABLE artifacts (
//	    id           UUID PRIMARY KEY DEFAULT gen_random_uuid(),
//	    run_id       UUID NOT NULL REFERENCES speech_runs(id) ON DELETE CASCADE,
//	    stage        TEXT NOT NULL,
//	    text_content TEXT NOT NULL,
//	    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
//	    UNIQUE (run_id, stage)
//	);
//
//	CREATE TABLE openings (
//	    id         BIGSERIAL PRIMARY KEY,
//	    opening    TEXT NOT NULL,
//	    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

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

// CreateRun records a new speech run and returns its ID
func (db *DB) CreateRun(ctx context.Context, topic, lengthPreset string) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO speech_runs (topic, length_preset, status)
		 VALUES ($1, $2, 'running')
		 RETURNING id`,
		topic, lengthPreset,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create run: %w", err)
	}
	return id, nil
}

// CompleteRun marks a speech run as completed or failed
func (db *DB) CompleteRun(ctx context.Context, runID uuid.UUID, status string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE speech_runs SET status = $1, completed_at = NOW() WHERE id = $2`,
		status, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// SaveTextArtifact stores one stage's text output for a run. Re-saving the
// same stage overwrites the earlier content.
func (db *DB) SaveTextArtifact(ctx context.Context, runID uuid.UUID, stage, text string) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO artifacts (run_id, stage, text_content)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (run_id, stage) DO UPDATE SET text_content = $3, created_at = NOW()`,
		runID, stage, text,
	)
	if err != nil {
		return fmt.Errorf("failed to save artifact %s: %w", stage, err)
	}
	return nil
}

// GetTextArtifact retrieves a stage's text output by run ID and stage name
func (db *DB) GetTextArtifact(ctx context.Context, runID uuid.UUID, stage string) (string, error) {
	var text string
	err := db.pool.QueryRow(ctx,
		`SELECT text_content FROM artifacts WHERE run_id = $1 AND stage = $2`,
		runID, stage,
	).Scan(&text)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("failed to get artifact %s: %w", stage, err)
	}
	return text, nil
}

// GetRun retrieves a speech run by ID
func (db *DB) GetRun(ctx context.Context, runID uuid.UUID) (*Run, error) {
	var run Run
	err := db.pool.QueryRow(ctx,
		`SELECT id, topic, length_preset, status, created_at, completed_at
		 FROM speech_runs WHERE id = $1`,
		runID,
	).Scan(&run.ID, &run.Topic, &run.LengthPreset, &run.Status, &run.CreatedAt, &run.CompletedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// ListRuns retrieves recent speech runs
func (db *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, topic, length_preset, status, created_at, completed_at
		 FROM speech_runs ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.Topic, &run.LengthPreset, &run.Status, &run.CreatedAt, &run.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// DeleteRun deletes a speech run and all its artifacts (via cascade)
func (db *DB) DeleteRun(ctx context.Context, runID uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM speech_runs WHERE id = $1`, runID)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("run not found: %s", runID)
	}
	return nil
}
