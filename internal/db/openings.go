package db

import (
	"context"
	"fmt"

	"github.com/jonathan/speechforge/internal/memory"
)

// OpeningStore persists opening paragraphs in the openings table. It
// implements memory.Store so a shared database can replace the local
// history file when several hosts generate scripts.
type OpeningStore struct {
	db *DB
}

var _ memory.Store = (*OpeningStore)(nil)

// Openings returns a memory.Store backed by this database
func (db *DB) Openings() *OpeningStore {
	return &OpeningStore{db: db}
}

// Recent returns up to n of the most recent openings, oldest first
func (s *OpeningStore) Recent(ctx context.Context, n int) ([]string, error) {
	rows, err := s.db.pool.Query(ctx,
		`SELECT opening FROM (
		     SELECT id, opening FROM openings ORDER BY id DESC LIMIT $1
		 ) recent ORDER BY id ASC`,
		n,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list openings: %w", err)
	}
	defer rows.Close()

	var openings []string
	for rows.Next() {
		var opening string
		if err := rows.Scan(&opening); err != nil {
			return nil, fmt.Errorf("failed to scan opening: %w", err)
		}
		openings = append(openings, opening)
	}
	return openings, nil
}

// Append stores the clipped opening of a finished script and prunes the
// table back to the retention cap. Both statements run in one transaction
// so concurrent writers never observe a partially applied append.
func (s *OpeningStore) Append(ctx context.Context, opening string) error {
	tx, err := s.db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin openings transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO openings (opening) VALUES ($1)`,
		memory.Clip(opening),
	); err != nil {
		return fmt.Errorf("failed to insert opening: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM openings WHERE id NOT IN (
		     SELECT id FROM openings ORDER BY id DESC LIMIT $1
		 )`,
		memory.MaxOpenings,
	); err != nil {
		return fmt.Errorf("failed to prune openings: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit openings transaction: %w", err)
	}
	return nil
}
