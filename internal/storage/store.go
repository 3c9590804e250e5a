// Package storage persists the run history in a local SQLite database.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	// import db drivers
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	target      TEXT NOT NULL,
	accepted    INTEGER NOT NULL,
	rejected    INTEGER NOT NULL,
	skipped     INTEGER NOT NULL,
	report_path TEXT NOT NULL,
	created_at  TIMESTAMP NOT NULL
);`

// Run is one recorded review run.
type Run struct {
	ID         int64     `db:"id"`
	Target     string    `db:"target"`
	Accepted   int       `db:"accepted"`
	Rejected   int       `db:"rejected"`
	Skipped    int       `db:"skipped"`
	ReportPath string    `db:"report_path"`
	CreatedAt  time.Time `db:"created_at"`
}

// Store defines the run history operations.
type Store interface {
	SaveRun(ctx context.Context, run *Run) error
	ListRuns(ctx context.Context, limit int) ([]Run, error)
	Close() error
}

type sqliteStore struct {
	db *sqlx.DB
}

// NewStore opens (or creates) the history database at path and applies the
// schema. The schema statement is idempotent.
func NewStore(path string) (Store, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database at %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply history schema: %w", err)
	}
	return &sqliteStore{db: db}, nil
}

// SaveRun inserts a run record and fills in its assigned ID.
func (s *sqliteStore) SaveRun(ctx context.Context, run *Run) error {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO runs (target, accepted, rejected, skipped, report_path, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`
	res, err := s.db.ExecContext(ctx, query,
		run.Target, run.Accepted, run.Rejected, run.Skipped, run.ReportPath, run.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read run id: %w", err)
	}
	run.ID = id
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *sqliteStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []Run
	query := `SELECT id, target, accepted, rejected, skipped, report_path, created_at
		FROM runs ORDER BY created_at DESC, id DESC LIMIT ?`
	if err := s.db.SelectContext(ctx, &runs, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// Close releases the database connection.
func (s *sqliteStore) Close() error {
	return s.db.Close()
}
