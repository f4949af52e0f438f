// ABOUTME: SQLite implementation of the store interfaces using modernc.org/sqlite
// ABOUTME: Provides user/session/job persistence with automatic schema creation

package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"database/sql"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements UserStore, SessionStore and JobStore using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

var (
	_ UserStore    = (*SQLiteStore)(nil)
	_ SessionStore = (*SQLiteStore)(nil)
	_ JobStore     = (*SQLiteStore)(nil)
)

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			name          TEXT NOT NULL,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at    TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS sessions (
			id          TEXT PRIMARY KEY,
			user_id     TEXT,
			csrf_secret TEXT NOT NULL DEFAULT '',
			secret_word TEXT NOT NULL DEFAULT '',
			flash       TEXT NOT NULL DEFAULT '[]',
			created_at  TEXT NOT NULL,
			expires_at  TEXT NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id)
		);

		CREATE INDEX IF NOT EXISTS idx_sessions_expires_at
			ON sessions(expires_at);

		CREATE TABLE IF NOT EXISTS jobs (
			id         TEXT PRIMARY KEY,
			company    TEXT NOT NULL,
			position   TEXT NOT NULL,
			status     TEXT NOT NULL DEFAULT 'pending',
			notes      TEXT NOT NULL DEFAULT '',
			user_id    TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id),
			CHECK (status IN ('pending', 'interview', 'declined'))
		);

		CREATE INDEX IF NOT EXISTS idx_jobs_user_id
			ON jobs(user_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the underlying database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SweepExpiredSessions deletes expired session rows on the given interval
// until the context is cancelled. Intended to run in its own goroutine.
func (s *SQLiteStore) SweepExpiredSessions(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.DeleteExpiredSessions(ctx); err != nil {
				s.logger.Error("session sweep failed", "error", err)
			}
		}
	}
}

// wrapErr wraps a storage error with its operation, surfacing context
// deadline failures as ErrTimeout so callers can tell slow storage apart
// from missing data.
func wrapErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, ErrTimeout)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// isUniqueConstraintError checks if an error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	// SQLite returns "UNIQUE constraint failed" in the error message
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") || strings.Contains(err.Error(), "unique constraint"))
}
