// ABOUTME: Job record persistence methods for the SQLite store
// ABOUTME: Listing and destructive operations are owner-scoped in SQL

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CreateJob inserts a new job record.
func (s *SQLiteStore) CreateJob(ctx context.Context, job *Job) error {
	query := `
		INSERT INTO jobs (id, company, position, status, notes, user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		job.ID,
		job.Company,
		job.Position,
		job.Status,
		job.Notes,
		job.UserID,
		job.CreatedAt.UTC().Format(time.RFC3339),
		job.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return wrapErr("inserting job", err)
	}

	s.logger.Debug("created job", "id", job.ID, "user_id", job.UserID)
	return nil
}

// GetJob retrieves a job by ID. The caller is responsible for comparing
// the record's UserID against the current user before acting on it.
func (s *SQLiteStore) GetJob(ctx context.Context, id string) (*Job, error) {
	query := `
		SELECT id, company, position, status, notes, user_id, created_at, updated_at
		FROM jobs
		WHERE id = ?
	`

	return scanJob(s.db.QueryRowContext(ctx, query, id))
}

// ListJobsByUser returns all jobs owned by the given user, newest first.
// Ownership is a query filter, not a post-filter, so other users' records
// never leave the database.
func (s *SQLiteStore) ListJobsByUser(ctx context.Context, userID string) ([]*Job, error) {
	query := `
		SELECT id, company, position, status, notes, user_id, created_at, updated_at
		FROM jobs
		WHERE user_id = ?
		ORDER BY created_at DESC, id
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, wrapErr("listing jobs", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJobRow(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("listing jobs", err)
	}

	return jobs, nil
}

// UpdateJob updates a job's mutable fields. The WHERE clause includes the
// owner, so an update against someone else's record changes nothing and
// reports ErrNotFound.
func (s *SQLiteStore) UpdateJob(ctx context.Context, job *Job) error {
	query := `
		UPDATE jobs
		SET company = ?, position = ?, status = ?, notes = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		job.Company,
		job.Position,
		job.Status,
		job.Notes,
		time.Now().UTC().Format(time.RFC3339),
		job.ID,
		job.UserID,
	)
	if err != nil {
		return wrapErr("updating job", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return wrapErr("updating job", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteJob deletes a job owned by the given user.
func (s *SQLiteStore) DeleteJob(ctx context.Context, id, userID string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM jobs WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return wrapErr("deleting job", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return wrapErr("deleting job", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	s.logger.Debug("deleted job", "id", id, "user_id", userID)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row *sql.Row) (*Job, error) {
	job, err := scanJobRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return job, err
}

func scanJobRow(row rowScanner) (*Job, error) {
	var job Job
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&job.ID,
		&job.Company,
		&job.Position,
		&job.Status,
		&job.Notes,
		&job.UserID,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return nil, err
	}

	job.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	job.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	return &job, nil
}
