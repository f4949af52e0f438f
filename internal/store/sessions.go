// ABOUTME: Session persistence methods for the SQLite store
// ABOUTME: Covers fixed-TTL expiry, identifier rotation, and the flash queue

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// CreateSession inserts a new session row.
func (s *SQLiteStore) CreateSession(ctx context.Context, session *Session) error {
	flashJSON, err := json.Marshal(session.Flash)
	if err != nil {
		return fmt.Errorf("encoding flash queue: %w", err)
	}

	query := `
		INSERT INTO sessions (id, user_id, csrf_secret, secret_word, flash, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		session.ID,
		nullableString(session.UserID),
		session.CSRFSecret,
		session.SecretWord,
		string(flashJSON),
		session.CreatedAt.UTC().Format(time.RFC3339),
		session.ExpiresAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return wrapErr("inserting session", err)
	}

	return nil
}

// GetSession retrieves a session by ID. Expired sessions are reported as
// ErrSessionNotFound, indistinguishable from rows that never existed.
func (s *SQLiteStore) GetSession(ctx context.Context, id string) (*Session, error) {
	query := `
		SELECT id, user_id, csrf_secret, secret_word, flash, created_at, expires_at
		FROM sessions
		WHERE id = ? AND expires_at > ?
	`

	now := time.Now().UTC().Format(time.RFC3339)
	return scanSession(s.db.QueryRowContext(ctx, query, id, now))
}

// DeleteSession removes a session. Deleting a missing session is not an error.
func (s *SQLiteStore) DeleteSession(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id); err != nil {
		return wrapErr("deleting session", err)
	}
	return nil
}

// DeleteExpiredSessions removes all expired session rows.
func (s *SQLiteStore) DeleteExpiredSessions(ctx context.Context) error {
	now := time.Now().UTC().Format(time.RFC3339)
	result, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at <= ?", now)
	if err != nil {
		return wrapErr("deleting expired sessions", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected > 0 {
		s.logger.Debug("deleted expired sessions", "count", rowsAffected)
	}
	return nil
}

// RotateSession re-keys a session under a fresh identifier, carrying all of
// its state. The old identifier stops resolving as soon as the transaction
// commits, so a fixated pre-logon cookie is useless afterwards.
func (s *SQLiteStore) RotateSession(ctx context.Context, oldID, newID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapErr("beginning rotation", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, "UPDATE sessions SET id = ? WHERE id = ?", newID, oldID)
	if err != nil {
		return wrapErr("rotating session", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return wrapErr("rotating session", err)
	}
	if rowsAffected == 0 {
		return ErrSessionNotFound
	}

	return tx.Commit()
}

// SetSessionUser attaches an authenticated user to a session.
func (s *SQLiteStore) SetSessionUser(ctx context.Context, id, userID string) error {
	return s.updateSessionField(ctx, id, "user_id", userID)
}

// ClearSessionUser detaches the user from a session. Idempotent.
func (s *SQLiteStore) ClearSessionUser(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "UPDATE sessions SET user_id = NULL WHERE id = ?", id); err != nil {
		return wrapErr("clearing session user", err)
	}
	return nil
}

// SetSessionCSRFSecret stores the per-session CSRF secret.
func (s *SQLiteStore) SetSessionCSRFSecret(ctx context.Context, id, secret string) error {
	return s.updateSessionField(ctx, id, "csrf_secret", secret)
}

// SetSessionSecretWord stores the session's secret word.
func (s *SQLiteStore) SetSessionSecretWord(ctx context.Context, id, word string) error {
	return s.updateSessionField(ctx, id, "secret_word", word)
}

// PushFlash appends a message to the session's flash queue. The
// read-modify-write runs in a transaction so concurrent pushes on one
// session cannot drop each other's messages.
func (s *SQLiteStore) PushFlash(ctx context.Context, id string, msg FlashMessage) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapErr("beginning flash push", err)
	}
	defer tx.Rollback()

	var flashJSON string
	err = tx.QueryRowContext(ctx, "SELECT flash FROM sessions WHERE id = ?", id).Scan(&flashJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrSessionNotFound
	}
	if err != nil {
		return wrapErr("reading flash queue", err)
	}

	var queue []FlashMessage
	if err := json.Unmarshal([]byte(flashJSON), &queue); err != nil {
		return fmt.Errorf("decoding flash queue: %w", err)
	}
	queue = append(queue, msg)

	updated, err := json.Marshal(queue)
	if err != nil {
		return fmt.Errorf("encoding flash queue: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "UPDATE sessions SET flash = ? WHERE id = ?", string(updated), id); err != nil {
		return wrapErr("writing flash queue", err)
	}

	return tx.Commit()
}

// DrainFlash returns the session's flash queue in push order and clears it
// in the same transaction. Draining an empty queue returns nil, nil.
func (s *SQLiteStore) DrainFlash(ctx context.Context, id string) ([]FlashMessage, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, wrapErr("beginning flash drain", err)
	}
	defer tx.Rollback()

	var flashJSON string
	err = tx.QueryRowContext(ctx, "SELECT flash FROM sessions WHERE id = ?", id).Scan(&flashJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, wrapErr("reading flash queue", err)
	}

	var queue []FlashMessage
	if err := json.Unmarshal([]byte(flashJSON), &queue); err != nil {
		return nil, fmt.Errorf("decoding flash queue: %w", err)
	}

	if len(queue) == 0 {
		return nil, tx.Commit()
	}

	if _, err := tx.ExecContext(ctx, "UPDATE sessions SET flash = '[]' WHERE id = ?", id); err != nil {
		return nil, wrapErr("clearing flash queue", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, wrapErr("committing flash drain", err)
	}

	return queue, nil
}

func (s *SQLiteStore) updateSessionField(ctx context.Context, id, column, value string) error {
	query := fmt.Sprintf("UPDATE sessions SET %s = ? WHERE id = ?", column)

	result, err := s.db.ExecContext(ctx, query, value, id)
	if err != nil {
		return wrapErr("updating session "+column, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return wrapErr("updating session "+column, err)
	}
	if rowsAffected == 0 {
		return ErrSessionNotFound
	}

	return nil
}

func scanSession(row *sql.Row) (*Session, error) {
	var session Session
	var userID sql.NullString
	var flashJSON, createdAtStr, expiresAtStr string

	err := row.Scan(
		&session.ID,
		&userID,
		&session.CSRFSecret,
		&session.SecretWord,
		&flashJSON,
		&createdAtStr,
		&expiresAtStr,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, wrapErr("querying session", err)
	}

	session.UserID = userID.String

	if err := json.Unmarshal([]byte(flashJSON), &session.Flash); err != nil {
		return nil, fmt.Errorf("decoding flash queue: %w", err)
	}

	session.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	session.ExpiresAt, err = time.Parse(time.RFC3339, expiresAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing expires_at: %w", err)
	}

	return &session, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
