// ABOUTME: Store interface and data types for jobtrack persistence
// ABOUTME: Defines User, Session, Job structs and the store interfaces for database operations

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when trying to create a user with an existing email.
var ErrEmailExists = errors.New("email already registered")

// ErrSessionNotFound is returned when a session doesn't exist or is expired.
var ErrSessionNotFound = errors.New("session not found")

// ErrTimeout is returned when a store call exceeds its context deadline.
// Callers can distinguish slow storage from missing data with errors.Is.
var ErrTimeout = errors.New("store timeout")

// User represents a registered account.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string // bcrypt hash
	CreatedAt    time.Time
}

// Session represents a browser session. UserID is empty until logon.
// CSRFSecret is generated lazily the first time a token is issued and
// never leaves the server. SecretWord is arbitrary per-session state
// carried for the /secretWord page.
type Session struct {
	ID         string
	UserID     string
	CSRFSecret string
	SecretWord string
	Flash      []FlashMessage
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

// Flash message categories.
const (
	FlashInfo  = "info"
	FlashError = "error"
)

// FlashMessage is a one-shot message queued on a session and consumed
// by the next render that drains the queue.
type FlashMessage struct {
	Category string `json:"category"`
	Text     string `json:"text"`
}

// Job status values. The zero form defaults to pending.
const (
	JobStatusPending   = "pending"
	JobStatusInterview = "interview"
	JobStatusDeclined  = "declined"
)

// JobStatuses lists the valid status values in display order.
var JobStatuses = []string{JobStatusPending, JobStatusInterview, JobStatusDeclined}

// Job represents a tracked job application owned by a single user.
type Job struct {
	ID        string
	Company   string
	Position  string
	Status    string
	Notes     string // optional, rendered as markdown
	UserID    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserStore defines the interface for account persistence.
type UserStore interface {
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	CountUsers(ctx context.Context) (int, error)
}

// SessionStore defines the interface for session persistence.
//
// Two concurrent requests sharing one session race with last-write-wins
// semantics; there is no optimistic locking. This is an accepted
// consistency limitation of the design.
type SessionStore interface {
	CreateSession(ctx context.Context, session *Session) error
	GetSession(ctx context.Context, id string) (*Session, error)
	DeleteSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context) error

	// RotateSession moves a session to a fresh identifier, preserving its
	// state. Used after logon/registration to prevent session fixation.
	RotateSession(ctx context.Context, oldID, newID string) error

	SetSessionUser(ctx context.Context, id, userID string) error
	ClearSessionUser(ctx context.Context, id string) error
	SetSessionCSRFSecret(ctx context.Context, id, secret string) error
	SetSessionSecretWord(ctx context.Context, id, word string) error

	// PushFlash appends a message to the session's flash queue.
	// DrainFlash returns the ordered queue and atomically clears it;
	// draining an empty queue returns nil.
	PushFlash(ctx context.Context, id string, msg FlashMessage) error
	DrainFlash(ctx context.Context, id string) ([]FlashMessage, error)
}

// JobStore defines the interface for job persistence. Reads and writes on
// existing records are owner-scoped in SQL, never post-filtered.
type JobStore interface {
	CreateJob(ctx context.Context, job *Job) error
	GetJob(ctx context.Context, id string) (*Job, error)
	ListJobsByUser(ctx context.Context, userID string) ([]*Job, error)
	UpdateJob(ctx context.Context, job *Job) error
	DeleteJob(ctx context.Context, id, userID string) error
}
