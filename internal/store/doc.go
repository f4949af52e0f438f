// Package store provides persistent storage for jobtrack using SQLite.
//
// # Architecture
//
// The store package uses an interface-driven architecture with three
// specialized interfaces:
//
//   - UserStore: Registered accounts with bcrypt password hashes
//   - SessionStore: Browser sessions, CSRF secrets, and the flash queue
//   - JobStore: Job records, owner-scoped in SQL
//
// SQLiteStore implements all interfaces in a single struct, allowing easy
// composition while maintaining clear interface boundaries.
//
// # Sessions
//
// Sessions have a fixed TTL counted from creation (not sliding). Expired
// rows answer GetSession with ErrSessionNotFound exactly as if they never
// existed; SweepExpiredSessions deletes them in the background. The flash
// queue lives on the session row as JSON and is drained atomically.
//
// Concurrent requests sharing a session ID race with last-write-wins
// semantics. There is no optimistic locking; this is an accepted
// consistency limitation.
//
// # SQLite Configuration
//
// The store uses SQLite with WAL mode for concurrent reads:
//
//	PRAGMA journal_mode=WAL;
//	PRAGMA foreign_keys=ON;
//
// Use NewSQLiteStore(":memory:") for tests that need a throwaway database.
//
// # Error Handling
//
// Common errors:
//
//   - ErrNotFound: Requested entity does not exist
//   - ErrEmailExists: Registration with an already-used email
//   - ErrSessionNotFound: Session missing or expired
//   - ErrTimeout: Context deadline exceeded during a store call
//
// All methods accept context.Context for cancellation support.
package store
