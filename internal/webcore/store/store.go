package store

import (
	"context"
	"errors"
	"time"

	"github.com/altostack/webcore/internal/webcore/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable.
type Store interface {
	Users() Users
	OTPIssues() OTPIssues
	RevokedTokens() RevokedTokens
	LogEntries() LogEntries

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction: rolled back if fn errors,
	// committed otherwise. Prefer this over Tx directly.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// CreateUser inserts a new unverified user and returns it with the
	// assigned id. Duplicate emails fail with ErrAlreadyExists.
	CreateUser(ctx context.Context, email, passwordHash string) (domain.User, error)

	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id int64) (domain.User, error)

	// GetUserByEmail returns a user by its case-normalized email.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// UpdateNames mutates first/last name and bumps updated_at.
	UpdateNames(ctx context.Context, id int64, firstName, lastName string) error

	// MarkEmailVerified flips is_verified_email on; a no-op when already set.
	MarkEmailVerified(ctx context.Context, id int64) error

	// UpdatePasswordHash sets the password hash and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, id int64, newHash string) error

	// SetPendingEmail records the address a change-email flow must prove.
	// An empty email clears the pending state.
	SetPendingEmail(ctx context.Context, id int64, email string) error

	// CommitPendingEmail promotes pending_email to the primary email and
	// clears the pending state. Fails with ErrAlreadyExists if another user
	// claimed the address in the meantime, and ErrNotFound when nothing is
	// pending.
	CommitPendingEmail(ctx context.Context, id int64) error

	// SetLastLogin stamps last_login_at.
	SetLastLogin(ctx context.Context, id int64, at time.Time) error

	// RevokeSessions sets the sessions_revoked_at watermark.
	RevokeSessions(ctx context.Context, id int64, at time.Time) error
}

type OTPIssues interface {
	// UpsertIssue records the latest issuance for (purpose, email),
	// replacing any earlier one.
	UpsertIssue(ctx context.Context, issue domain.OTPIssue) error

	// GetIssue returns the outstanding issuance for (purpose, email).
	GetIssue(ctx context.Context, purpose domain.Purpose, email string) (domain.OTPIssue, error)

	// ListIssuesByEmail returns every outstanding issuance for an email,
	// used to detect a code redeemed under the wrong purpose.
	ListIssuesByEmail(ctx context.Context, email string) ([]domain.OTPIssue, error)

	// DeleteIssue removes an issuance after a successful verification.
	DeleteIssue(ctx context.Context, purpose domain.Purpose, email string) error

	// DeleteStaleIssues removes issuances older than the cutoff (housekeeping).
	DeleteStaleIssues(ctx context.Context, before time.Time) error
}

type RevokedTokens interface {
	// RevokeToken records a token revocation. Revoking twice is a no-op.
	RevokeToken(ctx context.Context, t domain.RevokedToken) error

	// IsTokenRevoked reports whether the jti has been revoked.
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)

	// DeleteExpiredRevocations prunes records whose token has expired anyway.
	DeleteExpiredRevocations(ctx context.Context, now time.Time) error
}

type LogEntries interface {
	// InsertLogEntries bulk-inserts parsed entries.
	InsertLogEntries(ctx context.Context, entries []domain.LogEntry) error

	// ListLogEntries returns entries ordered by id with skip/limit paging.
	ListLogEntries(ctx context.Context, skip, limit int) ([]domain.LogEntry, error)

	// ListLogEntriesByIP returns all entries recorded for an ip.
	ListLogEntriesByIP(ctx context.Context, ip string) ([]domain.LogEntry, error)

	// ListLogEntriesByDateRange returns entries with from <= date < to.
	ListLogEntriesByDateRange(ctx context.Context, from, to time.Time) ([]domain.LogEntry, error)

	// CountLogEntries returns the total number of stored entries.
	CountLogEntries(ctx context.Context) (int64, error)
}
