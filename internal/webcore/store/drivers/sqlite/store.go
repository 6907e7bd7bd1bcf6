package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/altostack/webcore/internal/webcore/domain"
	"github.com/altostack/webcore/internal/webcore/store"
)

type Store struct {
	db  *sqlx.DB
	dsn string
}

func NewStore(dsn string) (*Store, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// Enforce FKs
	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, dsn: dsn}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return newTx(tx), nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	// Rollback is safe to call after commit; it covers panics and early returns.
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) Users() store.Users                 { return &usersRepo{ext: s.db} }
func (s *Store) OTPIssues() store.OTPIssues         { return &otpIssuesRepo{ext: s.db} }
func (s *Store) RevokedTokens() store.RevokedTokens { return &revokedTokensRepo{ext: s.db} }
func (s *Store) LogEntries() store.LogEntries       { return &logEntriesRepo{ext: s.db} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// mapConflict translates sqlite unique-constraint violations. The modernc
// driver only exposes them via the message text.
func mapConflict(err error) error {
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return store.ErrAlreadyExists
	}
	return err
}

func mapNullTimePtr(nt sql.NullTime) *time.Time {
	if nt.Valid {
		val := nt.Time
		return &val
	}
	return nil
}

func mapNullString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

type userRow struct {
	ID                int64          `db:"id"`
	Email             string         `db:"email"`
	PasswordHash      string         `db:"password_hash"`
	FirstName         string         `db:"first_name"`
	LastName          string         `db:"last_name"`
	IsVerifiedEmail   bool           `db:"is_verified_email"`
	IsAdmin           bool           `db:"is_admin"`
	PendingEmail      sql.NullString `db:"pending_email"`
	SessionsRevokedAt sql.NullTime   `db:"sessions_revoked_at"`
	CreatedAt         time.Time      `db:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at"`
	LastLoginAt       sql.NullTime   `db:"last_login_at"`
}

func mapUser(row userRow) domain.User {
	return domain.User{
		ID:                row.ID,
		Email:             row.Email,
		PasswordHash:      row.PasswordHash,
		FirstName:         row.FirstName,
		LastName:          row.LastName,
		IsVerifiedEmail:   row.IsVerifiedEmail,
		IsAdmin:           row.IsAdmin,
		PendingEmail:      mapNullString(row.PendingEmail),
		SessionsRevokedAt: mapNullTimePtr(row.SessionsRevokedAt),
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
		LastLoginAt:       mapNullTimePtr(row.LastLoginAt),
	}
}

type otpIssueRow struct {
	Purpose  string    `db:"purpose"`
	Email    string    `db:"email"`
	IssuedAt time.Time `db:"issued_at"`
}

func mapOTPIssue(row otpIssueRow) domain.OTPIssue {
	return domain.OTPIssue{
		Purpose:  domain.Purpose(row.Purpose),
		Email:    row.Email,
		IssuedAt: row.IssuedAt,
	}
}

type logEntryRow struct {
	ID      int64     `db:"id"`
	IP      string    `db:"ip"`
	Date    time.Time `db:"date"`
	Request string    `db:"request"`
	Status  int       `db:"status"`
	Size    int64     `db:"size"`
}

func mapLogEntry(row logEntryRow) domain.LogEntry {
	return domain.LogEntry{
		ID:      row.ID,
		IP:      row.IP,
		Date:    row.Date,
		Request: row.Request,
		Status:  row.Status,
		Size:    row.Size,
	}
}

func mapLogEntries(rows []logEntryRow) []domain.LogEntry {
	out := make([]domain.LogEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapLogEntry(row))
	}
	return out
}
