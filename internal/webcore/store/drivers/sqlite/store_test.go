package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/altostack/webcore/internal/webcore/domain"
	"github.com/altostack/webcore/internal/webcore/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func TestUsersRepo(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	user, err := s.Users().CreateUser(ctx, "alice@example.com", "argon2:hash")
	require.NoError(t, err)
	require.NotZero(t, user.ID)
	require.Equal(t, "alice@example.com", user.Email)
	require.False(t, user.IsVerifiedEmail)

	t.Run("duplicate email conflicts", func(t *testing.T) {
		_, err := s.Users().CreateUser(ctx, "alice@example.com", "other")
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("lookup by id and email", func(t *testing.T) {
		byID, err := s.Users().GetUserByID(ctx, user.ID)
		require.NoError(t, err)
		require.Equal(t, user.Email, byID.Email)

		byEmail, err := s.Users().GetUserByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		require.Equal(t, user.ID, byEmail.ID)

		_, err = s.Users().GetUserByEmail(ctx, "nobody@example.com")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("mark verified", func(t *testing.T) {
		require.NoError(t, s.Users().MarkEmailVerified(ctx, user.ID))

		got, err := s.Users().GetUserByID(ctx, user.ID)
		require.NoError(t, err)
		require.True(t, got.IsVerifiedEmail)
	})

	t.Run("update names", func(t *testing.T) {
		require.NoError(t, s.Users().UpdateNames(ctx, user.ID, "Alice", "Smith"))

		got, err := s.Users().GetUserByID(ctx, user.ID)
		require.NoError(t, err)
		require.Equal(t, "Alice", got.FirstName)
		require.Equal(t, "Smith", got.LastName)
	})

	t.Run("session revocation watermark", func(t *testing.T) {
		at := time.Now().UTC().Truncate(time.Second)
		require.NoError(t, s.Users().RevokeSessions(ctx, user.ID, at))

		got, err := s.Users().GetUserByID(ctx, user.ID)
		require.NoError(t, err)
		require.NotNil(t, got.SessionsRevokedAt)
		require.True(t, got.SessionsRevokedAt.Equal(at))
	})
}

func TestUsersRepoPendingEmail(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	user, err := s.Users().CreateUser(ctx, "bob@example.com", "hash")
	require.NoError(t, err)

	t.Run("commit without pending fails", func(t *testing.T) {
		err := s.Users().CommitPendingEmail(ctx, user.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("set and commit", func(t *testing.T) {
		require.NoError(t, s.Users().SetPendingEmail(ctx, user.ID, "bob2@example.com"))

		got, err := s.Users().GetUserByID(ctx, user.ID)
		require.NoError(t, err)
		require.Equal(t, "bob2@example.com", got.PendingEmail)

		require.NoError(t, s.Users().CommitPendingEmail(ctx, user.ID))

		got, err = s.Users().GetUserByID(ctx, user.ID)
		require.NoError(t, err)
		require.Equal(t, "bob2@example.com", got.Email)
		require.Empty(t, got.PendingEmail)
	})

	t.Run("commit into a claimed address conflicts", func(t *testing.T) {
		_, err := s.Users().CreateUser(ctx, "carol@example.com", "hash")
		require.NoError(t, err)

		require.NoError(t, s.Users().SetPendingEmail(ctx, user.ID, "carol@example.com"))
		err = s.Users().CommitPendingEmail(ctx, user.ID)
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("empty clears pending", func(t *testing.T) {
		require.NoError(t, s.Users().SetPendingEmail(ctx, user.ID, ""))

		got, err := s.Users().GetUserByID(ctx, user.ID)
		require.NoError(t, err)
		require.Empty(t, got.PendingEmail)
	})
}

func TestOTPIssuesRepo(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, s.OTPIssues().UpsertIssue(ctx, domain.OTPIssue{
		Purpose:  domain.PurposeRegister,
		Email:    "alice@example.com",
		IssuedAt: first,
	}))

	t.Run("upsert replaces issued_at", func(t *testing.T) {
		second := first.Add(time.Minute)
		require.NoError(t, s.OTPIssues().UpsertIssue(ctx, domain.OTPIssue{
			Purpose:  domain.PurposeRegister,
			Email:    "alice@example.com",
			IssuedAt: second,
		}))

		issue, err := s.OTPIssues().GetIssue(ctx, domain.PurposeRegister, "alice@example.com")
		require.NoError(t, err)
		require.True(t, issue.IssuedAt.Equal(second))
	})

	t.Run("list by email spans purposes", func(t *testing.T) {
		require.NoError(t, s.OTPIssues().UpsertIssue(ctx, domain.OTPIssue{
			Purpose:  domain.PurposeResetPassword,
			Email:    "alice@example.com",
			IssuedAt: first,
		}))

		issues, err := s.OTPIssues().ListIssuesByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		require.Len(t, issues, 2)
	})

	t.Run("delete issue", func(t *testing.T) {
		require.NoError(t, s.OTPIssues().DeleteIssue(ctx, domain.PurposeResetPassword, "alice@example.com"))

		_, err := s.OTPIssues().GetIssue(ctx, domain.PurposeResetPassword, "alice@example.com")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("delete stale issues", func(t *testing.T) {
		require.NoError(t, s.OTPIssues().DeleteStaleIssues(ctx, time.Now().UTC().Add(time.Hour)))

		_, err := s.OTPIssues().GetIssue(ctx, domain.PurposeRegister, "alice@example.com")
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestRevokedTokensRepo(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	user, err := s.Users().CreateUser(ctx, "alice@example.com", "hash")
	require.NoError(t, err)

	now := time.Now().UTC()
	require.NoError(t, s.RevokedTokens().RevokeToken(ctx, domain.RevokedToken{
		JTI:       "token-1",
		UserID:    user.ID,
		ExpiresAt: now.Add(time.Hour),
		RevokedAt: now,
	}))

	revoked, err := s.RevokedTokens().IsTokenRevoked(ctx, "token-1")
	require.NoError(t, err)
	require.True(t, revoked)

	revoked, err = s.RevokedTokens().IsTokenRevoked(ctx, "token-2")
	require.NoError(t, err)
	require.False(t, revoked)

	t.Run("revoking twice is a no-op", func(t *testing.T) {
		require.NoError(t, s.RevokedTokens().RevokeToken(ctx, domain.RevokedToken{
			JTI:       "token-1",
			UserID:    user.ID,
			ExpiresAt: now.Add(time.Hour),
			RevokedAt: now,
		}))
	})

	t.Run("expired revocations are pruned", func(t *testing.T) {
		require.NoError(t, s.RevokedTokens().DeleteExpiredRevocations(ctx, now.Add(2*time.Hour)))

		revoked, err := s.RevokedTokens().IsTokenRevoked(ctx, "token-1")
		require.NoError(t, err)
		require.False(t, revoked)
	})
}

func TestLogEntriesRepo(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	base := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	entries := []domain.LogEntry{
		{IP: "10.0.0.1", Date: base, Request: "GET /index.html HTTP/1.1", Status: 200, Size: 512},
		{IP: "10.0.0.2", Date: base.Add(time.Hour), Request: "POST /login HTTP/1.1", Status: 401, Size: 128},
		{IP: "10.0.0.1", Date: base.Add(25 * time.Hour), Request: "GET /about.html HTTP/1.1", Status: 200, Size: 2048},
	}
	require.NoError(t, s.LogEntries().InsertLogEntries(ctx, entries))

	t.Run("count", func(t *testing.T) {
		count, err := s.LogEntries().CountLogEntries(ctx)
		require.NoError(t, err)
		require.EqualValues(t, 3, count)
	})

	t.Run("pagination", func(t *testing.T) {
		page, err := s.LogEntries().ListLogEntries(ctx, 1, 1)
		require.NoError(t, err)
		require.Len(t, page, 1)
		require.Equal(t, "10.0.0.2", page[0].IP)
	})

	t.Run("filter by ip", func(t *testing.T) {
		got, err := s.LogEntries().ListLogEntriesByIP(ctx, "10.0.0.1")
		require.NoError(t, err)
		require.Len(t, got, 2)
	})

	t.Run("date range is half-open", func(t *testing.T) {
		got, err := s.LogEntries().ListLogEntriesByDateRange(ctx, base, base.Add(24*time.Hour))
		require.NoError(t, err)
		require.Len(t, got, 2)

		got, err = s.LogEntries().ListLogEntriesByDateRange(ctx, base, base.Add(time.Hour))
		require.NoError(t, err)
		require.Len(t, got, 1)
	})
}

func TestWithTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	sentinel := store.ErrAlreadyExists
	err := s.WithTx(ctx, func(tx store.Tx) error {
		_, err := tx.Users().CreateUser(ctx, "tx@example.com", "hash")
		require.NoError(t, err)
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	_, err = s.Users().GetUserByEmail(ctx, "tx@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)
}
