package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/altostack/webcore/internal/webcore/domain"
	"github.com/altostack/webcore/internal/webcore/store"
	"github.com/altostack/webcore/internal/webcore/store/drivers/sqlite"
	"github.com/altostack/webcore/pkg/jwtx"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func newTestTokenService(t *testing.T, s store.Store) *TokenService {
	t.Helper()

	return &TokenService{
		Store:     s,
		Codec:     jwtx.NewCodec([]byte("test-signing-secret"), "webcore-test"),
		OTPSecret: []byte("test-otp-secret"),
		OTPTTL:    5 * time.Minute,
		AccessTTL: 30 * time.Minute,
	}
}

func TestOTPIssueAndVerify(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	tokens := newTestTokenService(t, s)

	t.Run("issued code verifies and is consumed", func(t *testing.T) {
		code, err := tokens.IssueOTP(ctx, domain.PurposeRegister, "alice@example.com")
		require.NoError(t, err)
		require.Len(t, code, 6)

		require.NoError(t, tokens.VerifyOTP(ctx, domain.PurposeRegister, "alice@example.com", code))

		err = tokens.VerifyOTP(ctx, domain.PurposeRegister, "alice@example.com", code)
		require.ErrorIs(t, err, ErrOTPInvalid)
	})

	t.Run("wrong code rejected", func(t *testing.T) {
		_, err := tokens.IssueOTP(ctx, domain.PurposeRegister, "bob@example.com")
		require.NoError(t, err)

		err = tokens.VerifyOTP(ctx, domain.PurposeRegister, "bob@example.com", "000000")
		require.ErrorIs(t, err, ErrOTPInvalid)
	})

	t.Run("purpose mismatch detected", func(t *testing.T) {
		code, err := tokens.IssueOTP(ctx, domain.PurposeResetPassword, "carol@example.com")
		require.NoError(t, err)

		err = tokens.VerifyOTP(ctx, domain.PurposeChangeEmail, "carol@example.com", code)
		require.ErrorIs(t, err, ErrOTPPurposeMismatch)

		// The original purpose still verifies.
		require.NoError(t, tokens.VerifyOTP(ctx, domain.PurposeResetPassword, "carol@example.com", code))
	})

	t.Run("re-issue invalidates the previous code", func(t *testing.T) {
		now := time.Now()
		tokens.Now = func() time.Time { return now }
		first, err := tokens.IssueOTP(ctx, domain.PurposeRegister, "dave@example.com")
		require.NoError(t, err)

		tokens.Now = func() time.Time { return now.Add(2 * time.Second) }
		second, err := tokens.IssueOTP(ctx, domain.PurposeRegister, "dave@example.com")
		require.NoError(t, err)
		require.NotEqual(t, first, second)

		err = tokens.VerifyOTP(ctx, domain.PurposeRegister, "dave@example.com", first)
		require.ErrorIs(t, err, ErrOTPInvalid)
		require.NoError(t, tokens.VerifyOTP(ctx, domain.PurposeRegister, "dave@example.com", second))
		tokens.Now = nil
	})
}

func TestOTPExpiry(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	tokens := newTestTokenService(t, s)

	issuedAt := time.Now()
	tokens.Now = func() time.Time { return issuedAt }

	code, err := tokens.IssueOTP(ctx, domain.PurposeRegister, "alice@example.com")
	require.NoError(t, err)

	t.Run("valid just before the ttl", func(t *testing.T) {
		tokens.Now = func() time.Time { return issuedAt.Add(tokens.OTPTTL - time.Second) }
		require.NoError(t, tokens.VerifyOTP(ctx, domain.PurposeRegister, "alice@example.com", code))
	})

	t.Run("expired just after the ttl", func(t *testing.T) {
		tokens.Now = func() time.Time { return issuedAt }
		code, err := tokens.IssueOTP(ctx, domain.PurposeResetPassword, "alice@example.com")
		require.NoError(t, err)

		tokens.Now = func() time.Time { return issuedAt.Add(tokens.OTPTTL + time.Second) }
		err = tokens.VerifyOTP(ctx, domain.PurposeResetPassword, "alice@example.com", code)
		require.ErrorIs(t, err, ErrOTPExpired)
	})
}

func TestAccessTokenLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	tokens := newTestTokenService(t, s)

	user, err := s.Users().CreateUser(ctx, "alice@example.com", "hash")
	require.NoError(t, err)

	token, err := tokens.IssueAccessToken(ctx, user)
	require.NoError(t, err)

	t.Run("verifies to the issuing user", func(t *testing.T) {
		userID, err := tokens.VerifyAccessToken(ctx, token)
		require.NoError(t, err)
		require.Equal(t, user.ID, userID)
	})

	t.Run("tampered token rejected", func(t *testing.T) {
		_, err := tokens.VerifyAccessToken(ctx, token+"x")
		require.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("expired token reported as expired", func(t *testing.T) {
		tokens.Codec.TimeFunc = func() time.Time { return time.Now().Add(tokens.AccessTTL + time.Minute) }
		_, err := tokens.VerifyAccessToken(ctx, token)
		require.ErrorIs(t, err, ErrTokenExpired)
		tokens.Codec.TimeFunc = nil
	})

	t.Run("revoked token rejected", func(t *testing.T) {
		require.NoError(t, tokens.RevokeAccessToken(ctx, token))

		_, err := tokens.VerifyAccessToken(ctx, token)
		require.ErrorIs(t, err, ErrTokenRevoked)
	})

	t.Run("session watermark revokes older tokens", func(t *testing.T) {
		issued := time.Now().Add(-time.Minute)
		tokens.Now = func() time.Time { return issued }
		old, err := tokens.IssueAccessToken(ctx, user)
		require.NoError(t, err)
		tokens.Now = nil

		require.NoError(t, s.Users().RevokeSessions(ctx, user.ID, time.Now().UTC()))

		_, err = tokens.VerifyAccessToken(ctx, old)
		require.ErrorIs(t, err, ErrTokenRevoked)
	})
}
