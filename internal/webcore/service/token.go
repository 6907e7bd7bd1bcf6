package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/altostack/webcore/internal/webcore/domain"
	"github.com/altostack/webcore/internal/webcore/store"
	"github.com/altostack/webcore/pkg/jwtx"
	"github.com/altostack/webcore/pkg/otpx"
	"github.com/altostack/webcore/pkg/slogx"
)

var (
	ErrOTPInvalid         = errors.New("invalid_otp")
	ErrOTPExpired         = errors.New("expired_otp")
	ErrOTPPurposeMismatch = errors.New("otp_purpose_mismatch")
	ErrTokenInvalid       = errors.New("invalid_token")
	ErrTokenExpired       = errors.New("expired_token")
	ErrTokenRevoked       = errors.New("revoked_token")
)

// TokenService issues and verifies the two short-lived credentials the
// accounts flows rely on: purpose-bound OTP codes delivered over email, and
// HS256 access tokens.
//
// OTP codes are HOTP values derived from a per-(purpose, subject) secret with
// the issuance timestamp as the counter. Only the most recent issuance per
// (purpose, email) is stored, so re-issuing a code invalidates the previous
// one. A code that verifies successfully is consumed and cannot be replayed.
type TokenService struct {
	Store     store.Store
	Codec     *jwtx.Codec
	OTPSecret []byte
	OTPTTL    time.Duration
	AccessTTL time.Duration

	// Now allows tests to control time. Defaults to time.Now.
	Now func() time.Time
}

func (s *TokenService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// IssueOTP records a fresh issuance for (purpose, email) and returns the
// matching code. Any previously issued code for the same pair stops
// verifying.
func (s *TokenService) IssueOTP(ctx context.Context, purpose domain.Purpose, email string) (string, error) {
	issuedAt := s.now().UTC().Truncate(time.Second)

	issue := domain.OTPIssue{
		Purpose:  purpose,
		Email:    email,
		IssuedAt: issuedAt,
	}
	if err := s.Store.OTPIssues().UpsertIssue(ctx, issue); err != nil {
		return "", err
	}

	secret := otpx.Secret(s.OTPSecret, string(purpose), email)
	code, err := otpx.Code(secret, issuedAt)
	if err != nil {
		return "", err
	}

	slogx.FromContext(ctx).Debug("otp issued", "purpose", purpose, "email", email)
	return code, nil
}

// VerifyOTP checks the code against the latest issuance for (purpose, email)
// and consumes it on success.
//
// A code that was issued for a different purpose on the same email reports
// ErrOTPPurposeMismatch rather than ErrOTPInvalid, so callers can surface the
// distinction. Expiry is only reported for a code that actually matches.
func (s *TokenService) VerifyOTP(ctx context.Context, purpose domain.Purpose, email, code string) error {
	issue, err := s.Store.OTPIssues().GetIssue(ctx, purpose, email)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}

	if err == nil {
		secret := otpx.Secret(s.OTPSecret, string(purpose), email)
		if otpx.Matches(secret, code, issue.IssuedAt) {
			if s.now().After(issue.IssuedAt.Add(s.OTPTTL)) {
				return ErrOTPExpired
			}
			return s.Store.OTPIssues().DeleteIssue(ctx, purpose, email)
		}
	}

	// The code did not match this purpose. If it matches an outstanding
	// issuance for another purpose on the same email, report the mismatch.
	others, err := s.Store.OTPIssues().ListIssuesByEmail(ctx, email)
	if err != nil {
		return err
	}
	for _, other := range others {
		if other.Purpose == purpose {
			continue
		}
		secret := otpx.Secret(s.OTPSecret, string(other.Purpose), email)
		if otpx.Matches(secret, code, other.IssuedAt) {
			return ErrOTPPurposeMismatch
		}
	}

	return ErrOTPInvalid
}

// IssueAccessToken signs a bearer token for the given user.
//
// The iat claim has second precision, so a token issued in the same second
// as the user's revocation watermark would fail the watermark check. Nudging
// iat just past the watermark keeps a login immediately after a password
// change valid.
func (s *TokenService) IssueAccessToken(ctx context.Context, user domain.User) (string, error) {
	now := s.now()
	issued := now
	if user.SessionsRevokedAt != nil && !issued.After(user.SessionsRevokedAt.Add(time.Second)) {
		issued = user.SessionsRevokedAt.Add(time.Second)
	}
	claims := jwtx.NewAccessClaims(strconv.FormatInt(user.ID, 10), s.Codec.Issuer(), s.AccessTTL, issued)
	claims.NotBefore = jwt.NewNumericDate(now)
	return s.Codec.Sign(claims)
}

// VerifyAccessToken validates the token signature and lifetime, then checks
// both revocation paths: the per-token denylist written by logout, and the
// per-user watermark written by password changes. Returns the user ID the
// token was issued for.
func (s *TokenService) VerifyAccessToken(ctx context.Context, token string) (int64, error) {
	claims, err := s.Codec.Verify(token)
	if err != nil {
		switch {
		case errors.Is(err, jwtx.ErrExpired):
			return 0, ErrTokenExpired
		default:
			return 0, ErrTokenInvalid
		}
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, ErrTokenInvalid
	}

	revoked, err := s.Store.RevokedTokens().IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		return 0, err
	}
	if revoked {
		return 0, ErrTokenRevoked
	}

	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, ErrTokenInvalid
		}
		return 0, err
	}
	if user.SessionsRevokedAt != nil && claims.IssuedAt != nil &&
		!claims.IssuedAt.Time.After(*user.SessionsRevokedAt) {
		return 0, ErrTokenRevoked
	}

	return userID, nil
}

// RevokeAccessToken places the token on the denylist so it stops verifying
// before its natural expiry. Revoking an already expired token is a no-op.
func (s *TokenService) RevokeAccessToken(ctx context.Context, token string) error {
	claims, err := s.Codec.Verify(token)
	if err != nil {
		if errors.Is(err, jwtx.ErrExpired) {
			return nil
		}
		return ErrTokenInvalid
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return ErrTokenInvalid
	}

	record := domain.RevokedToken{
		JTI:       claims.ID,
		UserID:    userID,
		ExpiresAt: claims.ExpiresAt.Time,
		RevokedAt: s.now().UTC(),
	}
	return s.Store.RevokedTokens().RevokeToken(ctx, record)
}
