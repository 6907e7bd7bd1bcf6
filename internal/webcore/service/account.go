package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/altostack/webcore/internal/webcore/domain"
	"github.com/altostack/webcore/internal/webcore/store"
	"github.com/altostack/webcore/pkg/cryptox"
	"github.com/altostack/webcore/pkg/passwordx"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrAccountNotVerified = errors.New("account_not_verified")
	ErrEmailTaken         = errors.New("email_taken")
	ErrNoPendingEmail     = errors.New("no_pending_email")
)

// AccountService implements the account lifecycle: registration with email
// verification, login, and the credential-change flows. Each flow that needs
// out-of-band confirmation goes through a purpose-bound OTP issued by the
// TokenService and delivered by the Mailer.
//
// Flows that touch unauthenticated email addresses are written to avoid
// account enumeration where the endpoint contract allows it: password reset
// requests succeed silently for unknown addresses, while registration and
// email change report address conflicts outright.
type AccountService struct {
	Store  store.Store
	Tokens *TokenService
	Mailer Mailer
	Policy passwordx.Policy
	Logger *slog.Logger

	Now func() time.Time
}

func (s *AccountService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// issueAndSend issues an OTP and mails it. Mail failures are logged and
// swallowed so a flaky relay cannot break the flow; the client can always
// request a resend.
func (s *AccountService) issueAndSend(ctx context.Context, purpose domain.Purpose, recipient, otpEmail string) error {
	code, err := s.Tokens.IssueOTP(ctx, purpose, otpEmail)
	if err != nil {
		return err
	}
	if err := s.Mailer.Send(ctx, purpose, recipient, code); err != nil {
		s.Logger.Error("failed to send otp mail", "purpose", purpose, "recipient", recipient, "error", err)
	}
	return nil
}

// Register creates an unverified account and mails a registration OTP.
//
// An address already held by a verified account reports ErrEmailTaken. An
// unverified account is treated as an abandoned registration: the password
// hash is replaced and a fresh OTP is sent, so the address cannot be squatted.
func (s *AccountService) Register(ctx context.Context, email, password string) (domain.User, error) {
	email = normalizeEmail(email)

	if err := s.Policy.Validate(password); err != nil {
		return domain.User{}, err
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, err
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		if user.IsVerifiedEmail {
			return domain.User{}, ErrEmailTaken
		}
		if err := s.Store.Users().UpdatePasswordHash(ctx, user.ID, hash); err != nil {
			return domain.User{}, err
		}
		user.PasswordHash = hash
	case errors.Is(err, store.ErrNotFound):
		user, err = s.Store.Users().CreateUser(ctx, email, hash)
		if err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return domain.User{}, ErrEmailTaken
			}
			return domain.User{}, err
		}
	default:
		return domain.User{}, err
	}

	if err := s.issueAndSend(ctx, domain.PurposeRegister, email, email); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// VerifyRegistration consumes a registration OTP, marks the account verified
// and returns a signed access token so the client is logged in immediately.
func (s *AccountService) VerifyRegistration(ctx context.Context, email, code string) (string, error) {
	email = normalizeEmail(email)

	if err := s.Tokens.VerifyOTP(ctx, domain.PurposeRegister, email, code); err != nil {
		return "", err
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrOTPInvalid
		}
		return "", err
	}

	if !user.IsVerifiedEmail {
		if err := s.Store.Users().MarkEmailVerified(ctx, user.ID); err != nil {
			return "", err
		}
	}

	return s.Tokens.IssueAccessToken(ctx, user)
}

// Login checks credentials and returns an access token. Unknown addresses and
// wrong passwords both report ErrInvalidCredentials; an unverified account
// with correct credentials reports ErrAccountNotVerified.
func (s *AccountService) Login(ctx context.Context, email, password string) (string, error) {
	email = normalizeEmail(email)

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if !user.IsVerifiedEmail {
		return "", ErrAccountNotVerified
	}

	if err := s.Store.Users().SetLastLogin(ctx, user.ID, s.now().UTC()); err != nil {
		return "", err
	}

	return s.Tokens.IssueAccessToken(ctx, user)
}

// Logout revokes the presented access token.
func (s *AccountService) Logout(ctx context.Context, token string) error {
	return s.Tokens.RevokeAccessToken(ctx, token)
}

// RequestPasswordReset mails a reset OTP. Unknown or unverified addresses
// succeed silently so the endpoint cannot be used to probe for accounts.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}
	if !user.IsVerifiedEmail {
		return nil
	}

	return s.issueAndSend(ctx, domain.PurposeResetPassword, email, email)
}

// VerifyPasswordReset consumes a reset OTP and installs the new password.
// All existing sessions are invalidated in the same transaction.
func (s *AccountService) VerifyPasswordReset(ctx context.Context, email, code, newPassword string) error {
	email = normalizeEmail(email)

	if err := s.Policy.Validate(newPassword); err != nil {
		return err
	}

	if err := s.Tokens.VerifyOTP(ctx, domain.PurposeResetPassword, email, code); err != nil {
		return err
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrOTPInvalid
		}
		return err
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return err
	}

	now := s.now().UTC()
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdatePasswordHash(ctx, user.ID, hash); err != nil {
			return err
		}
		return tx.Users().RevokeSessions(ctx, user.ID, now)
	})
}

// ChangePassword replaces the password of an authenticated user after
// re-checking the current one. All existing sessions are invalidated,
// including the one making the call.
func (s *AccountService) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	if err := s.Policy.Validate(newPassword); err != nil {
		return err
	}

	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := cryptox.VerifyPassword(currentPassword, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return ErrInvalidCredentials
		}
		return err
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return err
	}

	now := s.now().UTC()
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdatePasswordHash(ctx, userID, hash); err != nil {
			return err
		}
		return tx.Users().RevokeSessions(ctx, userID, now)
	})
}

// ChangeEmail records the requested address as pending and mails an OTP to
// it. The OTP is bound to the new address; the account's current address does
// not change until the code is verified.
func (s *AccountService) ChangeEmail(ctx context.Context, userID int64, newEmail string) error {
	newEmail = normalizeEmail(newEmail)

	if _, err := s.Store.Users().GetUserByEmail(ctx, newEmail); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	if err := s.Store.Users().SetPendingEmail(ctx, userID, newEmail); err != nil {
		return err
	}

	return s.issueAndSend(ctx, domain.PurposeChangeEmail, newEmail, newEmail)
}

// VerifyChangeEmail consumes the change-email OTP and commits the pending
// address. A race where another account claimed the address in the meantime
// reports ErrEmailTaken.
func (s *AccountService) VerifyChangeEmail(ctx context.Context, userID int64, code string) error {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.PendingEmail == "" {
		return ErrOTPInvalid
	}

	if err := s.Tokens.VerifyOTP(ctx, domain.PurposeChangeEmail, user.PendingEmail, code); err != nil {
		return err
	}

	if err := s.Store.Users().CommitPendingEmail(ctx, userID); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

// ResendOTP re-issues the OTP for an in-flight flow, invalidating the
// previous code.
//
//   - register: the address must belong to an unverified account.
//   - reset-password: behaves like RequestPasswordReset, silent on unknown
//     addresses.
//   - change-email: takes the account's primary address; the code is
//     re-issued against the stored pending address.
func (s *AccountService) ResendOTP(ctx context.Context, requestType, email string) error {
	purpose, err := domain.ParsePurpose(requestType)
	if err != nil {
		return err
	}
	email = normalizeEmail(email)

	switch purpose {
	case domain.PurposeRegister:
		user, err := s.Store.Users().GetUserByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrOTPInvalid
			}
			return err
		}
		if user.IsVerifiedEmail {
			return ErrEmailTaken
		}
		return s.issueAndSend(ctx, purpose, email, email)

	case domain.PurposeResetPassword:
		return s.RequestPasswordReset(ctx, email)

	case domain.PurposeChangeEmail:
		user, err := s.Store.Users().GetUserByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNoPendingEmail
			}
			return err
		}
		if user.PendingEmail == "" {
			return ErrNoPendingEmail
		}
		return s.issueAndSend(ctx, purpose, user.PendingEmail, user.PendingEmail)

	default:
		return domain.ErrUnknownPurpose
	}
}
