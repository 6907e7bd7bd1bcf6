package service

import (
	"context"
	"fmt"
	"log/slog"

	mail "github.com/wneessen/go-mail"

	"github.com/altostack/webcore/internal/webcore/domain"
)

// Mailer delivers OTP codes to account holders. Implementations must treat
// delivery as best-effort; the account flows never surface mail failures to
// the client.
type Mailer interface {
	Send(ctx context.Context, purpose domain.Purpose, recipient, code string) error
}

func mailSubject(purpose domain.Purpose) string {
	switch purpose {
	case domain.PurposeRegister:
		return "Verify your account"
	case domain.PurposeResetPassword:
		return "Reset your password"
	case domain.PurposeChangeEmail:
		return "Confirm your new email address"
	default:
		return "Your verification code"
	}
}

func mailBody(purpose domain.Purpose, code string) string {
	switch purpose {
	case domain.PurposeRegister:
		return fmt.Sprintf("Your account verification code is %s.\n\nIf you did not create an account, ignore this message.\n", code)
	case domain.PurposeResetPassword:
		return fmt.Sprintf("Your password reset code is %s.\n\nIf you did not request a reset, ignore this message.\n", code)
	case domain.PurposeChangeEmail:
		return fmt.Sprintf("Your email change code is %s.\n\nIf you did not request this change, ignore this message.\n", code)
	default:
		return fmt.Sprintf("Your verification code is %s.\n", code)
	}
}

// SMTPMailer sends OTP mail through an SMTP relay.
type SMTPMailer struct {
	client *mail.Client
	from   string
}

func NewSMTPMailer(host string, port int, username, password, from string) (*SMTPMailer, error) {
	client, err := mail.NewClient(host,
		mail.WithPort(port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(username),
		mail.WithPassword(password),
	)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &SMTPMailer{client: client, from: from}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, purpose domain.Purpose, recipient, code string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return err
	}
	if err := msg.To(recipient); err != nil {
		return err
	}
	msg.Subject(mailSubject(purpose))
	msg.SetBodyString(mail.TypeTextPlain, mailBody(purpose, code))

	return m.client.DialAndSendWithContext(ctx, msg)
}

// LogMailer writes the OTP to the service log instead of sending mail. Used
// in development so flows can be exercised without an SMTP relay.
type LogMailer struct {
	Logger *slog.Logger
}

func (m *LogMailer) Send(ctx context.Context, purpose domain.Purpose, recipient, code string) error {
	m.Logger.Info("otp mail (local delivery)",
		"purpose", purpose,
		"recipient", recipient,
		"code", code,
	)
	return nil
}
