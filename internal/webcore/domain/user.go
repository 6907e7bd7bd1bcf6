package domain

import "time"

type User struct {
	ID              int64
	Email           string // case-normalized, unique
	PasswordHash    string // argon2id encoded
	FirstName       string
	LastName        string
	IsVerifiedEmail bool
	IsAdmin         bool

	// PendingEmail is set while a change-email flow is awaiting OTP
	// verification; the OTP proving control is bound to this address.
	PendingEmail string

	// SessionsRevokedAt is a watermark: any access token issued at or before
	// this instant is treated as revoked. Set on password reset/change.
	SessionsRevokedAt *time.Time

	CreatedAt   time.Time
	UpdatedAt   time.Time
	LastLoginAt *time.Time
}
