package domain

import (
	"errors"
	"time"
)

// Purpose scopes an OTP to one workflow so a code issued for one flow cannot
// be redeemed in another.
type Purpose string

const (
	PurposeRegister      Purpose = "register"
	PurposeResetPassword Purpose = "reset-password"
	PurposeChangeEmail   Purpose = "change-email"
)

var ErrUnknownPurpose = errors.New("domain: unknown otp purpose")

// ParsePurpose validates a client-supplied purpose string.
func ParsePurpose(s string) (Purpose, error) {
	switch p := Purpose(s); p {
	case PurposeRegister, PurposeResetPassword, PurposeChangeEmail:
		return p, nil
	default:
		return "", ErrUnknownPurpose
	}
}

// OTPIssue records the latest code issuance for a (purpose, email) pair.
// Only the code derived from this issuance time verifies; re-issuing
// replaces the record and invalidates any earlier code.
type OTPIssue struct {
	Purpose  Purpose
	Email    string
	IssuedAt time.Time
}
