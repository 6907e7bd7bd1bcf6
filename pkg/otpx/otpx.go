// Package otpx derives short one-time codes for email verification flows.
//
// A code is an HOTP value whose secret is bound to a (purpose, subject) pair
// and whose counter is the issuance time in unix seconds. The same inputs at
// different times therefore yield different codes, and a code can only be
// re-derived by whoever knows the server key and the recorded issuance time.
package otpx

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base32"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
)

// Secret derives the base32-encoded HOTP secret for a (purpose, subject)
// pair using HMAC-SHA256 over the server key. A NUL byte separates the two
// inputs so "ab"+"c" and "a"+"bc" cannot collide.
func Secret(key []byte, purpose, subject string) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(purpose))
	mac.Write([]byte{0})
	mac.Write([]byte(subject))
	return base32.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Code computes the 6-digit code for a secret at the given issuance time.
func Code(secret string, issuedAt time.Time) (string, error) {
	return hotp.GenerateCodeCustom(secret, uint64(issuedAt.Unix()), hotp.ValidateOpts{
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA256,
	})
}

// Matches reports whether code is the value derived from secret at issuedAt.
// The comparison is constant-time.
func Matches(secret, code string, issuedAt time.Time) bool {
	expected, err := Code(secret, issuedAt)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(code)) == 1
}
