// Package passwordx implements password strength policy checks. Hashing lives
// in pkg/cryptox; this package only decides whether a plaintext password is
// acceptable.
package passwordx

import (
	"fmt"
	"strings"
	"unicode"
)

const specialChars = `!@#$%^&*()_+{}[]:;"'<>,.?/\|`

// Reason identifies which rule a password failed.
type Reason string

const (
	ReasonLength  Reason = "length"
	ReasonDigit   Reason = "digit"
	ReasonUpper   Reason = "uppercase"
	ReasonLower   Reason = "lowercase"
	ReasonSpecial Reason = "special"
)

// WeakPasswordError reports a single violated rule with a human-readable
// message suitable for returning to the client.
type WeakPasswordError struct {
	Reason  Reason
	Message string
}

func (e *WeakPasswordError) Error() string { return e.Message }

// Policy holds the togglable strength rules. The zero value rejects
// everything on length; use Default for sane settings.
type Policy struct {
	MinLength      int
	MaxLength      int
	RequireDigit   bool
	RequireUpper   bool
	RequireLower   bool
	RequireSpecial bool
}

// Default mirrors the registration policy: 8-24 characters, at least one
// digit, one uppercase and one lowercase letter. Special characters are
// optional.
func Default() Policy {
	return Policy{
		MinLength:    8,
		MaxLength:    24,
		RequireDigit: true,
		RequireUpper: true,
		RequireLower: true,
	}
}

// Validate checks password against every enabled rule and returns a
// *WeakPasswordError naming the first violated rule.
func (p Policy) Validate(password string) error {
	if len(password) < p.MinLength || len(password) > p.MaxLength {
		return &WeakPasswordError{
			Reason:  ReasonLength,
			Message: fmt.Sprintf("password must be between %d and %d characters", p.MinLength, p.MaxLength),
		}
	}
	if p.RequireDigit && !strings.ContainsFunc(password, unicode.IsDigit) {
		return &WeakPasswordError{
			Reason:  ReasonDigit,
			Message: "password must contain at least one digit (0-9)",
		}
	}
	if p.RequireUpper && !strings.ContainsFunc(password, unicode.IsUpper) {
		return &WeakPasswordError{
			Reason:  ReasonUpper,
			Message: "password must contain at least one uppercase letter (A-Z)",
		}
	}
	if p.RequireLower && !strings.ContainsFunc(password, unicode.IsLower) {
		return &WeakPasswordError{
			Reason:  ReasonLower,
			Message: "password must contain at least one lowercase letter (a-z)",
		}
	}
	if p.RequireSpecial && !strings.ContainsAny(password, specialChars) {
		return &WeakPasswordError{
			Reason:  ReasonSpecial,
			Message: "password must contain at least one special character",
		}
	}
	return nil
}
