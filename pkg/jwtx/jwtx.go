// Package jwtx signs and verifies the HS256 access tokens used for session
// authentication. The signing secret comes from configuration; there is no
// key rotation, so a single symmetric codec is all the service needs.
package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/altostack/webcore/pkg/idx"
)

var (
	ErrInvalid = errors.New("jwtx: invalid token")
	ErrExpired = errors.New("jwtx: token expired")
)

// Claims are the access-token claims. Only registered claims are used: the
// subject carries the user id and jti identifies the token for revocation.
type Claims struct {
	jwt.RegisteredClaims
}

// NewAccessClaims builds claims for a fresh access token. The jti is a ULID
// so revocation records sort by issuance time.
func NewAccessClaims(subject, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        idx.New().String(),
		},
	}
}

// Codec signs and verifies tokens with a shared HMAC secret.
type Codec struct {
	secret []byte
	issuer string

	// TimeFunc overrides the clock used during verification. Nil means
	// time.Now; tests use it to step past expiry.
	TimeFunc func() time.Time
}

func NewCodec(secret []byte, issuer string) *Codec {
	return &Codec{secret: secret, issuer: issuer}
}

// Issuer returns the iss claim the codec signs with.
func (c *Codec) Issuer() string {
	return c.issuer
}

func (c *Codec) now() time.Time {
	if c.TimeFunc != nil {
		return c.TimeFunc()
	}
	return time.Now()
}

// Sign produces the compact serialization of claims.
func (c *Codec) Sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Verify parses and validates a compact token: signature, expiry, not-before
// and issuer. Expired-but-otherwise-valid tokens return ErrExpired so callers
// can distinguish them from garbage.
func (c *Codec) Verify(token string) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrExpired
		}
		return Claims{}, ErrInvalid
	}
	return claims, nil
}
