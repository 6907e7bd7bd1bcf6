package domain

import "time"

// RevokedToken is a logout record for a single access token, kept until the
// token would have expired anyway and then pruned by housekeeping.
type RevokedToken struct {
	JTI       string
	UserID    int64
	ExpiresAt time.Time
	RevokedAt time.Time
}
