package httpx

import "context"

type ctxKey string

const (
	// CtxKeyUserID holds the authenticated user's id (int64).
	CtxKeyUserID ctxKey = "user_id"
	// CtxKeyTokenRaw holds the bearer token the request authenticated with,
	// so logout can revoke the exact credential it was called with.
	CtxKeyTokenRaw ctxKey = "token_raw"
)

// UserIDFromContext returns the authenticated user id, or 0 when the request
// did not pass AuthnMiddleware.
func UserIDFromContext(ctx context.Context) int64 {
	if v, ok := ctx.Value(CtxKeyUserID).(int64); ok {
		return v
	}
	return 0
}

// RawTokenFromContext returns the bearer token for the current request.
func RawTokenFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyTokenRaw).(string); ok {
		return v
	}
	return ""
}
