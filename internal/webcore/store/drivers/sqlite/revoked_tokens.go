package sqlite

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/altostack/webcore/internal/webcore/domain"
)

type revokedTokensRepo struct {
	ext sqlx.ExtContext
}

func (r *revokedTokensRepo) RevokeToken(ctx context.Context, t domain.RevokedToken) error {
	_, err := r.ext.ExecContext(ctx, `
		INSERT INTO revoked_tokens (jti, user_id, expires_at, revoked_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (jti) DO NOTHING`,
		t.JTI, t.UserID, t.ExpiresAt.UTC(), t.RevokedAt.UTC(),
	)
	return err
}

func (r *revokedTokensRepo) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	var count int
	err := sqlx.GetContext(ctx, r.ext, &count, `
		SELECT COUNT(*) FROM revoked_tokens WHERE jti = ?`, jti)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *revokedTokensRepo) DeleteExpiredRevocations(ctx context.Context, now time.Time) error {
	_, err := r.ext.ExecContext(ctx, `
		DELETE FROM revoked_tokens WHERE expires_at < ?`, now.UTC())
	return err
}
