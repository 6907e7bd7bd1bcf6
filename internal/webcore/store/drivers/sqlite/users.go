package sqlite

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/altostack/webcore/internal/webcore/domain"
	"github.com/altostack/webcore/internal/webcore/store"
)

type usersRepo struct {
	ext sqlx.ExtContext
}

func (r *usersRepo) CreateUser(ctx context.Context, email, passwordHash string) (domain.User, error) {
	now := time.Now().UTC()
	res, err := r.ext.ExecContext(ctx, `
		INSERT INTO users (email, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?)`,
		email, passwordHash, now, now,
	)
	if err != nil {
		return domain.User{}, mapConflict(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.User{}, err
	}
	return r.GetUserByID(ctx, id)
}

func (r *usersRepo) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	var row userRow
	err := sqlx.GetContext(ctx, r.ext, &row, `SELECT * FROM users WHERE id = ?`, id)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return mapUser(row), nil
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	var row userRow
	err := sqlx.GetContext(ctx, r.ext, &row, `SELECT * FROM users WHERE email = ?`, email)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return mapUser(row), nil
}

func (r *usersRepo) UpdateNames(ctx context.Context, id int64, firstName, lastName string) error {
	_, err := r.ext.ExecContext(ctx, `
		UPDATE users SET first_name = ?, last_name = ?, updated_at = ? WHERE id = ?`,
		firstName, lastName, time.Now().UTC(), id,
	)
	return err
}

func (r *usersRepo) MarkEmailVerified(ctx context.Context, id int64) error {
	_, err := r.ext.ExecContext(ctx, `
		UPDATE users SET is_verified_email = 1, updated_at = ?
		WHERE id = ? AND is_verified_email = 0`,
		time.Now().UTC(), id,
	)
	return err
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, id int64, newHash string) error {
	_, err := r.ext.ExecContext(ctx, `
		UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		newHash, time.Now().UTC(), id,
	)
	return err
}

func (r *usersRepo) SetPendingEmail(ctx context.Context, id int64, email string) error {
	pending := any(email)
	if email == "" {
		pending = nil
	}
	_, err := r.ext.ExecContext(ctx, `
		UPDATE users SET pending_email = ?, updated_at = ? WHERE id = ?`,
		pending, time.Now().UTC(), id,
	)
	return err
}

func (r *usersRepo) CommitPendingEmail(ctx context.Context, id int64) error {
	res, err := r.ext.ExecContext(ctx, `
		UPDATE users SET email = pending_email, pending_email = NULL, updated_at = ?
		WHERE id = ? AND pending_email IS NOT NULL`,
		time.Now().UTC(), id,
	)
	if err != nil {
		return mapConflict(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *usersRepo) SetLastLogin(ctx context.Context, id int64, at time.Time) error {
	_, err := r.ext.ExecContext(ctx, `
		UPDATE users SET last_login_at = ?, updated_at = ? WHERE id = ?`,
		at.UTC(), time.Now().UTC(), id,
	)
	return err
}

func (r *usersRepo) RevokeSessions(ctx context.Context, id int64, at time.Time) error {
	_, err := r.ext.ExecContext(ctx, `
		UPDATE users SET sessions_revoked_at = ?, updated_at = ? WHERE id = ?`,
		at.UTC(), time.Now().UTC(), id,
	)
	return err
}
