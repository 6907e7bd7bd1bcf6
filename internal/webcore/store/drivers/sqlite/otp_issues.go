package sqlite

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/altostack/webcore/internal/webcore/domain"
)

type otpIssuesRepo struct {
	ext sqlx.ExtContext
}

func (r *otpIssuesRepo) UpsertIssue(ctx context.Context, issue domain.OTPIssue) error {
	_, err := r.ext.ExecContext(ctx, `
		INSERT INTO otp_issues (purpose, email, issued_at)
		VALUES (?, ?, ?)
		ON CONFLICT (purpose, email) DO UPDATE SET issued_at = excluded.issued_at`,
		string(issue.Purpose), issue.Email, issue.IssuedAt.UTC(),
	)
	return err
}

func (r *otpIssuesRepo) GetIssue(ctx context.Context, purpose domain.Purpose, email string) (domain.OTPIssue, error) {
	var row otpIssueRow
	err := sqlx.GetContext(ctx, r.ext, &row, `
		SELECT * FROM otp_issues WHERE purpose = ? AND email = ?`,
		string(purpose), email,
	)
	if err != nil {
		return domain.OTPIssue{}, mapNotFound(err)
	}
	return mapOTPIssue(row), nil
}

func (r *otpIssuesRepo) ListIssuesByEmail(ctx context.Context, email string) ([]domain.OTPIssue, error) {
	var rows []otpIssueRow
	err := sqlx.SelectContext(ctx, r.ext, &rows, `
		SELECT * FROM otp_issues WHERE email = ?`, email)
	if err != nil {
		return nil, err
	}
	out := make([]domain.OTPIssue, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapOTPIssue(row))
	}
	return out, nil
}

func (r *otpIssuesRepo) DeleteIssue(ctx context.Context, purpose domain.Purpose, email string) error {
	_, err := r.ext.ExecContext(ctx, `
		DELETE FROM otp_issues WHERE purpose = ? AND email = ?`,
		string(purpose), email,
	)
	return err
}

func (r *otpIssuesRepo) DeleteStaleIssues(ctx context.Context, before time.Time) error {
	_, err := r.ext.ExecContext(ctx, `
		DELETE FROM otp_issues WHERE issued_at < ?`, before.UTC())
	return err
}
