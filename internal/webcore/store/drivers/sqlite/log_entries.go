package sqlite

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/altostack/webcore/internal/webcore/domain"
)

type logEntriesRepo struct {
	ext sqlx.ExtContext
}

func (r *logEntriesRepo) InsertLogEntries(ctx context.Context, entries []domain.LogEntry) error {
	for _, e := range entries {
		_, err := r.ext.ExecContext(ctx, `
			INSERT INTO log_entries (ip, date, request, status, size)
			VALUES (?, ?, ?, ?, ?)`,
			e.IP, e.Date.UTC(), e.Request, e.Status, e.Size,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *logEntriesRepo) ListLogEntries(ctx context.Context, skip, limit int) ([]domain.LogEntry, error) {
	var rows []logEntryRow
	err := sqlx.SelectContext(ctx, r.ext, &rows, `
		SELECT * FROM log_entries ORDER BY id LIMIT ? OFFSET ?`,
		limit, skip,
	)
	if err != nil {
		return nil, err
	}
	return mapLogEntries(rows), nil
}

func (r *logEntriesRepo) ListLogEntriesByIP(ctx context.Context, ip string) ([]domain.LogEntry, error) {
	var rows []logEntryRow
	err := sqlx.SelectContext(ctx, r.ext, &rows, `
		SELECT * FROM log_entries WHERE ip = ? ORDER BY id`, ip)
	if err != nil {
		return nil, err
	}
	return mapLogEntries(rows), nil
}

func (r *logEntriesRepo) ListLogEntriesByDateRange(ctx context.Context, from, to time.Time) ([]domain.LogEntry, error) {
	var rows []logEntryRow
	err := sqlx.SelectContext(ctx, r.ext, &rows, `
		SELECT * FROM log_entries WHERE date >= ? AND date < ? ORDER BY id`,
		from.UTC(), to.UTC(),
	)
	if err != nil {
		return nil, err
	}
	return mapLogEntries(rows), nil
}

func (r *logEntriesRepo) CountLogEntries(ctx context.Context) (int64, error) {
	var count int64
	err := sqlx.GetContext(ctx, r.ext, &count, `SELECT COUNT(*) FROM log_entries`)
	return count, err
}
