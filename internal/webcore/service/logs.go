package service

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/altostack/webcore/internal/webcore/domain"
	"github.com/altostack/webcore/internal/webcore/logparse"
	"github.com/altostack/webcore/internal/webcore/store"
)

// DefaultLogPageSize is the page size used when a list request does not
// specify a limit.
const DefaultLogPageSize = 10

// LogService ingests access-log files into the store and answers queries
// over the ingested entries.
type LogService struct {
	Store  store.Store
	Logger *slog.Logger
}

// ParseDir ingests every file in dir whose name ends with ext. Each file is
// loaded in its own transaction, so a failure mid-directory keeps already
// ingested files. Malformed lines are counted and skipped rather than
// aborting the file. Returns the total number of entries stored.
func (s *LogService) ParseDir(ctx context.Context, dir, ext string) (int, error) {
	names, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, entry := range names {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ext) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		n, skipped, err := s.parseFile(ctx, path)
		if err != nil {
			return total, err
		}
		total += n

		s.Logger.Info("ingested log file", "file", path, "entries", n, "skipped", skipped)
	}

	return total, nil
}

func (s *LogService) parseFile(ctx context.Context, path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	entries, skipped, err := logparse.ParseReader(f)
	if err != nil {
		return 0, 0, err
	}
	if len(entries) == 0 {
		return 0, skipped, nil
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		return tx.LogEntries().InsertLogEntries(ctx, entries)
	})
	if err != nil {
		return 0, 0, err
	}
	return len(entries), skipped, nil
}

// List returns a page of entries ordered by ingestion. A non-positive limit
// falls back to DefaultLogPageSize; negative skip is treated as zero.
func (s *LogService) List(ctx context.Context, skip, limit int) ([]domain.LogEntry, error) {
	if limit <= 0 {
		limit = DefaultLogPageSize
	}
	if skip < 0 {
		skip = 0
	}
	return s.Store.LogEntries().ListLogEntries(ctx, skip, limit)
}

// ByIP returns every entry recorded for the given remote address.
func (s *LogService) ByIP(ctx context.Context, ip string) ([]domain.LogEntry, error) {
	return s.Store.LogEntries().ListLogEntriesByIP(ctx, ip)
}

// ByDate returns the entries for a single calendar day in UTC.
func (s *LogService) ByDate(ctx context.Context, day time.Time) ([]domain.LogEntry, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return s.Store.LogEntries().ListLogEntriesByDateRange(ctx, start, start.Add(24*time.Hour))
}

// ByDateRange returns the entries from the first calendar day through the
// last, both inclusive, in UTC.
func (s *LogService) ByDateRange(ctx context.Context, from, to time.Time) ([]domain.LogEntry, error) {
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC).Add(24 * time.Hour)
	return s.Store.LogEntries().ListLogEntriesByDateRange(ctx, start, end)
}

// Count reports the total number of ingested entries.
func (s *LogService) Count(ctx context.Context) (int64, error) {
	return s.Store.LogEntries().CountLogEntries(ctx)
}
