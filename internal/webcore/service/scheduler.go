package service

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the periodic log ingestion job on a cron schedule.
type Scheduler struct {
	Logs     *LogService
	Logger   *slog.Logger
	Schedule string
	Dir      string
	Ext      string

	cron *cron.Cron
}

// Start registers the ingestion job and starts the cron runner. The schedule
// uses the standard five-field cron syntax.
func (s *Scheduler) Start() error {
	s.cron = cron.New()

	_, err := s.cron.AddFunc(s.Schedule, func() {
		ctx := context.Background()
		n, err := s.Logs.ParseDir(ctx, s.Dir, s.Ext)
		if err != nil {
			s.Logger.Error("scheduled log ingestion failed", "dir", s.Dir, "error", err)
			return
		}
		s.Logger.Info("scheduled log ingestion completed", "dir", s.Dir, "entries", n)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.Logger.Info("scheduler started", "schedule", s.Schedule)
	return nil
}

// Stop halts the cron runner and waits for any running job to finish.
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.Logger.Info("scheduler stopped")
}
