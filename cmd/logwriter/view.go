package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/altostack/webcore/internal/webcore/domain"
	"github.com/altostack/webcore/internal/webcore/service"
)

func newViewCmd(dbFile *string) *cobra.Command {
	var (
		ip        string
		startDate string
		endDate   string
		status    int
		skip      int
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Query stored log entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(*dbFile)
			if err != nil {
				return err
			}
			defer st.Close()

			logs := &service.LogService{Store: st, Logger: slog.Default()}
			ctx := cmd.Context()

			var entries []domain.LogEntry
			switch {
			case startDate != "" && endDate != "":
				from, err := time.Parse("2006-01-02", startDate)
				if err != nil {
					return fmt.Errorf("bad --start-date: %w", err)
				}
				to, err := time.Parse("2006-01-02", endDate)
				if err != nil {
					return fmt.Errorf("bad --end-date: %w", err)
				}
				entries, err = logs.ByDateRange(ctx, from, to)
				if err != nil {
					return err
				}
			case startDate != "":
				day, err := time.Parse("2006-01-02", startDate)
				if err != nil {
					return fmt.Errorf("bad --start-date: %w", err)
				}
				entries, err = logs.ByDate(ctx, day)
				if err != nil {
					return err
				}
			case ip != "":
				entries, err = logs.ByIP(ctx, ip)
				if err != nil {
					return err
				}
			default:
				entries, err = logs.List(ctx, skip, limit)
				if err != nil {
					return err
				}
			}

			for _, e := range entries {
				if status != 0 && e.Status != status {
					continue
				}
				cmd.Printf("%6d  %-15s  %s  %3d  %8d  %s\n",
					e.ID, e.IP, e.Date.Format("2006-01-02 15:04:05"), e.Status, e.Size, e.Request)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&ip, "ip", "", "filter by remote address")
	cmd.Flags().StringVar(&startDate, "start-date", "", "single day, or range start with --end-date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&endDate, "end-date", "", "range end, inclusive (YYYY-MM-DD)")
	cmd.Flags().IntVar(&status, "status", 0, "filter by HTTP status code")
	cmd.Flags().IntVar(&skip, "skip", 0, "entries to skip")
	cmd.Flags().IntVar(&limit, "limit", service.DefaultLogPageSize, "maximum entries to print")

	return cmd
}
