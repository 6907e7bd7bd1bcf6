package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/altostack/webcore/internal/webcore/service"
)

func newParseCmd(dbFile *string) *cobra.Command {
	var (
		dir string
		ext string
	)

	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Ingest every access-log file from a directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(*dbFile)
			if err != nil {
				return err
			}
			defer st.Close()

			logs := &service.LogService{Store: st, Logger: slog.Default()}
			n, err := logs.ParseDir(cmd.Context(), dir, ext)
			if err != nil {
				return err
			}

			cmd.Printf("ingested %d log entries from %s\n", n, dir)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", envOr("FILES_DIR", "logs"), "directory to scan for log files")
	cmd.Flags().StringVar(&ext, "ext", envOr("FILE_EXTENSION", ".log"), "log file extension")

	return cmd
}
