package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/altostack/webcore/internal/webcore/logparse"
)

func newGenCmd() *cobra.Command {
	var (
		out   string
		lines int
	)

	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Write a synthetic access log for testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()

			if err := logparse.Generate(f, lines); err != nil {
				return err
			}

			cmd.Printf("wrote %d log lines to %s\n", lines, out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "access.log", "output file path")
	cmd.Flags().IntVar(&lines, "lines", 1000, "number of lines to generate")

	return cmd
}
