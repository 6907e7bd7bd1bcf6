// Command logwriter is the operator CLI for the access-log store: it can
// ingest the configured log directory on demand, query stored entries and
// generate synthetic logs for testing.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/altostack/webcore/internal/webcore/store/drivers/sqlite"
)

func main() {
	_ = godotenv.Load()

	var dbFile string

	root := &cobra.Command{
		Use:           "logwriter",
		Short:         "Manage the webcore access-log store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dbFile, "db", envOr("DATABASE_FILE", "webcore.db"),
		"path to the sqlite database file")

	root.AddCommand(newParseCmd(&dbFile), newViewCmd(&dbFile), newGenCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// openStore opens the same database the web backend uses, with migrations
// applied.
func openStore(dbFile string) (*sqlite.Store, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", dbFile)
	st, err := sqlite.NewStore(dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := st.ApplyMigrations(); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	return st, nil
}
