package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sakif/conduit/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the database schema",
	Long: `Apply the schema to the configured database and exit. Migrations are
idempotent, so running this against an up-to-date database is a no-op.
Use it with database.auto_migrate = false in production.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := loadConfig(stdout())
		if err != nil {
			return err
		}
		if err := ensureDataDir(cfg); err != nil {
			return err
		}

		db, err := database.Open(cmd.Context(), cfg.DatabaseOptions())
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.Migrate(cmd.Context()); err != nil {
			return fmt.Errorf("migrating: %w", err)
		}
		logger.Info("schema is up to date", slog.String("driver", db.Dialect().String()))
		return nil
	},
}
