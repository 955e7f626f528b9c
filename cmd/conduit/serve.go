package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sakif/conduit/internal/config"
	"github.com/sakif/conduit/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server. It runs until SIGINT or SIGTERM and then drains
in-flight requests before closing the database.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig(stdout())
	if err != nil {
		return err
	}

	if err := ensureDataDir(cfg); err != nil {
		return err
	}

	srv, err := server.New(cmd.Context(), cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	return srv.Start()
}

// ensureDataDir creates the directory holding a file-backed SQLite database
// (mkdir -p). Other drivers and in-memory databases need nothing.
func ensureDataDir(cfg *config.Config) error {
	if cfg.Database.Driver != "sqlite" || cfg.Database.DSN == ":memory:" {
		return nil
	}
	dir := filepath.Dir(cfg.Database.DSN)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating database directory %s: %w", dir, err)
	}
	return nil
}
