package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sakif/conduit/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "conduit",
	Short: "Conduit - a Medium-style blogging API",
	Long: `Conduit serves the RealWorld blogging API: users, profiles, articles,
comments, favorites and tags, backed by SQLite or PostgreSQL.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"path to a config file (default: ./conduit.toml if present)")

	rootCmd.AddCommand(serveCmd, migrateCmd, routesCmd)
}

// loadConfig reads the configuration and installs the configured logger as
// slog's default, so code that logs through slog.Default (writeError, for
// one) follows the same level and format.
func loadConfig(out io.Writer) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	logger, err := newLogger(out, cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func newLogger(out io.Writer, lc config.LogConfig) (*slog.Logger, error) {
	level, err := lc.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	switch lc.Format {
	case "json":
		return slog.New(slog.NewJSONHandler(out, opts)), nil
	case "text":
		return slog.New(slog.NewTextHandler(out, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", lc.Format)
	}
}

func stdout() io.Writer { return os.Stdout }
