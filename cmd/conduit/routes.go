package main

import (
	"fmt"
	"io"

	"github.com/go-chi/docgen"
	"github.com/spf13/cobra"

	"github.com/sakif/conduit/internal/server"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Print the route table as Markdown",
	Long: `Build the router against a throwaway in-memory database and print
every route with its middleware chain as Markdown.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		// Logs go nowhere; stdout carries only the document.
		cfg, logger, err := loadConfig(io.Discard)
		if err != nil {
			return err
		}
		cfg.Database.Driver = "sqlite"
		cfg.Database.DSN = ":memory:"
		cfg.Database.AutoMigrate = true

		srv, err := server.New(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer srv.Close()

		fmt.Fprintln(cmd.OutOrStdout(), docgen.MarkdownRoutesDoc(srv.Router(), docgen.MarkdownOpts{
			ProjectPath: "github.com/sakif/conduit",
			Intro:       "Routes served by the Conduit API.",
		}))
		return nil
	},
}
