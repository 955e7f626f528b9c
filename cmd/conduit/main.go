// Command conduit runs the Conduit API.
//
//	conduit serve            start the HTTP server
//	conduit migrate          create or upgrade the schema, then exit
//	conduit routes           print the route table as Markdown
//
// Configuration comes from conduit.toml (or --config) and CONDUIT_*
// environment variables; see internal/config.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
