// Command routebind serves a small blog API whose route parameters are bound
// to database rows before handlers run.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "routebind",
		Short: "Route model binding demo server",
		Long: `routebind resolves route parameters into models before handlers run.

Bindings are read from a YAML file (see --bindings) and resolved against
PostgreSQL tables, optionally cached in Redis. Configuration comes from
the environment (DATABASE_URL, REDIS_URL, HTTP_ADDR, LOG_LEVEL, ...).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		migrateCmd(),
		checkCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "routebind %s (%s)\n", version, commit)
		},
	}
}
