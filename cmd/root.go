// Package cmd defines and implements the CLI commands for the citesweep
// executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "citesweep",
		Short: "Finds unsourced snippets in wiki pages and stores them for review.",
		Long: `citesweep ingests a file of wiki page ids, fetches their current
wikitext from the MediaWiki API in parallel, extracts citation-needed
snippets and records the pages and snippets in Postgres.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (CITESWEEP_* env vars apply on top)")

	cmd.AddCommand(newParseCmd())
	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
