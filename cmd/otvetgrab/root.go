package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for otvetgrab.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "otvetgrab",
		Short: "Incremental harvester for the Otvety Q&A site",
		Long: `otvetgrab harvests questions, categories and answers from the Otvety
Q&A site into a local SQLite database.

Question ids on the source are assigned monotonically, so each run only
crawls the ids created since the previous run. Interrupting a run is safe:
commits are applied in id order and the next run resumes from the highest
persisted id.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewTaxonomyCmd())
	cmd.AddCommand(NewStatusCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
