package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/churnikov/otvetgrab/internal/config"
	"github.com/churnikov/otvetgrab/internal/database"
	"github.com/churnikov/otvetgrab/internal/log"
)

// NewStatusCmd creates the status command.
func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the contents of the local store",
		Long: `Status inspects the local store without touching the network: taxonomy
size, question and answer counts, and the crawl watermark the next run will
resume from.

Examples:
  # Human-readable status
  otvetgrab status

  # Machine-readable status
  otvetgrab status --json`,
		Args: cobra.NoArgs,
		RunE: runStatusCmd,
	}

	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory holding the SQLite database")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .otvetgrab in current or home directory)")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write the status to specified file path")

	return cmd
}

// runStatusCmd executes the status command.
func runStatusCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Status never creates an empty database; a missing store means no
	// crawl has run yet, which deserves a clear message instead of zeros.
	store, err := database.Open(cfg.DBDir, database.Options{EnableWAL: true})
	if err != nil {
		return fmt.Errorf("no store found in %s (run 'otvetgrab crawl' first): %w", cfg.DBDir, err)
	}
	defer store.Close()

	stats, err := store.Stats(context.Background())
	if err != nil {
		return fmt.Errorf("failed to collect store stats: %w", err)
	}

	output, cleanup, err := openReportOutput(cfg.ReportFile)
	if err != nil {
		return err
	}
	defer cleanup()

	writer := newReportWriter(cfg, output)
	_, err = writer.WriteStats(stats)
	return err
}
