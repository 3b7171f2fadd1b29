package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/churnikov/otvetgrab/internal/config"
	"github.com/churnikov/otvetgrab/internal/database"
	"github.com/churnikov/otvetgrab/internal/log"
	"github.com/churnikov/otvetgrab/internal/taxonomy"
)

// NewTaxonomyCmd creates the taxonomy command.
func NewTaxonomyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "taxonomy",
		Short: "Discover and store the category taxonomy",
		Long: `Taxonomy discovers the two-level category tree from the source and
stores it, replacing link targets of already known categories in place.

The crawl command runs this automatically on first use; run it manually to
refresh the stored tree after the source adds or renames categories.

Examples:
  # Discover all categories
  otvetgrab taxonomy

  # Restrict to an allow-list
  otvetgrab taxonomy --categories "Компьютеры и связь"`,
		Args: cobra.NoArgs,
		RunE: runTaxonomyCmd,
	}

	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Connection timeout for each request")
	cmd.Flags().Duration("delay", config.DefaultDelay,
		"Politeness pause between requests")
	cmd.Flags().IntP("retries", "r", config.DefaultFetchRetries,
		"Attempts per page before giving up")
	cmd.Flags().StringSlice("categories", nil,
		"Category allow-list (default: all non-navigation categories)")
	cmd.Flags().String("base-url", config.DefaultBaseURL,
		"Root address of the source site")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory holding the SQLite database")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .otvetgrab in current or home directory)")

	return cmd
}

// runTaxonomyCmd executes the taxonomy command.
func runTaxonomyCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	store, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	fetcher, err := newFetcher(cfg, logger)
	if err != nil {
		return err
	}

	builder := taxonomy.NewBuilder(fetcher, cfg.Selectors, cfg.Exclusions, cfg.Categories,
		taxonomy.WithLogger(logger),
	)
	categories, subs, err := builder.Build(ctx)
	if err != nil {
		return err
	}

	if err := store.SaveTaxonomy(ctx, categories, subs); err != nil {
		return fmt.Errorf("failed to save taxonomy: %w", err)
	}

	fmt.Printf("Stored %d categories and %d subcategories\n", len(categories), len(subs))
	for _, c := range categories {
		fmt.Printf("  [%d] %s\n", c.ID, c.Name)
	}
	return nil
}
