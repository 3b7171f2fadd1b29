package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/churnikov/otvetgrab/internal/config"
	"github.com/churnikov/otvetgrab/internal/crawler"
	"github.com/churnikov/otvetgrab/internal/database"
	"github.com/churnikov/otvetgrab/internal/log"
	"github.com/churnikov/otvetgrab/internal/model"
	"github.com/churnikov/otvetgrab/internal/pipeline"
	"github.com/churnikov/otvetgrab/internal/report"
	"github.com/churnikov/otvetgrab/internal/taxonomy"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Harvest new questions since the last run",
		Long: `Crawl computes the id range created since the previous run and harvests
every question in it: page content, category labels and all answers.

The first run also discovers the category taxonomy from the source. Later
runs reuse the stored taxonomy unless --refresh-taxonomy is given.

Examples:
  # Harvest everything new since the last run
  otvetgrab crawl

  # Harvest only two categories
  otvetgrab crawl --categories "Компьютеры и связь,Наука и техника"

  # Slow down for a gentler crawl
  otvetgrab crawl --workers 1 --delay 1s

  # Bound the run to an explicit id window
  otvetgrab crawl --from-id 180000000 --to-id 180500000

  # Write a JSON run summary to a file
  otvetgrab crawl --json --output run.json

Configuration file (.otvetgrab) example:
  categories:
    - Компьютеры и связь
  delay: 500ms
  cookie: "mrcu=abc123"
  headers:
    X-Requested-With: XMLHttpRequest`,
		Args: cobra.NoArgs,
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Number of concurrent page fetches")
	cmd.Flags().Duration("delay", config.DefaultDelay,
		"Politeness pause between requests on one worker")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Connection timeout for each request")
	cmd.Flags().IntP("retries", "r", config.DefaultFetchRetries,
		"Attempts per page before recording a soft failure")
	cmd.Flags().StringSlice("categories", nil,
		"Category allow-list (default: all non-navigation categories)")
	cmd.Flags().Bool("refresh-taxonomy", false,
		"Rebuild the category taxonomy even if one is stored")
	cmd.Flags().Int64("from-id", -1,
		"Lowest question id to crawl (never below the resume point)")
	cmd.Flags().Int64("to-id", -1,
		"Crawl only ids strictly below this value")

	// Source and storage flags
	cmd.Flags().String("base-url", config.DefaultBaseURL,
		"Root address of the source site")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory holding the SQLite database")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .otvetgrab in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON run summary (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown run summary (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write the summary to specified file path (creates directories if needed)")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Structured logging with credential sanitization; cookies configured
	// for authenticated crawling must never reach the log output.
	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, finishing committed prefix...")
		cancel()
	}()

	return runCrawl(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from defaults, the optional YAML file and
// command flags, in that order. Flags only override when explicitly set, so
// file values survive unless the user asks otherwise.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	explicitPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg.ConfigFilePath = explicitPath

	configPath := config.FindConfigFile(explicitPath)
	if configPath != "" {
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		if err := cf.Apply(cfg); err != nil {
			return nil, err
		}
	} else if explicitPath != "" {
		// User explicitly specified a config file that doesn't exist
		return nil, fmt.Errorf("configuration file not found: %s", explicitPath)
	}

	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFlags copies explicitly set flag values onto the config. Flags the
// command does not define are skipped, so the helper is shared across
// subcommands with different flag sets.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	if flags.Lookup("workers") != nil && flags.Changed("workers") {
		v, err := flags.GetInt("workers")
		if err != nil {
			return err
		}
		cfg.Workers = v
	}
	if flags.Lookup("delay") != nil && flags.Changed("delay") {
		v, err := flags.GetDuration("delay")
		if err != nil {
			return err
		}
		cfg.Delay = v
	}
	if flags.Lookup("timeout") != nil && flags.Changed("timeout") {
		v, err := flags.GetDuration("timeout")
		if err != nil {
			return err
		}
		cfg.Timeout = v
	}
	if flags.Lookup("retries") != nil && flags.Changed("retries") {
		v, err := flags.GetInt("retries")
		if err != nil {
			return err
		}
		cfg.FetchRetries = v
	}
	if flags.Lookup("categories") != nil && flags.Changed("categories") {
		v, err := flags.GetStringSlice("categories")
		if err != nil {
			return err
		}
		cfg.Categories = v
	}
	if flags.Lookup("refresh-taxonomy") != nil {
		v, err := flags.GetBool("refresh-taxonomy")
		if err != nil {
			return err
		}
		cfg.RefreshTaxonomy = v
	}
	if flags.Lookup("from-id") != nil && flags.Changed("from-id") {
		v, err := flags.GetInt64("from-id")
		if err != nil {
			return err
		}
		cfg.FromID = v
	}
	if flags.Lookup("to-id") != nil && flags.Changed("to-id") {
		v, err := flags.GetInt64("to-id")
		if err != nil {
			return err
		}
		cfg.ToID = v
	}
	if flags.Lookup("base-url") != nil && flags.Changed("base-url") {
		v, err := flags.GetString("base-url")
		if err != nil {
			return err
		}
		cfg.BaseURL = v
	}
	if flags.Lookup("db-dir") != nil && flags.Changed("db-dir") {
		v, err := flags.GetString("db-dir")
		if err != nil {
			return err
		}
		cfg.DBDir = v
	}
	if flags.Lookup("json") != nil {
		v, err := flags.GetBool("json")
		if err != nil {
			return err
		}
		cfg.JSONReport = v
	}
	if flags.Lookup("markdown") != nil {
		v, err := flags.GetBool("markdown")
		if err != nil {
			return err
		}
		cfg.MarkdownReport = v
	}
	if flags.Lookup("output") != nil {
		v, err := flags.GetString("output")
		if err != nil {
			return err
		}
		cfg.ReportFile = v
	}

	return nil
}

// newFetcher builds the shared page fetcher from the config.
func newFetcher(cfg *config.Config, logger *slog.Logger) (*crawler.Fetcher, error) {
	opts := []crawler.Option{
		crawler.WithTimeout(cfg.Timeout),
		crawler.WithUserAgent(cfg.UserAgent),
		crawler.WithMaxBodySize(cfg.MaxBodySize),
		crawler.WithRetries(cfg.FetchRetries),
		crawler.WithDelay(cfg.Delay),
		crawler.WithLogger(logger),
	}
	if cfg.Cookie != "" {
		opts = append(opts, crawler.WithCookie(cfg.Cookie))
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, crawler.WithHeaders(cfg.Headers))
	}
	return crawler.NewFetcher(cfg.BaseURL, opts...)
}

// ensureTaxonomy makes sure the store holds a category taxonomy, discovering
// it from the source when absent or when a refresh was requested.
func ensureTaxonomy(ctx context.Context, cfg *config.Config, store *database.Store, fetcher *crawler.Fetcher, logger *slog.Logger) error {
	if !cfg.RefreshTaxonomy {
		has, err := store.HasTaxonomy(ctx)
		if err != nil {
			return err
		}
		if has {
			logger.Debug("reusing stored taxonomy")
			return nil
		}
	}

	fmt.Println("Discovering category taxonomy...")

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

	fmt.Printf("Discovered %d categories and %d subcategories\n\n", len(categories), len(subs))
	return nil
}

// runCrawl executes the crawl.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	store, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()
	logger.Info("database opened", "path", store.Path())

	fetcher, err := newFetcher(cfg, logger)
	if err != nil {
		return err
	}

	if err := ensureTaxonomy(ctx, cfg, store, fetcher, logger); err != nil {
		return err
	}

	frontier, err := pipeline.ComputeFrontier(ctx, store, fetcher, cfg.LatestPath, cfg.Selectors)
	if err != nil {
		return err
	}
	frontier = frontier.Bound(cfg.FromID, cfg.ToID)

	if frontier.Empty() {
		fmt.Println("Store is already current with the source; nothing to crawl.")
		return nil
	}

	fmt.Printf("Crawling ids %d..%d (%d candidates)...\n", frontier.FromID, frontier.ToID-1, frontier.Size())
	startTime := time.Now()

	classifier := crawler.NewClassifier(cfg.Selectors, cfg.Exclusions, cfg.Categories)
	extractor := crawler.NewExtractor(cfg.Selectors)

	controller := pipeline.NewController(store, fetcher, classifier, extractor,
		pipeline.WithWorkers(cfg.Workers),
		pipeline.WithPersistRetries(cfg.PersistRetries),
		pipeline.WithControllerLogger(logger),
		pipeline.WithProgress(func(current, total int64) {
			fmt.Fprintf(os.Stderr, "\rprogress: %d/%d", current, total)
		}),
	)

	summary, runErr := controller.Run(ctx, frontier)
	fmt.Fprintln(os.Stderr)

	if summary != nil {
		fmt.Printf("Crawl finished in %s\n", time.Since(startTime).Round(time.Millisecond))
		if err := outputSummary(cfg, summary); err != nil {
			logger.Error("failed to write summary", "error", err)
		}
	}

	return runErr
}

// outputSummary writes the run summary in the requested format.
func outputSummary(cfg *config.Config, summary *model.CrawlSummary) error {
	output, cleanup, err := openReportOutput(cfg.ReportFile)
	if err != nil {
		return err
	}
	defer cleanup()

	writer := newReportWriter(cfg, output)
	_, err = writer.Write(summary)
	return err
}

// newReportWriter selects the report format from the config.
func newReportWriter(cfg *config.Config, output *os.File) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output)
	default:
		return report.NewSimpleWriter(output)
	}
}

// openReportOutput returns the report destination and a cleanup function.
// An empty path means stdout.
func openReportOutput(path string) (*os.File, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
