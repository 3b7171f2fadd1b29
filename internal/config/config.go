package config

import (
	"net/url"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values. The network-facing values are deliberately
// conservative: the source is a single shared site and the crawl may run
// for hours, so politeness matters more than throughput.
const (
	// DefaultBaseURL is the address of the harvested Q&A source. The touch
	// variant is used because its markup is far smaller and more stable
	// than the desktop site.
	DefaultBaseURL = "https://touch.otvet.mail.ru"

	// DefaultLatestPath is the listing page that references the most
	// recently created items; the frontier reads the highest id from it.
	DefaultLatestPath = "/questions/"

	// DefaultTimeout applies to each individual HTTP request.
	DefaultTimeout = 30 * time.Second

	// DefaultDelay is the politeness pause between requests on the same
	// worker. 200ms keeps a 4-worker crawl around 20 requests/second at
	// most, which the source tolerates well.
	DefaultDelay = 200 * time.Millisecond

	// DefaultWorkers is the number of concurrent page fetches. Correctness
	// of resumption is independent of this value (commits are ordered),
	// so it only trades throughput against load on the source.
	DefaultWorkers = 4

	// DefaultFetchRetries is the number of attempts for a transient fetch
	// failure before the id is recorded as a soft failure.
	DefaultFetchRetries = 3

	// DefaultPersistRetries is the number of attempts for a transient
	// store fault during a single id's commit.
	DefaultPersistRetries = 3

	// DefaultUserAgent identifies otvetgrab in HTTP requests so operators
	// can recognize the traffic in their logs.
	DefaultUserAgent = "otvetgrab/1.0 (+https://github.com/churnikov/otvetgrab)"

	// DefaultMaxBodySize limits how much of a response body is read.
	// Item pages are tens of kilobytes; 5MB is a generous safety margin.
	DefaultMaxBodySize = 5 * 1024 * 1024

	// AppName is used for XDG directory paths and the config file name.
	AppName = "otvetgrab"
)

// DefaultExclusions is the fixed set of non-content navigation labels that
// must never be persisted as categories or subcategories, regardless of the
// configured category filter. These appear among the category anchors on the
// root listing but lead to editorial or service pages, not question lists.
func DefaultExclusions() []string {
	return []string{
		"Золотой фонд",
		"Лидеры",
		"Новости",
		"О проекте",
		"Обратная связь",
	}
}

// Config holds all configuration options for otvetgrab. It is populated from
// defaults, the optional YAML file and CLI flags, then passed through the
// application via dependency injection rather than global state.
//
// Design decision: a single flat struct, as the number of options is
// manageable and nesting would add complexity without benefit.
type Config struct {
	// BaseURL is the root address of the source. All locators are built
	// by resolving path fragments against it.
	BaseURL string

	// LatestPath is the path of the "latest items" listing used for
	// frontier computation.
	LatestPath string

	// Categories is the category allow-list. Empty means "all": every
	// non-excluded category is harvested. Matching is by normalized label
	// equality.
	Categories []string

	// Exclusions is the set of navigation labels filtered out of the
	// taxonomy. Defaults to DefaultExclusions; the YAML file may extend it.
	Exclusions []string

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration

	// Delay is the politeness pause between requests on one worker.
	Delay time.Duration

	// Workers is the number of concurrent fetch workers.
	Workers int

	// FetchRetries bounds retry attempts for transient fetch failures.
	FetchRetries int

	// PersistRetries bounds retry attempts for transient store faults.
	PersistRetries int

	// UserAgent is sent with every HTTP request.
	UserAgent string

	// MaxBodySize caps the number of response bytes read per page.
	MaxBodySize int64

	// Cookie is an optional HTTP cookie for authenticated crawling,
	// in "name=value" form. Never logged in clear (see internal/log).
	Cookie string

	// Headers are optional extra HTTP headers for every request.
	Headers map[string]string

	// DBDir is the directory holding the SQLite database. Defaults to the
	// XDG data directory.
	DBDir string

	// Verbose enables debug-level logging.
	Verbose bool

	// JSONReport selects JSON summary output. Mutually exclusive with
	// MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown summary output. Mutually exclusive
	// with JSONReport.
	MarkdownReport bool

	// ReportFile writes the summary to a file instead of stdout when set.
	ReportFile string

	// FromID is an optional lower bound on the crawl range; negative means
	// unset. The bound only ever narrows the computed frontier, so already
	// persisted ids are never re-crawled.
	FromID int64

	// ToID is an optional exclusive upper bound on the crawl range;
	// negative means unset. Together with FromID this bounds a run the way
	// the source's creation-ordered ids bound a time window.
	ToID int64

	// RefreshTaxonomy forces a taxonomy rebuild even when the store
	// already has categories.
	RefreshTaxonomy bool

	// ConfigFilePath is an explicit YAML config file path. Empty means
	// search the default locations.
	ConfigFilePath string

	// Selectors are optional CSS selector overrides for the source markup.
	Selectors Selectors
}

// NewConfig creates a Config with default values.
//
// Design decision: a constructor instead of zero values, because most
// defaults are non-zero and the constructor doubles as documentation.
func NewConfig() *Config {
	return &Config{
		BaseURL:        DefaultBaseURL,
		LatestPath:     DefaultLatestPath,
		Exclusions:     DefaultExclusions(),
		Timeout:        DefaultTimeout,
		Delay:          DefaultDelay,
		Workers:        DefaultWorkers,
		FetchRetries:   DefaultFetchRetries,
		PersistRetries: DefaultPersistRetries,
		UserAgent:      DefaultUserAgent,
		MaxBodySize:    DefaultMaxBodySize,
		FromID:         -1,
		ToID:           -1,
		DBDir:          XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for otvetgrab.
// On Linux: ~/.local/share/otvetgrab
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// Validate checks if the configuration is valid and returns a specific
// sentinel error describing the first problem found. It is called once after
// flag parsing, before any network or database work begins.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ErrInvalidBaseURL
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.Delay < 0 {
		return ErrInvalidDelay
	}

	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}

	if c.FetchRetries < 0 || c.PersistRetries < 0 {
		return ErrInvalidRetries
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if c.FromID >= 0 && c.ToID >= 0 && c.FromID >= c.ToID {
		return ErrInvalidIDRange
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}

// HarvestAll reports whether every non-excluded category should be crawled,
// i.e. no allow-list is configured.
func (c *Config) HarvestAll() bool {
	return len(c.Categories) == 0
}
