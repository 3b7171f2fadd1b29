package config

import "errors"

// Configuration validation errors returned by Config.Validate.
//
// Design decision: package-level sentinel errors rather than fresh error
// instances, so callers can use errors.Is for programmatic handling while
// the messages stay human-readable.
var (
	// ErrInvalidBaseURL is returned when the base URL is empty or does not
	// parse as an absolute http(s) URL. Locator construction depends on it.
	ErrInvalidBaseURL = errors.New("invalid base URL: must be an absolute URL with scheme and host")

	// ErrInvalidTimeout is returned when the request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidDelay is returned when the politeness delay is negative.
	// Use 0 for no delay between requests.
	ErrInvalidDelay = errors.New("invalid delay: must be non-negative")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	ErrInvalidWorkers = errors.New("invalid workers: must be positive")

	// ErrInvalidRetries is returned when a retry bound is negative.
	// Use 0 to disable retries for that operation.
	ErrInvalidRetries = errors.New("invalid retries: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Use 0 to fall back to the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified. Only one output format can be used.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidIDRange is returned when both crawl range bounds are set
	// and the lower bound is not below the upper one.
	ErrInvalidIDRange = errors.New("invalid id range: --from-id must be below --to-id")
)
