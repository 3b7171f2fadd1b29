package crawler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// Outcome classifies the result of fetching a single page.
//
// The distinction between OutcomeNotFound and OutcomeTransient matters for
// crawl semantics: not-found ids are skipped permanently and never retried,
// while transient failures are retry-eligible and, if retries are exhausted,
// recorded as soft failures that stay re-crawlable on the next run.
type Outcome int

const (
	// OutcomeFound: the transport returned a success status and a body.
	OutcomeFound Outcome = iota

	// OutcomeNotFound: the transport returned a definitive "no such
	// resource" status.
	OutcomeNotFound

	// OutcomeTransient: any other failure, such as a timeout or a
	// server error.
	OutcomeTransient
)

// String returns the outcome name used in logs.
func (o Outcome) String() string {
	switch o {
	case OutcomeFound:
		return "found"
	case OutcomeNotFound:
		return "not-found"
	case OutcomeTransient:
		return "transient"
	default:
		return "unknown"
	}
}

// Result is the tri-state outcome of one fetch. Body is set only for
// OutcomeFound; Err is set only for OutcomeTransient.
type Result struct {
	// Outcome classifies the fetch.
	Outcome Outcome

	// Body is the raw response content for a found page.
	Body []byte

	// Err is the underlying cause of a transient failure.
	Err error
}

// Fetcher fetches pages from the source and converts HTTP outcomes into
// tri-state Results. It owns locator construction: every page is addressed
// by resolving a path fragment against the configured base URL.
type Fetcher struct {
	// client is the HTTP client used for all requests.
	client *http.Client

	// base is the parsed source root; locators resolve against it.
	base *url.URL

	// userAgent is the User-Agent header to send.
	userAgent string

	// maxBodySize limits how many response bytes are read.
	maxBodySize int64

	// cookie is an optional Cookie header for authenticated crawling.
	cookie string

	// headers are optional extra headers for every request.
	headers map[string]string

	// attempts is the total number of tries for transient failures.
	attempts int

	// backoff is the initial retry pause; it doubles per attempt.
	backoff time.Duration

	// delay is the politeness pause applied before each request.
	delay time.Duration

	// logger records fetch attempts at debug level.
	logger *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.client.Timeout = d
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum response body size.
func WithMaxBodySize(size int64) Option {
	return func(f *Fetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// WithCookie sets a Cookie header sent with every request.
func WithCookie(cookie string) Option {
	return func(f *Fetcher) {
		f.cookie = cookie
	}
}

// WithHeaders sets extra headers sent with every request.
func WithHeaders(headers map[string]string) Option {
	return func(f *Fetcher) {
		f.headers = headers
	}
}

// WithRetries sets the number of attempts for transient failures.
// A value of 1 disables retrying.
func WithRetries(attempts int) Option {
	return func(f *Fetcher) {
		if attempts > 0 {
			f.attempts = attempts
		}
	}
}

// WithBackoff sets the initial retry pause. It doubles on every
// subsequent attempt.
func WithBackoff(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.backoff = d
		}
	}
}

// WithDelay sets the politeness pause applied before each request.
func WithDelay(d time.Duration) Option {
	return func(f *Fetcher) {
		f.delay = d
	}
}

// WithLogger sets the logger for fetch attempts.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// NewFetcher creates a Fetcher for the given base URL. The base URL must be
// absolute; a malformed base is a construction error, not a runtime fetch
// outcome.
func NewFetcher(baseURL string, opts ...Option) (*Fetcher, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: missing scheme or host", baseURL)
	}

	f := &Fetcher{
		client:      &http.Client{Timeout: 30 * time.Second},
		base:        base,
		userAgent:   "otvetgrab/1.0",
		maxBodySize: 5 * 1024 * 1024,
		attempts:    3,
		backoff:     500 * time.Millisecond,
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.logger == nil {
		f.logger = slog.Default()
	}

	return f, nil
}

// QuestionPath returns the path fragment of the item page for a source id.
func QuestionPath(id int64) string {
	return fmt.Sprintf("/question/%d", id)
}

// URL resolves a path fragment against the base URL.
func (f *Fetcher) URL(path string) string {
	ref, err := url.Parse(path)
	if err != nil {
		// Paths are built from typed ids and configured constants;
		// a malformed one is a programming error.
		panic(fmt.Sprintf("crawler: malformed path %q: %v", path, err))
	}
	return f.base.ResolveReference(ref).String()
}

// Fetch performs a single fetch of the given path. It never retries; see
// FetchWithRetry for the retrying variant used by the crawl loop.
func (f *Fetcher) Fetch(ctx context.Context, path string) Result {
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return Result{Outcome: OutcomeTransient, Err: ctx.Err()}
		case <-time.After(f.delay):
		}
	}

	pageURL := f.URL(path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return Result{Outcome: OutcomeTransient, Err: err}
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "ru-RU,ru;q=0.9,en;q=0.5")
	if f.cookie != "" {
		req.Header.Set("Cookie", f.cookie)
	}
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return Result{Outcome: OutcomeTransient, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
		if err != nil {
			return Result{Outcome: OutcomeTransient, Err: fmt.Errorf("failed to read body of %s: %w", pageURL, err)}
		}
		return Result{Outcome: OutcomeFound, Body: body}

	case resp.StatusCode == http.StatusNotFound:
		return Result{Outcome: OutcomeNotFound}

	default:
		return Result{
			Outcome: OutcomeTransient,
			Err:     fmt.Errorf("unexpected status %d for %s", resp.StatusCode, pageURL),
		}
	}
}

// FetchWithRetry fetches the given path, retrying transient failures with
// exponential backoff up to the configured attempt bound. Found and
// not-found outcomes return immediately; they are definitive.
func (f *Fetcher) FetchWithRetry(ctx context.Context, path string) Result {
	var res Result
	pause := f.backoff

	for attempt := 1; attempt <= f.attempts; attempt++ {
		res = f.Fetch(ctx, path)
		if res.Outcome != OutcomeTransient {
			return res
		}
		if ctx.Err() != nil {
			return res
		}

		f.logger.Debug("transient fetch failure",
			"path", path,
			"attempt", attempt,
			"of", f.attempts,
			"error", res.Err,
		)

		if attempt == f.attempts {
			break
		}

		select {
		case <-ctx.Done():
			return Result{Outcome: OutcomeTransient, Err: ctx.Err()}
		case <-time.After(pause):
		}
		pause *= 2
	}

	return res
}
