package model

import "time"

// SkipReason explains why a candidate id was skipped during a crawl run.
type SkipReason int

// Skip reasons recorded by the crawl controller. NotFound and Invalid ids
// are permanently skipped and never retried; Failed ids remain re-crawlable
// on the next run because nothing was committed for them.
const (
	// SkipNotFound: the source answered with a definitive "no such item".
	SkipNotFound SkipReason = iota

	// SkipInvalid: the page exists but is out of scope (not-found marker,
	// missing category, excluded or filtered-out category).
	SkipInvalid

	// SkipFailed: retries were exhausted on a transient fetch or store
	// fault, or the classified label could not be resolved against the
	// persisted taxonomy.
	SkipFailed
)

// String returns the reason name used in logs and reports.
func (r SkipReason) String() string {
	switch r {
	case SkipNotFound:
		return "not-found"
	case SkipInvalid:
		return "invalid"
	case SkipFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// CrawlSummary is the outcome of one crawl run over the frontier
// [FromID, ToID). Every candidate id lands in exactly one of the counters.
type CrawlSummary struct {
	// FromID is the first candidate id of the run (inclusive).
	FromID int64 `json:"from_id"`

	// ToID is the end of the frontier (exclusive).
	ToID int64 `json:"to_id"`

	// Committed counts questions persisted together with their answers.
	Committed int `json:"committed"`

	// SkippedNotFound counts ids the source reported as absent.
	SkippedNotFound int `json:"skipped_not_found"`

	// SkippedInvalid counts pages classified out of scope.
	SkippedInvalid int `json:"skipped_invalid"`

	// SkippedFailed counts ids dropped after exhausting fetch or store
	// retries, including taxonomy lookup misses.
	SkippedFailed int `json:"skipped_failed"`

	// LookupMisses counts the subset of SkippedFailed where a classified
	// category label was absent from the persisted taxonomy. A non-zero
	// value indicates taxonomy drift between the root listing and item
	// pages and is always worth surfacing.
	LookupMisses int `json:"lookup_misses"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// Elapsed is the total run duration.
	Elapsed time.Duration `json:"elapsed"`
}

// Total returns the number of candidate ids in the frontier.
func (s *CrawlSummary) Total() int64 {
	if s.ToID < s.FromID {
		return 0
	}
	return s.ToID - s.FromID
}

// Resolved returns the number of ids accounted for by the counters.
func (s *CrawlSummary) Resolved() int {
	return s.Committed + s.SkippedNotFound + s.SkippedInvalid + s.SkippedFailed
}

// Record adds one skipped id under the given reason.
func (s *CrawlSummary) Record(reason SkipReason) {
	switch reason {
	case SkipNotFound:
		s.SkippedNotFound++
	case SkipInvalid:
		s.SkippedInvalid++
	case SkipFailed:
		s.SkippedFailed++
	}
}
