package pipeline

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/PuerkitoBio/goquery"

	"github.com/churnikov/otvetgrab/internal/config"
	"github.com/churnikov/otvetgrab/internal/crawler"
	"github.com/churnikov/otvetgrab/internal/database"
)

// ErrFrontierUnavailable is returned when the "latest items" listing cannot
// be fetched or yields no item ids. Without it the current maximum source id
// is unknown, so the run cannot determine what to crawl and aborts.
var ErrFrontierUnavailable = errors.New("latest items listing unavailable")

// Frontier is the half-open id range [FromID, ToID) still to be crawled.
type Frontier struct {
	// FromID is the first candidate id, inclusive.
	FromID int64

	// ToID is the end of the range, exclusive.
	ToID int64
}

// Empty reports whether there is nothing to crawl. An empty frontier makes
// the whole run an idempotent no-op: zero fetches, zero writes.
func (f Frontier) Empty() bool {
	return f.FromID >= f.ToID
}

// Size returns the number of candidate ids in the frontier.
func (f Frontier) Size() int64 {
	if f.Empty() {
		return 0
	}
	return f.ToID - f.FromID
}

// Bound narrows the frontier to the explicit [from, to) overrides. A
// negative value leaves the corresponding edge unchanged. The range only
// ever narrows: already persisted ids below FromID cannot be re-crawled
// (re-inserting them would fail), and ids past ToID do not exist yet.
func (f Frontier) Bound(from, to int64) Frontier {
	if from >= 0 && from > f.FromID {
		f.FromID = from
	}
	if to >= 0 && to < f.ToID {
		f.ToID = to
	}
	return f
}

// questionIDPattern extracts the numeric item id from an item page href.
var questionIDPattern = regexp.MustCompile(`/question/(\d+)`)

// ComputeFrontier determines the crawl range for this run:
// FromID is the persisted maximum question id plus one (zero for an empty
// store); ToID is one past the highest id referenced on the latest-items
// listing.
func ComputeFrontier(ctx context.Context, store *database.Store, fetcher *crawler.Fetcher, latestPath string, sel config.Selectors) (Frontier, error) {
	maxID, ok, err := store.MaxQuestionID(ctx)
	if err != nil {
		return Frontier{}, err
	}

	var from int64
	if ok {
		from = maxID + 1
	}

	latest, err := latestSourceID(ctx, fetcher, latestPath, sel)
	if err != nil {
		return Frontier{}, err
	}

	return Frontier{FromID: from, ToID: latest + 1}, nil
}

// latestSourceID fetches the latest-items listing and returns the highest
// numeric item id referenced there.
func latestSourceID(ctx context.Context, fetcher *crawler.Fetcher, latestPath string, sel config.Selectors) (int64, error) {
	res := fetcher.FetchWithRetry(ctx, latestPath)
	switch res.Outcome {
	case crawler.OutcomeFound:
	case crawler.OutcomeNotFound:
		return 0, fmt.Errorf("%w: listing %s does not exist", ErrFrontierUnavailable, latestPath)
	default:
		return 0, fmt.Errorf("%w: %v", ErrFrontierUnavailable, res.Err)
	}

	doc, err := crawler.ParseDocument(res.Body)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrFrontierUnavailable, err)
	}

	anchors := doc.Find(sel.Merge().QuestionLink)
	if anchors.Length() == 0 {
		// The listing markup may have dropped the link class; any anchor
		// pointing at an item page still carries the id.
		anchors = doc.Find("a")
	}

	var latest int64
	found := false
	anchors.Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		m := questionIDPattern.FindStringSubmatch(href)
		if m == nil {
			return
		}
		id, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return
		}
		found = true
		if id > latest {
			latest = id
		}
	})

	if !found {
		return 0, fmt.Errorf("%w: listing %s references no item ids", ErrFrontierUnavailable, latestPath)
	}
	return latest, nil
}
