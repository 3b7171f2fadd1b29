package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/churnikov/otvetgrab/internal/crawler"
	"github.com/churnikov/otvetgrab/internal/database"
	"github.com/churnikov/otvetgrab/internal/model"
)

// ErrNoTaxonomy is returned when a crawl run starts against a store without
// persisted categories. Classified labels could never resolve, so every id
// would fail; the taxonomy build must run first.
var ErrNoTaxonomy = errors.New("no taxonomy persisted: run the taxonomy build first")

// ProgressFunc receives (current, total) after every resolved candidate id,
// independent of whether the id was committed, skipped or failed.
type ProgressFunc func(current, total int64)

// Controller orchestrates fetch → classify → resolve → extract → persist
// for every candidate id of a frontier.
//
// Design decision: workers fetch and extract concurrently, but all commits
// go through a single committer that applies results strictly in increasing
// id order. The persisted maximum id is the sole resumption checkpoint, so
// it must never advance past an id that was fetched out of order but not
// committed. For the same reason a hard persist failure halts all further
// commits: later ids stay uncommitted and the next run resumes at the
// failed id.
type Controller struct {
	// store persists questions and answers.
	store *database.Store

	// fetcher fetches item pages.
	fetcher *crawler.Fetcher

	// classifier decides page validity and extracts labels.
	classifier *crawler.Classifier

	// extractor builds question and answer rows.
	extractor *crawler.Extractor

	// logger records per-id outcomes.
	logger *slog.Logger

	// progress is called after every resolved id, in commit order.
	progress ProgressFunc

	// workers is the number of concurrent fetch workers.
	workers int

	// persistAttempts bounds retries for transient store faults.
	persistAttempts int

	// persistBackoff is the initial pause between persist attempts.
	persistBackoff time.Duration
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithWorkers sets the number of concurrent fetch workers.
func WithWorkers(n int) ControllerOption {
	return func(c *Controller) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithProgress sets the progress callback.
func WithProgress(fn ProgressFunc) ControllerOption {
	return func(c *Controller) {
		c.progress = fn
	}
}

// WithControllerLogger sets the logger for per-id outcomes.
func WithControllerLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithPersistRetries sets the number of attempts for transient store faults
// during a single id's commit.
func WithPersistRetries(attempts int) ControllerOption {
	return func(c *Controller) {
		if attempts > 0 {
			c.persistAttempts = attempts
		}
	}
}

// NewController creates a Controller.
func NewController(store *database.Store, fetcher *crawler.Fetcher, classifier *crawler.Classifier, extractor *crawler.Extractor, opts ...ControllerOption) *Controller {
	c := &Controller{
		store:           store,
		fetcher:         fetcher,
		classifier:      classifier,
		extractor:       extractor,
		workers:         4,
		persistAttempts: 3,
		persistBackoff:  250 * time.Millisecond,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// labelIndex resolves classified labels against the persisted taxonomy.
// It is loaded once per run; per-id resolution is pure map lookup with
// normalized keys, so whitespace or casing drift between the root listing
// and item-page markers cannot cause misses.
type labelIndex struct {
	// categories maps normalized category label to category id.
	categories map[string]int64

	// subs maps category id to normalized subcategory label to id.
	subs map[int64]map[string]int64
}

// newLabelIndex builds the lookup index from persisted taxonomy rows.
func newLabelIndex(categories []model.Category, subs []model.SubCategory) *labelIndex {
	ix := &labelIndex{
		categories: make(map[string]int64, len(categories)),
		subs:       make(map[int64]map[string]int64),
	}
	for _, c := range categories {
		ix.categories[model.NormalizeLabel(c.Name)] = c.ID
	}
	for _, sc := range subs {
		m := ix.subs[sc.ParentID]
		if m == nil {
			m = make(map[string]int64)
			ix.subs[sc.ParentID] = m
		}
		m[model.NormalizeLabel(sc.Name)] = sc.ID
	}
	return ix
}

// resolve maps a classification onto persisted ids. The boolean is false on
// a lookup miss: the category label, or a present subcategory label, is not
// part of the persisted taxonomy.
func (ix *labelIndex) resolve(cls crawler.Classification) (int64, *int64, bool) {
	catID, ok := ix.categories[model.NormalizeLabel(cls.Category)]
	if !ok {
		return 0, nil, false
	}

	if cls.SubCategory == "" {
		return catID, nil, true
	}

	subID, ok := ix.subs[catID][model.NormalizeLabel(cls.SubCategory)]
	if !ok {
		return 0, nil, false
	}
	return catID, &subID, true
}

// idResult is the resolution of one candidate id, produced by a worker and
// consumed by the committer.
type idResult struct {
	id         int64
	skip       bool
	reason     model.SkipReason
	lookupMiss bool
	question   *model.Question
	answers    []model.Answer
}

// skipResult builds a skip resolution.
func skipResult(id int64, reason model.SkipReason) idResult {
	return idResult{id: id, skip: true, reason: reason}
}

// Run crawls every candidate id of the frontier and returns the run summary.
// The summary is returned even when the run is cancelled or aborted; the
// accompanying error then reports the cause. A persist failure that survives
// its retries aborts the run: committing past an unpersisted id would move
// the resumption watermark beyond it and the id could never be re-crawled.
func (c *Controller) Run(ctx context.Context, frontier Frontier) (*model.CrawlSummary, error) {
	summary := &model.CrawlSummary{
		FromID:    frontier.FromID,
		ToID:      frontier.ToID,
		StartedAt: time.Now(),
	}

	categories, subs, err := c.store.LoadTaxonomy(ctx)
	if err != nil {
		return nil, err
	}
	if len(categories) == 0 {
		return nil, ErrNoTaxonomy
	}
	index := newLabelIndex(categories, subs)

	if frontier.Empty() {
		summary.Elapsed = time.Since(summary.StartedAt)
		c.logger.Debug("frontier is empty, store is current",
			"watermark", frontier.FromID-1,
		)
		return summary, nil
	}

	total := frontier.Size()
	c.logger.Info("starting crawl",
		"from", frontier.FromID,
		"to", frontier.ToID,
		"total", total,
		"workers", c.workers,
	)

	// The committer needs its own cancellation handle: a persist failure
	// must stop the workers even though none of them returned an error.
	ctx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	results := make(chan idResult, c.workers)
	g, gctx := errgroup.WithContext(ctx)

	ids := make(chan int64)
	g.Go(func() error {
		defer close(ids)
		for id := frontier.FromID; id < frontier.ToID; id++ {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case ids <- id:
			}
		}
		return nil
	})

	for i := 0; i < c.workers; i++ {
		g.Go(func() error {
			for id := range ids {
				// Cancellation is honored between ids, never inside
				// one id's processing.
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				results <- c.processID(gctx, id, index)
			}
			return nil
		})
	}

	workersDone := make(chan error, 1)
	go func() {
		workersDone <- g.Wait()
		close(results)
	}()

	// Commits must not be aborted mid-transaction by the run context;
	// the committer finishes the in-order prefix it already holds.
	commitCtx := context.WithoutCancel(ctx)

	next := frontier.FromID
	var resolved int64
	var persistErr error
	pending := make(map[int64]idResult)

	for r := range results {
		if persistErr != nil {
			// Drain only; everything from the failed id on stays
			// uncommitted and re-crawlable.
			continue
		}
		pending[r.id] = r
		for persistErr == nil {
			cur, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			if err := c.finish(commitCtx, cur, summary); err != nil {
				persistErr = fmt.Errorf("persist failed at id %d, halting run: %w", next, err)
				c.logger.Error("halting run on persist failure", "id", next, "error", err)
				cancelWorkers()
				break
			}
			next++
			resolved++
			if c.progress != nil {
				c.progress(resolved, total)
			}
		}
	}

	runErr := <-workersDone
	if persistErr != nil {
		runErr = persistErr
	}

	if len(pending) > 0 {
		// Results past the first unresolved id; they stay uncommitted
		// and the next run re-crawls them.
		c.logger.Info("discarding out-of-order results past the watermark",
			"count", len(pending),
			"watermark", next-1,
		)
	}

	summary.Elapsed = time.Since(summary.StartedAt)
	c.logger.Info("crawl finished",
		"committed", summary.Committed,
		"skippedNotFound", summary.SkippedNotFound,
		"skippedInvalid", summary.SkippedInvalid,
		"skippedFailed", summary.SkippedFailed,
		"lookupMisses", summary.LookupMisses,
		"elapsed", summary.Elapsed,
	)
	return summary, runErr
}

// processID resolves a single candidate id up to (but excluding) persistence.
func (c *Controller) processID(ctx context.Context, id int64, index *labelIndex) idResult {
	res := c.fetcher.FetchWithRetry(ctx, crawler.QuestionPath(id))
	switch res.Outcome {
	case crawler.OutcomeNotFound:
		c.logger.Debug("item absent", "id", id)
		return skipResult(id, model.SkipNotFound)
	case crawler.OutcomeTransient:
		c.logger.Warn("fetch retries exhausted", "id", id, "error", res.Err)
		return skipResult(id, model.SkipFailed)
	}

	doc, err := crawler.ParseDocument(res.Body)
	if err != nil {
		c.logger.Warn("unparsable item page", "id", id, "error", err)
		return skipResult(id, model.SkipFailed)
	}

	cls := c.classifier.Classify(doc)
	if !cls.Valid {
		c.logger.Debug("item out of scope", "id", id, "reason", cls.Reason.String())
		return skipResult(id, model.SkipInvalid)
	}

	catID, subID, ok := index.resolve(cls)
	if !ok {
		// Taxonomy drift between the root listing and item pages;
		// always surfaced, never silently dropped.
		c.logger.Warn("classified label missing from persisted taxonomy",
			"id", id,
			"category", cls.Category,
			"subcategory", cls.SubCategory,
		)
		r := skipResult(id, model.SkipFailed)
		r.lookupMiss = true
		return r
	}

	q, answers, err := c.extractor.Extract(doc, id, catID, subID)
	if err != nil {
		c.logger.Warn("extraction failed", "id", id, "error", err)
		return skipResult(id, model.SkipFailed)
	}

	return idResult{id: id, question: q, answers: answers}
}

// finish applies one in-order resolution to the store and the summary. A
// non-nil error means the id could not be persisted after retries; the id is
// recorded as failed and the caller must not commit anything beyond it.
func (c *Controller) finish(ctx context.Context, r idResult, summary *model.CrawlSummary) error {
	if r.skip {
		summary.Record(r.reason)
		if r.lookupMiss {
			summary.LookupMisses++
		}
		return nil
	}

	if err := c.persist(ctx, r.question, r.answers); err != nil {
		c.logger.Error("failed to persist question", "id", r.id, "error", err)
		summary.Record(model.SkipFailed)
		return err
	}

	c.logger.Debug("committed question", "id", r.id, "answers", len(r.answers))
	summary.Committed++
	return nil
}

// persist commits one question with its answers, retrying transient store
// faults with backoff. Schema violations are not retried; they cannot
// succeed and indicate either markup drift or a bug.
func (c *Controller) persist(ctx context.Context, q *model.Question, answers []model.Answer) error {
	pause := c.persistBackoff
	var err error

	for attempt := 1; attempt <= c.persistAttempts; attempt++ {
		err = c.store.SaveQuestion(ctx, q, answers)
		if err == nil {
			return nil
		}

		switch database.ClassifyError(err) {
		case database.FaultTransient:
			if attempt == c.persistAttempts {
				return err
			}
			time.Sleep(pause)
			pause *= 2
		case database.FaultSchema:
			return fmt.Errorf("schema violation: %w", err)
		default:
			return err
		}
	}
	return err
}
