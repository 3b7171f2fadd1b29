package taxonomy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/churnikov/otvetgrab/internal/config"
	"github.com/churnikov/otvetgrab/internal/crawler"
	"github.com/churnikov/otvetgrab/internal/model"
)

// ErrTaxonomyUnavailable is returned when the taxonomy root listing cannot
// be fetched or parsed. The error is fatal for a run: no categories can
// exist downstream, so the whole crawl cannot proceed.
var ErrTaxonomyUnavailable = errors.New("taxonomy root listing unavailable")

// DefaultRootPath is the path of the page listing all top-level categories.
const DefaultRootPath = "/"

// idCounter hands out sequential ids. The subcategory counter is shared
// across all parents, so parent 1's subcategories continue numbering where
// parent 0's left off.
type idCounter struct {
	next int64
}

// Next returns the current id and advances the counter.
func (c *idCounter) Next() int64 {
	id := c.next
	c.next++
	return id
}

// Builder discovers categories and subcategories from the source.
type Builder struct {
	// fetcher fetches the root listing and category pages.
	fetcher *crawler.Fetcher

	// sel holds the CSS selectors for category anchors.
	sel config.Selectors

	// rootPath is the path of the category listing page.
	rootPath string

	// excluded maps normalized labels of the exclusion set.
	excluded map[string]bool

	// allowed maps normalized labels of the allow-list; nil means "all".
	allowed map[string]bool

	// logger records discovery progress.
	logger *slog.Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithRootPath overrides the category listing path.
func WithRootPath(path string) BuilderOption {
	return func(b *Builder) {
		if path != "" {
			b.rootPath = path
		}
	}
}

// WithLogger sets the logger for discovery progress.
func WithLogger(logger *slog.Logger) BuilderOption {
	return func(b *Builder) {
		b.logger = logger
	}
}

// NewBuilder creates a Builder. Exclusions always apply; an empty allowList
// disables allow-list filtering ("all" categories).
func NewBuilder(fetcher *crawler.Fetcher, sel config.Selectors, exclusions, allowList []string, opts ...BuilderOption) *Builder {
	b := &Builder{
		fetcher:  fetcher,
		sel:      sel.Merge(),
		rootPath: DefaultRootPath,
		excluded: normalizedSet(exclusions),
	}
	if len(allowList) > 0 {
		b.allowed = normalizedSet(allowList)
	}

	for _, opt := range opts {
		opt(b)
	}

	if b.logger == nil {
		b.logger = slog.Default()
	}
	return b
}

// normalizedSet builds a normalized-label membership set.
func normalizedSet(labels []string) map[string]bool {
	set := make(map[string]bool, len(labels))
	for _, l := range labels {
		set[model.NormalizeLabel(l)] = true
	}
	return set
}

// accepted applies the exclusion set and the allow-list to a label.
func (b *Builder) accepted(norm string) bool {
	if b.excluded[norm] {
		return false
	}
	if b.allowed != nil && !b.allowed[norm] {
		return false
	}
	return true
}

// Build discovers the full two-level taxonomy. The returned slices are
// ordered by id and ready for Store.SaveTaxonomy (parents before children).
func (b *Builder) Build(ctx context.Context) ([]model.Category, []model.SubCategory, error) {
	res := b.fetcher.FetchWithRetry(ctx, b.rootPath)
	switch res.Outcome {
	case crawler.OutcomeFound:
	case crawler.OutcomeNotFound:
		return nil, nil, fmt.Errorf("%w: root listing %s does not exist", ErrTaxonomyUnavailable, b.rootPath)
	default:
		return nil, nil, fmt.Errorf("%w: %v", ErrTaxonomyUnavailable, res.Err)
	}

	doc, err := crawler.ParseDocument(res.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrTaxonomyUnavailable, err)
	}

	categories := b.collectCategories(doc)
	if len(categories) == 0 {
		return nil, nil, fmt.Errorf("%w: no category anchors matched %q", ErrTaxonomyUnavailable, b.sel.CategoryList)
	}

	// Top-level labels guard against self-referential "see also" links
	// showing up again as subcategories.
	topLevel := make(map[string]bool, len(categories))
	for _, c := range categories {
		topLevel[model.NormalizeLabel(c.Name)] = true
	}

	var subs []model.SubCategory
	counter := &idCounter{}
	for _, cat := range categories {
		catSubs := b.collectSubCategories(ctx, cat, topLevel, counter)
		subs = append(subs, catSubs...)
		b.logger.Debug("discovered category",
			"category", cat.Name,
			"link", cat.Link,
			"subcategories", len(catSubs),
		)
	}

	return categories, subs, nil
}

// collectCategories enumerates the root listing's category anchors, applies
// the exclusion and allow-list filters, and assigns ordinal ids in discovery
// order starting at 0.
func (b *Builder) collectCategories(doc *goquery.Document) []model.Category {
	var categories []model.Category
	seen := make(map[string]bool)

	doc.Find(b.sel.CategoryList).Each(func(_ int, s *goquery.Selection) {
		name := strings.TrimSpace(s.Text())
		link, ok := s.Attr("href")
		if name == "" || !ok || link == "" {
			return
		}

		norm := model.NormalizeLabel(name)
		if seen[norm] || !b.accepted(norm) {
			return
		}
		seen[norm] = true

		categories = append(categories, model.Category{
			ID:   int64(len(categories)),
			Name: name,
			Link: link,
		})
	})

	return categories
}

// collectSubCategories fetches one category's page and enumerates its
// subcategory anchors. A transient failure leaves the category with zero
// subcategories rather than aborting the whole taxonomy build.
func (b *Builder) collectSubCategories(ctx context.Context, cat model.Category, topLevel map[string]bool, counter *idCounter) []model.SubCategory {
	res := b.fetcher.FetchWithRetry(ctx, cat.Link)
	if res.Outcome != crawler.OutcomeFound {
		b.logger.Warn("category page unavailable, recording zero subcategories",
			"category", cat.Name,
			"link", cat.Link,
			"outcome", res.Outcome.String(),
			"error", res.Err,
		)
		return nil
	}

	doc, err := crawler.ParseDocument(res.Body)
	if err != nil {
		b.logger.Warn("category page unparsable, recording zero subcategories",
			"category", cat.Name,
			"error", err,
		)
		return nil
	}

	var subs []model.SubCategory
	seen := make(map[string]bool)

	doc.Find(b.sel.SubCategoryList).Each(func(_ int, s *goquery.Selection) {
		name := strings.TrimSpace(s.Text())
		link, ok := s.Attr("href")
		if name == "" || !ok || link == "" {
			return
		}

		norm := model.NormalizeLabel(name)
		if seen[norm] || !b.accepted(norm) || topLevel[norm] {
			return
		}
		seen[norm] = true

		subs = append(subs, model.SubCategory{
			ID:       counter.Next(),
			ParentID: cat.ID,
			Name:     name,
			Link:     link,
		})
	})

	return subs
}
