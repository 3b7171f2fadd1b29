package crawler

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/churnikov/otvetgrab/internal/config"
	"github.com/churnikov/otvetgrab/internal/model"
)

// DefaultNotFoundMarker is the canonical text the source shows on deleted or
// never-existing item pages. It is checked in addition to the not-found
// selector because very old deleted pages predate the current markup.
const DefaultNotFoundMarker = "Вопрос удалён либо ещё не создан"

// InvalidReason explains why a document was classified invalid.
type InvalidReason int

const (
	// ReasonNone: the document is valid.
	ReasonNone InvalidReason = iota

	// ReasonNotFound: the page carries the source's "item not found" marker.
	ReasonNotFound

	// ReasonNoCategory: no active-category marker was present.
	ReasonNoCategory

	// ReasonExcluded: the category is on the navigation-label exclusion set.
	ReasonExcluded

	// ReasonFiltered: a category allow-list is configured and the page's
	// category is not a member.
	ReasonFiltered
)

// String returns the reason name used in logs.
func (r InvalidReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonNotFound:
		return "not-found-marker"
	case ReasonNoCategory:
		return "no-category"
	case ReasonExcluded:
		return "excluded-category"
	case ReasonFiltered:
		return "filtered-category"
	default:
		return "unknown"
	}
}

// Classification is the result of classifying one fetched document.
type Classification struct {
	// Valid reports whether the document is an in-scope item page.
	Valid bool

	// Category is the active top-level category label (trimmed, original
	// casing). Set only when Valid.
	Category string

	// SubCategory is the active subcategory label, or empty when the page
	// carries no subcategory marker. A missing subcategory does not make
	// the page invalid.
	SubCategory string

	// Reason explains an invalid classification.
	Reason InvalidReason
}

// Classifier decides whether a fetched document is a valid, in-scope item
// page and extracts its category labels.
type Classifier struct {
	// sel holds the CSS selectors for the structural markers.
	sel config.Selectors

	// notFoundMarker is the canonical "item not found" text.
	notFoundMarker string

	// excluded maps normalized labels of the exclusion set.
	excluded map[string]bool

	// allowed maps normalized labels of the allow-list; nil means no
	// filter is configured ("all").
	allowed map[string]bool
}

// NewClassifier creates a Classifier. Exclusions always apply; allowList may
// be empty, which disables allow-list filtering entirely.
func NewClassifier(sel config.Selectors, exclusions, allowList []string) *Classifier {
	c := &Classifier{
		sel:            sel.Merge(),
		notFoundMarker: DefaultNotFoundMarker,
		excluded:       labelSet(exclusions),
	}
	if len(allowList) > 0 {
		c.allowed = labelSet(allowList)
	}
	return c
}

// labelSet builds a normalized-label membership set.
func labelSet(labels []string) map[string]bool {
	set := make(map[string]bool, len(labels))
	for _, l := range labels {
		set[model.NormalizeLabel(l)] = true
	}
	return set
}

// ParseDocument parses raw page content into a queryable document.
func ParseDocument(body []byte) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(bytes.NewReader(body))
}

// Classify inspects a parsed document and decides whether it is a valid,
// in-scope item page. Invalid pages are skipped permanently by the crawl
// controller, so the checks here must only reject pages that can never
// become valid: absent items, uncategorized pages, and pages whose category
// is excluded or filtered out.
func (c *Classifier) Classify(doc *goquery.Document) Classification {
	if doc.Find(c.sel.NotFound).Length() > 0 {
		return Classification{Reason: ReasonNotFound}
	}
	if c.notFoundMarker != "" && strings.Contains(doc.Text(), c.notFoundMarker) {
		return Classification{Reason: ReasonNotFound}
	}

	category := strings.TrimSpace(doc.Find(c.sel.Category).First().Text())
	if category == "" {
		return Classification{Reason: ReasonNoCategory}
	}

	norm := model.NormalizeLabel(category)
	if c.excluded[norm] {
		return Classification{Reason: ReasonExcluded}
	}
	if c.allowed != nil && !c.allowed[norm] {
		return Classification{Reason: ReasonFiltered}
	}

	// The subcategory marker is optional; many item pages only carry the
	// top-level category.
	subCategory := strings.TrimSpace(doc.Find(c.sel.SubCategory).First().Text())

	return Classification{
		Valid:       true,
		Category:    category,
		SubCategory: subCategory,
	}
}
