package model

import (
	"strings"

	"golang.org/x/text/cases"
)

// Category is a top-level taxonomy node discovered from the source's root
// listing. Categories are created once per taxonomy build and are immutable
// afterwards; the id is an ordinal assigned in discovery order, starting at 0,
// after excluded names have been filtered out.
type Category struct {
	// ID is the ordinal identifier assigned by the taxonomy builder.
	ID int64 `json:"id"`

	// Name is the category label as shown on the source, trimmed.
	Name string `json:"name"`

	// Link is the path fragment of the category page (e.g. "/autosport/").
	Link string `json:"link"`
}

// SubCategory is a second-level taxonomy node owned by exactly one Category.
//
// SubCategory ids are globally unique across all subcategories: the builder
// assigns them from a single counter that keeps running across parents, so
// parent 1's subcategories continue numbering where parent 0's left off.
type SubCategory struct {
	// ID is the globally unique ordinal identifier.
	ID int64 `json:"id"`

	// ParentID is the owning Category's id.
	ParentID int64 `json:"parent_id"`

	// Name is the subcategory label as shown on the source, trimmed.
	Name string `json:"name"`

	// Link is the path fragment of the subcategory page.
	Link string `json:"link"`
}

// labelFolder folds case for label comparison. The source is a Russian-language
// site, so we use Unicode case folding rather than ASCII lowercasing.
var labelFolder = cases.Fold()

// NormalizeLabel canonicalizes a category or subcategory label for lookup.
// It collapses internal whitespace, trims the result, and case-folds it.
//
// The source renders the same label with different whitespace and casing on
// the root listing and on item pages, so both taxonomy insertion and
// item-page resolution must normalize through this single function. The
// persisted Name keeps its original (trimmed) form; only index keys are
// normalized.
func NormalizeLabel(s string) string {
	return labelFolder.String(strings.Join(strings.Fields(s), " "))
}
