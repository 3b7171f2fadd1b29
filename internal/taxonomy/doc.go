// Package taxonomy discovers the two-level category tree of the source.
//
// The Builder fetches the root listing, enumerates top-level category
// anchors, filters navigation labels and (when configured) applies the
// category allow-list, then follows each surviving category's link to
// enumerate its subcategories. Category ids are ordinals in discovery
// order; subcategory ids come from one counter shared across all parents,
// so they are globally unique.
//
// A failed root fetch is fatal (ErrTaxonomyUnavailable): without categories
// nothing downstream can resolve labels. A failed subcategory page leaves
// that category with zero subcategories instead of aborting the build.
package taxonomy
