package config

// Selectors are the CSS selectors used to query the source's markup. Each
// selector locates one structural marker on a page; all of them can be
// overridden from the YAML file so that markup changes on the source don't
// require a new build.
//
// The zero value of any field means "use the default for that marker"
// (see DefaultSelectors and Merge).
type Selectors struct {
	// NotFound matches the element shown on deleted or never-existing
	// item pages. Its presence classifies the page as absent.
	NotFound string `yaml:"notFound,omitempty"`

	// Category matches the active (selected) top-level category anchor on
	// an item page.
	Category string `yaml:"category,omitempty"`

	// SubCategory matches the active subcategory anchor on an item page.
	// Item pages without a subcategory simply have no match.
	SubCategory string `yaml:"subCategory,omitempty"`

	// Title matches the question heading on an item page.
	Title string `yaml:"title,omitempty"`

	// Comment matches the question author's comment blocks.
	Comment string `yaml:"comment,omitempty"`

	// Answer matches the answer blocks on an item page.
	Answer string `yaml:"answer,omitempty"`

	// CategoryList matches the category anchors on the taxonomy root page.
	CategoryList string `yaml:"categoryList,omitempty"`

	// SubCategoryList matches the subcategory anchors on a category page.
	SubCategoryList string `yaml:"subCategoryList,omitempty"`

	// QuestionLink matches item anchors on listing pages; the frontier
	// extracts numeric ids from their hrefs.
	QuestionLink string `yaml:"questionLink,omitempty"`
}

// DefaultSelectors returns the selector set for the touch markup of the
// source as of this writing.
func DefaultSelectors() Selectors {
	return Selectors{
		NotFound:        "div.error__deleted",
		Category:        "a.nav__item_active",
		SubCategory:     "a.subnav__item_active",
		Title:           "h1.question__title",
		Comment:         "div.question__comment",
		Answer:          "div.answer__text",
		CategoryList:    "ul.categories a.categories__link",
		SubCategoryList: "ul.subcategories a.categories__link",
		QuestionLink:    "a.question__link",
	}
}

// Merge fills every empty field from the defaults and returns the result.
// Explicit overrides win; everything else falls back to DefaultSelectors.
func (s Selectors) Merge() Selectors {
	def := DefaultSelectors()
	if s.NotFound == "" {
		s.NotFound = def.NotFound
	}
	if s.Category == "" {
		s.Category = def.Category
	}
	if s.SubCategory == "" {
		s.SubCategory = def.SubCategory
	}
	if s.Title == "" {
		s.Title = def.Title
	}
	if s.Comment == "" {
		s.Comment = def.Comment
	}
	if s.Answer == "" {
		s.Answer = def.Answer
	}
	if s.CategoryList == "" {
		s.CategoryList = def.CategoryList
	}
	if s.SubCategoryList == "" {
		s.SubCategoryList = def.SubCategoryList
	}
	if s.QuestionLink == "" {
		s.QuestionLink = def.QuestionLink
	}
	return s
}
