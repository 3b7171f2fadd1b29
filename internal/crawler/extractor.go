package crawler

import (
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/churnikov/otvetgrab/internal/config"
	"github.com/churnikov/otvetgrab/internal/model"
)

// ErrNoTitle is returned when a document classified as valid carries no
// title block. This indicates markup drift on the source rather than an
// absent item, so the crawl controller records it as a failure instead of
// a permanent skip.
var ErrNoTitle = errors.New("item page has no title block")

// Extractor parses a valid item document into a Question and its Answer rows.
type Extractor struct {
	// sel holds the CSS selectors for the content blocks.
	sel config.Selectors
}

// NewExtractor creates an Extractor using the given selectors.
func NewExtractor(sel config.Selectors) *Extractor {
	return &Extractor{sel: sel.Merge()}
}

// Extract builds the Question and Answer rows for a document that the
// Classifier accepted. The category ids must already be resolved against
// the persisted taxonomy.
//
// Field semantics:
//   - Title: the first match of the title selector; its absence is an error.
//   - Comment: all author comment blocks joined with a single space, nil
//     when there are zero blocks. Nil and empty string are distinct.
//   - Answers: one row per answer block, preserving empty-string text.
//     Zero answer blocks yield exactly one sentinel row with nil text.
func (e *Extractor) Extract(doc *goquery.Document, questionID, categoryID int64, subCategoryID *int64) (*model.Question, []model.Answer, error) {
	title := strings.TrimSpace(doc.Find(e.sel.Title).First().Text())
	if title == "" {
		return nil, nil, ErrNoTitle
	}

	q := &model.Question{
		ID:            questionID,
		CategoryID:    categoryID,
		SubCategoryID: subCategoryID,
		Title:         title,
		Comment:       e.extractComment(doc),
	}

	return q, e.extractAnswers(doc, questionID), nil
}

// extractComment joins the author's comment blocks with single spaces.
// Returns nil when the page has no comment blocks; a page whose only
// comment block is empty still yields a (empty) non-nil comment.
func (e *Extractor) extractComment(doc *goquery.Document) *string {
	var parts []string
	doc.Find(e.sel.Comment).Each(func(_ int, s *goquery.Selection) {
		parts = append(parts, strings.TrimSpace(s.Text()))
	})

	if len(parts) == 0 {
		return nil
	}

	comment := strings.Join(parts, " ")
	return &comment
}

// extractAnswers builds one Answer row per answer block. An answer whose
// text is empty is kept as an empty-string row: empty and absent are
// distinct and both representable. Zero blocks yield the sentinel row.
func (e *Extractor) extractAnswers(doc *goquery.Document, questionID int64) []model.Answer {
	var answers []model.Answer
	doc.Find(e.sel.Answer).Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		answers = append(answers, model.Answer{QuestionID: questionID, Text: &text})
	})

	if len(answers) == 0 {
		return []model.Answer{model.SentinelAnswer(questionID)}
	}
	return answers
}
