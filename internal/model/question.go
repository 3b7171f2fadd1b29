package model

// Question is a single harvested item. The id is assigned by the source
// (it is the numeric page identifier), never generated locally. Questions
// are created exactly once when first validly fetched and are append-only:
// this core never updates or deletes them.
type Question struct {
	// ID is the source-assigned numeric identifier of the item page.
	ID int64 `json:"id"`

	// CategoryID references the resolved top-level Category.
	CategoryID int64 `json:"category_id"`

	// SubCategoryID references the resolved SubCategory, or nil when the
	// item page carried no subcategory marker.
	SubCategoryID *int64 `json:"sub_category_id,omitempty"`

	// Title is the question heading.
	Title string `json:"title"`

	// Comment is the author's comment blocks joined with a single space,
	// or nil when the page had none. Nil and empty string are distinct:
	// nil means "no comment blocks found".
	Comment *string `json:"comment,omitempty"`
}

// Answer is one answer row belonging to a Question. Every persisted Question
// has at least one Answer row: when the source page shows no answers, a single
// sentinel row with nil Text records "no answers observed", which is distinct
// from "not yet crawled" (no rows at all).
type Answer struct {
	// QuestionID references the owning Question.
	QuestionID int64 `json:"question_id"`

	// Text is the answer body. Nil marks the no-answers sentinel row;
	// an empty string is a real answer whose text happened to be empty.
	Text *string `json:"text,omitempty"`
}

// SentinelAnswer returns the nil-text sentinel row for a question that had
// zero answer blocks.
func SentinelAnswer(questionID int64) Answer {
	return Answer{QuestionID: questionID}
}
