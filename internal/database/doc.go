// Package database provides SQLite-backed persistence for harvested data.
//
// The Store exposes the four tables of the harvest schema (categories,
// sub_categories, questions, answers) behind transactional operations:
// one transaction per taxonomy batch and one per question with its answers.
// A crash between fetch and commit therefore never leaves a partial row,
// and the persisted maximum question id stays a reliable resumption
// checkpoint.
//
// All statements are parameterized; no value is ever formatted into SQL
// text. Errors are classified into transient faults (retry-eligible) and
// schema violations via ClassifyError.
package database
