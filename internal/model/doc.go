// Package model defines the core data structures used throughout otvetgrab.
//
// This package contains the following main types:
//   - Category, SubCategory: the two-level taxonomy discovered from the source
//   - Question, Answer: a harvested item and its answer rows
//   - CrawlSummary: the outcome of one crawl run
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (crawler, taxonomy, pipeline, database,
// report) need to use these types, so centralizing them prevents import cycles.
//
// The models map directly onto the SQLite schema and are serializable to JSON
// for report output.
package model
