// Package main provides the entry point for the otvetgrab CLI.
//
// otvetgrab incrementally harvests questions, categories and answers from
// the Otvety Q&A site into a local SQLite database. Runs are resumable:
// each run crawls only the ids created since the previous run.
//
// Usage:
//
//	otvetgrab crawl
//	otvetgrab taxonomy
//	otvetgrab status
//
// See --help for all available options.
package main

// main is the entry point for otvetgrab.
func main() {
	Execute()
}
