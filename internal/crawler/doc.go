// Package crawler provides page fetching, classification and extraction for
// the harvested Q&A source.
//
// # Components
//
//   - Fetcher: wraps the HTTP transport and converts each fetch into a
//     tri-state outcome (found, not found, transient failure), with bounded
//     exponential-backoff retry for the transient case
//   - Classifier: decides whether a fetched document is a valid, in-scope
//     item page and extracts its category labels
//   - Extractor: turns a valid document into a Question and its Answer rows
//
// Design decision: documents are queried through goquery CSS selectors
// rather than a hand-rolled DOM walk because every structural marker on the
// source is addressed by tag + class, and the selectors are configuration
// (see config.Selectors) so markup changes don't require a new build.
//
// # Politeness
//
// The fetcher is designed to be polite: it delays between requests, limits
// response body size, and sends a descriptive User-Agent.
package crawler
