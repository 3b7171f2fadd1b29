// Package pipeline orchestrates a crawl run over the id frontier.
//
// # Components
//
//   - ComputeFrontier: compares the persisted watermark against the
//     source's current maximum id and yields the half-open range
//     [FromID, ToID) still to be crawled
//   - Controller: drives fetch → classify → resolve → extract → persist
//     for every candidate id in the frontier
//
// # Ordering and resumption
//
// The persisted maximum question id is the sole resumption checkpoint, so
// the controller never lets it advance past an unresolved id: workers may
// fetch concurrently, but a single committer applies results strictly in
// increasing id order. A crash or cancellation therefore always leaves the
// store at a watermark from which the next run resumes correctly.
//
// Per-id errors are local: absent and invalid pages are skipped permanently,
// retry-exhausted failures are recorded and stay re-crawlable. Only an
// unavailable taxonomy or frontier aborts a run.
package pipeline
