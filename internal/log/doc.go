// Package log provides structured logging setup for otvetgrab.
//
// Loggers are built on log/slog with a sanitizing handler that masks
// credential-bearing attributes. The crawl can be configured with cookies
// and custom headers for authenticated access, and those values must never
// reach the log output in clear.
package log
