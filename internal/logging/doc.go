// Package logging assembles structured slog loggers and formatting helpers used
// by the ocrsub command and its pipeline packages.
//
// It owns the console and JSON handlers, centralizes level and output plumbing,
// and exposes context helpers so extraction code can tag every line with the
// run identifier recorded in history. A no-op logger is provided for tests and
// library callers that do not configure logging.
package logging
