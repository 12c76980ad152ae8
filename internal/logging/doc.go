// Package logging assembles structured slog loggers and formatting helpers used
// across ytpulse.
//
// It owns the console and JSON handlers, level and output plumbing, and the
// context helpers that tag log lines with job and request identifiers. Logs go
// to stderr, plus a file under the configured log directory, so command output
// on stdout stays machine readable.
package logging
