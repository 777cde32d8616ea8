// Package logging assembles structured slog loggers and formatting helpers used
// across captiondesk.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, masks credential-bearing attributes, and exposes context helpers
// so request-scoped code can tag log lines with queue item IDs, actions, and
// correlation IDs. A no-op logger is provided for tests and wiring code.
//
// Prefer these constructors over hand-rolled slog setup so new components
// emit data with the same shape as the rest of the program.
package logging
