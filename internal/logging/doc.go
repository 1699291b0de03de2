// Package logging provides structured logging helpers built on log/slog.
//
// It defines canonical attribute keys used across the codebase so that log
// output stays consistent and greppable, plus helpers for PII-safe logging
// of email addresses and tokens.
package logging
