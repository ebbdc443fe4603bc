// Package log provides structured logging for syncd using zerolog.
//
// Init configures the global Logger once at process start. Components call
// WithComponent to root a logger for that component. WithSessionID,
// WithDocGUID, and WithVaultID each enrich an existing logger with one more
// field, for the per-connection loggers pkg/session builds on top of an
// injected component logger.
package log
