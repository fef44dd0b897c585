// Package logging assembles the slog loggers used across reelkit.
//
// The console handler prints one header line per record with short field
// sets inline and longer ones as an indented block; the JSON handler writes
// one object per line. Every record carries the invocation's session ID,
// and the command and listing kind are lifted from the context when present.
// CleanupOldLogs prunes daily log files past their retention window.
package logging
