// Package services defines shared utilities consumed by the CLI commands and
// the external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp session IDs, command names, and listing kinds
//     for logging.
//   - Structured error markers plus the Wrap helper that classify failures so
//     the CLI can report consistent exit codes.
//
// Use these helpers when wiring new commands so error handling and
// observability stay uniform across the tool.
package services
