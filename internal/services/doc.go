// Package services defines shared utilities consumed by the organization
// engine and the CLI.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers, stage names, and the source
//     directory for logging.
//   - Structured error markers plus the Wrap helper that separate fatal run
//     failures (configuration, enumeration, locking) from per-file failures
//     that are recorded and skipped.
//
// Use these helpers when wiring new engine logic so error classification and
// log fields stay uniform across the tool.
package services
