// Package main hosts the tidyup CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration, builds the logger, and
// hands each invocation to the internal packages: organize runs the
// organizer behind preflight checks and a per-directory run lock, while the
// config, categories, and history commands inspect state without touching
// any files.
//
// Keep this package thin. New behaviour belongs in internal/ first and is
// surfaced here through flags and rendering only.
package main
