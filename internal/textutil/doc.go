// Package textutil provides text helpers shared by the configuration loader
// and the organization engine.
//
// The primary use cases are:
//   - Normalizing file extensions with Unicode case folding so rule lookups
//     are case-insensitive
//   - Validating category names as single, non-escaping path segments
//   - Sanitizing filenames for safe filesystem use
package textutil
