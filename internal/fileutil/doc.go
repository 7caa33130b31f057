// Package fileutil holds the filesystem primitives the organizer relies on:
// non-replacing moves with a verified cross-device fallback, content hashing,
// and platform-specific creation time lookup.
package fileutil
