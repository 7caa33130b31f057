// Package runlock keeps two execute runs from organizing the same source
// directory at once. Locks are advisory flock(2) files under the state
// directory, one per absolute source path, and are released when the
// holding process exits even if it crashes.
package runlock
