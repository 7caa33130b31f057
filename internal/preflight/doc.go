// Package preflight provides readiness checks for the filesystem paths that
// an organization run depends on.
//
// The organize command calls RunAll before planning. A failed source
// directory check aborts the run with an enumeration error; failures on the
// state or log directories only disable history or the run log.
//
// Dry runs never write, so their source directory check only requires
// read and search access.
package preflight
