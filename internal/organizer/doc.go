// Package organizer is the organization engine: it moves the files of one
// flat directory into category subfolders chosen by extension.
//
// A run snapshots the directory listing once, plans every file through a
// single code path (category resolution, optional date prefixing, conflict
// resolution), and only then mutates the filesystem. Dry-run executes the same
// plan and records simulated moves instead, so both modes make identical
// decisions. Per-file failures become failed records and never abort the run;
// failure to read the source directory does.
//
// Extend placement behaviour here whenever a new way of choosing destinations
// is needed.
package organizer
