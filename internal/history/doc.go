// Package history persists organization runs in SQLite.
//
// Every finished run, dry or not, is stored with its summary, one row per
// file record, and its warnings so `tidyup history` can show what happened to
// a directory after the console output is gone. The store is single-writer
// and retries briefly when SQLite reports the database as busy.
package history
