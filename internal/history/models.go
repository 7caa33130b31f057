package history

import (
	"errors"
	"time"

	"tidyup/internal/organizer"
)

// ErrNotFound is returned when no run matches a lookup.
var ErrNotFound = errors.New("run not found")

// ErrAmbiguous is returned when a run ID prefix matches more than one run.
var ErrAmbiguous = errors.New("run id prefix is ambiguous")

// Run is the stored header of one organization run.
type Run struct {
	ID         string
	SourceDir  string
	DryRun     bool
	DateMode   string
	StartedAt  time.Time
	FinishedAt time.Time
	Summary    organizer.Summary
}

// RunDetail is a run together with its per-file records and warnings.
type RunDetail struct {
	Run
	Records  []organizer.Record
	Warnings []organizer.Warning
}
