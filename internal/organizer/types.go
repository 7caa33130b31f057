package organizer

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"tidyup/internal/rules"
)

// Mode selects whether a run mutates the filesystem.
type Mode int

const (
	ModeExecute Mode = iota
	ModeDryRun
)

func (m Mode) String() string {
	if m == ModeDryRun {
		return "dry-run"
	}
	return "execute"
}

// DateMode selects which timestamp, if any, is prepended to file names.
type DateMode string

const (
	DateNone     DateMode = "none"
	DateModified DateMode = "modified"
	DateCreated  DateMode = "created"
)

// ParseDateMode maps a flag value to a DateMode. The empty string is DateNone.
func ParseDateMode(value string) (DateMode, error) {
	switch DateMode(strings.ToLower(strings.TrimSpace(value))) {
	case "", DateNone:
		return DateNone, nil
	case DateModified:
		return DateModified, nil
	case DateCreated:
		return DateCreated, nil
	default:
		return DateNone, fmt.Errorf("date prefixing %q must be modified or created", value)
	}
}

// Action is the outcome recorded for one enumerated file.
type Action string

const (
	ActionMoved     Action = "moved"
	ActionSimulated Action = "simulated"
	ActionSkipped   Action = "skipped"
	ActionFailed    Action = "failed"
	ActionDeleted   Action = "deleted"
)

// WarningKind classifies non-fatal conditions collected during a run.
type WarningKind string

const (
	WarningTimestampFallback WarningKind = "timestamp_fallback"
	WarningFileError         WarningKind = "file_error"
)

// Warning is a non-fatal condition attached to the run report.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	File    string      `json:"file,omitempty"`
	Message string      `json:"message"`
}

// Request is the immutable input of one run.
type Request struct {
	SourceDir  string
	Categories *CategoryResolver
	// CustomRules override the extension mapping for files they match.
	CustomRules *rules.Set
	Mode        Mode
	DateMode    DateMode

	// MinSizeBytes skips files smaller than the threshold when positive.
	MinSizeBytes int64
	// ArchiveOlderThanDays routes files last modified before the threshold
	// into the archive folder when positive.
	ArchiveOlderThanDays int
	// Dedupe skips files whose content was already seen in this run or
	// already sits at the planned destination.
	Dedupe bool
	// DeleteDuplicates removes duplicates found by Dedupe instead of
	// skipping them.
	DeleteDuplicates bool
	// InPlace keeps files in SourceDir; only renaming applies.
	InPlace bool
}

// FileEntry is one file taken from the directory snapshot.
type FileEntry struct {
	Path      string
	Name      string
	Extension string
	Size      int64
	ModTime   time.Time
	regular   bool
	symlink   bool
}

// PlannedMove is the resolved destination for one file.
type PlannedMove struct {
	Source          string `json:"source"`
	DestinationDir  string `json:"destination_dir"`
	DestinationName string `json:"destination_name"`
	Category        string `json:"category"`
	Destination     string `json:"destination"`
}

// Record is the single report line produced for every enumerated file.
type Record struct {
	Source      string `json:"source"`
	Destination string `json:"destination,omitempty"`
	Category    string `json:"category,omitempty"`
	Action      Action `json:"action"`
	Reason      string `json:"reason,omitempty"`
	Error       string `json:"error,omitempty"`
	Extension   string `json:"extension,omitempty"`
	SizeBytes   int64  `json:"size_bytes"`
	Renamed     bool   `json:"renamed,omitempty"`
	Warned      bool   `json:"warned,omitempty"`
}

// ExtensionCount is one row of the extension breakdown.
type ExtensionCount struct {
	Extension string `json:"extension"`
	Count     int    `json:"count"`
}

// Summary aggregates the records of a run.
type Summary struct {
	Files              int              `json:"files"`
	Moved              int              `json:"moved"`
	Simulated          int              `json:"simulated"`
	Skipped            int              `json:"skipped"`
	Failed             int              `json:"failed"`
	Deleted            int              `json:"deleted"`
	Renamed            int              `json:"renamed"`
	Warned             int              `json:"warned"`
	DirectoriesCreated int              `json:"directories_created"`
	BytesProcessed     int64            `json:"bytes_processed"`
	TopExtensions      []ExtensionCount `json:"top_extensions,omitempty"`
}

// Succeeded counts files that reached their intended outcome.
func (s Summary) Succeeded() int {
	return s.Moved + s.Simulated + s.Deleted
}

// RunReport is the result of one organization run.
type RunReport struct {
	RunID      string    `json:"run_id"`
	SourceDir  string    `json:"source_dir"`
	DryRun     bool      `json:"dry_run"`
	DateMode   DateMode  `json:"date_mode"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Summary    Summary   `json:"summary"`
	Records    []Record  `json:"records"`
	Warnings   []Warning `json:"warnings,omitempty"`

	directoriesCreated int
}

const topExtensionLimit = 5

// Finalize normalizes timestamps to UTC and derives the summary from the
// records. Records keep enumeration order.
func (r *RunReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	s := Summary{Files: len(r.Records), DirectoriesCreated: r.directoriesCreated}
	extCounts := make(map[string]int)
	for _, rec := range r.Records {
		switch rec.Action {
		case ActionMoved:
			s.Moved++
		case ActionSimulated:
			s.Simulated++
		case ActionSkipped:
			s.Skipped++
		case ActionFailed:
			s.Failed++
		case ActionDeleted:
			s.Deleted++
		}
		if rec.Renamed {
			s.Renamed++
		}
		if rec.Warned {
			s.Warned++
		}
		switch rec.Action {
		case ActionMoved, ActionSimulated, ActionDeleted:
			s.BytesProcessed += rec.SizeBytes
			ext := rec.Extension
			if ext == "" {
				ext = "(none)"
			}
			extCounts[ext]++
		}
	}
	for ext, count := range extCounts {
		s.TopExtensions = append(s.TopExtensions, ExtensionCount{Extension: ext, Count: count})
	}
	sort.Slice(s.TopExtensions, func(i, j int) bool {
		a, b := s.TopExtensions[i], s.TopExtensions[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Extension < b.Extension
	})
	if len(s.TopExtensions) > topExtensionLimit {
		s.TopExtensions = s.TopExtensions[:topExtensionLimit]
	}
	r.Summary = s
}
