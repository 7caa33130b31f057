package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"tidyup/internal/organizer"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

func paint(s, color string, colorize bool) string {
	if !colorize || color == "" {
		return s
	}
	return color + s + ansiReset
}

// renderReport prints the per-file table, the summary, and a closing status
// line for an organize run.
func renderReport(report organizer.RunReport, colorize bool) string {
	var b strings.Builder
	if report.DryRun {
		b.WriteString(paint("Dry run: no files were changed.", ansiBlue, colorize))
		b.WriteString("\n")
	}
	if len(report.Records) == 0 {
		fmt.Fprintf(&b, "No files to organize in %s\n", report.SourceDir)
	} else {
		b.WriteString(renderTable(
			[]string{"File", "Action", "Destination", "Note"},
			buildRecordRows(report),
			nil,
		))
		b.WriteString("\n")
	}

	b.WriteString(renderTable([]string{"Summary", "Count"}, buildSummaryRows(report), []columnAlignment{alignLeft, alignRight}))
	b.WriteString("\n")

	for _, w := range report.Warnings {
		if w.Kind == organizer.WarningTimestampFallback {
			fmt.Fprintf(&b, "%s %s: %s\n", paint("warning:", ansiYellow, colorize), filepath.Base(w.File), w.Message)
		}
	}

	s := report.Summary
	status := fmt.Sprintf("Run %s: %d succeeded, %d warned, %d failed, %d skipped",
		shortRunID(report.RunID), s.Succeeded(), s.Warned, s.Failed, s.Skipped)
	color := ansiGreen
	switch {
	case s.Failed > 0:
		color = ansiRed
	case s.Warned > 0:
		color = ansiYellow
	}
	b.WriteString(paint(status, color, colorize))
	b.WriteString("\n")
	return b.String()
}

func buildRecordRows(report organizer.RunReport) [][]string {
	rows := make([][]string, 0, len(report.Records))
	for _, rec := range report.Records {
		dest := ""
		if rec.Destination != "" {
			dest = relativeTo(report.SourceDir, rec.Destination)
		}
		note := rec.Reason
		if rec.Error != "" {
			note = rec.Error
		}
		rows = append(rows, []string{
			filepath.Base(rec.Source),
			actionLabel(rec),
			dest,
			note,
		})
	}
	return rows
}

func buildSummaryRows(report organizer.RunReport) [][]string {
	s := report.Summary
	rows := [][]string{{"Files", strconv.Itoa(s.Files)}}
	if report.DryRun {
		rows = append(rows, []string{"Would move", strconv.Itoa(s.Simulated)})
	} else {
		rows = append(rows, []string{"Moved", strconv.Itoa(s.Moved)})
	}
	rows = append(rows,
		[]string{"Skipped", strconv.Itoa(s.Skipped)},
		[]string{"Failed", strconv.Itoa(s.Failed)},
	)
	if s.Deleted > 0 {
		rows = append(rows, []string{"Deleted", strconv.Itoa(s.Deleted)})
	}
	rows = append(rows,
		[]string{"Renamed", strconv.Itoa(s.Renamed)},
		[]string{"Folders created", strconv.Itoa(s.DirectoriesCreated)},
		[]string{"Data", humanize.IBytes(uint64(max(s.BytesProcessed, 0)))},
	)
	if len(s.TopExtensions) > 0 {
		parts := make([]string, 0, len(s.TopExtensions))
		for _, ext := range s.TopExtensions {
			parts = append(parts, fmt.Sprintf("%s (%d)", ext.Extension, ext.Count))
		}
		rows = append(rows, []string{"Top extensions", strings.Join(parts, ", ")})
	}
	return rows
}

func actionLabel(rec organizer.Record) string {
	if rec.Action != organizer.ActionSimulated {
		return string(rec.Action)
	}
	if strings.HasPrefix(rec.Reason, "would delete") {
		return "would delete"
	}
	return "would move"
}

func relativeTo(base, path string) string {
	if rel, err := filepath.Rel(base, path); err == nil {
		return rel
	}
	return path
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
