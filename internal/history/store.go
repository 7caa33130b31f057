package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"tidyup/internal/organizer"
)

// Fixed-width UTC timestamps keep lexical order equal to chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// RecordRun stores a finished run in one transaction.
func (s *Store) RecordRun(ctx context.Context, report organizer.RunReport) error {
	summary, err := json.Marshal(report.Summary)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	return retryOnBusy(ctx, func() error {
		return s.insertRun(ctx, report, string(summary))
	})
}

func (s *Store) insertRun(ctx context.Context, report organizer.RunReport, summary string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin run tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, source_dir, dry_run, date_mode, started_at, finished_at, summary_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		report.RunID, report.SourceDir, boolToInt(report.DryRun), string(report.DateMode),
		report.StartedAt.UTC().Format(timeLayout), report.FinishedAt.UTC().Format(timeLayout), summary,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	recStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_records (run_id, seq, source, destination, category, action, reason, error, extension, size_bytes, renamed, warned)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare record insert: %w", err)
	}
	defer recStmt.Close()
	for i, rec := range report.Records {
		if _, err := recStmt.ExecContext(ctx, report.RunID, i, rec.Source, rec.Destination, rec.Category,
			string(rec.Action), rec.Reason, rec.Error, rec.Extension, rec.SizeBytes,
			boolToInt(rec.Renamed), boolToInt(rec.Warned)); err != nil {
			return fmt.Errorf("insert record %d: %w", i, err)
		}
	}

	for i, w := range report.Warnings {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_warnings (run_id, seq, kind, file, message) VALUES (?, ?, ?, ?, ?)`,
			report.RunID, i, string(w.Kind), w.File, w.Message); err != nil {
			return fmt.Errorf("insert warning %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first. A non-positive limit
// returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, source_dir, dry_run, date_mode, started_at, finished_at, summary_json
	          FROM runs ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun loads a run by its ID or a unique ID prefix.
func (s *Store) GetRun(ctx context.Context, id string) (*RunDetail, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrNotFound
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source_dir, dry_run, date_mode, started_at, finished_at, summary_json
		 FROM runs WHERE id = ? OR substr(id, 1, ?) = ? ORDER BY id LIMIT 2`,
		id, len(id), id)
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	var matches []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		matches = append(matches, run)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	case 2:
		if matches[0].ID != id {
			return nil, fmt.Errorf("%w: %s", ErrAmbiguous, id)
		}
	}

	detail := &RunDetail{Run: matches[0]}
	if detail.Records, err = s.loadRecords(ctx, detail.ID); err != nil {
		return nil, err
	}
	if detail.Warnings, err = s.loadWarnings(ctx, detail.ID); err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *Store) loadRecords(ctx context.Context, runID string) ([]organizer.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source, destination, category, action, reason, error, extension, size_bytes, renamed, warned
		 FROM run_records WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	defer rows.Close()

	var records []organizer.Record
	for rows.Next() {
		var (
			rec             organizer.Record
			action          string
			renamed, warned int
		)
		if err := rows.Scan(&rec.Source, &rec.Destination, &rec.Category, &action, &rec.Reason,
			&rec.Error, &rec.Extension, &rec.SizeBytes, &renamed, &warned); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.Action = organizer.Action(action)
		rec.Renamed = renamed != 0
		rec.Warned = warned != 0
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *Store) loadWarnings(ctx context.Context, runID string) ([]organizer.Warning, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, file, message FROM run_warnings WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("load warnings: %w", err)
	}
	defer rows.Close()

	var warnings []organizer.Warning
	for rows.Next() {
		var (
			w    organizer.Warning
			kind string
		)
		if err := rows.Scan(&kind, &w.File, &w.Message); err != nil {
			return nil, fmt.Errorf("scan warning: %w", err)
		}
		w.Kind = organizer.WarningKind(kind)
		warnings = append(warnings, w)
	}
	return warnings, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run               Run
		dryRun            int
		started, finished string
		summaryJSON       string
	)
	if err := row.Scan(&run.ID, &run.SourceDir, &dryRun, &run.DateMode, &started, &finished, &summaryJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, ErrNotFound
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.DryRun = dryRun != 0
	var err error
	if run.StartedAt, err = time.Parse(timeLayout, started); err != nil {
		return Run{}, fmt.Errorf("parse started_at: %w", err)
	}
	if run.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
		return Run{}, fmt.Errorf("parse finished_at: %w", err)
	}
	if err := json.Unmarshal([]byte(summaryJSON), &run.Summary); err != nil {
		return Run{}, fmt.Errorf("decode summary: %w", err)
	}
	return run, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

// PruneBefore deletes runs that started before cutoff together with their
// records and warnings. It returns the number of runs removed.
func (s *Store) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var removed int64
	err := retryOnBusy(ctx, func() error {
		n, err := s.pruneBefore(ctx, cutoff.UTC().Format(timeLayout))
		removed = n
		return err
	})
	return removed, err
}

func (s *Store) pruneBefore(ctx context.Context, cutoff string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin prune tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Children first: foreign key enforcement is per connection.
	for _, table := range []string{"run_records", "run_warnings"} {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM `+table+` WHERE run_id IN (SELECT id FROM runs WHERE started_at < ?)`, cutoff); err != nil {
			return 0, fmt.Errorf("prune %s: %w", table, err)
		}
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit prune: %w", err)
	}
	return removed, nil
}
