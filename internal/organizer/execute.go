package organizer

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"tidyup/internal/fileutil"
	"tidyup/internal/logging"
	"tidyup/internal/services"
)

// executor turns plan steps into records. It is the only part of a run that
// mutates the filesystem, and only when the mode is ModeExecute.
type executor struct {
	mode             Mode
	deleteDuplicates bool
	source           string
	logger           *slog.Logger
	ensured          map[string]struct{}
	report           *RunReport
}

func (e *executor) apply(step planStep) {
	entry := step.entry
	rec := Record{
		Source:    entry.Path,
		Extension: entry.Extension,
		SizeBytes: entry.Size,
	}
	if step.warning != nil {
		rec.Warned = true
		e.report.Warnings = append(e.report.Warnings, *step.warning)
		logging.WarnWithContext(e.logger, "creation time unavailable, using modification time", string(WarningTimestampFallback),
			logging.String("file", entry.Name),
			logging.String(logging.FieldErrorHint, "the filesystem does not record birth time"),
			logging.String(logging.FieldImpact, "date prefix reflects the modification time"),
		)
	}

	switch {
	case step.err != nil:
		e.fail(&rec, "plan", step.err)
	case step.skip != "":
		rec.Action = ActionSkipped
		rec.Reason = step.skip
		e.logger.Info("file skipped", logging.String("file", entry.Name), logging.String("reason", step.skip))
	case step.duplicateOf != "":
		e.applyDuplicate(&rec, step)
	default:
		e.applyMove(&rec, step)
	}
	e.report.Records = append(e.report.Records, rec)
}

func (e *executor) applyDuplicate(rec *Record, step planStep) {
	rec.Reason = "duplicate of " + e.relative(step.duplicateOf)
	if !e.deleteDuplicates {
		rec.Action = ActionSkipped
		e.logger.Info("duplicate skipped", logging.String("file", step.entry.Name), logging.String("reason", rec.Reason))
		return
	}
	if e.mode == ModeDryRun {
		rec.Action = ActionSimulated
		rec.Reason = "would delete " + rec.Reason
		e.logger.Info("dry-run: would delete duplicate", logging.String("file", step.entry.Name), logging.String("reason", rec.Reason))
		return
	}
	if err := os.Remove(step.entry.Path); err != nil {
		e.fail(rec, "delete duplicate", err)
		return
	}
	rec.Action = ActionDeleted
	e.logger.Info("duplicate deleted", logging.String("file", step.entry.Name), logging.String("reason", rec.Reason))
}

func (e *executor) applyMove(rec *Record, step planStep) {
	move := step.move
	rec.Destination = move.Destination
	rec.Category = move.Category
	rec.Renamed = move.DestinationName != step.entry.Name
	if step.rule != "" {
		rec.Reason = "rule: " + step.rule
	}
	attrs := []logging.Attr{
		logging.String("file", step.entry.Name),
		logging.String("category", move.Category),
		logging.String("destination", e.relative(move.Destination)),
		logging.Int64("size_bytes", step.entry.Size),
	}

	if e.mode == ModeDryRun {
		rec.Action = ActionSimulated
		e.logger.Info("dry-run: would move file", logging.Args(attrs...)...)
		return
	}

	if err := e.ensureDir(move.DestinationDir); err != nil {
		e.fail(rec, "create folder", err)
		return
	}
	result, err := fileutil.MoveFile(move.Source, move.Destination)
	if err != nil {
		e.fail(rec, "move file", err)
		return
	}
	rec.Action = ActionMoved
	if result.Copied {
		attrs = append(attrs, logging.Bool("cross_device", true))
	}
	e.logger.Info("file moved", logging.Args(attrs...)...)
}

func (e *executor) ensureDir(dir string) error {
	if _, ok := e.ensured[dir]; ok {
		return nil
	}
	info, err := os.Stat(dir)
	switch {
	case err == nil:
		if !info.IsDir() {
			return fmt.Errorf("%s exists and is not a directory", dir)
		}
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		e.report.directoriesCreated++
	default:
		return err
	}
	e.ensured[dir] = struct{}{}
	return nil
}

func (e *executor) fail(rec *Record, op string, err error) {
	err = services.Wrap(services.ErrPerFile, filepath.Base(rec.Source), op, "", err)
	rec.Action = ActionFailed
	rec.Error = err.Error()
	e.report.Warnings = append(e.report.Warnings, Warning{
		Kind:    WarningFileError,
		File:    rec.Source,
		Message: err.Error(),
	})
	logging.WarnWithContext(e.logger, "file not organized", string(WarningFileError),
		logging.String("file", filepath.Base(rec.Source)),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check permissions on the file and its destination folder"),
		logging.String(logging.FieldImpact, "file left in place"),
	)
}

func (e *executor) relative(path string) string {
	if rel, err := filepath.Rel(e.source, path); err == nil {
		return rel
	}
	return path
}
