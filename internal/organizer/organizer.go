package organizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"tidyup/internal/config"
	"tidyup/internal/fileutil"
	"tidyup/internal/logging"
	"tidyup/internal/services"
)

// HistoryRecorder persists finished runs.
type HistoryRecorder interface {
	RecordRun(ctx context.Context, report RunReport) error
}

// Dependencies are the collaborators an Organizer can have replaced in tests.
type Dependencies struct {
	History   HistoryRecorder
	Now       func() time.Time
	BirthTime func(path string) (time.Time, bool, error)
	NewRunID  func() string
}

// Organizer runs organization requests.
type Organizer struct {
	logger    *slog.Logger
	prefixer  DatePrefixer
	archive   string
	history   HistoryRecorder
	now       func() time.Time
	birthTime func(string) (time.Time, bool, error)
	newRunID  func() string
}

// NewOrganizer constructs an organizer using default dependencies.
func NewOrganizer(cfg *config.Config, logger *slog.Logger, history HistoryRecorder) *Organizer {
	return NewOrganizerWithDependencies(cfg, logger, Dependencies{History: history})
}

// NewOrganizerWithDependencies allows injecting collaborators (used in tests).
func NewOrganizerWithDependencies(cfg *config.Config, logger *slog.Logger, deps Dependencies) *Organizer {
	o := &Organizer{
		logger:    logging.NewComponentLogger(logger, "organizer"),
		prefixer:  DatePrefixer{Layout: cfg.Organize.DateLayout, Separator: cfg.Organize.DateSeparator},
		archive:   cfg.Organize.ArchiveCategory,
		history:   deps.History,
		now:       deps.Now,
		birthTime: deps.BirthTime,
		newRunID:  deps.NewRunID,
	}
	if o.now == nil {
		o.now = time.Now
	}
	if o.birthTime == nil {
		o.birthTime = fileutil.BirthTime
	}
	if o.newRunID == nil {
		o.newRunID = uuid.NewString
	}
	return o
}

// Run organizes req.SourceDir. Per-file problems are reported as failed
// records; the returned error is non-nil only for configuration or
// enumeration failures, or when ctx is cancelled, in which case the report
// covers the files handled so far.
func (o *Organizer) Run(ctx context.Context, req Request) (RunReport, error) {
	source, err := o.validate(req)
	if err != nil {
		return RunReport{}, err
	}
	req.DateMode, _ = ParseDateMode(string(req.DateMode))

	runID := o.newRunID()
	ctx = services.WithRunID(ctx, runID)
	ctx = services.WithSourceDir(ctx, source)
	report := RunReport{
		RunID:     runID,
		SourceDir: source,
		DryRun:    req.Mode == ModeDryRun,
		DateMode:  req.DateMode,
		StartedAt: o.now(),
	}

	scanCtx := services.WithStage(ctx, "scan")
	logger := logging.WithContext(scanCtx, o.logger)
	logger.Info("organization started",
		logging.String("mode", req.Mode.String()),
		logging.String("date_prefixing", string(req.DateMode)),
	)
	entries, err := scanDirectory(source)
	if err != nil {
		logging.ErrorWithContext(logger, "source directory unreadable", "enumeration_failed", logging.Error(err))
		return RunReport{}, services.Wrap(services.ErrEnumeration, "scan", "read source directory", source, err)
	}

	planCtx := services.WithStage(ctx, "plan")
	planner := newPlanner(req, source, o.prefixer, o.archive, report.StartedAt, o.birthTime)
	steps := make([]planStep, 0, len(entries))
	for _, entry := range entries {
		if err := planCtx.Err(); err != nil {
			return o.finish(ctx, report, err)
		}
		steps = append(steps, planner.plan(entry))
	}
	logging.WithContext(planCtx, o.logger).Debug("plan ready", logging.Int("files", len(steps)))

	execCtx := services.WithStage(ctx, "execute")
	exec := &executor{
		mode:             req.Mode,
		deleteDuplicates: req.DeleteDuplicates,
		source:           source,
		logger:           logging.WithContext(execCtx, o.logger),
		ensured:          make(map[string]struct{}),
		report:           &report,
	}
	for _, step := range steps {
		if err := execCtx.Err(); err != nil {
			return o.finish(ctx, report, err)
		}
		exec.apply(step)
	}
	return o.finish(ctx, report, nil)
}

func (o *Organizer) validate(req Request) (string, error) {
	if req.SourceDir == "" {
		return "", services.Wrap(services.ErrConfiguration, "organize", "validate request", "source directory is required", nil)
	}
	if req.Categories == nil {
		return "", services.Wrap(services.ErrConfiguration, "organize", "validate request", "category mapping is required", nil)
	}
	if _, err := ParseDateMode(string(req.DateMode)); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "organize", "validate request", "", err)
	}
	if req.DeleteDuplicates && !req.Dedupe {
		return "", services.Wrap(services.ErrConfiguration, "organize", "validate request", "deleting duplicates requires dedupe", nil)
	}
	if req.MinSizeBytes < 0 || req.ArchiveOlderThanDays < 0 {
		return "", services.Wrap(services.ErrConfiguration, "organize", "validate request", "size and age thresholds must not be negative", nil)
	}

	source, err := filepath.Abs(req.SourceDir)
	if err != nil {
		return "", services.Wrap(services.ErrEnumeration, "organize", "resolve source directory", req.SourceDir, err)
	}
	info, err := os.Stat(source)
	if err != nil {
		return "", services.Wrap(services.ErrEnumeration, "organize", "stat source directory", source, err)
	}
	if !info.IsDir() {
		return "", services.Wrap(services.ErrEnumeration, "organize", "stat source directory", fmt.Sprintf("%s is not a directory", source), nil)
	}
	return source, nil
}

func (o *Organizer) finish(ctx context.Context, report RunReport, runErr error) (RunReport, error) {
	report.FinishedAt = o.now()
	report.Finalize()
	logger := logging.WithContext(ctx, o.logger)

	if o.history != nil {
		// History must survive a cancelled run context.
		if err := o.history.RecordRun(context.WithoutCancel(ctx), report); err != nil {
			logging.WarnWithContext(logger, "run history not recorded", "history_write_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "run missing from tidyup history"),
			)
		}
	}

	s := report.Summary
	attrs := []logging.Attr{
		logging.Int("files", s.Files),
		logging.Int("moved", s.Moved),
		logging.Int("simulated", s.Simulated),
		logging.Int("skipped", s.Skipped),
		logging.Int("failed", s.Failed),
		logging.Int("deleted", s.Deleted),
		logging.Int("warnings", len(report.Warnings)),
		logging.Int64("bytes_processed", s.BytesProcessed),
		logging.Duration("run_duration", report.FinishedAt.Sub(report.StartedAt)),
	}
	if s.Failed > 0 {
		attrs = append(attrs, logging.Alert(fmt.Sprintf("%d file(s) not organized", s.Failed)))
	}
	if runErr != nil {
		if errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded) {
			logging.WarnWithContext(logger, "organization interrupted", "run_cancelled",
				append(attrs, logging.String(logging.FieldImpact, "remaining files were not processed"))...)
		}
		return report, runErr
	}
	logger.Info("organization complete", logging.Args(attrs...)...)
	return report, nil
}
