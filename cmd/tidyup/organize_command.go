package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tidyup/internal/config"
	"tidyup/internal/history"
	"tidyup/internal/logging"
	"tidyup/internal/organizer"
	"tidyup/internal/preflight"
	"tidyup/internal/rules"
	"tidyup/internal/runlock"
	"tidyup/internal/services"
)

type organizeOptions struct {
	dryRun           bool
	datePrefixing    string
	minSizeMB        float64
	archiveOlderThan int
	dedupe           bool
	deleteDuplicates bool
	yes              bool
	inPlace          bool
	jsonOutput       bool
}

func newOrganizeCommand(ctx *commandContext) *cobra.Command {
	var opts organizeOptions

	cmd := &cobra.Command{
		Use:   "organize <directory>",
		Short: "Move files into category folders by extension",
		Long: `Move every file at the top level of <directory> into <directory>/<category>/,
choosing the category from the file extension. Subdirectories are left alone
and existing files are never overwritten; clashing names get a _1, _2, ...
suffix before the extension.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrganize(cmd, ctx, args[0], opts)
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&opts.dryRun, "dry-run", "d", false, "Show what would happen without touching any file")
	flags.StringVar(&opts.datePrefixing, "date-prefixing", "", "Prefix file names with their date: modified or created")
	flags.Float64Var(&opts.minSizeMB, "min-size-mb", 0, "Skip files smaller than this many MiB")
	flags.IntVar(&opts.archiveOlderThan, "archive-older-than", 0, "Move files not modified for this many days under the archive folder")
	flags.BoolVar(&opts.dedupe, "dedupe", false, "Skip files whose content duplicates another file")
	flags.BoolVar(&opts.dedupe, "deduping", false, "Alias for --dedupe")
	_ = flags.MarkHidden("deduping")
	flags.BoolVar(&opts.deleteDuplicates, "delete-duplicates", false, "Delete duplicates found by --dedupe instead of skipping them")
	flags.BoolVarP(&opts.yes, "yes", "y", false, "Do not ask before deleting duplicates")
	flags.BoolVar(&opts.inPlace, "in-place", false, "Keep files in the directory and only rename them")
	flags.BoolVar(&opts.jsonOutput, "json", false, "Print the run report as JSON")
	return cmd
}

func runOrganize(cmd *cobra.Command, ctx *commandContext, dir string, opts organizeOptions) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.logger(cmd)
	if err != nil {
		return err
	}

	req, skipped, err := buildRequest(cfg, dir, opts)
	if err != nil {
		return err
	}
	logRuleWarnings(logger, cfg.Organize.RulesFile, skipped)

	historyUsable := cfg.History.Enabled
	lockDir := cfg.LockDir()
	for _, result := range preflight.RunAll(cfg, req.SourceDir, opts.dryRun) {
		if result.Name == preflight.SourceCheck {
			if err := result.Err(); err != nil {
				return err
			}
			continue
		}
		if result.Passed {
			continue
		}
		impact := "run continues without this feature"
		switch result.Name {
		case preflight.SourceWriteCheck:
			impact = "files that cannot be moved are reported as failed"
		case preflight.StateCheck:
			historyUsable = false
			lockDir = runlock.FallbackDir()
			impact = "run history disabled; run lock kept in " + lockDir
		case preflight.LogCheck:
			impact = "log lines go to the console only"
		}
		logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
			logging.String("check", result.Name),
			logging.String("reason", result.Detail),
			logging.String(logging.FieldImpact, impact),
		)
	}

	if req.DeleteDuplicates && !opts.dryRun && !opts.yes {
		confirmed, err := confirmDeletion(cmd.InOrStdin(), cmd.ErrOrStderr(), req.SourceDir)
		if err != nil {
			return err
		}
		if !confirmed {
			return services.Wrap(services.ErrValidation, "organize", "confirm deletion", "duplicate deletion declined", nil)
		}
	}

	if !opts.dryRun {
		lock, err := runlock.Acquire(lockDir, req.SourceDir)
		if err != nil {
			return err
		}
		defer func() {
			if err := lock.Release(); err != nil {
				logger.Warn("failed to release run lock", logging.Error(err))
			}
		}()
	}

	var recorder organizer.HistoryRecorder
	if historyUsable {
		store, err := history.Open(cfg)
		if err != nil {
			logging.WarnWithContext(logger, "run history unavailable", "history_open_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "run missing from tidyup history"),
			)
		} else {
			defer store.Close()
			recorder = store
		}
	}

	org := organizer.NewOrganizer(cfg, logger, recorder)
	report, runErr := org.Run(cmd.Context(), req)
	if report.RunID == "" {
		return runErr
	}

	out := cmd.OutOrStdout()
	if opts.jsonOutput {
		if err := writeJSON(cmd, report); err != nil {
			return err
		}
		return runErr
	}
	fmt.Fprint(out, renderReport(report, shouldColorize(out)))
	return runErr
}

// buildRequest validates flags and assembles the organizer request.
func buildRequest(cfg *config.Config, dir string, opts organizeOptions) (organizer.Request, []rules.Skipped, error) {
	invalid := func(msg string, err error) (organizer.Request, []rules.Skipped, error) {
		return organizer.Request{}, nil, services.Wrap(services.ErrConfiguration, "organize", "parse flags", msg, err)
	}

	source, err := config.ExpandPath(dir)
	if err != nil {
		return invalid("resolve directory", err)
	}
	dateMode, err := organizer.ParseDateMode(opts.datePrefixing)
	if err != nil {
		return invalid("", err)
	}
	switch {
	case opts.minSizeMB < 0:
		return invalid("--min-size-mb must not be negative", nil)
	case opts.archiveOlderThan < 0:
		return invalid("--archive-older-than must not be negative", nil)
	case opts.deleteDuplicates && !opts.dedupe:
		return invalid("--delete-duplicates requires --dedupe", nil)
	case opts.inPlace && opts.archiveOlderThan > 0:
		return invalid("--in-place cannot be combined with --archive-older-than", nil)
	}

	customRules, skipped, err := rules.LoadFile(cfg.Organize.RulesFile)
	if err != nil {
		return organizer.Request{}, nil, services.Wrap(services.ErrConfiguration, "organize", "load rules", cfg.Organize.RulesFile, err)
	}

	mode := organizer.ModeExecute
	if opts.dryRun {
		mode = organizer.ModeDryRun
	}
	req := organizer.Request{
		SourceDir:            source,
		Categories:           organizer.NewCategoryResolver(cfg.ExtensionRules(), cfg.Organize.FallbackCategory),
		CustomRules:          customRules,
		Mode:                 mode,
		DateMode:             dateMode,
		MinSizeBytes:         int64(opts.minSizeMB * 1024 * 1024),
		ArchiveOlderThanDays: opts.archiveOlderThan,
		Dedupe:               opts.dedupe,
		DeleteDuplicates:     opts.deleteDuplicates,
		InPlace:              opts.inPlace,
	}
	return req, skipped, nil
}

func isFile(stream any) bool {
	_, ok := stream.(*os.File)
	return ok
}

// confirmDeletion asks on an interactive input before duplicates are
// deleted. Terminals are detected with isatty; non-file readers are treated
// as interactive so scripted input can answer.
func confirmDeletion(in io.Reader, prompt io.Writer, source string) (bool, error) {
	if in == nil || (!isTerminal(in) && isFile(in)) {
		return false, services.Wrap(services.ErrValidation, "organize", "confirm deletion",
			"refusing to delete duplicates without a terminal; pass --yes to confirm", nil)
	}
	fmt.Fprintf(prompt, "Delete duplicate files in %s? [y/N]: ", source)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func logRuleWarnings(logger *slog.Logger, path string, skipped []rules.Skipped) {
	for _, s := range skipped {
		logging.WarnWithContext(logger, "custom rule skipped", "rule_invalid",
			logging.String("rules_file", path),
			logging.Int("rule_index", s.Index),
			logging.String("reason", s.Reason),
			logging.String(logging.FieldImpact, "rule ignored for this run"),
		)
	}
}
