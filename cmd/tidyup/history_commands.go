package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"tidyup/internal/history"
	"tidyup/internal/organizer"
	"tidyup/internal/services"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect previous organize runs",
	}
	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	historyCmd.AddCommand(newHistoryPruneCommand(ctx))
	return historyCmd
}

func (c *commandContext) withHistory(fn func(*history.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	if !cfg.History.Enabled {
		return services.Wrap(services.ErrConfiguration, "history", "open", "history is disabled ([history] enabled = false)", nil)
	}
	store, err := history.Open(cfg)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				runs, err := store.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if jsonOutput {
					if runs == nil {
						runs = []history.Run{}
					}
					return writeJSON(cmd, runs)
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Started", "Mode", "Directory", "Files", "Done", "Failed"},
					buildRunRows(runs),
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight},
				))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list (0 for all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print runs as JSON")
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the per-file records of one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				detail, err := store.GetRun(cmd.Context(), args[0])
				if err != nil {
					if errors.Is(err, history.ErrNotFound) || errors.Is(err, history.ErrAmbiguous) {
						return services.Wrap(services.ErrValidation, "history", "show", "", err)
					}
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, detail)
				}
				fmt.Fprint(cmd.OutOrStdout(), renderRunDetail(detail))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the run as JSON")
	return cmd
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var olderThan int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete runs older than a number of days",
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan < 1 {
				return services.Wrap(services.ErrConfiguration, "history", "prune", "--older-than must be at least 1 day", nil)
			}
			return ctx.withHistory(func(store *history.Store) error {
				cutoff := time.Now().AddDate(0, 0, -olderThan)
				removed, err := store.PruneBefore(cmd.Context(), cutoff)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d run(s) started before %s\n", removed, formatRunTime(cutoff))
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&olderThan, "older-than", 90, "Age in days of the runs to delete")
	return cmd
}

func buildRunRows(runs []history.Run) [][]string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			shortRunID(run.ID),
			formatRunTime(run.StartedAt),
			runMode(run.DryRun),
			run.SourceDir,
			strconv.Itoa(run.Summary.Files),
			strconv.Itoa(run.Summary.Succeeded()),
			strconv.Itoa(run.Summary.Failed),
		})
	}
	return rows
}

func renderRunDetail(detail *history.RunDetail) string {
	report := organizer.RunReport{
		RunID:      detail.ID,
		SourceDir:  detail.SourceDir,
		DryRun:     detail.DryRun,
		DateMode:   organizer.DateMode(detail.DateMode),
		StartedAt:  detail.StartedAt,
		FinishedAt: detail.FinishedAt,
		Summary:    detail.Summary,
		Records:    detail.Records,
		Warnings:   detail.Warnings,
	}
	header := fmt.Sprintf("Run %s\nDirectory: %s\nMode: %s, date prefixing %s\nStarted: %s (%s)\n",
		detail.ID,
		detail.SourceDir,
		runMode(detail.DryRun),
		detail.DateMode,
		formatRunTime(detail.StartedAt),
		humanize.Time(detail.StartedAt),
	)
	return header + renderReport(report, false)
}

func runMode(dryRun bool) string {
	if dryRun {
		return "dry-run"
	}
	return "execute"
}

func formatRunTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04:05")
}
