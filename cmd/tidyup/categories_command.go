package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"tidyup/internal/config"
	"tidyup/internal/organizer"
)

func newCategoriesCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Show the active extension to category mapping",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			resolver := organizer.NewCategoryResolver(cfg.ExtensionRules(), cfg.Organize.FallbackCategory)
			groups := groupByCategory(cfg, resolver.Rules())

			if jsonOutput {
				return writeJSON(cmd, map[string]any{
					"categories": groups,
					"fallback":   resolver.Fallback(),
				})
			}

			rows := make([][]string, 0, len(groups))
			for _, g := range groups {
				rows = append(rows, []string{g.Name, fmt.Sprintf("%d", len(g.Extensions)), strings.Join(g.Extensions, ", ")})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Category", "Count", "Extensions"}, rows, []columnAlignment{alignLeft, alignRight, alignLeft}))
			fmt.Fprintf(out, "Unmatched extensions go to %s\n", resolver.Fallback())
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the mapping as JSON")
	return cmd
}

type categoryGroup struct {
	Name       string   `json:"name"`
	Extensions []string `json:"extensions"`
}

// groupByCategory lists effective extensions per category in configuration
// order. Categories that lost every extension to a later definition are
// dropped.
func groupByCategory(cfg *config.Config, rules []config.ExtensionRule) []categoryGroup {
	byName := make(map[string][]string)
	for _, rule := range rules {
		byName[rule.Category] = append(byName[rule.Category], rule.Extension)
	}
	groups := make([]categoryGroup, 0, len(byName))
	for _, cat := range cfg.Categories {
		exts, ok := byName[cat.Name]
		if !ok {
			continue
		}
		sort.Strings(exts)
		groups = append(groups, categoryGroup{Name: cat.Name, Extensions: exts})
		delete(byName, cat.Name)
	}
	return groups
}
