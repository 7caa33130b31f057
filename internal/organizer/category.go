package organizer

import (
	"sort"
	"strings"

	"tidyup/internal/config"
	"tidyup/internal/textutil"
)

// CategoryResolver maps normalized extensions to category folder names.
type CategoryResolver struct {
	byExtension map[string]string
	fallback    string
}

// NewCategoryResolver builds a resolver from rules in definition order; a
// later rule for the same extension replaces an earlier one.
func NewCategoryResolver(rules []config.ExtensionRule, fallback string) *CategoryResolver {
	r := &CategoryResolver{
		byExtension: make(map[string]string, len(rules)),
		fallback:    strings.TrimSpace(fallback),
	}
	for _, rule := range rules {
		ext := textutil.NormalizeExtension(rule.Extension)
		if ext == "" {
			continue
		}
		r.byExtension[ext] = rule.Category
	}
	return r
}

// Resolve returns the category for ext, or the fallback when nothing matches.
// Lookups are case-insensitive and ignore a leading dot.
func (r *CategoryResolver) Resolve(ext string) string {
	if category, ok := r.byExtension[textutil.NormalizeExtension(ext)]; ok {
		return category
	}
	return r.fallback
}

// Fallback returns the category used for unmatched extensions.
func (r *CategoryResolver) Fallback() string {
	return r.fallback
}

// Rules returns the effective mapping sorted by category, then extension.
func (r *CategoryResolver) Rules() []config.ExtensionRule {
	out := make([]config.ExtensionRule, 0, len(r.byExtension))
	for ext, category := range r.byExtension {
		out = append(out, config.ExtensionRule{Extension: ext, Category: category})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Extension < out[j].Extension
	})
	return out
}
