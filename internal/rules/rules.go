package rules

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"tidyup/internal/textutil"
)

const megabyte = 1024 * 1024

// Rule routes matching files into Category.
type Rule struct {
	Name     string
	Priority int
	Filters  Filters
	Category string
}

// Filters are combined with AND; an unset filter always matches.
type Filters struct {
	Extensions         []string
	FilenameContains   string
	FilenameStartsWith string
	FilenameEndsWith   string
	MinSizeMB          *float64
	OlderThanDays      *int
	NewerThanDays      *int
}

// File is the metadata a rule is evaluated against.
type File struct {
	Name      string
	Extension string
	Size      int64
	ModTime   time.Time
}

// Set is an ordered collection of rules, highest priority first.
type Set struct {
	rules []Rule
}

// Skipped describes a malformed rule that was ignored during loading.
type Skipped struct {
	Index  int
	Reason string
}

type rawRule struct {
	Name     string          `json:"name"`
	Priority int             `json:"priority"`
	Filters  json.RawMessage `json:"filters"`
	Action   json.RawMessage `json:"action"`
}

type rawFilters struct {
	Extensions         stringList `json:"extensions"`
	FilenameContains   string     `json:"filename_contains"`
	FilenameStartsWith string     `json:"filename_starts_with"`
	FilenameEndsWith   string     `json:"filename_ends_with"`
	MinSizeMB          *float64   `json:"min_size_mb"`
	OlderThanDays      *int       `json:"older_than_days"`
	NewerThanDays      *int       `json:"newer_than_days"`
}

type rawAction struct {
	Category string `json:"category"`
}

// stringList accepts either a JSON string or a list of strings.
type stringList []string

func (s *stringList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*s = []string{single}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return errors.New("must be a string or list of strings")
	}
	*s = list
	return nil
}

// LoadFile reads a rules file. A missing path yields an empty set.
func LoadFile(path string) (*Set, []Skipped, error) {
	if strings.TrimSpace(path) == "" {
		return &Set{}, nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open rules file: %w", err)
	}
	defer f.Close()
	set, skipped, err := Parse(f)
	if err != nil {
		return nil, nil, fmt.Errorf("rules file %s: %w", path, err)
	}
	return set, skipped, nil
}

// Parse decodes a JSON list of rules. The document must be a list; individual
// entries that are malformed are reported in skipped and left out of the set.
func Parse(r io.Reader) (*Set, []Skipped, error) {
	var entries []json.RawMessage
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, nil, fmt.Errorf("expected a JSON list of rules: %w", err)
	}

	set := &Set{}
	var skipped []Skipped
	for i, entry := range entries {
		rule, err := parseRule(entry)
		if err != nil {
			skipped = append(skipped, Skipped{Index: i, Reason: err.Error()})
			continue
		}
		set.rules = append(set.rules, rule)
	}
	sort.SliceStable(set.rules, func(i, j int) bool {
		return set.rules[i].Priority > set.rules[j].Priority
	})
	return set, skipped, nil
}

func parseRule(data json.RawMessage) (Rule, error) {
	var raw rawRule
	if err := json.Unmarshal(data, &raw); err != nil {
		return Rule{}, fmt.Errorf("not a rule object: %w", err)
	}
	if len(raw.Filters) == 0 || len(raw.Action) == 0 {
		return Rule{}, errors.New("missing filters or action")
	}

	var filters rawFilters
	dec := json.NewDecoder(bytes.NewReader(raw.Filters))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&filters); err != nil {
		return Rule{}, fmt.Errorf("filters: %w", err)
	}
	var action rawAction
	if err := json.Unmarshal(raw.Action, &action); err != nil {
		return Rule{}, fmt.Errorf("action: %w", err)
	}
	action.Category = strings.TrimSpace(action.Category)
	if !textutil.IsSafeSegment(action.Category) {
		return Rule{}, fmt.Errorf("action.category %q must be a single folder name", action.Category)
	}
	if filters.MinSizeMB != nil && *filters.MinSizeMB < 0 {
		return Rule{}, errors.New("min_size_mb must not be negative")
	}

	rule := Rule{
		Name:     strings.TrimSpace(raw.Name),
		Priority: raw.Priority,
		Category: action.Category,
		Filters: Filters{
			FilenameContains:   strings.ToLower(filters.FilenameContains),
			FilenameStartsWith: strings.ToLower(filters.FilenameStartsWith),
			FilenameEndsWith:   strings.ToLower(filters.FilenameEndsWith),
			MinSizeMB:          filters.MinSizeMB,
			OlderThanDays:      filters.OlderThanDays,
			NewerThanDays:      filters.NewerThanDays,
		},
	}
	for _, ext := range filters.Extensions {
		if normalized := textutil.NormalizeExtension(ext); normalized != "" {
			rule.Filters.Extensions = append(rule.Filters.Extensions, normalized)
		}
	}
	if rule.Name == "" {
		rule.Name = "unnamed rule"
	}
	return rule, nil
}

// Len returns the number of usable rules.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rules)
}

// Rules returns the rules in evaluation order.
func (s *Set) Rules() []Rule {
	if s == nil {
		return nil
	}
	return append([]Rule(nil), s.rules...)
}

// Match returns the highest priority rule matching f.
func (s *Set) Match(f File, now time.Time) (Rule, bool) {
	if s == nil {
		return Rule{}, false
	}
	for _, rule := range s.rules {
		if rule.Filters.matches(f, now) {
			return rule, true
		}
	}
	return Rule{}, false
}

func (f Filters) matches(file File, now time.Time) bool {
	if len(f.Extensions) > 0 {
		found := false
		for _, ext := range f.Extensions {
			if ext == file.Extension {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	name := strings.ToLower(file.Name)
	if f.FilenameContains != "" && !strings.Contains(name, f.FilenameContains) {
		return false
	}
	if f.FilenameStartsWith != "" && !strings.HasPrefix(name, f.FilenameStartsWith) {
		return false
	}
	if f.FilenameEndsWith != "" && !strings.HasSuffix(name, f.FilenameEndsWith) {
		return false
	}
	if f.MinSizeMB != nil && float64(file.Size) < *f.MinSizeMB*megabyte {
		return false
	}
	if f.OlderThanDays != nil && file.ModTime.After(now.AddDate(0, 0, -*f.OlderThanDays)) {
		return false
	}
	if f.NewerThanDays != nil && file.ModTime.Before(now.AddDate(0, 0, -*f.NewerThanDays)) {
		return false
	}
	return true
}
