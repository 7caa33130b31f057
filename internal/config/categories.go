package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"tidyup/internal/textutil"
)

// ExtensionRule maps one normalized extension to a category folder.
type ExtensionRule struct {
	Extension string
	Category  string
}

// ExtensionRules flattens the configured categories into rules in definition
// order. When an extension appears more than once the later rule is the one
// consumers must honour.
func (c *Config) ExtensionRules() []ExtensionRule {
	var rules []ExtensionRule
	for _, cat := range c.Categories {
		for _, ext := range cat.Extensions {
			rules = append(rules, ExtensionRule{Extension: ext, Category: cat.Name})
		}
	}
	return rules
}

// loadCategoriesFile replaces the category tables with the JSON mapping file
// when one is configured.
func (c *Config) loadCategoriesFile() error {
	if c.Organize.CategoriesFile == "" {
		return nil
	}
	file, err := os.Open(c.Organize.CategoriesFile)
	if err != nil {
		return fmt.Errorf("organize.categories_file: %w", err)
	}
	defer file.Close()

	rules, err := ParseCategoryMapping(file)
	if err != nil {
		return fmt.Errorf("organize.categories_file %s: %w", c.Organize.CategoriesFile, err)
	}
	c.Categories = categoriesFromRules(rules)
	return nil
}

// ParseCategoryMapping reads a JSON object of extension to category pairs,
// preserving document order so duplicate keys resolve to the last one.
func ParseCategoryMapping(r io.Reader) ([]ExtensionRule, error) {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("read mapping: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("mapping must be a JSON object of extension to category")
	}

	var rules []ExtensionRule
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read mapping key: %w", err)
		}
		key, _ := keyTok.(string)
		var category string
		if err := dec.Decode(&category); err != nil {
			return nil, fmt.Errorf("mapping value for %q must be a string: %w", key, err)
		}
		ext := textutil.NormalizeExtension(key)
		if ext == "" || strings.Contains(ext, ".") {
			return nil, fmt.Errorf("mapping key %q is not a single extension", key)
		}
		rules = append(rules, ExtensionRule{Extension: ext, Category: category})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("read mapping end: %w", err)
	}
	if len(rules) == 0 {
		return nil, errors.New("mapping is empty")
	}
	return rules, nil
}

// categoriesFromRules groups rules back into categories in first-seen order
// while keeping every extension only under its last category.
func categoriesFromRules(rules []ExtensionRule) []Category {
	final := make(map[string]string, len(rules))
	for _, rule := range rules {
		final[rule.Extension] = rule.Category
	}
	index := make(map[string]int)
	seenExt := make(map[string]struct{}, len(final))
	var out []Category
	for _, rule := range rules {
		if final[rule.Extension] != rule.Category {
			continue
		}
		if _, dup := seenExt[rule.Extension]; dup {
			continue
		}
		seenExt[rule.Extension] = struct{}{}
		pos, ok := index[rule.Category]
		if !ok {
			pos = len(out)
			index[rule.Category] = pos
			out = append(out, Category{Name: rule.Category})
		}
		out[pos].Extensions = append(out[pos].Extensions, rule.Extension)
	}
	return out
}
