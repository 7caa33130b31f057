package config

import (
	"fmt"
	"strings"

	"tidyup/internal/textutil"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeOrganize(); err != nil {
		return err
	}
	c.normalizeCategories()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeOrganize() error {
	var err error
	c.Organize.FallbackCategory = strings.TrimSpace(c.Organize.FallbackCategory)
	if c.Organize.FallbackCategory == "" {
		c.Organize.FallbackCategory = defaultFallbackCategory
	}
	c.Organize.ArchiveCategory = strings.TrimSpace(c.Organize.ArchiveCategory)
	if c.Organize.ArchiveCategory == "" {
		c.Organize.ArchiveCategory = defaultArchiveCategory
	}
	if strings.TrimSpace(c.Organize.DateLayout) == "" {
		c.Organize.DateLayout = defaultDateLayout
	}
	if c.Organize.DateSeparator == "" {
		c.Organize.DateSeparator = defaultDateSeparator
	}
	if c.Organize.CategoriesFile = strings.TrimSpace(c.Organize.CategoriesFile); c.Organize.CategoriesFile != "" {
		if c.Organize.CategoriesFile, err = expandPath(c.Organize.CategoriesFile); err != nil {
			return fmt.Errorf("organize.categories_file: %w", err)
		}
	}
	if c.Organize.RulesFile = strings.TrimSpace(c.Organize.RulesFile); c.Organize.RulesFile != "" {
		if c.Organize.RulesFile, err = expandPath(c.Organize.RulesFile); err != nil {
			return fmt.Errorf("organize.rules_file: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeCategories() {
	for i := range c.Categories {
		c.Categories[i].Name = strings.TrimSpace(c.Categories[i].Name)
		exts := make([]string, 0, len(c.Categories[i].Extensions))
		for _, ext := range c.Categories[i].Extensions {
			if normalized := textutil.NormalizeExtension(ext); normalized != "" {
				exts = append(exts, normalized)
			}
		}
		c.Categories[i].Extensions = exts
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
