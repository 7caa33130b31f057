package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"tidyup/internal/textutil"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateOrganize(); err != nil {
		return err
	}
	if err := c.validateCategories(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateOrganize() error {
	if !textutil.IsSafeSegment(c.Organize.FallbackCategory) {
		return fmt.Errorf("organize.fallback_category %q must be a single folder name", c.Organize.FallbackCategory)
	}
	if !textutil.IsSafeSegment(c.Organize.ArchiveCategory) {
		return fmt.Errorf("organize.archive_category %q must be a single folder name", c.Organize.ArchiveCategory)
	}
	probe := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC).Format(c.Organize.DateLayout)
	if strings.TrimSpace(probe) == "" || strings.ContainsAny(probe, "/\\") {
		return fmt.Errorf("organize.date_layout %q must format to a non-empty value without path separators", c.Organize.DateLayout)
	}
	if probe == c.Organize.DateLayout && !strings.ContainsAny(probe, "0123456789") {
		return fmt.Errorf("organize.date_layout %q contains no date fields", c.Organize.DateLayout)
	}
	if strings.ContainsAny(c.Organize.DateSeparator, "/\\") {
		return errors.New("organize.date_separator must not contain path separators")
	}
	return nil
}

func (c *Config) validateCategories() error {
	if len(c.Categories) == 0 {
		return errors.New("at least one [[category]] entry is required")
	}
	for i, cat := range c.Categories {
		if !textutil.IsSafeSegment(cat.Name) {
			return fmt.Errorf("category[%d].name %q must be a single folder name", i, cat.Name)
		}
		if len(cat.Extensions) == 0 {
			return fmt.Errorf("category %q must list at least one extension", cat.Name)
		}
		for _, ext := range cat.Extensions {
			if strings.Contains(ext, ".") {
				return fmt.Errorf("category %q extension %q must be a single suffix such as %q", cat.Name, ext, ext[strings.LastIndex(ext, ".")+1:])
			}
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q must be console or json", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q must be debug, info, warn, or error", c.Logging.Level)
	}
	return nil
}
