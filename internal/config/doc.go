// Package config loads, normalizes, and validates tidyup configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and optionally replaces the category tables
// with a JSON extension mapping. The Config type centralizes every knob the
// CLI hands to the organization engine so the engine itself never reads
// files or environment state to discover settings.
//
// Always obtain settings through this package so downstream code receives
// normalized extensions, safe folder names, and clear validation errors.
package config
