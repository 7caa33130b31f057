package organizer

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ConflictResolver hands out destination paths that neither exist on disk nor
// were handed out earlier in the same run. Each destination directory is
// listed once, the first time it is asked about.
type ConflictResolver struct {
	snapshots map[string]map[string]struct{}
	allocated map[string]struct{}
}

// NewConflictResolver returns a resolver with an empty allocation set.
func NewConflictResolver() *ConflictResolver {
	return &ConflictResolver{
		snapshots: make(map[string]map[string]struct{}),
		allocated: make(map[string]struct{}),
	}
}

// UniquePath returns dir/name when it is free, otherwise the first free
// dir/<stem>_<N><ext> for N = 1, 2, .... The returned path is reserved.
func (c *ConflictResolver) UniquePath(dir, name string) string {
	dir = filepath.Clean(dir)
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	if stem == "" {
		stem, ext = name, ""
	}

	candidate := name
	for n := 1; c.taken(dir, candidate); n++ {
		candidate = stem + "_" + strconv.Itoa(n) + ext
	}
	path := filepath.Join(dir, candidate)
	c.allocated[path] = struct{}{}
	return path
}

func (c *ConflictResolver) taken(dir, name string) bool {
	if _, ok := c.allocated[filepath.Join(dir, name)]; ok {
		return true
	}
	_, ok := c.snapshot(dir)[name]
	return ok
}

func (c *ConflictResolver) snapshot(dir string) map[string]struct{} {
	if names, ok := c.snapshots[dir]; ok {
		return names
	}
	names := make(map[string]struct{})
	// A missing or unreadable directory contributes whatever was listed.
	entries, _ := os.ReadDir(dir)
	for _, entry := range entries {
		names[entry.Name()] = struct{}{}
	}
	c.snapshots[dir] = names
	return names
}
