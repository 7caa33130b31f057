package organizer

import (
	"fmt"
	"os"
	"path/filepath"

	"tidyup/internal/textutil"
)

// scanResult is one top-level entry of the source directory. Entries whose
// metadata could not be read carry err and become failed records.
type scanResult struct {
	entry FileEntry
	err   error
}

// scanDirectory lists dir once and returns its non-directory entries in
// lexicographic order. Symlinks are followed only to decide whether they
// point at a directory; links to files are returned flagged as links.
func scanDirectory(dir string) ([]scanResult, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	results := make([]scanResult, 0, len(dirEntries))
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		path := filepath.Join(dir, de.Name())
		if de.Type()&os.ModeSymlink != 0 {
			if target, err := os.Stat(path); err == nil && target.IsDir() {
				continue
			}
		}
		entry := FileEntry{
			Path:      path,
			Name:      de.Name(),
			Extension: textutil.ExtensionOf(de.Name()),
		}
		info, err := de.Info()
		if err != nil {
			results = append(results, scanResult{entry: entry, err: fmt.Errorf("read metadata: %w", err)})
			continue
		}
		entry.Size = info.Size()
		entry.ModTime = info.ModTime()
		entry.symlink = info.Mode()&os.ModeSymlink != 0
		entry.regular = info.Mode().IsRegular()
		results = append(results, scanResult{entry: entry})
	}
	return results, nil
}
