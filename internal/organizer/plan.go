package organizer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tidyup/internal/fileutil"
	"tidyup/internal/rules"
)

// planStep is the decision taken for one scanned entry. Exactly one of move,
// skip, duplicateOf or err describes the outcome.
type planStep struct {
	entry       FileEntry
	move        *PlannedMove
	skip        string
	duplicateOf string
	rule        string
	warning     *Warning
	err         error
}

type planner struct {
	req       Request
	source    string
	prefixer  DatePrefixer
	archive   string
	now       time.Time
	birthTime func(string) (time.Time, bool, error)
	conflicts *ConflictResolver
	seen      map[string]string
}

func newPlanner(req Request, source string, prefixer DatePrefixer, archive string, now time.Time, birthTime func(string) (time.Time, bool, error)) *planner {
	return &planner{
		req:       req,
		source:    source,
		prefixer:  prefixer,
		archive:   archive,
		now:       now,
		birthTime: birthTime,
		conflicts: NewConflictResolver(),
		seen:      make(map[string]string),
	}
}

func (p *planner) plan(res scanResult) planStep {
	entry := res.entry
	step := planStep{entry: entry}
	if res.err != nil {
		step.err = res.err
		return step
	}

	switch {
	case strings.HasPrefix(entry.Name, "."):
		step.skip = "hidden file"
		return step
	case entry.symlink:
		// A moved link with a relative target would stop resolving.
		step.skip = "symbolic link"
		return step
	case !entry.regular:
		step.skip = "not a regular file"
		return step
	case p.req.MinSizeBytes > 0 && entry.Size < p.req.MinSizeBytes:
		step.skip = fmt.Sprintf("smaller than %d bytes", p.req.MinSizeBytes)
		return step
	}

	category, destDir := p.destination(entry, &step)

	meta := Timestamps{Modified: entry.ModTime}
	if p.req.DateMode == DateCreated {
		created, ok, err := p.birthTime(entry.Path)
		if err != nil {
			step.err = fmt.Errorf("read creation time: %w", err)
			return step
		}
		meta.Created, meta.CreatedKnown = created, ok
	}
	name, warning := p.prefixer.Prefix(entry.Name, p.req.DateMode, meta)
	if warning != nil {
		warning.File = entry.Path
		step.warning = warning
	}

	if p.req.Dedupe {
		original, err := p.findDuplicate(entry, filepath.Join(destDir, name))
		if err != nil {
			step.err = err
			return step
		}
		if original != "" {
			step.duplicateOf = original
			return step
		}
	}

	if p.req.InPlace && name == entry.Name {
		step.skip = "name unchanged"
		return step
	}

	final := p.conflicts.UniquePath(destDir, name)
	step.move = &PlannedMove{
		Source:          entry.Path,
		DestinationDir:  destDir,
		DestinationName: filepath.Base(final),
		Category:        category,
		Destination:     final,
	}
	return step
}

// destination picks the category and folder for entry. Custom rules take
// precedence over the extension mapping; in-place runs keep the source folder.
func (p *planner) destination(entry FileEntry, step *planStep) (string, string) {
	if p.req.InPlace {
		return "", p.source
	}
	category := p.req.Categories.Resolve(entry.Extension)
	if rule, ok := p.req.CustomRules.Match(rules.File{
		Name:      entry.Name,
		Extension: entry.Extension,
		Size:      entry.Size,
		ModTime:   entry.ModTime,
	}, p.now); ok {
		category = rule.Category
		step.rule = rule.Name
	}
	if days := p.req.ArchiveOlderThanDays; days > 0 && entry.ModTime.Before(p.now.AddDate(0, 0, -days)) {
		return p.archive + "/" + category, filepath.Join(p.source, p.archive, category)
	}
	return category, filepath.Join(p.source, category)
}

// findDuplicate returns the path holding the same content as entry, either
// a file seen earlier in this run or the file already at desired.
func (p *planner) findDuplicate(entry FileEntry, desired string) (string, error) {
	sum, err := fileutil.HashFile(entry.Path)
	if err != nil {
		return "", fmt.Errorf("hash content: %w", err)
	}
	if original, ok := p.seen[sum]; ok {
		return original, nil
	}
	if desired != entry.Path && sameContent(desired, entry.Size, sum) {
		p.seen[sum] = desired
		return desired, nil
	}
	p.seen[sum] = entry.Path
	return "", nil
}

// sameContent reports whether path is a regular file, not a link, whose
// content hashes to sum.
func sameContent(path string, size int64, sum string) bool {
	info, err := os.Lstat(path)
	if err != nil || !info.Mode().IsRegular() || info.Size() != size {
		return false
	}
	existing, err := fileutil.HashFile(path)
	return err == nil && existing == sum
}
