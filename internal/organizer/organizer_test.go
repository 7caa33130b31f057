package organizer_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"tidyup/internal/config"
	"tidyup/internal/logging"
	"tidyup/internal/organizer"
	"tidyup/internal/rules"
	"tidyup/internal/services"
	"tidyup/internal/testsupport"
)

var (
	fixedNow = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.Local)
	jan15    = time.Date(2024, time.January, 15, 12, 0, 0, 0, time.Local)
)

type harness struct {
	cfg    *config.Config
	source string
	deps   organizer.Dependencies
}

func newHarness(t *testing.T, opts ...testsupport.ConfigOption) *harness {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	source := filepath.Join(testsupport.BaseDir(cfg), "downloads")
	if err := os.MkdirAll(source, 0o755); err != nil {
		t.Fatalf("mkdir source: %v", err)
	}
	return &harness{
		cfg:    cfg,
		source: source,
		deps: organizer.Dependencies{
			Now:      func() time.Time { return fixedNow },
			NewRunID: func() string { return "run-test" },
			BirthTime: func(string) (time.Time, bool, error) {
				return time.Time{}, false, nil
			},
		},
	}
}

func (h *harness) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(h.source, name)
	testsupport.WriteContent(t, path, content, jan15)
	return path
}

func (h *harness) request(mode organizer.Mode) organizer.Request {
	return organizer.Request{
		SourceDir:  h.source,
		Categories: organizer.NewCategoryResolver(h.cfg.ExtensionRules(), h.cfg.Organize.FallbackCategory),
		Mode:       mode,
	}
}

func (h *harness) run(t *testing.T, req organizer.Request) organizer.RunReport {
	t.Helper()
	org := organizer.NewOrganizerWithDependencies(h.cfg, logging.NewNop(), h.deps)
	report, err := org.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return report
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func recordFor(t *testing.T, report organizer.RunReport, name string) organizer.Record {
	t.Helper()
	for _, rec := range report.Records {
		if filepath.Base(rec.Source) == name {
			return rec
		}
	}
	t.Fatalf("no record for %s in %#v", name, report.Records)
	return organizer.Record{}
}

func TestExecuteMovesFileIntoCategory(t *testing.T) {
	h := newHarness(t)
	h.write(t, "report.pdf", "pdf")

	report := h.run(t, h.request(organizer.ModeExecute))

	dest := filepath.Join(h.source, "Documents", "report.pdf")
	if got := readFile(t, dest); got != "pdf" {
		t.Fatalf("unexpected content %q", got)
	}
	if _, err := os.Stat(filepath.Join(h.source, "report.pdf")); !os.IsNotExist(err) {
		t.Fatal("source file should have been moved")
	}
	rec := recordFor(t, report, "report.pdf")
	if rec.Action != organizer.ActionMoved || rec.Destination != dest || rec.Category != "Documents" {
		t.Fatalf("unexpected record %#v", rec)
	}
	if report.Summary.Moved != 1 || report.Summary.DirectoriesCreated != 1 {
		t.Fatalf("unexpected summary %#v", report.Summary)
	}
	if report.RunID != "run-test" || report.DryRun {
		t.Fatalf("unexpected report header %#v", report)
	}
}

func TestDryRunLeavesDirectoryUntouched(t *testing.T) {
	h := newHarness(t)
	h.write(t, "report.pdf", "pdf")
	h.write(t, "photo.JPG", "jpg")
	before := testsupport.Tree(t, h.source)

	req := h.request(organizer.ModeDryRun)
	req.DateMode = organizer.DateModified
	report := h.run(t, req)

	if after := testsupport.Tree(t, h.source); !reflect.DeepEqual(before, after) {
		t.Fatalf("dry-run mutated directory:\nbefore %v\nafter  %v", before, after)
	}
	if got := readFile(t, filepath.Join(h.source, "report.pdf")); got != "pdf" {
		t.Fatalf("content changed: %q", got)
	}
	rec := recordFor(t, report, "report.pdf")
	if rec.Action != organizer.ActionSimulated {
		t.Fatalf("expected simulated action, got %s", rec.Action)
	}
	if want := filepath.Join(h.source, "Documents", "2024-01-15_report.pdf"); rec.Destination != want {
		t.Fatalf("destination = %q, want %q", rec.Destination, want)
	}
	if !report.DryRun || report.Summary.Simulated != 2 || report.Summary.DirectoriesCreated != 0 {
		t.Fatalf("unexpected summary %#v", report.Summary)
	}
}

func TestExecuteSortsIntoEachCategory(t *testing.T) {
	h := newHarness(t)
	h.write(t, "a.pdf", "1")
	h.write(t, "b.jpg", "2")
	h.write(t, "c.mp4", "3")

	h.run(t, h.request(organizer.ModeExecute))

	want := []string{
		"Documents/", "Documents/a.pdf",
		"Images/", "Images/b.jpg",
		"Videos/", "Videos/c.mp4",
	}
	if got := testsupport.Tree(t, h.source); !reflect.DeepEqual(got, want) {
		t.Fatalf("tree = %v, want %v", got, want)
	}
}

func TestExecuteNeverOverwrites(t *testing.T) {
	h := newHarness(t)
	testsupport.WriteContent(t, filepath.Join(h.source, "Documents", "report.pdf"), "existing", time.Time{})
	h.write(t, "report.pdf", "incoming")

	report := h.run(t, h.request(organizer.ModeExecute))

	if got := readFile(t, filepath.Join(h.source, "Documents", "report.pdf")); got != "existing" {
		t.Fatalf("existing file overwritten: %q", got)
	}
	if got := readFile(t, filepath.Join(h.source, "Documents", "report_1.pdf")); got != "incoming" {
		t.Fatalf("incoming file content %q", got)
	}
	rec := recordFor(t, report, "report.pdf")
	if !rec.Renamed || report.Summary.Renamed != 1 {
		t.Fatalf("expected renamed record, got %#v", rec)
	}
	if report.Summary.DirectoriesCreated != 0 {
		t.Fatalf("existing directory counted as created: %#v", report.Summary)
	}
}

func TestExecuteDatePrefixModified(t *testing.T) {
	h := newHarness(t)
	h.write(t, "report.pdf", "pdf")

	req := h.request(organizer.ModeExecute)
	req.DateMode = organizer.DateModified
	report := h.run(t, req)

	if got := readFile(t, filepath.Join(h.source, "Documents", "2024-01-15_report.pdf")); got != "pdf" {
		t.Fatalf("unexpected content %q", got)
	}
	if len(report.Warnings) != 0 {
		t.Fatalf("unexpected warnings %#v", report.Warnings)
	}
}

func TestExecuteDatePrefixCreated(t *testing.T) {
	h := newHarness(t)
	h.write(t, "report.pdf", "pdf")
	created := time.Date(2023, time.November, 2, 12, 0, 0, 0, time.Local)
	h.deps.BirthTime = func(string) (time.Time, bool, error) { return created, true, nil }

	req := h.request(organizer.ModeExecute)
	req.DateMode = organizer.DateCreated
	report := h.run(t, req)

	if _, err := os.Stat(filepath.Join(h.source, "Documents", "2023-11-02_report.pdf")); err != nil {
		t.Fatalf("expected creation-date prefix: %v", err)
	}
	if len(report.Warnings) != 0 || report.Summary.Warned != 0 {
		t.Fatalf("unexpected warnings %#v", report.Warnings)
	}
}

func TestExecuteDatePrefixCreatedFallsBackToModified(t *testing.T) {
	h := newHarness(t)
	h.write(t, "report.pdf", "pdf")

	req := h.request(organizer.ModeExecute)
	req.DateMode = organizer.DateCreated
	report := h.run(t, req)

	if _, err := os.Stat(filepath.Join(h.source, "Documents", "2024-01-15_report.pdf")); err != nil {
		t.Fatalf("expected modification-date prefix: %v", err)
	}
	if len(report.Warnings) != 1 || report.Warnings[0].Kind != organizer.WarningTimestampFallback {
		t.Fatalf("expected one fallback warning, got %#v", report.Warnings)
	}
	rec := recordFor(t, report, "report.pdf")
	if rec.Action != organizer.ActionMoved || !rec.Warned {
		t.Fatalf("fallback must not fail the file: %#v", rec)
	}
	if report.Summary.Warned != 1 {
		t.Fatalf("unexpected summary %#v", report.Summary)
	}
}

func TestBirthTimeErrorFailsOnlyThatFile(t *testing.T) {
	h := newHarness(t)
	h.write(t, "a.pdf", "a")
	h.write(t, "b.pdf", "b")
	h.deps.BirthTime = func(path string) (time.Time, bool, error) {
		if filepath.Base(path) == "a.pdf" {
			return time.Time{}, false, os.ErrPermission
		}
		return jan15, true, nil
	}

	req := h.request(organizer.ModeExecute)
	req.DateMode = organizer.DateCreated
	report := h.run(t, req)

	if rec := recordFor(t, report, "a.pdf"); rec.Action != organizer.ActionFailed || rec.Error == "" {
		t.Fatalf("expected failed record, got %#v", rec)
	}
	if rec := recordFor(t, report, "b.pdf"); rec.Action != organizer.ActionMoved {
		t.Fatalf("expected b.pdf to move, got %#v", rec)
	}
}

func TestPlanningIsDeterministicAcrossModes(t *testing.T) {
	h := newHarness(t)
	testsupport.WriteContent(t, filepath.Join(h.source, "Documents", "x.pdf"), "existing", time.Time{})
	for _, name := range []string{"x.pdf", "X.PDF", "y.txt", "notes", "z.mp3", "song.MP3"} {
		h.write(t, name, name)
	}
	if err := os.Mkdir(filepath.Join(h.source, "keep"), 0o755); err != nil {
		t.Fatal(err)
	}

	first := h.run(t, h.request(organizer.ModeDryRun))
	second := h.run(t, h.request(organizer.ModeDryRun))
	if !reflect.DeepEqual(first.Records, second.Records) {
		t.Fatalf("dry-run plans differ:\n%#v\n%#v", first.Records, second.Records)
	}

	executed := h.run(t, h.request(organizer.ModeExecute))
	if len(executed.Records) != len(first.Records) {
		t.Fatalf("record count differs: %d vs %d", len(executed.Records), len(first.Records))
	}
	for i := range first.Records {
		if first.Records[i].Destination != executed.Records[i].Destination {
			t.Fatalf("record %d destination differs: %q vs %q", i, first.Records[i].Destination, executed.Records[i].Destination)
		}
		if executed.Records[i].Action != organizer.ActionMoved {
			t.Fatalf("record %d not moved: %#v", i, executed.Records[i])
		}
	}
}

func TestEveryFileHasOneRecordAndUniqueDestination(t *testing.T) {
	h := newHarness(t)
	names := []string{"a.pdf", "A.pdf", "b.unknown", "noext", "c.jpeg", "d.JPEG"}
	for _, name := range names {
		h.write(t, name, name)
	}
	if err := os.Mkdir(filepath.Join(h.source, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	testsupport.WriteContent(t, filepath.Join(h.source, "sub", "inner.pdf"), "inner", time.Time{})

	report := h.run(t, h.request(organizer.ModeExecute))

	if len(report.Records) != len(names) {
		t.Fatalf("expected %d records, got %d", len(names), len(report.Records))
	}
	seenSource := map[string]bool{}
	seenDest := map[string]bool{}
	for _, rec := range report.Records {
		if seenSource[rec.Source] {
			t.Fatalf("duplicate record for %s", rec.Source)
		}
		seenSource[rec.Source] = true
		if seenDest[rec.Destination] {
			t.Fatalf("destination %s planned twice", rec.Destination)
		}
		seenDest[rec.Destination] = true
	}
	if got := recordFor(t, report, "b.unknown").Category; got != "Other" {
		t.Fatalf("unknown extension category = %q", got)
	}
	if got := recordFor(t, report, "noext").Category; got != "Other" {
		t.Fatalf("extensionless category = %q", got)
	}
	if _, err := os.Stat(filepath.Join(h.source, "sub", "inner.pdf")); err != nil {
		t.Fatalf("subdirectory contents must be untouched: %v", err)
	}
}

func TestPerFileFailureDoesNotAbortRun(t *testing.T) {
	h := newHarness(t, testsupport.WithCategories(
		config.Category{Name: "docs", Extensions: []string{"pdf"}},
		config.Category{Name: "Images", Extensions: []string{"jpg"}},
	))
	h.write(t, "a.pdf", "a")
	h.write(t, "b.jpg", "b")
	// A plain file where the docs folder should go makes the pdf move fail.
	h.write(t, "docs", "blocker")

	report := h.run(t, h.request(organizer.ModeExecute))

	if rec := recordFor(t, report, "a.pdf"); rec.Action != organizer.ActionFailed {
		t.Fatalf("expected failure, got %#v", rec)
	}
	if _, err := os.Stat(filepath.Join(h.source, "a.pdf")); err != nil {
		t.Fatalf("failed file must stay in place: %v", err)
	}
	if rec := recordFor(t, report, "b.jpg"); rec.Action != organizer.ActionMoved {
		t.Fatalf("expected b.jpg moved, got %#v", rec)
	}
	if report.Summary.Failed != 1 || report.Summary.Succeeded() != 2 {
		t.Fatalf("unexpected summary %#v", report.Summary)
	}
	var fileWarnings int
	for _, w := range report.Warnings {
		if w.Kind == organizer.WarningFileError {
			fileWarnings++
		}
	}
	if fileWarnings != 1 {
		t.Fatalf("expected one file warning, got %#v", report.Warnings)
	}
}

func TestRunFailsOnUnreadableSource(t *testing.T) {
	h := newHarness(t)
	req := h.request(organizer.ModeExecute)
	req.SourceDir = filepath.Join(h.source, "missing")

	org := organizer.NewOrganizerWithDependencies(h.cfg, logging.NewNop(), h.deps)
	_, err := org.Run(context.Background(), req)
	if !errors.Is(err, services.ErrEnumeration) {
		t.Fatalf("expected enumeration error, got %v", err)
	}

	file := h.write(t, "plain.txt", "x")
	req.SourceDir = file
	if _, err := org.Run(context.Background(), req); !errors.Is(err, services.ErrEnumeration) {
		t.Fatalf("expected enumeration error for file source, got %v", err)
	}
}

func TestRunRejectsInvalidRequest(t *testing.T) {
	h := newHarness(t)
	org := organizer.NewOrganizerWithDependencies(h.cfg, logging.NewNop(), h.deps)

	cases := map[string]func(*organizer.Request){
		"no categories": func(r *organizer.Request) { r.Categories = nil },
		"no source":     func(r *organizer.Request) { r.SourceDir = "" },
		"bad date mode": func(r *organizer.Request) { r.DateMode = "accessed" },
		"delete alone":  func(r *organizer.Request) { r.DeleteDuplicates = true },
	}
	for name, mutate := range cases {
		req := h.request(organizer.ModeExecute)
		mutate(&req)
		if _, err := org.Run(context.Background(), req); !errors.Is(err, services.ErrConfiguration) {
			t.Fatalf("%s: expected configuration error, got %v", name, err)
		}
	}
}

func TestSkipsHiddenAndSmallFiles(t *testing.T) {
	h := newHarness(t)
	h.write(t, ".env", "secret")
	testsupport.WriteFile(t, filepath.Join(h.source, "big.zip"), 2*1024*1024)
	h.write(t, "tiny.zip", "t")

	req := h.request(organizer.ModeExecute)
	req.MinSizeBytes = 1024 * 1024
	report := h.run(t, req)

	if rec := recordFor(t, report, ".env"); rec.Action != organizer.ActionSkipped || rec.Reason != "hidden file" {
		t.Fatalf("unexpected hidden record %#v", rec)
	}
	if rec := recordFor(t, report, "tiny.zip"); rec.Action != organizer.ActionSkipped {
		t.Fatalf("expected small file skipped, got %#v", rec)
	}
	if rec := recordFor(t, report, "big.zip"); rec.Action != organizer.ActionMoved || rec.Category != "Archives" {
		t.Fatalf("expected big file moved, got %#v", rec)
	}
	if report.Summary.Skipped != 2 || report.Summary.BytesProcessed != 2*1024*1024 {
		t.Fatalf("unexpected summary %#v", report.Summary)
	}
}

func TestDedupeSkipsAndDeletesDuplicates(t *testing.T) {
	setup := func(t *testing.T) *harness {
		h := newHarness(t)
		h.write(t, "a.pdf", "same")
		h.write(t, "b.pdf", "same")
		h.write(t, "c.pdf", "unique")
		testsupport.WriteContent(t, filepath.Join(h.source, "Documents", "d.pdf"), "already there", time.Time{})
		h.write(t, "d.pdf", "already there")
		return h
	}

	t.Run("skip", func(t *testing.T) {
		h := setup(t)
		req := h.request(organizer.ModeExecute)
		req.Dedupe = true
		report := h.run(t, req)

		if rec := recordFor(t, report, "b.pdf"); rec.Action != organizer.ActionSkipped || !strings.Contains(rec.Reason, "a.pdf") {
			t.Fatalf("expected source duplicate skipped, got %#v", rec)
		}
		if rec := recordFor(t, report, "d.pdf"); rec.Action != organizer.ActionSkipped || !strings.Contains(rec.Reason, filepath.Join("Documents", "d.pdf")) {
			t.Fatalf("expected target duplicate skipped, got %#v", rec)
		}
		if _, err := os.Stat(filepath.Join(h.source, "b.pdf")); err != nil {
			t.Fatalf("skipped duplicate must remain: %v", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		h := setup(t)
		req := h.request(organizer.ModeExecute)
		req.Dedupe = true
		req.DeleteDuplicates = true
		report := h.run(t, req)

		for _, name := range []string{"b.pdf", "d.pdf"} {
			if rec := recordFor(t, report, name); rec.Action != organizer.ActionDeleted {
				t.Fatalf("expected %s deleted, got %#v", name, rec)
			}
			if _, err := os.Stat(filepath.Join(h.source, name)); !os.IsNotExist(err) {
				t.Fatalf("%s should be deleted", name)
			}
		}
		want := []string{"Documents/", "Documents/a.pdf", "Documents/c.pdf", "Documents/d.pdf"}
		if got := testsupport.Tree(t, h.source); !reflect.DeepEqual(got, want) {
			t.Fatalf("tree = %v, want %v", got, want)
		}
		if report.Summary.Deleted != 2 {
			t.Fatalf("unexpected summary %#v", report.Summary)
		}
	})

	t.Run("dry-run delete", func(t *testing.T) {
		h := setup(t)
		before := testsupport.Tree(t, h.source)
		req := h.request(organizer.ModeDryRun)
		req.Dedupe = true
		req.DeleteDuplicates = true
		report := h.run(t, req)

		if rec := recordFor(t, report, "b.pdf"); rec.Action != organizer.ActionSimulated || !strings.HasPrefix(rec.Reason, "would delete") {
			t.Fatalf("expected simulated delete, got %#v", rec)
		}
		if after := testsupport.Tree(t, h.source); !reflect.DeepEqual(before, after) {
			t.Fatalf("dry-run mutated directory: %v", after)
		}
	})
}

func TestDedupeNeverDeletesSymlinkTarget(t *testing.T) {
	h := newHarness(t)
	h.write(t, "z.pdf", "only copy")
	if err := os.Symlink("z.pdf", filepath.Join(h.source, "a-link.pdf")); err != nil {
		t.Fatalf("symlink: %v", err)
	}
	// The planned destination is a link to an identical file elsewhere.
	backup := filepath.Join(testsupport.BaseDir(h.cfg), "backup.pdf")
	testsupport.WriteContent(t, backup, "only copy", time.Time{})
	if err := os.MkdirAll(filepath.Join(h.source, "Documents"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.Symlink(backup, filepath.Join(h.source, "Documents", "z.pdf")); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	req := h.request(organizer.ModeExecute)
	req.Dedupe = true
	req.DeleteDuplicates = true
	report := h.run(t, req)

	if rec := recordFor(t, report, "a-link.pdf"); rec.Action != organizer.ActionSkipped || rec.Reason != "symbolic link" {
		t.Fatalf("expected link skipped, got %#v", rec)
	}
	rec := recordFor(t, report, "z.pdf")
	if rec.Action != organizer.ActionMoved || filepath.Base(rec.Destination) != "z_1.pdf" {
		t.Fatalf("expected target moved beside the link, got %#v", rec)
	}
	if got := readFile(t, filepath.Join(h.source, "Documents", "z_1.pdf")); got != "only copy" {
		t.Fatalf("content lost: %q", got)
	}
	if report.Summary.Deleted != 0 {
		t.Fatalf("nothing may be deleted, got %#v", report.Summary)
	}
}

func TestSymlinksStayInPlace(t *testing.T) {
	h := newHarness(t)
	h.write(t, "notes.txt", "hello")
	if err := os.Symlink("notes.txt", filepath.Join(h.source, "alias.txt")); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	report := h.run(t, h.request(organizer.ModeExecute))

	if rec := recordFor(t, report, "alias.txt"); rec.Action != organizer.ActionSkipped {
		t.Fatalf("expected link skipped, got %#v", rec)
	}
	info, err := os.Lstat(filepath.Join(h.source, "alias.txt"))
	if err != nil || info.Mode()&os.ModeSymlink == 0 {
		t.Fatalf("link should remain in source: %v", err)
	}
}

func TestArchiveOlderThan(t *testing.T) {
	h := newHarness(t)
	testsupport.WriteContent(t, filepath.Join(h.source, "old.pdf"), "old", fixedNow.AddDate(0, 0, -400))
	testsupport.WriteContent(t, filepath.Join(h.source, "new.pdf"), "new", fixedNow.AddDate(0, 0, -1))

	req := h.request(organizer.ModeExecute)
	req.ArchiveOlderThanDays = 30
	report := h.run(t, req)

	if _, err := os.Stat(filepath.Join(h.source, "Archive", "Documents", "old.pdf")); err != nil {
		t.Fatalf("expected old file archived: %v", err)
	}
	if _, err := os.Stat(filepath.Join(h.source, "Documents", "new.pdf")); err != nil {
		t.Fatalf("expected new file in category: %v", err)
	}
	if rec := recordFor(t, report, "old.pdf"); rec.Category != "Archive/Documents" {
		t.Fatalf("unexpected archive category %q", rec.Category)
	}
}

func TestCustomRulesOverrideExtensionMapping(t *testing.T) {
	h := newHarness(t)
	h.write(t, "invoice-march.pdf", "i")
	h.write(t, "manual.pdf", "m")

	set, skipped, err := rules.Parse(strings.NewReader(`[
		{"name": "invoices", "priority": 1, "filters": {"filename_starts_with": "invoice"}, "action": {"category": "Finance"}}
	]`))
	if err != nil || len(skipped) != 0 {
		t.Fatalf("rules.Parse: %v %v", err, skipped)
	}
	req := h.request(organizer.ModeExecute)
	req.CustomRules = set
	report := h.run(t, req)

	rec := recordFor(t, report, "invoice-march.pdf")
	if rec.Category != "Finance" || rec.Reason != "rule: invoices" {
		t.Fatalf("expected custom rule placement, got %#v", rec)
	}
	if got := recordFor(t, report, "manual.pdf").Category; got != "Documents" {
		t.Fatalf("unexpected category for unmatched file: %q", got)
	}
}

func TestInPlaceOnlyRenames(t *testing.T) {
	h := newHarness(t)
	h.write(t, "report.pdf", "r")
	h.write(t, "2024-01-15_notes.txt", "n")

	req := h.request(organizer.ModeExecute)
	req.InPlace = true
	req.DateMode = organizer.DateModified
	report := h.run(t, req)

	want := []string{"2024-01-15_notes.txt", "2024-01-15_report.pdf"}
	if got := testsupport.Tree(t, h.source); !reflect.DeepEqual(got, want) {
		t.Fatalf("tree = %v, want %v", got, want)
	}
	if rec := recordFor(t, report, "2024-01-15_notes.txt"); rec.Action != organizer.ActionSkipped {
		t.Fatalf("already-prefixed file should be skipped, got %#v", rec)
	}
	if rec := recordFor(t, report, "report.pdf"); rec.Action != organizer.ActionMoved || !rec.Renamed {
		t.Fatalf("expected rename, got %#v", rec)
	}
}

func TestCancelledRunReturnsPartialReport(t *testing.T) {
	h := newHarness(t)
	h.write(t, "a.pdf", "a")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	org := organizer.NewOrganizerWithDependencies(h.cfg, logging.NewNop(), h.deps)
	report, err := org.Run(ctx, h.request(organizer.ModeExecute))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(report.Records) != 0 || report.RunID == "" {
		t.Fatalf("unexpected partial report %#v", report)
	}
	if _, err := os.Stat(filepath.Join(h.source, "a.pdf")); err != nil {
		t.Fatal("cancelled run must not move files")
	}
}

func TestRunIsRecordedInHistory(t *testing.T) {
	h := newHarness(t)
	h.write(t, "a.pdf", "a")
	h.write(t, "b.bin", "b")
	store := testsupport.MustOpenHistory(t, h.cfg)
	h.deps.History = store

	report := h.run(t, h.request(organizer.ModeDryRun))

	detail, err := store.GetRun(context.Background(), report.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if !detail.DryRun || len(detail.Records) != 2 || detail.Summary.Simulated != 2 {
		t.Fatalf("unexpected history detail %#v", detail)
	}
	if detail.Records[1].Category != "Other" {
		t.Fatalf("unexpected stored record %#v", detail.Records[1])
	}
}

func TestSummaryTopExtensions(t *testing.T) {
	h := newHarness(t)
	for _, name := range []string{"a.pdf", "b.pdf", "c.jpg", "d", "e.PDF"} {
		h.write(t, name, name)
	}
	report := h.run(t, h.request(organizer.ModeDryRun))

	top := report.Summary.TopExtensions
	if len(top) != 3 {
		t.Fatalf("unexpected top extensions %#v", top)
	}
	if top[0] != (organizer.ExtensionCount{Extension: "pdf", Count: 3}) {
		t.Fatalf("unexpected leader %#v", top[0])
	}
	if top[1].Extension != "(none)" || top[2].Extension != "jpg" {
		t.Fatalf("ties should sort by extension: %#v", top)
	}
}

func TestUnmatchedExtensionsUseConfiguredFallback(t *testing.T) {
	h := newHarness(t, testsupport.WithFallback("Misc"))
	h.write(t, "setup.xyz", "x")
	h.write(t, "README", "r")

	report := h.run(t, h.request(organizer.ModeExecute))

	for _, name := range []string{"setup.xyz", "README"} {
		if rec := recordFor(t, report, name); rec.Category != "Misc" || rec.Action != organizer.ActionMoved {
			t.Fatalf("expected %s in fallback folder, got %#v", name, rec)
		}
		if _, err := os.Stat(filepath.Join(h.source, "Misc", name)); err != nil {
			t.Fatalf("expected %s under Misc: %v", name, err)
		}
	}
}

func TestRunLogHasOneLinePerFile(t *testing.T) {
	h := newHarness(t, testsupport.WithRunLog())
	h.write(t, "a.pdf", "a")
	h.write(t, "b.jpg", "b")
	h.write(t, ".hidden", "h")

	logger, err := logging.NewFromConfig(h.cfg, io.Discard)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	org := organizer.NewOrganizerWithDependencies(h.cfg, logger, h.deps)
	if _, err := org.Run(context.Background(), h.request(organizer.ModeExecute)); err != nil {
		t.Fatalf("Run: %v", err)
	}

	data := readFile(t, h.cfg.LogPath())
	if got := strings.Count(data, `"msg":"file moved"`); got != 2 {
		t.Fatalf("expected 2 moved lines, got %d:\n%s", got, data)
	}
	if !strings.Contains(data, `"msg":"file skipped"`) || !strings.Contains(data, `"correlation_id":"run-test"`) {
		t.Fatalf("run log missing skip line or run id:\n%s", data)
	}
}
