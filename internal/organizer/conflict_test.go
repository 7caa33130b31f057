package organizer

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConflictResolverUniquePath(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"report.pdf", "report_1.pdf", "README"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	c := NewConflictResolver()

	steps := []struct {
		name string
		want string
	}{
		{"fresh.pdf", "fresh.pdf"},
		{"report.pdf", "report_2.pdf"},
		{"report.pdf", "report_3.pdf"},
		{"fresh.pdf", "fresh_1.pdf"},
		{"README", "README_1"},
		{"archive.tar.gz", "archive.tar.gz"},
		{"archive.tar.gz", "archive.tar_1.gz"},
	}
	seen := map[string]bool{}
	for _, step := range steps {
		got := c.UniquePath(dir, step.name)
		if got != filepath.Join(dir, step.want) {
			t.Fatalf("UniquePath(%q) = %q, want %q", step.name, filepath.Base(got), step.want)
		}
		if seen[got] {
			t.Fatalf("path %q handed out twice", got)
		}
		seen[got] = true
	}
}

func TestConflictResolverMissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Documents")
	c := NewConflictResolver()
	if got := c.UniquePath(dir, "a.pdf"); got != filepath.Join(dir, "a.pdf") {
		t.Fatalf("got %q", got)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatal("resolver must not create directories")
	}
}

func TestConflictResolverSnapshotsOnce(t *testing.T) {
	dir := t.TempDir()
	c := NewConflictResolver()
	if got := c.UniquePath(dir, "a.txt"); filepath.Base(got) != "a.txt" {
		t.Fatalf("got %q", got)
	}
	if err := os.WriteFile(filepath.Join(dir, "b.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := c.UniquePath(dir, "b.txt"); filepath.Base(got) != "b.txt" {
		t.Fatalf("expected snapshot semantics, got %q", got)
	}
}
