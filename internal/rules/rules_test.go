package rules

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const sampleRules = `[
  {"name": "invoices", "priority": 5,
   "filters": {"extensions": [".PDF"], "filename_contains": "Invoice"},
   "action": {"category": "Finance"}},
  {"name": "big videos", "priority": 10,
   "filters": {"extensions": "mp4", "min_size_mb": 1},
   "action": {"category": "Large"}},
  {"name": "stale", "filters": {"older_than_days": 30}, "action": {"category": "Stale"}},
  {"name": "broken", "filters": {"extensions": ["zip"]}},
  {"name": "unknown filter", "filters": {"color": "red"}, "action": {"category": "X"}},
  {"name": "escape", "filters": {}, "action": {"category": "../x"}},
  "not an object"
]`

func TestParseSortsAndSkipsMalformed(t *testing.T) {
	set, skipped, err := Parse(strings.NewReader(sampleRules))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if set.Len() != 3 {
		t.Fatalf("expected 3 usable rules, got %d", set.Len())
	}
	names := []string{}
	for _, rule := range set.Rules() {
		names = append(names, rule.Name)
	}
	if got := strings.Join(names, ","); got != "big videos,invoices,stale" {
		t.Fatalf("unexpected rule order: %s", got)
	}
	if len(skipped) != 4 {
		t.Fatalf("expected 4 skipped rules, got %#v", skipped)
	}
	wantIdx := []int{3, 4, 5, 6}
	for i, s := range skipped {
		if s.Index != wantIdx[i] || s.Reason == "" {
			t.Fatalf("skipped[%d] = %#v", i, s)
		}
	}
}

func TestParseRejectsNonList(t *testing.T) {
	if _, _, err := Parse(strings.NewReader(`{"name": "x"}`)); err == nil {
		t.Fatal("expected error for non-list document")
	}
}

func TestMatch(t *testing.T) {
	set, _, err := Parse(strings.NewReader(sampleRules))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-24 * time.Hour)

	cases := []struct {
		name string
		file File
		want string
	}{
		{"invoice", File{Name: "March-INVOICE.pdf", Extension: "pdf", Size: 10, ModTime: recent}, "Finance"},
		{"plain pdf", File{Name: "notes.pdf", Extension: "pdf", Size: 10, ModTime: recent}, ""},
		{"big video", File{Name: "clip.mp4", Extension: "mp4", Size: 2 * megabyte, ModTime: recent}, "Large"},
		{"small video", File{Name: "clip.mp4", Extension: "mp4", Size: 100, ModTime: recent}, ""},
		{"old file", File{Name: "a.txt", Extension: "txt", ModTime: now.AddDate(0, 0, -31)}, "Stale"},
		{"priority beats age", File{Name: "old.mp4", Extension: "mp4", Size: 5 * megabyte, ModTime: now.AddDate(0, 0, -90)}, "Large"},
	}
	for _, tc := range cases {
		rule, ok := set.Match(tc.file, now)
		if tc.want == "" {
			if ok {
				t.Fatalf("%s: unexpected match %q", tc.name, rule.Name)
			}
			continue
		}
		if !ok || rule.Category != tc.want {
			t.Fatalf("%s: got %q (ok=%v), want %q", tc.name, rule.Category, ok, tc.want)
		}
	}
}

func TestNewerThanDays(t *testing.T) {
	set, _, err := Parse(strings.NewReader(`[{"filters": {"newer_than_days": 7, "filename_ends_with": ".LOG"}, "action": {"category": "Recent"}}]`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	if _, ok := set.Match(File{Name: "app.log", ModTime: now.AddDate(0, 0, -2)}, now); !ok {
		t.Fatal("expected recent log to match")
	}
	if _, ok := set.Match(File{Name: "app.log", ModTime: now.AddDate(0, 0, -8)}, now); ok {
		t.Fatal("expected old log not to match")
	}
	if rules := set.Rules(); rules[0].Name != "unnamed rule" {
		t.Fatalf("expected default name, got %q", rules[0].Name)
	}
}

func TestLoadFile(t *testing.T) {
	set, skipped, err := LoadFile("")
	if err != nil || set.Len() != 0 || skipped != nil {
		t.Fatalf("empty path should yield empty set, got %v %v %v", set, skipped, err)
	}

	path := filepath.Join(t.TempDir(), "rules.json")
	if err := os.WriteFile(path, []byte(sampleRules), 0o644); err != nil {
		t.Fatal(err)
	}
	set, _, err = LoadFile(path)
	if err != nil || set.Len() != 3 {
		t.Fatalf("LoadFile: len=%d err=%v", set.Len(), err)
	}

	if _, _, err := LoadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing rules file")
	}
	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte("[{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := LoadFile(bad); err == nil {
		t.Fatal("expected error for unparsable rules file")
	}
}
