package gui

import (
	"slices"
	"strings"
	"testing"

	"github.com/gitpilot-go/gitpilot/internal/git"
)

func TestDetailDocument(t *testing.T) {
	detail := git.CommitDetail{
		Commit: git.Commit{SHA: git.WorkInProgressSHA, Summary: "Uncommitted changes", IsWorkInProgress: true, ChangedFiles: 2},
		Files: []git.FileChange{
			{Path: "a.go", ChangeType: git.ChangeModified, Additions: 1, Diff: "diff --git a/a.go b/a.go\n+x\n", Staged: true},
			{Path: "b.bin", ChangeType: git.ChangeAdded},
		},
	}
	text, sections := detailDocument(detail)

	lines := strings.Split(text, "\n")
	want := []string{
		"Uncommitted changes (2 changed files)",
		"",
		"diff --git a/a.go b/a.go",
		"+x",
		"",
		"diff --git a/b.bin b/b.bin",
	}
	if !slices.Equal(lines, want) {
		t.Fatalf("unexpected document:\n%q", lines)
	}

	wantSections := []fileSection{
		{Label: "Commit", Line: 1, File: -1},
		{Label: "M a.go +1 -0 (staged)", Line: 3, File: 0},
		{Label: "A b.bin", Line: 6, File: 1},
	}
	if !slices.Equal(sections, wantSections) {
		t.Fatalf("unexpected sections: %+v", sections)
	}
	for _, sec := range sections[1:] {
		if !strings.HasPrefix(lines[sec.Line-1], "diff --git") {
			t.Fatalf("section %q points at %q", sec.Label, lines[sec.Line-1])
		}
	}
}

func TestDetailDocumentWithoutFiles(t *testing.T) {
	text, sections := detailDocument(git.CommitDetail{
		Commit: git.Commit{SHA: "abc", Author: "Ada", AuthorEmail: "ada@example.com", Message: "Empty"},
	})
	if !strings.HasPrefix(text, "commit abc\n") || !strings.HasSuffix(text, "\nNo changes.") {
		t.Fatalf("unexpected document %q", text)
	}
	if len(sections) != 1 || sections[0].File != -1 {
		t.Fatalf("expected only the header section, got %+v", sections)
	}
}

func TestFileLabel(t *testing.T) {
	tests := []struct {
		file git.FileChange
		wip  bool
		want string
	}{
		{git.FileChange{Path: "a.go", ChangeType: git.ChangeModified, Additions: 2, Deletions: 1}, false, "M a.go +2 -1"},
		{git.FileChange{Path: "gone.go", ChangeType: git.ChangeDeleted}, false, "D gone.go"},
		{git.FileChange{Path: "new.go", ChangeType: git.ChangeAdded, Additions: 4, Staged: true}, false, "A new.go +4 -0"},
		{git.FileChange{Path: "new.go", ChangeType: git.ChangeAdded, Additions: 4, Staged: true}, true, "A new.go +4 -0 (staged)"},
		{git.FileChange{Path: "x.go", ChangeType: git.ChangeUnmerged}, true, "U x.go"},
		{git.FileChange{Path: "y.go", ChangeType: git.ChangeRenamed}, false, "R y.go"},
	}
	for _, tc := range tests {
		if got := fileLabel(tc.file, tc.wip); got != tc.want {
			t.Fatalf("want %q, got %q", tc.want, got)
		}
	}
}

func TestFileSectionIndexForLine(t *testing.T) {
	sections := []fileSection{
		{Label: "Commit", Line: 1, File: -1},
		{Label: "a.go", Line: 5, File: 0},
		{Label: "b.go", Line: 10, File: 1},
	}
	tests := []struct {
		line int
		want int
	}{
		{line: -1, want: 0},
		{line: 0, want: 0},
		{line: 1, want: 0},
		{line: 4, want: 0},
		{line: 5, want: 1},
		{line: 9, want: 1},
		{line: 10, want: 2},
		{line: 999, want: 2},
	}
	for _, tc := range tests {
		if got := fileSectionIndexForLine(sections, tc.line); got != tc.want {
			t.Fatalf("line=%d: want %d, got %d", tc.line, tc.want, got)
		}
	}
	if got := fileSectionIndexForLine(nil, 3); got != 0 {
		t.Fatalf("expected 0 for no sections, got %d", got)
	}
}

func TestDiffLineTag(t *testing.T) {
	tests := map[string]string{
		"diff --git a/x b/x": "diffHeader",
		"+added":             "diffAdd",
		"+++ b/x":            "",
		"-removed":           "diffDel",
		"--- a/x":            "",
		" context":           "",
		"@@ -1 +1 @@":        "",
	}
	for line, want := range tests {
		if got := diffLineTag(line); got != want {
			t.Fatalf("line=%q: want %q, got %q", line, want, got)
		}
	}
}

func TestDiffPathFromLine(t *testing.T) {
	tests := []struct {
		line   string
		want   string
		header bool
	}{
		{"diff --git a/main.go b/main.go", "main.go", true},
		{"diff --git a/old.go b/new/place.go", "new/place.go", true},
		{`diff --git "a/with space.go" "b/with space.go"`, "with space.go", true},
		{`diff --git "a/q\"uote.go" "b/q\"uote.go"`, `q"uote.go`, true},
		{"diff --git", "", false},
		{"diff --git a/only", "", true},
		{"+diff --git a/x b/x", "", false},
	}
	for _, tc := range tests {
		got, ok := diffPathFromLine(tc.line)
		if ok != tc.header || got != tc.want {
			t.Fatalf("line=%q: want (%q, %v), got (%q, %v)", tc.line, tc.want, tc.header, got, ok)
		}
	}
}

func TestDiffLineCode(t *testing.T) {
	tests := []struct {
		line   string
		code   string
		offset int
		ok     bool
	}{
		{"+fmt.Println()", "fmt.Println()", 1, true},
		{"-return nil", "return nil", 1, true},
		{" x := 1", "x := 1", 1, true},
		{"+++ b/main.go", "", 0, false},
		{"--- a/main.go", "", 0, false},
		{"@@ -1,2 +1,2 @@", "", 0, false},
		{"", "", 0, false},
	}
	for _, tc := range tests {
		code, offset, ok := diffLineCode(tc.line)
		if code != tc.code || offset != tc.offset || ok != tc.ok {
			t.Fatalf("line=%q: want (%q, %d, %v), got (%q, %d, %v)", tc.line, tc.code, tc.offset, tc.ok, code, offset, ok)
		}
	}
}

func TestStripDiffMarkers(t *testing.T) {
	in := "+added\n-removed\n context\n\n+"
	want := "added\nremoved\n context\n\n"
	if got := stripDiffMarkers(in); got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
}
