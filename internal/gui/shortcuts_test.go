package gui

import (
	"strings"
	"testing"
)

func TestFormatShortcutsHelpText(t *testing.T) {
	bindings := []shortcutBinding{
		{category: "General", display: "/", description: "Focus the filter box"},
		{category: "General", display: "F5", description: "Reload the repository"},
		{category: "", display: "x", description: "ignored (no category)"},
		{category: "Other", display: "", description: "ignored (no display)"},
		{category: "Commit list", display: "j", description: "Move down"},
	}
	got := formatShortcutsHelpText(bindings)

	if strings.Contains(got, "ignored") {
		t.Fatalf("expected ignored bindings to be absent, got %q", got)
	}
	lines := strings.Split(got, "\n")
	if len(lines) != 6 {
		t.Fatalf("expected 6 lines, got %q", lines)
	}
	if lines[0] != "General" || lines[3] != "" || lines[4] != "Commit list" {
		t.Fatalf("unexpected category layout %q", lines)
	}
	if !strings.HasPrefix(lines[1], "  / ") || !strings.HasSuffix(lines[1], " Focus the filter box") {
		t.Fatalf("unexpected entry %q", lines[1])
	}
	if strings.Index(lines[1], "Focus") != strings.Index(lines[2], "Reload") {
		t.Fatalf("expected descriptions to be aligned: %q / %q", lines[1], lines[2])
	}
	if strings.HasSuffix(got, "\n") {
		t.Fatalf("expected no trailing newline")
	}
}

func TestShortcutBindingsAreComplete(t *testing.T) {
	a := &Controller{}
	seen := map[string]string{}
	for _, sc := range a.shortcutBindings() {
		if sc.handler == nil || sc.display == "" || sc.description == "" || sc.category == "" {
			t.Fatalf("incomplete binding %+v", sc)
		}
		for _, seq := range sc.sequences {
			if prev, ok := seen[seq]; ok {
				t.Fatalf("sequence %s bound twice: %q and %q", seq, prev, sc.description)
			}
			seen[seq] = sc.description
		}
	}
}
