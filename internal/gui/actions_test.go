package gui

import (
	"slices"
	"testing"

	gitlib "github.com/go-git/go-git/v5"

	"github.com/gitpilot-go/gitpilot/internal/git"
)

func TestChangedPaths(t *testing.T) {
	changes := git.LocalChanges{Files: []git.FileStatus{
		{Path: "staged.go", Staging: gitlib.Modified, Worktree: gitlib.Unmodified},
		{Path: "both.go", Staging: gitlib.Added, Worktree: gitlib.Modified},
		{Path: "worktree.go", Staging: gitlib.Unmodified, Worktree: gitlib.Modified},
		{Path: "new.txt", Staging: gitlib.Untracked, Worktree: gitlib.Untracked},
	}}
	if got := changedPaths(changes, true); !slices.Equal(got, []string{"staged.go", "both.go"}) {
		t.Fatalf("unexpected staged paths %q", got)
	}
	if got := changedPaths(changes, false); !slices.Equal(got, []string{"both.go", "worktree.go", "new.txt"}) {
		t.Fatalf("unexpected worktree paths %q", got)
	}
	if got := changedPaths(git.LocalChanges{}, true); got != nil {
		t.Fatalf("expected nil for no changes, got %q", got)
	}
}

func TestReloadButtonLabel(t *testing.T) {
	tests := []struct {
		configured, enabled bool
		want                string
	}{
		{false, false, "Reload"},
		{false, true, "Reload"},
		{true, false, "Reload (Auto Off)"},
		{true, true, "Reload (Auto On)"},
	}
	for _, tc := range tests {
		if got := reloadButtonLabel(tc.configured, tc.enabled); got != tc.want {
			t.Fatalf("configured=%v enabled=%v: want %q, got %q", tc.configured, tc.enabled, tc.want, got)
		}
	}
}
