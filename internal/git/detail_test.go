package git

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommitDetailRootCommit(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	root := r.commit("a.txt", "one\ntwo\n", "root")

	detail, err := r.svc.CommitDetail(root.String())
	require.NoError(t, err)
	assert.Equal(t, root.String(), detail.Commit.SHA)
	require.Len(t, detail.Files, 1)
	f := detail.Files[0]
	assert.Equal(t, "a.txt", f.Path)
	assert.Equal(t, ChangeAdded, f.ChangeType)
	assert.Equal(t, 2, f.Additions)
	assert.Equal(t, 0, f.Deletions)
	assert.Contains(t, f.Diff, "+one")
	assert.True(t, f.Staged)
}

func TestCommitDetailAgainstFirstParent(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	r.commit("a.txt", "one\ntwo\n", "root")
	r.commit("gone.txt", "bye\n", "add gone")
	wt, err := r.repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Remove("gone.txt")
	require.NoError(t, err)
	head := r.commit("a.txt", "one\nthree\n", "edit")

	detail, err := r.svc.CommitDetail(head.String()[:10])
	require.NoError(t, err)
	require.Len(t, detail.Files, 2)

	byPath := map[string]FileChange{}
	for _, f := range detail.Files {
		byPath[f.Path] = f
	}
	assert.Equal(t, ChangeModified, byPath["a.txt"].ChangeType)
	assert.Equal(t, 1, byPath["a.txt"].Additions)
	assert.Equal(t, 1, byPath["a.txt"].Deletions)
	assert.Contains(t, byPath["a.txt"].Diff, "-two")
	assert.Contains(t, byPath["a.txt"].Diff, "+three")
	assert.Equal(t, ChangeDeleted, byPath["gone.txt"].ChangeType)

	text := DiffText(detail)
	assert.Contains(t, text, "diff --git a/a.txt b/a.txt")
}

func TestCommitDetailUnknown(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	r.commit("a.txt", "a", "root")
	_, err := r.svc.CommitDetail("0123456789012345678901234567890123456789")
	assert.Error(t, err)
}

func TestCommitDetailWorkInProgress(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	head := r.commit("a.txt", "one\n", "root")
	r.write("a.txt", "one\nstaged\n")
	require.NoError(t, r.svc.Stage([]string{"a.txt"}))
	r.write("a.txt", "one\nstaged\nunstaged\n")
	r.write("new.txt", "fresh\n")

	detail, err := r.svc.CommitDetail(WorkInProgressSHA)
	require.NoError(t, err)
	assert.True(t, detail.Commit.IsWorkInProgress)
	assert.Equal(t, []string{head.String()}, detail.Commit.ParentSHAs)
	assert.Equal(t, 2, detail.Commit.ChangedFiles)

	// Unstaged files come first, then staged ones.
	require.Len(t, detail.Files, 3)
	unstagedA, unstagedNew, stagedA := detail.Files[0], detail.Files[1], detail.Files[2]

	assert.Equal(t, "a.txt", unstagedA.Path)
	assert.False(t, unstagedA.Staged)
	assert.Equal(t, 1, unstagedA.Additions)
	assert.Contains(t, unstagedA.Diff, "+unstaged")
	assert.NotContains(t, unstagedA.Diff, "+staged")

	assert.Equal(t, "new.txt", unstagedNew.Path)
	assert.Equal(t, ChangeAdded, unstagedNew.ChangeType)
	assert.Contains(t, unstagedNew.Diff, "--- /dev/null")

	assert.Equal(t, "a.txt", stagedA.Path)
	assert.True(t, stagedA.Staged)
	assert.Equal(t, ChangeModified, stagedA.ChangeType)
	assert.Contains(t, stagedA.Diff, "+staged")
	assert.NotContains(t, stagedA.Diff, "+unstaged")
}

func TestCommitDetailWorkInProgressClean(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	r.commit("a.txt", "a", "root")
	detail, err := r.svc.CommitDetail(WorkInProgressSHA)
	require.NoError(t, err)
	assert.Empty(t, detail.Files)
}

func TestUnifiedDiffBinary(t *testing.T) {
	t.Parallel()

	text, adds, dels, err := unifiedDiff("bin", []byte{0, 1, 2}, []byte{0, 1, 3})
	require.NoError(t, err)
	assert.Contains(t, text, "Binary files differ")
	assert.Zero(t, adds)
	assert.Zero(t, dels)
}

func TestFormatCommitHeader(t *testing.T) {
	t.Parallel()

	ts := time.Date(2023, 7, 1, 12, 0, 0, 0, time.UTC)
	got := FormatCommitHeader(Commit{
		SHA:         "1234567890abcdef1234567890abcdef12345678",
		ParentSHAs:  []string{"aaaaaaaaaa", "bbbbbbbbbb"},
		Author:      "Alice",
		AuthorEmail: "alice@example.com",
		When:        ts,
		Message:     "Subject line\n\nBody line",
	})
	assert.Contains(t, got, "commit 1234567890abcdef1234567890abcdef12345678\n")
	assert.Contains(t, got, "Merge: aaaaaaa bbbbbbb\n")
	assert.Contains(t, got, "Author: Alice <alice@example.com>\n")
	assert.Contains(t, got, "Date:   2023-07-01 12:00:00 +0000\n")
	assert.Contains(t, got, "    Subject line\n\n    Body line\n")

	empty := FormatCommitHeader(Commit{SHA: "abc"})
	assert.True(t, strings.HasSuffix(empty, "    (no commit message)\n"))

	wip := FormatCommitHeader(Commit{SHA: WorkInProgressSHA, Summary: "Work In Progress", IsWorkInProgress: true, ChangedFiles: 3})
	assert.Equal(t, "Work In Progress (3 changed files)\n", wip)
}
