package git

import (
	"testing"

	"github.com/go-git/go-billy/v5/util"
	gitlib "github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalChanges(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	r.commit("a.txt", "a", "base")
	r.commit("b.txt", "b", "second")

	changes, err := r.svc.LocalChanges()
	require.NoError(t, err)
	assert.False(t, changes.Dirty())

	r.write("a.txt", "changed")
	r.write("c.txt", "new")
	require.NoError(t, r.svc.Stage([]string{"b.txt"}))
	r.write("b.txt", "staged-then-changed")
	require.NoError(t, r.svc.Stage([]string{"b.txt"}))

	changes, err = r.svc.LocalChanges()
	require.NoError(t, err)
	require.Len(t, changes.Files, 3)
	assert.True(t, changes.HasStaged)
	assert.True(t, changes.HasWorktree)

	assert.Equal(t, "a.txt", changes.Files[0].Path)
	assert.Equal(t, gitlib.Modified, changes.Files[0].Worktree)
	assert.Equal(t, "b.txt", changes.Files[1].Path)
	assert.True(t, changes.Files[1].StagedChange())
	assert.False(t, changes.Files[1].WorktreeChange())
	assert.True(t, changes.Files[2].Untracked())
}

func TestStageUnstage(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	r.commit("a.txt", "a", "base")
	r.write("a.txt", "changed")
	r.write("new.txt", "new")

	require.NoError(t, r.svc.Stage([]string{"a.txt", "./new.txt", "a.txt", " "}))
	changes, err := r.svc.LocalChanges()
	require.NoError(t, err)
	require.Len(t, changes.Files, 2)
	for _, f := range changes.Files {
		assert.True(t, f.StagedChange(), f.Path)
		assert.False(t, f.WorktreeChange(), f.Path)
	}

	require.NoError(t, r.svc.Unstage([]string{"a.txt", "new.txt"}))
	changes, err = r.svc.LocalChanges()
	require.NoError(t, err)
	assert.False(t, changes.HasStaged)
	require.Len(t, changes.Files, 2)
	assert.Equal(t, gitlib.Modified, changes.Files[0].Worktree)
	assert.True(t, changes.Files[1].Untracked())

	assert.ErrorIs(t, r.svc.Stage(nil), ErrNoPathsSelected)
	assert.ErrorIs(t, r.svc.Unstage([]string{""}), ErrNoPathsSelected)
}

func TestStageDeletedFile(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	r.commit("a.txt", "a", "base")
	require.NoError(t, r.fs.Remove("a.txt"))

	require.NoError(t, r.svc.Stage([]string{"a.txt"}))
	changes, err := r.svc.LocalChanges()
	require.NoError(t, err)
	require.Len(t, changes.Files, 1)
	assert.Equal(t, gitlib.Deleted, changes.Files[0].Staging)
}

func TestUnstageBeforeFirstCommit(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	r.write("a.txt", "a")
	require.NoError(t, r.svc.Stage([]string{"a.txt"}))
	require.NoError(t, r.svc.Unstage([]string{"a.txt"}))

	changes, err := r.svc.LocalChanges()
	require.NoError(t, err)
	require.Len(t, changes.Files, 1)
	assert.True(t, changes.Files[0].Untracked())
}

func TestDiscardKeepsUntracked(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	r.commit("a.txt", "original", "base")
	r.write("a.txt", "changed")
	r.write("scratch.txt", "keep me")

	require.NoError(t, r.svc.Discard([]string{"a.txt", "scratch.txt"}))

	data, err := util.ReadFile(r.fs, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "original", string(data))
	data, err = util.ReadFile(r.fs, "scratch.txt")
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(data))

	changes, err := r.svc.LocalChanges()
	require.NoError(t, err)
	require.Len(t, changes.Files, 1)
	assert.Equal(t, "scratch.txt", changes.Files[0].Path)
}

func TestNewCommitRequest(t *testing.T) {
	t.Parallel()

	_, err := NewCommitRequest("  ", "desc", "a", "b")
	assert.ErrorIs(t, err, ErrEmptyMessage)

	req, err := NewCommitRequest(" Fix bug ", " details ", "Ann", "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Fix bug", req.Message)
	assert.Equal(t, "Fix bug\n\ndetails", req.FullMessage())
	assert.Equal(t, "Fix bug", CommitRequest{Message: "Fix bug"}.FullMessage())
}

func TestCommit(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	base := r.commit("a.txt", "a", "base")

	req := CommitRequest{Message: "update", Description: "longer text", Author: "Ann", Email: "ann@example.com"}
	_, err := r.svc.Commit(req)
	assert.ErrorIs(t, err, ErrNothingStaged)

	r.write("a.txt", "b")
	_, err = r.svc.Commit(req)
	assert.ErrorIs(t, err, ErrNothingStaged)

	require.NoError(t, r.svc.Stage([]string{"a.txt"}))
	sha, err := r.svc.Commit(req)
	require.NoError(t, err)
	assert.Equal(t, sha, r.head().String())

	c, err := r.repo.CommitObject(r.head())
	require.NoError(t, err)
	assert.Equal(t, "update\n\nlonger text", c.Message)
	assert.Equal(t, "Ann", c.Author.Name)
	assert.Equal(t, []string{base.String()}, []string{c.ParentHashes[0].String()})

	_, err = r.svc.Commit(CommitRequest{})
	assert.ErrorIs(t, err, ErrEmptyMessage)
}
