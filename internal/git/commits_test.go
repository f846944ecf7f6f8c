package git

import (
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommitsLinearHistory(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	c1 := r.commit("a.txt", "one\n", "first")
	c2 := r.commit("a.txt", "two\n", "second")
	c3 := r.commit("a.txt", "three\n", "third\n\nbody")

	commits, err := r.svc.Commits(50)
	require.NoError(t, err)
	require.Len(t, commits, 3)

	assert.Equal(t, []string{c3.String(), c2.String(), c1.String()},
		[]string{commits[0].SHA, commits[1].SHA, commits[2].SHA})
	assert.Equal(t, "master", commits[0].BranchName)
	assert.Empty(t, commits[1].BranchName)
	assert.Equal(t, []string{c2.String()}, commits[0].ParentSHAs)
	assert.Empty(t, commits[2].ParentSHAs)
	assert.Equal(t, "third", commits[0].Summary)
	assert.Equal(t, "Test", commits[0].Author)
	assert.Equal(t, "test@example.com", commits[0].AuthorEmail)
}

func TestCommitsPerBranchLimitAndDistinct(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	for _, msg := range []string{"1", "2", "3", "4", "5"} {
		r.commit("f.txt", msg, msg)
	}
	r.checkout("feature", true)
	r.commit("g.txt", "x", "feature work")
	r.checkout("master", false)

	commits, err := r.svc.Commits(2)
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, c := range commits {
		assert.False(t, seen[c.SHA], "duplicate %s", c.SHA)
		seen[c.SHA] = true
	}
	// master: 5, 4; feature: its own commit and 5 (already seen).
	assert.Len(t, commits, 3)
	assert.Equal(t, "feature work", commits[0].Summary)
	assert.Equal(t, "feature", commits[0].BranchName)
	assert.Equal(t, "master", commits[1].BranchName)
}

func TestCommitsBranchNamePrefersCurrent(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	tip := r.commit("a.txt", "a", "only")
	r.setRef(plumbing.NewBranchReferenceName("aaa"), tip)
	r.setRef(plumbing.NewRemoteReferenceName("origin", "master"), tip)

	commits, err := r.svc.Commits(10)
	require.NoError(t, err)
	require.Len(t, commits, 1)
	assert.Equal(t, "master", commits[0].BranchName)

	r.checkout("aaa", false)
	commits, err = r.svc.Commits(10)
	require.NoError(t, err)
	assert.Equal(t, "aaa", commits[0].BranchName)
}

func TestCommitsRemoteOnlyBranch(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	base := r.commit("a.txt", "a", "base")
	r.checkout("topic", true)
	topic := r.commit("b.txt", "b", "topic")
	r.checkout("master", false)
	r.setRef(plumbing.NewRemoteReferenceName("origin", "topic"), topic)
	require.NoError(t, r.repo.Storer.RemoveReference(plumbing.NewBranchReferenceName("topic")))

	commits, err := r.svc.Commits(10)
	require.NoError(t, err)
	require.Len(t, commits, 2)
	assert.Equal(t, "origin/topic", commits[0].BranchName)
	assert.Equal(t, base.String(), commits[1].SHA)

	local, err := r.svc.CommitsWithOptions(CommitOptions{PerBranch: 10})
	require.NoError(t, err)
	assert.Len(t, local, 1)
}

func TestCommitsWorkInProgress(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	head := r.commit("a.txt", "a", "base")
	r.write("a.txt", "changed")
	r.write("new.txt", "untracked")

	commits, err := r.svc.Commits(10)
	require.NoError(t, err)
	require.Len(t, commits, 2)

	wip := commits[0]
	assert.True(t, wip.IsWorkInProgress)
	assert.Equal(t, WorkInProgressSHA, wip.SHA)
	assert.Equal(t, []string{head.String()}, wip.ParentSHAs)
	assert.Equal(t, "master", wip.BranchName)
	assert.Equal(t, 2, wip.ChangedFiles)
	assert.Equal(t, WorkInProgressSHA, wip.ShortSHA())

	clean, err := r.svc.CommitsWithOptions(CommitOptions{PerBranch: 10, IncludeRemotes: true})
	require.NoError(t, err)
	assert.Len(t, clean, 1)
}

func TestCommitsEmptyRepository(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	commits, err := r.svc.Commits(10)
	require.NoError(t, err)
	assert.Empty(t, commits)

	name, err := r.svc.HeadName()
	require.NoError(t, err)
	assert.Equal(t, "master", name)
}

func TestCommitShortSHA(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1234567", Commit{SHA: "1234567890abcdef"}.ShortSHA())
	assert.Equal(t, "abc", Commit{SHA: "abc"}.ShortSHA())
}
