package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitpilot-go/gitpilot/internal/git"
)

func TestBranchCommands(t *testing.T) {
	repo := newDiskRepo(t)
	repo.commit("a.txt", "one\n", "first")

	out, err := repo.run("branch", "create", "feature")
	require.NoError(t, err)
	assert.Equal(t, "Created branch feature\n", out)

	out, err = repo.run("branch")
	require.NoError(t, err)
	assert.Equal(t, "* main\n  feature\n", out)

	_, err = repo.run("branch", "create", "feature")
	assert.ErrorIs(t, err, git.ErrBranchExists)

	out, err = repo.run("branch", "checkout", "feature")
	require.NoError(t, err)
	assert.Equal(t, "Switched to branch feature\n", out)

	_, err = repo.run("branch", "delete", "feature")
	assert.ErrorIs(t, err, git.ErrCurrentBranch)

	out, err = repo.run("branch", "create", "topic", "--checkout")
	require.NoError(t, err)
	assert.Equal(t, "Switched to a new branch topic\n", out)

	out, err = repo.run("branch", "delete", "feature")
	require.NoError(t, err)
	assert.Equal(t, "Deleted branch feature\n", out)

	out, err = repo.run("branch", "list", "--remotes")
	require.NoError(t, err)
	assert.Equal(t, "* topic\n  main\n", out)
}

func TestBranchMergeFastForward(t *testing.T) {
	repo := newDiskRepo(t)
	repo.commit("a.txt", "one\n", "first")

	_, err := repo.run("branch", "create", "feature", "--checkout")
	require.NoError(t, err)
	repo.commit("b.txt", "two\n", "second")
	_, err = repo.run("branch", "checkout", "main")
	require.NoError(t, err)

	out, err := repo.run("branch", "merge", "feature")
	require.NoError(t, err)
	assert.Equal(t, "Merged feature\n", out)

	out, err = repo.run("log", "--no-wip")
	require.NoError(t, err)
	assert.Contains(t, lines(out)[0], "(HEAD -> main, feature) second")
}

func TestWriteBranches(t *testing.T) {
	local := []git.Branch{
		{Name: "feature", Upstream: "origin/feature", Ahead: 1, Behind: 2},
		{Name: "main", IsCurrent: true, Upstream: "origin/main"},
	}
	remote := []git.Branch{{Name: "origin/feature"}, {Name: "origin/main"}}

	var buf bytes.Buffer
	require.NoError(t, writeBranches(&buf, local, remote))
	assert.Equal(t, "  feature [origin/feature: ahead 1, behind 2]\n* main [origin/main]\n  remotes/origin/feature\n  remotes/origin/main\n", buf.String())
}

func TestTrackingInfo(t *testing.T) {
	tests := []struct {
		branch git.Branch
		want   string
	}{
		{branch: git.Branch{Name: "main"}, want: ""},
		{branch: git.Branch{Name: "main", Ahead: 3}, want: ""},
		{branch: git.Branch{Name: "main", Upstream: "origin/main"}, want: "origin/main"},
		{branch: git.Branch{Name: "main", Upstream: "origin/main", Ahead: 3}, want: "origin/main: ahead 3"},
		{branch: git.Branch{Name: "main", Upstream: "origin/main", Behind: 1}, want: "origin/main: behind 1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, trackingInfo(tt.branch), "%+v", tt.branch)
	}
}
