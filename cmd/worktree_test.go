package cmd

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitpilot-go/gitpilot/internal/git"
)

func TestStageAndCommit(t *testing.T) {
	repo := newDiskRepo(t)
	repo.commit("a.txt", "one\n", "first")

	_, err := repo.run("commit", "-m", "nothing")
	assert.ErrorIs(t, err, git.ErrNothingStaged)

	repo.write("b.txt", "new\n")
	out, err := repo.run("stage", "b.txt")
	require.NoError(t, err)
	assert.Equal(t, "Staged 1 paths\n", out)

	out, err = repo.run("status")
	require.NoError(t, err)
	assert.Contains(t, out, "A  b.txt\n")

	_, err = repo.run("commit", "-m", "   ")
	assert.ErrorIs(t, err, git.ErrEmptyMessage)

	out, err = repo.run("commit", "-m", "Add b", "-d", "Details.", "--author", "Alice", "--email", "alice@example.com")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^\[[0-9a-f]{7}\] Add b\n$`), out)

	out, err = repo.run("show")
	require.NoError(t, err)
	assert.Contains(t, out, "Author: Alice <alice@example.com>\n")
	assert.Contains(t, out, "    Add b\n\n    Details.\n")

	out, err = repo.run("status")
	require.NoError(t, err)
	assert.Equal(t, "On branch main\nNothing to commit, working tree clean\n", out)
}

func TestStageAll(t *testing.T) {
	repo := newDiskRepo(t)
	repo.commit("a.txt", "one\n", "first")
	repo.write("a.txt", "two\n")
	repo.write("dir/b.txt", "new\n")

	out, err := repo.run("stage", "--all")
	require.NoError(t, err)
	assert.Equal(t, "Staged 2 paths\n", out)

	out, err = repo.run("status")
	require.NoError(t, err)
	assert.Contains(t, out, "M  a.txt\n")
	assert.Contains(t, out, "A  dir/b.txt\n")
}

func TestUnstageAndDiscard(t *testing.T) {
	repo := newDiskRepo(t)
	repo.commit("a.txt", "one\n", "first")
	repo.write("a.txt", "two\n")

	_, err := repo.run("stage", "a.txt")
	require.NoError(t, err)
	out, err := repo.run("unstage", "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "Unstaged 1 paths\n", out)

	out, err = repo.run("status")
	require.NoError(t, err)
	assert.Contains(t, out, " M a.txt\n")

	out, err = repo.run("discard", "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "Discarded changes to 1 paths\n", out)

	content, err := os.ReadFile(filepath.Join(repo.dir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "one\n", string(content))

	_, err = repo.run("unstage")
	assert.Error(t, err)
}

func TestRemoteCommandsWithoutRemote(t *testing.T) {
	repo := newDiskRepo(t)
	repo.commit("a.txt", "one\n", "first")

	for _, name := range []string{"fetch", "pull", "push"} {
		_, err := repo.run(name)
		assert.ErrorIs(t, err, git.ErrNoRemote, name)
	}
}

func TestRemoteCommand(t *testing.T) {
	repo := newDiskRepo(t)
	repo.commit("a.txt", "one\n", "first")

	out, err := repo.run("remote")
	require.NoError(t, err)
	assert.Empty(t, out)

	out, err = repo.run("remote", "add", "origin", "https://example.com/repo.git")
	require.NoError(t, err)
	assert.Equal(t, "Added remote origin\n", out)

	_, err = repo.run("remote", "add", "local", "/srv/repo.git")
	assert.ErrorIs(t, err, git.ErrInvalidRemote)

	out, err = repo.run("remote")
	require.NoError(t, err)
	assert.Equal(t, "origin\n", out)
}

func TestPathsWhere(t *testing.T) {
	changes := git.LocalChanges{Files: []git.FileStatus{
		{Path: "staged.go", Staging: 'M', Worktree: ' '},
		{Path: "both.go", Staging: 'M', Worktree: 'M'},
		{Path: "new.go", Staging: '?', Worktree: '?'},
	}}
	assert.Equal(t, []string{"both.go", "new.go"}, pathsWhere(changes, git.FileStatus.WorktreeChange))
	assert.Equal(t, []string{"staged.go", "both.go"}, pathsWhere(changes, git.FileStatus.StagedChange))
}
