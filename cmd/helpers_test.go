package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

var testEpoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type diskRepo struct {
	t    *testing.T
	dir  string
	repo *gitlib.Repository
	tick int
}

func newDiskRepo(t *testing.T) *diskRepo {
	t.Helper()
	dir := t.TempDir()
	repo, err := gitlib.PlainInitWithOptions(dir, &gitlib.PlainInitOptions{
		InitOptions: gitlib.InitOptions{DefaultBranch: plumbing.Main},
	})
	require.NoError(t, err)
	return &diskRepo{t: t, dir: dir, repo: repo}
}

func (r *diskRepo) write(path, content string) {
	r.t.Helper()
	full := filepath.Join(r.dir, path)
	require.NoError(r.t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(r.t, os.WriteFile(full, []byte(content), 0o644))
}

func (r *diskRepo) commit(path, content, message string) plumbing.Hash {
	r.t.Helper()
	r.write(path, content)
	wt, err := r.repo.Worktree()
	require.NoError(r.t, err)
	_, err = wt.Add(path)
	require.NoError(r.t, err)
	r.tick++
	sig := &object.Signature{Name: "Test", Email: "test@example.com", When: testEpoch.Add(time.Duration(r.tick) * time.Minute)}
	hash, err := wt.Commit(message, &gitlib.CommitOptions{Author: sig, Committer: sig})
	require.NoError(r.t, err)
	return hash
}

// run executes the root command against the repository with a config file
// that does not exist, so every test sees the defaults.
func (r *diskRepo) run(args ...string) (string, error) {
	r.t.Helper()
	cfg := filepath.Join(r.t.TempDir(), "gitpilot.yaml")
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--config", cfg, "-C", r.dir}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func lines(s string) []string {
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}
