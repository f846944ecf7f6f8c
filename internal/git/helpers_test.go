package git

import (
	"testing"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/stretchr/testify/require"
)

var testEpoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type testRepo struct {
	t    *testing.T
	repo *gitlib.Repository
	fs   billy.Filesystem
	svc  *Service
	tick int
}

func newTestRepo(t *testing.T) *testRepo {
	t.Helper()
	fs := memfs.New()
	repo, err := gitlib.Init(memory.NewStorage(), fs)
	require.NoError(t, err)
	return &testRepo{t: t, repo: repo, fs: fs, svc: NewWithRepository(repo, fs)}
}

func (r *testRepo) write(path, content string) {
	r.t.Helper()
	require.NoError(r.t, util.WriteFile(r.fs, path, []byte(content), 0o644))
}

// commit writes path, stages it and commits with a strictly increasing
// author date.
func (r *testRepo) commit(path, content, message string) plumbing.Hash {
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

func (r *testRepo) checkout(branch string, create bool) {
	r.t.Helper()
	wt, err := r.repo.Worktree()
	require.NoError(r.t, err)
	require.NoError(r.t, wt.Checkout(&gitlib.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(branch),
		Create: create,
	}))
}

func (r *testRepo) setRef(name plumbing.ReferenceName, hash plumbing.Hash) {
	r.t.Helper()
	require.NoError(r.t, r.repo.Storer.SetReference(plumbing.NewHashReference(name, hash)))
}

func (r *testRepo) head() plumbing.Hash {
	r.t.Helper()
	ref, err := r.repo.Head()
	require.NoError(r.t, err)
	return ref.Hash()
}

// commitOn commits path with explicit parents. The current branch moves to
// the new commit.
func (r *testRepo) commitOn(parents []plumbing.Hash, path, content, message string) plumbing.Hash {
	r.t.Helper()
	r.write(path, content)
	wt, err := r.repo.Worktree()
	require.NoError(r.t, err)
	_, err = wt.Add(path)
	require.NoError(r.t, err)
	r.tick++
	sig := &object.Signature{Name: "Test", Email: "test@example.com", When: testEpoch.Add(time.Duration(r.tick) * time.Minute)}
	hash, err := wt.Commit(message, &gitlib.CommitOptions{Author: sig, Committer: sig, Parents: parents})
	require.NoError(r.t, err)
	return hash
}
