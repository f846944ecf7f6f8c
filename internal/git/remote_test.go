package git

import (
	"context"
	"testing"

	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemotesOriginFirst(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	names, err := r.svc.Remotes()
	require.NoError(t, err)
	assert.Empty(t, names)

	for _, name := range []string{"backup", "origin", "alpha"} {
		_, err := r.repo.CreateRemote(&config.RemoteConfig{Name: name, URLs: []string{"https://example.com/" + name + ".git"}})
		require.NoError(t, err)
	}
	names, err = r.svc.Remotes()
	require.NoError(t, err)
	assert.Equal(t, []string{"origin", "alpha", "backup"}, names)
}

func TestRemoteOperationsWithoutRemote(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	r.commit("a.txt", "a", "base")
	ctx := context.Background()

	assert.ErrorIs(t, r.svc.Fetch(ctx), ErrNoRemote)
	assert.ErrorIs(t, r.svc.Pull(ctx), ErrNoRemote)
	assert.ErrorIs(t, r.svc.Push(ctx), ErrNoRemote)
}

func TestPushDetachedHead(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	tip := r.commit("a.txt", "a", "base")
	_, err := r.repo.CreateRemote(&config.RemoteConfig{Name: "origin", URLs: []string{"https://example.com/repo.git"}})
	require.NoError(t, err)
	require.NoError(t, r.repo.Storer.SetReference(plumbing.NewHashReference(plumbing.HEAD, tip)))

	assert.ErrorIs(t, r.svc.Push(context.Background()), ErrDetachedHead)
	assert.ErrorIs(t, r.svc.Pull(context.Background()), ErrDetachedHead)
}

func TestValidateRemoteURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url   string
		valid bool
	}{
		{"https://github.com/user/repo.git", true},
		{"http://example.com/repo", true},
		{"ssh://git@example.com/repo.git", true},
		{"git@github.com:user/repo.git", true},
		{"  https://example.com/x  ", true},
		{"https://", false},
		{"git@", false},
		{"ftp://example.com/repo", false},
		{"/local/path", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			t.Parallel()
			err := ValidateRemoteURL(tt.url)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidRemote)
			}
		})
	}
}

func TestAddRemote(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	require.NoError(t, r.svc.AddRemote("origin", " https://example.com/repo.git "))
	assert.ErrorIs(t, r.svc.AddRemote("mirror", "file:///tmp/repo"), ErrInvalidRemote)
	assert.Error(t, r.svc.AddRemote("origin", "git@example.com:repo.git"))

	names, err := r.svc.Remotes()
	require.NoError(t, err)
	assert.Equal(t, []string{"origin"}, names)

	remote, err := r.repo.Remote("origin")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/repo.git"}, remote.Config().URLs)
}
