package git

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
)

// Remotes returns the configured remote names, origin first.
func (s *Service) Remotes() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remotesLocked()
}

func (s *Service) remotesLocked() ([]string, error) {
	if s.repo == nil {
		return nil, ErrNotInitialized
	}
	remotes, err := s.repo.Remotes()
	if err != nil {
		return nil, fmt.Errorf("list remotes: %w", err)
	}
	names := make([]string, 0, len(remotes))
	for _, r := range remotes {
		names = append(names, r.Config().Name)
	}
	slices.SortFunc(names, func(a, b string) int {
		if a == gitlib.DefaultRemoteName || b == gitlib.DefaultRemoteName {
			if a == b {
				return 0
			}
			if a == gitlib.DefaultRemoteName {
				return -1
			}
			return 1
		}
		return strings.Compare(a, b)
	})
	return names, nil
}

func (s *Service) defaultRemoteLocked() (string, error) {
	names, err := s.remotesLocked()
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", ErrNoRemote
	}
	return names[0], nil
}

// Fetch updates the remote-tracking branches of the default remote.
func (s *Service) Fetch(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	remote, err := s.defaultRemoteLocked()
	if err != nil {
		return err
	}
	slog.Info("Fetching", slog.String("remote", remote))
	err = s.repo.FetchContext(ctx, &gitlib.FetchOptions{RemoteName: remote})
	if err != nil && !errors.Is(err, gitlib.NoErrAlreadyUpToDate) {
		return fmt.Errorf("fetch %s: %w", remote, err)
	}
	return nil
}

// Pull fetches the current branch from the default remote and fast-forwards
// the worktree.
func (s *Service) Pull(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	remote, err := s.defaultRemoteLocked()
	if err != nil {
		return err
	}
	head, err := s.currentBranchLocked()
	if err != nil {
		return err
	}
	wt, err := s.worktreeLocked()
	if err != nil {
		return err
	}
	slog.Info("Pulling", slog.String("remote", remote), slog.String("branch", head.Name().Short()))
	err = wt.PullContext(ctx, &gitlib.PullOptions{RemoteName: remote, ReferenceName: head.Name()})
	switch {
	case err == nil, errors.Is(err, gitlib.NoErrAlreadyUpToDate):
		return nil
	case errors.Is(err, gitlib.ErrNonFastForwardUpdate):
		return fmt.Errorf("pull %s: %w", remote, ErrNotFastForward)
	default:
		return fmt.Errorf("pull %s: %w", remote, err)
	}
}

// Push sends the current branch to the branch of the same name on the
// default remote.
func (s *Service) Push(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	remote, err := s.defaultRemoteLocked()
	if err != nil {
		return err
	}
	head, err := s.currentBranchLocked()
	if err != nil {
		return err
	}
	spec := config.RefSpec(fmt.Sprintf("%s:%s", head.Name(), head.Name()))
	slog.Info("Pushing", slog.String("remote", remote), slog.String("refspec", spec.String()))
	err = s.repo.PushContext(ctx, &gitlib.PushOptions{RemoteName: remote, RefSpecs: []config.RefSpec{spec}})
	if err != nil && !errors.Is(err, gitlib.NoErrAlreadyUpToDate) {
		return fmt.Errorf("push %s: %w", remote, err)
	}
	s.ensureUpstreamLocked(remote, head.Name())
	return nil
}

// ensureUpstreamLocked records remote as upstream of branch when the branch
// has none yet, like push --set-upstream.
func (s *Service) ensureUpstreamLocked(remote string, branch plumbing.ReferenceName) {
	cfg, err := s.repo.Config()
	if err != nil {
		return
	}
	if bc, ok := cfg.Branches[branch.Short()]; ok && bc.Remote != "" {
		return
	}
	err = s.repo.CreateBranch(&config.Branch{Name: branch.Short(), Remote: remote, Merge: branch})
	if err != nil && !errors.Is(err, gitlib.ErrBranchExists) {
		slog.Debug("set upstream failed", slog.String("branch", branch.Short()), slog.Any("error", err))
	}
}

// ValidateRemoteURL accepts the URL forms the client can talk to.
func ValidateRemoteURL(url string) error {
	url = strings.TrimSpace(url)
	for _, prefix := range []string{"https://", "http://", "ssh://", "git@"} {
		if strings.HasPrefix(url, prefix) && len(url) > len(prefix) {
			return nil
		}
	}
	return fmt.Errorf("%q: %w", url, ErrInvalidRemote)
}

// AddRemote configures a new remote after checking its URL.
func (s *Service) AddRemote(name, url string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("remote name not specified")
	}
	if err := ValidateRemoteURL(url); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.repo == nil {
		return ErrNotInitialized
	}
	_, err := s.repo.CreateRemote(&config.RemoteConfig{Name: name, URLs: []string{strings.TrimSpace(url)}})
	if err != nil {
		return fmt.Errorf("add remote %s: %w", name, err)
	}
	slog.Info("Remote added", slog.String("name", name))
	return nil
}
