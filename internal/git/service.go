package git

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-git/go-billy/v5"
	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// DefaultPerBranch is how many commits of every branch the commit list reads.
const DefaultPerBranch = 50

type Service struct {
	// mu serializes repository access; go-git storers and worktrees are not
	// safe for concurrent mutation.
	mu sync.Mutex

	repo *gitlib.Repository
	fs   billy.Filesystem
	path string
}

func Open(repoPath string) (*Service, error) {
	abs, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, err
	}
	repo, err := gitlib.PlainOpenWithOptions(abs, &gitlib.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	svc := NewWithRepository(repo, nil)
	if svc.fs != nil && svc.fs.Root() != "" {
		svc.path = svc.fs.Root()
	} else {
		svc.path = abs
	}
	slog.Debug("Repository opened", slog.String("path", svc.path))
	return svc, nil
}

// NewWithRepository wraps an already opened repository. fs is the worktree
// filesystem; when nil it is taken from the repository worktree, if any.
func NewWithRepository(repo *gitlib.Repository, fs billy.Filesystem) *Service {
	if fs == nil && repo != nil {
		if wt, err := repo.Worktree(); err == nil {
			fs = wt.Filesystem
		}
	}
	return &Service{repo: repo, fs: fs}
}

func (s *Service) RepoPath() string {
	return s.path
}

// HeadName returns the checked out branch, or "HEAD" when detached or unborn.
func (s *Service) HeadName() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.headNameLocked()
}

func (s *Service) headNameLocked() (string, error) {
	if s.repo == nil {
		return "", ErrNotInitialized
	}
	ref, err := s.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return s.unbornBranchLocked(), nil
		}
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	return refName(ref), nil
}

// unbornBranchLocked reads the branch HEAD points to before the first commit.
func (s *Service) unbornBranchLocked() string {
	ref, err := s.repo.Storer.Reference(plumbing.HEAD)
	if err != nil || ref.Type() != plumbing.SymbolicReference {
		return "HEAD"
	}
	return ref.Target().Short()
}

func (s *Service) currentBranchLocked() (*plumbing.Reference, error) {
	ref, err := s.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, ErrDetachedHead
		}
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}
	if !ref.Name().IsBranch() {
		return nil, ErrDetachedHead
	}
	return ref, nil
}

func (s *Service) headCommitLocked() (*object.Commit, error) {
	ref, err := s.repo.Head()
	if err != nil {
		return nil, err
	}
	return s.repo.CommitObject(ref.Hash())
}

func (s *Service) worktreeLocked() (*gitlib.Worktree, error) {
	if s.repo == nil {
		return nil, ErrNotInitialized
	}
	wt, err := s.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("open worktree: %w", err)
	}
	return wt, nil
}

func refName(ref *plumbing.Reference) string {
	if ref == nil {
		return ""
	}
	if ref.Name().IsBranch() {
		return ref.Name().Short()
	}
	return "HEAD"
}

func summaryLine(message string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(message), "\n")
	return strings.TrimSpace(line)
}
