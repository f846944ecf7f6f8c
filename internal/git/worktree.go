package git

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	gitindex "github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// LocalChanges reports the status of every changed or untracked file, sorted
// by path.
func (s *Service) LocalChanges() (LocalChanges, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.localChangesLocked()
}

func (s *Service) localChangesLocked() (LocalChanges, error) {
	var res LocalChanges
	wt, err := s.worktreeLocked()
	if err != nil {
		return res, err
	}
	status, err := wt.Status()
	if err != nil {
		return res, fmt.Errorf("status: %w", err)
	}
	for path, st := range status {
		if st.Staging == gitlib.Unmodified && st.Worktree == gitlib.Unmodified {
			continue
		}
		fs := FileStatus{Path: path, Staging: st.Staging, Worktree: st.Worktree}
		if fs.WorktreeChange() {
			res.HasWorktree = true
		}
		if fs.StagedChange() {
			res.HasStaged = true
		}
		res.Files = append(res.Files, fs)
	}
	slices.SortFunc(res.Files, func(a, b FileStatus) int { return strings.Compare(a.Path, b.Path) })
	return res, nil
}

// Stage adds the current worktree content of paths to the index. Deleted
// files are removed from the index.
func (s *Service) Stage(paths []string) error {
	paths = cleanPaths(paths)
	if len(paths) == 0 {
		return ErrNoPathsSelected
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	wt, err := s.worktreeLocked()
	if err != nil {
		return err
	}
	for _, p := range paths {
		if _, err := wt.Add(p); err != nil {
			return fmt.Errorf("stage %s: %w", p, err)
		}
	}
	slog.Debug("Staged files", slog.Int("count", len(paths)))
	return nil
}

// Unstage resets the index entries of paths to HEAD, keeping the worktree.
func (s *Service) Unstage(paths []string) error {
	paths = cleanPaths(paths)
	if len(paths) == 0 {
		return ErrNoPathsSelected
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	wt, err := s.worktreeLocked()
	if err != nil {
		return err
	}
	if _, err := s.repo.Head(); errors.Is(err, plumbing.ErrReferenceNotFound) {
		return s.dropFromIndexLocked(paths)
	}
	if err := wt.Restore(&gitlib.RestoreOptions{Staged: true, Files: paths}); err != nil {
		return fmt.Errorf("unstage: %w", err)
	}
	slog.Debug("Unstaged files", slog.Int("count", len(paths)))
	return nil
}

// dropFromIndexLocked unstages paths before the first commit, when there is
// no HEAD tree to restore from.
func (s *Service) dropFromIndexLocked(paths []string) error {
	idx, err := s.repo.Storer.Index()
	if err != nil {
		return fmt.Errorf("read index: %w", err)
	}
	idx.Entries = slices.DeleteFunc(idx.Entries, func(e *gitindex.Entry) bool {
		return slices.Contains(paths, e.Name)
	})
	if err := s.repo.Storer.SetIndex(idx); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	return nil
}

// Discard restores index and worktree of paths from HEAD. Untracked files are
// left alone.
func (s *Service) Discard(paths []string) error {
	paths = cleanPaths(paths)
	if len(paths) == 0 {
		return ErrNoPathsSelected
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	wt, err := s.worktreeLocked()
	if err != nil {
		return err
	}
	status, err := wt.Status()
	if err != nil {
		return fmt.Errorf("status: %w", err)
	}
	tracked := slices.DeleteFunc(slices.Clone(paths), func(p string) bool {
		st, ok := status[p]
		return ok && st.Worktree == gitlib.Untracked
	})
	if len(tracked) == 0 {
		return nil
	}
	err = wt.Restore(&gitlib.RestoreOptions{Staged: true, Worktree: true, Files: tracked})
	if err != nil {
		return fmt.Errorf("discard: %w", err)
	}
	slog.Info("Discarded changes", slog.Int("count", len(tracked)))
	return nil
}

// NewCommitRequest validates the user input of the commit form.
func NewCommitRequest(message, description, author, email string) (CommitRequest, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return CommitRequest{}, ErrEmptyMessage
	}
	return CommitRequest{
		Message:     message,
		Description: strings.TrimSpace(description),
		Author:      strings.TrimSpace(author),
		Email:       strings.TrimSpace(email),
	}, nil
}

// Commit records the staged changes. Author and email fall back to the
// user.name/user.email of the repository or global git config.
func (s *Service) Commit(req CommitRequest) (string, error) {
	if strings.TrimSpace(req.Message) == "" {
		return "", ErrEmptyMessage
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	changes, err := s.localChangesLocked()
	if err != nil {
		return "", err
	}
	if !changes.HasStaged {
		return "", ErrNothingStaged
	}
	wt, err := s.worktreeLocked()
	if err != nil {
		return "", err
	}
	sig := s.signatureLocked(req)
	hash, err := wt.Commit(req.FullMessage(), &gitlib.CommitOptions{Author: sig, Committer: sig})
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	slog.Info("Created commit", slog.String("hash", hash.String()), slog.String("author", sig.Name))
	return hash.String(), nil
}

func (s *Service) signatureLocked(req CommitRequest) *object.Signature {
	sig := &object.Signature{Name: req.Author, Email: req.Email, When: time.Now()}
	if sig.Name != "" && sig.Email != "" {
		return sig
	}
	cfg, err := s.repo.ConfigScoped(config.GlobalScope)
	if err != nil {
		return sig
	}
	if sig.Name == "" {
		sig.Name = cfg.User.Name
	}
	if sig.Email == "" {
		sig.Email = cfg.User.Email
	}
	return sig
}

func cleanPaths(paths []string) []string {
	var out []string
	for _, p := range paths {
		p = strings.TrimPrefix(strings.TrimSpace(p), "./")
		if p == "" || slices.Contains(out, p) {
			continue
		}
		out = append(out, p)
	}
	return out
}
