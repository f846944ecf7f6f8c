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
	"github.com/go-git/go-git/v5/plumbing/object"
)

// LocalBranches lists local branches, current branch first and the rest by
// name, with ahead/behind counts against their configured upstream.
func (s *Service) LocalBranches() ([]Branch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.repo == nil {
		return nil, ErrNotInitialized
	}
	head, _ := s.repo.Head()
	cfg, err := s.repo.Config()
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	iter, err := s.repo.Branches()
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	var branches []Branch
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		b := Branch{
			Name:      ref.Name().Short(),
			Hash:      ref.Hash().String(),
			IsCurrent: head != nil && head.Name() == ref.Name(),
		}
		if upstream := upstreamRef(cfg, b.Name); upstream != "" {
			if up, err := s.repo.Reference(upstream, true); err == nil {
				b.Upstream = upstream.Short()
				b.Ahead, b.Behind, err = s.aheadBehindLocked(ref.Hash(), up.Hash())
				if err != nil {
					slog.Debug("ahead/behind failed", slog.String("branch", b.Name), slog.Any("error", err))
				}
			}
		}
		branches = append(branches, b)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	sortBranches(branches)
	return branches, nil
}

// RemoteBranches lists remote-tracking branches by name, skipping the
// symbolic <remote>/HEAD entries.
func (s *Service) RemoteBranches() ([]Branch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.repo == nil {
		return nil, ErrNotInitialized
	}
	refs, err := s.repo.References()
	if err != nil {
		return nil, fmt.Errorf("list references: %w", err)
	}
	defer refs.Close()
	var branches []Branch
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() != plumbing.HashReference || !ref.Name().IsRemote() {
			return nil
		}
		short := ref.Name().Short()
		if isRemoteHead(short) {
			return nil
		}
		branches = append(branches, Branch{Name: short, Hash: ref.Hash().String(), IsRemote: true})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list references: %w", err)
	}
	sortBranches(branches)
	return branches, nil
}

func sortBranches(branches []Branch) {
	slices.SortStableFunc(branches, func(a, b Branch) int {
		if a.IsCurrent != b.IsCurrent {
			if a.IsCurrent {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Name, b.Name)
	})
}

func upstreamRef(cfg *config.Config, branch string) plumbing.ReferenceName {
	bc, ok := cfg.Branches[branch]
	if !ok || bc.Remote == "" || bc.Merge == "" {
		return ""
	}
	if bc.Remote == "." {
		return bc.Merge
	}
	return plumbing.NewRemoteReferenceName(bc.Remote, bc.Merge.Short())
}

// aheadBehindLocked counts commits reachable from local but not upstream and
// the reverse. Only the history above the merge bases is walked.
func (s *Service) aheadBehindLocked(local, upstream plumbing.Hash) (int, int, error) {
	if local == upstream {
		return 0, 0, nil
	}
	lc, err := s.repo.CommitObject(local)
	if err != nil {
		return 0, 0, fmt.Errorf("read %s: %w", local, err)
	}
	uc, err := s.repo.CommitObject(upstream)
	if err != nil {
		return 0, 0, fmt.Errorf("read %s: %w", upstream, err)
	}
	bases, err := lc.MergeBase(uc)
	if err != nil {
		return 0, 0, fmt.Errorf("merge base: %w", err)
	}
	ahead, err := countAbove(lc, bases)
	if err != nil {
		return 0, 0, err
	}
	behind, err := countAbove(uc, bases)
	if err != nil {
		return 0, 0, err
	}
	return ahead, behind, nil
}

// countAbove counts the commits reachable from tip that are not reachable
// from any of bases. Commits no newer than the newest base are checked
// against the bases before being counted, so older history merged in beside
// a base is not mistaken for new work.
func countAbove(tip *object.Commit, bases []*object.Commit) (int, error) {
	stop := make(map[plumbing.Hash]struct{}, len(bases))
	var newest time.Time
	for _, b := range bases {
		stop[b.Hash] = struct{}{}
		if when := b.Committer.When; when.After(newest) {
			newest = when
		}
	}
	seen := map[plumbing.Hash]struct{}{}
	queue := []*object.Commit{tip}
	count := 0
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if _, ok := seen[c.Hash]; ok {
			continue
		}
		seen[c.Hash] = struct{}{}
		if _, ok := stop[c.Hash]; ok {
			continue
		}
		if len(bases) > 0 && !c.Committer.When.After(newest) {
			below, err := belowAny(c, bases)
			if err != nil {
				return 0, err
			}
			if below {
				continue
			}
		}
		count++
		err := c.Parents().ForEach(func(p *object.Commit) error {
			queue = append(queue, p)
			return nil
		})
		if err != nil {
			return 0, fmt.Errorf("read parents of %s: %w", c.Hash, err)
		}
	}
	return count, nil
}

func belowAny(c *object.Commit, bases []*object.Commit) (bool, error) {
	for _, b := range bases {
		ok, err := c.IsAncestor(b)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// Checkout switches the worktree to a local branch.
func (s *Service) Checkout(branch string) error {
	branch = strings.TrimSpace(branch)
	if branch == "" {
		return fmt.Errorf("branch not specified")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	wt, err := s.worktreeLocked()
	if err != nil {
		return err
	}
	name := plumbing.NewBranchReferenceName(branch)
	if _, err := s.repo.Reference(name, false); err != nil {
		return fmt.Errorf("checkout %s: %w", branch, ErrBranchNotFound)
	}
	// go-git moves HEAD before it notices unstaged changes, so refuse early.
	dirty, err := trackedChanges(wt)
	if err != nil {
		return err
	}
	if dirty {
		return fmt.Errorf("checkout %s: %w", branch, ErrDirtyWorktree)
	}
	if err := wt.Checkout(&gitlib.CheckoutOptions{Branch: name}); err != nil {
		return fmt.Errorf("checkout %s: %w", branch, err)
	}
	slog.Info("Checked out branch", slog.String("branch", branch))
	return nil
}

// CreateBranch creates a local branch at HEAD without switching to it.
func (s *Service) CreateBranch(name string) error {
	name = strings.TrimSpace(name)
	ref := plumbing.NewBranchReferenceName(name)
	if err := ref.Validate(); err != nil {
		return fmt.Errorf("branch name %q: %w", name, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.repo == nil {
		return ErrNotInitialized
	}
	if _, err := s.repo.Reference(ref, false); err == nil {
		return fmt.Errorf("create %s: %w", name, ErrBranchExists)
	}
	head, err := s.repo.Head()
	if err != nil {
		return fmt.Errorf("resolve HEAD: %w", err)
	}
	if err := s.repo.Storer.SetReference(plumbing.NewHashReference(ref, head.Hash())); err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	slog.Info("Created branch", slog.String("branch", name), slog.String("at", head.Hash().String()))
	return nil
}

// CreateBranchFromRemote creates a local branch tracking remoteBranch
// (origin/feature becomes feature) and returns the local name.
func (s *Service) CreateBranchFromRemote(remoteBranch string) (string, error) {
	remoteName, local, ok := strings.Cut(strings.TrimSpace(remoteBranch), "/")
	if !ok || remoteName == "" || local == "" {
		return "", fmt.Errorf("invalid remote branch %q", remoteBranch)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.repo == nil {
		return "", ErrNotInitialized
	}
	remoteRef, err := s.repo.Reference(plumbing.NewRemoteReferenceName(remoteName, local), true)
	if err != nil {
		return "", fmt.Errorf("%s: %w", remoteBranch, ErrBranchNotFound)
	}
	localRef := plumbing.NewBranchReferenceName(local)
	if _, err := s.repo.Reference(localRef, false); err == nil {
		return "", fmt.Errorf("create %s: %w", local, ErrBranchExists)
	}
	if err := s.repo.Storer.SetReference(plumbing.NewHashReference(localRef, remoteRef.Hash())); err != nil {
		return "", fmt.Errorf("create %s: %w", local, err)
	}
	err = s.repo.CreateBranch(&config.Branch{Name: local, Remote: remoteName, Merge: localRef})
	if err != nil && !errors.Is(err, gitlib.ErrBranchExists) {
		return "", fmt.Errorf("track %s: %w", remoteBranch, err)
	}
	slog.Info("Created tracking branch", slog.String("branch", local), slog.String("upstream", remoteBranch))
	return local, nil
}

// DeleteBranch removes a local branch and its config section.
func (s *Service) DeleteBranch(name string) error {
	name = strings.TrimSpace(name)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.repo == nil {
		return ErrNotInitialized
	}
	ref := plumbing.NewBranchReferenceName(name)
	if _, err := s.repo.Reference(ref, false); err != nil {
		return fmt.Errorf("delete %s: %w", name, ErrBranchNotFound)
	}
	if head, err := s.repo.Head(); err == nil && head.Name() == ref {
		return fmt.Errorf("delete %s: %w", name, ErrCurrentBranch)
	}
	if err := s.repo.Storer.RemoveReference(ref); err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	if err := s.repo.DeleteBranch(name); err != nil && !errors.Is(err, gitlib.ErrBranchNotFound) {
		return fmt.Errorf("delete %s config: %w", name, err)
	}
	slog.Info("Deleted branch", slog.String("branch", name))
	return nil
}

// Merge fast-forwards the current branch to branch, which may be local or
// remote-tracking. Diverged histories are refused with ErrNotFastForward.
func (s *Service) Merge(branch string) error {
	branch = strings.TrimSpace(branch)
	s.mu.Lock()
	defer s.mu.Unlock()
	wt, err := s.worktreeLocked()
	if err != nil {
		return err
	}
	head, err := s.currentBranchLocked()
	if err != nil {
		return err
	}
	target, err := s.resolveBranchLocked(branch)
	if err != nil {
		return err
	}
	if target.Hash() == head.Hash() {
		return nil
	}
	dirty, err := trackedChanges(wt)
	if err != nil {
		return err
	}
	if dirty {
		return fmt.Errorf("merge %s: %w", branch, ErrDirtyWorktree)
	}
	headCommit, err := s.repo.CommitObject(head.Hash())
	if err != nil {
		return fmt.Errorf("read HEAD commit: %w", err)
	}
	targetCommit, err := s.repo.CommitObject(target.Hash())
	if err != nil {
		return fmt.Errorf("read %s: %w", branch, err)
	}
	bases, err := targetCommit.MergeBase(headCommit)
	if err != nil {
		return fmt.Errorf("merge base: %w", err)
	}
	switch {
	case len(bases) > 0 && bases[0].Hash == targetCommit.Hash:
		slog.Debug("Merge already up to date", slog.String("branch", branch))
		return nil
	case len(bases) > 0 && bases[0].Hash == headCommit.Hash:
		if err := wt.Reset(&gitlib.ResetOptions{Commit: targetCommit.Hash, Mode: gitlib.HardReset}); err != nil {
			return fmt.Errorf("fast-forward to %s: %w", branch, err)
		}
		slog.Info("Fast-forwarded", slog.String("branch", head.Name().Short()), slog.String("to", branch))
		return nil
	default:
		return fmt.Errorf("merge %s: %w", branch, ErrNotFastForward)
	}
}

func (s *Service) resolveBranchLocked(branch string) (*plumbing.Reference, error) {
	for _, name := range []plumbing.ReferenceName{
		plumbing.NewBranchReferenceName(branch),
		plumbing.ReferenceName("refs/remotes/" + branch),
	} {
		if ref, err := s.repo.Reference(name, true); err == nil {
			return ref, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", branch, ErrBranchNotFound)
}

// trackedChanges reports staged or unstaged changes to tracked files.
func trackedChanges(wt *gitlib.Worktree) (bool, error) {
	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("status: %w", err)
	}
	for _, st := range status {
		if st.Worktree == gitlib.Untracked {
			continue
		}
		if st.Staging != gitlib.Unmodified || st.Worktree != gitlib.Unmodified {
			return true, nil
		}
	}
	return false, nil
}
