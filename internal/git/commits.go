package git

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// CommitOptions narrows what Commits reads.
type CommitOptions struct {
	PerBranch      int
	IncludeRemotes bool
	ShowWIP        bool
}

// Commits returns the first perBranch commits of every local and remote
// branch, newest author date first, with a work-in-progress entry on top
// when the worktree is dirty.
func (s *Service) Commits(perBranch int) ([]Commit, error) {
	return s.CommitsWithOptions(CommitOptions{PerBranch: perBranch, IncludeRemotes: true, ShowWIP: true})
}

func (s *Service) CommitsWithOptions(opts CommitOptions) ([]Commit, error) {
	if opts.PerBranch <= 0 {
		opts.PerBranch = DefaultPerBranch
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.repo == nil {
		return nil, ErrNotInitialized
	}

	tips, err := s.branchTipsLocked(opts.IncludeRemotes)
	if err != nil {
		return nil, err
	}
	tipNames := map[plumbing.Hash]string{}
	for _, t := range tips {
		if _, ok := tipNames[t.hash]; !ok {
			tipNames[t.hash] = t.name
		}
	}

	seen := map[plumbing.Hash]struct{}{}
	var commits []Commit
	for _, t := range tips {
		iter, err := s.repo.Log(&gitlib.LogOptions{From: t.hash, Order: gitlib.LogOrderCommitterTime})
		if err != nil {
			return nil, fmt.Errorf("read commits of %s: %w", t.name, err)
		}
		for range opts.PerBranch {
			c, err := iter.Next()
			if err != nil {
				if !isEOF(err) {
					iter.Close()
					return nil, fmt.Errorf("iterate commits of %s: %w", t.name, err)
				}
				break
			}
			if _, ok := seen[c.Hash]; ok {
				continue
			}
			seen[c.Hash] = struct{}{}
			commits = append(commits, newCommit(c, tipNames[c.Hash]))
		}
		iter.Close()
	}
	slices.SortStableFunc(commits, func(a, b Commit) int {
		return b.When.Compare(a.When)
	})

	if opts.ShowWIP {
		wip, ok, err := s.workInProgressLocked()
		if err != nil {
			return nil, err
		}
		if ok {
			commits = append([]Commit{wip}, commits...)
		}
	}
	slog.Debug("Commits loaded",
		slog.Int("branches", len(tips)),
		slog.Int("commits", len(commits)),
		slog.Int("per_branch", opts.PerBranch),
	)
	return commits, nil
}

type branchTip struct {
	name string
	hash plumbing.Hash
}

// branchTipsLocked orders tips the way commits are attributed to branches:
// current branch, other local branches, then remote branches, by name.
func (s *Service) branchTipsLocked(includeRemotes bool) ([]branchTip, error) {
	refs, err := s.repo.References()
	if err != nil {
		return nil, fmt.Errorf("list references: %w", err)
	}
	defer refs.Close()
	head, _ := s.repo.Head()

	var current, local, remote []branchTip
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() != plumbing.HashReference {
			return nil
		}
		name := ref.Name()
		tip := branchTip{name: name.Short(), hash: ref.Hash()}
		switch {
		case name.IsBranch() && head != nil && head.Name() == name:
			current = append(current, tip)
		case name.IsBranch():
			local = append(local, tip)
		case name.IsRemote() && includeRemotes && !isRemoteHead(tip.name):
			remote = append(remote, tip)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list references: %w", err)
	}
	byName := func(a, b branchTip) int { return strings.Compare(a.name, b.name) }
	slices.SortFunc(local, byName)
	slices.SortFunc(remote, byName)
	tips := slices.Concat(current, local, remote)
	if len(tips) == 0 && head != nil {
		// Detached HEAD in a repository without branches.
		tips = append(tips, branchTip{name: "HEAD", hash: head.Hash()})
	}
	return tips, nil
}

func (s *Service) workInProgressLocked() (Commit, bool, error) {
	changes, err := s.localChangesLocked()
	if err != nil {
		if errors.Is(err, gitlib.ErrIsBareRepository) {
			return Commit{}, false, nil
		}
		return Commit{}, false, err
	}
	if !changes.Dirty() {
		return Commit{}, false, nil
	}
	wip := Commit{
		SHA:              WorkInProgressSHA,
		Summary:          "Work In Progress",
		Message:          "Work In Progress",
		When:             time.Now(),
		IsWorkInProgress: true,
		ChangedFiles:     len(changes.Files),
	}
	if head, err := s.repo.Head(); err == nil {
		wip.ParentSHAs = []string{head.Hash().String()}
		if head.Name().IsBranch() {
			wip.BranchName = head.Name().Short()
		}
	} else {
		wip.BranchName = s.unbornBranchLocked()
	}
	return wip, true, nil
}

func newCommit(c *object.Commit, branch string) Commit {
	parents := make([]string, 0, len(c.ParentHashes))
	for _, p := range c.ParentHashes {
		parents = append(parents, p.String())
	}
	return Commit{
		SHA:         c.Hash.String(),
		ParentSHAs:  parents,
		Summary:     summaryLine(c.Message),
		Message:     c.Message,
		Author:      c.Author.Name,
		AuthorEmail: c.Author.Email,
		When:        c.Author.When,
		BranchName:  branch,
	}
}

func isRemoteHead(short string) bool {
	return strings.HasSuffix(short, "/HEAD")
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF)
}
