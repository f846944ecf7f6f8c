// Package snapshot reads everything the main window shows in one refresh and
// lays out the commit graph for it.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gitpilot-go/gitpilot/internal/git"
	"github.com/gitpilot-go/gitpilot/internal/graph"
	"github.com/google/uuid"
)

// Source is the subset of *git.Service a refresh reads.
type Source interface {
	HeadName() (string, error)
	LocalBranches() ([]git.Branch, error)
	RemoteBranches() ([]git.Branch, error)
	CommitsWithOptions(git.CommitOptions) ([]git.Commit, error)
	LocalChanges() (git.LocalChanges, error)
}

type Options struct {
	Commits git.CommitOptions
	Engine  graph.Engine
	// Palette colors branches; nil leaves every lane on the fallback colors.
	Palette *graph.BranchPalette
}

// Snapshot is the repository state of one refresh. Commits and Graph.Rows
// are index aligned.
type Snapshot struct {
	ID         string
	Generation uint64
	Head       string
	Local      []git.Branch
	Remote     []git.Branch
	Commits    []git.Commit
	Changes    git.LocalChanges
	Graph      graph.Result
	LoadedAt   time.Time
	Took       time.Duration
}

// Loader runs refreshes one at a time.
type Loader struct {
	mu   sync.Mutex
	src  Source
	opts Options
	gen  atomic.Uint64
	now  func() time.Time
}

func NewLoader(src Source, opts Options) *Loader {
	return &Loader{src: src, opts: opts, now: time.Now}
}

// SetOptions applies to the next Load.
func (l *Loader) SetOptions(opts Options) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.opts = opts
}

func (l *Loader) Options() Options {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.opts
}

// Latest is the generation of the most recently started Load. A caller
// holding an older snapshot knows it has been superseded.
func (l *Loader) Latest() uint64 {
	return l.gen.Load()
}

// Load reads branches, commits and local changes concurrently, waits for all
// of them and then runs a single layout pass. Concurrent calls are
// serialised; each one reads fresh data.
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	gen := l.gen.Add(1)
	l.mu.Lock()
	defer l.mu.Unlock()

	snap := &Snapshot{ID: uuid.NewString(), Generation: gen, LoadedAt: l.now()}
	log := slog.With(slog.String("refresh", snap.ID), slog.Uint64("generation", gen))
	log.Debug("Refresh started")
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		wg   sync.WaitGroup
		errs [5]error
	)
	run := func(i int, name string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				errs[i] = fmt.Errorf("%s: %w", name, err)
			}
		}()
	}
	run(0, "head", func() (err error) {
		snap.Head, err = l.src.HeadName()
		return err
	})
	run(1, "local branches", func() (err error) {
		snap.Local, err = l.src.LocalBranches()
		return err
	})
	run(2, "remote branches", func() (err error) {
		if !l.opts.Commits.IncludeRemotes {
			return nil
		}
		snap.Remote, err = l.src.RemoteBranches()
		return err
	})
	run(3, "commits", func() (err error) {
		snap.Commits, err = l.src.CommitsWithOptions(l.opts.Commits)
		return err
	})
	run(4, "local changes", func() (err error) {
		snap.Changes, err = l.src.LocalChanges()
		return err
	})
	wg.Wait()
	if err := errors.Join(errs[:]...); err != nil {
		log.Error("Refresh failed", slog.Any("error", err))
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if l.opts.Palette != nil {
		l.opts.Palette.Assign(branchNames(snap)...)
	}
	snap.Graph = l.opts.Engine.Run(GraphCommits(snap.Commits), resolver(l.opts.Palette))
	snap.Took = l.now().Sub(snap.LoadedAt)
	log.Info("Refresh done",
		slog.Int("commits", len(snap.Commits)),
		slog.Int("lanes", snap.Graph.MaxLanes),
		slog.Int("unresolved", len(snap.Graph.Unresolved)),
		slog.Duration("took", snap.Took),
	)
	return snap, nil
}

// Superseded reports whether a newer Load started after snap.
func (l *Loader) Superseded(snap *Snapshot) bool {
	return snap == nil || snap.Generation < l.gen.Load()
}

// GraphCommits converts the commit list into layout input.
func GraphCommits(commits []git.Commit) []graph.Commit {
	out := make([]graph.Commit, len(commits))
	for i, c := range commits {
		out[i] = graph.Commit{SHA: c.SHA, ParentSHAs: c.ParentSHAs, BranchName: c.BranchName}
	}
	return out
}

// branchNames lists every branch name sorted, so a name gets the same palette
// slot whichever branch is checked out.
func branchNames(snap *Snapshot) []string {
	names := make([]string, 0, len(snap.Local)+len(snap.Remote))
	for _, b := range snap.Local {
		names = append(names, b.Name)
	}
	for _, b := range snap.Remote {
		names = append(names, b.Name)
	}
	slices.Sort(names)
	return names
}

func resolver(p *graph.BranchPalette) graph.ColorResolver {
	if p == nil {
		return nil
	}
	return p
}
