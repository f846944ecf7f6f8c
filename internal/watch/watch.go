// Package watch turns file system activity in a repository, plus a polling
// timer, into debounced refresh requests.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gitpilot-go/gitpilot/internal/debounce"
)

const (
	DefaultDebounce     = 350 * time.Millisecond
	DefaultPollInterval = 30 * time.Second
)

// Reason tells why a refresh was requested.
type Reason string

const (
	ReasonFilesystem Reason = "filesystem"
	ReasonPoll       Reason = "poll"
)

type Options struct {
	// Debounce is the quiet period after the last file event. Zero means
	// DefaultDebounce.
	Debounce time.Duration
	// PollInterval triggers a refresh even without events. Zero means
	// DefaultPollInterval, negative disables polling.
	PollInterval time.Duration
	// NoNotify disables fsnotify and leaves only the polling timer.
	NoNotify bool
}

// Watcher calls onChange from its own goroutines; callers that touch UI
// state must hop back to their thread.
type Watcher struct {
	root     string
	opts     Options
	onChange func(Reason)

	mu       sync.Mutex
	notifier *fsnotify.Watcher
	debounce *debounce.Debouncer
	running  bool
	quit     chan struct{}
	done     chan struct{}
}

func New(root string, opts Options, onChange func(Reason)) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.PollInterval == 0 {
		opts.PollInterval = DefaultPollInterval
	}
	return &Watcher{root: root, opts: opts, onChange: onChange}
}

// Start begins watching until ctx is cancelled or Close is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}
	if !w.opts.NoNotify {
		notifier, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("fsnotify: %w", err)
		}
		for _, path := range Paths(w.root) {
			slog.Debug("Adding path to FS watcher", slog.String("path", path))
			if err := notifier.Add(path); err != nil {
				err = errors.Join(err, notifier.Close())
				return fmt.Errorf("watch %s: %w", path, err)
			}
		}
		w.notifier = notifier
	}
	debounce.Ensure(&w.debounce, w.opts.Debounce, func() { w.onChange(ReasonFilesystem) })
	w.running = true
	w.quit = make(chan struct{})
	w.done = make(chan struct{})
	go w.loop(ctx, w.notifier, w.quit, w.done)
	return nil
}

// Close stops the watcher and waits for its goroutine.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	err := w.stopLocked()
	done := w.done
	w.mu.Unlock()
	<-done
	return err
}

func (w *Watcher) stopLocked() error {
	w.running = false
	close(w.quit)
	if w.debounce != nil {
		w.debounce.Stop()
	}
	if w.notifier == nil {
		return nil
	}
	err := w.notifier.Close()
	w.notifier = nil
	return err
}

func (w *Watcher) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Watcher) loop(ctx context.Context, notifier *fsnotify.Watcher, quit, done chan struct{}) {
	defer close(done)

	var events <-chan fsnotify.Event
	var errs <-chan error
	if notifier != nil {
		events, errs = notifier.Events, notifier.Errors
	}
	var tick <-chan time.Time
	if w.opts.PollInterval > 0 {
		ticker := time.NewTicker(w.opts.PollInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-quit:
			return
		case <-ctx.Done():
			w.mu.Lock()
			if w.running {
				if err := w.stopLocked(); err != nil {
					slog.Error("watcher close", slog.Any("error", err))
				}
			}
			w.mu.Unlock()
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if !Relevant(ev) {
				continue
			}
			slog.Debug("fsnotify event", slog.String("op", ev.Op.String()), slog.String("path", ev.Name))
			w.schedule()
		case err, ok := <-errs:
			if !ok {
				return
			}
			slog.Error("fsnotify error", slog.Any("error", err))
		case <-tick:
			slog.Debug("Poll refresh")
			w.onChange(ReasonPoll)
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running || w.debounce == nil {
		return
	}
	w.debounce.Trigger()
}

// Paths returns the directories to watch for root: its .git directory and
// the refs below it when present, otherwise root itself.
func Paths(root string) []string {
	if root == "" {
		return nil
	}
	gitDir := filepath.Join(root, ".git")
	info, err := os.Stat(gitDir)
	if err != nil || !info.IsDir() {
		return []string{root}
	}
	paths := []string{root, gitDir}
	for _, sub := range []string{"refs/heads", "refs/remotes"} {
		dir := filepath.Join(gitDir, filepath.FromSlash(sub))
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			paths = append(paths, dir)
		}
	}
	slices.Sort(paths)
	return paths
}

// Relevant reports whether ev should trigger a refresh. Git lock files and
// IPC sockets churn during every git command and are ignored.
func Relevant(ev fsnotify.Event) bool {
	if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) &&
		!ev.Op.Has(fsnotify.Remove) && !ev.Op.Has(fsnotify.Rename) {
		return false
	}
	return !IgnoredPath(ev.Name)
}

func IgnoredPath(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".lock", ".ipc":
		return true
	}
	return false
}
