// Package state persists what gitpilot remembers between runs.
package state

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	FileName   = "state.yaml"
	MaxRecent  = 10
	filePerm   = 0o600
	folderPerm = 0o755
)

type State struct {
	Recent     []string  `yaml:"recent"`
	LastOpened time.Time `yaml:"last_opened,omitempty"`
}

// Store reads and writes a State file. It is safe for concurrent use.
type Store struct {
	mu   sync.Mutex
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultStore keeps state.yaml in dir, normally config.Dir().
func DefaultStore(dir string) *Store {
	return NewStore(filepath.Join(dir, FileName))
}

func (s *Store) Path() string { return s.path }

// Load returns the stored state, or an empty one when the file is missing.
func (s *Store) Load() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) loadLocked() (State, error) {
	var st State
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return st, nil
	}
	if err != nil {
		return st, fmt.Errorf("read state: %w", err)
	}
	if err := yaml.Unmarshal(data, &st); err != nil {
		return State{}, fmt.Errorf("parse state %s: %w", s.path, err)
	}
	return st, nil
}

// Save writes st through a temporary file and a rename, so readers never see
// a partial file.
func (s *Store) Save(st State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(st)
}

func (s *Store) saveLocked(st State) error {
	data, err := yaml.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, folderPerm); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".state-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp state: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write state: %w", err)
	}
	if err := tmp.Chmod(filePerm); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close state: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace state: %w", err)
	}
	return nil
}

// RecordOpened moves repo to the front of the recent list and saves.
func (s *Store) RecordOpened(repo string, at time.Time) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.loadLocked()
	if err != nil {
		return st, err
	}
	st.Touch(repo, at)
	return st, s.saveLocked(st)
}

// Touch puts repo first in Recent, dropping duplicates and anything beyond
// MaxRecent.
func (st *State) Touch(repo string, at time.Time) {
	if repo == "" {
		return
	}
	st.Recent = slices.DeleteFunc(st.Recent, func(r string) bool { return r == repo })
	st.Recent = slices.Insert(st.Recent, 0, repo)
	if len(st.Recent) > MaxRecent {
		st.Recent = st.Recent[:MaxRecent]
	}
	st.LastOpened = at
}

// Forget removes repo from the recent list, e.g. after it failed to open.
func (st *State) Forget(repo string) {
	st.Recent = slices.DeleteFunc(st.Recent, func(r string) bool { return r == repo })
}
