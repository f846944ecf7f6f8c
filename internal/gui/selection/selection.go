// Package selection remembers the selected commit across refreshes, which
// replace the commit list and may move the commit to another row.
package selection

import "sync/atomic"

type selectionSnapshot struct {
	sha string
	idx int
}

// State is safe to read from the goroutines loading commit details.
type State struct {
	snapshot atomic.Pointer[selectionSnapshot]
}

func (s *State) Clear() {
	s.snapshot.Store(nil)
}

// Set records the commit sha shown at row idx.
func (s *State) Set(sha string, idx int) {
	if sha == "" || idx < 0 {
		s.Clear()
		return
	}
	s.snapshot.Store(&selectionSnapshot{sha: sha, idx: idx})
}

func (s *State) SHA() string {
	if snap := s.snapshot.Load(); snap != nil {
		return snap.sha
	}
	return ""
}

// Index finds the selected commit in shas, trying the remembered row first.
// It returns -1 when nothing is selected or the commit is gone.
func (s *State) Index(shas []string) int {
	snap := s.snapshot.Load()
	if snap == nil {
		return -1
	}
	if snap.idx < len(shas) && shas[snap.idx] == snap.sha {
		return snap.idx
	}
	for i, sha := range shas {
		if sha == snap.sha {
			return i
		}
	}
	return -1
}
