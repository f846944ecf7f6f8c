package git

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	gitlib "github.com/go-git/go-git/v5"
	gitindex "github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/pmezard/go-difflib/difflib"
)

// localSources reads the three versions of a file that work in progress is
// made of: HEAD, the index and the worktree.
type localSources struct {
	repo *gitlib.Repository
	head *object.Tree
	idx  *gitindex.Index
	fs   billy.Filesystem
}

func (s *Service) localSourcesLocked() (*localSources, error) {
	src := &localSources{repo: s.repo, fs: s.fs}
	if c, err := s.headCommitLocked(); err == nil {
		if src.head, err = c.Tree(); err != nil {
			return nil, fmt.Errorf("read HEAD tree: %w", err)
		}
	} else if !isMissing(err) {
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}
	idx, err := s.repo.Storer.Index()
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	src.idx = idx
	return src, nil
}

// fileChange diffs HEAD against the index for staged changes and the index
// against the worktree otherwise.
func (src *localSources) fileChange(st FileStatus, staged bool) (FileChange, error) {
	fc := FileChange{Path: st.Path, Staged: staged}
	code := st.Worktree
	if staged {
		code = st.Staging
	}
	fc.ChangeType = changeTypeFromStatus(code)

	var from, to []byte
	var fromOK, toOK bool
	var err error
	if staged {
		if from, fromOK, err = src.fromTree(st.Path); err != nil {
			return fc, err
		}
		if to, toOK, err = src.fromIndex(st.Path); err != nil {
			return fc, err
		}
	} else {
		if from, fromOK, err = src.fromIndex(st.Path); err != nil {
			return fc, err
		}
		if to, toOK, err = src.fromWorktree(st.Path); err != nil {
			return fc, err
		}
	}
	if !fromOK && !toOK {
		return fc, nil
	}
	fc.Diff, fc.Additions, fc.Deletions, err = unifiedDiff(st.Path, from, to)
	if err != nil {
		return fc, fmt.Errorf("diff %s: %w", st.Path, err)
	}
	return fc, nil
}

func (src *localSources) fromTree(path string) ([]byte, bool, error) {
	if src.head == nil {
		return nil, false, nil
	}
	f, err := src.head.File(path)
	if errors.Is(err, object.ErrFileNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	content, err := f.Contents()
	if err != nil {
		return nil, false, err
	}
	return []byte(content), true, nil
}

func (src *localSources) fromIndex(path string) ([]byte, bool, error) {
	entry, err := src.idx.Entry(path)
	if errors.Is(err, gitindex.ErrEntryNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	blob, err := object.GetBlob(src.repo.Storer, entry.Hash)
	if err != nil {
		return nil, false, err
	}
	content, err := object.NewFile(entry.Name, entry.Mode, blob).Contents()
	if err != nil {
		return nil, false, err
	}
	return []byte(content), true, nil
}

func (src *localSources) fromWorktree(path string) ([]byte, bool, error) {
	if src.fs == nil {
		return nil, false, ErrNotInitialized
	}
	data, err := util.ReadFile(src.fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

func changeTypeFromStatus(code gitlib.StatusCode) ChangeType {
	switch code {
	case gitlib.Added, gitlib.Untracked:
		return ChangeAdded
	case gitlib.Deleted:
		return ChangeDeleted
	case gitlib.Renamed:
		return ChangeRenamed
	case gitlib.Copied:
		return ChangeCopied
	case gitlib.UpdatedButUnmerged:
		return ChangeUnmerged
	default:
		return ChangeModified
	}
}

// unifiedDiff renders a git-style patch for one file and counts its lines.
func unifiedDiff(path string, from, to []byte) (string, int, int, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "diff --git a/%s b/%s\n", path, path)
	if isBinary(from) || isBinary(to) {
		b.WriteString("Binary files differ\n")
		return b.String(), 0, 0, nil
	}
	ud := difflib.UnifiedDiff{
		A:        splitLines(from),
		B:        splitLines(to),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  3,
	}
	if from == nil {
		ud.FromFile = "/dev/null"
	}
	if to == nil {
		ud.ToFile = "/dev/null"
	}
	text, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return "", 0, 0, err
	}
	if text == "" {
		b.WriteString("(no textual changes)\n")
		return b.String(), 0, 0, nil
	}
	b.WriteString(text)
	if !strings.HasSuffix(text, "\n") {
		b.WriteByte('\n')
	}
	adds, dels := countDiffLines(text)
	return b.String(), adds, dels, nil
}

func splitLines(data []byte) []string {
	if len(data) == 0 {
		return []string{}
	}
	return difflib.SplitLines(string(data))
}

func countDiffLines(text string) (adds, dels int) {
	for line := range strings.SplitSeq(text, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "+"):
			adds++
		case strings.HasPrefix(line, "-"):
			dels++
		}
	}
	return adds, dels
}

func isBinary(data []byte) bool {
	const sniff = 8000
	if len(data) > sniff {
		data = data[:sniff]
	}
	return bytes.IndexByte(data, 0) >= 0
}
