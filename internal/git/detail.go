package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/format/diff"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"
)

// CommitDetail returns the files changed by sha against its first parent
// (the empty tree for a root commit). WorkInProgressSHA yields the staged
// and unstaged changes of the worktree instead.
func (s *Service) CommitDetail(sha string) (CommitDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.repo == nil {
		return CommitDetail{}, ErrNotInitialized
	}
	if sha == WorkInProgressSHA {
		return s.workInProgressDetailLocked()
	}
	hash := plumbing.NewHash(sha)
	if len(sha) != 40 {
		resolved, err := s.repo.ResolveRevision(plumbing.Revision(sha))
		if err != nil {
			return CommitDetail{}, fmt.Errorf("resolve %s: %w", sha, err)
		}
		hash = *resolved
	}
	c, err := s.repo.CommitObject(hash)
	if err != nil {
		return CommitDetail{}, fmt.Errorf("read commit %s: %w", sha, err)
	}
	files, err := commitFileChanges(c)
	if err != nil {
		return CommitDetail{}, err
	}
	slog.Debug("Commit detail loaded", slog.String("sha", c.Hash.String()), slog.Int("files", len(files)))
	return CommitDetail{Commit: newCommit(c, ""), Files: files}, nil
}

func commitFileChanges(c *object.Commit) ([]FileChange, error) {
	tree, err := c.Tree()
	if err != nil {
		return nil, fmt.Errorf("read tree: %w", err)
	}
	var parentTree *object.Tree
	if c.NumParents() > 0 {
		parent, err := c.Parent(0)
		if err != nil {
			return nil, fmt.Errorf("read parent: %w", err)
		}
		if parentTree, err = parent.Tree(); err != nil {
			return nil, fmt.Errorf("read parent tree: %w", err)
		}
	}
	changes, err := object.DiffTreeWithOptions(context.Background(), parentTree, tree, object.DefaultDiffTreeOptions)
	if err != nil {
		return nil, fmt.Errorf("diff trees: %w", err)
	}
	files := make([]FileChange, 0, len(changes))
	for _, ch := range changes {
		fc, err := fileChangeFromTreeChange(ch)
		if err != nil {
			return nil, err
		}
		files = append(files, fc)
	}
	return files, nil
}

func fileChangeFromTreeChange(ch *object.Change) (FileChange, error) {
	fc := FileChange{Path: changePath(ch), Staged: true}
	action, err := ch.Action()
	if err != nil {
		return fc, fmt.Errorf("classify %s: %w", fc.Path, err)
	}
	switch action {
	case merkletrie.Insert:
		fc.ChangeType = ChangeAdded
	case merkletrie.Delete:
		fc.ChangeType = ChangeDeleted
	default:
		fc.ChangeType = ChangeModified
		if ch.From.Name != "" && ch.To.Name != "" && ch.From.Name != ch.To.Name {
			fc.ChangeType = ChangeRenamed
		}
	}
	patch, err := ch.Patch()
	if err != nil {
		return fc, fmt.Errorf("patch %s: %w", fc.Path, err)
	}
	for _, st := range patch.Stats() {
		fc.Additions += st.Addition
		fc.Deletions += st.Deletion
	}
	fc.Diff, err = encodeUnifiedPatch(patch.FilePatches())
	if err != nil {
		return fc, fmt.Errorf("encode %s: %w", fc.Path, err)
	}
	return fc, nil
}

func changePath(ch *object.Change) string {
	if ch.To.Name != "" {
		return ch.To.Name
	}
	return ch.From.Name
}

func encodeUnifiedPatch(filePatches []diff.FilePatch) (string, error) {
	var buf bytes.Buffer
	enc := diff.NewUnifiedEncoder(&buf, diff.DefaultContextLines)
	if err := enc.Encode(filePatchSet{patches: filePatches}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

type filePatchSet struct {
	patches []diff.FilePatch
}

func (f filePatchSet) FilePatches() []diff.FilePatch { return f.patches }
func (filePatchSet) Message() string                 { return "" }

func (s *Service) workInProgressDetailLocked() (CommitDetail, error) {
	changes, err := s.localChangesLocked()
	if err != nil {
		return CommitDetail{}, err
	}
	wip := Commit{
		SHA:              WorkInProgressSHA,
		Summary:          "Work In Progress",
		Message:          "Work In Progress",
		IsWorkInProgress: true,
		ChangedFiles:     len(changes.Files),
	}
	if head, err := s.repo.Head(); err == nil {
		wip.ParentSHAs = []string{head.Hash().String()}
		wip.BranchName = refName(head)
	}
	if !changes.Dirty() {
		return CommitDetail{Commit: wip}, nil
	}
	src, err := s.localSourcesLocked()
	if err != nil {
		return CommitDetail{}, err
	}
	var files []FileChange
	for _, staged := range []bool{false, true} {
		for _, st := range changes.Files {
			if staged && !st.StagedChange() || !staged && !st.WorktreeChange() {
				continue
			}
			fc, err := src.fileChange(st, staged)
			if err != nil {
				return CommitDetail{}, err
			}
			files = append(files, fc)
		}
	}
	return CommitDetail{Commit: wip, Files: files}, nil
}

// FormatCommitHeader renders the commit metadata the way git show does.
func FormatCommitHeader(c Commit) string {
	var b strings.Builder
	if c.IsWorkInProgress {
		fmt.Fprintf(&b, "%s (%d changed files)\n", c.Summary, c.ChangedFiles)
		return b.String()
	}
	fmt.Fprintf(&b, "commit %s\n", c.SHA)
	if len(c.ParentSHAs) > 1 {
		short := make([]string, len(c.ParentSHAs))
		for i, p := range c.ParentSHAs {
			short[i] = Commit{SHA: p}.ShortSHA()
		}
		fmt.Fprintf(&b, "Merge: %s\n", strings.Join(short, " "))
	}
	fmt.Fprintf(&b, "Author: %s <%s>\n", c.Author, c.AuthorEmail)
	if !c.When.IsZero() {
		fmt.Fprintf(&b, "Date:   %s\n", c.When.Format("2006-01-02 15:04:05 -0700"))
	}
	b.WriteString("\n")
	message := strings.TrimRight(c.Message, "\n")
	if message == "" {
		b.WriteString("    (no commit message)\n")
		return b.String()
	}
	for line := range strings.SplitSeq(message, "\n") {
		if line == "" {
			b.WriteString("\n")
			continue
		}
		fmt.Fprintf(&b, "    %s\n", line)
	}
	return b.String()
}

// DiffText concatenates the patches of every file in detail.
func DiffText(detail CommitDetail) string {
	var b strings.Builder
	for _, f := range detail.Files {
		if f.Diff == "" {
			continue
		}
		b.WriteString(f.Diff)
		if !strings.HasSuffix(f.Diff, "\n") {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func isMissing(err error) bool {
	return errors.Is(err, plumbing.ErrReferenceNotFound) || errors.Is(err, plumbing.ErrObjectNotFound) ||
		errors.Is(err, gitlib.ErrRepositoryNotExists)
}
