package git

import (
	"time"

	gitlib "github.com/go-git/go-git/v5"
)

// WorkInProgressSHA identifies the pseudo commit standing for uncommitted changes.
const WorkInProgressSHA = "WIP"

type Branch struct {
	Name      string
	Hash      string
	IsRemote  bool
	IsCurrent bool
	// Upstream is the short remote-tracking name (origin/main) of a local
	// branch, empty when none is configured.
	Upstream string
	Ahead    int
	Behind   int
}

type Commit struct {
	SHA              string
	ParentSHAs       []string
	Summary          string
	Message          string
	Author           string
	AuthorEmail      string
	When             time.Time
	BranchName       string
	IsWorkInProgress bool
	ChangedFiles     int
}

// ShortSHA returns the abbreviated hash shown in lists.
func (c Commit) ShortSHA() string {
	if c.IsWorkInProgress || len(c.SHA) <= 7 {
		return c.SHA
	}
	return c.SHA[:7]
}

type ChangeType string

const (
	ChangeAdded    ChangeType = "Added"
	ChangeModified ChangeType = "Modified"
	ChangeDeleted  ChangeType = "Deleted"
	ChangeRenamed  ChangeType = "Renamed"
	ChangeCopied   ChangeType = "Copied"
	ChangeUnmerged ChangeType = "Conflicted"
)

type FileChange struct {
	Path       string
	ChangeType ChangeType
	Additions  int
	Deletions  int
	Diff       string
	Staged     bool
}

type CommitDetail struct {
	Commit Commit
	Files  []FileChange
}

type FileStatus struct {
	Path     string
	Staging  gitlib.StatusCode
	Worktree gitlib.StatusCode
}

// Untracked reports a file git does not know about yet.
func (f FileStatus) Untracked() bool {
	return f.Worktree == gitlib.Untracked
}

// StagedChange reports whether the index differs from HEAD for the file.
func (f FileStatus) StagedChange() bool {
	return f.Staging != gitlib.Unmodified && f.Staging != gitlib.Untracked
}

// WorktreeChange reports whether the file on disk differs from the index.
func (f FileStatus) WorktreeChange() bool {
	return f.Worktree != gitlib.Unmodified
}

type LocalChanges struct {
	HasWorktree bool
	HasStaged   bool
	Files       []FileStatus
}

// Dirty reports whether there is anything to show as work in progress.
func (l LocalChanges) Dirty() bool {
	return len(l.Files) > 0
}

type CommitRequest struct {
	Message     string
	Description string
	Author      string
	Email       string
}

// FullMessage joins the summary and the optional description.
func (r CommitRequest) FullMessage() string {
	if r.Description == "" {
		return r.Message
	}
	return r.Message + "\n\n" + r.Description
}
