package git

import "errors"

var (
	ErrNothingStaged   = errors.New("no staged files to commit")
	ErrEmptyMessage    = errors.New("commit message cannot be empty")
	ErrBranchNotFound  = errors.New("branch not found")
	ErrBranchExists    = errors.New("branch already exists")
	ErrCurrentBranch   = errors.New("cannot delete the checked out branch")
	ErrNoRemote        = errors.New("repository has no remote")
	ErrDetachedHead    = errors.New("HEAD is not on a branch")
	ErrNotFastForward  = errors.New("branches have diverged; only fast-forward merges are supported")
	ErrDirtyWorktree   = errors.New("working tree has uncommitted changes")
	ErrInvalidRemote   = errors.New("unsupported remote URL")
	ErrNotInitialized  = errors.New("repository not initialized")
	ErrNoPathsSelected = errors.New("no paths selected")
)
