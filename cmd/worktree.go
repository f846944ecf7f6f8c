package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gitpilot-go/gitpilot/internal/git"
)

var (
	stageAll      bool
	commitMessage string
	commitDesc    string
	commitAuthor  string
	commitEmail   string
)

func newStageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stage [path...]",
		Short: "Stage changes",
		Long:  "Add the worktree state of the given paths to the index. Deleted files are removed from it.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd, func(svc *git.Service) (string, error) {
				paths := args
				if stageAll {
					changes, err := svc.LocalChanges()
					if err != nil {
						return "", err
					}
					paths = pathsWhere(changes, git.FileStatus.WorktreeChange)
				}
				if err := svc.Stage(paths); err != nil {
					return "", err
				}
				return fmt.Sprintf("Staged %d paths", len(paths)), nil
			})
		},
	}
	cmd.Flags().BoolVarP(&stageAll, "all", "a", false, "stage every changed file")
	return cmd
}

func newUnstageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unstage <path>...",
		Short: "Unstage changes",
		Long:  "Reset the index entries of the given paths to HEAD, keeping the worktree.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd, func(svc *git.Service) (string, error) {
				return fmt.Sprintf("Unstaged %d paths", len(args)), svc.Unstage(args)
			})
		},
	}
}

func newDiscardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "discard <path>...",
		Short: "Discard worktree changes",
		Long:  "Restore the index and worktree of the given paths from HEAD. Untracked files are left alone.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd, func(svc *git.Service) (string, error) {
				return fmt.Sprintf("Discarded changes to %d paths", len(args)), svc.Discard(args)
			})
		},
	}
}

func newCommitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Commit staged changes",
		Long:  "Record the staged changes as a new commit on the current branch.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := git.NewCommitRequest(commitMessage, commitDesc, commitAuthor, commitEmail)
			if err != nil {
				return err
			}
			return withRepo(cmd, func(svc *git.Service) (string, error) {
				sha, err := svc.Commit(req)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("[%s] %s", git.Commit{SHA: sha}.ShortSHA(), req.Message), nil
			})
		},
	}
	cmd.Flags().StringVarP(&commitMessage, "message", "m", "", "commit summary")
	cmd.Flags().StringVarP(&commitDesc, "description", "d", "", "commit description")
	cmd.Flags().StringVar(&commitAuthor, "author", "", "author name (default from git config)")
	cmd.Flags().StringVar(&commitEmail, "email", "", "author email (default from git config)")
	return cmd
}

func pathsWhere(changes git.LocalChanges, keep func(git.FileStatus) bool) []string {
	var paths []string
	for _, f := range changes.Files {
		if keep(f) {
			paths = append(paths, f.Path)
		}
	}
	return paths
}
