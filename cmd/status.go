package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/gitpilot-go/gitpilot/internal/git"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current branch and local changes",
		Long:  "Display the checked out branch, its distance to the upstream and the changed files in short format.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd)
		},
	}
}

func runStatus(cmd *cobra.Command) error {
	svc, err := openRepo()
	if err != nil {
		return err
	}
	head, err := svc.HeadName()
	if err != nil {
		return err
	}
	branches, err := svc.LocalBranches()
	if err != nil {
		return err
	}
	changes, err := svc.LocalChanges()
	if err != nil {
		return err
	}
	return writeStatus(cmd.OutOrStdout(), head, branches, changes)
}

func writeStatus(w io.Writer, head string, branches []git.Branch, changes git.LocalChanges) error {
	if head == "HEAD" {
		_, _ = fmt.Fprintln(w, "HEAD detached")
	} else {
		_, _ = fmt.Fprintf(w, "On branch %s\n", head)
	}
	for _, b := range branches {
		if !b.IsCurrent || b.Upstream == "" {
			continue
		}
		switch {
		case b.Ahead > 0 && b.Behind > 0:
			_, _ = fmt.Fprintf(w, "Diverged from %s: %d ahead, %d behind\n", b.Upstream, b.Ahead, b.Behind)
		case b.Ahead > 0:
			_, _ = fmt.Fprintf(w, "Ahead of %s by %d commits\n", b.Upstream, b.Ahead)
		case b.Behind > 0:
			_, _ = fmt.Fprintf(w, "Behind %s by %d commits\n", b.Upstream, b.Behind)
		default:
			_, _ = fmt.Fprintf(w, "Up to date with %s\n", b.Upstream)
		}
	}
	if !changes.Dirty() {
		_, err := fmt.Fprintln(w, "Nothing to commit, working tree clean")
		return err
	}
	_, _ = fmt.Fprintln(w)
	for _, f := range changes.Files {
		if _, err := fmt.Fprintf(w, "%c%c %s\n", f.Staging, f.Worktree, f.Path); err != nil {
			return err
		}
	}
	return nil
}
