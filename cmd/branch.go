package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gitpilot-go/gitpilot/internal/git"
)

var (
	branchListRemotes bool
	branchCreateCheck bool
)

func newBranchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "branch",
		Short: "List and manage branches",
		Long:  "List, create, delete, check out, merge and track branches.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBranchList(cmd)
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List local branches",
		Long:  "List local branches with their upstream distance, and remote branches with --remotes.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBranchList(cmd)
		},
	}
	list.Flags().BoolVarP(&branchListRemotes, "remotes", "r", false, "also list remote-tracking branches")

	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a branch at HEAD",
		Long:  "Create a local branch pointing at the current HEAD commit.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd, func(svc *git.Service) (string, error) {
				if err := svc.CreateBranch(args[0]); err != nil {
					return "", err
				}
				if !branchCreateCheck {
					return fmt.Sprintf("Created branch %s", args[0]), nil
				}
				if err := svc.Checkout(args[0]); err != nil {
					return "", err
				}
				return fmt.Sprintf("Switched to a new branch %s", args[0]), nil
			})
		},
	}
	create.Flags().BoolVar(&branchCreateCheck, "checkout", false, "check out the new branch")

	del := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a local branch",
		Long:  "Delete a local branch. The checked out branch cannot be deleted.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd, func(svc *git.Service) (string, error) {
				return fmt.Sprintf("Deleted branch %s", args[0]), svc.DeleteBranch(args[0])
			})
		},
	}

	checkout := &cobra.Command{
		Use:   "checkout <name>",
		Short: "Switch to a local branch",
		Long:  "Check out a local branch. Uncommitted changes to tracked files block the switch.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd, func(svc *git.Service) (string, error) {
				return fmt.Sprintf("Switched to branch %s", args[0]), svc.Checkout(args[0])
			})
		},
	}

	merge := &cobra.Command{
		Use:   "merge <branch>",
		Short: "Fast-forward the current branch",
		Long:  "Fast-forward the checked out branch to branch. Diverged histories are refused.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd, func(svc *git.Service) (string, error) {
				return fmt.Sprintf("Merged %s", args[0]), svc.Merge(args[0])
			})
		},
	}

	track := &cobra.Command{
		Use:   "track <remote/branch>",
		Short: "Create and check out a tracking branch",
		Long:  "Create a local branch following a remote-tracking branch and check it out.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd, func(svc *git.Service) (string, error) {
				name, err := svc.CreateBranchFromRemote(args[0])
				if err != nil {
					return "", err
				}
				if err := svc.Checkout(name); err != nil {
					return "", err
				}
				return fmt.Sprintf("Branch %s set up to track %s", name, args[0]), nil
			})
		},
	}

	cmd.AddCommand(list, create, del, checkout, merge, track)
	return cmd
}

// withRepo runs op on the repository and prints its message on success.
func withRepo(cmd *cobra.Command, op func(svc *git.Service) (string, error)) error {
	svc, err := openRepo()
	if err != nil {
		return err
	}
	msg, err := op(svc)
	if err != nil {
		return err
	}
	if msg != "" {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), msg)
	}
	return nil
}

func runBranchList(cmd *cobra.Command) error {
	svc, err := openRepo()
	if err != nil {
		return err
	}
	local, err := svc.LocalBranches()
	if err != nil {
		return err
	}
	var remote []git.Branch
	if branchListRemotes {
		if remote, err = svc.RemoteBranches(); err != nil {
			return err
		}
	}
	return writeBranches(cmd.OutOrStdout(), local, remote)
}

func writeBranches(w io.Writer, local, remote []git.Branch) error {
	for _, b := range local {
		marker := "  "
		if b.IsCurrent {
			marker = "* "
		}
		line := marker + b.Name
		if info := trackingInfo(b); info != "" {
			line += " [" + info + "]"
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	for _, b := range remote {
		if _, err := fmt.Fprintf(w, "  remotes/%s\n", b.Name); err != nil {
			return err
		}
	}
	return nil
}

// trackingInfo renders the upstream of b the way git branch -vv does.
func trackingInfo(b git.Branch) string {
	var dist []string
	if b.Ahead > 0 {
		dist = append(dist, fmt.Sprintf("ahead %d", b.Ahead))
	}
	if b.Behind > 0 {
		dist = append(dist, fmt.Sprintf("behind %d", b.Behind))
	}
	switch {
	case b.Upstream == "":
		return ""
	case len(dist) == 0:
		return b.Upstream
	default:
		return b.Upstream + ": " + strings.Join(dist, ", ")
	}
}
