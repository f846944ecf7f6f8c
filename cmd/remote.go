package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gitpilot-go/gitpilot/internal/git"
)

func newFetchCmd() *cobra.Command {
	return newRemoteCmd("fetch", "Fetch from the default remote",
		"Download objects and refs from origin, or the first configured remote.",
		"Fetched", (*git.Service).Fetch)
}

func newPullCmd() *cobra.Command {
	return newRemoteCmd("pull", "Pull the current branch",
		"Fetch and fast-forward the checked out branch from its remote.",
		"Pulled", (*git.Service).Pull)
}

func newPushCmd() *cobra.Command {
	return newRemoteCmd("push", "Push the current branch",
		"Push the checked out branch to its remote, setting the upstream when missing.",
		"Pushed", (*git.Service).Push)
}

func newRemoteCmd(use, short, long, done string, op func(*git.Service, context.Context) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Long:  long,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd, func(svc *git.Service) (string, error) {
				return done, op(svc, cmd.Context())
			})
		},
	}
}

func newRemoteListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "List and add remotes",
		Long:  "List the configured remotes, origin first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openRepo()
			if err != nil {
				return err
			}
			names, err := svc.Remotes()
			if err != nil {
				return err
			}
			for _, name := range names {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add <name> <url>",
		Short: "Add a remote",
		Long:  "Add a remote. Only http(s)://, ssh:// and git@ URLs are accepted.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepo(cmd, func(svc *git.Service) (string, error) {
				return fmt.Sprintf("Added remote %s", args[0]), svc.AddRemote(args[0], args[1])
			})
		},
	})
	return cmd
}
