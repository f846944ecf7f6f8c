package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gitpilot-go/gitpilot/internal/buildinfo"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "gitpilot %s\n", buildinfo.VersionWithTags())
			return err
		},
	}
}
