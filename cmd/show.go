package cmd

import (
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/spf13/cobra"

	"github.com/gitpilot-go/gitpilot/internal/git"
)

var (
	showColor bool
	showStyle string
)

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [revision]",
		Short: "Show a commit and its diff",
		Long: `Show the header and the per-file diff of revision (default HEAD).
Pass WIP to show the uncommitted changes of the worktree.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rev := "HEAD"
			if len(args) == 1 {
				rev = args[0]
			}
			return runShow(cmd, rev)
		},
	}
	cmd.Flags().BoolVar(&showColor, "color", false, "highlight the diff for a 256 color terminal")
	cmd.Flags().StringVar(&showStyle, "style", "monokai", "chroma style used with --color")
	return cmd
}

func runShow(cmd *cobra.Command, rev string) error {
	svc, err := openRepo()
	if err != nil {
		return err
	}
	if strings.EqualFold(rev, git.WorkInProgressSHA) {
		rev = git.WorkInProgressSHA
	}
	detail, err := svc.CommitDetail(rev)
	if err != nil {
		return err
	}
	return writeDetail(cmd.OutOrStdout(), detail, showColor, showStyle)
}

func writeDetail(w io.Writer, detail git.CommitDetail, color bool, style string) error {
	if _, err := io.WriteString(w, git.FormatCommitHeader(detail.Commit)); err != nil {
		return err
	}
	diff := git.DiffText(detail)
	if diff == "" {
		return nil
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}
	if !color {
		_, err := io.WriteString(w, diff)
		return err
	}
	return quick.Highlight(w, diff, "diff", "terminal256", style)
}
