package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gitpilot-go/gitpilot/internal/git"
	"github.com/gitpilot-go/gitpilot/internal/graph"
	"github.com/gitpilot-go/gitpilot/internal/snapshot"
)

var (
	logPerBranch int
	logMaxLanes  int
	logColor     bool
	logNoRemotes bool
	logNoWIP     bool
)

func newLogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Print the commit graph",
		Long: `Print the commits of every branch with the lane graph drawn as text,
newest first, the way the desktop window lays them out.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLog(cmd)
		},
	}
	cmd.Flags().IntVarP(&logPerBranch, "per-branch", "n", 0, "commits to read per branch (0 uses config)")
	cmd.Flags().IntVar(&logMaxLanes, "max-lanes", 0, "lanes drawn before the graph is clipped (0 uses config)")
	cmd.Flags().BoolVar(&logColor, "color", false, "color lanes with ANSI escapes")
	cmd.Flags().BoolVar(&logNoRemotes, "no-remotes", false, "leave remote-tracking branches out")
	cmd.Flags().BoolVar(&logNoWIP, "no-wip", false, "leave uncommitted changes out")
	return cmd
}

func runLog(cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, err := openRepo()
	if err != nil {
		return err
	}
	palette, err := cfg.Graph.Palette()
	if err != nil {
		return err
	}

	opts := snapshot.Options{
		Commits: git.CommitOptions{
			PerBranch:      cfg.Repo.PerBranch,
			IncludeRemotes: cfg.Repo.IncludeRemotes && !logNoRemotes,
			ShowWIP:        cfg.Repo.ShowWIP && !logNoWIP,
		},
		Palette: palette,
	}
	if logPerBranch > 0 {
		opts.Commits.PerBranch = logPerBranch
	}
	snap, err := snapshot.NewLoader(svc, opts).Load(cmd.Context())
	if err != nil {
		return err
	}

	maxLanes := cfg.Graph.MaxLanes
	if logMaxLanes > 0 {
		maxLanes = logMaxLanes
	}
	renderer := graph.TextRenderer{MaxLanes: maxLanes, Color: logColor}
	refs := refLabels(snap)
	return renderer.Render(cmd.OutOrStdout(), snap.Graph.Rows, func(i int) string {
		return logLine(snap.Commits[i], refs[snap.Commits[i].SHA])
	})
}

// refLabels lists the branch names pointing at each commit, local first.
func refLabels(snap *snapshot.Snapshot) map[string][]string {
	refs := map[string][]string{}
	for _, b := range snap.Local {
		name := b.Name
		if b.IsCurrent {
			name = "HEAD -> " + name
		}
		refs[b.Hash] = append(refs[b.Hash], name)
	}
	for _, b := range snap.Remote {
		refs[b.Hash] = append(refs[b.Hash], b.Name)
	}
	return refs
}

func logLine(c git.Commit, refs []string) string {
	if c.IsWorkInProgress {
		return fmt.Sprintf("%s (%d changed files)", c.Summary, c.ChangedFiles)
	}
	var b strings.Builder
	b.WriteString(c.ShortSHA())
	if len(refs) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(refs, ", "))
	}
	b.WriteString(" ")
	b.WriteString(c.Summary)
	return b.String()
}
