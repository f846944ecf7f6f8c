package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gitpilot-go/gitpilot/internal/config"
	"github.com/gitpilot-go/gitpilot/internal/gui"
	"github.com/gitpilot-go/gitpilot/internal/state"
)

var (
	guiTheme     string
	guiNoWatch   bool
	guiNoSyntax  bool
	guiPerBranch int
	guiMaxLanes  int
	guiNoRemotes bool
)

func addGUIFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&guiTheme, "theme", "", "color theme: auto, light or dark (default from config)")
	cmd.Flags().BoolVar(&guiNoWatch, "nowatch", false, "disable automatic reload when the repository changes")
	cmd.Flags().BoolVar(&guiNoSyntax, "nosyntax", false, "disable syntax highlighting in the diff viewer")
	cmd.Flags().IntVar(&guiPerBranch, "per-branch", 0, "commits to load per branch (0 uses config)")
	cmd.Flags().IntVar(&guiMaxLanes, "max-lanes", 0, "lanes drawn before the graph is clipped (0 uses config)")
	cmd.Flags().BoolVar(&guiNoRemotes, "no-remotes", false, "leave remote-tracking branches out of the graph")
}

func newGUICmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gui [repo]",
		Short: "Open the desktop window",
		Long:  "Open the commit graph window for repo, or the --repo path when no argument is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				repoPath = args[0]
			}
			return runGUI(cmd)
		},
	}
	addGUIFlags(cmd)
	return cmd
}

// guiRunConfig merges the command line over the loaded configuration.
func guiRunConfig(cfg *config.Config) (gui.RunConfig, error) {
	palette, err := cfg.Graph.Palette()
	if err != nil {
		return gui.RunConfig{}, err
	}
	theme := cfg.UI.Theme
	if guiTheme != "" {
		switch guiTheme {
		case "auto", "light", "dark":
		default:
			return gui.RunConfig{}, fmt.Errorf("--theme %q: %w", guiTheme, config.ErrInvalidTheme)
		}
		theme = guiTheme
	}
	rc := gui.RunConfig{
		RepoPath:        repoPath,
		PerBranch:       cfg.Repo.PerBranch,
		IncludeRemotes:  cfg.Repo.IncludeRemotes && !guiNoRemotes,
		ShowWIP:         cfg.Repo.ShowWIP,
		MaxLanes:        cfg.Graph.MaxLanes,
		ThemePreference: gui.ThemePreferenceFromString(theme),
		AutoReload:      cfg.Watch.Enabled && !guiNoWatch,
		Debounce:        cfg.Watch.Debounce,
		PollInterval:    cfg.Watch.PollInterval,
		SyntaxHighlight: cfg.UI.SyntaxHighlight && !guiNoSyntax,
		Palette:         palette,
	}
	if guiPerBranch > 0 {
		rc.PerBranch = guiPerBranch
	}
	if guiMaxLanes > 0 {
		rc.MaxLanes = guiMaxLanes
	}
	if dir, err := config.Dir(); err == nil {
		rc.State = state.DefaultStore(dir)
	}
	return rc, nil
}

func runGUI(cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rc, err := guiRunConfig(cfg)
	if err != nil {
		return err
	}
	return gui.Run(rc)
}
