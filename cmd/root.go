// Package cmd is the gitpilot command line: the desktop window by default,
// and scriptable subcommands for the same repository operations.
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gitpilot-go/gitpilot/internal/config"
	"github.com/gitpilot-go/gitpilot/internal/git"
)

var (
	cfgFile  string
	repoPath string
	verbose  bool

	logOut io.Writer = os.Stderr
)

// NewRootCmd creates the root command for the gitpilot CLI.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gitpilot [repo]",
		Short: "A desktop Git client with a commit graph",
		Long: `gitpilot shows the history of every branch of a repository as a colored
lane graph next to the commit list, with branch, staging and remote operations.

Without a subcommand it opens the desktop window for repo (default: the
current directory). The subcommands run the same operations from a terminal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MaximumNArgs(1),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logOut = cmd.ErrOrStderr()
			setupLogging(logOut, verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				repoPath = args[0]
			}
			return runGUI(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: <user config dir>/gitpilot/gitpilot.yaml)")
	rootCmd.PersistentFlags().StringVarP(&repoPath, "repo", "C", ".", "path to the repository")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	addGUIFlags(rootCmd)

	rootCmd.AddCommand(newGUICmd())
	rootCmd.AddCommand(newLogCmd())
	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newBranchCmd())
	rootCmd.AddCommand(newStageCmd())
	rootCmd.AddCommand(newUnstageCmd())
	rootCmd.AddCommand(newDiscardCmd())
	rootCmd.AddCommand(newCommitCmd())
	rootCmd.AddCommand(newFetchCmd())
	rootCmd.AddCommand(newPullCmd())
	rootCmd.AddCommand(newPushCmd())
	rootCmd.AddCommand(newRemoteListCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// Execute runs the root command with the process arguments.
func Execute() error {
	return NewRootCmd().Execute()
}

func setupLogging(w io.Writer, debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadWithFile(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Log.Verbose && !verbose {
		setupLogging(logOut, true)
	}
	return cfg, nil
}

func openRepo() (*git.Service, error) {
	path := repoPath
	if path == "" {
		path = "."
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("repository path: %w", err)
	}
	return git.Open(path)
}
