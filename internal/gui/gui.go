// Package gui is the Tk main window: the commit list with its lane graph,
// the branch pane and the commit detail view.
package gui

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gitpilot-go/gitpilot/internal/git"
	"github.com/gitpilot-go/gitpilot/internal/graph"
	"github.com/gitpilot-go/gitpilot/internal/gui/selection"
	"github.com/gitpilot-go/gitpilot/internal/gui/widgets"
	"github.com/gitpilot-go/gitpilot/internal/snapshot"
	"github.com/gitpilot-go/gitpilot/internal/state"

	. "modernc.org/tk9.0"
	_ "modernc.org/tk9.0/themes/azure" // load theme
)

const (
	diffDebounceDelay   = 120 * time.Millisecond
	filterDebounceDelay = 240 * time.Millisecond
)

// RunConfig describes the parameters that control the GUI runtime.
type RunConfig struct {
	RepoPath        string
	PerBranch       int
	IncludeRemotes  bool
	ShowWIP         bool
	MaxLanes        int
	ThemePreference ThemePreference
	AutoReload      bool
	Debounce        time.Duration
	PollInterval    time.Duration
	SyntaxHighlight bool
	// Palette colors branches for the whole session; nil creates a random one.
	Palette *graph.BranchPalette
	// State records recently opened repositories; nil disables it.
	State *state.Store
}

type Controller struct {
	svc    *git.Service
	loader *snapshot.Loader
	store  *state.Store

	ctx    context.Context
	cancel context.CancelFunc

	cfg   controllerConfig
	repo  controllerRepo
	theme controllerTheme
	data  controllerData

	ui appWidgets

	state controllerState
}

type controllerConfig struct {
	commits         git.CommitOptions
	maxLanes        int
	autoReload      bool
	debounce        time.Duration
	pollInterval    time.Duration
	syntaxHighlight bool
	palette         *graph.BranchPalette
}

type controllerRepo struct {
	path string
	head string
}

type controllerTheme struct {
	pref    ThemePreference
	palette colorPalette
}

// controllerData is the snapshot on screen. visible holds indices into
// snap.Commits; tree item ids are those indices.
type controllerData struct {
	snap    *snapshot.Snapshot
	placed  [][]graph.Primitive
	shas    []string
	visible []int
	labels  map[int][]widgets.Label
}

type controllerState struct {
	tree      treeState
	diff      diffState
	filter    filterState
	scroll    scrollState
	selection selection.State
	watch     autoReloadState
	refresh   refreshState
	branches  branchPaneState
}

func Run(cfg RunConfig) error {
	if cfg.RepoPath == "" {
		cfg.RepoPath = "."
	}
	if err := InitializeExtension("eval"); err != nil && err != AlreadyInitialized {
		return fmt.Errorf("init eval extension: %w", err)
	}
	svc, err := git.Open(cfg.RepoPath)
	if err != nil {
		return err
	}
	pref := cfg.ThemePreference
	if pref < ThemeAuto || pref > ThemeDark {
		pref = ThemeAuto
	}
	palette := cfg.Palette
	if palette == nil {
		palette = graph.NewBranchPalette(0, nil)
	}
	ctx, cancel := context.WithCancel(context.Background())
	app := &Controller{
		svc:    svc,
		store:  cfg.State,
		ctx:    ctx,
		cancel: cancel,
		cfg: controllerConfig{
			commits: git.CommitOptions{
				PerBranch:      cfg.PerBranch,
				IncludeRemotes: cfg.IncludeRemotes,
				ShowWIP:        cfg.ShowWIP,
			},
			maxLanes:        cfg.MaxLanes,
			autoReload:      cfg.AutoReload,
			debounce:        cfg.Debounce,
			pollInterval:    cfg.PollInterval,
			syntaxHighlight: cfg.SyntaxHighlight,
			palette:         palette,
		},
		repo:  controllerRepo{path: svc.RepoPath()},
		theme: controllerTheme{pref: pref},
	}
	app.state.diff.syntaxTags = make(map[string]string)
	app.state.tree.graph = widgets.NewGraphCanvas()
	return app.run()
}

func (a *Controller) run() error {
	defer a.shutdown()
	a.theme.palette = paletteForPreference(a.theme.pref)
	if err := ActivateTheme(a.theme.palette.ThemeName); err != nil {
		slog.Error("activate theme",
			slog.String("theme", a.theme.palette.ThemeName),
			slog.Any("error", err),
		)
	}
	a.loader = snapshot.NewLoader(a.svc, a.loaderOptions())
	a.rememberRepository(a.repo.path)
	a.buildUI()
	a.initAutoReload(a.cfg.autoReload)
	a.setStatus("Loading commits...")
	a.refreshAsync("startup")
	App.WmTitle(fmt.Sprintf("gitpilot: %s", a.repo.path))
	App.SetResizable(true, true)
	App.Center().Wait()
	return nil
}

func (a *Controller) loaderOptions() snapshot.Options {
	return snapshot.Options{
		Commits: a.cfg.commits,
		Engine:  graph.Engine{Fallback: a.theme.palette.Lanes},
		Palette: a.cfg.palette,
	}
}

func (a *Controller) shutdown() {
	a.cancel()
	a.disableAutoReload()
	a.cancelPendingDiffLoad()
	a.stopFilterDebounce()
}

func (a *Controller) rememberRepository(path string) {
	if a.store == nil || path == "" {
		return
	}
	if _, err := a.store.RecordOpened(path, time.Now()); err != nil {
		slog.Error("record opened repository", slog.String("path", path), slog.Any("error", err))
	}
}

// showError reports a failed operation in a message box and the status bar.
func (a *Controller) showError(title, prefix string, err error) {
	slog.Error(prefix, slog.Any("error", err))
	a.setStatus(fmt.Sprintf("%s: %v", prefix, err))
	MessageBox(
		Parent(App),
		Title(title),
		Icon("error"),
		Msg(fmt.Sprintf("%s:\n\n%v", prefix, err)),
		Type("ok"),
	)
}

func (a *Controller) setStatus(msg string) {
	text := msg
	PostEvent(func() {
		if a.ui.status != nil {
			a.ui.status.Configure(Txt(text))
		}
	}, false)
}
