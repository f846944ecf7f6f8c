package gui

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/gitpilot-go/gitpilot/internal/buildinfo"
	"github.com/gitpilot-go/gitpilot/internal/git"
	"github.com/gitpilot-go/gitpilot/internal/gui/widgets"
	"github.com/gitpilot-go/gitpilot/internal/snapshot"

	. "modernc.org/tk9.0"
)

func (a *Controller) initMenubar() {
	menubar := Menu(Tearoff(false))

	fileMenu := menubar.Menu(Tearoff(false))
	fileMenu.AddCommand(Lbl("Open Repository..."), Command(a.promptRepositorySwitch))
	if recent := a.recentRepositories(); len(recent) > 0 {
		recentMenu := fileMenu.Menu(Tearoff(false))
		for _, path := range recent {
			recentMenu.AddCommand(Lbl(path), Command(func() { a.switchRepository(path) }))
		}
		fileMenu.AddCascade(Lbl("Open Recent"), Mnu(recentMenu))
	}
	fileMenu.AddSeparator()
	fileMenu.AddCommand(Lbl("Quit"), Command(func() { Destroy(App) }))
	menubar.AddCascade(Lbl("File"), Mnu(fileMenu))

	repoMenu := menubar.Menu(Tearoff(false))
	repoMenu.AddCommand(Lbl("Refresh"), Command(func() { a.refreshAsync("manual") }))
	repoMenu.AddCommand(Lbl("Toggle Auto Reload"), Command(a.toggleAutoReload))
	repoMenu.AddSeparator()
	repoMenu.AddCommand(Lbl("Commit..."), Command(a.showCommitDialog))
	repoMenu.AddCommand(Lbl("Stage All"), Command(a.stageAll))
	repoMenu.AddCommand(Lbl("Unstage All"), Command(a.unstageAll))
	repoMenu.AddSeparator()
	repoMenu.AddCommand(Lbl("New Branch..."), Command(a.showNewBranchDialog))
	repoMenu.AddCommand(Lbl("Switch Branch..."), Command(a.promptBranchSwitch))
	repoMenu.AddSeparator()
	repoMenu.AddCommand(Lbl("Fetch"), Command(a.fetch))
	repoMenu.AddCommand(Lbl("Pull"), Command(a.pull))
	repoMenu.AddCommand(Lbl("Push"), Command(a.push))
	menubar.AddCascade(Lbl("Repository"), Mnu(repoMenu))

	helpMenu := menubar.Menu(Tearoff(false))
	helpMenu.AddCommand(Lbl("Keyboard Shortcuts"), Command(a.showShortcutsDialog))
	helpMenu.AddCommand(Lbl("About gitpilot"), Command(a.showAboutDialog))
	menubar.AddCascade(Lbl("Help"), Mnu(helpMenu))

	App.Configure(Mnu(menubar))
}

// recentRepositories lists remembered repositories other than the open one.
func (a *Controller) recentRepositories() []string {
	if a.store == nil {
		return nil
	}
	st, err := a.store.Load()
	if err != nil {
		slog.Warn("load state", slog.Any("error", err))
		return nil
	}
	var out []string
	for _, path := range st.Recent {
		if path != a.repo.path {
			out = append(out, path)
		}
	}
	return out
}

func (a *Controller) promptRepositorySwitch() {
	dir := strings.TrimSpace(ChooseDirectory(
		Parent(App),
		Title("Select Git repository"),
		Initialdir(a.repo.path),
		Mustexist(true),
	))
	if dir == "" || dir == a.repo.path {
		return
	}
	a.switchRepository(dir)
}

func (a *Controller) showAboutDialog() {
	MessageBox(
		Parent(App),
		Title("About gitpilot"),
		Icon("info"),
		Msg(fmt.Sprintf("gitpilot %s", buildinfo.VersionWithTags())),
		Type("ok"),
	)
}

// switchRepository replaces the open repository. The loader is recreated so
// snapshots still in flight for the old one are discarded on arrival.
func (a *Controller) switchRepository(path string) {
	svc, err := git.Open(path)
	if err != nil {
		a.showError("Open Repository", "Unable to open repository", err)
		return
	}

	wasEnabled := a.autoReloadEnabled()
	a.disableAutoReload()
	a.cancelPendingDiffLoad()
	a.stopFilterDebounce()

	a.svc = svc
	a.loader = snapshot.NewLoader(svc, a.loaderOptions())
	a.repo = controllerRepo{path: svc.RepoPath()}
	a.data = controllerData{labels: map[int][]widgets.Label{}}
	a.state.tree.contextTargetID = ""
	a.state.selection.Clear()
	a.state.filter.value = ""
	a.state.scroll = scrollState{}
	if a.ui.filterEntry != nil {
		a.ui.filterEntry.Configure(Textvariable(""))
	}
	if a.ui.branchList != nil {
		a.ui.branchList.Delete(0, END)
	}
	if a.ui.repoLabel != nil {
		a.ui.repoLabel.Configure(Txt(repoLabelText(a.repo.path)))
	}
	App.WmTitle(fmt.Sprintf("gitpilot: %s", a.repo.path))

	a.clearTreeRows()
	a.scheduleGraphCanvasRedraw()
	a.clearDetailText("Select a commit to view its details.")
	a.setStatus("Loading commits...")
	a.rememberRepository(a.repo.path)

	if wasEnabled {
		if err := a.enableAutoReload(); err != nil {
			slog.Error("auto reload enable failed", slog.Any("error", err))
		}
	}
	a.updateReloadButtonLabel()
	a.refreshAsync("switch")
}
