package gui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gitpilot-go/gitpilot/internal/git"
	"github.com/gitpilot-go/gitpilot/internal/gui/tkutil"

	. "modernc.org/tk9.0"
)

// runAction runs op off the Tk thread, reports a failure in a message box
// and refreshes the window either way.
func (a *Controller) runAction(title, busy, done string, op func(svc *git.Service) error) {
	svc := a.svc
	a.setStatus(busy)
	slog.Debug("action started", slog.String("action", title))
	go func() {
		err := op(svc)
		PostEvent(func() {
			if svc != a.svc {
				return
			}
			if err != nil {
				a.showError(title, fmt.Sprintf("%s failed", title), err)
			} else {
				slog.Info("action done", slog.String("action", title))
				a.setStatus(done)
			}
			a.refreshAsync(strings.ToLower(title))
		}, false)
	}()
}

func confirm(title, msg string) bool {
	answer := MessageBox(
		Parent(App),
		Title(title),
		Icon("question"),
		Msg(msg),
		Type("yesno"),
	)
	return answer == "yes"
}

func (a *Controller) checkoutBranch(name string) {
	a.runAction("Checkout", fmt.Sprintf("Switching to %s...", name), fmt.Sprintf("Switched to %s.", name),
		func(svc *git.Service) error { return svc.Checkout(name) })
}

func (a *Controller) mergeBranch(name string) {
	a.runAction("Merge", fmt.Sprintf("Merging %s...", name), fmt.Sprintf("Merged %s.", name),
		func(svc *git.Service) error { return svc.Merge(name) })
}

func (a *Controller) deleteBranch(name string) {
	if !confirm("Delete Branch", fmt.Sprintf("Delete branch %s?", name)) {
		return
	}
	a.runAction("Delete Branch", fmt.Sprintf("Deleting %s...", name), fmt.Sprintf("Deleted %s.", name),
		func(svc *git.Service) error { return svc.DeleteBranch(name) })
}

func (a *Controller) trackRemoteBranch(remote string) {
	a.runAction("Track Branch", fmt.Sprintf("Creating a branch for %s...", remote), fmt.Sprintf("Tracking %s.", remote),
		func(svc *git.Service) error {
			name, err := svc.CreateBranchFromRemote(remote)
			if err != nil {
				return err
			}
			return svc.Checkout(name)
		})
}

func (a *Controller) fetch() {
	a.runRemote("Fetch", "Fetching...", "Fetch complete.", (*git.Service).Fetch)
}

func (a *Controller) pull() {
	a.runRemote("Pull", "Pulling...", "Pull complete.", (*git.Service).Pull)
}

func (a *Controller) push() {
	a.runRemote("Push", "Pushing...", "Push complete.", (*git.Service).Push)
}

func (a *Controller) runRemote(title, busy, done string, op func(*git.Service, context.Context) error) {
	ctx := a.ctx
	a.runAction(title, busy, done, func(svc *git.Service) error { return op(svc, ctx) })
}

// stageSelectedFile stages, or for staged files unstages, the file selected
// in the work-in-progress file list.
func (a *Controller) stageSelectedFile() {
	f, ok := a.selectedWIPFile()
	if !ok {
		return
	}
	if f.Staged {
		a.runAction("Unstage", fmt.Sprintf("Unstaging %s...", f.Path), fmt.Sprintf("Unstaged %s.", f.Path),
			func(svc *git.Service) error { return svc.Unstage([]string{f.Path}) })
		return
	}
	a.runAction("Stage", fmt.Sprintf("Staging %s...", f.Path), fmt.Sprintf("Staged %s.", f.Path),
		func(svc *git.Service) error { return svc.Stage([]string{f.Path}) })
}

func (a *Controller) discardSelectedFile() {
	f, ok := a.selectedWIPFile()
	if !ok {
		return
	}
	if !confirm("Discard Changes", fmt.Sprintf("Discard all changes to %s?", f.Path)) {
		return
	}
	a.runAction("Discard", fmt.Sprintf("Discarding %s...", f.Path), fmt.Sprintf("Discarded %s.", f.Path),
		func(svc *git.Service) error { return svc.Discard([]string{f.Path}) })
}

func (a *Controller) stageAll() {
	paths := changedPaths(a.localChanges(), false)
	if len(paths) == 0 {
		a.setStatus("Nothing to stage.")
		return
	}
	a.runAction("Stage", "Staging all changes...", fmt.Sprintf("Staged %d files.", len(paths)),
		func(svc *git.Service) error { return svc.Stage(paths) })
}

func (a *Controller) unstageAll() {
	paths := changedPaths(a.localChanges(), true)
	if len(paths) == 0 {
		a.setStatus("Nothing to unstage.")
		return
	}
	a.runAction("Unstage", "Unstaging all changes...", fmt.Sprintf("Unstaged %d files.", len(paths)),
		func(svc *git.Service) error { return svc.Unstage(paths) })
}

func (a *Controller) localChanges() git.LocalChanges {
	if a.data.snap == nil {
		return git.LocalChanges{}
	}
	return a.data.snap.Changes
}

// changedPaths lists files with staged changes, or with worktree changes
// when staged is false.
func changedPaths(changes git.LocalChanges, staged bool) []string {
	var paths []string
	for _, f := range changes.Files {
		if (staged && f.StagedChange()) || (!staged && f.WorktreeChange()) {
			paths = append(paths, f.Path)
		}
	}
	return paths
}

func (a *Controller) selectedWIPFile() (git.FileChange, bool) {
	if a.state.selection.SHA() != git.WorkInProgressSHA {
		return git.FileChange{}, false
	}
	return a.selectedFile()
}

func (a *Controller) initFileContextMenu() {
	menu := App.Menu(Tearoff(false))
	menu.AddCommand(Lbl("Stage / Unstage"), Command(a.stageSelectedFile))
	menu.AddCommand(Lbl("Discard changes..."), Command(a.discardSelectedFile))
	handler := func(e *Event) {
		if a.state.selection.SHA() != git.WorkInProgressSHA {
			return
		}
		idx := tkutil.Atoi(tkutil.EvalOrEmpty("%s nearest %d", a.ui.diffFileList, e.Y))
		a.ui.diffFileList.SelectionClear(0, END)
		a.ui.diffFileList.SelectionSet(idx)
		if _, ok := a.selectedFile(); ok {
			Popup(menu.Window, e.XRoot, e.YRoot, nil)
		}
	}
	Bind(a.ui.diffFileList, "<Button-2>", Command(handler))
	Bind(a.ui.diffFileList, "<Button-3>", Command(handler))
	Bind(a.ui.diffFileList, "<Double-Button-1>", Command(a.stageSelectedFile))
}

func (a *Controller) showCommitDialog() {
	changes := a.localChanges()
	if !changes.HasStaged {
		MessageBox(
			Parent(App),
			Title("Commit"),
			Icon("info"),
			Msg("There are no staged changes to commit."),
			Type("ok"),
		)
		return
	}

	dialog := App.Toplevel()
	dialog.WmTitle("Commit")
	WmTransient(dialog.Window, App)

	frame := dialog.TFrame(Padding("12p"))
	Grid(frame, Row(0), Column(0), Sticky(NEWS))
	GridColumnConfigure(frame.Window, 0, Weight(1))
	GridRowConfigure(frame.Window, 3, Weight(1))

	staged := len(changedPaths(changes, true))
	Grid(frame.TLabel(Txt(fmt.Sprintf("Summary (%d staged files):", staged)), Anchor(W)), Row(0), Column(0), Sticky(W))
	summary := frame.TEntry(Width(60), Textvariable(""))
	Grid(summary, Row(1), Column(0), Sticky(WE), Pady("0 8p"))
	Grid(frame.TLabel(Txt("Description:"), Anchor(W)), Row(2), Column(0), Sticky(W))
	description := frame.Text(Width(60), Height(8), Wrap(WORD))
	Grid(description, Row(3), Column(0), Sticky(NEWS))

	submit := func() {
		desc := tkutil.EvalOrEmpty("%s get 1.0 end", description)
		req, err := git.NewCommitRequest(summary.Textvariable(), desc, "", "")
		if err != nil {
			a.showError("Commit", "Cannot commit", err)
			return
		}
		Destroy(dialog.Window)
		a.runAction("Commit", "Committing...", fmt.Sprintf("Committed %q.", req.Message),
			func(svc *git.Service) error {
				_, err := svc.Commit(req)
				return err
			})
	}

	buttons := frame.TFrame()
	Grid(buttons, Row(4), Column(0), Sticky(E), Pady("8p 0"))
	Grid(buttons.TButton(Txt("Cancel"), Command(func() { Destroy(dialog.Window) })), Row(0), Column(0), Padx("0 8p"))
	Grid(buttons.TButton(Txt("Commit"), Command(submit)), Row(0), Column(1))
	Bind(dialog.Window, "<KeyPress-Escape>", Command(func() { Destroy(dialog.Window) }))
	Bind(dialog.Window, "<Control-KeyPress-Return>", Command(submit))

	if _, err := tkutil.Eval("focus %s", summary); err != nil {
		slog.Debug("focus commit summary", slog.Any("error", err))
	}
	dialog.Center()
}

func (a *Controller) showNewBranchDialog() {
	dialog := App.Toplevel()
	dialog.WmTitle("New Branch")
	WmTransient(dialog.Window, App)

	frame := dialog.TFrame(Padding("12p"))
	Grid(frame, Row(0), Column(0), Sticky(NEWS))
	GridColumnConfigure(frame.Window, 0, Weight(1))

	from := a.repo.head
	if from == "" {
		from = "HEAD"
	}
	Grid(frame.TLabel(Txt(fmt.Sprintf("New branch from %s:", from)), Anchor(W)), Row(0), Column(0), Sticky(W))
	name := frame.TEntry(Width(40), Textvariable(""))
	Grid(name, Row(1), Column(0), Sticky(WE), Pady("0 8p"))

	create := func(checkout bool) {
		branch := strings.TrimSpace(name.Textvariable())
		if branch == "" {
			return
		}
		Destroy(dialog.Window)
		a.runAction("New Branch", fmt.Sprintf("Creating %s...", branch), fmt.Sprintf("Created %s.", branch),
			func(svc *git.Service) error {
				if err := svc.CreateBranch(branch); err != nil {
					return err
				}
				if checkout {
					return svc.Checkout(branch)
				}
				return nil
			})
	}

	buttons := frame.TFrame()
	Grid(buttons, Row(2), Column(0), Sticky(E))
	Grid(buttons.TButton(Txt("Cancel"), Command(func() { Destroy(dialog.Window) })), Row(0), Column(0), Padx("0 8p"))
	Grid(buttons.TButton(Txt("Create"), Command(func() { create(false) })), Row(0), Column(1), Padx("0 8p"))
	Grid(buttons.TButton(Txt("Create and Checkout"), Command(func() { create(true) })), Row(0), Column(2))
	Bind(dialog.Window, "<KeyPress-Escape>", Command(func() { Destroy(dialog.Window) }))
	Bind(dialog.Window, "<KeyPress-Return>", Command(func() { create(true) }))

	if _, err := tkutil.Eval("focus %s", name); err != nil {
		slog.Debug("focus branch name", slog.Any("error", err))
	}
	dialog.Center()
}
