package gui

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/gitpilot-go/gitpilot/internal/git"
	"github.com/gitpilot-go/gitpilot/internal/gui/tkutil"

	. "modernc.org/tk9.0"
)

type branchPaneState struct {
	entries []branchEntry
	menu    *MenuWidget
	window  *ToplevelWidget
}

// branchEntry is one line of the branch pane. Headers are not selectable.
type branchEntry struct {
	Name    string
	Display string
	Remote  bool
	Current bool
	Header  bool
}

func buildBranchEntries(local, remote []git.Branch) []branchEntry {
	entries := []branchEntry{{Display: "Local branches", Header: true}}
	for _, b := range local {
		marker := "  "
		if b.IsCurrent {
			marker = "* "
		}
		display := marker + b.Name
		if ab := aheadBehind(b); ab != "" {
			display += " " + ab
		}
		entries = append(entries, branchEntry{Name: b.Name, Display: display, Current: b.IsCurrent})
	}
	if len(remote) == 0 {
		return entries
	}
	entries = append(entries, branchEntry{Display: "Remote branches", Header: true})
	for _, b := range remote {
		entries = append(entries, branchEntry{Name: b.Name, Display: "  " + b.Name, Remote: true})
	}
	return entries
}

// aheadBehind renders the upstream distance of a local branch, empty when
// it is in sync or has no upstream.
func aheadBehind(b git.Branch) string {
	var parts []string
	if b.Ahead > 0 {
		parts = append(parts, fmt.Sprintf("↑%d", b.Ahead))
	}
	if b.Behind > 0 {
		parts = append(parts, fmt.Sprintf("↓%d", b.Behind))
	}
	return strings.Join(parts, " ")
}

type branchChoice struct {
	name      string
	display   string
	isCurrent bool
}

// buildBranchChoices lists local branches alphabetically with the current
// one first.
func buildBranchChoices(branches []git.Branch) []branchChoice {
	var choices []branchChoice
	seen := map[string]struct{}{}
	for _, b := range branches {
		name := strings.TrimSpace(b.Name)
		if name == "" || b.IsRemote {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		display := name
		if b.IsCurrent {
			display = fmt.Sprintf("%s (current)", name)
		}
		choices = append(choices, branchChoice{name: name, display: display, isCurrent: b.IsCurrent})
	}
	slices.SortStableFunc(choices, func(x, y branchChoice) int {
		switch {
		case x.isCurrent && !y.isCurrent:
			return -1
		case y.isCurrent && !x.isCurrent:
			return 1
		default:
			return strings.Compare(x.name, y.name)
		}
	})
	return choices
}

func filterBranchChoices(choices []branchChoice, query string) []branchChoice {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return choices
	}
	out := make([]branchChoice, 0, len(choices))
	for _, c := range choices {
		if strings.Contains(strings.ToLower(c.name), q) {
			out = append(out, c)
		}
	}
	return out
}

func (a *Controller) renderBranches() {
	list := a.ui.branchList
	if list == nil || a.data.snap == nil {
		return
	}
	a.state.branches.entries = buildBranchEntries(a.data.snap.Local, a.data.snap.Remote)
	list.Delete(0, END)
	for _, e := range a.state.branches.entries {
		list.Insert(END, e.Display)
	}
}

func (a *Controller) selectedBranch() (branchEntry, bool) {
	if a.ui.branchList == nil {
		return branchEntry{}, false
	}
	sel := a.ui.branchList.Curselection()
	if len(sel) == 0 || sel[0] < 0 || sel[0] >= len(a.state.branches.entries) {
		return branchEntry{}, false
	}
	e := a.state.branches.entries[sel[0]]
	return e, !e.Header
}

// onBranchActivated checks out a local branch, or creates a tracking branch
// for a remote one.
func (a *Controller) onBranchActivated() {
	e, ok := a.selectedBranch()
	if !ok || e.Current {
		return
	}
	if e.Remote {
		a.trackRemoteBranch(e.Name)
		return
	}
	a.checkoutBranch(e.Name)
}

// showBranchCommit selects the tip commit of the clicked branch.
func (a *Controller) showBranchCommit() {
	e, ok := a.selectedBranch()
	if !ok || a.data.snap == nil {
		return
	}
	var tip string
	for _, b := range slices.Concat(a.data.snap.Local, a.data.snap.Remote) {
		if b.Name == e.Name {
			tip = b.Hash
			break
		}
	}
	for pos, idx := range a.data.visible {
		if a.data.shas[idx] == tip {
			a.selectVisible(pos)
			return
		}
	}
}

func (a *Controller) initBranchContextMenu() {
	menu := App.Menu(Tearoff(false))
	menu.AddCommand(Lbl("Checkout"), Command(func() {
		if e, ok := a.selectedBranch(); ok && !e.Remote {
			a.checkoutBranch(e.Name)
		}
	}))
	menu.AddCommand(Lbl("Merge into current branch"), Command(func() {
		if e, ok := a.selectedBranch(); ok && !e.Current {
			a.mergeBranch(e.Name)
		}
	}))
	menu.AddCommand(Lbl("Create tracking branch"), Command(func() {
		if e, ok := a.selectedBranch(); ok && e.Remote {
			a.trackRemoteBranch(e.Name)
		}
	}))
	menu.AddSeparator()
	menu.AddCommand(Lbl("Delete branch..."), Command(func() {
		if e, ok := a.selectedBranch(); ok && !e.Remote {
			a.deleteBranch(e.Name)
		}
	}))
	menu.AddCommand(Lbl("Copy branch name"), Command(func() {
		if e, ok := a.selectedBranch(); ok {
			ClipboardClear()
			ClipboardAppend(e.Name)
		}
	}))
	a.state.branches.menu = menu

	handler := func(e *Event) {
		idx := tkutil.Atoi(tkutil.EvalOrEmpty("%s nearest %d", a.ui.branchList, e.Y))
		a.ui.branchList.SelectionClear(0, END)
		a.ui.branchList.SelectionSet(idx)
		a.ui.branchList.Activate(idx)
		if _, ok := a.selectedBranch(); ok {
			Popup(menu.Window, e.XRoot, e.YRoot, nil)
		}
	}
	Bind(a.ui.branchList, "<Button-2>", Command(handler))
	Bind(a.ui.branchList, "<Button-3>", Command(handler))
}

func (a *Controller) promptBranchSwitch() {
	if a.data.snap == nil {
		return
	}
	if len(a.data.snap.Local) == 0 {
		MessageBox(
			Parent(App),
			Title("Switch Branch"),
			Icon("info"),
			Msg("This repository has no local branches."),
			Type("ok"),
		)
		return
	}
	a.showBranchSwitchDialog(buildBranchChoices(a.data.snap.Local))
}

func (a *Controller) showBranchSwitchDialog(all []branchChoice) {
	if a.state.branches.window != nil {
		Destroy(a.state.branches.window.Window)
		a.state.branches.window = nil
	}
	visible := all

	dialog := App.Toplevel()
	a.state.branches.window = dialog
	dialog.WmTitle("Switch Branch")
	WmTransient(dialog.Window, App)
	WmAttributes(dialog.Window, "-topmost", 1)

	frame := dialog.TFrame(Padding("12p"))
	Grid(frame, Row(0), Column(0), Sticky(NEWS))
	GridColumnConfigure(frame.Window, 0, Weight(1))
	GridRowConfigure(frame.Window, 2, Weight(1))

	current := a.repo.head
	if current == "" || current == "HEAD" {
		current = "detached HEAD"
	}
	Grid(frame.TLabel(Txt(fmt.Sprintf("Current: %s", current)), Anchor(W)), Row(0), Column(0), Sticky(WE), Pady("0 8p"))

	filter := frame.TEntry(Width(48), Textvariable(""))
	Grid(filter, Row(1), Column(0), Sticky(WE), Pady("0 8p"))

	listFrame := frame.TFrame()
	Grid(listFrame, Row(2), Column(0), Sticky(NEWS))
	GridColumnConfigure(listFrame.Window, 0, Weight(1))
	GridRowConfigure(listFrame.Window, 0, Weight(1))

	scroll := listFrame.TScrollbar()
	list := listFrame.Listbox(Exportselection(false), Height(12))
	list.Configure(Yscrollcommand(func(e *Event) { e.ScrollSet(scroll) }))
	Grid(list, Row(0), Column(0), Sticky(NEWS))
	Grid(scroll, Row(0), Column(1), Sticky(NS))
	scroll.Configure(Command(func(e *Event) { e.Yview(list) }))

	apply := func() {
		sel := list.Curselection()
		if len(sel) == 0 || sel[0] < 0 || sel[0] >= len(visible) {
			return
		}
		branch := visible[sel[0]]
		Destroy(dialog.Window)
		if !branch.isCurrent {
			a.checkoutBranch(branch.name)
		}
	}

	buttons := frame.TFrame()
	Grid(buttons, Row(3), Column(0), Sticky(E), Pady("8p 0"))
	Grid(buttons.TButton(Txt("Cancel"), Command(func() { Destroy(dialog.Window) })), Row(0), Column(0), Sticky(E), Padx("0 8p"))
	Grid(buttons.TButton(Txt("Switch"), Command(apply)), Row(0), Column(1), Sticky(E))

	render := func() {
		list.Delete(0, END)
		for _, c := range visible {
			list.Insert(END, c.display)
		}
		if len(visible) == 0 {
			return
		}
		list.SelectionClear(0, END)
		list.SelectionSet(0)
		list.Activate(0)
		list.See(0)
	}
	render()

	Bind(filter, "<KeyRelease>", Command(func() {
		visible = filterBranchChoices(all, filter.Textvariable())
		render()
	}))
	Bind(list, "<Double-Button-1>", Command(apply))
	Bind(dialog.Window, "<KeyPress-Escape>", Command(func() { Destroy(dialog.Window) }))
	Bind(dialog.Window, "<KeyPress-Return>", Command(apply))
	Bind(dialog.Window, "<Destroy>", Command(func() {
		if a.state.branches.window == dialog {
			a.state.branches.window = nil
		}
	}))

	if _, err := tkutil.Eval("focus %s", filter); err != nil {
		slog.Debug("focus branch filter", slog.Any("error", err))
	}
	dialog.Center()
}
