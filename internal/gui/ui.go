package gui

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/gitpilot-go/gitpilot/internal/gui/tkutil"

	. "modernc.org/tk9.0"
)

type appWidgets struct {
	status          *TLabelWidget
	repoLabel       *TLabelWidget
	filterEntry     *TEntryWidget
	reloadButton    *TButtonWidget
	graphCanvas     *CanvasWidget
	treeView        *TTreeviewWidget
	treeContextMenu *MenuWidget
	diffDetail      *TextWidget
	diffFileList    *ListboxWidget
	branchList      *ListboxWidget
	shortcutsWindow *ToplevelWidget
}

func (a *Controller) buildUI() {
	GridColumnConfigure(App, 0, Weight(1))
	GridRowConfigure(App, 1, Weight(1))

	controls := App.TFrame(Padding("8p"))
	Grid(controls, Row(0), Column(0), Sticky(WE))
	GridColumnConfigure(controls.Window, 1, Weight(1))

	a.ui.repoLabel = controls.TLabel(Txt(repoLabelText(a.repo.path)), Anchor(W))
	Grid(a.ui.repoLabel, Row(0), Column(0), Columnspan(4), Sticky(W))

	Grid(controls.TLabel(Txt("Filter:"), Anchor(E)), Row(1), Column(0), Sticky(E))
	a.ui.filterEntry = controls.TEntry(Width(40), Textvariable(""))
	Grid(a.ui.filterEntry, Row(1), Column(1), Sticky(WE), Padx("4p"))
	Bind(a.ui.filterEntry, "<KeyRelease>", Command(func() {
		a.scheduleFilterApply(a.ui.filterEntry.Textvariable())
	}))
	Bind(a.ui.filterEntry, "<KeyPress-Return>", Command(func() {
		a.applyFilterImmediate(a.ui.filterEntry.Textvariable())
	}))

	clearBtn := controls.TButton(Txt("Clear"), Command(func() {
		a.ui.filterEntry.Configure(Textvariable(""))
		a.applyFilterImmediate("")
	}))
	Grid(clearBtn, Row(1), Column(2), Sticky(E), Padx("4p"))
	a.ui.reloadButton = controls.TButton(Txt("Reload"), Command(a.onReloadButton))
	Grid(a.ui.reloadButton, Row(1), Column(3), Sticky(E))

	outer := App.TPanedwindow(Orient(HORIZONTAL))
	Grid(outer, Row(1), Column(0), Sticky(NEWS), Padx("4p"), Pady("4p"))
	branchArea := outer.TFrame()
	mainArea := outer.TFrame()
	outer.Add(branchArea.Window)
	outer.Add(mainArea.Window)
	configurePane(outer, branchArea.Window, "-weight 1")
	configurePane(outer, mainArea.Window, "-weight 5")

	a.buildBranchPane(branchArea)

	GridRowConfigure(mainArea.Window, 0, Weight(1))
	GridColumnConfigure(mainArea.Window, 0, Weight(1))
	pane := mainArea.TPanedwindow(Orient(VERTICAL))
	Grid(pane, Row(0), Column(0), Sticky(NEWS))

	listArea := pane.TFrame()
	diffArea := pane.TFrame()
	pane.Add(listArea.Window)
	pane.Add(diffArea.Window)

	a.buildCommitList(listArea)
	a.buildDetailPane(diffArea)

	a.ui.status = App.TLabel(Anchor(W), Relief(SUNKEN), Padding("4p"))
	Grid(a.ui.status, Row(2), Column(0), Sticky(WE))

	a.clearDetailText("Select a commit to view its details.")
	a.initMenubar()
	a.bindShortcuts()
}

func repoLabelText(path string) string {
	return fmt.Sprintf("Repository: %s", path)
}

func configurePane(pane *TPanedwindowWidget, window *Window, options string) {
	if _, err := tkutil.Eval("%s pane %s %s", pane, window, options); err != nil {
		slog.Debug("configure pane", slog.String("options", options), slog.Any("error", err))
	}
}

func (a *Controller) buildBranchPane(area *TFrameWidget) {
	GridRowConfigure(area.Window, 1, Weight(1))
	GridColumnConfigure(area.Window, 0, Weight(1))
	Grid(area.TLabel(Txt("Branches"), Anchor(W)), Row(0), Column(0), Sticky(W), Pady("0 4p"))

	scroll := area.TScrollbar()
	a.ui.branchList = area.Listbox(Exportselection(false), Width(28))
	a.ui.branchList.Configure(Yscrollcommand(func(e *Event) { e.ScrollSet(scroll) }))
	Grid(a.ui.branchList, Row(1), Column(0), Sticky(NEWS))
	Grid(scroll, Row(1), Column(1), Sticky(NS))
	scroll.Configure(Command(func(e *Event) { e.Yview(a.ui.branchList) }))

	Bind(a.ui.branchList, "<<ListboxSelect>>", Command(a.showBranchCommit))
	Bind(a.ui.branchList, "<Double-Button-1>", Command(a.onBranchActivated))
	a.initBranchContextMenu()
}

func (a *Controller) buildCommitList(area *TFrameWidget) {
	GridRowConfigure(area.Window, 0, Weight(1))
	GridColumnConfigure(area.Window, 0, Weight(1))

	treeScroll := area.TScrollbar()
	a.ui.treeView = area.TTreeview(
		Show("headings"),
		Columns("graph commit author date"),
		Selectmode("browse"),
		Height(18),
		Yscrollcommand(func(e *Event) {
			e.ScrollSet(treeScroll)
			a.scheduleGraphCanvasRedraw()
		}),
	)
	a.ui.treeView.Column("graph", Anchor(W), Width(160))
	a.ui.treeView.Column("commit", Anchor(W), Width(420))
	a.ui.treeView.Column("author", Anchor(W), Width(260))
	a.ui.treeView.Column("date", Anchor(W), Width(140))
	a.ui.treeView.Heading("graph", Txt("Graph"))
	a.ui.treeView.Heading("commit", Txt("Commit"))
	a.ui.treeView.Heading("author", Txt("Author"))
	a.ui.treeView.Heading("date", Txt("Date"))
	a.ui.treeView.TagConfigure(wipRowTag, Background(a.theme.palette.WIPRow))
	Grid(a.ui.treeView, Row(0), Column(0), Sticky(NEWS))
	Grid(treeScroll, Row(0), Column(1), Sticky(NS))
	treeScroll.Configure(Command(func(e *Event) { e.Yview(a.ui.treeView) }))

	a.ui.graphCanvas = area.Canvas(Highlightthickness(0), Borderwidth(0))
	Bind(a.ui.treeView, "<Configure>", Command(a.scheduleGraphCanvasRedraw))
	Bind(a.ui.treeView, "<<TreeviewSelect>>", Command(a.onTreeSelectionChanged))
	a.initTreeContextMenu()
}

func (a *Controller) buildDetailPane(area *TFrameWidget) {
	GridRowConfigure(area.Window, 0, Weight(1))
	GridColumnConfigure(area.Window, 0, Weight(1))

	diffPane := area.TPanedwindow(Orient(HORIZONTAL))
	Grid(diffPane, Row(0), Column(0), Sticky(NEWS))

	textFrame := diffPane.TFrame()
	fileFrame := diffPane.TFrame()
	diffPane.Add(textFrame.Window)
	diffPane.Add(fileFrame.Window)
	configurePane(diffPane, textFrame.Window, "-weight 5")
	configurePane(diffPane, fileFrame.Window, "-weight 1")

	GridRowConfigure(fileFrame.Window, 0, Weight(1))
	GridColumnConfigure(fileFrame.Window, 0, Weight(1))
	GridRowConfigure(textFrame.Window, 0, Weight(1))
	GridColumnConfigure(textFrame.Window, 0, Weight(1))

	detailYScroll := textFrame.TScrollbar(Command(func(e *Event) { e.Yview(a.ui.diffDetail) }))
	detailXScroll := textFrame.TScrollbar(Orient(HORIZONTAL), Command(func(e *Event) { e.Xview(a.ui.diffDetail) }))
	a.ui.diffDetail = textFrame.Text(Wrap(NONE), Font(CourierFont(), 11), Exportselection(false), Tabs("1c"))
	a.ui.diffDetail.Configure(Yscrollcommand(func(e *Event) {
		e.ScrollSet(detailYScroll)
		a.onDiffScrolled()
	}))
	a.ui.diffDetail.Configure(Xscrollcommand(func(e *Event) { e.ScrollSet(detailXScroll) }))
	p := a.theme.palette
	a.ui.diffDetail.TagConfigure("diffAdd", Background(p.DiffAdd))
	a.ui.diffDetail.TagConfigure("diffDel", Background(p.DiffDel))
	a.ui.diffDetail.TagConfigure("diffHeader", Background(p.DiffHeader))
	Grid(a.ui.diffDetail, Row(0), Column(0), Sticky(NEWS))
	Grid(detailYScroll, Row(0), Column(1), Sticky(NS))
	Grid(detailXScroll, Row(1), Column(0), Sticky(WE))
	a.ui.diffDetail.Configure(State("disabled"))
	a.initDetailContextMenu()

	fileScroll := fileFrame.TScrollbar()
	a.ui.diffFileList = fileFrame.Listbox(Exportselection(false), Width(40))
	a.ui.diffFileList.Configure(Yscrollcommand(func(e *Event) { e.ScrollSet(fileScroll) }))
	Grid(a.ui.diffFileList, Row(0), Column(0), Sticky(NEWS))
	Grid(fileScroll, Row(0), Column(1), Sticky(NS))
	fileScroll.Configure(Command(func(e *Event) { e.Yview(a.ui.diffFileList) }))
	Bind(a.ui.diffFileList, "<<ListboxSelect>>", Command(a.onFileSelectionChanged))
	a.initFileContextMenu()
}

func (a *Controller) initTreeContextMenu() {
	menu := App.Menu(Tearoff(false))
	menu.AddCommand(Lbl("Copy commit reference"), Command(a.copySelectedCommitReference))
	menu.AddCommand(Lbl("New branch here..."), Command(a.showNewBranchDialog))
	a.ui.treeContextMenu = menu

	handler := func(e *Event) {
		item := strings.TrimSpace(a.ui.treeView.IdentifyItem(e.X, e.Y))
		if _, _, ok := a.commitAt(item); !ok {
			return
		}
		a.ui.treeView.Selection("set", item)
		a.ui.treeView.Focus(item)
		a.state.tree.contextTargetID = item
		Popup(menu.Window, e.XRoot, e.YRoot, nil)
	}
	Bind(a.ui.treeView, "<Button-2>", Command(handler))
	Bind(a.ui.treeView, "<Button-3>", Command(handler))
}

func (a *Controller) initDetailContextMenu() {
	menu := App.Menu(Tearoff(false))
	menu.AddCommand(Lbl("Copy"), Command(func() { a.copyDetailSelection(false) }))
	menu.AddCommand(Lbl("Copy without diff markers"), Command(func() { a.copyDetailSelection(true) }))
	handler := func(e *Event) {
		Popup(menu.Window, e.XRoot, e.YRoot, nil)
	}
	Bind(a.ui.diffDetail, "<Button-2>", Command(handler))
	Bind(a.ui.diffDetail, "<Button-3>", Command(handler))
}
