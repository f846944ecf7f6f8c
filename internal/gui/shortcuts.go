package gui

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/gitpilot-go/gitpilot/internal/gui/tkutil"

	. "modernc.org/tk9.0"
)

func (a *Controller) bindShortcuts() {
	if a.ui.treeView == nil {
		return
	}
	for _, sc := range a.shortcutBindings() {
		if sc.handler == nil {
			continue
		}
		handler := sc.handler
		if sc.navigation {
			handler = func() {
				if a.inputHasFocus() {
					return
				}
				sc.handler()
			}
		}
		for _, seq := range sc.sequences {
			if seq != "" {
				Bind(App, seq, Command(handler))
			}
		}
	}
}

type shortcutBinding struct {
	sequences   []string
	display     string
	description string
	category    string
	// navigation bindings are single keys and are ignored while typing.
	navigation bool
	handler    func()
}

func (a *Controller) shortcutBindings() []shortcutBinding {
	return []shortcutBinding{
		{
			category:    "Commit list",
			display:     "p / k",
			description: "Move up one commit",
			sequences:   []string{"<KeyPress-p>", "<KeyPress-k>"},
			navigation:  true,
			handler:     func() { a.moveSelection(-1) },
		},
		{
			category:    "Commit list",
			display:     "n / j",
			description: "Move down one commit",
			sequences:   []string{"<KeyPress-n>", "<KeyPress-j>"},
			navigation:  true,
			handler:     func() { a.moveSelection(1) },
		},
		{
			category:    "Commit list",
			display:     "Home",
			description: "Jump to the first commit",
			sequences:   []string{"<KeyPress-Home>"},
			navigation:  true,
			handler:     func() { a.selectVisible(0) },
		},
		{
			category:    "Commit list",
			display:     "End",
			description: "Jump to the last commit",
			sequences:   []string{"<KeyPress-End>"},
			navigation:  true,
			handler:     func() { a.selectVisible(len(a.data.visible) - 1) },
		},
		{
			category:    "Commit list",
			display:     "Ctrl/Cmd + Page Up",
			description: "Scroll commit list up a page",
			sequences:   []string{"<Control-Prior>", "<Command-Prior>"},
			navigation:  true,
			handler:     func() { a.scrollTree(-1, "pages") },
		},
		{
			category:    "Commit list",
			display:     "Ctrl/Cmd + Page Down",
			description: "Scroll commit list down a page",
			sequences:   []string{"<Control-Next>", "<Command-Next>"},
			navigation:  true,
			handler:     func() { a.scrollTree(1, "pages") },
		},
		{
			category:    "Diff view",
			display:     "b / Backspace",
			description: "Scroll diff up one page",
			sequences:   []string{"<KeyPress-BackSpace>", "<KeyPress-b>", "<KeyPress-B>"},
			navigation:  true,
			handler:     func() { a.scrollDetail(-1, "pages") },
		},
		{
			category:    "Diff view",
			display:     "Space",
			description: "Scroll diff down one page",
			sequences:   []string{"<KeyPress-space>"},
			navigation:  true,
			handler:     func() { a.scrollDetail(1, "pages") },
		},
		{
			category:    "Diff view",
			display:     "U",
			description: "Scroll diff up 18 lines",
			sequences:   []string{"<KeyPress-u>", "<KeyPress-U>"},
			navigation:  true,
			handler:     func() { a.scrollDetail(-18, "units") },
		},
		{
			category:    "Diff view",
			display:     "D",
			description: "Scroll diff down 18 lines",
			sequences:   []string{"<KeyPress-d>", "<KeyPress-D>"},
			navigation:  true,
			handler:     func() { a.scrollDetail(18, "units") },
		},
		{
			category:    "Repository",
			display:     "Ctrl+Enter",
			description: "Commit staged changes",
			sequences:   []string{"<Control-KeyPress-Return>"},
			handler:     a.showCommitDialog,
		},
		{
			category:    "Repository",
			display:     "Ctrl+B",
			description: "Switch branch",
			sequences:   []string{"<Control-KeyPress-b>"},
			handler:     a.promptBranchSwitch,
		},
		{
			category:    "Repository",
			display:     "Ctrl+Shift+B",
			description: "Create a branch",
			sequences:   []string{"<Control-KeyPress-B>"},
			handler:     a.showNewBranchDialog,
		},
		{
			category:    "General",
			display:     "/",
			description: "Focus the filter box",
			sequences:   []string{"<KeyPress-slash>"},
			navigation:  true,
			handler:     a.focusFilterEntry,
		},
		{
			category:    "General",
			display:     "Escape",
			description: "Leave the filter box",
			sequences:   []string{"<KeyPress-Escape>"},
			handler:     a.blurFilterEntry,
		},
		{
			category:    "General",
			display:     "F5",
			description: "Reload the repository",
			sequences:   []string{"<F5>"},
			handler:     func() { a.refreshAsync("manual") },
		},
		{
			category:    "General",
			display:     "F1",
			description: "Show shortcut list",
			sequences:   []string{"<F1>"},
			handler:     a.showShortcutsDialog,
		},
		{
			category:    "General",
			display:     "Ctrl+Q",
			description: "Quit gitpilot",
			sequences:   []string{"<Control-KeyPress-q>"},
			handler:     func() { Destroy(App) },
		},
	}
}

// inputHasFocus reports whether a text input owns the keyboard, so single
// key shortcuts must not fire.
func (a *Controller) inputHasFocus() bool {
	focus := Focus()
	if focus == "" || (a.ui.diffDetail != nil && focus == a.ui.diffDetail.String()) {
		return false
	}
	switch tkutil.EvalOrEmpty("winfo class %s", focus) {
	case "TEntry", "Entry", "Text":
		return true
	}
	return false
}

func (a *Controller) showShortcutsDialog() {
	if a.ui.shortcutsWindow != nil {
		Destroy(a.ui.shortcutsWindow.Window)
		a.ui.shortcutsWindow = nil
	}
	dialog := App.Toplevel()
	a.ui.shortcutsWindow = dialog
	dialog.Window.WmTitle("Keyboard Shortcuts")
	WmTransient(dialog.Window, App)
	WmAttributes(dialog.Window, "-topmost", 1)

	frame := dialog.TFrame(Padding("12p"))
	Grid(frame, Row(0), Column(0), Sticky(NEWS))
	GridColumnConfigure(frame.Window, 0, Weight(1))
	GridRowConfigure(frame.Window, 1, Weight(1))

	Grid(frame.TLabel(Txt("Keyboard Shortcuts"), Anchor(W)), Row(0), Column(0), Sticky(W), Pady("0 8p"))

	text := frame.Text(Width(62), Height(22), Wrap(WORD), Exportselection(false))
	text.Insert("1.0", formatShortcutsHelpText(a.shortcutBindings()))
	text.Configure(State("disabled"))
	Grid(text, Row(1), Column(0), Sticky(NEWS))

	closeBtn := frame.TButton(Txt("Close"), Command(func() { Destroy(dialog.Window) }))
	Grid(closeBtn, Row(2), Column(0), Sticky(E), Pady("8p 0"))

	Bind(dialog.Window, "<KeyPress-Escape>", Command(func() { Destroy(dialog.Window) }))
	Bind(dialog.Window, "<Destroy>", Command(func() {
		if a.ui.shortcutsWindow == dialog {
			a.ui.shortcutsWindow = nil
		}
	}))
	dialog.Window.Center()
}

func (a *Controller) moveSelection(delta int) {
	if len(a.data.visible) == 0 {
		return
	}
	pos := a.currentVisiblePosition() + delta
	a.selectVisible(max(0, min(pos, len(a.data.visible)-1)))
}

func (a *Controller) scrollTree(delta int, unit string) {
	if a.ui.treeView != nil {
		scrollWidget(a.ui.treeView.String(), delta, unit)
	}
}

func (a *Controller) scrollDetail(delta int, unit string) {
	if a.ui.diffDetail != nil {
		scrollWidget(a.ui.diffDetail.String(), delta, unit)
	}
}

func scrollWidget(path string, delta int, unit string) {
	if delta == 0 {
		return
	}
	if _, err := tkutil.Eval("%s yview scroll %d %s", path, delta, unit); err != nil {
		slog.Error("scroll", slog.String("widget", path), slog.Any("error", err))
	}
}

func (a *Controller) focusFilterEntry() {
	if a.ui.filterEntry == nil {
		return
	}
	for _, script := range []string{"focus %s", "%s selection range 0 end", "%s icursor end"} {
		if _, err := tkutil.Eval(script, a.ui.filterEntry); err != nil {
			slog.Error("focus filter", slog.Any("error", err))
			return
		}
	}
}

func (a *Controller) blurFilterEntry() {
	if a.ui.filterEntry == nil || Focus() != a.ui.filterEntry.String() {
		return
	}
	if _, err := tkutil.Eval("focus %s", a.ui.treeView); err != nil {
		slog.Error("blur filter", slog.Any("error", err))
	}
}

// formatShortcutsHelpText groups bindings by category in declaration order.
func formatShortcutsHelpText(bindings []shortcutBinding) string {
	var b strings.Builder
	currentCategory := ""
	for _, sc := range bindings {
		if sc.category == "" || sc.display == "" || sc.description == "" {
			continue
		}
		if sc.category != currentCategory {
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			currentCategory = sc.category
			b.WriteString(currentCategory)
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "  %-22s %s\n", sc.display, sc.description)
	}
	return strings.TrimRight(b.String(), "\n")
}
