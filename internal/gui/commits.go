package gui

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/gitpilot-go/gitpilot/internal/debounce"
	"github.com/gitpilot-go/gitpilot/internal/git"
	"github.com/gitpilot-go/gitpilot/internal/graph"
	"github.com/gitpilot-go/gitpilot/internal/gui/tkutil"
	"github.com/gitpilot-go/gitpilot/internal/gui/widgets"
	"github.com/gitpilot-go/gitpilot/internal/snapshot"

	. "modernc.org/tk9.0"
)

const wipRowTag = "wip"

type treeState struct {
	contextTargetID string
	graph           *widgets.GraphCanvas
}

type filterState struct {
	value string

	mu        sync.Mutex
	debouncer *debounce.Debouncer
	pending   string
}

type scrollState struct {
	start float64
	total int
}

type commitRow struct {
	ID     string
	Commit string
	Author string
	Date   string
	WIP    bool
}

func buildCommitRows(commits []git.Commit, indices []int) []commitRow {
	rows := make([]commitRow, 0, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= len(commits) {
			continue
		}
		c := commits[idx]
		msg, author, when := commitColumns(c)
		rows = append(rows, commitRow{
			ID:     strconv.Itoa(idx),
			Commit: msg,
			Author: author,
			Date:   when,
			WIP:    c.IsWorkInProgress,
		})
	}
	return rows
}

func commitColumns(c git.Commit) (msg, author, when string) {
	if c.IsWorkInProgress {
		return fmt.Sprintf("%s (%d changed files)", c.Summary, c.ChangedFiles), "", ""
	}
	summary := c.Summary
	if len(summary) > 80 {
		summary = summary[:77] + "..."
	}
	msg = fmt.Sprintf("%s  %s", c.ShortSHA(), summary)
	author = c.Author
	if c.AuthorEmail != "" {
		author = fmt.Sprintf("%s <%s>", c.Author, c.AuthorEmail)
	}
	when = c.When.Format("2006-01-02 15:04")
	return msg, author, when
}

// filterCommits returns the indices of commits matching query, which is
// compared case-insensitively against sha, message, author and branch.
func filterCommits(commits []git.Commit, query string) []int {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]int, 0, len(commits))
	for i, c := range commits {
		if q == "" || strings.Contains(commitSearchText(c), q) {
			out = append(out, i)
		}
	}
	return out
}

func commitSearchText(c git.Commit) string {
	return strings.ToLower(strings.Join([]string{c.SHA, c.Message, c.Summary, c.Author, c.AuthorEmail, c.BranchName}, "\n"))
}

// branchLabels maps commit indices to the badges of the branches pointing at
// them: local branches first, current one leading, then remote ones.
func branchLabels(snap *snapshot.Snapshot, palette *graph.BranchPalette) map[int][]widgets.Label {
	if snap == nil {
		return nil
	}
	index := make(map[string]int, len(snap.Commits))
	for i, c := range snap.Commits {
		if c.IsWorkInProgress {
			continue
		}
		if _, ok := index[c.SHA]; !ok {
			index[c.SHA] = i
		}
	}
	labels := map[int][]widgets.Label{}
	add := func(b git.Branch) {
		idx, ok := index[b.Hash]
		if !ok {
			return
		}
		label := widgets.Label{Text: b.Name, Head: b.IsCurrent, Remote: b.IsRemote}
		if palette != nil {
			if rgb, ok := palette.BranchColor(b.Name); ok {
				label.Color = rgb.Hex()
			}
		}
		if b.Ahead > 0 || b.Behind > 0 {
			label.Text = fmt.Sprintf("%s %s", b.Name, aheadBehind(b))
		}
		labels[idx] = append(labels[idx], label)
	}
	for _, b := range snap.Local {
		add(b)
	}
	for _, b := range snap.Remote {
		add(b)
	}
	return labels
}

func (a *Controller) commitAt(id string) (git.Commit, int, bool) {
	if a.data.snap == nil || id == "" {
		return git.Commit{}, 0, false
	}
	idx, err := strconv.Atoi(id)
	if err != nil || idx < 0 || idx >= len(a.data.snap.Commits) {
		return git.Commit{}, 0, false
	}
	return a.data.snap.Commits[idx], idx, true
}

func (a *Controller) applyFilter(raw string) {
	if a.ui.filterEntry != nil && a.ui.filterEntry.Textvariable() != raw {
		return
	}
	a.state.filter.value = raw
	a.applyFilterContent(raw)
}

func (a *Controller) applyFilterImmediate(raw string) {
	a.stopFilterDebounce()
	a.applyFilter(raw)
}

// applyFilterContent rebuilds the commit list from the current snapshot and
// restores the selection and scroll position.
func (a *Controller) applyFilterContent(raw string) {
	if a.data.snap == nil || a.ui.treeView == nil {
		return
	}
	commits := a.data.snap.Commits
	a.data.visible = filterCommits(commits, raw)

	a.storeScrollState()
	a.clearTreeRows()
	for _, row := range buildCommitRows(commits, a.data.visible) {
		vals := tkutil.List("", row.Commit, row.Author, row.Date)
		if row.WIP {
			a.ui.treeView.Insert("", "end", Id(row.ID), Values(vals), Tags(wipRowTag))
			continue
		}
		a.ui.treeView.Insert("", "end", Id(row.ID), Values(vals))
	}

	if len(a.data.visible) == 0 {
		if len(commits) == 0 {
			a.clearDetailText("Repository has no commits yet.")
		} else {
			a.clearDetailText("No commits match the current filter.")
		}
		a.setStatus(a.statusSummary())
		a.scheduleGraphCanvasRedraw()
		return
	}

	pos := a.visiblePosition(a.state.selection.Index(a.data.shas))
	if pos < 0 {
		pos = 0
	}
	a.selectVisible(pos)
	a.restoreScrollState()
	a.setStatus(a.statusSummary())
	a.scheduleGraphCanvasRedraw()
}

// visiblePosition converts a commit index into a row position of the
// filtered list, -1 when the commit is filtered out.
func (a *Controller) visiblePosition(idx int) int {
	if idx < 0 {
		return -1
	}
	for pos, v := range a.data.visible {
		if v == idx {
			return pos
		}
	}
	return -1
}

func (a *Controller) selectVisible(pos int) {
	if a.ui.treeView == nil || pos < 0 || pos >= len(a.data.visible) {
		return
	}
	id := strconv.Itoa(a.data.visible[pos])
	a.ui.treeView.Selection("set", id)
	a.ui.treeView.Focus(id)
	a.ui.treeView.See(id)
	a.showCommitDetails(a.data.visible[pos])
}

func (a *Controller) currentVisiblePosition() int {
	if a.ui.treeView == nil {
		return -1
	}
	sel := a.ui.treeView.Selection("")
	if len(sel) == 0 {
		return -1
	}
	_, idx, ok := a.commitAt(sel[0])
	if !ok {
		return -1
	}
	return a.visiblePosition(idx)
}

func (a *Controller) onTreeSelectionChanged() {
	if a.ui.treeView == nil {
		return
	}
	sel := a.ui.treeView.Selection("")
	if len(sel) == 0 {
		return
	}
	if _, idx, ok := a.commitAt(sel[0]); ok {
		a.showCommitDetails(idx)
	}
	a.scheduleGraphCanvasRedraw()
}

func (a *Controller) clearTreeRows() {
	if a.ui.treeView == nil {
		return
	}
	children := strings.Fields(tkutil.EvalOrEmpty("%s children {}", a.ui.treeView))
	if len(children) == 0 {
		return
	}
	tkutil.EvalOrEmpty("%s delete [list %s]", a.ui.treeView, strings.Join(children, " "))
}

func (a *Controller) scheduleGraphCanvasRedraw() {
	if a.ui.graphCanvas == nil || a.state.tree.graph == nil {
		return
	}
	a.state.tree.graph.ScheduleRedraw(a.redrawGraphCanvas)
}

func (a *Controller) redrawGraphCanvas() {
	rows := a.data.placed
	if a.cfg.maxLanes > 0 {
		rows = clipLanes(rows, a.cfg.maxLanes)
	}
	a.state.tree.graph.Redraw(a.ui.graphCanvas, a.ui.treeView, widgets.View{
		Rows:   rows,
		Labels: a.data.labels,
		Dark:   a.theme.palette.isDark(),
	})
}

// clipLanes drops primitives that start beyond maxLanes.
func clipLanes(rows [][]graph.Primitive, maxLanes int) [][]graph.Primitive {
	out := make([][]graph.Primitive, len(rows))
	for i, prims := range rows {
		for _, p := range prims {
			if p.Lane < maxLanes && (p.Kind == graph.KindHorizontalBridge || p.ToLane < maxLanes) {
				out[i] = append(out[i], p)
			}
		}
	}
	return out
}

func (a *Controller) statusSummary() string {
	total, visible := 0, len(a.data.visible)
	if a.data.snap != nil {
		total = len(a.data.snap.Commits)
	}
	head := a.repo.head
	if head == "" {
		head = "HEAD"
	}
	base := fmt.Sprintf("Showing %d/%d commits on %s in %s", visible, total, head, a.repo.path)
	if a.data.snap != nil && len(a.data.snap.Graph.Unresolved) > 0 {
		base += fmt.Sprintf(" (%d merges with unloaded parents)", len(a.data.snap.Graph.Unresolved))
	}
	filter := strings.TrimSpace(a.state.filter.value)
	if filter == "" {
		return base
	}
	return fmt.Sprintf("Filter %q: %s", filter, base)
}

func (a *Controller) copySelectedCommitReference() {
	id := a.state.tree.contextTargetID
	if id == "" && a.ui.treeView != nil {
		if sel := a.ui.treeView.Selection(""); len(sel) > 0 {
			id = sel[0]
		}
	}
	c, _, ok := a.commitAt(id)
	if !ok || c.IsWorkInProgress {
		return
	}
	ClipboardClear()
	ClipboardAppend(c.SHA)
	a.setStatus(fmt.Sprintf("Copied %s to clipboard.", c.SHA))
}

func (a *Controller) scheduleFilterApply(raw string) {
	if raw == "" {
		a.applyFilterImmediate("")
		return
	}
	slog.Debug("scheduleFilterApply", slog.String("value", raw))
	deb := func() *debounce.Debouncer {
		a.state.filter.mu.Lock()
		defer a.state.filter.mu.Unlock()
		a.state.filter.pending = raw
		return debounce.Ensure(&a.state.filter.debouncer, filterDebounceDelay, a.flushFilterDebounce)
	}()
	deb.Trigger()
}

func (a *Controller) flushFilterDebounce() {
	value := func() string {
		a.state.filter.mu.Lock()
		defer a.state.filter.mu.Unlock()
		val := a.state.filter.pending
		a.state.filter.pending = ""
		return val
	}()
	if value == "" {
		return
	}
	PostEvent(func() {
		a.applyFilter(value)
	}, false)
}

func (a *Controller) stopFilterDebounce() {
	a.state.filter.mu.Lock()
	defer a.state.filter.mu.Unlock()
	if deb := a.state.filter.debouncer; deb != nil {
		deb.Stop()
	}
	a.state.filter.debouncer = nil
	a.state.filter.pending = ""
}

func (a *Controller) storeScrollState() {
	a.state.scroll.total = a.treeChildCount()
	if a.state.scroll.total == 0 {
		return
	}
	if start, ok := tkutil.Fraction(tkutil.EvalOrEmpty("%s yview", a.ui.treeView)); ok {
		a.state.scroll.start = start
	}
}

func (a *Controller) restoreScrollState() {
	target, ok := a.state.scroll.restoreTarget(a.treeChildCount())
	if !ok {
		return
	}
	tkutil.EvalOrEmpty("%s yview moveto %f", a.ui.treeView, target)
}

func (a *Controller) treeChildCount() int {
	if a.ui.treeView == nil {
		return 0
	}
	return tkutil.Atoi(tkutil.EvalOrEmpty("llength [%s children {}]", a.ui.treeView))
}

func (s scrollState) restoreTarget(newTotal int) (float64, bool) {
	if s.start < 0 || s.total <= 0 || newTotal <= 0 {
		return 0, false
	}
	target := s.start * float64(s.total) / float64(newTotal)
	target = max(0.0, min(target, 1.0))
	return target, true
}
