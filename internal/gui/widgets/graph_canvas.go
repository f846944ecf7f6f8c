package widgets

import (
	"fmt"
	"strconv"
	"strings"

	. "modernc.org/tk9.0"

	"github.com/gitpilot-go/gitpilot/internal/graph"
	"github.com/gitpilot-go/gitpilot/internal/gui/tkutil"
)

const (
	graphCanvasLineWidth = 2

	graphCanvasLabelPadX  = 4
	graphCanvasLabelPadY  = 2
	graphCanvasLabelGap   = 6
	graphCanvasConnectorW = 1

	graphCanvasLabelFont = "TkDefaultFont 9"
)

// Label is a branch badge drawn next to a commit dot.
type Label struct {
	Text   string
	Color  string
	Head   bool
	Remote bool
}

// View is what the overlay draws. Tree item ids are indices into Rows.
type View struct {
	Rows   [][]graph.Primitive
	Labels map[int][]Label
	Dark   bool
}

// GraphCanvas draws the commit graph on a canvas placed over the graph
// column of a treeview, so the graph scrolls with the rows.
type GraphCanvas struct {
	Metrics Metrics

	redrawPending bool
	overlay       graphOverlayState
}

type graphOverlayState struct {
	ready bool
	width int
	x     int
	y     int
	h     int
	bg    string
}

func NewGraphCanvas() *GraphCanvas {
	return &GraphCanvas{Metrics: DefaultMetrics}
}

// ScheduleRedraw coalesces redraw requests into one idle callback.
func (g *GraphCanvas) ScheduleRedraw(redraw func()) {
	if g.redrawPending {
		return
	}
	g.redrawPending = true
	PostEvent(func() {
		g.redrawPending = false
		if redraw != nil {
			redraw()
		}
	}, false)
}

func (g *GraphCanvas) Redraw(canvas *CanvasWidget, treeView *TTreeviewWidget, view View) {
	if canvas == nil || treeView == nil {
		return
	}
	g.ensureOverlay(canvas, treeView)
	canvas.Delete("all")

	treePath := treeView.String()
	if treePath == "" {
		return
	}
	treeHeight := tkutil.Atoi(tkutil.EvalOrEmpty("winfo height %s", treePath))
	first := firstVisibleTreeItem(treePath, treeHeight)
	if first == "" || treeHeight <= 1 {
		return
	}
	// Prefer the Treeview column width since the overlay canvas size may lag behind `place`.
	canvasWidth := tkutil.Atoi(tkutil.EvalOrEmpty("%s column graph -width", treePath))
	if canvasWidth <= 0 {
		canvasWidth = tkutil.Atoi(tkutil.EvalOrEmpty("winfo width %s", canvas))
	}
	if canvasWidth <= 0 {
		canvasWidth = 120
	}
	maxLanes := g.Metrics.MaxLanes(canvasWidth)
	if maxLanes <= 0 {
		return
	}

	selected := map[string]struct{}{}
	for _, id := range treeView.Selection("") {
		selected[id] = struct{}{}
	}

	for item := first; item != ""; item = strings.TrimSpace(tkutil.EvalOrEmpty("%s next {%s}", treePath, item)) {
		// Use the first data column (#1). The tree column (#0) is hidden with `show=headings`.
		bbox := strings.Fields(tkutil.EvalOrEmpty("%s bbox {%s} #1", treePath, item))
		if len(bbox) < 4 {
			break
		}
		y := tkutil.Atoi(bbox[1]) - g.overlay.y
		h := tkutil.Atoi(bbox[3])
		if g.overlay.h > 0 && y > g.overlay.h {
			break
		}
		idx, err := strconv.Atoi(item)
		if err != nil || idx < 0 || idx >= len(view.Rows) {
			continue
		}
		_, isSelected := selected[item]
		g.drawRow(canvas, view, idx, y, h, maxLanes, canvasWidth, isSelected)
	}
}

func (g *GraphCanvas) drawRow(canvas *CanvasWidget, view View, idx, yTop, height, maxLanes, canvasWidth int, selected bool) {
	if selected {
		fill := "#cfe7ff"
		if view.Dark {
			fill = "#253446"
		}
		canvas.CreateRectangle(0, yTop, canvasWidth, yTop+height, Fill(fill), Width(0))
	}
	shapes := g.Metrics.RowShapes(view.Rows[idx], yTop, height, maxLanes)
	for _, s := range shapes.Segments {
		canvas.CreateLine(s.X1, s.Y1, s.X2, s.Y2, Width(graphCanvasLineWidth), Fill(s.Color))
	}
	labels := view.Labels[idx]
	head := false
	for _, l := range labels {
		head = head || l.Head
	}
	for _, d := range shapes.Dots {
		fill := "white"
		if view.Dark {
			fill = "#1e1e1e"
		}
		if head {
			fill = d.Color
		}
		canvas.CreateOval(d.X-d.Radius, d.Y-d.Radius, d.X+d.Radius, d.Y+d.Radius,
			Fill(fill), Outline(d.Color), Width(graphCanvasLineWidth))
	}
	if len(shapes.Dots) > 0 && len(labels) > 0 {
		d := shapes.Dots[0]
		// Badges start after the rightmost lane drawn on this row.
		right := d.X + d.Radius
		for _, s := range shapes.Segments {
			right = max(right, s.X1, s.X2)
		}
		drawGraphLabels(canvas, view.Dark, labels, d, right, canvasWidth)
	}
}

func (g *GraphCanvas) ensureOverlay(canvas *CanvasWidget, treeView *TTreeviewWidget) {
	canvasPath := canvas.String()
	treePath := treeView.String()
	if canvasPath == "" || treePath == "" {
		return
	}

	bg := strings.TrimSpace(tkutil.EvalOrEmpty("ttk::style lookup Treeview -background"))
	if bg == "" {
		bg = strings.TrimSpace(tkutil.EvalOrEmpty("ttk::style lookup Treeview -fieldbackground"))
	}
	treeHeight := tkutil.Atoi(tkutil.EvalOrEmpty("winfo height %s", treePath))
	treeWidth := tkutil.Atoi(tkutil.EvalOrEmpty("winfo width %s", treePath))
	xOffset, yOffset, colWidth := graphContentCellGeometry(treePath, treeHeight)
	if colWidth <= 0 {
		colWidth = tkutil.Atoi(tkutil.EvalOrEmpty("%s column graph -width", treePath))
	}
	if colWidth <= 0 {
		colWidth = 120
	}
	xOffset = max(xOffset, 1)
	if treeWidth > 0 {
		// Leave the left and right borders visible.
		colWidth = min(colWidth, max(0, treeWidth-xOffset-1))
	}
	canvasHeight := max(0, treeHeight-yOffset-1)

	st := &g.overlay
	if st.ready && st.width == colWidth && st.x == xOffset && st.y == yOffset && st.h == canvasHeight && st.bg == bg {
		return
	}
	st.width, st.x, st.y, st.h, st.bg = colWidth, xOffset, yOffset, canvasHeight, bg
	if bg != "" {
		canvas.Configure(Background(bg))
	}
	// Cover the content area only, so the column header stays clickable.
	tkutil.EvalOrEmpty("place %s -in %s -x %d -y %d -width %d -height %d", canvasPath, treePath, xOffset, yOffset, colWidth, canvasHeight)
	tkutil.EvalOrEmpty("raise %s", canvasPath)

	if st.ready {
		return
	}
	st.ready = true
	for _, ev := range []string{"<Button-1>", "<Double-Button-1>", "<Button-2>", "<Button-3>", "<Button-4>", "<Button-5>", "<MouseWheel>"} {
		tkutil.EvalOrEmpty("bind %s %s {%s}", canvasPath, ev, forwardScript(treePath, ev))
	}
}

// forwardScript re-targets a canvas event at the treeview underneath,
// translating canvas coordinates to treeview coordinates.
func forwardScript(treePath, event string) string {
	extra := ""
	if event == "<MouseWheel>" {
		extra = " -delta %D"
	}
	return fmt.Sprintf(`
		set x [expr {%%x + [winfo rootx %%W] - [winfo rootx %[1]s]}]
		set y [expr {%%y + [winfo rooty %%W] - [winfo rooty %[1]s]}]
		focus %[1]s
		event generate %[1]s %[2]s -x $x -y $y%[3]s
	`, treePath, event, extra)
}

func firstVisibleTreeItem(treePath string, treeHeight int) string {
	if treePath == "" || treeHeight <= 1 {
		return ""
	}
	probeLimit := min(treeHeight-1, 200)
	for y := 1; y <= probeLimit; y++ {
		switch strings.TrimSpace(tkutil.EvalOrEmpty("%s identify region 5 %d", treePath, y)) {
		case "cell", "tree":
		default:
			continue
		}
		if item := strings.TrimSpace(tkutil.EvalOrEmpty("%s identify item 5 %d", treePath, y)); item != "" {
			return item
		}
	}
	return ""
}

func graphContentCellGeometry(treePath string, treeHeight int) (xOffset int, yOffset int, width int) {
	first := firstVisibleTreeItem(treePath, treeHeight)
	if first == "" {
		return 0, 0, 0
	}
	bbox := strings.Fields(tkutil.EvalOrEmpty("%s bbox {%s} #1", treePath, first))
	if len(bbox) < 4 {
		return 0, 0, 0
	}
	return tkutil.Atoi(bbox[0]), tkutil.Atoi(bbox[1]), tkutil.Atoi(bbox[2])
}

type graphLabelStyle struct {
	fill string
	out  string
	text string
}

func drawGraphLabels(canvas *CanvasWidget, dark bool, labels []Label, node Dot, right, canvasWidth int) {
	canvasPath := canvas.String()
	x := right + graphCanvasLabelGap
	connected := false
	for _, label := range labels {
		if strings.TrimSpace(label.Text) == "" {
			continue
		}
		if x >= canvasWidth-graphCanvasLabelGap {
			break
		}
		style := graphLabelStyleFor(dark, label)
		textID := canvas.CreateText(x+graphCanvasLabelPadX, node.Y, Anchor(W), Txt(label.Text),
			Font(graphCanvasLabelFont), Fill(style.text))
		bbox := canvas.Bbox(textID)
		if len(bbox) < 4 {
			continue
		}
		x1 := tkutil.Atoi(bbox[0]) - graphCanvasLabelPadX
		y1 := tkutil.Atoi(bbox[1]) - graphCanvasLabelPadY
		x2 := tkutil.Atoi(bbox[2]) + graphCanvasLabelPadX
		y2 := tkutil.Atoi(bbox[3]) + graphCanvasLabelPadY
		rectID := canvas.CreateRectangle(x1, y1, min(x2, canvasWidth), y2,
			Fill(style.fill), Outline(style.out), Width(1))
		tkutil.EvalOrEmpty("%s lower %s %s", canvasPath, rectID, textID)
		if !connected && x1 > node.X+node.Radius {
			connected = true
			canvas.CreateLine(node.X+node.Radius, node.Y, x1, node.Y, Width(graphCanvasConnectorW), Fill(style.out))
		}
		x = x2 + graphCanvasLabelGap
	}
}

// graphLabelStyleFor fills local branch badges with the branch color, and
// draws remote ones as an outline in it.
func graphLabelStyleFor(dark bool, label Label) graphLabelStyle {
	color := label.Color
	if color == "" {
		color = "#555555"
	}
	if label.Remote {
		if dark {
			return graphLabelStyle{fill: "#2a2a2a", out: color, text: "#eaeaea"}
		}
		return graphLabelStyle{fill: "#f4f4f4", out: color, text: "#111111"}
	}
	style := graphLabelStyle{fill: color, out: color, text: "#ffffff"}
	if label.Head {
		style.out = "#ffd75e"
		if dark {
			style.out = "#b58900"
		}
	}
	return style
}
