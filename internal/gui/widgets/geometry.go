package widgets

import (
	"math"

	"github.com/gitpilot-go/gitpilot/internal/graph"
)

// curveSteps is the number of straight segments a curve is sampled into.
const curveSteps = 6

// Metrics places lanes on the canvas.
type Metrics struct {
	LaneSpacing int
	Margin      int
}

var DefaultMetrics = Metrics{LaneSpacing: 12, Margin: 6}

type Segment struct {
	X1, Y1, X2, Y2 int
	Color          string
}

type Dot struct {
	X, Y, Radius int
	Color        string
}

// Shapes is everything drawn for one row. Dots go on top of segments.
type Shapes struct {
	Segments []Segment
	Dots     []Dot
}

// LaneX is the horizontal center of lane.
func (m Metrics) LaneX(lane int) int {
	return m.Margin + lane*m.LaneSpacing + m.LaneSpacing/2
}

// MaxLanes is how many lanes fit in a canvas of width pixels.
func (m Metrics) MaxLanes(width int) int {
	avail := width - 2*m.Margin
	if avail <= 0 || m.LaneSpacing <= 0 {
		return 0
	}
	return max(1, avail/m.LaneSpacing)
}

// Radius of the commit dot in a row of the given height.
func (m Metrics) Radius(height int) int {
	return min(m.LaneSpacing/2-1, max(2, height/3))
}

func rowMidY(yTop, height int) int {
	if height <= 0 {
		return yTop
	}
	return yTop + (height-1)/2
}

// RowShapes converts the primitives placed on one row into canvas shapes.
// Lanes at or beyond maxLanes are not drawn; bridges are clipped to it.
func (m Metrics) RowShapes(prims []graph.Primitive, yTop, height, maxLanes int) Shapes {
	var out Shapes
	if height <= 0 || maxLanes <= 0 {
		return out
	}
	top, mid, bottom := yTop, rowMidY(yTop, height), yTop+height
	visible := func(lane int) bool { return lane >= 0 && lane < maxLanes }
	line := func(x1, y1, x2, y2 int, color string) {
		out.Segments = append(out.Segments, Segment{X1: x1, Y1: y1, X2: x2, Y2: y2, Color: color})
	}

	for _, p := range prims {
		color := p.Color.Hex()
		x := m.LaneX(p.Lane)
		switch p.Kind {
		case graph.KindPoint:
			if visible(p.Lane) {
				out.Dots = append(out.Dots, Dot{X: x, Y: mid, Radius: m.Radius(height), Color: color})
			}
		case graph.KindVerticalLine:
			if visible(p.Lane) {
				line(x, top, x, bottom, color)
			}
		case graph.KindUpperConnector:
			if visible(p.Lane) {
				line(x, top, x, mid, color)
			}
		case graph.KindLowerConnector:
			if visible(p.Lane) {
				line(x, mid, x, bottom, color)
			}
		case graph.KindCheckoutCurve:
			// From the top of the retiring lane into the row's middle, next to
			// it; the bridge carries the rest of the way.
			end := curveEnd(p.Lane, p.ToLane)
			if visible(p.Lane) && visible(end) {
				out.Segments = append(out.Segments,
					bezier(x, top, x, mid, m.LaneX(end), mid, color)...)
			}
		case graph.KindMergeCurve:
			// From the middle of the merge row, next to the merge lane, down
			// into the source lane.
			start := curveEnd(p.Lane, p.ToLane)
			if visible(p.Lane) && visible(start) {
				out.Segments = append(out.Segments,
					bezier(m.LaneX(start), mid, x, mid, x, bottom, color)...)
			}
		case graph.KindHorizontalBridge:
			lo, hi := min(p.Lane, p.ToLane), max(p.Lane, p.ToLane)
			hi = min(hi, maxLanes-1)
			if lo < 0 || lo >= hi {
				continue
			}
			line(m.LaneX(lo), mid, m.LaneX(hi), mid, color)
		}
	}
	return out
}

// curveEnd is the lane a curve leaving from reaches within its own row: the
// target itself when adjacent, otherwise the neighbour of from.
func curveEnd(from, to int) int {
	switch {
	case to > from+1:
		return from + 1
	case to < from-1:
		return from - 1
	default:
		return to
	}
}

// bezier samples the quadratic curve p0 -> p2 with control point p1.
func bezier(x0, y0, x1, y1, x2, y2 int, color string) []Segment {
	if x0 == x2 {
		return []Segment{{X1: x0, Y1: y0, X2: x2, Y2: y2, Color: color}}
	}
	at := func(t float64, a, b, c int) int {
		u := 1 - t
		return int(math.Round(u*u*float64(a) + 2*u*t*float64(b) + t*t*float64(c)))
	}
	segs := make([]Segment, 0, curveSteps)
	px, py := x0, y0
	for i := 1; i <= curveSteps; i++ {
		t := float64(i) / curveSteps
		nx, ny := at(t, x0, x1, x2), at(t, y0, y1, y2)
		segs = append(segs, Segment{X1: px, Y1: py, X2: nx, Y2: ny, Color: color})
		px, py = nx, ny
	}
	return segs
}
