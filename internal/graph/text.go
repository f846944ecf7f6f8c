package graph

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// TextRenderer draws rows as git-log style ASCII art, two columns per lane.
type TextRenderer struct {
	// MaxLanes caps the number of lanes drawn; 0 draws all of them.
	MaxLanes int
	// Color wraps every glyph in a 24-bit ANSI color escape.
	Color bool
}

type cell struct {
	ch    byte
	color RGB
}

// glyph priority: higher wins when two primitives share a cell.
func rank(ch byte) int {
	switch ch {
	case '*':
		return 4
	case '/', '\\':
		return 3
	case '|':
		return 2
	case '_':
		return 1
	default:
		return 0
	}
}

// Lines returns the graph column of every row without labels or colors.
func (r TextRenderer) Lines(rows []Row) []string {
	placed := Place(rows)
	width := r.width(placed)
	out := make([]string, len(placed))
	for i, prims := range placed {
		cells := r.rasterize(prims, width)
		var b strings.Builder
		for _, c := range cells {
			b.WriteByte(c.ch)
		}
		out[i] = strings.TrimRight(b.String(), " ")
	}
	return out
}

// Render writes one line per row: the graph padded to a common width, then
// the label for that row when label is not nil.
func (r TextRenderer) Render(w io.Writer, rows []Row, label func(i int) string) error {
	placed := Place(rows)
	width := r.width(placed)
	bw := bufio.NewWriter(w)
	for i, prims := range placed {
		for _, c := range r.rasterize(prims, width) {
			if r.Color && c.ch != ' ' {
				fmt.Fprintf(bw, "\x1b[38;2;%d;%d;%dm%c\x1b[0m", c.color.R, c.color.G, c.color.B, c.ch)
				continue
			}
			bw.WriteByte(c.ch)
		}
		if label != nil {
			if text := label(i); text != "" {
				bw.WriteString(" ")
				bw.WriteString(text)
			}
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func (r TextRenderer) width(placed [][]Primitive) int {
	lanes := 0
	for _, prims := range placed {
		for _, p := range prims {
			lanes = max(lanes, p.Lane+1, p.ToLane+1)
		}
	}
	if r.MaxLanes > 0 {
		lanes = min(lanes, r.MaxLanes)
	}
	return max(1, 2*lanes)
}

func (r TextRenderer) rasterize(prims []Primitive, width int) []cell {
	cells := make([]cell, width)
	for i := range cells {
		cells[i].ch = ' '
	}
	put := func(col int, ch byte, color RGB) {
		if col < 0 || col >= width {
			return
		}
		if rank(ch) > rank(cells[col].ch) {
			cells[col] = cell{ch: ch, color: color}
		}
	}
	for _, p := range prims {
		col := 2 * p.Lane
		switch p.Kind {
		case KindPoint:
			put(col, '*', p.Color.RGB)
		case KindVerticalLine, KindUpperConnector, KindLowerConnector:
			put(col, '|', p.Color.RGB)
		case KindCheckoutCurve, KindMergeCurve:
			switch {
			case p.ToLane < p.Lane && p.Kind == KindCheckoutCurve:
				put(col-1, '/', p.Color.RGB)
			case p.ToLane > p.Lane && p.Kind == KindCheckoutCurve:
				put(col+1, '\\', p.Color.RGB)
			case p.ToLane < p.Lane:
				put(col-1, '\\', p.Color.RGB)
			case p.ToLane > p.Lane:
				put(col+1, '/', p.Color.RGB)
			default:
				put(col, '|', p.Color.RGB)
			}
		case KindHorizontalBridge:
			lo, hi := min(p.Lane, p.ToLane), max(p.Lane, p.ToLane)
			for c := 2*lo + 1; c <= 2*hi; c++ {
				put(c, '_', p.Color.RGB)
			}
		}
	}
	return cells
}
