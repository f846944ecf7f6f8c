package graph

// Engine lays out commit rows into lanes.
type Engine struct {
	// Fallback colors lanes opened by commits without a known branch color,
	// indexed by lane. LightLanePalette is used when empty.
	Fallback []RGB
}

// Layout runs the default engine and returns one row per commit.
func Layout(commits []Commit, resolver ColorResolver) []Row {
	return Engine{}.Run(commits, resolver).Rows
}

// Commit is one row of layout input, newest first.
type Commit struct {
	SHA        string
	ParentSHAs []string
	BranchName string
}

type lane struct {
	sha     string
	parents []string
	color   Color
	retire  bool
}

func (l *lane) continuedBy(sha string) bool {
	return len(l.parents) > 0 && l.parents[0] == sha
}

type pendingMerge struct {
	fromSHA  string
	toLane   int
	rowsAway int
	mergeRow int
}

// foldState is the accumulator threaded through the commits of one pass.
type foldState struct {
	lanes    []lane
	pending  []pendingMerge
	fallback []RGB
	resolver ColorResolver
	maxLanes int
}

// Run processes commits newest first. State lives only for the duration of
// the call, so running twice over the same input yields the same rows.
func (e Engine) Run(commits []Commit, resolver ColorResolver) Result {
	fallback := e.Fallback
	if len(fallback) == 0 {
		fallback = LightLanePalette
	}
	st := &foldState{fallback: fallback, resolver: resolver}
	rows := make([]Row, 0, len(commits))
	for i, c := range commits {
		rows = append(rows, st.step(i, c))
	}
	res := Result{Rows: rows, MaxLanes: st.maxLanes}
	for _, pm := range st.pending {
		res.Unresolved = append(res.Unresolved, PendingMerge{FromSHA: pm.fromSHA, ToLane: pm.toLane, MergeRow: pm.mergeRow})
	}
	return res
}

func (s *foldState) step(index int, c Commit) Row {
	row := Row{SHA: c.SHA, Lane: -1}
	var color Color
	for i := range s.lanes {
		l := &s.lanes[i]
		if !l.continuedBy(c.SHA) {
			row.add(KindVerticalLine, i, i, 0, l.color)
			continue
		}
		if row.Lane == -1 {
			color = resolveColor(s.resolver, c.BranchName, l.color)
			row.add(KindUpperConnector, i, i, 0, color)
			row.add(KindPoint, i, i, 0, color)
			row.add(KindLowerConnector, i, i, 0, color)
			l.sha = c.SHA
			l.parents = c.ParentSHAs
			l.color = color
			row.Lane = i
			continue
		}
		// Another lane already continues into this commit: curve into it.
		row.add(KindCheckoutCurve, i, row.Lane, 0, l.color)
		if i-row.Lane > 1 {
			row.add(KindHorizontalBridge, row.Lane, i-1, 0, l.color)
		}
		l.retire = true
	}

	opened := row.Lane == -1
	if opened {
		row.Lane = len(s.lanes)
		color = s.newLaneColor(c.BranchName, row.Lane)
		s.lanes = append(s.lanes, lane{sha: c.SHA, parents: c.ParentSHAs, color: color})
		row.add(KindPoint, row.Lane, row.Lane, 0, color)
		row.add(KindLowerConnector, row.Lane, row.Lane, 0, color)
	}
	if n := len(s.lanes); n > s.maxLanes {
		s.maxLanes = n
	}

	s.resolveMerges(&row, c.SHA, color, opened)

	for i := range s.pending {
		s.pending[i].rowsAway++
	}
	for _, parent := range tail(c.ParentSHAs) {
		s.pending = append(s.pending, pendingMerge{fromSHA: parent, toLane: row.Lane, rowsAway: 1, mergeRow: index})
	}

	s.compact()
	return row
}

func (s *foldState) resolveMerges(row *Row, sha string, color Color, opened bool) {
	kept := s.pending[:0]
	connected := false
	for _, pm := range s.pending {
		if pm.fromSHA != sha {
			kept = append(kept, pm)
			continue
		}
		src, dst, k := row.Lane, pm.toLane, pm.rowsAway
		row.add(KindMergeCurve, src, dst, -k, color)
		if abs(src-dst) > 1 {
			row.add(KindHorizontalBridge, dst, towards(src, dst), -k, color)
		}
		for off := k - 1; off >= 1; off-- {
			row.add(KindVerticalLine, src, src, -off, color)
		}
		if opened && !connected {
			row.add(KindUpperConnector, src, src, 0, color)
			connected = true
		}
	}
	s.pending = kept
}

func (s *foldState) newLaneColor(branch string, index int) Color {
	if rgb, ok := lookupBranch(s.resolver, branch); ok {
		return Color{RGB: rgb, Source: ColorAssigned}
	}
	return Color{RGB: s.fallback[index%len(s.fallback)], Source: ColorFallback}
}

// compact drops lanes retired in the current row. It runs once per row, after
// all matches, so indices stay valid while the row is being processed.
func (s *foldState) compact() {
	live := s.lanes[:0]
	for _, l := range s.lanes {
		if !l.retire {
			live = append(live, l)
		}
	}
	clear(s.lanes[len(live):])
	s.lanes = live
}

func (r *Row) add(kind Kind, lane, to, offset int, color Color) {
	r.Primitives = append(r.Primitives, Primitive{Kind: kind, Lane: lane, ToLane: to, RowOffset: offset, Color: color})
}

// towards returns the lane next to from in the direction of to.
func towards(from, to int) int {
	switch {
	case to > from:
		return from + 1
	case to < from:
		return from - 1
	default:
		return from
	}
}

func tail(s []string) []string {
	if len(s) < 2 {
		return nil
	}
	return s[1:]
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
