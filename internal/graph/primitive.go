package graph

// Kind identifies the shape a Primitive draws.
type Kind uint8

const (
	KindPoint Kind = iota
	KindVerticalLine
	KindUpperConnector
	KindLowerConnector
	KindCheckoutCurve
	KindMergeCurve
	KindHorizontalBridge
)

func (k Kind) String() string {
	switch k {
	case KindPoint:
		return "point"
	case KindVerticalLine:
		return "vertical"
	case KindUpperConnector:
		return "upper"
	case KindLowerConnector:
		return "lower"
	case KindCheckoutCurve:
		return "checkout"
	case KindMergeCurve:
		return "merge"
	case KindHorizontalBridge:
		return "bridge"
	default:
		return "unknown"
	}
}

// Primitive is one drawing instruction in lane coordinates.
//
// RowOffset is relative to the row that emitted the primitive: 0 is that row,
// -1 the row above it. Curves and bridges run from Lane to ToLane; every other
// kind has ToLane == Lane.
type Primitive struct {
	Kind      Kind
	Lane      int
	ToLane    int
	RowOffset int
	Color     Color
}

// Row holds the primitives emitted while processing one commit.
type Row struct {
	SHA        string
	Lane       int
	Primitives []Primitive
}

// PendingMerge describes a merge edge whose source commit was not reached.
type PendingMerge struct {
	FromSHA  string
	ToLane   int
	MergeRow int
}

// Result is the output of one layout pass. Unresolved holds the merges whose
// source commit never appeared.
type Result struct {
	Rows       []Row
	Unresolved []PendingMerge
	MaxLanes   int
}

// Place buckets the primitives of rows by the absolute row they are drawn on.
// Primitives pointing above the first row are dropped.
func Place(rows []Row) [][]Primitive {
	placed := make([][]Primitive, len(rows))
	for i, row := range rows {
		for _, p := range row.Primitives {
			target := i + p.RowOffset
			if target < 0 || target >= len(rows) {
				continue
			}
			p.RowOffset = 0
			placed[target] = append(placed[target], p)
		}
	}
	return placed
}
