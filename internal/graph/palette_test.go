package graph

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBranchPaletteStableAcrossAssign(t *testing.T) {
	t.Parallel()

	p := NewBranchPalette(42, nil)
	p.Assign("main", "feature")
	main, ok := p.BranchColor("main")
	require.True(t, ok)
	feature, ok := p.BranchColor("feature")
	require.True(t, ok)
	assert.NotEqual(t, main, feature)

	// A refresh re-assigns the same names plus a new one.
	p.Assign("feature", "main", "fix")
	again, _ := p.BranchColor("main")
	assert.Equal(t, main, again)
	again, _ = p.BranchColor("feature")
	assert.Equal(t, feature, again)
	_, ok = p.BranchColor("fix")
	assert.True(t, ok)
}

func TestBranchPaletteSeedDeterministic(t *testing.T) {
	t.Parallel()

	names := []string{"a", "b", "c", "d"}
	p1 := NewBranchPalette(99, nil)
	p2 := NewBranchPalette(99, nil)
	p1.Assign(names...)
	p2.Assign(names...)
	assert.Equal(t, p1.Snapshot(), p2.Snapshot())
}

func TestBranchPaletteUsesTemplate(t *testing.T) {
	t.Parallel()

	p := NewBranchPalette(3, nil)
	names := make([]string, len(BranchTemplate))
	for i := range names {
		names[i] = string(rune('a' + i))
	}
	p.Assign(names...)
	seen := map[RGB]bool{}
	for _, c := range p.Snapshot() {
		seen[c] = true
	}
	// One full cycle hands out every template color exactly once.
	assert.Len(t, seen, len(BranchTemplate))
	for _, c := range BranchTemplate {
		assert.True(t, seen[c], c.Hex())
	}
}

func TestBranchPaletteOverrides(t *testing.T) {
	t.Parallel()

	pinned := RGB{R: 0x12, G: 0x34, B: 0x56}
	p := NewBranchPalette(1, map[string]RGB{"main": pinned})
	got, ok := p.BranchColor("main")
	require.True(t, ok)
	assert.Equal(t, pinned, got)

	p.Assign("main")
	got, _ = p.BranchColor("main")
	assert.Equal(t, pinned, got)
}

func TestBranchPaletteUnknown(t *testing.T) {
	t.Parallel()

	p := NewBranchPalette(1, nil)
	_, ok := p.BranchColor("nope")
	assert.False(t, ok)
	_, ok = p.BranchColor("")
	assert.False(t, ok)
}

func TestBranchPaletteConcurrent(t *testing.T) {
	t.Parallel()

	p := NewBranchPalette(5, nil)
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Assign("main", string(rune('a'+i)))
			p.BranchColor("main")
		}()
	}
	wg.Wait()
	assert.Len(t, p.Snapshot(), 9)
}
