package graph

import (
	"maps"
	"math/rand/v2"
	"sync"
)

// BranchTemplate is the set of branch badge colors handed out per session.
var BranchTemplate = []RGB{
	{174, 2, 37},
	{159, 52, 5},
	{42, 52, 149},
	{1, 107, 49},
	{165, 16, 20},
	{125, 6, 121},
	{83, 39, 139},
	{155, 0, 65},
	{3, 106, 92},
	{2, 89, 140},
	{178, 1, 1},
	{204, 102, 0},
}

// BranchPalette assigns colors to branch names and remembers them for the
// lifetime of the palette, so refreshes keep the graph colors stable.
// It is safe for concurrent use.
type BranchPalette struct {
	mu        sync.Mutex
	order     []RGB
	next      int
	assigned  map[string]RGB
	overrides map[string]RGB
}

// NewBranchPalette shuffles the template with seed. A zero seed picks a
// random order, matching the per-session colors of the desktop client.
func NewBranchPalette(seed uint64, overrides map[string]RGB) *BranchPalette {
	if seed == 0 {
		seed = rand.Uint64()
	}
	order := append([]RGB(nil), BranchTemplate...)
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	p := &BranchPalette{
		order:     order,
		assigned:  map[string]RGB{},
		overrides: map[string]RGB{},
	}
	maps.Copy(p.overrides, overrides)
	return p
}

// Assign gives every name in names a color, in order, skipping names that
// already have one.
func (p *BranchPalette) Assign(names ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, name := range names {
		p.colorLocked(name)
	}
}

// BranchColor implements ColorResolver. Names never passed to Assign are
// reported as unknown.
func (p *BranchPalette) BranchColor(name string) (RGB, bool) {
	if name == "" {
		return RGB{}, false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.overrides[name]; ok {
		return c, true
	}
	c, ok := p.assigned[name]
	return c, ok
}

func (p *BranchPalette) colorLocked(name string) RGB {
	if c, ok := p.overrides[name]; ok {
		return c
	}
	if c, ok := p.assigned[name]; ok {
		return c
	}
	c := p.order[p.next%len(p.order)]
	p.next++
	p.assigned[name] = c
	return c
}

// Snapshot returns a copy of every known branch color.
func (p *BranchPalette) Snapshot() map[string]RGB {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]RGB, len(p.assigned)+len(p.overrides))
	maps.Copy(out, p.assigned)
	maps.Copy(out, p.overrides)
	return out
}
