package preview

import (
	"sync"

	"github.com/flexprice/docforge/internal/asset"
	"github.com/flexprice/docforge/internal/layout"
	"github.com/flexprice/docforge/internal/types"
	"github.com/samber/lo"
)

// Offset is a block displacement in native (unscaled) page pixels
type Offset struct {
	X, Y float64
}

// Add returns o moved by (dx, dy)
func (o Offset) Add(dx, dy float64) Offset {
	return Offset{X: o.X + dx, Y: o.Y + dy}
}

// Positions is the session scoped block offset map. It is a view concern
// and never part of the document.
type Positions struct {
	mu      sync.RWMutex
	offsets map[types.BlockID]Offset
}

func NewPositions() *Positions {
	p := &Positions{}
	p.Reset()
	return p
}

// Get returns the offset of block, zero when unknown
func (p *Positions) Get(block types.BlockID) Offset {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.offsets[block]
}

// Set stores the offset of one block and touches no other
func (p *Positions) Set(block types.BlockID, o Offset) {
	if lo.Contains(types.Blocks, block) {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.offsets[block] = o
	}
}

// Reset returns every block to the origin
func (p *Positions) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.offsets = lo.SliceToMap(types.Blocks, func(b types.BlockID) (types.BlockID, Offset) {
		return b, Offset{}
	})
}

// Snapshot copies the current offsets
func (p *Positions) Snapshot() map[types.BlockID]Offset {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return lo.Assign(p.offsets)
}

// MM converts the offsets to layout millimetres, dropping zero entries
func MM(offsets map[types.BlockID]Offset) map[types.BlockID]layout.Offset {
	out := make(map[types.BlockID]layout.Offset)
	for b, o := range offsets {
		if o == (Offset{}) {
			continue
		}
		out[b] = layout.Offset{X: o.X / asset.PxPerMM, Y: o.Y / asset.PxPerMM}
	}
	return out
}
