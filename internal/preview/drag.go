package preview

import (
	"sync"

	"github.com/flexprice/docforge/internal/types"
)

// TargetKind is the kind of node a pointer event started on
type TargetKind int

const (
	TargetBlock TargetKind = iota
	TargetInput
	TargetTextarea
)

// PointerEvent is a pointer position in screen pixels
type PointerEvent struct {
	X, Y   float64
	Target TargetKind
}

// PointerListener receives the global move and up events of a drag
type PointerListener interface {
	PointerMove(ev PointerEvent)
	PointerUp(ev PointerEvent)
}

// EventBus is the window level event source. Listeners are attached only
// while a drag is active.
type EventBus interface {
	Attach(l PointerListener)
	Detach(l PointerListener)
}

// DragController moves one block at a time.
//
//	Idle -> PointerDown (not on an input) -> Dragging -> PointerMove* -> PointerUp -> Idle
//
// Moves update a live offset; the position map is written once on release.
type DragController struct {
	positions *Positions
	bus       EventBus
	scale     func() float64

	mu       sync.Mutex
	dragging bool
	block    types.BlockID
	originX  float64
	originY  float64
	start    Offset
	live     Offset
}

// NewDragController creates a controller writing to positions. scale is the
// current view scale used to convert screen deltas to page pixels.
func NewDragController(positions *Positions, bus EventBus, scale func() float64) *DragController {
	return &DragController{positions: positions, bus: bus, scale: scale}
}

// PointerDown starts dragging block unless the event began on an editable
// control. It reports whether a drag started.
func (d *DragController) PointerDown(block types.BlockID, ev PointerEvent) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dragging || ev.Target == TargetInput || ev.Target == TargetTextarea {
		return false
	}
	d.dragging = true
	d.block = block
	d.originX, d.originY = ev.X, ev.Y
	d.start = d.positions.Get(block)
	d.live = d.start
	if d.bus != nil {
		d.bus.Attach(d)
	}
	return true
}

// PointerMove updates the live offset by the pointer delta
func (d *DragController) PointerMove(ev PointerEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.dragging {
		return
	}
	d.live = d.offsetFor(ev)
}

// PointerUp finalizes the offset and detaches the global listeners
func (d *DragController) PointerUp(ev PointerEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.dragging {
		return
	}
	d.live = d.offsetFor(ev)
	d.positions.Set(d.block, d.live)
	d.dragging = false
	d.block = ""
	if d.bus != nil {
		d.bus.Detach(d)
	}
}

func (d *DragController) offsetFor(ev PointerEvent) Offset {
	s := 1.0
	if d.scale != nil {
		if v := d.scale(); v > 0 {
			s = v
		}
	}
	return d.start.Add((ev.X-d.originX)/s, (ev.Y-d.originY)/s)
}

// Dragging reports whether a drag is in progress and on which block
func (d *DragController) Dragging() (types.BlockID, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.block, d.dragging
}

// Offset is the offset block is drawn at right now, including an active drag
func (d *DragController) Offset(block types.BlockID) Offset {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dragging && block == d.block {
		return d.live
	}
	return d.positions.Get(block)
}

// Offsets is the full drawn offset map
func (d *DragController) Offsets() map[types.BlockID]Offset {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := d.positions.Snapshot()
	if d.dragging {
		out[d.block] = d.live
	}
	return out
}
