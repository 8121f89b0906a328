package preview

import (
	"math"

	"github.com/flexprice/docforge/internal/pdfgen"
)

// FitScale is min(1, available / native page width). A non-positive width
// keeps native size.
func FitScale(available float64) float64 {
	if available <= 0 {
		return 1
	}
	return math.Min(1, available/pdfgen.NativePageWidthPx)
}

// Viewport tracks the uniform view scale of the page
type Viewport struct {
	available float64
	scale     float64
}

func NewViewport(available float64) *Viewport {
	v := &Viewport{}
	v.Resize(available)
	return v
}

// Resize recomputes the fit scale for a new available width
func (v *Viewport) Resize(available float64) {
	v.available = available
	v.scale = FitScale(available)
}

// Scale is the current view transform
func (v *Viewport) Scale() float64 {
	return v.scale
}

// SetScale forces a scale, used to capture at native resolution
func (v *Viewport) SetScale(s float64) {
	if s > 0 {
		v.scale = s
	}
}

// ToPage converts a screen point to page millimetres
func (v *Viewport) ToPage(x, y float64) (float64, float64) {
	px := pxPerMM * v.scale
	return x / px, y / px
}
