package pdfgen

import (
	ierr "github.com/flexprice/docforge/internal/errors"
	"github.com/flexprice/docforge/internal/types"
)

// Renderers selects a Renderer by kind
type Renderers struct {
	Programmatic *ProgrammaticRenderer
	Capture      *CaptureRenderer
}

// Get returns the renderer for kind; an empty kind selects the
// programmatic one
func (r *Renderers) Get(kind types.RendererKind) (Renderer, error) {
	switch kind {
	case "", types.RendererProgrammatic:
		return r.Programmatic, nil
	case types.RendererCapture:
		return r.Capture, nil
	}
	return nil, ierr.NewErrorf("unknown renderer %q", kind).
		WithHint("Renderer must be programmatic or capture").
		Mark(ierr.ErrValidation)
}
