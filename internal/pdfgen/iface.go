package pdfgen

import (
	"context"

	"github.com/flexprice/docforge/internal/domain/document"
	"github.com/flexprice/docforge/internal/domain/template"
	"github.com/flexprice/docforge/internal/layout"
	"github.com/flexprice/docforge/internal/types"
)

// MIMEType of every renderer output
const MIMEType = "application/pdf"

// Request is one render of a document with a template for a tier
type Request struct {
	Document *document.Document
	Template template.Template
	Tier     types.Tier
	// Offsets are block displacements from the editor, capture only
	Offsets map[types.BlockID]layout.Offset
}

// Result is a rendered PDF
type Result struct {
	Data     []byte
	Filename string
	Pages    int
	Renderer types.RendererKind
	// TruncatedRows counts item rows the programmatic renderer dropped
	TruncatedRows int
}

// Renderer turns a document into PDF bytes. Both implementations draw the
// same layout.Page geometry.
type Renderer interface {
	Kind() types.RendererKind
	Render(ctx context.Context, req *Request) (*Result, error)
}
