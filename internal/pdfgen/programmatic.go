package pdfgen

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/flexprice/docforge/internal/asset"
	"github.com/flexprice/docforge/internal/config"
	ierr "github.com/flexprice/docforge/internal/errors"
	"github.com/flexprice/docforge/internal/layout"
	"github.com/flexprice/docforge/internal/logger"
	"github.com/flexprice/docforge/internal/types"
	"github.com/flexprice/docforge/internal/watermark"
	"github.com/jung-kurt/gofpdf"
)

// Producer is written into the PDF metadata
const Producer = "DocForge"

// ProgrammaticRenderer draws a single A4 page with gofpdf vector and text
// primitives. Item rows that do not fit are dropped.
type ProgrammaticRenderer struct {
	builder  *layout.Builder
	policy   *watermark.Policy
	log      *logger.Logger
	maxLogo  int
	compress bool
	clock    func() time.Time
}

// NewProgrammaticRenderer creates a new programmatic renderer
func NewProgrammaticRenderer(cfg *config.Configuration, builder *layout.Builder, policy *watermark.Policy, log *logger.Logger) *ProgrammaticRenderer {
	return &ProgrammaticRenderer{
		builder:  builder,
		policy:   policy,
		log:      log,
		maxLogo:  cfg.Render.MaxLogoBytes,
		compress: cfg.Render.Compress,
		clock:    time.Now,
	}
}

func (r *ProgrammaticRenderer) Kind() types.RendererKind {
	return types.RendererProgrammatic
}

func (r *ProgrammaticRenderer) Render(ctx context.Context, req *Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("PDF generation was cancelled").
			Mark(ierr.ErrRender)
	}
	logo, err := asset.DecodeLogo(req.Document.LogoBase64, r.maxLogo)
	if err != nil {
		return nil, err
	}

	page := r.builder.Build(req.Document, req.Template, layout.Options{
		Branding: r.policy.For(req.Tier),
		Truncate: true,
		Logo:     logo,
	})
	if page.TruncatedRows > 0 {
		r.log.Warnw("item rows dropped to fit one page",
			"document_number", req.Document.Number,
			"truncated_rows", page.TruncatedRows,
		)
	}

	pdf := newDocument(r.compress, r.clock())
	pdf.SetTitle(req.Document.Type.Title()+" "+req.Document.Number, true)
	pdf.SetAuthor(req.Document.Business.Name, true)
	pdf.AddPage()
	drawPage(pdf, page)

	data, err := output(pdf)
	if err != nil {
		return nil, err
	}
	return &Result{
		Data:          data,
		Filename:      req.Document.Filename(),
		Pages:         pdf.PageCount(),
		Renderer:      r.Kind(),
		TruncatedRows: page.TruncatedRows,
	}, nil
}

func newDocument(compress bool, created time.Time) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(compress)
	pdf.SetCreationDate(created)
	pdf.SetModificationDate(created)
	pdf.SetCatalogSort(true)
	pdf.SetCreator(Producer, true)
	pdf.SetProducer(Producer, true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	return pdf
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to generate PDF").
			Mark(ierr.ErrRender)
	}
	return buf.Bytes(), nil
}

// draw paints every element of page onto the current gofpdf page in order
func drawPage(pdf *gofpdf.Fpdf, page *layout.Page) {
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	for i, e := range page.Elements {
		switch e.Kind {
		case layout.KindText:
			drawText(pdf, tr, e)
		case layout.KindRect:
			pdf.SetLineWidth(lineWidth(e))
			style := "D"
			if e.Fill {
				pdf.SetFillColor(e.Color.R, e.Color.G, e.Color.B)
				style = "F"
			} else {
				pdf.SetDrawColor(e.Color.R, e.Color.G, e.Color.B)
			}
			pdf.Rect(e.X, e.Y, e.W, e.H, style)
		case layout.KindLine:
			pdf.SetDrawColor(e.Color.R, e.Color.G, e.Color.B)
			pdf.SetLineWidth(lineWidth(e))
			pdf.Line(e.X, e.Y, e.X2, e.Y2)
		case layout.KindImage:
			if e.Logo == nil {
				continue
			}
			name := fmt.Sprintf("image-%d", i)
			opts := gofpdf.ImageOptions{ImageType: e.Logo.Format}
			pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(e.Logo.Data))
			pdf.ImageOptions(name, e.X, e.Y, e.W, e.H, false, opts, 0, "")
		}
	}
}

func drawText(pdf *gofpdf.Fpdf, tr func(string) string, e layout.Element) {
	text := tr(e.Text)
	pdf.SetFont(layout.CoreFont(e.Font.Family), e.Font.Style, e.Font.Size)
	pdf.SetTextColor(e.Color.R, e.Color.G, e.Color.B)

	w := pdf.GetStringWidth(text)
	x := e.X
	switch e.Align {
	case layout.AlignRight:
		x -= w
	case layout.AlignCenter:
		x -= w / 2
	}

	alpha := e.Opacity()
	if alpha < 1 {
		pdf.SetAlpha(alpha, "Normal")
	}
	if e.Rotation != 0 {
		pdf.TransformBegin()
		pdf.TransformRotate(e.Rotation, e.X, e.Y-e.H/3)
	}
	pdf.Text(x, e.Y, text)
	if e.Rotation != 0 {
		pdf.TransformEnd()
	}
	if alpha < 1 {
		pdf.SetAlpha(1, "Normal")
	}
}

func lineWidth(e layout.Element) float64 {
	if e.LineWidth <= 0 {
		return 0.2
	}
	return e.LineWidth
}
