package pdfgen

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/flexprice/docforge/internal/config"
	"github.com/flexprice/docforge/internal/domain/document"
	"github.com/flexprice/docforge/internal/domain/template"
	ierr "github.com/flexprice/docforge/internal/errors"
	"github.com/flexprice/docforge/internal/layout"
	"github.com/flexprice/docforge/internal/logger"
	"github.com/flexprice/docforge/internal/types"
	"github.com/flexprice/docforge/internal/watermark"
	"github.com/stretchr/testify/suite"
)

type RendererSuite struct {
	suite.Suite
	ctx          context.Context
	registry     template.Registry
	builder      *layout.Builder
	policy       *watermark.Policy
	programmatic *ProgrammaticRenderer
	capture      *CaptureRenderer
}

func TestRenderers(t *testing.T) {
	suite.Run(t, new(RendererSuite))
}

func (s *RendererSuite) SetupSuite() {
	cfg := config.GetDefaultConfig()
	cfg.Render.Compress = false
	cfg.Render.CaptureScale = 1
	log := logger.NewNoopLogger()

	s.ctx = context.Background()
	s.registry = template.NewRegistry()
	s.builder = layout.NewBuilder(nil)
	s.policy = watermark.NewPolicy(cfg)
	s.programmatic = NewProgrammaticRenderer(cfg, s.builder, s.policy, log)

	fixed := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	s.programmatic.clock = func() time.Time { return fixed }

	var err error
	s.capture, err = NewCaptureRenderer(cfg, s.builder, s.policy, log)
	s.Require().NoError(err)
	s.capture.clock = s.programmatic.clock
}

func invoice() *document.Document {
	return &document.Document{
		Type:      types.DocumentTypeInvoice,
		Number:    "INV-001",
		IssueDate: "2024-01-10",
		DueDate:   "2024-02-10",
		Currency:  "USD",
		Business:  document.Business{Name: "Acme LLC", Address: "1 Main St", Phone: "555-0100"},
		Customer:  document.Customer{Name: "Jane Doe", Address: "2 Oak Ave", Email: "jane@x.com"},
		Items: []document.Item{
			{ID: "item_1", Description: "Consulting", Quantity: 2, UnitPrice: 100},
		},
		TaxPercent: 10,
	}
}

func (s *RendererSuite) request(doc *document.Document, tier types.Tier) *Request {
	return &Request{Document: doc, Template: s.registry.Get(doc.TemplateID), Tier: tier}
}

func (s *RendererSuite) TestProgrammatic_SimpleInvoice() {
	res, err := s.programmatic.Render(s.ctx, s.request(invoice(), types.TierPremium))
	s.Require().NoError(err)

	s.Equal("invoice-INV-001.pdf", res.Filename)
	s.Equal(types.RendererProgrammatic, res.Renderer)
	s.Equal(1, res.Pages)
	s.Zero(res.TruncatedRows)

	n, err := PageCount(res.Data)
	s.Require().NoError(err)
	s.Equal(1, n)

	for _, want := range []string{"(INVOICE)", "(Consulting)", "(2)", "($100.00)", "($200.00)", "($220.00)"} {
		s.True(bytes.Contains(res.Data, []byte(want)), want)
	}
	s.False(bytes.Contains(res.Data, []byte("(DOCFORGE)")))
}

func (s *RendererSuite) TestProgrammatic_TierGatedWatermark() {
	free, err := s.programmatic.Render(s.ctx, s.request(invoice(), types.TierFree))
	s.Require().NoError(err)
	premium, err := s.programmatic.Render(s.ctx, s.request(invoice(), types.TierPremium))
	s.Require().NoError(err)

	stamp := []byte("(" + watermark.DefaultText + ")")
	credit := []byte("(" + watermark.DefaultAttribution + ")")
	s.True(bytes.Contains(free.Data, stamp))
	s.True(bytes.Contains(free.Data, credit))
	s.False(bytes.Contains(premium.Data, stamp))
	s.False(bytes.Contains(premium.Data, credit))

	for _, want := range []string{"($100.00)", "($200.00)", "($220.00)"} {
		s.True(bytes.Contains(free.Data, []byte(want)), want)
	}
}

func (s *RendererSuite) TestProgrammatic_Deterministic() {
	a, err := s.programmatic.Render(s.ctx, s.request(invoice(), types.TierFree))
	s.Require().NoError(err)
	b, err := s.programmatic.Render(s.ctx, s.request(invoice(), types.TierFree))
	s.Require().NoError(err)
	s.Equal(a.Data, b.Data)
}

func (s *RendererSuite) TestProgrammatic_TruncatesOverflow() {
	doc := invoice()
	for i := 0; i < 80; i++ {
		doc.Items = append(doc.Items, document.Item{
			ID: fmt.Sprintf("item_%d", i), Description: "Row", Quantity: 1, UnitPrice: 1,
		})
	}
	res, err := s.programmatic.Render(s.ctx, s.request(doc, types.TierFree))
	s.Require().NoError(err)
	s.Equal(1, res.Pages)
	s.Positive(res.TruncatedRows)
}

func (s *RendererSuite) TestProgrammatic_Logo() {
	img := image.NewRGBA(image.Rect(0, 0, 64, 32))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	s.Require().NoError(png.Encode(&buf, img))

	doc := invoice()
	doc.LogoBase64 = base64.StdEncoding.EncodeToString(buf.Bytes())
	res, err := s.programmatic.Render(s.ctx, s.request(doc, types.TierPremium))
	s.Require().NoError(err)
	s.True(bytes.Contains(res.Data, []byte("/Subtype /Image")))

	doc.LogoBase64 = "bm90IGFuIGltYWdl"
	_, err = s.programmatic.Render(s.ctx, s.request(doc, types.TierPremium))
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *RendererSuite) TestProgrammatic_EveryTemplate() {
	for _, tpl := range s.registry.List() {
		doc := invoice()
		doc.TemplateID = tpl.ID
		res, err := s.programmatic.Render(s.ctx, s.request(doc, types.TierFree))
		s.Require().NoError(err, tpl.ID)
		n, err := PageCount(res.Data)
		s.Require().NoError(err, tpl.ID)
		s.Equal(1, n, tpl.ID)
	}
}

func (s *RendererSuite) TestCapture_SinglePage() {
	res, err := s.capture.Render(s.ctx, s.request(invoice(), types.TierFree))
	s.Require().NoError(err)
	s.Equal(types.RendererCapture, res.Renderer)
	s.Equal(1, res.Pages)

	n, err := PageCount(res.Data)
	s.Require().NoError(err)
	s.Equal(1, n)
}

func (s *RendererSuite) TestCapture_SinglePageAtAnyScale() {
	for _, scale := range []float64{1, 1.5, 2, 3} {
		cfg := config.GetDefaultConfig()
		cfg.Render.Compress = false
		cfg.Render.CaptureScale = scale
		r, err := NewCaptureRenderer(cfg, s.builder, s.policy, logger.NewNoopLogger())
		s.Require().NoError(err)

		res, err := r.Render(s.ctx, s.request(invoice(), types.TierFree))
		s.Require().NoError(err)
		s.Equal(1, res.Pages, "scale %v", scale)

		n, err := PageCount(res.Data)
		s.Require().NoError(err)
		s.Equal(1, n, "scale %v", scale)
	}
}

func (s *RendererSuite) TestCapture_Paginates() {
	doc := invoice()
	for i := 0; i < 80; i++ {
		doc.Items = append(doc.Items, document.Item{
			ID: fmt.Sprintf("item_%d", i), Description: "Row", Quantity: 1, UnitPrice: 1,
		})
	}
	res, err := s.capture.Render(s.ctx, s.request(doc, types.TierFree))
	s.Require().NoError(err)
	s.Greater(res.Pages, 1)

	n, err := PageCount(res.Data)
	s.Require().NoError(err)
	s.Equal(res.Pages, n)
}

func (s *RendererSuite) TestCapture_Cancelled() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	_, err := s.capture.Render(ctx, s.request(invoice(), types.TierFree))
	s.Error(err)
	s.True(ierr.IsRender(err))
}

func (s *RendererSuite) TestRasterizer_Watermark() {
	tpl := s.registry.Get("simple")
	free := s.builder.Build(invoice(), tpl, layout.Options{Branding: s.policy.For(types.TierFree)})
	premium := s.builder.Build(invoice(), tpl, layout.Options{Branding: s.policy.For(types.TierPremium)})

	a, err := s.capture.raster.Rasterize(s.ctx, free, 1)
	s.Require().NoError(err)
	b, err := s.capture.raster.Rasterize(s.ctx, premium, 1)
	s.Require().NoError(err)

	s.Equal(int(NativePageWidthPx), a.Bounds().Dx())
	s.Equal(a.Bounds(), b.Bounds())
	s.Greater(inked(a), inked(b))
}

func (s *RendererSuite) TestRenderers_Get() {
	r := &Renderers{Programmatic: s.programmatic, Capture: s.capture}

	got, err := r.Get("")
	s.NoError(err)
	s.Equal(types.RendererProgrammatic, got.Kind())

	got, err = r.Get(types.RendererCapture)
	s.NoError(err)
	s.Equal(types.RendererCapture, got.Kind())

	_, err = r.Get("html")
	s.True(ierr.IsValidation(err))
}

// inked counts pixels that are not pure white
func inked(img *image.RGBA) int {
	n := 0
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 255 || img.Pix[i+1] != 255 || img.Pix[i+2] != 255 {
			n++
		}
	}
	return n
}
