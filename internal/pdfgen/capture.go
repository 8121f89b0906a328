package pdfgen

import (
	"bytes"
	"context"
	"image/png"
	"math"
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

// NativePageWidthPx is the unscaled width of the A4 preview at 96 dpi
var NativePageWidthPx = math.Round(layout.PageWidth * asset.PxPerMM)

// CaptureRenderer rasterizes the editor scene and slices the bitmap across
// as many A4 pages as its height needs. Text is never re-flowed.
type CaptureRenderer struct {
	builder  *layout.Builder
	policy   *watermark.Policy
	raster   *Rasterizer
	log      *logger.Logger
	scale    float64
	maxLogo  int
	compress bool
	clock    func() time.Time
}

// NewCaptureRenderer creates a new capture renderer
func NewCaptureRenderer(cfg *config.Configuration, builder *layout.Builder, policy *watermark.Policy, log *logger.Logger) (*CaptureRenderer, error) {
	raster, err := NewRasterizer()
	if err != nil {
		return nil, err
	}
	scale := cfg.Render.CaptureScale
	if scale <= 0 {
		scale = 2
	}
	return &CaptureRenderer{
		builder:  builder,
		policy:   policy,
		raster:   raster,
		log:      log,
		scale:    scale,
		maxLogo:  cfg.Render.MaxLogoBytes,
		compress: cfg.Render.Compress,
		clock:    time.Now,
	}, nil
}

func (r *CaptureRenderer) Kind() types.RendererKind {
	return types.RendererCapture
}

// Render builds the export scene for req, without editing chrome, and
// captures it
func (r *CaptureRenderer) Render(ctx context.Context, req *Request) (*Result, error) {
	logo, err := asset.DecodeLogo(req.Document.LogoBase64, r.maxLogo)
	if err != nil {
		return nil, err
	}
	page := r.builder.Build(req.Document, req.Template, layout.Options{
		Branding: r.policy.For(req.Tier),
		Offsets:  req.Offsets,
		Logo:     logo,
	})
	data, pages, err := r.Capture(ctx, page)
	if err != nil {
		return nil, err
	}
	return &Result{
		Data:     data,
		Filename: req.Document.Filename(),
		Pages:    pages,
		Renderer: r.Kind(),
	}, nil
}

// Capture rasterizes page and assembles the PDF, returning the page count
func (r *CaptureRenderer) Capture(ctx context.Context, page *layout.Page) ([]byte, int, error) {
	start := time.Now()
	img, err := r.raster.Rasterize(ctx, page, r.scale)
	if err != nil {
		return nil, 0, err
	}

	var encoded bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&encoded, img); err != nil {
		return nil, 0, ierr.WithError(err).
			WithHint("Failed to encode page image").
			Mark(ierr.ErrRender)
	}

	// page count and placement follow the scene height; the bitmap height is
	// rounded to whole pixels and would add a sliver page
	heightMM := page.Height
	pages := page.PageCount()

	pdf := newDocument(r.compress, r.clock())
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("capture", opts, bytes.NewReader(encoded.Bytes()))
	for i := 0; i < pages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, 0, ierr.WithError(err).
				WithHint("PDF generation was cancelled").
				Mark(ierr.ErrRender)
		}
		pdf.AddPage()
		pdf.ImageOptions("capture", 0, -float64(i)*layout.PageHeight, layout.PageWidth, heightMM, false, opts, 0, "")
	}

	data, err := output(pdf)
	if err != nil {
		return nil, 0, err
	}
	r.log.Debugw("captured document",
		"pages", pages,
		"width_px", img.Bounds().Dx(),
		"height_px", img.Bounds().Dy(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return data, pages, nil
}
