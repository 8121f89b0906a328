package pdfgen

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/flexprice/docforge/internal/asset"
	ierr "github.com/flexprice/docforge/internal/errors"
	"github.com/flexprice/docforge/internal/layout"
	"github.com/flexprice/docforge/internal/types"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
)

type faceKey struct {
	mono   bool
	bold   bool
	italic bool
	size   float64
}

// Rasterizer paints a layout.Page into a bitmap the way the editor shows it.
// Text uses the Go fonts, so glyph extents differ slightly from the PDF core
// fonts while every element keeps its position.
type Rasterizer struct {
	fonts map[faceKey]*opentype.Font
}

// NewRasterizer parses the embedded Go fonts
func NewRasterizer() (*Rasterizer, error) {
	r := &Rasterizer{fonts: make(map[faceKey]*opentype.Font)}
	for key, ttf := range map[faceKey][]byte{
		{}:                         goregular.TTF,
		{bold: true}:               gobold.TTF,
		{italic: true}:             goitalic.TTF,
		{bold: true, italic: true}: gobolditalic.TTF,
		{mono: true}:               gomono.TTF,
	} {
		f, err := opentype.Parse(ttf)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to load fonts").
				Mark(ierr.ErrSystem)
		}
		r.fonts[key] = f
	}
	return r, nil
}

// canvas is the per call drawing state; font faces are not safe for
// concurrent use so every Rasterize call gets its own
type canvas struct {
	r      *Rasterizer
	img    *image.RGBA
	pxMM   float64
	dpi    float64
	faces  map[faceKey]font.Face
	images map[*asset.Logo]image.Image
}

// Rasterize renders page at scale times its native 96 dpi size
func (r *Rasterizer) Rasterize(ctx context.Context, page *layout.Page, scale float64) (*image.RGBA, error) {
	if scale <= 0 {
		scale = 1
	}
	pxMM := asset.PxPerMM * scale
	w := int(math.Round(page.Width * pxMM))
	h := int(math.Round(page.Height * pxMM))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	c := &canvas{
		r:      r,
		img:    img,
		pxMM:   pxMM,
		dpi:    96 * scale,
		faces:  make(map[faceKey]font.Face),
		images: make(map[*asset.Logo]image.Image),
	}
	defer c.close()

	for i, e := range page.Elements {
		if i%32 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, ierr.WithError(err).
					WithHint("PDF generation was cancelled").
					Mark(ierr.ErrRender)
			}
		}
		switch e.Kind {
		case layout.KindText:
			c.text(e)
		case layout.KindRect:
			c.rect(e)
		case layout.KindLine:
			c.line(e)
		case layout.KindImage:
			if err := c.image(e); err != nil {
				return nil, err
			}
		}
	}
	return img, nil
}

func (c *canvas) close() {
	for _, f := range c.faces {
		if f != nil {
			f.Close()
		}
	}
}

func (c *canvas) px(mm float64) int {
	return int(math.Round(mm * c.pxMM))
}

func rgba(col layout.Color, alpha float64) color.NRGBA {
	return color.NRGBA{R: uint8(col.R), G: uint8(col.G), B: uint8(col.B), A: uint8(math.Round(alpha * 255))}
}

func (c *canvas) fill(r image.Rectangle, col color.Color) {
	draw.Draw(c.img, r, image.NewUniform(col), image.Point{}, draw.Over)
}

func (c *canvas) thickness(e layout.Element) int {
	lw := e.LineWidth
	if lw <= 0 {
		lw = 0.2
	}
	return int(math.Max(1, math.Round(lw*c.pxMM)))
}

func (c *canvas) rect(e layout.Element) {
	col := rgba(e.Color, e.Opacity())
	x0, y0 := c.px(e.X), c.px(e.Y)
	x1, y1 := c.px(e.X+e.W), c.px(e.Y+e.H)
	if e.Fill {
		c.fill(image.Rect(x0, y0, x1, y1), col)
		return
	}
	t := c.thickness(e)
	c.fill(image.Rect(x0, y0, x1, y0+t), col)
	c.fill(image.Rect(x0, y1-t, x1, y1), col)
	c.fill(image.Rect(x0, y0, x0+t, y1), col)
	c.fill(image.Rect(x1-t, y0, x1, y1), col)
}

// line supports the axis aligned rules the layout produces
func (c *canvas) line(e layout.Element) {
	t := c.thickness(e)
	x0, y0 := c.px(math.Min(e.X, e.X2)), c.px(math.Min(e.Y, e.Y2))
	x1, y1 := c.px(math.Max(e.X, e.X2)), c.px(math.Max(e.Y, e.Y2))
	if y0 == y1 {
		y0 -= t / 2
		y1 = y0 + t
	}
	if x0 == x1 {
		x0 -= t / 2
		x1 = x0 + t
	}
	c.fill(image.Rect(x0, y0, x1, y1), rgba(e.Color, e.Opacity()))
}

func (c *canvas) image(e layout.Element) error {
	if e.Logo == nil {
		return nil
	}
	src, ok := c.images[e.Logo]
	if !ok {
		var err error
		if src, err = e.Logo.Image(); err != nil {
			return err
		}
		c.images[e.Logo] = src
	}
	w, h := c.px(e.W), c.px(e.H)
	if w <= 0 || h <= 0 {
		return nil
	}
	scaled := asset.Resize(src, w, h)
	at := image.Pt(c.px(e.X), c.px(e.Y))
	draw.Draw(c.img, scaled.Bounds().Add(at), scaled, image.Point{}, draw.Over)
	return nil
}

func (c *canvas) face(f layout.Font) font.Face {
	key := faceKey{
		mono:   f.Family == types.FontCourier,
		bold:   f.Bold(),
		italic: f.Italic(),
		size:   f.Size,
	}
	if face, ok := c.faces[key]; ok {
		return face
	}
	style := key
	style.size = 0
	if style.mono {
		style.bold, style.italic = false, false
	}
	face, err := opentype.NewFace(c.r.fonts[style], &opentype.FaceOptions{
		Size:    f.Size,
		DPI:     c.dpi,
		Hinting: font.HintingNone,
	})
	if err != nil {
		face = nil
	}
	c.faces[key] = face
	return face
}

func (c *canvas) text(e layout.Element) {
	face := c.face(e.Font)
	if face == nil || e.Text == "" {
		return
	}
	src := image.NewUniform(rgba(e.Color, e.Opacity()))
	width := font.MeasureString(face, e.Text).Ceil()

	if e.Rotation != 0 {
		c.rotatedText(e, face, src, width)
		return
	}

	x := c.pxMM * e.X
	switch e.Align {
	case layout.AlignRight:
		x -= float64(width)
	case layout.AlignCenter:
		x -= float64(width) / 2
	}
	d := font.Drawer{
		Dst:  c.img,
		Src:  src,
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(e.Y * c.pxMM * 64)},
	}
	d.DrawString(e.Text)
}

// rotatedText draws the string into a scratch bitmap and composites it
// rotated counter-clockwise about the element centre, matching the PDF
// transform of the vector renderer
func (c *canvas) rotatedText(e layout.Element, face font.Face, src image.Image, width int) {
	m := face.Metrics()
	ascent, descent := m.Ascent.Ceil(), m.Descent.Ceil()
	scratch := image.NewRGBA(image.Rect(0, 0, width+2, ascent+descent+2))
	d := font.Drawer{
		Dst:  scratch,
		Src:  src,
		Face: face,
		Dot:  fixed.P(1, ascent+1),
	}
	d.DrawString(e.Text)

	theta := e.Rotation * math.Pi / 180
	cos, sin := math.Cos(theta), math.Sin(theta)
	ox := float64(scratch.Bounds().Dx()) / 2
	oy := float64(scratch.Bounds().Dy()) / 2
	cx := e.X * c.pxMM
	cy := (e.Y - e.H/3) * c.pxMM

	s2d := f64.Aff3{
		cos, sin, cx - ox*cos - oy*sin,
		-sin, cos, cy + ox*sin - oy*cos,
	}
	xdraw.BiLinear.Transform(c.img, s2d, scratch, scratch.Bounds(), xdraw.Over, nil)
}
