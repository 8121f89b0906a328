package layout

import (
	"math"

	"github.com/flexprice/docforge/internal/asset"
	"github.com/flexprice/docforge/internal/domain/document"
	"github.com/flexprice/docforge/internal/domain/template"
	"github.com/flexprice/docforge/internal/types"
	"github.com/flexprice/docforge/internal/watermark"
)

// Options control everything about a scene that is not document or style
type Options struct {
	Branding watermark.Branding
	// Offsets displaces whole blocks, in millimetres
	Offsets map[types.BlockID]Offset
	// Placeholders renders greyed hints for empty editable fields
	Placeholders bool
	// Truncate keeps the scene on one page by dropping item rows
	Truncate bool
	// Logo is the decoded document logo, nil for none
	Logo *asset.Logo
}

// Logo bounding box
const (
	LogoMaxWidth  = 40.0
	LogoMaxHeight = 20.0
)

// attributionSpace is kept free at the foot for every tier so branding
// never moves content
const attributionSpace = 6.0

// family holds the per layout kind variations of the shared rules
type family struct {
	density    float64
	titleSize  float64
	titleStyle string
	headerRule bool
	sideStrip  bool
}

var families = map[types.LayoutKind]family{
	types.LayoutClassic:   {density: 1, titleSize: 24, titleStyle: "B"},
	types.LayoutModern:    {density: 1, titleSize: 26, titleStyle: "B"},
	types.LayoutCompact:   {density: 0.85, titleSize: 20, titleStyle: "B"},
	types.LayoutExecutive: {density: 1, titleSize: 24, titleStyle: "B", headerRule: true},
	types.LayoutCreative:  {density: 1, titleSize: 28, titleStyle: "B", sideStrip: true},
	types.LayoutMinimal:   {density: 1, titleSize: 22},
}

// Builder turns a document and template into a positioned Page
type Builder struct {
	m Measurer
}

// NewBuilder returns a Builder measuring text with m. A nil m uses the
// core font metrics.
func NewBuilder(m Measurer) *Builder {
	if m == nil {
		m = NewMeasurer()
	}
	return &Builder{m: m}
}

// Measurer returns the text metrics the builder lays out with
func (b *Builder) Measurer() Measurer {
	return b.m
}

// Build lays out doc with tpl. Fields that do not apply to the document
// type are never drawn.
func (b *Builder) Build(doc *document.Document, tpl template.Template, opts Options) *Page {
	fam, ok := families[tpl.Style.Layout]
	if !ok {
		fam = families[types.LayoutClassic]
	}
	c := &composer{
		m:      b.m,
		doc:    doc,
		style:  tpl.Style,
		fam:    fam,
		opts:   opts,
		header: ParseHex(tpl.Style.HeaderColor),
		accent: ParseHex(tpl.Style.AccentColor),
		totals: doc.Totals(),
	}
	return c.compose()
}

type composer struct {
	m      Measurer
	doc    *document.Document
	style  template.Style
	fam    family
	opts   Options
	header Color
	accent Color
	totals document.Totals

	els       []Element
	truncated int
}

func (c *composer) compose() *Page {
	// page decorations come first so content is drawn over them
	if c.style.ShowBorder {
		c.els = append(c.els, Element{
			Kind: KindRect, Role: RoleBorder,
			X: 8, Y: 8, W: PageWidth - 16, H: PageHeight - 16,
			Color: c.accent, LineWidth: 0.5,
		})
	}
	stripAt := -1
	if c.fam.sideStrip {
		stripAt = len(c.els)
		c.els = append(c.els, Element{
			Kind: KindRect, Role: RoleSideStrip, Fill: true,
			X: 0, Y: 0, W: 5, H: PageHeight, Color: c.accent,
		})
	}

	y := c.headerBlock(Margin)
	if c.style.ShowAccentLine {
		c.els = append(c.els, Element{
			Kind: KindRect, Role: RoleAccent, Fill: true,
			X: 0, Y: 0, W: PageWidth, H: 4, Color: c.accent,
		})
	}
	y = c.detailsBlock(y + 8*c.fam.density)

	totals, totalsH := c.totalsBlock()
	footer, footerH := c.footerBlock()
	gap := 6 * c.fam.density
	limit := math.Inf(1)
	if c.opts.Truncate {
		limit = PageHeight - Margin - gap*2 - totalsH - footerH - attributionSpace
	}
	y = c.itemsBlock(y+gap, limit)

	y += gap
	c.place(totals, y)
	y += totalsH + gap
	c.place(footer, y)

	c.applyOffsets()

	height := PageHeight
	if !c.opts.Truncate {
		bottom := 0.0
		for _, e := range c.els {
			if e.Role != RoleBorder && e.Role != RoleSideStrip {
				bottom = math.Max(bottom, e.Bottom())
			}
		}
		height = math.Max(PageHeight, bottom+attributionSpace+Margin)
	}
	if stripAt >= 0 {
		c.els[stripAt].H = height
	}
	if c.style.ShowBorder {
		c.els[0].H = height - 16
	}

	pages := int(math.Ceil(height/PageHeight - 1e-9))
	// the watermark sits beneath everything
	c.els = append(c.stamps(pages), c.els...)
	if c.opts.Branding.Attribution != "" {
		c.els = append(c.els, c.measured(Element{
			Kind: KindText, Role: RoleAttribution,
			X: PageWidth / 2, Y: height - 8, Align: AlignCenter,
			Text:  c.opts.Branding.Attribution,
			Font:  Font{Family: types.FontHelvetica, Size: watermark.AttributionSizePt},
			Color: Muted,
		}))
	}

	return &Page{
		Width:         PageWidth,
		Height:        height,
		Elements:      c.els,
		Branding:      c.opts.Branding,
		TruncatedRows: c.truncated,
	}
}

// stamps returns one diagonal watermark per page span
func (c *composer) stamps(pages int) []Element {
	if !c.opts.Branding.Watermarked() {
		return nil
	}
	font := Font{Family: types.FontHelvetica, Style: "B", Size: watermark.FontSizePt}
	out := make([]Element, 0, pages)
	for i := 0; i < pages; i++ {
		cy := float64(i)*PageHeight + PageHeight/2
		out = append(out, c.measured(Element{
			Kind: KindText, Role: RoleWatermark,
			X: PageWidth / 2, Y: cy + font.Size*PtToMM/3, Align: AlignCenter,
			Text: c.opts.Branding.Stamp, Font: font, Color: StampGrey,
			Rotation: watermark.AngleDeg, Alpha: watermark.Opacity,
		}))
	}
	return out
}

func (c *composer) applyOffsets() {
	if len(c.opts.Offsets) == 0 {
		return
	}
	for i := range c.els {
		if off, ok := c.opts.Offsets[c.els[i].Block]; ok && c.els[i].Block != "" {
			c.els[i].shift(off.X, off.Y)
		}
	}
}

func (c *composer) place(els []Element, dy float64) {
	for _, e := range els {
		e.shift(0, dy)
		c.els = append(c.els, e)
	}
}

func (c *composer) font(style string, size float64) Font {
	return Font{Family: c.style.FontFamily, Style: style, Size: size * c.sizeScale()}
}

func (c *composer) sizeScale() float64 {
	if c.fam.density < 1 {
		return 0.92
	}
	return 1
}

func (c *composer) measured(e Element) Element {
	if e.Kind == KindText {
		e.W = c.m.TextWidth(e.Text, e.Font)
		e.H = e.Font.Size * PtToMM
	}
	return e
}

// line describes one text line of a block
type line struct {
	block types.BlockID
	role  Role
	x     float64
	align Align
	font  Font
	color Color
	field string
	// label is printed before the value, e.g. "Due Date: "
	label string
	value string
}

// emit appends a text line whose top is at y with height lh. Empty values
// render as placeholders when enabled and reserve their height either way,
// so toggling placeholders never moves other content.
func (c *composer) emit(dst *[]Element, y, lh float64, l line) {
	text := l.label + l.value
	color := l.color
	placeholder := false
	if l.value == "" {
		if !c.opts.Placeholders || l.field == "" {
			return
		}
		spec, _ := document.Spec(l.field)
		text = l.label + spec.Placeholder
		color = PlaceholderGrey
		placeholder = true
	}
	*dst = append(*dst, c.measured(Element{
		Kind: KindText, Block: l.block, Role: l.role,
		X: l.x, Y: y + lh*0.75, Align: l.align,
		Text: text, Font: l.font, Color: color,
		Field: l.field, Placeholder: placeholder,
	}))
}

// emitWrapped emits a multiline field and returns the height it used
func (c *composer) emitWrapped(dst *[]Element, y, lh, width float64, l line) float64 {
	if l.value == "" {
		c.emit(dst, y, lh, l)
		return lh
	}
	lines := Wrap(c.m, l.value, l.font, width)
	for i, s := range lines {
		ll := l
		ll.value = s
		if i > 0 {
			ll.label = ""
		}
		if s == "" {
			continue
		}
		c.emit(dst, y+float64(i)*lh, lh, ll)
	}
	return float64(len(lines)) * lh
}
