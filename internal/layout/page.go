package layout

import (
	"math"
	"strconv"
	"strings"

	"github.com/flexprice/docforge/internal/asset"
	"github.com/flexprice/docforge/internal/types"
	"github.com/flexprice/docforge/internal/watermark"
)

// A4 portrait geometry in millimetres
const (
	PageWidth    = 210.0
	PageHeight   = 297.0
	Margin       = 15.0
	ContentWidth = PageWidth - 2*Margin

	PtToMM = 25.4 / 72
)

// Kind is the primitive an element is drawn with
type Kind int

const (
	KindText Kind = iota
	KindRect
	KindLine
	KindImage
)

// Align anchors a text element horizontally on its X coordinate
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Role tags elements that carry a meaning beyond their content
type Role string

const (
	RoleWatermark   Role = "watermark"
	RoleAttribution Role = "attribution"
	RoleBorder      Role = "border"
	RoleAccent      Role = "accent"
	RoleSideStrip   Role = "side-strip"
	RoleHeaderFill  Role = "header-fill"
	RoleHeaderRule  Role = "header-rule"
	RoleLogo        Role = "logo"
	RoleTitle       Role = "title"
	RoleTableHeader Role = "table-header"
	RoleTotal       Role = "total"
	RoleSignature   Role = "signature"
)

// Color is an 8 bit RGB triple
type Color struct {
	R, G, B int
}

var (
	Black           = Color{17, 24, 39}
	White           = Color{255, 255, 255}
	Muted           = Color{107, 114, 128}
	PlaceholderGrey = Color{156, 163, 175}
	RuleGrey        = Color{209, 213, 219}
	StampGrey       = Color{128, 128, 128}
)

// ParseHex reads #rrggbb, falling back to Black
func ParseHex(s string) Color {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return Black
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Black
	}
	return Color{R: int(v >> 16 & 0xff), G: int(v >> 8 & 0xff), B: int(v & 0xff)}
}

// Font is a core font selection; Style is "", "B", "I" or "BI"
type Font struct {
	Family types.FontFamily
	Style  string
	Size   float64
}

// Bold reports whether the style includes bold
func (f Font) Bold() bool {
	return strings.Contains(f.Style, "B")
}

// Italic reports whether the style includes italic
func (f Font) Italic() bool {
	return strings.Contains(f.Style, "I")
}

// CoreFont maps a template family to a PDF core font name
func CoreFont(f types.FontFamily) string {
	switch f {
	case types.FontTimes:
		return "Times"
	case types.FontCourier:
		return "Courier"
	default:
		return "Helvetica"
	}
}

// Offset is a block displacement in millimetres
type Offset struct {
	X, Y float64
}

// Element is one drawing primitive.
//
// Text elements are anchored at X per Align with Y on the baseline; W and H
// are the measured extent. Rects and images use X, Y as the top-left corner.
// Lines run from (X, Y) to (X2, Y2).
type Element struct {
	Kind  Kind
	Block types.BlockID
	Role  Role

	X, Y, W, H float64
	X2, Y2     float64

	Text     string
	Font     Font
	Color    Color
	Align    Align
	Rotation float64
	Alpha    float64

	Fill      bool
	LineWidth float64

	// Field is the document field key an editor writes back to
	Field       string
	Placeholder bool

	Logo *asset.Logo
}

// Opacity returns Alpha with zero meaning fully opaque
func (e Element) Opacity() float64 {
	if e.Alpha <= 0 || e.Alpha > 1 {
		return 1
	}
	return e.Alpha
}

// Left is the left edge of the element
func (e Element) Left() float64 {
	if e.Kind != KindText {
		return math.Min(e.X, e.X+e.W)
	}
	switch e.Align {
	case AlignRight:
		return e.X - e.W
	case AlignCenter:
		return e.X - e.W/2
	default:
		return e.X
	}
}

// Top is the top edge of the element
func (e Element) Top() float64 {
	if e.Kind == KindText {
		return e.Y - e.H*0.8
	}
	return math.Min(e.Y, e.Y+e.H)
}

// Bottom is the lowest point the element reaches
func (e Element) Bottom() float64 {
	switch e.Kind {
	case KindText:
		return e.Y + e.H*0.2
	case KindLine:
		return math.Max(e.Y, e.Y2)
	default:
		return e.Y + e.H
	}
}

// Contains reports whether the point lies in the element's unrotated box
func (e Element) Contains(x, y float64) bool {
	left, top := e.Left(), e.Top()
	return x >= left && x <= left+e.W && y >= top && y <= e.Bottom()
}

func (e *Element) shift(dx, dy float64) {
	e.X += dx
	e.Y += dy
	if e.Kind == KindLine {
		e.X2 += dx
		e.Y2 += dy
	}
}

// Page is a fully positioned document scene shared by both renderers
type Page struct {
	Width, Height float64
	Elements      []Element
	Branding      watermark.Branding
	// TruncatedRows counts item rows dropped to fit one page
	TruncatedRows int
}

// PageCount is the number of A4 pages the scene spans
func (p *Page) PageCount() int {
	n := int(math.Ceil(p.Height/PageHeight - 1e-9))
	if n < 1 {
		return 1
	}
	return n
}

// ByRole returns the elements tagged with role
func (p *Page) ByRole(role Role) []Element {
	var out []Element
	for _, e := range p.Elements {
		if e.Role == role {
			out = append(out, e)
		}
	}
	return out
}

// ByBlock returns the elements belonging to block
func (p *Page) ByBlock(block types.BlockID) []Element {
	var out []Element
	for _, e := range p.Elements {
		if e.Block == block {
			out = append(out, e)
		}
	}
	return out
}

// Texts returns the content of every text element in draw order
func (p *Page) Texts() []string {
	var out []string
	for _, e := range p.Elements {
		if e.Kind == KindText {
			out = append(out, e.Text)
		}
	}
	return out
}

// FieldAt returns the topmost editable text element at (x, y)
func (p *Page) FieldAt(x, y float64) (Element, bool) {
	for i := len(p.Elements) - 1; i >= 0; i-- {
		e := p.Elements[i]
		if e.Kind == KindText && e.Field != "" && e.Contains(x, y) {
			return e, true
		}
	}
	return Element{}, false
}

// BlockAt returns the repositionable block under (x, y)
func (p *Page) BlockAt(x, y float64) (types.BlockID, bool) {
	for i := len(p.Elements) - 1; i >= 0; i-- {
		e := p.Elements[i]
		if e.Block != "" && e.Kind != KindLine && e.Contains(x, y) {
			return e.Block, true
		}
	}
	return "", false
}
