package types

// LayoutKind is the layout family a template is drawn with
type LayoutKind string

const (
	LayoutClassic   LayoutKind = "classic"
	LayoutModern    LayoutKind = "modern"
	LayoutCompact   LayoutKind = "compact"
	LayoutExecutive LayoutKind = "executive"
	LayoutCreative  LayoutKind = "creative"
	LayoutMinimal   LayoutKind = "minimal"
)

// Mirrored reports whether the header and address blocks swap sides
func (l LayoutKind) Mirrored() bool {
	return l == LayoutModern
}

// TableStyle controls how the items table header row is drawn
type TableStyle string

const (
	TableStyleFilled  TableStyle = "filled"
	TableStyleBold    TableStyle = "bold"
	TableStyleMinimal TableStyle = "minimal"
	TableStylePlain   TableStyle = "plain"
)

// FontFamily is the base font family of a template
type FontFamily string

const (
	FontHelvetica FontFamily = "helvetica"
	FontTimes     FontFamily = "times"
	FontCourier   FontFamily = "courier"
)

// BlockID identifies one of the repositionable regions of a rendered page
type BlockID string

const (
	BlockHeader     BlockID = "header"
	BlockDetails    BlockID = "details"
	BlockItemsTable BlockID = "items-table"
	BlockTotals     BlockID = "totals"
	BlockFooter     BlockID = "footer"
)

// Blocks lists the repositionable blocks in page order
var Blocks = []BlockID{
	BlockHeader,
	BlockDetails,
	BlockItemsTable,
	BlockTotals,
	BlockFooter,
}

// RendererKind selects a PDF renderer strategy
type RendererKind string

const (
	RendererProgrammatic RendererKind = "programmatic"
	RendererCapture      RendererKind = "capture"
)
