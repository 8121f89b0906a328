package template

import (
	"github.com/flexprice/docforge/internal/types"
	"github.com/samber/lo"
)

// DefaultID is returned for unknown template ids
const DefaultID = "simple"

var catalog = []Template{
	{
		ID:          "simple",
		Name:        "Simple",
		Description: "Clean single colour layout",
		Style: Style{
			HeaderColor: "#1f2937",
			AccentColor: "#2563eb",
			FontFamily:  types.FontHelvetica,
			Layout:      types.LayoutClassic,
			TableStyle:  types.TableStyleFilled,
		},
	},
	{
		ID:          "modern",
		Name:        "Modern",
		Description: "Title on the left, business on the right",
		Style: Style{
			HeaderColor:    "#0f766e",
			AccentColor:    "#14b8a6",
			FontFamily:     types.FontHelvetica,
			Layout:         types.LayoutModern,
			ShowAccentLine: true,
			TableStyle:     types.TableStyleBold,
		},
	},
	{
		ID:          "compact",
		Name:        "Compact",
		Description: "Dense layout for long item lists",
		Style: Style{
			HeaderColor: "#374151",
			AccentColor: "#6b7280",
			FontFamily:  types.FontHelvetica,
			Layout:      types.LayoutCompact,
			TableStyle:  types.TableStyleMinimal,
		},
	},
	{
		ID:          "minimal",
		Name:        "Minimal",
		Description: "No fills, no rules",
		Style: Style{
			HeaderColor: "#111827",
			AccentColor: "#9ca3af",
			FontFamily:  types.FontHelvetica,
			Layout:      types.LayoutMinimal,
			TableStyle:  types.TableStylePlain,
		},
	},
	{
		ID:          "executive",
		Name:        "Executive",
		Description: "Filled header band with serif type",
		IsPremium:   true,
		Style: Style{
			HeaderColor:  "#1e3a8a",
			AccentColor:  "#b45309",
			FontFamily:   types.FontTimes,
			Layout:       types.LayoutExecutive,
			ShowBorder:   true,
			HeaderBgFill: true,
			TableStyle:   types.TableStyleFilled,
		},
	},
	{
		ID:          "creative",
		Name:        "Creative",
		Description: "Bold accent bar and coloured table",
		IsPremium:   true,
		Style: Style{
			HeaderColor:    "#7c3aed",
			AccentColor:    "#f59e0b",
			FontFamily:     types.FontHelvetica,
			Layout:         types.LayoutCreative,
			ShowAccentLine: true,
			HeaderBgFill:   true,
			TableStyle:     types.TableStyleFilled,
		},
	},
	{
		ID:          "elegant",
		Name:        "Elegant",
		Description: "Bordered classic layout with serif type",
		IsPremium:   true,
		Style: Style{
			HeaderColor: "#44403c",
			AccentColor: "#a16207",
			FontFamily:  types.FontTimes,
			Layout:      types.LayoutClassic,
			ShowBorder:  true,
			TableStyle:  types.TableStyleBold,
		},
	},
	{
		ID:          "corporate",
		Name:        "Corporate",
		Description: "Mirrored header with a filled band",
		IsPremium:   true,
		Style: Style{
			HeaderColor:    "#0c4a6e",
			AccentColor:    "#0284c7",
			FontFamily:     types.FontHelvetica,
			Layout:         types.LayoutModern,
			ShowAccentLine: true,
			HeaderBgFill:   true,
			TableStyle:     types.TableStyleMinimal,
		},
	},
}

var byID = lo.KeyBy(catalog, func(t Template) string { return t.ID })

// Registry is the read-only catalog of templates
type Registry interface {
	// Get never fails; unknown ids resolve to the default template
	Get(id string) Template
	Has(id string) bool
	List() []Template
	ListFree() []Template
	ListPremium() []Template
}

type registry struct{}

// NewRegistry returns the built-in template catalog
func NewRegistry() Registry {
	return registry{}
}

func (registry) Get(id string) Template {
	if t, ok := byID[id]; ok {
		return t
	}
	return byID[DefaultID]
}

func (registry) Has(id string) bool {
	_, ok := byID[id]
	return ok
}

func (registry) List() []Template {
	return append([]Template(nil), catalog...)
}

func (registry) ListFree() []Template {
	return lo.Filter(catalog, func(t Template, _ int) bool { return !t.IsPremium })
}

func (registry) ListPremium() []Template {
	return lo.Filter(catalog, func(t Template, _ int) bool { return t.IsPremium })
}
