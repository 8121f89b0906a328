package template

import (
	"github.com/flexprice/docforge/internal/types"
)

// Style is the visual description of a template. Both renderers read it and
// nothing else when deciding how a document looks.
type Style struct {
	HeaderColor    string           `json:"header_color"`
	AccentColor    string           `json:"accent_color"`
	FontFamily     types.FontFamily `json:"font_family"`
	Layout         types.LayoutKind `json:"layout"`
	ShowBorder     bool             `json:"show_border"`
	ShowAccentLine bool             `json:"show_accent_line"`
	HeaderBgFill   bool             `json:"header_bg_fill"`
	TableStyle     types.TableStyle `json:"table_style"`
}

// Template is an immutable, system defined styling preset
type Template struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPremium   bool   `json:"is_premium"`
	Style       Style  `json:"style"`
}
