package watermark

import (
	"github.com/flexprice/docforge/internal/config"
	"github.com/flexprice/docforge/internal/types"
)

const (
	DefaultText        = "DOCFORGE"
	DefaultAttribution = "Generated with DocForge - docforge.app"

	// Stamp geometry shared by both renderers
	FontSizePt = 72.0
	AngleDeg   = 45.0
	Opacity    = 0.08
	// AttributionSizePt is the size of the footer credit line
	AttributionSizePt = 7.0
)

// Branding is what a renderer overlays on a page for one tier
type Branding struct {
	// Stamp is the diagonal watermark text; empty means none
	Stamp string
	// Attribution is the small footer credit; empty means none
	Attribution string
}

// Watermarked reports whether a stamp is drawn
func (b Branding) Watermarked() bool {
	return b.Stamp != ""
}

// Policy decides branding from the tier alone. It is consulted only at render
// time and never refuses a template.
type Policy struct {
	Text        string
	Attribution string
}

// NewPolicy builds the policy from render configuration
func NewPolicy(cfg *config.Configuration) *Policy {
	p := &Policy{Text: DefaultText, Attribution: DefaultAttribution}
	if cfg != nil {
		if cfg.Render.WatermarkText != "" {
			p.Text = cfg.Render.WatermarkText
		}
		if cfg.Render.AttributionText != "" {
			p.Attribution = cfg.Render.AttributionText
		}
	}
	return p
}

// For returns the branding for tier. Anything other than premium is branded.
func (p *Policy) For(tier types.Tier) Branding {
	if tier.IsPremium() {
		return Branding{}
	}
	text, attribution := p.Text, p.Attribution
	if text == "" {
		text = DefaultText
	}
	if attribution == "" {
		attribution = DefaultAttribution
	}
	return Branding{Stamp: text, Attribution: attribution}
}
