package watermark

import (
	"testing"

	"github.com/flexprice/docforge/internal/config"
	"github.com/flexprice/docforge/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestPolicy_For(t *testing.T) {
	p := NewPolicy(nil)

	free := p.For(types.TierFree)
	assert.True(t, free.Watermarked())
	assert.Equal(t, DefaultText, free.Stamp)
	assert.Equal(t, DefaultAttribution, free.Attribution)

	premium := p.For(types.TierPremium)
	assert.False(t, premium.Watermarked())
	assert.Empty(t, premium.Attribution)

	// unknown tiers fail closed
	assert.True(t, p.For(types.Tier("gold")).Watermarked())
	assert.True(t, p.For("").Watermarked())
}

func TestNewPolicy_Config(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Render.WatermarkText = "DRAFT"
	cfg.Render.AttributionText = "Made by us"

	b := NewPolicy(cfg).For(types.TierFree)
	assert.Equal(t, "DRAFT", b.Stamp)
	assert.Equal(t, "Made by us", b.Attribution)
}
