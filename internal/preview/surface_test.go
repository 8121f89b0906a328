package preview

import (
	"testing"

	"github.com/flexprice/docforge/internal/domain/document"
	"github.com/flexprice/docforge/internal/layout"
	"github.com/flexprice/docforge/internal/types"
	"github.com/flexprice/docforge/internal/watermark"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type SurfaceSuite struct {
	suite.Suite
	bus     *fakeBus
	surface *Surface
}

func TestSurface(t *testing.T) {
	suite.Run(t, new(SurfaceSuite))
}

func (s *SurfaceSuite) SetupTest() {
	s.bus = newFakeBus()
	surface, err := NewSurface(testInvoice(), SurfaceParams{
		Builder: layout.NewBuilder(nil),
		Policy:  watermark.NewPolicy(nil),
		Tier:    types.TierFree,
		Bus:     s.bus,
	})
	s.Require().NoError(err)
	s.surface = surface
}

func (s *SurfaceSuite) TestClickStartsEditingThatField() {
	scene := s.surface.Scene()
	x, y := screenCenter(fieldElement(s.T(), scene, document.FieldCustomerName), s.surface.Scale())

	f, err := s.surface.Click(x, y)
	s.Require().NoError(err)
	s.Require().NotNil(f)
	s.Equal(document.FieldCustomerName, f.Key())
	s.True(f.IsEditing())
	s.Equal("Jane Doe", f.Draft())
}

func (s *SurfaceSuite) TestClickOutsideCommitsActiveField() {
	f, err := s.surface.Edit(document.FieldBusinessPhone)
	s.Require().NoError(err)
	f.SetDraft("555-0199")

	got, err := s.surface.Click(1, 1)
	s.Require().NoError(err)
	s.Nil(got)
	s.False(f.IsEditing())
	s.Equal("555-0199", s.surface.Document().Business.Phone)
}

func (s *SurfaceSuite) TestEditingAnotherFieldCommitsThePrevious() {
	first, err := s.surface.Edit(document.FieldCustomerAddress)
	s.Require().NoError(err)
	first.SetDraft("9 Elm Rd")

	second, err := s.surface.Edit(document.FieldNotes)
	s.Require().NoError(err)
	s.False(first.IsEditing())
	s.True(second.IsEditing())
	s.Equal("9 Elm Rd", s.surface.Document().Customer.Address)
	s.Same(second, s.surface.Active())

	again, err := s.surface.Edit(document.FieldNotes)
	s.Require().NoError(err)
	s.Same(second, again)
}

func (s *SurfaceSuite) TestCommitRecomputesTotals() {
	s.InDelta(220.0, s.surface.Totals().Total, 1e-9)

	f, err := s.surface.Edit(document.ItemField(0, document.ItemUnitPrice))
	s.Require().NoError(err)
	_, err = f.Commit("150")
	s.Require().NoError(err)
	s.InDelta(330.0, s.surface.Totals().Total, 1e-9)

	s.surface.AddItem()
	f, err = s.surface.Edit(document.ItemField(1, document.ItemUnitPrice))
	s.Require().NoError(err)
	_, err = f.Commit("10")
	s.Require().NoError(err)
	s.InDelta(341.0, s.surface.Totals().Total, 1e-9)
}

func (s *SurfaceSuite) TestRemoveItemCancelsItemEdit() {
	added := s.surface.AddItem()
	f, err := s.surface.Edit(document.ItemField(1, document.ItemDescription))
	s.Require().NoError(err)
	f.SetDraft("Travel")

	s.Require().NoError(s.surface.RemoveItem(added.ID))
	s.False(f.IsEditing())
	s.Nil(s.surface.Active())
	s.Len(s.surface.Document().Items, 1)
}

func (s *SurfaceSuite) TestPointerDownDragsBlockUnderPointer() {
	scene := s.surface.Scene()
	x, y := screenCenter(fieldElement(s.T(), scene, document.FieldBusinessPhone), s.surface.Scale())

	s.False(s.surface.PointerDown(PointerEvent{X: x, Y: y, Target: TargetInput}))
	s.Zero(s.bus.attaches)

	s.True(s.surface.PointerDown(PointerEvent{X: x, Y: y, Target: TargetBlock}))
	block, dragging := s.surface.Drag().Dragging()
	s.True(dragging)
	s.Equal(types.BlockHeader, block)

	s.surface.Drag().PointerUp(PointerEvent{X: x + 20, Y: y})
	s.Equal(Offset{X: 20}, s.surface.Positions().Get(types.BlockHeader))
	s.Empty(s.bus.attached)
}

func (s *SurfaceSuite) TestOffsetsMoveOneBlockInTheScene() {
	base := s.surface.Scene()
	s.surface.Positions().Set(types.BlockTotals, Offset{X: pxPerMM * 5, Y: pxPerMM * 3})
	moved := s.surface.Scene()

	before, after := base.ByBlock(types.BlockTotals), moved.ByBlock(types.BlockTotals)
	s.Require().Len(after, len(before))
	for i := range before {
		s.InDelta(before[i].X+5, after[i].X, 1e-9)
		s.InDelta(before[i].Y+3, after[i].Y, 1e-9)
	}
	s.Equal(base.ByBlock(types.BlockHeader), moved.ByBlock(types.BlockHeader))

	s.surface.ResetLayout()
	s.Equal(base.Elements, s.surface.Scene().Elements)
}

func (s *SurfaceSuite) TestPlaceholdersFollowChrome() {
	hasNotes := func(p *layout.Page) bool {
		for _, e := range p.Elements {
			if e.Field == document.FieldNotes {
				return e.Placeholder
			}
		}
		return false
	}
	s.True(hasNotes(s.surface.Scene()))

	s.surface.SetChromeVisible(false)
	s.False(hasNotes(s.surface.Scene()))
}

func (s *SurfaceSuite) TestPremiumTemplateSelectableOnFreeTier() {
	tpl := s.surface.SelectTemplate("executive")
	s.Equal("executive", tpl.ID)
	s.True(tpl.IsPremium)
	s.Equal("executive", s.surface.Document().TemplateID)

	scene := s.surface.Scene()
	s.NotEmpty(scene.ByRole(layout.RoleWatermark))
	s.NotEmpty(scene.ByRole(layout.RoleAttribution))

	s.Equal("simple", s.surface.SelectTemplate("nope").ID)
}

func (s *SurfaceSuite) TestResizeChangesScale() {
	s.Equal(1.0, s.surface.Scale())
	s.surface.Resize(397)
	s.InDelta(0.5, s.surface.Scale(), 1e-9)
}

func (s *SurfaceSuite) TestSetLogoRejectsBadPayload() {
	err := s.surface.SetLogo("not an image")
	s.Error(err)
	s.Empty(s.surface.Document().LogoBase64)
}

func TestSurface_PremiumHasNoBranding(t *testing.T) {
	surface, err := NewSurface(testInvoice(), SurfaceParams{Tier: types.TierPremium})
	require.NoError(t, err)

	assert.False(t, surface.Branding().Watermarked())
	scene := surface.Scene()
	assert.Empty(t, scene.ByRole(layout.RoleWatermark))
	assert.Empty(t, scene.ByRole(layout.RoleAttribution))
}
