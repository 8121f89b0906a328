package preview

import (
	"strings"
	"sync"

	"github.com/flexprice/docforge/internal/asset"
	"github.com/flexprice/docforge/internal/domain/document"
	"github.com/flexprice/docforge/internal/domain/template"
	"github.com/flexprice/docforge/internal/layout"
	"github.com/flexprice/docforge/internal/types"
	"github.com/flexprice/docforge/internal/validation"
	"github.com/flexprice/docforge/internal/watermark"
)

const pxPerMM = asset.PxPerMM

// SurfaceParams are the collaborators of a preview surface. Tier is read
// once at construction and never looked up again by the surface.
type SurfaceParams struct {
	Registry       template.Registry
	Builder        *layout.Builder
	Policy         *watermark.Policy
	Tier           types.Tier
	Bus            EventBus
	AvailableWidth float64
	MaxLogoBytes   int
}

// Surface is the headless model of the interactive preview page of one
// document: click-to-edit fields, draggable blocks and the view scale.
type Surface struct {
	mu sync.Mutex

	doc      *document.Document
	tpl      template.Template
	registry template.Registry
	builder  *layout.Builder
	tier     types.Tier
	branding watermark.Branding
	maxLogo  int
	validate *validation.Validator
	logo     *asset.Logo
	totals   document.Totals

	positions *Positions
	viewport  *Viewport
	drag      *DragController

	chrome bool
	active *EditableField
}

// NewSurface opens a preview of doc. The surface owns doc from here on.
func NewSurface(doc *document.Document, p SurfaceParams) (*Surface, error) {
	registry := p.Registry
	if registry == nil {
		registry = template.NewRegistry()
	}
	builder := p.Builder
	if builder == nil {
		builder = layout.NewBuilder(nil)
	}
	policy := p.Policy
	if policy == nil {
		policy = watermark.NewPolicy(nil)
	}
	maxLogo := p.MaxLogoBytes
	if maxLogo <= 0 {
		maxLogo = asset.DefaultMaxBytes
	}
	logo, err := asset.DecodeLogo(doc.LogoBase64, maxLogo)
	if err != nil {
		return nil, err
	}

	s := &Surface{
		doc:       doc,
		tpl:       registry.Get(doc.TemplateID),
		registry:  registry,
		builder:   builder,
		tier:      p.Tier,
		branding:  policy.For(p.Tier),
		maxLogo:   maxLogo,
		validate:  validation.New(maxLogo),
		logo:      logo,
		totals:    doc.Totals(),
		positions: NewPositions(),
		viewport:  NewViewport(p.AvailableWidth),
		chrome:    true,
	}
	s.drag = NewDragController(s.positions, p.Bus, s.Scale)
	return s, nil
}

// surfaceBinding gives editable fields locked access to the document
type surfaceBinding struct {
	s *Surface
}

func (b surfaceBinding) Get(key string) (string, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	return b.s.doc.Get(key)
}

func (b surfaceBinding) Set(key, value string) error {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	return b.s.doc.Set(key, value)
}

// Validate checks the current document
func (s *Surface) Validate() validation.FieldErrors {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validate.Validate(s.doc)
}

// Document returns a copy of the current document
func (s *Surface) Document() *document.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// Totals are recomputed after every committed change
func (s *Surface) Totals() document.Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totals
}

func (s *Surface) Template() template.Template {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tpl
}

func (s *Surface) Tier() types.Tier {
	return s.tier
}

func (s *Surface) Branding() watermark.Branding {
	return s.branding
}

// Filename is the name the exported file is saved under
func (s *Surface) Filename() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Filename()
}

// SelectTemplate switches the visual preset. Premium templates are accepted
// for every tier; unknown ids select the default.
func (s *Surface) SelectTemplate(id string) template.Template {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tpl = s.registry.Get(id)
	s.doc.TemplateID = s.tpl.ID
	return s.tpl
}

// Scene lays out the page as it is drawn right now, including live drag
// offsets and, while chrome is visible, placeholders for empty fields.
func (s *Surface) Scene() *layout.Page {
	offsets := MM(s.drag.Offsets())
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.builder.Build(s.doc, s.tpl, layout.Options{
		Branding:     s.branding,
		Offsets:      offsets,
		Placeholders: s.chrome,
		Logo:         s.logo,
	})
}

// Edit switches the field with key into editing, committing whatever field
// was being edited before.
func (s *Surface) Edit(key string) (*EditableField, error) {
	if cur := s.Active(); cur != nil && cur.IsEditing() {
		if cur.Key() == key {
			return cur, nil
		}
		if _, err := cur.Blur(); err != nil {
			return nil, err
		}
	}
	f, err := NewEditableField(surfaceBinding{s: s}, key, s.committed)
	if err != nil {
		return nil, err
	}
	f.BeginEdit()
	s.mu.Lock()
	s.active = f
	s.mu.Unlock()
	return f, nil
}

// Click handles a click at screen coordinates. A click on a text leaf starts
// editing it; a click elsewhere commits the active field.
func (s *Surface) Click(x, y float64) (*EditableField, error) {
	mx, my := s.toPage(x, y)
	if el, ok := s.Scene().FieldAt(mx, my); ok {
		return s.Edit(el.Field)
	}
	return nil, s.Blur()
}

// Blur commits the active field, if any
func (s *Surface) Blur() error {
	cur := s.Active()
	if cur == nil {
		return nil
	}
	_, err := cur.Blur()
	return err
}

// Active is the field currently bound to an input, nil when none
func (s *Surface) Active() *EditableField {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// PointerDown starts dragging the block under the pointer. Events that
// started on an input or textarea never start a drag.
func (s *Surface) PointerDown(ev PointerEvent) bool {
	mx, my := s.toPage(ev.X, ev.Y)
	block, ok := s.Scene().BlockAt(mx, my)
	if !ok {
		return false
	}
	return s.drag.PointerDown(block, ev)
}

func (s *Surface) Drag() *DragController {
	return s.drag
}

func (s *Surface) Positions() *Positions {
	return s.positions
}

// ResetLayout moves every block back to the origin
func (s *Surface) ResetLayout() {
	s.positions.Reset()
}

// AddItem appends a line item and recomputes totals
func (s *Surface) AddItem() document.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	item := s.doc.AddItem()
	s.totals = s.doc.Totals()
	return item
}

// RemoveItem deletes a line item. An edit bound to an item row is cancelled
// since the row indexes shift.
func (s *Surface) RemoveItem(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.doc.RemoveItem(id); err != nil {
		return err
	}
	if s.active != nil && isItemKey(s.active.Key()) {
		s.active.Cancel()
		s.active = nil
	}
	s.totals = s.doc.Totals()
	return nil
}

// SetLogo replaces the logo. A payload that fails to decode leaves the
// current logo in place.
func (s *Surface) SetLogo(payload string) error {
	logo, err := asset.DecodeLogo(payload, s.maxLogo)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.LogoBase64 = payload
	s.logo = logo
	return nil
}

// Resize recomputes the fit scale for a new viewport width
func (s *Surface) Resize(available float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewport.Resize(available)
}

func (s *Surface) Scale() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewport.Scale()
}

// SetChromeVisible toggles editing affordances, placeholders included
func (s *Surface) SetChromeVisible(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chrome = v
}

func (s *Surface) ChromeVisible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chrome
}

// prepareCapture commits the active edit, forces native scale and hides the
// chrome. The returned func restores the previous view state.
func (s *Surface) prepareCapture() (func(), error) {
	if err := s.Blur(); err != nil {
		return func() {}, err
	}
	s.mu.Lock()
	scale, chrome := s.viewport.Scale(), s.chrome
	s.viewport.SetScale(1)
	s.chrome = false
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.viewport.SetScale(scale)
		s.chrome = chrome
	}, nil
}

func (s *Surface) toPage(x, y float64) (float64, float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewport.ToPage(x, y)
}

func (s *Surface) committed(string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totals = s.doc.Totals()
}

func isItemKey(key string) bool {
	return strings.HasPrefix(key, document.FieldItems+".")
}
