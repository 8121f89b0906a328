package preview

import (
	"context"
	"sync"
	"time"

	"github.com/flexprice/docforge/internal/cache"
	"github.com/flexprice/docforge/internal/domain/document"
	ierr "github.com/flexprice/docforge/internal/errors"
	"github.com/flexprice/docforge/internal/types"
	"github.com/flexprice/docforge/internal/validation"
	jsoniter "github.com/json-iterator/go"
)

// Authenticator is the external auth collaborator
type Authenticator interface {
	SignOut(ctx context.Context) error
}

// Store holds session owned values. *cache.InMemoryCache satisfies it.
type Store interface {
	ForceCacheGet(ctx context.Context, key string) (interface{}, bool)
	ForceCacheSet(ctx context.Context, key string, value interface{}, expiration time.Duration)
	Delete(ctx context.Context, key string)
}

const draftKey = "draft"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Session is the editor of one signed in user: the form document, the open
// preview and the storage keys the session wrote.
type Session struct {
	mu sync.Mutex

	id        string
	auth      Authenticator
	store     Store
	validator *validation.Validator
	params    SurfaceParams

	doc     *document.Document
	surface *Surface
	keys    map[string]struct{}
}

func NewSession(id string, auth Authenticator, store Store, validator *validation.Validator, params SurfaceParams) *Session {
	if validator == nil {
		validator = validation.New(params.MaxLogoBytes)
	}
	return &Session{
		id:        id,
		auth:      auth,
		store:     store,
		validator: validator,
		params:    params,
		keys:      make(map[string]struct{}),
	}
}

// Start replaces the form with a blank document of docType
func (s *Session) Start(docType types.DocumentType, now time.Time) *document.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = document.New(docType, now)
	s.surface = nil
	return s.doc.Clone()
}

// Load replaces the form with doc
func (s *Session) Load(doc *document.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc.Clone()
	s.surface = nil
}

// Document returns a copy of the form document, nil before Start or Load
func (s *Session) Document() *document.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return nil
	}
	return s.doc.Clone()
}

// Update applies fn to the form document
func (s *Session) Update(fn func(d *document.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireDocument(); err != nil {
		return err
	}
	return fn(s.doc)
}

// SwitchType changes the document type of the form. The type is fixed once
// the preview is open.
func (s *Session) SwitchType(t types.DocumentType) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireDocument(); err != nil {
		return err
	}
	if s.surface != nil {
		return ierr.NewError("document type is fixed while the preview is open").
			WithHint("Close the preview to change the document type").
			Mark(ierr.ErrInvalidOperation)
	}
	s.doc = s.doc.SwitchType(t)
	return nil
}

// Validate runs the field rules over the form document
func (s *Session) Validate() validation.FieldErrors {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return validation.FieldErrors{{Field: "documentType", Message: "Select a document type"}}
	}
	return s.validator.Validate(s.doc)
}

// OpenPreview validates the form and opens the preview surface on a copy of
// it. Any field error keeps the preview closed.
func (s *Session) OpenPreview() (*Surface, validation.FieldErrors, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireDocument(); err != nil {
		return nil, nil, err
	}
	if s.surface != nil {
		return s.surface, nil, nil
	}
	if errs := s.validator.Validate(s.doc); len(errs) > 0 {
		return nil, errs, errs.Err()
	}
	surface, err := NewSurface(s.doc.Clone(), s.params)
	if err != nil {
		return nil, nil, err
	}
	s.surface = surface
	return surface, nil, nil
}

// Preview is the open surface, nil when closed
func (s *Session) Preview() *Surface {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.surface
}

// ClosePreview keeps the edits made in the preview as the form document
func (s *Session) ClosePreview() {
	s.mu.Lock()
	surface := s.surface
	s.surface = nil
	s.mu.Unlock()
	if surface == nil {
		return
	}
	_ = surface.Blur()
	doc := surface.Document()
	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
}

// Remember stores a session owned value
func (s *Session) Remember(ctx context.Context, name, value string) {
	key := s.key(name)
	s.store.ForceCacheSet(ctx, key, value, 0)
	s.mu.Lock()
	s.keys[key] = struct{}{}
	s.mu.Unlock()
}

// Recall reads a value written with Remember
func (s *Session) Recall(ctx context.Context, name string) (string, bool) {
	v, ok := s.store.ForceCacheGet(ctx, s.key(name))
	if !ok {
		return "", false
	}
	str, ok := v.(string)
	return str, ok
}

// SaveDraft stores the form document so the editor can be reopened later
func (s *Session) SaveDraft(ctx context.Context) error {
	doc := s.Document()
	if doc == nil {
		return nil
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Could not save the draft").
			Mark(ierr.ErrSystem)
	}
	s.Remember(ctx, draftKey, string(data))
	return nil
}

// RestoreDraft loads the saved draft into the form. It reports false when
// no draft was saved.
func (s *Session) RestoreDraft(ctx context.Context) (bool, error) {
	raw, ok := s.Recall(ctx, draftKey)
	if !ok {
		return false, nil
	}
	var doc document.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return false, ierr.WithError(err).
			WithHint("The saved draft could not be read").
			Mark(ierr.ErrValidation)
	}
	s.Load(&doc)
	return true, nil
}

// SignOut signs out with the auth collaborator, then clears exactly the keys
// this session wrote along with the form and preview. Local state is cleared
// even when the collaborator fails.
func (s *Session) SignOut(ctx context.Context) error {
	var err error
	if s.auth != nil {
		err = s.auth.SignOut(ctx)
	}

	s.mu.Lock()
	keys := s.keys
	s.keys = make(map[string]struct{})
	s.doc = nil
	s.surface = nil
	s.mu.Unlock()

	for k := range keys {
		s.store.Delete(ctx, k)
	}

	if err != nil {
		return ierr.WithError(err).
			WithHint("Sign out failed. Please try again.").
			Mark(ierr.ErrHTTPClient)
	}
	return nil
}

func (s *Session) key(name string) string {
	return cache.GenerateKey(cache.PrefixSession, s.id, name)
}

func (s *Session) requireDocument() error {
	if s.doc == nil {
		return ierr.NewError("no document in session").
			WithHint("Choose a document type to start").
			Mark(ierr.ErrInvalidOperation)
	}
	return nil
}
