package service

import (
	"context"
	"sync"
	"testing"

	"github.com/cenkalti/backoff/v4"
	"github.com/flexprice/docforge/internal/config"
	"github.com/flexprice/docforge/internal/domain/document"
	"github.com/flexprice/docforge/internal/domain/history"
	"github.com/flexprice/docforge/internal/domain/template"
	ierr "github.com/flexprice/docforge/internal/errors"
	"github.com/flexprice/docforge/internal/layout"
	"github.com/flexprice/docforge/internal/logger"
	"github.com/flexprice/docforge/internal/pdfgen"
	"github.com/flexprice/docforge/internal/repository/memory"
	"github.com/flexprice/docforge/internal/s3"
	"github.com/flexprice/docforge/internal/types"
	"github.com/flexprice/docforge/internal/validation"
	"github.com/flexprice/docforge/internal/watermark"
	"github.com/stretchr/testify/suite"
)

type staticTier map[string]types.Tier

func (t staticTier) Resolve(_ context.Context, userID string) types.Tier {
	if tier, ok := t[userID]; ok {
		return tier
	}
	return types.TierFree
}

// flakyRepo fails the first n creates with a database error
type flakyRepo struct {
	history.Repository
	failures int
	calls    int
	err      error
}

func (r *flakyRepo) Create(ctx context.Context, rec *history.Record) error {
	r.calls++
	if r.calls <= r.failures {
		return r.err
	}
	return r.Repository.Create(ctx, rec)
}

// fakeS3 keeps archives in a map. Missing keys fail GetArchive.
type fakeS3 struct {
	mu        sync.Mutex
	objects   map[string][]byte
	uploadErr error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

func (f *fakeS3) UploadArchive(_ context.Context, a *s3.Archive) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	key, err := s3.ObjectKey("archives", a)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = a.Data
	return key, nil
}

func (f *fakeS3) GetPresignedUrl(_ context.Context, key string) (string, error) {
	return "https://bucket.test/" + key, nil
}

func (f *fakeS3) GetArchive(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return nil, ierr.NewErrorf("no object %s", key).Mark(ierr.ErrHTTPClient)
	}
	return data, nil
}

func (f *fakeS3) Exists(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok, nil
}

func (f *fakeS3) remove(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
}

// txRecorder counts transactions and marks their context
type txRecorder struct {
	calls int
}

type txKey struct{}

func (t *txRecorder) WithTx(ctx context.Context, fn func(context.Context) error) error {
	t.calls++
	return fn(context.WithValue(ctx, txKey{}, t.calls))
}

// txCheckingRepo fails List and Count outside a transaction
type txCheckingRepo struct {
	history.Repository
}

func (r *txCheckingRepo) List(ctx context.Context, f *history.Filter) ([]*history.Record, error) {
	if ctx.Value(txKey{}) == nil {
		return nil, ierr.NewError("list outside transaction").Mark(ierr.ErrDatabase)
	}
	return r.Repository.List(ctx, f)
}

func (r *txCheckingRepo) Count(ctx context.Context, f *history.Filter) (int, error) {
	if ctx.Value(txKey{}) == nil {
		return 0, ierr.NewError("count outside transaction").Mark(ierr.ErrDatabase)
	}
	return r.Repository.Count(ctx, f)
}

type ServiceSuite struct {
	suite.Suite
	ctx     context.Context
	cfg     *config.Configuration
	store   *memory.HistoryStore
	params  ServiceParams
	history HistoryService
	docs    DocumentService
}

func TestServices(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.cfg = config.GetDefaultConfig()
	s.cfg.Render.Compress = false
	s.cfg.Render.CaptureScale = 1
	log := logger.NewNoopLogger()

	builder := layout.NewBuilder(nil)
	policy := watermark.NewPolicy(s.cfg)
	capture, err := pdfgen.NewCaptureRenderer(s.cfg, builder, policy, log)
	s.Require().NoError(err)

	s.store = memory.NewHistoryStore()
	s.params = ServiceParams{
		Logger:    log,
		Config:    s.cfg,
		Validator: validation.New(s.cfg.Render.MaxLogoBytes),
		Templates: template.NewRegistry(),
		Renderers: &pdfgen.Renderers{
			Programmatic: pdfgen.NewProgrammaticRenderer(s.cfg, builder, policy, log),
			Capture:      capture,
		},
		Tier:        staticTier{"vip": types.TierPremium},
		HistoryRepo: s.store,
	}
	s.history = s.newHistory(s.params)
	s.docs = NewDocumentService(s.params, s.history)
}

func (s *ServiceSuite) newHistory(p ServiceParams) HistoryService {
	svc := NewHistoryService(p).(*historyService)
	svc.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	return svc
}

func (s *ServiceSuite) asUser(id string) context.Context {
	return types.WithUserID(s.ctx, id)
}

func invoice() *document.Document {
	return &document.Document{
		Type:      types.DocumentTypeInvoice,
		Number:    "INV-001",
		IssueDate: "2024-01-10",
		DueDate:   "2024-02-10",
		Currency:  "USD",
		Business:  document.Business{Name: "Acme LLC", Address: "1 Main St", Phone: "555-0100"},
		Customer:  document.Customer{Name: "Jane Doe", Address: "2 Oak Ave", Email: "jane@x.com"},
		Items: []document.Item{
			{ID: "item_1", Description: "Consulting", Quantity: 2, UnitPrice: 100},
		},
		TaxPercent: 10,
		TemplateID: "simple",
	}
}

func (s *ServiceSuite) wait(docs DocumentService) {
	s.Require().NoError(docs.Wait(s.ctx))
}

func (s *ServiceSuite) count() int {
	n, err := s.store.Count(s.ctx, nil)
	s.Require().NoError(err)
	return n
}

func (s *ServiceSuite) TestFixtureIsValid() {
	s.Empty(s.params.Validator.Validate(invoice()))
}
