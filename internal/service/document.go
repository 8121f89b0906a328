package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/flexprice/docforge/internal/domain/document"
	"github.com/flexprice/docforge/internal/domain/history"
	"github.com/flexprice/docforge/internal/domain/template"
	ierr "github.com/flexprice/docforge/internal/errors"
	"github.com/flexprice/docforge/internal/pdfgen"
	"github.com/flexprice/docforge/internal/s3"
	"github.com/flexprice/docforge/internal/sentry"
	"github.com/flexprice/docforge/internal/types"
	"github.com/flexprice/docforge/internal/validation"
)

const defaultTrackTimeout = 5 * time.Second

type RenderRequest struct {
	Document *document.Document
	Renderer types.RendererKind
}

type RenderResponse struct {
	*pdfgen.Result
	Tier types.Tier
	// HistoryID is empty for anonymous callers. The record is written in the
	// background and is missing if tracking fails.
	HistoryID string
}

// DocumentService is the trust boundary in front of the calculator and the
// renderers
type DocumentService interface {
	Validate(ctx context.Context, doc *document.Document) validation.FieldErrors
	Totals(ctx context.Context, doc *document.Document) document.Totals
	// Render validates, renders for the caller's tier and records the export
	// in the background. History and archive failures are logged, never
	// returned.
	Render(ctx context.Context, req *RenderRequest) (*RenderResponse, error)
	// Wait blocks until background history writes finish or ctx is done
	Wait(ctx context.Context) error
}

type documentService struct {
	ServiceParams
	history  HistoryService
	clock    func() time.Time
	tracking sync.WaitGroup
}

func NewDocumentService(params ServiceParams, historyService HistoryService) DocumentService {
	if params.Validator == nil {
		params.Validator = validation.New(0)
	}
	if params.Templates == nil {
		params.Templates = template.NewRegistry()
	}
	return &documentService{
		ServiceParams: params,
		history:       historyService,
		clock:         time.Now,
	}
}

func (s *documentService) Validate(_ context.Context, doc *document.Document) validation.FieldErrors {
	return s.Validator.Validate(doc)
}

func (s *documentService) Totals(_ context.Context, doc *document.Document) document.Totals {
	return doc.Totals()
}

func (s *documentService) Render(ctx context.Context, req *RenderRequest) (*RenderResponse, error) {
	if req == nil || req.Document == nil {
		return nil, ierr.NewError("document is required").
			WithHint("Please provide a document").
			Mark(ierr.ErrValidation)
	}
	doc := req.Document

	renderer, err := s.Renderers.Get(req.Renderer)
	if err != nil {
		return nil, err
	}
	if errs := s.Validator.Validate(doc); len(errs) > 0 {
		return nil, errs.Err()
	}

	userID := types.GetUserID(ctx)
	tier := types.TierFree
	if s.Tier != nil {
		tier = s.Tier.Resolve(ctx, userID)
	}
	tpl := s.Templates.Get(doc.TemplateID)

	if s.Sentry != nil {
		s.Sentry.AddBreadcrumb("render", "rendering document", map[string]interface{}{
			"document_type": doc.Type,
			"template_id":   tpl.ID,
			"renderer":      renderer.Kind(),
			"tier":          tier,
		})
	}

	result, err := s.render(ctx, renderer, &pdfgen.Request{
		Document: doc,
		Template: tpl,
		Tier:     tier,
	})
	if err != nil {
		s.Logger.Errorw("failed to render document",
			"error", err,
			"document_number", doc.Number,
			"renderer", renderer.Kind(),
		)
		if s.Sentry != nil {
			s.Sentry.CaptureException(err)
		}
		return nil, err
	}

	pages, err := pdfgen.PageCount(result.Data)
	if err != nil {
		return nil, err
	}
	result.Pages = pages

	s.Logger.Infow("document rendered",
		"document_type", doc.Type,
		"document_number", doc.Number,
		"template_id", tpl.ID,
		"renderer", result.Renderer,
		"tier", tier,
		"pages", pages,
		"bytes", len(result.Data),
	)

	resp := &RenderResponse{Result: result, Tier: tier}
	if userID != "" && s.history != nil {
		rec := history.FromDocument(userID, doc, result.Renderer, s.clock())
		resp.HistoryID = rec.ID
		s.track(ctx, rec, result)
	}
	return resp, nil
}

func (s *documentService) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.tracking.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *documentService) render(ctx context.Context, renderer pdfgen.Renderer, req *pdfgen.Request) (result *pdfgen.Result, err error) {
	if s.Sentry != nil {
		span, spanCtx := s.Sentry.StartRenderSpan(ctx, string(renderer.Kind()), map[string]interface{}{
			"document_type": req.Document.Type,
			"template_id":   req.Template.ID,
		})
		ctx = spanCtx
		defer func() { sentry.FinishSpan(span, err) }()
	}

	if s.Pyroscope == nil {
		return renderer.Render(ctx, req)
	}
	labels := map[string]string{
		"renderer":      string(renderer.Kind()),
		"document_type": string(req.Document.Type),
	}
	s.Pyroscope.TagWrapper(ctx, labels, func(ctx context.Context) {
		result, err = renderer.Render(ctx, req)
	})
	return result, err
}

// track records the export off the request path. The write outlives a
// cancelled request but not the track timeout.
func (s *documentService) track(ctx context.Context, rec *history.Record, result *pdfgen.Result) {
	timeout := defaultTrackTimeout
	if s.Config != nil && s.Config.History.TrackTimeout > 0 {
		timeout = s.Config.History.TrackTimeout
	}
	ctx = context.WithoutCancel(ctx)

	s.tracking.Add(1)
	go func() {
		defer s.tracking.Done()
		defer func() {
			if r := recover(); r != nil {
				s.Logger.Errorw("history tracking panicked", "panic", fmt.Sprint(r), "record_id", rec.ID)
			}
		}()
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		s.record(ctx, rec, result)
	}()
}

// record archives the PDF when archiving is on, then tracks it
func (s *documentService) record(ctx context.Context, rec *history.Record, result *pdfgen.Result) {
	if s.Sentry != nil {
		span, spanCtx := s.Sentry.StartTransaction(ctx, "history.record")
		ctx = spanCtx
		defer func() { sentry.FinishSpan(span, nil) }()
	}

	if s.S3 != nil {
		archive := s3.NewArchive(rec.ID, rec.UserID, rec.DocumentType, result.Filename, result.Data)
		err := s.withStorageSpan(ctx, "s3.upload", map[string]interface{}{
			"record_id": rec.ID,
			"bytes":     len(result.Data),
		}, func(ctx context.Context) error {
			key, err := s.S3.UploadArchive(ctx, archive)
			rec.ArchiveKey = key
			return err
		})
		if err != nil {
			s.Logger.Warnw("failed to archive export", "record_id", rec.ID, "error", err)
		}
	}

	if err := s.history.Track(ctx, rec); err != nil {
		s.Logger.Warnw("failed to record export history",
			"error", err,
			"record_id", rec.ID,
			"document_number", rec.DocumentNumber,
		)
	}
}
