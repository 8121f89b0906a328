package service

import (
	"context"
	"time"

	"github.com/flexprice/docforge/internal/domain/history"
	ierr "github.com/flexprice/docforge/internal/errors"
	"github.com/flexprice/docforge/internal/types"
)

func (s *ServiceSuite) TestRender_Programmatic() {
	resp, err := s.docs.Render(s.asUser("alice"), &RenderRequest{Document: invoice()})
	s.Require().NoError(err)

	s.Equal(types.RendererProgrammatic, resp.Renderer)
	s.Equal(types.TierFree, resp.Tier)
	s.Equal(1, resp.Pages)
	s.Equal("invoice-INV-001.pdf", resp.Filename)
	s.NotEmpty(resp.HistoryID)
	s.wait(s.docs)

	recs, err := s.store.List(s.ctx, &history.Filter{UserID: "alice"})
	s.Require().NoError(err)
	s.Require().Len(recs, 1)
	s.Equal(resp.HistoryID, recs[0].ID)
	s.Equal("INV-001", recs[0].DocumentNumber)
	s.InDelta(220.0, recs[0].TotalAmount, 1e-9)
	s.Equal("programmatic", recs[0].Renderer)
}

func (s *ServiceSuite) TestRender_Capture() {
	resp, err := s.docs.Render(s.asUser("vip"), &RenderRequest{Document: invoice(), Renderer: types.RendererCapture})
	s.Require().NoError(err)
	s.Equal(types.RendererCapture, resp.Renderer)
	s.Equal(types.TierPremium, resp.Tier)
	s.GreaterOrEqual(resp.Pages, 1)
}

func (s *ServiceSuite) TestRender_AnonymousIsNotTracked() {
	resp, err := s.docs.Render(s.ctx, &RenderRequest{Document: invoice()})
	s.Require().NoError(err)
	s.Empty(resp.HistoryID)
	s.Equal(types.TierFree, resp.Tier)
	s.Zero(s.count())
}

func (s *ServiceSuite) TestRender_InvalidDocument() {
	doc := invoice()
	doc.Customer.Email = ""

	_, err := s.docs.Render(s.asUser("alice"), &RenderRequest{Document: doc})
	s.True(ierr.IsValidation(err))
	s.Equal(422, ierr.HTTPStatusFromErr(err))
	s.Zero(s.count())
}

func (s *ServiceSuite) TestRender_UnknownRenderer() {
	_, err := s.docs.Render(s.ctx, &RenderRequest{Document: invoice(), Renderer: "browser"})
	s.True(ierr.IsValidation(err))

	_, err = s.docs.Render(s.ctx, &RenderRequest{})
	s.True(ierr.IsValidation(err))
}

func (s *ServiceSuite) TestRender_HistoryFailureDoesNotFail() {
	repo := &flakyRepo{Repository: s.store, failures: 10, err: ierr.NewError("db down").Mark(ierr.ErrDatabase)}
	p := s.params
	p.HistoryRepo = repo
	docs := NewDocumentService(p, s.newHistory(p))

	resp, err := docs.Render(s.asUser("alice"), &RenderRequest{Document: invoice()})
	s.Require().NoError(err)
	s.NotEmpty(resp.Data)
	s.NotEmpty(resp.HistoryID)

	s.wait(docs)
	s.Equal(int(s.cfg.History.MaxAttempts), repo.calls)
	s.Zero(s.count())
}

// blockingRepo holds creates until release is closed
type blockingRepo struct {
	history.Repository
	started chan struct{}
	release chan struct{}
}

func (r *blockingRepo) Create(ctx context.Context, rec *history.Record) error {
	close(r.started)
	<-r.release
	return r.Repository.Create(ctx, rec)
}

func (s *ServiceSuite) TestRender_DoesNotWaitForHistory() {
	repo := &blockingRepo{Repository: s.store, started: make(chan struct{}), release: make(chan struct{})}
	p := s.params
	p.HistoryRepo = repo
	docs := NewDocumentService(p, s.newHistory(p))

	resp, err := docs.Render(s.asUser("alice"), &RenderRequest{Document: invoice()})
	s.Require().NoError(err)
	s.NotEmpty(resp.HistoryID)

	<-repo.started
	s.Zero(s.count())

	ctx, cancel := context.WithTimeout(s.ctx, 10*time.Millisecond)
	defer cancel()
	s.ErrorIs(docs.Wait(ctx), context.DeadlineExceeded)

	close(repo.release)
	s.wait(docs)
	_, err = s.store.Get(s.ctx, "alice", resp.HistoryID)
	s.NoError(err)
}

func (s *ServiceSuite) TestRender_Archives() {
	bucket := newFakeS3()
	p := s.params
	p.S3 = bucket
	hist := s.newHistory(p)
	docs := NewDocumentService(p, hist)

	alice := s.asUser("alice")
	resp, err := docs.Render(alice, &RenderRequest{Document: invoice()})
	s.Require().NoError(err)
	s.wait(docs)

	rec, err := s.store.Get(s.ctx, "alice", resp.HistoryID)
	s.Require().NoError(err)
	s.Equal("archives/alice/invoice/"+resp.HistoryID+".pdf", rec.ArchiveKey)

	got, err := hist.GetHistory(alice, resp.HistoryID)
	s.Require().NoError(err)
	s.True(got.Archived)
	s.Equal("https://bucket.test/"+rec.ArchiveKey, got.DownloadURL)

	file, err := hist.DownloadArchive(alice, resp.HistoryID)
	s.Require().NoError(err)
	s.Equal("invoice-INV-001.pdf", file.Filename)
	s.Equal(resp.Data, file.Data)

	// expired from the bucket
	bucket.remove(rec.ArchiveKey)
	got, err = hist.GetHistory(alice, resp.HistoryID)
	s.Require().NoError(err)
	s.False(got.Archived)
	s.Empty(got.DownloadURL)
}

func (s *ServiceSuite) TestRender_ArchiveFailureStillTracks() {
	bucket := newFakeS3()
	bucket.uploadErr = ierr.NewError("bucket down").Mark(ierr.ErrHTTPClient)
	p := s.params
	p.S3 = bucket
	hist := s.newHistory(p)
	docs := NewDocumentService(p, hist)

	resp, err := docs.Render(s.asUser("alice"), &RenderRequest{Document: invoice()})
	s.Require().NoError(err)
	s.wait(docs)

	rec, err := s.store.Get(s.ctx, "alice", resp.HistoryID)
	s.Require().NoError(err)
	s.Empty(rec.ArchiveKey)

	_, err = hist.DownloadArchive(s.asUser("alice"), resp.HistoryID)
	s.True(ierr.IsNotFound(err))
}

func (s *ServiceSuite) TestTotalsAndValidate() {
	doc := invoice()
	totals := s.docs.Totals(s.ctx, doc)
	s.InDelta(200.0, totals.Subtotal, 1e-9)
	s.InDelta(220.0, totals.Total, 1e-9)

	s.Empty(s.docs.Validate(s.ctx, doc))
	doc.Number = ""
	s.True(s.docs.Validate(s.ctx, doc).Has("documentNumber"))
}
