package service

import (
	"time"

	"github.com/flexprice/docforge/internal/api/dto"
	"github.com/flexprice/docforge/internal/domain/history"
	ierr "github.com/flexprice/docforge/internal/errors"
	"github.com/flexprice/docforge/internal/types"
)

func (s *ServiceSuite) record(user, number string, at time.Time) *history.Record {
	doc := invoice()
	doc.Number = number
	return history.FromDocument(user, doc, types.RendererProgrammatic, at)
}

func (s *ServiceSuite) TestTrack_RetriesTransientFailures() {
	repo := &flakyRepo{Repository: s.store, failures: 2, err: ierr.NewError("db down").Mark(ierr.ErrDatabase)}
	p := s.params
	p.HistoryRepo = repo

	err := s.newHistory(p).Track(s.ctx, s.record("alice", "INV-1", time.Now()))
	s.Require().NoError(err)
	s.Equal(3, repo.calls)
	s.Equal(1, s.count())
}

func (s *ServiceSuite) TestTrack_GivesUp() {
	repo := &flakyRepo{Repository: s.store, failures: 5, err: ierr.NewError("db down").Mark(ierr.ErrDatabase)}
	p := s.params
	p.HistoryRepo = repo

	err := s.newHistory(p).Track(s.ctx, s.record("alice", "INV-1", time.Now()))
	s.Error(err)
	s.Equal(3, repo.calls)
}

func (s *ServiceSuite) TestTrack_PermanentFailureIsNotRetried() {
	rec := s.record("alice", "INV-1", time.Now())
	s.Require().NoError(s.history.Track(s.ctx, rec))

	repo := &flakyRepo{Repository: s.store}
	p := s.params
	p.HistoryRepo = repo
	s.Error(s.newHistory(p).Track(s.ctx, rec))
	s.Equal(1, repo.calls)

	s.True(ierr.IsValidation(s.history.Track(s.ctx, &history.Record{})))
}

func (s *ServiceSuite) TestListGetDelete() {
	base := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	first := s.record("alice", "INV-1", base)
	second := s.record("alice", "INV-2", base.Add(time.Minute))
	s.Require().NoError(s.history.Track(s.ctx, first))
	s.Require().NoError(s.history.Track(s.ctx, second))
	s.Require().NoError(s.history.Track(s.ctx, s.record("bob", "INV-3", base)))

	alice := s.asUser("alice")
	list, err := s.history.ListHistory(alice, &dto.ListHistoryRequest{})
	s.Require().NoError(err)
	s.Equal(2, list.Pagination.Total)
	s.Require().Len(list.Items, 2)
	s.Equal("INV-2", list.Items[0].DocumentNumber)
	s.False(list.Items[0].Archived)

	got, err := s.history.GetHistory(alice, first.ID)
	s.Require().NoError(err)
	s.Equal("INV-1", got.DocumentNumber)
	s.Empty(got.DownloadURL)

	_, err = s.history.GetHistory(s.asUser("bob"), first.ID)
	s.True(ierr.IsNotFound(err))

	s.Require().NoError(s.history.DeleteHistory(alice, first.ID))
	s.True(ierr.IsNotFound(s.history.DeleteHistory(alice, first.ID)))
}

func (s *ServiceSuite) TestListHistory_RunsInTransaction() {
	tx := &txRecorder{}
	p := s.params
	p.DB = tx
	p.HistoryRepo = &txCheckingRepo{Repository: s.store}
	s.Require().NoError(s.history.Track(s.ctx, s.record("alice", "INV-1", time.Now())))

	list, err := s.newHistory(p).ListHistory(s.asUser("alice"), nil)
	s.Require().NoError(err)
	s.Equal(1, list.Pagination.Total)
	s.Len(list.Items, 1)
	s.Equal(1, tx.calls)
}

func (s *ServiceSuite) TestHistoryNeedsUser() {
	_, err := s.history.ListHistory(s.ctx, nil)
	s.Equal(403, ierr.HTTPStatusFromErr(err))

	_, err = s.history.ListHistory(s.asUser("alice"), &dto.ListHistoryRequest{Limit: 1000})
	s.True(ierr.IsValidation(err))

	_, err = s.history.DownloadArchive(s.ctx, "hist_1")
	s.Equal(403, ierr.HTTPStatusFromErr(err))
}

func (s *ServiceSuite) TestTemplates() {
	svc := NewTemplateService(s.params)
	all := svc.ListTemplates(s.ctx, nil).Items
	premium, free := true, false
	s.Len(all, len(svc.ListTemplates(s.ctx, &premium).Items)+len(svc.ListTemplates(s.ctx, &free).Items))

	tpl, err := svc.GetTemplate(s.ctx, "simple")
	s.Require().NoError(err)
	s.Equal("simple", tpl.ID)

	_, err = svc.GetTemplate(s.ctx, "nope")
	s.True(ierr.IsNotFound(err))
}
