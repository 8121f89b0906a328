package service

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/flexprice/docforge/internal/api/dto"
	"github.com/flexprice/docforge/internal/domain/history"
	ierr "github.com/flexprice/docforge/internal/errors"
	"github.com/flexprice/docforge/internal/types"
	"github.com/flexprice/docforge/internal/validator"
)

const defaultTrackAttempts = 3

// HistoryService records exports and serves them back to their owner
type HistoryService interface {
	// Track stores rec, retrying transient store failures
	Track(ctx context.Context, rec *history.Record) error
	ListHistory(ctx context.Context, req *dto.ListHistoryRequest) (*dto.ListHistoryResponse, error)
	GetHistory(ctx context.Context, id string) (*dto.HistoryResponse, error)
	// DownloadArchive returns the archived PDF of one export
	DownloadArchive(ctx context.Context, id string) (*ArchiveFile, error)
	DeleteHistory(ctx context.Context, id string) error
}

// ArchiveFile is an archived export read back from storage
type ArchiveFile struct {
	Filename string
	Data     []byte
}

type historyService struct {
	ServiceParams
	newBackOff func() backoff.BackOff
}

func NewHistoryService(params ServiceParams) HistoryService {
	return &historyService{
		ServiceParams: params,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 100 * time.Millisecond
			b.MaxInterval = 2 * time.Second
			return b
		},
	}
}

func (s *historyService) Track(ctx context.Context, rec *history.Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	attempts := uint64(defaultTrackAttempts)
	if s.Config != nil && s.Config.History.MaxAttempts > 0 {
		attempts = s.Config.History.MaxAttempts
	}

	op := func() error {
		err := s.HistoryRepo.Create(ctx, rec)
		if err == nil {
			return nil
		}
		if ierr.IsValidation(err) || ierr.IsInvalidOperation(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(s.newBackOff(), attempts-1), ctx)
	notify := func(err error, wait time.Duration) {
		s.Logger.Debugw("retrying history write",
			"record_id", rec.ID,
			"error", err,
			"wait", wait,
		)
	}

	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to record export history").
			Mark(ierr.ErrDatabase)
	}
	s.Logger.Debugw("export recorded", "record_id", rec.ID, "user_id", rec.UserID)
	return nil
}

func (s *historyService) ListHistory(ctx context.Context, req *dto.ListHistoryRequest) (*dto.ListHistoryResponse, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if req == nil {
		req = &dto.ListHistoryRequest{}
	}
	if err := validator.ValidateRequest(req); err != nil {
		return nil, err
	}

	filter := &history.Filter{
		UserID:       userID,
		DocumentType: req.DocumentType,
		Limit:        req.Limit,
		Offset:       req.Offset,
	}
	filter.Normalize()

	var records []*history.Record
	var total int
	err = s.withTx(ctx, func(txCtx context.Context) error {
		var err error
		if records, err = s.HistoryRepo.List(txCtx, filter); err != nil {
			return err
		}
		total, err = s.HistoryRepo.Count(txCtx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	return dto.NewListHistoryResponse(records, total, filter.Limit, filter.Offset), nil
}

// GetHistory includes a presigned download link when the archived export is
// still in the bucket
func (s *historyService) GetHistory(ctx context.Context, id string) (*dto.HistoryResponse, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	rec, err := s.HistoryRepo.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	resp := dto.NewHistoryResponse(rec)
	if rec.ArchiveKey == "" || s.S3 == nil {
		return resp, nil
	}

	params := map[string]interface{}{"record_id": rec.ID}
	err = s.withStorageSpan(ctx, "s3.presign", params, func(ctx context.Context) error {
		ok, err := s.S3.Exists(ctx, rec.ArchiveKey)
		if err != nil {
			return err
		}
		if !ok {
			resp.Archived = false
			return nil
		}
		resp.DownloadURL, err = s.S3.GetPresignedUrl(ctx, rec.ArchiveKey)
		return err
	})
	if err != nil {
		s.Logger.Warnw("failed to presign archive", "record_id", rec.ID, "error", err)
	}
	return resp, nil
}

func (s *historyService) DownloadArchive(ctx context.Context, id string) (*ArchiveFile, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	rec, err := s.HistoryRepo.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if rec.ArchiveKey == "" || s.S3 == nil {
		return nil, ierr.NewErrorf("history record %s has no archive", id).
			WithHint("This export was not archived").
			Mark(ierr.ErrNotFound)
	}

	var data []byte
	err = s.withStorageSpan(ctx, "s3.get", map[string]interface{}{"record_id": rec.ID}, func(ctx context.Context) error {
		var err error
		data, err = s.S3.GetArchive(ctx, rec.ArchiveKey)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &ArchiveFile{Filename: rec.Filename(), Data: data}, nil
}

func (s *historyService) DeleteHistory(ctx context.Context, id string) error {
	userID, err := requireUser(ctx)
	if err != nil {
		return err
	}
	return s.HistoryRepo.Delete(ctx, userID, id)
}

func requireUser(ctx context.Context) (string, error) {
	userID := types.GetUserID(ctx)
	if userID == "" {
		return "", ierr.NewError("user id missing").
			WithHint("Sign in to see your export history").
			Mark(ierr.ErrPermissionDenied)
	}
	return userID, nil
}
