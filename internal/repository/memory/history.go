package memory

import (
	"context"

	"github.com/flexprice/docforge/internal/domain/history"
)

// HistoryStore implements history.Repository in memory
type HistoryStore struct {
	*InMemoryStore[*history.Record]
}

func NewHistoryStore() *HistoryStore {
	return &HistoryStore{InMemoryStore: NewInMemoryStore[*history.Record]()}
}

func copyRecord(r *history.Record) *history.Record {
	c := *r
	return &c
}

func matches(f *history.Filter) FilterFunc[*history.Record] {
	return func(_ context.Context, r *history.Record) bool {
		if f == nil {
			return true
		}
		if f.UserID != "" && r.UserID != f.UserID {
			return false
		}
		if f.DocumentType != "" && r.DocumentType != f.DocumentType {
			return false
		}
		return true
	}
}

// newestFirst orders like the postgres store: created_at desc, id desc
func newestFirst(a, b *history.Record) bool {
	if a.CreatedAt.Equal(b.CreatedAt) {
		return a.ID > b.ID
	}
	return a.CreatedAt.After(b.CreatedAt)
}

func (s *HistoryStore) Create(ctx context.Context, r *history.Record) error {
	if err := r.Validate(); err != nil {
		return err
	}
	return s.InMemoryStore.Create(ctx, r.ID, copyRecord(r))
}

// Get returns the record only to its owner
func (s *HistoryStore) Get(ctx context.Context, userID, id string) (*history.Record, error) {
	r, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.UserID != userID {
		return nil, notFound(id)
	}
	return copyRecord(r), nil
}

func (s *HistoryStore) List(ctx context.Context, f *history.Filter) ([]*history.Record, error) {
	if f == nil {
		f = &history.Filter{}
	}
	f.Normalize()
	out := s.InMemoryStore.List(ctx, matches(f), newestFirst, f.Offset, f.Limit)
	for i := range out {
		out[i] = copyRecord(out[i])
	}
	return out, nil
}

func (s *HistoryStore) Count(ctx context.Context, f *history.Filter) (int, error) {
	return s.InMemoryStore.Count(ctx, matches(f)), nil
}

func (s *HistoryStore) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	return s.InMemoryStore.Delete(ctx, id)
}
