package memory

import (
	"context"
	"testing"
	"time"

	"github.com/flexprice/docforge/internal/domain/history"
	ierr "github.com/flexprice/docforge/internal/errors"
	"github.com/flexprice/docforge/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(id, user string, dt types.DocumentType, at time.Time) *history.Record {
	return &history.Record{
		ID:             id,
		UserID:         user,
		DocumentType:   dt,
		DocumentNumber: "DOC-" + id,
		TotalAmount:    10,
		Currency:       "USD",
		CreatedAt:      at,
	}
}

func TestHistoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewHistoryStore()
	base := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.Create(ctx, record("h1", "alice", types.DocumentTypeInvoice, base)))
	require.NoError(t, s.Create(ctx, record("h2", "alice", types.DocumentTypeReceipt, base.Add(time.Hour))))
	require.NoError(t, s.Create(ctx, record("h3", "bob", types.DocumentTypeInvoice, base.Add(2*time.Hour))))

	t.Run("duplicate id", func(t *testing.T) {
		err := s.Create(ctx, record("h1", "alice", types.DocumentTypeInvoice, base))
		assert.True(t, ierr.IsInvalidOperation(err))
	})

	t.Run("invalid record", func(t *testing.T) {
		err := s.Create(ctx, record("h9", "", types.DocumentTypeInvoice, base))
		assert.True(t, ierr.IsValidation(err))
	})

	t.Run("list is scoped and newest first", func(t *testing.T) {
		got, err := s.List(ctx, &history.Filter{UserID: "alice"})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "h2", got[0].ID)
		assert.Equal(t, "h1", got[1].ID)

		n, err := s.Count(ctx, &history.Filter{UserID: "alice"})
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("filter by type and page", func(t *testing.T) {
		got, err := s.List(ctx, &history.Filter{UserID: "alice", DocumentType: types.DocumentTypeInvoice})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "h1", got[0].ID)

		got, err = s.List(ctx, &history.Filter{UserID: "alice", Limit: 1, Offset: 1})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "h1", got[0].ID)

		got, err = s.List(ctx, &history.Filter{UserID: "alice", Offset: 5})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("returned records are copies", func(t *testing.T) {
		got, err := s.Get(ctx, "alice", "h1")
		require.NoError(t, err)
		got.CustomerName = "changed"

		again, err := s.Get(ctx, "alice", "h1")
		require.NoError(t, err)
		assert.Empty(t, again.CustomerName)
	})

	t.Run("only the owner can read or delete", func(t *testing.T) {
		_, err := s.Get(ctx, "bob", "h1")
		assert.True(t, ierr.IsNotFound(err))

		assert.True(t, ierr.IsNotFound(s.Delete(ctx, "bob", "h1")))
		require.NoError(t, s.Delete(ctx, "alice", "h1"))

		_, err = s.Get(ctx, "alice", "h1")
		assert.True(t, ierr.IsNotFound(err))
		assert.True(t, ierr.IsNotFound(s.Delete(ctx, "alice", "h1")))
	})
}
