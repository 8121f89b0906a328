package history

import (
	"strings"
	"testing"
	"time"

	"github.com/flexprice/docforge/internal/domain/document"
	ierr "github.com/flexprice/docforge/internal/errors"
	"github.com/flexprice/docforge/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromDocument(t *testing.T) {
	doc := &document.Document{
		Type:       types.DocumentTypeInvoice,
		Number:     "INV-7",
		Currency:   "eur",
		Customer:   document.Customer{Name: "Jane Doe", Email: "jane@x.com"},
		Items:      []document.Item{{Description: "Consulting", Quantity: 2, UnitPrice: 100}},
		TaxPercent: 10,
	}
	at := time.Date(2024, 1, 10, 12, 0, 0, 0, time.FixedZone("x", 3600))

	rec := FromDocument("user_1", doc, types.RendererCapture, at)
	require.NoError(t, rec.Validate())
	assert.True(t, strings.HasPrefix(rec.ID, types.UUID_PREFIX_HISTORY+"_"))
	assert.Equal(t, "INV-7", rec.DocumentNumber)
	assert.InDelta(t, 220.0, rec.TotalAmount, 1e-9)
	assert.Equal(t, "EUR", rec.Currency)
	assert.Equal(t, "capture", rec.Renderer)
	assert.Equal(t, time.UTC, rec.CreatedAt.Location())
}

func TestRecord_Validate(t *testing.T) {
	rec := &Record{DocumentType: types.DocumentTypeInvoice, DocumentNumber: "1"}
	assert.True(t, ierr.IsValidation(rec.Validate()))

	rec.UserID = "u"
	rec.DocumentType = "memo"
	assert.True(t, ierr.IsValidation(rec.Validate()))
}

func TestFilter_Normalize(t *testing.T) {
	f := &Filter{Limit: 0, Offset: -3}
	f.Normalize()
	assert.Equal(t, DefaultLimit, f.Limit)
	assert.Zero(t, f.Offset)

	f = &Filter{Limit: 10000}
	f.Normalize()
	assert.Equal(t, DefaultLimit, f.Limit)
}
