package history

import (
	"fmt"
	"strings"
	"time"

	"github.com/flexprice/docforge/internal/domain/document"
	ierr "github.com/flexprice/docforge/internal/errors"
	"github.com/flexprice/docforge/internal/types"
)

// Record is the summary of one successful export. It is written only after
// the PDF has been produced and may later be deleted by its owner.
type Record struct {
	ID             string             `json:"id" db:"id"`
	UserID         string             `json:"user_id" db:"user_id"`
	DocumentType   types.DocumentType `json:"document_type" db:"document_type"`
	DocumentNumber string             `json:"document_number" db:"document_number"`
	CustomerName   string             `json:"customer_name" db:"customer_name"`
	CustomerEmail  string             `json:"customer_email" db:"customer_email"`
	TotalAmount    float64            `json:"total_amount" db:"total_amount"`
	Currency       string             `json:"currency" db:"currency"`
	Renderer       string             `json:"renderer" db:"renderer"`
	ArchiveKey     string             `json:"archive_key,omitempty" db:"archive_key"`
	CreatedAt      time.Time          `json:"created_at" db:"created_at"`
}

// FromDocument builds the record emitted after exporting doc
func FromDocument(userID string, doc *document.Document, renderer types.RendererKind, at time.Time) *Record {
	return &Record{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_HISTORY),
		UserID:         userID,
		DocumentType:   doc.Type,
		DocumentNumber: doc.Number,
		CustomerName:   doc.Customer.Name,
		CustomerEmail:  doc.Customer.Email,
		TotalAmount:    doc.Totals().Total,
		Currency:       strings.ToUpper(doc.CurrencyCode()),
		Renderer:       string(renderer),
		CreatedAt:      at.UTC(),
	}
}

// Filename is the name the archived export was saved under
func (r *Record) Filename() string {
	return fmt.Sprintf("%s-%s.pdf", r.DocumentType, r.DocumentNumber)
}

// Validate validates the record
func (r *Record) Validate() error {
	if r.UserID == "" {
		return ierr.NewError("user_id is required").
			WithHint("History records need an owner").
			Mark(ierr.ErrValidation)
	}
	if err := r.DocumentType.Validate(); err != nil {
		return err
	}
	if r.DocumentNumber == "" {
		return ierr.NewError("document_number is required").
			WithHint("History records need a document number").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Filter narrows a history listing
type Filter struct {
	UserID       string
	DocumentType types.DocumentType
	Limit        int
	Offset       int
}

// DefaultLimit is applied when a filter sets none
const DefaultLimit = 50

// Normalize fills defaults and clamps the page size
func (f *Filter) Normalize() {
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = DefaultLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}
