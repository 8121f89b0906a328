package types

import (
	ierr "github.com/flexprice/docforge/internal/errors"
	"github.com/samber/lo"
)

// DocumentType is the discriminant of a financial document
type DocumentType string

const (
	DocumentTypeInvoice   DocumentType = "invoice"
	DocumentTypeReceipt   DocumentType = "receipt"
	DocumentTypeQuotation DocumentType = "quotation"
	DocumentTypeProforma  DocumentType = "proforma"
)

// DocumentTypes lists every supported document type in display order
var DocumentTypes = []DocumentType{
	DocumentTypeInvoice,
	DocumentTypeReceipt,
	DocumentTypeQuotation,
	DocumentTypeProforma,
}

func (t DocumentType) String() string {
	return string(t)
}

func (t DocumentType) Validate() error {
	if !lo.Contains(DocumentTypes, t) {
		return ierr.NewError("invalid document type").
			WithHint("Please provide a valid document type").
			WithReportableDetails(map[string]any{
				"allowed": DocumentTypes,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Title is the heading printed on the document
func (t DocumentType) Title() string {
	switch t {
	case DocumentTypeReceipt:
		return "RECEIPT"
	case DocumentTypeQuotation:
		return "QUOTATION"
	case DocumentTypeProforma:
		return "PROFORMA INVOICE"
	default:
		return "INVOICE"
	}
}

// CounterpartyLabel is the heading of the customer address block
func (t DocumentType) CounterpartyLabel() string {
	switch t {
	case DocumentTypeQuotation:
		return "Quote To"
	case DocumentTypeReceipt:
		return "Received From"
	default:
		return "Bill To"
	}
}

// NumberPrefix is used when suggesting a fresh document number
func (t DocumentType) NumberPrefix() string {
	switch t {
	case DocumentTypeReceipt:
		return "RCP-"
	case DocumentTypeQuotation:
		return "QUO-"
	case DocumentTypeProforma:
		return "PRO-"
	default:
		return "INV-"
	}
}

// SupportsDiscount reports whether a discount adjusts the total
func (t DocumentType) SupportsDiscount() bool {
	return t == DocumentTypeInvoice || t == DocumentTypeQuotation
}

// SupportsShipping reports whether a shipping cost adjusts the total
func (t DocumentType) SupportsShipping() bool {
	return t == DocumentTypeProforma
}

// HasSignature reports whether the footer carries a signature line
func (t DocumentType) HasSignature() bool {
	return t != DocumentTypeReceipt
}
