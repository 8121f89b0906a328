package document

import (
	"fmt"
	"time"

	ierr "github.com/flexprice/docforge/internal/errors"
	"github.com/flexprice/docforge/internal/types"
	"github.com/samber/lo"
)

// DefaultTemplateID is the registry id used when a document names none
const DefaultTemplateID = "simple"

// Business is the issuing party
type Business struct {
	Name    string
	Address string
	Email   string
	Phone   string
	TaxID   string
}

// Customer is the counterparty the document is addressed to
type Customer struct {
	Name    string
	Address string
	Email   string
}

// Item is one printed line of the items table
type Item struct {
	ID          string
	Description string
	Quantity    float64
	UnitPrice   float64
}

// Amount is quantity times unit price, unrounded
func (i Item) Amount() float64 {
	return i.Quantity * i.UnitPrice
}

// Document is the aggregate root of one invoice, receipt, quotation or proforma.
// Fields that do not apply to Type are kept but ignored by calculators and renderers.
type Document struct {
	Type       types.DocumentType
	Number     string
	IssueDate  string
	DueDate    string
	ExpiryDate string
	Currency   string

	Business Business
	Customer Customer
	Items    []Item

	TaxPercent   float64
	Discount     float64
	ShippingCost float64

	// invoice
	PaymentTerms string
	Notes        string
	Signature    string

	// quotation
	ValidityPeriod   string
	ScopeLimitations string

	// proforma
	BankDetails   string
	TermsOfSale   string
	DeliveryTerms string

	// receipt
	PaymentMethod string

	TemplateID string
	LogoBase64 string
}

// New returns a blank document of the given type with one empty item and a
// suggested document number
func New(docType types.DocumentType, now time.Time) *Document {
	d := &Document{
		Type:       docType,
		Number:     types.GenerateShortIDWithPrefix(docType.NumberPrefix()),
		IssueDate:  now.Format(DateLayout),
		Currency:   types.DefaultCurrency,
		TemplateID: DefaultTemplateID,
	}
	d.AddItem()
	return d
}

// DateLayout is the wire and display layout of every document date
const DateLayout = "2006-01-02"

// AddItem appends an empty line item and returns it
func (d *Document) AddItem() Item {
	item := Item{
		ID:       types.GenerateUUIDWithPrefix(types.UUID_PREFIX_ITEM),
		Quantity: 1,
	}
	d.Items = append(d.Items, item)
	return item
}

// RemoveItem deletes the item with the given id. The last remaining item
// cannot be removed.
func (d *Document) RemoveItem(id string) error {
	idx := d.ItemIndex(id)
	if idx < 0 {
		return ierr.NewErrorf("item %s not found", id).
			WithHint("The line item no longer exists").
			Mark(ierr.ErrNotFound)
	}
	if len(d.Items) <= 1 {
		return ierr.NewError("cannot remove the last item").
			WithHint("A document needs at least one line item").
			Mark(ierr.ErrInvalidOperation)
	}
	d.Items = append(d.Items[:idx], d.Items[idx+1:]...)
	return nil
}

// ItemIndex returns the position of the item with the given id, or -1
func (d *Document) ItemIndex(id string) int {
	_, idx, ok := lo.FindIndexOf(d.Items, func(it Item) bool { return it.ID == id })
	if !ok {
		return -1
	}
	return idx
}

// SwitchType returns a copy of d as another document type, zeroing the
// adjustments the new type does not support
func (d *Document) SwitchType(t types.DocumentType) *Document {
	out := d.Clone()
	out.Type = t
	if !t.SupportsDiscount() {
		out.Discount = 0
	}
	if !t.SupportsShipping() {
		out.ShippingCost = 0
	}
	return out
}

// Clone returns a deep copy of d
func (d *Document) Clone() *Document {
	out := *d
	out.Items = append([]Item(nil), d.Items...)
	return &out
}

// Totals derives the financial totals from the current state
func (d *Document) Totals() Totals {
	return CalculateTotals(d.Items, d.TaxPercent, d.Discount, d.ShippingCost, d.Type)
}

// CurrencyCode returns the document currency or the default one
func (d *Document) CurrencyCode() string {
	if d.Currency == "" {
		return types.DefaultCurrency
	}
	return d.Currency
}

// Filename is the export file name, {documentType}-{documentNumber}.pdf
func (d *Document) Filename() string {
	return fmt.Sprintf("%s-%s.pdf", d.Type, d.Number)
}

// ExpiryOrDue returns the variant dependent closing date with its label
func (d *Document) ExpiryOrDue() (label, value string) {
	switch d.Type {
	case types.DocumentTypeQuotation:
		return "Valid Until", d.ExpiryDate
	case types.DocumentTypeInvoice, types.DocumentTypeProforma:
		return "Due Date", d.DueDate
	default:
		return "", ""
	}
}
