package dto

import (
	"strings"

	"github.com/flexprice/docforge/internal/domain/document"
	"github.com/flexprice/docforge/internal/types"
	"github.com/samber/lo"
)

// ItemPayload is one line item on the wire
type ItemPayload struct {
	ID          string  `json:"id,omitempty"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
}

// DocumentPayload is the flat wire shape of a document. documentType is the
// discriminant; fields that do not apply to it are accepted and ignored.
type DocumentPayload struct {
	DocumentType   types.DocumentType `json:"documentType"`
	DocumentNumber string             `json:"documentNumber"`
	IssueDate      string             `json:"issueDate"`
	DueDate        string             `json:"dueDate,omitempty"`
	ExpiryDate     string             `json:"expiryDate,omitempty"`
	Currency       string             `json:"currency,omitempty"`

	BusinessName    string `json:"businessName"`
	BusinessAddress string `json:"businessAddress"`
	BusinessEmail   string `json:"businessEmail,omitempty"`
	BusinessPhone   string `json:"businessPhone,omitempty"`
	TaxID           string `json:"taxId,omitempty"`

	CustomerName    string `json:"customerName"`
	CustomerAddress string `json:"customerAddress,omitempty"`
	CustomerEmail   string `json:"customerEmail"`

	Items []ItemPayload `json:"items"`

	TaxPercent   float64 `json:"taxPercent"`
	Discount     float64 `json:"discount,omitempty"`
	ShippingCost float64 `json:"shippingCost,omitempty"`

	PaymentTerms     string `json:"paymentTerms,omitempty"`
	Notes            string `json:"notes,omitempty"`
	Signature        string `json:"signature,omitempty"`
	ValidityPeriod   string `json:"validityPeriod,omitempty"`
	ScopeLimitations string `json:"scopeLimitations,omitempty"`
	BankDetails      string `json:"bankDetails,omitempty"`
	TermsOfSale      string `json:"termsOfSale,omitempty"`
	DeliveryTerms    string `json:"deliveryTerms,omitempty"`
	PaymentMethod    string `json:"paymentMethod,omitempty"`

	TemplateID string `json:"templateId,omitempty"`
	LogoBase64 string `json:"logoBase64,omitempty"`
}

// ToDocument maps the payload onto the domain model. Missing item ids are
// generated; an empty template id selects the default.
func (p *DocumentPayload) ToDocument() *document.Document {
	d := &document.Document{
		Type:       types.DocumentType(strings.ToLower(strings.TrimSpace(string(p.DocumentType)))),
		Number:     p.DocumentNumber,
		IssueDate:  p.IssueDate,
		DueDate:    p.DueDate,
		ExpiryDate: p.ExpiryDate,
		Currency:   p.Currency,
		Business: document.Business{
			Name:    p.BusinessName,
			Address: p.BusinessAddress,
			Email:   p.BusinessEmail,
			Phone:   p.BusinessPhone,
			TaxID:   p.TaxID,
		},
		Customer: document.Customer{
			Name:    p.CustomerName,
			Address: p.CustomerAddress,
			Email:   p.CustomerEmail,
		},
		Items: lo.Map(p.Items, func(it ItemPayload, _ int) document.Item {
			id := it.ID
			if id == "" {
				id = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_ITEM)
			}
			return document.Item{
				ID:          id,
				Description: it.Description,
				Quantity:    it.Quantity,
				UnitPrice:   it.UnitPrice,
			}
		}),
		TaxPercent:       p.TaxPercent,
		Discount:         p.Discount,
		ShippingCost:     p.ShippingCost,
		PaymentTerms:     p.PaymentTerms,
		Notes:            p.Notes,
		Signature:        p.Signature,
		ValidityPeriod:   p.ValidityPeriod,
		ScopeLimitations: p.ScopeLimitations,
		BankDetails:      p.BankDetails,
		TermsOfSale:      p.TermsOfSale,
		DeliveryTerms:    p.DeliveryTerms,
		PaymentMethod:    p.PaymentMethod,
		TemplateID:       p.TemplateID,
		LogoBase64:       p.LogoBase64,
	}
	if d.TemplateID == "" {
		d.TemplateID = document.DefaultTemplateID
	}
	return d
}

// NewDocumentPayload is the inverse of ToDocument
func NewDocumentPayload(d *document.Document) *DocumentPayload {
	return &DocumentPayload{
		DocumentType:    d.Type,
		DocumentNumber:  d.Number,
		IssueDate:       d.IssueDate,
		DueDate:         d.DueDate,
		ExpiryDate:      d.ExpiryDate,
		Currency:        d.Currency,
		BusinessName:    d.Business.Name,
		BusinessAddress: d.Business.Address,
		BusinessEmail:   d.Business.Email,
		BusinessPhone:   d.Business.Phone,
		TaxID:           d.Business.TaxID,
		CustomerName:    d.Customer.Name,
		CustomerAddress: d.Customer.Address,
		CustomerEmail:   d.Customer.Email,
		Items: lo.Map(d.Items, func(it document.Item, _ int) ItemPayload {
			return ItemPayload{ID: it.ID, Description: it.Description, Quantity: it.Quantity, UnitPrice: it.UnitPrice}
		}),
		TaxPercent:       d.TaxPercent,
		Discount:         d.Discount,
		ShippingCost:     d.ShippingCost,
		PaymentTerms:     d.PaymentTerms,
		Notes:            d.Notes,
		Signature:        d.Signature,
		ValidityPeriod:   d.ValidityPeriod,
		ScopeLimitations: d.ScopeLimitations,
		BankDetails:      d.BankDetails,
		TermsOfSale:      d.TermsOfSale,
		DeliveryTerms:    d.DeliveryTerms,
		PaymentMethod:    d.PaymentMethod,
		TemplateID:       d.TemplateID,
		LogoBase64:       d.LogoBase64,
	}
}

// ValidateResponse is returned by the validate endpoint when nothing is wrong
type ValidateResponse struct {
	Valid bool `json:"valid"`
}

// TotalsResponse carries the calculator output, raw and formatted
type TotalsResponse struct {
	Currency  string          `json:"currency"`
	Subtotal  float64         `json:"subtotal"`
	TaxAmount float64         `json:"taxAmount"`
	Discount  float64         `json:"discount"`
	Shipping  float64         `json:"shipping"`
	Total     float64         `json:"total"`
	Formatted FormattedTotals `json:"formatted"`
}

type FormattedTotals struct {
	Subtotal  string `json:"subtotal"`
	TaxAmount string `json:"taxAmount"`
	Discount  string `json:"discount"`
	Shipping  string `json:"shipping"`
	Total     string `json:"total"`
}

func NewTotalsResponse(t document.Totals, currency string) *TotalsResponse {
	currency = strings.ToUpper(currency)
	return &TotalsResponse{
		Currency:  currency,
		Subtotal:  t.Subtotal,
		TaxAmount: t.TaxAmount,
		Discount:  t.Discount,
		Shipping:  t.Shipping,
		Total:     t.Total,
		Formatted: FormattedTotals{
			Subtotal:  types.FormatAmount(t.Subtotal, currency),
			TaxAmount: types.FormatAmount(t.TaxAmount, currency),
			Discount:  types.FormatAmount(t.Discount, currency),
			Shipping:  types.FormatAmount(t.Shipping, currency),
			Total:     types.FormatAmount(t.Total, currency),
		},
	}
}
