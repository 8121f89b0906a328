package document

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	ierr "github.com/flexprice/docforge/internal/errors"
)

// Field keys shared by the wire payload, validation errors and editable fields
const (
	FieldDocumentNumber   = "documentNumber"
	FieldIssueDate        = "issueDate"
	FieldDueDate          = "dueDate"
	FieldExpiryDate       = "expiryDate"
	FieldCurrency         = "currency"
	FieldBusinessName     = "businessName"
	FieldBusinessAddress  = "businessAddress"
	FieldBusinessEmail    = "businessEmail"
	FieldBusinessPhone    = "businessPhone"
	FieldTaxID            = "taxId"
	FieldCustomerName     = "customerName"
	FieldCustomerAddress  = "customerAddress"
	FieldCustomerEmail    = "customerEmail"
	FieldTaxPercent       = "taxPercent"
	FieldDiscount         = "discount"
	FieldShippingCost     = "shippingCost"
	FieldPaymentTerms     = "paymentTerms"
	FieldNotes            = "notes"
	FieldSignature        = "signature"
	FieldValidityPeriod   = "validityPeriod"
	FieldScopeLimitations = "scopeLimitations"
	FieldBankDetails      = "bankDetails"
	FieldTermsOfSale      = "termsOfSale"
	FieldDeliveryTerms    = "deliveryTerms"
	FieldPaymentMethod    = "paymentMethod"
	FieldTemplateID       = "templateId"
	FieldLogo             = "logoBase64"
	FieldItems            = "items"

	ItemDescription = "description"
	ItemQuantity    = "quantity"
	ItemUnitPrice   = "unitPrice"
)

// FieldKind tells an editor how a value is entered and committed
type FieldKind int

const (
	// FieldText commits on blur or Enter
	FieldText FieldKind = iota
	// FieldMultiline commits on blur only so Enter can insert a newline
	FieldMultiline
	// FieldNumber is entered as text and parsed as a float
	FieldNumber
)

// FieldSpec describes one editable leaf value of a document
type FieldSpec struct {
	Key         string
	Kind        FieldKind
	Placeholder string
}

type accessor struct {
	spec FieldSpec
	get  func(d *Document) string
	set  func(d *Document, v string) error
}

func text(key, placeholder string, ptr func(d *Document) *string) accessor {
	return strAccessor(FieldSpec{Key: key, Kind: FieldText, Placeholder: placeholder}, ptr)
}

func multiline(key, placeholder string, ptr func(d *Document) *string) accessor {
	return strAccessor(FieldSpec{Key: key, Kind: FieldMultiline, Placeholder: placeholder}, ptr)
}

func strAccessor(spec FieldSpec, ptr func(d *Document) *string) accessor {
	return accessor{
		spec: spec,
		get:  func(d *Document) string { return *ptr(d) },
		set: func(d *Document, v string) error {
			*ptr(d) = v
			return nil
		},
	}
}

func number(key, placeholder string, ptr func(d *Document) *float64) accessor {
	return accessor{
		spec: FieldSpec{Key: key, Kind: FieldNumber, Placeholder: placeholder},
		get:  func(d *Document) string { return formatNumber(*ptr(d)) },
		set: func(d *Document, v string) error {
			f, err := parseNumber(key, v)
			if err != nil {
				return err
			}
			*ptr(d) = f
			return nil
		},
	}
}

var accessors = map[string]accessor{}

func init() {
	for _, a := range []accessor{
		text(FieldDocumentNumber, "Document #", func(d *Document) *string { return &d.Number }),
		text(FieldIssueDate, "Issue date", func(d *Document) *string { return &d.IssueDate }),
		text(FieldDueDate, "Due date", func(d *Document) *string { return &d.DueDate }),
		text(FieldExpiryDate, "Expiry date", func(d *Document) *string { return &d.ExpiryDate }),
		text(FieldCurrency, "USD", func(d *Document) *string { return &d.Currency }),
		text(FieldBusinessName, "Your Business Name", func(d *Document) *string { return &d.Business.Name }),
		multiline(FieldBusinessAddress, "Business address", func(d *Document) *string { return &d.Business.Address }),
		text(FieldBusinessEmail, "business@email.com", func(d *Document) *string { return &d.Business.Email }),
		text(FieldBusinessPhone, "Phone number", func(d *Document) *string { return &d.Business.Phone }),
		text(FieldTaxID, "Tax ID", func(d *Document) *string { return &d.Business.TaxID }),
		text(FieldCustomerName, "Client Name", func(d *Document) *string { return &d.Customer.Name }),
		multiline(FieldCustomerAddress, "Client address", func(d *Document) *string { return &d.Customer.Address }),
		text(FieldCustomerEmail, "client@email.com", func(d *Document) *string { return &d.Customer.Email }),
		number(FieldTaxPercent, "0", func(d *Document) *float64 { return &d.TaxPercent }),
		number(FieldDiscount, "0", func(d *Document) *float64 { return &d.Discount }),
		number(FieldShippingCost, "0", func(d *Document) *float64 { return &d.ShippingCost }),
		multiline(FieldPaymentTerms, "Payment terms", func(d *Document) *string { return &d.PaymentTerms }),
		multiline(FieldNotes, "Additional notes", func(d *Document) *string { return &d.Notes }),
		text(FieldSignature, "Your name", func(d *Document) *string { return &d.Signature }),
		text(FieldValidityPeriod, "Validity period", func(d *Document) *string { return &d.ValidityPeriod }),
		multiline(FieldScopeLimitations, "Scope limitations", func(d *Document) *string { return &d.ScopeLimitations }),
		multiline(FieldBankDetails, "Bank details", func(d *Document) *string { return &d.BankDetails }),
		multiline(FieldTermsOfSale, "Terms of sale", func(d *Document) *string { return &d.TermsOfSale }),
		multiline(FieldDeliveryTerms, "Delivery terms", func(d *Document) *string { return &d.DeliveryTerms }),
		text(FieldPaymentMethod, "Payment method", func(d *Document) *string { return &d.PaymentMethod }),
	} {
		accessors[a.spec.Key] = a
	}
}

// ItemField returns the key of one property of the item at index i,
// e.g. items.0.description
func ItemField(i int, prop string) string {
	return fmt.Sprintf("%s.%d.%s", FieldItems, i, prop)
}

// Spec returns the editing description of a field key
func Spec(key string) (FieldSpec, bool) {
	if a, ok := accessors[key]; ok {
		return a.spec, true
	}
	if _, prop, ok := parseItemKey(key); ok {
		switch prop {
		case ItemDescription:
			return FieldSpec{Key: key, Kind: FieldText, Placeholder: "Item description"}, true
		case ItemQuantity:
			return FieldSpec{Key: key, Kind: FieldNumber, Placeholder: "1"}, true
		case ItemUnitPrice:
			return FieldSpec{Key: key, Kind: FieldNumber, Placeholder: "0.00"}, true
		}
	}
	return FieldSpec{}, false
}

// Get reads the string form of the field with the given key
func (d *Document) Get(key string) (string, error) {
	if a, ok := accessors[key]; ok {
		return a.get(d), nil
	}
	item, prop, err := d.itemFor(key)
	if err != nil {
		return "", err
	}
	switch prop {
	case ItemDescription:
		return item.Description, nil
	case ItemQuantity:
		return formatNumber(item.Quantity), nil
	default:
		return formatNumber(item.UnitPrice), nil
	}
}

// Set writes the string form of the field with the given key. Numeric fields
// are parsed; a value that does not parse leaves the document unchanged.
func (d *Document) Set(key, value string) error {
	if a, ok := accessors[key]; ok {
		return a.set(d, value)
	}
	item, prop, err := d.itemFor(key)
	if err != nil {
		return err
	}
	switch prop {
	case ItemDescription:
		item.Description = value
	case ItemQuantity:
		f, err := parseNumber(key, value)
		if err != nil {
			return err
		}
		item.Quantity = f
	default:
		f, err := parseNumber(key, value)
		if err != nil {
			return err
		}
		item.UnitPrice = f
	}
	return nil
}

func (d *Document) itemFor(key string) (*Item, string, error) {
	idx, prop, ok := parseItemKey(key)
	if !ok {
		return nil, "", ierr.NewErrorf("unknown field %s", key).
			WithHint("Unknown document field").
			Mark(ierr.ErrValidation)
	}
	if idx >= len(d.Items) {
		return nil, "", ierr.NewErrorf("item index %d out of range", idx).
			WithHint("The line item no longer exists").
			Mark(ierr.ErrNotFound)
	}
	return &d.Items[idx], prop, nil
}

func parseItemKey(key string) (int, string, bool) {
	parts := strings.Split(key, ".")
	if len(parts) != 3 || parts[0] != FieldItems {
		return 0, "", false
	}
	idx, err := strconv.Atoi(parts[1])
	if err != nil || idx < 0 {
		return 0, "", false
	}
	switch parts[2] {
	case ItemDescription, ItemQuantity, ItemUnitPrice:
		return idx, parts[2], true
	}
	return 0, "", false
}

func parseNumber(key, v string) (float64, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHintf("%s must be a number", key).
			Mark(ierr.ErrValidation)
	}
	// ParseFloat accepts "NaN" and "Inf"
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ierr.NewErrorf("%s is not finite", key).
			WithHintf("%s must be a number", key).
			Mark(ierr.ErrValidation)
	}
	return f, nil
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
