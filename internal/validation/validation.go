package validation

import (
	"fmt"
	"math"
	"strings"

	"github.com/flexprice/docforge/internal/asset"
	"github.com/flexprice/docforge/internal/domain/document"
	ierr "github.com/flexprice/docforge/internal/errors"
	"github.com/flexprice/docforge/internal/types"
	"github.com/flexprice/docforge/internal/validator"
	"github.com/samber/lo"
)

// FieldError is one user-correctable problem attached to a field key
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors is the ordered result of validating a document
type FieldErrors []FieldError

func (e FieldErrors) Error() string {
	return strings.Join(lo.Map(e, func(fe FieldError, _ int) string {
		return fe.Field + ": " + fe.Message
	}), "; ")
}

// Has reports whether any error is attached to field
func (e FieldErrors) Has(field string) bool {
	return lo.ContainsBy(e, func(fe FieldError) bool { return fe.Field == field })
}

// Fields returns the keys that carry an error, in order
func (e FieldErrors) Fields() []string {
	return lo.Map(e, func(fe FieldError, _ int) string { return fe.Field })
}

// Err wraps the field errors into an unprocessable domain error, or returns
// nil when there are none
func (e FieldErrors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return ierr.NewError("document validation failed").
		WithHint("Please fix the highlighted fields").
		WithReportableDetails(map[string]any{
			"errors": []FieldError(e),
		}).
		Mark(ierr.ErrUnprocessable)
}

// requirement is one "must be present" rule of the per type matrix
type requirement struct {
	field   string
	message string
	value   func(d *document.Document) string
}

var (
	reqBusinessName = requirement{document.FieldBusinessName, "Business name is required",
		func(d *document.Document) string { return d.Business.Name }}
	reqBusinessPhone = requirement{document.FieldBusinessPhone, "Business phone is required",
		func(d *document.Document) string { return d.Business.Phone }}
	reqBusinessAddress = requirement{document.FieldBusinessAddress, "Business address is required",
		func(d *document.Document) string { return d.Business.Address }}
	reqTaxID = requirement{document.FieldTaxID, "Tax ID is required",
		func(d *document.Document) string { return d.Business.TaxID }}
	reqCustomerAddress = requirement{document.FieldCustomerAddress, "Customer address is required",
		func(d *document.Document) string { return d.Customer.Address }}
	reqDueDate = requirement{document.FieldDueDate, "Due date is required",
		func(d *document.Document) string { return d.DueDate }}
	reqExpiryDate = requirement{document.FieldExpiryDate, "Expiry date is required",
		func(d *document.Document) string { return d.ExpiryDate }}
	reqPaymentMethod = requirement{document.FieldPaymentMethod, "Payment method is required",
		func(d *document.Document) string { return d.PaymentMethod }}
)

// matrix lists the fields each document type requires on top of the common ones
var matrix = map[types.DocumentType][]requirement{
	types.DocumentTypeInvoice: {
		reqBusinessName, reqBusinessPhone, reqBusinessAddress, reqCustomerAddress, reqDueDate,
	},
	types.DocumentTypeReceipt: {
		reqBusinessName, reqBusinessPhone, reqBusinessAddress, reqPaymentMethod,
	},
	types.DocumentTypeQuotation: {
		reqBusinessName, reqBusinessPhone, reqExpiryDate,
	},
	types.DocumentTypeProforma: {
		reqBusinessName, reqBusinessPhone, reqBusinessAddress, reqTaxID, reqCustomerAddress,
	},
}

// RequiredFields returns the type specific required field keys
func RequiredFields(t types.DocumentType) []string {
	return lo.Map(matrix[t], func(r requirement, _ int) string { return r.field })
}

// Validator checks documents against the required field matrix. The same
// rules run before the preview opens and at the HTTP boundary.
type Validator struct {
	maxLogoBytes int
}

// New returns a validator enforcing the given logo size cap
func New(maxLogoBytes int) *Validator {
	if maxLogoBytes <= 0 {
		maxLogoBytes = asset.DefaultMaxBytes
	}
	return &Validator{maxLogoBytes: maxLogoBytes}
}

// Validate runs the rules with default limits
func Validate(d *document.Document) FieldErrors {
	return New(0).Validate(d)
}

// Validate returns every field error of d; an empty result means d may be
// previewed and exported
func (v *Validator) Validate(d *document.Document) FieldErrors {
	var errs FieldErrors
	add := func(field, msg string) {
		errs = append(errs, FieldError{Field: field, Message: msg})
	}

	if err := d.Type.Validate(); err != nil {
		add("documentType", "Document type must be one of invoice, receipt, quotation, proforma")
		return errs
	}

	if blank(d.Number) {
		add(document.FieldDocumentNumber, "Document number is required")
	}
	for _, r := range matrix[d.Type] {
		if blank(r.value(d)) {
			add(r.field, r.message)
		}
	}

	if blank(d.Customer.Name) {
		add(document.FieldCustomerName, "Customer name is required")
	}
	if blank(d.Customer.Email) {
		add(document.FieldCustomerEmail, "Customer email is required")
	} else if !validator.IsEmail(d.Customer.Email) {
		add(document.FieldCustomerEmail, "Customer email must be a valid email address")
	}
	if !blank(d.Business.Email) && !validator.IsEmail(d.Business.Email) {
		add(document.FieldBusinessEmail, "Business email must be a valid email address")
	}

	for _, f := range []struct {
		key, value string
	}{
		{document.FieldIssueDate, d.IssueDate},
		{document.FieldDueDate, d.DueDate},
		{document.FieldExpiryDate, d.ExpiryDate},
	} {
		if !blank(f.value) && !validator.IsDate(f.value) {
			add(f.key, "Date must be in YYYY-MM-DD format")
		}
	}
	if !blank(d.Currency) && !validator.IsCurrencyCode(strings.ToUpper(d.Currency)) {
		add(document.FieldCurrency, "Currency must be an ISO 4217 code")
	}

	if len(d.Items) == 0 {
		add(document.FieldItems, "At least one item is required")
	}
	for i, item := range d.Items {
		if blank(item.Description) {
			add(document.ItemField(i, document.ItemDescription), "Description is required")
		}
		if !finite(item.Quantity) || item.Quantity <= 0 {
			add(document.ItemField(i, document.ItemQuantity), "Quantity must be greater than 0")
		}
		if !finite(item.UnitPrice) || item.UnitPrice < 0 {
			add(document.ItemField(i, document.ItemUnitPrice), "Unit price cannot be negative")
		}
	}

	if !finite(d.TaxPercent) || d.TaxPercent < 0 || d.TaxPercent > 100 {
		add(document.FieldTaxPercent, "Tax must be between 0 and 100")
	}
	if d.Type.SupportsDiscount() && (!finite(d.Discount) || d.Discount < 0) {
		add(document.FieldDiscount, "Discount cannot be negative")
	}
	if d.Type.SupportsShipping() && (!finite(d.ShippingCost) || d.ShippingCost < 0) {
		add(document.FieldShippingCost, "Shipping cost cannot be negative")
	}

	if _, err := asset.DecodeLogo(d.LogoBase64, v.maxLogoBytes); err != nil {
		add(document.FieldLogo, logoMessage(err))
	}
	return errs
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func logoMessage(err error) string {
	if hints := ierr.GetAllHints(err); len(hints) > 0 {
		return hints[0]
	}
	return fmt.Sprintf("Invalid logo: %v", err)
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
