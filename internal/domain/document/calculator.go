package document

import (
	"github.com/flexprice/docforge/internal/types"
)

// Totals holds the derived amounts of a document. Discount and Shipping are the
// amounts actually applied, zero when the document type does not support them.
type Totals struct {
	Subtotal  float64
	TaxAmount float64
	Discount  float64
	Shipping  float64
	Total     float64
}

// Subtotal is the sum of quantity times unit price over all items
func Subtotal(items []Item) float64 {
	var sum float64
	for _, it := range items {
		sum += it.Amount()
	}
	return sum
}

// TaxAmount is subtotal * taxPercent / 100
func TaxAmount(subtotal, taxPercent float64) float64 {
	return subtotal * taxPercent / 100
}

// CalculateTotals derives every total from its inputs. It has no side effects
// and performs no rounding; input ranges are checked by validation.
func CalculateTotals(items []Item, taxPercent, discount, shipping float64, docType types.DocumentType) Totals {
	t := Totals{Subtotal: Subtotal(items)}
	t.TaxAmount = TaxAmount(t.Subtotal, taxPercent)
	if docType.SupportsDiscount() {
		t.Discount = discount
	}
	if docType.SupportsShipping() {
		t.Shipping = shipping
	}
	t.Total = t.Subtotal + t.TaxAmount - t.Discount + t.Shipping
	return t
}
