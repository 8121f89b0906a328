package preview

import (
	"context"
	"sync"
	"testing"

	"github.com/flexprice/docforge/internal/domain/document"
	"github.com/flexprice/docforge/internal/domain/history"
	"github.com/flexprice/docforge/internal/layout"
	"github.com/flexprice/docforge/internal/types"
	"github.com/stretchr/testify/require"
)

func testInvoice() *document.Document {
	return &document.Document{
		Type:      types.DocumentTypeInvoice,
		Number:    "INV-001",
		IssueDate: "2024-01-10",
		DueDate:   "2024-02-10",
		Currency:  "USD",
		Business: document.Business{
			Name:    "Acme LLC",
			Address: "1 Main St",
			Phone:   "555-0100",
		},
		Customer: document.Customer{
			Name:    "Jane Doe",
			Address: "2 Oak Ave",
			Email:   "jane@x.com",
		},
		Items: []document.Item{
			{ID: "item_1", Description: "Consulting", Quantity: 2, UnitPrice: 100},
		},
		TaxPercent: 10,
		TemplateID: "simple",
	}
}

// fieldElement finds the first text element bound to key
func fieldElement(t *testing.T, page *layout.Page, key string) layout.Element {
	t.Helper()
	for _, e := range page.Elements {
		if e.Kind == layout.KindText && e.Field == key {
			return e
		}
	}
	require.Failf(t, "field not drawn", "no element for %s", key)
	return layout.Element{}
}

// screenCenter is the centre of e in screen pixels at scale
func screenCenter(e layout.Element, scale float64) (float64, float64) {
	x := e.Left() + e.W/2
	y := (e.Top() + e.Bottom()) / 2
	return x * pxPerMM * scale, y * pxPerMM * scale
}

type fakeBus struct {
	attached map[PointerListener]int
	attaches int
	detaches int
}

func newFakeBus() *fakeBus {
	return &fakeBus{attached: make(map[PointerListener]int)}
}

func (b *fakeBus) Attach(l PointerListener) {
	b.attached[l]++
	b.attaches++
}

func (b *fakeBus) Detach(l PointerListener) {
	b.attached[l]--
	if b.attached[l] <= 0 {
		delete(b.attached, l)
	}
	b.detaches++
}

type fakeTracker struct {
	mu      sync.Mutex
	records []*history.Record
	err     error
	panic   bool
}

func (f *fakeTracker) Track(_ context.Context, rec *history.Record) error {
	if f.panic {
		panic("tracker exploded")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, rec)
	return f.err
}

func (f *fakeTracker) Records() []*history.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*history.Record(nil), f.records...)
}
