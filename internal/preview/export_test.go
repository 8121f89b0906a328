package preview

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/flexprice/docforge/internal/domain/document"
	ierr "github.com/flexprice/docforge/internal/errors"
	"github.com/flexprice/docforge/internal/layout"
	"github.com/flexprice/docforge/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureState struct {
	scale        float64
	chrome       bool
	placeholders int
}

type fakeCapturer struct {
	surface *Surface
	err     error
	entered chan struct{}
	release chan struct{}

	mu   sync.Mutex
	seen []captureState
}

func (c *fakeCapturer) Capture(_ context.Context, page *layout.Page) ([]byte, int, error) {
	placeholders := 0
	for _, e := range page.Elements {
		if e.Placeholder {
			placeholders++
		}
	}
	c.mu.Lock()
	c.seen = append(c.seen, captureState{
		scale:        c.surface.Scale(),
		chrome:       c.surface.ChromeVisible(),
		placeholders: placeholders,
	})
	c.mu.Unlock()

	if c.entered != nil {
		close(c.entered)
	}
	if c.release != nil {
		<-c.release
	}
	if c.err != nil {
		return nil, 0, c.err
	}
	return []byte("%PDF-1.3"), page.PageCount(), nil
}

type fakeSaver struct {
	files map[string][]byte
	err   error
}

func (s *fakeSaver) Save(_ context.Context, filename string, data []byte) error {
	if s.err != nil {
		return s.err
	}
	if s.files == nil {
		s.files = make(map[string][]byte)
	}
	s.files[filename] = data
	return nil
}

func newExportFixture(t *testing.T) (*Surface, *fakeCapturer, *fakeSaver, *fakeTracker) {
	t.Helper()
	surface, err := NewSurface(testInvoice(), SurfaceParams{Tier: types.TierFree, AvailableWidth: 397})
	require.NoError(t, err)
	return surface, &fakeCapturer{surface: surface}, &fakeSaver{}, &fakeTracker{}
}

func newTestExporter(surface *Surface, c Capturer, s Saver, tr Tracker) *Exporter {
	return NewExporter(ExporterParams{
		Surface:  surface,
		Capturer: c,
		Saver:    s,
		Tracker:  tr,
		UserID:   "user_1",
		Clock:    func() time.Time { return time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC) },
	})
}

func TestExporter_Success(t *testing.T) {
	surface, capturer, saver, tracker := newExportFixture(t)
	e := newTestExporter(surface, capturer, saver, tracker)

	res, err := e.Export(context.Background())
	require.NoError(t, err)
	e.Wait()

	assert.False(t, res.Skipped)
	assert.Equal(t, "invoice-INV-001.pdf", res.Filename)
	assert.Equal(t, 1, res.Pages)
	assert.Contains(t, saver.files, "invoice-INV-001.pdf")

	require.Len(t, capturer.seen, 1)
	assert.Equal(t, captureState{scale: 1, chrome: false}, capturer.seen[0])

	assert.InDelta(t, 0.5, surface.Scale(), 1e-9)
	assert.True(t, surface.ChromeVisible())

	records := tracker.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "user_1", records[0].UserID)
	assert.Equal(t, types.DocumentTypeInvoice, records[0].DocumentType)
	assert.Equal(t, "INV-001", records[0].DocumentNumber)
	assert.Equal(t, "Jane Doe", records[0].CustomerName)
	assert.InDelta(t, 220.0, records[0].TotalAmount, 1e-9)
	assert.Equal(t, "USD", records[0].Currency)
}

func TestExporter_CommitsActiveEditBeforeCapture(t *testing.T) {
	surface, capturer, saver, tracker := newExportFixture(t)
	f, err := surface.Edit("customerName")
	require.NoError(t, err)
	f.SetDraft("John Roe")

	_, err = newTestExporter(surface, capturer, saver, tracker).Export(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "John Roe", surface.Document().Customer.Name)
}

func TestExporter_CaptureFailureRestoresView(t *testing.T) {
	surface, capturer, saver, tracker := newExportFixture(t)
	capturer.err = errors.New("bitmap too large")
	e := newTestExporter(surface, capturer, saver, tracker)

	res, err := e.Export(context.Background())
	e.Wait()
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, ierr.IsRender(err))
	assert.Contains(t, ierr.GetAllHints(err), "Failed to generate PDF. Please try again.")

	assert.InDelta(t, 0.5, surface.Scale(), 1e-9)
	assert.True(t, surface.ChromeVisible())
	assert.Empty(t, saver.files)
	assert.Empty(t, tracker.Records())
	assert.False(t, e.Running())

	// retry works once the cause is gone
	capturer.err = nil
	_, err = e.Export(context.Background())
	assert.NoError(t, err)
}

func TestExporter_RejectsInvalidDocument(t *testing.T) {
	surface, capturer, saver, tracker := newExportFixture(t)
	e := newTestExporter(surface, capturer, saver, tracker)

	f, err := surface.Edit(document.ItemField(0, document.ItemDescription))
	require.NoError(t, err)
	f.SetDraft("")
	require.NoError(t, surface.Blur())
	f, err = surface.Edit(document.ItemField(0, document.ItemQuantity))
	require.NoError(t, err)
	// still active when the export starts
	f.SetDraft("-3")

	res, err := e.Export(context.Background())
	e.Wait()
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, ierr.IsValidation(err))
	assert.Equal(t, 422, ierr.HTTPStatusFromErr(err))

	assert.Empty(t, capturer.seen)
	assert.Empty(t, saver.files)
	assert.Empty(t, tracker.Records())
	assert.InDelta(t, 0.5, surface.Scale(), 1e-9)
	assert.True(t, surface.ChromeVisible())
	assert.False(t, e.Running())
	assert.Equal(t, []string{"items.0.description", "items.0.quantity"}, surface.Validate().Fields())
}

func TestExporter_SaveFailure(t *testing.T) {
	surface, capturer, saver, tracker := newExportFixture(t)
	saver.err = errors.New("disk full")
	e := newTestExporter(surface, capturer, saver, tracker)

	_, err := e.Export(context.Background())
	e.Wait()
	assert.True(t, ierr.IsRender(err))
	assert.True(t, surface.ChromeVisible())
	assert.Empty(t, tracker.Records())
}

func TestExporter_TrackerFailureDoesNotFailExport(t *testing.T) {
	surface, capturer, saver, tracker := newExportFixture(t)
	tracker.err = errors.New("history service down")
	e := newTestExporter(surface, capturer, saver, tracker)

	res, err := e.Export(context.Background())
	e.Wait()
	require.NoError(t, err)
	assert.Equal(t, "invoice-INV-001.pdf", res.Filename)
	assert.Len(t, tracker.Records(), 1)
}

func TestExporter_TrackerPanicIsContained(t *testing.T) {
	surface, capturer, saver, _ := newExportFixture(t)
	e := newTestExporter(surface, capturer, saver, &fakeTracker{panic: true})

	_, err := e.Export(context.Background())
	require.NoError(t, err)
	assert.NotPanics(t, e.Wait)
}

func TestExporter_SecondExportWhileRunningIsSkipped(t *testing.T) {
	surface, capturer, saver, tracker := newExportFixture(t)
	capturer.entered = make(chan struct{})
	capturer.release = make(chan struct{})
	e := newTestExporter(surface, capturer, saver, tracker)

	done := make(chan error, 1)
	go func() {
		_, err := e.Export(context.Background())
		done <- err
	}()
	<-capturer.entered
	assert.True(t, e.Running())

	res, err := e.Export(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Skipped)

	close(capturer.release)
	require.NoError(t, <-done)
	e.Wait()

	assert.Len(t, capturer.seen, 1)
	assert.Len(t, tracker.Records(), 1)
	assert.False(t, e.Running())
}

func TestExporter_CancelledBeforeSettle(t *testing.T) {
	surface, capturer, saver, tracker := newExportFixture(t)
	e := NewExporter(ExporterParams{
		Surface:     surface,
		Capturer:    capturer,
		Saver:       saver,
		Tracker:     tracker,
		SettleDelay: time.Second,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Export(ctx)
	assert.True(t, ierr.IsRender(err))
	assert.Empty(t, capturer.seen)
	assert.True(t, surface.ChromeVisible())
	assert.InDelta(t, 0.5, surface.Scale(), 1e-9)
}
