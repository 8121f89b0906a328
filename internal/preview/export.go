package preview

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/flexprice/docforge/internal/domain/history"
	ierr "github.com/flexprice/docforge/internal/errors"
	"github.com/flexprice/docforge/internal/layout"
	"github.com/flexprice/docforge/internal/logger"
	"github.com/flexprice/docforge/internal/types"
)

const (
	DefaultSettleDelay  = 100 * time.Millisecond
	DefaultTrackTimeout = 10 * time.Second
)

// Capturer turns a laid out scene into PDF bytes, returning the page count
type Capturer interface {
	Capture(ctx context.Context, page *layout.Page) ([]byte, int, error)
}

// Saver hands the finished file to the user
type Saver interface {
	Save(ctx context.Context, filename string, data []byte) error
}

// Tracker records a completed export with the history collaborator
type Tracker interface {
	Track(ctx context.Context, rec *history.Record) error
}

type ExportResult struct {
	Filename string
	Pages    int
	Size     int
	// Skipped is set when another export was already running
	Skipped bool
}

type ExporterParams struct {
	Surface      *Surface
	Capturer     Capturer
	Saver        Saver
	Tracker      Tracker
	Logger       *logger.Logger
	UserID       string
	SettleDelay  time.Duration
	TrackTimeout time.Duration
	Clock        func() time.Time
}

// Exporter runs the download flow of the editor: hide chrome, settle,
// capture, save, then record history in the background. One export runs at
// a time.
type Exporter struct {
	surface      *Surface
	capturer     Capturer
	saver        Saver
	tracker      Tracker
	log          *logger.Logger
	userID       string
	settle       time.Duration
	trackTimeout time.Duration
	clock        func() time.Time

	running  atomic.Bool
	tracking sync.WaitGroup
}

func NewExporter(p ExporterParams) *Exporter {
	e := &Exporter{
		surface:      p.Surface,
		capturer:     p.Capturer,
		saver:        p.Saver,
		tracker:      p.Tracker,
		log:          p.Logger,
		userID:       p.UserID,
		settle:       p.SettleDelay,
		trackTimeout: p.TrackTimeout,
		clock:        p.Clock,
	}
	if e.log == nil {
		e.log = logger.NewNoopLogger()
	}
	if e.settle < 0 {
		e.settle = DefaultSettleDelay
	}
	if e.trackTimeout <= 0 {
		e.trackTimeout = DefaultTrackTimeout
	}
	if e.clock == nil {
		e.clock = time.Now
	}
	return e
}

// Running reports whether an export is in flight
func (e *Exporter) Running() bool {
	return e.running.Load()
}

// Export captures the surface as shown and saves it. An invalid document is
// rejected with its field errors before anything is captured. View state is
// restored on every path. A failure of the history call never fails the
// export.
func (e *Exporter) Export(ctx context.Context) (*ExportResult, error) {
	if !e.running.CompareAndSwap(false, true) {
		return &ExportResult{Skipped: true}, nil
	}
	defer e.running.Store(false)

	restore, err := e.surface.prepareCapture()
	defer restore()
	if err != nil {
		return nil, exportFailed(err)
	}
	if errs := e.surface.Validate(); len(errs) > 0 {
		return nil, errs.Err()
	}

	if err := e.wait(ctx); err != nil {
		return nil, exportFailed(err)
	}

	scene := e.surface.Scene()
	data, pages, err := e.capturer.Capture(ctx, scene)
	if err != nil {
		return nil, exportFailed(err)
	}

	doc := e.surface.Document()
	filename := doc.Filename()
	if e.saver != nil {
		if err := e.saver.Save(ctx, filename, data); err != nil {
			return nil, exportFailed(err)
		}
	}

	e.log.Infow("document exported",
		"filename", filename,
		"pages", pages,
		"bytes", len(data),
		"tier", e.surface.Tier(),
	)

	if e.tracker != nil {
		e.track(history.FromDocument(e.userID, doc, types.RendererCapture, e.clock()))
	}

	return &ExportResult{Filename: filename, Pages: pages, Size: len(data)}, nil
}

// Wait blocks until background history calls have finished
func (e *Exporter) Wait() {
	e.tracking.Wait()
}

func (e *Exporter) wait(ctx context.Context) error {
	if e.settle == 0 {
		return ctx.Err()
	}
	t := time.NewTimer(e.settle)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (e *Exporter) track(rec *history.Record) {
	e.tracking.Add(1)
	go func() {
		defer e.tracking.Done()
		defer func() {
			if r := recover(); r != nil {
				e.log.Errorw("history tracking panicked", "panic", fmt.Sprint(r), "record_id", rec.ID)
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), e.trackTimeout)
		defer cancel()
		if err := e.tracker.Track(ctx, rec); err != nil {
			e.log.Warnw("failed to record export history",
				"error", err,
				"record_id", rec.ID,
				"document_number", rec.DocumentNumber,
			)
		}
	}()
}

func exportFailed(err error) error {
	b := ierr.WithError(err).WithHint("Failed to generate PDF. Please try again.")
	if ierr.IsRender(err) {
		return b.Error()
	}
	return b.Mark(ierr.ErrRender)
}
