// Package capture turns clipboard change notifications into saved
// screenshots. Events are handled one at a time in arrival order:
//
//	debounce -> heuristic -> settle -> acquire -> read + release -> decode
//
// after which the duplicate check and file write run in the background so
// the next event is not held up by disk I/O.
package capture

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.klb.dev/snipsave/internal/archive"
	"go.klb.dev/snipsave/internal/clip"
	"go.klb.dev/snipsave/internal/debounce"
	"go.klb.dev/snipsave/internal/dib"
	"go.klb.dev/snipsave/internal/heuristic"
	"go.klb.dev/snipsave/internal/raster"
	"go.klb.dev/snipsave/internal/retry"
	"go.klb.dev/snipsave/internal/settings"
)

// DefaultSettle is how long to wait after a positive verdict before opening
// the clipboard, so the snipping tool can finish writing it.
const DefaultSettle = 100 * time.Millisecond

// Outcome is what HandleEvent did with one event.
type Outcome int

const (
	// Debounced: the event arrived within the debounce window.
	Debounced Outcome = iota
	// Rejected: the heuristic said no, or could not be evaluated.
	Rejected
	// Failed: acquire, read or decode failed.
	Failed
	// Dispatched: a decoded image was handed to the background writer.
	Dispatched
)

func (o Outcome) String() string {
	switch o {
	case Debounced:
		return "debounced"
	case Rejected:
		return "rejected"
	case Failed:
		return "failed"
	case Dispatched:
		return "dispatched"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Options wires a Pipeline. Backend and Settings are required; the rest
// have defaults.
type Options struct {
	Backend   clip.Backend
	Settings  *settings.Store
	Heuristic *heuristic.Heuristic
	Debouncer *debounce.Debouncer

	// Settle is the pause before acquiring the clipboard. Zero means
	// DefaultSettle, negative means no pause.
	Settle time.Duration
	// Acquire bounds the clipboard open retries. Zero fields take the
	// retry.DefaultPolicy value.
	Acquire retry.Policy
	// Format is the on-disk image format.
	Format archive.Format

	// Sleep waits on the event path; defaults to retry.Sleep.
	Sleep func(context.Context, time.Duration) error
	// Clock names saved files; defaults to time.Now.
	Clock func() time.Time
	// OnSaved, if set, is called from the background writer with the path
	// of every new file.
	OnSaved func(path string)
}

// Pipeline is the capture state machine. The only state shared between
// events is the debouncer and the archive directory.
type Pipeline struct {
	opts Options
	wg   sync.WaitGroup
}

// New returns a Pipeline with defaults applied to opts.
func New(opts Options) *Pipeline {
	if opts.Heuristic == nil {
		opts.Heuristic = heuristic.New(opts.Backend, heuristic.DefaultConfig())
	}
	if opts.Debouncer == nil {
		opts.Debouncer = debounce.New(debounce.DefaultWindow, opts.Clock)
	}
	switch {
	case opts.Settle == 0:
		opts.Settle = DefaultSettle
	case opts.Settle < 0:
		opts.Settle = 0
	}
	def := retry.DefaultPolicy()
	if opts.Acquire.Attempts == 0 {
		opts.Acquire.Attempts = def.Attempts
	}
	if opts.Acquire.Interval == 0 {
		opts.Acquire.Interval = def.Interval
	}
	if opts.Format == "" {
		opts.Format = archive.FormatPNG
	}
	if opts.Sleep == nil {
		opts.Sleep = retry.Sleep
	}
	if opts.Acquire.Sleep == nil {
		opts.Acquire.Sleep = opts.Sleep
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Pipeline{opts: opts}
}

// Run handles clipboard events until ctx is done or the backend's watch
// channel closes. It does not wait for background writes; call Wait.
func (p *Pipeline) Run(ctx context.Context) error {
	slog.Info("capture pipeline started",
		"backend", p.opts.Backend.Name(),
		"debounce", p.opts.Debouncer.Window(),
		"format", p.opts.Format,
	)
	watch := p.opts.Backend.Watch()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-watch:
			if !ok {
				slog.Info("clipboard watch closed")
				return nil
			}
			outcome := p.HandleEvent(ctx)
			slog.Debug("clipboard event handled", "outcome", outcome)
		}
	}
}

// Wait blocks until every dispatched background write has finished. Writes
// still running when the process exits are lost.
func (p *Pipeline) Wait() { p.wg.Wait() }

// HandleEvent runs one clipboard update through the pipeline. Every failure
// is logged and confined to this event.
func (p *Pipeline) HandleEvent(ctx context.Context) Outcome {
	if p.opts.Debouncer.Suppress(debounce.ClipboardUpdate) {
		slog.Debug("clipboard event debounced")
		return Debounced
	}

	v, err := p.opts.Heuristic.LikelyTrustedCapture()
	if err != nil {
		slog.Debug("ownership query failed, ignoring event", "err", err)
		return Rejected
	}
	if !v.Trusted {
		slog.Debug("clipboard write not from screenshot tool", "process", v.Process)
		return Rejected
	}

	if err := p.opts.Sleep(ctx, p.opts.Settle); err != nil {
		return Failed
	}

	raw, err := p.readDIB(ctx)
	if err != nil {
		slog.Warn("clipboard read failed", "err", err)
		return Failed
	}

	img, err := dib.Decode(raw)
	if err != nil {
		slog.Warn("screenshot decode failed", "bytes", len(raw), "err", err)
		return Failed
	}
	if img.Width == 0 || img.Height == 0 {
		slog.Warn("clipboard bitmap is empty")
		return Failed
	}

	var dir string
	if err := p.opts.Settings.Read(func(s settings.Settings) { dir = s.Paths.Screenshots }); err != nil {
		slog.Error("settings unavailable, screenshot dropped", "err", err)
		return Failed
	}

	now := p.opts.Clock()
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.persist(img, dir, now)
	}()
	return Dispatched
}

// readDIB opens the clipboard with retries, copies the CF_DIB payload and
// releases the clipboard before returning.
func (p *Pipeline) readDIB(ctx context.Context) ([]byte, error) {
	sess, err := retry.Do(ctx, p.opts.Acquire, p.opts.Backend.Open)
	if err != nil {
		return nil, fmt.Errorf("acquire clipboard: %w", err)
	}
	defer func() {
		if err := sess.Close(); err != nil {
			slog.Warn("clipboard release failed", "err", err)
		}
	}()

	raw, err := sess.ReadPayload(clip.FormatDIB)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", clip.FormatDIB, err)
	}
	return raw, nil
}

func (p *Pipeline) persist(img *raster.Image, dir string, now time.Time) {
	if archive.IsDuplicateOfLatest(img, dir) {
		slog.Info("screenshot matches latest, not saved", "dir", dir)
		return
	}
	path, err := archive.Save(img, dir, now, p.opts.Format)
	if err != nil {
		slog.Error("screenshot save failed", "dir", dir, "err", err)
		return
	}
	slog.Info("screenshot saved", "path", path, "width", img.Width, "height", img.Height)
	if p.opts.OnSaved != nil {
		p.opts.OnSaved(path)
	}
}
