//go:build linux || darwin

package clip

import (
	"bytes"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.design/x/clipboard"
)

const portablePollInterval = 250 * time.Millisecond

// portableBackend watches the image slot of the system clipboard through
// golang.design/x/clipboard. It only ever sees PNG and cannot name the
// clipboard owner, so it offers CF_DIB synthesised from the PNG.
type portableBackend struct {
	watchCh chan struct{}
	done    chan struct{}
	once    sync.Once
	lastImg []byte

	// mu models exclusive clipboard access for sessions.
	mu sync.Mutex
}

// New returns the portable clipboard backend, or a headless no-op backend if
// the display environment is unavailable (e.g. a headless server without X11
// or Wayland). clipboard.Init is called here rather than in init() so that
// CLI sub-commands don't trigger the warning.
func New() Backend {
	if err := clipboard.Init(); err != nil {
		slog.Warn("clipboard unavailable, running headless", "err", err)
		return newHeadless()
	}
	b := &portableBackend{
		watchCh: make(chan struct{}, 1),
		done:    make(chan struct{}),
		lastImg: clipboard.Read(clipboard.FmtImage),
	}
	go b.poll()
	return b
}

func (b *portableBackend) Name() string { return "portable clipboard (poll)" }

func (b *portableBackend) poll() {
	t := time.NewTicker(portablePollInterval)
	defer t.Stop()
	defer close(b.watchCh)
	for {
		select {
		case <-b.done:
			return
		case <-t.C:
			img := clipboard.Read(clipboard.FmtImage)
			if img == nil || bytes.Equal(img, b.lastImg) {
				continue
			}
			b.lastImg = img
			select {
			case b.watchCh <- struct{}{}:
			default:
			}
		}
	}
}

func (b *portableBackend) Open() (Session, error) {
	if !b.mu.TryLock() {
		return nil, ErrBusy
	}
	return &portableSession{b: b}, nil
}

func (b *portableBackend) Owner() (Process, error) { return Process{}, ErrOwnerUnknown }

func (b *portableBackend) Formats() ([]Format, error) {
	if clipboard.Read(clipboard.FmtImage) == nil {
		return nil, nil
	}
	return []Format{FormatDIB}, nil
}

func (b *portableBackend) Watch() <-chan struct{} { return b.watchCh }
func (b *portableBackend) Close()                 { b.once.Do(func() { close(b.done) }) }

type portableSession struct {
	b      *portableBackend
	closed bool
}

func (s *portableSession) ReadPayload(f Format) ([]byte, error) {
	if s.closed {
		return nil, ErrUnavailable
	}
	if f != FormatDIB {
		return nil, fmt.Errorf("%w: %s", ErrFormatUnavailable, f)
	}
	img := clipboard.Read(clipboard.FmtImage)
	if img == nil {
		return nil, fmt.Errorf("%w: %s", ErrFormatUnavailable, f)
	}
	return dibFromPNG(img)
}

func (s *portableSession) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.b.mu.Unlock()
	return nil
}
