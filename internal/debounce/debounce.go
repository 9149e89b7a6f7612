// Package debounce suppresses bursts of the same event kind.
package debounce

import (
	"sync"
	"time"
)

// DefaultWindow is how long after an event further events of the same kind
// are dropped.
const DefaultWindow = 1000 * time.Millisecond

// Kind identifies an event stream, e.g. the clipboard-update message.
type Kind string

// ClipboardUpdate is the only kind the capture pipeline debounces.
const ClipboardUpdate Kind = "clipboard-update"

// Debouncer remembers when each kind was last seen. Entries are never
// removed; the map holds at most one entry per kind.
type Debouncer struct {
	window time.Duration
	clock  func() time.Time

	mu       sync.Mutex
	lastSeen map[Kind]time.Time
}

// New returns a Debouncer. A nil clock uses time.Now.
func New(window time.Duration, clock func() time.Time) *Debouncer {
	if window <= 0 {
		window = DefaultWindow
	}
	if clock == nil {
		clock = time.Now
	}
	return &Debouncer{
		window:   window,
		clock:    clock,
		lastSeen: make(map[Kind]time.Time),
	}
}

// Window returns the configured debounce window.
func (d *Debouncer) Window() time.Duration { return d.window }

// Suppress reports whether an event of kind arriving now falls within the
// window of the previous one. The current time is recorded either way, so a
// steady stream of events keeps extending the window.
func (d *Debouncer) Suppress(kind Kind) bool {
	now := d.clock()

	d.mu.Lock()
	defer d.mu.Unlock()

	last, seen := d.lastSeen[kind]
	d.lastSeen[kind] = now
	return seen && now.Sub(last) <= d.window
}
