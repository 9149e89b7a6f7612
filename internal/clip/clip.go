// Package clip provides the system clipboard primitives the capture pipeline
// needs: change notification, exclusive scoped access, raw payload reads and
// owner identity. Build constraints select the implementation:
//
//	clip_windows.go  : Win32 via golang.org/x/sys/windows + AddClipboardFormatListener
//	clip_portable.go : macOS / Linux via golang.design/x/clipboard, image poll only
//	clip_other.go    : headless stub
package clip

import (
	"errors"
	"fmt"
)

// Format is a clipboard format identifier. Values match the Win32 CF_*
// constants so they can be passed straight to the OS on Windows.
type Format uint32

const (
	FormatText        Format = 1
	FormatBitmap      Format = 2
	FormatDIB         Format = 8
	FormatUnicodeText Format = 13
	FormatDIBV5       Format = 17
)

func (f Format) String() string {
	switch f {
	case FormatText:
		return "CF_TEXT"
	case FormatBitmap:
		return "CF_BITMAP"
	case FormatDIB:
		return "CF_DIB"
	case FormatUnicodeText:
		return "CF_UNICODETEXT"
	case FormatDIBV5:
		return "CF_DIBV5"
	default:
		return fmt.Sprintf("format(%d)", uint32(f))
	}
}

var (
	// ErrBusy is returned by Open when another process holds the clipboard.
	ErrBusy = errors.New("clip: clipboard is busy")
	// ErrOwnerUnknown is returned by Owner when the platform cannot name the
	// process that last wrote the clipboard.
	ErrOwnerUnknown = errors.New("clip: clipboard owner unknown")
	// ErrUnavailable is returned when there is no clipboard at all.
	ErrUnavailable = errors.New("clip: clipboard unavailable")
	// ErrFormatUnavailable is returned by ReadPayload when the clipboard does
	// not hold data in the requested format.
	ErrFormatUnavailable = errors.New("clip: format not on clipboard")
)

// Process identifies the owner of the clipboard contents.
type Process struct {
	PID       uint32
	ImagePath string
}

// Session is exclusive access to the clipboard. It must be closed on every
// path; payloads are only readable while it is open.
type Session interface {
	// ReadPayload returns a copy of the clipboard data in format f. The
	// returned slice is owned by the caller and stays valid after Close.
	ReadPayload(f Format) ([]byte, error)
	Close() error
}

// Backend is the interface that all platform clipboard implementations satisfy.
type Backend interface {
	// Name returns a human-readable name for the backend.
	Name() string

	// Watch returns a channel that receives a signal whenever the clipboard
	// changes. Signals are coalesced: a slow reader sees one pending signal
	// for any number of changes. The channel is closed by Close.
	Watch() <-chan struct{}

	// Open acquires the clipboard. Returns ErrBusy when another process
	// holds it; callers retry.
	Open() (Session, error)

	// Owner returns the process that owns the current clipboard contents.
	Owner() (Process, error)

	// Formats returns the formats currently offered by the clipboard,
	// including ones the OS can synthesise.
	Formats() ([]Format, error)

	// Close releases any resources held by the backend.
	Close()
}
