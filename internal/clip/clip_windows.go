//go:build windows

package clip

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	wmDestroy         = 0x0002
	wmClose           = 0x0010
	wmClipboardUpdate = 0x031D

	// HWND_MESSAGE, i.e. (HWND)-3: parent for message-only windows.
	hwndMessage = ^uintptr(2)

	maxImagePath = 32768
)

var (
	user32   = windows.NewLazySystemDLL("user32.dll")
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procRegisterClassExW              = user32.NewProc("RegisterClassExW")
	procCreateWindowExW               = user32.NewProc("CreateWindowExW")
	procDefWindowProcW                = user32.NewProc("DefWindowProcW")
	procDestroyWindow                 = user32.NewProc("DestroyWindow")
	procGetMessageW                   = user32.NewProc("GetMessageW")
	procTranslateMessage              = user32.NewProc("TranslateMessage")
	procDispatchMessageW              = user32.NewProc("DispatchMessageW")
	procPostMessageW                  = user32.NewProc("PostMessageW")
	procPostQuitMessage               = user32.NewProc("PostQuitMessage")
	procAddClipboardFormatListener    = user32.NewProc("AddClipboardFormatListener")
	procRemoveClipboardFormatListener = user32.NewProc("RemoveClipboardFormatListener")
	procOpenClipboard                 = user32.NewProc("OpenClipboard")
	procCloseClipboard                = user32.NewProc("CloseClipboard")
	procGetClipboardData              = user32.NewProc("GetClipboardData")
	procGetClipboardOwner             = user32.NewProc("GetClipboardOwner")
	procIsClipboardFormatAvailable    = user32.NewProc("IsClipboardFormatAvailable")
	procGlobalLock                    = kernel32.NewProc("GlobalLock")
	procGlobalUnlock                  = kernel32.NewProc("GlobalUnlock")
	procGlobalSize                    = kernel32.NewProc("GlobalSize")
)

type wndClassEx struct {
	Size       uint32
	Style      uint32
	WndProc    uintptr
	ClsExtra   int32
	WndExtra   int32
	Instance   windows.Handle
	Icon       windows.Handle
	Cursor     windows.Handle
	Background windows.Handle
	MenuName   *uint16
	ClassName  *uint16
	IconSm     windows.Handle
}

type winMsg struct {
	Hwnd    uintptr
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      struct{ X, Y int32 }
	Private uint32
}

// listedFormats are the formats reported by Formats.
var listedFormats = []Format{FormatDIB, FormatDIBV5, FormatBitmap, FormatUnicodeText, FormatText}

// active is the backend whose window receives WM_CLIPBOARDUPDATE. Window
// procedures are process-global callbacks, so only one listener exists.
var active atomic.Pointer[windowsBackend]

var wndProcCallback = windows.NewCallback(wndProc)

type windowsBackend struct {
	hwnd      uintptr
	watchCh   chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// New returns the Windows clipboard backend using AddClipboardFormatListener
// on a message-only window. The window and its message loop live on a
// dedicated OS thread; clipboard updates are delivered serially through Watch.
func New() Backend {
	b := &windowsBackend{
		watchCh: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	active.Store(b)

	ready := make(chan error, 1)
	go b.pump(ready)
	if err := <-ready; err != nil {
		active.CompareAndSwap(b, nil)
		slog.Warn("clipboard listener unavailable, running headless", "err", err)
		return newHeadless()
	}
	return b
}

func (b *windowsBackend) Name() string { return "Windows Clipboard" }

func (b *windowsBackend) pump(ready chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(b.done)
	defer close(b.watchCh)

	hwnd, err := createListenerWindow()
	if err != nil {
		ready <- err
		return
	}
	b.hwnd = hwnd
	ready <- nil

	var m winMsg
	for {
		r, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		// 0 is WM_QUIT, -1 is an error; both end the loop.
		if int32(r) <= 0 {
			return
		}
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&m)))
		procDispatchMessageW.Call(uintptr(unsafe.Pointer(&m)))
	}
}

func createListenerWindow() (uintptr, error) {
	var inst windows.Handle
	if err := windows.GetModuleHandleEx(0, nil, &inst); err != nil {
		return 0, fmt.Errorf("GetModuleHandleEx: %w", err)
	}
	cls, err := windows.UTF16PtrFromString("SnipSaveClipboard")
	if err != nil {
		return 0, err
	}

	wc := wndClassEx{
		WndProc:   wndProcCallback,
		Instance:  inst,
		ClassName: cls,
	}
	wc.Size = uint32(unsafe.Sizeof(wc))
	if r, _, err := procRegisterClassExW.Call(uintptr(unsafe.Pointer(&wc))); r == 0 {
		return 0, fmt.Errorf("RegisterClassExW: %w", err)
	}

	hwnd, _, err := procCreateWindowExW.Call(
		0,
		uintptr(unsafe.Pointer(cls)),
		0,
		0,
		0, 0, 0, 0,
		hwndMessage,
		0,
		uintptr(inst),
		0,
	)
	if hwnd == 0 {
		return 0, fmt.Errorf("CreateWindowExW: %w", err)
	}
	if r, _, err := procAddClipboardFormatListener.Call(hwnd); r == 0 {
		procDestroyWindow.Call(hwnd)
		return 0, fmt.Errorf("AddClipboardFormatListener: %w", err)
	}
	return hwnd, nil
}

func wndProc(hwnd, message, wparam, lparam uintptr) uintptr {
	switch message {
	case wmClipboardUpdate:
		if b := active.Load(); b != nil {
			select {
			case b.watchCh <- struct{}{}:
			default:
			}
		}
		return 0
	case wmDestroy:
		procRemoveClipboardFormatListener.Call(hwnd)
		procPostQuitMessage.Call(0)
		return 0
	}
	r, _, _ := procDefWindowProcW.Call(hwnd, message, wparam, lparam)
	return r
}

// Open calls OpenClipboard with the listener window as owner hint. The
// goroutine is pinned to its OS thread until the session is closed because
// Win32 ties the open clipboard to the calling thread.
func (b *windowsBackend) Open() (Session, error) {
	runtime.LockOSThread()
	if r, _, err := procOpenClipboard.Call(b.hwnd); r == 0 {
		runtime.UnlockOSThread()
		return nil, fmt.Errorf("%w: OpenClipboard: %v", ErrBusy, err)
	}
	return &windowsSession{}, nil
}

func (b *windowsBackend) Owner() (Process, error) {
	owner, _, _ := procGetClipboardOwner.Call()
	if owner == 0 {
		return Process{}, ErrOwnerUnknown
	}

	var pid uint32
	if _, err := windows.GetWindowThreadProcessId(windows.HWND(owner), &pid); err != nil {
		return Process{}, fmt.Errorf("GetWindowThreadProcessId: %w", err)
	}

	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, pid)
	if err != nil {
		return Process{PID: pid}, fmt.Errorf("OpenProcess(%d): %w", pid, err)
	}
	defer windows.CloseHandle(h)

	buf := make([]uint16, maxImagePath)
	size := uint32(len(buf))
	if err := windows.QueryFullProcessImageName(h, 0, &buf[0], &size); err != nil {
		return Process{PID: pid}, fmt.Errorf("QueryFullProcessImageName(%d): %w", pid, err)
	}
	return Process{PID: pid, ImagePath: windows.UTF16ToString(buf[:size])}, nil
}

func (b *windowsBackend) Formats() ([]Format, error) {
	var out []Format
	for _, f := range listedFormats {
		if r, _, _ := procIsClipboardFormatAvailable.Call(uintptr(f)); r != 0 {
			out = append(out, f)
		}
	}
	return out, nil
}

func (b *windowsBackend) Watch() <-chan struct{} { return b.watchCh }

func (b *windowsBackend) Close() {
	b.closeOnce.Do(func() {
		procPostMessageW.Call(b.hwnd, wmClose, 0, 0)
		<-b.done
		active.CompareAndSwap(b, nil)
	})
}

type windowsSession struct {
	closed bool
}

// ReadPayload copies the global memory block behind the clipboard handle.
// The handle itself belongs to the clipboard and is never freed here.
func (s *windowsSession) ReadPayload(f Format) ([]byte, error) {
	if s.closed {
		return nil, ErrUnavailable
	}
	h, _, err := procGetClipboardData.Call(uintptr(f))
	if h == 0 {
		return nil, fmt.Errorf("%w: GetClipboardData(%s): %v", ErrFormatUnavailable, f, err)
	}
	p, _, err := procGlobalLock.Call(h)
	if p == 0 {
		return nil, fmt.Errorf("GlobalLock: %w", err)
	}
	defer procGlobalUnlock.Call(h)

	n, _, _ := procGlobalSize.Call(h)
	return copyAt(p, int(n)), nil
}

func (s *windowsSession) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	defer runtime.UnlockOSThread()
	if r, _, err := procCloseClipboard.Call(); r == 0 {
		return fmt.Errorf("CloseClipboard: %w", err)
	}
	return nil
}
