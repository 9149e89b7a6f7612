package clip

import "sync"

// headlessBackend is a no-op clipboard backend for environments without a
// display server (headless Linux servers, containers, etc.).
// It never produces Watch events and refuses to open.
type headlessBackend struct {
	watchCh chan struct{}
	once    sync.Once
}

func newHeadless() *headlessBackend {
	return &headlessBackend{watchCh: make(chan struct{})}
}

func (b *headlessBackend) Name() string               { return "headless (no-op)" }
func (b *headlessBackend) Watch() <-chan struct{}     { return b.watchCh }
func (b *headlessBackend) Open() (Session, error)     { return nil, ErrUnavailable }
func (b *headlessBackend) Owner() (Process, error)    { return Process{}, ErrUnavailable }
func (b *headlessBackend) Formats() ([]Format, error) { return nil, nil }
func (b *headlessBackend) Close()                     { b.once.Do(func() { close(b.watchCh) }) }
