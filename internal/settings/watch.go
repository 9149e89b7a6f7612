package settings

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports changes to a Store's file made by other processes.
type Watcher struct {
	w    *fsnotify.Watcher
	done chan struct{}
}

// Watch calls onChange with the reloaded settings each time the file is
// written or replaced with different contents. The parent directory is
// watched, not the file, because Write swaps the file in by rename.
// onChange runs on the watcher goroutine.
func (s *Store) Watch(onChange func(Settings)) (*Watcher, error) {
	last, err := s.Get()
	if err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("settings: watch: %w", err)
	}
	if err := fw.Add(filepath.Dir(s.path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("settings: watch %s: %w", filepath.Dir(s.path), err)
	}

	w := &Watcher{w: fw, done: make(chan struct{})}
	target := filepath.Clean(s.path)
	go func() {
		defer close(w.done)
		for {
			select {
			case ev, ok := <-fw.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
					continue
				}
				v, err := s.Get()
				if err != nil {
					slog.Warn("settings reload failed", "path", s.path, "err", err)
					continue
				}
				if v == last {
					continue
				}
				last = v
				onChange(v)
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				slog.Warn("settings watch error", "path", s.path, "err", err)
			}
		}
	}()
	return w, nil
}

// Close stops the watch and waits for the goroutine to exit.
func (w *Watcher) Close() error {
	err := w.w.Close()
	<-w.done
	return err
}
