// Package settings holds the user-editable settings file: whether to start
// at login and where screenshots are written.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

const (
	// DirName is the directory under the user config dir.
	DirName = "snip-and-autosave"
	// FileName is the settings file inside DirName.
	FileName = "settings.toml"
)

// Settings is the whole settings file. Each field is one TOML table.
type Settings struct {
	Program Program `toml:"program"`
	Paths   Paths   `toml:"paths"`
}

// Program holds general program options.
type Program struct {
	AutoStart bool `toml:"auto_start"`
}

// Paths holds the directories the program uses.
type Paths struct {
	Screenshots string `toml:"screenshots"`
}

// Defaults returns the settings written when no file exists.
func Defaults() Settings {
	return Settings{
		Paths: Paths{Screenshots: DefaultScreenshotsDir()},
	}
}

// DefaultPath returns <user config dir>/snip-and-autosave/settings.toml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("settings: locate config dir: %w", err)
	}
	return filepath.Join(dir, DirName, FileName), nil
}

// DefaultScreenshotsDir returns the Screenshots folder inside the user's
// Pictures folder, or a relative "Screenshots" when neither can be found.
func DefaultScreenshotsDir() string {
	pics, err := picturesDir()
	if err != nil || pics == "" {
		return "Screenshots"
	}
	return filepath.Join(pics, "Screenshots")
}

// Store is the loaded settings object plus the file it mirrors. The file is
// read on first access and again whenever it has been replaced or modified
// since, so another process (set-dir, autostart) can change the settings of
// a running daemon. Every Write re-serializes the whole object.
//
// One mutex guards both accessors. It is held for the callback and, for
// Write, the file write, and nothing else.
type Store struct {
	path string

	mu     sync.Mutex
	loaded bool
	value  Settings
	// stat is the file as last read or written.
	stat fs.FileInfo
}

// NewStore returns a Store backed by path. Nothing is read until first use.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the settings file path.
func (s *Store) Path() string { return s.path }

// Read calls fn with a copy of the current settings.
func (s *Store) Read(fn func(Settings)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(); err != nil {
		return err
	}
	fn(s.value)
	return nil
}

// Write calls fn with the live settings and then persists them.
func (s *Store) Write(fn func(*Settings)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(); err != nil {
		return err
	}
	fn(&s.value)
	return s.saveLocked()
}

// Get returns a copy of the current settings.
func (s *Store) Get() (Settings, error) {
	var out Settings
	err := s.Read(func(v Settings) { out = v })
	return out, err
}

func (s *Store) loadLocked() error {
	fi, statErr := os.Stat(s.path)
	if s.loaded {
		if statErr != nil || sameVersion(s.stat, fi) {
			// Unchanged, or gone; keep what we have.
			return nil
		}
		if err := s.readLocked(fi); err != nil {
			s.stat = fi
			slog.Warn("settings changed but could not be loaded, keeping previous", "path", s.path, "err", err)
		}
		return nil
	}

	if errors.Is(statErr, fs.ErrNotExist) {
		s.value = Defaults()
		s.loaded = true
		return s.saveLocked()
	}
	if statErr != nil {
		return fmt.Errorf("settings: read %s: %w", s.path, statErr)
	}
	if err := s.readLocked(fi); err != nil {
		return err
	}
	s.loaded = true
	return nil
}

func (s *Store) readLocked(fi fs.FileInfo) error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("settings: read %s: %w", s.path, err)
	}

	v := Defaults()
	if err := toml.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("settings: parse %s: %w", s.path, err)
	}
	if v.Paths.Screenshots == "" {
		v.Paths.Screenshots = DefaultScreenshotsDir()
	}
	s.value = v
	s.stat = fi
	return nil
}

// sameVersion reports whether b is the file a was taken from, unmodified.
// Writes replace the file by rename, so a new file identity alone marks a
// change even where mtimes are coarse.
func sameVersion(a, b fs.FileInfo) bool {
	return a != nil && b != nil &&
		os.SameFile(a, b) &&
		a.ModTime().Equal(b.ModTime()) &&
		a.Size() == b.Size()
}

// saveLocked writes to a temp file in the same directory and renames it over
// the settings file.
func (s *Store) saveLocked() error {
	data, err := toml.Marshal(s.value)
	if err != nil {
		return fmt.Errorf("settings: encode: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("settings: create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, FileName+".*")
	if err != nil {
		return fmt.Errorf("settings: write %s: %w", s.path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("settings: write %s: %w", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("settings: write %s: %w", s.path, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("settings: write %s: %w", s.path, err)
	}
	if fi, err := os.Stat(s.path); err == nil {
		s.stat = fi
	}
	return nil
}
