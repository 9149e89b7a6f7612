// Package archive manages the screenshot output directory: finding the most
// recent capture, detecting an exact repeat of it, and writing new files.
package archive

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.klb.dev/snipsave/internal/raster"
)

// NamePrefix and TimeLayout make up saved file names:
// Screenshot_20240131_235959.png, with _2, _3, ... appended on collision.
const (
	NamePrefix = "Screenshot_"
	TimeLayout = "20060102_150405"

	maxCollisions = 1000
)

// Entry describes one file in the archive.
type Entry struct {
	Name    string
	Path    string
	Created time.Time
	Size    int64
	// Width and Height are zero when the file is not a readable image.
	Width  int
	Height int
}

// Latest returns the path of the regular file in dir with the newest
// creation time. ok is false when dir is missing or holds no files.
func Latest(dir string) (path string, ok bool, err error) {
	entries, err := readEntries(dir)
	if err != nil || len(entries) == 0 {
		return "", false, err
	}
	return entries[0].Path, true, nil
}

// IsDuplicateOfLatest reports whether img is pixel-identical to the newest
// file in dir. Any failure to find, open or decode that file yields false.
func IsDuplicateOfLatest(img *raster.Image, dir string) bool {
	if img == nil {
		return false
	}
	path, ok, err := Latest(dir)
	if err != nil {
		slog.Debug("duplicate check: list archive", "dir", dir, "err", err)
		return false
	}
	if !ok {
		return false
	}

	f, err := os.Open(path)
	if err != nil {
		slog.Debug("duplicate check: open latest", "path", path, "err", err)
		return false
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		slog.Debug("duplicate check: read header", "path", path, "err", err)
		return false
	}
	if cfg.Width != img.Width || cfg.Height != img.Height || cfg.ColorModel != color.RGBAModel {
		return false
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		slog.Debug("duplicate check: rewind", "path", path, "err", err)
		return false
	}
	prev, _, err := image.Decode(f)
	if err != nil {
		slog.Debug("duplicate check: decode latest", "path", path, "err", err)
		return false
	}
	return raster.Equal(img, prev)
}

// Save writes img into dir, creating the directory if needed. The file name
// is derived from now in local time; an existing file is never overwritten.
func Save(img *raster.Image, dir string, now time.Time, format Format) (string, error) {
	if img == nil {
		return "", errors.New("archive: nil image")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("archive: create %s: %w", dir, err)
	}

	f, path, err := createUnique(dir, NamePrefix+now.Local().Format(TimeLayout), format.Ext())
	if err != nil {
		return "", err
	}
	if err := format.encode(f, img); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("archive: encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("archive: write %s: %w", path, err)
	}
	return path, nil
}

func createUnique(dir, base, ext string) (*os.File, string, error) {
	for i := 1; i <= maxCollisions; i++ {
		name := base + ext
		if i > 1 {
			name = fmt.Sprintf("%s_%d%s", base, i, ext)
		}
		path := filepath.Join(dir, name)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return nil, "", fmt.Errorf("archive: create %s: %w", path, err)
		}
		return f, path, nil
	}
	return nil, "", fmt.Errorf("archive: no free name for %s%s in %s", base, ext, dir)
}

// List returns the archive contents, newest first, with image dimensions
// read from each file header.
func List(dir string) ([]Entry, error) {
	entries, err := readEntries(dir)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Width, entries[i].Height = dimensions(entries[i].Path)
	}
	return entries, nil
}

func dimensions(path string) (int, int) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}

// readEntries lists regular files in dir sorted newest first. Equal creation
// times are ordered by name, descending, so collision suffixes sort after
// their base name.
func readEntries(dir string) ([]Entry, error) {
	des, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("archive: read %s: %w", dir, err)
	}

	out := make([]Entry, 0, len(des))
	for _, de := range des {
		if !de.Type().IsRegular() {
			continue
		}
		fi, err := de.Info()
		if err != nil {
			// removed between ReadDir and Info
			continue
		}
		path := filepath.Join(dir, de.Name())
		out = append(out, Entry{
			Name:    de.Name(),
			Path:    path,
			Created: birthTime(path, fi),
			Size:    fi.Size(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Created.Equal(out[j].Created) {
			return out[i].Created.After(out[j].Created)
		}
		return out[i].Name > out[j].Name
	})
	return out, nil
}
