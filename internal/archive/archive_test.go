package archive

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/snipsave/internal/raster"
)

var testNow = time.Date(2024, 1, 31, 23, 59, 58, 0, time.Local)

func pattern(w, h int) *raster.Image {
	img := raster.New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGB(x, y, uint8(x*4), uint8(y*4), uint8(x^y))
		}
	}
	return img
}

func clone(img *raster.Image) *raster.Image {
	c := raster.New(img.Width, img.Height)
	copy(c.Pix, img.Pix)
	return c
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatPNG, "png": FormatPNG, "PNG": FormatPNG, ".bmp": FormatBMP, "bmp": FormatBMP} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("jpeg")
	assert.Error(t, err)
}

func TestSaveName(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "shots")

	path, err := Save(pattern(4, 4), dir, testNow, FormatPNG)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Screenshot_20240131_235958.png"), path)

	path, err = Save(pattern(4, 4), dir, testNow, FormatPNG)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Screenshot_20240131_235958_2.png"), path)

	path, err = Save(pattern(4, 4), dir, testNow, FormatPNG)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Screenshot_20240131_235958_3.png"), path)
}

func TestSaveRoundTrip(t *testing.T) {
	for _, f := range []Format{FormatPNG, FormatBMP} {
		t.Run(string(f), func(t *testing.T) {
			src := pattern(64, 64)
			path, err := Save(src, t.TempDir(), testNow, f)
			require.NoError(t, err)
			assert.Equal(t, f.Ext(), filepath.Ext(path))

			fh, err := os.Open(path)
			require.NoError(t, err)
			defer fh.Close()
			got, _, err := image.Decode(fh)
			require.NoError(t, err)
			assert.True(t, raster.Equal(src, got))
		})
	}
}

func TestLatestMissingAndEmpty(t *testing.T) {
	_, ok, err := Latest(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = Latest(t.TempDir())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLatestPicksNewest(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b_old.txt"), []byte("x"), 0o644))
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a_new.txt"), []byte("y"), 0o644))

	path, ok, err := Latest(dir)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "a_new.txt"), path)
}

func TestIsDuplicateOfLatestEmpty(t *testing.T) {
	img := pattern(8, 8)
	assert.False(t, IsDuplicateOfLatest(img, t.TempDir()))
	assert.False(t, IsDuplicateOfLatest(img, filepath.Join(t.TempDir(), "missing")))
	assert.False(t, IsDuplicateOfLatest(nil, t.TempDir()))
}

func TestIsDuplicateOfLatest(t *testing.T) {
	for _, f := range []Format{FormatPNG, FormatBMP} {
		t.Run(string(f), func(t *testing.T) {
			dir := t.TempDir()
			src := pattern(64, 64)
			_, err := Save(src, dir, testNow, f)
			require.NoError(t, err)

			assert.True(t, IsDuplicateOfLatest(clone(src), dir))

			for _, p := range []image.Point{{0, 0}, {32, 31}, {63, 63}} {
				diff := clone(src)
				r, g, b := diff.RGBAt(p.X, p.Y)
				diff.SetRGB(p.X, p.Y, r^1, g, b)
				assert.False(t, IsDuplicateOfLatest(diff, dir), "pixel %v", p)
			}
		})
	}
}

func TestIsDuplicateOfLatestDimensionMismatch(t *testing.T) {
	dir := t.TempDir()
	_, err := Save(pattern(64, 64), dir, testNow, FormatPNG)
	require.NoError(t, err)

	assert.False(t, IsDuplicateOfLatest(pattern(64, 32), dir))
	assert.False(t, IsDuplicateOfLatest(pattern(32, 64), dir))
}

func TestIsDuplicateOfLatestOnlyComparesNewest(t *testing.T) {
	dir := t.TempDir()
	first := pattern(16, 16)
	_, err := Save(first, dir, testNow, FormatPNG)
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)
	_, err = Save(raster.New(16, 16), dir, testNow.Add(time.Second), FormatPNG)
	require.NoError(t, err)

	assert.False(t, IsDuplicateOfLatest(first, dir))
	assert.True(t, IsDuplicateOfLatest(raster.New(16, 16), dir))
}

func TestIsDuplicateOfLatestUnreadable(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0o644))
	assert.False(t, IsDuplicateOfLatest(pattern(4, 4), dir))
}

func TestIsDuplicateOfLatestNonRGB(t *testing.T) {
	dir := t.TempDir()
	gray := image.NewGray(image.Rect(0, 0, 4, 4))
	fh, err := os.Create(filepath.Join(dir, "gray.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(fh, gray))
	require.NoError(t, fh.Close())

	// all-black RGB has the same pixels but a different color model
	assert.False(t, IsDuplicateOfLatest(raster.New(4, 4), dir))
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	_, err := Save(pattern(10, 20), dir, testNow, FormatPNG)
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)
	_, err = Save(pattern(30, 40), dir, testNow.Add(time.Minute), FormatBMP)
	require.NoError(t, err)

	entries, err := List(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "Screenshot_20240201_000058.bmp", entries[0].Name)
	assert.Equal(t, 30, entries[0].Width)
	assert.Equal(t, 40, entries[0].Height)
	assert.Equal(t, "Screenshot_20240131_235958.png", entries[1].Name)
	assert.Equal(t, 10, entries[1].Width)
	assert.Positive(t, entries[1].Size)

	entries, err = List(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}
