package raster

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filled(w, h int) *Image {
	img := New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGB(x, y, uint8(x), uint8(y), uint8(x+y))
		}
	}
	return img
}

func clone(m *Image) *Image {
	out := New(m.Width, m.Height)
	copy(out.Pix, m.Pix)
	return out
}

func TestEqualIdentical(t *testing.T) {
	a := filled(64, 48)
	assert.True(t, Equal(a, clone(a)))
	assert.True(t, Equal(a, a.ToRGBA()))
}

func TestEqualSinglePixelDiffers(t *testing.T) {
	a := filled(64, 48)
	positions := map[string]image.Point{
		"first":  {0, 0},
		"middle": {32, 24},
		"last":   {63, 47},
	}
	for name, p := range positions {
		t.Run(name, func(t *testing.T) {
			b := clone(a)
			r, g, bl := b.RGBAt(p.X, p.Y)
			b.SetRGB(p.X, p.Y, r, g, bl+1)

			assert.False(t, Equal(a, b))

			rgba := b.ToRGBA()
			assert.False(t, Equal(a, rgba))
		})
	}
}

func TestEqualDimensionMismatch(t *testing.T) {
	assert.False(t, Equal(filled(4, 4), filled(4, 5)))
	assert.False(t, Equal(filled(4, 4), filled(5, 4)))
	assert.False(t, Equal(nil, filled(1, 1)))
}

func TestEqualGenericImage(t *testing.T) {
	a := filled(8, 8)
	n := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			r, g, b := a.RGBAt(x, y)
			n.SetNRGBA(x, y, color.NRGBA{R: r, G: g, B: b, A: 0xff})
		}
	}
	assert.True(t, Equal(a, n))

	n.SetNRGBA(7, 7, color.NRGBA{A: 0xff})
	assert.False(t, Equal(a, n))
}

func TestToRGBAAndBack(t *testing.T) {
	a := filled(13, 7)
	rgba := a.ToRGBA()
	require.Equal(t, a.Bounds(), rgba.Bounds())
	assert.Equal(t, color.RGBA{R: 3, G: 2, B: 5, A: 0xff}, rgba.RGBAAt(3, 2))

	back := FromImage(rgba)
	assert.Equal(t, a.Pix, back.Pix)
}

func TestFromImageOffsetBounds(t *testing.T) {
	src := image.NewRGBA(image.Rect(10, 10, 12, 12))
	src.SetRGBA(11, 11, color.RGBA{R: 9, G: 8, B: 7, A: 0xff})

	got := FromImage(src)
	require.Equal(t, 2, got.Width)
	r, g, b := got.RGBAt(1, 1)
	assert.Equal(t, []uint8{9, 8, 7}, []uint8{r, g, b})
}

func TestAtOutOfBounds(t *testing.T) {
	assert.Equal(t, color.RGBA{}, filled(2, 2).At(5, 5))
}
