// Package raster holds the decoded screenshot representation: a dense RGB
// pixel grid with a top-left origin, plus exact content comparison.
package raster

import (
	"image"
	"image/color"
	"image/draw"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// BytesPerPixel is the size of one stored pixel (R, G, B).
const BytesPerPixel = 3

// Image is an owned RGB pixel grid. Pix holds Height rows of Width*3 bytes,
// row-major, first row is the top of the picture.
type Image struct {
	Width  int
	Height int
	Pix    []byte
}

// New allocates a zeroed image of the given dimensions.
func New(width, height int) *Image {
	return &Image{
		Width:  width,
		Height: height,
		Pix:    make([]byte, width*height*BytesPerPixel),
	}
}

// Stride returns the byte length of one row.
func (m *Image) Stride() int { return m.Width * BytesPerPixel }

// Row returns the bytes of row y.
func (m *Image) Row(y int) []byte {
	s := m.Stride()
	return m.Pix[y*s : (y+1)*s]
}

// RGBAt returns the channels of the pixel at (x, y).
func (m *Image) RGBAt(x, y int) (r, g, b uint8) {
	i := y*m.Stride() + x*BytesPerPixel
	return m.Pix[i], m.Pix[i+1], m.Pix[i+2]
}

// SetRGB sets the pixel at (x, y).
func (m *Image) SetRGB(x, y int, r, g, b uint8) {
	i := y*m.Stride() + x*BytesPerPixel
	m.Pix[i], m.Pix[i+1], m.Pix[i+2] = r, g, b
}

func (m *Image) ColorModel() color.Model { return color.RGBAModel }

func (m *Image) Bounds() image.Rectangle { return image.Rect(0, 0, m.Width, m.Height) }

func (m *Image) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}).In(m.Bounds()) {
		return color.RGBA{}
	}
	r, g, b := m.RGBAt(x, y)
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

// Opaque reports true; the image has no alpha channel. image/png uses this to
// pick 8-bit truecolor encoding.
func (m *Image) Opaque() bool { return true }

// ToRGBA converts to *image.RGBA so the stdlib encoders take their fast path.
func (m *Image) ToRGBA() *image.RGBA {
	out := image.NewRGBA(m.Bounds())
	for y := 0; y < m.Height; y++ {
		src := m.Row(y)
		dst := out.Pix[y*out.Stride : y*out.Stride+m.Width*4]
		for x := 0; x < m.Width; x++ {
			dst[x*4+0] = src[x*3+0]
			dst[x*4+1] = src[x*3+1]
			dst[x*4+2] = src[x*3+2]
			dst[x*4+3] = 0xff
		}
	}
	return out
}

// FromImage copies any image.Image into an RGB grid, dropping alpha.
func FromImage(src image.Image) *Image {
	b := src.Bounds()
	rgba, ok := src.(*image.RGBA)
	if !ok || b.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), src, b.Min, draw.Src)
	}
	out := New(b.Dx(), b.Dy())
	for y := 0; y < out.Height; y++ {
		row := rgba.Pix[y*rgba.Stride:]
		dst := out.Row(y)
		for x := 0; x < out.Width; x++ {
			dst[x*3+0] = row[x*4+0]
			dst[x*3+1] = row[x*4+1]
			dst[x*3+2] = row[x*4+2]
		}
	}
	return out
}

// Equal reports whether a and b have identical dimensions and identical RGB
// values at every pixel. Rows are compared concurrently; the first mismatch
// raises a shared flag that the remaining workers check before each row.
func Equal(a *Image, b image.Image) bool {
	if a == nil || b == nil {
		return false
	}
	bb := b.Bounds()
	if bb.Dx() != a.Width || bb.Dy() != a.Height {
		return false
	}

	rowEqual := genericRowEqual(a, b)
	switch other := b.(type) {
	case *Image:
		rowEqual = func(y int) bool { return string(a.Row(y)) == string(other.Row(y)) }
	case *image.RGBA:
		rowEqual = rgbaRowEqual(a, other)
	}

	var mismatch atomic.Bool
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for y := 0; y < a.Height; y++ {
		g.Go(func() error {
			if mismatch.Load() {
				return nil
			}
			if !rowEqual(y) {
				mismatch.Store(true)
			}
			return nil
		})
		if mismatch.Load() {
			break
		}
	}
	_ = g.Wait()
	return !mismatch.Load()
}

func rgbaRowEqual(a *Image, b *image.RGBA) func(int) bool {
	origin := b.Bounds().Min
	return func(y int) bool {
		src := a.Row(y)
		off := b.PixOffset(origin.X, origin.Y+y)
		row := b.Pix[off : off+a.Width*4]
		for x := 0; x < a.Width; x++ {
			if src[x*3] != row[x*4] || src[x*3+1] != row[x*4+1] || src[x*3+2] != row[x*4+2] {
				return false
			}
		}
		return true
	}
}

func genericRowEqual(a *Image, b image.Image) func(int) bool {
	origin := b.Bounds().Min
	return func(y int) bool {
		for x := 0; x < a.Width; x++ {
			c := color.RGBAModel.Convert(b.At(origin.X+x, origin.Y+y)).(color.RGBA)
			r, g, bl := a.RGBAt(x, y)
			if c.R != r || c.G != g || c.B != bl {
				return false
			}
		}
		return true
	}
}
