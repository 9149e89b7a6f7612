// Package dib converts clipboard device-independent bitmaps (CF_DIB) into
// raster images.
//
// Only BI_BITFIELDS bitmaps with 32 bits per pixel are understood. The channel
// order is taken from the colour masks, so BGRX, RGBX and any other byte
// permutation decode correctly. Masks are interpreted as little-endian words;
// big-endian pixel layouts are not supported.
package dib

import (
	"math/bits"
	"runtime"

	"golang.org/x/sync/errgroup"

	"go.klb.dev/snipsave/internal/raster"
)

const bytesPerPixel = 4

// order holds the byte offset of each colour channel inside a 4-byte pixel.
type order struct{ r, g, b int }

func channelOffset(name string, mask uint32) (int, error) {
	off := bits.TrailingZeros32(mask) / 8
	if off >= bytesPerPixel {
		return 0, &InvalidMaskError{Channel: name, Mask: mask}
	}
	return off, nil
}

func subpixelOrder(r, g, b uint32) (order, error) {
	var (
		o   order
		err error
	)
	if o.r, err = channelOffset("red", r); err != nil {
		return order{}, err
	}
	if o.g, err = channelOffset("green", g); err != nil {
		return order{}, err
	}
	if o.b, err = channelOffset("blue", b); err != nil {
		return order{}, err
	}
	return o, nil
}

// Decode copies the pixels of a BI_BITFIELDS 32-bpp DIB into a new top-left
// origin RGB image. buf is only read; the returned image shares no memory with
// it, so buf may be released as soon as Decode returns.
//
// Validation happens before any pixel is written: either a fully populated
// image is returned or an error and nil.
func Decode(buf []byte) (*raster.Image, error) {
	if len(buf) == 0 {
		return nil, ErrMissingData
	}
	h := header(buf)
	// Compression and depth are reported even when the rest of the header
	// is cut off; only the field being checked has to be present.
	if !h.has(offCompression, 4) {
		return nil, ErrTruncated
	}
	if c := h.compression(); c != BIBitfields {
		return nil, &UnsupportedCompressionError{Value: c}
	}
	if d := h.bitCount(); d != 32 {
		return nil, &UnsupportedBitDepthError{Value: d}
	}
	if !h.valid() {
		return nil, ErrTruncated
	}

	width := abs(int64(h.width()))
	height := int64(h.height())
	// A positive height means the first stored row is the bottom one.
	flip := height > 0
	height = abs(height)

	rm, gm, bm, ok := masks(buf, h.size())
	if !ok {
		return nil, ErrTruncated
	}
	o, err := subpixelOrder(rm, gm, bm)
	if err != nil {
		return nil, err
	}

	if width == 0 || height == 0 {
		return raster.New(0, 0), nil
	}
	if uint64(height) > uint64(len(buf))/(uint64(width)*bytesPerPixel) {
		return nil, ErrTruncated
	}
	need := uint64(width) * uint64(height) * bytesPerPixel
	declared := uint64(h.sizeImage())
	if declared == 0 {
		declared = need
	}
	if declared < need {
		return nil, ErrTruncated
	}
	start := uint64(h.size()) + 12
	if start+need > uint64(len(buf)) {
		return nil, ErrTruncated
	}
	pixels := buf[start : start+need]

	img := raster.New(int(width), int(height))
	copyRows(img, pixels, o, flip)
	return img, nil
}

// copyRows fans the per-row copy out over GOMAXPROCS workers. Rows are
// independent so no synchronisation beyond the final Wait is needed.
func copyRows(img *raster.Image, pixels []byte, o order, flip bool) {
	srcStride := img.Width * bytesPerPixel
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for sy := 0; sy < img.Height; sy++ {
		g.Go(func() error {
			y := sy
			if flip {
				y = img.Height - 1 - sy
			}
			src := pixels[sy*srcStride : (sy+1)*srcStride]
			dst := img.Row(y)
			for x := 0; x < img.Width; x++ {
				i := x * bytesPerPixel
				d := x * raster.BytesPerPixel
				dst[d+0] = src[i+o.r]
				dst[d+1] = src[i+o.g]
				dst[d+2] = src[i+o.b]
			}
			return nil
		})
	}
	_ = g.Wait()
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
