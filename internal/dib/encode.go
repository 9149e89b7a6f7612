package dib

import (
	"encoding/binary"

	"go.klb.dev/snipsave/internal/raster"
)

// Order names a byte layout for the first three bytes of a 32-bit pixel.
type Order string

const (
	OrderRGB Order = "RGB"
	OrderRBG Order = "RBG"
	OrderGRB Order = "GRB"
	OrderGBR Order = "GBR"
	OrderBRG Order = "BRG"
	OrderBGR Order = "BGR"
)

// Orders lists every channel permutation.
var Orders = []Order{OrderRGB, OrderRBG, OrderGRB, OrderGBR, OrderBRG, OrderBGR}

// EncodeOptions control the layout produced by Encode.
type EncodeOptions struct {
	// Order is the channel byte order; defaults to BGR, which is what
	// Windows puts on the clipboard.
	Order Order
	// TopDown stores the first row first and writes a negative height.
	// The default is the bottom-up layout used by most DIB producers.
	TopDown bool
	// Padding is written to the fourth byte of every pixel.
	Padding byte
}

// Encode builds a BITMAPINFOHEADER + three colour masks + pixel data buffer,
// the same layout the clipboard returns for CF_DIB with BI_BITFIELDS.
func Encode(img *raster.Image, opts EncodeOptions) []byte {
	if opts.Order == "" {
		opts.Order = OrderBGR
	}
	pos := map[byte]int{}
	for i := 0; i < 3; i++ {
		pos[opts.Order[i]] = i
	}

	n := img.Width * img.Height * bytesPerPixel
	buf := make([]byte, InfoHeaderSize+12+n)

	height := int32(img.Height)
	if opts.TopDown {
		height = -height
	}
	le := binary.LittleEndian
	le.PutUint32(buf[offSize:], InfoHeaderSize)
	le.PutUint32(buf[offWidth:], uint32(int32(img.Width)))
	le.PutUint32(buf[offHeight:], uint32(height))
	le.PutUint16(buf[offPlanes:], 1)
	le.PutUint16(buf[offBitCount:], 32)
	le.PutUint32(buf[offCompression:], BIBitfields)
	le.PutUint32(buf[offSizeImage:], uint32(n))

	m := buf[InfoHeaderSize:]
	le.PutUint32(m[0:], 0xff<<(8*pos['R']))
	le.PutUint32(m[4:], 0xff<<(8*pos['G']))
	le.PutUint32(m[8:], 0xff<<(8*pos['B']))

	px := buf[InfoHeaderSize+12:]
	stride := img.Width * bytesPerPixel
	for y := 0; y < img.Height; y++ {
		sy := y
		if !opts.TopDown {
			sy = img.Height - 1 - y
		}
		row := px[sy*stride:]
		for x := 0; x < img.Width; x++ {
			r, g, b := img.RGBAt(x, y)
			p := row[x*bytesPerPixel:]
			p[pos['R']] = r
			p[pos['G']] = g
			p[pos['B']] = b
			p[3] = opts.Padding
		}
	}
	return buf
}
