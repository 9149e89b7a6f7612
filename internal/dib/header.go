package dib

import "encoding/binary"

// Compression values for biCompression.
const (
	BIRGB       uint32 = 0
	BIRLE8      uint32 = 1
	BIRLE4      uint32 = 2
	BIBitfields uint32 = 3
	BIJPEG      uint32 = 4
	BIPNG       uint32 = 5
)

// InfoHeaderSize is sizeof(BITMAPINFOHEADER).
const InfoHeaderSize = 40

// Field offsets within BITMAPINFOHEADER. All fields are little-endian.
const (
	offSize        = 0
	offWidth       = 4
	offHeight      = 8
	offPlanes      = 12
	offBitCount    = 14
	offCompression = 16
	offSizeImage   = 20
)

// header is a read-only view over the start of a DIB. Accessors never read
// past the end of the slice; the caller checks has() or valid() first.
type header []byte

func (h header) valid() bool { return len(h) >= InfoHeaderSize }

// has reports whether the n-byte field at off is inside h.
func (h header) has(off, n int) bool { return len(h) >= off+n }

func (h header) size() uint32        { return binary.LittleEndian.Uint32(h[offSize:]) }
func (h header) width() int32        { return int32(binary.LittleEndian.Uint32(h[offWidth:])) }
func (h header) height() int32       { return int32(binary.LittleEndian.Uint32(h[offHeight:])) }
func (h header) bitCount() uint16    { return binary.LittleEndian.Uint16(h[offBitCount:]) }
func (h header) compression() uint32 { return binary.LittleEndian.Uint32(h[offCompression:]) }
func (h header) sizeImage() uint32   { return binary.LittleEndian.Uint32(h[offSizeImage:]) }

// masks reads the red, green and blue colour masks that follow a header of
// size hdrSize. ok is false if the table runs past the buffer.
func masks(buf []byte, hdrSize uint32) (r, g, b uint32, ok bool) {
	end := uint64(hdrSize) + 12
	if end > uint64(len(buf)) {
		return 0, 0, 0, false
	}
	t := buf[hdrSize:end]
	return binary.LittleEndian.Uint32(t[0:]),
		binary.LittleEndian.Uint32(t[4:]),
		binary.LittleEndian.Uint32(t[8:]),
		true
}
