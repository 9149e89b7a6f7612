package dib

import (
	"errors"
	"fmt"
)

// ErrMissingData is returned when the clipboard handed over no bitmap bytes.
var ErrMissingData = errors.New("dib: bitmap data is missing")

// ErrTruncated is returned when a header, mask table or pixel region extends
// past the end of the buffer.
var ErrTruncated = errors.New("dib: buffer is truncated")

// UnsupportedCompressionError carries the biCompression value that was found
// instead of BI_BITFIELDS.
type UnsupportedCompressionError struct {
	Value uint32
}

func (e *UnsupportedCompressionError) Error() string {
	return fmt.Sprintf("dib: unsupported compression format %d", e.Value)
}

// UnsupportedBitDepthError carries the biBitCount value that was found instead
// of 32.
type UnsupportedBitDepthError struct {
	Value uint16
}

func (e *UnsupportedBitDepthError) Error() string {
	return fmt.Sprintf("dib: unsupported bit depth of %d bits", e.Value)
}

// InvalidMaskError is returned when a colour mask does not select a byte
// inside a 4-byte pixel.
type InvalidMaskError struct {
	Channel string
	Mask    uint32
}

func (e *InvalidMaskError) Error() string {
	return fmt.Sprintf("dib: %s mask %#08x does not address a pixel byte", e.Channel, e.Mask)
}
