package archive

import (
	"fmt"
	"image/png"
	"io"
	"strings"

	"golang.org/x/image/bmp"

	"go.klb.dev/snipsave/internal/raster"
)

// Format is the on-disk encoding of saved screenshots. Both are lossless
// 8-bit RGB.
type Format string

const (
	FormatPNG Format = "png"
	FormatBMP Format = "bmp"
)

// ParseFormat accepts "png" or "bmp" in any case. Empty means png.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "", "png":
		return FormatPNG, nil
	case "bmp":
		return FormatBMP, nil
	default:
		return "", fmt.Errorf("archive: unknown image format %q (want png or bmp)", s)
	}
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string { return "." + string(f) }

func (f Format) encode(w io.Writer, img *raster.Image) error {
	switch f {
	case FormatBMP:
		return bmp.Encode(w, img.ToRGBA())
	case FormatPNG, "":
		return png.Encode(w, img.ToRGBA())
	default:
		return fmt.Errorf("archive: unknown image format %q", string(f))
	}
}
