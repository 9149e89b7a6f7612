package clip

import (
	"bytes"
	"fmt"
	"image/png"

	"go.klb.dev/snipsave/internal/dib"
	"go.klb.dev/snipsave/internal/raster"
)

// dibFromPNG re-encodes a PNG clipboard image as a bottom-up BGR bit-field
// DIB, the layout Windows hands out for CF_DIB. Backends that only see PNG
// use it so the pipeline decodes one format everywhere.
func dibFromPNG(data []byte) ([]byte, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode clipboard png: %w", err)
	}
	return dib.Encode(raster.FromImage(img), dib.EncodeOptions{Order: dib.OrderBGR}), nil
}
