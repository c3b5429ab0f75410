package tree

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
)

// Default canvas dimensions when no width/height attributes are present.
const (
	defaultCanvasWidth  = 300
	defaultCanvasHeight = 150
	maxCanvasSide       = 16384
)

// ErrEmptyRaster is returned when a raster has no pixels to encode.
var ErrEmptyRaster = errors.New("raster has zero area")

// encodeBlankPNG encodes a fully transparent w×h image as a PNG data
// locator. A freshly created canvas holds exactly this buffer.
func encodeBlankPNG(size Size) (string, error) {
	if size.Width <= 0 || size.Height <= 0 {
		return "", ErrEmptyRaster
	}
	if size.Width > maxCanvasSide || size.Height > maxCanvasSide {
		return "", fmt.Errorf("raster %dx%d exceeds %d pixels per side", size.Width, size.Height, maxCanvasSide)
	}
	img := image.NewNRGBA(image.Rect(0, 0, size.Width, size.Height))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
