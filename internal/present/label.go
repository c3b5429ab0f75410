package present

import (
	"fmt"

	"github.com/roach88/imgsweep/internal/aggregate"
)

// SizeUnknown labels records without both dimensions.
const SizeUnknown = "Size Unknown"

// Dimensions returns "W × H", or SizeUnknown.
func Dimensions(r aggregate.Record) string {
	if r.Width <= 0 || r.Height <= 0 {
		return SizeUnknown
	}
	return fmt.Sprintf("%d × %d", r.Width, r.Height)
}

// CountLabel returns "1 image" or "N images".
func CountLabel(n int) string {
	if n == 1 {
		return "1 image"
	}
	return fmt.Sprintf("%d images", n)
}

// Refine fills in dimensions learned after discovery, for example by
// decoding the image. Known dimensions are kept. Locator and Index never
// change.
func Refine(r aggregate.Record, width, height int) aggregate.Record {
	if r.Width <= 0 && width > 0 {
		r.Width = width
	}
	if r.Height <= 0 && height > 0 {
		r.Height = height
	}
	return r
}
