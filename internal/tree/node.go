package tree

import "errors"

// ErrTainted is returned by Raster.EncodePNG when the pixel buffer may not be
// read (for example a canvas that drew cross-origin content).
var ErrTainted = errors.New("raster buffer is access-restricted")

// Size is a pair of non-negative pixel dimensions. Zero means unknown.
type Size struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Node is one node of a document tree as seen by the discovery engine.
type Node interface {
	// Tag is the lower-case element name. Documents and shadow roots have
	// an empty tag.
	Tag() string

	// Children returns element children in document order. Isolated
	// sub-trees are not included; see Shadow.
	Children() ([]Node, error)

	// Attr returns the attribute value, or "" when absent.
	Attr(name string) string

	// ComputedStyle returns the computed value of a style property.
	ComputedStyle(property string) (string, error)

	// RenderedSize is the node's rendered box.
	RenderedSize() Size

	// NaturalSize is the intrinsic size of image-like nodes.
	NaturalSize() Size

	// Shadow returns the root of an isolated sub-tree attached to this node,
	// or nil.
	Shadow() Node
}

// Raster is implemented by canvas-like nodes whose pixel buffer can be
// encoded into a portable locator.
type Raster interface {
	// LogicalSize is the raster's own width and height, independent of
	// layout.
	LogicalSize() Size

	// EncodePNG returns the current pixel buffer as a data:image/png
	// locator.
	EncodePNG() (string, error)
}
