package tree

import (
	"errors"
	"strings"
)

// ErrFixtureFailure is returned by fixture nodes configured to fail.
var ErrFixtureFailure = errors.New("fixture: node unavailable")

// Fixture is a declarative, YAML-decodable tree node.
//
//	tag: div
//	style: { background-image: 'url("/bg.png")' }
//	box: { width: 100, height: 40 }
//	children:
//	  - tag: img
//	    attrs: { src: a.png }
//	    natural: { width: 640, height: 480 }
//	  - tag: x-card
//	    shadow:
//	      children: [ ... ]
//	  - tag: canvas
//	    canvas: { width: 8, height: 8, tainted: true }
type Fixture struct {
	TagName    string            `yaml:"tag"`
	Attrs      map[string]string `yaml:"attrs,omitempty"`
	Style      map[string]string `yaml:"style,omitempty"`
	Box        Size              `yaml:"box,omitempty"`
	Natural    Size              `yaml:"natural,omitempty"`
	Elements   []*Fixture        `yaml:"children,omitempty"`
	ShadowRoot *Fixture          `yaml:"shadow,omitempty"`
	Canvas     *FixtureCanvas    `yaml:"canvas,omitempty"`

	// Fail makes Children return ErrFixtureFailure.
	Fail bool `yaml:"fail,omitempty"`
	// Panic makes Children panic.
	Panic bool `yaml:"panic,omitempty"`
	// StyleError makes ComputedStyle return ErrFixtureFailure.
	StyleError bool `yaml:"style_error,omitempty"`
}

// FixtureCanvas configures a canvas-like fixture node.
type FixtureCanvas struct {
	Width   int  `yaml:"width"`
	Height  int  `yaml:"height"`
	Tainted bool `yaml:"tainted,omitempty"`
	// Data overrides the encoded locator. Empty means a blank PNG of the
	// logical size.
	Data string `yaml:"data,omitempty"`
}

// fixtureRaster is a Fixture with a canvas.
type fixtureRaster struct {
	*Fixture
}

// Node returns f as a Node, exposing Raster when f has a canvas.
// A nil fixture yields a nil Node.
func (f *Fixture) Node() Node {
	if f == nil {
		return nil
	}
	if f.Canvas != nil {
		return fixtureRaster{f}
	}
	return f
}

func (f *Fixture) Tag() string {
	return strings.ToLower(f.TagName)
}

func (f *Fixture) Children() ([]Node, error) {
	if f.Panic {
		panic("fixture: children enumeration panicked")
	}
	if f.Fail {
		return nil, ErrFixtureFailure
	}
	out := make([]Node, 0, len(f.Elements))
	for _, c := range f.Elements {
		if c == nil {
			continue
		}
		out = append(out, c.Node())
	}
	return out, nil
}

func (f *Fixture) Attr(name string) string {
	return f.Attrs[name]
}

func (f *Fixture) ComputedStyle(property string) (string, error) {
	if f.StyleError {
		return "", ErrFixtureFailure
	}
	if v, ok := f.Style[property]; ok {
		return v, nil
	}
	if property == "background-image" {
		return "none", nil
	}
	return "", nil
}

func (f *Fixture) RenderedSize() Size {
	return f.Box
}

func (f *Fixture) NaturalSize() Size {
	return f.Natural
}

func (f *Fixture) Shadow() Node {
	return f.ShadowRoot.Node()
}

func (r fixtureRaster) LogicalSize() Size {
	return Size{Width: r.Canvas.Width, Height: r.Canvas.Height}
}

func (r fixtureRaster) EncodePNG() (string, error) {
	if r.Canvas.Tainted {
		return "", ErrTainted
	}
	if r.Canvas.Data != "" {
		return r.Canvas.Data, nil
	}
	return encodeBlankPNG(r.LogicalSize())
}
