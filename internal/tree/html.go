package tree

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is a parsed HTML document.
type Document struct {
	root *html.Node
}

// Frame is an embedded browsing context found in a document.
type Frame struct {
	// Src is the raw src attribute.
	Src string
	// SrcDoc is the inline document of an iframe, if any. When non-empty it
	// takes precedence over Src.
	SrcDoc string
}

// ParseHTML parses r into a Document.
func ParseHTML(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Document{root: root}, nil
}

// Root returns the document node. Its tag is empty.
func (d *Document) Root() Node {
	return wrapHTML(d.root, false)
}

// BaseHref returns the href of the first <base> element, or "".
func (d *Document) BaseHref() string {
	var href string
	walkHTML(d.root, func(n *html.Node) bool {
		if n.DataAtom == atom.Base {
			if v, ok := htmlAttr(n, "href"); ok {
				href = v
				return false
			}
		}
		return true
	})
	return href
}

// Frames lists iframe and frame elements in document order, including those
// inside declarative shadow roots.
func (d *Document) Frames() []Frame {
	return FindFrames(d.Root())
}

// FindFrames lists the iframe and frame elements under root in pre-order. A
// host's shadow root is entered before its children. Nodes whose children
// cannot be enumerated are skipped.
func FindFrames(root Node) []Frame {
	var frames []Frame
	var visit func(n Node)
	visit = func(n Node) {
		if n == nil {
			return
		}
		if tag := n.Tag(); tag == "iframe" || tag == "frame" {
			frames = append(frames, Frame{Src: strings.TrimSpace(n.Attr("src")), SrcDoc: n.Attr("srcdoc")})
		}
		visit(n.Shadow())
		kids, err := n.Children()
		if err != nil {
			return
		}
		for _, k := range kids {
			visit(k)
		}
	}
	visit(root)
	return frames
}

// walkHTML visits element nodes in pre-order until fn returns false.
func walkHTML(n *html.Node, fn func(*html.Node) bool) bool {
	if n.Type == html.ElementNode && !fn(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walkHTML(c, fn) {
			return false
		}
	}
	return true
}

func htmlAttr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// isShadowTemplate reports whether n declares a shadow root for its parent.
func isShadowTemplate(n *html.Node) bool {
	if n.Type != html.ElementNode || n.DataAtom != atom.Template {
		return false
	}
	if _, ok := htmlAttr(n, "shadowrootmode"); ok {
		return true
	}
	_, ok := htmlAttr(n, "shadowroot")
	return ok
}

// htmlNode adapts an *html.Node. A shadow node wraps the declaring
// <template> but presents itself as a tag-less root.
type htmlNode struct {
	n      *html.Node
	shadow bool
}

// htmlCanvas is a <canvas> element.
type htmlCanvas struct {
	htmlNode
}

func wrapHTML(n *html.Node, shadow bool) Node {
	if !shadow && n.Type == html.ElementNode && n.DataAtom == atom.Canvas {
		return &htmlCanvas{htmlNode{n: n}}
	}
	return &htmlNode{n: n, shadow: shadow}
}

func (h *htmlNode) Tag() string {
	if h.shadow || h.n.Type != html.ElementNode {
		return ""
	}
	return strings.ToLower(h.n.Data)
}

// Children skips every <template>: ordinary template content is inert, and
// declarative shadow roots are reached through Shadow.
func (h *htmlNode) Children() ([]Node, error) {
	var out []Node
	for c := h.n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.DataAtom == atom.Template {
			continue
		}
		out = append(out, wrapHTML(c, false))
	}
	return out, nil
}

func (h *htmlNode) Attr(name string) string {
	if h.n.Type != html.ElementNode {
		return ""
	}
	v, _ := htmlAttr(h.n, strings.ToLower(name))
	return v
}

func (h *htmlNode) ComputedStyle(property string) (string, error) {
	if h.Tag() == "" {
		return "", fmt.Errorf("no computed style for non-element node")
	}
	style := h.Attr("style")
	switch strings.ToLower(property) {
	case "background-image":
		return inlineBackgroundImage(style), nil
	default:
		for _, d := range parseInlineStyle(style) {
			if d.property == strings.ToLower(property) {
				return d.value, nil
			}
		}
		return "", nil
	}
}

func (h *htmlNode) RenderedSize() Size {
	if h.Tag() == "" {
		return Size{}
	}
	var s Size
	if n, ok := leadingInt(h.Attr("width")); ok {
		s.Width = n
	}
	if n, ok := leadingInt(h.Attr("height")); ok {
		s.Height = n
	}
	style := h.Attr("style")
	if n, ok := inlineLength(style, "width"); ok {
		s.Width = n
	}
	if n, ok := inlineLength(style, "height"); ok {
		s.Height = n
	}
	return s
}

// NaturalSize is unknown for static markup: nothing has been decoded.
func (h *htmlNode) NaturalSize() Size {
	return Size{}
}

func (h *htmlNode) Shadow() Node {
	if h.shadow {
		return nil
	}
	for c := h.n.FirstChild; c != nil; c = c.NextSibling {
		if isShadowTemplate(c) {
			return wrapHTML(c, true)
		}
	}
	return nil
}

// LogicalSize follows the canvas element defaults of 300×150.
func (c *htmlCanvas) LogicalSize() Size {
	s := Size{Width: defaultCanvasWidth, Height: defaultCanvasHeight}
	if v := c.Attr("width"); v != "" {
		n, _ := leadingInt(v)
		s.Width = n
	}
	if v := c.Attr("height"); v != "" {
		n, _ := leadingInt(v)
		s.Height = n
	}
	return s
}

// EncodePNG encodes the canvas's initial (transparent) buffer; static markup
// has never been drawn on.
func (c *htmlCanvas) EncodePNG() (string, error) {
	return encodeBlankPNG(c.LogicalSize())
}
