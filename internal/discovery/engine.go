package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/imgsweep/internal/locator"
	"github.com/roach88/imgsweep/internal/tree"
)

// DefaultLazyAttributes is the fixed priority chain of lazy-load attributes
// consulted on <img> before srcset and src.
var DefaultLazyAttributes = []string{"data-src", "data-original", "data-lazy-src"}

// ErrNilRoot is returned when Discover is given no tree.
var ErrNilRoot = errors.New("discovery: nil root")

// Engine discovers assets in document trees. An Engine holds no per-walk
// state and may serve concurrent Discover calls on different trees.
type Engine struct {
	resolver       HandleResolver
	lazyAttributes []string
	privateSchemes []string
	logger         *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLazyAttributes replaces the lazy-load attribute chain.
func WithLazyAttributes(attrs []string) Option {
	return func(e *Engine) {
		e.lazyAttributes = append([]string(nil), attrs...)
	}
}

// WithPrivateSchemes replaces the rejected private namespaces.
func WithPrivateSchemes(schemes []string) Option {
	return func(e *Engine) {
		e.privateSchemes = append([]string(nil), schemes...)
	}
}

// WithLogger sets the logger for contained per-node failures.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Engine. A nil resolver behaves like NoHandles.
func New(resolver HandleResolver, opts ...Option) *Engine {
	if resolver == nil {
		resolver = NoHandles{}
	}
	e := &Engine{
		resolver:       resolver,
		lazyAttributes: DefaultLazyAttributes,
		privateSchemes: locator.DefaultPrivateSchemes,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Stats counts what one Discover call saw.
type Stats struct {
	Nodes          int
	Accepted       int
	Duplicates     int
	FailedSubtrees int
	Rejected       map[locator.Reject]int
}

func (s *Stats) reject(r locator.Reject) {
	if s.Rejected == nil {
		s.Rejected = make(map[locator.Reject]int)
	}
	s.Rejected[r]++
}

// walk carries the per-invocation context shared by nested sub-walks.
type walk struct {
	surface locator.Surface
	stats   Stats
}

// Discover returns the assets reachable from root, in first-seen order.
//
// Per-node failures never surface here. An error means the walk as a whole
// could not run: the root's children could not be enumerated, the walk
// panicked, or ctx was cancelled.
func (e *Engine) Discover(ctx context.Context, s locator.Surface, root tree.Node) ([]Asset, error) {
	assets, _, err := e.DiscoverStats(ctx, s, root)
	return assets, err
}

// DiscoverStats is Discover plus the walk's counters.
func (e *Engine) DiscoverStats(ctx context.Context, s locator.Surface, root tree.Node) ([]Asset, Stats, error) {
	w := &walk{surface: s}
	assets, err := e.safeWalk(ctx, w, root)
	if err != nil {
		return nil, w.stats, fmt.Errorf("discover %s: %w", s, err)
	}
	e.logger.Debug("surface discovered",
		"surface", s.String(),
		"nodes", w.stats.Nodes,
		"assets", len(assets),
		"duplicates", w.stats.Duplicates,
		"failed_subtrees", w.stats.FailedSubtrees,
	)
	return assets, w.stats, nil
}

// safeWalk runs a walk and converts a panic in host-supplied node code into
// an error at this boundary.
func (e *Engine) safeWalk(ctx context.Context, w *walk, root tree.Node) (assets []Asset, err error) {
	defer func() {
		if r := recover(); r != nil {
			assets = nil
			err = fmt.Errorf("walk panicked: %v", r)
		}
	}()
	return e.walk(ctx, w, root)
}

func (e *Engine) walk(ctx context.Context, w *walk, root tree.Node) ([]Asset, error) {
	if root == nil {
		return nil, ErrNilRoot
	}
	nodes, err := e.flatten(root)
	if err != nil {
		return nil, err
	}

	set := newWorkingSet()
	for _, n := range nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		w.stats.Nodes++

		if sh := n.Shadow(); sh != nil {
			sub, err := e.safeWalk(ctx, w, sh)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, ctxErr
				}
				w.stats.FailedSubtrees++
				e.logger.Debug("isolated sub-tree skipped", "host", n.Tag(), "error", err)
			} else {
				set.merge(sub)
			}
		}

		tag := n.Tag()
		if tag != "" {
			e.extractBackground(ctx, w, set, n)
		}
		if tag == "img" {
			e.extractImage(ctx, w, set, n)
		}
		if r, ok := n.(tree.Raster); ok {
			e.extractRaster(ctx, w, set, r)
		}
	}
	return set.assets, nil
}

// flatten lists root and its element descendants in pre-order. Only the
// root's own enumeration failure is fatal; a failing descendant is kept but
// its children are skipped.
func (e *Engine) flatten(root tree.Node) ([]tree.Node, error) {
	kids, err := root.Children()
	if err != nil {
		return nil, fmt.Errorf("enumerate root children: %w", err)
	}
	nodes := []tree.Node{root}
	stack := reversed(kids)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == nil {
			continue
		}
		nodes = append(nodes, n)
		children, err := n.Children()
		if err != nil {
			e.logger.Debug("children unavailable", "tag", n.Tag(), "error", err)
			continue
		}
		stack = append(stack, reversed(children)...)
	}
	return nodes, nil
}

func reversed(nodes []tree.Node) []tree.Node {
	out := make([]tree.Node, len(nodes))
	for i, n := range nodes {
		out[len(nodes)-1-i] = n
	}
	return out
}

func (e *Engine) extractBackground(ctx context.Context, w *walk, set *workingSet, n tree.Node) {
	value, err := n.ComputedStyle("background-image")
	if err != nil {
		e.logger.Debug("computed style unavailable", "tag", n.Tag(), "error", err)
		return
	}
	raw, ok := locator.ExtractCSSURL(value)
	if !ok {
		return
	}
	box := n.RenderedSize()
	e.accept(ctx, w, set, candidate{raw: raw, width: box.Width, height: box.Height, category: CategoryBackground})
}

func (e *Engine) extractImage(ctx context.Context, w *walk, set *workingSet, n tree.Node) {
	raw := e.imageSource(n)
	natural, box := n.NaturalSize(), n.RenderedSize()
	c := candidate{
		raw:      raw,
		width:    firstPositive(natural.Width, box.Width),
		height:   firstPositive(natural.Height, box.Height),
		category: CategoryImage,
	}
	e.accept(ctx, w, set, c)
}

// imageSource applies the fixed source priority: lazy-load attributes in
// order, the best srcset candidate, then src.
func (e *Engine) imageSource(n tree.Node) string {
	for _, attr := range e.lazyAttributes {
		if v := n.Attr(attr); v != "" {
			return v
		}
	}
	if best, ok := locator.SelectBestCandidate(n.Attr("srcset")); ok {
		return best
	}
	return n.Attr("src")
}

func (e *Engine) extractRaster(ctx context.Context, w *walk, set *workingSet, r tree.Raster) {
	loc, err := r.EncodePNG()
	if err != nil {
		w.stats.reject(locator.RejectRestricted)
		e.logger.Debug("raster skipped", "error", err)
		return
	}
	size := r.LogicalSize()
	e.accept(ctx, w, set, candidate{raw: loc, width: size.Width, height: size.Height, category: CategoryRaster})
}

// accept canonicalizes c and inserts it when its locator is new.
func (e *Engine) accept(ctx context.Context, w *walk, set *workingSet, c candidate) {
	res := locator.Canonicalize(c.raw, w.surface, e.privateSchemes)
	if res.OK() && locator.IsHandle(res.Locator) {
		res = e.materialize(ctx, res.Locator)
	}
	if !res.OK() {
		w.stats.reject(res.Reject)
		if res.Reject != locator.RejectEmpty {
			e.logger.Debug("candidate rejected", "locator", shorten(c.raw), "reason", res.Reject.String())
		}
		return
	}

	a := Asset{
		Locator:  res.Locator,
		Width:    max(c.width, 0),
		Height:   max(c.height, 0),
		Category: c.category,
	}
	if set.add(a) {
		w.stats.Accepted++
	} else {
		w.stats.Duplicates++
	}
}

// materialize re-encodes an ephemeral handle as an embedded-data locator.
func (e *Engine) materialize(ctx context.Context, handle string) locator.Result {
	data, mime, err := e.resolver.Resolve(ctx, handle)
	if err != nil {
		e.logger.Debug("handle unavailable", "handle", handle, "error", err)
		return locator.Result{Reject: locator.RejectMaterialize}
	}
	if mime == "" {
		mime = sniffMIME(data)
	}
	loc := locator.EncodeDataURL(mime, data)
	if locator.IsVector(loc) {
		return locator.Result{Reject: locator.RejectVector}
	}
	return locator.Result{Locator: loc}
}

func firstPositive(vals ...int) int {
	for _, v := range vals {
		if v > 0 {
			return v
		}
	}
	return 0
}

func shorten(s string) string {
	const limit = 96
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
