// Package discovery walks a document tree and produces the ordered,
// deduplicated set of image assets it references.
//
// # Walk
//
// A Discover call visits the root and then every element child in
// pre-order. For each node, in this order:
//
//  1. An isolated sub-tree (shadow root) is discovered first by a nested
//     walk with its own working set, merged into the caller's set when it
//     returns. A failing or panicking sub-walk contributes nothing.
//  2. The computed background-image (category background).
//  3. For <img>: the first non-empty of the lazy-load attributes
//     (data-src, data-original, data-lazy-src), the best srcset candidate,
//     then src (category image).
//  4. For raster nodes: the encoded pixel buffer (category raster).
//
// # Identity
//
// The canonical locator is the only identity key. The first candidate to
// reach a locator wins; later candidates never overwrite its size or
// category. Two uses of one URL at different sizes therefore collapse into
// a single asset.
//
// # Determinism
//
// Nodes are processed strictly in order. Materializing an ephemeral handle
// blocks the walk at that node until the resolver returns, so the working
// set always observes candidates in traversal order.
package discovery
