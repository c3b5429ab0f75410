package locator

import (
	"net/url"
	"path"
	"strings"
)

// Reject explains why a candidate produced no locator.
type Reject int

const (
	// Accepted is the zero value: the candidate produced a locator.
	Accepted Reject = iota
	// RejectEmpty: blank candidate.
	RejectEmpty
	// RejectPrivate: scoped to the runtime's own private namespace.
	RejectPrivate
	// RejectVector: a scalable vector image, excluded from discovery.
	RejectVector
	// RejectUnresolvable: a relative reference that would not resolve.
	RejectUnresolvable
	// RejectMaterialize: an ephemeral handle that could not be fetched or
	// re-encoded.
	RejectMaterialize
	// RejectRestricted: a raster whose buffer could not be read.
	RejectRestricted
	// RejectCrossScheme: a local file reference on a non-file surface.
	RejectCrossScheme
)

var rejectNames = map[Reject]string{
	Accepted:           "accepted",
	RejectEmpty:        "empty",
	RejectPrivate:      "private",
	RejectVector:       "vector",
	RejectUnresolvable: "unresolvable",
	RejectMaterialize:  "materialize",
	RejectRestricted:   "restricted",
	RejectCrossScheme:  "cross-scheme",
}

func (r Reject) String() string {
	if s, ok := rejectNames[r]; ok {
		return s
	}
	return "unknown"
}

// Result is the outcome of canonicalizing one candidate.
type Result struct {
	Locator string
	Reject  Reject
}

// OK reports whether the result carries a locator.
func (r Result) OK() bool {
	return r.Reject == Accepted && r.Locator != ""
}

func accept(loc string) Result { return Result{Locator: loc} }
func reject(why Reject) Result { return Result{Reject: why} }

// DefaultPrivateSchemes are the extension namespaces never reported.
var DefaultPrivateSchemes = []string{
	"chrome-extension://",
	"moz-extension://",
	"safari-web-extension://",
}

// Canonicalize turns a raw reference into its absolute form.
//
// Ephemeral handles (blob:) pass through unchanged; materializing them is
// the caller's job. Canonical locators come back unchanged. Local file
// locators are only accepted on file surfaces.
func Canonicalize(raw string, s Surface, privateSchemes []string) Result {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return reject(RejectEmpty)
	}
	if isPrivate(raw, privateSchemes) {
		return reject(RejectPrivate)
	}
	if IsVector(raw) {
		return reject(RejectVector)
	}

	res := absolute(raw, s)
	if !res.OK() {
		return res
	}
	// The base can itself be private, or point somewhere the surface may not.
	if isPrivate(res.Locator, privateSchemes) {
		return reject(RejectPrivate)
	}
	if isFile(res.Locator) && !strings.EqualFold(s.Scheme(), "file:") {
		return reject(RejectCrossScheme)
	}
	return res
}

func absolute(raw string, s Surface) Result {
	switch {
	case strings.HasPrefix(raw, "//"):
		scheme := s.Scheme()
		if scheme == "" {
			return reject(RejectUnresolvable)
		}
		return accept(scheme + raw)
	case strings.HasPrefix(raw, "/"):
		origin := s.Origin()
		if origin == "null" {
			return resolve(raw, s)
		}
		return accept(origin + raw)
	case IsAbsolute(raw):
		return accept(raw)
	default:
		return resolve(raw, s)
	}
}

func isPrivate(loc string, privateSchemes []string) bool {
	lower := strings.ToLower(loc)
	for _, p := range privateSchemes {
		if strings.HasPrefix(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

func isFile(loc string) bool {
	return strings.HasPrefix(strings.ToLower(loc), "file:")
}

func resolve(raw string, s Surface) Result {
	base := s.BaseURL()
	if base == nil {
		return reject(RejectUnresolvable)
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return reject(RejectUnresolvable)
	}
	abs := base.ResolveReference(ref)
	if !abs.IsAbs() {
		return reject(RejectUnresolvable)
	}
	return accept(abs.String())
}

// IsAbsolute reports whether raw already is a network, embedded-data or
// ephemeral-handle locator.
func IsAbsolute(raw string) bool {
	lower := strings.ToLower(raw)
	return strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		IsData(raw) ||
		IsHandle(raw)
}

// IsData reports whether raw is an embedded-data locator.
func IsData(raw string) bool {
	return strings.HasPrefix(strings.ToLower(raw), "data:")
}

// IsHandle reports whether raw is an ephemeral-handle locator.
func IsHandle(raw string) bool {
	return strings.HasPrefix(strings.ToLower(raw), "blob:")
}

// IsVector reports whether raw names an SVG image, either by an embedded
// data prefix or by the extension of its path.
func IsVector(raw string) bool {
	lower := strings.ToLower(strings.TrimSpace(raw))
	if strings.HasPrefix(lower, "data:image/svg") {
		return true
	}
	if IsData(lower) {
		return false
	}
	p := lower
	if u, err := url.Parse(lower); err == nil {
		p = u.Path
		if p == "" {
			p = u.Opaque
		}
	} else if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	ext := path.Ext(p)
	return ext == ".svg" || ext == ".svgz"
}
