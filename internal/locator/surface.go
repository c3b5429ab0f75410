package locator

import (
	"fmt"
	"net/url"
	"strings"
)

// Surface is the location context a tree was loaded from.
type Surface struct {
	// URL is the surface's own address.
	URL *url.URL
	// Base is the document base used for relative resolution. Nil means URL.
	Base *url.URL
}

// NewSurface builds a Surface from a document address and an optional base
// href (as found in a <base> element). A base that does not parse is
// ignored.
func NewSurface(address, baseHref string) (Surface, error) {
	u, err := url.Parse(address)
	if err != nil {
		return Surface{}, fmt.Errorf("parse surface url %q: %w", address, err)
	}
	s := Surface{URL: u}
	if baseHref = strings.TrimSpace(baseHref); baseHref != "" {
		if b, err := u.Parse(baseHref); err == nil {
			s.Base = b
		}
	}
	return s, nil
}

// Scheme returns the surface scheme with its trailing colon, e.g. "https:".
func (s Surface) Scheme() string {
	if s.URL == nil || s.URL.Scheme == "" {
		return ""
	}
	return s.URL.Scheme + ":"
}

// Origin returns scheme://host for network surfaces. Other surfaces have an
// opaque origin, rendered as "null".
func (s Surface) Origin() string {
	if s.URL == nil || s.URL.Host == "" {
		return "null"
	}
	return s.URL.Scheme + "://" + s.URL.Host
}

// BaseURL returns the URL relative references resolve against.
func (s Surface) BaseURL() *url.URL {
	if s.Base != nil {
		return s.Base
	}
	return s.URL
}

func (s Surface) String() string {
	if s.URL == nil {
		return ""
	}
	return s.URL.String()
}
