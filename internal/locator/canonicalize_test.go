package locator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSurface(t *testing.T, address, base string) Surface {
	t.Helper()
	s, err := NewSurface(address, base)
	require.NoError(t, err)
	return s
}

func TestCanonicalize(t *testing.T) {
	s := mustSurface(t, "https://example.com/x/", "")

	tests := []struct {
		name   string
		raw    string
		want   string
		reject Reject
	}{
		{"root relative", "/img/a.png", "https://example.com/img/a.png", Accepted},
		{"scheme relative", "//cdn.example.com/b.png", "https://cdn.example.com/b.png", Accepted},
		{"document relative", "c.png", "https://example.com/x/c.png", Accepted},
		{"parent relative", "../d.png", "https://example.com/d.png", Accepted},
		{"absolute", "http://other.test/e.jpg", "http://other.test/e.jpg", Accepted},
		{"data", "data:image/png;base64,AAAA", "data:image/png;base64,AAAA", Accepted},
		{"handle passes through", "blob:https://example.com/1234", "blob:https://example.com/1234", Accepted},
		{"surrounding whitespace", "  f.png\n", "https://example.com/x/f.png", Accepted},
		{"empty", "", "", RejectEmpty},
		{"blank", "   ", "", RejectEmpty},
		{"private", "chrome-extension://abc/icon.png", "", RejectPrivate},
		{"private mixed case", "Moz-Extension://abc/icon.png", "", RejectPrivate},
		{"svg extension", "/logo.svg", "", RejectVector},
		{"svg with query", "https://example.com/logo.SVG?v=2", "", RejectVector},
		{"svg data", "data:image/svg+xml;utf8,<svg/>", "", RejectVector},
		{"unresolvable", "%zz.png", "", RejectUnresolvable},
		{"local file", "file:///etc/passwd", "", RejectCrossScheme},
		{"local file mixed case", "FILE:///home/u/secret.png", "", RejectCrossScheme},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Canonicalize(tt.raw, s, DefaultPrivateSchemes)
			assert.Equal(t, tt.reject, got.Reject, "reject kind")
			assert.Equal(t, tt.want, got.Locator)
			assert.Equal(t, tt.reject == Accepted, got.OK())
		})
	}
}

func TestCanonicalizeIdempotent(t *testing.T) {
	s := mustSurface(t, "https://example.com/x/", "")
	for _, raw := range []string{"/img/a.png", "//cdn.example.com/b.png", "c.png", "data:image/gif;base64,R0lG"} {
		first := Canonicalize(raw, s, DefaultPrivateSchemes)
		require.True(t, first.OK(), raw)
		second := Canonicalize(first.Locator, s, DefaultPrivateSchemes)
		assert.Equal(t, first, second, raw)
	}
}

func TestCanonicalizeUsesBaseHref(t *testing.T) {
	s := mustSurface(t, "https://example.com/page/", "https://cdn.example.com/assets/")

	assert.Equal(t, "https://cdn.example.com/assets/a.png", Canonicalize("a.png", s, nil).Locator)
	// Root-relative references use the surface origin, not the base.
	assert.Equal(t, "https://example.com/b.png", Canonicalize("/b.png", s, nil).Locator)
}

func TestCanonicalizeOpaqueOrigin(t *testing.T) {
	s := mustSurface(t, "file:///srv/site/index.html", "")

	assert.Equal(t, "file:///srv/site/img/a.png", Canonicalize("img/a.png", s, nil).Locator)
	assert.Equal(t, "file:///b.png", Canonicalize("/b.png", s, nil).Locator)
	assert.Equal(t, "file://cdn.example.com/c.png", Canonicalize("//cdn.example.com/c.png", s, nil).Locator)
}

func TestCanonicalizeLocalFiles(t *testing.T) {
	local := mustSurface(t, "file:///srv/site/index.html", "")
	got := Canonicalize("file:///srv/other/a.png", local, nil)
	require.True(t, got.OK())
	assert.Equal(t, "file:///srv/other/a.png", got.Locator)

	// A file base on a network page does not make local files reachable.
	remote := mustSurface(t, "https://example.com/", "file:///home/u/")
	for _, raw := range []string{"secret.txt", "file:///home/u/secret.txt", "file://host/secret.txt"} {
		got := Canonicalize(raw, remote, nil)
		assert.Equal(t, RejectCrossScheme, got.Reject, raw)
		assert.Empty(t, got.Locator, raw)
	}
	// Root-relative references use the surface origin.
	assert.Equal(t, "https://example.com/secret.txt", Canonicalize("/secret.txt", remote, nil).Locator)
}

func TestCanonicalizePrivateBase(t *testing.T) {
	s := mustSurface(t, "chrome-extension://abc/popup.html", "")

	got := Canonicalize("icon.png", s, DefaultPrivateSchemes)
	assert.Equal(t, RejectPrivate, got.Reject)
	got = Canonicalize("/icon.png", s, DefaultPrivateSchemes)
	assert.Equal(t, RejectPrivate, got.Reject)

	remote := mustSurface(t, "https://example.com/", "moz-extension://abc/")
	got = Canonicalize("icon.png", remote, DefaultPrivateSchemes)
	assert.Equal(t, RejectPrivate, got.Reject)
}

func TestCanonicalizeWithoutSurface(t *testing.T) {
	got := Canonicalize("a.png", Surface{}, nil)
	assert.Equal(t, RejectUnresolvable, got.Reject)
	got = Canonicalize("//cdn/a.png", Surface{}, nil)
	assert.Equal(t, RejectUnresolvable, got.Reject)
}

func TestSurfaceAccessors(t *testing.T) {
	s := mustSurface(t, "https://example.com:8443/x/y.html", "")
	assert.Equal(t, "https:", s.Scheme())
	assert.Equal(t, "https://example.com:8443", s.Origin())
	assert.Equal(t, "https://example.com:8443/x/y.html", s.BaseURL().String())
}

func TestIsVector(t *testing.T) {
	assert.True(t, IsVector("a.svg"))
	assert.True(t, IsVector("a.svgz#frag"))
	assert.False(t, IsVector("https://svg.example.com/a.png"))
	assert.False(t, IsVector("a.svg.png"))
	assert.False(t, IsVector("data:image/png;base64,c3Zn.svg"))
	assert.False(t, IsVector("https://img.svg"))
	assert.False(t, IsVector("https://img.svg/?f=a.png"))
	assert.True(t, IsVector("https://img.example.com/a.svg?f=b.png"))
	assert.True(t, IsVector("%zz.svg"))
}

func TestRejectString(t *testing.T) {
	assert.Equal(t, "vector", RejectVector.String())
	assert.Equal(t, "cross-scheme", RejectCrossScheme.String())
	assert.Equal(t, "unknown", Reject(99).String())
}
