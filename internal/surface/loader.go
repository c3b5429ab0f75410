package surface

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/imgsweep/internal/tree"
)

// maxPageBytes bounds how much of a document is read.
const maxPageBytes = 32 << 20

// ErrUnsupportedScheme is returned for addresses no loader handles.
var ErrUnsupportedScheme = errors.New("unsupported scheme")

// ErrCrossScheme is returned for local file frames under a non-file page.
var ErrCrossScheme = errors.New("file frame outside a file surface")

// Page is a loaded, parsed document.
type Page struct {
	// URL is the final address after redirects.
	URL string
	Doc *tree.Document
}

// Loader fetches and parses a document.
type Loader interface {
	Load(ctx context.Context, address string) (*Page, error)
}

// HTTPLoader loads http and https documents.
type HTTPLoader struct {
	Client    *http.Client
	UserAgent string
}

func (l *HTTPLoader) Load(ctx context.Context, address string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, address, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if l.UserAgent != "" {
		req.Header.Set("User-Agent", l.UserAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.1")

	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", address, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", address, resp.Status)
	}

	doc, err := tree.ParseHTML(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", address, err)
	}
	final := address
	if resp.Request != nil && resp.Request.URL != nil {
		final = resp.Request.URL.String()
	}
	return &Page{URL: final, Doc: doc}, nil
}

// FileLoader loads documents from the local filesystem. It accepts plain
// paths and file:// URLs.
type FileLoader struct{}

func (FileLoader) Load(_ context.Context, address string) (*Page, error) {
	path := address
	if strings.HasPrefix(strings.ToLower(address), "file:") {
		u, err := url.Parse(address)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", address, err)
		}
		path = u.Path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", abs, err)
	}
	doc, err := tree.ParseHTML(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", abs, err)
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return &Page{URL: u.String(), Doc: doc}, nil
}

// MultiLoader dispatches on the address scheme.
type MultiLoader struct {
	HTTP Loader
	File Loader
}

// NewMultiLoader wires an HTTPLoader and a FileLoader.
func NewMultiLoader(client *http.Client, userAgent string) *MultiLoader {
	return &MultiLoader{
		HTTP: &HTTPLoader{Client: client, UserAgent: userAgent},
		File: FileLoader{},
	}
}

func (m *MultiLoader) Load(ctx context.Context, address string) (*Page, error) {
	switch scheme := schemeOf(address); scheme {
	case "http", "https":
		return m.HTTP.Load(ctx, address)
	case "", "file":
		return m.File.Load(ctx, address)
	default:
		return nil, fmt.Errorf("%s: %w %q", address, ErrUnsupportedScheme, scheme)
	}
}

// schemeOf returns the lower-case scheme of address, or "" for plain paths.
// Windows drive letters are not schemes.
func schemeOf(address string) string {
	i := strings.Index(address, ":")
	if i <= 1 {
		return ""
	}
	scheme := strings.ToLower(address[:i])
	for _, r := range scheme {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.') {
			return ""
		}
	}
	return scheme
}
