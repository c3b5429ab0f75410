// Package surface loads a target, enumerates its surfaces (the primary
// document and its frames), runs discovery on each and merges the results.
package surface

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/imgsweep/internal/aggregate"
	"github.com/roach88/imgsweep/internal/config"
	"github.com/roach88/imgsweep/internal/discovery"
	"github.com/roach88/imgsweep/internal/locator"
	"github.com/roach88/imgsweep/internal/tree"
)

// srcdocAddress is the address of inline frame documents.
const srcdocAddress = "about:srcdoc"

// IDGenerator produces scan identifiers.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 scan IDs.
type UUIDv7Generator struct{}

func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// SurfaceInfo describes one enumerated surface.
type SurfaceInfo struct {
	Index   int    `json:"index"`
	Address string `json:"address"`
	Depth   int    `json:"depth"`
	Nodes   int    `json:"nodes"`
	Assets  int    `json:"assets"`
	// Error is set when discovery on the surface failed and it contributed
	// nothing.
	Error string `json:"error,omitempty"`
}

// Result is the outcome of a scan.
type Result struct {
	ScanID   string             `json:"scan_id"`
	Target   string             `json:"target"`
	Surfaces []SurfaceInfo      `json:"surfaces"`
	Records  []aggregate.Record `json:"records"`
}

// Scanner runs scans. Loader and Engine are required.
type Scanner struct {
	Loader Loader
	Engine *discovery.Engine
	Config config.Config
	IDs    IDGenerator
	Logger *slog.Logger
}

// NewScanner wires a Scanner from cfg with the default loaders.
func NewScanner(cfg config.Config, resolver discovery.HandleResolver, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	client := &http.Client{Timeout: cfg.FetchTimeout}
	return &Scanner{
		Loader: NewMultiLoader(client, cfg.UserAgent),
		Engine: discovery.New(resolver,
			discovery.WithLazyAttributes(cfg.LazyAttributes),
			discovery.WithPrivateSchemes(cfg.PrivateSchemes),
			discovery.WithLogger(logger),
		),
		Config: cfg,
		IDs:    UUIDv7Generator{},
		Logger: logger,
	}
}

// entry is an enumerated surface ready for discovery.
type entry struct {
	address string
	depth   int
	surface locator.Surface
	root    tree.Node
}

// Scan discovers every asset reachable from target.
//
// On ErrNoImages the returned Result is still populated with the surfaces
// that were walked.
func (s *Scanner) Scan(ctx context.Context, target string) (*Result, error) {
	target = strings.TrimSpace(target)
	if IsRestricted(target) {
		return nil, fmt.Errorf("scan %s: %w", target, ErrRestricted)
	}

	page, err := s.Loader.Load(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w: %w", target, ErrUnavailable, err)
	}
	primary, err := newEntry(page.URL, page.Doc, 0)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w: %w", target, ErrUnavailable, err)
	}

	entries := []entry{primary}
	entries = s.frames(ctx, entries, primary, page.Doc)

	assets, infos, err := s.discoverAll(ctx, entries)
	if err != nil {
		return nil, err
	}
	if infos[0].Error != "" {
		return nil, fmt.Errorf("scan %s: %w: %s", target, ErrUnavailable, infos[0].Error)
	}

	res := &Result{
		ScanID:   s.ids().Generate(),
		Target:   target,
		Surfaces: infos,
		Records:  aggregate.Merge(assets...),
	}
	s.logger().Info("scan complete",
		"target", target,
		"scan_id", res.ScanID,
		"surfaces", len(res.Surfaces),
		"records", len(res.Records),
	)
	if len(res.Records) == 0 {
		return res, fmt.Errorf("scan %s: %w", target, ErrNoImages)
	}
	return res, nil
}

// IsRestricted reports whether target is a browser-internal page.
func IsRestricted(target string) bool {
	lower := strings.ToLower(strings.TrimSpace(target))
	for _, p := range restrictedPrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

// frames appends the frames of doc depth-first. Frames that cannot be
// loaded or parsed are logged and skipped.
func (s *Scanner) frames(ctx context.Context, entries []entry, parent entry, doc *tree.Document) []entry {
	depth := parent.depth + 1
	if depth > s.Config.MaxFrameDepth {
		return entries
	}
	for _, f := range doc.Frames() {
		if ctx.Err() != nil {
			return entries
		}
		child, childDoc, err := s.loadFrame(ctx, parent, f, depth)
		if err != nil {
			s.logger().Warn("frame skipped", "parent", parent.address, "src", f.Src, "error", err)
			continue
		}
		if child.root == nil {
			continue
		}
		entries = append(entries, child)
		entries = s.frames(ctx, entries, child, childDoc)
	}
	return entries
}

// loadFrame returns the frame's entry. A zero entry with a nil error means
// the frame has no document worth walking.
func (s *Scanner) loadFrame(ctx context.Context, parent entry, f tree.Frame, depth int) (entry, *tree.Document, error) {
	if f.SrcDoc != "" {
		doc, err := tree.ParseHTML(strings.NewReader(f.SrcDoc))
		if err != nil {
			return entry{}, nil, err
		}
		// Inline documents inherit the parent's base.
		ls := locator.Surface{URL: parent.surface.URL, Base: parent.surface.BaseURL()}
		if href := strings.TrimSpace(doc.BaseHref()); href != "" {
			if b, err := ls.BaseURL().Parse(href); err == nil {
				ls.Base = b
			}
		}
		return entry{address: srcdocAddress, depth: depth, surface: ls, root: doc.Root()}, doc, nil
	}

	if f.Src == "" || strings.EqualFold(f.Src, "about:blank") {
		return entry{}, nil, nil
	}
	ref, err := parent.surface.BaseURL().Parse(f.Src)
	if err != nil {
		return entry{}, nil, fmt.Errorf("resolve frame src: %w", err)
	}
	address := ref.String()
	switch ref.Scheme {
	case "http", "https":
	case "file":
		if parent.surface.URL == nil || parent.surface.URL.Scheme != "file" {
			return entry{}, nil, fmt.Errorf("%s: %w", address, ErrCrossScheme)
		}
	default:
		return entry{}, nil, fmt.Errorf("%s: %w", address, ErrUnsupportedScheme)
	}
	page, err := s.Loader.Load(ctx, address)
	if err != nil {
		return entry{}, nil, err
	}
	e, err := newEntry(page.URL, page.Doc, depth)
	return e, page.Doc, err
}

func newEntry(address string, doc *tree.Document, depth int) (entry, error) {
	ls, err := locator.NewSurface(address, doc.BaseHref())
	if err != nil {
		return entry{}, err
	}
	return entry{address: address, depth: depth, surface: ls, root: doc.Root()}, nil
}

// discoverAll walks every entry with bounded concurrency. Results are
// stored by surface index so completion order never affects merge order.
// Only cancellation of ctx is returned as an error; per-surface failures
// are recorded in SurfaceInfo.Error.
func (s *Scanner) discoverAll(ctx context.Context, entries []entry) ([][]discovery.Asset, []SurfaceInfo, error) {
	assets := make([][]discovery.Asset, len(entries))
	infos := make([]SurfaceInfo, len(entries))

	var g errgroup.Group
	g.SetLimit(max(s.Config.Concurrency, 1))
	for i, e := range entries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			found, stats, err := s.Engine.DiscoverStats(ctx, e.surface, e.root)
			infos[i] = SurfaceInfo{Index: i, Address: e.address, Depth: e.depth, Nodes: stats.Nodes}
			if err != nil {
				infos[i].Error = err.Error()
				s.logger().Debug("surface discovery failed", "surface", e.address, "error", err)
				return nil
			}
			assets[i] = found
			infos[i].Assets = len(found)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("scan: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("scan: %w", err)
	}
	return assets, infos, nil
}

func (s *Scanner) ids() IDGenerator {
	if s.IDs == nil {
		return UUIDv7Generator{}
	}
	return s.IDs
}

func (s *Scanner) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// ParseDocument parses raw HTML for callers that already hold the bytes.
func ParseDocument(address string, data []byte) (*Page, error) {
	if address == "" {
		return nil, errors.New("parse document: empty address")
	}
	doc, err := tree.ParseHTML(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return &Page{URL: address, Doc: doc}, nil
}
