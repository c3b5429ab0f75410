package harness

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/imgsweep/internal/aggregate"
	"github.com/roach88/imgsweep/internal/discovery"
	"github.com/roach88/imgsweep/internal/locator"
	"github.com/roach88/imgsweep/internal/store"
	"github.com/roach88/imgsweep/internal/testutil"
	"github.com/roach88/imgsweep/internal/tree"
)

// Harness is the scenario execution engine.
type Harness struct {
	store  *store.Store
	engine *discovery.Engine
	scanID *testutil.FixedIDGenerator
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory catalog for isolation.
//
// Execution flow:
// 1. Create fresh in-memory catalog
// 2. Register handles and revocations
// 3. Discover each surface in order; a failed surface contributes nothing
// 4. Merge and catalog the inventory
// 5. Return result with pass/fail, records, and errors
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	resolver, err := buildResolver(scenario)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests
	opts := []discovery.Option{discovery.WithLogger(logger)}
	if scenario.LazyAttributes != nil {
		opts = append(opts, discovery.WithLazyAttributes(scenario.LazyAttributes))
	}
	if scenario.PrivateSchemes != nil {
		opts = append(opts, discovery.WithPrivateSchemes(scenario.PrivateSchemes))
	}

	h := &Harness{
		store:  st,
		engine: discovery.New(resolver, opts...),
		scanID: testutil.NewFixedIDGenerator(scenario.ScanID),
		logger: logger,
	}

	result := NewResult()
	if err := h.discover(ctx, scenario, result); err != nil {
		return nil, fmt.Errorf("failed to discover: %w", err)
	}

	if err := h.catalog(ctx, scenario, result); err != nil {
		return nil, fmt.Errorf("failed to catalog: %w", err)
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}

func buildResolver(scenario *Scenario) (*discovery.MapResolver, error) {
	r := discovery.NewMapResolver()
	for loc, handle := range scenario.Handles {
		data, err := base64.StdEncoding.DecodeString(handle.Data)
		if err != nil {
			return nil, fmt.Errorf("handle %s: %w", loc, err)
		}
		r.Put(loc, handle.MIME, data)
	}
	for _, loc := range scenario.Revoked {
		r.Revoke(loc)
	}
	return r, nil
}

// discover walks each surface in order and merges the results.
func (h *Harness) discover(ctx context.Context, scenario *Scenario, result *Result) error {
	merger := aggregate.NewMerger()
	for i, spec := range scenario.Surfaces {
		surface, root, err := buildSurface(spec)
		if err != nil {
			return fmt.Errorf("surface %d: %w", i, err)
		}

		assets, stats, err := h.engine.DiscoverStats(ctx, surface, root)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			result.FailedSurfaces = append(result.FailedSurfaces, i)
			h.logger.Info("surface failed", "surface", i, "error", err)
			continue
		}
		merger.Add(assets)

		h.logger.Info("surface discovered",
			"surface", i,
			"url", spec.URL,
			"nodes", stats.Nodes,
			"assets", len(assets),
		)
	}
	result.Records = merger.Records()
	return nil
}

func buildSurface(spec SurfaceSpec) (locator.Surface, tree.Node, error) {
	if spec.Tree != nil {
		s, err := locator.NewSurface(spec.URL, spec.Base)
		return s, spec.Tree.Node(), err
	}

	doc, err := tree.ParseHTML(strings.NewReader(spec.HTML))
	if err != nil {
		return locator.Surface{}, nil, err
	}
	base := spec.Base
	if base == "" {
		base = doc.BaseHref()
	}
	s, err := locator.NewSurface(spec.URL, base)
	return s, doc.Root(), err
}

// catalog writes the inventory to the in-memory store and reads it back.
func (h *Harness) catalog(ctx context.Context, scenario *Scenario, result *Result) error {
	scan := store.Scan{
		ID:           h.scanID.Generate(),
		Target:       scenario.Surfaces[0].URL,
		SurfaceCount: len(scenario.Surfaces),
		ConfigHash:   scenario.Name,
	}
	if err := h.store.WriteScan(ctx, scan, result.Records); err != nil {
		return err
	}
	assets, err := h.store.ReadAssets(ctx, scan.ID)
	if err != nil {
		return err
	}
	result.Catalog = len(assets)
	return nil
}
