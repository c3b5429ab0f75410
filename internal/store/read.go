package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/imgsweep/internal/aggregate"
	"github.com/roach88/imgsweep/internal/discovery"
)

// Asset is a catalogued inventory record.
type Asset struct {
	aggregate.Record
	AssetID string `json:"asset_id"`
}

// ReadScan returns one scan, or ErrNotFound.
func (s *Store) ReadScan(ctx context.Context, id string) (Scan, error) {
	var scan Scan
	err := s.db.QueryRowContext(ctx, `
		SELECT id, seq, target, surface_count, asset_count, config_hash
		FROM scans
		WHERE id = ?
	`, id).Scan(&scan.ID, &scan.Seq, &scan.Target, &scan.SurfaceCount, &scan.AssetCount, &scan.ConfigHash)
	if errors.Is(err, sql.ErrNoRows) {
		return Scan{}, fmt.Errorf("scan %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Scan{}, fmt.Errorf("query scan: %w", err)
	}
	return scan, nil
}

// ListScans returns every scan in insertion order.
//
// Returns an empty slice (not nil) for an empty catalog.
func (s *Store) ListScans(ctx context.Context) ([]Scan, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seq, target, surface_count, asset_count, config_hash
		FROM scans
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query scans: %w", err)
	}
	defer rows.Close()

	scans := []Scan{}
	for rows.Next() {
		var scan Scan
		if err := rows.Scan(&scan.ID, &scan.Seq, &scan.Target, &scan.SurfaceCount, &scan.AssetCount, &scan.ConfigHash); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		scans = append(scans, scan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scans: %w", err)
	}
	return scans, nil
}

// ReadAssets returns a scan's inventory in discovery order.
//
// Returns an empty slice (not nil) if the scan has no assets.
func (s *Store) ReadAssets(ctx context.Context, scanID string) ([]Asset, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT discovery_index, locator, width, height, category, asset_id
		FROM assets
		WHERE scan_id = ?
		ORDER BY discovery_index ASC, locator COLLATE BINARY ASC
	`, scanID)
	if err != nil {
		return nil, fmt.Errorf("query assets: %w", err)
	}
	defer rows.Close()

	assets := []Asset{}
	for rows.Next() {
		var (
			a        Asset
			category string
		)
		if err := rows.Scan(&a.Index, &a.Locator, &a.Width, &a.Height, &category, &a.AssetID); err != nil {
			return nil, fmt.Errorf("scan asset row: %w", err)
		}
		a.Category = discovery.Category(category)
		assets = append(assets, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assets: %w", err)
	}
	return assets, nil
}

// FindAsset returns the scans that catalogued an asset ID, in scan order.
func (s *Store) FindAsset(ctx context.Context, assetID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.scan_id
		FROM assets a JOIN scans s ON s.id = a.scan_id
		WHERE a.asset_id = ?
		ORDER BY s.seq ASC, a.scan_id COLLATE BINARY ASC
	`, assetID)
	if err != nil {
		return nil, fmt.Errorf("query asset: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan asset row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate asset rows: %w", err)
	}
	return ids, nil
}
