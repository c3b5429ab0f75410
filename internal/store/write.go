package store

import (
	"context"
	"fmt"

	"github.com/roach88/imgsweep/internal/aggregate"
	"github.com/roach88/imgsweep/internal/canon"
)

// Scan is a catalogued scan.
type Scan struct {
	ID           string `json:"id"`
	Seq          int64  `json:"seq"`
	Target       string `json:"target"`
	SurfaceCount int    `json:"surface_count"`
	AssetCount   int    `json:"asset_count"`
	ConfigHash   string `json:"config_hash"`
}

// WriteScan records a scan and its inventory in one transaction.
// Uses ON CONFLICT DO NOTHING for idempotency: writing the same scan twice
// leaves the first copy in place. AssetCount and Seq are assigned here.
func (s *Store) WriteScan(ctx context.Context, scan Scan, records []aggregate.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write scan: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO scans (id, seq, target, surface_count, asset_count, config_hash)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM scans), ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		scan.ID,
		scan.Target,
		scan.SurfaceCount,
		len(records),
		scan.ConfigHash,
	)
	if err != nil {
		return fmt.Errorf("write scan: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return tx.Commit()
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO assets (scan_id, discovery_index, locator, width, height, category, asset_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(scan_id, locator) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("write assets: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		id, err := canon.AssetID(r.Locator)
		if err != nil {
			return fmt.Errorf("write asset %d: %w", r.Index, err)
		}
		if _, err := stmt.ExecContext(ctx,
			scan.ID,
			r.Index,
			r.Locator,
			r.Width,
			r.Height,
			string(r.Category),
			id,
		); err != nil {
			return fmt.Errorf("write asset %d: %w", r.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write scan: %w", err)
	}
	return nil
}
