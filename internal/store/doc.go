// Package store provides a SQLite-backed catalog of exported inventories.
//
// The catalog is write-once per scan:
//   - Scans: one row per scan, keyed by scan ID
//   - Assets: one row per inventory record, UNIQUE(scan_id, locator)
//
// # Ordering
//
// Scans are ordered by seq, a logical counter assigned on insert, then id.
// Assets are ordered by discovery_index, then locator.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// asset_id is computed by canon.AssetID: SHA-256 over the canonical JSON of
// the locator with domain separation.
package store
