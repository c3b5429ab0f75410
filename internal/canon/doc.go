// Package canon provides canonical JSON serialization and content-addressed
// identifiers for inventory snapshots.
//
// Canonical JSON is used wherever bytes are compared or hashed: golden
// snapshots in the scenario harness and asset identifiers in the catalog
// store. The encoding follows RFC 8785 for the value kinds we emit:
//   - object keys sorted by UTF-16 code units
//   - no insignificant whitespace
//   - strings NFC normalized, no HTML escaping
//   - floats and null rejected
package canon
