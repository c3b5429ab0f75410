// Package aggregate merges per-surface discovery results into one inventory
// and assigns each asset its discovery index.
package aggregate

import "github.com/roach88/imgsweep/internal/discovery"

// Record is an asset with its global discovery index. Index is assigned
// once, here, and never changes.
type Record struct {
	discovery.Asset
	Index int `json:"index"`
}

// Merger accumulates surfaces in the order they are added.
type Merger struct {
	seen    map[string]struct{}
	records []Record
}

// NewMerger creates an empty Merger.
func NewMerger() *Merger {
	return &Merger{seen: make(map[string]struct{})}
}

// Add appends one surface's assets. Locators already seen on an earlier
// surface (or earlier in this one) are dropped.
func (m *Merger) Add(assets []discovery.Asset) {
	for _, a := range assets {
		if _, ok := m.seen[a.Locator]; ok {
			continue
		}
		m.seen[a.Locator] = struct{}{}
		m.records = append(m.records, Record{Asset: a, Index: len(m.records)})
	}
}

// Records returns the merged inventory in index order.
func (m *Merger) Records() []Record {
	out := make([]Record, len(m.records))
	copy(out, m.records)
	return out
}

// Len returns the number of distinct locators merged so far.
func (m *Merger) Len() int {
	return len(m.records)
}

// Merge merges surfaces in the given order: surface order first, then each
// surface's own order.
func Merge(surfaces ...[]discovery.Asset) []Record {
	m := NewMerger()
	for _, s := range surfaces {
		m.Add(s)
	}
	return m.Records()
}
