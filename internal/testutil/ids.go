package testutil

import "sync"

// FixedIDGenerator generates the same scan ID every time.
//
// This enables deterministic test execution and golden snapshot comparison.
//
// Thread-safety: FixedIDGenerator is stateless and safe for concurrent use.
type FixedIDGenerator struct {
	id string
}

// NewFixedIDGenerator creates a fixed scan ID generator.
//
// If id is empty, Generate() returns "test-scan-default".
func NewFixedIDGenerator(id string) *FixedIDGenerator {
	if id == "" {
		id = "test-scan-default"
	}
	return &FixedIDGenerator{id: id}
}

// Generate returns the fixed scan ID.
func (g *FixedIDGenerator) Generate() string {
	return g.id
}

// SequenceIDGenerator returns predetermined IDs in order and panics once
// they run out.
type SequenceIDGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

func NewSequenceIDGenerator(ids ...string) *SequenceIDGenerator {
	return &SequenceIDGenerator{ids: ids}
}

func (g *SequenceIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("SequenceIDGenerator: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
