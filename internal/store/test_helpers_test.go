package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/imgsweep/internal/aggregate"
	"github.com/roach88/imgsweep/internal/discovery"
)

// createTestStore creates a new store in a temp dir for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func createTestRecord(index int, loc string, w, h int) aggregate.Record {
	return aggregate.Record{
		Asset: discovery.Asset{Locator: loc, Width: w, Height: h, Category: discovery.CategoryImage},
		Index: index,
	}
}
