package testutil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/roach88/imgsweep/internal/surface"
)

// StaticLoader serves HTML documents from memory, keyed by address.
// Addresses it does not know fail to load.
type StaticLoader struct {
	mu    sync.Mutex
	pages map[string]string
	loads []string
}

func NewStaticLoader(pages map[string]string) *StaticLoader {
	return &StaticLoader{pages: pages}
}

func (l *StaticLoader) Load(ctx context.Context, address string) (*surface.Page, error) {
	l.mu.Lock()
	l.loads = append(l.loads, address)
	html, ok := l.pages[address]
	l.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("load %s: not found", address)
	}
	return surface.ParseDocument(address, []byte(html))
}

// Loads returns every address requested so far, in order.
func (l *StaticLoader) Loads() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.loads...)
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
