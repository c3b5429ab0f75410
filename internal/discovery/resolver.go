package discovery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
)

// ErrHandleRevoked is returned for ephemeral handles that no longer resolve.
var ErrHandleRevoked = errors.New("ephemeral handle revoked")

// HandleResolver fetches the bytes behind an ephemeral-handle locator. It is
// the engine's only side-effecting capability.
type HandleResolver interface {
	// Resolve returns the handle's bytes and MIME type. An empty MIME type
	// is sniffed from the bytes.
	Resolve(ctx context.Context, handle string) ([]byte, string, error)
}

// NoHandles resolves nothing. Static documents carry no live handles, so
// every blob: reference in them is already dead.
type NoHandles struct{}

func (NoHandles) Resolve(_ context.Context, handle string) ([]byte, string, error) {
	return nil, "", fmt.Errorf("%s: %w", handle, ErrHandleRevoked)
}

// MapResolver serves handles from memory.
//
// Thread-safety: MapResolver is safe for concurrent use.
type MapResolver struct {
	mu      sync.RWMutex
	handles map[string]handleData
}

type handleData struct {
	data []byte
	mime string
}

// NewMapResolver creates an empty resolver.
func NewMapResolver() *MapResolver {
	return &MapResolver{handles: make(map[string]handleData)}
}

// Put registers a handle.
func (r *MapResolver) Put(handle, mime string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handles[handle] = handleData{data: data, mime: mime}
}

// Revoke forgets a handle; later resolutions fail with ErrHandleRevoked.
func (r *MapResolver) Revoke(handle string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handles, handle)
}

func (r *MapResolver) Resolve(ctx context.Context, handle string) ([]byte, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handles[handle]
	if !ok {
		return nil, "", fmt.Errorf("%s: %w", handle, ErrHandleRevoked)
	}
	return h.data, h.mime, nil
}

// sniffMIME classifies bytes the way a browser would for an untyped blob.
func sniffMIME(data []byte) string {
	return http.DetectContentType(data)
}
