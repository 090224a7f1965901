// Package memory implements ContentStore using in-memory storage.
package memory

import (
	"context"
	"sync"

	"github.com/Clay-Ferguson/quanta-sub001/pkg/store/node"
)

// MemoryContentStore implements content.ContentStore with a plain map.
// Suitable for tests and ephemeral workspaces.
type MemoryContentStore struct {
	mu    sync.RWMutex
	blobs map[node.ContentID][]byte
}

// NewMemoryContentStore creates an empty in-memory content store.
func NewMemoryContentStore() *MemoryContentStore {
	return &MemoryContentStore{
		blobs: make(map[node.ContentID][]byte),
	}
}

// Write stores data under id, replacing any previous content.
func (s *MemoryContentStore) Write(ctx context.Context, id node.ContentID, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Copy so callers can't mutate stored content afterwards.
	buf := make([]byte, len(data))
	copy(buf, data)
	s.blobs[id] = buf
	return nil
}

// Read returns the full content for id.
func (s *MemoryContentStore) Read(ctx context.Context, id node.ContentID) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	blob, ok := s.blobs[id]
	if !ok {
		return nil, &node.StoreError{Code: node.ErrNotFound, Message: "content not found", Path: string(id)}
	}
	buf := make([]byte, len(blob))
	copy(buf, blob)
	return buf, nil
}

// Delete removes the content for id.
func (s *MemoryContentStore) Delete(ctx context.Context, id node.ContentID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.blobs[id]; !ok {
		return &node.StoreError{Code: node.ErrNotFound, Message: "content not found", Path: string(id)}
	}
	delete(s.blobs, id)
	return nil
}

// Healthcheck always succeeds for the in-memory backend.
func (s *MemoryContentStore) Healthcheck(ctx context.Context) error {
	return ctx.Err()
}

// Close is a no-op for the in-memory backend.
func (s *MemoryContentStore) Close() error {
	return nil
}
