// Package content defines the content storage contract.
//
// Content is addressed by opaque ContentID and stored separately from the
// tree: moving or reordering nodes never rewrites content, which is what
// makes subtree moves byte-preserving regardless of backend.
package content

import (
	"context"

	"github.com/google/uuid"

	"github.com/Clay-Ferguson/quanta-sub001/pkg/store/node"
)

// ContentStore provides storage for node content blobs.
//
// Error Handling:
// Read and Delete return *node.StoreError with ErrNotFound for unknown IDs.
// Infrastructure failures surface as wrapped backend errors.
//
// Thread Safety:
// Implementations must be safe for concurrent use. Concurrent writes to the
// same ContentID are last-write-wins.
type ContentStore interface {
	// Write stores data under id, replacing any previous content.
	Write(ctx context.Context, id node.ContentID, data []byte) error

	// Read returns the full content for id.
	Read(ctx context.Context, id node.ContentID) ([]byte, error)

	// Delete removes the content for id. Deleting an unknown id returns
	// ErrNotFound.
	Delete(ctx context.Context, id node.ContentID) error

	// Healthcheck reports whether the backend is reachable and usable.
	Healthcheck(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// NewID generates a fresh random ContentID.
func NewID() node.ContentID {
	return node.ContentID(uuid.NewString())
}
