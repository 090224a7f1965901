package node

import (
	"context"

	"github.com/google/uuid"
)

// NodeStore provides persistence for the workspace tree.
//
// The ordinal engine treats the store as an abstract collaborator: it only
// needs per-node CRUD plus ReadChildren and single-field ordinal updates.
// Implementations decide how paths, names and ordinals are indexed.
//
// Error Handling:
// All operations return *StoreError for business logic errors (not found,
// name collision, invalid argument). Infrastructure failures may surface as
// wrapped backend errors with Code ErrIOError.
//
// Thread Safety:
// Implementations must be safe for concurrent use by multiple goroutines.
// The engine additionally serializes operations per folder, so stores do not
// need cross-call transactional guarantees beyond single-operation atomicity.
type NodeStore interface {
	// CreateNode inserts n as a child of folder.
	//
	// The caller supplies the ordinal (typically resolved by the engine's
	// assigner). The node's ID must be set; Created/Modified are stamped by
	// the store.
	//
	// Returns ErrInvalidArgument for an empty name, ErrNotFound if folder
	// doesn't exist, ErrNotFolder if folder is a file, ErrAlreadyExists on
	// a sibling name collision.
	CreateNode(ctx context.Context, folder string, n *TreeNode) error

	// GetNode retrieves a node by UUID.
	//
	// Returns ErrNotFound if no node has this ID.
	GetNode(ctx context.Context, id uuid.UUID) (*TreeNode, error)

	// Lookup resolves a name within a folder.
	//
	// Returns ErrNotFound if either the folder or the name doesn't exist.
	Lookup(ctx context.Context, folder, name string) (*TreeNode, error)

	// ReadChildren returns all direct children of folder, sorted by ordinal
	// ascending. An empty folder yields an empty slice, not an error.
	//
	// Returns ErrNotFound if folder doesn't exist, ErrNotFolder if it is a
	// file.
	ReadChildren(ctx context.Context, folder string) ([]*TreeNode, error)

	// SetOrdinal updates a single node's ordinal, keyed by UUID.
	//
	// This is the store primitive behind the range shifter and the
	// two-phase reorder; it must update exactly the one field and stamp
	// Modified.
	SetOrdinal(ctx context.Context, id uuid.UUID, ordinal int64) error

	// SetContentID updates a single node's content reference, keyed by
	// UUID. Used when content is first attached to a node created without
	// a body, and when transforms rebind a node to new content.
	SetContentID(ctx context.Context, id uuid.UUID, contentID ContentID) error

	// RenameNode changes a node's display name in place. The ordinal and
	// the containing folder are unchanged. For folders, descendant paths
	// update implicitly.
	//
	// Returns ErrInvalidArgument for an empty name, ErrAlreadyExists if a
	// sibling already has newName.
	RenameNode(ctx context.Context, id uuid.UUID, newName string) error

	// MoveNode relocates a node into targetFolder, keeping its name.
	//
	// If the node is a folder the entire subtree moves with it: descendant
	// paths update implicitly because children are path-relative, and no
	// descendant's ContentID or ordinal changes. The moved node's own
	// ordinal is left as-is; the engine assigns the final ordinal
	// afterwards via SetOrdinal.
	//
	// Returns ErrNotFound if the node or target folder doesn't exist,
	// ErrNotFolder if targetFolder is a file, ErrAlreadyExists on a name
	// collision in the target, ErrInvalidArgument when the move would place
	// a folder inside its own subtree.
	MoveNode(ctx context.Context, id uuid.UUID, targetFolder string) error

	// DeleteNode removes a node; for folders the whole subtree is removed.
	// Remaining siblings are not renumbered (ordinal gaps are tolerated).
	DeleteNode(ctx context.Context, id uuid.UUID) error

	// FolderOf returns the path of the folder containing the node.
	FolderOf(ctx context.Context, id uuid.UUID) (string, error)

	// PathOf returns the node's full workspace path.
	PathOf(ctx context.Context, id uuid.UUID) (string, error)

	// Healthcheck reports whether the backend is reachable and usable.
	Healthcheck(ctx context.Context) error

	// Close releases backend resources. The store must not be used after.
	Close() error
}
