// Package node defines the tree-node data model and the NodeStore interface
// that the ordinal-ordering engine operates on.
//
// A workspace is a tree of folders and files. Folders are addressed by
// slash-separated paths ("/" is the workspace root); individual nodes are
// addressed by UUID, which is the stable handle for ordinal updates (names
// and paths can change, the UUID cannot).
package node

import (
	"time"

	"github.com/google/uuid"
)

// ContentID is an opaque identifier for file content stored in a content
// store. Moving a node never changes its ContentID, which is what makes
// subtree moves byte-for-byte content preserving.
type ContentID string

// NodeKind is the closed set of node variants.
//
// The original design carried untyped payloads; here the variant is explicit
// so callers can switch exhaustively. Folders never carry content; text nodes
// are join/split capable; binary nodes (images, attachments) are opaque.
type NodeKind int

const (
	// KindFolder is a directory node. It may contain children.
	KindFolder NodeKind = iota

	// KindText is a text document (markdown or plain text).
	KindText

	// KindBinary is an opaque attachment (image, archive, ...).
	KindBinary
)

func (k NodeKind) String() string {
	switch k {
	case KindFolder:
		return "folder"
	case KindText:
		return "text"
	case KindBinary:
		return "binary"
	default:
		return "unknown"
	}
}

// TreeNode represents one filesystem entry.
//
// Ordinal establishes sibling order within the containing folder. The
// invariant maintained by the engine is that no two children of one folder
// ever share an ordinal. Ordinals need not be contiguous: deleting a node
// leaves a gap, and gaps are fine as long as the total order is consistent
// with the intended display order.
type TreeNode struct {
	// ID is the unique, immutable identifier assigned at creation.
	ID uuid.UUID `json:"id"`

	// Name is the display name, unique among siblings. It may carry a
	// numeric ordinal prefix ("0003_notes.md") for name-sorted external
	// stores; that encoding is logically distinct from the Ordinal field.
	Name string `json:"name"`

	// Ordinal is the signed integer establishing sibling order.
	Ordinal int64 `json:"ordinal"`

	// Kind is the node variant (folder, text, binary).
	Kind NodeKind `json:"kind"`

	// OwnerID identifies the owning principal. The ordering engine does not
	// interpret it but must preserve it across moves.
	OwnerID uint32 `json:"owner_id"`

	// ContentID references the node's bytes in the content store.
	// Empty for folders.
	ContentID ContentID `json:"content_id,omitempty"`

	// Created and Modified are maintained by the store.
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`
}

// IsFolder reports whether the node is a directory.
func (n *TreeNode) IsFolder() bool {
	return n.Kind == KindFolder
}

// Clone returns a deep copy. Stores return clones so callers can't mutate
// store-internal state.
func (n *TreeNode) Clone() *TreeNode {
	c := *n
	return &c
}
