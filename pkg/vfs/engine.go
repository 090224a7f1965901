// Package vfs implements the ordinal-ordering engine for the workspace tree.
//
// Sibling order within a folder is carried by each node's signed integer
// ordinal. The engine owns every mutation of that field and maintains one
// invariant throughout: no two children of the same folder ever share an
// ordinal. Gaps are fine (deletes leave them), duplicates are not.
//
// The engine is a library: it talks to an abstract NodeStore for tree
// persistence and a ContentStore for document bodies, and serializes
// mutations per folder with an internal lock table so overlapping operations
// from different goroutines cannot interleave their shift-then-assign
// sequences.
package vfs

import (
	"context"

	"github.com/google/uuid"

	"github.com/Clay-Ferguson/quanta-sub001/internal/logger"
	"github.com/Clay-Ferguson/quanta-sub001/pkg/store/content"
	"github.com/Clay-Ferguson/quanta-sub001/pkg/store/node"
)

// Engine coordinates ordinal assignment over a node store and content store.
type Engine struct {
	nodes   node.NodeStore
	content content.ContentStore
	locks   *folderLocks
}

// New creates an engine over the given stores.
func New(nodes node.NodeStore, contentStore content.ContentStore) *Engine {
	return &Engine{
		nodes:   nodes,
		content: contentStore,
		locks:   newFolderLocks(),
	}
}

// Children returns the direct children of folder in display order.
func (e *Engine) Children(ctx context.Context, folder string) ([]*node.TreeNode, error) {
	return e.nodes.ReadChildren(ctx, folder)
}

// Node retrieves a node by UUID.
func (e *Engine) Node(ctx context.Context, id uuid.UUID) (*node.TreeNode, error) {
	return e.nodes.GetNode(ctx, id)
}

// ReadContent returns the document body of a node, or nil for nodes without
// content.
func (e *Engine) ReadContent(ctx context.Context, id uuid.UUID) ([]byte, error) {
	n, err := e.nodes.GetNode(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.ContentID == "" {
		return nil, nil
	}
	return e.content.Read(ctx, n.ContentID)
}

// WriteContent replaces the document body of a node, allocating a ContentID
// on first write.
func (e *Engine) WriteContent(ctx context.Context, id uuid.UUID, data []byte) error {
	n, err := e.nodes.GetNode(ctx, id)
	if err != nil {
		return err
	}
	if n.IsFolder() {
		return &node.StoreError{Code: node.ErrIsFolder, Message: "folders carry no content", Path: n.Name}
	}
	cid := n.ContentID
	if cid == "" {
		// First write: store the blob before publishing the reference so a
		// failure never leaves a node pointing at missing content.
		cid = content.NewID()
		if err := e.content.Write(ctx, cid, data); err != nil {
			return err
		}
		return e.nodes.SetContentID(ctx, id, cid)
	}
	return e.content.Write(ctx, cid, data)
}

// Insert creates a new node in folder at the position named by anchor.
//
// For text and binary nodes, body is stored in the content store and the
// node's ContentID set before creation. Folders ignore body.
//
// The anchored slot is vacated with a range shift first, so existing sibling
// ordinals at or above the insertion point move up by one.
func (e *Engine) Insert(ctx context.Context, folder, name string, kind node.NodeKind, body []byte, anchor Anchor) (*node.TreeNode, error) {
	return e.insert(ctx, folder, name, kind, body, anchor, false)
}

// InsertPrefixed is Insert with the resolved ordinal additionally encoded
// into the stored name as a zero-padded prefix ("0003_name.md"). Workspaces
// mirrored into name-sorted external stores use this form; the Ordinal field
// stays authoritative either way.
func (e *Engine) InsertPrefixed(ctx context.Context, folder, name string, kind node.NodeKind, body []byte, anchor Anchor) (*node.TreeNode, error) {
	return e.insert(ctx, folder, name, kind, body, anchor, true)
}

func (e *Engine) insert(ctx context.Context, folder, name string, kind node.NodeKind, body []byte, anchor Anchor, prefixName bool) (*node.TreeNode, error) {
	unlock := e.locks.lock(folder)
	defer unlock()

	insertOrdinal, err := e.resolveInsertOrdinal(ctx, folder, anchor)
	if err != nil {
		return nil, err
	}
	if err := e.shiftOrdinalsDown(ctx, folder, insertOrdinal, 1); err != nil {
		return nil, err
	}

	if prefixName {
		name = node.FormatOrdinalPrefix(insertOrdinal, name)
	}

	n := &node.TreeNode{
		ID:      uuid.New(),
		Name:    name,
		Ordinal: insertOrdinal,
		Kind:    kind,
	}
	if kind != node.KindFolder && body != nil {
		cid := content.NewID()
		if err := e.content.Write(ctx, cid, body); err != nil {
			return nil, err
		}
		n.ContentID = cid
	}

	if err := e.nodes.CreateNode(ctx, folder, n); err != nil {
		if n.ContentID != "" {
			if cerr := e.content.Delete(ctx, n.ContentID); cerr != nil {
				logger.Warn("orphaned content %s after failed insert: %v", n.ContentID, cerr)
			}
		}
		return nil, err
	}

	logger.Debug("inserted %s in %s at ordinal %d", name, folder, insertOrdinal)
	return n, nil
}

// Rename changes a node's display name in place. Ordinal and folder are
// untouched; for folders, descendant paths follow implicitly.
func (e *Engine) Rename(ctx context.Context, id uuid.UUID, newName string) error {
	folder, err := e.nodes.FolderOf(ctx, id)
	if err != nil {
		return err
	}
	unlock := e.locks.lock(folder)
	defer unlock()

	return e.nodes.RenameNode(ctx, id, newName)
}

// Delete removes a node and, for folders, its whole subtree, then deletes
// the content blobs the removed nodes referenced. Remaining siblings keep
// their ordinals; the gap is tolerated.
func (e *Engine) Delete(ctx context.Context, id uuid.UUID) error {
	folder, err := e.nodes.FolderOf(ctx, id)
	if err != nil {
		return err
	}
	unlock := e.locks.lock(folder)
	defer unlock()

	n, err := e.nodes.GetNode(ctx, id)
	if err != nil {
		return err
	}

	contentIDs := []node.ContentID{}
	if n.ContentID != "" {
		contentIDs = append(contentIDs, n.ContentID)
	}
	if n.IsFolder() {
		ids, err := e.collectContentIDs(ctx, node.JoinPath(folder, n.Name))
		if err != nil {
			return err
		}
		contentIDs = append(contentIDs, ids...)
	}

	if err := e.nodes.DeleteNode(ctx, id); err != nil {
		return err
	}

	// Tree removal is the authoritative part; blob cleanup failures leave
	// orphans, not corruption.
	for _, cid := range contentIDs {
		if err := e.content.Delete(ctx, cid); err != nil && !node.IsCode(err, node.ErrNotFound) {
			logger.Warn("failed to delete content %s: %v", cid, err)
		}
	}
	return nil
}

// collectContentIDs walks the subtree rooted at folder and gathers every
// referenced ContentID.
func (e *Engine) collectContentIDs(ctx context.Context, folder string) ([]node.ContentID, error) {
	children, err := e.nodes.ReadChildren(ctx, folder)
	if err != nil {
		return nil, err
	}

	var ids []node.ContentID
	for _, child := range children {
		if child.ContentID != "" {
			ids = append(ids, child.ContentID)
		}
		if child.IsFolder() {
			nested, err := e.collectContentIDs(ctx, node.JoinPath(folder, child.Name))
			if err != nil {
				return nil, err
			}
			ids = append(ids, nested...)
		}
	}
	return ids, nil
}
