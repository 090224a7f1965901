package vfs

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/Clay-Ferguson/quanta-sub001/internal/logger"
	"github.com/Clay-Ferguson/quanta-sub001/pkg/store/content"
	"github.com/Clay-Ferguson/quanta-sub001/pkg/store/node"
)

// Join concatenates the content of the selected text nodes, in ordinal
// order, into the lowest-ordinal node among them and deletes the rest.
//
// All selected nodes must be text nodes in the same folder, and at least two
// must be selected; both are validated before any mutation. The survivor
// keeps its ordinal, the deleted nodes' ordinals become gaps.
func (e *Engine) Join(ctx context.Context, folder string, ids []uuid.UUID) (*node.TreeNode, error) {
	if len(ids) < 2 {
		return nil, &node.StoreError{Code: node.ErrInvalidArgument, Message: "join requires at least two nodes"}
	}

	unlock := e.locks.lock(folder)
	defer unlock()

	selected := make([]*node.TreeNode, 0, len(ids))
	for _, id := range ids {
		n, err := e.nodes.GetNode(ctx, id)
		if err != nil {
			return nil, err
		}
		inFolder, err := e.nodes.FolderOf(ctx, id)
		if err != nil {
			return nil, err
		}
		if inFolder != folder {
			return nil, &node.StoreError{
				Code:    node.ErrInvalidArgument,
				Message: "join selection spans folders",
				Path:    node.JoinPath(inFolder, n.Name),
			}
		}
		if n.Kind != node.KindText {
			return nil, &node.StoreError{
				Code:    node.ErrInvalidArgument,
				Message: "join requires text nodes",
				Path:    node.JoinPath(folder, n.Name),
			}
		}
		selected = append(selected, n)
	}

	sort.Slice(selected, func(i, j int) bool { return selected[i].Ordinal < selected[j].Ordinal })
	survivor := selected[0]

	var joined []byte
	for _, n := range selected {
		if n.ContentID == "" {
			continue
		}
		body, err := e.content.Read(ctx, n.ContentID)
		if err != nil {
			return nil, err
		}
		if len(joined) > 0 && len(body) > 0 && joined[len(joined)-1] != '\n' {
			joined = append(joined, '\n')
		}
		joined = append(joined, body...)
	}

	cid := survivor.ContentID
	if cid == "" {
		cid = content.NewID()
	}
	if err := e.content.Write(ctx, cid, joined); err != nil {
		return nil, err
	}
	if survivor.ContentID == "" {
		if err := e.nodes.SetContentID(ctx, survivor.ID, cid); err != nil {
			return nil, err
		}
		survivor.ContentID = cid
	}

	for _, n := range selected[1:] {
		if err := e.nodes.DeleteNode(ctx, n.ID); err != nil {
			return nil, err
		}
		if n.ContentID != "" {
			if err := e.content.Delete(ctx, n.ContentID); err != nil && !node.IsCode(err, node.ErrNotFound) {
				logger.Warn("failed to delete content %s after join: %v", n.ContentID, err)
			}
		}
	}

	logger.Debug("joined %d nodes into %s in %s", len(selected), survivor.Name, folder)
	return e.nodes.GetNode(ctx, survivor.ID)
}

// Split divides a text node's content at a byte offset. The head stays in
// the source node; the tail becomes a new sibling named newName, inserted
// immediately after the source.
func (e *Engine) Split(ctx context.Context, id uuid.UUID, offset int64, newName string) (*node.TreeNode, error) {
	folder, err := e.nodes.FolderOf(ctx, id)
	if err != nil {
		return nil, err
	}

	unlock := e.locks.lock(folder)
	defer unlock()

	source, err := e.nodes.GetNode(ctx, id)
	if err != nil {
		return nil, err
	}
	if source.Kind != node.KindText {
		return nil, &node.StoreError{
			Code:    node.ErrInvalidArgument,
			Message: "split requires a text node",
			Path:    node.JoinPath(folder, source.Name),
		}
	}
	if source.ContentID == "" {
		return nil, &node.StoreError{
			Code:    node.ErrInvalidArgument,
			Message: "split requires a node with content",
			Path:    node.JoinPath(folder, source.Name),
		}
	}

	body, err := e.content.Read(ctx, source.ContentID)
	if err != nil {
		return nil, err
	}
	if offset <= 0 || offset >= int64(len(body)) {
		return nil, &node.StoreError{
			Code:    node.ErrInvalidArgument,
			Message: "split offset outside content",
			Path:    node.JoinPath(folder, source.Name),
		}
	}

	head := body[:offset]
	tail := body[offset:]

	insertOrdinal := source.Ordinal + 1
	if err := e.shiftOrdinalsDown(ctx, folder, insertOrdinal, 1); err != nil {
		return nil, err
	}

	tailID := content.NewID()
	if err := e.content.Write(ctx, tailID, tail); err != nil {
		return nil, err
	}

	sibling := &node.TreeNode{
		ID:        uuid.New(),
		Name:      newName,
		Ordinal:   insertOrdinal,
		Kind:      node.KindText,
		OwnerID:   source.OwnerID,
		ContentID: tailID,
	}
	if err := e.nodes.CreateNode(ctx, folder, sibling); err != nil {
		if cerr := e.content.Delete(ctx, tailID); cerr != nil {
			logger.Warn("orphaned content %s after failed split: %v", tailID, cerr)
		}
		return nil, err
	}

	// Truncate the source last: a failure above leaves it untouched.
	if err := e.content.Write(ctx, source.ContentID, head); err != nil {
		return nil, err
	}

	logger.Debug("split %s at offset %d into %s", source.Name, offset, newName)
	return sibling, nil
}

// ListEffective returns the display listing of folder: direct children in
// ordinal order, with pullup folders (trailing-underscore names) replaced
// inline by their own listing, recursively. The pullup container itself is
// not shown.
func (e *Engine) ListEffective(ctx context.Context, folder string) ([]*node.TreeNode, error) {
	children, err := e.nodes.ReadChildren(ctx, folder)
	if err != nil {
		return nil, err
	}

	out := make([]*node.TreeNode, 0, len(children))
	for _, child := range children {
		if child.IsFolder() && node.IsPullup(child.Name) {
			inline, err := e.ListEffective(ctx, node.JoinPath(folder, child.Name))
			if err != nil {
				return nil, err
			}
			out = append(out, inline...)
			continue
		}
		out = append(out, child)
	}
	return out, nil
}
