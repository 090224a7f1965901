package vfs

import (
	"context"

	"github.com/google/uuid"

	"github.com/Clay-Ferguson/quanta-sub001/internal/logger"
	"github.com/Clay-Ferguson/quanta-sub001/pkg/store/node"
)

// Anchor designates an insertion position among a folder's children.
//
// The zero value anchors at the end of the folder (append), which is the
// common case for plain node creation.
type Anchor struct {
	mode  anchorMode
	after uuid.UUID
}

type anchorMode int

const (
	anchorEnd anchorMode = iota
	anchorStart
	anchorAfter
)

// AnchorEnd positions new items after every existing child.
func AnchorEnd() Anchor { return Anchor{mode: anchorEnd} }

// AnchorStart positions new items before every existing child.
func AnchorStart() Anchor { return Anchor{mode: anchorStart} }

// AnchorAfter positions new items immediately after the named sibling.
func AnchorAfter(id uuid.UUID) Anchor { return Anchor{mode: anchorAfter, after: id} }

// resolveInsertOrdinal turns an anchor into the concrete ordinal the first
// inserted item will take.
//
// After a sibling X: X.Ordinal + 1. Append: max existing ordinal + 1, or 0
// in an empty folder. Prepend: 0, with the caller expected to shift existing
// children up to vacate the slot.
//
// Callers must hold the folder lock.
func (e *Engine) resolveInsertOrdinal(ctx context.Context, folder string, anchor Anchor) (int64, error) {
	switch anchor.mode {
	case anchorAfter:
		ref, err := e.nodes.GetNode(ctx, anchor.after)
		if err != nil {
			return 0, err
		}
		refFolder, err := e.nodes.FolderOf(ctx, anchor.after)
		if err != nil {
			return 0, err
		}
		if refFolder != folder {
			return 0, &node.StoreError{
				Code:    node.ErrInvalidArgument,
				Message: "anchor node is not in the target folder",
				Path:    node.JoinPath(refFolder, ref.Name),
			}
		}
		return ref.Ordinal + 1, nil

	case anchorStart:
		return 0, nil

	default: // anchorEnd
		children, err := e.nodes.ReadChildren(ctx, folder)
		if err != nil {
			return 0, err
		}
		if len(children) == 0 {
			return 0, nil
		}
		// ReadChildren sorts ascending, so the max is last.
		return children[len(children)-1].Ordinal + 1, nil
	}
}

// ShiftOrdinalsDown opens a gap of size amount in folder's ordinal space:
// every child whose ordinal is at or above threshold has it incremented by
// amount. Children below the threshold are untouched; an empty folder is a
// no-op.
//
// After the call, [threshold, threshold+amount) holds no pre-existing
// sibling ordinal and the relative order of shifted siblings is unchanged.
func (e *Engine) ShiftOrdinalsDown(ctx context.Context, folder string, threshold, amount int64) error {
	if amount <= 0 {
		return &node.StoreError{Code: node.ErrInvalidArgument, Message: "shift amount must be positive"}
	}

	unlock := e.locks.lock(folder)
	defer unlock()

	return e.shiftOrdinalsDown(ctx, folder, threshold, amount)
}

// shiftOrdinalsDown is ShiftOrdinalsDown without locking, for callers that
// already hold the folder lock.
//
// Updates are applied from the highest ordinal downward: each node moves
// into space above every ordinal not yet shifted, so no intermediate write
// ever collides with a sibling.
func (e *Engine) shiftOrdinalsDown(ctx context.Context, folder string, threshold, amount int64) error {
	children, err := e.nodes.ReadChildren(ctx, folder)
	if err != nil {
		return err
	}

	shifted := 0
	for i := len(children) - 1; i >= 0; i-- {
		child := children[i]
		if child.Ordinal < threshold {
			break
		}
		if err := e.nodes.SetOrdinal(ctx, child.ID, child.Ordinal+amount); err != nil {
			return err
		}
		shifted++
	}

	if shifted > 0 {
		logger.Debug("shifted %d ordinals in %s from %d by %d", shifted, folder, threshold, amount)
	}
	return nil
}
