package vfs

import (
	"context"

	"github.com/google/uuid"

	"github.com/Clay-Ferguson/quanta-sub001/internal/logger"
	"github.com/Clay-Ferguson/quanta-sub001/pkg/store/node"
)

// PasteItem describes the outcome for one item of a multi-item move.
type PasteItem struct {
	ID      uuid.UUID
	Name    string
	Ordinal int64
	Err     error
}

// PasteReport is the per-item outcome of MoveNodes.
//
// The move protocol is deliberately not transactional: a failure on one item
// does not undo items already relocated. The report tells the caller exactly
// which items landed and which did not, so only the failed subset needs a
// retry.
type PasteReport struct {
	Succeeded []PasteItem
	Failed    []PasteItem
}

// Ok reports whether every item moved.
func (r *PasteReport) Ok() bool {
	return len(r.Failed) == 0
}

// MoveNodes relocates the given nodes, in the given relative order, into
// targetFolder at the position named by anchor.
//
// Protocol: the target's ordinal space is shifted once to open a gap sized
// to the number of movable items, then each item is relocated and assigned
// the ordinal for its slot in the gap. Slot assignment is by item index, so
// an item that fails leaves its slot empty instead of compacting the rest;
// a retry of the failed subset can fill those slots without re-shifting.
//
// Folders move with their whole subtree: descendant paths, ordinals and
// content are untouched. Ordinals left behind in the source folders are not
// renumbered.
//
// Items that fail validation (unknown UUID, already in the target folder, a
// folder move that would create a cycle, target name collision) are reported
// without aborting the rest. The returned error is non-nil only for faults
// that prevent the operation as a whole, such as an unreachable target
// folder.
func (e *Engine) MoveNodes(ctx context.Context, ids []uuid.UUID, targetFolder string, anchor Anchor) (*PasteReport, error) {
	if len(ids) == 0 {
		return nil, &node.StoreError{Code: node.ErrInvalidArgument, Message: "no items to move"}
	}

	report := &PasteReport{}

	// Validate items before any mutation. Invalid items are excluded from
	// the gap so the shift matches what actually moves.
	type moveItem struct {
		id     uuid.UUID
		name   string
		source string
	}
	items := make([]moveItem, 0, len(ids))
	folders := []string{targetFolder}
	for _, id := range ids {
		n, err := e.nodes.GetNode(ctx, id)
		if err != nil {
			report.Failed = append(report.Failed, PasteItem{ID: id, Err: err})
			continue
		}
		source, err := e.nodes.FolderOf(ctx, id)
		if err != nil {
			report.Failed = append(report.Failed, PasteItem{ID: id, Name: n.Name, Err: err})
			continue
		}
		if source == targetFolder {
			report.Failed = append(report.Failed, PasteItem{ID: id, Name: n.Name, Err: &node.StoreError{
				Code:    node.ErrInvalidArgument,
				Message: "item is already in the target folder",
				Path:    node.JoinPath(source, n.Name),
			}})
			continue
		}
		items = append(items, moveItem{id: id, name: n.Name, source: source})
		folders = append(folders, source)
	}
	if len(items) == 0 {
		return report, nil
	}

	unlock := e.locks.lockAll(folders)
	defer unlock()

	insertOrdinal, err := e.resolveInsertOrdinal(ctx, targetFolder, anchor)
	if err != nil {
		return nil, err
	}
	if err := e.shiftOrdinalsDown(ctx, targetFolder, insertOrdinal, int64(len(items))); err != nil {
		return nil, err
	}

	for i, item := range items {
		slot := insertOrdinal + int64(i)

		if err := e.nodes.MoveNode(ctx, item.id, targetFolder); err != nil {
			logger.Warn("move of %s from %s to %s failed: %v", item.name, item.source, targetFolder, err)
			report.Failed = append(report.Failed, PasteItem{ID: item.id, Name: item.name, Err: err})
			continue
		}
		if err := e.nodes.SetOrdinal(ctx, item.id, slot); err != nil {
			// Relocated but not renumbered; surfaced as a failure so the
			// caller knows the target ordering is incomplete.
			report.Failed = append(report.Failed, PasteItem{ID: item.id, Name: item.name, Err: err})
			continue
		}
		report.Succeeded = append(report.Succeeded, PasteItem{ID: item.id, Name: item.name, Ordinal: slot})
	}

	logger.Info("moved %d/%d items into %s at ordinal %d",
		len(report.Succeeded), len(ids), targetFolder, insertOrdinal)
	return report, nil
}

// MoveNode relocates a single node into targetFolder at the anchored
// position.
func (e *Engine) MoveNode(ctx context.Context, id uuid.UUID, targetFolder string, anchor Anchor) error {
	report, err := e.MoveNodes(ctx, []uuid.UUID{id}, targetFolder, anchor)
	if err != nil {
		return err
	}
	if len(report.Failed) > 0 {
		return report.Failed[0].Err
	}
	return nil
}
