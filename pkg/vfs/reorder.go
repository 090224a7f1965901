package vfs

import (
	"context"
	"math"

	"github.com/google/uuid"

	"github.com/Clay-Ferguson/quanta-sub001/internal/logger"
	"github.com/Clay-Ferguson/quanta-sub001/pkg/store/node"
)

// Reorder rearranges the children of folder into the given order.
//
// order must name every current child exactly once, by UUID. Final ordinals
// are always 0..n-1 in the given order, so a reorder doubles as a gap
// compaction.
//
// The new ordinal set usually overlaps the old one (reversing a list reuses
// every value), so assignment happens in two phases: every child first
// receives a unique quarantine ordinal counting up from the minimum
// representable integer, a range no real ordinal ever occupies, and only
// then its final position. No intermediate state holds a duplicate.
//
// A single-child folder degenerates to re-assigning that child ordinal 0,
// and an identity reorder is idempotent.
func (e *Engine) Reorder(ctx context.Context, folder string, order []uuid.UUID) error {
	unlock := e.locks.lock(folder)
	defer unlock()

	children, err := e.nodes.ReadChildren(ctx, folder)
	if err != nil {
		return err
	}

	if len(order) != len(children) {
		return &node.StoreError{
			Code:    node.ErrInvalidArgument,
			Message: "reorder must name every child exactly once",
			Path:    folder,
		}
	}
	current := make(map[uuid.UUID]bool, len(children))
	for _, child := range children {
		current[child.ID] = true
	}
	seen := make(map[uuid.UUID]bool, len(order))
	for _, id := range order {
		if !current[id] {
			return &node.StoreError{
				Code:    node.ErrInvalidArgument,
				Message: "reorder references a node outside the folder",
				Path:    id.String(),
			}
		}
		if seen[id] {
			return &node.StoreError{
				Code:    node.ErrInvalidArgument,
				Message: "reorder names a node twice",
				Path:    id.String(),
			}
		}
		seen[id] = true
	}

	// Phase 1: quarantine. Distinct temporaries disjoint from any real
	// ordinal, assignment order irrelevant.
	quarantine := int64(math.MinInt64)
	for _, id := range order {
		if err := e.nodes.SetOrdinal(ctx, id, quarantine); err != nil {
			return err
		}
		quarantine++
	}

	// Phase 2: commit final positions in the desired order.
	for i, id := range order {
		if err := e.nodes.SetOrdinal(ctx, id, int64(i)); err != nil {
			return err
		}
	}

	logger.Debug("reordered %d children in %s", len(order), folder)
	return nil
}

// ReorderByName is Reorder with the desired order given as child names.
func (e *Engine) ReorderByName(ctx context.Context, folder string, names []string) error {
	order := make([]uuid.UUID, 0, len(names))
	for _, name := range names {
		n, err := e.nodes.Lookup(ctx, folder, name)
		if err != nil {
			return err
		}
		order = append(order, n.ID)
	}
	return e.Reorder(ctx, folder, order)
}
