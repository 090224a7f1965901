package vfs

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Clay-Ferguson/quanta-sub001/pkg/store/node"
)

func TestMoveNodesOpensGapAtAnchor(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	mkFolder(t, e, "/", "source")
	mkFolder(t, e, "/", "target")

	itemA := mkText(t, e, "/source", "item-a", "")
	itemB := mkText(t, e, "/source", "item-b", "")
	itemC := mkText(t, e, "/source", "item-c", "")

	var target1 *node.TreeNode
	for i, name := range []string{"target-0", "target-1", "target-2", "target-3"} {
		n := mkText(t, e, "/target", name, "")
		if i == 1 {
			target1 = n
		}
	}

	report, err := e.MoveNodes(ctx, []uuid.UUID{itemA.ID, itemB.ID, itemC.ID}, "/target", AnchorAfter(target1.ID))
	require.NoError(t, err)
	require.True(t, report.Ok(), "failures: %+v", report.Failed)
	require.Len(t, report.Succeeded, 3)

	names, ordinals := listing(t, e, "/target")
	assert.Equal(t, []string{"target-0", "target-1", "item-a", "item-b", "item-c", "target-2", "target-3"}, names)
	assert.Equal(t, int64(0), ordinals["target-0"])
	assert.Equal(t, int64(1), ordinals["target-1"])
	assert.Equal(t, int64(2), ordinals["item-a"])
	assert.Equal(t, int64(3), ordinals["item-b"])
	assert.Equal(t, int64(4), ordinals["item-c"])
	assert.Equal(t, int64(5), ordinals["target-2"])
	assert.Equal(t, int64(6), ordinals["target-3"])
	requireNoDuplicates(t, e, "/target")

	sourceNames, _ := listing(t, e, "/source")
	assert.Empty(t, sourceNames)
}

func TestMoveFolderPreservesSubtree(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	mkFolder(t, e, "/", "source")
	mkFolder(t, e, "/", "destination")

	parent := mkFolder(t, e, "/source", "parent")
	mkFolder(t, e, "/source/parent", "child")
	nested := mkText(t, e, "/source/parent/child", "nested.txt", "Nested content")

	report, err := e.MoveNodes(ctx, []uuid.UUID{parent.ID}, "/destination", AnchorEnd())
	require.NoError(t, err)
	require.True(t, report.Ok())

	path, err := e.nodes.PathOf(ctx, nested.ID)
	require.NoError(t, err)
	assert.Equal(t, "/destination/parent/child/nested.txt", path)

	body, err := e.ReadContent(ctx, nested.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("Nested content"), body, "content must survive the move byte for byte")

	got, err := e.Node(ctx, nested.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.Ordinal, "descendant ordinals must not change")
}

func TestMoveIntoEmptyFolder(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	mkFolder(t, e, "/", "source")
	mkFolder(t, e, "/", "empty")

	var ids []uuid.UUID
	for _, name := range []string{"a", "b", "c"} {
		ids = append(ids, mkText(t, e, "/source", name, "").ID)
	}

	report, err := e.MoveNodes(ctx, ids, "/empty", AnchorEnd())
	require.NoError(t, err)
	require.True(t, report.Ok())

	_, ordinals := listing(t, e, "/empty")
	assert.Equal(t, int64(0), ordinals["a"])
	assert.Equal(t, int64(1), ordinals["b"])
	assert.Equal(t, int64(2), ordinals["c"])
}

func TestMoveSourceOrdinalsUntouched(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	mkFolder(t, e, "/", "source")
	mkFolder(t, e, "/", "target")

	mkText(t, e, "/source", "keep-0", "")
	moved := mkText(t, e, "/source", "moved", "")
	mkText(t, e, "/source", "keep-2", "")

	require.NoError(t, e.MoveNode(ctx, moved.ID, "/target", AnchorEnd()))

	_, ordinals := listing(t, e, "/source")
	assert.Equal(t, int64(0), ordinals["keep-0"])
	assert.Equal(t, int64(2), ordinals["keep-2"], "source keeps its gap, no renumbering")
}

func TestMovePartialFailureReported(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	mkFolder(t, e, "/", "source")
	mkFolder(t, e, "/", "target")

	good := mkText(t, e, "/source", "good", "")
	clash := mkText(t, e, "/source", "clash", "")
	mkText(t, e, "/target", "clash", "")

	report, err := e.MoveNodes(ctx, []uuid.UUID{good.ID, clash.ID}, "/target", AnchorEnd())
	require.NoError(t, err)

	require.Len(t, report.Succeeded, 1)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, "good", report.Succeeded[0].Name)
	assert.Equal(t, "clash", report.Failed[0].Name)
	assert.True(t, node.IsCode(report.Failed[0].Err, node.ErrAlreadyExists))

	// The failed item stays behind in the source folder.
	sourceNames, _ := listing(t, e, "/source")
	assert.Equal(t, []string{"clash"}, sourceNames)
	requireNoDuplicates(t, e, "/target")
}

func TestMoveItemAlreadyInTarget(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	mkFolder(t, e, "/", "target")
	resident := mkText(t, e, "/target", "resident", "")

	report, err := e.MoveNodes(ctx, []uuid.UUID{resident.ID}, "/target", AnchorEnd())
	require.NoError(t, err)
	require.Len(t, report.Failed, 1)
	assert.True(t, node.IsCode(report.Failed[0].Err, node.ErrInvalidArgument))

	// Nothing moved, nothing shifted.
	_, ordinals := listing(t, e, "/target")
	assert.Equal(t, int64(0), ordinals["resident"])
}

func TestMoveUnknownItemDoesNotAbortBatch(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	mkFolder(t, e, "/", "source")
	mkFolder(t, e, "/", "target")
	good := mkText(t, e, "/source", "good", "")

	report, err := e.MoveNodes(ctx, []uuid.UUID{uuid.New(), good.ID}, "/target", AnchorEnd())
	require.NoError(t, err)

	require.Len(t, report.Succeeded, 1)
	require.Len(t, report.Failed, 1)
	assert.True(t, node.IsCode(report.Failed[0].Err, node.ErrNotFound))
	assert.Equal(t, "good", report.Succeeded[0].Name)
}

func TestMoveFolderIntoOwnSubtreeRejected(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	parent := mkFolder(t, e, "/", "parent")
	mkFolder(t, e, "/parent", "child")

	err := e.MoveNode(ctx, parent.ID, "/parent/child", AnchorEnd())
	assert.True(t, node.IsCode(err, node.ErrInvalidArgument))
}

func TestMoveRetryOfFailedSubset(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	mkFolder(t, e, "/", "source")
	mkFolder(t, e, "/", "target")

	good := mkText(t, e, "/source", "good", "")
	clash := mkText(t, e, "/source", "clash", "")
	blocker := mkText(t, e, "/target", "clash", "")

	report, err := e.MoveNodes(ctx, []uuid.UUID{good.ID, clash.ID}, "/target", AnchorStart())
	require.NoError(t, err)
	require.Len(t, report.Failed, 1)

	// Clear the collision, then retry only the failed item into its slot.
	require.NoError(t, e.Rename(ctx, blocker.ID, "blocker"))
	retry, err := e.MoveNodes(ctx, []uuid.UUID{clash.ID}, "/target", AnchorAfter(good.ID))
	require.NoError(t, err)
	require.True(t, retry.Ok())

	names, _ := listing(t, e, "/target")
	assert.Equal(t, []string{"good", "clash", "blocker"}, names)
	requireNoDuplicates(t, e, "/target")
}
