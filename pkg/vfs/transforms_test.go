package vfs

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Clay-Ferguson/quanta-sub001/pkg/store/node"
)

func TestJoinConcatenatesIntoLowestOrdinal(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	mkFolder(t, e, "/", "docs")
	first := mkText(t, e, "/docs", "first.md", "part one")
	second := mkText(t, e, "/docs", "second.md", "part two")
	third := mkText(t, e, "/docs", "third.md", "part three")

	// Selection order must not matter, ordinal order does.
	survivor, err := e.Join(ctx, "/docs", []uuid.UUID{third.ID, first.ID, second.ID})
	require.NoError(t, err)
	assert.Equal(t, first.ID, survivor.ID, "lowest-ordinal node survives")
	assert.Equal(t, int64(0), survivor.Ordinal, "survivor keeps its ordinal")

	body, err := e.ReadContent(ctx, survivor.ID)
	require.NoError(t, err)
	assert.Equal(t, "part one\npart two\npart three", string(body))

	names, _ := listing(t, e, "/docs")
	assert.Equal(t, []string{"first.md"}, names)
	requireNoDuplicates(t, e, "/docs")
}

func TestJoinValidation(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	mkFolder(t, e, "/", "docs")
	only := mkText(t, e, "/docs", "only.md", "x")
	sub := mkFolder(t, e, "/docs", "sub")

	t.Run("FewerThanTwo", func(t *testing.T) {
		_, err := e.Join(ctx, "/docs", []uuid.UUID{only.ID})
		assert.True(t, node.IsCode(err, node.ErrInvalidArgument))
	})

	t.Run("NonTextNode", func(t *testing.T) {
		_, err := e.Join(ctx, "/docs", []uuid.UUID{only.ID, sub.ID})
		assert.True(t, node.IsCode(err, node.ErrInvalidArgument))
	})

	t.Run("SpansFolders", func(t *testing.T) {
		outsider := mkText(t, e, "/docs/sub", "outsider.md", "y")
		_, err := e.Join(ctx, "/docs", []uuid.UUID{only.ID, outsider.ID})
		assert.True(t, node.IsCode(err, node.ErrInvalidArgument))
	})

	// Failed joins must not mutate anything.
	body, err := e.ReadContent(ctx, only.ID)
	require.NoError(t, err)
	assert.Equal(t, "x", string(body))
}

func TestSplitCreatesSiblingAfterSource(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	mkFolder(t, e, "/", "docs")
	source := mkText(t, e, "/docs", "note.md", "headtail")
	after := mkText(t, e, "/docs", "after.md", "")

	sibling, err := e.Split(ctx, source.ID, 4, "note-2.md")
	require.NoError(t, err)
	assert.Equal(t, int64(1), sibling.Ordinal, "new sibling sits right after the source")

	head, err := e.ReadContent(ctx, source.ID)
	require.NoError(t, err)
	assert.Equal(t, "head", string(head))

	tail, err := e.ReadContent(ctx, sibling.ID)
	require.NoError(t, err)
	assert.Equal(t, "tail", string(tail))

	_, ordinals := listing(t, e, "/docs")
	assert.Equal(t, int64(2), ordinals[after.Name], "displaced sibling shifted up")
	requireNoDuplicates(t, e, "/docs")
}

func TestSplitValidation(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	mkFolder(t, e, "/", "docs")
	source := mkText(t, e, "/docs", "note.md", "body")
	folder := mkFolder(t, e, "/docs", "sub")

	t.Run("OffsetAtStart", func(t *testing.T) {
		_, err := e.Split(ctx, source.ID, 0, "x.md")
		assert.True(t, node.IsCode(err, node.ErrInvalidArgument))
	})

	t.Run("OffsetAtEnd", func(t *testing.T) {
		_, err := e.Split(ctx, source.ID, 4, "x.md")
		assert.True(t, node.IsCode(err, node.ErrInvalidArgument))
	})

	t.Run("FolderNode", func(t *testing.T) {
		_, err := e.Split(ctx, folder.ID, 1, "x.md")
		assert.True(t, node.IsCode(err, node.ErrInvalidArgument))
	})
}

func TestListEffectiveFlattensPullupFolders(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	mkFolder(t, e, "/", "docs")
	mkText(t, e, "/docs", "intro.md", "")
	mkFolder(t, e, "/docs", "attachments_")
	mkText(t, e, "/docs", "outro.md", "")
	mkText(t, e, "/docs/attachments_", "one.md", "")
	mkText(t, e, "/docs/attachments_", "two.md", "")

	flat, err := e.ListEffective(ctx, "/docs")
	require.NoError(t, err)

	names := make([]string, 0, len(flat))
	for _, n := range flat {
		names = append(names, n.Name)
	}
	assert.Equal(t, []string{"intro.md", "one.md", "two.md", "outro.md"}, names,
		"pullup children appear inline in place of their container")
}

func TestListEffectiveNestedPullups(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	mkFolder(t, e, "/", "docs")
	mkFolder(t, e, "/docs", "outer_")
	mkFolder(t, e, "/docs/outer_", "inner_")
	mkText(t, e, "/docs/outer_/inner_", "deep.md", "")

	flat, err := e.ListEffective(ctx, "/docs")
	require.NoError(t, err)
	require.Len(t, flat, 1)
	assert.Equal(t, "deep.md", flat[0].Name)
}

func TestListEffectiveRegularFolderNotFlattened(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	mkFolder(t, e, "/", "docs")
	mkFolder(t, e, "/docs", "regular")
	mkText(t, e, "/docs/regular", "hidden.md", "")

	flat, err := e.ListEffective(ctx, "/docs")
	require.NoError(t, err)
	require.Len(t, flat, 1)
	assert.Equal(t, "regular", flat[0].Name)
}
