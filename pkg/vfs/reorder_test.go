package vfs

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Clay-Ferguson/quanta-sub001/pkg/store/node"
)

func TestReorderReversal(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	mkFolder(t, e, "/", "docs")
	names := []string{"a", "b", "c", "d", "e", "f"}
	ids := make(map[string]uuid.UUID, len(names))
	for _, name := range names {
		ids[name] = mkText(t, e, "/docs", name, "").ID
	}

	reversed := []uuid.UUID{ids["f"], ids["e"], ids["d"], ids["c"], ids["b"], ids["a"]}
	require.NoError(t, e.Reorder(ctx, "/docs", reversed))

	got, ordinals := listing(t, e, "/docs")
	assert.Equal(t, []string{"f", "e", "d", "c", "b", "a"}, got)
	for i, name := range []string{"f", "e", "d", "c", "b", "a"} {
		assert.Equal(t, int64(i), ordinals[name])
	}
	requireNoDuplicates(t, e, "/docs")
}

func TestReorderIdentityIsIdempotent(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	mkFolder(t, e, "/", "docs")
	var order []uuid.UUID
	for _, name := range []string{"a", "b", "c"} {
		order = append(order, mkText(t, e, "/docs", name, "").ID)
	}

	_, before := listing(t, e, "/docs")
	require.NoError(t, e.Reorder(ctx, "/docs", order))
	_, after := listing(t, e, "/docs")

	assert.Equal(t, before, after, "identity reorder leaves ordinals numerically unchanged")
	requireNoDuplicates(t, e, "/docs")
}

func TestReorderSingleItem(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	mkFolder(t, e, "/", "docs")
	only := mkText(t, e, "/docs", "only", "")

	require.NoError(t, e.Reorder(ctx, "/docs", []uuid.UUID{only.ID}))

	_, ordinals := listing(t, e, "/docs")
	assert.Equal(t, int64(0), ordinals["only"])
}

func TestReorderCompactsGaps(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	mkFolder(t, e, "/", "docs")
	a := mkText(t, e, "/docs", "a", "")
	b := mkText(t, e, "/docs", "b", "")
	c := mkText(t, e, "/docs", "c", "")

	// Open a gap, then reorder: final ordinals are position indexes again.
	require.NoError(t, e.ShiftOrdinalsDown(ctx, "/docs", 1, 5))
	require.NoError(t, e.Reorder(ctx, "/docs", []uuid.UUID{a.ID, b.ID, c.ID}))

	_, ordinals := listing(t, e, "/docs")
	assert.Equal(t, int64(0), ordinals["a"])
	assert.Equal(t, int64(1), ordinals["b"])
	assert.Equal(t, int64(2), ordinals["c"])
}

func TestReorderValidation(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	mkFolder(t, e, "/", "docs")
	a := mkText(t, e, "/docs", "a", "")
	mkText(t, e, "/docs", "b", "")

	t.Run("MissingChild", func(t *testing.T) {
		err := e.Reorder(ctx, "/docs", []uuid.UUID{a.ID})
		assert.True(t, node.IsCode(err, node.ErrInvalidArgument))
	})

	t.Run("ForeignNode", func(t *testing.T) {
		err := e.Reorder(ctx, "/docs", []uuid.UUID{a.ID, uuid.New()})
		assert.True(t, node.IsCode(err, node.ErrInvalidArgument))
	})

	t.Run("DuplicateEntry", func(t *testing.T) {
		err := e.Reorder(ctx, "/docs", []uuid.UUID{a.ID, a.ID})
		assert.True(t, node.IsCode(err, node.ErrInvalidArgument))
	})

	// Validation failures must not have disturbed anything.
	_, ordinals := listing(t, e, "/docs")
	assert.Equal(t, int64(0), ordinals["a"])
	assert.Equal(t, int64(1), ordinals["b"])
}

func TestReorderByName(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	mkFolder(t, e, "/", "docs")
	for _, name := range []string{"a", "b", "c"} {
		mkText(t, e, "/docs", name, "")
	}

	require.NoError(t, e.ReorderByName(ctx, "/docs", []string{"c", "a", "b"}))

	names, _ := listing(t, e, "/docs")
	assert.Equal(t, []string{"c", "a", "b"}, names)
	requireNoDuplicates(t, e, "/docs")
}
