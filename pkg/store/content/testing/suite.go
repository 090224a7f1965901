// Package testing provides a conformance suite for ContentStore
// implementations.
package testing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Clay-Ferguson/quanta-sub001/pkg/store/content"
	"github.com/Clay-Ferguson/quanta-sub001/pkg/store/node"
)

// StoreTestSuite is a conformance test suite for ContentStore
// implementations.
type StoreTestSuite struct {
	// NewStore creates a fresh, empty ContentStore for each test.
	NewStore func(t *testing.T) content.ContentStore
}

// Run executes all tests in the suite.
func (suite *StoreTestSuite) Run(t *testing.T) {
	ctx := context.Background()

	t.Run("WriteAndRead", func(t *testing.T) {
		store := suite.NewStore(t)
		id := content.NewID()

		require.NoError(t, store.Write(ctx, id, []byte("hello world")))

		data, err := store.Read(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, []byte("hello world"), data)
	})

	t.Run("Overwrite", func(t *testing.T) {
		store := suite.NewStore(t)
		id := content.NewID()

		require.NoError(t, store.Write(ctx, id, []byte("first")))
		require.NoError(t, store.Write(ctx, id, []byte("second")))

		data, err := store.Read(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, []byte("second"), data)
	})

	t.Run("EmptyContent", func(t *testing.T) {
		store := suite.NewStore(t)
		id := content.NewID()

		require.NoError(t, store.Write(ctx, id, nil))

		data, err := store.Read(ctx, id)
		require.NoError(t, err)
		assert.Empty(t, data)
	})

	t.Run("ReadMissing", func(t *testing.T) {
		store := suite.NewStore(t)

		_, err := store.Read(ctx, content.NewID())
		assert.True(t, node.IsCode(err, node.ErrNotFound), "want ErrNotFound, got %v", err)
	})

	t.Run("Delete", func(t *testing.T) {
		store := suite.NewStore(t)
		id := content.NewID()

		require.NoError(t, store.Write(ctx, id, []byte("doomed")))
		require.NoError(t, store.Delete(ctx, id))

		_, err := store.Read(ctx, id)
		assert.True(t, node.IsCode(err, node.ErrNotFound))
	})

	t.Run("DeleteMissing", func(t *testing.T) {
		store := suite.NewStore(t)

		err := store.Delete(ctx, content.NewID())
		assert.True(t, node.IsCode(err, node.ErrNotFound), "want ErrNotFound, got %v", err)
	})

	t.Run("Healthcheck", func(t *testing.T) {
		store := suite.NewStore(t)
		assert.NoError(t, store.Healthcheck(ctx))
	})
}
