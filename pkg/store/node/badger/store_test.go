package badger

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Clay-Ferguson/quanta-sub001/pkg/store/node"
	nodetesting "github.com/Clay-Ferguson/quanta-sub001/pkg/store/node/testing"
)

func newTestStore(t *testing.T) node.NodeStore {
	t.Helper()

	store, err := NewBadgerNodeStore(context.Background(), Config{
		DBPath: t.TempDir(),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	return store
}

func TestBadgerNodeStore(t *testing.T) {
	suite := &nodetesting.StoreTestSuite{NewStore: newTestStore}
	suite.Run(t)
}

// TestPersistence verifies that nodes survive a close and reopen cycle.
func TestPersistence(t *testing.T) {
	ctx := context.Background()
	dbPath := t.TempDir()

	store, err := NewBadgerNodeStore(ctx, Config{DBPath: dbPath})
	require.NoError(t, err)

	n := &node.TreeNode{
		ID:      uuid.New(),
		Name:    "persistent.md",
		Ordinal: 7,
		Kind:    node.KindText,
	}
	require.NoError(t, store.CreateNode(ctx, "/", n))
	require.NoError(t, store.Close())

	reopened, err := NewBadgerNodeStore(ctx, Config{DBPath: dbPath})
	require.NoError(t, err)
	defer func() { require.NoError(t, reopened.Close()) }()

	got, err := reopened.GetNode(ctx, n.ID)
	require.NoError(t, err)
	require.Equal(t, "persistent.md", got.Name)
	require.Equal(t, int64(7), got.Ordinal)
}
