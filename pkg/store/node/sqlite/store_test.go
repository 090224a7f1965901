package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Clay-Ferguson/quanta-sub001/pkg/store/node"
	nodetesting "github.com/Clay-Ferguson/quanta-sub001/pkg/store/node/testing"
)

func newTestStore(t *testing.T) node.NodeStore {
	t.Helper()

	store, err := NewSQLiteNodeStore(context.Background(), Config{
		Path: filepath.Join(t.TempDir(), "nodes.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	return store
}

func TestSQLiteNodeStore(t *testing.T) {
	suite := &nodetesting.StoreTestSuite{NewStore: newTestStore}
	suite.Run(t)
}

// TestPersistence verifies that nodes survive a close and reopen cycle.
func TestPersistence(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nodes.db")

	store, err := NewSQLiteNodeStore(ctx, Config{Path: path})
	require.NoError(t, err)

	n := &node.TreeNode{
		ID:      uuid.New(),
		Name:    "persistent.md",
		Ordinal: 7,
		Kind:    node.KindText,
	}
	require.NoError(t, store.CreateNode(ctx, "/", n))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteNodeStore(ctx, Config{Path: path})
	require.NoError(t, err)
	defer func() { require.NoError(t, reopened.Close()) }()

	got, err := reopened.GetNode(ctx, n.ID)
	require.NoError(t, err)
	require.Equal(t, "persistent.md", got.Name)
	require.Equal(t, int64(7), got.Ordinal)
}

// TestSubtreePathRewrite checks that the substr-based rewrite does not touch
// folders whose names merely extend the moved path.
func TestSubtreePathRewrite(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t).(*SQLiteNodeStore)

	docs := &node.TreeNode{ID: uuid.New(), Name: "docs", Kind: node.KindFolder}
	docs2 := &node.TreeNode{ID: uuid.New(), Name: "docs2", Ordinal: 1, Kind: node.KindFolder}
	require.NoError(t, store.CreateNode(ctx, "/", docs))
	require.NoError(t, store.CreateNode(ctx, "/", docs2))

	inDocs := &node.TreeNode{ID: uuid.New(), Name: "a.md", Kind: node.KindText}
	inDocs2 := &node.TreeNode{ID: uuid.New(), Name: "b.md", Kind: node.KindText}
	require.NoError(t, store.CreateNode(ctx, "/docs", inDocs))
	require.NoError(t, store.CreateNode(ctx, "/docs2", inDocs2))

	require.NoError(t, store.RenameNode(ctx, docs.ID, "pages"))

	folder, err := store.FolderOf(ctx, inDocs.ID)
	require.NoError(t, err)
	require.Equal(t, "/pages", folder)

	folder, err = store.FolderOf(ctx, inDocs2.ID)
	require.NoError(t, err)
	require.Equal(t, "/docs2", folder, "sibling with extending name must be untouched")
}
