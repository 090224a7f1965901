// Package testing provides a conformance suite for NodeStore implementations.
//
// The suite tests the interface contract, not implementation details, so the
// same tests run against every backend (memory, badger, sqlite).
package testing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Clay-Ferguson/quanta-sub001/pkg/store/node"
)

// StoreTestSuite is a conformance test suite for NodeStore implementations.
//
// Usage:
//
//	func TestMemoryNodeStore(t *testing.T) {
//	    suite := &testing.StoreTestSuite{
//	        NewStore: func(t *testing.T) node.NodeStore {
//	            return memory.NewMemoryNodeStore()
//	        },
//	    }
//	    suite.Run(t)
//	}
type StoreTestSuite struct {
	// NewStore creates a fresh, empty NodeStore for each test.
	// Implementations needing on-disk state should use t.TempDir and
	// t.Cleanup for teardown.
	NewStore func(t *testing.T) node.NodeStore
}

// Run executes all tests in the suite.
func (suite *StoreTestSuite) Run(t *testing.T) {
	t.Run("Create", suite.RunCreateTests)
	t.Run("Children", suite.RunChildrenTests)
	t.Run("Ordinal", suite.RunOrdinalTests)
	t.Run("Rename", suite.RunRenameTests)
	t.Run("Move", suite.RunMoveTests)
	t.Run("Delete", suite.RunDeleteTests)
}

func testContext() context.Context {
	return context.Background()
}

// newNode builds a TreeNode with a fresh UUID.
func newNode(name string, ordinal int64, kind node.NodeKind) *node.TreeNode {
	return &node.TreeNode{
		ID:      uuid.New(),
		Name:    name,
		Ordinal: ordinal,
		Kind:    kind,
		OwnerID: 1,
	}
}

// mustCreate inserts a node and fails the test on error.
func mustCreate(t *testing.T, store node.NodeStore, folder string, n *node.TreeNode) *node.TreeNode {
	t.Helper()
	require.NoError(t, store.CreateNode(testContext(), folder, n))
	return n
}

func (suite *StoreTestSuite) RunCreateTests(t *testing.T) {
	t.Run("CreateAndGet", func(t *testing.T) {
		store := suite.NewStore(t)

		n := mustCreate(t, store, "/", newNode("notes.md", 0, node.KindText))

		got, err := store.GetNode(testContext(), n.ID)
		require.NoError(t, err)
		assert.Equal(t, "notes.md", got.Name)
		assert.Equal(t, int64(0), got.Ordinal)
		assert.Equal(t, node.KindText, got.Kind)
		assert.False(t, got.Created.IsZero())
	})

	t.Run("CreateInNestedFolder", func(t *testing.T) {
		store := suite.NewStore(t)

		mustCreate(t, store, "/", newNode("docs", 0, node.KindFolder))
		n := mustCreate(t, store, "/docs", newNode("readme.md", 0, node.KindText))

		got, err := store.Lookup(testContext(), "/docs", "readme.md")
		require.NoError(t, err)
		assert.Equal(t, n.ID, got.ID)

		path, err := store.PathOf(testContext(), n.ID)
		require.NoError(t, err)
		assert.Equal(t, "/docs/readme.md", path)
	})

	t.Run("DuplicateName", func(t *testing.T) {
		store := suite.NewStore(t)

		mustCreate(t, store, "/", newNode("a.md", 0, node.KindText))
		err := store.CreateNode(testContext(), "/", newNode("a.md", 1, node.KindText))
		assert.True(t, node.IsCode(err, node.ErrAlreadyExists), "want ErrAlreadyExists, got %v", err)
	})

	t.Run("EmptyName", func(t *testing.T) {
		store := suite.NewStore(t)

		err := store.CreateNode(testContext(), "/", newNode("", 0, node.KindText))
		assert.True(t, node.IsCode(err, node.ErrInvalidArgument), "want ErrInvalidArgument, got %v", err)
	})

	t.Run("MissingFolder", func(t *testing.T) {
		store := suite.NewStore(t)

		err := store.CreateNode(testContext(), "/missing", newNode("a.md", 0, node.KindText))
		assert.True(t, node.IsCode(err, node.ErrNotFound), "want ErrNotFound, got %v", err)
	})

	t.Run("CreateUnderFile", func(t *testing.T) {
		store := suite.NewStore(t)

		mustCreate(t, store, "/", newNode("file.md", 0, node.KindText))
		err := store.CreateNode(testContext(), "/file.md", newNode("a.md", 0, node.KindText))
		assert.True(t, node.IsCode(err, node.ErrNotFolder), "want ErrNotFolder, got %v", err)
	})
}

func (suite *StoreTestSuite) RunChildrenTests(t *testing.T) {
	t.Run("SortedByOrdinal", func(t *testing.T) {
		store := suite.NewStore(t)

		mustCreate(t, store, "/", newNode("c.md", 2, node.KindText))
		mustCreate(t, store, "/", newNode("a.md", 0, node.KindText))
		mustCreate(t, store, "/", newNode("b.md", 1, node.KindText))

		children, err := store.ReadChildren(testContext(), "/")
		require.NoError(t, err)
		require.Len(t, children, 3)
		assert.Equal(t, "a.md", children[0].Name)
		assert.Equal(t, "b.md", children[1].Name)
		assert.Equal(t, "c.md", children[2].Name)
	})

	t.Run("EmptyFolder", func(t *testing.T) {
		store := suite.NewStore(t)

		mustCreate(t, store, "/", newNode("empty", 0, node.KindFolder))
		children, err := store.ReadChildren(testContext(), "/empty")
		require.NoError(t, err)
		assert.Empty(t, children)
	})

	t.Run("MissingFolder", func(t *testing.T) {
		store := suite.NewStore(t)

		_, err := store.ReadChildren(testContext(), "/missing")
		assert.True(t, node.IsCode(err, node.ErrNotFound), "want ErrNotFound, got %v", err)
	})
}

func (suite *StoreTestSuite) RunOrdinalTests(t *testing.T) {
	t.Run("SetOrdinal", func(t *testing.T) {
		store := suite.NewStore(t)

		n := mustCreate(t, store, "/", newNode("a.md", 0, node.KindText))
		require.NoError(t, store.SetOrdinal(testContext(), n.ID, 42))

		got, err := store.GetNode(testContext(), n.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(42), got.Ordinal)
	})

	t.Run("NegativeOrdinal", func(t *testing.T) {
		store := suite.NewStore(t)

		n := mustCreate(t, store, "/", newNode("a.md", 0, node.KindText))
		require.NoError(t, store.SetOrdinal(testContext(), n.ID, -9223372036854775808))

		got, err := store.GetNode(testContext(), n.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(-9223372036854775808), got.Ordinal)
	})

	t.Run("SetContentID", func(t *testing.T) {
		store := suite.NewStore(t)

		n := mustCreate(t, store, "/", newNode("a.md", 0, node.KindText))
		require.NoError(t, store.SetContentID(testContext(), n.ID, "blob-1"))

		got, err := store.GetNode(testContext(), n.ID)
		require.NoError(t, err)
		assert.Equal(t, node.ContentID("blob-1"), got.ContentID)
		assert.Equal(t, int64(0), got.Ordinal, "content attach must not disturb the ordinal")
	})

	t.Run("UnknownNode", func(t *testing.T) {
		store := suite.NewStore(t)

		err := store.SetOrdinal(testContext(), uuid.New(), 1)
		assert.True(t, node.IsCode(err, node.ErrNotFound), "want ErrNotFound, got %v", err)

		err = store.SetContentID(testContext(), uuid.New(), "blob-1")
		assert.True(t, node.IsCode(err, node.ErrNotFound), "want ErrNotFound, got %v", err)
	})
}

func (suite *StoreTestSuite) RunRenameTests(t *testing.T) {
	t.Run("RenameFile", func(t *testing.T) {
		store := suite.NewStore(t)

		n := mustCreate(t, store, "/", newNode("old.md", 5, node.KindText))
		require.NoError(t, store.RenameNode(testContext(), n.ID, "new.md"))

		got, err := store.GetNode(testContext(), n.ID)
		require.NoError(t, err)
		assert.Equal(t, "new.md", got.Name)
		assert.Equal(t, int64(5), got.Ordinal, "rename must preserve the ordinal")

		_, err = store.Lookup(testContext(), "/", "old.md")
		assert.True(t, node.IsCode(err, node.ErrNotFound))
	})

	t.Run("RenameFolderKeepsChildren", func(t *testing.T) {
		store := suite.NewStore(t)

		dir := mustCreate(t, store, "/", newNode("docs", 0, node.KindFolder))
		child := mustCreate(t, store, "/docs", newNode("readme.md", 0, node.KindText))

		require.NoError(t, store.RenameNode(testContext(), dir.ID, "pages"))

		path, err := store.PathOf(testContext(), child.ID)
		require.NoError(t, err)
		assert.Equal(t, "/pages/readme.md", path)
	})

	t.Run("NameCollision", func(t *testing.T) {
		store := suite.NewStore(t)

		mustCreate(t, store, "/", newNode("a.md", 0, node.KindText))
		n := mustCreate(t, store, "/", newNode("b.md", 1, node.KindText))

		err := store.RenameNode(testContext(), n.ID, "a.md")
		assert.True(t, node.IsCode(err, node.ErrAlreadyExists), "want ErrAlreadyExists, got %v", err)
	})
}

func (suite *StoreTestSuite) RunMoveTests(t *testing.T) {
	t.Run("MoveFile", func(t *testing.T) {
		store := suite.NewStore(t)

		mustCreate(t, store, "/", newNode("target", 0, node.KindFolder))
		n := mustCreate(t, store, "/", newNode("a.md", 3, node.KindText))

		require.NoError(t, store.MoveNode(testContext(), n.ID, "/target"))

		folder, err := store.FolderOf(testContext(), n.ID)
		require.NoError(t, err)
		assert.Equal(t, "/target", folder)
	})

	t.Run("MoveFolderSubtree", func(t *testing.T) {
		store := suite.NewStore(t)

		mustCreate(t, store, "/", newNode("target", 0, node.KindFolder))
		parent := mustCreate(t, store, "/", newNode("parent", 1, node.KindFolder))
		mustCreate(t, store, "/parent", newNode("child", 0, node.KindFolder))
		nested := mustCreate(t, store, "/parent/child", newNode("nested.txt", 0, node.KindText))
		nested.ContentID = "content-nested"

		require.NoError(t, store.MoveNode(testContext(), parent.ID, "/target"))

		path, err := store.PathOf(testContext(), nested.ID)
		require.NoError(t, err)
		assert.Equal(t, "/target/parent/child/nested.txt", path)

		got, err := store.GetNode(testContext(), nested.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), got.Ordinal, "descendant ordinals must not change")
	})

	t.Run("MoveIntoOwnSubtree", func(t *testing.T) {
		store := suite.NewStore(t)

		parent := mustCreate(t, store, "/", newNode("parent", 0, node.KindFolder))
		mustCreate(t, store, "/parent", newNode("child", 0, node.KindFolder))

		err := store.MoveNode(testContext(), parent.ID, "/parent/child")
		assert.True(t, node.IsCode(err, node.ErrInvalidArgument), "want ErrInvalidArgument, got %v", err)
	})

	t.Run("NameCollisionInTarget", func(t *testing.T) {
		store := suite.NewStore(t)

		mustCreate(t, store, "/", newNode("target", 0, node.KindFolder))
		mustCreate(t, store, "/target", newNode("a.md", 0, node.KindText))
		n := mustCreate(t, store, "/", newNode("a.md", 1, node.KindText))

		err := store.MoveNode(testContext(), n.ID, "/target")
		assert.True(t, node.IsCode(err, node.ErrAlreadyExists), "want ErrAlreadyExists, got %v", err)
	})
}

func (suite *StoreTestSuite) RunDeleteTests(t *testing.T) {
	t.Run("DeleteFile", func(t *testing.T) {
		store := suite.NewStore(t)

		n := mustCreate(t, store, "/", newNode("a.md", 0, node.KindText))
		require.NoError(t, store.DeleteNode(testContext(), n.ID))

		_, err := store.GetNode(testContext(), n.ID)
		assert.True(t, node.IsCode(err, node.ErrNotFound))
	})

	t.Run("DeleteFolderSubtree", func(t *testing.T) {
		store := suite.NewStore(t)

		dir := mustCreate(t, store, "/", newNode("docs", 0, node.KindFolder))
		mustCreate(t, store, "/docs", newNode("sub", 0, node.KindFolder))
		nested := mustCreate(t, store, "/docs/sub", newNode("deep.md", 0, node.KindText))

		require.NoError(t, store.DeleteNode(testContext(), dir.ID))

		_, err := store.GetNode(testContext(), nested.ID)
		assert.True(t, node.IsCode(err, node.ErrNotFound), "descendants must be removed with the folder")
	})

	t.Run("SiblingsNotRenumbered", func(t *testing.T) {
		store := suite.NewStore(t)

		a := mustCreate(t, store, "/", newNode("a.md", 0, node.KindText))
		mustCreate(t, store, "/", newNode("b.md", 1, node.KindText))
		c := mustCreate(t, store, "/", newNode("c.md", 2, node.KindText))

		require.NoError(t, store.DeleteNode(testContext(), a.ID))

		got, err := store.GetNode(testContext(), c.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), got.Ordinal, "delete must leave a gap, not renumber")
	})
}
