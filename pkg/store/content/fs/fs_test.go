package fs

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Clay-Ferguson/quanta-sub001/pkg/store/content"
	contenttesting "github.com/Clay-Ferguson/quanta-sub001/pkg/store/content/testing"
)

func TestFilesystemContentStore(t *testing.T) {
	suite := &contenttesting.StoreTestSuite{
		NewStore: func(t *testing.T) content.ContentStore {
			store, err := NewFilesystemContentStore(Config{Root: t.TempDir()})
			require.NoError(t, err)
			return store
		},
	}
	suite.Run(t)
}

func TestMissingRoot(t *testing.T) {
	_, err := NewFilesystemContentStore(Config{})
	require.Error(t, err)
}
