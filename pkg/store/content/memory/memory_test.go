package memory

import (
	"testing"

	"github.com/Clay-Ferguson/quanta-sub001/pkg/store/content"
	contenttesting "github.com/Clay-Ferguson/quanta-sub001/pkg/store/content/testing"
)

func TestMemoryContentStore(t *testing.T) {
	suite := &contenttesting.StoreTestSuite{
		NewStore: func(t *testing.T) content.ContentStore {
			return NewMemoryContentStore()
		},
	}
	suite.Run(t)
}
