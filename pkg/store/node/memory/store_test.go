package memory

import (
	"testing"

	"github.com/Clay-Ferguson/quanta-sub001/pkg/store/node"
	nodetesting "github.com/Clay-Ferguson/quanta-sub001/pkg/store/node/testing"
)

func TestMemoryNodeStore(t *testing.T) {
	suite := &nodetesting.StoreTestSuite{
		NewStore: func(t *testing.T) node.NodeStore {
			return NewMemoryNodeStore()
		},
	}
	suite.Run(t)
}
