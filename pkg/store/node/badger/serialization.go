package badger

import (
	"encoding/json"
	"fmt"

	"github.com/Clay-Ferguson/quanta-sub001/pkg/store/node"
)

// Serialization Strategy
// ======================
//
// Node data is stored as JSON. Records are small (a few hundred bytes), are
// read far more often than written, and JSON keeps the database debuggable
// with standard tooling. Child index values are raw 16-byte UUIDs since they
// carry no structure worth a codec.

// nodeData is the stored representation of a node: the node itself plus the
// path of its containing folder, which is needed for upward traversal
// (FolderOf, PathOf) without scanning the child index.
type nodeData struct {
	Node   *node.TreeNode `json:"node"`
	Folder string         `json:"folder"`
}

// encodeNodeData serializes nodeData to JSON bytes.
func encodeNodeData(data *nodeData) ([]byte, error) {
	bytes, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode node data: %w", err)
	}
	return bytes, nil
}

// decodeNodeData deserializes nodeData from JSON bytes.
func decodeNodeData(bytes []byte) (*nodeData, error) {
	var data nodeData
	if err := json.Unmarshal(bytes, &data); err != nil {
		return nil, fmt.Errorf("failed to decode node data: %w", err)
	}
	return &data, nil
}
