package badger

import (
	"github.com/google/uuid"
)

// Database Key Namespace Design
// ==============================
//
// BadgerDB is a key-value store, so we use prefixed keys to organize the two
// data types into logical namespaces:
//
// Data Type       Prefix   Key Format                       Value Type
// =====================================================================
// Node Data       "n:"     n:<uuid>                         nodeData (JSON)
// Children Map    "c:"     c:<folderPath>\x00<childName>    childUUID (16 bytes)
//
// Node data is keyed by UUID so a node's identity survives renames and moves.
// The children map is keyed by the full folder path plus a NUL separator and
// the child name. Names cannot contain '/' or NUL, so the separator is
// unambiguous and enables two kinds of range scans:
//
//   - Direct children of a folder: prefix "c:<folderPath>\x00"
//   - Whole subtree of a folder:   prefix "c:<folderPath>", keeping only keys
//     whose next byte is '\x00' (the folder itself) or '/' (a descendant).
//     The byte filter stops "/docs" from matching "/docs2".
//
// The subtree scan is what makes folder renames and moves cheap relative to
// the tree size: only index keys are rewritten, node data stays keyed by UUID
// and descendant ordinals and content references never change.

const (
	// prefixNode is the key prefix for node data (TreeNode plus folder path)
	prefixNode = "n:"

	// prefixChild is the key prefix for children mappings (folder+name → UUID)
	prefixChild = "c:"

	// childSep separates the folder path from the child name in child keys.
	childSep = "\x00"
)

// keyNode generates the key for a node's data.
func keyNode(id uuid.UUID) []byte {
	return []byte(prefixNode + id.String())
}

// keyChild generates the key for a child entry in a folder.
func keyChild(folder, name string) []byte {
	return []byte(prefixChild + folder + childSep + name)
}

// keyChildPrefix generates the prefix for range scanning a folder's direct
// children.
func keyChildPrefix(folder string) []byte {
	return []byte(prefixChild + folder + childSep)
}

// keySubtreePrefix generates the prefix for range scanning a folder's whole
// subtree. Callers must additionally filter with inSubtree because the raw
// prefix also matches sibling folders whose names extend this one.
func keySubtreePrefix(folder string) []byte {
	return []byte(prefixChild + folder)
}

// inSubtree reports whether a child key under keySubtreePrefix(folder) really
// belongs to folder's subtree, and returns the containing folder path encoded
// in the key.
func inSubtree(key []byte, folder string) (childFolder string, ok bool) {
	rest := key[len(prefixChild)+len(folder):]
	if len(rest) == 0 || (rest[0] != childSep[0] && rest[0] != '/') {
		return "", false
	}
	full := key[len(prefixChild):]
	sep := -1
	for i, b := range full {
		if b == childSep[0] {
			sep = i
			break
		}
	}
	if sep < 0 {
		return "", false
	}
	return string(full[:sep]), true
}

// childNameFromKey extracts the child name from a direct-children scan key.
func childNameFromKey(key []byte, folder string) string {
	return string(key[len(prefixChild)+len(folder)+len(childSep):])
}
