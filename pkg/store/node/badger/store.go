// Package badger implements NodeStore using BadgerDB for persistence.
package badger

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/google/uuid"

	"github.com/Clay-Ferguson/quanta-sub001/pkg/store/node"
)

// BadgerNodeStore implements node.NodeStore backed by BadgerDB, a fast
// embedded key-value store.
//
// It is the default persistent backend: workspaces survive restarts without
// an external database process, and the LSM layout handles the engine's
// write pattern (bursts of single-field ordinal updates during shifts and
// reorders) well.
//
// Thread Safety:
// BadgerDB transactions provide isolation; every operation runs in a single
// View or Update transaction, so the store is safe for concurrent use
// without additional locking.
//
// Storage Model:
// See keys.go for the key namespace design. Node data is keyed by UUID and
// the child index by folder path, so moves and renames rewrite only index
// keys while node identity, ordinals and content references stay put.
type BadgerNodeStore struct {
	db *badger.DB
}

// Config contains configuration for creating a BadgerDB node store.
type Config struct {
	// DBPath is the directory where BadgerDB will store its files.
	DBPath string `mapstructure:"db_path"`

	// BlockCacheSizeMB is BadgerDB's block cache size in MB (default: 64).
	BlockCacheSizeMB int64 `mapstructure:"block_cache_mb"`

	// IndexCacheSizeMB is BadgerDB's index cache size in MB (default: 32).
	IndexCacheSizeMB int64 `mapstructure:"index_cache_mb"`
}

// NewBadgerNodeStore opens (or creates) a BadgerDB node store at the
// configured path. The returned store is ready for concurrent use.
func NewBadgerNodeStore(ctx context.Context, config Config) (*BadgerNodeStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts := badger.DefaultOptions(config.DBPath)
	opts = opts.WithLoggingLevel(badger.WARNING)
	// Node records are small JSON documents, compression is not worth the
	// CPU on this workload.
	opts = opts.WithCompression(options.None)

	blockCacheMB := config.BlockCacheSizeMB
	if blockCacheMB == 0 {
		blockCacheMB = 64
	}
	indexCacheMB := config.IndexCacheSizeMB
	if indexCacheMB == 0 {
		indexCacheMB = 32
	}
	opts = opts.WithBlockCacheSize(blockCacheMB << 20)
	opts = opts.WithIndexCacheSize(indexCacheMB << 20)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB at %s: %w", config.DBPath, err)
	}

	return &BadgerNodeStore{db: db}, nil
}

// getNodeData loads a node record within a transaction.
func getNodeData(txn *badger.Txn, id uuid.UUID) (*nodeData, error) {
	item, err := txn.Get(keyNode(id))
	if err == badger.ErrKeyNotFound {
		return nil, &node.StoreError{Code: node.ErrNotFound, Message: "node not found", Path: id.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read node %s: %w", id, err)
	}

	var data *nodeData
	err = item.Value(func(val []byte) error {
		data, err = decodeNodeData(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// putNodeData writes a node record within a transaction.
func putNodeData(txn *badger.Txn, data *nodeData) error {
	bytes, err := encodeNodeData(data)
	if err != nil {
		return err
	}
	if err := txn.Set(keyNode(data.Node.ID), bytes); err != nil {
		return fmt.Errorf("failed to write node %s: %w", data.Node.ID, err)
	}
	return nil
}

// childID resolves a (folder, name) pair to a node UUID within a transaction.
func childID(txn *badger.Txn, folder, name string) (uuid.UUID, error) {
	item, err := txn.Get(keyChild(folder, name))
	if err == badger.ErrKeyNotFound {
		return uuid.Nil, &node.StoreError{
			Code:    node.ErrNotFound,
			Message: "node not found",
			Path:    node.JoinPath(folder, name),
		}
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to read child entry: %w", err)
	}

	var id uuid.UUID
	err = item.Value(func(val []byte) error {
		parsed, err := uuid.FromBytes(val)
		if err != nil {
			return fmt.Errorf("corrupt child entry %q: %w", string(item.Key()), err)
		}
		id = parsed
		return nil
	})
	return id, err
}

// requireFolder verifies that path names an existing folder.
func requireFolder(txn *badger.Txn, path string) error {
	if path == "/" {
		return nil
	}
	parent, name := node.SplitPath(path)
	id, err := childID(txn, parent, name)
	if err != nil {
		if node.IsCode(err, node.ErrNotFound) {
			return &node.StoreError{Code: node.ErrNotFound, Message: "folder not found", Path: path}
		}
		return err
	}
	data, err := getNodeData(txn, id)
	if err != nil {
		return err
	}
	if !data.Node.IsFolder() {
		return &node.StoreError{Code: node.ErrNotFolder, Message: "not a folder", Path: path}
	}
	return nil
}

func validName(name string) error {
	if name == "" {
		return &node.StoreError{Code: node.ErrInvalidArgument, Message: "empty node name"}
	}
	if strings.ContainsAny(name, "/\x00") {
		return &node.StoreError{Code: node.ErrInvalidArgument, Message: "invalid character in node name", Path: name}
	}
	return nil
}

// CreateNode inserts n as a child of folder with its caller-supplied ordinal.
func (s *BadgerNodeStore) CreateNode(ctx context.Context, folder string, n *node.TreeNode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validName(n.Name); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := requireFolder(txn, folder); err != nil {
			return err
		}

		_, err := txn.Get(keyChild(folder, n.Name))
		if err == nil {
			return &node.StoreError{
				Code:    node.ErrAlreadyExists,
				Message: "name already exists",
				Path:    node.JoinPath(folder, n.Name),
			}
		}
		if err != badger.ErrKeyNotFound {
			return fmt.Errorf("failed to check child entry: %w", err)
		}

		now := time.Now()
		stored := n.Clone()
		if stored.Created.IsZero() {
			stored.Created = now
		}
		stored.Modified = now

		if err := putNodeData(txn, &nodeData{Node: stored, Folder: folder}); err != nil {
			return err
		}
		if err := txn.Set(keyChild(folder, stored.Name), stored.ID[:]); err != nil {
			return fmt.Errorf("failed to write child entry: %w", err)
		}

		n.Created = stored.Created
		n.Modified = stored.Modified
		return nil
	})
}

// GetNode retrieves a node by UUID.
func (s *BadgerNodeStore) GetNode(ctx context.Context, id uuid.UUID) (*node.TreeNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var result *node.TreeNode
	err := s.db.View(func(txn *badger.Txn) error {
		data, err := getNodeData(txn, id)
		if err != nil {
			return err
		}
		result = data.Node
		return nil
	})
	return result, err
}

// Lookup resolves a name within a folder.
func (s *BadgerNodeStore) Lookup(ctx context.Context, folder, name string) (*node.TreeNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var result *node.TreeNode
	err := s.db.View(func(txn *badger.Txn) error {
		if err := requireFolder(txn, folder); err != nil {
			return err
		}
		id, err := childID(txn, folder, name)
		if err != nil {
			return err
		}
		data, err := getNodeData(txn, id)
		if err != nil {
			return err
		}
		result = data.Node
		return nil
	})
	return result, err
}

// ReadChildren returns the direct children of folder sorted by ordinal.
func (s *BadgerNodeStore) ReadChildren(ctx context.Context, folder string) ([]*node.TreeNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var children []*node.TreeNode
	err := s.db.View(func(txn *badger.Txn) error {
		if err := requireFolder(txn, folder); err != nil {
			return err
		}

		prefix := keyChildPrefix(folder)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		children = []*node.TreeNode{}
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var id uuid.UUID
			err := it.Item().Value(func(val []byte) error {
				parsed, err := uuid.FromBytes(val)
				if err != nil {
					return fmt.Errorf("corrupt child entry: %w", err)
				}
				id = parsed
				return nil
			})
			if err != nil {
				return err
			}
			data, err := getNodeData(txn, id)
			if err != nil {
				return err
			}
			children = append(children, data.Node)
		}

		sort.Slice(children, func(i, j int) bool { return children[i].Ordinal < children[j].Ordinal })
		return nil
	})
	return children, err
}

// SetOrdinal updates a single node's ordinal.
func (s *BadgerNodeStore) SetOrdinal(ctx context.Context, id uuid.UUID, ordinal int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		data, err := getNodeData(txn, id)
		if err != nil {
			return err
		}
		data.Node.Ordinal = ordinal
		data.Node.Modified = time.Now()
		return putNodeData(txn, data)
	})
}

// SetContentID updates a single node's content reference.
func (s *BadgerNodeStore) SetContentID(ctx context.Context, id uuid.UUID, contentID node.ContentID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		data, err := getNodeData(txn, id)
		if err != nil {
			return err
		}
		data.Node.ContentID = contentID
		data.Node.Modified = time.Now()
		return putNodeData(txn, data)
	})
}

// RenameNode changes a node's display name, keeping its folder and ordinal.
func (s *BadgerNodeStore) RenameNode(ctx context.Context, id uuid.UUID, newName string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validName(newName); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		data, err := getNodeData(txn, id)
		if err != nil {
			return err
		}
		if data.Node.Name == newName {
			return nil
		}

		_, err = txn.Get(keyChild(data.Folder, newName))
		if err == nil {
			return &node.StoreError{
				Code:    node.ErrAlreadyExists,
				Message: "name already exists",
				Path:    node.JoinPath(data.Folder, newName),
			}
		}
		if err != badger.ErrKeyNotFound {
			return fmt.Errorf("failed to check child entry: %w", err)
		}

		oldPath := node.JoinPath(data.Folder, data.Node.Name)
		if err := txn.Delete(keyChild(data.Folder, data.Node.Name)); err != nil {
			return fmt.Errorf("failed to delete child entry: %w", err)
		}
		if err := txn.Set(keyChild(data.Folder, newName), id[:]); err != nil {
			return fmt.Errorf("failed to write child entry: %w", err)
		}

		data.Node.Name = newName
		data.Node.Modified = time.Now()
		if err := putNodeData(txn, data); err != nil {
			return err
		}

		if data.Node.IsFolder() {
			return rekeySubtree(txn, oldPath, node.JoinPath(data.Folder, newName))
		}
		return nil
	})
}

// MoveNode relocates a node (and its subtree, for folders) into targetFolder.
func (s *BadgerNodeStore) MoveNode(ctx context.Context, id uuid.UUID, targetFolder string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		data, err := getNodeData(txn, id)
		if err != nil {
			return err
		}
		if err := requireFolder(txn, targetFolder); err != nil {
			return err
		}
		if data.Folder == targetFolder {
			return nil
		}

		_, err = txn.Get(keyChild(targetFolder, data.Node.Name))
		if err == nil {
			return &node.StoreError{
				Code:    node.ErrAlreadyExists,
				Message: "name already exists in target folder",
				Path:    node.JoinPath(targetFolder, data.Node.Name),
			}
		}
		if err != badger.ErrKeyNotFound {
			return fmt.Errorf("failed to check child entry: %w", err)
		}

		oldPath := node.JoinPath(data.Folder, data.Node.Name)
		if data.Node.IsFolder() && node.IsPathUnder(targetFolder, oldPath) {
			return &node.StoreError{
				Code:    node.ErrInvalidArgument,
				Message: "cannot move a folder into its own subtree",
				Path:    oldPath,
			}
		}

		if err := txn.Delete(keyChild(data.Folder, data.Node.Name)); err != nil {
			return fmt.Errorf("failed to delete child entry: %w", err)
		}
		if err := txn.Set(keyChild(targetFolder, data.Node.Name), id[:]); err != nil {
			return fmt.Errorf("failed to write child entry: %w", err)
		}

		data.Folder = targetFolder
		data.Node.Modified = time.Now()
		if err := putNodeData(txn, data); err != nil {
			return err
		}

		if data.Node.IsFolder() {
			return rekeySubtree(txn, oldPath, node.JoinPath(targetFolder, data.Node.Name))
		}
		return nil
	})
}

// subtreeEntry is a child index entry collected during a subtree scan.
type subtreeEntry struct {
	key    []byte
	folder string
	id     uuid.UUID
}

// scanSubtree collects all child index entries under root. Entries are
// collected before any mutation so the iterator never observes this
// transaction's own writes.
func scanSubtree(txn *badger.Txn, root string) ([]subtreeEntry, error) {
	prefix := keySubtreePrefix(root)
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	var entries []subtreeEntry
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		key := it.Item().KeyCopy(nil)
		childFolder, ok := inSubtree(key, root)
		if !ok {
			continue
		}
		var id uuid.UUID
		err := it.Item().Value(func(val []byte) error {
			parsed, err := uuid.FromBytes(val)
			if err != nil {
				return fmt.Errorf("corrupt child entry %q: %w", string(key), err)
			}
			id = parsed
			return nil
		})
		if err != nil {
			return nil, err
		}
		entries = append(entries, subtreeEntry{key: key, folder: childFolder, id: id})
	}
	return entries, nil
}

// rekeySubtree rewrites the child index and stored folder paths after a
// folder at oldPath was renamed or moved to newPath. Descendant ordinals and
// content references are untouched.
func rekeySubtree(txn *badger.Txn, oldPath, newPath string) error {
	entries, err := scanSubtree(txn, oldPath)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		newFolder := newPath + entry.folder[len(oldPath):]
		name := childNameFromKey(entry.key, entry.folder)

		if err := txn.Delete(entry.key); err != nil {
			return fmt.Errorf("failed to delete child entry: %w", err)
		}
		if err := txn.Set(keyChild(newFolder, name), entry.id[:]); err != nil {
			return fmt.Errorf("failed to write child entry: %w", err)
		}

		data, err := getNodeData(txn, entry.id)
		if err != nil {
			return err
		}
		data.Folder = newFolder
		if err := putNodeData(txn, data); err != nil {
			return err
		}
	}
	return nil
}

// DeleteNode removes a node; folders are removed with their whole subtree.
func (s *BadgerNodeStore) DeleteNode(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		data, err := getNodeData(txn, id)
		if err != nil {
			return err
		}

		if err := txn.Delete(keyChild(data.Folder, data.Node.Name)); err != nil {
			return fmt.Errorf("failed to delete child entry: %w", err)
		}
		if err := txn.Delete(keyNode(id)); err != nil {
			return fmt.Errorf("failed to delete node %s: %w", id, err)
		}

		if !data.Node.IsFolder() {
			return nil
		}

		root := node.JoinPath(data.Folder, data.Node.Name)
		entries, err := scanSubtree(txn, root)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			if err := txn.Delete(entry.key); err != nil {
				return fmt.Errorf("failed to delete child entry: %w", err)
			}
			if err := txn.Delete(keyNode(entry.id)); err != nil {
				return fmt.Errorf("failed to delete node %s: %w", entry.id, err)
			}
		}
		return nil
	})
}

// FolderOf returns the path of the folder containing the node.
func (s *BadgerNodeStore) FolderOf(ctx context.Context, id uuid.UUID) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var folder string
	err := s.db.View(func(txn *badger.Txn) error {
		data, err := getNodeData(txn, id)
		if err != nil {
			return err
		}
		folder = data.Folder
		return nil
	})
	return folder, err
}

// PathOf returns the node's full workspace path.
func (s *BadgerNodeStore) PathOf(ctx context.Context, id uuid.UUID) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var path string
	err := s.db.View(func(txn *badger.Txn) error {
		data, err := getNodeData(txn, id)
		if err != nil {
			return err
		}
		path = node.JoinPath(data.Folder, data.Node.Name)
		return nil
	})
	return path, err
}

// Healthcheck verifies the database is open and readable.
func (s *BadgerNodeStore) Healthcheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return &node.StoreError{Code: node.ErrIOError, Message: "database is closed"}
	}
	return s.db.View(func(txn *badger.Txn) error { return nil })
}

// Close closes the BadgerDB database and releases all resources.
func (s *BadgerNodeStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close BadgerDB: %w", err)
	}
	return nil
}
