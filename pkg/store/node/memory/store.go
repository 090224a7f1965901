// Package memory implements NodeStore using in-memory storage.
//
// This backend is suitable for tests, ephemeral workspaces, and as the
// reference implementation the persistent backends are checked against.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Clay-Ferguson/quanta-sub001/pkg/store/node"
)

// record pairs a node with the path of its containing folder.
type record struct {
	node   *node.TreeNode
	folder string
}

// MemoryNodeStore implements node.NodeStore with plain maps.
//
// Storage Model:
//   - records:  node UUID → node + containing folder path
//   - children: folder path → (child name → child UUID)
//
// The children index is keyed by full folder path, so relocating a folder
// means rekeying every bucket under the old path prefix. That cost is paid
// on moves (rare) to keep sibling listing and name resolution O(1).
//
// Thread Safety:
// All operations are protected by a single read-write mutex. Coarse-grained
// locking is simple and correct; the engine serializes mutations per folder
// anyway.
type MemoryNodeStore struct {
	mu       sync.RWMutex
	records  map[uuid.UUID]*record
	children map[string]map[string]uuid.UUID
}

// NewMemoryNodeStore creates an empty store with an existing root folder.
func NewMemoryNodeStore() *MemoryNodeStore {
	return &MemoryNodeStore{
		records: make(map[uuid.UUID]*record),
		children: map[string]map[string]uuid.UUID{
			"/": {},
		},
	}
}

// lookupPath resolves a workspace path to its record.
// Returns (nil, true) for the root path. Must be called with the lock held.
func (s *MemoryNodeStore) lookupPath(path string) (*record, bool) {
	if path == "/" {
		return nil, true
	}
	folder, name := node.SplitPath(path)
	bucket, ok := s.children[folder]
	if !ok {
		return nil, false
	}
	id, ok := bucket[name]
	if !ok {
		return nil, false
	}
	return s.records[id], true
}

// requireFolder verifies that path names an existing folder.
// Must be called with the lock held.
func (s *MemoryNodeStore) requireFolder(path string) error {
	rec, ok := s.lookupPath(path)
	if !ok {
		return &node.StoreError{Code: node.ErrNotFound, Message: "folder not found", Path: path}
	}
	if rec != nil && !rec.node.IsFolder() {
		return &node.StoreError{Code: node.ErrNotFolder, Message: "not a folder", Path: path}
	}
	return nil
}

func validName(name string) error {
	if name == "" {
		return &node.StoreError{Code: node.ErrInvalidArgument, Message: "empty node name"}
	}
	if strings.Contains(name, "/") {
		return &node.StoreError{Code: node.ErrInvalidArgument, Message: "node name contains '/'", Path: name}
	}
	return nil
}

// CreateNode inserts n as a child of folder with its caller-supplied ordinal.
func (s *MemoryNodeStore) CreateNode(ctx context.Context, folder string, n *node.TreeNode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validName(n.Name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireFolder(folder); err != nil {
		return err
	}
	if _, exists := s.children[folder][n.Name]; exists {
		return &node.StoreError{
			Code:    node.ErrAlreadyExists,
			Message: "name already exists",
			Path:    node.JoinPath(folder, n.Name),
		}
	}

	now := time.Now()
	stored := n.Clone()
	if stored.Created.IsZero() {
		stored.Created = now
	}
	stored.Modified = now

	s.records[stored.ID] = &record{node: stored, folder: folder}
	s.children[folder][stored.Name] = stored.ID
	if stored.IsFolder() {
		s.children[node.JoinPath(folder, stored.Name)] = map[string]uuid.UUID{}
	}

	n.Created = stored.Created
	n.Modified = stored.Modified
	return nil
}

// GetNode retrieves a node by UUID.
func (s *MemoryNodeStore) GetNode(ctx context.Context, id uuid.UUID) (*node.TreeNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, &node.StoreError{Code: node.ErrNotFound, Message: "node not found", Path: id.String()}
	}
	return rec.node.Clone(), nil
}

// Lookup resolves a name within a folder.
func (s *MemoryNodeStore) Lookup(ctx context.Context, folder, name string) (*node.TreeNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.requireFolder(folder); err != nil {
		return nil, err
	}
	id, ok := s.children[folder][name]
	if !ok {
		return nil, &node.StoreError{
			Code:    node.ErrNotFound,
			Message: "node not found",
			Path:    node.JoinPath(folder, name),
		}
	}
	return s.records[id].node.Clone(), nil
}

// ReadChildren returns the direct children of folder sorted by ordinal.
func (s *MemoryNodeStore) ReadChildren(ctx context.Context, folder string) ([]*node.TreeNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.requireFolder(folder); err != nil {
		return nil, err
	}

	bucket := s.children[folder]
	out := make([]*node.TreeNode, 0, len(bucket))
	for _, id := range bucket {
		out = append(out, s.records[id].node.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ordinal < out[j].Ordinal })
	return out, nil
}

// SetOrdinal updates a single node's ordinal.
func (s *MemoryNodeStore) SetOrdinal(ctx context.Context, id uuid.UUID, ordinal int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return &node.StoreError{Code: node.ErrNotFound, Message: "node not found", Path: id.String()}
	}
	rec.node.Ordinal = ordinal
	rec.node.Modified = time.Now()
	return nil
}

// SetContentID updates a single node's content reference.
func (s *MemoryNodeStore) SetContentID(ctx context.Context, id uuid.UUID, contentID node.ContentID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return &node.StoreError{Code: node.ErrNotFound, Message: "node not found", Path: id.String()}
	}
	rec.node.ContentID = contentID
	rec.node.Modified = time.Now()
	return nil
}

// RenameNode changes a node's display name, keeping its folder and ordinal.
func (s *MemoryNodeStore) RenameNode(ctx context.Context, id uuid.UUID, newName string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validName(newName); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return &node.StoreError{Code: node.ErrNotFound, Message: "node not found", Path: id.String()}
	}
	if rec.node.Name == newName {
		return nil
	}
	if _, exists := s.children[rec.folder][newName]; exists {
		return &node.StoreError{
			Code:    node.ErrAlreadyExists,
			Message: "name already exists",
			Path:    node.JoinPath(rec.folder, newName),
		}
	}

	oldPath := node.JoinPath(rec.folder, rec.node.Name)
	delete(s.children[rec.folder], rec.node.Name)
	s.children[rec.folder][newName] = id
	rec.node.Name = newName
	rec.node.Modified = time.Now()

	if rec.node.IsFolder() {
		s.rekeySubtree(oldPath, node.JoinPath(rec.folder, newName))
	}
	return nil
}

// MoveNode relocates a node (and its subtree, for folders) into targetFolder.
func (s *MemoryNodeStore) MoveNode(ctx context.Context, id uuid.UUID, targetFolder string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return &node.StoreError{Code: node.ErrNotFound, Message: "node not found", Path: id.String()}
	}
	if err := s.requireFolder(targetFolder); err != nil {
		return err
	}
	if rec.folder == targetFolder {
		return nil
	}
	if _, exists := s.children[targetFolder][rec.node.Name]; exists {
		return &node.StoreError{
			Code:    node.ErrAlreadyExists,
			Message: "name already exists in target folder",
			Path:    node.JoinPath(targetFolder, rec.node.Name),
		}
	}

	oldPath := node.JoinPath(rec.folder, rec.node.Name)
	if rec.node.IsFolder() && node.IsPathUnder(targetFolder, oldPath) {
		return &node.StoreError{
			Code:    node.ErrInvalidArgument,
			Message: "cannot move a folder into its own subtree",
			Path:    oldPath,
		}
	}

	delete(s.children[rec.folder], rec.node.Name)
	s.children[targetFolder][rec.node.Name] = id
	rec.folder = targetFolder
	rec.node.Modified = time.Now()

	if rec.node.IsFolder() {
		s.rekeySubtree(oldPath, node.JoinPath(targetFolder, rec.node.Name))
	}
	return nil
}

// rekeySubtree rewrites the children index and record folders after a folder
// at oldPath was renamed or moved to newPath. Descendant content and
// ordinals are untouched. Must be called with the write lock held.
func (s *MemoryNodeStore) rekeySubtree(oldPath, newPath string) {
	moved := make(map[string]map[string]uuid.UUID)
	for key, bucket := range s.children {
		if node.IsPathUnder(key, oldPath) {
			moved[newPath+key[len(oldPath):]] = bucket
			delete(s.children, key)
		}
	}
	for key, bucket := range moved {
		s.children[key] = bucket
	}
	for _, rec := range s.records {
		if node.IsPathUnder(rec.folder, oldPath) {
			rec.folder = newPath + rec.folder[len(oldPath):]
		}
	}
}

// DeleteNode removes a node; folders are removed with their whole subtree.
func (s *MemoryNodeStore) DeleteNode(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return &node.StoreError{Code: node.ErrNotFound, Message: "node not found", Path: id.String()}
	}

	delete(s.children[rec.folder], rec.node.Name)
	delete(s.records, id)

	if rec.node.IsFolder() {
		root := node.JoinPath(rec.folder, rec.node.Name)
		for key, bucket := range s.children {
			if node.IsPathUnder(key, root) {
				for _, childID := range bucket {
					delete(s.records, childID)
				}
				delete(s.children, key)
			}
		}
	}
	return nil
}

// FolderOf returns the path of the folder containing the node.
func (s *MemoryNodeStore) FolderOf(ctx context.Context, id uuid.UUID) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return "", &node.StoreError{Code: node.ErrNotFound, Message: "node not found", Path: id.String()}
	}
	return rec.folder, nil
}

// PathOf returns the node's full workspace path.
func (s *MemoryNodeStore) PathOf(ctx context.Context, id uuid.UUID) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return "", &node.StoreError{Code: node.ErrNotFound, Message: "node not found", Path: id.String()}
	}
	return node.JoinPath(rec.folder, rec.node.Name), nil
}

// Healthcheck always succeeds for the in-memory backend.
func (s *MemoryNodeStore) Healthcheck(ctx context.Context) error {
	return ctx.Err()
}

// Close is a no-op for the in-memory backend.
func (s *MemoryNodeStore) Close() error {
	return nil
}
