// Package fs implements ContentStore on the local filesystem.
package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Clay-Ferguson/quanta-sub001/pkg/store/node"
)

// FilesystemContentStore implements content.ContentStore with one file per
// blob under a root directory.
//
// Layout:
// Blobs are sharded by the first two characters of the ContentID
// ("<root>/ab/ab12cd...") to keep directory fan-out bounded for large
// workspaces.
//
// Writes go to a temp file in the same directory followed by a rename, so a
// crash never leaves a partially written blob under its final name.
type FilesystemContentStore struct {
	root string
}

// Config contains configuration for the filesystem content store.
type Config struct {
	// Root is the directory all blobs are stored under. Created if missing.
	Root string `mapstructure:"root"`
}

// NewFilesystemContentStore creates the root directory if needed and returns
// a store over it.
func NewFilesystemContentStore(config Config) (*FilesystemContentStore, error) {
	if config.Root == "" {
		return nil, fmt.Errorf("content store root directory is required")
	}
	if err := os.MkdirAll(config.Root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create content root %s: %w", config.Root, err)
	}
	return &FilesystemContentStore{root: config.Root}, nil
}

// blobPath maps a ContentID to its on-disk path.
func (s *FilesystemContentStore) blobPath(id node.ContentID) string {
	shard := "00"
	if len(id) >= 2 {
		shard = string(id[:2])
	}
	return filepath.Join(s.root, shard, string(id))
}

// Write stores data under id, replacing any previous content.
func (s *FilesystemContentStore) Write(ctx context.Context, id node.ContentID, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := s.blobPath(id)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create shard directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write content %s: %w", id, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to finalize content %s: %w", id, err)
	}
	return nil
}

// Read returns the full content for id.
func (s *FilesystemContentStore) Read(ctx context.Context, id node.ContentID) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.blobPath(id))
	if os.IsNotExist(err) {
		return nil, &node.StoreError{Code: node.ErrNotFound, Message: "content not found", Path: string(id)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read content %s: %w", id, err)
	}
	return data, nil
}

// Delete removes the content for id.
func (s *FilesystemContentStore) Delete(ctx context.Context, id node.ContentID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := os.Remove(s.blobPath(id))
	if os.IsNotExist(err) {
		return &node.StoreError{Code: node.ErrNotFound, Message: "content not found", Path: string(id)}
	}
	if err != nil {
		return fmt.Errorf("failed to delete content %s: %w", id, err)
	}
	return nil
}

// Healthcheck verifies the root directory is accessible.
func (s *FilesystemContentStore) Healthcheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	info, err := os.Stat(s.root)
	if err != nil {
		return fmt.Errorf("content root inaccessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("content root %s is not a directory", s.root)
	}
	return nil
}

// Close is a no-op for the filesystem backend.
func (s *FilesystemContentStore) Close() error {
	return nil
}
