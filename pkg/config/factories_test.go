package config

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateNodeStore(t *testing.T) {
	ctx := context.Background()

	t.Run("Memory", func(t *testing.T) {
		store, err := CreateNodeStore(ctx, StoreConfig{Type: "memory"})
		require.NoError(t, err)
		defer store.Close()
		assert.NoError(t, store.Healthcheck(ctx))
	})

	t.Run("Sqlite", func(t *testing.T) {
		store, err := CreateNodeStore(ctx, StoreConfig{
			Type:    "sqlite",
			Options: map[string]any{"path": filepath.Join(t.TempDir(), "nodes.db")},
		})
		require.NoError(t, err)
		defer store.Close()
		assert.NoError(t, store.Healthcheck(ctx))
	})

	t.Run("Badger", func(t *testing.T) {
		store, err := CreateNodeStore(ctx, StoreConfig{
			Type:    "badger",
			Options: map[string]any{"db_path": t.TempDir()},
		})
		require.NoError(t, err)
		defer store.Close()
		assert.NoError(t, store.Healthcheck(ctx))
	})

	t.Run("BadgerWithoutPath", func(t *testing.T) {
		_, err := CreateNodeStore(ctx, StoreConfig{Type: "badger"})
		require.Error(t, err)
	})

	t.Run("Unknown", func(t *testing.T) {
		_, err := CreateNodeStore(ctx, StoreConfig{Type: "postgres"})
		require.Error(t, err)
	})
}

func TestCreateContentStore(t *testing.T) {
	ctx := context.Background()

	t.Run("Memory", func(t *testing.T) {
		store, err := CreateContentStore(ctx, StoreConfig{Type: "memory"})
		require.NoError(t, err)
		defer store.Close()
		assert.NoError(t, store.Healthcheck(ctx))
	})

	t.Run("Filesystem", func(t *testing.T) {
		store, err := CreateContentStore(ctx, StoreConfig{
			Type:    "filesystem",
			Options: map[string]any{"root": t.TempDir()},
		})
		require.NoError(t, err)
		defer store.Close()
		assert.NoError(t, store.Healthcheck(ctx))
	})

	t.Run("S3MissingBucket", func(t *testing.T) {
		_, err := CreateContentStore(ctx, StoreConfig{
			Type:    "s3",
			Options: map[string]any{"region": "us-east-1"},
		})
		require.Error(t, err)
	})

	t.Run("Unknown", func(t *testing.T) {
		_, err := CreateContentStore(ctx, StoreConfig{Type: "gcs"})
		require.Error(t, err)
	})
}
