package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "memory", cfg.Node.Type)
	assert.Equal(t, "memory", cfg.Content.Type)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
logging:
  level: debug
node:
  type: sqlite
  options:
    path: /tmp/nodes.db
content:
  type: filesystem
  options:
    root: /tmp/blobs
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "DEBUG", cfg.Logging.Level, "level is normalized to uppercase")
	assert.Equal(t, "sqlite", cfg.Node.Type)
	assert.Equal(t, "/tmp/nodes.db", cfg.Node.Options["path"])
	assert.Equal(t, "filesystem", cfg.Content.Type)
}

func TestLoadRejectsUnknownBackends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
node:
  type: postgres
`), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "node.type")
}

func TestLoadRejectsBadLogLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
logging:
  level: verbose
`), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("QUANTAFS_LOGGING_LEVEL", "WARN")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "WARN", cfg.Logging.Level)
}
