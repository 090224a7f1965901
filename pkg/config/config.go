// Package config loads and validates the runtime configuration.
//
// Configuration comes from three sources, highest precedence first:
// environment variables (QUANTAFS_*), a YAML config file, and built-in
// defaults. Store backends are selected by a "type" discriminator with the
// backend-specific options held in a free-form map decoded by the factory
// for that type.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the root configuration.
type Config struct {
	// Logging configures the process-wide logger.
	Logging LoggingConfig `mapstructure:"logging"`

	// Node selects and configures the tree persistence backend.
	Node StoreConfig `mapstructure:"node"`

	// Content selects and configures the document body backend.
	Content StoreConfig `mapstructure:"content"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is one of DEBUG, INFO, WARN, ERROR (case-insensitive).
	Level string `mapstructure:"level" validate:"omitempty,oneof=DEBUG INFO WARN ERROR"`

	// Output is a file path for log output; empty means stdout.
	Output string `mapstructure:"output"`
}

// StoreConfig selects a storage backend by type.
//
// Options carries the backend-specific settings and is decoded by the
// matching factory, so adding a backend never changes this struct.
type StoreConfig struct {
	Type    string         `mapstructure:"type" validate:"required"`
	Options map[string]any `mapstructure:"options"`
}

// Load loads configuration from file, environment, and defaults.
//
// An empty configPath falls back to the default location
// ($XDG_CONFIG_HOME/quantafs/config.yaml); a missing file there is not an
// error, the defaults apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// setupViper configures environment variable support and the config file
// search path.
//
// Environment variables use the QUANTAFS_ prefix with underscores, e.g.
// QUANTAFS_LOGGING_LEVEL=DEBUG.
func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("QUANTAFS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only overrides keys viper already knows about, so the
	// scalar keys are registered here; real defaults live in ApplyDefaults.
	v.SetDefault("logging.level", "")
	v.SetDefault("logging.output", "")
	v.SetDefault("node.type", "")
	v.SetDefault("content.type", "")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists.
func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		// An explicitly named file that is missing is also acceptable.
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// getConfigDir returns the configuration directory, preferring
// XDG_CONFIG_HOME and falling back to ~/.config.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "quantafs")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "quantafs")
}
