package config

import "strings"

// ApplyDefaults fills in defaults for any unset values and normalizes the
// log level to uppercase.
func ApplyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "INFO"
	}
	cfg.Logging.Level = strings.ToUpper(cfg.Logging.Level)

	if cfg.Node.Type == "" {
		cfg.Node.Type = "memory"
	}
	if cfg.Content.Type == "" {
		cfg.Content.Type = "memory"
	}
}
