// Package config loads server configuration from a TOML file.
//
// Every field has a default so the server runs with no config file at all;
// command-line flags in cmd/server override whatever the file provides.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds all benefit-engine server configuration.
type Config struct {
	Server ServerConfig `toml:"server"`
	Sync   SyncConfig   `toml:"sync"`
	CORS   CORSConfig   `toml:"cors"`
}

// ServerConfig holds HTTP and storage settings.
type ServerConfig struct {
	Port   int    `toml:"port"`
	DBPath string `toml:"db_path"`
	Mode   string `toml:"mode"` // "prod" or "test"
}

// SyncConfig holds debounced-persistence settings.
type SyncConfig struct {
	// DebounceMillis is the quiet interval after the last mutation before
	// a snapshot is written. A newer mutation replaces the pending write.
	DebounceMillis int `toml:"debounce_ms"`
}

// CORSConfig holds allowed browser origins.
type CORSConfig struct {
	Origins []string `toml:"origins"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:   8080,
			DBPath: "benefits.db",
			Mode:   "prod",
		},
		Sync: SyncConfig{
			DebounceMillis: 500,
		},
		CORS: CORSConfig{
			Origins: []string{"http://localhost:5173", "http://localhost:8080"},
		},
	}
}

// Load reads the config file at path, returning defaults if it doesn't
// exist. An empty path skips the file entirely.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
