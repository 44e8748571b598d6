// Package config loads settings for the CLI and server. Defaults are
// overridden by an optional ~/.taxon/config.toml, which is in turn
// overridden by environment variables, so scripted use never needs the
// file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the tunable settings.
type Config struct {
	DBPath     string `toml:"db_path"`
	Addr       string `toml:"addr"`
	EmbedModel string `toml:"embed_model"`
}

// Load resolves the configuration: defaults, then config.toml if present,
// then TAXON_DB / TAXON_ADDR / TAXON_EMBED_MODEL environment variables.
func Load() (*Config, error) {
	home, _ := os.UserHomeDir()

	cfg := &Config{
		DBPath: filepath.Join(home, ".taxon", "taxon.db"),
		Addr:   ":8080",
	}

	path := filepath.Join(home, ".taxon", "config.toml")
	if data, err := os.ReadFile(path); err == nil {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if v := os.Getenv("TAXON_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("TAXON_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("TAXON_EMBED_MODEL"); v != "" {
		cfg.EmbedModel = v
	}

	return cfg, nil
}
