// Package config loads corona's TOML configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config is the full contents of corona.toml.
type Config struct {
	Inbound Inbound `toml:"inbound"`
	Msgbase Msgbase `toml:"msgbase"`
	Log     Log     `toml:"log"`
}

// Inbound names the directory the mailer drops packets and bundles into.
type Inbound struct {
	Path string `toml:"path"`
}

// Msgbase names the directory holding one SQLite file per message area.
type Msgbase struct {
	Path string `toml:"path"`
}

// Log configures process logging.
type Log struct {
	Debug bool `toml:"debug"`
	JSON  bool `toml:"json"`
}

// Load reads and parses the TOML file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return &cfg, nil
}

// DefaultPath returns $XDG_CONFIG_HOME/corona/corona.toml (or its
// platform equivalent via os.UserConfigDir).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve config dir: %w", err)
	}
	return filepath.Join(dir, "corona", "corona.toml"), nil
}
