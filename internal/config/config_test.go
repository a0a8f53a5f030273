package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corona.toml")

	content := `
[inbound]
path = "/var/spool/ftn/inbound"

[msgbase]
path = "/var/spool/ftn/msgbase"

[log]
debug = true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Inbound.Path != "/var/spool/ftn/inbound" {
		t.Errorf("inbound.path = %q", cfg.Inbound.Path)
	}
	if cfg.Msgbase.Path != "/var/spool/ftn/msgbase" {
		t.Errorf("msgbase.path = %q", cfg.Msgbase.Path)
	}
	if !cfg.Log.Debug {
		t.Errorf("log.debug should be true")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}
