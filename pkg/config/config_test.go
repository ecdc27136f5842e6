package config

import (
	"os"
	"path/filepath"
	"testing"
)

// TestDefaultConfig verifies the baseline values
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Mask.Background != 0 {
		t.Errorf("default background: expected 0, got %v", cfg.Mask.Background)
	}
	if cfg.Sequence.Delimiter != "." {
		t.Errorf("default delimiter: expected \".\", got %q", cfg.Sequence.Delimiter)
	}
	if cfg.Output.SavePreview {
		t.Error("preview should be off by default")
	}
}

// TestLoadConfigMissingFile verifies defaults are returned when no
// config file exists
func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() returned error: %v", err)
	}
	if cfg.Sequence.Delimiter != "." {
		t.Errorf("expected defaults, got delimiter %q", cfg.Sequence.Delimiter)
	}
}

// TestLoadConfigOverrides verifies YAML values replace defaults
func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "mask:\n  background: -1\nsequence:\n  delimiter: \"_\"\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() returned error: %v", err)
	}
	if cfg.Mask.Background != -1 {
		t.Errorf("background: expected -1, got %v", cfg.Mask.Background)
	}
	if cfg.Sequence.Delimiter != "_" {
		t.Errorf("delimiter: expected \"_\", got %q", cfg.Sequence.Delimiter)
	}
}

// TestSaveConfigRoundTrip verifies save-then-load preserves values
func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg := DefaultConfig()
	cfg.Mask.Background = 5
	cfg.Output.SavePreview = true

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig() returned error: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() returned error: %v", err)
	}
	if loaded.Mask.Background != 5 || !loaded.Output.SavePreview {
		t.Errorf("round-trip mismatch: %+v", loaded)
	}
}

// TestLoadConfigBadYAML verifies the parse error path
func TestLoadConfigBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("mask: ["), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Error("LoadConfig() should fail on malformed YAML")
	}
}
