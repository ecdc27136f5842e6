// Package config provides configuration loading and management for
// rois2nifti. It handles loading configuration from YAML files and
// provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Mask parameters
	Mask struct {
		// Background is the voxel value outside every region of
		// interest (the "region of boredom")
		Background float64 `yaml:"background"`
	} `yaml:"mask"`

	// Sequence parameters
	Sequence struct {
		// Delimiter splits image filenames into segments for the
		// fallback slice sort
		Delimiter string `yaml:"delimiter"`
	} `yaml:"sequence"`

	// Output parameters
	Output struct {
		// SavePreview determines whether per-plane preview JPEGs are
		// written next to the volume
		SavePreview bool `yaml:"savePreview"`

		// PreviewDir is the directory for preview images
		PreviewDir string `yaml:"previewDir"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Mask.Background = 0
	cfg.Sequence.Delimiter = "."
	cfg.Output.SavePreview = false
	cfg.Output.PreviewDir = "mask_preview"

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the
// specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
