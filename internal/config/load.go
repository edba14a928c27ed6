package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrNoMeshPath is returned by Validate when no mesh file was given.
var ErrNoMeshPath = errors.New("no mesh file given")

// Load builds the configuration: defaults < file < flags.
func Load() (*Config, error) {
	cfg := Default()

	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}
	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	applyFlags(cfg)
	return cfg, nil
}

// Validate checks the settings the viewer cannot run without.
func (c *Config) Validate() error {
	if c.Mesh.Path == "" {
		return ErrNoMeshPath
	}
	if c.Viewer.Width <= 0 || c.Viewer.Height <= 0 {
		return fmt.Errorf("invalid window size %dx%d", c.Viewer.Width, c.Viewer.Height)
	}
	return nil
}

func findConfigFile() string {
	candidates := []string{
		"./skmesh.yaml",
		"./skmesh.toml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-specific config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "skmesh")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "skmesh")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "skmesh")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "skmesh")
	}
}

// loadFromFile merges a YAML or, for a .toml extension, TOML file over cfg.
// Unknown keys are an error.
func loadFromFile(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		dec := toml.NewDecoder(f)
		dec.DisallowUnknownFields()
		return dec.Decode(cfg)
	}

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
