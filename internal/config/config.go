// Package config handles loading of the mesh tools' settings.
package config

// Config holds all settings.
type Config struct {
	Mesh    MeshConfig    `yaml:"mesh" toml:"mesh"`
	Viewer  ViewerConfig  `yaml:"viewer" toml:"viewer"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

// MeshConfig holds the file to load and how to decode it.
type MeshConfig struct {
	Path    string `yaml:"path" toml:"path"`
	RAMCopy bool   `yaml:"ram_copy" toml:"ram_copy"` // keep host copies of vertex and index data
}

// ViewerConfig holds window settings for the viewer.
type ViewerConfig struct {
	Title      string     `yaml:"title" toml:"title"`
	Width      int        `yaml:"width" toml:"width"`
	Height     int        `yaml:"height" toml:"height"`
	Fullscreen bool       `yaml:"fullscreen" toml:"fullscreen"`
	VSync      bool       `yaml:"vsync" toml:"vsync"`
	ClearColor [3]float32 `yaml:"clear_color,flow" toml:"clear_color"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// Default returns a Config with the default values.
func Default() *Config {
	return &Config{
		Viewer: ViewerConfig{
			Title:      "skmesh",
			Width:      1280,
			Height:     720,
			VSync:      true,
			ClearColor: [3]float32{0.18, 0.2, 0.24},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
