package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagRAMCopy    = flag.Bool("ramcpy", false, "Keep host copies of vertex and index data")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
)

// ParseFlags parses command-line flags. The first positional argument, if
// any, is the mesh file.
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the path given with -config.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags overrides file values with the flags that were set.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagRAMCopy {
		cfg.Mesh.RAMCopy = true
	}
	if *flagWindowed {
		cfg.Viewer.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Viewer.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Viewer.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Viewer.Height = *flagHeight
	}
	if path := flag.Arg(0); path != "" {
		cfg.Mesh.Path = path
	}
}
