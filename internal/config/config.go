// Package config handles scene compiler configuration loading and management.
package config

import (
	"fmt"
	"runtime"
)

// Config holds all compiler settings.
type Config struct {
	Scene   SceneConfig   `yaml:"scene"`
	Buffers BuffersConfig `yaml:"buffers"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// SceneConfig controls how scene documents are found and resolved.
type SceneConfig struct {
	AssetDirs   []string `yaml:"asset_dirs"`  // Searched last to first
	Concurrency int      `yaml:"concurrency"` // Parallel mesh loads for markup scenes
}

// BuffersConfig holds the fixed record capacities of the encoded buffers.
type BuffersConfig struct {
	GridSide   int `yaml:"grid_side"` // Triangle capacity is GridSide^2
	Materials  int `yaml:"materials"`
	Spheres    int `yaml:"spheres"`
	Rectangles int `yaml:"rectangles"`
}

// OutputConfig holds where compiled buffers are written.
type OutputConfig struct {
	Dir      string `yaml:"dir"`
	Manifest bool   `yaml:"manifest"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Scene: SceneConfig{
			AssetDirs:   []string{"."},
			Concurrency: runtime.NumCPU(),
		},
		Buffers: BuffersConfig{
			GridSide:   256,
			Materials:  256,
			Spheres:    64,
			Rectangles: 64,
		},
		Output: OutputConfig{
			Dir:      "out",
			Manifest: true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports settings no compile can run with.
func (c *Config) Validate() error {
	if c.Buffers.GridSide <= 0 {
		return fmt.Errorf("buffers.grid_side must be positive, got %d", c.Buffers.GridSide)
	}
	if c.Buffers.Materials < 0 || c.Buffers.Spheres < 0 || c.Buffers.Rectangles < 0 {
		return fmt.Errorf("buffer capacities must not be negative")
	}
	if c.Scene.Concurrency < 0 {
		return fmt.Errorf("scene.concurrency must not be negative, got %d", c.Scene.Concurrency)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	return nil
}
