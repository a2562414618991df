package config

import (
	"flag"
	"strings"
)

// Flags holds command-line overrides. Zero values mean "not set".
type Flags struct {
	Config string
	Debug  bool
	Out    string
	Grid   int
	Assets string // Comma-separated extra asset directories
}

// RegisterFlags binds the shared override flags to fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.Out, "out", "", "Output directory")
	fs.IntVar(&f.Grid, "grid", 0, "Triangle texel grid side (capacity = grid^2)")
	fs.StringVar(&f.Assets, "assets", "", "Comma-separated asset directories, highest priority last")
	return f
}

// ConfigPath returns the explicit config path if provided via -config.
func (f *Flags) ConfigPath() string {
	if f == nil {
		return ""
	}
	return f.Config
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f == nil {
		return
	}
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Out != "" {
		cfg.Output.Dir = f.Out
	}
	if f.Grid > 0 {
		cfg.Buffers.GridSide = f.Grid
	}
	if f.Assets != "" {
		for _, dir := range strings.Split(f.Assets, ",") {
			if dir = strings.TrimSpace(dir); dir != "" {
				cfg.Scene.AssetDirs = append(cfg.Scene.AssetDirs, dir)
			}
		}
	}
}
