// scenec compiles mesh and markup scenes into fixed-stride texel buffers.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/texelscene/internal/assets"
	"github.com/Faultbox/texelscene/internal/config"
	"github.com/Faultbox/texelscene/internal/logger"
	"github.com/Faultbox/texelscene/internal/scene"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "compile", "c":
		cmdCompile(args)
	case "info":
		cmdInfo(args)
	case "config":
		cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`scenec - scene to texel buffer compiler

Usage:
  scenec <command> [options]

Commands:
  compile <scene.obj|scene.xml>   Compile a scene and write buffers
  info <scene.obj|scene.xml>      Compile a scene and print a summary
  config [-save path]             Print the effective configuration

Options (all commands):
  -config <file>   Config file (default ./scenec.yaml)
  -debug           Enable debug logging
  -out <dir>       Output directory
  -grid <n>        Triangle grid side, capacity n*n
  -assets <dirs>   Extra comma-separated asset directories

Examples:
  scenec compile scenes/cornell.xml
  scenec compile -grid 512 -out build meshes/bunny.obj
  scenec info -assets shared scenes/room.xml
  scenec config -save ./scenec.yaml`)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	logger.Sync()
	os.Exit(1)
}

// setup parses the shared flags, loads config and starts logging.
func setup(name string, args []string) (*flag.FlagSet, *config.Config) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	flags := config.RegisterFlags(fs)
	fs.Parse(args)

	cfg, err := config.Load(flags)
	if err != nil {
		fatalf("%v", err)
	}
	if err := logger.InitConsole(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fatalf("%v", err)
	}
	return fs, cfg
}

// compileScene resolves the scene argument against the configured asset
// directories. A path to an existing file also adds its directory as the
// highest-priority root.
func compileScene(ctx context.Context, cfg *config.Config, arg string) (*scene.Compiled, error) {
	mgr := assets.NewManager()
	for _, dir := range cfg.Scene.AssetDirs {
		if err := mgr.AddDir(dir); err != nil {
			logger.Warn("asset directory skipped", zap.String("dir", dir), zap.Error(err))
		}
	}

	name := arg
	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		if err := mgr.AddDir(filepath.Dir(arg)); err != nil {
			return nil, err
		}
		name = filepath.Base(arg)
	}

	c, err := scene.Compile(ctx, mgr, name, scene.Options{
		Capacities: scene.Capacities{
			GridSide:   cfg.Buffers.GridSide,
			Materials:  cfg.Buffers.Materials,
			Spheres:    cfg.Buffers.Spheres,
			Rectangles: cfg.Buffers.Rectangles,
		},
		Concurrency: cfg.Scene.Concurrency,
	})
	if err != nil {
		return nil, err
	}

	hits, misses := mgr.CacheStats()
	logger.Debug("asset cache", zap.Int("hits", hits), zap.Int("misses", misses))
	return c, nil
}

func cmdCompile(args []string) {
	fs, cfg := setup("compile", args)
	defer logger.Sync()

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: scenec compile [options] <scene>")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c, err := compileScene(ctx, cfg, fs.Arg(0))
	if err != nil {
		fatalf("%v", err)
	}
	if err := c.WriteOutput(cfg.Output.Dir, cfg.Output.Manifest); err != nil {
		fatalf("%v", err)
	}

	printBuffers(c.Manifest())
	fmt.Printf("\nWrote %s\n", cfg.Output.Dir)
}

func cmdInfo(args []string) {
	fs, cfg := setup("info", args)
	defer logger.Sync()

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: scenec info [options] <scene>")
		os.Exit(1)
	}

	c, err := compileScene(context.Background(), cfg, fs.Arg(0))
	if err != nil {
		fatalf("%v", err)
	}
	m := c.Manifest()

	fmt.Printf("Scene:    %s\n", m.Source)
	fmt.Printf("Build:    %s\n", m.BuildID)
	fmt.Printf("Lights:   %d\n", m.Lights)
	if m.Bounds != nil {
		fmt.Printf("Bounds:   %v .. %v\n", m.Bounds.Min, m.Bounds.Max)
	}
	if m.Degenerate > 0 {
		fmt.Printf("Degenerate triangles: %d\n", m.Degenerate)
	}
	fmt.Println()
	printBuffers(m)

	if len(m.Materials) > 0 {
		fmt.Println()
		fmt.Println("Materials:")
		for _, mat := range m.Materials {
			fmt.Printf("  %3d %-24s [%d, %d)\n", mat.ID, mat.Name, mat.Start, mat.End)
		}
	}

	if m.Camera != nil {
		fmt.Println()
		fmt.Printf("Camera:   pos %v dir %v up %v fov %.1f\n",
			m.Camera.Position, m.Camera.Direction, m.Camera.Up, m.Camera.FOV)
	}

	for _, s := range m.Skipped {
		fmt.Printf("Skipped:  %s\n", s)
	}
}

func printBuffers(m *scene.Manifest) {
	fmt.Println("Buffers:")
	for _, b := range m.Buffers {
		line := fmt.Sprintf("  %-11s %6d / %-6d stride %d", b.Name, b.Count, b.Capacity, b.Stride)
		if b.Dropped > 0 {
			line += fmt.Sprintf("  (%d dropped)", b.Dropped)
		}
		fmt.Println(line)
	}
}

func cmdConfig(args []string) {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	flags := config.RegisterFlags(fs)
	savePath := fs.String("save", "", "Write the effective config to this path")
	fs.Parse(args)

	cfg, err := config.Load(flags)
	if err != nil {
		fatalf("%v", err)
	}

	if *savePath != "" {
		if err := cfg.SaveTo(*savePath); err != nil {
			fatalf("%v", err)
		}
		fmt.Printf("Saved %s\n", *savePath)
		return
	}

	data, err := cfg.Marshal()
	if err != nil {
		fatalf("%v", err)
	}
	os.Stdout.Write(data)
}
