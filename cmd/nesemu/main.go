// Package main implements the nesemu NES emulator executable.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang/glog"

	"nesemu/internal/app"
	"nesemu/internal/graphics"
	"nesemu/internal/ppu"
	"nesemu/internal/version"
)

func main() {
	var (
		romFile    = flag.String("rom", "", "Path to NES ROM file (may also be given as the first argument)")
		configFile = flag.String("config", "", "Path to configuration file")
		backend    = flag.String("backend", "", "Graphics backend: ebitengine, sdl, headless, terminal")
		palette    = flag.String("palette", "", "Path to a 192-byte .pal system palette")
		scale      = flag.Int("scale", 0, "Window scale factor")
		traceFile  = flag.String("trace", "", "Write a nestest-format instruction trace to this file")
		frames     = flag.Int("frames", 0, "Stop after this many frames (0 = run until closed)")
		nogui      = flag.Bool("nogui", false, "Run without GUI (headless mode)")
		dumpDir    = flag.String("dump", "", "Directory for PPM frame dumps (headless backend)")
		chrFile    = flag.String("chr", "", "Export the pattern tables to this PNG file")
		chrView    = flag.Bool("chrview", false, "Show the pattern tables in a window instead of running (sdl builds)")
		statsView  = flag.Bool("statsview", false, "Serve Go runtime statistics while running")
		memvizFile = flag.String("memviz", "", "Write a Graphviz dump of the console state on exit and on F12")
		help       = flag.Bool("help", false, "Show help message")
		showVer    = flag.Bool("version", false, "Show version information")
	)

	// Log to stderr unless the glog flags say otherwise
	flag.Set("logtostderr", "true")
	flag.Parse()
	defer glog.Flush()

	if *help {
		printUsage()
		return
	}
	build := version.Read()
	if *showVer {
		build.Print(os.Stdout)
		return
	}

	if *romFile == "" && flag.NArg() > 0 {
		*romFile = flag.Arg(0)
	}
	if *romFile == "" {
		printUsage()
		os.Exit(2)
	}

	glog.Infof("[APP] %s", build)

	config, err := loadConfig(*configFile)
	if err != nil {
		glog.Exitf("[APP] %v", err)
	}

	// Only flags given on the command line override the config file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "backend":
			config.Video.Backend = *backend
		case "palette":
			config.Video.Palette = *palette
		case "scale":
			config.Window.Scale = *scale
			config.Window.Width = ppu.Width * *scale
			config.Window.Height = ppu.Height * *scale
		case "trace":
			config.Emulation.TraceFile = *traceFile
		case "frames":
			config.Emulation.FrameLimit = *frames
		case "dump":
			config.Debug.DumpDir = *dumpDir
		case "chr":
			config.Debug.CHRFile = *chrFile
		case "chrview":
			config.Debug.CHRWindow = *chrView
		case "statsview":
			config.Debug.StatsView = *statsView
		case "memviz":
			config.Debug.MemvizFile = *memvizFile
		}
	})
	if *nogui {
		config.Video.Backend = string(graphics.BackendHeadless)
	}

	if err := run(config, *romFile); err != nil {
		glog.Errorf("[APP] %v", err)
		glog.Flush()
		os.Exit(1)
	}
}

// loadConfig reads the configuration file. The default file is only read
// when it exists; an explicitly named file is created if missing.
func loadConfig(path string) (*app.Config, error) {
	config := app.NewConfig()

	if path == "" {
		path = app.GetDefaultConfigPath()
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return config, nil
		}
	}

	if err := config.LoadFromFile(path); err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	glog.V(1).Infof("[APP] configuration loaded from %s", path)
	return config, nil
}

func run(config *app.Config, romFile string) error {
	application, err := app.NewApplication(config)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	defer func() {
		if err := application.Cleanup(); err != nil {
			glog.Errorf("[APP] cleanup error: %v", err)
		}
	}()

	if err := application.LoadROM(romFile); err != nil {
		return err
	}

	if config.Debug.CHRWindow {
		return application.ShowPatternTables()
	}

	setupGracefulShutdown(application)

	if err := application.Run(); err != nil {
		return fmt.Errorf("application run failed: %w", err)
	}

	glog.Infof("[APP] %d frames in %v (%.1f FPS)",
		application.GetFrameCount(), application.GetUptime(), application.GetFPS())
	return nil
}

// setupGracefulShutdown stops the main loop on the first interrupt and exits
// on the second
func setupGracefulShutdown(application *app.Application) {
	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		glog.Infof("[APP] interrupt received, shutting down")
		application.Stop()
		<-c
		glog.Flush()
		os.Exit(1)
	}()
}

func printUsage() {
	fmt.Println("nesemu - NES emulator")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  nesemu [options] <rom.nes>")
	fmt.Println("  nesemu -nogui -frames 600 -dump frames/ <rom.nes>")
	fmt.Println()
	fmt.Println("OPTIONS:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("CONTROLS:")
	fmt.Println("  Player 1:")
	fmt.Println("    Arrow Keys / WASD - D-Pad")
	fmt.Println("    J / X             - A Button")
	fmt.Println("    K / Z             - B Button")
	fmt.Println("    Enter             - Start")
	fmt.Println("    Space             - Select")
	fmt.Println("  Player 2:")
	fmt.Println("    1-4               - D-Pad (up, down, left, right)")
	fmt.Println("    5 / 6             - A / B")
	fmt.Println("    7 / 8             - Start / Select")
	fmt.Println()
	fmt.Println("  Special Keys:")
	fmt.Println("    Escape            - Quit")
	fmt.Println("    F1                - Reset")
	fmt.Println("    F2                - Pause")
	fmt.Println("    F3                - Step one instruction (while paused)")
	fmt.Println("    F12               - Console state dump (with -memviz)")
	fmt.Println()
	fmt.Println("CONFIGURATION:")
	fmt.Printf("  Config file: %s\n", app.GetDefaultConfigPath())
	fmt.Println("  ROMs:        ./roms/")
	fmt.Println()
	fmt.Println("SUPPORTED FORMATS:")
	fmt.Println("  - iNES (.nes), NROM (Mapper 0)")
}
