package app

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang/glog"

	"nesemu/internal/bus"
	"nesemu/internal/cartridge"
	"nesemu/internal/cpu"
	"nesemu/internal/debug"
	"nesemu/internal/graphics"
	"nesemu/internal/input"
	"nesemu/internal/ppu"
)

const windowTitle = "nesemu"

// Application represents the main NES emulator application
type Application struct {
	// Core emulation components
	bus      *bus.Bus
	emulator *Emulator
	input    *input.InputState

	// Graphics backend
	graphicsBackend graphics.Backend
	window          graphics.Window

	// Debug tools
	stats      *debug.StatsServer
	traceFile  *os.File
	traceWrite *bufio.Writer

	config *Config

	// Control flags
	running     bool
	paused      bool
	initialized bool
	headless    bool

	// Performance tracking
	frameCount      uint64
	startTime       time.Time
	lastFPSTime     time.Time
	lastFPSFrames   uint64
	currentFPS      float64
	lastRenderError time.Time

	// ROM management
	romPath   string
	cartridge *cartridge.Cartridge
}

// ApplicationError represents application-specific errors
type ApplicationError struct {
	Component string
	Operation string
	Err       error
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("Application %s error during %s: %v", e.Component, e.Operation, e.Err)
}

func (e *ApplicationError) Unwrap() error {
	return e.Err
}

// NewApplication creates a new NES emulator application
func NewApplication(config *Config) (*Application, error) {
	if config == nil {
		config = NewConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, &ApplicationError{Component: "config", Operation: "validate", Err: err}
	}

	app := &Application{
		config:    config,
		startTime: time.Now(),
	}

	if err := app.initializeComponents(); err != nil {
		return nil, &ApplicationError{
			Component: "initialization",
			Operation: "component setup",
			Err:       err,
		}
	}

	return app, nil
}

// initializeComponents initializes all application components
func (app *Application) initializeComponents() error {
	app.bus = bus.New()
	app.input = input.NewInputState()

	if path := app.config.Video.Palette; path != "" {
		palette, err := ppu.LoadPaletteFile(path)
		if err != nil {
			return fmt.Errorf("failed to load palette: %w", err)
		}
		app.bus.PPU.SetSystemPalette(palette)
		glog.Infof("[APP] loaded palette %s", path)
	}

	if err := app.initializeGraphicsBackend(); err != nil {
		return fmt.Errorf("failed to initialize graphics backend: %w", err)
	}

	app.emulator = NewEmulator(app.bus, app.config)

	app.initialized = true
	return nil
}

// initializeGraphicsBackend initializes the graphics backend based on configuration
func (app *Application) initializeGraphicsBackend() error {
	backendType := graphics.BackendType(app.config.Video.Backend)
	app.headless = backendType == graphics.BackendHeadless

	var err error
	app.graphicsBackend, err = graphics.CreateBackend(backendType)
	if err != nil {
		return err
	}

	graphicsConfig := graphics.Config{
		WindowTitle:  windowTitle,
		WindowWidth:  app.config.Window.Width,
		WindowHeight: app.config.Window.Height,
		Fullscreen:   app.config.Window.Fullscreen,
		VSync:        app.config.Video.VSync,
		Filter:       app.config.Video.Filter,
		Headless:     app.headless,
		DumpDir:      app.config.Debug.DumpDir,
		DumpInterval: app.config.Debug.DumpInterval,
	}

	if err := app.graphicsBackend.Initialize(graphicsConfig); err != nil {
		if app.headless {
			return err
		}
		// No display (or a backend missing from this build): keep running headless
		glog.Warningf("[APP] %s backend failed (%v), falling back to headless mode", app.graphicsBackend.GetName(), err)
		app.graphicsBackend = graphics.NewHeadlessBackend()
		app.headless = true
		graphicsConfig.Headless = true
		if err := app.graphicsBackend.Initialize(graphicsConfig); err != nil {
			return fmt.Errorf("failed to initialize fallback headless backend: %w", err)
		}
	}

	app.window, err = app.graphicsBackend.CreateWindow(
		graphicsConfig.WindowTitle,
		graphicsConfig.WindowWidth,
		graphicsConfig.WindowHeight,
	)
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}

	glog.Infof("[APP] using %s backend", app.graphicsBackend.GetName())
	return nil
}

// resolveROMPath looks up a ROM name in the configured ROM directory when it
// does not exist as given
func (app *Application) resolveROMPath(romPath string) string {
	if _, err := os.Stat(romPath); err == nil || filepath.IsAbs(romPath) || app.config.Paths.ROMs == "" {
		return romPath
	}
	candidate := filepath.Join(app.config.Paths.ROMs, romPath)
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return romPath
}

// LoadROM loads a ROM file into the emulator
func (app *Application) LoadROM(romPath string) error {
	if !app.initialized {
		return errors.New("application not initialized")
	}

	romPath = app.resolveROMPath(romPath)
	cart, err := cartridge.LoadFromFile(romPath)
	if err != nil {
		return &ApplicationError{Component: "cartridge", Operation: "load ROM", Err: err}
	}
	cart.LogDiagnostics()

	if err := app.bus.LoadCartridge(cart); err != nil {
		return &ApplicationError{Component: "bus", Operation: "insert cartridge", Err: err}
	}

	app.cartridge = cart
	app.romPath = romPath

	if err := app.openTrace(); err != nil {
		return &ApplicationError{Component: "trace", Operation: "open", Err: err}
	}

	if path := app.config.Debug.CHRFile; path != "" {
		if err := debug.SavePatternTables(path, app.bus); err != nil {
			return &ApplicationError{Component: "debug", Operation: "export pattern tables", Err: err}
		}
		glog.Infof("[APP] pattern tables written to %s", path)
	}

	if app.window != nil {
		app.window.SetTitle(fmt.Sprintf("%s - %s", windowTitle, filepath.Base(romPath)))
	}

	app.emulator.Reset()
	app.emulator.Start()
	return nil
}

// openTrace starts the instruction log if one is configured
func (app *Application) openTrace() error {
	app.closeTrace()

	path := app.config.Emulation.TraceFile
	if path == "" {
		return nil
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	app.traceFile = file
	app.traceWrite = bufio.NewWriter(file)
	app.bus.SetTrace(app.traceWrite)
	glog.Infof("[APP] tracing instructions to %s", path)
	return nil
}

// closeTrace flushes and closes the instruction log
func (app *Application) closeTrace() error {
	if app.traceFile == nil {
		return nil
	}

	app.bus.SetTrace(nil)
	err := app.traceWrite.Flush()
	if cerr := app.traceFile.Close(); err == nil {
		err = cerr
	}
	app.traceFile = nil
	app.traceWrite = nil
	return err
}

// ShowPatternTables opens the pattern table viewer for the loaded ROM
func (app *Application) ShowPatternTables() error {
	if app.cartridge == nil {
		return errors.New("no ROM loaded")
	}
	return debug.ShowPatternTables(fmt.Sprintf("%s - CHR %s", windowTitle, filepath.Base(app.romPath)), app.bus)
}

// Run starts the main application loop
func (app *Application) Run() error {
	if !app.initialized {
		return errors.New("application not initialized")
	}
	if app.cartridge == nil {
		return errors.New("no ROM loaded")
	}

	app.running = true
	app.startTime = time.Now()
	app.lastFPSTime = app.startTime

	if app.config.Debug.StatsView {
		app.stats = debug.NewStatsServer(app.config.Debug.StatsAddress)
		app.stats.Start()
	}

	// Ebitengine owns the main loop and calls back once per tick
	if loop, ok := app.window.(graphics.LoopWindow); ok {
		loop.SetUpdateFunc(app.tick)
		err := loop.Run()
		app.running = false
		return err
	}

	next := time.Now()
	for app.running {
		if err := app.tick(); err != nil {
			if errors.Is(err, graphics.ErrWindowClosed) {
				break
			}
			return err
		}

		// Headless runs as fast as possible
		if !app.headless {
			next = next.Add(app.emulator.GetTargetFrameTime())
			if wait := time.Until(next); wait > 0 {
				time.Sleep(wait)
			} else {
				next = time.Now()
			}
		}
	}

	glog.V(1).Infof("[APP] main loop ended after %d frames", app.frameCount)
	return nil
}

// tick processes input, runs one frame and presents it
func (app *Application) tick() error {
	app.processInput()
	if !app.running {
		return graphics.ErrWindowClosed
	}

	if err := app.updateEmulator(); err != nil {
		app.running = false
		return &ApplicationError{Component: "emulator", Operation: "run frame", Err: err}
	}

	if err := app.render(); err != nil {
		// Presentation failures are not fatal to emulation
		if time.Since(app.lastRenderError) > time.Second {
			glog.Errorf("[APP] render error: %v", err)
			app.lastRenderError = time.Now()
		}
	}

	app.updatePerformanceMetrics()

	if limit := app.config.Emulation.FrameLimit; limit > 0 && app.emulator.GetFrameCount() >= uint64(limit) {
		glog.Infof("[APP] frame limit %d reached", limit)
		app.Stop()
	}
	if app.window != nil && app.window.ShouldClose() {
		app.Stop()
	}

	if !app.running {
		return graphics.ErrWindowClosed
	}
	return nil
}

// updateEmulator updates the emulator state
func (app *Application) updateEmulator() error {
	if app.paused || app.cartridge == nil {
		return nil
	}
	return app.emulator.Update()
}

// processInput processes input events from graphics backend
func (app *Application) processInput() {
	if app.window == nil {
		return
	}

	for _, event := range app.window.PollEvents() {
		switch event.Type {
		case graphics.InputEventTypeQuit:
			if event.Pressed {
				glog.V(1).Infof("[APP] quit requested")
				app.Stop()
			}
		case graphics.InputEventTypeButton:
			app.input.HandleEvent(event)
		case graphics.InputEventTypeKey:
			if event.Pressed {
				app.handleKeyInput(event.Key)
			}
		}
	}
}

// handleKeyInput handles emulator hotkeys
func (app *Application) handleKeyInput(key graphics.Key) {
	switch key {
	case graphics.KeyF1:
		app.Reset()
	case graphics.KeyF2:
		app.TogglePause()
		glog.Infof("[APP] paused=%t", app.paused)
	case graphics.KeyF3:
		app.StepInstruction()
	case graphics.KeyF12:
		if path := app.config.Debug.MemvizFile; path != "" {
			if err := debug.SaveStateGraph(path, app.bus); err != nil {
				glog.Errorf("[APP] state dump failed: %v", err)
			} else {
				glog.Infof("[APP] console state written to %s", path)
			}
		}
	}
}

// StepInstruction runs a single CPU instruction while paused and logs the
// resulting machine state
func (app *Application) StepInstruction() {
	if !app.paused || app.cartridge == nil {
		return
	}

	cycles, err := app.emulator.StepInstruction()
	if errors.Is(err, cpu.ErrJammed) {
		glog.Warningf("[APP] CPU is jammed")
		return
	}
	if err != nil {
		glog.Errorf("[APP] step failed: %v", err)
		return
	}

	c := app.emulator.GetCPUState()
	p := app.emulator.GetPPUState()
	glog.Infof("[APP] step %d cycles: PC=$%04X A=$%02X X=$%02X Y=$%02X P=$%02X SP=$%02X PPU=%d,%d CYC=%d",
		cycles, c.PC, c.A, c.X, c.Y, c.P, c.SP, p.Scanline, p.Dot, app.emulator.GetCycleCount())
}

// render renders the current frame
func (app *Application) render() error {
	if app.window == nil || app.cartridge == nil {
		return nil
	}

	if err := app.window.RenderFrame(app.emulator.FrameBuffer()); err != nil {
		return fmt.Errorf("failed to render NES frame: %w", err)
	}
	app.window.SwapBuffers()
	return nil
}

// updatePerformanceMetrics counts frames and logs FPS every five seconds
func (app *Application) updatePerformanceMetrics() {
	app.frameCount++

	now := time.Now()
	elapsed := now.Sub(app.lastFPSTime)
	if elapsed < 5*time.Second {
		return
	}

	app.currentFPS = float64(app.frameCount-app.lastFPSFrames) / elapsed.Seconds()
	app.lastFPSTime = now
	app.lastFPSFrames = app.frameCount
	glog.V(1).Infof("[APP] %.1f FPS, frame %d, cycle %d, emulation %v/frame",
		app.currentFPS, app.frameCount, app.emulator.GetCycleCount(), app.emulator.GetAverageFrameTime())
}

// Stop stops the application
func (app *Application) Stop() {
	app.running = false
}

// Pause pauses the emulator
func (app *Application) Pause() {
	app.paused = true
}

// Resume resumes the emulator
func (app *Application) Resume() {
	app.paused = false
}

// TogglePause toggles pause state
func (app *Application) TogglePause() {
	if app.paused {
		app.Resume()
	} else {
		app.Pause()
	}
}

// Reset resets the console
func (app *Application) Reset() {
	if app.cartridge == nil {
		return
	}
	if err := app.bus.Reset(); err != nil {
		glog.Errorf("[APP] reset failed: %v", err)
	}
	app.input.Reset()
	app.emulator.Reset()
	glog.Infof("[APP] console reset")
}

// IsRunning returns whether the application is running
func (app *Application) IsRunning() bool {
	return app.running
}

// IsPaused returns whether the emulator is paused
func (app *Application) IsPaused() bool {
	return app.paused
}

// GetFPS returns the FPS measured over the last interval
func (app *Application) GetFPS() float64 {
	return app.currentFPS
}

// GetFrameCount returns the total frame count
func (app *Application) GetFrameCount() uint64 {
	return app.frameCount
}

// GetUptime returns the application uptime
func (app *Application) GetUptime() time.Duration {
	return time.Since(app.startTime)
}

// GetROMPath returns the currently loaded ROM path
func (app *Application) GetROMPath() string {
	return app.romPath
}

// GetBus returns the bus for direct access
func (app *Application) GetBus() *bus.Bus {
	return app.bus
}

// GetEmulator returns the frame runner
func (app *Application) GetEmulator() *Emulator {
	return app.emulator
}

// GetInputState returns the controller state
func (app *Application) GetInputState() *input.InputState {
	return app.input
}

// GetWindow returns the active window
func (app *Application) GetWindow() graphics.Window {
	return app.window
}

// Cleanup releases all resources and shuts down the application
func (app *Application) Cleanup() error {
	var lastErr error

	if app.stats != nil {
		app.stats.Stop()
		app.stats = nil
	}

	if path := app.config.Debug.MemvizFile; path != "" && app.cartridge != nil {
		if err := debug.SaveStateGraph(path, app.bus); err != nil {
			lastErr = err
			glog.Errorf("[APP] state dump failed: %v", err)
		} else {
			glog.Infof("[APP] console state written to %s", path)
		}
	}

	if err := app.closeTrace(); err != nil {
		lastErr = err
		glog.Errorf("[APP] trace close error: %v", err)
	}

	if app.window != nil {
		if err := app.window.Cleanup(); err != nil {
			lastErr = err
			glog.Errorf("[APP] window cleanup error: %v", err)
		}
		app.window = nil
	}

	if app.graphicsBackend != nil {
		if err := app.graphicsBackend.Cleanup(); err != nil {
			lastErr = err
			glog.Errorf("[APP] graphics backend cleanup error: %v", err)
		}
		app.graphicsBackend = nil
	}

	app.initialized = false
	glog.V(1).Infof("[APP] cleanup complete")
	return lastErr
}
