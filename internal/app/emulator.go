package app

import (
	"fmt"
	"time"

	"github.com/golang/glog"

	"nesemu/internal/bus"
	"nesemu/internal/cpu"
	"nesemu/internal/graphics"
	"nesemu/internal/ppu"
)

// Emulator runs the console one frame at a time and keeps the converted
// RGB output of the last frame
type Emulator struct {
	bus    *bus.Bus
	config *Config

	targetFrameTime time.Duration
	frameBuffer     graphics.Frame

	// Performance monitoring
	averageFrameTime time.Duration
	frameCount       uint64
	cycleCount       uint64

	// State tracking
	isRunning     bool
	jamReported   bool
	lastResetTime time.Time
}

// NewEmulator creates a new emulator instance
func NewEmulator(bus *bus.Bus, config *Config) *Emulator {
	emulator := &Emulator{
		bus:    bus,
		config: config,
	}
	emulator.SetTargetFrameRate(config.Emulation.FrameRate)
	emulator.Reset()
	return emulator
}

// Reset clears the emulator counters and output
func (e *Emulator) Reset() {
	e.averageFrameTime = 0
	e.frameCount = 0
	e.cycleCount = 0
	e.jamReported = false
	e.lastResetTime = time.Now()
	e.frameBuffer = graphics.Frame{}
}

// Start starts the emulator
func (e *Emulator) Start() {
	e.isRunning = true
}

// Stop stops the emulator
func (e *Emulator) Stop() {
	e.isRunning = false
}

// IsRunning returns whether the emulator is running
func (e *Emulator) IsRunning() bool {
	return e.isRunning
}

// Update runs one frame if the emulator is running
func (e *Emulator) Update() error {
	if !e.isRunning {
		return nil
	}
	return e.StepFrame()
}

// StepFrame executes exactly one frame of emulation
func (e *Emulator) StepFrame() error {
	if e.bus == nil {
		return fmt.Errorf("bus not initialized")
	}

	start := time.Now()

	if err := e.bus.Frame(); err != nil {
		return fmt.Errorf("frame %d: %w", e.frameCount, err)
	}

	// A jammed CPU stops executing but the PPU keeps producing frames
	if e.bus.CPU.Jammed() && !e.jamReported {
		state := e.bus.CPUState()
		glog.Warningf("[EMU] CPU jammed at $%04X after %d instructions", state.PC, state.Instructions)
		e.jamReported = true
	}

	e.bus.PPU.RenderRGB(&e.frameBuffer)

	e.frameCount++
	e.cycleCount = e.bus.Cycles()
	e.recordFrameTime(time.Since(start))

	if e.frameCount%600 == 0 {
		glog.V(1).Infof("[EMU] frame %d, avg emulation time %v", e.frameCount, e.averageFrameTime)
	}

	return nil
}

// StepInstruction executes one CPU instruction. A jammed CPU reports
// cpu.ErrJammed without advancing.
func (e *Emulator) StepInstruction() (int, error) {
	if e.bus == nil {
		return 0, fmt.Errorf("bus not initialized")
	}

	cycles, err := e.bus.Step()
	e.cycleCount = e.bus.Cycles()
	return cycles, err
}

// recordFrameTime keeps an exponential moving average of frame times
func (e *Emulator) recordFrameTime(d time.Duration) {
	if e.averageFrameTime == 0 {
		e.averageFrameTime = d
		return
	}
	e.averageFrameTime = (e.averageFrameTime*15 + d) / 16
}

// SetTargetFrameRate sets the target frame rate
func (e *Emulator) SetTargetFrameRate(fps float64) {
	if fps > 0 {
		e.targetFrameTime = time.Duration(float64(time.Second) / fps)
	}
}

// GetTargetFrameTime returns the wall-clock time budget of one frame
func (e *Emulator) GetTargetFrameTime() time.Duration {
	return e.targetFrameTime
}

// FrameBuffer returns the RGB output of the last frame
func (e *Emulator) FrameBuffer() *graphics.Frame {
	return &e.frameBuffer
}

// GetFrameCount returns the number of frames run since reset
func (e *Emulator) GetFrameCount() uint64 {
	return e.frameCount
}

// GetCycleCount returns the CPU cycle count
func (e *Emulator) GetCycleCount() uint64 {
	return e.cycleCount
}

// GetAverageFrameTime returns the average emulation time per frame
func (e *Emulator) GetAverageFrameTime() time.Duration {
	return e.averageFrameTime
}

// GetUptime returns the time since the last reset
func (e *Emulator) GetUptime() time.Duration {
	return time.Since(e.lastResetTime)
}

// GetCPUState returns the current CPU state for debugging
func (e *Emulator) GetCPUState() cpu.State {
	return e.bus.CPUState()
}

// GetPPUState returns the current PPU state for debugging
func (e *Emulator) GetPPUState() ppu.State {
	return e.bus.PPUState()
}
