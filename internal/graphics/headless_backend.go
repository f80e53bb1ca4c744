package graphics

import (
	"fmt"

	"github.com/golang/glog"

	"nesemu/internal/debug"
)

// HeadlessBackend implements the Backend interface for headless operation
type HeadlessBackend struct {
	initialized bool
	config      Config
}

// HeadlessWindow implements the Window interface for headless operation.
// Frames are counted and optionally dumped to disk as PPM images.
type HeadlessWindow struct {
	title      string
	width      int
	height     int
	running    bool
	frameCount uint64
	lastFrame  Frame
	dumper     *debug.FrameDumper
}

// NewHeadlessBackend creates a new headless graphics backend
func NewHeadlessBackend() Backend {
	return &HeadlessBackend{}
}

// Initialize initializes the headless backend
func (b *HeadlessBackend) Initialize(config Config) error {
	if b.initialized {
		return fmt.Errorf("headless backend already initialized")
	}

	b.config = config
	b.initialized = true

	return nil
}

// CreateWindow creates a headless "window" (no actual window)
func (b *HeadlessBackend) CreateWindow(title string, width, height int) (Window, error) {
	if !b.initialized {
		return nil, fmt.Errorf("backend not initialized")
	}

	window := &HeadlessWindow{
		title:   title,
		width:   width,
		height:  height,
		running: true,
	}

	if b.config.DumpDir != "" {
		window.dumper = debug.NewFrameDumper(b.config.DumpDir)
		window.dumper.SetMaxDumps(0)
		window.dumper.SetDumpInterval(b.config.DumpInterval)
		if err := window.dumper.Enable(); err != nil {
			return nil, err
		}
		glog.Infof("[HEADLESS] dumping frames to %s", b.config.DumpDir)
	}

	return window, nil
}

// Cleanup releases all headless resources
func (b *HeadlessBackend) Cleanup() error {
	b.initialized = false
	return nil
}

// IsHeadless returns true (this is a headless backend)
func (b *HeadlessBackend) IsHeadless() bool {
	return true
}

// GetName returns the backend name
func (b *HeadlessBackend) GetName() string {
	return "Headless"
}

// HeadlessWindow implementation

// SetTitle sets the window title (for logging purposes)
func (w *HeadlessWindow) SetTitle(title string) {
	w.title = title
}

// GetSize returns window dimensions
func (w *HeadlessWindow) GetSize() (width, height int) {
	return w.width, w.height
}

// ShouldClose returns true if window should close
func (w *HeadlessWindow) ShouldClose() bool {
	return !w.running
}

// SwapBuffers does nothing in headless mode
func (w *HeadlessWindow) SwapBuffers() {}

// PollEvents returns empty events list (no input in headless mode)
func (w *HeadlessWindow) PollEvents() []InputEvent {
	return nil
}

// RenderFrame keeps the frame and dumps it when dumping is configured
func (w *HeadlessWindow) RenderFrame(frame *Frame) error {
	w.lastFrame = *frame
	frameNum := w.frameCount
	w.frameCount++

	if w.dumper == nil {
		return nil
	}
	_, err := w.dumper.DumpFrame(frame, frameNum)
	return err
}

// Cleanup releases window resources
func (w *HeadlessWindow) Cleanup() error {
	w.running = false
	return nil
}

// FrameCount returns the number of frames rendered
func (w *HeadlessWindow) FrameCount() uint64 {
	return w.frameCount
}

// LastFrame returns the most recently rendered frame
func (w *HeadlessWindow) LastFrame() Frame {
	return w.lastFrame
}
