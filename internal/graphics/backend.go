// Package graphics provides an abstraction layer for different rendering backends
package graphics

import (
	"errors"
	"fmt"

	"nesemu/internal/ppu"
)

// ErrWindowClosed is returned by an update function to end a window's loop
var ErrWindowClosed = errors.New("window closed")

// Frame is a row-major frame of 0x00RRGGBB pixels
type Frame = [ppu.Width * ppu.Height]uint32

// Backend represents a graphics rendering backend (Ebitengine, SDL2, etc.)
type Backend interface {
	// Initialize initializes the graphics backend
	Initialize(config Config) error

	// CreateWindow creates a window for rendering
	CreateWindow(title string, width, height int) (Window, error)

	// Cleanup releases all resources
	Cleanup() error

	// IsHeadless returns true if running in headless mode
	IsHeadless() bool

	// GetName returns the backend name for identification
	GetName() string
}

// Window represents a rendering window
type Window interface {
	// SetTitle sets the window title
	SetTitle(title string)

	// GetSize returns window dimensions
	GetSize() (width, height int)

	// ShouldClose returns true if window should close
	ShouldClose() bool

	// SwapBuffers presents the rendered frame
	SwapBuffers()

	// PollEvents processes input events
	PollEvents() []InputEvent

	// RenderFrame renders a NES frame to the window
	RenderFrame(frame *Frame) error

	// Cleanup releases window resources
	Cleanup() error
}

// LoopWindow is implemented by windows that own the main loop and call back
// into the emulator once per tick (Ebitengine). Returning ErrWindowClosed
// from the update function ends Run without error.
type LoopWindow interface {
	Window
	SetUpdateFunc(update func() error)
	Run() error
}

// Config contains configuration for graphics backends
type Config struct {
	// Window configuration
	WindowTitle  string
	WindowWidth  int
	WindowHeight int
	Fullscreen   bool
	VSync        bool

	// Rendering configuration
	Filter string // "nearest", "linear"

	// Backend-specific options
	Headless     bool
	DumpDir      string // headless: write frames here as PPM
	DumpInterval int    // headless: dump every N frames
}

// InputEvent represents an input event from the window
type InputEvent struct {
	Type    InputEventType
	Key     Key
	Button  Button
	Pressed bool
}

// InputEventType represents the type of input event
type InputEventType int

const (
	InputEventTypeKey InputEventType = iota
	InputEventTypeButton
	InputEventTypeQuit
)

// Key represents keyboard keys
type Key int

const (
	KeyUnknown Key = iota
	KeyEscape
	KeyEnter
	KeySpace
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyW
	KeyA
	KeyS
	KeyD
	KeyJ
	KeyK
	KeyX
	KeyZ
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
)

// Button represents controller buttons
type Button int

const (
	ButtonUnknown Button = iota
	ButtonA
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
	// Player 2 controller buttons
	Button2A
	Button2B
	Button2Select
	Button2Start
	Button2Up
	Button2Down
	Button2Left
	Button2Right
)

// keyButtons maps keyboard keys to NES controller buttons
var keyButtons = map[Key]Button{
	// Player 1 controller
	KeyUp:    ButtonUp,
	KeyDown:  ButtonDown,
	KeyLeft:  ButtonLeft,
	KeyRight: ButtonRight,
	KeyW:     ButtonUp,
	KeyS:     ButtonDown,
	KeyA:     ButtonLeft,
	KeyD:     ButtonRight,
	KeyJ:     ButtonA,
	KeyK:     ButtonB,
	KeyX:     ButtonA,
	KeyZ:     ButtonB,
	KeyEnter: ButtonStart,
	KeySpace: ButtonSelect,
	// Player 2 controller (number keys 1-8)
	Key1: Button2Up,
	Key2: Button2Down,
	Key3: Button2Left,
	Key4: Button2Right,
	Key5: Button2A,
	Key6: Button2B,
	Key7: Button2Start,
	Key8: Button2Select,
}

// keyEvent builds the event for a key transition: a button event when the
// key is mapped to the controller, a quit event for Escape, and a plain key
// event otherwise.
func keyEvent(key Key, pressed bool) InputEvent {
	if button, ok := keyButtons[key]; ok {
		return InputEvent{Type: InputEventTypeButton, Button: button, Pressed: pressed}
	}
	if key == KeyEscape {
		return InputEvent{Type: InputEventTypeQuit, Pressed: pressed}
	}
	return InputEvent{Type: InputEventTypeKey, Key: key, Pressed: pressed}
}

// BackendType represents different graphics backend types
type BackendType string

const (
	BackendEbitengine BackendType = "ebitengine"
	BackendSDL        BackendType = "sdl"
	BackendHeadless   BackendType = "headless"
	BackendTerminal   BackendType = "terminal"
)

// CompiledBackends lists the backends this binary can open. The terminal and
// headless backends are always available.
func CompiledBackends() []BackendType {
	backends := make([]BackendType, 0, 4)
	if ebitengineCompiled {
		backends = append(backends, BackendEbitengine)
	}
	if sdlCompiled {
		backends = append(backends, BackendSDL)
	}
	return append(backends, BackendTerminal, BackendHeadless)
}

// CreateBackend creates a graphics backend of the specified type
func CreateBackend(backendType BackendType) (Backend, error) {
	switch backendType {
	case BackendEbitengine, "":
		return NewEbitengineBackend(), nil
	case BackendSDL:
		return NewSDLBackend(), nil
	case BackendHeadless:
		return NewHeadlessBackend(), nil
	case BackendTerminal:
		return NewTerminalBackend(), nil
	default:
		return nil, fmt.Errorf("unknown graphics backend %q", backendType)
	}
}
