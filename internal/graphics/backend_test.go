package graphics

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"nesemu/internal/ppu"
)

func TestCreateBackend(t *testing.T) {
	tests := []struct {
		name        string
		backendType BackendType
		expected    string
		expectError bool
	}{
		{"default", "", "", false},
		{"ebitengine", BackendEbitengine, "", false},
		{"headless", BackendHeadless, "Headless", false},
		{"terminal", BackendTerminal, "Terminal", false},
		{"sdl", BackendSDL, "", false},
		{"unknown", BackendType("opengl"), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend, err := CreateBackend(tt.backendType)
			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error for backend %q", tt.backendType)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected backend, got error: %v", err)
			}
			if tt.expected != "" && backend.GetName() != tt.expected {
				t.Errorf("Expected backend name %s, got %s", tt.expected, backend.GetName())
			}
		})
	}
}

func TestCompiledBackends(t *testing.T) {
	backends := CompiledBackends()

	compiled := make(map[BackendType]bool)
	for _, backend := range backends {
		compiled[backend] = true
	}

	expected := map[BackendType]bool{
		BackendEbitengine: ebitengineCompiled,
		BackendSDL:        sdlCompiled,
		BackendTerminal:   true,
		BackendHeadless:   true,
	}
	for backend, want := range expected {
		if compiled[backend] != want {
			t.Errorf("Expected %s compiled=%t, got %t", backend, want, compiled[backend])
		}
	}
	if backends[len(backends)-1] != BackendHeadless {
		t.Errorf("Expected headless last, got %v", backends)
	}
}

func TestKeyEvent(t *testing.T) {
	tests := []struct {
		name     string
		key      Key
		pressed  bool
		expected InputEvent
	}{
		{"arrow to d-pad", KeyUp, true, InputEvent{Type: InputEventTypeButton, Button: ButtonUp, Pressed: true}},
		{"wasd to d-pad", KeyD, false, InputEvent{Type: InputEventTypeButton, Button: ButtonRight}},
		{"j is A", KeyJ, true, InputEvent{Type: InputEventTypeButton, Button: ButtonA, Pressed: true}},
		{"z is B", KeyZ, true, InputEvent{Type: InputEventTypeButton, Button: ButtonB, Pressed: true}},
		{"enter is start", KeyEnter, true, InputEvent{Type: InputEventTypeButton, Button: ButtonStart, Pressed: true}},
		{"player 2", Key5, true, InputEvent{Type: InputEventTypeButton, Button: Button2A, Pressed: true}},
		{"escape quits", KeyEscape, true, InputEvent{Type: InputEventTypeQuit, Pressed: true}},
		{"unmapped key", KeyF5, true, InputEvent{Type: InputEventTypeKey, Key: KeyF5, Pressed: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := keyEvent(tt.key, tt.pressed); got != tt.expected {
				t.Errorf("Expected %+v, got %+v", tt.expected, got)
			}
		})
	}
}

func TestHeadlessBackendLifecycle(t *testing.T) {
	backend := NewHeadlessBackend()

	if _, err := backend.CreateWindow("test", 256, 240); err == nil {
		t.Error("Expected error creating window before Initialize")
	}
	if err := backend.Initialize(Config{Headless: true}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if err := backend.Initialize(Config{}); err == nil {
		t.Error("Expected error on second Initialize")
	}
	if !backend.IsHeadless() {
		t.Error("Expected headless backend to report headless")
	}

	window, err := backend.CreateWindow("test", 256, 240)
	if err != nil {
		t.Fatalf("CreateWindow failed: %v", err)
	}
	if events := window.PollEvents(); len(events) != 0 {
		t.Errorf("Expected no events, got %v", events)
	}
	if window.ShouldClose() {
		t.Error("Expected window to be open")
	}
	window.Cleanup()
	if !window.ShouldClose() {
		t.Error("Expected window to close after Cleanup")
	}
}

func TestHeadlessFrameDumps(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dumps")
	backend := NewHeadlessBackend()
	if err := backend.Initialize(Config{Headless: true, DumpDir: dir, DumpInterval: 2}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	window, err := backend.CreateWindow("test", 256, 240)
	if err != nil {
		t.Fatalf("CreateWindow failed: %v", err)
	}

	var frame Frame
	for i := 0; i < 3; i++ {
		frame[0] = uint32(i)
		if err := window.RenderFrame(&frame); err != nil {
			t.Fatalf("RenderFrame %d failed: %v", i, err)
		}
	}

	headless := window.(*HeadlessWindow)
	if headless.FrameCount() != 3 {
		t.Errorf("Expected 3 frames, got %d", headless.FrameCount())
	}
	if last := headless.LastFrame(); last[0] != 2 {
		t.Errorf("Expected last frame pixel 2, got %d", last[0])
	}

	for _, name := range []string{"frame_000000.ppm", "frame_000002.ppm"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("Expected %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "frame_000001.ppm")); err == nil {
		t.Error("Expected frame 1 to be skipped")
	}
}

func TestParseTerminalKeys(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Key
	}{
		{"arrows", "\x1b[A\x1b[B\x1b[C\x1b[D", []Key{KeyUp, KeyDown, KeyRight, KeyLeft}},
		{"lone escape", "\x1b", []Key{KeyEscape}},
		{"q quits", "q", []Key{KeyEscape}},
		{"enter and space", "\r ", []Key{KeyEnter, KeySpace}},
		{"letters", "wAsDjkXz", []Key{KeyW, KeyA, KeyS, KeyD, KeyJ, KeyK, KeyX, KeyZ}},
		{"digits", "18", []Key{Key1, Key8}},
		{"ignored", "9p", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseTerminalKeys([]byte(tt.input))
			if len(got) != len(tt.expected) {
				t.Fatalf("Expected %v, got %v", tt.expected, got)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("Key %d: expected %v, got %v", i, tt.expected[i], got[i])
				}
			}
		})
	}
}

func TestTerminalPollEvents(t *testing.T) {
	w := newTerminalWindow("test", 256, 240, &bytes.Buffer{})

	w.keys <- []byte("j")
	events := w.PollEvents()
	if len(events) != 1 || events[0] != (InputEvent{Type: InputEventTypeButton, Button: ButtonA, Pressed: true}) {
		t.Fatalf("Expected A press, got %+v", events)
	}

	// A repeat while held refreshes the hold without a second press
	w.keys <- []byte("j")
	if events := w.PollEvents(); len(events) != 0 {
		t.Fatalf("Expected no events for repeat, got %+v", events)
	}

	for i := 0; i < terminalHoldPolls-1; i++ {
		if events := w.PollEvents(); len(events) != 0 {
			t.Fatalf("Poll %d: expected no events, got %+v", i, events)
		}
	}

	events = w.PollEvents()
	if len(events) != 1 || events[0] != (InputEvent{Type: InputEventTypeButton, Button: ButtonA}) {
		t.Fatalf("Expected A release, got %+v", events)
	}
}

// repeatingReader returns the same key forever
type repeatingReader struct{}

func (repeatingReader) Read(p []byte) (int, error) {
	p[0] = 'j'
	return 1, nil
}

func TestTerminalReadKeysStopsOnCleanup(t *testing.T) {
	w := newTerminalWindow("test", 256, 240, &bytes.Buffer{})

	finished := make(chan struct{})
	go func() {
		readKeys(repeatingReader{}, w.keys, w.done)
		close(finished)
	}()

	// Nobody polls, so the reader fills the buffer and blocks on the next send
	for len(w.keys) < cap(w.keys) {
		time.Sleep(time.Millisecond)
	}

	if err := w.Cleanup(); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Expected the key reader to stop after cleanup")
	}

	// A second cleanup must not close the done channel again
	if err := w.Cleanup(); err != nil {
		t.Fatalf("Second cleanup failed: %v", err)
	}
}

func TestTerminalRenderFrame(t *testing.T) {
	var out bytes.Buffer
	w := newTerminalWindow("test", 256, 240, &out)

	var frame Frame
	frame[0] = 0xFF0000
	frame[terminalStep*ppu.Width] = 0x0000FF

	if err := w.RenderFrame(&frame); err != nil {
		t.Fatalf("RenderFrame failed: %v", err)
	}

	text := out.String()
	prefix := "\033[H\033[38;2;255;0;0m\033[48;2;0;0;255m▀"
	if !strings.HasPrefix(text, prefix) {
		t.Errorf("Expected output to start with %q, got %q", prefix, text[:len(prefix)])
	}

	columns := ppu.Width / terminalStep
	rows := ppu.Height / (2 * terminalStep)
	if got := strings.Count(text, "▀"); got != columns*rows {
		t.Errorf("Expected %d cells, got %d", columns*rows, got)
	}
	if got := strings.Count(text, "\n"); got != rows {
		t.Errorf("Expected %d lines, got %d", rows, got)
	}

	out.Reset()
	if err := w.Cleanup(); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if !w.ShouldClose() || !strings.Contains(out.String(), "\033[?25h") {
		t.Errorf("Expected cursor restored on cleanup, got %q", out.String())
	}
}
