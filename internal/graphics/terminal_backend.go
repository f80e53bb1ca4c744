package graphics

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/golang/glog"
	"github.com/pkg/term"

	"nesemu/internal/ppu"
)

const (
	// terminalStep is the sampling distance in NES pixels per terminal cell
	// column; each cell row covers two samples via the upper half block
	terminalStep = 4

	// Terminals report presses only, so held buttons are released after
	// this many polls without a repeat
	terminalHoldPolls = 8
)

// TerminalBackend implements the Backend interface for terminal-based rendering
type TerminalBackend struct {
	initialized bool
	config      Config
}

// TerminalWindow renders frames with 24-bit ANSI colour and reads keys from
// the controlling terminal in cbreak mode
type TerminalWindow struct {
	title   string
	width   int
	height  int
	running bool

	out  io.Writer
	tty  *term.Term
	keys chan []byte
	done chan struct{}
	held map[Key]int
}

// NewTerminalBackend creates a new terminal graphics backend
func NewTerminalBackend() Backend {
	return &TerminalBackend{}
}

// Initialize initializes the terminal backend
func (b *TerminalBackend) Initialize(config Config) error {
	if b.initialized {
		return fmt.Errorf("terminal backend already initialized")
	}

	b.config = config
	b.initialized = true

	return nil
}

// CreateWindow switches the terminal to cbreak mode and clears the screen.
// Without a controlling terminal the window still renders but has no input.
func (b *TerminalBackend) CreateWindow(title string, width, height int) (Window, error) {
	if !b.initialized {
		return nil, fmt.Errorf("backend not initialized")
	}

	w := newTerminalWindow(title, width, height, os.Stdout)

	tty, err := term.Open("/dev/tty", term.CBreakMode)
	if err != nil {
		glog.Warningf("[TERMINAL] no keyboard input: %v", err)
	} else {
		w.tty = tty
		go readKeys(tty, w.keys, w.done)
	}

	fmt.Fprint(w.out, "\033[2J\033[?25l")
	w.SetTitle(title)
	return w, nil
}

// Cleanup releases all terminal resources
func (b *TerminalBackend) Cleanup() error {
	b.initialized = false
	return nil
}

// IsHeadless returns false (terminal has basic output)
func (b *TerminalBackend) IsHeadless() bool {
	return false
}

// GetName returns the backend name
func (b *TerminalBackend) GetName() string {
	return "Terminal"
}

func newTerminalWindow(title string, width, height int, out io.Writer) *TerminalWindow {
	return &TerminalWindow{
		title:   title,
		width:   width,
		height:  height,
		running: true,
		out:     out,
		keys:    make(chan []byte, 16),
		done:    make(chan struct{}),
		held:    make(map[Key]int),
	}
}

// readKeys forwards raw terminal input until the terminal is closed or done
// is closed
func readKeys(r io.Reader, keys chan<- []byte, done <-chan struct{}) {
	buf := make([]byte, 16)
	for {
		n, err := r.Read(buf)
		if err != nil {
			close(keys)
			return
		}
		chunk := make([]byte, n)
		copy(chunk, buf[:n])
		select {
		case keys <- chunk:
		case <-done:
			return
		}
	}
}

// SetTitle sets the terminal title
func (w *TerminalWindow) SetTitle(title string) {
	w.title = title
	fmt.Fprintf(w.out, "\033]0;%s\007", title)
}

// GetSize returns window dimensions
func (w *TerminalWindow) GetSize() (width, height int) {
	return w.width, w.height
}

// ShouldClose returns true if window should close
func (w *TerminalWindow) ShouldClose() bool {
	return !w.running
}

// SwapBuffers does nothing for terminal
func (w *TerminalWindow) SwapBuffers() {}

// PollEvents drains pending key presses and releases keys that have not
// repeated recently
func (w *TerminalWindow) PollEvents() []InputEvent {
	var events []InputEvent

	for key, polls := range w.held {
		if polls <= 1 {
			delete(w.held, key)
			events = append(events, keyEvent(key, false))
			continue
		}
		w.held[key] = polls - 1
	}

	for {
		select {
		case chunk, ok := <-w.keys:
			if !ok {
				w.keys = nil
				return events
			}
			events = append(events, w.pressKeys(parseTerminalKeys(chunk))...)
		default:
			return events
		}
	}
}

// pressKeys emits press events for keys not already held
func (w *TerminalWindow) pressKeys(keys []Key) []InputEvent {
	var events []InputEvent
	for _, key := range keys {
		if _, held := w.held[key]; !held {
			events = append(events, keyEvent(key, true))
		}
		w.held[key] = terminalHoldPolls
	}
	return events
}

// parseTerminalKeys decodes a chunk of cbreak-mode input
func parseTerminalKeys(chunk []byte) []Key {
	var keys []Key

	for i := 0; i < len(chunk); i++ {
		c := chunk[i]
		if c == 0x1B {
			if i+2 < len(chunk) && chunk[i+1] == '[' {
				switch chunk[i+2] {
				case 'A':
					keys = append(keys, KeyUp)
				case 'B':
					keys = append(keys, KeyDown)
				case 'C':
					keys = append(keys, KeyRight)
				case 'D':
					keys = append(keys, KeyLeft)
				}
				i += 2
				continue
			}
			keys = append(keys, KeyEscape)
			continue
		}

		switch c {
		case '\r', '\n':
			keys = append(keys, KeyEnter)
		case ' ':
			keys = append(keys, KeySpace)
		case 'q', 'Q':
			keys = append(keys, KeyEscape)
		case 'w', 'W':
			keys = append(keys, KeyW)
		case 'a', 'A':
			keys = append(keys, KeyA)
		case 's', 'S':
			keys = append(keys, KeyS)
		case 'd', 'D':
			keys = append(keys, KeyD)
		case 'j', 'J':
			keys = append(keys, KeyJ)
		case 'k', 'K':
			keys = append(keys, KeyK)
		case 'x', 'X':
			keys = append(keys, KeyX)
		case 'z', 'Z':
			keys = append(keys, KeyZ)
		case '1', '2', '3', '4', '5', '6', '7', '8':
			keys = append(keys, Key1+Key(c-'1'))
		}
	}

	return keys
}

// RenderFrame draws the frame with upper half blocks: the foreground colour
// is the top sample and the background colour the bottom one
func (w *TerminalWindow) RenderFrame(frame *Frame) error {
	bw := bufio.NewWriter(w.out)
	bw.WriteString("\033[H")

	for y := 0; y+terminalStep < ppu.Height; y += 2 * terminalStep {
		for x := 0; x < ppu.Width; x += terminalStep {
			top := frame[y*ppu.Width+x]
			bottom := frame[(y+terminalStep)*ppu.Width+x]
			fmt.Fprintf(bw, "\033[38;2;%d;%d;%dm\033[48;2;%d;%d;%dm▀",
				uint8(top>>16), uint8(top>>8), uint8(top),
				uint8(bottom>>16), uint8(bottom>>8), uint8(bottom))
		}
		bw.WriteString("\033[0m\n")
	}

	return bw.Flush()
}

// Cleanup restores the terminal
func (w *TerminalWindow) Cleanup() error {
	w.running = false
	select {
	case <-w.done:
	default:
		close(w.done)
	}
	fmt.Fprint(w.out, "\033[0m\033[?25h\n")

	if w.tty == nil {
		return nil
	}
	tty := w.tty
	w.tty = nil
	if err := tty.Restore(); err != nil {
		tty.Close()
		return fmt.Errorf("failed to restore terminal: %w", err)
	}
	return tty.Close()
}
