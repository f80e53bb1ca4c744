//go:build sdl
// +build sdl

package graphics

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/golang/glog"
	"github.com/veandco/go-sdl2/sdl"

	"nesemu/internal/ppu"
)

// sdlCompiled reports whether this build includes the SDL2 backend
const sdlCompiled = true

// SDL must be driven from the main OS thread
func init() {
	runtime.LockOSThread()
}

// SDLBackend implements the Backend interface using SDL2
type SDLBackend struct {
	initialized bool
	config      Config
}

// SDLWindow renders frames through an SDL streaming texture
type SDLWindow struct {
	title    string
	width    int
	height   int
	running  bool
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
}

// sdlKeys maps SDL keycodes onto backend-neutral keys
var sdlKeys = map[sdl.Keycode]Key{
	sdl.K_ESCAPE: KeyEscape,
	sdl.K_RETURN: KeyEnter,
	sdl.K_SPACE:  KeySpace,
	sdl.K_UP:     KeyUp,
	sdl.K_DOWN:   KeyDown,
	sdl.K_LEFT:   KeyLeft,
	sdl.K_RIGHT:  KeyRight,
	sdl.K_w:      KeyW,
	sdl.K_a:      KeyA,
	sdl.K_s:      KeyS,
	sdl.K_d:      KeyD,
	sdl.K_j:      KeyJ,
	sdl.K_k:      KeyK,
	sdl.K_x:      KeyX,
	sdl.K_z:      KeyZ,
	sdl.K_1:      Key1,
	sdl.K_2:      Key2,
	sdl.K_3:      Key3,
	sdl.K_4:      Key4,
	sdl.K_5:      Key5,
	sdl.K_6:      Key6,
	sdl.K_7:      Key7,
	sdl.K_8:      Key8,
}

// NewSDLBackend creates a new SDL2 graphics backend
func NewSDLBackend() Backend {
	return &SDLBackend{}
}

// Initialize initializes SDL video
func (b *SDLBackend) Initialize(config Config) error {
	if b.initialized {
		return fmt.Errorf("SDL backend already initialized")
	}

	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return fmt.Errorf("failed to initialize SDL video: %w", err)
	}

	b.config = config
	b.initialized = true
	return nil
}

// CreateWindow creates an SDL window, renderer and frame texture
func (b *SDLBackend) CreateWindow(title string, width, height int) (Window, error) {
	if !b.initialized {
		return nil, fmt.Errorf("backend not initialized")
	}

	flags := uint32(sdl.WINDOW_SHOWN | sdl.WINDOW_RESIZABLE)
	if b.config.Fullscreen {
		flags |= sdl.WINDOW_FULLSCREEN_DESKTOP
	}

	window, err := sdl.CreateWindow(title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		int32(width), int32(height), flags)
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	rendererFlags := uint32(sdl.RENDERER_ACCELERATED)
	if b.config.VSync {
		rendererFlags |= sdl.RENDERER_PRESENTVSYNC
	}
	renderer, err := sdl.CreateRenderer(window, -1, rendererFlags)
	if err != nil {
		window.Destroy()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	if err := renderer.SetLogicalSize(ppu.Width, ppu.Height); err != nil {
		glog.Warningf("[SDL] failed to set logical size: %v", err)
	}

	quality := "0"
	if b.config.Filter == "linear" {
		quality = "1"
	}
	if !sdl.SetHint(sdl.HINT_RENDER_SCALE_QUALITY, quality) {
		glog.Warningf("[SDL] failed to set render scale quality hint")
	}

	// RGB888 ignores the unused top byte of 0x00RRGGBB pixels
	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_RGB888, sdl.TEXTUREACCESS_STREAMING, ppu.Width, ppu.Height)
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		return nil, fmt.Errorf("failed to create texture: %w", err)
	}

	glog.V(1).Infof("[SDL] window %dx%d, vsync=%t, filter=%s", width, height, b.config.VSync, b.config.Filter)

	return &SDLWindow{
		title:    title,
		width:    width,
		height:   height,
		running:  true,
		window:   window,
		renderer: renderer,
		texture:  texture,
	}, nil
}

// Cleanup shuts SDL down
func (b *SDLBackend) Cleanup() error {
	if b.initialized {
		sdl.Quit()
		b.initialized = false
	}
	return nil
}

// IsHeadless returns false
func (b *SDLBackend) IsHeadless() bool {
	return false
}

// GetName returns the backend name
func (b *SDLBackend) GetName() string {
	return "SDL2"
}

// SetTitle sets the window title
func (w *SDLWindow) SetTitle(title string) {
	w.title = title
	w.window.SetTitle(title)
}

// GetSize returns window dimensions
func (w *SDLWindow) GetSize() (width, height int) {
	ww, wh := w.window.GetSize()
	return int(ww), int(wh)
}

// ShouldClose returns true if window should close
func (w *SDLWindow) ShouldClose() bool {
	return !w.running
}

// SwapBuffers presents the renderer
func (w *SDLWindow) SwapBuffers() {
	w.renderer.Present()
}

// PollEvents drains the SDL event queue
func (w *SDLWindow) PollEvents() []InputEvent {
	var events []InputEvent

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			w.running = false
			events = append(events, InputEvent{Type: InputEventTypeQuit, Pressed: true})
		case *sdl.KeyboardEvent:
			if e.Repeat != 0 {
				continue
			}
			key, ok := sdlKeys[e.Keysym.Sym]
			if !ok {
				continue
			}
			events = append(events, keyEvent(key, e.Type == sdl.KEYDOWN))
		}
	}

	return events
}

// RenderFrame uploads the frame to the texture and draws it scaled to the
// window; SwapBuffers presents it
func (w *SDLWindow) RenderFrame(frame *Frame) error {
	if err := w.texture.Update(nil, unsafe.Pointer(&frame[0]), ppu.Width*4); err != nil {
		return fmt.Errorf("failed to update texture: %w", err)
	}

	w.renderer.SetDrawColor(0, 0, 0, 255)
	if err := w.renderer.Clear(); err != nil {
		return fmt.Errorf("failed to clear renderer: %w", err)
	}
	if err := w.renderer.Copy(w.texture, nil, nil); err != nil {
		return fmt.Errorf("failed to copy texture: %w", err)
	}
	return nil
}

// Cleanup destroys the texture, renderer and window
func (w *SDLWindow) Cleanup() error {
	w.running = false
	if w.texture != nil {
		w.texture.Destroy()
		w.texture = nil
	}
	if w.renderer != nil {
		w.renderer.Destroy()
		w.renderer = nil
	}
	if w.window != nil {
		w.window.Destroy()
		w.window = nil
	}
	return nil
}
