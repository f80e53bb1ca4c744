//go:build !headless
// +build !headless

package graphics

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/golang/glog"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"nesemu/internal/ppu"
)

// ebitengineCompiled reports whether this build includes the Ebitengine backend
const ebitengineCompiled = true

// EbitengineBackend implements the Backend interface using Ebitengine
type EbitengineBackend struct {
	initialized bool
	config      Config
}

// EbitengineWindow implements the Window interface for Ebitengine
type EbitengineWindow struct {
	title   string
	width   int
	height  int
	game    *EbitengineGame
	running bool
	events  []InputEvent
	update  func() error
}

// EbitengineGame implements ebiten.Game for the NES emulator
type EbitengineGame struct {
	window       *EbitengineWindow
	frameImage   *ebiten.Image
	pixels       []byte // RGBA staging buffer for WritePixels
	dirty        bool
	windowWidth  int
	windowHeight int
	filter       ebiten.Filter
	drawCount    int
}

// ebitenKeys maps Ebitengine keys onto backend-neutral keys
var ebitenKeys = map[ebiten.Key]Key{
	ebiten.KeyEscape:     KeyEscape,
	ebiten.KeyEnter:      KeyEnter,
	ebiten.KeySpace:      KeySpace,
	ebiten.KeyArrowUp:    KeyUp,
	ebiten.KeyArrowDown:  KeyDown,
	ebiten.KeyArrowLeft:  KeyLeft,
	ebiten.KeyArrowRight: KeyRight,
	ebiten.KeyW:          KeyW,
	ebiten.KeyA:          KeyA,
	ebiten.KeyS:          KeyS,
	ebiten.KeyD:          KeyD,
	ebiten.KeyJ:          KeyJ,
	ebiten.KeyK:          KeyK,
	ebiten.KeyX:          KeyX,
	ebiten.KeyZ:          KeyZ,
	// Number keys for Player 2 controller
	ebiten.Key1:   Key1,
	ebiten.Key2:   Key2,
	ebiten.Key3:   Key3,
	ebiten.Key4:   Key4,
	ebiten.Key5:   Key5,
	ebiten.Key6:   Key6,
	ebiten.Key7:   Key7,
	ebiten.Key8:   Key8,
	ebiten.KeyF1:  KeyF1,
	ebiten.KeyF2:  KeyF2,
	ebiten.KeyF3:  KeyF3,
	ebiten.KeyF4:  KeyF4,
	ebiten.KeyF5:  KeyF5,
	ebiten.KeyF6:  KeyF6,
	ebiten.KeyF7:  KeyF7,
	ebiten.KeyF8:  KeyF8,
	ebiten.KeyF9:  KeyF9,
	ebiten.KeyF10: KeyF10,
	ebiten.KeyF11: KeyF11,
	ebiten.KeyF12: KeyF12,
}

// NewEbitengineBackend creates a new Ebitengine graphics backend
func NewEbitengineBackend() Backend {
	return &EbitengineBackend{}
}

// Initialize initializes the Ebitengine backend
func (b *EbitengineBackend) Initialize(config Config) error {
	if b.initialized {
		return fmt.Errorf("Ebitengine backend already initialized")
	}

	b.config = config
	b.initialized = true

	return nil
}

// CreateWindow creates an Ebitengine window
func (b *EbitengineBackend) CreateWindow(title string, width, height int) (Window, error) {
	if !b.initialized {
		return nil, fmt.Errorf("backend not initialized")
	}

	if b.config.Headless {
		return nil, fmt.Errorf("cannot create window in headless mode")
	}

	game := &EbitengineGame{
		frameImage:   ebiten.NewImage(ppu.Width, ppu.Height),
		pixels:       make([]byte, ppu.Width*ppu.Height*4),
		windowWidth:  width,
		windowHeight: height,
		filter:       ebiten.FilterNearest,
	}
	if b.config.Filter == "linear" {
		game.filter = ebiten.FilterLinear
	}

	window := &EbitengineWindow{
		title:   title,
		width:   width,
		height:  height,
		game:    game,
		running: true,
	}
	game.window = window

	// Configure Ebitengine
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetVsyncEnabled(b.config.VSync)
	ebiten.SetTPS(60)

	if b.config.Fullscreen {
		ebiten.SetFullscreen(true)
	}

	glog.V(1).Infof("[Ebitengine] window %dx%d, vsync=%t, filter=%s", width, height, b.config.VSync, b.config.Filter)
	return window, nil
}

// Cleanup releases all Ebitengine resources
func (b *EbitengineBackend) Cleanup() error {
	b.initialized = false
	return nil
}

// IsHeadless returns true if running in headless mode
func (b *EbitengineBackend) IsHeadless() bool {
	return b.config.Headless
}

// GetName returns the backend name
func (b *EbitengineBackend) GetName() string {
	return "Ebitengine"
}

// EbitengineWindow implementation

// SetTitle sets the window title
func (w *EbitengineWindow) SetTitle(title string) {
	w.title = title
	ebiten.SetWindowTitle(title)
}

// GetSize returns window dimensions
func (w *EbitengineWindow) GetSize() (width, height int) {
	return w.width, w.height
}

// ShouldClose returns true if window should close
func (w *EbitengineWindow) ShouldClose() bool {
	return !w.running
}

// SwapBuffers is handled automatically by Ebitengine
func (w *EbitengineWindow) SwapBuffers() {}

// PollEvents returns the events gathered since the last call
func (w *EbitengineWindow) PollEvents() []InputEvent {
	events := w.events
	w.events = nil
	return events
}

// RenderFrame stages a NES frame; it is uploaded on the next Draw
func (w *EbitengineWindow) RenderFrame(frame *Frame) error {
	if w.game == nil {
		return fmt.Errorf("game not initialized")
	}

	pix := w.game.pixels
	for i, pixel := range frame {
		pix[i*4] = uint8(pixel >> 16)
		pix[i*4+1] = uint8(pixel >> 8)
		pix[i*4+2] = uint8(pixel)
		pix[i*4+3] = 0xFF
	}
	w.game.dirty = true
	return nil
}

// Cleanup releases window resources
func (w *EbitengineWindow) Cleanup() error {
	w.running = false
	return nil
}

// Run starts the Ebitengine game loop. It returns when the window is closed
// or the update function fails.
func (w *EbitengineWindow) Run() error {
	if w.game == nil {
		return fmt.Errorf("game not initialized")
	}

	err := ebiten.RunGame(w.game)
	w.running = false
	return err
}

// SetUpdateFunc sets the function run once per tick to advance the emulator
func (w *EbitengineWindow) SetUpdateFunc(update func() error) {
	w.update = update
}

// EbitengineGame implementation

// Update implements ebiten.Game.Update
func (g *EbitengineGame) Update() error {
	if g.window == nil {
		return nil
	}

	g.processInput()

	if !g.window.running {
		return ebiten.Termination
	}

	if g.window.update != nil {
		if err := g.window.update(); err != nil {
			if errors.Is(err, ErrWindowClosed) {
				return ebiten.Termination
			}
			glog.Errorf("[Ebitengine] emulator update failed: %v", err)
			return err
		}
	}

	return nil
}

// Draw implements ebiten.Game.Draw
func (g *EbitengineGame) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 0, G: 0, B: 0, A: 255})

	if g.dirty {
		g.frameImage.WritePixels(g.pixels)
		g.dirty = false
	}

	// Scale to fit the window while maintaining aspect ratio, then center
	scaleX := float64(g.windowWidth) / float64(ppu.Width)
	scaleY := float64(g.windowHeight) / float64(ppu.Height)
	scale := scaleX
	if scaleY < scaleX {
		scale = scaleY
	}
	offsetX := (float64(g.windowWidth) - float64(ppu.Width)*scale) / 2
	offsetY := (float64(g.windowHeight) - float64(ppu.Height)*scale) / 2

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(offsetX, offsetY)
	op.Filter = g.filter

	screen.DrawImage(g.frameImage, op)

	g.drawCount++
	if g.drawCount%1800 == 0 {
		glog.V(2).Infof("[Ebitengine] drew frame %d scaled %.2fx at (%.1f,%.1f)", g.drawCount, scale, offsetX, offsetY)
	}
}

// Layout implements ebiten.Game.Layout
func (g *EbitengineGame) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	g.windowWidth = outsideWidth
	g.windowHeight = outsideHeight
	return outsideWidth, outsideHeight
}

// processInput turns key transitions into input events
func (g *EbitengineGame) processInput() {
	var events []InputEvent

	for ebitenKey, key := range ebitenKeys {
		switch {
		case inpututil.IsKeyJustPressed(ebitenKey):
			events = append(events, keyEvent(key, true))
		case inpututil.IsKeyJustReleased(ebitenKey):
			events = append(events, keyEvent(key, false))
		}
	}

	if ebiten.IsWindowBeingClosed() {
		events = append(events, InputEvent{Type: InputEventTypeQuit, Pressed: true})
	}

	g.window.events = append(g.window.events, events...)
}
