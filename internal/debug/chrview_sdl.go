//go:build sdl
// +build sdl

package debug

import (
	"fmt"
	"unsafe"

	"github.com/golang/glog"
	"github.com/veandco/go-sdl2/sdl"
)

const chrViewScale = 4

// ShowPatternTables opens an SDL window with both pattern tables and blocks
// until the window is closed or Escape is pressed
func ShowPatternTables(title string, src PatternSource) error {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return fmt.Errorf("failed to initialize SDL video: %w", err)
	}
	defer sdl.Quit()

	window, err := sdl.CreateWindow(title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		PatternTablesWidth*chrViewScale, PatternTablesHeight*chrViewScale, sdl.WINDOW_SHOWN)
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}
	defer window.Destroy()

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	defer renderer.Destroy()

	if err := renderer.SetLogicalSize(PatternTablesWidth, PatternTablesHeight); err != nil {
		glog.Warningf("[DEBUG] failed to set logical size: %v", err)
	}

	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_ABGR8888, sdl.TEXTUREACCESS_STATIC,
		PatternTablesWidth, PatternTablesHeight)
	if err != nil {
		return fmt.Errorf("failed to create texture: %w", err)
	}
	defer texture.Destroy()

	// image.RGBA stores R,G,B,A bytes, which is ABGR8888 on little-endian
	img := PatternTables(src)
	if err := texture.Update(nil, unsafe.Pointer(&img.Pix[0]), img.Stride); err != nil {
		return fmt.Errorf("failed to update texture: %w", err)
	}

	for {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch e := event.(type) {
			case *sdl.QuitEvent:
				return nil
			case *sdl.KeyboardEvent:
				if e.Keysym.Sym == sdl.K_ESCAPE {
					return nil
				}
			}
		}

		renderer.Clear()
		renderer.Copy(texture, nil, nil)
		renderer.Present()
		sdl.Delay(16)
	}
}
