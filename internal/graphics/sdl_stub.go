//go:build !sdl
// +build !sdl

package graphics

import "fmt"

const sdlCompiled = false

// SDLBackend stub for builds without the sdl tag
type SDLBackend struct{}

// NewSDLBackend creates a stub that reports SDL as unavailable
func NewSDLBackend() Backend {
	return &SDLBackend{}
}

func (b *SDLBackend) Initialize(config Config) error {
	return fmt.Errorf("SDL backend not available: build with -tags sdl")
}

func (b *SDLBackend) CreateWindow(title string, width, height int) (Window, error) {
	return nil, fmt.Errorf("backend not initialized")
}

func (b *SDLBackend) Cleanup() error   { return nil }
func (b *SDLBackend) IsHeadless() bool { return false }
func (b *SDLBackend) GetName() string  { return "SDL2-Stub" }
