// Package ppu implements the Picture Processing Unit for the NES.
package ppu

import (
	"nesemu/internal/fault"
	"nesemu/internal/memory"
)

const (
	// Width is the visible frame width in pixels
	Width = 256
	// Height is the visible frame height in pixels
	Height = 240

	dotsPerScanline   = 341
	scanlinesPerFrame = 262
	vblankScanline    = 241
	preRenderScanline = 261
)

// PPUCTRL bits
const (
	ctrlNametable       = 0x03
	ctrlIncrement32     = 0x04
	ctrlSpriteTable     = 0x08
	ctrlBackgroundTable = 0x10
	ctrlSpriteSize      = 0x20
	ctrlNMIEnable       = 0x80
)

// PPUMASK bits
const (
	maskGreyscale      = 0x01
	maskBackgroundLeft = 0x02
	maskSpritesLeft    = 0x04
	maskBackground     = 0x08
	maskSprites        = 0x10
)

// PPUSTATUS bits
const (
	statusOverflow   = 0x20
	statusSprite0Hit = 0x40
	statusVBlank     = 0x80
)

// Memory gives the PPU access to cartridge character data ($0000-$1FFF).
type Memory interface {
	ReadChr(address uint16) uint8
	WriteChr(address uint16, value uint8) error
}

// PPU represents the NES Picture Processing Unit (2C02)
type PPU struct {
	// PPU Registers (CPU-visible)
	ppuCtrl   uint8 // $2000 - PPUCTRL
	ppuMask   uint8 // $2001 - PPUMASK
	ppuStatus uint8 // $2002 - PPUSTATUS
	oamAddr   uint8 // $2003 - OAMADDR
	openBus   uint8 // Last value seen on the register data bus

	// Internal PPU State
	v uint16 // Current VRAM address (15 bits)
	t uint16 // Temporary VRAM address (15 bits) - address latch
	x uint8  // Fine X scroll (3 bits)
	w bool   // Write latch (toggles between first/second write)

	readBuffer uint8 // PPU read buffer for $2007

	// PPU Memory
	memory    Memory
	nametable *memory.Nametable
	palette   *memory.Palette

	// Background fetch latches and shift registers
	nextTileID   uint8
	nextTileAttr uint8
	nextTileLow  uint8
	nextTileHigh uint8
	patternLow   uint16
	patternHigh  uint16
	attrLow      uint16
	attrHigh     uint16

	// Sprite Data
	oam         [256]uint8 // Object Attribute Memory
	sprites     [8]sprite  // Sprites selected for the next scanline
	spriteCount int

	// Rendering State
	scanline      int // Current scanline (0 to 261)
	dot           int // Current dot (0 to 340)
	frameComplete bool

	// Frames is the number of frames completed since reset.
	Frames uint64

	// Colour indices, column-major: frame[x*Height+y]
	frame [Width * Height]uint8

	systemPalette SystemPalette
	nmiCallback   func()
}

// New creates a new PPU instance
func New(mem Memory) *PPU {
	return &PPU{
		memory:        mem,
		nametable:     memory.NewNametable(memory.MirrorHorizontal),
		palette:       memory.NewPalette(),
		systemPalette: DefaultPalette(),
	}
}

// Reset resets the PPU to its power-on state. Nametable mirroring and the
// system palette are preserved.
func (p *PPU) Reset() {
	p.ppuCtrl = 0
	p.ppuMask = 0
	p.ppuStatus = 0
	p.oamAddr = 0
	p.openBus = 0

	p.v = 0
	p.t = 0
	p.x = 0
	p.w = false
	p.readBuffer = 0

	p.nextTileID, p.nextTileAttr, p.nextTileLow, p.nextTileHigh = 0, 0, 0, 0
	p.patternLow, p.patternHigh, p.attrLow, p.attrHigh = 0, 0, 0, 0

	p.oam = [256]uint8{}
	p.spriteCount = 0

	p.scanline = 0
	p.dot = 0
	p.frameComplete = false
	p.Frames = 0
	p.frame = [Width * Height]uint8{}

	p.nametable.Reset()
	p.palette.Reset()
}

// SetNMICallback sets the function called when VBlank starts with NMI enabled
func (p *PPU) SetNMICallback(callback func()) {
	p.nmiCallback = callback
}

// SetMirroring sets the nametable mirroring mode, normally from the cartridge
func (p *PPU) SetMirroring(mode memory.MirrorMode) {
	p.nametable.SetMirroring(mode)
}

// SetSystemPalette replaces the colour-index to RGB table used by RenderRGB
func (p *PPU) SetSystemPalette(palette SystemPalette) {
	p.systemPalette = palette
}

// Clock advances the PPU by one dot
func (p *PPU) Clock() {
	if p.scanline < Height || p.scanline == preRenderScanline {
		p.renderTick()
	}

	switch {
	case p.scanline == vblankScanline && p.dot == 1:
		p.ppuStatus |= statusVBlank
		if p.ppuCtrl&ctrlNMIEnable != 0 {
			p.triggerNMI()
		}
	case p.scanline == preRenderScanline && p.dot == 1:
		p.ppuStatus &^= statusVBlank | statusSprite0Hit | statusOverflow
	}

	if p.scanline < Height && p.dot >= 1 && p.dot <= Width {
		p.renderPixel()
	}

	p.dot++
	if p.dot >= dotsPerScanline {
		p.dot = 0
		p.scanline++
		if p.scanline >= scanlinesPerFrame {
			p.scanline = 0
			p.frameComplete = true
			p.Frames++
		}
	}
}

func (p *PPU) triggerNMI() {
	if p.nmiCallback != nil {
		p.nmiCallback()
	}
}

// FrameComplete reports whether a frame has finished since the last
// AcknowledgeFrame call
func (p *PPU) FrameComplete() bool {
	return p.frameComplete
}

// AcknowledgeFrame clears the frame-complete flag
func (p *PPU) AcknowledgeFrame() {
	p.frameComplete = false
}

// Scanline returns the current scanline
func (p *PPU) Scanline() int {
	return p.scanline
}

// Dot returns the current dot within the scanline
func (p *PPU) Dot() int {
	return p.dot
}

// FrameBuffer returns a copy of the colour-index frame buffer in column-major
// order: the pixel at (x, y) is at index x*Height+y.
func (p *PPU) FrameBuffer() [Width * Height]uint8 {
	return p.frame
}

// Pixel returns the colour index at (x, y)
func (p *PPU) Pixel(x, y int) uint8 {
	return p.frame[x*Height+y]
}

// RenderingEnabled reports whether background or sprite rendering is on
func (p *PPU) RenderingEnabled() bool {
	return p.ppuMask&(maskBackground|maskSprites) != 0
}

// Read reads from the PPU's own address space
func (p *PPU) Read(address uint16) (uint8, error) {
	switch {
	case address >= 0x4000:
		return 0, fault.Unsupported("ppu", "read", address)
	case address < 0x2000:
		return p.memory.ReadChr(address), nil
	case address < 0x3F00:
		return p.nametable.Read(address), nil
	default:
		return p.palette.Read(address), nil
	}
}

// Write writes to the PPU's own address space
func (p *PPU) Write(address uint16, value uint8) error {
	switch {
	case address >= 0x4000:
		return fault.Unsupported("ppu", "write", address)
	case address < 0x2000:
		return p.memory.WriteChr(address, value)
	case address < 0x3F00:
		p.nametable.Write(address, value)
	default:
		p.palette.Write(address, value)
	}
	return nil
}

// OAM returns a copy of object attribute memory
func (p *PPU) OAM() [256]uint8 {
	return p.oam
}

// PaletteRAM returns a copy of the 32-byte palette RAM
func (p *PPU) PaletteRAM() [32]uint8 {
	return p.palette.Snapshot()
}

// State is a snapshot of the PPU registers and counters
type State struct {
	Scanline   int
	Dot        int
	Frames     uint64
	Ctrl       uint8
	Mask       uint8
	Status     uint8
	OAMAddr    uint8
	V, T       uint16
	FineX      uint8
	WriteLatch bool
}

// State returns a snapshot of the PPU
func (p *PPU) State() State {
	return State{
		Scanline:   p.scanline,
		Dot:        p.dot,
		Frames:     p.Frames,
		Ctrl:       p.ppuCtrl,
		Mask:       p.ppuMask,
		Status:     p.ppuStatus,
		OAMAddr:    p.oamAddr,
		V:          p.v,
		T:          p.t,
		FineX:      p.x,
		WriteLatch: p.w,
	}
}
