// Package memory implements the NES's internal RAM regions: CPU work RAM,
// PPU nametable RAM and palette RAM.
package memory

// RAMSize is the size of the CPU's internal work RAM.
const RAMSize = 0x0800

// RAM is the 2KB CPU work RAM. Addresses are mirrored every 0x0800 bytes.
type RAM struct {
	data [RAMSize]uint8
}

// NewRAM creates a zeroed work RAM.
func NewRAM() *RAM {
	return &RAM{}
}

// Read reads from RAM, applying mirroring
func (r *RAM) Read(address uint16) uint8 {
	return r.data[address&(RAMSize-1)]
}

// Write writes to RAM, applying mirroring
func (r *RAM) Write(address uint16, value uint8) {
	r.data[address&(RAMSize-1)] = value
}

// Reset clears RAM
func (r *RAM) Reset() {
	r.data = [RAMSize]uint8{}
}

// Snapshot returns a copy of the RAM contents.
func (r *RAM) Snapshot() [RAMSize]uint8 {
	return r.data
}

// MirrorMode represents nametable mirroring mode
type MirrorMode uint8

const (
	MirrorHorizontal MirrorMode = iota
	MirrorVertical
	MirrorSingleScreen0
	MirrorSingleScreen1
	MirrorFourScreen
)

func (m MirrorMode) String() string {
	switch m {
	case MirrorHorizontal:
		return "horizontal"
	case MirrorVertical:
		return "vertical"
	case MirrorSingleScreen0:
		return "single-screen (lower)"
	case MirrorSingleScreen1:
		return "single-screen (upper)"
	case MirrorFourScreen:
		return "four-screen"
	default:
		return "unknown"
	}
}

// Nametable is the PPU's nametable/attribute RAM. The console has 2KB;
// four-screen cartridges supply another 2KB, which is modelled here so that
// all mirror modes share one backing array.
type Nametable struct {
	vram      [0x1000]uint8
	mirroring MirrorMode
}

// NewNametable creates nametable RAM with the given mirroring.
func NewNametable(mode MirrorMode) *Nametable {
	return &Nametable{mirroring: mode}
}

// SetMirroring changes the mirroring mode
func (n *Nametable) SetMirroring(mode MirrorMode) {
	n.mirroring = mode
}

// Mirroring returns the current mirroring mode
func (n *Nametable) Mirroring() MirrorMode {
	return n.mirroring
}

// Read reads a byte for a PPU address in $2000-$3EFF.
func (n *Nametable) Read(address uint16) uint8 {
	return n.vram[n.index(address)]
}

// Write writes a byte for a PPU address in $2000-$3EFF.
func (n *Nametable) Write(address uint16, value uint8) {
	n.vram[n.index(address)] = value
}

// Reset clears nametable RAM
func (n *Nametable) Reset() {
	n.vram = [0x1000]uint8{}
}

// index calculates the actual VRAM index based on mirroring mode.
// $3000-$3EFF mirrors $2000-$2EFF, which the 0x0FFF mask takes care of.
func (n *Nametable) index(address uint16) uint16 {
	address &= 0x0FFF
	table := (address >> 10) & 3
	offset := address & 0x03FF

	switch n.mirroring {
	case MirrorHorizontal:
		// $2000/$2400 share the first 1KB, $2800/$2C00 the second
		if table >= 2 {
			return 0x400 + offset
		}
		return offset
	case MirrorVertical:
		// $2000/$2800 share the first 1KB, $2400/$2C00 the second
		if table == 1 || table == 3 {
			return 0x400 + offset
		}
		return offset
	case MirrorSingleScreen1:
		return 0x400 + offset
	case MirrorFourScreen:
		return table*0x400 + offset
	default:
		return offset
	}
}

// Palette is the PPU's 32-entry palette RAM.
type Palette struct {
	data [32]uint8
}

// NewPalette creates zeroed palette RAM.
func NewPalette() *Palette {
	return &Palette{}
}

// Read reads a palette entry for a PPU address >= $3F00.
func (p *Palette) Read(address uint16) uint8 {
	return p.data[paletteIndex(address)]
}

// Write writes a palette entry for a PPU address >= $3F00.
func (p *Palette) Write(address uint16, value uint8) {
	p.data[paletteIndex(address)] = value
}

// Entry returns the raw entry for an index in 0-31 after mirroring.
func (p *Palette) Entry(index uint8) uint8 {
	return p.data[paletteIndex(uint16(index))]
}

// Snapshot returns a copy of palette RAM.
func (p *Palette) Snapshot() [32]uint8 {
	return p.data
}

// Reset clears palette RAM
func (p *Palette) Reset() {
	p.data = [32]uint8{}
}

// paletteIndex masks to 32 entries; the sprite backdrop entries $10/$14/$18/$1C
// mirror the background entries below them.
func paletteIndex(address uint16) uint16 {
	index := address & 0x1F
	if index&0x13 == 0x10 {
		index &= 0x0F
	}
	return index
}
