package cartridge

import (
	"bytes"

	"nesemu/internal/memory"
)

// ROMBuilder assembles small iNES images for tests and demos. Program bytes
// are placed by CPU address; interrupt vectors go in the last six bytes of
// PRG ROM.
type ROMBuilder struct {
	prgBlocks   uint8
	chrBlocks   uint8
	mirroring   memory.MirrorMode
	trainer     bool
	program     map[uint16]uint8
	chr         map[uint16]uint8
	resetVector uint16
	nmiVector   uint16
	irqVector   uint16
}

// NewROMBuilder creates a builder for a 16KB PRG, 8KB CHR ROM image with
// all vectors pointing at $8000
func NewROMBuilder() *ROMBuilder {
	return &ROMBuilder{
		prgBlocks:   1,
		chrBlocks:   1,
		mirroring:   memory.MirrorHorizontal,
		program:     make(map[uint16]uint8),
		chr:         make(map[uint16]uint8),
		resetVector: 0x8000,
		nmiVector:   0x8000,
		irqVector:   0x8000,
	}
}

// WithPRGBlocks sets the number of 16KB PRG blocks
func (b *ROMBuilder) WithPRGBlocks(n uint8) *ROMBuilder {
	b.prgBlocks = n
	return b
}

// WithCHRBlocks sets the number of 8KB CHR blocks (0 = CHR RAM)
func (b *ROMBuilder) WithCHRBlocks(n uint8) *ROMBuilder {
	b.chrBlocks = n
	return b
}

// WithMirroring sets the nametable mirroring flags
func (b *ROMBuilder) WithMirroring(mode memory.MirrorMode) *ROMBuilder {
	b.mirroring = mode
	return b
}

// WithTrainer adds an empty 512-byte trainer
func (b *ROMBuilder) WithTrainer() *ROMBuilder {
	b.trainer = true
	return b
}

// WithProgram places code or data at a CPU address in $8000-$FFFF
func (b *ROMBuilder) WithProgram(address uint16, data ...uint8) *ROMBuilder {
	for i, value := range data {
		b.program[address+uint16(i)] = value
	}
	return b
}

// WithCHRData places pattern data at a PPU address in $0000-$1FFF
func (b *ROMBuilder) WithCHRData(address uint16, data ...uint8) *ROMBuilder {
	for i, value := range data {
		b.chr[address+uint16(i)] = value
	}
	return b
}

// WithResetVector sets the reset vector
func (b *ROMBuilder) WithResetVector(address uint16) *ROMBuilder {
	b.resetVector = address
	return b
}

// WithNMIVector sets the NMI vector
func (b *ROMBuilder) WithNMIVector(address uint16) *ROMBuilder {
	b.nmiVector = address
	return b
}

// WithIRQVector sets the IRQ/BRK vector
func (b *ROMBuilder) WithIRQVector(address uint16) *ROMBuilder {
	b.irqVector = address
	return b
}

// Build generates the iNES image
func (b *ROMBuilder) Build() []byte {
	var buf bytes.Buffer

	header := make([]byte, 16)
	copy(header, magic)
	header[4] = b.prgBlocks
	header[5] = b.chrBlocks
	switch b.mirroring {
	case memory.MirrorVertical:
		header[6] |= 0x01
	case memory.MirrorFourScreen:
		header[6] |= 0x08
	}
	if b.trainer {
		header[6] |= 0x04
	}
	buf.Write(header)
	if b.trainer {
		buf.Write(make([]byte, trainerSize))
	}

	size := int(b.prgBlocks) * PRGBlockSize
	prg := make([]byte, size)
	if size > 0 {
		for address, value := range b.program {
			prg[int(address-0x8000)%size] = value
		}
		vectors := []uint16{b.nmiVector, b.resetVector, b.irqVector}
		for i, vector := range vectors {
			prg[size-6+i*2] = uint8(vector)
			prg[size-5+i*2] = uint8(vector >> 8)
		}
	}
	buf.Write(prg)

	chr := make([]byte, int(b.chrBlocks)*CHRBlockSize)
	if len(chr) > 0 {
		for address, value := range b.chr {
			chr[int(address)%len(chr)] = value
		}
	}
	buf.Write(chr)

	return buf.Bytes()
}

// BuildCartridge generates the image and loads it as a cartridge
func (b *ROMBuilder) BuildCartridge() (*Cartridge, error) {
	return LoadFromReader(bytes.NewReader(b.Build()))
}
