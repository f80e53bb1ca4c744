// Package cartridge implements ROM loading and parsing for NES cartridges.
package cartridge

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"nesemu/internal/fault"
	"nesemu/internal/memory"
)

const (
	// PRGBlockSize is the size of one program ROM block.
	PRGBlockSize = 0x4000
	// CHRBlockSize is the size of one character ROM block.
	CHRBlockSize = 0x2000

	trainerSize = 512
	magic       = "NES\x1A"
)

// ErrUnsupportedMapper is returned for images that need a mapper other than NROM.
var ErrUnsupportedMapper = errors.New("unsupported mapper")

// Cartridge represents a NES cartridge
type Cartridge struct {
	name    string
	rawSize int
	flags6  uint8
	flags7  uint8

	// ROM data, one slice per block
	prg [][]uint8
	chr [][]uint8

	// CHR memory type
	hasCHRRAM bool

	mapperID   uint8
	mirror     memory.MirrorMode
	hasBattery bool
	hasTrainer bool
}

// iNES header structure
type iNESHeader struct {
	Magic      [4]uint8
	PRGROMSize uint8 // in 16KB units
	CHRROMSize uint8 // in 8KB units
	Flags6     uint8
	Flags7     uint8
	PRGRAMSize uint8
	TVSystem1  uint8
	TVSystem2  uint8
	Padding    [5]uint8
}

// New creates a cartridge from raw PRG and CHR data. A nil or empty chr
// allocates 8KB of CHR RAM.
func New(prg, chr []uint8, mirror memory.MirrorMode) (*Cartridge, error) {
	if len(prg) == 0 || len(prg)%PRGBlockSize != 0 {
		return nil, fault.Malformed("slice PRG", fmt.Errorf("PRG size %d is not a non-zero multiple of %d", len(prg), PRGBlockSize))
	}
	if len(chr)%CHRBlockSize != 0 {
		return nil, fault.Malformed("slice CHR", fmt.Errorf("CHR size %d is not a multiple of %d", len(chr), CHRBlockSize))
	}

	cart := &Cartridge{
		prg:    split(prg, PRGBlockSize),
		mirror: mirror,
	}
	if len(chr) == 0 {
		cart.chr = [][]uint8{make([]uint8, CHRBlockSize)}
		cart.hasCHRRAM = true
	} else {
		cart.chr = split(chr, CHRBlockSize)
	}
	return cart, nil
}

// split copies data into owned blocks of the given size
func split(data []uint8, size int) [][]uint8 {
	blocks := make([][]uint8, len(data)/size)
	for i := range blocks {
		blocks[i] = make([]uint8, size)
		copy(blocks[i], data[i*size:(i+1)*size])
	}
	return blocks
}

// LoadFromFile loads a cartridge from an iNES file
func LoadFromFile(filename string) (*Cartridge, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	cart, err := LoadFromReader(file)
	if err != nil {
		return nil, err
	}
	cart.name = filepath.Base(filename)
	return cart, nil
}

// LoadFromReader loads a cartridge from an io.Reader
func LoadFromReader(r io.Reader) (*Cartridge, error) {
	counter := &countingReader{r: r}

	// Read iNES header
	var header iNESHeader
	if err := binary.Read(counter, binary.LittleEndian, &header); err != nil {
		return nil, fault.Malformed("read header", truncated(err))
	}

	// Validate magic number
	if string(header.Magic[:]) != magic {
		return nil, fault.Malformed("check signature", fmt.Errorf("bad magic % X", header.Magic))
	}

	if header.PRGROMSize == 0 {
		return nil, fault.Malformed("read header", errors.New("PRG ROM size cannot be zero"))
	}

	mapperID := (header.Flags6 >> 4) | (header.Flags7 & 0xF0)
	if mapperID != 0 {
		return nil, fault.Malformed("select mapper", fmt.Errorf("%w %d", ErrUnsupportedMapper, mapperID))
	}

	// Skip trainer if present
	hasTrainer := header.Flags6&0x04 != 0
	if hasTrainer {
		if _, err := io.CopyN(io.Discard, counter, trainerSize); err != nil {
			return nil, fault.Malformed("skip trainer", truncated(err))
		}
	}

	prg := make([]uint8, int(header.PRGROMSize)*PRGBlockSize)
	if _, err := io.ReadFull(counter, prg); err != nil {
		return nil, fault.Malformed("read PRG", truncated(err))
	}

	chr := make([]uint8, int(header.CHRROMSize)*CHRBlockSize)
	if _, err := io.ReadFull(counter, chr); err != nil {
		return nil, fault.Malformed("read CHR", truncated(err))
	}

	cart, err := New(prg, chr, mirrorFromFlags(header.Flags6))
	if err != nil {
		return nil, err
	}
	cart.flags6 = header.Flags6
	cart.flags7 = header.Flags7
	cart.mapperID = mapperID
	cart.hasBattery = header.Flags6&0x02 != 0
	cart.hasTrainer = hasTrainer
	cart.rawSize = counter.n
	return cart, nil
}

func mirrorFromFlags(flags6 uint8) memory.MirrorMode {
	switch {
	case flags6&0x08 != 0:
		return memory.MirrorFourScreen
	case flags6&0x01 != 0:
		return memory.MirrorVertical
	default:
		return memory.MirrorHorizontal
	}
}

func truncated(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

type countingReader struct {
	r io.Reader
	n int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += n
	return n, err
}

// ProgramBlockCount returns the number of 16KB PRG blocks
func (c *Cartridge) ProgramBlockCount() int {
	return len(c.prg)
}

// CharacterBlockCount returns the number of 8KB CHR blocks. CHR RAM counts as one.
func (c *Cartridge) CharacterBlockCount() int {
	return len(c.chr)
}

// ProgramData reads a byte from a PRG block. offset must be below PRGBlockSize.
func (c *Cartridge) ProgramData(block int, offset uint16) uint8 {
	return c.prg[block][offset]
}

// CharacterData reads a byte from a CHR block. offset must be below CHRBlockSize.
func (c *Cartridge) CharacterData(block int, offset uint16) uint8 {
	return c.chr[block][offset]
}

// WriteCharacterData writes to CHR RAM. CHR ROM is read-only.
func (c *Cartridge) WriteCharacterData(block int, offset uint16, value uint8) error {
	if !c.hasCHRRAM {
		return fault.WriteProtected("cartridge", offset)
	}
	c.chr[block][offset] = value
	return nil
}

// Mirroring returns the cartridge's nametable mirroring mode
func (c *Cartridge) Mirroring() memory.MirrorMode {
	return c.mirror
}

// HasCHRRAM reports whether the character data is writable RAM
func (c *Cartridge) HasCHRRAM() bool {
	return c.hasCHRRAM
}

// MapperID returns the iNES mapper number
func (c *Cartridge) MapperID() uint8 {
	return c.mapperID
}
