package ppu

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// paletteFileSize is the size of a .pal file: 64 RGB triplets
const paletteFileSize = 64 * 3

// ErrInvalidPalette is returned for a .pal file of the wrong size
var ErrInvalidPalette = errors.New("invalid palette file")

// SystemPalette maps the PPU's 64 colour indices to 0x00RRGGBB values
type SystemPalette [64]uint32

// NES 2C02 Color Palette (NTSC)
var nesColorPalette = SystemPalette{
	// Row 0 (0x00-0x0F)
	0x666666, 0x002A88, 0x1412A7, 0x3B00A4, 0x5C007E, 0x6E0040, 0x6C0600, 0x561D00,
	0x333500, 0x0B4800, 0x005200, 0x004F08, 0x00404D, 0x000000, 0x000000, 0x000000,
	// Row 1 (0x10-0x1F)
	0xADADAD, 0x155FD9, 0x4240FF, 0x7527FE, 0xA01ACC, 0xB71E7B, 0xB53120, 0x994E00,
	0x6B6D00, 0x388700, 0x0C9300, 0x008F32, 0x007C8D, 0x000000, 0x000000, 0x000000,
	// Row 2 (0x20-0x2F)
	0xFFFEFF, 0x64B0FF, 0x9290FF, 0xC676FF, 0xF36AFF, 0xFE6ECC, 0xFE8170, 0xEA9E22,
	0xBCBE00, 0x88D800, 0x5CE430, 0x45E082, 0x48CDDE, 0x4F4F4F, 0x000000, 0x000000,
	// Row 3 (0x30-0x3F)
	0xFFFEFF, 0xC0DFFF, 0xD3D2FF, 0xE8C8FF, 0xFBC2FF, 0xFEC4EA, 0xFECCC5, 0xF7D8A5,
	0xE4E594, 0xCFF29B, 0xBEFBB3, 0xB8F8D8, 0xB8F8F8, 0x000000, 0x000000, 0x000000,
}

// DefaultPalette returns the built-in NTSC palette
func DefaultPalette() SystemPalette {
	return nesColorPalette
}

// RGB converts a colour index to an 0x00RRGGBB value
func (sp *SystemPalette) RGB(index uint8) uint32 {
	return sp[index&0x3F]
}

// NESColorToRGB converts a NES color index to RGB using the built-in palette
func NESColorToRGB(colorIndex uint8) uint32 {
	return nesColorPalette.RGB(colorIndex)
}

// LoadPalette reads a .pal file: exactly 64 RGB triplets
func LoadPalette(r io.Reader) (SystemPalette, error) {
	var palette SystemPalette

	data, err := io.ReadAll(io.LimitReader(r, paletteFileSize+1))
	if err != nil {
		return palette, fmt.Errorf("read palette: %w", err)
	}
	if len(data) != paletteFileSize {
		return palette, fmt.Errorf("%w: %d bytes, want %d", ErrInvalidPalette, len(data), paletteFileSize)
	}

	for i := range palette {
		red, green, blue := data[i*3], data[i*3+1], data[i*3+2]
		palette[i] = uint32(red)<<16 | uint32(green)<<8 | uint32(blue)
	}
	return palette, nil
}

// LoadPaletteFile reads a .pal file from disk
func LoadPaletteFile(path string) (SystemPalette, error) {
	file, err := os.Open(path)
	if err != nil {
		return SystemPalette{}, err
	}
	defer file.Close()

	return LoadPalette(file)
}

// RenderRGB converts the colour-index frame into row-major 0x00RRGGBB pixels
func (p *PPU) RenderRGB(out *[Width * Height]uint32) {
	for x := 0; x < Width; x++ {
		column := p.frame[x*Height : (x+1)*Height]
		for y, index := range column {
			out[y*Width+x] = p.systemPalette.RGB(index)
		}
	}
}
