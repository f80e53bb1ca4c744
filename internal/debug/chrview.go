package debug

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"

	"golang.org/x/image/colornames"
)

// Pattern table viewer dimensions: two 128x128 tables side by side
const (
	PatternTablesWidth  = 256
	PatternTablesHeight = 128

	tilesPerRow  = 16
	bytesPerTile = 16
)

// PatternSource provides character data in PPU address space ($0000-$1FFF)
type PatternSource interface {
	ReadChr(address uint16) uint8
}

// patternColors shades the four 2-bit pattern values
var patternColors = [4]color.RGBA{
	colornames.Black,
	colornames.Red,
	colornames.Mediumblue,
	colornames.Lightgray,
}

// tileOffset returns the address of a tile in a 4KB pattern table
func tileOffset(xTile, yTile int) uint16 {
	return uint16(yTile*tilesPerRow+xTile) * bytesPerTile
}

// PatternTables renders both pattern tables into a 256x128 image. Table 0
// ($0000) is on the left, table 1 ($1000) on the right.
func PatternTables(src PatternSource) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, PatternTablesWidth, PatternTablesHeight))

	for table := 0; table < 2; table++ {
		base := uint16(table) * 0x1000
		for yTile := 0; yTile < tilesPerRow; yTile++ {
			for xTile := 0; xTile < tilesPerRow; xTile++ {
				drawTile(img, src, base+tileOffset(xTile, yTile), table*128+xTile*8, yTile*8)
			}
		}
	}

	return img
}

// drawTile plots one 8x8 tile; bit 7 of each plane is the leftmost pixel
func drawTile(img *image.RGBA, src PatternSource, address uint16, px, py int) {
	for row := 0; row < 8; row++ {
		low := src.ReadChr(address + uint16(row))
		high := src.ReadChr(address + uint16(row) + 8)
		for col := 0; col < 8; col++ {
			shift := 7 - col
			value := (low>>shift)&1 | ((high>>shift)&1)<<1
			img.SetRGBA(px+col, py+row, patternColors[value])
		}
	}
}

// WritePatternTablesPNG encodes the pattern tables as PNG
func WritePatternTablesPNG(w io.Writer, src PatternSource) error {
	if err := png.Encode(w, PatternTables(src)); err != nil {
		return fmt.Errorf("failed to encode pattern tables: %w", err)
	}
	return nil
}

// SavePatternTables writes the pattern tables to a PNG file
func SavePatternTables(path string, src PatternSource) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := WritePatternTablesPNG(file, src); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
