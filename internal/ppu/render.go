package ppu

// sprite is one OAM entry selected for the next scanline, with its pattern
// row already fetched and flipped.
type sprite struct {
	x           uint8
	attributes  uint8
	patternLow  uint8
	patternHigh uint8
	zero        bool // OAM entry 0, for sprite-0 hit
}

// renderTick runs the background fetch pipeline and scroll updates for one
// dot of a visible or pre-render scanline.
func (p *PPU) renderTick() {
	if !p.RenderingEnabled() {
		return
	}

	if (p.dot >= 2 && p.dot <= 257) || (p.dot >= 321 && p.dot <= 337) {
		p.shiftBackground()

		switch (p.dot - 1) % 8 {
		case 0:
			p.loadBackgroundShifters()
			p.nextTileID = p.nametable.Read(0x2000 | (p.v & 0x0FFF))
		case 2:
			p.fetchAttribute()
		case 4:
			p.nextTileLow = p.memory.ReadChr(p.patternAddress())
		case 6:
			p.nextTileHigh = p.memory.ReadChr(p.patternAddress() + 8)
		case 7:
			p.incrementX()
		}
	}

	switch p.dot {
	case 256:
		p.incrementY()
	case 257:
		p.loadBackgroundShifters()
		p.copyX()
		if p.scanline < Height {
			p.evaluateSprites()
		} else {
			p.spriteCount = 0
		}
	}

	if p.scanline == preRenderScanline && p.dot >= 280 && p.dot <= 304 {
		p.copyY()
	}
}

// fetchAttribute reads the attribute byte for the tile at v and keeps the two
// bits of the tile's 16x16 quadrant.
func (p *PPU) fetchAttribute() {
	address := 0x23C0 | (p.v & 0x0C00) | ((p.v >> 4) & 0x38) | ((p.v >> 2) & 0x07)
	attr := p.nametable.Read(address)
	if p.v&0x0040 != 0 { // coarse Y bit 1
		attr >>= 4
	}
	if p.v&0x0002 != 0 { // coarse X bit 1
		attr >>= 2
	}
	p.nextTileAttr = attr & 0x03
}

// patternAddress is the low plane address of the fetched tile's current row
func (p *PPU) patternAddress() uint16 {
	var table uint16
	if p.ppuCtrl&ctrlBackgroundTable != 0 {
		table = 0x1000
	}
	fineY := (p.v >> 12) & 0x07
	return table + uint16(p.nextTileID)*16 + fineY
}

func (p *PPU) loadBackgroundShifters() {
	p.patternLow = p.patternLow&0xFF00 | uint16(p.nextTileLow)
	p.patternHigh = p.patternHigh&0xFF00 | uint16(p.nextTileHigh)

	var low, high uint16
	if p.nextTileAttr&0x01 != 0 {
		low = 0xFF
	}
	if p.nextTileAttr&0x02 != 0 {
		high = 0xFF
	}
	p.attrLow = p.attrLow&0xFF00 | low
	p.attrHigh = p.attrHigh&0xFF00 | high
}

func (p *PPU) shiftBackground() {
	if p.ppuMask&maskBackground == 0 {
		return
	}
	p.patternLow <<= 1
	p.patternHigh <<= 1
	p.attrLow <<= 1
	p.attrHigh <<= 1
}

func (p *PPU) spriteHeight() int {
	if p.ppuCtrl&ctrlSpriteSize != 0 {
		return 16
	}
	return 8
}

// evaluateSprites selects up to eight sprites that cover the next scanline
// and fetches their pattern rows. A ninth sets the overflow flag.
func (p *PPU) evaluateSprites() {
	p.spriteCount = 0
	height := p.spriteHeight()

	for i := 0; i < 64; i++ {
		entry := p.oam[i*4 : i*4+4]
		row := p.scanline - int(entry[0])
		if row < 0 || row >= height {
			continue
		}
		if p.spriteCount == len(p.sprites) {
			p.ppuStatus |= statusOverflow
			break
		}

		tile, attributes := entry[1], entry[2]
		if attributes&0x80 != 0 { // vertical flip
			row = height - 1 - row
		}

		var address uint16
		if height == 16 {
			address = uint16(tile&0x01) * 0x1000
			tile &= 0xFE
			if row >= 8 {
				tile++
				row -= 8
			}
		} else if p.ppuCtrl&ctrlSpriteTable != 0 {
			address = 0x1000
		}
		address += uint16(tile)*16 + uint16(row)

		low := p.memory.ReadChr(address)
		high := p.memory.ReadChr(address + 8)
		if attributes&0x40 != 0 { // horizontal flip
			low, high = reverseBits(low), reverseBits(high)
		}

		p.sprites[p.spriteCount] = sprite{
			x:           entry[3],
			attributes:  attributes,
			patternLow:  low,
			patternHigh: high,
			zero:        i == 0,
		}
		p.spriteCount++
	}
}

func reverseBits(b uint8) uint8 {
	b = b&0xF0>>4 | b&0x0F<<4
	b = b&0xCC>>2 | b&0x33<<2
	b = b&0xAA>>1 | b&0x55<<1
	return b
}

// backgroundPixel returns the 2-bit pixel and palette at the current dot
func (p *PPU) backgroundPixel(x int) (pixel, palette uint8) {
	if p.ppuMask&maskBackground == 0 || (x < 8 && p.ppuMask&maskBackgroundLeft == 0) {
		return 0, 0
	}

	mux := uint16(0x8000) >> p.x
	if p.patternLow&mux != 0 {
		pixel |= 0x01
	}
	if p.patternHigh&mux != 0 {
		pixel |= 0x02
	}
	if p.attrLow&mux != 0 {
		palette |= 0x01
	}
	if p.attrHigh&mux != 0 {
		palette |= 0x02
	}
	return pixel, palette
}

// spritePixel returns the first opaque sprite pixel at x, if any
func (p *PPU) spritePixel(x int) (pixel, palette uint8, behind, zero bool) {
	if p.ppuMask&maskSprites == 0 || (x < 8 && p.ppuMask&maskSpritesLeft == 0) {
		return 0, 0, false, false
	}

	for i := 0; i < p.spriteCount; i++ {
		s := &p.sprites[i]
		offset := x - int(s.x)
		if offset < 0 || offset > 7 {
			continue
		}

		shift := 7 - offset
		pixel = (s.patternLow>>shift)&0x01 | ((s.patternHigh>>shift)&0x01)<<1
		if pixel == 0 {
			continue
		}
		return pixel, s.attributes&0x03 + 4, s.attributes&0x20 != 0, s.zero
	}
	return 0, 0, false, false
}

// renderPixel composes the background and sprite pixels for the current
// dot and stores the resulting colour index.
func (p *PPU) renderPixel() {
	x, y := p.dot-1, p.scanline

	bgPixel, bgPalette := p.backgroundPixel(x)
	fgPixel, fgPalette, behind, zero := p.spritePixel(x)

	var pixel, palette uint8
	switch {
	case bgPixel == 0 && fgPixel == 0:
		// Backdrop
	case bgPixel == 0:
		pixel, palette = fgPixel, fgPalette
	case fgPixel == 0:
		pixel, palette = bgPixel, bgPalette
	default:
		if behind {
			pixel, palette = bgPixel, bgPalette
		} else {
			pixel, palette = fgPixel, fgPalette
		}
		if zero && x != 255 {
			p.ppuStatus |= statusSprite0Hit
		}
	}

	color := p.palette.Entry(palette*4+pixel) & 0x3F
	if p.ppuMask&maskGreyscale != 0 {
		color &= 0x30
	}
	p.frame[x*Height+y] = color
}
