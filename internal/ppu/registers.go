package ppu

import (
	"errors"

	"github.com/golang/glog"

	"nesemu/internal/fault"
)

// ReadRegister reads from a PPU register (CPU $2000-$2007)
func (p *PPU) ReadRegister(address uint16) (uint8, error) {
	switch address & 0x0007 {
	case 2: // PPUSTATUS
		value := p.ppuStatus&0xE0 | p.openBus&0x1F
		p.ppuStatus &^= statusVBlank
		p.w = false // Clear write latch
		p.openBus = value
		return value, nil
	case 4: // OAMDATA
		p.openBus = p.oam[p.oamAddr]
		return p.openBus, nil
	case 7: // PPUDATA
		value, err := p.readPPUData()
		p.openBus = value
		return value, err
	default: // Write-only registers return open bus
		return p.openBus, nil
	}
}

// PeekRegister returns what ReadRegister would return, without side effects
func (p *PPU) PeekRegister(address uint16) uint8 {
	switch address & 0x0007 {
	case 2:
		return p.ppuStatus&0xE0 | p.openBus&0x1F
	case 4:
		return p.oam[p.oamAddr]
	case 7:
		if addr := p.v & 0x3FFF; addr >= 0x3F00 {
			return p.palette.Read(addr)
		}
		return p.readBuffer
	default:
		return p.openBus
	}
}

// WriteRegister writes to a PPU register (CPU $2000-$2007)
func (p *PPU) WriteRegister(address uint16, value uint8) error {
	p.openBus = value

	switch address & 0x0007 {
	case 0: // PPUCTRL
		wasEnabled := p.ppuCtrl&ctrlNMIEnable != 0
		p.ppuCtrl = value
		p.t = (p.t & 0xF3FF) | (uint16(value&ctrlNametable) << 10) // Nametable select
		// Enabling NMI during VBlank raises it immediately
		if !wasEnabled && value&ctrlNMIEnable != 0 && p.ppuStatus&statusVBlank != 0 {
			p.triggerNMI()
		}
	case 1: // PPUMASK
		p.ppuMask = value
	case 2: // PPUSTATUS - read only
	case 3: // OAMADDR
		p.oamAddr = value
	case 4: // OAMDATA
		p.oam[p.oamAddr] = value
		p.oamAddr++
	case 5: // PPUSCROLL
		p.writePPUScroll(value)
	case 6: // PPUADDR
		p.writePPUAddr(value)
	case 7: // PPUDATA
		return p.writePPUData(value)
	}
	return nil
}

// writePPUScroll handles writes to PPUSCROLL ($2005)
func (p *PPU) writePPUScroll(value uint8) {
	if !p.w {
		// First write: X scroll
		p.t = (p.t & 0xFFE0) | (uint16(value) >> 3) // Coarse X
		p.x = value & 0x07                          // Fine X
		p.w = true
	} else {
		// Second write: Y scroll
		p.t = (p.t & 0x8C1F) | ((uint16(value) & 0x07) << 12) | ((uint16(value) & 0xF8) << 2)
		p.w = false
	}
}

// writePPUAddr handles writes to PPUADDR ($2006)
func (p *PPU) writePPUAddr(value uint8) {
	if !p.w {
		// First write: high byte, bit 14 cleared
		p.t = (p.t & 0x80FF) | ((uint16(value) & 0x3F) << 8)
		p.w = true
	} else {
		// Second write: low byte
		p.t = (p.t & 0xFF00) | uint16(value)
		p.v = p.t
		p.w = false
	}
}

// readPPUData handles reads from PPUDATA ($2007). Reads below the palette
// return the previous buffer contents; palette reads are immediate and
// refill the buffer from the nametable underneath.
func (p *PPU) readPPUData() (uint8, error) {
	address := p.v & 0x3FFF
	var data uint8
	var err error

	if address >= 0x3F00 {
		data = p.palette.Read(address)
		p.readBuffer, err = p.Read(address - 0x1000)
	} else {
		data = p.readBuffer
		p.readBuffer, err = p.Read(address)
	}

	p.incrementAddress()
	return data, err
}

// writePPUData handles writes to PPUDATA ($2007)
func (p *PPU) writePPUData(value uint8) error {
	address := p.v & 0x3FFF
	err := p.Write(address, value)
	p.incrementAddress()

	// CHR ROM ignores writes on real hardware
	if errors.Is(err, fault.ErrReadOnly) {
		glog.V(2).Infof("[PPU] ignored write $%02X to CHR ROM $%04X", value, address)
		return nil
	}
	return err
}

func (p *PPU) incrementAddress() {
	if p.ppuCtrl&ctrlIncrement32 != 0 {
		p.v += 32 // Increment by 32 (down)
	} else {
		p.v++ // Increment by 1 (across)
	}
	p.v &= 0x7FFF
}

// Scroll helper methods for VRAM address manipulation.
// v and t are laid out as yyy NN YYYYY XXXXX (fine Y, nametable, coarse Y, coarse X).

// incrementX increments the coarse X and wraps to next nametable if needed
func (p *PPU) incrementX() {
	if (p.v & 0x001F) == 31 {
		p.v &^= 0x001F // Clear coarse X
		p.v ^= 0x0400  // Switch horizontal nametable
	} else {
		p.v++
	}
}

// incrementY increments fine Y, and if it overflows, increments coarse Y.
// Row 29 is the last row of a nametable; rows 30 and 31 are attribute data
// and wrap to 0 without switching nametables.
func (p *PPU) incrementY() {
	if (p.v & 0x7000) != 0x7000 {
		p.v += 0x1000 // Increment fine Y
		return
	}

	p.v &^= 0x7000 // Clear fine Y
	y := (p.v & 0x03E0) >> 5
	switch y {
	case 29:
		y = 0
		p.v ^= 0x0800 // Switch vertical nametable
	case 31:
		y = 0
	default:
		y++
	}
	p.v = (p.v &^ 0x03E0) | (y << 5)
}

// copyX copies all X-related bits from t to v (bits 10, 4-0)
func (p *PPU) copyX() {
	p.v = (p.v & 0xFBE0) | (p.t & 0x041F)
}

// copyY copies all Y-related bits from t to v (bits 11, 14-5)
func (p *PPU) copyY() {
	p.v = (p.v & 0x841F) | (p.t & 0x7BE0)
}
