package cartridge

import (
	"fmt"
	"strings"

	"github.com/golang/glog"
)

// Diagnostics summarises the parsed iNES image.
type Diagnostics struct {
	Name      string
	RawSize   int
	PRGBlocks int
	CHRBlocks int
	CHRRAM    bool
	Flags6    uint8
	Flags7    uint8
	Mapper    uint8
	Mirroring string
	Trainer   bool
	Battery   bool
}

// Diagnostics returns a summary of the cartridge header and layout
func (c *Cartridge) Diagnostics() Diagnostics {
	return Diagnostics{
		Name:      c.name,
		RawSize:   c.rawSize,
		PRGBlocks: len(c.prg),
		CHRBlocks: len(c.chr),
		CHRRAM:    c.hasCHRRAM,
		Flags6:    c.flags6,
		Flags7:    c.flags7,
		Mapper:    c.mapperID,
		Mirroring: c.mirror.String(),
		Trainer:   c.hasTrainer,
		Battery:   c.hasBattery,
	}
}

func (d Diagnostics) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "file name: %s\n", d.Name)
	fmt.Fprintf(&b, "raw data size: %d\n", d.RawSize)
	fmt.Fprintf(&b, "PRG blocks: %d\n", d.PRGBlocks)
	fmt.Fprintf(&b, "CHR blocks: %d (ram=%t)\n", d.CHRBlocks, d.CHRRAM)
	fmt.Fprintf(&b, "flags6: %08b\n", d.Flags6)
	fmt.Fprintf(&b, "flags7: %08b\n", d.Flags7)
	fmt.Fprintf(&b, "mapper: %d\n", d.Mapper)
	fmt.Fprintf(&b, "mirroring: %s\n", d.Mirroring)
	fmt.Fprintf(&b, "trainer: %t\n", d.Trainer)
	fmt.Fprintf(&b, "battery: %t", d.Battery)
	return b.String()
}

// LogDiagnostics writes the diagnostics to the info log
func (c *Cartridge) LogDiagnostics() {
	for _, line := range strings.Split(c.Diagnostics().String(), "\n") {
		glog.Infof("[CARTRIDGE] %s", line)
	}
}
