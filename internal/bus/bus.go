// Package bus implements the system bus for communication between NES components.
package bus

import (
	"fmt"
	"io"

	"github.com/golang/glog"

	"nesemu/internal/cpu"
	"nesemu/internal/fault"
	"nesemu/internal/memory"
	"nesemu/internal/ppu"
)

// PPU dots per CPU cycle (NTSC)
const ppuDotsPerCycle = 3

// Cartridge is the program and character storage seen by the bus
type Cartridge interface {
	ProgramBlockCount() int
	CharacterBlockCount() int
	ProgramData(block int, offset uint16) uint8
	CharacterData(block int, offset uint16) uint8
	WriteCharacterData(block int, offset uint16, value uint8) error
	Mirroring() memory.MirrorMode
}

// Bus connects all NES components together. It decodes CPU addresses, serves
// the PPU's pattern table fetches from the cartridge, and drives the CPU and
// PPU clocks in lockstep.
type Bus struct {
	// Core components
	CPU *cpu.CPU
	PPU *ppu.PPU
	RAM *memory.RAM

	cart Cartridge

	// System state
	cycles uint64 // CPU cycles since reset
	trace  io.Writer
}

// New creates a new system bus with all components. A cartridge must be
// loaded before the system can run.
func New() *Bus {
	bus := &Bus{
		RAM: memory.NewRAM(),
	}

	bus.CPU = cpu.New(bus)
	bus.PPU = ppu.New(bus)

	// Set up callbacks
	bus.PPU.SetNMICallback(bus.CPU.TriggerNMI)

	return bus
}

// LoadCartridge inserts a cartridge and resets the system
func (b *Bus) LoadCartridge(cart Cartridge) error {
	if cart.ProgramBlockCount() == 0 {
		return fault.Malformed("insert", fmt.Errorf("cartridge has no program data"))
	}

	b.cart = cart
	b.PPU.SetMirroring(cart.Mirroring())

	glog.Infof("[BUS] cartridge inserted: %d PRG block(s), %d CHR block(s), %s mirroring",
		cart.ProgramBlockCount(), cart.CharacterBlockCount(), cart.Mirroring())

	return b.Reset()
}

// Reset resets all components to their initial state
func (b *Bus) Reset() error {
	b.RAM.Reset()
	b.PPU.Reset()
	b.cycles = 0

	return b.CPU.Reset()
}

// Clock advances the system by one CPU cycle and three PPU dots
func (b *Bus) Clock() error {
	err := b.CPU.Clock()

	for i := 0; i < ppuDotsPerCycle; i++ {
		b.PPU.Clock()
	}
	b.cycles++

	return err
}

// Step executes one CPU instruction (or interrupt entry), along with any
// reset latency or OAM DMA ahead of it, and advances the PPU accordingly.
// It returns the number of CPU cycles consumed.
func (b *Bus) Step() (int, error) {
	cycles := 0
	started := false

	for {
		ready := b.CPU.Ready()
		if err := b.Clock(); err != nil {
			return cycles + 1, err
		}
		cycles++

		if ready {
			started = true
		}
		if started && b.CPU.Ready() {
			if b.CPU.Jammed() {
				return cycles, cpu.ErrJammed
			}
			return cycles, nil
		}
	}
}

// Frame runs the system until the PPU completes a frame
func (b *Bus) Frame() error {
	b.PPU.AcknowledgeFrame()

	for !b.PPU.FrameComplete() {
		if err := b.Clock(); err != nil {
			return err
		}
	}

	glog.V(2).Infof("[BUS] frame %d complete at cycle %d", b.PPU.Frames, b.cycles)
	return nil
}

// Run runs the emulator for a specified number of frames
func (b *Bus) Run(frames int) error {
	for i := 0; i < frames; i++ {
		if err := b.Frame(); err != nil {
			return err
		}
	}
	return nil
}

// SetTrace writes a nestest-format line to w before every instruction.
// A nil writer turns tracing off.
func (b *Bus) SetTrace(w io.Writer) {
	b.trace = w
	if w == nil {
		b.CPU.SetTracer(nil)
		return
	}

	b.CPU.SetTracer(func(r cpu.TraceRecord) {
		if _, err := fmt.Fprintln(b.trace, r.Format(b.PPU.Scanline(), b.PPU.Dot())); err != nil {
			glog.Errorf("[BUS] trace write failed, tracing disabled: %v", err)
			b.SetTrace(nil)
		}
	})
}

// Cycles returns the number of CPU cycles since reset
func (b *Bus) Cycles() uint64 {
	return b.cycles
}

// CPUState returns the current CPU state
func (b *Bus) CPUState() cpu.State {
	return b.CPU.State()
}

// PPUState returns the current PPU state
func (b *Bus) PPUState() ppu.State {
	return b.PPU.State()
}

// Read reads a byte from the CPU address space
func (b *Bus) Read(address uint16) (uint8, error) {
	switch {
	case address < 0x2000:
		// 2KB internal RAM, mirrored 4 times
		return b.RAM.Read(address), nil
	case address < 0x4000:
		// PPU registers, mirrored every 8 bytes
		return b.PPU.ReadRegister(0x2000 | address&0x0007)
	case address < 0x6000:
		// APU and I/O registers, then the expansion area: no devices attached
		return 0, nil
	case address < 0x8000 || b.cart == nil:
		return 0, fault.Unsupported("bus", "read", address)
	default:
		block, offset := b.programAddress(address)
		return b.cart.ProgramData(block, offset), nil
	}
}

// Write writes a byte to the CPU address space
func (b *Bus) Write(address uint16, value uint8) error {
	switch {
	case address < 0x2000:
		b.RAM.Write(address, value)
	case address < 0x4000:
		return b.PPU.WriteRegister(0x2000|address&0x0007, value)
	case address == 0x4014:
		b.CPU.TriggerOAMDMA(value)
	case address < 0x6000:
		// APU, controller ports and expansion area are not emulated
	case address < 0x8000 || b.cart == nil:
		return fault.Unsupported("bus", "write", address)
	default:
		return fault.WriteProtected("bus", address)
	}
	return nil
}

// Peek reads a byte without side effects, for tracing and debugging.
// Unmapped addresses read as zero.
func (b *Bus) Peek(address uint16) uint8 {
	switch {
	case address < 0x2000:
		return b.RAM.Read(address)
	case address < 0x4000:
		return b.PPU.PeekRegister(address)
	case address < 0x8000 || b.cart == nil:
		return 0
	default:
		block, offset := b.programAddress(address)
		return b.cart.ProgramData(block, offset)
	}
}

// programAddress maps $8000-$FFFF onto PRG blocks. A single 16KB block is
// mirrored into both halves.
func (b *Bus) programAddress(address uint16) (int, uint16) {
	offset := address - 0x8000
	if b.cart.ProgramBlockCount() > 1 {
		return int(offset >> 14), offset & 0x3FFF
	}
	return 0, offset & 0x3FFF
}

// ReadChr reads pattern table data for the PPU
func (b *Bus) ReadChr(address uint16) uint8 {
	if b.cart == nil {
		return 0
	}
	return b.cart.CharacterData(0, address&0x1FFF)
}

// WriteChr writes pattern table data for the PPU. Only CHR RAM accepts writes.
func (b *Bus) WriteChr(address uint16, value uint8) error {
	if b.cart == nil {
		return fault.Unsupported("bus", "write", address)
	}
	return b.cart.WriteCharacterData(0, address&0x1FFF, value)
}
