// Package cpu implements the 6502 CPU emulation for the NES.
package cpu

import (
	"errors"

	"github.com/golang/glog"
)

// Addressing modes
type AddressingMode int

const (
	Implied AddressingMode = iota
	Accumulator
	Immediate
	ZeroPage
	ZeroPageX
	ZeroPageY
	Relative
	Absolute
	AbsoluteX
	AbsoluteY
	Indirect
	IndexedIndirect // (zp,X)
	IndirectIndexed // (zp),Y
)

const (
	// Stack base address
	stackBase = 0x0100
	// Status register bit masks
	nFlagMask  = 0x80
	vFlagMask  = 0x40
	unusedMask = 0x20
	bFlagMask  = 0x10
	dFlagMask  = 0x08
	iFlagMask  = 0x04
	zFlagMask  = 0x02
	cFlagMask  = 0x01
	// Page boundary mask
	pageMask = 0xFF00
	// Interrupt vectors
	nmiVector   = 0xFFFA
	resetVector = 0xFFFC
	irqVector   = 0xFFFE

	// Power-on state
	resetSP     = 0xFD
	resetStatus = iFlagMask | unusedMask
	resetCycles = 7
	nmiCycles   = 7

	oamDataRegister = 0x2004
)

// ErrJammed is returned by Step once a JAM opcode has halted the processor.
var ErrJammed = errors.New("cpu jammed")

// Memory is the CPU's view of the system bus. Errors are fatal to the CPU.
type Memory interface {
	Read(address uint16) (uint8, error)
	Write(address uint16, value uint8) error
}

// CPU represents the 6502 processor used in the NES
type CPU struct {
	// Registers
	A  uint8  // Accumulator
	X  uint8  // X register
	Y  uint8  // Y register
	SP uint8  // Stack pointer
	PC uint16 // Program counter

	// Status register flags. B and the unused bit only exist on the stack.
	C bool // Carry
	Z bool // Zero
	I bool // Interrupt disable
	D bool // Decimal mode (not used in NES)
	V bool // Overflow
	N bool // Negative

	memory Memory

	// Cycles is the number of completed CPU cycles since reset.
	Cycles uint64
	// Instructions is the number of instructions executed since reset.
	Instructions uint64

	// Cycles left for the in-flight instruction
	wait int
	// Instructions plus interrupt entries, used by Step
	boundaries uint64

	// Decoded state of the current instruction
	opcode      uint8
	address     uint16
	mode        AddressingMode
	pageCrossed bool

	nmiPending bool
	jammed     bool
	dma        dmaTransfer

	// First memory error; the CPU stops clocking once set.
	fault error

	tracer func(TraceRecord)
}

// dmaTransfer is an in-progress OAM DMA copy of one CPU page into $2004.
type dmaTransfer struct {
	pending bool
	active  bool
	page    uint8
	index   int
	data    uint8
	write   bool
	idle    int
}

// New creates a new CPU instance
func New(memory Memory) *CPU {
	return &CPU{
		memory: memory,
		SP:     resetSP,
		I:      true,
	}
}

// Reset puts the CPU in its power-on state and loads PC from the reset vector.
func (cpu *CPU) Reset() error {
	cpu.A = 0
	cpu.X = 0
	cpu.Y = 0
	cpu.SP = resetSP
	cpu.SetStatusByte(resetStatus)

	cpu.nmiPending = false
	cpu.jammed = false
	cpu.dma = dmaTransfer{}
	cpu.fault = nil
	cpu.Cycles = 0
	cpu.Instructions = 0

	cpu.PC = cpu.readWord(resetVector)
	cpu.wait = resetCycles
	if cpu.fault != nil {
		return cpu.fault
	}

	glog.V(1).Infof("[CPU] reset, PC=$%04X", cpu.PC)
	return nil
}

// Clock advances the CPU by one cycle. An error means a memory access failed
// and the CPU has stopped; every later call returns the same error.
func (cpu *CPU) Clock() error {
	if cpu.fault != nil {
		return cpu.fault
	}

	switch {
	case cpu.dma.active:
		cpu.stepDMA()
	case cpu.wait > 0:
		cpu.wait--
	case cpu.dma.pending:
		cpu.beginDMA()
		cpu.stepDMA()
	case cpu.jammed:
		// JAM halts the processor until reset
	default:
		cpu.execute()
		cpu.wait--
	}

	cpu.Cycles++
	return cpu.fault
}

// Step clocks the CPU until the next instruction (or interrupt entry) has
// fully completed, and returns the number of cycles that took.
func (cpu *CPU) Step() (int, error) {
	start := cpu.boundaries
	cycles := 0
	for {
		if err := cpu.Clock(); err != nil {
			return cycles + 1, err
		}
		cycles++

		if cpu.boundaries != start && cpu.Ready() {
			return cycles, nil
		}
		if cpu.jammed && cpu.wait == 0 {
			return cycles, ErrJammed
		}
	}
}

// Ready reports whether the next Clock call will start a new instruction.
func (cpu *CPU) Ready() bool {
	return cpu.wait == 0 && !cpu.dma.active && !cpu.dma.pending
}

// Jammed reports whether a JAM opcode has halted the processor.
func (cpu *CPU) Jammed() bool {
	return cpu.jammed
}

// Err returns the memory error that stopped the CPU, if any.
func (cpu *CPU) Err() error {
	return cpu.fault
}

// TriggerNMI latches a non-maskable interrupt. It is serviced at the next
// instruction boundary.
func (cpu *CPU) TriggerNMI() {
	cpu.nmiPending = true
}

// NMIPending reports whether an NMI is waiting to be serviced.
func (cpu *CPU) NMIPending() bool {
	return cpu.nmiPending
}

// TriggerOAMDMA schedules a 256-byte copy from page<<8 into OAMDATA. The
// transfer starts once the current instruction completes.
func (cpu *CPU) TriggerOAMDMA(page uint8) {
	cpu.dma.pending = true
	cpu.dma.page = page
}

// SetTracer installs a function called before every instruction fetch.
// A nil tracer disables tracing.
func (cpu *CPU) SetTracer(tracer func(TraceRecord)) {
	cpu.tracer = tracer
}

// execute runs the fetch-decode-execute step and sets the wait counter to the
// total cost of the instruction, including the current cycle.
func (cpu *CPU) execute() {
	if cpu.nmiPending {
		cpu.nmiPending = false
		cpu.interrupt(nmiVector, false)
		cpu.wait = nmiCycles
		cpu.boundaries++
		glog.V(3).Infof("[CPU] NMI, PC=$%04X", cpu.PC)
		return
	}

	if cpu.tracer != nil {
		cpu.tracer(cpu.Trace())
	}

	cpu.opcode = cpu.fetch()
	in := &instructions[cpu.opcode]
	cpu.mode = in.Mode

	cycles := int(in.Cycles)
	if cpu.resolve(in.Mode) && in.PageCycle() {
		cycles++
	}
	cycles += int(cpu.dispatch(in.Op))

	cpu.wait = cycles
	cpu.Instructions++
	cpu.boundaries++
}

// beginDMA starts a pending transfer. The CPU idles one cycle, plus one more
// when the transfer would otherwise begin on an odd cycle.
func (cpu *CPU) beginDMA() {
	cpu.dma = dmaTransfer{
		active: true,
		page:   cpu.dma.page,
		idle:   1,
	}
	if cpu.Cycles%2 == 1 {
		cpu.dma.idle++
	}
}

func (cpu *CPU) stepDMA() {
	if cpu.dma.idle > 0 {
		cpu.dma.idle--
		return
	}

	if !cpu.dma.write {
		cpu.dma.data = cpu.read(uint16(cpu.dma.page)<<8 | uint16(cpu.dma.index))
		cpu.dma.write = true
		return
	}

	cpu.write(oamDataRegister, cpu.dma.data)
	cpu.dma.write = false
	cpu.dma.index++
	if cpu.dma.index == 256 {
		cpu.dma.active = false
	}
}

// interrupt pushes PC and P and jumps through the vector. brk selects whether
// the pushed P carries the break flag.
func (cpu *CPU) interrupt(vector uint16, brk bool) {
	cpu.pushWord(cpu.PC)
	status := cpu.StatusByte()
	if brk {
		status |= bFlagMask
	}
	cpu.push(status)
	cpu.I = true
	cpu.PC = cpu.readWord(vector)
}

// read performs a bus read, latching the first failure.
func (cpu *CPU) read(address uint16) uint8 {
	value, err := cpu.memory.Read(address)
	if err != nil && cpu.fault == nil {
		cpu.fault = err
		glog.Errorf("[CPU] read $%04X at PC=$%04X: %v", address, cpu.PC, err)
	}
	return value
}

// write performs a bus write, latching the first failure.
func (cpu *CPU) write(address uint16, value uint8) {
	if err := cpu.memory.Write(address, value); err != nil && cpu.fault == nil {
		cpu.fault = err
		glog.Errorf("[CPU] write $%04X at PC=$%04X: %v", address, cpu.PC, err)
	}
}

func (cpu *CPU) readWord(address uint16) uint16 {
	low := uint16(cpu.read(address))
	high := uint16(cpu.read(address + 1))
	return high<<8 | low
}

// fetch reads the byte at PC and advances PC
func (cpu *CPU) fetch() uint8 {
	value := cpu.read(cpu.PC)
	cpu.PC++
	return value
}

func (cpu *CPU) fetchWord() uint16 {
	low := uint16(cpu.fetch())
	high := uint16(cpu.fetch())
	return high<<8 | low
}

// Stack operations. SP wraps within page $01.
func (cpu *CPU) push(value uint8) {
	cpu.write(stackBase|uint16(cpu.SP), value)
	cpu.SP--
}

func (cpu *CPU) pop() uint8 {
	cpu.SP++
	return cpu.read(stackBase | uint16(cpu.SP))
}

func (cpu *CPU) pushWord(value uint16) {
	cpu.push(uint8(value >> 8))
	cpu.push(uint8(value))
}

func (cpu *CPU) popWord() uint16 {
	low := uint16(cpu.pop())
	high := uint16(cpu.pop())
	return high<<8 | low
}

// setZN sets the zero and negative flags from a result
func (cpu *CPU) setZN(value uint8) {
	cpu.Z = value == 0
	cpu.N = value&nFlagMask != 0
}

// StatusByte packs the flags into P. The unused bit is always set and the
// break flag is always clear.
func (cpu *CPU) StatusByte() uint8 {
	status := uint8(unusedMask)
	if cpu.C {
		status |= cFlagMask
	}
	if cpu.Z {
		status |= zFlagMask
	}
	if cpu.I {
		status |= iFlagMask
	}
	if cpu.D {
		status |= dFlagMask
	}
	if cpu.V {
		status |= vFlagMask
	}
	if cpu.N {
		status |= nFlagMask
	}
	return status
}

// SetStatusByte unpacks P into the flags. Bits 4 and 5 are ignored.
func (cpu *CPU) SetStatusByte(status uint8) {
	cpu.C = status&cFlagMask != 0
	cpu.Z = status&zFlagMask != 0
	cpu.I = status&iFlagMask != 0
	cpu.D = status&dFlagMask != 0
	cpu.V = status&vFlagMask != 0
	cpu.N = status&nFlagMask != 0
}

// State is a snapshot of the CPU registers and counters.
type State struct {
	A, X, Y, SP, P uint8
	PC             uint16
	Cycles         uint64
	Instructions   uint64
	NMIPending     bool
	DMAActive      bool
	Jammed         bool
}

// State returns a snapshot of the CPU.
func (cpu *CPU) State() State {
	return State{
		A:            cpu.A,
		X:            cpu.X,
		Y:            cpu.Y,
		SP:           cpu.SP,
		P:            cpu.StatusByte(),
		PC:           cpu.PC,
		Cycles:       cpu.Cycles,
		Instructions: cpu.Instructions,
		NMIPending:   cpu.nmiPending,
		DMAActive:    cpu.dma.active || cpu.dma.pending,
		Jammed:       cpu.jammed,
	}
}
