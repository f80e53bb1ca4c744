package cpu

import (
	"fmt"
	"strings"
)

// Peeker is implemented by memories that can be read without side effects.
// The tracer uses it so that disassembling a PPU register access does not
// disturb the PPU.
type Peeker interface {
	Peek(address uint16) uint8
}

// TraceRecord is the CPU state just before an instruction is fetched,
// together with its disassembly.
type TraceRecord struct {
	PC         uint16
	Opcode     uint8
	Bytes      []uint8
	Mnemonic   string
	Operand    string
	Unofficial bool

	A, X, Y, P, SP uint8
	Cycles         uint64
}

// Format renders the record in the nestest log layout:
//
//	C000  4C F5 C5  JMP $C5F5                       A:00 X:00 Y:00 P:24 SP:FD PPU:  0, 21 CYC:7
func (r TraceRecord) Format(scanline, dot int) string {
	hex := make([]string, len(r.Bytes))
	for i, b := range r.Bytes {
		hex[i] = fmt.Sprintf("%02X", b)
	}

	marker := ' '
	if r.Unofficial {
		marker = '*'
	}

	text := r.Mnemonic
	if r.Operand != "" {
		text += " " + r.Operand
	}

	return fmt.Sprintf("%04X  %-8s %c%-32sA:%02X X:%02X Y:%02X P:%02X SP:%02X PPU:%3d,%3d CYC:%d",
		r.PC, strings.Join(hex, " "), marker, text,
		r.A, r.X, r.Y, r.P, r.SP, scanline, dot, r.Cycles)
}

func (r TraceRecord) String() string {
	return r.Format(0, 0)
}

// Trace disassembles the instruction at PC without executing it.
func (cpu *CPU) Trace() TraceRecord {
	pc := cpu.PC
	opcode := cpu.peek(pc)
	in := Lookup(opcode)

	bytes := make([]uint8, in.Bytes)
	for i := range bytes {
		bytes[i] = cpu.peek(pc + uint16(i))
	}

	return TraceRecord{
		PC:         pc,
		Opcode:     opcode,
		Bytes:      bytes,
		Mnemonic:   in.Op.String(),
		Operand:    cpu.disassemble(in, pc),
		Unofficial: in.Unofficial(),
		A:          cpu.A,
		X:          cpu.X,
		Y:          cpu.Y,
		P:          cpu.StatusByte(),
		SP:         cpu.SP,
		Cycles:     cpu.Cycles,
	}
}

func (cpu *CPU) peek(address uint16) uint8 {
	if p, ok := cpu.memory.(Peeker); ok {
		return p.Peek(address)
	}
	value, _ := cpu.memory.Read(address)
	return value
}

func (cpu *CPU) peekWord(address uint16) uint16 {
	return uint16(cpu.peek(address+1))<<8 | uint16(cpu.peek(address))
}

// peekZeroPageWord reads a pointer from the zero page, wrapping at $FF.
func (cpu *CPU) peekZeroPageWord(ptr uint8) uint16 {
	return uint16(cpu.peek(uint16(ptr+1)))<<8 | uint16(cpu.peek(uint16(ptr)))
}

// disassemble formats the operand of the instruction at pc, annotated with
// effective addresses and memory contents the way nestest logs do.
func (cpu *CPU) disassemble(in Instruction, pc uint16) string {
	arg8 := cpu.peek(pc + 1)
	arg16 := cpu.peekWord(pc + 1)

	switch in.Mode {
	case Accumulator:
		return "A"
	case Immediate:
		return fmt.Sprintf("#$%02X", arg8)
	case ZeroPage:
		return fmt.Sprintf("$%02X = %02X", arg8, cpu.peek(uint16(arg8)))
	case ZeroPageX:
		addr := arg8 + cpu.X
		return fmt.Sprintf("$%02X,X @ %02X = %02X", arg8, addr, cpu.peek(uint16(addr)))
	case ZeroPageY:
		addr := arg8 + cpu.Y
		return fmt.Sprintf("$%02X,Y @ %02X = %02X", arg8, addr, cpu.peek(uint16(addr)))
	case Relative:
		return fmt.Sprintf("$%04X", pc+2+uint16(int8(arg8)))
	case Absolute:
		if in.Op == JMP || in.Op == JSR {
			return fmt.Sprintf("$%04X", arg16)
		}
		return fmt.Sprintf("$%04X = %02X", arg16, cpu.peek(arg16))
	case AbsoluteX:
		addr := arg16 + uint16(cpu.X)
		return fmt.Sprintf("$%04X,X @ %04X = %02X", arg16, addr, cpu.peek(addr))
	case AbsoluteY:
		addr := arg16 + uint16(cpu.Y)
		return fmt.Sprintf("$%04X,Y @ %04X = %02X", arg16, addr, cpu.peek(addr))
	case Indirect:
		target := uint16(cpu.peek(arg16&pageMask|uint16(uint8(arg16)+1)))<<8 | uint16(cpu.peek(arg16))
		return fmt.Sprintf("($%04X) = %04X", arg16, target)
	case IndexedIndirect:
		ptr := arg8 + cpu.X
		addr := cpu.peekZeroPageWord(ptr)
		return fmt.Sprintf("($%02X,X) @ %02X = %04X = %02X", arg8, ptr, addr, cpu.peek(addr))
	case IndirectIndexed:
		base := cpu.peekZeroPageWord(arg8)
		addr := base + uint16(cpu.Y)
		return fmt.Sprintf("($%02X),Y = %04X @ %04X = %02X", arg8, base, addr, cpu.peek(addr))
	default:
		return ""
	}
}
