package cpu

import "github.com/golang/glog"

// dispatch runs the handler for op on the resolved address and returns any
// extra cycles the handler itself incurred.
func (cpu *CPU) dispatch(op Op) uint8 {
	address := cpu.address

	switch op {
	// Load/Store
	case LDA:
		return cpu.lda(address)
	case LDX:
		return cpu.ldx(address)
	case LDY:
		return cpu.ldy(address)
	case STA:
		return cpu.sta(address)
	case STX:
		return cpu.stx(address)
	case STY:
		return cpu.sty(address)

	// Arithmetic and logic
	case ADC:
		return cpu.adc(address)
	case SBC:
		return cpu.sbc(address)
	case AND:
		return cpu.and(address)
	case ORA:
		return cpu.ora(address)
	case EOR:
		return cpu.eor(address)
	case BIT:
		return cpu.bit(address)
	case CMP:
		return cpu.cmp(address)
	case CPX:
		return cpu.cpx(address)
	case CPY:
		return cpu.cpy(address)

	// Shifts and rotates
	case ASL:
		return cpu.asl(address)
	case LSR:
		return cpu.lsr(address)
	case ROL:
		return cpu.rol(address)
	case ROR:
		return cpu.ror(address)

	// Increments and decrements
	case INC:
		return cpu.inc(address)
	case DEC:
		return cpu.dec(address)
	case INX:
		return cpu.inx(address)
	case DEX:
		return cpu.dex(address)
	case INY:
		return cpu.iny(address)
	case DEY:
		return cpu.dey(address)

	// Transfers
	case TAX:
		return cpu.tax(address)
	case TXA:
		return cpu.txa(address)
	case TAY:
		return cpu.tay(address)
	case TYA:
		return cpu.tya(address)
	case TSX:
		return cpu.tsx(address)
	case TXS:
		return cpu.txs(address)

	// Stack
	case PHA:
		return cpu.pha(address)
	case PLA:
		return cpu.pla(address)
	case PHP:
		return cpu.php(address)
	case PLP:
		return cpu.plp(address)

	// Flags
	case CLC:
		return cpu.clc(address)
	case SEC:
		return cpu.sec(address)
	case CLI:
		return cpu.cli(address)
	case SEI:
		return cpu.sei(address)
	case CLV:
		return cpu.clv(address)
	case CLD:
		return cpu.cld(address)
	case SED:
		return cpu.sed(address)

	// Control flow
	case JMP:
		return cpu.jmp(address)
	case JSR:
		return cpu.jsr(address)
	case RTS:
		return cpu.rts(address)
	case RTI:
		return cpu.rti(address)
	case BRK:
		return cpu.brk(address)
	case NOP:
		return cpu.nop(address)

	// Branches
	case BCC:
		return cpu.branch(address, !cpu.C)
	case BCS:
		return cpu.branch(address, cpu.C)
	case BNE:
		return cpu.branch(address, !cpu.Z)
	case BEQ:
		return cpu.branch(address, cpu.Z)
	case BPL:
		return cpu.branch(address, !cpu.N)
	case BMI:
		return cpu.branch(address, cpu.N)
	case BVC:
		return cpu.branch(address, !cpu.V)
	case BVS:
		return cpu.branch(address, cpu.V)

	// Unofficial opcodes
	case LAX:
		return cpu.lax(address)
	case SAX:
		return cpu.sax(address)
	case DCP:
		return cpu.dcp(address)
	case ISB:
		return cpu.isb(address)
	case SLO:
		return cpu.slo(address)
	case RLA:
		return cpu.rla(address)
	case SRE:
		return cpu.sre(address)
	case RRA:
		return cpu.rra(address)
	case ANC:
		return cpu.anc(address)
	case ALR:
		return cpu.alr(address)
	case ARR:
		return cpu.arr(address)
	case AXS:
		return cpu.axs(address)
	case LAS:
		return cpu.las(address)
	case XAA:
		return cpu.xaa(address)
	case LXA:
		return cpu.lxa(address)
	case AHX:
		return cpu.ahx(address)
	case SHX:
		return cpu.shx(address)
	case SHY:
		return cpu.shy(address)
	case TAS:
		return cpu.tas(address)
	case JAM:
		return cpu.jam(address)
	}

	panic("cpu: no handler for " + op.String())
}

// operand reads the value an instruction works on: A in accumulator mode,
// memory otherwise.
func (cpu *CPU) operand(address uint16) uint8 {
	if cpu.mode == Accumulator {
		return cpu.A
	}
	return cpu.read(address)
}

// store writes a read-modify-write result back to where it came from.
func (cpu *CPU) store(address uint16, value uint8) {
	if cpu.mode == Accumulator {
		cpu.A = value
		return
	}
	cpu.write(address, value)
}

// Load/Store operations
func (cpu *CPU) lda(address uint16) uint8 {
	cpu.A = cpu.read(address)
	cpu.setZN(cpu.A)
	return 0
}

func (cpu *CPU) ldx(address uint16) uint8 {
	cpu.X = cpu.read(address)
	cpu.setZN(cpu.X)
	return 0
}

func (cpu *CPU) ldy(address uint16) uint8 {
	cpu.Y = cpu.read(address)
	cpu.setZN(cpu.Y)
	return 0
}

func (cpu *CPU) sta(address uint16) uint8 {
	cpu.write(address, cpu.A)
	return 0
}

func (cpu *CPU) stx(address uint16) uint8 {
	cpu.write(address, cpu.X)
	return 0
}

func (cpu *CPU) sty(address uint16) uint8 {
	cpu.write(address, cpu.Y)
	return 0
}

// Arithmetic operations

// addWithCarry adds value and C to A. Overflow is set when both inputs share
// a sign that the result does not.
func (cpu *CPU) addWithCarry(value uint8) {
	sum := uint16(cpu.A) + uint16(value)
	if cpu.C {
		sum++
	}
	result := uint8(sum)

	cpu.C = sum > 0xFF
	cpu.V = (cpu.A^result)&(value^result)&0x80 != 0
	cpu.A = result
	cpu.setZN(result)
}

func (cpu *CPU) adc(address uint16) uint8 {
	cpu.addWithCarry(cpu.read(address))
	return 0
}

// SBC is ADC of the one's complement; the 2A03 has no decimal mode.
func (cpu *CPU) sbc(address uint16) uint8 {
	cpu.addWithCarry(^cpu.read(address))
	return 0
}

// Logical operations
func (cpu *CPU) and(address uint16) uint8 {
	cpu.A &= cpu.read(address)
	cpu.setZN(cpu.A)
	return 0
}

func (cpu *CPU) ora(address uint16) uint8 {
	cpu.A |= cpu.read(address)
	cpu.setZN(cpu.A)
	return 0
}

func (cpu *CPU) eor(address uint16) uint8 {
	cpu.A ^= cpu.read(address)
	cpu.setZN(cpu.A)
	return 0
}

func (cpu *CPU) bit(address uint16) uint8 {
	value := cpu.read(address)
	cpu.Z = cpu.A&value == 0
	cpu.V = value&vFlagMask != 0
	cpu.N = value&nFlagMask != 0
	return 0
}

// Compare operations
func (cpu *CPU) compare(register, value uint8) {
	cpu.C = register >= value
	cpu.setZN(register - value)
}

func (cpu *CPU) cmp(address uint16) uint8 {
	cpu.compare(cpu.A, cpu.read(address))
	return 0
}

func (cpu *CPU) cpx(address uint16) uint8 {
	cpu.compare(cpu.X, cpu.read(address))
	return 0
}

func (cpu *CPU) cpy(address uint16) uint8 {
	cpu.compare(cpu.Y, cpu.read(address))
	return 0
}

// Shift operations
func (cpu *CPU) shiftLeft(address uint16, carryIn bool) uint8 {
	value := cpu.operand(address)
	cpu.C = value&0x80 != 0
	value <<= 1
	if carryIn {
		value |= 0x01
	}
	cpu.store(address, value)
	cpu.setZN(value)
	return value
}

func (cpu *CPU) shiftRight(address uint16, carryIn bool) uint8 {
	value := cpu.operand(address)
	cpu.C = value&0x01 != 0
	value >>= 1
	if carryIn {
		value |= 0x80
	}
	cpu.store(address, value)
	cpu.setZN(value)
	return value
}

func (cpu *CPU) asl(address uint16) uint8 {
	cpu.shiftLeft(address, false)
	return 0
}

func (cpu *CPU) lsr(address uint16) uint8 {
	cpu.shiftRight(address, false)
	return 0
}

func (cpu *CPU) rol(address uint16) uint8 {
	cpu.shiftLeft(address, cpu.C)
	return 0
}

func (cpu *CPU) ror(address uint16) uint8 {
	cpu.shiftRight(address, cpu.C)
	return 0
}

// Increment/Decrement operations
func (cpu *CPU) inc(address uint16) uint8 {
	value := cpu.read(address) + 1
	cpu.write(address, value)
	cpu.setZN(value)
	return 0
}

func (cpu *CPU) dec(address uint16) uint8 {
	value := cpu.read(address) - 1
	cpu.write(address, value)
	cpu.setZN(value)
	return 0
}

func (cpu *CPU) inx(address uint16) uint8 {
	cpu.X++
	cpu.setZN(cpu.X)
	return 0
}

func (cpu *CPU) dex(address uint16) uint8 {
	cpu.X--
	cpu.setZN(cpu.X)
	return 0
}

func (cpu *CPU) iny(address uint16) uint8 {
	cpu.Y++
	cpu.setZN(cpu.Y)
	return 0
}

func (cpu *CPU) dey(address uint16) uint8 {
	cpu.Y--
	cpu.setZN(cpu.Y)
	return 0
}

// Transfer operations
func (cpu *CPU) tax(address uint16) uint8 {
	cpu.X = cpu.A
	cpu.setZN(cpu.X)
	return 0
}

func (cpu *CPU) txa(address uint16) uint8 {
	cpu.A = cpu.X
	cpu.setZN(cpu.A)
	return 0
}

func (cpu *CPU) tay(address uint16) uint8 {
	cpu.Y = cpu.A
	cpu.setZN(cpu.Y)
	return 0
}

func (cpu *CPU) tya(address uint16) uint8 {
	cpu.A = cpu.Y
	cpu.setZN(cpu.A)
	return 0
}

func (cpu *CPU) tsx(address uint16) uint8 {
	cpu.X = cpu.SP
	cpu.setZN(cpu.X)
	return 0
}

func (cpu *CPU) txs(address uint16) uint8 {
	cpu.SP = cpu.X
	return 0
}

// Stack operations
func (cpu *CPU) pha(address uint16) uint8 {
	cpu.push(cpu.A)
	return 0
}

func (cpu *CPU) pla(address uint16) uint8 {
	cpu.A = cpu.pop()
	cpu.setZN(cpu.A)
	return 0
}

func (cpu *CPU) php(address uint16) uint8 {
	cpu.push(cpu.StatusByte() | bFlagMask) // B flag set for PHP
	return 0
}

func (cpu *CPU) plp(address uint16) uint8 {
	cpu.SetStatusByte(cpu.pop())
	return 0
}

// Flag operations
func (cpu *CPU) clc(address uint16) uint8 {
	cpu.C = false
	return 0
}

func (cpu *CPU) sec(address uint16) uint8 {
	cpu.C = true
	return 0
}

func (cpu *CPU) cli(address uint16) uint8 {
	cpu.I = false
	return 0
}

func (cpu *CPU) sei(address uint16) uint8 {
	cpu.I = true
	return 0
}

func (cpu *CPU) clv(address uint16) uint8 {
	cpu.V = false
	return 0
}

func (cpu *CPU) cld(address uint16) uint8 {
	cpu.D = false
	return 0
}

func (cpu *CPU) sed(address uint16) uint8 {
	cpu.D = true
	return 0
}

// Control flow operations
func (cpu *CPU) jmp(address uint16) uint8 {
	cpu.PC = address
	return 0
}

func (cpu *CPU) jsr(address uint16) uint8 {
	// Push return address - 1 (JSR pushes PC-1)
	cpu.pushWord(cpu.PC - 1)
	cpu.PC = address
	return 0
}

func (cpu *CPU) rts(address uint16) uint8 {
	cpu.PC = cpu.popWord() + 1 // RTS adds 1 to popped address
	return 0
}

func (cpu *CPU) rti(address uint16) uint8 {
	cpu.SetStatusByte(cpu.pop())
	cpu.PC = cpu.popWord()
	return 0
}

// brk skips its padding byte, so the pushed return address is BRK+2.
func (cpu *CPU) brk(address uint16) uint8 {
	cpu.PC++
	cpu.interrupt(irqVector, true)
	return 0
}

func (cpu *CPU) nop(address uint16) uint8 {
	return 0
}

// branch jumps to address when taken: one extra cycle, two if the target is
// on a different page than the following instruction.
func (cpu *CPU) branch(address uint16, taken bool) uint8 {
	if !taken {
		return 0
	}
	extra := uint8(1)
	if cpu.pageCrossed {
		extra++
	}
	cpu.PC = address
	return extra
}

// Unofficial opcodes
func (cpu *CPU) lax(address uint16) uint8 {
	cpu.A = cpu.read(address)
	cpu.X = cpu.A
	cpu.setZN(cpu.A)
	return 0
}

func (cpu *CPU) sax(address uint16) uint8 {
	cpu.write(address, cpu.A&cpu.X)
	return 0
}

func (cpu *CPU) dcp(address uint16) uint8 {
	value := cpu.read(address) - 1
	cpu.write(address, value)
	cpu.compare(cpu.A, value)
	return 0
}

func (cpu *CPU) isb(address uint16) uint8 {
	value := cpu.read(address) + 1
	cpu.write(address, value)
	cpu.addWithCarry(^value)
	return 0
}

func (cpu *CPU) slo(address uint16) uint8 {
	cpu.A |= cpu.shiftLeft(address, false)
	cpu.setZN(cpu.A)
	return 0
}

func (cpu *CPU) rla(address uint16) uint8 {
	cpu.A &= cpu.shiftLeft(address, cpu.C)
	cpu.setZN(cpu.A)
	return 0
}

func (cpu *CPU) sre(address uint16) uint8 {
	cpu.A ^= cpu.shiftRight(address, false)
	cpu.setZN(cpu.A)
	return 0
}

func (cpu *CPU) rra(address uint16) uint8 {
	cpu.addWithCarry(cpu.shiftRight(address, cpu.C))
	return 0
}

func (cpu *CPU) anc(address uint16) uint8 {
	cpu.A &= cpu.read(address)
	cpu.setZN(cpu.A)
	cpu.C = cpu.N
	return 0
}

func (cpu *CPU) alr(address uint16) uint8 {
	cpu.A &= cpu.read(address)
	cpu.C = cpu.A&0x01 != 0
	cpu.A >>= 1
	cpu.setZN(cpu.A)
	return 0
}

func (cpu *CPU) arr(address uint16) uint8 {
	value := cpu.A & cpu.read(address)
	value >>= 1
	if cpu.C {
		value |= 0x80
	}
	cpu.A = value
	cpu.setZN(value)
	cpu.C = value&0x40 != 0
	cpu.V = (value>>6^value>>5)&0x01 != 0
	return 0
}

func (cpu *CPU) axs(address uint16) uint8 {
	value := cpu.read(address)
	ax := cpu.A & cpu.X
	cpu.C = ax >= value
	cpu.X = ax - value
	cpu.setZN(cpu.X)
	return 0
}

func (cpu *CPU) las(address uint16) uint8 {
	value := cpu.read(address) & cpu.SP
	cpu.A = value
	cpu.X = value
	cpu.SP = value
	cpu.setZN(value)
	return 0
}

// unstableMagic is the value the analogue XAA/LXA behaviour settles on for
// most 2A03 parts.
const unstableMagic = 0xEE

func (cpu *CPU) xaa(address uint16) uint8 {
	cpu.A = (cpu.A | unstableMagic) & cpu.X & cpu.read(address)
	cpu.setZN(cpu.A)
	return 0
}

func (cpu *CPU) lxa(address uint16) uint8 {
	cpu.A = (cpu.A | unstableMagic) & cpu.read(address)
	cpu.X = cpu.A
	cpu.setZN(cpu.A)
	return 0
}

// storeHigh implements the SHA/SHX/SHY/TAS family: the stored value is ANDed
// with the high byte of the base address plus one, and a page crossing
// replaces the target's high byte with that value.
func (cpu *CPU) storeHigh(address uint16, value uint8) {
	base := address
	if cpu.mode == AbsoluteX {
		base -= uint16(cpu.X)
	} else {
		base -= uint16(cpu.Y)
	}
	value &= uint8(base>>8) + 1
	if cpu.pageCrossed {
		address = uint16(value)<<8 | address&0x00FF
	}
	cpu.write(address, value)
}

func (cpu *CPU) ahx(address uint16) uint8 {
	cpu.storeHigh(address, cpu.A&cpu.X)
	return 0
}

func (cpu *CPU) shx(address uint16) uint8 {
	cpu.storeHigh(address, cpu.X)
	return 0
}

func (cpu *CPU) shy(address uint16) uint8 {
	cpu.storeHigh(address, cpu.Y)
	return 0
}

func (cpu *CPU) tas(address uint16) uint8 {
	cpu.SP = cpu.A & cpu.X
	cpu.storeHigh(address, cpu.SP)
	return 0
}

// jam halts the processor. PC is left on the JAM opcode.
func (cpu *CPU) jam(address uint16) uint8 {
	cpu.PC--
	cpu.jammed = true
	glog.Warningf("[CPU] JAM opcode $%02X at $%04X, processor halted", cpu.opcode, cpu.PC)
	return 0
}
