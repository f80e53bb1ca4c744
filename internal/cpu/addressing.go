package cpu

// resolve decodes the operand for mode, leaving the effective address in
// cpu.address and PC past the operand bytes. It reports whether indexing
// crossed a page boundary.
func (cpu *CPU) resolve(mode AddressingMode) bool {
	cpu.pageCrossed = false

	switch mode {
	case Implied, Accumulator:
		cpu.address = 0

	case Immediate:
		cpu.address = cpu.PC
		cpu.PC++

	case ZeroPage:
		cpu.address = uint16(cpu.fetch())

	case ZeroPageX:
		cpu.address = uint16(cpu.fetch() + cpu.X) // Wrap within zero page

	case ZeroPageY:
		cpu.address = uint16(cpu.fetch() + cpu.Y) // Wrap within zero page

	case Relative:
		offset := int8(cpu.fetch())
		cpu.address = cpu.PC + uint16(offset)
		cpu.pageCrossed = cpu.address&pageMask != cpu.PC&pageMask

	case Absolute:
		cpu.address = cpu.fetchWord()

	case AbsoluteX:
		base := cpu.fetchWord()
		cpu.address = base + uint16(cpu.X)
		cpu.pageCrossed = base&pageMask != cpu.address&pageMask

	case AbsoluteY:
		base := cpu.fetchWord()
		cpu.address = base + uint16(cpu.Y)
		cpu.pageCrossed = base&pageMask != cpu.address&pageMask

	case Indirect: // Only used by JMP
		ptr := cpu.fetchWord()
		low := uint16(cpu.read(ptr))
		// The high byte is fetched without carrying into the next page:
		// JMP ($10FF) reads $10FF and $1000.
		high := uint16(cpu.read(ptr&pageMask | uint16(uint8(ptr)+1)))
		cpu.address = high<<8 | low

	case IndexedIndirect: // (zp,X)
		ptr := cpu.fetch() + cpu.X
		low := uint16(cpu.read(uint16(ptr)))
		high := uint16(cpu.read(uint16(ptr + 1)))
		cpu.address = high<<8 | low

	case IndirectIndexed: // (zp),Y
		ptr := cpu.fetch()
		low := uint16(cpu.read(uint16(ptr)))
		high := uint16(cpu.read(uint16(ptr + 1)))
		base := high<<8 | low
		cpu.address = base + uint16(cpu.Y)
		cpu.pageCrossed = base&pageMask != cpu.address&pageMask
	}

	return cpu.pageCrossed
}
