package cpu

// Op identifies an instruction's operation, independent of addressing mode.
type Op uint8

const (
	ADC Op = iota
	AND
	ASL
	BCC
	BCS
	BEQ
	BIT
	BMI
	BNE
	BPL
	BRK
	BVC
	BVS
	CLC
	CLD
	CLI
	CLV
	CMP
	CPX
	CPY
	DEC
	DEX
	DEY
	EOR
	INC
	INX
	INY
	JMP
	JSR
	LDA
	LDX
	LDY
	LSR
	NOP
	ORA
	PHA
	PHP
	PLA
	PLP
	ROL
	ROR
	RTI
	RTS
	SBC
	SEC
	SED
	SEI
	STA
	STX
	STY
	TAX
	TAY
	TSX
	TXA
	TXS
	TYA

	// Unofficial operations
	AHX
	ALR
	ANC
	ARR
	AXS
	DCP
	ISB
	JAM
	LAS
	LAX
	LXA
	RLA
	RRA
	SAX
	SHX
	SHY
	SLO
	SRE
	TAS
	XAA
)

var opNames = [...]string{
	ADC: "ADC", AND: "AND", ASL: "ASL", BCC: "BCC", BCS: "BCS", BEQ: "BEQ",
	BIT: "BIT", BMI: "BMI", BNE: "BNE", BPL: "BPL", BRK: "BRK", BVC: "BVC",
	BVS: "BVS", CLC: "CLC", CLD: "CLD", CLI: "CLI", CLV: "CLV", CMP: "CMP",
	CPX: "CPX", CPY: "CPY", DEC: "DEC", DEX: "DEX", DEY: "DEY", EOR: "EOR",
	INC: "INC", INX: "INX", INY: "INY", JMP: "JMP", JSR: "JSR", LDA: "LDA",
	LDX: "LDX", LDY: "LDY", LSR: "LSR", NOP: "NOP", ORA: "ORA", PHA: "PHA",
	PHP: "PHP", PLA: "PLA", PLP: "PLP", ROL: "ROL", ROR: "ROR", RTI: "RTI",
	RTS: "RTS", SBC: "SBC", SEC: "SEC", SED: "SED", SEI: "SEI", STA: "STA",
	STX: "STX", STY: "STY", TAX: "TAX", TAY: "TAY", TSX: "TSX", TXA: "TXA",
	TXS: "TXS", TYA: "TYA",
	AHX: "AHX", ALR: "ALR", ANC: "ANC", ARR: "ARR", AXS: "AXS", DCP: "DCP",
	ISB: "ISB", JAM: "JAM", LAS: "LAS", LAX: "LAX", LXA: "LXA", RLA: "RLA",
	RRA: "RRA", SAX: "SAX", SHX: "SHX", SHY: "SHY", SLO: "SLO", SRE: "SRE",
	TAS: "TAS", XAA: "XAA",
}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return "???"
}

// entry flags
const (
	// pageCycle charges one extra cycle when the addressing mode crosses a page.
	// Only read instructions pay it; stores and read-modify-write ops already
	// include the cycle in their base count.
	pageCycle uint8 = 1 << iota
	// unofficial marks undocumented opcodes.
	unofficial
)

const (
	xp = pageCycle
	un = unofficial
)

// Instruction is one entry of the opcode table.
type Instruction struct {
	Op     Op
	Mode   AddressingMode
	Bytes  uint8
	Cycles uint8
	flags  uint8
}

// PageCycle reports whether a page crossing costs this instruction a cycle.
func (in Instruction) PageCycle() bool {
	return in.flags&pageCycle != 0
}

// Unofficial reports whether the opcode is undocumented.
func (in Instruction) Unofficial() bool {
	return in.flags&unofficial != 0
}

// Lookup returns the table entry for an opcode.
func Lookup(opcode uint8) Instruction {
	return instructions[opcode]
}

// instructions is indexed by opcode. Every one of the 256 entries is populated.
var instructions = [256]Instruction{
	0x00: {BRK, Implied, 1, 7, 0},
	0x01: {ORA, IndexedIndirect, 2, 6, 0},
	0x02: {JAM, Implied, 1, 2, un},
	0x03: {SLO, IndexedIndirect, 2, 8, un},
	0x04: {NOP, ZeroPage, 2, 3, un},
	0x05: {ORA, ZeroPage, 2, 3, 0},
	0x06: {ASL, ZeroPage, 2, 5, 0},
	0x07: {SLO, ZeroPage, 2, 5, un},
	0x08: {PHP, Implied, 1, 3, 0},
	0x09: {ORA, Immediate, 2, 2, 0},
	0x0A: {ASL, Accumulator, 1, 2, 0},
	0x0B: {ANC, Immediate, 2, 2, un},
	0x0C: {NOP, Absolute, 3, 4, un},
	0x0D: {ORA, Absolute, 3, 4, 0},
	0x0E: {ASL, Absolute, 3, 6, 0},
	0x0F: {SLO, Absolute, 3, 6, un},

	0x10: {BPL, Relative, 2, 2, 0},
	0x11: {ORA, IndirectIndexed, 2, 5, xp},
	0x12: {JAM, Implied, 1, 2, un},
	0x13: {SLO, IndirectIndexed, 2, 8, un},
	0x14: {NOP, ZeroPageX, 2, 4, un},
	0x15: {ORA, ZeroPageX, 2, 4, 0},
	0x16: {ASL, ZeroPageX, 2, 6, 0},
	0x17: {SLO, ZeroPageX, 2, 6, un},
	0x18: {CLC, Implied, 1, 2, 0},
	0x19: {ORA, AbsoluteY, 3, 4, xp},
	0x1A: {NOP, Implied, 1, 2, un},
	0x1B: {SLO, AbsoluteY, 3, 7, un},
	0x1C: {NOP, AbsoluteX, 3, 4, xp | un},
	0x1D: {ORA, AbsoluteX, 3, 4, xp},
	0x1E: {ASL, AbsoluteX, 3, 7, 0},
	0x1F: {SLO, AbsoluteX, 3, 7, un},

	0x20: {JSR, Absolute, 3, 6, 0},
	0x21: {AND, IndexedIndirect, 2, 6, 0},
	0x22: {JAM, Implied, 1, 2, un},
	0x23: {RLA, IndexedIndirect, 2, 8, un},
	0x24: {BIT, ZeroPage, 2, 3, 0},
	0x25: {AND, ZeroPage, 2, 3, 0},
	0x26: {ROL, ZeroPage, 2, 5, 0},
	0x27: {RLA, ZeroPage, 2, 5, un},
	0x28: {PLP, Implied, 1, 4, 0},
	0x29: {AND, Immediate, 2, 2, 0},
	0x2A: {ROL, Accumulator, 1, 2, 0},
	0x2B: {ANC, Immediate, 2, 2, un},
	0x2C: {BIT, Absolute, 3, 4, 0},
	0x2D: {AND, Absolute, 3, 4, 0},
	0x2E: {ROL, Absolute, 3, 6, 0},
	0x2F: {RLA, Absolute, 3, 6, un},

	0x30: {BMI, Relative, 2, 2, 0},
	0x31: {AND, IndirectIndexed, 2, 5, xp},
	0x32: {JAM, Implied, 1, 2, un},
	0x33: {RLA, IndirectIndexed, 2, 8, un},
	0x34: {NOP, ZeroPageX, 2, 4, un},
	0x35: {AND, ZeroPageX, 2, 4, 0},
	0x36: {ROL, ZeroPageX, 2, 6, 0},
	0x37: {RLA, ZeroPageX, 2, 6, un},
	0x38: {SEC, Implied, 1, 2, 0},
	0x39: {AND, AbsoluteY, 3, 4, xp},
	0x3A: {NOP, Implied, 1, 2, un},
	0x3B: {RLA, AbsoluteY, 3, 7, un},
	0x3C: {NOP, AbsoluteX, 3, 4, xp | un},
	0x3D: {AND, AbsoluteX, 3, 4, xp},
	0x3E: {ROL, AbsoluteX, 3, 7, 0},
	0x3F: {RLA, AbsoluteX, 3, 7, un},

	0x40: {RTI, Implied, 1, 6, 0},
	0x41: {EOR, IndexedIndirect, 2, 6, 0},
	0x42: {JAM, Implied, 1, 2, un},
	0x43: {SRE, IndexedIndirect, 2, 8, un},
	0x44: {NOP, ZeroPage, 2, 3, un},
	0x45: {EOR, ZeroPage, 2, 3, 0},
	0x46: {LSR, ZeroPage, 2, 5, 0},
	0x47: {SRE, ZeroPage, 2, 5, un},
	0x48: {PHA, Implied, 1, 3, 0},
	0x49: {EOR, Immediate, 2, 2, 0},
	0x4A: {LSR, Accumulator, 1, 2, 0},
	0x4B: {ALR, Immediate, 2, 2, un},
	0x4C: {JMP, Absolute, 3, 3, 0},
	0x4D: {EOR, Absolute, 3, 4, 0},
	0x4E: {LSR, Absolute, 3, 6, 0},
	0x4F: {SRE, Absolute, 3, 6, un},

	0x50: {BVC, Relative, 2, 2, 0},
	0x51: {EOR, IndirectIndexed, 2, 5, xp},
	0x52: {JAM, Implied, 1, 2, un},
	0x53: {SRE, IndirectIndexed, 2, 8, un},
	0x54: {NOP, ZeroPageX, 2, 4, un},
	0x55: {EOR, ZeroPageX, 2, 4, 0},
	0x56: {LSR, ZeroPageX, 2, 6, 0},
	0x57: {SRE, ZeroPageX, 2, 6, un},
	0x58: {CLI, Implied, 1, 2, 0},
	0x59: {EOR, AbsoluteY, 3, 4, xp},
	0x5A: {NOP, Implied, 1, 2, un},
	0x5B: {SRE, AbsoluteY, 3, 7, un},
	0x5C: {NOP, AbsoluteX, 3, 4, xp | un},
	0x5D: {EOR, AbsoluteX, 3, 4, xp},
	0x5E: {LSR, AbsoluteX, 3, 7, 0},
	0x5F: {SRE, AbsoluteX, 3, 7, un},

	0x60: {RTS, Implied, 1, 6, 0},
	0x61: {ADC, IndexedIndirect, 2, 6, 0},
	0x62: {JAM, Implied, 1, 2, un},
	0x63: {RRA, IndexedIndirect, 2, 8, un},
	0x64: {NOP, ZeroPage, 2, 3, un},
	0x65: {ADC, ZeroPage, 2, 3, 0},
	0x66: {ROR, ZeroPage, 2, 5, 0},
	0x67: {RRA, ZeroPage, 2, 5, un},
	0x68: {PLA, Implied, 1, 4, 0},
	0x69: {ADC, Immediate, 2, 2, 0},
	0x6A: {ROR, Accumulator, 1, 2, 0},
	0x6B: {ARR, Immediate, 2, 2, un},
	0x6C: {JMP, Indirect, 3, 5, 0},
	0x6D: {ADC, Absolute, 3, 4, 0},
	0x6E: {ROR, Absolute, 3, 6, 0},
	0x6F: {RRA, Absolute, 3, 6, un},

	0x70: {BVS, Relative, 2, 2, 0},
	0x71: {ADC, IndirectIndexed, 2, 5, xp},
	0x72: {JAM, Implied, 1, 2, un},
	0x73: {RRA, IndirectIndexed, 2, 8, un},
	0x74: {NOP, ZeroPageX, 2, 4, un},
	0x75: {ADC, ZeroPageX, 2, 4, 0},
	0x76: {ROR, ZeroPageX, 2, 6, 0},
	0x77: {RRA, ZeroPageX, 2, 6, un},
	0x78: {SEI, Implied, 1, 2, 0},
	0x79: {ADC, AbsoluteY, 3, 4, xp},
	0x7A: {NOP, Implied, 1, 2, un},
	0x7B: {RRA, AbsoluteY, 3, 7, un},
	0x7C: {NOP, AbsoluteX, 3, 4, xp | un},
	0x7D: {ADC, AbsoluteX, 3, 4, xp},
	0x7E: {ROR, AbsoluteX, 3, 7, 0},
	0x7F: {RRA, AbsoluteX, 3, 7, un},

	0x80: {NOP, Immediate, 2, 2, un},
	0x81: {STA, IndexedIndirect, 2, 6, 0},
	0x82: {NOP, Immediate, 2, 2, un},
	0x83: {SAX, IndexedIndirect, 2, 6, un},
	0x84: {STY, ZeroPage, 2, 3, 0},
	0x85: {STA, ZeroPage, 2, 3, 0},
	0x86: {STX, ZeroPage, 2, 3, 0},
	0x87: {SAX, ZeroPage, 2, 3, un},
	0x88: {DEY, Implied, 1, 2, 0},
	0x89: {NOP, Immediate, 2, 2, un},
	0x8A: {TXA, Implied, 1, 2, 0},
	0x8B: {XAA, Immediate, 2, 2, un},
	0x8C: {STY, Absolute, 3, 4, 0},
	0x8D: {STA, Absolute, 3, 4, 0},
	0x8E: {STX, Absolute, 3, 4, 0},
	0x8F: {SAX, Absolute, 3, 4, un},

	0x90: {BCC, Relative, 2, 2, 0},
	0x91: {STA, IndirectIndexed, 2, 6, 0},
	0x92: {JAM, Implied, 1, 2, un},
	0x93: {AHX, IndirectIndexed, 2, 6, un},
	0x94: {STY, ZeroPageX, 2, 4, 0},
	0x95: {STA, ZeroPageX, 2, 4, 0},
	0x96: {STX, ZeroPageY, 2, 4, 0},
	0x97: {SAX, ZeroPageY, 2, 4, un},
	0x98: {TYA, Implied, 1, 2, 0},
	0x99: {STA, AbsoluteY, 3, 5, 0},
	0x9A: {TXS, Implied, 1, 2, 0},
	0x9B: {TAS, AbsoluteY, 3, 5, un},
	0x9C: {SHY, AbsoluteX, 3, 5, un},
	0x9D: {STA, AbsoluteX, 3, 5, 0},
	0x9E: {SHX, AbsoluteY, 3, 5, un},
	0x9F: {AHX, AbsoluteY, 3, 5, un},

	0xA0: {LDY, Immediate, 2, 2, 0},
	0xA1: {LDA, IndexedIndirect, 2, 6, 0},
	0xA2: {LDX, Immediate, 2, 2, 0},
	0xA3: {LAX, IndexedIndirect, 2, 6, un},
	0xA4: {LDY, ZeroPage, 2, 3, 0},
	0xA5: {LDA, ZeroPage, 2, 3, 0},
	0xA6: {LDX, ZeroPage, 2, 3, 0},
	0xA7: {LAX, ZeroPage, 2, 3, un},
	0xA8: {TAY, Implied, 1, 2, 0},
	0xA9: {LDA, Immediate, 2, 2, 0},
	0xAA: {TAX, Implied, 1, 2, 0},
	0xAB: {LXA, Immediate, 2, 2, un},
	0xAC: {LDY, Absolute, 3, 4, 0},
	0xAD: {LDA, Absolute, 3, 4, 0},
	0xAE: {LDX, Absolute, 3, 4, 0},
	0xAF: {LAX, Absolute, 3, 4, un},

	0xB0: {BCS, Relative, 2, 2, 0},
	0xB1: {LDA, IndirectIndexed, 2, 5, xp},
	0xB2: {JAM, Implied, 1, 2, un},
	0xB3: {LAX, IndirectIndexed, 2, 5, xp | un},
	0xB4: {LDY, ZeroPageX, 2, 4, 0},
	0xB5: {LDA, ZeroPageX, 2, 4, 0},
	0xB6: {LDX, ZeroPageY, 2, 4, 0},
	0xB7: {LAX, ZeroPageY, 2, 4, un},
	0xB8: {CLV, Implied, 1, 2, 0},
	0xB9: {LDA, AbsoluteY, 3, 4, xp},
	0xBA: {TSX, Implied, 1, 2, 0},
	0xBB: {LAS, AbsoluteY, 3, 4, xp | un},
	0xBC: {LDY, AbsoluteX, 3, 4, xp},
	0xBD: {LDA, AbsoluteX, 3, 4, xp},
	0xBE: {LDX, AbsoluteY, 3, 4, xp},
	0xBF: {LAX, AbsoluteY, 3, 4, xp | un},

	0xC0: {CPY, Immediate, 2, 2, 0},
	0xC1: {CMP, IndexedIndirect, 2, 6, 0},
	0xC2: {NOP, Immediate, 2, 2, un},
	0xC3: {DCP, IndexedIndirect, 2, 8, un},
	0xC4: {CPY, ZeroPage, 2, 3, 0},
	0xC5: {CMP, ZeroPage, 2, 3, 0},
	0xC6: {DEC, ZeroPage, 2, 5, 0},
	0xC7: {DCP, ZeroPage, 2, 5, un},
	0xC8: {INY, Implied, 1, 2, 0},
	0xC9: {CMP, Immediate, 2, 2, 0},
	0xCA: {DEX, Implied, 1, 2, 0},
	0xCB: {AXS, Immediate, 2, 2, un},
	0xCC: {CPY, Absolute, 3, 4, 0},
	0xCD: {CMP, Absolute, 3, 4, 0},
	0xCE: {DEC, Absolute, 3, 6, 0},
	0xCF: {DCP, Absolute, 3, 6, un},

	0xD0: {BNE, Relative, 2, 2, 0},
	0xD1: {CMP, IndirectIndexed, 2, 5, xp},
	0xD2: {JAM, Implied, 1, 2, un},
	0xD3: {DCP, IndirectIndexed, 2, 8, un},
	0xD4: {NOP, ZeroPageX, 2, 4, un},
	0xD5: {CMP, ZeroPageX, 2, 4, 0},
	0xD6: {DEC, ZeroPageX, 2, 6, 0},
	0xD7: {DCP, ZeroPageX, 2, 6, un},
	0xD8: {CLD, Implied, 1, 2, 0},
	0xD9: {CMP, AbsoluteY, 3, 4, xp},
	0xDA: {NOP, Implied, 1, 2, un},
	0xDB: {DCP, AbsoluteY, 3, 7, un},
	0xDC: {NOP, AbsoluteX, 3, 4, xp | un},
	0xDD: {CMP, AbsoluteX, 3, 4, xp},
	0xDE: {DEC, AbsoluteX, 3, 7, 0},
	0xDF: {DCP, AbsoluteX, 3, 7, un},

	0xE0: {CPX, Immediate, 2, 2, 0},
	0xE1: {SBC, IndexedIndirect, 2, 6, 0},
	0xE2: {NOP, Immediate, 2, 2, un},
	0xE3: {ISB, IndexedIndirect, 2, 8, un},
	0xE4: {CPX, ZeroPage, 2, 3, 0},
	0xE5: {SBC, ZeroPage, 2, 3, 0},
	0xE6: {INC, ZeroPage, 2, 5, 0},
	0xE7: {ISB, ZeroPage, 2, 5, un},
	0xE8: {INX, Implied, 1, 2, 0},
	0xE9: {SBC, Immediate, 2, 2, 0},
	0xEA: {NOP, Implied, 1, 2, 0},
	0xEB: {SBC, Immediate, 2, 2, un},
	0xEC: {CPX, Absolute, 3, 4, 0},
	0xED: {SBC, Absolute, 3, 4, 0},
	0xEE: {INC, Absolute, 3, 6, 0},
	0xEF: {ISB, Absolute, 3, 6, un},

	0xF0: {BEQ, Relative, 2, 2, 0},
	0xF1: {SBC, IndirectIndexed, 2, 5, xp},
	0xF2: {JAM, Implied, 1, 2, un},
	0xF3: {ISB, IndirectIndexed, 2, 8, un},
	0xF4: {NOP, ZeroPageX, 2, 4, un},
	0xF5: {SBC, ZeroPageX, 2, 4, 0},
	0xF6: {INC, ZeroPageX, 2, 6, 0},
	0xF7: {ISB, ZeroPageX, 2, 6, un},
	0xF8: {SED, Implied, 1, 2, 0},
	0xF9: {SBC, AbsoluteY, 3, 4, xp},
	0xFA: {NOP, Implied, 1, 2, un},
	0xFB: {ISB, AbsoluteY, 3, 7, un},
	0xFC: {NOP, AbsoluteX, 3, 4, xp | un},
	0xFD: {SBC, AbsoluteX, 3, 4, xp},
	0xFE: {INC, AbsoluteX, 3, 7, 0},
	0xFF: {ISB, AbsoluteX, 3, 7, un},
}
