package cpu

import "testing"

func TestArithmeticOverflowTruthTable(t *testing.T) {
	tests := []struct {
		name      string
		opcode    uint8
		a, m      uint8
		carry     bool
		expectedA uint8
		n, v, z   bool
		c         bool
	}{
		{"ADC positive overflow", 0x69, 0x50, 0x50, false, 0xA0, true, true, false, false},
		{"ADC mixed signs carry out", 0x69, 0x50, 0xD0, false, 0x20, false, false, false, true},
		{"ADC negative overflow", 0x69, 0xD0, 0x90, false, 0x60, false, true, false, true},
		{"ADC carry in", 0x69, 0x01, 0xFF, true, 0x01, false, false, false, true},
		{"ADC zero result", 0x69, 0x00, 0x00, false, 0x00, false, false, true, false},
		{"SBC no borrow", 0xE9, 0x50, 0xF0, true, 0x60, false, false, false, false},
		{"SBC positive minus negative overflows", 0xE9, 0x50, 0xB0, true, 0xA0, true, true, false, false},
		{"SBC negative minus positive overflows", 0xE9, 0xD0, 0x70, true, 0x60, false, true, false, true},
		{"SBC borrow in", 0xE9, 0x05, 0x01, false, 0x03, false, false, false, true},
		{"SBC unofficial EB", 0xEB, 0x10, 0x10, true, 0x00, false, false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			helper := NewCPUTestHelper()
			helper.LoadProgram(0x8000, tt.opcode, tt.m)
			helper.SetupResetVector(t, 0x8000)
			helper.CPU.A = tt.a
			helper.CPU.C = tt.carry

			if cycles := helper.Step(t); cycles != 2 {
				t.Errorf("Expected 2 cycles, got %d", cycles)
			}
			helper.AssertRegisters(t, tt.name, tt.expectedA, 0, 0, 0xFD, 0x8002)
			helper.AssertFlags(t, tt.name, tt.n, tt.v, tt.z, tt.c)
		})
	}
}

func TestLoadStoreProgram(t *testing.T) {
	helper := NewCPUTestHelper()
	helper.LoadProgram(0x8000,
		0xA9, 0x05, // LDA #$05
		0x85, 0x00, // STA $00
		0xA6, 0x00, // LDX $00
	)
	helper.SetupResetVector(t, 0x8000)

	for i := 0; i < 3; i++ {
		helper.Step(t)
	}

	helper.AssertMemory(t, "STA $00", 0x0000, 0x05)
	helper.AssertRegisters(t, "LDX $00", 0x05, 0x05, 0x00, 0xFD, 0x8006)
	if helper.CPU.Instructions != 3 {
		t.Errorf("Expected 3 instructions, got %d", helper.CPU.Instructions)
	}
}

func TestPHPPLPRoundTrip(t *testing.T) {
	helper := NewCPUTestHelper()
	helper.LoadProgram(0x8000, 0x08, 0x28) // PHP; PLP
	helper.SetupResetVector(t, 0x8000)

	helper.CPU.C, helper.CPU.D, helper.CPU.V, helper.CPU.N = true, true, true, true
	original := helper.CPU.StatusByte()

	if cycles := helper.Step(t); cycles != 3 {
		t.Errorf("PHP: Expected 3 cycles, got %d", cycles)
	}
	helper.AssertMemory(t, "PHP pushes B and U", 0x01FD, original|bFlagMask|unusedMask)

	helper.CPU.SetStatusByte(0x00)
	if cycles := helper.Step(t); cycles != 4 {
		t.Errorf("PLP: Expected 4 cycles, got %d", cycles)
	}
	if got := helper.CPU.StatusByte(); got != original {
		t.Errorf("Expected P=0x%02X after PLP, got 0x%02X", original, got)
	}
	if helper.CPU.SP != 0xFD {
		t.Errorf("Expected SP=0xFD, got 0x%02X", helper.CPU.SP)
	}
}

func TestPLPNormalisesBreakAndUnused(t *testing.T) {
	helper := NewCPUTestHelper()
	helper.LoadProgram(0x8000, 0x28) // PLP
	helper.SetupResetVector(t, 0x8000)
	helper.LoadProgram(0x01FE, 0x10)

	helper.Step(t)
	if got := helper.CPU.StatusByte(); got != 0x20 {
		t.Errorf("Expected P=0x20, got 0x%02X", got)
	}
}

func TestStackWrapsSilently(t *testing.T) {
	helper := NewCPUTestHelper()
	helper.LoadProgram(0x8000,
		0xA9, 0x42, // LDA #$42
		0x48,       // PHA
		0xA9, 0x00, // LDA #$00
		0x68, // PLA
	)
	helper.SetupResetVector(t, 0x8000)
	helper.CPU.SP = 0x00

	helper.Step(t)
	helper.Step(t)
	helper.AssertMemory(t, "PHA at SP=0", 0x0100, 0x42)
	if helper.CPU.SP != 0xFF {
		t.Errorf("Expected SP to wrap to 0xFF, got 0x%02X", helper.CPU.SP)
	}

	helper.Step(t)
	helper.Step(t)
	if helper.CPU.SP != 0x00 || helper.CPU.A != 0x42 {
		t.Errorf("Expected PLA to wrap back to SP=0x00 with A=0x42, got SP=0x%02X A=0x%02X", helper.CPU.SP, helper.CPU.A)
	}
}

func TestJMPIndirectPageWrapBug(t *testing.T) {
	helper := NewCPUTestHelper()
	helper.LoadProgram(0x8000, 0x6C, 0xFF, 0x02) // JMP ($02FF)
	helper.LoadProgram(0x02FF, 0x34)
	helper.LoadProgram(0x0200, 0x12)
	helper.LoadProgram(0x0300, 0x56)
	helper.SetupResetVector(t, 0x8000)

	if cycles := helper.Step(t); cycles != 5 {
		t.Errorf("Expected 5 cycles, got %d", cycles)
	}
	if helper.CPU.PC != 0x1234 {
		t.Errorf("Expected PC=0x1234 (high byte from $0200), got 0x%04X", helper.CPU.PC)
	}
}

func TestJSRRTS(t *testing.T) {
	helper := NewCPUTestHelper()
	helper.LoadProgram(0x8000, 0x20, 0x00, 0x90) // JSR $9000
	helper.LoadProgram(0x9000, 0x60)             // RTS
	helper.SetupResetVector(t, 0x8000)

	if cycles := helper.Step(t); cycles != 6 {
		t.Errorf("JSR: Expected 6 cycles, got %d", cycles)
	}
	helper.AssertRegisters(t, "JSR", 0, 0, 0, 0xFB, 0x9000)
	helper.AssertMemory(t, "JSR return high", 0x01FD, 0x80)
	helper.AssertMemory(t, "JSR return low", 0x01FC, 0x02)

	if cycles := helper.Step(t); cycles != 6 {
		t.Errorf("RTS: Expected 6 cycles, got %d", cycles)
	}
	helper.AssertRegisters(t, "RTS", 0, 0, 0, 0xFD, 0x8003)
}

func TestBRKRTI(t *testing.T) {
	helper := NewCPUTestHelper()
	helper.LoadProgram(0x8000, 0x00, 0xEA) // BRK, padding
	helper.LoadProgram(0x9000, 0x40)       // RTI
	helper.LoadProgram(irqVector, 0x00, 0x90)
	helper.SetupResetVector(t, 0x8000)
	helper.CPU.I = false

	if cycles := helper.Step(t); cycles != 7 {
		t.Errorf("BRK: Expected 7 cycles, got %d", cycles)
	}
	helper.AssertRegisters(t, "BRK", 0, 0, 0, 0xFA, 0x9000)
	helper.AssertMemory(t, "BRK return high", 0x01FD, 0x80)
	helper.AssertMemory(t, "BRK return low", 0x01FC, 0x02)
	helper.AssertMemory(t, "BRK status", 0x01FB, 0x30)
	if !helper.CPU.I {
		t.Error("Expected BRK to set the interrupt disable flag")
	}

	if cycles := helper.Step(t); cycles != 6 {
		t.Errorf("RTI: Expected 6 cycles, got %d", cycles)
	}
	helper.AssertRegisters(t, "RTI", 0, 0, 0, 0xFD, 0x8002)
	if helper.CPU.I {
		t.Error("Expected RTI to restore the interrupt disable flag")
	}
}

func TestShiftTargets(t *testing.T) {
	tests := []struct {
		name     string
		program  []uint8
		a        uint8
		carry    bool
		memory   uint8
		expected uint8
		inA      bool
		c        bool
	}{
		{"ASL A", []uint8{0x0A}, 0x81, false, 0x00, 0x02, true, true},
		{"LSR A", []uint8{0x4A}, 0x03, false, 0x00, 0x01, true, true},
		{"ROL A with carry", []uint8{0x2A}, 0x40, true, 0x00, 0x81, true, false},
		{"ROR A with carry", []uint8{0x6A}, 0x02, true, 0x00, 0x81, true, false},
		{"ASL zp", []uint8{0x06, 0x10}, 0x55, false, 0xC0, 0x80, false, true},
		{"ROR zp", []uint8{0x66, 0x10}, 0x55, true, 0x01, 0x80, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			helper := NewCPUTestHelper()
			helper.LoadProgram(0x8000, tt.program...)
			helper.LoadProgram(0x0010, tt.memory)
			helper.SetupResetVector(t, 0x8000)
			helper.CPU.A = tt.a
			helper.CPU.C = tt.carry

			helper.Step(t)

			if tt.inA {
				if helper.CPU.A != tt.expected {
					t.Errorf("Expected A=0x%02X, got 0x%02X", tt.expected, helper.CPU.A)
				}
				helper.AssertMemory(t, tt.name, 0x0010, tt.memory)
			} else {
				if helper.CPU.A != tt.a {
					t.Errorf("Expected A untouched (0x%02X), got 0x%02X", tt.a, helper.CPU.A)
				}
				helper.AssertMemory(t, tt.name, 0x0010, tt.expected)
			}
			if helper.CPU.C != tt.c {
				t.Errorf("Expected C=%v, got %v", tt.c, helper.CPU.C)
			}
		})
	}
}

func TestBITAndCompare(t *testing.T) {
	helper := NewCPUTestHelper()
	helper.LoadProgram(0x8000,
		0x24, 0x10, // BIT $10
		0xC9, 0x40, // CMP #$40
		0xE0, 0x05, // CPX #$05
	)
	helper.LoadProgram(0x0010, 0xC0)
	helper.SetupResetVector(t, 0x8000)
	helper.CPU.A = 0x3F
	helper.CPU.X = 0x04

	helper.Step(t)
	helper.AssertFlags(t, "BIT", true, true, true, false)

	helper.Step(t)
	helper.AssertFlags(t, "CMP A<M", true, true, false, false)

	helper.Step(t)
	helper.AssertFlags(t, "CPX X<M", true, true, false, false)
}

func TestIncrementDecrementWrap(t *testing.T) {
	helper := NewCPUTestHelper()
	helper.LoadProgram(0x8000,
		0xE6, 0x10, // INC $10
		0xCA, // DEX
		0x88, // DEY
	)
	helper.LoadProgram(0x0010, 0xFF)
	helper.SetupResetVector(t, 0x8000)
	helper.CPU.C = true

	helper.Step(t)
	helper.AssertMemory(t, "INC wraps", 0x0010, 0x00)
	helper.AssertFlags(t, "INC wraps", false, false, true, true)

	helper.Step(t)
	helper.Step(t)
	helper.AssertRegisters(t, "DEX/DEY wrap", 0x00, 0xFF, 0xFF, 0xFD, 0x8004)
	if !helper.CPU.C {
		t.Error("Expected increments and decrements to leave carry alone")
	}
}

func TestAddressingModes(t *testing.T) {
	tests := []struct {
		name     string
		program  []uint8
		x, y     uint8
		setup    map[uint16]uint8
		expected uint8
	}{
		{"zero page,X wraps", []uint8{0xB5, 0xF0}, 0x20, 0, map[uint16]uint8{0x0010: 0x11}, 0x11},
		{"zero page,Y", []uint8{0xB6, 0x10}, 0, 0x01, map[uint16]uint8{0x0011: 0x22}, 0x22},
		{"absolute,Y", []uint8{0xB9, 0x00, 0x03}, 0, 0x05, map[uint16]uint8{0x0305: 0x33}, 0x33},
		{"(zp,X) wraps pointer", []uint8{0xA1, 0xFE}, 0x01, 0, map[uint16]uint8{0x00FF: 0x00, 0x0000: 0x04, 0x0400: 0x44}, 0x44},
		{"(zp),Y", []uint8{0xB1, 0x20}, 0, 0x10, map[uint16]uint8{0x0020: 0x00, 0x0021: 0x05, 0x0510: 0x55}, 0x55},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			helper := NewCPUTestHelper()
			helper.LoadProgram(0x8000, tt.program...)
			for address, value := range tt.setup {
				helper.LoadProgram(address, value)
			}
			helper.SetupResetVector(t, 0x8000)
			helper.CPU.X = tt.x
			helper.CPU.Y = tt.y

			helper.Step(t)

			var got uint8
			if tt.program[0] == 0xB6 {
				got = helper.CPU.X
			} else {
				got = helper.CPU.A
			}
			if got != tt.expected {
				t.Errorf("Expected 0x%02X, got 0x%02X", tt.expected, got)
			}
		})
	}
}

func TestUnofficialOpcodes(t *testing.T) {
	t.Run("LAX loads A and X", func(t *testing.T) {
		helper := NewCPUTestHelper()
		helper.LoadProgram(0x8000, 0xA7, 0x10) // LAX $10
		helper.LoadProgram(0x0010, 0x8F)
		helper.SetupResetVector(t, 0x8000)

		helper.Step(t)
		helper.AssertRegisters(t, "LAX", 0x8F, 0x8F, 0x00, 0xFD, 0x8002)
		helper.AssertFlags(t, "LAX", true, false, false, false)
	})

	t.Run("SAX stores A AND X", func(t *testing.T) {
		helper := NewCPUTestHelper()
		helper.LoadProgram(0x8000, 0x87, 0x10) // SAX $10
		helper.SetupResetVector(t, 0x8000)
		helper.CPU.A, helper.CPU.X = 0xF0, 0x3C

		helper.Step(t)
		helper.AssertMemory(t, "SAX", 0x0010, 0x30)
	})

	t.Run("DCP decrements then compares", func(t *testing.T) {
		helper := NewCPUTestHelper()
		helper.LoadProgram(0x8000, 0xC7, 0x10) // DCP $10
		helper.LoadProgram(0x0010, 0x41)
		helper.SetupResetVector(t, 0x8000)
		helper.CPU.A = 0x40

		if cycles := helper.Step(t); cycles != 5 {
			t.Errorf("Expected 5 cycles, got %d", cycles)
		}
		helper.AssertMemory(t, "DCP", 0x0010, 0x40)
		helper.AssertFlags(t, "DCP", false, false, true, true)
	})

	t.Run("ISB increments then subtracts", func(t *testing.T) {
		helper := NewCPUTestHelper()
		helper.LoadProgram(0x8000, 0xE7, 0x10) // ISB $10
		helper.LoadProgram(0x0010, 0x0F)
		helper.SetupResetVector(t, 0x8000)
		helper.CPU.A = 0x30
		helper.CPU.C = true

		helper.Step(t)
		helper.AssertMemory(t, "ISB", 0x0010, 0x10)
		if helper.CPU.A != 0x20 {
			t.Errorf("Expected A=0x20, got 0x%02X", helper.CPU.A)
		}
	})

	t.Run("SLO shifts then ORs", func(t *testing.T) {
		helper := NewCPUTestHelper()
		helper.LoadProgram(0x8000, 0x07, 0x10) // SLO $10
		helper.LoadProgram(0x0010, 0x81)
		helper.SetupResetVector(t, 0x8000)
		helper.CPU.A = 0x01

		helper.Step(t)
		helper.AssertMemory(t, "SLO", 0x0010, 0x02)
		if helper.CPU.A != 0x03 || !helper.CPU.C {
			t.Errorf("Expected A=0x03 C=true, got A=0x%02X C=%v", helper.CPU.A, helper.CPU.C)
		}
	})

	t.Run("AXS subtracts from A AND X", func(t *testing.T) {
		helper := NewCPUTestHelper()
		helper.LoadProgram(0x8000, 0xCB, 0x02) // AXS #$02
		helper.SetupResetVector(t, 0x8000)
		helper.CPU.A, helper.CPU.X = 0x0F, 0xFF

		helper.Step(t)
		if helper.CPU.X != 0x0D || !helper.CPU.C {
			t.Errorf("Expected X=0x0D C=true, got X=0x%02X C=%v", helper.CPU.X, helper.CPU.C)
		}
	})
}

func TestJAMHaltsProcessor(t *testing.T) {
	helper := NewCPUTestHelper()
	helper.LoadProgram(0x8000, 0x02)
	helper.SetupResetVector(t, 0x8000)

	if _, err := helper.CPU.Step(); err != nil {
		t.Fatalf("Expected the JAM instruction itself to complete, got %v", err)
	}
	if !helper.CPU.Jammed() {
		t.Fatal("Expected CPU to be jammed")
	}
	if _, err := helper.CPU.Step(); err != ErrJammed {
		t.Errorf("Expected ErrJammed, got %v", err)
	}
	if helper.CPU.PC != 0x8000 {
		t.Errorf("Expected PC to stay on the JAM opcode, got 0x%04X", helper.CPU.PC)
	}
}
