package cpu

import "testing"

func TestNMISequence(t *testing.T) {
	helper := NewCPUTestHelper()
	helper.LoadProgram(0x8000, 0xEA, 0xEA)
	helper.LoadProgram(nmiVector, 0x00, 0x90)
	helper.SetupResetVector(t, 0x8000)
	helper.CPU.I = false
	helper.CPU.C = true

	helper.CPU.TriggerNMI()
	if cycles := helper.Step(t); cycles != 7 {
		t.Errorf("Expected NMI entry to take 7 cycles, got %d", cycles)
	}

	helper.AssertRegisters(t, "NMI", 0, 0, 0, 0xFA, 0x9000)
	helper.AssertMemory(t, "NMI return high", 0x01FD, 0x80)
	helper.AssertMemory(t, "NMI return low", 0x01FC, 0x00)
	helper.AssertMemory(t, "NMI status has B clear and U set", 0x01FB, 0x21)
	if !helper.CPU.I {
		t.Error("Expected NMI to set the interrupt disable flag")
	}
	if helper.CPU.Instructions != 0 {
		t.Errorf("Expected no opcode fetch during NMI entry, got %d instructions", helper.CPU.Instructions)
	}
	if helper.CPU.NMIPending() {
		t.Error("Expected NMI to be consumed")
	}
}

func TestNMIServicedAtInstructionBoundary(t *testing.T) {
	helper := NewCPUTestHelper()
	helper.LoadProgram(0x8000, 0xAD, 0x00, 0x02, 0xEA) // LDA $0200; NOP
	helper.LoadProgram(nmiVector, 0x00, 0x90)
	helper.SetupResetVector(t, 0x8000)

	// Fetch LDA, then latch the NMI mid-instruction
	if err := helper.CPU.Clock(); err != nil {
		t.Fatalf("Clock failed: %v", err)
	}
	helper.CPU.TriggerNMI()

	for i := 0; i < 3; i++ {
		if err := helper.CPU.Clock(); err != nil {
			t.Fatalf("Clock failed: %v", err)
		}
	}
	if !helper.CPU.Ready() || !helper.CPU.NMIPending() {
		t.Fatalf("Expected LDA to finish with the NMI still pending, PC=0x%04X", helper.CPU.PC)
	}

	if cycles := helper.Step(t); cycles != 7 {
		t.Errorf("Expected NMI entry to take 7 cycles, got %d", cycles)
	}
	if helper.CPU.PC != 0x9000 {
		t.Errorf("Expected NMI handler at 0x9000, got 0x%04X", helper.CPU.PC)
	}
	helper.AssertMemory(t, "NMI return low", 0x01FC, 0x03)
}

func TestNMIIgnoresInterruptDisable(t *testing.T) {
	helper := NewCPUTestHelper()
	helper.LoadProgram(0x8000, 0x78, 0xEA) // SEI; NOP
	helper.LoadProgram(nmiVector, 0x00, 0x90)
	helper.SetupResetVector(t, 0x8000)

	helper.Step(t)
	helper.CPU.TriggerNMI()
	helper.Step(t)

	if helper.CPU.PC != 0x9000 {
		t.Errorf("Expected NMI to be taken with I set, PC=0x%04X", helper.CPU.PC)
	}
}
