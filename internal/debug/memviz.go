package debug

import (
	"fmt"
	"io"
	"os"

	"github.com/bradleyjkemp/memviz"

	"nesemu/internal/cpu"
	"nesemu/internal/ppu"
)

// Console is the part of the system a state dump reads from
type Console interface {
	CPUState() cpu.State
	PPUState() ppu.State
}

// ConsoleState is the object graph rendered by memviz
type ConsoleState struct {
	CPU *cpu.State
	PPU *ppu.State
}

// CaptureState takes a snapshot of the console registers
func CaptureState(c Console) *ConsoleState {
	cpuState := c.CPUState()
	ppuState := c.PPUState()
	return &ConsoleState{CPU: &cpuState, PPU: &ppuState}
}

// WriteStateGraph writes a Graphviz dot graph of the console state
func WriteStateGraph(w io.Writer, c Console) {
	memviz.Map(w, CaptureState(c))
}

// SaveStateGraph writes the console state graph to a .dot file
func SaveStateGraph(path string, c Console) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	WriteStateGraph(file, c)
	return file.Close()
}
