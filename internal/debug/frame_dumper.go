// Package debug provides frame dumping, pattern table viewing and runtime
// inspection utilities
package debug

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/golang/glog"

	"nesemu/internal/ppu"
)

// RGBFrame is a row-major frame of 0x00RRGGBB pixels
type RGBFrame = [ppu.Width * ppu.Height]uint32

// FrameDumper provides utilities for dumping frame buffer contents
type FrameDumper struct {
	outputDir    string
	dumpEnabled  bool
	dumpCount    int
	maxDumps     int // 0 means unlimited
	dumpInterval int // Dump every N frames
}

// NewFrameDumper creates a new frame dumper
func NewFrameDumper(outputDir string) *FrameDumper {
	return &FrameDumper{
		outputDir:    outputDir,
		maxDumps:     10,
		dumpInterval: 1,
	}
}

// Enable activates frame dumping, creating the output directory
func (fd *FrameDumper) Enable() error {
	if err := os.MkdirAll(fd.outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create dump directory: %w", err)
	}
	fd.dumpEnabled = true
	return nil
}

// Disable deactivates frame dumping
func (fd *FrameDumper) Disable() {
	fd.dumpEnabled = false
}

// Enabled reports whether dumping is active
func (fd *FrameDumper) Enabled() bool {
	return fd.dumpEnabled
}

// SetMaxDumps sets the maximum number of frames to dump
func (fd *FrameDumper) SetMaxDumps(max int) {
	fd.maxDumps = max
}

// SetDumpInterval sets the interval between frame dumps
func (fd *FrameDumper) SetDumpInterval(interval int) {
	if interval < 1 {
		interval = 1
	}
	fd.dumpInterval = interval
}

// DumpCount returns the number of frames written so far
func (fd *FrameDumper) DumpCount() int {
	return fd.dumpCount
}

// shouldDump applies the enable flag, interval and dump limit
func (fd *FrameDumper) shouldDump(frameNum uint64) bool {
	if !fd.dumpEnabled {
		return false
	}
	if frameNum%uint64(fd.dumpInterval) != 0 {
		return false
	}
	return fd.maxDumps == 0 || fd.dumpCount < fd.maxDumps
}

// DumpFrame writes the frame as a binary PPM image. It returns the path of
// the written file, or "" when the frame was skipped.
func (fd *FrameDumper) DumpFrame(frame *RGBFrame, frameNum uint64) (string, error) {
	if !fd.shouldDump(frameNum) {
		return "", nil
	}

	path := filepath.Join(fd.outputDir, fmt.Sprintf("frame_%06d.ppm", frameNum))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create frame dump file: %w", err)
	}
	defer file.Close()

	if err := WritePPM(file, frame); err != nil {
		return "", err
	}

	fd.dumpCount++
	glog.V(1).Infof("[DEBUG] frame %d dumped to %s", frameNum, path)
	return path, nil
}

// DumpIndices writes a text dump of a colour-index frame buffer (column-major,
// as produced by the PPU), one row of hex indices per scanline
func (fd *FrameDumper) DumpIndices(indices *[ppu.Width * ppu.Height]uint8, frameNum uint64) (string, error) {
	if !fd.shouldDump(frameNum) {
		return "", nil
	}

	path := filepath.Join(fd.outputDir, fmt.Sprintf("frame_%06d.txt", frameNum))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create frame dump file: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	fmt.Fprintf(w, "Frame Number: %d\n", frameNum)
	fmt.Fprintf(w, "Dimensions: %dx%d\n", ppu.Width, ppu.Height)
	for y := 0; y < ppu.Height; y++ {
		fmt.Fprintf(w, "%03d:", y)
		for x := 0; x < ppu.Width; x++ {
			fmt.Fprintf(w, " %02X", indices[x*ppu.Height+y])
		}
		fmt.Fprintln(w)
	}
	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("failed to write frame dump: %w", err)
	}

	fd.dumpCount++
	return path, nil
}

// WritePPM encodes a frame as a binary (P6) PPM image
func WritePPM(w io.Writer, frame *RGBFrame) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "P6\n%d %d\n255\n", ppu.Width, ppu.Height)

	for _, pixel := range frame {
		bw.WriteByte(uint8(pixel >> 16))
		bw.WriteByte(uint8(pixel >> 8))
		bw.WriteByte(uint8(pixel))
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write PPM: %w", err)
	}
	return nil
}
