package cartridge

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"nesemu/internal/fault"
	"nesemu/internal/memory"
)

// Test data constants for iNES header construction
const (
	validINESMagic = "NES\x1A"
	invalidMagic   = "ROM\x1A"
)

// createValidINESHeader creates a valid 16-byte iNES header for testing
func createValidINESHeader(prgSize, chrSize, flags6, flags7 uint8) []byte {
	header := make([]byte, 16)
	copy(header[0:4], validINESMagic)
	header[4] = prgSize // PRG ROM size in 16KB units
	header[5] = chrSize // CHR ROM size in 8KB units
	header[6] = flags6
	header[7] = flags7
	return header
}

// createMinimalValidROM creates a minimal valid iNES ROM with specified sizes
func createMinimalValidROM(prgSize, chrSize uint8) []byte {
	rom := createValidINESHeader(prgSize, chrSize, 0, 0)

	// PRG data is filled with a pattern for verification
	prgData := make([]byte, int(prgSize)*PRGBlockSize)
	for i := range prgData {
		prgData[i] = uint8(i % 256)
	}
	chrData := make([]byte, int(chrSize)*CHRBlockSize)
	for i := range chrData {
		chrData[i] = uint8((i + 128) % 256)
	}

	rom = append(rom, prgData...)
	return append(rom, chrData...)
}

func TestLoadFromReader_ValidiNESFormat_ShouldSucceed(t *testing.T) {
	tests := []struct {
		name      string
		prgSize   uint8
		chrSize   uint8
		prgBlocks int
		chrBlocks int
		chrRAM    bool
	}{
		{"16KB PRG, 8KB CHR", 1, 1, 1, 1, false},
		{"32KB PRG, 8KB CHR", 2, 1, 2, 1, false},
		{"16KB PRG, CHR RAM", 1, 0, 1, 1, true},
		{"32KB PRG, 16KB CHR", 2, 2, 2, 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cart, err := LoadFromReader(bytes.NewReader(createMinimalValidROM(tt.prgSize, tt.chrSize)))
			if err != nil {
				t.Fatalf("Expected successful load, got error: %v", err)
			}
			if got := cart.ProgramBlockCount(); got != tt.prgBlocks {
				t.Errorf("Expected %d PRG blocks, got %d", tt.prgBlocks, got)
			}
			if got := cart.CharacterBlockCount(); got != tt.chrBlocks {
				t.Errorf("Expected %d CHR blocks, got %d", tt.chrBlocks, got)
			}
			if cart.HasCHRRAM() != tt.chrRAM {
				t.Errorf("Expected CHR RAM %t, got %t", tt.chrRAM, cart.HasCHRRAM())
			}
		})
	}
}

func TestLoadFromReader_BlockData_ShouldBeSlicedPerBlock(t *testing.T) {
	cart, err := LoadFromReader(bytes.NewReader(createMinimalValidROM(2, 1)))
	if err != nil {
		t.Fatalf("Expected success, got error: %v", err)
	}

	// Block 1 offset 0 is byte 0x4000 of the PRG image
	if got := cart.ProgramData(1, 0x0001); got != 0x01 {
		t.Errorf("Expected PRG block 1 offset 1 = 0x01, got 0x%02X", got)
	}
	if got := cart.ProgramData(0, 0x3FFF); got != 0xFF {
		t.Errorf("Expected PRG block 0 offset $3FFF = 0xFF, got 0x%02X", got)
	}
	if got := cart.CharacterData(0, 0x0000); got != 0x80 {
		t.Errorf("Expected CHR offset 0 = 0x80, got 0x%02X", got)
	}
}

func TestLoadFromReader_InvalidMagicNumber_ShouldFail(t *testing.T) {
	rom := createMinimalValidROM(1, 1)
	copy(rom[0:4], invalidMagic)

	cart, err := LoadFromReader(bytes.NewReader(rom))

	if err == nil {
		t.Fatal("Expected error for invalid magic number, got success")
	}
	if cart != nil {
		t.Fatal("Expected nil cartridge for invalid magic, got cartridge")
	}
	if !errors.Is(err, fault.ErrMalformedCartridge) {
		t.Errorf("Expected malformed cartridge error, got: %v", err)
	}
}

func TestLoadFromReader_Truncated_ShouldFail(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short header", []byte("NES\x1A\x01")},
		{"short PRG", createMinimalValidROM(1, 1)[:16+100]},
		{"short CHR", createMinimalValidROM(1, 1)[:16+PRGBlockSize+10]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromReader(bytes.NewReader(tt.data))
			if !errors.Is(err, fault.ErrMalformedCartridge) {
				t.Fatalf("Expected malformed cartridge error, got %v", err)
			}
			if !errors.Is(err, io.ErrUnexpectedEOF) {
				t.Errorf("Expected unexpected EOF cause, got %v", err)
			}
		})
	}
}

func TestLoadFromReader_ZeroPRG_ShouldFail(t *testing.T) {
	_, err := LoadFromReader(bytes.NewReader(createValidINESHeader(0, 1, 0, 0)))
	if !errors.Is(err, fault.ErrMalformedCartridge) {
		t.Errorf("Expected malformed cartridge error, got %v", err)
	}
}

func TestLoadFromReader_MapperCheck(t *testing.T) {
	tests := []struct {
		name   string
		flags6 uint8
		flags7 uint8
		ok     bool
	}{
		{"Mapper 0 (NROM)", 0x00, 0x00, true},
		{"Mapper 1 (MMC1)", 0x10, 0x00, false},
		{"Mapper 2 from flags7", 0x00, 0x20, false},
		{"Mapper 255 max", 0xF0, 0xF0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rom := createMinimalValidROM(1, 1)
			rom[6], rom[7] = tt.flags6, tt.flags7

			cart, err := LoadFromReader(bytes.NewReader(rom))
			if tt.ok {
				if err != nil {
					t.Fatalf("Expected success, got error: %v", err)
				}
				if cart.MapperID() != 0 {
					t.Errorf("Expected mapper 0, got %d", cart.MapperID())
				}
				return
			}
			if !errors.Is(err, ErrUnsupportedMapper) {
				t.Errorf("Expected unsupported mapper error, got %v", err)
			}
		})
	}
}

func TestLoadFromReader_MirroringModes_ShouldDetectCorrectly(t *testing.T) {
	tests := []struct {
		name           string
		flags6         uint8
		expectedMirror memory.MirrorMode
	}{
		{"Horizontal mirroring", 0x00, memory.MirrorHorizontal},
		{"Vertical mirroring", 0x01, memory.MirrorVertical},
		{"Four-screen mirroring", 0x08, memory.MirrorFourScreen},
		{"Four-screen overrides vertical", 0x09, memory.MirrorFourScreen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rom := createMinimalValidROM(1, 1)
			rom[6] = tt.flags6

			cart, err := LoadFromReader(bytes.NewReader(rom))
			if err != nil {
				t.Fatalf("Expected success, got error: %v", err)
			}
			if cart.Mirroring() != tt.expectedMirror {
				t.Errorf("Expected mirror mode %v, got %v", tt.expectedMirror, cart.Mirroring())
			}
		})
	}
}

func TestLoadFromReader_TrainerSkipped(t *testing.T) {
	header := createValidINESHeader(1, 1, 0x04, 0)
	trainer := bytes.Repeat([]byte{0xEE}, 512)
	prg := make([]byte, PRGBlockSize)
	prg[0] = 0x4C
	chr := make([]byte, CHRBlockSize)

	rom := append(append(append(header, trainer...), prg...), chr...)
	cart, err := LoadFromReader(bytes.NewReader(rom))
	if err != nil {
		t.Fatalf("Expected success, got error: %v", err)
	}
	if got := cart.ProgramData(0, 0); got != 0x4C {
		t.Errorf("Expected PRG to start after trainer, got 0x%02X", got)
	}
	if !cart.Diagnostics().Trainer {
		t.Error("Expected diagnostics to report a trainer")
	}
}

func TestWriteCharacterData(t *testing.T) {
	ramCart, err := New(make([]byte, PRGBlockSize), nil, memory.MirrorVertical)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := ramCart.WriteCharacterData(0, 0x1234, 0x99); err != nil {
		t.Fatalf("Expected CHR RAM write to succeed, got %v", err)
	}
	if got := ramCart.CharacterData(0, 0x1234); got != 0x99 {
		t.Errorf("Expected 0x99, got 0x%02X", got)
	}

	romCart, err := New(make([]byte, PRGBlockSize), make([]byte, CHRBlockSize), memory.MirrorVertical)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := romCart.WriteCharacterData(0, 0x0010, 0x01); !errors.Is(err, fault.ErrReadOnly) {
		t.Errorf("Expected read-only error, got %v", err)
	}
}

func TestNew_RejectsPartialBlocks(t *testing.T) {
	if _, err := New(make([]byte, 100), nil, memory.MirrorHorizontal); !errors.Is(err, fault.ErrMalformedCartridge) {
		t.Errorf("Expected malformed error for short PRG, got %v", err)
	}
	if _, err := New(make([]byte, PRGBlockSize), make([]byte, 10), memory.MirrorHorizontal); !errors.Is(err, fault.ErrMalformedCartridge) {
		t.Errorf("Expected malformed error for short CHR, got %v", err)
	}
}

func TestLoadFromFile_Diagnostics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.nes")
	rom := createMinimalValidROM(1, 1)
	rom[6] = 0x01
	if err := os.WriteFile(path, rom, 0644); err != nil {
		t.Fatalf("Failed to write ROM: %v", err)
	}

	cart, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("Expected success, got error: %v", err)
	}

	d := cart.Diagnostics()
	if d.Name != "test.nes" {
		t.Errorf("Expected name test.nes, got %q", d.Name)
	}
	if d.RawSize != len(rom) {
		t.Errorf("Expected raw size %d, got %d", len(rom), d.RawSize)
	}
	if !strings.Contains(d.String(), "mirroring: vertical") {
		t.Errorf("Expected vertical mirroring in report:\n%s", d.String())
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.nes")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected not-exist error, got %v", err)
	}
}
