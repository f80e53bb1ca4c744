// Package app provides configuration management for the NES emulator.
package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"nesemu/internal/graphics"
	"nesemu/internal/ppu"
)

// Config holds all application configuration
type Config struct {
	Window    WindowConfig    `json:"window"`
	Video     VideoConfig     `json:"video"`
	Emulation EmulationConfig `json:"emulation"`
	Debug     DebugConfig     `json:"debug"`
	Paths     PathsConfig     `json:"paths"`

	// Internal state
	configPath string
	loaded     bool
}

// WindowConfig contains window-related configuration
type WindowConfig struct {
	Width      int  `json:"width"`
	Height     int  `json:"height"`
	Fullscreen bool `json:"fullscreen"`
	Scale      int  `json:"scale"` // NES resolution multiplier
}

// VideoConfig contains video rendering configuration
type VideoConfig struct {
	Backend string `json:"backend"` // "ebitengine", "sdl", "headless", "terminal"
	VSync   bool   `json:"vsync"`
	Filter  string `json:"filter"`  // "nearest", "linear"
	Palette string `json:"palette"` // 192-byte .pal file, empty for the built-in palette
}

// EmulationConfig contains emulation-specific settings
type EmulationConfig struct {
	FrameRate  float64 `json:"frame_rate"`  // Target frame rate for self-paced backends
	TraceFile  string  `json:"trace_file"`  // nestest-format instruction log
	FrameLimit int     `json:"frame_limit"` // Stop after this many frames, 0 = run until closed
}

// DebugConfig contains debugging and development options
type DebugConfig struct {
	StatsView    bool   `json:"stats_view"`    // Serve Go runtime charts
	StatsAddress string `json:"stats_address"` // host:port for the stats viewer
	MemvizFile   string `json:"memviz_file"`   // Graphviz dump of console state on exit
	CHRFile      string `json:"chr_file"`      // PNG export of the pattern tables
	CHRWindow    bool   `json:"chr_window"`    // Show the pattern tables in an SDL window
	DumpDir      string `json:"dump_dir"`      // Headless PPM frame dumps
	DumpInterval int    `json:"dump_interval"` // Dump every N frames
}

// PathsConfig contains file and directory paths
type PathsConfig struct {
	ROMs string `json:"roms"` // Searched for ROM names that do not exist as given
}

var validBackends = map[string]bool{
	string(graphics.BackendEbitengine): true,
	string(graphics.BackendSDL):        true,
	string(graphics.BackendHeadless):   true,
	string(graphics.BackendTerminal):   true,
}

var validFilters = map[string]bool{
	"nearest": true,
	"linear":  true,
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Width:      768,
			Height:     720,
			Fullscreen: false,
			Scale:      3, // 768x720 (256x240 * 3)
		},
		Video: VideoConfig{
			Backend: string(graphics.BackendEbitengine),
			VSync:   true,
			Filter:  "nearest",
		},
		Emulation: EmulationConfig{
			FrameRate: 60.0988, // NTSC
		},
		Debug: DebugConfig{
			StatsAddress: "localhost:12600",
			DumpInterval: 60,
		},
		Paths: PathsConfig{
			ROMs: "./roms",
		},
	}
}

// LoadFromFile loads configuration from a JSON file. A missing file is
// created with the current values.
func (c *Config) LoadFromFile(path string) error {
	c.configPath = path

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return c.SaveToFile(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	c.loaded = true
	return nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	c.configPath = path
	return nil
}

// Save saves the configuration to the current config file
func (c *Config) Save() error {
	if c.configPath == "" {
		return fmt.Errorf("no config file path set")
	}

	return c.SaveToFile(c.configPath)
}

// Validate checks the configuration. Out-of-range tuning values are reset to
// their defaults; values that select behaviour must be valid.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return &ConfigError{
			Field: "window",
			Value: fmt.Sprintf("%dx%d", c.Window.Width, c.Window.Height),
			Err:   errors.New("dimensions must be positive"),
		}
	}

	if c.Window.Scale <= 0 {
		c.Window.Scale = 1
	}

	if c.Video.Backend == "" {
		c.Video.Backend = string(graphics.BackendEbitengine)
	}
	if !validBackends[c.Video.Backend] {
		return &ConfigError{Field: "video.backend", Value: c.Video.Backend, Err: errors.New("unknown backend")}
	}

	if c.Video.Filter == "" {
		c.Video.Filter = "nearest"
	}
	if !validFilters[c.Video.Filter] {
		return &ConfigError{Field: "video.filter", Value: c.Video.Filter, Err: errors.New("unknown filter")}
	}

	if c.Emulation.FrameRate <= 0 {
		c.Emulation.FrameRate = 60.0988
	}

	if c.Emulation.FrameLimit < 0 {
		return &ConfigError{Field: "emulation.frame_limit", Value: c.Emulation.FrameLimit, Err: errors.New("must not be negative")}
	}

	if c.Debug.DumpInterval <= 0 {
		c.Debug.DumpInterval = 1
	}

	return nil
}

// GetNESResolution returns the native NES resolution
func (c *Config) GetNESResolution() (int, int) {
	return ppu.Width, ppu.Height
}

// GetWindowResolution returns the window resolution based on scale
func (c *Config) GetWindowResolution() (int, int) {
	nesWidth, nesHeight := c.GetNESResolution()
	return nesWidth * c.Window.Scale, nesHeight * c.Window.Scale
}

// IsLoaded returns whether the configuration was loaded from file
func (c *Config) IsLoaded() bool {
	return c.loaded
}

// GetConfigPath returns the path to the config file
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() string {
	return "./config/nesemu.json"
}

// ConfigError represents configuration-related errors
type ConfigError struct {
	Field string
	Value interface{}
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in field '%s' with value '%v': %v", e.Field, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
