//go:build !sdl
// +build !sdl

package debug

import "fmt"

// ShowPatternTables needs the SDL build; use SavePatternTables instead
func ShowPatternTables(title string, src PatternSource) error {
	return fmt.Errorf("pattern table window not available: build with -tags sdl")
}
