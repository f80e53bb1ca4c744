// Package fault defines the error kinds raised by the emulation core.
package fault

import (
	"errors"
	"fmt"
)

// Kind classifies a core error.
type Kind uint8

const (
	// UnsupportedRegion is an access to an address range that has no backing
	// hardware logic (cartridge RAM, PPU addresses above $3FFF).
	UnsupportedRegion Kind = iota + 1
	// ReadOnly is a write to ROM.
	ReadOnly
	// MalformedCartridge is a cartridge image that cannot be loaded.
	MalformedCartridge
)

// Sentinels for errors.Is.
var (
	ErrUnsupportedRegion  = errors.New("unsupported region")
	ErrReadOnly           = errors.New("write to read-only memory")
	ErrMalformedCartridge = errors.New("malformed cartridge")
)

func (k Kind) String() string {
	switch k {
	case UnsupportedRegion:
		return "unsupported region"
	case ReadOnly:
		return "read-only violation"
	case MalformedCartridge:
		return "malformed cartridge"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

func (k Kind) sentinel() error {
	switch k {
	case UnsupportedRegion:
		return ErrUnsupportedRegion
	case ReadOnly:
		return ErrReadOnly
	case MalformedCartridge:
		return ErrMalformedCartridge
	default:
		return nil
	}
}

// Error is a non-recoverable condition raised by a core component.
type Error struct {
	Kind      Kind
	Component string
	Op        string
	Addr      uint16
	Err       error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s %s $%04X: %s", e.Component, e.Op, e.Addr, e.Kind)
	if e.Kind == MalformedCartridge {
		msg = fmt.Sprintf("%s %s: %s", e.Component, e.Op, e.Kind)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := e.Kind.sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Unsupported returns an UnsupportedRegion error for addr.
func Unsupported(component, op string, addr uint16) error {
	return &Error{Kind: UnsupportedRegion, Component: component, Op: op, Addr: addr}
}

// WriteProtected returns a ReadOnly error for addr.
func WriteProtected(component string, addr uint16) error {
	return &Error{Kind: ReadOnly, Component: component, Op: "write", Addr: addr}
}

// Malformed returns a MalformedCartridge error wrapping cause.
func Malformed(op string, cause error) error {
	return &Error{Kind: MalformedCartridge, Component: "cartridge", Op: op, Err: cause}
}

// KindOf reports the kind of err, or 0 when err is not a core error.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return 0
}
