// Package input tracks NES controller button state from backend input events.
package input

import (
	"github.com/golang/glog"

	"nesemu/internal/graphics"
)

// Button represents NES controller buttons, in the hardware report order
type Button uint8

const (
	ButtonA Button = 1 << iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
)

var buttonNames = [8]string{"A", "B", "Select", "Start", "Up", "Down", "Left", "Right"}

func (b Button) String() string {
	for i, name := range buttonNames {
		if b == 1<<i {
			return name
		}
	}
	return "Unknown"
}

// Controller represents a NES controller
type Controller struct {
	// Current button states (8 buttons: A, B, Select, Start, Up, Down, Left, Right)
	buttons uint8
}

// New creates a new Controller instance
func New() *Controller {
	return &Controller{}
}

// SetButton sets the state of a button
func (c *Controller) SetButton(button Button, pressed bool) {
	if pressed {
		c.buttons |= uint8(button)
	} else {
		c.buttons &^= uint8(button)
	}
}

// SetButtons sets all button states at once
// NES button order: A, B, Select, Start, Up, Down, Left, Right
func (c *Controller) SetButtons(buttons [8]bool) {
	c.buttons = 0
	for i, pressed := range buttons {
		if pressed {
			c.buttons |= 1 << i
		}
	}
}

// Buttons returns the button states in report order
func (c *Controller) Buttons() [8]bool {
	var buttons [8]bool
	for i := range buttons {
		buttons[i] = c.buttons&(1<<i) != 0
	}
	return buttons
}

// State returns the buttons as a bitmask, bit 0 = A
func (c *Controller) State() uint8 {
	return c.buttons
}

// IsPressed returns true if the button is currently pressed
func (c *Controller) IsPressed(button Button) bool {
	return (c.buttons & uint8(button)) != 0
}

// Reset releases all buttons
func (c *Controller) Reset() {
	c.buttons = 0
}

// InputState represents the state of all input devices
type InputState struct {
	Controller1 *Controller
	Controller2 *Controller
}

// eventButtons maps backend buttons to a controller port (0 or 1) and button
var eventButtons = map[graphics.Button]struct {
	port   int
	button Button
}{
	graphics.ButtonA:       {0, ButtonA},
	graphics.ButtonB:       {0, ButtonB},
	graphics.ButtonSelect:  {0, ButtonSelect},
	graphics.ButtonStart:   {0, ButtonStart},
	graphics.ButtonUp:      {0, ButtonUp},
	graphics.ButtonDown:    {0, ButtonDown},
	graphics.ButtonLeft:    {0, ButtonLeft},
	graphics.ButtonRight:   {0, ButtonRight},
	graphics.Button2A:      {1, ButtonA},
	graphics.Button2B:      {1, ButtonB},
	graphics.Button2Select: {1, ButtonSelect},
	graphics.Button2Start:  {1, ButtonStart},
	graphics.Button2Up:     {1, ButtonUp},
	graphics.Button2Down:   {1, ButtonDown},
	graphics.Button2Left:   {1, ButtonLeft},
	graphics.Button2Right:  {1, ButtonRight},
}

// NewInputState creates a new input state with two controllers
func NewInputState() *InputState {
	return &InputState{
		Controller1: New(),
		Controller2: New(),
	}
}

// Reset resets all input devices
func (is *InputState) Reset() {
	is.Controller1.Reset()
	is.Controller2.Reset()
}

// SetButtons1 sets all button states for controller 1
func (is *InputState) SetButtons1(buttons [8]bool) {
	is.Controller1.SetButtons(buttons)
}

// SetButtons2 sets all button states for controller 2
func (is *InputState) SetButtons2(buttons [8]bool) {
	is.Controller2.SetButtons(buttons)
}

// HandleEvent applies a backend button event. It reports whether the event
// was a controller button.
func (is *InputState) HandleEvent(event graphics.InputEvent) bool {
	if event.Type != graphics.InputEventTypeButton {
		return false
	}

	mapping, ok := eventButtons[event.Button]
	if !ok {
		return false
	}

	controller := is.Controller1
	if mapping.port == 1 {
		controller = is.Controller2
	}
	controller.SetButton(mapping.button, event.Pressed)

	glog.V(3).Infof("[INPUT] controller %d %s pressed=%t state=0x%02X",
		mapping.port+1, mapping.button, event.Pressed, controller.State())
	return true
}
