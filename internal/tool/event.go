package tool

import "github.com/painterhq/painter/internal/geom"

// Button is a pointer button.
type Button int

const (
	ButtonNone Button = iota
	ButtonLeft
	ButtonMiddle
	ButtonRight
)

// Modifiers is a keyboard modifier bit set.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
)

func (m Modifiers) Has(flag Modifiers) bool { return m&flag != 0 }

// Event is one of PointerDown, PointerMove, PointerUp, SelectTool,
// SelectColor or Cancel.
type Event interface {
	event()
}

// PointerDown starts a gesture at Pos, in viewport pixels.
type PointerDown struct {
	Pos    geom.Vec2
	Button Button
	Mods   Modifiers
}

// PointerMove reports pointer motion. Button is the button held, if any.
type PointerMove struct {
	Pos    geom.Vec2
	Button Button
	Mods   Modifiers
}

// PointerUp ends a gesture.
type PointerUp struct {
	Pos    geom.Vec2
	Button Button
	Mods   Modifiers
}

type SelectTool struct {
	Tool Tool
}

type SelectColor struct {
	Color geom.Color
}

// Cancel discards any gesture in progress.
type Cancel struct{}

func (PointerDown) event() {}
func (PointerMove) event() {}
func (PointerUp) event()   {}
func (SelectTool) event()  {}
func (SelectColor) event() {}
func (Cancel) event()      {}
