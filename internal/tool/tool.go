// Package tool turns pointer input into scene mutations.
//
// Tools form a closed set dispatched by Machine.Handle. Events form a closed
// set too, so the transition table lives in one switch.
package tool

import (
	"fmt"
	"strings"

	"github.com/painterhq/painter/internal/geom"
)

// Kind names a tool.
type Kind string

const (
	KindBrush   Kind = "brush"
	KindEraser  Kind = "eraser"
	KindPipette Kind = "pipette"
	KindInsert  Kind = "insert"
)

// Tool is the active tool. Insert carries the geometry kind for KindInsert.
type Tool struct {
	Kind   Kind
	Insert geom.Kind
}

func Brush() Tool   { return Tool{Kind: KindBrush} }
func Eraser() Tool  { return Tool{Kind: KindEraser} }
func Pipette() Tool { return Tool{Kind: KindPipette} }

func Insert(k geom.Kind) Tool {
	return Tool{Kind: KindInsert, Insert: k}
}

// String formats the tool as "brush" or "insert:polygon".
func (t Tool) String() string {
	if t.Kind == KindInsert {
		return string(t.Kind) + ":" + string(t.Insert)
	}
	return string(t.Kind)
}

// Parse reads the String form back.
func Parse(s string) (Tool, error) {
	kind, sub, _ := strings.Cut(s, ":")
	switch Kind(kind) {
	case KindBrush:
		return Brush(), nil
	case KindEraser:
		return Eraser(), nil
	case KindPipette:
		return Pipette(), nil
	case KindInsert:
		k := geom.Kind(sub)
		if k.MinVertices() < 0 {
			return Tool{}, fmt.Errorf("unknown insert kind %q", sub)
		}
		return Insert(k), nil
	}
	return Tool{}, fmt.Errorf("unknown tool %q", s)
}

// Params are the tool parameters shared by every tool. Widths and radii are
// in screen pixels and converted to world units at the pointer position.
type Params struct {
	BrushWidth        float64
	EraserRadius      float64
	MinSampleDistance float64
	HitTolerance      float64
	Color             geom.Color
}

// DefaultParams is a 3 px black brush and a 15 px wide eraser.
func DefaultParams() Params {
	return Params{
		BrushWidth:        3,
		EraserRadius:      7.5,
		MinSampleDistance: 2,
		HitTolerance:      4,
		Color:             geom.Black,
	}
}

// State is the machine state.
type State int

const (
	Idle State = iota
	Stroking
	Sampling
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Stroking:
		return "stroking"
	case Sampling:
		return "sampling"
	}
	return fmt.Sprintf("State(%d)", int(s))
}
