package session

import (
	"encoding/json"
	"fmt"

	"github.com/painterhq/painter/internal/engine"
	"github.com/painterhq/painter/internal/geom"
	"github.com/painterhq/painter/internal/tool"
)

type Message struct {
	Type    string          `json:"type"`
	Seq     int64           `json:"seq,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

const (
	// Client to server
	TypePointerDown    = "pointer.down"
	TypePointerMove    = "pointer.move"
	TypePointerUp      = "pointer.up"
	TypeWheel          = "pointer.wheel"
	TypeToolSelect     = "tool.select"
	TypeColorSelect    = "color.select"
	TypeModeSwitch     = "mode.switch"
	TypeCameraOrbit    = "camera.orbit"
	TypeCameraPan      = "camera.pan"
	TypeCameraZoom     = "camera.zoom"
	TypeCameraReset    = "camera.reset"
	TypeUndo           = "undo"
	TypeRedo           = "redo"
	TypeSceneNew       = "scene.new"
	TypeSceneClear     = "scene.clear"
	TypeSceneSave      = "scene.save"
	TypeSceneLoad      = "scene.load"
	TypeViewportResize = "viewport.resize"
	TypeShapeTransform = "shape.transform"
	TypeShapeRecolor   = "shape.recolor"

	// Server to client
	TypeWelcome = "welcome"
	TypeState   = "state"
	TypeFrame   = "frame"
	TypeSaved   = "scene.saved"
	TypeLoaded  = "scene.loaded"
	TypeError   = "error"
)

type PointerPayload struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Button string  `json:"button,omitempty"` // left, middle or right
	Shift  bool    `json:"shift,omitempty"`
	Ctrl   bool    `json:"ctrl,omitempty"`
	Alt    bool    `json:"alt,omitempty"`
}

// Event converts the payload into a tool event of the given message type.
func (p PointerPayload) Event(msgType string) (tool.Event, error) {
	pos := geom.V2(p.X, p.Y)
	button, err := parseButton(p.Button)
	if err != nil {
		return nil, err
	}
	mods := p.mods()
	switch msgType {
	case TypePointerDown:
		return tool.PointerDown{Pos: pos, Button: button, Mods: mods}, nil
	case TypePointerMove:
		return tool.PointerMove{Pos: pos, Button: button, Mods: mods}, nil
	case TypePointerUp:
		return tool.PointerUp{Pos: pos, Button: button, Mods: mods}, nil
	}
	return nil, fmt.Errorf("not a pointer message: %q", msgType)
}

func (p PointerPayload) mods() tool.Modifiers {
	var m tool.Modifiers
	if p.Shift {
		m |= tool.ModShift
	}
	if p.Ctrl {
		m |= tool.ModCtrl
	}
	if p.Alt {
		m |= tool.ModAlt
	}
	return m
}

func parseButton(s string) (tool.Button, error) {
	switch s {
	case "":
		return tool.ButtonNone, nil
	case "left":
		return tool.ButtonLeft, nil
	case "middle":
		return tool.ButtonMiddle, nil
	case "right":
		return tool.ButtonRight, nil
	}
	return tool.ButtonNone, fmt.Errorf("unknown button %q", s)
}

type WheelPayload struct {
	Delta float64 `json:"delta"`
	Ctrl  bool    `json:"ctrl,omitempty"`
}

type ToolSelectPayload struct {
	Tool string `json:"tool"` // "brush", "eraser", "pipette", "insert:<kind>"
}

type ColorSelectPayload struct {
	Color geom.Color `json:"color"`
}

type ModePayload struct {
	Mode geom.Mode `json:"mode"`
}

type OrbitPayload struct {
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
	Roll  float64 `json:"roll,omitempty"`
}

type PanPayload struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

type ZoomPayload struct {
	Factor float64 `json:"factor"`
}

// TransformPayload moves, rotates and scales one shape about its centre.
// Rotation is in degrees. A zero or omitted scale leaves the size alone.
type TransformPayload struct {
	ID       string  `json:"id"`
	X        float64 `json:"x,omitempty"`
	Y        float64 `json:"y,omitempty"`
	Rotation float64 `json:"rotation,omitempty"`
	Scale    float64 `json:"scale,omitempty"`
}

func (p TransformPayload) Placement() geom.Placement {
	scale := p.Scale
	if scale == 0 {
		scale = 1
	}
	return geom.Placement{X: p.X, Y: p.Y, Rotation: p.Rotation, ScaleX: scale, ScaleY: scale}
}

type RecolorPayload struct {
	ID    string     `json:"id"`
	Color geom.Color `json:"color"`
}

type ResizePayload struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// SavePayload names a file under the data directory, a document in the
// snapshot store, or both.
type SavePayload struct {
	Name  string `json:"name,omitempty"`
	DocID string `json:"docId,omitempty"`
}

// LoadPayload selects a file, or a stored snapshot. Version 0 is the latest.
type LoadPayload struct {
	Name    string `json:"name,omitempty"`
	DocID   string `json:"docId,omitempty"`
	Version int    `json:"version,omitempty"`
}

type WelcomePayload struct {
	SessionID string       `json:"sessionId"`
	State     engine.State `json:"state"`
}

type SavedPayload struct {
	Path    string `json:"path,omitempty"`
	DocID   string `json:"docId,omitempty"`
	Version int    `json:"version,omitempty"`
}

type LoadedPayload struct {
	Path    string `json:"path,omitempty"`
	DocID   string `json:"docId,omitempty"`
	Version int    `json:"version,omitempty"`
}

type ErrorPayload struct {
	Request string `json:"request,omitempty"`
	Seq     int64  `json:"seq,omitempty"`
	Reason  string `json:"reason"`
}

func decode[T any](raw json.RawMessage) (T, error) {
	var v T
	if len(raw) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("invalid payload: %w", err)
	}
	return v, nil
}
