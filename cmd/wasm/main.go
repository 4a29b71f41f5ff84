//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"
	"time"

	"github.com/painterhq/painter/internal/camera"
	"github.com/painterhq/painter/internal/document"
	"github.com/painterhq/painter/internal/engine"
	"github.com/painterhq/painter/internal/geom"
	"github.com/painterhq/painter/internal/render"
	"github.com/painterhq/painter/internal/tool"
)

var eng *engine.Engine

func main() {
	eng = engine.New(engine.DefaultOptions())

	painterEngine := js.Global().Get("Object").New()

	// --- Commands (page → engine) ---
	painterEngine.Set("pointerDown", js.FuncOf(pointerDown))
	painterEngine.Set("pointerMove", js.FuncOf(pointerMove))
	painterEngine.Set("pointerUp", js.FuncOf(pointerUp))
	painterEngine.Set("wheel", js.FuncOf(wheel))
	painterEngine.Set("selectTool", js.FuncOf(selectTool))
	painterEngine.Set("selectColor", js.FuncOf(selectColor))
	painterEngine.Set("switchMode", js.FuncOf(switchMode))
	painterEngine.Set("undo", js.FuncOf(undo))
	painterEngine.Set("redo", js.FuncOf(redo))
	painterEngine.Set("clear", js.FuncOf(clearScene))
	painterEngine.Set("transformShape", js.FuncOf(transformShape))
	painterEngine.Set("recolorShape", js.FuncOf(recolorShape))
	painterEngine.Set("resize", js.FuncOf(resize))
	painterEngine.Set("resetCamera", js.FuncOf(resetCamera))
	painterEngine.Set("newDocument", js.FuncOf(newDocument))
	painterEngine.Set("loadDocument", js.FuncOf(loadDocument))
	painterEngine.Set("loadSampleDocument", js.FuncOf(loadSampleDocument))

	// --- Queries (page ← engine) ---
	painterEngine.Set("render", js.FuncOf(renderFrame))
	painterEngine.Set("saveDocument", js.FuncOf(saveDocument))
	painterEngine.Set("getState", js.FuncOf(getState))

	js.Global().Set("painterEngine", painterEngine)
	js.Global().Set("painterWasmReady", js.ValueOf(true))

	select {}
}

func ok() any { return js.ValueOf(map[string]any{"ok": true}) }

func fail(err error) any {
	return js.ValueOf(map[string]any{"error": err.Error()})
}

func failMsg(msg string) any {
	return js.ValueOf(map[string]any{"error": msg})
}

// pointerArgs reads (x, y, button, mods). button is 0 left, 1 middle,
// 2 right as in DOM MouseEvent.button; mods is a bit set of 1 shift,
// 2 ctrl, 4 alt.
func pointerArgs(args []js.Value) (geom.Vec2, tool.Button, tool.Modifiers, bool) {
	if len(args) < 2 {
		return geom.Vec2{}, tool.ButtonNone, 0, false
	}
	pos := geom.V2(args[0].Float(), args[1].Float())
	btn := tool.ButtonLeft
	if len(args) > 2 {
		switch args[2].Int() {
		case 1:
			btn = tool.ButtonMiddle
		case 2:
			btn = tool.ButtonRight
		case -1:
			btn = tool.ButtonNone
		}
	}
	var mods tool.Modifiers
	if len(args) > 3 {
		mods = tool.Modifiers(args[3].Int()) & (tool.ModShift | tool.ModCtrl | tool.ModAlt)
	}
	return pos, btn, mods, true
}

func pointer(args []js.Value, build func(geom.Vec2, tool.Button, tool.Modifiers) tool.Event) any {
	pos, btn, mods, valid := pointerArgs(args)
	if !valid {
		return failMsg("missing pointer position")
	}
	res, err := eng.HandleEvent(build(pos, btn, mods))
	if err != nil {
		return fail(err)
	}
	return js.ValueOf(map[string]any{"ok": true, "mutated": res.Mutated})
}

func pointerDown(this js.Value, args []js.Value) any {
	return pointer(args, func(p geom.Vec2, b tool.Button, m tool.Modifiers) tool.Event {
		return tool.PointerDown{Pos: p, Button: b, Mods: m}
	})
}

func pointerMove(this js.Value, args []js.Value) any {
	return pointer(args, func(p geom.Vec2, b tool.Button, m tool.Modifiers) tool.Event {
		return tool.PointerMove{Pos: p, Button: b, Mods: m}
	})
}

func pointerUp(this js.Value, args []js.Value) any {
	return pointer(args, func(p geom.Vec2, b tool.Button, m tool.Modifiers) tool.Event {
		return tool.PointerUp{Pos: p, Button: b, Mods: m}
	})
}

func wheel(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return nil
	}
	var mods tool.Modifiers
	if len(args) > 1 && args[1].Truthy() {
		mods = tool.ModCtrl
	}
	eng.Wheel(args[0].Float(), mods)
	return nil
}

func selectTool(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return failMsg("missing tool")
	}
	t, err := tool.Parse(args[0].String())
	if err != nil {
		return fail(err)
	}
	eng.SelectTool(t)
	return ok()
}

func selectColor(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return failMsg("missing colour")
	}
	c, err := geom.ParseHex(args[0].String())
	if err != nil {
		return fail(err)
	}
	eng.SelectColor(c)
	return ok()
}

func switchMode(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return failMsg("missing mode")
	}
	if err := eng.SwitchMode(geom.Mode(args[0].String())); err != nil {
		return fail(err)
	}
	return ok()
}

func undo(this js.Value, args []js.Value) any { return js.ValueOf(eng.Undo()) }

func redo(this js.Value, args []js.Value) any { return js.ValueOf(eng.Redo()) }

func clearScene(this js.Value, args []js.Value) any {
	eng.Clear()
	return nil
}

// transformShape(id, x, y, rotationDeg, scale) moves a shape and turns and
// scales it about its centre.
func transformShape(this js.Value, args []js.Value) any {
	if len(args) < 5 {
		return failMsg("missing transform")
	}
	p := geom.Placement{
		X:        args[1].Float(),
		Y:        args[2].Float(),
		Rotation: args[3].Float(),
		ScaleX:   args[4].Float(),
		ScaleY:   args[4].Float(),
	}
	if err := eng.TransformShape(args[0].String(), p); err != nil {
		return fail(err)
	}
	return ok()
}

func recolorShape(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return failMsg("missing shape or colour")
	}
	c, err := geom.ParseHex(args[1].String())
	if err != nil {
		return fail(err)
	}
	if err := eng.RecolorShape(args[0].String(), c); err != nil {
		return fail(err)
	}
	return ok()
}

func resize(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return failMsg("missing size")
	}
	if err := eng.Resize(args[0].Int(), args[1].Int()); err != nil {
		return fail(err)
	}
	return ok()
}

func resetCamera(this js.Value, args []js.Value) any {
	eng.ResetCamera()
	return nil
}

func newDocument(this js.Value, args []js.Value) any {
	mode := eng.Mode()
	if len(args) > 0 && args[0].Type() == js.TypeString {
		mode = geom.Mode(args[0].String())
	}
	if err := eng.NewDocument(mode); err != nil {
		return fail(err)
	}
	return ok()
}

func loadDocument(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return failMsg("missing document JSON")
	}
	s, err := document.Decode([]byte(args[0].String()))
	if err != nil {
		return fail(err)
	}
	eng.Replace(s, "")
	return ok()
}

func loadSampleDocument(this js.Value, args []js.Value) any {
	mode := geom.Mode2D
	if len(args) > 0 && args[0].Type() == js.TypeString {
		mode = geom.Mode(args[0].String())
	}
	if !mode.Valid() {
		return failMsg("unknown mode " + string(mode))
	}
	eng.Replace(document.NewSampleScene(mode), "")
	return ok()
}

// saveDocument returns the document JSON and marks the engine clean. The
// page owns where it is stored.
func saveDocument(this js.Value, args []js.Value) any {
	name := "untitled"
	if len(args) > 0 && args[0].Type() == js.TypeString {
		name = args[0].String()
	}
	s, rev := eng.Snapshot()
	data, err := document.Encode(s, name, time.Now())
	if err != nil {
		return fail(err)
	}
	eng.MarkSaved(rev, "")
	return js.ValueOf(string(data))
}

// renderFrame returns the current frame as JSON draw calls for the page's
// WebGL or canvas backend.
func renderFrame(this js.Value, args []js.Value) any {
	rec := &render.Recorder{}
	if err := eng.Render(rec); err != nil {
		return fail(err)
	}
	data, err := render.FrameToJSON(rec.Frame())
	if err != nil {
		return fail(err)
	}
	return js.ValueOf(string(data))
}

type stateView struct {
	engine.State
	Viewport camera.Viewport `json:"viewport"`
	Revision uint64          `json:"revision"`
}

func getState(this js.Value, args []js.Value) any {
	data, err := json.Marshal(stateView{State: eng.State(), Viewport: eng.Viewport(), Revision: eng.Revision()})
	if err != nil {
		return fail(err)
	}
	return js.ValueOf(string(data))
}
