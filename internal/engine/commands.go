package engine

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/painterhq/painter/internal/camera"
	"github.com/painterhq/painter/internal/geom"
	"github.com/painterhq/painter/internal/scene"
	"github.com/painterhq/painter/internal/tool"
)

// Camera gesture constants.
const (
	orbitDegPerPixel = 1.0
	rollDivisor      = 5.0
	slowFactor       = 0.1
	wheelBase        = 0.999
	minFovY          = 1.0
	maxFovY          = 170.0
)

// drag is a camera gesture in progress.
type drag struct {
	button   tool.Button
	press    geom.Vec2
	last     geom.Vec2
	pressCam camera.Camera
}

// HandleEvent feeds one input event to the engine. The left button drives
// the active tool; the right button orbits and the middle button pans the
// camera. Committed tool actions become one undo step each.
func (e *Engine) HandleEvent(ev tool.Event) (tool.Result, error) {
	switch ev := ev.(type) {
	case tool.PointerDown:
		if ev.Button == tool.ButtonRight || ev.Button == tool.ButtonMiddle {
			e.drag = &drag{button: ev.Button, press: ev.Pos, last: ev.Pos, pressCam: *e.camera()}
			return tool.Result{}, nil
		}
	case tool.PointerMove:
		if e.drag != nil {
			e.dragCamera(ev.Pos, ev.Mods)
			return tool.Result{}, nil
		}
	case tool.PointerUp:
		if e.drag != nil && ev.Button == e.drag.button {
			e.dragCamera(ev.Pos, ev.Mods)
			e.drag = nil
			return tool.Result{}, nil
		}
	}
	return e.handleTool(ev)
}

func (e *Engine) handleTool(ev tool.Event) (tool.Result, error) {
	var before *scene.Scene
	if _, ok := ev.(tool.PointerUp); ok && e.tools.State() == tool.Stroking {
		before = e.scene.Clone()
	}

	proj := e.projector()
	res, err := e.tools.Handle(ev, proj, target{Scene: e.scene, proj: proj})
	if res.Mutated() {
		// A partial erase still changed the scene and must be undoable.
		e.commit(before)
	}
	if err != nil {
		e.logger.Debug("tool event failed", "error", err, "tool", e.tools.Tool().String())
		return res, err
	}
	return res, nil
}

// dragCamera applies a pointer move to the camera gesture in progress.
// Shift locks the drag to its dominant axis, measured from the press point.
// Ctrl slows it down.
func (e *Engine) dragCamera(pos geom.Vec2, mods tool.Modifiers) {
	d := e.drag
	cam := e.camera()
	diff := pos.Sub(d.last)
	d.last = pos

	if mods.Has(tool.ModShift) && !mods.Has(tool.ModAlt) {
		*cam = d.pressCam
		diff = pos.Sub(d.press)
		if math.Abs(diff[0]) > math.Abs(diff[1]) {
			diff[1] = 0
		} else {
			diff[0] = 0
		}
	}
	if mods.Has(tool.ModCtrl) {
		diff = diff.Mul(slowFactor)
	}

	switch d.button {
	case tool.ButtonRight:
		if mods.Has(tool.ModAlt) {
			cam.Orbit(0, 0, diff[0]/rollDivisor)
		} else {
			cam.Orbit(diff[0]*orbitDegPerPixel, diff[1]*orbitDegPerPixel, 0)
		}
	case tool.ButtonMiddle:
		cam.Pan(diff[0], diff[1], e.vp.Width)
	}
}

// Wheel zooms by a wheel delta in eighths of a degree. With Ctrl in 3D it
// widens or narrows the field of view instead.
func (e *Engine) Wheel(delta float64, mods tool.Modifiers) {
	cam := e.camera()
	if mods.Has(tool.ModCtrl) && cam.Mode == geom.Mode3D {
		fov := mgl64.RadToDeg(cam.FovY) * math.Pow(wheelBase, delta)
		cam.FovY = mgl64.DegToRad(mgl64.Clamp(fov, minFovY, maxFovY))
		return
	}
	cam.Zoom(math.Pow(wheelBase, -delta))
}

// SelectTool switches the active tool. A gesture in progress is discarded.
func (e *Engine) SelectTool(t tool.Tool) {
	e.handleTool(tool.SelectTool{Tool: t})
}

// SelectColor sets the drawing colour.
func (e *Engine) SelectColor(c geom.Color) {
	e.handleTool(tool.SelectColor{Color: c})
}

func (e *Engine) cancelGesture() {
	e.tools.Handle(tool.Cancel{}, nil, nil)
	e.drag = nil
}

// projector maps pointer pixels through the active camera onto its focus
// plane.
type projector struct {
	cam camera.Camera
	vp  camera.Viewport
}

func (e *Engine) projector() projector {
	return projector{cam: *e.camera(), vp: e.vp}
}

func (p projector) ScreenToWorld(screen geom.Vec2) (geom.Vec3, error) {
	return p.cam.ScreenToWorld(p.vp, screen, p.cam.FocusDepth())
}

func (p projector) PixelSize(at geom.Vec3) float64 {
	return p.cam.PixelSize(at, p.vp)
}

// target picks 3D shapes along the pointer ray, nearest first. The 2D
// drawing plane is picked at the projected point.
type target struct {
	*scene.Scene
	proj projector
}

func (t target) PickScreen(screen geom.Vec2, radius float64) []string {
	if t.Mode() == geom.Mode2D {
		p, err := t.proj.ScreenToWorld(screen)
		if err != nil {
			return nil
		}
		return t.QueryAt(p, radius*t.proj.PixelSize(p))
	}
	ray, err := t.proj.cam.PickRay(t.proj.vp, screen)
	if err != nil {
		return nil
	}
	return t.QueryRay(ray, func(p geom.Vec3) float64 {
		return radius * t.proj.PixelSize(p)
	})
}
