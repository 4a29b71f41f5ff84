//go:build gl

// Command painter-gl is the desktop viewer: a GLFW window driving the
// drawing engine through the OpenGL backend.
//
// Left button uses the active tool, right button orbits, middle button pans
// and the wheel zooms. Keys: B brush, E eraser, I pipette, P/L/G insert a
// point, line or polygon, Tab switches 2D and 3D, Home resets the camera,
// Ctrl+Z/Ctrl+Y undo and redo, Ctrl+N new, Ctrl+S save, Ctrl+O reload.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/painterhq/painter/internal/config"
	"github.com/painterhq/painter/internal/engine"
	"github.com/painterhq/painter/internal/geom"
	"github.com/painterhq/painter/internal/render/glrender"
	"github.com/painterhq/painter/internal/tool"
)

const title = "Painter"

// glfw scroll offsets are in notches; the engine wheel takes eighths of a
// degree.
const wheelNotch = 120

func init() {
	// GLFW event handling must run on the main thread.
	runtime.LockOSThread()
}

func main() {
	path := flag.String("open", "", ".painter file to open")
	mode := flag.String("mode", string(geom.Mode2D), "initial mode for a new document: 2d or 3d")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	if err := run(cfg, logger, geom.Mode(*mode), *path); err != nil {
		logger.Error("painter-gl", "error", err)
		os.Exit(1)
	}
}

type viewer struct {
	eng    *engine.Engine
	window *glfw.Window
	logger *slog.Logger
	path   string
	cursor geom.Vec2
	dirty  bool
}

func run(cfg *config.Config, logger *slog.Logger, mode geom.Mode, path string) error {
	if !mode.Valid() {
		return fmt.Errorf("unknown mode %q", mode)
	}
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("initialize glfw: %w", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(cfg.ViewportWidth, cfg.ViewportHeight, title, nil, nil)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	window.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		return fmt.Errorf("initialize gl: %w", err)
	}
	logger.Info("opengl", "version", gl.GoStr(gl.GetString(gl.VERSION)))

	program, err := glrender.NewProgram(glrender.VertexShader, glrender.FragmentShader)
	if err != nil {
		return err
	}
	glctx, err := glrender.New(program)
	if err != nil {
		return err
	}

	v := &viewer{
		eng:    engine.New(cfg.EngineOptions(mode, logger)),
		window: window,
		logger: logger,
		path:   path,
		dirty:  true,
	}
	if path != "" {
		if err := v.eng.Load(context.Background(), path); err != nil {
			return err
		}
	}
	fbw, fbh := window.GetFramebufferSize()
	v.resize(fbw, fbh)

	window.SetMouseButtonCallback(v.onMouseButton)
	window.SetCursorPosCallback(v.onCursorPos)
	window.SetScrollCallback(v.onScroll)
	window.SetKeyCallback(v.onKey)
	window.SetFramebufferSizeCallback(func(_ *glfw.Window, w, h int) { v.resize(w, h) })

	for !window.ShouldClose() {
		if v.dirty {
			if err := v.eng.Render(glctx); err == nil {
				window.SwapBuffers()
			}
			v.dirty = false
			v.updateTitle()
		}
		glfw.WaitEvents()
	}
	return nil
}

// scale maps window coordinates onto framebuffer pixels.
func (v *viewer) scale(x, y float64) geom.Vec2 {
	ww, wh := v.window.GetSize()
	fw, fh := v.window.GetFramebufferSize()
	if ww == 0 || wh == 0 {
		return geom.V2(x, y)
	}
	return geom.V2(x*float64(fw)/float64(ww), y*float64(fh)/float64(wh))
}

func (v *viewer) resize(w, h int) {
	if err := v.eng.Resize(w, h); err != nil {
		v.logger.Debug("resize ignored", "width", w, "height", h, "error", err)
		return
	}
	v.dirty = true
}

func (v *viewer) onMouseButton(_ *glfw.Window, b glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	btn := button(b)
	if btn == tool.ButtonNone {
		return
	}
	var ev tool.Event
	switch action {
	case glfw.Press:
		ev = tool.PointerDown{Pos: v.cursor, Button: btn, Mods: modifiers(mods)}
	case glfw.Release:
		ev = tool.PointerUp{Pos: v.cursor, Button: btn, Mods: modifiers(mods)}
	default:
		return
	}
	v.handle(ev)
}

func (v *viewer) onCursorPos(w *glfw.Window, x, y float64) {
	v.cursor = v.scale(x, y)
	held := tool.ButtonNone
	for _, b := range []glfw.MouseButton{glfw.MouseButtonLeft, glfw.MouseButtonRight, glfw.MouseButtonMiddle} {
		if w.GetMouseButton(b) == glfw.Press {
			held = button(b)
			break
		}
	}
	v.handle(tool.PointerMove{Pos: v.cursor, Button: held, Mods: currentMods(w)})
}

func (v *viewer) onScroll(w *glfw.Window, _, yoff float64) {
	v.eng.Wheel(yoff*wheelNotch, currentMods(w))
	v.dirty = true
}

func (v *viewer) handle(ev tool.Event) {
	if _, err := v.eng.HandleEvent(ev); err != nil {
		v.logger.Warn("event rejected", "event", fmt.Sprintf("%T", ev), "error", err)
	}
	v.dirty = true
}

func (v *viewer) onKey(w *glfw.Window, key glfw.Key, _ int, action glfw.Action, mods glfw.ModifierKey) {
	if action != glfw.Press {
		return
	}
	ctrl := mods&glfw.ModControl != 0
	switch {
	case ctrl && key == glfw.KeyZ && mods&glfw.ModShift != 0, ctrl && key == glfw.KeyY:
		v.eng.Redo()
	case ctrl && key == glfw.KeyZ:
		v.eng.Undo()
	case ctrl && key == glfw.KeyN:
		if err := v.eng.NewDocument(v.eng.Mode()); err != nil {
			v.logger.Error("new document", "error", err)
		}
		v.path = ""
	case ctrl && key == glfw.KeyS:
		v.save()
	case ctrl && key == glfw.KeyO:
		v.reload()
	case key == glfw.KeyEscape:
		v.eng.HandleEvent(tool.Cancel{})
	case key == glfw.KeyB:
		v.eng.SelectTool(tool.Brush())
	case key == glfw.KeyE:
		v.eng.SelectTool(tool.Eraser())
	case key == glfw.KeyI:
		v.eng.SelectTool(tool.Pipette())
	case key == glfw.KeyP:
		v.eng.SelectTool(tool.Insert(geom.KindPoint))
	case key == glfw.KeyL:
		v.eng.SelectTool(tool.Insert(geom.KindLine))
	case key == glfw.KeyG:
		v.eng.SelectTool(tool.Insert(geom.KindPolygon))
	case key == glfw.KeyTab:
		next := geom.Mode3D
		if v.eng.Mode() == geom.Mode3D {
			next = geom.Mode2D
		}
		if err := v.eng.SwitchMode(next); err != nil {
			v.logger.Error("switch mode", "error", err)
		}
	case key == glfw.KeyHome:
		v.eng.ResetCamera()
	default:
		return
	}
	v.dirty = true
}

func (v *viewer) save() {
	path := v.path
	if path == "" {
		path = "untitled"
	}
	written, err := v.eng.Save(context.Background(), path)
	if err != nil {
		v.logger.Error("save", "path", path, "error", err)
		return
	}
	v.path = written
	v.logger.Info("saved", "path", written)
}

func (v *viewer) reload() {
	if v.path == "" {
		return
	}
	if err := v.eng.Load(context.Background(), v.path); err != nil {
		v.logger.Error("load", "path", v.path, "error", err)
	}
}

func (v *viewer) updateTitle() {
	name := v.path
	if name == "" {
		name = "untitled"
	}
	mark := ""
	if v.eng.Dirty() {
		mark = "*"
	}
	v.window.SetTitle(fmt.Sprintf("%s | %s%s | %s %s", title, name, mark, v.eng.Mode(), v.eng.Tool()))
}

func button(b glfw.MouseButton) tool.Button {
	switch b {
	case glfw.MouseButtonLeft:
		return tool.ButtonLeft
	case glfw.MouseButtonMiddle:
		return tool.ButtonMiddle
	case glfw.MouseButtonRight:
		return tool.ButtonRight
	}
	return tool.ButtonNone
}

func modifiers(m glfw.ModifierKey) tool.Modifiers {
	var out tool.Modifiers
	if m&glfw.ModShift != 0 {
		out |= tool.ModShift
	}
	if m&glfw.ModControl != 0 {
		out |= tool.ModCtrl
	}
	if m&glfw.ModAlt != 0 {
		out |= tool.ModAlt
	}
	return out
}

func currentMods(w *glfw.Window) tool.Modifiers {
	var m glfw.ModifierKey
	if w.GetKey(glfw.KeyLeftShift) == glfw.Press || w.GetKey(glfw.KeyRightShift) == glfw.Press {
		m |= glfw.ModShift
	}
	if w.GetKey(glfw.KeyLeftControl) == glfw.Press || w.GetKey(glfw.KeyRightControl) == glfw.Press {
		m |= glfw.ModControl
	}
	if w.GetKey(glfw.KeyLeftAlt) == glfw.Press || w.GetKey(glfw.KeyRightAlt) == glfw.Press {
		m |= glfw.ModAlt
	}
	return modifiers(m)
}
