// Package engine is the drawing application core. It owns the scene, the
// cameras, the tool state machine and the undo history, and turns input
// commands into scene mutations and frames.
//
// An Engine is not safe for concurrent use. Every call must come from the
// goroutine that owns it.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/painterhq/painter/internal/camera"
	"github.com/painterhq/painter/internal/document"
	"github.com/painterhq/painter/internal/geom"
	"github.com/painterhq/painter/internal/render"
	"github.com/painterhq/painter/internal/scene"
	"github.com/painterhq/painter/internal/tool"
)

// Options configure a new engine.
type Options struct {
	Mode         geom.Mode
	Viewport     camera.Viewport
	Params       tool.Params
	HistoryDepth int
	Logger       *slog.Logger
}

// DefaultOptions is a 2D engine with a 1280x720 viewport.
func DefaultOptions() Options {
	return Options{
		Mode:         geom.Mode2D,
		Viewport:     camera.NewViewport(1280, 720),
		Params:       tool.DefaultParams(),
		HistoryDepth: 100,
	}
}

// State is what the GUI layer shows about the engine.
type State struct {
	Tool    string     `json:"tool"`
	Color   geom.Color `json:"color"`
	Dirty   bool       `json:"dirty"`
	Mode    geom.Mode  `json:"mode"`
	CanUndo bool       `json:"canUndo"`
	CanRedo bool       `json:"canRedo"`
	Shapes  int        `json:"shapes"`
	Path    string     `json:"path,omitempty"`
}

// Engine is the main drawing engine that owns the scene and its views.
type Engine struct {
	scene   *scene.Scene
	cams    map[geom.Mode]*camera.Camera
	vp      camera.Viewport
	tools   *tool.Machine
	history *History
	drag    *drag

	// rev identifies the current scene state. savedRev is the state last
	// written to disk.
	rev      uint64
	lastRev  uint64
	savedRev uint64
	path     string

	logger *slog.Logger
}

// New creates an engine with an empty scene.
func New(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	mode := opts.Mode
	if !mode.Valid() {
		mode = geom.Mode2D
	}
	vp := opts.Viewport
	if !vp.Valid() {
		vp = camera.NewViewport(1280, 720)
	}

	e := &Engine{
		vp:      vp,
		tools:   tool.NewMachine(opts.Params, logger),
		history: NewHistory(opts.HistoryDepth),
		logger:  logger,
	}
	e.resetCameras()
	e.replace(scene.New(mode), "")
	return e
}

// --- Queries ---

// Scene returns the live scene. Callers must treat it as read only.
func (e *Engine) Scene() *scene.Scene { return e.scene }

// Snapshot returns an independent copy of the scene and its revision, for
// saving off the engine goroutine.
func (e *Engine) Snapshot() (*scene.Scene, uint64) {
	return e.scene.Clone(), e.rev
}

func (e *Engine) Mode() geom.Mode           { return e.scene.Mode() }
func (e *Engine) Viewport() camera.Viewport { return e.vp }
func (e *Engine) Camera() camera.Camera     { return *e.camera() }
func (e *Engine) Tool() tool.Tool           { return e.tools.Tool() }
func (e *Engine) Color() geom.Color         { return e.tools.Color() }
func (e *Engine) ToolState() tool.State     { return e.tools.State() }
func (e *Engine) Path() string              { return e.path }
func (e *Engine) Revision() uint64          { return e.rev }
func (e *Engine) Dirty() bool               { return e.rev != e.savedRev }
func (e *Engine) CanUndo() bool             { return e.history.CanUndo() }
func (e *Engine) CanRedo() bool             { return e.history.CanRedo() }

// State reports the engine state for the GUI layer.
func (e *Engine) State() State {
	return State{
		Tool:    e.tools.Tool().String(),
		Color:   e.tools.Color(),
		Dirty:   e.Dirty(),
		Mode:    e.scene.Mode(),
		CanUndo: e.history.CanUndo(),
		CanRedo: e.history.CanRedo(),
		Shapes:  len(e.scene.Shapes(e.scene.Mode())),
		Path:    e.path,
	}
}

// Frame compiles the current view, with the gesture in progress drawn on top.
func (e *Engine) Frame() render.Frame {
	cam := *e.camera()
	f := render.Compile(e.scene, cam, e.vp)
	if e.tools.State() != tool.Stroking {
		return f
	}

	stroke := e.tools.Stroke()
	if len(stroke) == 0 {
		return f
	}
	params := e.tools.Params()
	width := params.BrushWidth
	if e.tools.Tool().Kind == tool.KindEraser {
		width = 2 * params.EraserRadius
	}
	f.AddPreview(stroke, e.tools.Color(), width*cam.PixelSize(stroke[0], e.vp))
	return f
}

// Render draws the current frame into ctx. Backend errors are logged and
// returned; they never touch the scene.
func (e *Engine) Render(ctx render.Context) error {
	if err := render.Replay(ctx, e.Frame()); err != nil {
		e.logger.Error("render frame", "error", err, "mode", e.scene.Mode())
		return err
	}
	return nil
}

// --- Document commands ---

// NewDocument replaces the scene with an empty one in mode.
func (e *Engine) NewDocument(mode geom.Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("new document: unknown mode %q", mode)
	}
	e.replace(scene.New(mode), "")
	e.logger.Info("new document", "mode", mode)
	return nil
}

// Replace swaps in a scene built elsewhere, typically by an offloaded load.
// s must not be used by the caller afterwards.
func (e *Engine) Replace(s *scene.Scene, path string) {
	e.replace(s, path)
}

// Load reads path and swaps the result in. On failure the live scene is
// untouched.
func (e *Engine) Load(ctx context.Context, path string) error {
	s, err := document.Load(ctx, path)
	if err != nil {
		e.logger.Error("load scene", "error", err, "path", path)
		return err
	}
	e.replace(s, path)
	e.logger.Info("loaded scene", "path", path, "shapes", s.Len(), "mode", s.Mode())
	return nil
}

// Save writes the scene to path and returns the path actually written.
func (e *Engine) Save(ctx context.Context, path string) (string, error) {
	snap, rev := e.Snapshot()
	written, err := document.Save(ctx, path, snap)
	if err != nil {
		e.logger.Error("save scene", "error", err, "path", path)
		return "", err
	}
	e.MarkSaved(rev, written)
	e.logger.Info("saved scene", "path", written, "shapes", snap.Len())
	return written, nil
}

// MarkSaved records that the state with revision rev was written to path.
func (e *Engine) MarkSaved(rev uint64, path string) {
	e.savedRev = rev
	if path != "" {
		e.path = path
	}
}

func (e *Engine) replace(s *scene.Scene, path string) {
	e.cancelGesture()
	e.scene = s
	e.path = path
	e.history.Reset()
	e.rev = e.nextRev()
	e.savedRev = e.rev
	e.cams[geom.Mode2D].Reset()
}

// --- Scene commands ---

// SwitchMode changes the active drawing space. Shapes of the other mode are
// kept but hidden. The 2D camera returns to its default pose; the 3D camera
// keeps its last pose.
func (e *Engine) SwitchMode(mode geom.Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("switch mode: unknown mode %q", mode)
	}
	if mode == e.scene.Mode() {
		return nil
	}
	e.cancelGesture()
	if err := e.scene.SetMode(mode); err != nil {
		return fmt.Errorf("switch mode: %w", err)
	}
	if mode == geom.Mode2D {
		e.cams[geom.Mode2D].Reset()
	}
	e.rev = e.nextRev()
	e.logger.Debug("mode switched", "mode", mode)
	return nil
}

// Clear removes every shape as one undoable step.
func (e *Engine) Clear() {
	if e.scene.Len() == 0 {
		return
	}
	e.cancelGesture()
	before := e.scene.Clone()
	e.scene.Clear()
	e.commit(before)
}

// SetBackground changes the background colour as one undoable step.
func (e *Engine) SetBackground(c geom.Color) {
	if c == e.scene.Background() {
		return
	}
	before := e.scene.Clone()
	e.scene.SetBackground(c)
	e.commit(before)
}

// TransformShape applies p on top of the shape's transform as one undoable
// step. The rotation and scale are taken about the centre of the shape's
// world bounds, whatever p.Anchor holds.
func (e *Engine) TransformShape(id string, p geom.Placement) error {
	sh, err := e.scene.Get(id)
	if err != nil {
		return err
	}
	c := geom.BoundingBox(sh, geom.WorldSpace).Center()
	p.Anchor = geom.V2(c[0], c[1])
	if err := p.Validate(); err != nil {
		return err
	}
	before := e.scene.Clone()
	if err := e.scene.Retransform(id, geom.Compose(p.Mat4(), sh.Transform)); err != nil {
		return err
	}
	e.commit(before)
	return nil
}

// RecolorShape sets the colour of a shape as one undoable step.
func (e *Engine) RecolorShape(id string, c geom.Color) error {
	sh, err := e.scene.Get(id)
	if err != nil {
		return err
	}
	if sh.Color == c {
		return nil
	}
	before := e.scene.Clone()
	if err := e.scene.Recolor(id, c); err != nil {
		return err
	}
	e.commit(before)
	return nil
}

// Undo steps back one committed mutation. The active mode is kept.
func (e *Engine) Undo() bool {
	prev, ok := e.history.Undo(snapshot{scene: e.scene, rev: e.rev})
	if !ok {
		return false
	}
	e.restore(prev)
	return true
}

// Redo re-applies the last undone mutation.
func (e *Engine) Redo() bool {
	next, ok := e.history.Redo(snapshot{scene: e.scene, rev: e.rev})
	if !ok {
		return false
	}
	e.restore(next)
	return true
}

func (e *Engine) restore(s snapshot) {
	e.cancelGesture()
	mode := e.scene.Mode()
	if err := s.scene.SetMode(mode); err != nil {
		e.logger.Error("restore snapshot", "error", err)
	}
	e.scene = s.scene
	e.rev = s.rev
}

// commit records before as the undo step for a mutation already applied.
func (e *Engine) commit(before *scene.Scene) {
	e.history.Push(snapshot{scene: before, rev: e.rev})
	e.rev = e.nextRev()
}

func (e *Engine) nextRev() uint64 {
	e.lastRev++
	return e.lastRev
}

// --- View commands ---

// Resize sets the viewport size in pixels.
func (e *Engine) Resize(width, height int) error {
	vp := camera.NewViewport(width, height)
	if !vp.Valid() {
		return fmt.Errorf("resize: invalid viewport %dx%d", width, height)
	}
	e.vp = vp
	return nil
}

func (e *Engine) Orbit(yawDeg, pitchDeg, rollDeg float64) {
	e.camera().Orbit(yawDeg, pitchDeg, rollDeg)
}

func (e *Engine) Pan(dx, dy float64) {
	e.camera().Pan(dx, dy, e.vp.Width)
}

func (e *Engine) Zoom(factor float64) {
	e.camera().Zoom(factor)
}

// ResetCamera restores the default pose of the active camera.
func (e *Engine) ResetCamera() {
	e.camera().Reset()
}

// SetProjection switches the active camera between orthographic and
// perspective.
func (e *Engine) SetProjection(p camera.Projection) error {
	return e.camera().SetProjection(p)
}

func (e *Engine) camera() *camera.Camera {
	return e.cams[e.scene.Mode()]
}

func (e *Engine) resetCameras() {
	c2, c3 := camera.Default2D(), camera.Default3D()
	e.cams = map[geom.Mode]*camera.Camera{
		geom.Mode2D: &c2,
		geom.Mode3D: &c3,
	}
}
