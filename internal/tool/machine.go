package tool

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/painterhq/painter/internal/geom"
)

// Projector maps viewport pixels into the scene.
type Projector interface {
	ScreenToWorld(screen geom.Vec2) (geom.Vec3, error)
	// PixelSize is the world length of one pixel at p.
	PixelSize(p geom.Vec3) float64
}

// Target is the scene as seen by the tools.
type Target interface {
	Mode() geom.Mode
	Add(geom.Shape) (string, error)
	Remove(id string) error
	Get(id string) (geom.Shape, error)
	// QueryAt returns hit shape ids, the one the user sees on top first.
	QueryAt(p geom.Vec3, tolerance float64) []string
}

// ScreenPicker is implemented by targets that pick along the pointer ray
// instead of at a single world point. radius is in pixels.
type ScreenPicker interface {
	PickScreen(screen geom.Vec2, radius float64) []string
}

// Result describes what an event did.
type Result struct {
	Added   []string
	Removed []string
	// Sampled is the colour the pipette picked up, if any.
	Sampled *geom.Color
}

// Mutated reports whether the scene changed.
func (r Result) Mutated() bool {
	return len(r.Added) > 0 || len(r.Removed) > 0
}

type sample struct {
	screen geom.Vec2
	world  geom.Vec3
}

// Machine is the tool state machine. It is not safe for concurrent use.
type Machine struct {
	tool   Tool
	params Params
	state  State
	stroke []sample
	logger *slog.Logger
}

// NewMachine returns an idle machine with the brush selected.
func NewMachine(params Params, logger *slog.Logger) *Machine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Machine{
		tool:   Brush(),
		params: params,
		logger: logger,
	}
}

func (m *Machine) Tool() Tool         { return m.tool }
func (m *Machine) Params() Params     { return m.params }
func (m *Machine) Color() geom.Color  { return m.params.Color }
func (m *Machine) State() State       { return m.state }
func (m *Machine) SetParams(p Params) { m.params = p }

// Stroke returns the world vertices accumulated by the gesture in progress.
func (m *Machine) Stroke() []geom.Vec3 {
	out := make([]geom.Vec3, len(m.stroke))
	for i, s := range m.stroke {
		out[i] = s.world
	}
	return out
}

// Handle applies one event. Out-of-order pointer events are ignored.
// Projection and scene errors are returned and leave the machine in its
// previous state.
func (m *Machine) Handle(ev Event, proj Projector, target Target) (Result, error) {
	switch ev := ev.(type) {
	case SelectTool:
		m.discard("tool switch")
		m.tool = ev.Tool
		return Result{}, nil

	case SelectColor:
		m.params.Color = ev.Color
		return Result{}, nil

	case Cancel:
		m.discard("cancel")
		return Result{}, nil

	case PointerDown:
		if ev.Button != ButtonLeft {
			return Result{}, nil
		}
		if m.state != Idle {
			m.ignore("pointer down during gesture", ev.Pos)
			return Result{}, nil
		}
		return m.down(ev, proj, target)

	case PointerMove:
		if m.state != Stroking {
			return Result{}, nil
		}
		return Result{}, m.move(ev.Pos, proj)

	case PointerUp:
		if ev.Button != ButtonLeft {
			return Result{}, nil
		}
		switch m.state {
		case Idle:
			m.ignore("pointer up without pointer down", ev.Pos)
			return Result{}, nil
		case Sampling:
			m.state = Idle
			return Result{}, nil
		}
		return m.up(ev.Pos, proj, target)
	}

	m.logger.Debug("unknown tool event", "type", fmt.Sprintf("%T", ev))
	return Result{}, nil
}

func (m *Machine) down(ev PointerDown, proj Projector, target Target) (Result, error) {
	w, err := proj.ScreenToWorld(ev.Pos)
	if err != nil {
		return Result{}, fmt.Errorf("pointer down at %v: %w", ev.Pos, err)
	}

	if m.tool.Kind == KindPipette {
		m.state = Sampling
		return m.sampleColor(sample{ev.Pos, w}, proj, target)
	}

	m.state = Stroking
	m.stroke = append(m.stroke[:0], sample{ev.Pos, w})
	return Result{}, nil
}

func (m *Machine) move(pos geom.Vec2, proj Projector) error {
	last := m.stroke[len(m.stroke)-1]
	if pos.Sub(last.screen).Len() < m.params.MinSampleDistance {
		return nil
	}
	w, err := proj.ScreenToWorld(pos)
	if err != nil {
		return fmt.Errorf("pointer move at %v: %w", pos, err)
	}
	if m.tool.Kind == KindInsert {
		// Inserts only need the anchor and the latest position.
		m.stroke = append(m.stroke[:1], sample{pos, w})
		return nil
	}
	m.stroke = append(m.stroke, sample{pos, w})
	return nil
}

func (m *Machine) up(pos geom.Vec2, proj Projector, target Target) (Result, error) {
	// A release that cannot be projected still ends the gesture with the
	// samples collected so far.
	if err := m.move(pos, proj); err != nil {
		m.logger.Debug("pointer up not projected", "error", err)
	}
	stroke := m.stroke
	m.stroke = nil
	m.state = Idle

	switch m.tool.Kind {
	case KindBrush:
		return m.commitBrush(stroke, proj, target)
	case KindEraser:
		return m.erase(stroke, proj, target)
	case KindInsert:
		return m.insert(stroke, proj, target)
	}
	return Result{}, nil
}

func (m *Machine) commitBrush(stroke []sample, proj Projector, target Target) (Result, error) {
	kind := geom.KindLine
	if len(stroke) == 1 {
		kind = geom.KindPoint
	}
	verts := make([]geom.Vec3, len(stroke))
	for i, s := range stroke {
		verts[i] = s.world
	}
	width := m.params.BrushWidth * proj.PixelSize(verts[0])
	id, err := target.Add(geom.NewShape(kind, target.Mode(), m.params.Color, width, verts...))
	if err != nil {
		return Result{}, fmt.Errorf("commit brush stroke: %w", err)
	}
	return Result{Added: []string{id}}, nil
}

// erase walks the stroke path in steps of half the eraser radius and
// removes every shape within the radius of a step.
func (m *Machine) erase(stroke []sample, proj Projector, target Target) (Result, error) {
	seen := make(map[string]bool)
	var hits []string
	visit := func(s sample) {
		for _, id := range m.query(s, m.params.EraserRadius, proj, target) {
			if !seen[id] {
				seen[id] = true
				hits = append(hits, id)
			}
		}
	}

	visit(stroke[0])
	step := m.params.EraserRadius / 2
	for i := 1; i < len(stroke); i++ {
		a, b := stroke[i-1], stroke[i]
		n := 1
		if step > 0 {
			n = max(1, int(math.Ceil(b.screen.Sub(a.screen).Len()/step)))
		}
		for j := 1; j <= n; j++ {
			f := float64(j) / float64(n)
			visit(sample{
				screen: a.screen.Add(b.screen.Sub(a.screen).Mul(f)),
				world:  a.world.Add(b.world.Sub(a.world).Mul(f)),
			})
		}
	}

	var res Result
	for _, id := range hits {
		if err := target.Remove(id); err != nil {
			return res, fmt.Errorf("erase %s: %w", id, err)
		}
		res.Removed = append(res.Removed, id)
	}
	return res, nil
}

func (m *Machine) sampleColor(s sample, proj Projector, target Target) (Result, error) {
	ids := m.query(s, m.params.HitTolerance, proj, target)
	if len(ids) == 0 {
		m.logger.Debug("pipette miss", "screen", s.screen, "point", s.world)
		return Result{}, nil
	}
	sh, err := target.Get(ids[0])
	if err != nil {
		return Result{}, fmt.Errorf("pipette: %w", err)
	}
	m.params.Color = sh.Color
	c := sh.Color
	return Result{Sampled: &c}, nil
}

// query returns the shapes under a sample within radius pixels, the one
// the user sees first at the front.
func (m *Machine) query(s sample, radius float64, proj Projector, target Target) []string {
	if p, ok := target.(ScreenPicker); ok {
		return p.PickScreen(s.screen, radius)
	}
	return target.QueryAt(s.world, radius*proj.PixelSize(s.world))
}

func (m *Machine) discard(reason string) {
	if m.state == Stroking && len(m.stroke) > 0 {
		m.logger.Debug("stroke discarded", "reason", reason, "tool", m.tool.String(), "vertices", len(m.stroke))
	}
	m.stroke = nil
	m.state = Idle
}

func (m *Machine) ignore(msg string, pos geom.Vec2) {
	m.logger.Debug(msg, "tool", m.tool.String(), "state", m.state.String(), "pos", pos)
}
