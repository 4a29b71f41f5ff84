// Package scene holds the ordered collection of committed shapes.
//
// Shapes of both modes live in one scene. Only shapes of the active mode are
// hit-tested and drawn; the others are kept untouched until the mode
// switches back. A Scene is not safe for concurrent use: it is owned by the
// engine loop.
package scene

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/painterhq/painter/internal/geom"
	"github.com/painterhq/painter/internal/typeid"
)

// Default backgrounds: a white canvas in 2D and a dark teal in 3D.
var (
	Background2D = geom.White
	Background3D = geom.RGB(51, 77, 77)
)

type Scene struct {
	mode       geom.Mode
	background geom.Color
	shapes     []*geom.Shape
	byID       map[string]*geom.Shape
	version    uint64
}

// New returns an empty scene in mode with the mode's default background.
func New(mode geom.Mode) *Scene {
	if !mode.Valid() {
		mode = geom.Mode2D
	}
	bg := Background2D
	if mode == geom.Mode3D {
		bg = Background3D
	}
	return &Scene{
		mode:       mode,
		background: bg,
		byID:       make(map[string]*geom.Shape),
	}
}

func (s *Scene) Mode() geom.Mode { return s.mode }

// SetMode switches the active mode. Shapes of the other mode are retained.
func (s *Scene) SetMode(mode geom.Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("unknown mode %q", mode)
	}
	if mode != s.mode {
		s.mode = mode
		s.version++
	}
	return nil
}

func (s *Scene) Background() geom.Color { return s.background }

func (s *Scene) SetBackground(c geom.Color) {
	if c != s.background {
		s.background = c
		s.version++
	}
}

// Version increases on every mutation.
func (s *Scene) Version() uint64 { return s.version }

// Len returns the number of shapes across both modes.
func (s *Scene) Len() int { return len(s.shapes) }

// Add validates and appends a copy of shape, returning its id.
//
// A missing id is generated. A missing mode defaults to the scene mode, a
// zero transform to identity and a zero depth to one above the current
// topmost shape. Zero is the unassigned depth and is never stored.
func (s *Scene) Add(shape geom.Shape) (string, error) {
	sh := shape.Clone()
	if sh.Mode == "" {
		sh.Mode = s.mode
	}
	if sh.Transform == (geom.Mat4{}) {
		sh.Transform = geom.Identity()
	}
	if err := sh.Validate(); err != nil {
		return "", err
	}
	if sh.ID == "" {
		sh.ID = typeid.NewShapeID()
	} else if _, ok := s.byID[sh.ID]; ok {
		return "", &DuplicateIDError{ID: sh.ID}
	}
	if sh.Depth == 0 {
		sh.Depth = s.NextDepth()
	}
	s.shapes = append(s.shapes, &sh)
	s.byID[sh.ID] = &sh
	s.version++
	return sh.ID, nil
}

// NextDepth returns a depth above every shape in the scene.
func (s *Scene) NextDepth() int {
	top := 0
	for _, sh := range s.shapes {
		top = max(top, sh.Depth)
	}
	return top + 1
}

// Remove deletes the shape with id.
func (s *Scene) Remove(id string) error {
	if _, ok := s.byID[id]; !ok {
		return &NotFoundError{ID: id}
	}
	delete(s.byID, id)
	s.shapes = slices.DeleteFunc(s.shapes, func(sh *geom.Shape) bool { return sh.ID == id })
	s.version++
	return nil
}

// Get returns a copy of the shape with id.
func (s *Scene) Get(id string) (geom.Shape, error) {
	sh, ok := s.byID[id]
	if !ok {
		return geom.Shape{}, &NotFoundError{ID: id}
	}
	return sh.Clone(), nil
}

// Recolor sets the colour of the shape with id.
func (s *Scene) Recolor(id string, c geom.Color) error {
	sh, ok := s.byID[id]
	if !ok {
		return &NotFoundError{ID: id}
	}
	sh.Color = c
	s.version++
	return nil
}

// Retransform replaces the local transform of the shape with id. 2D shapes
// only accept planar matrices.
func (s *Scene) Retransform(id string, m geom.Mat4) error {
	sh, ok := s.byID[id]
	if !ok {
		return &NotFoundError{ID: id}
	}
	next := *sh
	next.Transform = m
	if err := next.Validate(); err != nil {
		return err
	}
	sh.Transform = m
	s.version++
	return nil
}

// Clear removes every shape of both modes.
func (s *Scene) Clear() {
	if len(s.shapes) == 0 {
		return
	}
	s.shapes = nil
	clear(s.byID)
	s.version++
}

// Shapes returns copies of the shapes of mode in insertion order.
func (s *Scene) Shapes(mode geom.Mode) []geom.Shape {
	var out []geom.Shape
	for _, sh := range s.shapes {
		if sh.Mode == mode {
			out = append(out, sh.Clone())
		}
	}
	return out
}

// All returns copies of every shape in insertion order.
func (s *Scene) All() []geom.Shape {
	out := make([]geom.Shape, len(s.shapes))
	for i, sh := range s.shapes {
		out[i] = sh.Clone()
	}
	return out
}

// PaintOrder returns the shapes of mode in the order they must be drawn:
// ascending depth, then insertion order. In 3D shapes are further sorted back
// to front from eye so that translucent blending composes correctly.
func (s *Scene) PaintOrder(mode geom.Mode, eye geom.Vec3) []geom.Shape {
	shapes := s.Shapes(mode)
	if mode == geom.Mode3D {
		slices.SortStableFunc(shapes, func(a, b geom.Shape) int {
			return cmp.Compare(eyeDistance(b, eye), eyeDistance(a, eye))
		})
		return shapes
	}
	slices.SortStableFunc(shapes, func(a, b geom.Shape) int {
		return cmp.Compare(a.Depth, b.Depth)
	})
	return shapes
}

// QueryAt returns the ids of active-mode shapes hit within tolerance of p,
// topmost first. Topmost is the reverse of paint order.
func (s *Scene) QueryAt(p geom.Vec3, tolerance float64) []string {
	type hit struct {
		id    string
		depth int
		order int
	}
	var hits []hit
	for i, sh := range s.shapes {
		if sh.Mode == s.mode && geom.HitTest(*sh, p, tolerance) {
			hits = append(hits, hit{sh.ID, sh.Depth, i})
		}
	}
	slices.SortFunc(hits, func(a, b hit) int {
		if c := cmp.Compare(b.depth, a.depth); c != 0 {
			return c
		}
		return cmp.Compare(b.order, a.order)
	})
	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.id
	}
	return ids
}

// QueryRay returns the ids of active-mode shapes the ray passes within reach
// of, nearest along the ray first. Ties keep the topmost shape first.
func (s *Scene) QueryRay(r geom.Ray, reach func(geom.Vec3) float64) []string {
	type hit struct {
		id    string
		t     float64
		depth int
		order int
	}
	var hits []hit
	for i, sh := range s.shapes {
		if sh.Mode != s.mode {
			continue
		}
		if t, ok := geom.RayHit(*sh, r, reach); ok {
			hits = append(hits, hit{sh.ID, t, sh.Depth, i})
		}
	}
	slices.SortFunc(hits, func(a, b hit) int {
		if c := cmp.Compare(a.t, b.t); c != 0 {
			return c
		}
		if c := cmp.Compare(b.depth, a.depth); c != 0 {
			return c
		}
		return cmp.Compare(b.order, a.order)
	})
	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.id
	}
	return ids
}

func eyeDistance(sh geom.Shape, eye geom.Vec3) float64 {
	return geom.BoundingBox(sh, geom.WorldSpace).Center().Sub(eye).Len()
}

// Clone returns an independent deep copy.
func (s *Scene) Clone() *Scene {
	c := &Scene{
		mode:       s.mode,
		background: s.background,
		shapes:     make([]*geom.Shape, len(s.shapes)),
		byID:       make(map[string]*geom.Shape, len(s.shapes)),
		version:    s.version,
	}
	for i, sh := range s.shapes {
		cp := sh.Clone()
		c.shapes[i] = &cp
		c.byID[cp.ID] = &cp
	}
	return c
}

// Equal reports whether two scenes hold the same mode, background and
// shapes. Shapes are matched by id, so insertion order does not matter.
func (s *Scene) Equal(o *Scene) bool {
	if s.mode != o.mode || s.background != o.background || len(s.shapes) != len(o.shapes) {
		return false
	}
	for id, sh := range s.byID {
		other, ok := o.byID[id]
		if !ok || !sh.Equal(*other) {
			return false
		}
	}
	return true
}
