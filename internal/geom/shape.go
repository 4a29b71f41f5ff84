package geom

import (
	"errors"
	"fmt"
	"slices"
)

var ErrInvalidShape = errors.New("invalid shape")

// Kind is the geometry kind of a shape.
type Kind string

const (
	KindPoint   Kind = "point"
	KindLine    Kind = "line"
	KindPolygon Kind = "polygon"
	KindMesh    Kind = "mesh"
)

// MinVertices returns the minimum vertex count a kind requires, or -1 for an
// unknown kind.
func (k Kind) MinVertices() int {
	switch k {
	case KindPoint:
		return 1
	case KindLine:
		return 2
	case KindPolygon, KindMesh:
		return 3
	default:
		return -1
	}
}

// Shape is a committed drawable primitive.
//
// Vertices are in local space; Transform maps local to world. 2D shapes keep
// every vertex on the z=0 plane and only accept planar transforms. A mesh
// with no Indices is read as consecutive vertex triples.
type Shape struct {
	ID        string
	Kind      Kind
	Mode      Mode
	Vertices  []Vec3
	Indices   []uint32
	Color     Color
	Width     float64
	Transform Mat4
	Depth     int
}

// NewShape builds a shape with an identity transform.
func NewShape(kind Kind, mode Mode, color Color, width float64, vertices ...Vec3) Shape {
	return Shape{
		Kind:      kind,
		Mode:      mode,
		Vertices:  vertices,
		Color:     color,
		Width:     width,
		Transform: Identity(),
	}
}

// Validate checks the shape invariants: known kind and mode, enough
// vertices, finite coordinates, planar 2D geometry and in-range mesh indices.
func (s Shape) Validate() error {
	minVerts := s.Kind.MinVertices()
	if minVerts < 0 {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidShape, s.Kind)
	}
	if !s.Mode.Valid() {
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidShape, s.Mode)
	}
	if len(s.Vertices) < minVerts {
		return fmt.Errorf("%w: %s needs at least %d vertices, got %d", ErrInvalidShape, s.Kind, minVerts, len(s.Vertices))
	}
	if !finite(s.Width) || s.Width < 0 {
		return fmt.Errorf("%w: stroke width %v", ErrInvalidShape, s.Width)
	}
	if !finiteMat(s.Transform) {
		return fmt.Errorf("%w: non-finite transform", ErrInvalidShape)
	}
	for i, v := range s.Vertices {
		if !finiteVec(v) {
			return fmt.Errorf("%w: vertex %d is not finite", ErrInvalidShape, i)
		}
		if s.Mode == Mode2D && v[2] != 0 {
			return fmt.Errorf("%w: 2d vertex %d has z=%v", ErrInvalidShape, i, v[2])
		}
	}
	if s.Mode == Mode2D && !IsPlanar(s.Transform) {
		return fmt.Errorf("%w: 2d shape with non-planar transform", ErrInvalidShape)
	}
	if s.Kind == KindMesh {
		return s.validateIndices()
	}
	if len(s.Indices) > 0 {
		return fmt.Errorf("%w: indices are only valid on meshes", ErrInvalidShape)
	}
	return nil
}

func (s Shape) validateIndices() error {
	if len(s.Indices) == 0 {
		if len(s.Vertices)%3 != 0 {
			return fmt.Errorf("%w: unindexed mesh needs a multiple of 3 vertices, got %d", ErrInvalidShape, len(s.Vertices))
		}
		return nil
	}
	if len(s.Indices)%3 != 0 {
		return fmt.Errorf("%w: mesh index count %d is not a multiple of 3", ErrInvalidShape, len(s.Indices))
	}
	for i, idx := range s.Indices {
		if int(idx) >= len(s.Vertices) {
			return fmt.Errorf("%w: index %d references vertex %d of %d", ErrInvalidShape, i, idx, len(s.Vertices))
		}
	}
	return nil
}

// Clone returns a deep copy.
func (s Shape) Clone() Shape {
	s.Vertices = slices.Clone(s.Vertices)
	s.Indices = slices.Clone(s.Indices)
	return s
}

// Equal reports structural equality, including the identifier.
func (s Shape) Equal(o Shape) bool {
	return s.ID == o.ID &&
		s.Kind == o.Kind &&
		s.Mode == o.Mode &&
		s.Color == o.Color &&
		s.Width == o.Width &&
		s.Depth == o.Depth &&
		s.Transform == o.Transform &&
		slices.Equal(s.Vertices, o.Vertices) &&
		slices.Equal(s.Indices, o.Indices)
}

// Triangles returns the mesh triangles as vertex index triples. Polygons are
// fanned from their first vertex. Other kinds have no triangles.
func (s Shape) Triangles() [][3]uint32 {
	switch s.Kind {
	case KindMesh:
		if len(s.Indices) == 0 {
			tris := make([][3]uint32, 0, len(s.Vertices)/3)
			for i := 0; i+2 < len(s.Vertices); i += 3 {
				tris = append(tris, [3]uint32{uint32(i), uint32(i + 1), uint32(i + 2)})
			}
			return tris
		}
		tris := make([][3]uint32, 0, len(s.Indices)/3)
		for i := 0; i+2 < len(s.Indices); i += 3 {
			tris = append(tris, [3]uint32{s.Indices[i], s.Indices[i+1], s.Indices[i+2]})
		}
		return tris
	case KindPolygon:
		tris := make([][3]uint32, 0, len(s.Vertices)-2)
		for i := 1; i+1 < len(s.Vertices); i++ {
			tris = append(tris, [3]uint32{0, uint32(i), uint32(i + 1)})
		}
		return tris
	default:
		return nil
	}
}

// WorldVertices returns the vertices with the local transform applied.
func (s Shape) WorldVertices() []Vec3 {
	out := make([]Vec3, len(s.Vertices))
	for i, v := range s.Vertices {
		w := ApplyPoint(s.Transform, v)
		if s.Mode == Mode2D {
			w = flatten(w)
		}
		out[i] = w
	}
	return out
}
