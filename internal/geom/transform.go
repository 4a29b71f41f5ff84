package geom

// Space selects where a bounding box is measured.
type Space int

const (
	LocalSpace Space = iota
	WorldSpace
)

// Transform returns a new shape with m applied to every vertex. The input is
// not mutated and the local transform is carried over unchanged. 2D shapes
// are kept on the drawing plane, so callers should pass planar matrices for
// them.
func Transform(s Shape, m Mat4) Shape {
	out := s.Clone()
	for i, v := range out.Vertices {
		w := ApplyPoint(m, v)
		if s.Mode == Mode2D {
			w = flatten(w)
		}
		out.Vertices[i] = w
	}
	return out
}

// BoundingBox returns the axis-aligned bounds of the shape's vertices in the
// requested space. Stroke width is not included.
func BoundingBox(s Shape, space Space) Box {
	verts := s.Vertices
	if space == WorldSpace {
		verts = s.WorldVertices()
	}
	b := EmptyBox()
	for _, v := range verts {
		b = b.Extend(v)
	}
	return b
}
