package geom

import "math"

// Ray is a half line from Origin along the unit vector Dir.
type Ray struct {
	Origin Vec3
	Dir    Vec3
}

// NewRay returns the ray from a through b. ok is false when a and b
// coincide.
func NewRay(a, b Vec3) (Ray, bool) {
	d := b.Sub(a)
	l := d.Len()
	if !(l > 0) || !finiteVec(a) || !finiteVec(d) {
		return Ray{}, false
	}
	return Ray{Origin: a, Dir: d.Mul(1 / l)}, true
}

// At returns the point at parameter t.
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}

// RayHit reports the smallest ray parameter at which r passes within reach
// of the shape in world space. reach is the tolerance at a world point, so
// perspective callers can widen it with distance; half the stroke width is
// added on top. Filled polygons and meshes are hit through their faces.
func RayHit(s Shape, r Ray, reach func(Vec3) float64) (float64, bool) {
	if len(s.Vertices) == 0 {
		return 0, false
	}
	verts := s.WorldVertices()
	best := math.Inf(1)
	near := func(t float64, p, q Vec3) {
		if t < best && p.Sub(q).Len() <= math.Max(reach(q), 0)+s.Width/2 {
			best = t
		}
	}

	switch s.Kind {
	case KindPoint:
		for _, v := range verts {
			t := math.Max(0, v.Sub(r.Origin).Dot(r.Dir))
			near(t, r.At(t), v)
		}

	case KindLine:
		if len(verts) == 1 {
			t := math.Max(0, verts[0].Sub(r.Origin).Dot(r.Dir))
			near(t, r.At(t), verts[0])
		}
		for i := 0; i+1 < len(verts); i++ {
			t, p, q := raySegment(r, verts[i], verts[i+1])
			near(t, p, q)
		}

	case KindPolygon, KindMesh:
		for _, tri := range s.Triangles() {
			a, b, c := verts[tri[0]], verts[tri[1]], verts[tri[2]]
			if t, ok := rayTriangle(r, a, b, c); ok && t < best {
				best = t
			}
			// Edges keep faces seen edge-on pickable.
			for _, e := range [][2]Vec3{{a, b}, {b, c}, {c, a}} {
				t, p, q := raySegment(r, e[0], e[1])
				near(t, p, q)
			}
		}
	}
	return best, !math.IsInf(best, 1)
}

// rayTriangle is the Möller-Trumbore intersection of r with triangle abc.
func rayTriangle(r Ray, a, b, c Vec3) (float64, bool) {
	e1, e2 := b.Sub(a), c.Sub(a)
	p := r.Dir.Cross(e2)
	det := e1.Dot(p)
	if math.Abs(det) < 1e-12 {
		return 0, false
	}
	inv := 1 / det
	s := r.Origin.Sub(a)
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}
	q := s.Cross(e1)
	v := r.Dir.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}
	t := e2.Dot(q) * inv
	return t, t >= 0
}

// raySegment returns the closest pair between r and segment ab: the ray
// parameter, the point on the ray and the point on the segment.
func raySegment(r Ray, a, b Vec3) (float64, Vec3, Vec3) {
	d2 := b.Sub(a)
	w := r.Origin.Sub(a)
	c22 := d2.Dot(d2)
	if c22 == 0 {
		t := math.Max(0, a.Sub(r.Origin).Dot(r.Dir))
		return t, r.At(t), a
	}
	b12 := r.Dir.Dot(d2)
	d := r.Dir.Dot(w)
	e := d2.Dot(w)

	s := 0.0
	if denom := c22 - b12*b12; denom > 1e-12 {
		s = (e - d*b12) / denom
	}
	s = clamp01(s)
	t := s*b12 - d
	if t < 0 {
		t = 0
		s = clamp01(e / c22)
	}
	return t, r.At(t), a.Add(d2.Mul(s))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
