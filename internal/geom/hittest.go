package geom

import "math"

// HitTest reports whether p lies within tolerance of the shape's stroke or
// fill region, measured in world space. Half the stroke width counts
// towards the reach. For 2D shapes p is projected onto the drawing plane.
func HitTest(s Shape, p Vec3, tolerance float64) bool {
	if len(s.Vertices) == 0 {
		return false
	}
	reach := math.Max(tolerance, 0) + s.Width/2
	verts := s.WorldVertices()
	if s.Mode == Mode2D {
		p = flatten(p)
	}

	bounds := EmptyBox()
	for _, v := range verts {
		bounds = bounds.Extend(v)
	}
	if !bounds.Expand(reach).Contains(p) {
		return false
	}

	switch s.Kind {
	case KindPoint:
		for _, v := range verts {
			if v.Sub(p).Len() <= reach {
				return true
			}
		}
		return false

	case KindLine:
		if len(verts) == 1 {
			return verts[0].Sub(p).Len() <= reach
		}
		return polylineDistance(verts, p, false) <= reach

	case KindPolygon:
		if s.Mode == Mode2D && pointInPolygon2D(verts, p) {
			return true
		}
		if polylineDistance(verts, p, true) <= reach {
			return true
		}
		if s.Mode == Mode3D {
			return trianglesDistance(verts, s.Triangles(), p) <= reach
		}
		return false

	case KindMesh:
		tris := s.Triangles()
		if s.Mode == Mode2D {
			for _, t := range tris {
				tri := []Vec3{verts[t[0]], verts[t[1]], verts[t[2]]}
				if pointInPolygon2D(tri, p) || polylineDistance(tri, p, true) <= reach {
					return true
				}
			}
			return false
		}
		return trianglesDistance(verts, tris, p) <= reach
	}
	return false
}

// SegmentDistance returns the distance from p to the segment ab.
func SegmentDistance(a, b, p Vec3) float64 {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 == 0 {
		return p.Sub(a).Len()
	}
	t := p.Sub(a).Dot(ab) / l2
	t = math.Max(0, math.Min(1, t))
	return a.Add(ab.Mul(t)).Sub(p).Len()
}

func polylineDistance(verts []Vec3, p Vec3, closed bool) float64 {
	best := math.Inf(1)
	for i := 0; i+1 < len(verts); i++ {
		best = math.Min(best, SegmentDistance(verts[i], verts[i+1], p))
	}
	if closed && len(verts) > 2 {
		best = math.Min(best, SegmentDistance(verts[len(verts)-1], verts[0], p))
	}
	return best
}

// pointInPolygon2D runs the even-odd crossing test on the xy plane.
func pointInPolygon2D(verts []Vec3, p Vec3) bool {
	inside := false
	n := len(verts)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := verts[i][0], verts[i][1]
		xj, yj := verts[j][0], verts[j][1]
		if (yi > p[1]) != (yj > p[1]) {
			x := (xj-xi)*(p[1]-yi)/(yj-yi) + xi
			if p[0] < x {
				inside = !inside
			}
		}
	}
	return inside
}

func trianglesDistance(verts []Vec3, tris [][3]uint32, p Vec3) float64 {
	best := math.Inf(1)
	for _, t := range tris {
		q := ClosestPointOnTriangle(p, verts[t[0]], verts[t[1]], verts[t[2]])
		best = math.Min(best, q.Sub(p).Len())
	}
	return best
}

// ClosestPointOnTriangle returns the point of triangle abc nearest to p,
// using the Voronoi region walk from Ericson's Real-Time Collision Detection.
func ClosestPointOnTriangle(p, a, b, c Vec3) Vec3 {
	ab := b.Sub(a)
	ac := c.Sub(a)
	ap := p.Sub(a)
	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return a
	}

	bp := p.Sub(b)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return b
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		return a.Add(ab.Mul(d1 / (d1 - d3)))
	}

	cp := p.Sub(c)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return c
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		return a.Add(ac.Mul(d2 / (d2 - d6)))
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		return b.Add(c.Sub(b).Mul((d4 - d3) / ((d4 - d3) + (d5 - d6))))
	}

	denom := 1 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	return a.Add(ab.Mul(v)).Add(ac.Mul(w))
}
