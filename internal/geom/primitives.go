package geom

// boxCorners are the unit cube corners, front face first.
var boxCorners = [8]Vec3{
	{-0.5, -0.5, 0.5},
	{0.5, -0.5, 0.5},
	{0.5, 0.5, 0.5},
	{-0.5, 0.5, 0.5},
	{-0.5, -0.5, -0.5},
	{0.5, -0.5, -0.5},
	{0.5, 0.5, -0.5},
	{-0.5, 0.5, -0.5},
}

// boxIndices wind every face counter-clockwise seen from outside.
var boxIndices = []uint32{
	0, 1, 2, 0, 2, 3, // front
	5, 4, 7, 5, 7, 6, // back
	4, 0, 3, 4, 3, 7, // left
	1, 5, 6, 1, 6, 2, // right
	3, 2, 6, 3, 6, 7, // top
	4, 5, 1, 4, 1, 0, // bottom
}

// BoxMesh returns a cube mesh of the given edge length centred on center.
func BoxMesh(center Vec3, edge float64, color Color) Shape {
	verts := make([]Vec3, len(boxCorners))
	for i, c := range boxCorners {
		verts[i] = center.Add(c.Mul(edge))
	}
	s := NewShape(KindMesh, Mode3D, color, 0, verts...)
	s.Indices = append([]uint32(nil), boxIndices...)
	return s
}

// QuadMesh returns a flat two-triangle mesh on the drawing plane spanning
// the axis-aligned rectangle between a and b.
func QuadMesh(a, b Vec3, color Color) Shape {
	s := NewShape(KindMesh, Mode2D, color, 0,
		Vec3{a[0], a[1], 0},
		Vec3{b[0], a[1], 0},
		Vec3{b[0], b[1], 0},
		Vec3{a[0], b[1], 0},
	)
	s.Indices = []uint32{0, 1, 2, 0, 2, 3}
	return s
}
