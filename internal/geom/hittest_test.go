package geom

import "testing"

func TestHitTest(t *testing.T) {
	tri2D := NewShape(KindPolygon, Mode2D, Red, 0, V3(0, 0, 0), V3(10, 0, 0), V3(0, 10, 0))
	line2D := NewShape(KindLine, Mode2D, Red, 2, V3(0, 0, 0), V3(10, 0, 0), V3(10, 10, 0))
	point2D := NewShape(KindPoint, Mode2D, Red, 4, V3(5, 5, 0))
	tri3D := NewShape(KindPolygon, Mode3D, Red, 0, V3(0, 0, -5), V3(10, 0, -5), V3(0, 10, -5))
	box := BoxMesh(V3(0, 0, 0), 2, Red)
	moved := tri2D.Clone()
	moved.Transform = Translate3D(100, 100, 0)

	tests := []struct {
		name  string
		shape Shape
		p     Vec3
		tol   float64
		want  bool
	}{
		{"inside triangle", tri2D, V3(2, 2, 0), 0, true},
		{"far outside triangle", tri2D, V3(50, 50, 0), 1, false},
		{"near triangle edge", tri2D, V3(-0.5, 5, 0), 1, true},
		{"beyond hypotenuse", tri2D, V3(8, 8, 0), 1, false},
		{"2d ignores query z", tri2D, V3(2, 2, 42), 0, true},
		{"on polyline", line2D, V3(10, 5, 0), 0, true},
		{"within half width", line2D, V3(5, 0.9, 0), 0, true},
		{"outside width", line2D, V3(5, 3, 0), 1, false},
		{"point radius", point2D, V3(6.5, 5, 0), 0, true},
		{"point miss", point2D, V3(9, 5, 0), 1, false},
		{"3d triangle plane", tri3D, V3(2, 2, -5), 0.01, true},
		{"3d triangle depth miss", tri3D, V3(2, 2, 0), 1, false},
		{"box surface", box, V3(1, 0, 0), 0.01, true},
		{"box near face", box, V3(1.5, 0, 0), 0.6, true},
		{"box far", box, V3(5, 0, 0), 1, false},
		{"world transform honoured", moved, V3(102, 102, 0), 0, true},
		{"local coords no longer hit", moved, V3(2, 2, 0), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HitTest(tt.shape, tt.p, tt.tol); got != tt.want {
				t.Errorf("HitTest(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestClosestPointOnTriangle(t *testing.T) {
	a, b, c := V3(0, 0, 0), V3(1, 0, 0), V3(0, 1, 0)
	tests := []struct {
		p, want Vec3
	}{
		{V3(0.2, 0.2, 1), V3(0.2, 0.2, 0)},
		{V3(-1, -1, 0), a},
		{V3(2, -1, 0), b},
		{V3(-1, 2, 0), c},
		{V3(0.5, -1, 0), V3(0.5, 0, 0)},
		{V3(1, 1, 0), V3(0.5, 0.5, 0)},
	}
	for _, tt := range tests {
		if got := ClosestPointOnTriangle(tt.p, a, b, c); !approxVec(got, tt.want) {
			t.Errorf("ClosestPointOnTriangle(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestTransformComposition(t *testing.T) {
	shapes := []Shape{
		NewShape(KindPolygon, Mode2D, Red, 1, V3(0, 0, 0), V3(4, 0, 0), V3(0, 3, 0)),
		BoxMesh(V3(1, 2, 3), 2, Blue),
		NewShape(KindLine, Mode3D, Green, 1, V3(-1, 0, 2), V3(3, 5, -1)),
	}
	planar := []Mat4{
		Translate3D(5, -3, 0),
		Placement{Rotation: 33, ScaleX: 1, ScaleY: 1}.Mat4(),
		Scale3D(2, 0.5, 1),
	}
	spatial := []Mat4{
		Translate3D(1, 2, 3),
		Rotate3D(0.7, V3(1, 1, 0)),
		Scale3D(2, 3, 4),
		RotateEulerDegrees(10, 20, 30),
	}

	for _, s := range shapes {
		mats := spatial
		if s.Mode == Mode2D {
			mats = planar
		}
		for _, a := range mats {
			for _, b := range mats {
				twice := Transform(Transform(s, a), b)
				once := Transform(s, Compose(b, a))
				for i := range twice.Vertices {
					if !approxVec(twice.Vertices[i], once.Vertices[i]) {
						t.Fatalf("%s: transform(transform(s, A), B) != transform(s, B·A) at vertex %d: %v vs %v",
							s.Kind, i, twice.Vertices[i], once.Vertices[i])
					}
				}
			}
		}
	}
}

func TestTransformDoesNotMutate(t *testing.T) {
	s := NewShape(KindLine, Mode2D, Red, 1, V3(1, 1, 0), V3(2, 2, 0))
	_ = Transform(s, Translate3D(10, 10, 0))
	if s.Vertices[0] != V3(1, 1, 0) {
		t.Errorf("input mutated: %v", s.Vertices[0])
	}
}

func TestBoundingBox(t *testing.T) {
	s := NewShape(KindPolygon, Mode2D, Red, 1, V3(0, 0, 0), V3(4, 0, 0), V3(0, 3, 0))
	s.Transform = Translate3D(10, 20, 0)

	local := BoundingBox(s, LocalSpace)
	if local.Min != V3(0, 0, 0) || local.Max != V3(4, 3, 0) {
		t.Errorf("local box = %+v", local)
	}
	world := BoundingBox(s, WorldSpace)
	if world.Min != V3(10, 20, 0) || world.Max != V3(14, 23, 0) {
		t.Errorf("world box = %+v", world)
	}
	if c := world.Center(); c != V3(12, 21.5, 0) {
		t.Errorf("world center = %v", c)
	}
	if !EmptyBox().IsEmpty() {
		t.Error("EmptyBox should be empty")
	}
}
