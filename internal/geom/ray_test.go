package geom

import (
	"math"
	"testing"
)

func TestRayHit(t *testing.T) {
	down := func(x, y float64) Ray {
		r, _ := NewRay(V3(x, y, 10), V3(x, y, 0))
		return r
	}
	box := BoxMesh(V3(0, 0, 0), 2, Red)
	shifted := BoxMesh(V3(5, 0, 0), 2, Red)
	line := NewShape(KindLine, Mode3D, Red, 0, V3(-1, 0, 0), V3(1, 0, 0))
	wide := NewShape(KindLine, Mode3D, Red, 2, V3(-1, 0, 0), V3(1, 0, 0))
	point := NewShape(KindPoint, Mode3D, Red, 0, V3(0, 0, -3))
	edgeOn := NewShape(KindPolygon, Mode3D, Red, 0,
		V3(0, -1, -1), V3(0, 1, -1), V3(0, 1, 1), V3(0, -1, 1))
	tilted := NewShape(KindPolygon, Mode3D, Red, 0,
		V3(-3, -3, 3), V3(3, -3, 3), V3(3, 3, 3), V3(-3, 3, 3))
	tilted.Transform = RotateEulerDegrees(0, 30, 0)

	tests := []struct {
		name  string
		shape Shape
		ray   Ray
		reach float64
		want  bool
		t     float64
	}{
		{"box front face", box, down(0, 0), 0, true, 9},
		{"box interior off focus plane", box, down(0.5, -0.5), 0, true, 9},
		{"box beside the ray", shifted, down(0, 0), 0.1, false, 0},
		{"line crossed", line, down(0, 0), 0.01, true, 10},
		{"line passed by", line, down(0, 0.5), 0.1, false, 0},
		{"line within half width", wide, down(0, 0.5), 0.1, true, 10},
		{"point behind origin", point, down(0, 0.05), 0.1, true, 13},
		{"polygon edge on", edgeOn, down(0.05, 0), 0.1, true, 9},
		{"rotated polygon", tilted, down(0, 0), 0, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := RayHit(tt.shape, tt.ray, func(Vec3) float64 { return tt.reach })
			if ok != tt.want {
				t.Fatalf("RayHit = %v, %v, want hit %v", got, ok, tt.want)
			}
			if ok && tt.t > 0 && math.Abs(got-tt.t) > 1e-6 {
				t.Errorf("t = %v, want %v", got, tt.t)
			}
		})
	}
}

func TestRayHitBehindOrigin(t *testing.T) {
	r, _ := NewRay(V3(0, 0, 10), V3(0, 0, 20))
	if _, ok := RayHit(BoxMesh(V3(0, 0, 0), 2, Red), r, func(Vec3) float64 { return 0.1 }); ok {
		t.Error("ray pointing away hit the box")
	}
}

func TestNewRayDegenerate(t *testing.T) {
	if _, ok := NewRay(V3(1, 2, 3), V3(1, 2, 3)); ok {
		t.Error("zero length ray accepted")
	}
	r, ok := NewRay(V3(0, 0, 0), V3(0, 0, -4))
	if !ok || !r.Dir.ApproxEqual(V3(0, 0, -1)) {
		t.Errorf("ray = %+v, %v", r, ok)
	}
}
