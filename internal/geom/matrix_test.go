package geom

import (
	"math"
	"testing"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func approxVec(a, b Vec3) bool {
	return approx(a[0], b[0]) && approx(a[1], b[1]) && approx(a[2], b[2])
}

func TestPlacementMat4(t *testing.T) {
	unit := Placement{ScaleX: 1, ScaleY: 1}
	tests := []struct {
		name string
		p    Placement
		in   Vec3
		want Vec3
	}{
		{"identity", unit, V3(3, 4, 0), V3(3, 4, 0)},
		{"translation", Placement{X: 10, Y: -2, ScaleX: 1, ScaleY: 1}, V3(1, 1, 0), V3(11, -1, 0)},
		{"rotation about origin", Placement{Rotation: 90, ScaleX: 1, ScaleY: 1}, V3(1, 0, 0), V3(0, 1, 0)},
		{"rotation about anchor", Placement{Rotation: 90, ScaleX: 1, ScaleY: 1, Anchor: V2(1, 1)}, V3(2, 1, 0), V3(1, 2, 0)},
		{"scale about anchor", Placement{ScaleX: 2, ScaleY: 2, Anchor: V2(1, 1)}, V3(2, 3, 0), V3(3, 5, 0)},
		{"scale before rotation", Placement{X: 5, Y: 6, Rotation: 90, ScaleX: 2, ScaleY: 1, Anchor: V2(1, 1)}, V3(2, 1, 0), V3(6, 9, 0)},
		{"z passes through", Placement{X: 1, Rotation: 45, ScaleX: 3, ScaleY: 3}, V3(0, 0, 7), V3(1, 0, 7)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.p.Validate(); err != nil {
				t.Fatal(err)
			}
			m := tt.p.Mat4()
			if got := ApplyPoint(m, tt.in); !approxVec(got, tt.want) {
				t.Errorf("point = %v, want %v", got, tt.want)
			}
			if !IsPlanar(m) {
				t.Error("placement should keep the drawing plane")
			}
		})
	}
}

func TestPlacementValidate(t *testing.T) {
	tests := []struct {
		name string
		p    Placement
	}{
		{"zero scale", Placement{ScaleX: 0, ScaleY: 1}},
		{"nan rotation", Placement{Rotation: math.NaN(), ScaleX: 1, ScaleY: 1}},
		{"infinite offset", Placement{X: math.Inf(1), ScaleX: 1, ScaleY: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.p.Validate(); err == nil {
				t.Error("invalid placement accepted")
			}
		})
	}
}

func TestIsPlanar(t *testing.T) {
	tests := []struct {
		name string
		m    Mat4
		want bool
	}{
		{"identity", Identity(), true},
		{"2d placement", Placement{X: 3, Rotation: 57, ScaleX: 2, ScaleY: 1}.Mat4(), true},
		{"z rotation", Rotate3D(0.5, V3(0, 0, 1)), true},
		{"x rotation", Rotate3D(0.5, V3(1, 0, 0)), false},
		{"z translation", Translate3D(0, 0, 1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPlanar(tt.m); got != tt.want {
				t.Errorf("IsPlanar = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComposeAppliesRightFirst(t *testing.T) {
	a := Translate3D(1, 0, 0)
	b := Scale3D(2, 2, 2)
	got := ApplyPoint(Compose(b, a), V3(1, 1, 1))
	if !approxVec(got, V3(4, 2, 2)) {
		t.Errorf("Compose(b, a) point = %v, want (4, 2, 2)", got)
	}
}
