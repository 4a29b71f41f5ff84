package geom

import (
	"errors"
	"testing"
)

func TestShapeValidate(t *testing.T) {
	tri := []Vec3{V3(0, 0, 0), V3(10, 0, 0), V3(0, 10, 0)}

	tests := []struct {
		name    string
		shape   Shape
		wantErr bool
	}{
		{"point", NewShape(KindPoint, Mode2D, Red, 1, V3(1, 2, 0)), false},
		{"line", NewShape(KindLine, Mode2D, Red, 1, V3(0, 0, 0), V3(1, 1, 0)), false},
		{"polygon", NewShape(KindPolygon, Mode2D, Red, 1, tri...), false},
		{"3d polygon", NewShape(KindPolygon, Mode3D, Red, 1, V3(0, 0, 1), V3(1, 0, 2), V3(0, 1, 3)), false},
		{"box mesh", BoxMesh(V3(0, 0, 0), 2, Blue), false},
		{"empty point", NewShape(KindPoint, Mode2D, Red, 1), true},
		{"short line", NewShape(KindLine, Mode2D, Red, 1, V3(0, 0, 0)), true},
		{"short polygon", NewShape(KindPolygon, Mode2D, Red, 1, tri[:2]...), true},
		{"unknown kind", NewShape("spline", Mode2D, Red, 1, tri...), true},
		{"unknown mode", NewShape(KindLine, "4d", Red, 1, tri...), true},
		{"negative width", NewShape(KindLine, Mode2D, Red, -1, tri...), true},
		{"2d vertex off plane", NewShape(KindLine, Mode2D, Red, 1, V3(0, 0, 1), V3(1, 0, 0)), true},
		{"unindexed mesh not triples", NewShape(KindMesh, Mode3D, Red, 0, tri[0], tri[1], tri[2], tri[0]), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.shape.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidShape) {
				t.Errorf("error %v does not wrap ErrInvalidShape", err)
			}
		})
	}
}

func TestShapeValidateMeshIndices(t *testing.T) {
	s := BoxMesh(V3(0, 0, 0), 1, Red)
	s.Indices[5] = 99
	if err := s.Validate(); !errors.Is(err, ErrInvalidShape) {
		t.Errorf("out of range index: got %v", err)
	}

	line := NewShape(KindLine, Mode2D, Red, 1, V3(0, 0, 0), V3(1, 0, 0))
	line.Indices = []uint32{0, 1, 0}
	if err := line.Validate(); !errors.Is(err, ErrInvalidShape) {
		t.Errorf("indices on a line: got %v", err)
	}
}

func TestShapeCloneIsDeep(t *testing.T) {
	s := BoxMesh(V3(0, 0, 0), 1, Red)
	c := s.Clone()
	c.Vertices[0] = V3(9, 9, 9)
	c.Indices[0] = 7
	if s.Vertices[0] == c.Vertices[0] || s.Indices[0] == c.Indices[0] {
		t.Error("Clone shares backing arrays")
	}
	if !s.Equal(s.Clone()) {
		t.Error("a clone should be Equal to its source")
	}
}

func TestTriangles(t *testing.T) {
	poly := NewShape(KindPolygon, Mode2D, Red, 0, V3(0, 0, 0), V3(1, 0, 0), V3(1, 1, 0), V3(0, 1, 0))
	if got := len(poly.Triangles()); got != 2 {
		t.Errorf("quad fan = %d triangles, want 2", got)
	}
	if got := len(BoxMesh(V3(0, 0, 0), 1, Red).Triangles()); got != 12 {
		t.Errorf("box = %d triangles, want 12", got)
	}
	line := NewShape(KindLine, Mode2D, Red, 0, poly.Vertices...)
	if got := line.Triangles(); got != nil {
		t.Errorf("line triangles = %v, want none", got)
	}
}

func TestColorConversions(t *testing.T) {
	c, err := FromFloat(1, 0, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if c != (Color{255, 0, 128}) {
		t.Errorf("FromFloat = %v", c)
	}
	if _, err := FromFloat(1.5, 0, 0); !errors.Is(err, ErrColorRange) {
		t.Errorf("FromFloat(1.5) error = %v", err)
	}
	if _, err := RGBInt(0, 256, 0); !errors.Is(err, ErrColorRange) {
		t.Errorf("RGBInt(256) error = %v", err)
	}

	h, err := ParseHex("#f00")
	if err != nil || h != Red {
		t.Errorf("ParseHex(#f00) = %v, %v", h, err)
	}
	if Red.Hex() != "#ff0000" {
		t.Errorf("Hex() = %s", Red.Hex())
	}
}
