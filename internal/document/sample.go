package document

import (
	"github.com/painterhq/painter/internal/geom"
	"github.com/painterhq/painter/internal/scene"
)

// NewSampleScene returns a small scene with a few shapes of each mode,
// active in mode. It is used by `painter new -sample` and in tests.
func NewSampleScene(mode geom.Mode) *scene.Scene {
	s := scene.New(geom.Mode2D)

	rect := geom.NewShape(geom.KindPolygon, geom.Mode2D, geom.RGB(233, 69, 96), 2,
		geom.V3(100, 100, 0), geom.V3(300, 100, 0), geom.V3(300, 220, 0), geom.V3(100, 220, 0))
	stroke := geom.NewShape(geom.KindLine, geom.Mode2D, geom.RGB(22, 33, 62), 3,
		geom.V3(120, 400, 0), geom.V3(220, 340, 0), geom.V3(320, 420, 0), geom.V3(420, 360, 0))
	dot := geom.NewShape(geom.KindPoint, geom.Mode2D, geom.RGB(15, 52, 96), 8, geom.V3(500, 200, 0))
	tri := geom.NewShape(geom.KindPolygon, geom.Mode2D, geom.RGB(83, 52, 131), 1,
		geom.V3(600, 300, 0), geom.V3(700, 300, 0), geom.V3(650, 220, 0))
	tri.Transform = geom.Placement{Y: 40, Rotation: 15, ScaleX: 1, ScaleY: 1, Anchor: geom.V2(650, 270)}.Mat4()

	box := geom.BoxMesh(geom.V3(0, 0, 0), 2, geom.RGB(233, 69, 96))
	box.Transform = geom.RotateEulerDegrees(20, 30, 0)
	floor := geom.NewShape(geom.KindPolygon, geom.Mode3D, geom.RGB(200, 200, 200), 0,
		geom.V3(-4, -1, -4), geom.V3(4, -1, -4), geom.V3(4, -1, 4), geom.V3(-4, -1, 4))
	axis := geom.NewShape(geom.KindLine, geom.Mode3D, geom.Red, 0.05,
		geom.V3(0, 0, 0), geom.V3(3, 0, 0))

	for _, sh := range []geom.Shape{rect, stroke, dot, tri, box, floor, axis} {
		if _, err := s.Add(sh); err != nil {
			panic("sample scene: " + err.Error())
		}
	}
	if mode == geom.Mode3D {
		_ = s.SetMode(geom.Mode3D)
		s.SetBackground(scene.Background3D)
	}
	return s
}
