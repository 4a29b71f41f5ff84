package tool

import (
	"fmt"

	"github.com/painterhq/painter/internal/geom"
)

// insert commits the shape dragged out from the first to the last sample.
func (m *Machine) insert(stroke []sample, proj Projector, target Target) (Result, error) {
	start, end := stroke[0], stroke[len(stroke)-1]
	mode := target.Mode()
	width := m.params.BrushWidth * proj.PixelSize(start.world)

	var sh geom.Shape
	switch m.tool.Insert {
	case geom.KindPoint:
		sh = geom.NewShape(geom.KindPoint, mode, m.params.Color, width, end.world)

	case geom.KindLine:
		if len(stroke) < 2 {
			m.logger.Debug("insert line too short", "pos", start.screen)
			return Result{}, nil
		}
		sh = geom.NewShape(geom.KindLine, mode, m.params.Color, width, start.world, end.world)

	case geom.KindPolygon:
		if len(stroke) < 2 {
			m.logger.Debug("insert polygon too small", "pos", start.screen)
			return Result{}, nil
		}
		corners := []geom.Vec2{
			start.screen,
			{end.screen[0], start.screen[1]},
			end.screen,
			{start.screen[0], end.screen[1]},
		}
		verts := make([]geom.Vec3, len(corners))
		for i, c := range corners {
			w, err := proj.ScreenToWorld(c)
			if err != nil {
				return Result{}, fmt.Errorf("insert polygon corner %v: %w", c, err)
			}
			verts[i] = w
		}
		sh = geom.NewShape(geom.KindPolygon, mode, m.params.Color, width, verts...)

	case geom.KindMesh:
		if mode == geom.Mode3D {
			edge := max(end.world.Sub(start.world).Len(), 1)
			sh = geom.BoxMesh(start.world, edge, m.params.Color)
			break
		}
		a, b := start.world, end.world
		for i := range 2 {
			if d := b[i] - a[i]; d > -1 && d < 1 {
				b[i] = a[i] + 1
			}
		}
		sh = geom.QuadMesh(a, b, m.params.Color)

	default:
		return Result{}, fmt.Errorf("insert: %w: unknown kind %q", geom.ErrInvalidShape, m.tool.Insert)
	}

	id, err := target.Add(sh)
	if err != nil {
		return Result{}, fmt.Errorf("insert %s: %w", m.tool.Insert, err)
	}
	return Result{Added: []string{id}}, nil
}
