// Package render compiles a scene into draw calls and replays them through
// an explicit backend context. It never mutates the scene.
package render

import (
	"errors"
	"fmt"

	"github.com/painterhq/painter/internal/camera"
	"github.com/painterhq/painter/internal/geom"
	"github.com/painterhq/painter/internal/scene"
)

// Primitive is the topology of a draw call.
type Primitive string

const (
	Points    Primitive = "points"
	LineStrip Primitive = "line_strip"
	// Polygon is a closed outline filled even-odd. Indices carry a triangle
	// fan for backends that only draw triangles.
	Polygon   Primitive = "polygon"
	Triangles Primitive = "triangles"
)

// DrawCall draws one shape. Vertices are in local space and Model maps them
// to world space. Width is in world units.
type DrawCall struct {
	ShapeID   string      `json:"shapeId,omitempty"`
	Primitive Primitive   `json:"primitive"`
	Vertices  []geom.Vec3 `json:"vertices"`
	Indices   []uint32    `json:"indices,omitempty"`
	Model     geom.Mat4   `json:"model"`
	Color     geom.Color  `json:"color"`
	Width     float64     `json:"width,omitempty"`
	Preview   bool        `json:"preview,omitempty"`
}

// FrameState is the per-frame rendering state.
type FrameState struct {
	Mode       geom.Mode       `json:"mode"`
	Viewport   camera.Viewport `json:"viewport"`
	Background geom.Color      `json:"background"`
	View       geom.Mat4       `json:"view"`
	Projection geom.Mat4       `json:"projection"`
	// PixelSize is the world length of a pixel at the focus plane, used to
	// turn world widths into pixel widths.
	PixelSize float64 `json:"pixelSize"`
}

// LineWidth converts a world width to pixels, never thinner than one pixel.
func (s FrameState) LineWidth(world float64) float64 {
	if s.PixelSize <= 0 {
		return max(world, 1)
	}
	return max(world/s.PixelSize, 1)
}

// Context receives a frame. Implementations own whatever GPU or raster
// state they need; nothing is global.
type Context interface {
	Begin(FrameState) error
	Draw(DrawCall) error
	End() error
}

// Frame is a compiled, backend independent frame.
type Frame struct {
	State FrameState `json:"state"`
	Calls []DrawCall `json:"calls"`
}

// Compile builds the frame for the active mode of s, in paint order.
func Compile(s *scene.Scene, cam camera.Camera, vp camera.Viewport) Frame {
	mode := s.Mode()
	f := Frame{
		State: FrameState{
			Mode:       mode,
			Viewport:   vp,
			Background: s.Background(),
			View:       cam.ViewMatrix(),
			Projection: cam.ProjectionMatrix(vp),
			PixelSize:  focusPixelSize(cam, vp),
		},
	}
	for _, sh := range s.PaintOrder(mode, cam.Eye()) {
		f.Calls = append(f.Calls, drawCall(sh))
	}
	return f
}

func focusPixelSize(cam camera.Camera, vp camera.Viewport) float64 {
	if cam.Mode == geom.Mode2D {
		return cam.PixelSize(geom.Vec3{}, vp)
	}
	// The point on the view axis at the orbit distance.
	focus := geom.ApplyPoint(cam.ViewMatrix().Inv(), geom.V3(0, 0, -cam.FocusDepth()))
	return cam.PixelSize(focus, vp)
}

func drawCall(sh geom.Shape) DrawCall {
	dc := DrawCall{
		ShapeID:  sh.ID,
		Vertices: sh.Vertices,
		Model:    sh.Transform,
		Color:    sh.Color,
		Width:    sh.Width,
	}
	switch sh.Kind {
	case geom.KindPoint:
		dc.Primitive = Points
	case geom.KindLine:
		dc.Primitive = LineStrip
	case geom.KindPolygon:
		dc.Primitive = Polygon
		dc.Indices = flattenTriangles(sh.Triangles())
	case geom.KindMesh:
		dc.Primitive = Triangles
		dc.Indices = flattenTriangles(sh.Triangles())
	}
	return dc
}

func flattenTriangles(tris [][3]uint32) []uint32 {
	out := make([]uint32, 0, len(tris)*3)
	for _, t := range tris {
		out = append(out, t[0], t[1], t[2])
	}
	return out
}

// AddPreview appends an uncommitted stroke, drawn on top of the scene.
func (f *Frame) AddPreview(verts []geom.Vec3, color geom.Color, width float64) {
	if len(verts) == 0 {
		return
	}
	prim := LineStrip
	if len(verts) == 1 {
		prim = Points
	}
	f.Calls = append(f.Calls, DrawCall{
		Primitive: prim,
		Vertices:  verts,
		Model:     geom.Identity(),
		Color:     color,
		Width:     width,
		Preview:   true,
	})
}

// Replay feeds a compiled frame to ctx. End is called even when a draw
// fails, and every error is returned.
func Replay(ctx Context, f Frame) error {
	if err := ctx.Begin(f.State); err != nil {
		return fmt.Errorf("begin frame: %w", err)
	}
	var errs []error
	for _, dc := range f.Calls {
		if err := ctx.Draw(dc); err != nil {
			errs = append(errs, fmt.Errorf("draw %s: %w", dc.ShapeID, err))
		}
	}
	if err := ctx.End(); err != nil {
		errs = append(errs, fmt.Errorf("end frame: %w", err))
	}
	return errors.Join(errs...)
}

// RenderFrame draws the scene as seen by cam into ctx.
func RenderFrame(ctx Context, s *scene.Scene, cam camera.Camera, vp camera.Viewport) error {
	return Replay(ctx, Compile(s, cam, vp))
}
