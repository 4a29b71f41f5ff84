// Package raster is a software render backend on top of gogpu/gg. It needs
// no GPU and is used for thumbnails, PNG export and headless tests.
package raster

import (
	"fmt"
	"image"
	"io"

	"github.com/gogpu/gg"

	"github.com/painterhq/painter/internal/camera"
	"github.com/painterhq/painter/internal/geom"
	"github.com/painterhq/painter/internal/render"
	"github.com/painterhq/painter/internal/scene"
)

// Canvas implements render.Context by rasterizing into an in-memory image.
type Canvas struct {
	dc    *gg.Context
	state render.FrameState
	vp    geom.Mat4
}

// New returns a canvas of the given pixel size.
func New(width, height int) *Canvas {
	return &Canvas{dc: gg.NewContext(max(width, 1), max(height, 1))}
}

func (c *Canvas) Begin(st render.FrameState) error {
	if !st.Viewport.Valid() {
		return fmt.Errorf("raster: invalid viewport %dx%d", st.Viewport.Width, st.Viewport.Height)
	}
	if c.dc.Width() != st.Viewport.Width || c.dc.Height() != st.Viewport.Height {
		if err := c.dc.Resize(st.Viewport.Width, st.Viewport.Height); err != nil {
			return fmt.Errorf("raster: %w", err)
		}
	}
	c.state = st
	c.vp = st.Projection.Mul4(st.View)
	c.dc.ClearPath()
	c.dc.ClearWithColor(ggColor(st.Background))
	c.dc.SetLineCap(gg.LineCapRound)
	c.dc.SetLineJoin(gg.LineJoinRound)
	return nil
}

func (c *Canvas) Draw(call render.DrawCall) error {
	mvp := c.vp.Mul4(call.Model)
	pts := make([]screenPoint, len(call.Vertices))
	for i, v := range call.Vertices {
		pts[i] = c.project(mvp, v)
	}

	r, g, b := call.Color.Float()
	c.dc.SetRGB(r, g, b)
	width := c.state.LineWidth(call.Width)
	c.dc.SetLineWidth(width)

	switch call.Primitive {
	case render.Points:
		for _, p := range pts {
			if p.ok {
				c.dc.DrawCircle(p.x, p.y, width/2)
			}
		}
		return c.dc.Fill()

	case render.LineStrip:
		c.polyline(pts, false)
		return c.dc.Stroke()

	case render.Polygon:
		if !c.polyline(pts, true) {
			return nil
		}
		c.dc.SetFillRule(gg.FillRuleEvenOdd)
		return c.dc.Fill()

	case render.Triangles:
		c.dc.SetFillRule(gg.FillRuleNonZero)
		// Each triangle is filled on its own so that opposite windings of
		// front and back faces do not cancel out.
		for i := 0; i+2 < len(call.Indices); i += 3 {
			tri := []screenPoint{pts[call.Indices[i]], pts[call.Indices[i+1]], pts[call.Indices[i+2]]}
			if !c.polyline(tri, true) {
				continue
			}
			if err := c.dc.Fill(); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("raster: unsupported primitive %q", call.Primitive)
}

func (c *Canvas) End() error {
	c.dc.ClearPath()
	return nil
}

// polyline traces pts into the current path. Points behind the camera break
// the line. It reports whether anything was traced.
func (c *Canvas) polyline(pts []screenPoint, closed bool) bool {
	pen := false
	traced := false
	for _, p := range pts {
		if !p.ok {
			pen = false
			continue
		}
		if pen {
			c.dc.LineTo(p.x, p.y)
			traced = true
		} else {
			c.dc.MoveTo(p.x, p.y)
			pen = true
		}
	}
	if closed && traced {
		c.dc.ClosePath()
	}
	return traced
}

type screenPoint struct {
	x, y float64
	ok   bool
}

func (c *Canvas) project(mvp geom.Mat4, v geom.Vec3) screenPoint {
	clip := mvp.Mul4x1(v.Vec4(1))
	if clip[3] <= 1e-9 {
		return screenPoint{}
	}
	w, h := float64(c.state.Viewport.Width), float64(c.state.Viewport.Height)
	return screenPoint{
		x:  (clip[0]/clip[3] + 1) / 2 * w,
		y:  (1 - clip[1]/clip[3]) / 2 * h,
		ok: true,
	}
}

func (c *Canvas) Image() image.Image {
	return c.dc.Image()
}

func (c *Canvas) EncodePNG(w io.Writer) error {
	return c.dc.EncodePNG(w)
}

func (c *Canvas) Close() error {
	return c.dc.Close()
}

func ggColor(col geom.Color) gg.RGBA {
	r, g, b := col.Float()
	return gg.RGB(r, g, b)
}

// RenderPNG rasterizes the active mode of s as seen by cam and writes a PNG.
func RenderPNG(w io.Writer, s *scene.Scene, cam camera.Camera, vp camera.Viewport) error {
	c := New(vp.Width, vp.Height)
	defer c.Close()
	if err := render.RenderFrame(c, s, cam, vp); err != nil {
		return err
	}
	return c.EncodePNG(w)
}
