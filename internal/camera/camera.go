// Package camera builds view and projection matrices for the 2D and 3D
// drawing modes and maps pointer coordinates back into the scene.
package camera

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/painterhq/painter/internal/geom"
)

// ErrProjection is returned when a camera transform cannot be inverted or a
// point has no finite image.
var ErrProjection = errors.New("degenerate projection")

// Projection is the projection kind.
type Projection string

const (
	Orthographic Projection = "orthographic"
	Perspective  Projection = "perspective"
)

const (
	minDistance = 0.1
	minZoom     = 0.01
	maxZoom     = 100
	epsilon     = 1e-12
)

// Viewport is a pixel rectangle on the output surface. Y grows downwards.
type Viewport struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// NewViewport returns a viewport anchored at the origin.
func NewViewport(width, height int) Viewport {
	return Viewport{Width: width, Height: height}
}

func (v Viewport) Valid() bool {
	return v.Width > 0 && v.Height > 0
}

func (v Viewport) Aspect() float64 {
	if v.Height == 0 {
		return 1
	}
	return float64(v.Width) / float64(v.Height)
}

// Camera is an orbit camera in 3D and a scrolling orthographic window in 2D.
//
// In 3D the view matrix is Translate(-Position) * Rotation(Orientation): the
// scene is rotated about the world origin first, then Position moves the eye
// in the rotated frame. Position.Z is the orbit distance.
//
// In 2D the camera always looks down the drawing plane. Position is the
// world coordinate of the top-left viewport corner and Scale is pixels per
// world unit.
type Camera struct {
	Mode        geom.Mode
	Projection  Projection
	Position    geom.Vec3
	Orientation geom.Quat
	FovY        float64 // radians, perspective and 3D orthographic extent
	Near        float64
	Far         float64
	Scale       float64
}

// Default2D is the fixed orthographic camera for the drawing plane.
func Default2D() Camera {
	return Camera{
		Mode:        geom.Mode2D,
		Projection:  Orthographic,
		Orientation: mgl64.QuatIdent(),
		Near:        -1,
		Far:         1,
		Scale:       1,
	}
}

// Default3D is the perspective pose at (0, 0, 10) looking down -z with a 45°
// field of view.
func Default3D() Camera {
	return Camera{
		Mode:        geom.Mode3D,
		Projection:  Perspective,
		Position:    geom.V3(0, 0, 10),
		Orientation: mgl64.QuatIdent(),
		FovY:        mgl64.DegToRad(45),
		Near:        0.01,
		Far:         1000,
		Scale:       1,
	}
}

// ForMode returns the default camera for mode.
func ForMode(mode geom.Mode) Camera {
	if mode == geom.Mode3D {
		return Default3D()
	}
	return Default2D()
}

// Reset restores the default pose for the camera's mode.
func (c *Camera) Reset() {
	*c = ForMode(c.Mode)
}

// SetProjection switches between orthographic and perspective. The 2D
// camera is locked to orthographic.
func (c *Camera) SetProjection(p Projection) error {
	switch p {
	case Orthographic, Perspective:
	default:
		return fmt.Errorf("%w: unknown projection %q", ErrProjection, p)
	}
	if c.Mode == geom.Mode2D && p != Orthographic {
		return fmt.Errorf("%w: the 2d camera is orthographic", ErrProjection)
	}
	c.Projection = p
	return nil
}

// ViewMatrix returns the world-to-camera transform.
func (c Camera) ViewMatrix() geom.Mat4 {
	if c.Mode == geom.Mode2D {
		return mgl64.Translate3D(-c.Position[0], -c.Position[1], 0)
	}
	t := mgl64.Translate3D(-c.Position[0], -c.Position[1], -c.Position[2])
	return t.Mul4(c.Orientation.Normalize().Mat4())
}

// ProjectionMatrix returns the camera-to-clip transform for vp.
//
// The 2D projection maps the viewport extents directly, so one world unit is
// Scale pixels and world y grows downwards like the screen.
func (c Camera) ProjectionMatrix(vp Viewport) geom.Mat4 {
	w, h := float64(max(vp.Width, 1)), float64(max(vp.Height, 1))
	zoom := c.zoom()

	if c.Mode == geom.Mode2D {
		return mgl64.Ortho(0, w/zoom, h/zoom, 0, c.Near, c.Far)
	}
	if c.Projection == Orthographic {
		halfH := math.Max(c.Position[2], 1) * math.Tan(c.FovY/2) / zoom
		halfW := halfH * vp.Aspect()
		return mgl64.Ortho(-halfW, halfW, -halfH, halfH, -c.Far, c.Far)
	}
	return mgl64.Perspective(c.FovY, vp.Aspect(), c.Near, c.Far)
}

// ViewProjection returns Projection * View.
func (c Camera) ViewProjection(vp Viewport) geom.Mat4 {
	return c.ProjectionMatrix(vp).Mul4(c.ViewMatrix())
}

// Eye returns the camera position in world space.
func (c Camera) Eye() geom.Vec3 {
	if c.Mode == geom.Mode2D {
		return geom.V3(c.Position[0], c.Position[1], 1)
	}
	return c.Orientation.Normalize().Inverse().Rotate(c.Position)
}

// FocusDepth is the view-space distance of the plane through the orbit
// centre. Pointer input in 3D is unprojected onto that plane by default.
func (c Camera) FocusDepth() float64 {
	if c.Mode == geom.Mode2D {
		return 0
	}
	return c.Position[2]
}

// WorldToScreen projects a world point to viewport pixels.
func (c Camera) WorldToScreen(vp Viewport, p geom.Vec3) (geom.Vec2, error) {
	if !vp.Valid() {
		return geom.Vec2{}, fmt.Errorf("%w: empty viewport %dx%d", ErrProjection, vp.Width, vp.Height)
	}
	clip := c.ViewProjection(vp).Mul4x1(p.Vec4(1))
	if clip[3] <= epsilon {
		return geom.Vec2{}, fmt.Errorf("%w: point %v is behind the camera", ErrProjection, p)
	}
	ndcX, ndcY := clip[0]/clip[3], clip[1]/clip[3]
	return geom.V2(
		float64(vp.X)+(ndcX+1)/2*float64(vp.Width),
		float64(vp.Y)+(1-ndcY)/2*float64(vp.Height),
	), nil
}

// ScreenToWorld unprojects a pointer position.
//
// In 2D the result lies on the drawing plane and referenceDepth is ignored.
// In 3D the pointer ray is intersected with the camera-facing plane at
// view-space distance referenceDepth, which must be positive under
// perspective.
func (c Camera) ScreenToWorld(vp Viewport, screen geom.Vec2, referenceDepth float64) (geom.Vec3, error) {
	if !vp.Valid() {
		return geom.Vec3{}, fmt.Errorf("%w: empty viewport %dx%d", ErrProjection, vp.Width, vp.Height)
	}
	proj := c.ProjectionMatrix(vp)
	view := c.ViewMatrix()

	// UnProject expects window coordinates with y growing upwards.
	winY := float64(2*vp.Y+vp.Height) - screen[1]

	if c.Mode == geom.Mode2D {
		p, err := unproject(geom.V3(screen[0], winY, 0.5), view, proj, vp)
		if err != nil {
			return geom.Vec3{}, err
		}
		p[2] = 0
		return p, nil
	}

	if c.Projection == Perspective && referenceDepth <= 0 {
		return geom.Vec3{}, fmt.Errorf("%w: reference depth %v is not in front of the camera", ErrProjection, referenceDepth)
	}
	ident := mgl64.Ident4()
	near, err := unproject(geom.V3(screen[0], winY, 0), ident, proj, vp)
	if err != nil {
		return geom.Vec3{}, err
	}
	far, err := unproject(geom.V3(screen[0], winY, 1), ident, proj, vp)
	if err != nil {
		return geom.Vec3{}, err
	}
	dz := far[2] - near[2]
	if math.Abs(dz) < epsilon {
		return geom.Vec3{}, fmt.Errorf("%w: pointer ray is parallel to the reference plane", ErrProjection)
	}
	t := (-referenceDepth - near[2]) / dz
	hit := near.Add(far.Sub(near).Mul(t))

	if math.Abs(view.Det()) < epsilon {
		return geom.Vec3{}, fmt.Errorf("%w: singular view matrix", ErrProjection)
	}
	world := geom.ApplyPoint(view.Inv(), hit)
	if !finite3(world) {
		return geom.Vec3{}, fmt.Errorf("%w: no finite intersection", ErrProjection)
	}
	return world, nil
}

// PickRay returns the world-space ray under a pointer position, starting on
// the near plane and pointing into the scene.
func (c Camera) PickRay(vp Viewport, screen geom.Vec2) (geom.Ray, error) {
	if !vp.Valid() {
		return geom.Ray{}, fmt.Errorf("%w: empty viewport %dx%d", ErrProjection, vp.Width, vp.Height)
	}
	proj := c.ProjectionMatrix(vp)
	view := c.ViewMatrix()
	winY := float64(2*vp.Y+vp.Height) - screen[1]

	near, err := unproject(geom.V3(screen[0], winY, 0), view, proj, vp)
	if err != nil {
		return geom.Ray{}, err
	}
	far, err := unproject(geom.V3(screen[0], winY, 1), view, proj, vp)
	if err != nil {
		return geom.Ray{}, err
	}
	r, ok := geom.NewRay(near, far)
	if !ok {
		return geom.Ray{}, fmt.Errorf("%w: degenerate pointer ray", ErrProjection)
	}
	return r, nil
}

func unproject(win geom.Vec3, modelview, proj geom.Mat4, vp Viewport) (geom.Vec3, error) {
	if math.Abs(proj.Mul4(modelview).Det()) < epsilon {
		return geom.Vec3{}, fmt.Errorf("%w: singular view-projection", ErrProjection)
	}
	p, err := mgl64.UnProject(win, modelview, proj, vp.X, vp.Y, vp.Width, vp.Height)
	if err != nil {
		return geom.Vec3{}, fmt.Errorf("%w: %v", ErrProjection, err)
	}
	if !finite3(p) {
		return geom.Vec3{}, fmt.Errorf("%w: point at infinity", ErrProjection)
	}
	return p, nil
}

// Orbit rotates the 3D camera by yaw (about y), pitch (about x) and roll
// (about z), in degrees, on top of its current orientation.
func (c *Camera) Orbit(yawDeg, pitchDeg, rollDeg float64) {
	if c.Mode != geom.Mode3D {
		return
	}
	q := mgl64.AnglesToQuat(mgl64.DegToRad(yawDeg), mgl64.DegToRad(pitchDeg), mgl64.DegToRad(rollDeg), mgl64.YXZ)
	c.Orientation = q.Mul(c.Orientation).Normalize()
}

// Pan moves the camera by a pointer delta in pixels. In 3D the delta is
// scaled so that content under the pointer at the focus depth follows it.
func (c *Camera) Pan(dx, dy float64, viewportWidth int) {
	if c.Mode == geom.Mode2D {
		zoom := c.zoom()
		c.Position[0] -= dx / zoom
		c.Position[1] -= dy / zoom
		return
	}
	scale := c.Position[2] * 2 * math.Tan(c.FovY/2) / float64(max(viewportWidth, 1))
	c.Position[0] -= dx * scale
	c.Position[1] += dy * scale
	c.Position[2] = math.Max(c.Position[2], minDistance)
}

// Zoom scales the view by factor: values above 1 zoom in. In 3D the orbit
// distance shrinks, in 2D the pixels per world unit grow. Non-positive
// factors are ignored.
func (c *Camera) Zoom(factor float64) {
	if !(factor > 0) || math.IsInf(factor, 0) {
		return
	}
	if c.Mode == geom.Mode2D || c.Projection == Orthographic {
		c.Scale = math.Min(math.Max(c.zoom()*factor, minZoom), maxZoom)
		return
	}
	c.Position[2] = math.Max(c.Position[2]/factor, minDistance)
}

// PixelSize returns the world length covered by one pixel at p.
func (c Camera) PixelSize(p geom.Vec3, vp Viewport) float64 {
	h := float64(max(vp.Height, 1))
	if c.Mode == geom.Mode2D {
		return 1 / c.zoom()
	}
	if c.Projection == Orthographic {
		return 2 * math.Max(c.Position[2], 1) * math.Tan(c.FovY/2) / c.zoom() / h
	}
	v := geom.ApplyPoint(c.ViewMatrix(), p)
	return math.Max(-v[2], 0) * 2 * math.Tan(c.FovY/2) / h
}

func (c Camera) zoom() float64 {
	if c.Scale > 0 {
		return c.Scale
	}
	return 1
}

func finite3(v geom.Vec3) bool {
	for _, f := range v {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
