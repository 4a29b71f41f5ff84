package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type (
	Vec2 = mgl64.Vec2
	Vec3 = mgl64.Vec3
	Vec4 = mgl64.Vec4
	Mat4 = mgl64.Mat4
	Quat = mgl64.Quat
)

// Mode tags which drawing space a shape or scene lives in.
type Mode string

const (
	Mode2D Mode = "2d"
	Mode3D Mode = "3d"
)

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	return m == Mode2D || m == Mode3D
}

// V2 and V3 are shorthand constructors.
func V2(x, y float64) Vec2    { return Vec2{x, y} }
func V3(x, y, z float64) Vec3 { return Vec3{x, y, z} }

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func finiteVec(v Vec3) bool {
	return finite(v[0]) && finite(v[1]) && finite(v[2])
}

// flatten drops the z component, placing v on the drawing plane.
func flatten(v Vec3) Vec3 {
	return Vec3{v[0], v[1], 0}
}
