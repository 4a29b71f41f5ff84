package geom

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Placement is a 2D transform as the user enters it: a translation, a
// rotation in degrees and a scale per axis, taken about Anchor.
type Placement struct {
	X, Y     float64
	Rotation float64 // degrees, counter-clockwise with y up
	ScaleX   float64
	ScaleY   float64
	Anchor   Vec2
}

// Validate rejects non-finite fields and zero scales.
func (p Placement) Validate() error {
	for _, f := range []float64{p.X, p.Y, p.Rotation, p.ScaleX, p.ScaleY, p.Anchor[0], p.Anchor[1]} {
		if !finite(f) {
			return fmt.Errorf("placement: non-finite value %v", f)
		}
	}
	if p.ScaleX == 0 || p.ScaleY == 0 {
		return fmt.Errorf("placement: zero scale %vx%v", p.ScaleX, p.ScaleY)
	}
	return nil
}

// Mat4 returns Translate(X, Y)·Translate(Anchor)·Rotate·Scale·Translate(-Anchor)
// acting on the xy plane. z passes through unchanged.
func (p Placement) Mat4() Mat4 {
	ax, ay := p.Anchor[0], p.Anchor[1]
	return Translate3D(p.X+ax, p.Y+ay, 0).
		Mul4(mgl64.HomogRotate3DZ(mgl64.DegToRad(p.Rotation))).
		Mul4(Scale3D(p.ScaleX, p.ScaleY, 1)).
		Mul4(Translate3D(-ax, -ay, 0))
}

// Identity returns the 4x4 identity.
func Identity() Mat4 {
	return mgl64.Ident4()
}

// Compose returns b·a: the transform that applies a first, then b.
func Compose(b, a Mat4) Mat4 {
	return b.Mul4(a)
}

// Translate3D, Scale3D and Rotate3D build homogeneous 3D transforms.
func Translate3D(x, y, z float64) Mat4 { return mgl64.Translate3D(x, y, z) }
func Scale3D(x, y, z float64) Mat4     { return mgl64.Scale3D(x, y, z) }

// Rotate3D rotates by angle radians around axis.
func Rotate3D(angle float64, axis Vec3) Mat4 {
	return mgl64.HomogRotate3D(angle, axis.Normalize())
}

// RotateEulerDegrees rotates by pitch (x), yaw (y) and roll (z), given in degrees.
func RotateEulerDegrees(pitch, yaw, roll float64) Mat4 {
	q := mgl64.AnglesToQuat(mgl64.DegToRad(pitch), mgl64.DegToRad(yaw), mgl64.DegToRad(roll), mgl64.XYZ)
	return q.Mat4()
}

// ApplyPoint transforms p as a homogeneous point, dividing by w when the
// matrix is projective.
func ApplyPoint(m Mat4, p Vec3) Vec3 {
	v := m.Mul4x1(p.Vec4(1))
	if v[3] != 1 && v[3] != 0 {
		return v.Vec3().Mul(1 / v[3])
	}
	return v.Vec3()
}

// IsPlanar reports whether m maps the z=0 plane onto itself, which is the
// requirement for transforms attached to 2D shapes.
func IsPlanar(m Mat4) bool {
	const eps = 1e-12
	return math.Abs(m[2]) < eps && math.Abs(m[6]) < eps && math.Abs(m[14]) < eps &&
		math.Abs(m[3]) < eps && math.Abs(m[7]) < eps && math.Abs(m[15]-1) < eps
}

func finiteMat(m Mat4) bool {
	for _, f := range m {
		if !finite(f) {
			return false
		}
	}
	return true
}
