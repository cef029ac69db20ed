package scene

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const degenerateEpsilon = 1e-7

type pose struct {
	position    mgl32.Vec3
	rotation    mgl32.Quat
	scale       mgl32.Vec3
	skew        mgl32.Vec3
	perspective mgl32.Vec4
}

// decompose splits an affine matrix into T * R * Shear * S with the bottom
// row kept verbatim as perspective. The upper 3x3 block is factored with
// Gram-Schmidt: its columns become an orthonormal rotation basis and an upper
// triangular remainder whose diagonal is the scale and whose off-diagonal terms
// divided by the scale are the shear factors. Reflections are folded into a
// negative Z scale so the rotation stays proper.
//
// Degenerate axes (zero scale) get an arbitrary perpendicular basis vector and
// zero shear, which keeps the result finite.
func decompose(m mgl32.Mat4) (pose, error) {
	var d pose
	if !finiteMat(m) {
		return d, fmt.Errorf("%w: matrix has non-finite components", ErrInvalidPose)
	}

	d.perspective = m.Row(3)
	d.position = m.Col(3).Vec3()

	c0 := m.Col(0).Vec3()
	c1 := m.Col(1).Vec3()
	c2 := m.Col(2).Vec3()

	s0 := c0.Len()
	q0 := unitOr(c0, s0, mgl32.Vec3{1, 0, 0})

	r01 := q0.Dot(c1)
	u1 := c1.Sub(q0.Mul(r01))
	s1 := u1.Len()
	q1 := unitOr(u1, s1, perpendicular(q0))

	q2 := q0.Cross(q1)
	r02 := q0.Dot(c2)
	r12 := q1.Dot(c2)
	s2 := q2.Dot(c2)

	d.scale = mgl32.Vec3{s0, s1, s2}
	d.skew = mgl32.Vec3{ratio(r01, s1), ratio(r02, s2), ratio(r12, s2)}
	d.rotation = mgl32.Mat4ToQuat(mgl32.Mat3FromCols(q0, q1, q2).Mat4()).Normalize()

	if !finiteVec3(d.scale) || !finiteVec3(d.skew) || !finiteQuat(d.rotation) {
		return d, fmt.Errorf("%w: decomposition is not finite", ErrInvalidPose)
	}
	return d, nil
}

// compose is the inverse of decompose.
func compose(d pose) mgl32.Mat4 {
	m := mgl32.Translate3D(d.position.X(), d.position.Y(), d.position.Z()).
		Mul4(d.rotation.Mat4()).
		Mul4(shearMatrix(d.skew)).
		Mul4(mgl32.Scale3D(d.scale.X(), d.scale.Y(), d.scale.Z()))
	m.SetRow(3, d.perspective)
	return m
}

func shearMatrix(k mgl32.Vec3) mgl32.Mat4 {
	m := mgl32.Ident4()
	m.Set(0, 1, k.X())
	m.Set(0, 2, k.Y())
	m.Set(1, 2, k.Z())
	return m
}

func unitOr(v mgl32.Vec3, length float32, fallback mgl32.Vec3) mgl32.Vec3 {
	if length < degenerateEpsilon {
		return fallback
	}
	return v.Mul(1 / length)
}

func perpendicular(v mgl32.Vec3) mgl32.Vec3 {
	axis := mgl32.Vec3{1, 0, 0}
	if abs32(v.X()) > 0.9 {
		axis = mgl32.Vec3{0, 1, 0}
	}
	return v.Cross(axis).Normalize()
}

func ratio(num, den float32) float32 {
	if abs32(den) < degenerateEpsilon {
		return 0
	}
	return num / den
}

// QuatFromEuler builds a rotation from XYZ euler angles in degrees, applied
// X first, then Y, then Z.
func QuatFromEuler(deg mgl32.Vec3) mgl32.Quat {
	x := mgl32.QuatRotate(mgl32.DegToRad(deg.X()), mgl32.Vec3{1, 0, 0})
	y := mgl32.QuatRotate(mgl32.DegToRad(deg.Y()), mgl32.Vec3{0, 1, 0})
	z := mgl32.QuatRotate(mgl32.DegToRad(deg.Z()), mgl32.Vec3{0, 0, 1})
	return z.Mul(y).Mul(x).Normalize()
}

// EulerFromQuat is the inverse of QuatFromEuler. Near gimbal lock the X angle
// is pinned to zero.
func EulerFromQuat(q mgl32.Quat) mgl32.Vec3 {
	m := q.Normalize().Mat4()

	sy := clamp(-float64(m.At(2, 0)), -1, 1)
	y := math.Asin(sy)

	var x, z float64
	if math.Abs(sy) < 0.9999 {
		x = math.Atan2(float64(m.At(2, 1)), float64(m.At(2, 2)))
		z = math.Atan2(float64(m.At(1, 0)), float64(m.At(0, 0)))
	} else {
		z = math.Atan2(-float64(m.At(0, 1)), float64(m.At(1, 1)))
	}

	return mgl32.Vec3{
		mgl32.RadToDeg(float32(x)),
		mgl32.RadToDeg(float32(y)),
		mgl32.RadToDeg(float32(z)),
	}
}

func finiteMat(m mgl32.Mat4) bool {
	for _, f := range m {
		if !finite32(f) {
			return false
		}
	}
	return true
}

func finiteVec3(v mgl32.Vec3) bool {
	return finite32(v[0]) && finite32(v[1]) && finite32(v[2])
}

func finiteQuat(q mgl32.Quat) bool {
	return finite32(q.W) && finiteVec3(q.V)
}

func finite32(f float32) bool {
	v := float64(f)
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func abs32(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
