package core

import (
	"fmt"
	"math"
)

// Quat is a rotation quaternion with X,Y,Z and W components
type Quat struct {
	X, Y, Z, W float64
}

// QuatIdentity returns the identity rotation
func QuatIdentity() Quat {
	return Quat{W: 1}
}

// QuatAxisAngle returns the rotation of angle radians around axis
func QuatAxisAngle(axis Vec3, angle float64) Quat {
	axis = axis.Normalize()
	s := math.Sin(angle / 2)
	return Quat{
		X: axis.X * s,
		Y: axis.Y * s,
		Z: axis.Z * s,
		W: math.Cos(angle / 2),
	}
}

// QuatEulerDegrees builds a rotation from Euler angles in degrees.
// Rotations are applied around Z first, then X, then Y.
func QuatEulerDegrees(euler Vec3) Quat {
	qx := QuatAxisAngle(Right, degToRad(euler.X))
	qy := QuatAxisAngle(Up, degToRad(euler.Y))
	qz := QuatAxisAngle(Forward, degToRad(euler.Z))
	return qy.Mul(qx).Mul(qz)
}

// LookRotation returns the rotation that maps the Z axis onto forward and
// keeps the Y axis as close to up as possible. If forward is parallel to up
// a different reference axis is used so the result is always a valid rotation.
func LookRotation(forward, up Vec3) Quat {
	f := forward.Normalize()
	if f.LengthSquared() == 0 {
		return QuatIdentity()
	}

	right := up.Cross(f)
	if right.LengthSquared() < 1e-12 {
		right = Perpendicular(f).Cross(f)
	}
	right = right.Normalize()
	newUp := f.Cross(right)

	// Rotation matrix columns are right, newUp, f
	m11, m12, m13 := right.X, newUp.X, f.X
	m21, m22, m23 := right.Y, newUp.Y, f.Y
	m31, m32, m33 := right.Z, newUp.Z, f.Z
	trace := m11 + m22 + m33

	var q Quat
	switch {
	case trace > 0:
		s := 0.5 / math.Sqrt(trace+1.0)
		q.W = 0.25 / s
		q.X = (m32 - m23) * s
		q.Y = (m13 - m31) * s
		q.Z = (m21 - m12) * s
	case m11 > m22 && m11 > m33:
		s := 2.0 * math.Sqrt(1.0+m11-m22-m33)
		q.W = (m32 - m23) / s
		q.X = 0.25 * s
		q.Y = (m12 + m21) / s
		q.Z = (m13 + m31) / s
	case m22 > m33:
		s := 2.0 * math.Sqrt(1.0+m22-m11-m33)
		q.W = (m13 - m31) / s
		q.X = (m12 + m21) / s
		q.Y = 0.25 * s
		q.Z = (m23 + m32) / s
	default:
		s := 2.0 * math.Sqrt(1.0+m33-m11-m22)
		q.W = (m21 - m12) / s
		q.X = (m13 + m31) / s
		q.Y = (m23 + m32) / s
		q.Z = 0.25 * s
	}
	return q.Normalize()
}

// Perpendicular returns a world axis that is not parallel to v
func Perpendicular(v Vec3) Vec3 {
	if math.Abs(v.X) > 0.1 {
		return NewVec3(0, 1, 0)
	}
	return NewVec3(1, 0, 0)
}

// Mul returns q * other. Applied to a vector, other rotates first.
func (q Quat) Mul(other Quat) Quat {
	return Quat{
		X: q.X*other.W + q.W*other.X + q.Y*other.Z - q.Z*other.Y,
		Y: q.Y*other.W + q.W*other.Y + q.Z*other.X - q.X*other.Z,
		Z: q.Z*other.W + q.W*other.Z + q.X*other.Y - q.Y*other.X,
		W: q.W*other.W - q.X*other.X - q.Y*other.Y - q.Z*other.Z,
	}
}

// Rotate applies the rotation to v
func (q Quat) Rotate(v Vec3) Vec3 {
	u := Vec3{q.X, q.Y, q.Z}
	t := u.Cross(v).Multiply(2)
	return v.Add(t.Multiply(q.W)).Add(u.Cross(t))
}

// Conjugate returns the inverse rotation of a unit quaternion
func (q Quat) Conjugate() Quat {
	return Quat{X: -q.X, Y: -q.Y, Z: -q.Z, W: q.W}
}

// Length returns the quaternion norm
func (q Quat) Length() float64 {
	return math.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
}

// Normalize returns the unit quaternion, or identity for a zero quaternion
func (q Quat) Normalize() Quat {
	l := q.Length()
	if l == 0 {
		return QuatIdentity()
	}
	return Quat{X: q.X / l, Y: q.Y / l, Z: q.Z / l, W: q.W / l}
}

// ApproxEqual reports whether q and other describe the same rotation
// within tolerance. q and -q are treated as equal.
func (q Quat) ApproxEqual(other Quat, tolerance float64) bool {
	dot := q.X*other.X + q.Y*other.Y + q.Z*other.Z + q.W*other.W
	return 1-math.Abs(dot) <= tolerance
}

func (q Quat) String() string {
	return fmt.Sprintf("(%g, %g, %g, %g)", q.X, q.Y, q.Z, q.W)
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}
