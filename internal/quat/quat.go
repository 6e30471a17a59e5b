// Package quat provides the small quaternion and 3-vector algebra used by
// the tilt estimators. Everything is a plain value type; operations return
// new values and never mutate their receivers.
package quat

import "math"

// Vec3 is a 3-axis value: a raw sensor reading or a direction.
// The json tags match the on-wire axis names of exported recordings.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Norm returns the Euclidean magnitude of v.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Scale returns v multiplied by s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Dot returns the dot product of v and w.
func (v Vec3) Dot(w Vec3) float64 {
	return v.X*w.X + v.Y*w.Y + v.Z*w.Z
}

// Quaternion is a rotation in (w, x, y, z) form. A unit quaternion is
// expected everywhere a rotation is meant; Normalize restores the unit-norm
// invariant after composition.
type Quaternion struct {
	W float64 `json:"w"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Identity is the no-rotation quaternion.
var Identity = Quaternion{W: 1}

// Mul returns the Hamilton product q*r. Non-commutative: composing body-frame
// increments multiplies on the right, global-frame corrections on the left.
func (q Quaternion) Mul(r Quaternion) Quaternion {
	return Quaternion{
		W: q.W*r.W - q.X*r.X - q.Y*r.Y - q.Z*r.Z,
		X: q.W*r.X + q.X*r.W + q.Y*r.Z - q.Z*r.Y,
		Y: q.W*r.Y - q.X*r.Z + q.Y*r.W + q.Z*r.X,
		Z: q.W*r.Z + q.X*r.Y - q.Y*r.X + q.Z*r.W,
	}
}

// Conjugate negates the vector part. For a unit quaternion this is the
// inverse rotation.
func (q Quaternion) Conjugate() Quaternion {
	return Quaternion{W: q.W, X: -q.X, Y: -q.Y, Z: -q.Z}
}

// Norm returns the Euclidean magnitude of q.
func (q Quaternion) Norm() float64 {
	return math.Sqrt(q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z)
}

// Normalize scales q to unit norm. A degenerate input (norm not positive)
// yields the identity quaternion instead of NaN components.
func (q Quaternion) Normalize() Quaternion {
	n := q.Norm()
	if n <= 0 {
		return Identity
	}
	return Quaternion{W: q.W / n, X: q.X / n, Y: q.Y / n, Z: q.Z / n}
}

// FromAxisAngle builds the rotation of angle radians about axis. The axis
// need not be unit length; the result is always normalized. A zero axis with
// a nonzero angle is undefined and must be guarded by the caller (the
// estimators skip updates below their rate thresholds instead).
func FromAxisAngle(axis Vec3, angle float64) Quaternion {
	n := axis.Norm()
	if n > 0 {
		axis = axis.Scale(1 / n)
	}
	s := math.Sin(angle / 2)
	return Quaternion{
		W: math.Cos(angle / 2),
		X: axis.X * s,
		Y: axis.Y * s,
		Z: axis.Z * s,
	}.Normalize()
}

// Rotate applies q to v via q * (0,v) * q~, returning the vector part.
// For the body-to-global orientation kept by the filter this carries a
// body-frame vector into the global frame.
func (q Quaternion) Rotate(v Vec3) Vec3 {
	p := Quaternion{X: v.X, Y: v.Y, Z: v.Z}
	r := q.Mul(p).Mul(q.Conjugate())
	return Vec3{X: r.X, Y: r.Y, Z: r.Z}
}
