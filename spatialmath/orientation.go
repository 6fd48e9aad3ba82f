package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// Orientation is an interface used to express the different parameterizations of the orientation
// of a rigid object or a frame of reference in 3D Euclidean space.
type Orientation interface {
	Quaternion() quat.Number
	AxisAngles() *R4AA
}

// NewZeroOrientation returns an orientation which signifies no rotation.
func NewZeroOrientation() Orientation {
	return &quaternion{1, 0, 0, 0}
}

// OrientationAlmostEqual will return a bool describing whether two orientations are approximately the same.
func OrientationAlmostEqual(o1, o2 Orientation) bool {
	return QuaternionAlmostEqual(o1.Quaternion(), o2.Quaternion(), 1e-5)
}

// OrientationBetween returns the orientation representing the difference between the two given Orientations.
func OrientationBetween(o1, o2 Orientation) Orientation {
	q := quaternion(quat.Mul(o2.Quaternion(), quat.Conj(o1.Quaternion())))
	return &q
}

// quaternion is an orientation in quaternion representation.
type quaternion quat.Number

// Quaternion returns the orientation in quaternion representation.
func (q *quaternion) Quaternion() quat.Number {
	return quat.Number(*q)
}

// AxisAngles returns the orientation in axis angle representation.
func (q *quaternion) AxisAngles() *R4AA {
	aa := QuatToR4AA(q.Quaternion())
	return &aa
}

// R4AA represents an R4 axis angle.
type R4AA struct {
	Theta float64
	RX    float64
	RY    float64
	RZ    float64
}

// Normalize scales the x, y, and z components of a R4 axis angle to be on the unit sphere.
func (aa *R4AA) Normalize() {
	norm := math.Sqrt(aa.RX*aa.RX + aa.RY*aa.RY + aa.RZ*aa.RZ)
	if norm == 0 {
		// Use the +z axis arbitrarily for the degenerate case
		aa.RX, aa.RY, aa.RZ = 0, 0, 1
		return
	}
	aa.RX /= norm
	aa.RY /= norm
	aa.RZ /= norm
}

// Quaternion returns the R4 axis angle as a unit quaternion.
func (aa *R4AA) Quaternion() quat.Number {
	copied := *aa
	copied.Normalize()
	sinA := math.Sin(copied.Theta / 2)
	return quat.Number{
		Real: math.Cos(copied.Theta / 2),
		Imag: copied.RX * sinA,
		Jmag: copied.RY * sinA,
		Kmag: copied.RZ * sinA,
	}
}

// AxisAngles returns the orientation in axis angle representation.
func (aa *R4AA) AxisAngles() *R4AA {
	return aa
}

// QuatToR4AA converts a quat to an R4 axis angle in the same way the C++ Eigen library does.
// https://eigen.tuxfamily.org/dox/AngleAxis_8h_source.html
func QuatToR4AA(q quat.Number) R4AA {
	denom := Norm(q)

	angle := 2 * math.Atan2(denom, math.Abs(q.Real))
	if q.Real < 0 {
		angle *= -1
	}

	if denom < 1e-6 {
		return R4AA{angle, 1, 0, 0}
	}
	return R4AA{angle, q.Imag / denom, q.Jmag / denom, q.Kmag / denom}
}

// QuatToR3AA converts a quat to an R3 axis angle, the axis of rotation scaled by the angle in radians.
func QuatToR3AA(q quat.Number) r3.Vector {
	aa := QuatToR4AA(q)
	return r3.Vector{X: aa.RX, Y: aa.RY, Z: aa.RZ}.Mul(aa.Theta)
}

// Norm returns the norm of the imaginary part of a quaternion.
func Norm(q quat.Number) float64 {
	return math.Sqrt(q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag)
}

// QuaternionAlmostEqual is an equality test for all the float components of a quaternion.
// Quaternions have double coverage, q and -q represent the same rotation.
func QuaternionAlmostEqual(a, b quat.Number, tol float64) bool {
	same := Float64AlmostEqual(a.Real, b.Real, tol) &&
		Float64AlmostEqual(a.Imag, b.Imag, tol) &&
		Float64AlmostEqual(a.Jmag, b.Jmag, tol) &&
		Float64AlmostEqual(a.Kmag, b.Kmag, tol)
	flipped := Float64AlmostEqual(a.Real, -b.Real, tol) &&
		Float64AlmostEqual(a.Imag, -b.Imag, tol) &&
		Float64AlmostEqual(a.Jmag, -b.Jmag, tol) &&
		Float64AlmostEqual(a.Kmag, -b.Kmag, tol)
	return same || flipped
}

// Float64AlmostEqual compares two float64s and returns if the difference between them is less than epsilon.
func Float64AlmostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

// R3VectorAlmostEqual compares two r3.Vector objects and returns if the all elementwise differences are less than epsilon.
func R3VectorAlmostEqual(a, b r3.Vector, epsilon float64) bool {
	return math.Abs(a.X-b.X) < epsilon && math.Abs(a.Y-b.Y) < epsilon && math.Abs(a.Z-b.Z) < epsilon
}
