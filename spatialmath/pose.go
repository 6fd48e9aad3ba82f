// Package spatialmath defines spatial mathematical operations.
// Poses are backed by dual quaternions, which compose rigid transformations
// without accumulating the drift that rotation matrices are prone to.
package spatialmath

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/dualquat"
	"gonum.org/v1/gonum/num/quat"
)

// Pose represents a 6dof pose, position and orientation, with respect to the origin.
// The Point() method returns the position in (x,y,z) mm coordinates,
// and the Orientation() method returns an Orientation object.
type Pose interface {
	Point() r3.Vector
	Orientation() Orientation
}

// dualQuaternion defines a pose as a dual quaternion.
type dualQuaternion struct {
	dualquat.Number
}

// NewZeroPose returns a pose at (0,0,0) with no rotation.
func NewZeroPose() Pose {
	return newDualQuaternion()
}

// NewPoseFromPoint takes a point and returns a Pose with that point as its position and a zero orientation.
func NewPoseFromPoint(point r3.Vector) Pose {
	q := newDualQuaternion()
	q.setTranslation(point)
	return q
}

// NewPoseFromOrientation takes an Orientation and returns a Pose at the origin with that orientation.
func NewPoseFromOrientation(o Orientation) Pose {
	if o == nil {
		return NewZeroPose()
	}
	q := newDualQuaternion()
	q.Real = o.Quaternion()
	return q
}

// NewPose takes a point and an orientation and returns the Pose combining the two.
func NewPose(point r3.Vector, o Orientation) Pose {
	q := newDualQuaternion()
	if o != nil {
		q.Real = o.Quaternion()
	}
	q.setTranslation(point)
	return q
}

// Compose treats Poses as functions A(x) and B(x), and produces a new function C(x) = A(B(x)).
// It converts the poses to dual quaternions and multiplies them together, normalizing the result.
func Compose(a, b Pose) Pose {
	result := &dualQuaternion{dualquat.Mul(dualQuaternionFromPose(a).Number, dualQuaternionFromPose(b).Number)}
	if vecLen := quat.Abs(result.Real); vecLen != 1 {
		result.Real = quat.Scale(1/vecLen, result.Real)
	}
	return result
}

// PoseDelta returns the difference between two Poses.
// Translation is the difference between the points, orientation is the rotation between the orientations.
func PoseDelta(p1, p2 Pose) Pose {
	return NewPose(p2.Point().Sub(p1.Point()), OrientationBetween(p1.Orientation(), p2.Orientation()))
}

// PoseInverse returns the inverse of the given pose, such that Compose(p, PoseInverse(p)) is the identity.
func PoseInverse(p Pose) Pose {
	q := dualQuaternionFromPose(p)
	return &dualQuaternion{dualquat.ConjQuat(q.Number)}
}

// PoseBetween returns the pose that when composed with a will give b, i.e. Compose(a, PoseBetween(a, b)) == b.
func PoseBetween(a, b Pose) Pose {
	return Compose(PoseInverse(a), b)
}

// PoseAlmostCoincident checks that two poses are within 0.1mm of each other, without regard for orientation.
func PoseAlmostCoincident(a, b Pose) bool {
	return PoseAlmostCoincidentEps(a, b, 0.1)
}

// PoseAlmostCoincidentEps checks that two poses are within epsilon mm of each other, without regard for orientation.
func PoseAlmostCoincidentEps(a, b Pose, epsilon float64) bool {
	return R3VectorAlmostEqual(a.Point(), b.Point(), epsilon)
}

// PoseAlmostEqual checks that both the position and orientation of two poses are approximately equal.
func PoseAlmostEqual(a, b Pose) bool {
	return PoseAlmostCoincident(a, b) && OrientationAlmostEqual(a.Orientation(), b.Orientation())
}

// newDualQuaternion returns a pointer to a new dualQuaternion whose quaternion is an identity quaternion.
// Since the real part of a dual quaternion should be a unit quaternion, not all zeroes, this should be used
// instead of &dualQuaternion{}.
func newDualQuaternion() *dualQuaternion {
	return &dualQuaternion{dualquat.Number{
		Real: quat.Number{Real: 1},
		Dual: quat.Number{},
	}}
}

// dualQuaternionFromPose returns a dual quaternion from a Pose, without re-converting if it already is one.
func dualQuaternionFromPose(p Pose) *dualQuaternion {
	if q, ok := p.(*dualQuaternion); ok {
		return q
	}
	q := newDualQuaternion()
	q.Real = p.Orientation().Quaternion()
	q.setTranslation(p.Point())
	return q
}

// Point multiplies the dual quaternion by its own conjugate to recover the real world translation.
func (q *dualQuaternion) Point() r3.Vector {
	t := quat.Scale(2, quat.Mul(q.Dual, quat.Conj(q.Real)))
	return r3.Vector{X: t.Imag, Y: t.Jmag, Z: t.Kmag}
}

// Orientation returns the rotation quaternion as an Orientation.
func (q *dualQuaternion) Orientation() Orientation {
	o := quaternion(q.Real)
	return &o
}

// setTranslation correctly sets the translation quaternion against the rotation.
func (q *dualQuaternion) setTranslation(point r3.Vector) {
	q.Dual = quat.Number{Real: 0, Imag: point.X / 2, Jmag: point.Y / 2, Kmag: point.Z / 2}
	q.Dual = quat.Mul(q.Dual, q.Real)
}
