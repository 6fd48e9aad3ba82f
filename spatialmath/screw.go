package spatialmath

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// A ScrewAxis describes a one-parameter family of rigid motions: rotation about a fixed
// 3D axis combined with translation along it. The family is parameterized by theta, the
// rotation in radians about the axis.
type ScrewAxis struct {
	// Axis is the unit direction vector of the screw axis.
	Axis r3.Vector
	// Point is any point on the axis line, in mm.
	Point r3.Vector
	// Pitch is the linear displacement along the axis per radian of rotation, in mm.
	// A pitch of zero is a pure rotation.
	Pitch float64
}

// NewScrewAxis creates a ScrewAxis through the given point with the given direction and pitch.
// The direction vector is normalized, and must not be the zero vector.
func NewScrewAxis(axis, point r3.Vector, pitch float64) (*ScrewAxis, error) {
	if R3VectorAlmostEqual(axis, r3.Vector{}, 1e-8) {
		return nil, errors.New("cannot use zero vector as screw axis")
	}
	return &ScrewAxis{Axis: axis.Normalize(), Point: point, Pitch: pitch}, nil
}

// Transform returns the rigid transform produced by following the screw for theta radians:
// a rotation of theta about the axis line, plus a translation of Pitch*theta along it.
// Transform(0) is the identity pose.
func (s *ScrewAxis) Transform(theta float64) Pose {
	rot := NewPoseFromOrientation(&R4AA{Theta: theta, RX: s.Axis.X, RY: s.Axis.Y, RZ: s.Axis.Z})
	// Conjugate the rotation by the axis point so rotation happens about the axis line
	// rather than the origin, then advance along the axis by the pitch displacement.
	toAxis := NewPoseFromPoint(s.Point.Mul(-1))
	fromAxis := NewPoseFromPoint(s.Point.Add(s.Axis.Mul(s.Pitch * theta)))
	return Compose(fromAxis, Compose(rot, toAxis))
}

// TransformedBy returns a copy of the screw axis re-expressed in the frame that `by` maps into.
// The axis direction is rotated and the axis point is fully transformed; pitch is frame-invariant.
func (s *ScrewAxis) TransformedBy(by Pose) *ScrewAxis {
	rot := NewPoseFromOrientation(by.Orientation())
	return &ScrewAxis{
		Axis:  Compose(rot, NewPoseFromPoint(s.Axis)).Point(),
		Point: Compose(by, NewPoseFromPoint(s.Point)).Point(),
		Pitch: s.Pitch,
	}
}
