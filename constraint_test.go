package screwplan

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	spatial "github.com/viam-labs/screwplan/spatialmath"
)

func TestNewScrewConstraintValidation(t *testing.T) {
	screw, err := spatial.NewScrewAxis(r3.Vector{X: 0, Y: 0, Z: 1}, r3.Vector{}, 0)
	test.That(t, err, test.ShouldBeNil)

	_, err = NewScrewConstraint(nil, spatial.NewZeroPose(), 1)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewScrewConstraint(screw, nil, 1)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewScrewConstraint(screw, spatial.NewZeroPose(), 0)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewScrewConstraint(screw, spatial.NewZeroPose(), -1)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestConstraintPoseAt(t *testing.T) {
	// A z-axis hinge at the origin swinging an end effector held out at x=100,
	// like a door handle seen from the hinge.
	screw, err := spatial.NewScrewAxis(r3.Vector{X: 0, Y: 0, Z: 1}, r3.Vector{}, 0)
	test.That(t, err, test.ShouldBeNil)
	startPose := spatial.NewPoseFromPoint(r3.Vector{X: 100, Y: 0, Z: 0})

	constraint, err := NewScrewConstraint(screw, startPose, math.Pi/2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, constraint.ThetaMax(), test.ShouldEqual, math.Pi/2)

	// zero progress is exactly the start pose
	test.That(t, spatial.PoseAlmostEqual(constraint.PoseAt(0), startPose), test.ShouldBeTrue)
	test.That(t, spatial.PoseAlmostEqual(constraint.StartPose(), startPose), test.ShouldBeTrue)

	// a quarter turn swings the handle from +x to +y
	goal := constraint.GoalPose()
	test.That(t, spatial.R3VectorAlmostEqual(goal.Point(), r3.Vector{X: 0, Y: 100, Z: 0}, 1e-6), test.ShouldBeTrue)
	aa := goal.Orientation().AxisAngles()
	test.That(t, aa.Theta, test.ShouldAlmostEqual, math.Pi/2, 1e-6)
	test.That(t, math.Abs(aa.RZ), test.ShouldAlmostEqual, 1, 1e-6)

	// intermediate progress stays on the arc
	mid := constraint.PoseAt(math.Pi / 4)
	test.That(t, mid.Point().Norm(), test.ShouldAlmostEqual, 100, 1e-6)
	test.That(t, mid.Point().X, test.ShouldAlmostEqual, 100/math.Sqrt2, 1e-6)
	test.That(t, mid.Point().Y, test.ShouldAlmostEqual, 100/math.Sqrt2, 1e-6)
}

func TestConstraintPoseAtWithPitch(t *testing.T) {
	// A valve stem: rotation about z with 5mm of travel per radian.
	screw, err := spatial.NewScrewAxis(r3.Vector{X: 0, Y: 0, Z: 1}, r3.Vector{}, 5)
	test.That(t, err, test.ShouldBeNil)
	startPose := spatial.NewPoseFromPoint(r3.Vector{X: 0, Y: 0, Z: 50})

	constraint, err := NewScrewConstraint(screw, startPose, 2)
	test.That(t, err, test.ShouldBeNil)

	goal := constraint.GoalPose()
	test.That(t, spatial.R3VectorAlmostEqual(goal.Point(), r3.Vector{X: 0, Y: 0, Z: 60}, 1e-6), test.ShouldBeTrue)
}
