package screwplan

import (
	"math"

	"github.com/viam-labs/screwplan/referenceframe"
	spatial "github.com/viam-labs/screwplan/spatialmath"
)

// PoseTolerance bounds how far a configuration's end effector may drift from the
// constrained pose at its progress value before being rejected.
type PoseTolerance struct {
	// Position is the allowed translational deviation in mm.
	Position float64
	// Orientation is the allowed rotational deviation in radians.
	Orientation float64
}

// screwChecker is the validity predicate for compound states: joints in bounds, the
// manipulator collision-free, and the forward kinematics pose within tolerance of the
// constrained pose at the state's progress value. The pose check runs on every state,
// not just sampled ones, because the engine's local connections interpolate between
// samples and can leave the constraint manifold.
type screwChecker struct {
	space *compoundSpace
	tol   PoseTolerance
}

func newScrewChecker(space *compoundSpace, tol PoseTolerance) *screwChecker {
	return &screwChecker{space: space, tol: tol}
}

// Valid is a pure predicate; it mutates no state shared with other calls.
func (c *screwChecker) Valid(state []float64) bool {
	if len(state) != len(c.space.limits) {
		return false
	}
	theta, joints := c.space.split(state)
	if theta < 0 || theta > c.space.constraint.ThetaMax() {
		return false
	}
	for i, limit := range c.space.jointLimits() {
		if joints[i] < limit.Min || joints[i] > limit.Max {
			return false
		}
	}

	inputs := referenceframe.FloatsToInputs(joints)
	if !c.space.kin.CollisionFree(inputs) {
		return false
	}

	// Bounds were checked above, so any transform error left is floating point slop at a
	// limit boundary; the pose is still usable when non-nil.
	pose, _ := c.space.kin.Transform(inputs)
	if pose == nil {
		return false
	}
	want := c.space.constraint.PoseAt(theta)
	if !spatial.PoseAlmostCoincidentEps(pose, want, c.tol.Position) {
		return false
	}
	angle := spatial.QuatToR4AA(spatial.OrientationBetween(pose.Orientation(), want.Orientation()).Quaternion()).Theta
	return math.Abs(angle) <= c.tol.Orientation
}
