// Package screwplan plans manipulator joint trajectories whose end effector follows a
// screw motion: rotation about, and translation along, a fixed axis, parameterized by a
// single progress variable theta. The rest of the arm's joints move freely subject to
// joint limits and feasibility, which is what makes tasks like opening a door or turning
// a valve plannable for redundant arms.
package screwplan

import (
	"github.com/pkg/errors"

	spatial "github.com/viam-labs/screwplan/spatialmath"
)

// A ScrewConstraint maps progress along a screw motion to target end effector poses.
// It is owned by a single planning invocation and is deterministic and side-effect-free.
type ScrewConstraint struct {
	// axis is the screw axis re-expressed in the end effector's start frame, so that
	// PoseAt can compose it directly onto the start pose.
	axis      *spatial.ScrewAxis
	startPose spatial.Pose
	thetaMax  float64
}

// NewScrewConstraint builds a constraint from a screw axis expressed in the planning frame,
// the end effector pose at which the motion begins, and the total progress to be traveled.
func NewScrewConstraint(screw *spatial.ScrewAxis, startPose spatial.Pose, thetaMax float64) (*ScrewConstraint, error) {
	if screw == nil {
		return nil, errors.New("screw axis is not allowed to be nil")
	}
	if startPose == nil {
		return nil, errors.New("start pose is not allowed to be nil")
	}
	if thetaMax <= 0 {
		return nil, errors.Errorf("screw progress limit must be positive, got %f", thetaMax)
	}
	return &ScrewConstraint{
		axis:      screw.TransformedBy(spatial.PoseInverse(startPose)),
		startPose: startPose,
		thetaMax:  thetaMax,
	}, nil
}

// PoseAt returns the end effector pose at the given progress: the start pose composed with
// the screw transform for theta. PoseAt(0) is exactly the start pose.
func (sc *ScrewConstraint) PoseAt(theta float64) spatial.Pose {
	return spatial.Compose(sc.startPose, sc.axis.Transform(theta))
}

// StartPose returns the end effector pose at zero progress.
func (sc *ScrewConstraint) StartPose() spatial.Pose {
	return sc.startPose
}

// GoalPose returns the end effector pose at full progress.
func (sc *ScrewConstraint) GoalPose() spatial.Pose {
	return sc.PoseAt(sc.thetaMax)
}

// ThetaMax returns the progress limit; valid progress values lie in [0, ThetaMax].
func (sc *ScrewConstraint) ThetaMax() float64 {
	return sc.thetaMax
}
