package screwplan

import (
	"math"

	"github.com/pkg/errors"

	"github.com/viam-labs/screwplan/referenceframe"
	spatial "github.com/viam-labs/screwplan/spatialmath"
)

// Planar joints have no natural finite range, so their translational sub-dimensions get
// a fixed generous bound and the heading sub-dimension gets a full circle.
const planarTranslationBound = 1e3

var (
	errNilKinematics = errors.New("kinematics provider is not allowed to be nil")
	errNoActiveJoint = errors.New("manipulator has no active joints to plan for")
)

// compoundSpace is the search space for one planning invocation: the screw progress
// dimension followed by one bounded dimension per joint variable. It also carries the
// per-invocation constraint, start pose, and frame metadata consumed by the sampler and
// validity checker, and is immutable once built.
type compoundSpace struct {
	limits     []referenceframe.Limit
	constraint *ScrewConstraint
	startPose  spatial.Pose
	eeFrame    string
	moveGroup  string
	kin        Kinematics
}

// buildCompoundSpace assembles the progress and joint dimensions for the given constraint.
// Any unbounded or unsupported joint fails construction: both would otherwise produce
// dimensions that cannot be sampled, or desynchronize the space from the joint variables.
func buildCompoundSpace(constraint *ScrewConstraint, kin Kinematics, eeFrame, moveGroup string) (*compoundSpace, error) {
	if kin == nil {
		return nil, errNilKinematics
	}

	limits := []referenceframe.Limit{{Min: 0, Max: constraint.ThetaMax()}}
	for _, joint := range kin.Joints() {
		switch joint.Kind {
		case KindRevolute, KindPrismatic:
			for _, bound := range joint.Bounds {
				if math.IsInf(bound.Min, -1) || math.IsInf(bound.Max, 1) {
					return nil, errors.Errorf("joint %q reports unbounded position limits and cannot be sampled", joint.Name)
				}
				limits = append(limits, bound)
			}
		case KindPlanar:
			limits = append(limits,
				referenceframe.Limit{Min: -planarTranslationBound, Max: planarTranslationBound},
				referenceframe.Limit{Min: -planarTranslationBound, Max: planarTranslationBound},
				referenceframe.Limit{Min: -math.Pi, Max: math.Pi},
			)
		case KindUnsupported:
			fallthrough
		default:
			return nil, errors.Errorf("joint %q has unsupported kind %s", joint.Name, joint.Kind)
		}
	}
	if len(limits) == 1 {
		return nil, errNoActiveJoint
	}
	if len(limits)-1 != kin.VariableCount() {
		return nil, errors.Errorf(
			"joint dimensions (%d) do not match the kinematics provider's variable count (%d)",
			len(limits)-1, kin.VariableCount(),
		)
	}

	return &compoundSpace{
		limits:     limits,
		constraint: constraint,
		startPose:  constraint.StartPose(),
		eeFrame:    eeFrame,
		moveGroup:  moveGroup,
		kin:        kin,
	}, nil
}

// jointLimits returns the bounds of the joint dimensions, excluding the progress dimension.
func (cs *compoundSpace) jointLimits() []referenceframe.Limit {
	return cs.limits[1:]
}

// split separates a compound state into its progress value and joint values.
func (cs *compoundSpace) split(state []float64) (float64, []float64) {
	return state[0], state[1:]
}

// compose joins a progress value and joint values into a compound state.
func composeState(theta float64, joints []float64) []float64 {
	state := make([]float64, 0, len(joints)+1)
	state = append(state, theta)
	return append(state, joints...)
}
