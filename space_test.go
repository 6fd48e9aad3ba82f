package screwplan

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/viam-labs/screwplan/referenceframe"
	spatial "github.com/viam-labs/screwplan/spatialmath"
)

func testConstraint(t *testing.T, thetaMax float64) *ScrewConstraint {
	t.Helper()
	screw, err := spatial.NewScrewAxis(r3.Vector{X: 0, Y: 0, Z: 1}, r3.Vector{}, 20)
	test.That(t, err, test.ShouldBeNil)
	constraint, err := NewScrewConstraint(screw, spatial.NewZeroPose(), thetaMax)
	test.That(t, err, test.ShouldBeNil)
	return constraint
}

func TestBuildCompoundSpace(t *testing.T) {
	kin := newYawLiftKinematics()
	space, err := buildCompoundSpace(testConstraint(t, 1.5), kin, "tool", "arm")
	test.That(t, err, test.ShouldBeNil)

	// the progress dimension comes first, bounded by the progress limit
	test.That(t, space.limits, test.ShouldHaveLength, 3)
	test.That(t, space.limits[0], test.ShouldResemble, referenceframe.Limit{Min: 0, Max: 1.5})
	test.That(t, space.limits[1], test.ShouldResemble, referenceframe.Limit{Min: -math.Pi, Max: math.Pi})
	test.That(t, space.limits[2], test.ShouldResemble, referenceframe.Limit{Min: -100, Max: 400})
	test.That(t, space.jointLimits(), test.ShouldHaveLength, 2)
	test.That(t, space.eeFrame, test.ShouldEqual, "tool")
	test.That(t, space.moveGroup, test.ShouldEqual, "arm")
}

func TestBuildCompoundSpaceErrors(t *testing.T) {
	constraint := testConstraint(t, 1)

	_, err := buildCompoundSpace(constraint, nil, "", "")
	test.That(t, err, test.ShouldEqual, errNilKinematics)

	kin := newYawLiftKinematics()
	kin.joints[0].Bounds = []referenceframe.Limit{{Min: math.Inf(-1), Max: math.Inf(1)}}
	_, err = buildCompoundSpace(constraint, kin, "", "")
	test.That(t, err, test.ShouldNotBeNil)

	kin = newYawLiftKinematics()
	kin.joints[1].Kind = KindUnsupported
	_, err = buildCompoundSpace(constraint, kin, "", "")
	test.That(t, err, test.ShouldNotBeNil)

	kin = newYawLiftKinematics()
	kin.joints = nil
	_, err = buildCompoundSpace(constraint, kin, "", "")
	test.That(t, err, test.ShouldEqual, errNoActiveJoint)
}

// planarBaseKinematics reports a single planar joint, to exercise multi-variable expansion.
type planarBaseKinematics struct {
	yawLiftKinematics
}

func (k *planarBaseKinematics) Joints() []Joint {
	return []Joint{{Name: "base", Kind: KindPlanar}}
}

func (k *planarBaseKinematics) DoF() []referenceframe.Limit {
	return []referenceframe.Limit{
		{Min: -planarTranslationBound, Max: planarTranslationBound},
		{Min: -planarTranslationBound, Max: planarTranslationBound},
		{Min: -math.Pi, Max: math.Pi},
	}
}

func (k *planarBaseKinematics) VariableCount() int { return 3 }

func TestBuildCompoundSpacePlanar(t *testing.T) {
	space, err := buildCompoundSpace(testConstraint(t, 1), &planarBaseKinematics{}, "", "")
	test.That(t, err, test.ShouldBeNil)

	test.That(t, space.limits, test.ShouldHaveLength, 4)
	test.That(t, space.limits[1].Max, test.ShouldEqual, planarTranslationBound)
	test.That(t, space.limits[2].Max, test.ShouldEqual, planarTranslationBound)
	test.That(t, space.limits[3].Max, test.ShouldAlmostEqual, math.Pi, 1e-8)
}

func TestComposeSplitState(t *testing.T) {
	state := composeState(0.7, []float64{1, 2, 3})
	test.That(t, state, test.ShouldResemble, []float64{0.7, 1, 2, 3})

	space, err := buildCompoundSpace(testConstraint(t, 1), newYawLiftKinematics(), "", "")
	test.That(t, err, test.ShouldBeNil)
	theta, joints := space.split([]float64{0.3, 4, 5})
	test.That(t, theta, test.ShouldEqual, 0.3)
	test.That(t, joints, test.ShouldResemble, []float64{4, 5})
}

func TestJointKindString(t *testing.T) {
	test.That(t, KindRevolute.String(), test.ShouldEqual, "revolute")
	test.That(t, KindPrismatic.String(), test.ShouldEqual, "prismatic")
	test.That(t, KindPlanar.String(), test.ShouldEqual, "planar")
	test.That(t, KindUnsupported.String(), test.ShouldEqual, "unsupported")
}
