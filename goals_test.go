package screwplan

import (
	"context"
	"math/rand"
	"testing"

	"go.viam.com/test"

	"github.com/viam-labs/screwplan/referenceframe"
)

func testSynthesizer(t *testing.T, kin Kinematics) *stateSynthesizer {
	t.Helper()
	space, err := buildCompoundSpace(testConstraint(t, 1), kin, "", "")
	test.That(t, err, test.ShouldBeNil)
	//nolint:gosec
	return newStateSynthesizer(space, rand.New(rand.NewSource(1)), 5, 10)
}

func TestFindGoalStatesSeeded(t *testing.T) {
	synth := testSynthesizer(t, newYawLiftKinematics())
	start := referenceframe.FloatsToInputs([]float64{0.1, 3})

	startConfigs, goalConfigs, err := synth.findGoalStates(context.Background(), start)
	test.That(t, err, test.ShouldBeNil)

	// the start set is exactly the seeded configuration
	test.That(t, startConfigs, test.ShouldResemble, [][]float64{{0.1, 3}})

	// the analytic IK has a single solution, so dedup collapses the goal set to one
	test.That(t, goalConfigs, test.ShouldHaveLength, 1)
	test.That(t, goalConfigs[0][0], test.ShouldAlmostEqual, 1.0, 1e-6)
	test.That(t, goalConfigs[0][1], test.ShouldAlmostEqual, 20.0, 1e-6)
}

func TestFindGoalStatesWrongLength(t *testing.T) {
	synth := testSynthesizer(t, newYawLiftKinematics())
	_, _, err := synth.findGoalStates(context.Background(), referenceframe.FloatsToInputs([]float64{0}))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestFindStartGoalStates(t *testing.T) {
	synth := testSynthesizer(t, newYawLiftKinematics())

	startConfigs, goalConfigs, err := synth.findStartGoalStates(context.Background())
	test.That(t, err, test.ShouldBeNil)

	test.That(t, startConfigs, test.ShouldHaveLength, 1)
	test.That(t, startConfigs[0][0], test.ShouldAlmostEqual, 0, 1e-6)
	test.That(t, startConfigs[0][1], test.ShouldAlmostEqual, 0, 1e-6)
	test.That(t, goalConfigs, test.ShouldHaveLength, 1)
	test.That(t, goalConfigs[0][0], test.ShouldAlmostEqual, 1.0, 1e-6)
	test.That(t, goalConfigs[0][1], test.ShouldAlmostEqual, 20.0, 1e-6)
}

func TestFindStatesNoIK(t *testing.T) {
	kin := newYawLiftKinematics()
	kin.ikFails = true
	synth := testSynthesizer(t, kin)

	_, _, err := synth.findStartGoalStates(context.Background())
	test.That(t, err, test.ShouldEqual, errNoIKSolution)

	_, _, err = synth.findGoalStates(context.Background(), referenceframe.FloatsToInputs([]float64{0, 0}))
	test.That(t, err, test.ShouldEqual, errNoIKSolution)
}

func TestIsDuplicateState(t *testing.T) {
	states := [][]float64{{1, 2}, {3, 4}}
	test.That(t, isDuplicateState(states, []float64{1, 2}), test.ShouldBeTrue)
	test.That(t, isDuplicateState(states, []float64{1, 2.00000001}), test.ShouldBeTrue)
	test.That(t, isDuplicateState(states, []float64{1, 2.1}), test.ShouldBeFalse)
	test.That(t, isDuplicateState(nil, []float64{1, 2}), test.ShouldBeFalse)
}

func TestScrewGoalSatisfied(t *testing.T) {
	goal := newScrewGoal([][]float64{{1, 0, 0}, {1, 0.5, 10}}, 1e-3)

	test.That(t, goal.Satisfied([]float64{1, 0, 0}), test.ShouldBeTrue)
	test.That(t, goal.Satisfied([]float64{1, 0.5, 10}), test.ShouldBeTrue)
	test.That(t, goal.Satisfied([]float64{1, 0.5, 10.0005}), test.ShouldBeTrue)
	test.That(t, goal.Satisfied([]float64{1, 0.25, 5}), test.ShouldBeFalse)
	// mismatched dimensionality never satisfies
	test.That(t, goal.Satisfied([]float64{1, 0}), test.ShouldBeFalse)
}
