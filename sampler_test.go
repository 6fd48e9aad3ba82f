package screwplan

import (
	"context"
	"math/rand"
	"testing"

	"go.viam.com/test"

	"github.com/viam-labs/screwplan/referenceframe"
)

func TestScrewSampler(t *testing.T) {
	space, err := buildCompoundSpace(testConstraint(t, 1), newYawLiftKinematics(), "", "")
	test.That(t, err, test.ShouldBeNil)
	//nolint:gosec
	sampler := newScrewSampler(space, rand.New(rand.NewSource(1)), 10)
	checker := newScrewChecker(space, PoseTolerance{Position: 5, Orientation: 0.05})

	for i := 0; i < 50; i++ {
		state, err := sampler.Sample(context.Background())
		test.That(t, err, test.ShouldBeNil)
		test.That(t, state, test.ShouldHaveLength, 3)
		test.That(t, state[0], test.ShouldBeBetweenOrEqual, 0, 1)
		// every sample must already satisfy the screw constraint
		test.That(t, checker.Valid(state), test.ShouldBeTrue)
	}
}

func TestScrewSamplerIKExhaustion(t *testing.T) {
	kin := newYawLiftKinematics()
	kin.ikFails = true
	space, err := buildCompoundSpace(testConstraint(t, 1), kin, "", "")
	test.That(t, err, test.ShouldBeNil)
	//nolint:gosec
	sampler := newScrewSampler(space, rand.New(rand.NewSource(1)), 3)

	_, err = sampler.Sample(context.Background())
	test.That(t, err, test.ShouldNotBeNil)
}

func TestScrewSamplerCancelled(t *testing.T) {
	space, err := buildCompoundSpace(testConstraint(t, 1), newYawLiftKinematics(), "", "")
	test.That(t, err, test.ShouldBeNil)
	//nolint:gosec
	sampler := newScrewSampler(space, rand.New(rand.NewSource(1)), 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = sampler.Sample(ctx)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestScrewCheckerValid(t *testing.T) {
	space, err := buildCompoundSpace(testConstraint(t, 1), newYawLiftKinematics(), "", "")
	test.That(t, err, test.ShouldBeNil)
	checker := newScrewChecker(space, PoseTolerance{Position: 5, Orientation: 0.05})

	// a state exactly on the constraint manifold
	test.That(t, checker.Valid([]float64{0.5, 0.5, 10}), test.ShouldBeTrue)

	// wrong dimension count
	test.That(t, checker.Valid([]float64{0.5, 0.5}), test.ShouldBeFalse)

	// progress outside its bounds
	test.That(t, checker.Valid([]float64{1.5, 0.5, 10}), test.ShouldBeFalse)
	test.That(t, checker.Valid([]float64{-0.1, 0.5, 10}), test.ShouldBeFalse)

	// joint outside its bounds
	test.That(t, checker.Valid([]float64{0.5, 4, 10}), test.ShouldBeFalse)
	test.That(t, checker.Valid([]float64{0.5, 0.5, 500}), test.ShouldBeFalse)

	// end effector drifted off the constrained pose
	test.That(t, checker.Valid([]float64{0.5, 0.7, 10}), test.ShouldBeFalse)
	test.That(t, checker.Valid([]float64{0.5, 0.5, 16}), test.ShouldBeFalse)

	// small drift inside the tolerance is accepted
	test.That(t, checker.Valid([]float64{0.5, 0.51, 12}), test.ShouldBeTrue)
}

func TestScrewCheckerCollision(t *testing.T) {
	kin := newYawLiftKinematics()
	kin.collision = func(inputs []referenceframe.Input) bool {
		// the lift may not pass through the middle of its travel
		return inputs[1].Value < 8 || inputs[1].Value > 12
	}
	space, err := buildCompoundSpace(testConstraint(t, 1), kin, "", "")
	test.That(t, err, test.ShouldBeNil)
	checker := newScrewChecker(space, PoseTolerance{Position: 5, Orientation: 0.05})

	test.That(t, checker.Valid([]float64{0.25, 0.25, 5}), test.ShouldBeTrue)
	test.That(t, checker.Valid([]float64{0.5, 0.5, 10}), test.ShouldBeFalse)
}
