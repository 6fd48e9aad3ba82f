package screwplan

import (
	"context"
	"math/rand"

	"github.com/pkg/errors"

	"github.com/viam-labs/screwplan/referenceframe"
)

const defaultSamplerRetries = 10

// screwSampler draws configurations that already satisfy the screw constraint: it samples
// a progress value uniformly, computes the constrained end effector pose there, and asks
// IK for joints realizing it. This biases exploration toward the constraint manifold
// instead of the full joint space, where valid states are vanishingly rare.
type screwSampler struct {
	space    *compoundSpace
	randseed *rand.Rand
	retries  int
}

func newScrewSampler(space *compoundSpace, randseed *rand.Rand, retries int) *screwSampler {
	if retries < 1 {
		retries = defaultSamplerRetries
	}
	return &screwSampler{space: space, randseed: randseed, retries: retries}
}

// Sample returns one constraint-satisfying compound state. IK failures are retried up to
// the retry bound; exhausting it returns an error, which the search engine tolerates.
func (s *screwSampler) Sample(ctx context.Context) ([]float64, error) {
	for attempt := 0; attempt < s.retries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		theta := s.randseed.Float64() * s.space.constraint.ThetaMax()
		target := s.space.constraint.PoseAt(theta)

		// A random seed each attempt gives IK a chance at different arms of the solution set.
		seed := s.space.kin.RandomInputs(s.randseed)
		solution, err := s.space.kin.SolveIK(ctx, target, seed)
		if err != nil {
			continue
		}
		return composeState(theta, referenceframe.InputsToFloats(solution)), nil
	}
	return nil, errors.Errorf("no IK solution found for sampled screw poses in %d attempts", s.retries)
}
