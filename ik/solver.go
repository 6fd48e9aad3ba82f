package ik

import (
	"context"
	"math"
	"math/rand"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/viam-labs/screwplan/referenceframe"
)

var (
	errNoSolve   = errors.New("kinematics could not solve for position")
	errBadBounds = errors.New("cannot set upper or lower bounds, slice is empty. Are you trying to move a static frame?")
)

const (
	defaultMaxIterations = 5000
	defaultEpsilon       = 1e-3

	// finite difference step for numeric gradients.
	gradientJump = 1e-6

	// descent attempts are restarted from a perturbed seed this many times within the iteration budget.
	defaultRestarts = 10
)

// Solution is the struct returned from an IK solver. It contains the solution configuration, the score of the
// solution, and a flag indicating whether that configuration met the solution criteria.
type Solution struct {
	Configuration []referenceframe.Input
	Score         float64
	Exact         bool
}

// Solver defines an interface which, provided with a seed joint position and a function which scores states,
// will produce configurations that minimize that function.
type Solver interface {
	// Solve runs the solver and sends any solutions found to the given channel.
	Solve(context.Context, chan<- *Solution, []referenceframe.Input, StateMetric, int) error
	// DoF returns the limits of the frame being solved for.
	DoF() []referenceframe.Limit
}

// GradientSolver performs bounded gradient descent on a state metric over a frame's inputs, with
// random restarts for seed diversity. It is a pure Go solver and holds no state across Solve calls.
type GradientSolver struct {
	model         referenceframe.Frame
	logger        golog.Logger
	lowerBound    []float64
	upperBound    []float64
	maxIterations int
	epsilon       float64

	// If exact is false, the solver will also emit partial solutions where it was not able to meet
	// the goal criteria but still was able to improve upon the seed.
	exact bool
}

// NewGradientSolver creates a solver that can perform gradient descent on metrics for the given frame.
// iter is the total number of descent iterations shared across restarts; if less than 1 the default is used.
func NewGradientSolver(model referenceframe.Frame, logger golog.Logger, iter int, exact bool) (*GradientSolver, error) {
	if iter < 1 {
		iter = defaultMaxIterations
	}
	lower, upper := limitsToArrays(model.DoF())
	if len(lower) == 0 || len(upper) == 0 {
		return nil, errBadBounds
	}
	return &GradientSolver{
		model:         model,
		logger:        logger,
		lowerBound:    lower,
		upperBound:    upper,
		maxIterations: iter,
		epsilon:       defaultEpsilon,
		exact:         exact,
	}, nil
}

// DoF returns the limits of the frame being solved for.
func (ik *GradientSolver) DoF() []referenceframe.Limit {
	return ik.model.DoF()
}

// Solve runs the actual solver and sends any solutions found to the given channel.
func (ik *GradientSolver) Solve(ctx context.Context,
	solutionChan chan<- *Solution,
	seed []referenceframe.Input,
	solveMetric StateMetric,
	rseed int,
) error {
	//nolint:gosec
	randSeed := rand.New(rand.NewSource(int64(rseed)))
	if len(seed) != len(ik.lowerBound) {
		return referenceframe.NewIncorrectInputLengthError(len(seed), len(ik.lowerBound))
	}

	seedFloats := referenceframe.InputsToFloats(seed)
	iterBudget := ik.maxIterations / defaultRestarts
	if iterBudget < 1 {
		iterBudget = 1
	}

	solved := 0
	for attempt := 0; attempt < defaultRestarts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		start := seedFloats
		if attempt > 0 {
			start = ik.randomRestart(randSeed, seedFloats, attempt)
		}
		solution, score := ik.descend(ctx, start, solveMetric, iterBudget)
		if solution == nil {
			continue
		}
		if score < ik.epsilon {
			if err := sendSolution(ctx, solutionChan, &Solution{referenceframe.FloatsToInputs(solution), score, true}); err != nil {
				return err
			}
			solved++
			continue
		}
		if !ik.exact {
			seedScore := ik.score(seedFloats, solveMetric)
			if score < seedScore {
				if err := sendSolution(ctx, solutionChan, &Solution{referenceframe.FloatsToInputs(solution), score, false}); err != nil {
					return err
				}
				solved++
			}
		}
	}
	if solved == 0 {
		return errNoSolve
	}
	return nil
}

// descend performs adaptive-step gradient descent from the start configuration, returning the best
// configuration found and its score. Returns nil if the metric could not be evaluated at all.
func (ik *GradientSolver) descend(ctx context.Context, start []float64, metric StateMetric, iterations int) ([]float64, float64) {
	current := make([]float64, len(start))
	copy(current, start)
	ik.clamp(current)

	best := make([]float64, len(current))
	copy(best, current)
	bestScore := ik.score(best, metric)
	if math.IsInf(bestScore, 1) {
		return nil, bestScore
	}

	stepSize := 0.1
	grad := make([]float64, len(current))
	next := make([]float64, len(current))
	for i := 0; i < iterations; i++ {
		select {
		case <-ctx.Done():
			return best, bestScore
		default:
		}
		if bestScore < ik.epsilon {
			return best, bestScore
		}

		currScore := ik.score(current, metric)
		for j := range current {
			current[j] += gradientJump
			grad[j] = (ik.score(current, metric) - currScore) / gradientJump
			current[j] -= gradientJump
		}
		gradNorm := floats.Norm(grad, 2)
		if gradNorm < 1e-12 {
			// flat region, nothing more to descend
			return best, bestScore
		}

		copy(next, current)
		floats.AddScaledTo(next, current, -stepSize/gradNorm, grad)
		ik.clamp(next)
		nextScore := ik.score(next, metric)
		if nextScore < currScore {
			copy(current, next)
			stepSize *= 1.25
			if nextScore < bestScore {
				copy(best, current)
				bestScore = nextScore
			}
		} else {
			stepSize *= 0.5
			if stepSize < 1e-10 {
				return best, bestScore
			}
		}
	}
	return best, bestScore
}

// score evaluates the metric at the given configuration, returning +Inf if the pose could not be computed.
func (ik *GradientSolver) score(conf []float64, metric StateMetric) float64 {
	inputs := referenceframe.FloatsToInputs(conf)
	pose, err := ik.model.Transform(inputs)
	if pose == nil && err != nil {
		return math.Inf(1)
	}
	return metric(&State{Position: pose, Configuration: inputs, Frame: ik.model})
}

// randomRestart produces a new starting configuration by perturbing the seed. The perturbation grows
// with the attempt number so later restarts cover more of the joint space.
func (ik *GradientSolver) randomRestart(randSeed *rand.Rand, seed []float64, attempt int) []float64 {
	span := 0.1 * float64(attempt)
	restart := make([]float64, len(seed))
	for i, v := range seed {
		jRange := ik.upperBound[i] - ik.lowerBound[i]
		if jRange > 2*math.Pi {
			jRange = 2 * math.Pi
		}
		restart[i] = v + (randSeed.Float64()-0.5)*jRange*span
	}
	ik.clamp(restart)
	return restart
}

func (ik *GradientSolver) clamp(conf []float64) {
	for i, v := range conf {
		if v < ik.lowerBound[i] {
			conf[i] = ik.lowerBound[i]
		} else if v > ik.upperBound[i] {
			conf[i] = ik.upperBound[i]
		}
	}
}

func sendSolution(ctx context.Context, solutionChan chan<- *Solution, solution *Solution) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case solutionChan <- solution:
		return nil
	}
}

func limitsToArrays(limits []referenceframe.Limit) ([]float64, []float64) {
	var min, max []float64
	for _, limit := range limits {
		min = append(min, limit.Min)
		max = append(max, limit.Max)
	}
	return min, max
}
