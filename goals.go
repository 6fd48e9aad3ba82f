package screwplan

import (
	"context"
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/viam-labs/screwplan/referenceframe"
	spatial "github.com/viam-labs/screwplan/spatialmath"
)

const (
	defaultNumStarts = 5
	defaultNumGoals  = 10

	// Two joint configurations within this L2 distance are considered duplicates.
	dedupTolerance = 1e-4
)

var errNoIKSolution = errors.New("found no IK solutions for the start or goal pose")

// stateSynthesizer produces feasible start and goal joint configurations for a constraint
// via repeated randomized-seed IK. Redundant manipulators realize the same pose with many
// configurations, so collecting several deduplicated candidates gives the search engine
// more connectivity options.
type stateSynthesizer struct {
	space     *compoundSpace
	randseed  *rand.Rand
	numStarts int
	numGoals  int
}

func newStateSynthesizer(space *compoundSpace, randseed *rand.Rand, numStarts, numGoals int) *stateSynthesizer {
	if numStarts < 1 {
		numStarts = defaultNumStarts
	}
	if numGoals < 1 {
		numGoals = defaultNumGoals
	}
	return &stateSynthesizer{space: space, randseed: randseed, numStarts: numStarts, numGoals: numGoals}
}

// findGoalStates is the seeded mode: the start set is exactly the given configuration, and
// only goal configurations are synthesized.
func (sg *stateSynthesizer) findGoalStates(ctx context.Context, start []referenceframe.Input) ([][]float64, [][]float64, error) {
	if len(start) != sg.space.kin.VariableCount() {
		return nil, nil, errors.Errorf(
			"start configuration has %d variables, manipulator has %d", len(start), sg.space.kin.VariableCount(),
		)
	}
	startConfigs := [][]float64{referenceframe.InputsToFloats(start)}
	goalConfigs := make([][]float64, 0, sg.numGoals)

	goalPose := sg.space.constraint.GoalPose()
	// The first attempt descends from the start configuration itself; later attempts
	// randomize the seed for variety in solutions.
	seed := start
	for i := 0; len(goalConfigs) < sg.numGoals && i < 2*sg.numGoals; i++ {
		goalConfigs = sg.increaseStateList(ctx, goalPose, seed, goalConfigs)
		seed = sg.space.kin.RandomInputs(sg.randseed)
	}

	if len(goalConfigs) == 0 {
		return nil, nil, errNoIKSolution
	}
	return startConfigs, goalConfigs, nil
}

// findStartGoalStates is the unseeded mode: both start and goal sets are grown in the same
// randomized-seed IK loop, interleaved per iteration.
func (sg *stateSynthesizer) findStartGoalStates(ctx context.Context) ([][]float64, [][]float64, error) {
	startConfigs := make([][]float64, 0, sg.numStarts)
	goalConfigs := make([][]float64, 0, sg.numGoals)

	startPose := sg.space.constraint.StartPose()
	goalPose := sg.space.constraint.GoalPose()

	for i := 0; (len(startConfigs) < sg.numStarts || len(goalConfigs) < sg.numGoals) &&
		i < 2*(sg.numStarts+sg.numGoals); i++ {
		// Every iteration gets a fresh random seed to get variety in solutions.
		seed := sg.space.kin.RandomInputs(sg.randseed)

		if len(startConfigs) < sg.numStarts {
			startConfigs = sg.increaseStateList(ctx, startPose, seed, startConfigs)
		}
		if len(goalConfigs) < sg.numGoals {
			goalConfigs = sg.increaseStateList(ctx, goalPose, seed, goalConfigs)
		}
	}

	if len(startConfigs) == 0 || len(goalConfigs) == 0 {
		return nil, nil, errNoIKSolution
	}
	return startConfigs, goalConfigs, nil
}

// increaseStateList attempts one IK solve toward the pose and appends the solution to the
// list if it is not a duplicate of one already found. IK failure is expected and simply
// contributes nothing.
func (sg *stateSynthesizer) increaseStateList(
	ctx context.Context,
	pose spatial.Pose,
	seed []referenceframe.Input,
	stateList [][]float64,
) [][]float64 {
	solution, err := sg.space.kin.SolveIK(ctx, pose, seed)
	if err != nil {
		return stateList
	}
	jointValues := referenceframe.InputsToFloats(solution)
	if isDuplicateState(stateList, jointValues) {
		return stateList
	}
	return append(stateList, jointValues)
}

// isDuplicateState reports whether the candidate is within the dedup tolerance of any
// configuration already in the list.
func isDuplicateState(stateList [][]float64, candidate []float64) bool {
	for _, existing := range stateList {
		if floats.Distance(existing, candidate, 2) < dedupTolerance {
			return true
		}
	}
	return false
}

// screwGoal is the goal region: it accepts any configuration whose compound state matches
// one of the synthesized goal configurations, at full progress, within the tolerance.
// IK multiplicity means there may be arbitrarily many accepted goal states.
type screwGoal struct {
	goals [][]float64
	tol   float64
}

func newScrewGoal(goals [][]float64, tol float64) *screwGoal {
	return &screwGoal{goals: goals, tol: tol}
}

// Satisfied reports whether the state matches any stored goal configuration.
func (g *screwGoal) Satisfied(state []float64) bool {
	for _, goal := range g.goals {
		if len(goal) == len(state) && floats.Distance(goal, state, 2) <= g.tol {
			return true
		}
	}
	return false
}
