// Package prm implements a generic sampling-based motion planner: a probabilistic roadmap
// over an arbitrary bounded configuration space. The planner knows nothing about robots;
// it explores through a pluggable sampler, validity checker, and goal, which makes it
// usable for constrained spaces where plain uniform sampling would almost never be valid.
package prm

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.viam.com/utils"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/viam-labs/screwplan/referenceframe"
)

var (
	errPlannerFailed = errors.New("planner failed to find a path within the time budget")
	errNoSampler     = errors.New("config must provide a sampler")
	errNoChecker     = errors.New("config must provide a validity checker")
	errNoStarts      = errors.New("config must provide at least one start state")
	errNoGoals       = errors.New("config must provide a goal with at least one goal state")
)

const (
	defaultMaxNeighbors = 10
	defaultResolution   = 0.05
	defaultBatchSize    = 50

	// Consecutive sampler failures tolerated before a batch is abandoned.
	maxSampleFailures = 200
)

// Sampler draws candidate states for the roadmap. Implementations may fail on a given draw;
// the planner tolerates failures by retrying internally.
type Sampler interface {
	Sample(ctx context.Context) ([]float64, error)
}

// Checker is a pure predicate deciding whether a single state is valid.
type Checker interface {
	Valid(state []float64) bool
}

// Goal reports whether a state satisfies the termination condition of a query.
type Goal interface {
	Satisfied(state []float64) bool
}

// Config describes a single planning query. All fields without defaults are required.
type Config struct {
	// Limits bound each dimension of the space being searched.
	Limits  []referenceframe.Limit
	Sampler Sampler
	Checker Checker
	Goal    Goal
	// Starts and GoalStates are milestones seeded into the roadmap before sampling begins.
	Starts     [][]float64
	GoalStates [][]float64
	// Resolution is the distance between states checked along a roadmap edge,
	// and the state spacing produced by Interpolate.
	Resolution float64
	// MaxNeighbors is the number of nearest milestones a new milestone attempts to connect to.
	MaxNeighbors int
	RandSeed     int64
	Logger       golog.Logger
}

// Planner is a probabilistic roadmap planner for one query. It is single-use: construct,
// Solve, and optionally Simplify/Interpolate the result.
type Planner struct {
	cfg        Config
	graph      *simple.WeightedUndirectedGraph
	milestones []*milestone
	startIDs   []int64
	goalIDs    []int64
	randseed   *rand.Rand
	logger     golog.Logger
}

type milestone struct {
	id int64
	q  []float64
}

func (m *milestone) ID() int64 { return m.id }

type solveReturn struct {
	path *Path
	err  error
}

// NewPlanner creates a roadmap planner for the given query, seeding the roadmap
// with the start and goal milestones.
func NewPlanner(cfg Config) (*Planner, error) {
	if cfg.Sampler == nil {
		return nil, errNoSampler
	}
	if cfg.Checker == nil {
		return nil, errNoChecker
	}
	if len(cfg.Starts) == 0 {
		return nil, errNoStarts
	}
	if cfg.Goal == nil || len(cfg.GoalStates) == 0 {
		return nil, errNoGoals
	}
	if cfg.Resolution <= 0 {
		cfg.Resolution = defaultResolution
	}
	if cfg.MaxNeighbors < 1 {
		cfg.MaxNeighbors = defaultMaxNeighbors
	}
	logger := cfg.Logger
	if logger == nil {
		logger = golog.NewLogger("prm")
	}

	mp := &Planner{
		cfg:    cfg,
		graph:  simple.NewWeightedUndirectedGraph(0, 0),
		logger: logger,
		//nolint:gosec
		randseed: rand.New(rand.NewSource(cfg.RandSeed)),
	}
	for _, start := range cfg.Starts {
		mp.startIDs = append(mp.startIDs, mp.addMilestone(start).id)
	}
	for _, goal := range cfg.GoalStates {
		mp.goalIDs = append(mp.goalIDs, mp.addMilestone(goal).id)
	}
	return mp, nil
}

// IsValid exposes the underlying validity predicate, e.g. for checking interpolated paths.
func (mp *Planner) IsValid(state []float64) bool {
	return mp.cfg.Checker.Valid(state)
}

// Solve grows the roadmap until a start milestone connects to a goal-satisfying milestone,
// or until the time budget expires. The roadmap is built in a background goroutine so a
// cancelled context stops the search promptly.
func (mp *Planner) Solve(ctx context.Context, budget time.Duration) (*Path, error) {
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	solutionChan := make(chan *solveReturn, 1)
	utils.PanicCapturingGo(func() {
		solutionChan <- mp.buildRoadmap(ctx)
	})
	solution := <-solutionChan
	return solution.path, solution.err
}

func (mp *Planner) buildRoadmap(ctx context.Context) *solveReturn {
	// Start and goal milestones may already be mutually connectable.
	mp.connectNeighbors()
	if path := mp.extractPath(); path != nil {
		return &solveReturn{path: path}
	}

	iter := 0
	for {
		select {
		case <-ctx.Done():
			mp.logger.Debugf("roadmap exhausted time budget with %d milestones", len(mp.milestones))
			return &solveReturn{err: errPlannerFailed}
		default:
		}

		added := 0
		failures := 0
		for added < defaultBatchSize {
			select {
			case <-ctx.Done():
				return &solveReturn{err: errPlannerFailed}
			default:
			}
			state, err := mp.cfg.Sampler.Sample(ctx)
			if err != nil || !mp.cfg.Checker.Valid(state) {
				failures++
				if failures > maxSampleFailures {
					break
				}
				continue
			}
			m := mp.addMilestone(state)
			mp.connectMilestone(m)
			if mp.cfg.Goal.Satisfied(state) {
				mp.goalIDs = append(mp.goalIDs, m.id)
			}
			added++
		}
		iter++

		if path := mp.extractPath(); path != nil {
			mp.logger.Debugf("roadmap found path after %d batches, %d milestones", iter, len(mp.milestones))
			return &solveReturn{path: path}
		}
		if added == 0 {
			// The sampler has stopped producing valid states entirely; wait out the budget
			// in case it is transient, but do not spin.
			if !utils.SelectContextOrWait(ctx, 10*time.Millisecond) {
				return &solveReturn{err: errPlannerFailed}
			}
		}
	}
}

func (mp *Planner) addMilestone(q []float64) *milestone {
	m := &milestone{id: int64(len(mp.milestones)), q: q}
	mp.milestones = append(mp.milestones, m)
	mp.graph.AddNode(m)
	return m
}

// connectNeighbors attempts pairwise connection of every current milestone. Only used for
// the initial start/goal set, which is small.
func (mp *Planner) connectNeighbors() {
	for _, m := range mp.milestones {
		mp.connectMilestone(m)
	}
}

// connectMilestone links a milestone to its nearest neighbors whose connecting segments are valid.
func (mp *Planner) connectMilestone(m *milestone) {
	for _, nn := range mp.nearestMilestones(m) {
		if mp.graph.HasEdgeBetween(m.id, nn.node.id) {
			continue
		}
		if mp.segmentValid(m.q, nn.node.q) {
			mp.graph.SetWeightedEdge(mp.graph.NewWeightedEdge(m, nn.node, nn.dist))
		}
	}
}

type neighbor struct {
	dist float64
	node *milestone
}

// nearestMilestones returns up to MaxNeighbors milestones sorted by distance from m, excluding m itself.
func (mp *Planner) nearestMilestones(m *milestone) []*neighbor {
	allCosts := make([]*neighbor, 0, len(mp.milestones))
	for _, other := range mp.milestones {
		if other.id == m.id {
			continue
		}
		allCosts = append(allCosts, &neighbor{dist: floats.Distance(m.q, other.q, 2), node: other})
	}
	sort.Slice(allCosts, func(i, j int) bool {
		return allCosts[i].dist < allCosts[j].dist
	})
	if len(allCosts) > mp.cfg.MaxNeighbors {
		allCosts = allCosts[:mp.cfg.MaxNeighbors]
	}
	return allCosts
}

// segmentValid checks states along the straight segment between two states at the configured resolution.
// Endpoints are assumed to have been checked when they were added.
func (mp *Planner) segmentValid(from, to []float64) bool {
	dist := floats.Distance(from, to, 2)
	steps := int(dist/mp.cfg.Resolution) + 1
	for i := 1; i < steps; i++ {
		if !mp.cfg.Checker.Valid(interpolateStates(from, to, float64(i)/float64(steps))) {
			return false
		}
	}
	return true
}

func interpolateStates(from, to []float64, by float64) []float64 {
	out := make([]float64, len(from))
	for i, f := range from {
		out[i] = f + (to[i]-f)*by
	}
	return out
}
