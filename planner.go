package screwplan

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"github.com/viam-labs/screwplan/prm"
	"github.com/viam-labs/screwplan/referenceframe"
	spatial "github.com/viam-labs/screwplan/spatialmath"
)

const (
	defaultSolveBudget    = 5 * time.Second
	defaultSimplifyBudget = time.Second

	// The final trajectory state must be within this much progress of the requested
	// end for the trajectory to be marked valid.
	goalProgressTolerance = 0.01
)

// Outcome classifies the result of a planning call.
type Outcome int

// The possible planning outcomes. A Success outcome may still carry a trajectory marked
// invalid if only a prefix of the screw motion was achievable; callers must inspect the
// response's TrajectoryValid and PercentComplete fields.
const (
	// PlanningFail means the search engine exhausted its time budget without a path.
	PlanningFail Outcome = iota
	// Success means the search produced a path, converted into the response trajectory.
	Success
	// InitializationFail means the search space or its parameters could not be built.
	InitializationFail
	// NoIKSolution means start or goal synthesis found zero feasible configurations.
	NoIKSolution
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "SUCCESS"
	case InitializationFail:
		return "INITIALIZATION_FAIL"
	case NoIKSolution:
		return "NO_IK_SOLUTION"
	case PlanningFail:
		fallthrough
	default:
		return "PLANNING_FAIL"
	}
}

// A Request describes one screw motion to plan. It is not modified by the planner.
type Request struct {
	// Screw is the task's screw axis, expressed in the planning frame.
	Screw spatial.ScrewAxis
	// ThetaMax is the total progress to travel along the screw, in radians. Must be positive.
	ThetaMax float64
	// StartJoints optionally gives the configuration the motion starts from. If its length
	// matches the manipulator's variable count, the start pose is computed from it;
	// otherwise StartPose is used directly.
	StartJoints []referenceframe.Input
	// StartPose is the end effector pose the motion starts from, used when StartJoints is absent.
	StartPose spatial.Pose
	// EEFrameName names the end effector frame the screw constrains.
	EEFrameName string
	// MoveGroup names the set of joints being planned for.
	MoveGroup string
}

// A Response reports the planned trajectory. It is always fully populated: a failed or
// partial plan carries an empty or truncated trajectory with TrajectoryValid false.
type Response struct {
	// JointNames orders the variables of each trajectory point.
	JointNames []string
	// Trajectory is the ordered sequence of joint position vectors.
	Trajectory [][]float64
	// TrajectoryValid is true only if every trajectory state was valid and the final
	// state reached the requested progress.
	TrajectoryValid bool
	// PercentComplete is the fraction of the requested screw progress reached, in [0,1].
	PercentComplete float64
	// PathLength is the search engine's reported length of the solution path.
	PathLength float64
}

// Options configure a Planner. The zero value of any field selects its default.
type Options struct {
	// SolveBudget bounds the search engine's solve call.
	SolveBudget time.Duration
	// SimplifyBudget bounds the best-effort path simplification after a solve.
	SimplifyBudget time.Duration
	// NumStarts and NumGoals bound how many distinct IK candidates synthesis collects.
	NumStarts int
	NumGoals  int
	// Tolerance bounds end effector drift from the constrained pose during validity checks.
	Tolerance PoseTolerance
	// GoalTolerance is the satisfaction distance for the goal region.
	GoalTolerance float64
	// Resolution is the search engine's edge-checking and interpolation step.
	Resolution float64
	// SamplerRetries bounds IK attempts per constrained sample.
	SamplerRetries int
	// RandSeed seeds all randomness of a planning call; identical requests with
	// identical seeds produce identical responses.
	RandSeed int64
}

// NewBasicOptions returns the default planner options.
func NewBasicOptions() *Options {
	return &Options{
		SolveBudget:    defaultSolveBudget,
		SimplifyBudget: defaultSimplifyBudget,
		NumStarts:      defaultNumStarts,
		NumGoals:       defaultNumGoals,
		Tolerance:      PoseTolerance{Position: 5, Orientation: 0.05},
		GoalTolerance:  1e-3,
		Resolution:     0.05,
		SamplerRetries: defaultSamplerRetries,
		RandSeed:       1,
	}
}

func (o *Options) fillDefaults() {
	basic := NewBasicOptions()
	if o.SolveBudget <= 0 {
		o.SolveBudget = basic.SolveBudget
	}
	if o.SimplifyBudget <= 0 {
		o.SimplifyBudget = basic.SimplifyBudget
	}
	if o.NumStarts < 1 {
		o.NumStarts = basic.NumStarts
	}
	if o.NumGoals < 1 {
		o.NumGoals = basic.NumGoals
	}
	if o.Tolerance.Position <= 0 {
		o.Tolerance.Position = basic.Tolerance.Position
	}
	if o.Tolerance.Orientation <= 0 {
		o.Tolerance.Orientation = basic.Tolerance.Orientation
	}
	if o.GoalTolerance <= 0 {
		o.GoalTolerance = basic.GoalTolerance
	}
	if o.Resolution <= 0 {
		o.Resolution = basic.Resolution
	}
	if o.SamplerRetries < 1 {
		o.SamplerRetries = basic.SamplerRetries
	}
}

// Path is the search engine's view of a solution: ordered compound states and a length.
type Path interface {
	States() [][]float64
	Length() float64
}

// SearchEngine is the generic sampling-based search the planner drives. The default
// engine is the roadmap planner in the prm package; tests substitute deterministic fakes.
type SearchEngine interface {
	Solve(ctx context.Context, budget time.Duration) (Path, error)
	Simplify(ctx context.Context, path Path, budget time.Duration) Path
	Interpolate(path Path) Path
	IsValid(state []float64) bool
}

// EngineAllocator builds a SearchEngine for one planning query.
type EngineAllocator func(cfg prm.Config) (SearchEngine, error)

// Planner plans screw-constrained joint trajectories for one manipulator. Each Plan call
// builds its own constraint, search space, and engine session, so separate Planner
// instances share no mutable state; a single instance must still not run two Plan calls
// concurrently, as the kinematics provider is used without synchronization.
type Planner struct {
	kin         Kinematics
	logger      golog.Logger
	opts        *Options
	allocEngine EngineAllocator
}

// NewPlanner creates a planner for the given kinematics provider. Nil options select defaults.
func NewPlanner(kin Kinematics, logger golog.Logger, opts *Options) (*Planner, error) {
	return NewPlannerWithEngine(kin, logger, opts, defaultEngineAllocator)
}

// NewPlannerWithEngine creates a planner using a custom search engine allocator.
func NewPlannerWithEngine(kin Kinematics, logger golog.Logger, opts *Options, alloc EngineAllocator) (*Planner, error) {
	if kin == nil {
		return nil, errNilKinematics
	}
	if logger == nil {
		logger = golog.NewLogger("screwplan")
	}
	if opts == nil {
		opts = NewBasicOptions()
	}
	opts.fillDefaults()
	if alloc == nil {
		alloc = defaultEngineAllocator
	}
	return &Planner{kin: kin, logger: logger, opts: opts, allocEngine: alloc}, nil
}

// Plan plans a joint trajectory following the requested screw motion. The response is
// always populated; the error, when non-nil, explains any outcome other than Success.
// A Success outcome with TrajectoryValid false means only the returned prefix of the
// motion was achievable, which is a useful partial result rather than a failure.
func (p *Planner) Plan(ctx context.Context, req *Request) (*Response, Outcome, error) {
	// Reset the response to the failing case.
	res := &Response{Trajectory: [][]float64{}}

	screw, err := spatial.NewScrewAxis(req.Screw.Axis, req.Screw.Point, req.Screw.Pitch)
	if err != nil {
		return res, InitializationFail, err
	}

	startPose, seeded, err := p.resolveStartPose(req)
	if err != nil {
		return res, InitializationFail, err
	}

	constraint, err := NewScrewConstraint(screw, startPose, req.ThetaMax)
	if err != nil {
		return res, InitializationFail, err
	}

	space, err := buildCompoundSpace(constraint, p.kin, req.EEFrameName, req.MoveGroup)
	if err != nil {
		return res, InitializationFail, err
	}

	//nolint:gosec
	randseed := rand.New(rand.NewSource(p.opts.RandSeed))
	synth := newStateSynthesizer(space, randseed, p.opts.NumStarts, p.opts.NumGoals)

	var startConfigs, goalConfigs [][]float64
	if seeded {
		startConfigs, goalConfigs, err = synth.findGoalStates(ctx, req.StartJoints)
	} else {
		startConfigs, goalConfigs, err = synth.findStartGoalStates(ctx)
	}
	if err != nil {
		return res, NoIKSolution, err
	}
	p.logger.Debugf("synthesized %d start and %d goal configurations", len(startConfigs), len(goalConfigs))

	// Starts enter the space at zero progress, goals at full progress.
	starts := make([][]float64, 0, len(startConfigs))
	for _, c := range startConfigs {
		starts = append(starts, composeState(0, c))
	}
	goals := make([][]float64, 0, len(goalConfigs))
	for _, c := range goalConfigs {
		goals = append(goals, composeState(constraint.ThetaMax(), c))
	}

	engine, err := p.allocEngine(prm.Config{
		Limits:     space.limits,
		Sampler:    newScrewSampler(space, randseed, p.opts.SamplerRetries),
		Checker:    newScrewChecker(space, p.opts.Tolerance),
		Goal:       newScrewGoal(goals, p.opts.GoalTolerance),
		Starts:     starts,
		GoalStates: goals,
		Resolution: p.opts.Resolution,
		RandSeed:   p.opts.RandSeed,
		Logger:     p.logger,
	})
	if err != nil {
		return res, InitializationFail, err
	}

	path, err := engine.Solve(ctx, p.opts.SolveBudget)
	if err != nil {
		return res, PlanningFail, err
	}

	// Simplification is best-effort and never fails the plan.
	path = engine.Simplify(ctx, path, p.opts.SimplifyBudget)

	p.populateResponse(engine, path, req, res)
	return res, Success, nil
}

// resolveStartPose determines the pose the screw motion starts from, and whether the
// request seeded a start configuration.
func (p *Planner) resolveStartPose(req *Request) (spatial.Pose, bool, error) {
	if len(req.StartJoints) == p.kin.VariableCount() {
		pose, err := p.kin.Transform(req.StartJoints)
		if pose == nil {
			return nil, false, errors.Wrap(err, "could not compute start pose from start configuration")
		}
		return pose, true, nil
	}
	if req.StartPose == nil {
		return nil, false, errors.New("request provides neither a start configuration nor a start pose")
	}
	return req.StartPose, false, nil
}

// populateResponse converts the solution path into a joint trajectory. States are emitted
// strictly in path order; the first invalid state stops conversion and degrades the
// response to a partial result with the completion fraction reached.
func (p *Planner) populateResponse(engine SearchEngine, path Path, req *Request, res *Response) {
	if len(path.States()) < 2 {
		return
	}

	interpolated := engine.Interpolate(path)
	states := interpolated.States()

	res.JointNames = p.jointNames()
	res.Trajectory = make([][]float64, 0, len(states))

	for _, state := range states {
		if !engine.IsValid(state) {
			res.TrajectoryValid = false
			res.PercentComplete = state[0] / req.ThetaMax
			return
		}
		point := make([]float64, len(state)-1)
		copy(point, state[1:])
		res.Trajectory = append(res.Trajectory, point)
	}

	// Check that the last point actually reached the goal progress.
	finalTheta := states[len(states)-1][0]
	res.TrajectoryValid = math.Abs(req.ThetaMax-finalTheta) <= goalProgressTolerance
	res.PercentComplete = finalTheta / req.ThetaMax
	res.PathLength = path.Length()
}

// jointNames returns one name per joint variable, expanding multi-variable joints.
func (p *Planner) jointNames() []string {
	names := make([]string, 0, p.kin.VariableCount())
	for _, joint := range p.kin.Joints() {
		switch joint.Kind {
		case KindPlanar:
			names = append(names, joint.Name+"/x", joint.Name+"/y", joint.Name+"/theta")
		case KindRevolute, KindPrismatic, KindUnsupported:
			fallthrough
		default:
			if len(joint.Bounds) == 1 {
				names = append(names, joint.Name)
				continue
			}
			for i := range joint.Bounds {
				names = append(names, fmt.Sprintf("%s/%d", joint.Name, i))
			}
		}
	}
	return names
}

// defaultEngineAllocator wires the prm roadmap planner as the search engine.
func defaultEngineAllocator(cfg prm.Config) (SearchEngine, error) {
	planner, err := prm.NewPlanner(cfg)
	if err != nil {
		return nil, err
	}
	return &prmEngine{planner}, nil
}

// prmEngine adapts the prm planner's concrete path type to the SearchEngine interface.
type prmEngine struct {
	planner *prm.Planner
}

func (e *prmEngine) Solve(ctx context.Context, budget time.Duration) (Path, error) {
	path, err := e.planner.Solve(ctx, budget)
	if err != nil {
		return nil, err
	}
	return path, nil
}

func (e *prmEngine) Simplify(ctx context.Context, path Path, budget time.Duration) Path {
	concrete, ok := path.(*prm.Path)
	if !ok {
		return path
	}
	return e.planner.Simplify(ctx, concrete, budget)
}

func (e *prmEngine) Interpolate(path Path) Path {
	concrete, ok := path.(*prm.Path)
	if !ok {
		return path
	}
	return e.planner.Interpolate(concrete)
}

func (e *prmEngine) IsValid(state []float64) bool {
	return e.planner.IsValid(state)
}
