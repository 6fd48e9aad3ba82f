package screwplan

import (
	"context"
	"math/rand"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.viam.com/utils"

	"github.com/viam-labs/screwplan/ik"
	"github.com/viam-labs/screwplan/referenceframe"
	spatial "github.com/viam-labs/screwplan/spatialmath"
)

// JointKind enumerates the kinds of joints the planner knows how to build search
// dimensions for. The set is closed; adding a kind requires updating the space builder.
type JointKind int

// The supported joint kinds.
const (
	KindUnsupported JointKind = iota
	KindRevolute
	KindPrismatic
	KindPlanar
)

func (k JointKind) String() string {
	switch k {
	case KindRevolute:
		return "revolute"
	case KindPrismatic:
		return "prismatic"
	case KindPlanar:
		return "planar"
	case KindUnsupported:
		fallthrough
	default:
		return "unsupported"
	}
}

// Joint describes one active joint of a manipulator: its name, kind, and position bounds.
// Planar joints occupy three variables (x, y, heading); all other kinds occupy one per bound.
type Joint struct {
	Name   string
	Kind   JointKind
	Bounds []referenceframe.Limit
}

// Kinematics is the boundary with the robot model: joint metadata, forward and inverse
// kinematics, random sampling, and collision checking. A single Plan invocation calls
// these sequentially; implementations need not be goroutine-safe.
type Kinematics interface {
	// Joints returns the manipulator's active joints in variable order.
	Joints() []Joint

	// DoF returns the position limit for each variable.
	DoF() []referenceframe.Limit

	// VariableCount returns the total number of joint variables.
	VariableCount() int

	// Transform performs forward kinematics, returning the end effector pose at the
	// given configuration.
	Transform([]referenceframe.Input) (spatial.Pose, error)

	// SolveIK attempts to find a configuration realizing the target pose, descending
	// from the given seed. Failure to find a solution is expected and returns an error.
	SolveIK(ctx context.Context, target spatial.Pose, seed []referenceframe.Input) ([]referenceframe.Input, error)

	// RandomInputs returns a random in-bounds configuration.
	RandomInputs(*rand.Rand) []referenceframe.Input

	// CollisionFree reports whether the manipulator is free of collisions at the
	// given configuration.
	CollisionFree([]referenceframe.Input) bool
}

// CollisionCheck is a predicate reporting whether a configuration is collision-free.
type CollisionCheck func([]referenceframe.Input) bool

// modelKinematics implements Kinematics on top of a serial chain model and an IK solver.
type modelKinematics struct {
	model     referenceframe.Model
	solver    ik.Solver
	collision CollisionCheck
	logger    golog.Logger
	ikSeed    int
}

// NewModelKinematics wraps a kinematic chain model, an IK solver for it, and an optional
// collision predicate into a Kinematics provider. A nil collision predicate treats every
// configuration as collision-free.
func NewModelKinematics(model referenceframe.Model, solver ik.Solver, collision CollisionCheck, logger golog.Logger) Kinematics {
	return &modelKinematics{model: model, solver: solver, collision: collision, logger: logger}
}

func (mk *modelKinematics) Joints() []Joint {
	joints := make([]Joint, 0)
	if model, ok := mk.model.(*referenceframe.SimpleModel); ok {
		for _, frame := range model.OrdTransforms {
			dof := frame.DoF()
			if len(dof) == 0 {
				continue
			}
			joints = append(joints, Joint{Name: frame.Name(), Kind: frameJointKind(frame), Bounds: dof})
		}
		return joints
	}
	// Opaque models are treated as a single multi-variable revolute group.
	joints = append(joints, Joint{Name: mk.model.Name(), Kind: KindRevolute, Bounds: mk.model.DoF()})
	return joints
}

func frameJointKind(frame referenceframe.Frame) JointKind {
	switch referenceframe.JointTypeOf(frame) {
	case referenceframe.JointTypeRevolute:
		return KindRevolute
	case referenceframe.JointTypePrismatic:
		return KindPrismatic
	default:
		return KindUnsupported
	}
}

func (mk *modelKinematics) DoF() []referenceframe.Limit {
	return mk.model.DoF()
}

func (mk *modelKinematics) VariableCount() int {
	return len(mk.model.DoF())
}

func (mk *modelKinematics) Transform(inputs []referenceframe.Input) (spatial.Pose, error) {
	return mk.model.Transform(inputs)
}

// SolveIK runs the solver against a squared norm metric on the target pose and returns the
// best solution found, preferring exact solutions.
func (mk *modelKinematics) SolveIK(
	ctx context.Context,
	target spatial.Pose,
	seed []referenceframe.Input,
) ([]referenceframe.Input, error) {
	ctxWithCancel, cancel := context.WithCancel(ctx)
	defer cancel()

	solutionGen := make(chan *ik.Solution)
	ikErr := make(chan error, 1)
	utils.PanicCapturingGo(func() {
		defer close(ikErr)
		ikErr <- mk.solver.Solve(ctxWithCancel, solutionGen, seed, ik.NewSquaredNormMetric(target), mk.nextSeed())
	})

	var best *ik.Solution
solutions:
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		select {
		case solution := <-solutionGen:
			if best == nil || solution.Score < best.Score {
				best = solution
			}
			if solution.Exact {
				cancel()
			}
			continue solutions
		default:
		}

		select {
		case <-ikErr:
			break solutions
		default:
		}
	}

	if best == nil || !best.Exact {
		return nil, errors.New("no IK solution for target pose")
	}
	return best.Configuration, nil
}

// nextSeed returns distinct random seeds so repeated SolveIK calls do not replay the same descent.
func (mk *modelKinematics) nextSeed() int {
	mk.ikSeed++
	return mk.ikSeed
}

func (mk *modelKinematics) RandomInputs(randseed *rand.Rand) []referenceframe.Input {
	return referenceframe.RandomFrameInputs(mk.model, randseed)
}

func (mk *modelKinematics) CollisionFree(inputs []referenceframe.Input) bool {
	if mk.collision == nil {
		return true
	}
	return mk.collision(inputs)
}
