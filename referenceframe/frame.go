// Package referenceframe defines frames of reference and the math for composing them,
// e.g. the links and joints of a serial manipulator and the pose of its end effector.
package referenceframe

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	spatial "github.com/viam-labs/screwplan/spatialmath"
)

// OOBErrString is a string that all out-of-bounds errors contain, so that they can be
// checked for distinct from other Transform errors.
const OOBErrString = "input out of bounds"

// Limit represents the limits of motion for a referenceframe.
type Limit struct {
	Min float64
	Max float64
}

// Frame represents a reference frame, e.g. an arm link, a joint, or a gripper.
type Frame interface {
	// Name returns the name of the referenceframe.
	Name() string

	// Transform is the pose (rotation and translation) that goes FROM current frame TO parent's referenceframe.
	Transform([]Input) (spatial.Pose, error)

	// DoF will return a slice with length equal to the number of joints/degrees of freedom.
	// Each element describes the min and max movement limit of that joint/degree of freedom.
	// For robot parts that don't move, it returns an empty slice.
	DoF() []Limit
}

// RandomFrameInputs will produce a list of valid, in-bounds inputs for the referenceframe.
func RandomFrameInputs(m Frame, rSeed *rand.Rand) []Input {
	if rSeed == nil {
		//nolint:gosec
		rSeed = rand.New(rand.NewSource(1))
	}
	dof := m.DoF()
	pos := make([]Input, 0, len(dof))
	for _, lim := range dof {
		l, u := lim.Min, lim.Max

		// Default to [-999,999] as range if limits are infinite
		if l == math.Inf(-1) {
			l = -999
		}
		if u == math.Inf(1) {
			u = 999
		}

		jRange := math.Abs(u - l)
		pos = append(pos, Input{rSeed.Float64()*jRange + l})
	}
	return pos
}

// a static Frame is a simple coordinate system that encodes a fixed translation and rotation
// from the current Frame to the parent referenceframe.
type staticFrame struct {
	name      string
	transform spatial.Pose
}

// NewStaticFrame creates a frame given a pose relative to its parent. The pose is fixed for all time.
// Pose is not allowed to be nil.
func NewStaticFrame(name string, pose spatial.Pose) (Frame, error) {
	if pose == nil {
		return nil, errors.New("pose is not allowed to be nil")
	}
	return &staticFrame{name, pose}, nil
}

// NewZeroStaticFrame creates a frame with no translation or orientation changes.
func NewZeroStaticFrame(name string) Frame {
	return &staticFrame{name, spatial.NewZeroPose()}
}

// Name is the name of the referenceframe.
func (sf *staticFrame) Name() string {
	return sf.name
}

// Transform returns the pose associated with this static referenceframe.
func (sf *staticFrame) Transform(input []Input) (spatial.Pose, error) {
	if len(input) != 0 {
		return nil, fmt.Errorf("given input length %d does not match frame DoF 0", len(input))
	}
	return sf.transform, nil
}

// DoF are the degrees of freedom of the transform. In the staticFrame, it is always 0.
func (sf *staticFrame) DoF() []Limit {
	return []Limit{}
}

// a translational Frame is a frame that can translate without rotation along a fixed axis.
type translationalFrame struct {
	name      string
	transAxis r3.Vector
	limit     []Limit
}

// NewTranslationalFrame creates a frame given a name and the axis in which to translate.
func NewTranslationalFrame(name string, axis r3.Vector, limit Limit) (Frame, error) {
	if spatial.R3VectorAlmostEqual(r3.Vector{}, axis, 1e-8) {
		return nil, errors.New("cannot use zero vector as translation axis")
	}
	return &translationalFrame{name: name, transAxis: axis.Normalize(), limit: []Limit{limit}}, nil
}

// Name is the name of the frame.
func (pf *translationalFrame) Name() string {
	return pf.name
}

// Transform returns a pose translated by the amount specified in the inputs.
func (pf *translationalFrame) Transform(input []Input) (spatial.Pose, error) {
	var err error
	if len(input) != 1 {
		return nil, fmt.Errorf("given input length %d does not match frame DoF 1", len(input))
	}

	// We allow out-of-bounds calculations, but will return a non-nil error
	if input[0].Value < pf.limit[0].Min || input[0].Value > pf.limit[0].Max {
		err = fmt.Errorf("%.5f %s %v", input[0].Value, OOBErrString, pf.limit[0])
	}
	return spatial.NewPoseFromPoint(pf.transAxis.Mul(input[0].Value)), err
}

// DoF are the degrees of freedom of the transform.
func (pf *translationalFrame) DoF() []Limit {
	return pf.limit
}

type rotationalFrame struct {
	name    string
	rotAxis r3.Vector
	limit   []Limit
}

// NewRotationalFrame creates a new rotationalFrame struct.
// A standard revolute joint will have 1 DoF.
func NewRotationalFrame(name string, axis spatial.R4AA, limit Limit) (Frame, error) {
	axis.Normalize()
	return &rotationalFrame{
		name:    name,
		rotAxis: r3.Vector{X: axis.RX, Y: axis.RY, Z: axis.RZ},
		limit:   []Limit{limit},
	}, nil
}

// Transform returns the Pose representing the frame's motion in space. Requires a slice
// of inputs that has length equal to the degrees of freedom of the referenceframe.
func (rf *rotationalFrame) Transform(input []Input) (spatial.Pose, error) {
	var err error
	if len(input) != 1 {
		return nil, fmt.Errorf("given input length %d does not match frame DoF 1", len(input))
	}
	// We allow out-of-bounds calculations, but will return a non-nil error
	if input[0].Value < rf.limit[0].Min || input[0].Value > rf.limit[0].Max {
		err = fmt.Errorf("%.5f %s %v", input[0].Value, OOBErrString, rf.limit[0])
	}
	// Copy the axis for thread safety
	return spatial.NewPoseFromOrientation(&spatial.R4AA{Theta: input[0].Value, RX: rf.rotAxis.X, RY: rf.rotAxis.Y, RZ: rf.rotAxis.Z}), err
}

// DoF returns the number of degrees of freedom that a joint has. This would be 1 for a standard revolute joint.
func (rf *rotationalFrame) DoF() []Limit {
	return rf.limit
}

// Name returns the name of the referenceframe.
func (rf *rotationalFrame) Name() string {
	return rf.name
}

// JointType labels the kind of motion a joint frame allows.
type JointType string

// The joint types distinguishable from a frame.
const (
	JointTypeUnknown   = JointType("")
	JointTypeRevolute  = JointType("revolute")
	JointTypePrismatic = JointType("prismatic")
)

// JointTypeOf reports the joint type of the given frame, or JointTypeUnknown for frames
// that are not single joints.
func JointTypeOf(f Frame) JointType {
	switch f.(type) {
	case *rotationalFrame:
		return JointTypeRevolute
	case *translationalFrame:
		return JointTypePrismatic
	default:
		return JointTypeUnknown
	}
}
