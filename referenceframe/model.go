package referenceframe

import (
	"sync"

	"go.uber.org/multierr"

	spatial "github.com/viam-labs/screwplan/spatialmath"
)

// A Model represents a kinematic chain with a nameable root.
type Model interface {
	Frame
	ChangeName(name string)
}

// SimpleModel is a model of a serial kinematic chain.
// Generally speaking, a joint frame attaches a link to its parent, and a static
// frame encodes the fixed geometry of a link.
type SimpleModel struct {
	name string
	// OrdTransforms is the list of transforms ordered from the base to the end effector
	OrdTransforms []Frame
	limits        []Limit
	lock          sync.RWMutex
}

// NewSimpleModel constructs a new model.
func NewSimpleModel(name string) *SimpleModel {
	return &SimpleModel{name: name}
}

// Name returns the name of this model.
func (m *SimpleModel) Name() string {
	return m.name
}

// ChangeName changes the name of this model - necessary for building frame systems.
func (m *SimpleModel) ChangeName(name string) {
	m.name = name
}

// Transform takes a model and a list of joint angles in radians and computes the cartesian
// position of the end effector by composing each transform in the chain.
// Out-of-bounds inputs still produce a pose, alongside a non-nil error containing OOBErrString.
func (m *SimpleModel) Transform(inputs []Input) (spatial.Pose, error) {
	var err error
	if len(inputs) != len(m.DoF()) {
		return nil, NewIncorrectInputLengthError(len(inputs), len(m.DoF()))
	}
	composed := spatial.NewZeroPose()
	posIdx := 0
	for _, transform := range m.OrdTransforms {
		dof := len(transform.DoF()) + posIdx
		input := inputs[posIdx:dof]
		posIdx = dof

		pose, errNew := transform.Transform(input)
		// Fail if inputs are incorrect and pose is nil, but allow querying out-of-bounds positions
		if pose == nil {
			return nil, errNew
		}
		multierr.AppendInto(&err, errNew)
		composed = spatial.Compose(composed, pose)
	}
	return composed, err
}

// AreJointPositionsValid checks whether the given array of joint positions violates any joint limits.
func (m *SimpleModel) AreJointPositionsValid(pos []float64) bool {
	limits := m.DoF()
	if len(pos) != len(limits) {
		return false
	}
	for i := 0; i < len(limits); i++ {
		if pos[i] < limits[i].Min || pos[i] > limits[i].Max {
			return false
		}
	}
	return true
}

// DoF returns the limits of each degree of freedom within the chain.
func (m *SimpleModel) DoF() []Limit {
	m.lock.RLock()
	if len(m.limits) > 0 {
		defer m.lock.RUnlock()
		return m.limits
	}
	m.lock.RUnlock()

	limits := make([]Limit, 0, len(m.OrdTransforms))
	for _, transform := range m.OrdTransforms {
		if len(transform.DoF()) > 0 {
			limits = append(limits, transform.DoF()...)
		}
	}
	m.lock.Lock()
	m.limits = limits
	m.lock.Unlock()
	return limits
}
