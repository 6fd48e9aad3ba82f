package referenceframe

import (
	"github.com/pkg/errors"
)

// ErrNoModelInformation is used when there is no model information.
var ErrNoModelInformation = errors.New("no model information")

// NewIncorrectInputLengthError returns an error describing a mismatch
// between the number of inputs given and the degrees of freedom expected.
func NewIncorrectInputLengthError(actual, expected int) error {
	return errors.Errorf("number of inputs does not match frame DoF, expected %d but got %d", expected, actual)
}

// NewUnsupportedFrameTypeError returns an error for parsing an unknown frame type from a model config.
func NewUnsupportedFrameTypeError(frameType string) error {
	return errors.Errorf("unsupported frame type %q in model config", frameType)
}
