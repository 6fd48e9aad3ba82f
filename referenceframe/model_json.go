package referenceframe

import (
	"encoding/json"
	"math"
	"os"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	spatial "github.com/viam-labs/screwplan/spatialmath"
)

// ModelConfig represents all supported fields in a kinematics JSON file.
// Frames are listed in order from the base of the chain to the end effector.
type ModelConfig struct {
	Name   string        `json:"name"`
	Frames []FrameConfig `json:"frames"`
}

// FrameConfig is a single frame in a kinematics JSON file. Supported types are
// "static", "revolute", and "prismatic". Angles are specified in degrees,
// distances in mm.
type FrameConfig struct {
	Type        string     `json:"type"`
	Name        string     `json:"name"`
	Translation r3.Vector  `json:"translation,omitempty"`
	Orientation *AxisAngle `json:"orientation,omitempty"`
	Axis        r3.Vector  `json:"axis,omitempty"`
	Min         float64    `json:"min,omitempty"`
	Max         float64    `json:"max,omitempty"`
}

// AxisAngle is the JSON representation of an axis angle orientation, with the angle in degrees.
type AxisAngle struct {
	Th float64 `json:"th"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	Z  float64 `json:"z"`
}

// UnmarshalModelJSON will parse the given JSON data into a kinematics model. modelName sets the name of the model,
// will use the name from the JSON if string is empty.
func UnmarshalModelJSON(jsonData []byte, modelName string) (Model, error) {
	// empty data probably means that the robot component has no model information
	if len(jsonData) == 0 {
		return nil, ErrNoModelInformation
	}

	cfg := &ModelConfig{}
	if err := json.Unmarshal(jsonData, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal model json")
	}
	return cfg.ParseConfig(modelName)
}

// ParseModelJSONFile will read a given file and parse it into a kinematics model.
func ParseModelJSONFile(filename, modelName string) (Model, error) {
	//nolint:gosec
	jsonData, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read model json file")
	}
	return UnmarshalModelJSON(jsonData, modelName)
}

// ParseConfig converts the ModelConfig struct into a full Model with the name modelName.
func (cfg *ModelConfig) ParseConfig(modelName string) (Model, error) {
	if modelName == "" {
		modelName = cfg.Name
	}

	model := NewSimpleModel(modelName)
	for _, frameCfg := range cfg.Frames {
		frame, err := frameCfg.ParseConfig()
		if err != nil {
			return nil, err
		}
		model.OrdTransforms = append(model.OrdTransforms, frame)
	}
	if len(model.OrdTransforms) == 0 {
		return nil, ErrNoModelInformation
	}
	return model, nil
}

// ParseConfig converts a single FrameConfig into a Frame.
func (cfg *FrameConfig) ParseConfig() (Frame, error) {
	switch cfg.Type {
	case "static":
		orientation := spatial.NewZeroOrientation()
		if cfg.Orientation != nil {
			orientation = &spatial.R4AA{
				Theta: degToRad(cfg.Orientation.Th),
				RX:    cfg.Orientation.X,
				RY:    cfg.Orientation.Y,
				RZ:    cfg.Orientation.Z,
			}
		}
		return NewStaticFrame(cfg.Name, spatial.NewPose(cfg.Translation, orientation))
	case "revolute":
		return NewRotationalFrame(
			cfg.Name,
			spatial.R4AA{RX: cfg.Axis.X, RY: cfg.Axis.Y, RZ: cfg.Axis.Z},
			Limit{Min: degToRad(cfg.Min), Max: degToRad(cfg.Max)},
		)
	case "prismatic":
		return NewTranslationalFrame(cfg.Name, cfg.Axis, Limit{Min: cfg.Min, Max: cfg.Max})
	default:
		return nil, NewUnsupportedFrameTypeError(cfg.Type)
	}
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}
