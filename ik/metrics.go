// Package ik contains tools for solving inverse kinematics: producing joint configurations
// which, run through forward kinematics, yield a desired end effector pose.
package ik

import (
	"math"

	"github.com/viam-labs/screwplan/referenceframe"
	spatial "github.com/viam-labs/screwplan/spatialmath"
)

const orientationDistanceScaling = 10.

// State contains the information a metric needs to score a single configuration.
// The Position field may be nil, to be filled in by whoever owns the Frame.
type State struct {
	Position      spatial.Pose
	Configuration []referenceframe.Input
	Frame         referenceframe.Frame
}

// Segment contains the information a metric needs to score a movement between two configurations.
// Pose fields may be nil, to be filled in by whoever owns the Frame.
type Segment struct {
	StartPosition      spatial.Pose
	EndPosition        spatial.Pose
	StartConfiguration []referenceframe.Input
	EndConfiguration   []referenceframe.Input
	Frame              referenceframe.Frame
}

// StateMetric are functions which, given a State, produce some score. Lower is better.
// This is used for gradient descent to converge upon a goal pose, for example.
type StateMetric func(*State) float64

// SegmentMetric are functions which produce some score given a Segment. Lower is better.
// This is used to sort produced IK solutions by goodness, for example.
type SegmentMetric func(*Segment) float64

// NewZeroMetric always returns zero as the distance between two points.
func NewZeroMetric() StateMetric {
	return func(from *State) float64 { return 0 }
}

// CombineMetrics will take a variable number of metrics and return a new metric combining
// all given metrics into one, summing their distances.
func CombineMetrics(metrics ...StateMetric) StateMetric {
	return func(state *State) float64 {
		dist := 0.
		for _, metric := range metrics {
			dist += metric(state)
		}
		return dist
	}
}

// NewSquaredNormMetric is the default distance function between two poses to be used for gradient descent.
func NewSquaredNormMetric(goal spatial.Pose) StateMetric {
	weightedSqNormDist := func(query *State) float64 {
		delta := spatial.PoseDelta(goal, query.Position)
		// Increase weight for orientation since it's a small number
		return delta.Point().Norm2() + spatial.QuatToR3AA(delta.Orientation().Quaternion()).Mul(orientationDistanceScaling).Norm2()
	}
	return weightedSqNormDist
}

// JointMetric is a metric which will sum the absolute differences in each input from start to end.
func JointMetric(segment *Segment) float64 {
	jScore := 0.
	for i, f := range segment.StartConfiguration {
		jScore += math.Abs(f.Value - segment.EndConfiguration[i].Value)
	}
	return jScore
}

// L2InputMetric is a metric which will return the L2 norm of the StartConfiguration and EndConfiguration in a segment.
func L2InputMetric(segment *Segment) float64 {
	return referenceframe.InputsL2Distance(segment.StartConfiguration, segment.EndConfiguration)
}
