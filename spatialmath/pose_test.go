package spatialmath

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestPoseCompose(t *testing.T) {
	a := NewPose(r3.Vector{X: 0, Y: 0, Z: 5}, &R4AA{Theta: math.Pi / 2, RZ: 1})
	b := NewPoseFromPoint(r3.Vector{X: 10, Y: 0, Z: 0})

	// Composing a rotation with a translation rotates the translation.
	c := Compose(a, b)
	test.That(t, R3VectorAlmostEqual(c.Point(), r3.Vector{X: 0, Y: 10, Z: 5}, 1e-6), test.ShouldBeTrue)

	// Composition with the identity is a no-op.
	test.That(t, PoseAlmostEqual(Compose(a, NewZeroPose()), a), test.ShouldBeTrue)
	test.That(t, PoseAlmostEqual(Compose(NewZeroPose(), a), a), test.ShouldBeTrue)
}

func TestPoseInverse(t *testing.T) {
	p := NewPose(r3.Vector{X: 1, Y: 2, Z: 3}, &R4AA{Theta: 1.1, RX: 0.2, RY: 0.5, RZ: 0.3})
	test.That(t, PoseAlmostEqual(Compose(p, PoseInverse(p)), NewZeroPose()), test.ShouldBeTrue)
}

func TestPoseBetween(t *testing.T) {
	a := NewPose(r3.Vector{X: 5, Y: 0, Z: 0}, &R4AA{Theta: math.Pi / 4, RZ: 1})
	b := NewPose(r3.Vector{X: 0, Y: 7, Z: 2}, &R4AA{Theta: 1.2, RX: 1})
	test.That(t, PoseAlmostEqual(Compose(a, PoseBetween(a, b)), b), test.ShouldBeTrue)
}

func TestPoseAlmostCoincident(t *testing.T) {
	a := NewPoseFromPoint(r3.Vector{X: 1, Y: 1, Z: 1})
	b := NewPoseFromPoint(r3.Vector{X: 1.05, Y: 1, Z: 1})
	test.That(t, PoseAlmostCoincident(a, b), test.ShouldBeTrue)
	test.That(t, PoseAlmostCoincidentEps(a, b, 0.01), test.ShouldBeFalse)
}

func TestOrientationBetween(t *testing.T) {
	a := &R4AA{Theta: 0.3, RZ: 1}
	b := &R4AA{Theta: 0.8, RZ: 1}
	diff := QuatToR4AA(OrientationBetween(a, b).Quaternion())
	test.That(t, diff.Theta, test.ShouldAlmostEqual, 0.5, 1e-6)
}
