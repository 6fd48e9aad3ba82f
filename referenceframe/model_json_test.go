package referenceframe

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	spatial "github.com/viam-labs/screwplan/spatialmath"
)

func TestParseModelJSONFile(t *testing.T) {
	model, err := ParseModelJSONFile(filepath.Join("testdata", "simple_arm.json"), "")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, model.Name(), test.ShouldEqual, "simple_arm")

	dof := model.DoF()
	test.That(t, dof, test.ShouldHaveLength, 3)
	test.That(t, dof[0].Min, test.ShouldAlmostEqual, -math.Pi, 1e-8)
	test.That(t, dof[0].Max, test.ShouldAlmostEqual, math.Pi, 1e-8)
	// prismatic limits are in mm, not converted
	test.That(t, dof[2].Max, test.ShouldEqual, 100)

	// all joints at zero: base lift plus two extended links
	pose, err := model.Transform(FloatsToInputs([]float64{0, 0, 0}))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatial.R3VectorAlmostEqual(pose.Point(), r3.Vector{X: 350, Y: 0, Z: 50}, 1e-6), test.ShouldBeTrue)

	// extending the end prismatic moves along its -z axis
	pose, err = model.Transform(FloatsToInputs([]float64{0, 0, 30}))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatial.R3VectorAlmostEqual(pose.Point(), r3.Vector{X: 350, Y: 0, Z: 20}, 1e-6), test.ShouldBeTrue)

	// overriding the model name
	model, err = ParseModelJSONFile(filepath.Join("testdata", "simple_arm.json"), "renamed")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, model.Name(), test.ShouldEqual, "renamed")
}

func TestUnmarshalModelJSONErrors(t *testing.T) {
	_, err := UnmarshalModelJSON([]byte{}, "")
	test.That(t, err, test.ShouldEqual, ErrNoModelInformation)

	_, err = UnmarshalModelJSON([]byte("not json"), "")
	test.That(t, err, test.ShouldNotBeNil)

	_, err = UnmarshalModelJSON([]byte(`{"name": "empty", "frames": []}`), "")
	test.That(t, err, test.ShouldEqual, ErrNoModelInformation)

	_, err = UnmarshalModelJSON([]byte(`{"name": "bad", "frames": [{"type": "helical", "name": "j"}]}`), "")
	test.That(t, err, test.ShouldNotBeNil)

	_, err = ParseModelJSONFile(filepath.Join("testdata", "missing.json"), "")
	test.That(t, err, test.ShouldNotBeNil)
}
