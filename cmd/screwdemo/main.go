// Command screwdemo plans a screw-constrained trajectory for a kinematic model
// described by a JSON file, e.g. turning a valve or swinging a door open.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/viam-labs/screwplan"
	"github.com/viam-labs/screwplan/ik"
	"github.com/viam-labs/screwplan/referenceframe"
	spatial "github.com/viam-labs/screwplan/spatialmath"
)

func main() {
	logger := golog.NewDevelopmentLogger("screwdemo")
	app := &cli.App{
		Name:  "screwdemo",
		Usage: "plan a screw-constrained joint trajectory for a kinematic model",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "model",
				Usage:    "path to a kinematics model JSON file",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "start",
				Usage: "comma-separated start joint positions, radians/mm",
				Value: "",
			},
			&cli.Float64SliceFlag{
				Name:  "axis",
				Usage: "screw axis direction x,y,z",
				Value: cli.NewFloat64Slice(0, 0, 1),
			},
			&cli.Float64SliceFlag{
				Name:  "point",
				Usage: "a point on the screw axis, mm",
				Value: cli.NewFloat64Slice(0, 0, 0),
			},
			&cli.Float64Flag{
				Name:  "pitch",
				Usage: "translation along the axis per radian, mm",
				Value: 0,
			},
			&cli.Float64Flag{
				Name:  "theta",
				Usage: "total rotation to travel, radians",
				Value: 1.57,
			},
			&cli.Int64Flag{
				Name:  "seed",
				Usage: "random seed",
				Value: 1,
			},
		},
		Action: func(c *cli.Context) error {
			return runDemo(c, logger)
		},
	}
	if err := app.Run(os.Args); err != nil {
		logger.Fatal(err)
	}
}

func runDemo(c *cli.Context, logger golog.Logger) error {
	model, err := referenceframe.ParseModelJSONFile(c.String("model"), "")
	if err != nil {
		return err
	}

	start, err := parseJoints(c.String("start"), len(model.DoF()))
	if err != nil {
		return err
	}

	solver, err := ik.NewGradientSolver(model, logger, -1, true)
	if err != nil {
		return err
	}
	kin := screwplan.NewModelKinematics(model, solver, nil, logger)

	opts := screwplan.NewBasicOptions()
	opts.RandSeed = c.Int64("seed")
	planner, err := screwplan.NewPlanner(kin, logger, opts)
	if err != nil {
		return err
	}

	req := &screwplan.Request{
		Screw: spatial.ScrewAxis{
			Axis:  sliceToVector(c.Float64Slice("axis")),
			Point: sliceToVector(c.Float64Slice("point")),
			Pitch: c.Float64("pitch"),
		},
		ThetaMax:    c.Float64("theta"),
		StartJoints: start,
		EEFrameName: model.Name(),
		MoveGroup:   model.Name(),
	}

	res, outcome, err := planner.Plan(context.Background(), req)
	logger.Infow("planning finished",
		"outcome", outcome.String(),
		"valid", res.TrajectoryValid,
		"percentComplete", res.PercentComplete,
		"states", len(res.Trajectory),
		"pathLength", res.PathLength,
	)
	if err != nil {
		return err
	}

	fmt.Println(strings.Join(res.JointNames, "\t"))
	for _, point := range res.Trajectory {
		cols := make([]string, 0, len(point))
		for _, v := range point {
			cols = append(cols, strconv.FormatFloat(v, 'f', 4, 64))
		}
		fmt.Println(strings.Join(cols, "\t"))
	}
	return nil
}

func parseJoints(arg string, dof int) ([]referenceframe.Input, error) {
	if arg == "" {
		return referenceframe.FloatsToInputs(make([]float64, dof)), nil
	}
	parts := strings.Split(arg, ",")
	values := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, errors.Wrapf(err, "could not parse start joint %q", part)
		}
		values = append(values, v)
	}
	if len(values) != dof {
		return nil, errors.Errorf("model has %d joint variables but %d start positions were given", dof, len(values))
	}
	return referenceframe.FloatsToInputs(values), nil
}

func sliceToVector(s []float64) r3.Vector {
	if len(s) != 3 {
		return r3.Vector{}
	}
	return r3.Vector{X: s[0], Y: s[1], Z: s[2]}
}
