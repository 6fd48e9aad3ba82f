package prm

import (
	"context"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	gpath "gonum.org/v1/gonum/graph/path"
)

// Path is an ordered sequence of states through the planned space.
type Path struct {
	states [][]float64
}

// States returns the ordered states of the path.
func (p *Path) States() [][]float64 {
	return p.states
}

// Length returns the summed L2 distance along the path.
func (p *Path) Length() float64 {
	length := 0.
	for i := 1; i < len(p.states); i++ {
		length += floats.Distance(p.states[i-1], p.states[i], 2)
	}
	return length
}

// extractPath queries the roadmap for the cheapest start-to-goal route, returning nil if
// no start milestone is connected to any goal milestone yet.
func (mp *Planner) extractPath() *Path {
	var bestNodes []*milestone
	bestWeight := math.Inf(1)
	for _, startID := range mp.startIDs {
		shortest := gpath.DijkstraFrom(mp.graph.Node(startID), mp.graph)
		for _, goalID := range mp.goalIDs {
			nodes, weight := shortest.To(goalID)
			if len(nodes) == 0 || weight >= bestWeight {
				continue
			}
			route := make([]*milestone, 0, len(nodes))
			for _, n := range nodes {
				route = append(route, mp.milestones[n.ID()])
			}
			bestNodes = route
			bestWeight = weight
		}
	}
	if bestNodes == nil {
		return nil
	}

	states := make([][]float64, 0, len(bestNodes))
	for _, m := range bestNodes {
		states = append(states, m.q)
	}
	return &Path{states: states}
}

// Simplify attempts to shortcut the path by connecting non-adjacent states directly,
// within the given time budget. It is best-effort and always returns a usable path.
func (mp *Planner) Simplify(ctx context.Context, path *Path, budget time.Duration) *Path {
	if path == nil || len(path.states) < 3 {
		return path
	}
	states := make([][]float64, len(path.states))
	copy(states, path.states)

	deadline := time.Now().Add(budget)
	for time.Now().Before(deadline) && len(states) > 2 {
		select {
		case <-ctx.Done():
			return &Path{states: states}
		default:
		}
		// Intn returns an int in the half-open interval [0,n)
		i := mp.randseed.Intn(len(states) - 2)
		j := i + 2 + mp.randseed.Intn(len(states)-i-2)
		if mp.segmentValid(states[i], states[j]) {
			states = append(states[:i+1], states[j:]...)
		}
	}
	return &Path{states: states}
}

// Interpolate subdivides each segment of the path so that no two consecutive states are
// further apart than the configured resolution.
func (mp *Planner) Interpolate(path *Path) *Path {
	if path == nil || len(path.states) < 2 {
		return path
	}
	states := [][]float64{path.states[0]}
	for i := 1; i < len(path.states); i++ {
		from, to := path.states[i-1], path.states[i]
		steps := int(floats.Distance(from, to, 2)/mp.cfg.Resolution) + 1
		for s := 1; s <= steps; s++ {
			states = append(states, interpolateStates(from, to, float64(s)/float64(steps)))
		}
	}
	return &Path{states: states}
}
