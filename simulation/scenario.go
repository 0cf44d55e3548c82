// Package simulation runs the planner closed loop over a scenario: plan a command, execute it,
// repeat until the goal is reached or the episode ends.
package simulation

import (
	"math/rand"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"

	"go.viam.com/dwa/motionplan/dwa"
)

// InitialHeading is the heading, in radians, every episode starts from.
const InitialHeading = 0.0

// placementAttemptsPerObstacle bounds rejection sampling in PlaceObstacles.
const placementAttemptsPerObstacle = 1000

// Scenario is one start/goal problem among static obstacles.
type Scenario struct {
	Start         r2.Point
	Goal          r2.Point
	Obstacles     []dwa.Obstacle
	MaxTicks      int
	GoalTolerance float64
	// Realtime paces ticks to the planner's dt instead of running as fast as possible.
	Realtime bool
}

// PlaceObstacles places params.NObstacles obstacles of radius params.RObstacle uniformly in
// [0, grid_size]^2. No obstacle is placed within r_bot + r_obstacle of start or goal. The layout
// depends only on the state of rng.
func PlaceObstacles(rng *rand.Rand, params dwa.Parameters, start, goal r2.Point) ([]dwa.Obstacle, error) {
	keepOut := params.RBot + params.RObstacle
	obstacles := make([]dwa.Obstacle, 0, params.NObstacles)
	for attempts := 0; len(obstacles) < params.NObstacles; attempts++ {
		if attempts >= placementAttemptsPerObstacle*params.NObstacles {
			return nil, errors.Errorf("could only place %d of %d obstacles clear of start and goal",
				len(obstacles), params.NObstacles)
		}
		center := r2.Point{X: rng.Float64() * params.GridSize, Y: rng.Float64() * params.GridSize}
		if center.Sub(start).Norm() <= keepOut || center.Sub(goal).Norm() <= keepOut {
			continue
		}
		obstacles = append(obstacles, dwa.Obstacle{X: center.X, Y: center.Y, R: params.RObstacle})
	}
	return obstacles, nil
}
