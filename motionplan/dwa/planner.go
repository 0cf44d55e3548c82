// Package dwa implements a Dynamic Window Approach local planner for a differential drive robot
// among static circular obstacles. Each control tick the planner searches the velocities reachable
// within one tick, discards commands the robot could not stop from before reaching an obstacle,
// and picks the command that best trades off heading towards the goal, clearance and speed.
package dwa

import (
	"context"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"

	"go.viam.com/dwa/logging"
)

// PlanResult is everything one planning tick produced.
type PlanResult struct {
	Window     VelocityWindow
	Candidates []*Candidate
	Best       *Candidate
}

// Option configures a Planner.
type Option func(*Planner)

// WithParallelism spreads collision checking over n workers. n <= 1 plans on the calling
// goroutine.
func WithParallelism(n int) Option {
	return func(p *Planner) {
		p.workers = n
	}
}

// Planner runs the per-tick pipeline: window, candidate generation with collision filtering, and
// scoring. It holds no state between ticks.
type Planner struct {
	params  Parameters
	logger  logging.Logger
	workers int
}

// NewPlanner validates params and returns a planner using them.
func NewPlanner(params Parameters, logger logging.Logger, opts ...Option) (*Planner, error) {
	if err := params.Validate("planner"); err != nil {
		return nil, errors.Wrap(err, "invalid planner parameters")
	}
	p := &Planner{params: params, logger: logger, workers: 1}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Parameters returns the planner's parameters.
func (p *Planner) Parameters() Parameters {
	return p.params
}

// Plan returns the command to execute for the next tick.
func (p *Planner) Plan(ctx context.Context, state RobotState, obstacles []Obstacle, goal r2.Point) (*Candidate, error) {
	res, err := p.PlanDetailed(ctx, state, obstacles, goal)
	if err != nil {
		return nil, err
	}
	return res.Best, nil
}

// PlanDetailed is Plan but also returns the window and the admissible candidates, for rendering
// and diagnostics. The context is only checked between stages.
func (p *Planner) PlanDetailed(ctx context.Context, state RobotState, obstacles []Obstacle, goal r2.Point) (*PlanResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res := &PlanResult{Window: ComputeWindow(state, p.params)}
	if res.Window.Empty() {
		p.logger.Warnw("dynamic window is empty, stopping", "window", res.Window.String())
		res.Best = SelectBest(state, nil, goal, p.params)
		return res, nil
	}

	if p.workers > 1 {
		candidates, err := generateCandidatesParallel(ctx, p.workers, state, res.Window, obstacles, p.params)
		if err != nil {
			return nil, err
		}
		res.Candidates = candidates
	} else {
		res.Candidates = GenerateCandidates(state, res.Window, obstacles, p.params)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res.Best = SelectBest(state, res.Candidates, goal, p.params)
	p.logger.CDebugw(ctx, "planned tick",
		"window", res.Window.String(),
		"admissible", len(res.Candidates),
		"v", res.Best.V,
		"omega", res.Best.Omega,
		"clearance", res.Best.Clearance,
	)
	return res, nil
}
