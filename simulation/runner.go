package simulation

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r2"
	"github.com/google/uuid"
	goutils "go.viam.com/utils"

	"go.viam.com/dwa/logging"
	"go.viam.com/dwa/motionplan/dwa"
)

// Planner is the part of *dwa.Planner the runner drives.
type Planner interface {
	Parameters() dwa.Parameters
	PlanDetailed(ctx context.Context, state dwa.RobotState, obstacles []dwa.Obstacle, goal r2.Point) (*dwa.PlanResult, error)
}

// Runner executes episodes. It is safe to reuse; every Run starts from a fresh robot state.
type Runner struct {
	planner Planner
	clock   clock.Clock
	logger  logging.Logger
}

// NewRunner returns a runner driving planner. A nil clk uses the wall clock.
func NewRunner(planner Planner, clk clock.Clock, logger logging.Logger) *Runner {
	if clk == nil {
		clk = clock.New()
	}
	return &Runner{planner: planner, clock: clk, logger: logger}
}

// tickPeriod converts dt seconds to a duration.
func tickPeriod(dt float64) time.Duration {
	return time.Duration(dt * float64(time.Second))
}

// Run ticks the robot from sc.Start until it is within sc.GoalTolerance of sc.Goal, sc.MaxTicks
// ticks have run, it has been told to stop for n_paths consecutive ticks, or ctx is done. On
// cancellation the partial episode is returned along with ctx.Err().
func (r *Runner) Run(ctx context.Context, sc Scenario) (*Episode, error) {
	params := r.planner.Parameters()
	period := tickPeriod(params.Dt)
	state := dwa.NewRobotState(sc.Start.X, sc.Start.Y, InitialHeading)
	ep := &Episode{ID: uuid.New(), Scenario: sc, Start: state}

	var ticker *clock.Ticker
	if sc.Realtime {
		ticker = r.clock.Ticker(period)
		defer ticker.Stop()
	}

	r.logger.Infow("starting episode",
		"episode", ep.ID.String(),
		"start", sc.Start.String(),
		"goal", sc.Goal.String(),
		"obstacles", len(sc.Obstacles),
		"realtime", sc.Realtime,
	)
	stopped := 0
	for tick := 0; ; tick++ {
		if state.Position().Sub(sc.Goal).Norm() <= sc.GoalTolerance {
			ep.Outcome = Reached
			break
		}
		if tick >= sc.MaxTicks {
			ep.Outcome = TimedOut
			break
		}

		started := r.clock.Now()
		res, err := r.planner.PlanDetailed(ctx, state, sc.Obstacles, sc.Goal)
		if err != nil {
			if ctx.Err() != nil {
				ep.Outcome = Canceled
				return ep, ctx.Err()
			}
			return nil, err
		}
		planTime := r.clock.Since(started)
		if planTime > period {
			ep.Overruns++
			r.logger.Warnw("planning overran the tick", "tick", tick, "plan_time", planTime.String(), "dt", period.String())
		}

		best := res.Best
		state.Update(best.V, best.Omega, params.Dt)
		ep.Steps = append(ep.Steps, Step{State: state, Command: best, Clearance: best.Clearance, PlanTime: planTime})
		ep.Last = res

		if best.V == 0 && best.Omega == 0 {
			stopped++
		} else {
			stopped = 0
		}
		if params.NPaths > 0 && stopped >= params.NPaths {
			ep.Outcome = Stalled
			break
		}

		if ticker != nil && !goutils.SelectContextOrWaitChan(ctx, ticker.C) {
			ep.Outcome = Canceled
			return ep, ctx.Err()
		}
	}

	r.logger.Infow("episode finished", "episode", ep.ID.String(), "outcome", ep.Outcome.String(), "ticks", len(ep.Steps))
	return ep, nil
}
