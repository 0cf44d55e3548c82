package dwa

import (
	"context"
	"testing"

	"go.uber.org/zap/zapcore"
	"go.viam.com/test"

	"go.viam.com/dwa/logging"
)

func TestNewPlannerValidates(t *testing.T) {
	logger := logging.NewTestLogger(t)
	p := testParams()
	p.Dt = 0
	_, err := NewPlanner(p, logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "invalid planner parameters")
	test.That(t, err.Error(), test.ShouldContainSubstring, `"dt"`)

	planner, err := NewPlanner(testParams(), logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, planner.Parameters(), test.ShouldResemble, testParams())
}

func TestPlan(t *testing.T) {
	logger, logs := logging.NewObservedTestLogger(t)
	p := testParams()
	p.VStep = 0.01
	p.OmegaStep = 0.01
	planner, err := NewPlanner(p, logger)
	test.That(t, err, test.ShouldBeNil)

	state := RobotState{X: 0, Y: 0, Theta: 0, V: 0.5}
	obstacles := []Obstacle{{X: 2, Y: 0.1, R: 0.2}}
	goal := r2Point(10, 0)

	res, err := planner.PlanDetailed(context.Background(), state, obstacles, goal)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res.Window, test.ShouldResemble, ComputeWindow(state, p))
	test.That(t, commandsOf(res.Candidates), test.ShouldResemble,
		commandsOf(GenerateCandidates(state, res.Window, obstacles, p)))
	test.That(t, res.Best.Optimal, test.ShouldBeTrue)
	test.That(t, res.Best.V, test.ShouldBeGreaterThanOrEqualTo, res.Window.MinV)
	test.That(t, res.Best.V, test.ShouldBeLessThanOrEqualTo, res.Window.MaxV)
	test.That(t, res.Best.Omega, test.ShouldBeGreaterThanOrEqualTo, res.Window.MinOmega)
	test.That(t, res.Best.Omega, test.ShouldBeLessThanOrEqualTo, res.Window.MaxOmega)

	debug := logs.FilterMessage("planned tick")
	test.That(t, debug.Len(), test.ShouldEqual, 1)
	entry := debug.All()[0]
	test.That(t, entry.Level, test.ShouldEqual, zapcore.DebugLevel)
	test.That(t, entry.ContextMap()["admissible"], test.ShouldEqual, int64(len(res.Candidates)))

	best, err := planner.Plan(context.Background(), state, obstacles, goal)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, best.V, test.ShouldEqual, res.Best.V)
	test.That(t, best.Omega, test.ShouldEqual, res.Best.Omega)
}

func TestPlanParallelMatchesSequential(t *testing.T) {
	logger := logging.NewTestLogger(t)
	p := testParams()
	p.VStep = 0.005
	p.OmegaStep = 0.005
	sequential, err := NewPlanner(p, logger)
	test.That(t, err, test.ShouldBeNil)
	parallel, err := NewPlanner(p, logger, WithParallelism(4))
	test.That(t, err, test.ShouldBeNil)

	state := RobotState{X: 3, Y: 3, Theta: 1, V: 0.4, Omega: 0.2}
	obstacles := []Obstacle{{X: 3.5, Y: 4, R: 0.2}, {X: 2.5, Y: 4.2, R: 0.2}, {X: 4, Y: 3.5, R: 0.2}}
	goal := r2Point(10, 10)

	for i := 0; i < 5; i++ {
		want, err := sequential.PlanDetailed(context.Background(), state, obstacles, goal)
		test.That(t, err, test.ShouldBeNil)
		got, err := parallel.PlanDetailed(context.Background(), state, obstacles, goal)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, commandsOf(got.Candidates), test.ShouldResemble, commandsOf(want.Candidates))
		test.That(t, got.Best.V, test.ShouldEqual, want.Best.V)
		test.That(t, got.Best.Omega, test.ShouldEqual, want.Best.Omega)
		state.Update(want.Best.V, want.Best.Omega, p.Dt)
	}
}

func TestPlanCanceled(t *testing.T) {
	planner, err := NewPlanner(testParams(), logging.NewTestLogger(t), WithParallelism(2))
	test.That(t, err, test.ShouldBeNil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = planner.Plan(ctx, NewRobotState(0, 0, 0), nil, r2Point(1, 1))
	test.That(t, err, test.ShouldBeError, context.Canceled)
}

func TestPlanEmptyWindowStops(t *testing.T) {
	logger, logs := logging.NewObservedTestLogger(t)
	p := testParams()
	planner, err := NewPlanner(p, logger)
	test.That(t, err, test.ShouldBeNil)

	// Moving faster than max_v allows: the window cannot reach back into the limits in one tick.
	state := RobotState{V: 2}
	res, err := planner.PlanDetailed(context.Background(), state, nil, r2Point(10, 10))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res.Window.Empty(), test.ShouldBeTrue)
	test.That(t, res.Candidates, test.ShouldBeEmpty)
	test.That(t, res.Best.V, test.ShouldEqual, 0)
	test.That(t, res.Best.Omega, test.ShouldEqual, 0)
	test.That(t, res.Best.Optimal, test.ShouldBeTrue)
	test.That(t, logs.FilterMessage("dynamic window is empty, stopping").Len(), test.ShouldEqual, 1)
}
