package simulation

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r2"
	"go.viam.com/test"

	"go.viam.com/dwa/logging"
	"go.viam.com/dwa/motionplan/dwa"
)

func testParams() dwa.Parameters {
	return dwa.Parameters{
		Dt: 0.1, MinV: 0, MaxV: 1, MaxA: 0.5, MaxOmega: 1, MaxAlpha: 0.5,
		VStep: 0.01, OmegaStep: 0.01, RBot: 0.2, RObstacle: 0.2, LargeDist: 1000,
		GainAlpha: 1, GainBeta: 1, GainGamma: 1, NObstacles: 10, NPaths: 5, GridSize: 10,
	}
}

func newTestPlanner(t *testing.T, params dwa.Parameters) *dwa.Planner {
	t.Helper()
	planner, err := dwa.NewPlanner(params, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	return planner
}

// slowPlanner advances a mock clock on every plan to simulate a slow planning tick.
type slowPlanner struct {
	*dwa.Planner
	clk   *clock.Mock
	delay time.Duration
}

func (p *slowPlanner) PlanDetailed(
	ctx context.Context, state dwa.RobotState, obstacles []dwa.Obstacle, goal r2.Point,
) (*dwa.PlanResult, error) {
	p.clk.Add(p.delay)
	return p.Planner.PlanDetailed(ctx, state, obstacles, goal)
}

// stuckPlanner always commands a stop.
type stuckPlanner struct {
	params dwa.Parameters
}

func (p stuckPlanner) Parameters() dwa.Parameters {
	return p.params
}

func (p stuckPlanner) PlanDetailed(
	ctx context.Context, state dwa.RobotState, obstacles []dwa.Obstacle, goal r2.Point,
) (*dwa.PlanResult, error) {
	stop := dwa.StopCandidate(state, p.params)
	stop.Optimal = true
	return &dwa.PlanResult{Best: stop}, nil
}

func TestRunReachesGoal(t *testing.T) {
	params := testParams()
	runner := NewRunner(newTestPlanner(t, params), clock.NewMock(), logging.NewTestLogger(t))
	sc := Scenario{Start: r2.Point{X: 0, Y: 0}, Goal: r2.Point{X: 3, Y: 0}, MaxTicks: 400, GoalTolerance: 0.5}

	ep, err := runner.Run(context.Background(), sc)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ep.Outcome, test.ShouldEqual, Reached)
	test.That(t, len(ep.Steps), test.ShouldBeGreaterThan, 0)
	test.That(t, len(ep.Steps), test.ShouldBeLessThan, sc.MaxTicks)
	test.That(t, ep.Start, test.ShouldResemble, dwa.NewRobotState(0, 0, InitialHeading))
	test.That(t, ep.Last, test.ShouldNotBeNil)

	prev := ep.Start
	for _, step := range ep.Steps {
		test.That(t, step.Command.Optimal, test.ShouldBeTrue)
		test.That(t, step.State.V, test.ShouldEqual, step.Command.V)
		test.That(t, step.State.Omega, test.ShouldEqual, step.Command.Omega)
		// Velocity changes stay within one tick of acceleration.
		test.That(t, step.State.V-prev.V, test.ShouldBeLessThanOrEqualTo, params.MaxA*params.Dt+1e-9)
		prev = step.State
	}

	summary := ep.Summary()
	test.That(t, summary.Outcome, test.ShouldEqual, Reached)
	test.That(t, summary.Ticks, test.ShouldEqual, len(ep.Steps))
	test.That(t, summary.FinalDistance, test.ShouldBeLessThanOrEqualTo, sc.GoalTolerance)
	test.That(t, summary.PathLength, test.ShouldBeGreaterThan, 2)
	test.That(t, summary.Overruns, test.ShouldEqual, 0)
}

func TestRunStartsFresh(t *testing.T) {
	runner := NewRunner(newTestPlanner(t, testParams()), clock.NewMock(), logging.NewTestLogger(t))
	sc := Scenario{
		Start:         r2.Point{X: 1, Y: 1},
		Goal:          r2.Point{X: 6, Y: 4},
		Obstacles:     []dwa.Obstacle{{X: 3, Y: 2.5, R: 0.2}},
		MaxTicks:      30,
		GoalTolerance: 0.5,
	}
	first, err := runner.Run(context.Background(), sc)
	test.That(t, err, test.ShouldBeNil)
	second, err := runner.Run(context.Background(), sc)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, second.ID, test.ShouldNotEqual, first.ID)
	test.That(t, second.Start, test.ShouldResemble, first.Start)
	test.That(t, second.Positions(), test.ShouldResemble, first.Positions())
}

func TestRunTimesOut(t *testing.T) {
	runner := NewRunner(newTestPlanner(t, testParams()), clock.NewMock(), logging.NewTestLogger(t))
	ep, err := runner.Run(context.Background(), Scenario{Goal: r2.Point{X: 9, Y: 9}, MaxTicks: 3, GoalTolerance: 0.5})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ep.Outcome, test.ShouldEqual, TimedOut)
	test.That(t, ep.Steps, test.ShouldHaveLength, 3)
}

func TestRunAlreadyAtGoal(t *testing.T) {
	runner := NewRunner(newTestPlanner(t, testParams()), clock.NewMock(), logging.NewTestLogger(t))
	ep, err := runner.Run(context.Background(), Scenario{Start: r2.Point{X: 2, Y: 2}, Goal: r2.Point{X: 2.1, Y: 2}, MaxTicks: 3, GoalTolerance: 0.5})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ep.Outcome, test.ShouldEqual, Reached)
	test.That(t, ep.Steps, test.ShouldBeEmpty)
	test.That(t, ep.Final(), test.ShouldResemble, ep.Start)
	test.That(t, ep.Summary().MeanSpeed, test.ShouldEqual, 0)
}

func TestRunStalls(t *testing.T) {
	params := testParams()
	runner := NewRunner(stuckPlanner{params}, clock.NewMock(), logging.NewTestLogger(t))
	ep, err := runner.Run(context.Background(), Scenario{Goal: r2.Point{X: 9, Y: 9}, MaxTicks: 100, GoalTolerance: 0.5})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ep.Outcome, test.ShouldEqual, Stalled)
	test.That(t, ep.Steps, test.ShouldHaveLength, params.NPaths)
}

func TestRunCountsOverruns(t *testing.T) {
	logger, logs := logging.NewObservedTestLogger(t)
	mock := clock.NewMock()
	planner := &slowPlanner{Planner: newTestPlanner(t, testParams()), clk: mock, delay: 150 * time.Millisecond}
	runner := NewRunner(planner, mock, logger)

	ep, err := runner.Run(context.Background(), Scenario{Goal: r2.Point{X: 9, Y: 9}, MaxTicks: 3, GoalTolerance: 0.5})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ep.Overruns, test.ShouldEqual, 3)
	test.That(t, logs.FilterMessage("planning overran the tick").Len(), test.ShouldEqual, 3)
	for _, step := range ep.Steps {
		test.That(t, step.PlanTime, test.ShouldEqual, 150*time.Millisecond)
	}
	test.That(t, ep.Summary().MeanPlanTime, test.ShouldEqual, 150*time.Millisecond)
	test.That(t, ep.Summary().P95PlanTime, test.ShouldEqual, 150*time.Millisecond)
}

func TestRunCanceled(t *testing.T) {
	runner := NewRunner(newTestPlanner(t, testParams()), clock.NewMock(), logging.NewTestLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ep, err := runner.Run(ctx, Scenario{Goal: r2.Point{X: 9, Y: 9}, MaxTicks: 3, GoalTolerance: 0.5})
	test.That(t, err, test.ShouldBeError, context.Canceled)
	test.That(t, ep.Outcome, test.ShouldEqual, Canceled)
	test.That(t, ep.Steps, test.ShouldBeEmpty)
}

func TestRunRealtime(t *testing.T) {
	runner := NewRunner(newTestPlanner(t, testParams()), nil, logging.NewTestLogger(t))
	sc := Scenario{Goal: r2.Point{X: 9, Y: 9}, MaxTicks: 2, GoalTolerance: 0.5, Realtime: true}

	started := time.Now()
	ep, err := runner.Run(context.Background(), sc)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ep.Outcome, test.ShouldEqual, TimedOut)
	test.That(t, time.Since(started), test.ShouldBeGreaterThanOrEqualTo, 200*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	sc.MaxTicks = 100
	ep, err = runner.Run(ctx, sc)
	test.That(t, err, test.ShouldBeError, context.DeadlineExceeded)
	test.That(t, ep.Outcome, test.ShouldEqual, Canceled)
	test.That(t, len(ep.Steps), test.ShouldBeLessThan, 100)
}

func TestPlaceObstacles(t *testing.T) {
	params := testParams()
	start := r2.Point{X: 0, Y: 0}
	goal := r2.Point{X: 10, Y: 10}

	obstacles, err := PlaceObstacles(rand.New(rand.NewSource(7)), params, start, goal)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, obstacles, test.ShouldHaveLength, params.NObstacles)
	for _, o := range obstacles {
		test.That(t, o.R, test.ShouldEqual, params.RObstacle)
		test.That(t, o.X, test.ShouldBeGreaterThanOrEqualTo, 0)
		test.That(t, o.X, test.ShouldBeLessThanOrEqualTo, params.GridSize)
		test.That(t, o.Y, test.ShouldBeGreaterThanOrEqualTo, 0)
		test.That(t, o.Y, test.ShouldBeLessThanOrEqualTo, params.GridSize)
		test.That(t, o.Center().Sub(start).Norm(), test.ShouldBeGreaterThan, params.RBot+params.RObstacle)
		test.That(t, o.Center().Sub(goal).Norm(), test.ShouldBeGreaterThan, params.RBot+params.RObstacle)
	}

	again, err := PlaceObstacles(rand.New(rand.NewSource(7)), params, start, goal)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, again, test.ShouldResemble, obstacles)

	other, err := PlaceObstacles(rand.New(rand.NewSource(8)), params, start, goal)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, other, test.ShouldNotResemble, obstacles)

	params.NObstacles = 0
	none, err := PlaceObstacles(rand.New(rand.NewSource(7)), params, start, goal)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, none, test.ShouldBeEmpty)

	// Every sample lands on the start.
	params.NObstacles = 1
	params.GridSize = 0
	_, err = PlaceObstacles(rand.New(rand.NewSource(7)), params, start, goal)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "could only place 0 of 1")
}

func TestEpisodeSummary(t *testing.T) {
	ep := &Episode{
		Scenario: Scenario{Goal: r2.Point{X: 4, Y: 5}},
		Start:    dwa.NewRobotState(0, 0, 0),
		Steps: []Step{
			{State: dwa.RobotState{X: 1, Y: 0, V: 0.5}, Command: &dwa.Candidate{V: 0.5}, Clearance: 3, PlanTime: 10 * time.Millisecond},
			{State: dwa.RobotState{X: 1, Y: 1, V: 1}, Command: &dwa.Candidate{V: 1}, Clearance: 2, PlanTime: 20 * time.Millisecond},
		},
		Outcome:  TimedOut,
		Overruns: 1,
	}
	s := ep.Summary()
	test.That(t, s.Outcome, test.ShouldEqual, TimedOut)
	test.That(t, s.Outcome.String(), test.ShouldEqual, "timed out")
	test.That(t, s.Ticks, test.ShouldEqual, 2)
	test.That(t, s.PathLength, test.ShouldAlmostEqual, 2)
	test.That(t, s.MeanSpeed, test.ShouldAlmostEqual, 0.75)
	test.That(t, s.MaxSpeed, test.ShouldEqual, 1)
	test.That(t, s.MinClearance, test.ShouldEqual, 2)
	test.That(t, s.FinalDistance, test.ShouldAlmostEqual, 5)
	test.That(t, s.MeanPlanTime, test.ShouldEqual, 15*time.Millisecond)
	test.That(t, s.Overruns, test.ShouldEqual, 1)
	test.That(t, ep.Positions(), test.ShouldResemble, []r2.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}})
}

func TestRunBatch(t *testing.T) {
	params := testParams()
	runner := NewRunner(newTestPlanner(t, params), clock.NewMock(), logging.NewTestLogger(t))

	var scenarios []Scenario
	for seed := int64(0); seed < 4; seed++ {
		sc := Scenario{Goal: r2.Point{X: 9, Y: 9}, MaxTicks: 10, GoalTolerance: 0.5}
		obstacles, err := PlaceObstacles(rand.New(rand.NewSource(seed)), params, sc.Start, sc.Goal)
		test.That(t, err, test.ShouldBeNil)
		sc.Obstacles = obstacles
		scenarios = append(scenarios, sc)
	}

	episodes, err := runner.RunBatch(context.Background(), scenarios)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, episodes, test.ShouldHaveLength, len(scenarios))
	for i, ep := range episodes {
		test.That(t, ep.Scenario.Obstacles, test.ShouldResemble, scenarios[i].Obstacles)
		single, err := runner.Run(context.Background(), scenarios[i])
		test.That(t, err, test.ShouldBeNil)
		test.That(t, ep.Positions(), test.ShouldResemble, single.Positions())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = runner.RunBatch(ctx, scenarios)
	test.That(t, err, test.ShouldBeError, context.Canceled)

	none, err := runner.RunBatch(context.Background(), nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, none, test.ShouldBeEmpty)
}
