package simulation

import (
	"time"

	"github.com/golang/geo/r2"
	"github.com/google/uuid"
	"github.com/montanaflynn/stats"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"go.viam.com/dwa/motionplan/dwa"
)

// Outcome is how an episode ended.
type Outcome int

// Episode outcomes.
const (
	Reached Outcome = iota
	Stalled
	TimedOut
	Canceled
)

func (o Outcome) String() string {
	switch o {
	case Reached:
		return "reached"
	case Stalled:
		return "stalled"
	case TimedOut:
		return "timed out"
	case Canceled:
		return "canceled"
	}
	return "unknown"
}

// Step is one executed tick.
type Step struct {
	// State is the robot state after executing Command.
	State     dwa.RobotState
	Command   *dwa.Candidate
	Clearance float64
	PlanTime  time.Duration
}

// Episode is the record of one run.
type Episode struct {
	ID       uuid.UUID
	Scenario Scenario
	Start    dwa.RobotState
	Steps    []Step
	Outcome  Outcome
	// Overruns counts ticks whose planning took longer than dt.
	Overruns int
	// Last is the final planning result, kept for rendering the last candidate set.
	Last *dwa.PlanResult
}

// Final returns the robot state at the end of the episode.
func (ep *Episode) Final() dwa.RobotState {
	if len(ep.Steps) == 0 {
		return ep.Start
	}
	return ep.Steps[len(ep.Steps)-1].State
}

// Positions returns the robot path, starting with the start position.
func (ep *Episode) Positions() []r2.Point {
	return append([]r2.Point{ep.Start.Position()},
		lo.Map(ep.Steps, func(s Step, _ int) r2.Point { return s.State.Position() })...)
}

// Summary is aggregate statistics of an episode.
type Summary struct {
	Outcome       Outcome
	Ticks         int
	PathLength    float64
	MeanSpeed     float64
	MaxSpeed      float64
	MinClearance  float64
	FinalDistance float64
	MeanPlanTime  time.Duration
	P95PlanTime   time.Duration
	Overruns      int
}

// Summary computes the episode statistics. Speed and clearance statistics are zero for an episode
// with no ticks.
func (ep *Episode) Summary() Summary {
	s := Summary{
		Outcome:       ep.Outcome,
		Ticks:         len(ep.Steps),
		FinalDistance: ep.Final().Position().Sub(ep.Scenario.Goal).Norm(),
		Overruns:      ep.Overruns,
	}

	positions := ep.Positions()
	for i := 1; i < len(positions); i++ {
		s.PathLength += floats.Distance(
			[]float64{positions[i-1].X, positions[i-1].Y},
			[]float64{positions[i].X, positions[i].Y},
			2,
		)
	}

	if len(ep.Steps) == 0 {
		return s
	}
	speeds := lo.Map(ep.Steps, func(st Step, _ int) float64 { return st.Command.V })
	clearances := lo.Map(ep.Steps, func(st Step, _ int) float64 { return st.Clearance })
	planTimes := lo.Map(ep.Steps, func(st Step, _ int) float64 { return float64(st.PlanTime) })
	s.MeanSpeed = stat.Mean(speeds, nil)
	s.MaxSpeed = floats.Max(speeds)
	s.MinClearance = floats.Min(clearances)
	s.MeanPlanTime = time.Duration(stat.Mean(planTimes, nil))
	if p95, err := stats.Percentile(planTimes, 95); err == nil {
		s.P95PlanTime = time.Duration(p95)
	}
	return s
}
