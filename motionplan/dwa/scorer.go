package dwa

import (
	"math"

	"github.com/golang/geo/r2"

	"go.viam.com/dwa/utils"
)

// Score is the breakdown of a candidate's objective value. The normalized terms lie in [0, 1].
type Score struct {
	Heading   float64
	Clearance float64
	Velocity  float64
	Total     float64
}

// ScoreCandidate evaluates candidate against the goal:
//
//	G = gain_alpha*heading + gain_beta*clearance + gain_gamma*velocity
//
// The heading term compares the heading predicted by Simulate with the bearing to the goal.
func ScoreCandidate(state RobotState, candidate *Candidate, goal r2.Point, params Parameters) Score {
	_, _, predictedTheta := state.Simulate(candidate.V, candidate.Omega, params)
	goalBearing := bearing(state.X, state.Y, goal.X, goal.Y)
	headingError := math.Mod(math.Abs(utils.RadToDeg(predictedTheta-goalBearing)), 360)

	s := Score{
		Heading:   utils.Normalize(180-headingError, -180, 180),
		Clearance: utils.Normalize(math.Min(candidate.Clearance, params.LargeDist), 0, params.LargeDist),
		Velocity:  utils.Normalize(candidate.V, params.MinV, params.MaxV),
	}
	s.Total = params.GainAlpha*s.Heading + params.GainBeta*s.Clearance + params.GainGamma*s.Velocity
	return s
}

// SelectBest returns the highest scoring candidate, marked Optimal. Ties go to the earliest
// candidate. If no candidate scores above zero, including when there are none, the result is the
// zero-velocity stop command. The Optimal flag is cleared on every other candidate.
func SelectBest(state RobotState, candidates []*Candidate, goal r2.Point, params Parameters) *Candidate {
	var best *Candidate
	bestScore := 0.0
	for _, c := range candidates {
		c.Optimal = false
		if score := ScoreCandidate(state, c, goal, params).Total; score > bestScore {
			best, bestScore = c, score
		}
	}
	if best == nil {
		best = StopCandidate(state, params)
	}
	best.Optimal = true
	return best
}
