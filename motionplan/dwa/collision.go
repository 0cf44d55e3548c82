package dwa

import (
	"math"
)

// CheckCollision predicts whether following candidate from state would be unsafe given the
// obstacles. It returns the collision verdict and the clearance: the distance to the nearest
// obstacle threatening the trajectory, or params.LargeDist if none does.
//
// A candidate is a collision when the robot could not stop before that clearance is used up at
// maximum deceleration, i.e. v >= sqrt(2*clearance*max_a) or |omega| >= sqrt(2*clearance*max_alpha).
func CheckCollision(state RobotState, candidate *Candidate, obstacles []Obstacle, params Parameters) (bool, float64) {
	var clearance float64
	switch g := candidate.Geometry.(type) {
	case Curved:
		clearance = arcClearance(state, g, obstacles, params)
	case Straight:
		clearance = straightClearance(state, obstacles, params)
	default:
		// Geometry is closed over Straight and Curved.
		panic("unreachable")
	}

	clearance = math.Max(clearance, 0)
	vLimit := math.Sqrt(2 * clearance * params.MaxA)
	omegaLimit := math.Sqrt(2 * clearance * params.MaxAlpha)
	collision := candidate.V >= vLimit || math.Abs(candidate.Omega) >= omegaLimit
	return collision, clearance
}

// arcClearance sweeps an annulus of width 2*r_bot along the arc. Every obstacle overlapping the
// annulus threatens the arc; its clearance is the arc length between the robot and the obstacle's
// bearing around the arc center.
func arcClearance(state RobotState, arc Curved, obstacles []Obstacle, params Parameters) float64 {
	radius := math.Abs(arc.R)
	inner := radius - params.RBot
	outer := radius + params.RBot
	center := arc.Center()
	robotBearing := bearing(center.X, center.Y, state.X, state.Y)

	clearance := params.LargeDist
	for _, o := range obstacles {
		d := o.Center().Sub(center).Norm()
		if !(outer+o.R >= d && d > inner-o.R) {
			continue
		}
		obstacleBearing := bearing(center.X, center.Y, o.X, o.Y)
		clearance = math.Min(clearance, math.Abs(robotBearing-obstacleBearing)*radius)
	}
	return clearance
}

// straightClearance checks each obstacle against the corridor of half-angle
// asin((r_bot + r_obstacle)/dist) around the current heading.
func straightClearance(state RobotState, obstacles []Obstacle, params Parameters) float64 {
	robot := state.Position()
	clearance := params.LargeDist
	for _, o := range obstacles {
		d := o.Center().Sub(robot).Norm()
		reach := params.RBot + o.R
		if d < reach || d == 0 {
			// Already overlapping, or touching with zero radii; asin would be out of its domain.
			return 0
		}
		delta := math.Asin(reach / d)
		if math.Abs(wrapToPi(bearing(state.X, state.Y, o.X, o.Y)-state.Theta)) <= delta {
			clearance = math.Min(clearance, d)
		}
	}
	return clearance
}

func bearing(fromX, fromY, toX, toY float64) float64 {
	return math.Atan2(toY-fromY, toX-fromX)
}

// wrapToPi returns theta in the [-pi, pi) range.
func wrapToPi(theta float64) float64 {
	return theta - 2*math.Pi*math.Floor((theta+math.Pi)/(2*math.Pi))
}
