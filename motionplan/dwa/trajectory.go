package dwa

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"

	"go.viam.com/dwa/utils"
)

// Geometry is the short-horizon shape of a candidate command. It is either Straight or Curved.
type Geometry interface {
	isGeometry()
}

// Straight is the geometry of a command with zero angular velocity. It runs from the robot
// position (XA, YA) to (X, Y), one unit of v along the current heading. The displacement is the
// raw velocity, not v*dt.
type Straight struct {
	XA, YA float64
	X, Y   float64
}

// Curved is the geometry of a command with non-zero angular velocity: an arc of signed radius
// R = v/omega around (CenterX, CenterY).
type Curved struct {
	CenterX, CenterY float64
	R                float64
	// Angle is the robot heading in degrees, used to orient the arc when drawing it.
	Angle float64
	// Start and End are the swept range in degrees relative to the center: [-90, 0] for a left
	// turn, [180, 270] for a right turn.
	Start, End float64
}

func (Straight) isGeometry() {}

func (Curved) isGeometry() {}

// Origin returns the robot position the segment starts from.
func (g Straight) Origin() r2.Point {
	return r2.Point{X: g.XA, Y: g.YA}
}

// End returns the segment endpoint.
func (g Straight) End() r2.Point {
	return r2.Point{X: g.X, Y: g.Y}
}

// Center returns the arc center.
func (g Curved) Center() r2.Point {
	return r2.Point{X: g.CenterX, Y: g.CenterY}
}

// Candidate is one velocity command and its predicted geometry.
type Candidate struct {
	V     float64
	Omega float64

	Geometry Geometry
	// Optimal is set by SelectBest on the single winning candidate.
	Optimal bool
	// Clearance is the distance to the nearest threatening obstacle along this trajectory,
	// params.LargeDist when nothing threatens it.
	Clearance float64
}

// Straight reports whether the candidate has straight geometry.
func (c *Candidate) Straight() bool {
	_, ok := c.Geometry.(Straight)
	return ok
}

func (c *Candidate) String() string {
	kind := "curved"
	if c.Straight() {
		kind = "straight"
	}
	return fmt.Sprintf("%s(v=%.2f, omega=%.2f, clearance=%.3f)", kind, c.V, c.Omega, c.Clearance)
}

// NewCandidate builds the candidate for command (v, omega) from the robot's current pose. A zero
// omega always yields Straight geometry, so v/omega is never evaluated with a zero divisor.
func NewCandidate(state RobotState, v, omega float64, params Parameters) *Candidate {
	c := &Candidate{V: v, Omega: omega, Clearance: params.LargeDist}
	if omega == 0 {
		c.Geometry = Straight{
			XA: state.X,
			YA: state.Y,
			X:  state.X + v*math.Cos(state.Theta),
			Y:  state.Y + v*math.Sin(state.Theta),
		}
		return c
	}

	r := v / omega
	arc := Curved{
		CenterX: state.X + r*math.Cos(state.Theta+math.Pi/2),
		CenterY: state.Y + r*math.Sin(state.Theta+math.Pi/2),
		R:       r,
		Angle:   utils.RadToDeg(state.Theta),
	}
	if omega > 0 {
		arc.Start, arc.End = -90, 0
	} else {
		arc.Start, arc.End = 180, 270
	}
	c.Geometry = arc
	return c
}

// StopCandidate is the zero-velocity command, the fail-safe output of the planner.
func StopCandidate(state RobotState, params Parameters) *Candidate {
	return NewCandidate(state, 0, 0, params)
}
