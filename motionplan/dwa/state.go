package dwa

import (
	"math"

	"github.com/golang/geo/r2"
)

// RobotState is the pose of the robot plus the velocities it is currently commanded to.
type RobotState struct {
	X     float64
	Y     float64
	Theta float64 // heading, radians
	V     float64
	Omega float64
}

// NewRobotState returns a stationary robot at (x, y) facing theta.
func NewRobotState(x, y, theta float64) RobotState {
	return RobotState{X: x, Y: y, Theta: theta}
}

// Position returns the robot position.
func (s RobotState) Position() r2.Point {
	return r2.Point{X: s.X, Y: s.Y}
}

// step advances one tick. The heading is advanced before it is used to move the position
// (semi-implicit Euler).
func step(x, y, theta, v, omega, dt float64) (float64, float64, float64) {
	theta += omega * dt
	x += v * math.Cos(theta) * dt
	y += v * math.Sin(theta) * dt
	return x, y, theta
}

// Update executes the command (v, omega) for one tick of length dt and records it as the current
// velocity.
func (s *RobotState) Update(v, omega, dt float64) {
	s.X, s.Y, s.Theta = step(s.X, s.Y, s.Theta, v, omega, dt)
	s.V = v
	s.Omega = omega
}

// Simulate predicts the pose two ticks ahead without changing the state: one tick at (v, omega),
// then one tick at maximum deceleration (v - max_a*dt) with the same omega.
func (s RobotState) Simulate(v, omega float64, params Parameters) (float64, float64, float64) {
	x, y, theta := step(s.X, s.Y, s.Theta, v, omega, params.Dt)
	return step(x, y, theta, v-params.MaxA*params.Dt, omega, params.Dt)
}
