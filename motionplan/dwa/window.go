package dwa

import (
	"fmt"
	"math"
)

// VelocityWindow is the box of linear and angular velocities reachable within one tick.
type VelocityWindow struct {
	MinV, MaxV         float64
	MinOmega, MaxOmega float64
}

// Empty reports whether no command lies inside the window on either axis. This happens only when
// the configured limits are inconsistent.
func (w VelocityWindow) Empty() bool {
	return w.MinV > w.MaxV || w.MinOmega > w.MaxOmega
}

func (w VelocityWindow) String() string {
	return fmt.Sprintf("v[%.3f, %.3f] omega[%.3f, %.3f]", w.MinV, w.MaxV, w.MinOmega, w.MaxOmega)
}

// ComputeWindow intersects the hardware velocity limits with what is reachable from the current
// velocities in one tick at maximum acceleration.
func ComputeWindow(state RobotState, params Parameters) VelocityWindow {
	dv := params.MaxA * params.Dt
	dw := params.MaxAlpha * params.Dt
	return VelocityWindow{
		MinV:     math.Max(params.MinV, state.V-dv),
		MaxV:     math.Min(params.MaxV, state.V+dv),
		MinOmega: math.Max(-params.MaxOmega, state.Omega-dw),
		MaxOmega: math.Min(params.MaxOmega, state.Omega+dw),
	}
}
