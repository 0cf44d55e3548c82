package dwa

import (
	"go.uber.org/multierr"

	"go.viam.com/dwa/utils"
)

// Parameters is the immutable per-session configuration of the planner: robot kinematic limits,
// search discretization and scoring weights. Every field is required.
type Parameters struct {
	// Dt is the control tick duration in seconds.
	Dt float64 `json:"dt" mapstructure:"dt"`

	MinV     float64 `json:"min_v" mapstructure:"min_v"`
	MaxV     float64 `json:"max_v" mapstructure:"max_v"`
	MaxA     float64 `json:"max_a" mapstructure:"max_a"`
	MaxOmega float64 `json:"max_omega" mapstructure:"max_omega"`
	MaxAlpha float64 `json:"max_alpha" mapstructure:"max_alpha"`

	VStep     float64 `json:"v_step" mapstructure:"v_step"`
	OmegaStep float64 `json:"omega_step" mapstructure:"omega_step"`

	RBot      float64 `json:"r_bot" mapstructure:"r_bot"`
	RObstacle float64 `json:"r_obstacle" mapstructure:"r_obstacle"`
	// LargeDist is the clearance recorded when no obstacle threatens a trajectory.
	LargeDist float64 `json:"large_dist" mapstructure:"large_dist"`

	GainAlpha float64 `json:"gain_alpha" mapstructure:"gain_alpha"`
	GainBeta  float64 `json:"gain_beta" mapstructure:"gain_beta"`
	GainGamma float64 `json:"gain_gamma" mapstructure:"gain_gamma"`

	// Scenario sizing. The planner does not read these.
	NObstacles int     `json:"n_obstacles" mapstructure:"n_obstacles"`
	NPaths     int     `json:"n_paths" mapstructure:"n_paths"`
	GridSize   float64 `json:"grid_size" mapstructure:"grid_size"`
}

// Validate ensures the parameters are internally consistent. All violations are reported together.
func (p *Parameters) Validate(path string) error {
	var errs error
	positive := func(field string, value float64) {
		if !(value > 0) {
			errs = multierr.Append(errs, utils.NewOutOfRangeError(path, field, value, "> 0"))
		}
	}
	nonNegative := func(field string, value float64) {
		if !(value >= 0) {
			errs = multierr.Append(errs, utils.NewOutOfRangeError(path, field, value, ">= 0"))
		}
	}

	positive("dt", p.Dt)
	if p.MinV > p.MaxV {
		errs = multierr.Append(errs, utils.NewOutOfRangeError(path, "min_v", p.MinV, "<= max_v"))
	}
	nonNegative("max_a", p.MaxA)
	positive("max_omega", p.MaxOmega)
	nonNegative("max_alpha", p.MaxAlpha)
	positive("v_step", p.VStep)
	positive("omega_step", p.OmegaStep)
	nonNegative("r_bot", p.RBot)
	nonNegative("r_obstacle", p.RObstacle)
	positive("large_dist", p.LargeDist)
	nonNegative("gain_alpha", p.GainAlpha)
	nonNegative("gain_beta", p.GainBeta)
	nonNegative("gain_gamma", p.GainGamma)
	nonNegative("grid_size", p.GridSize)
	if p.NObstacles < 0 {
		errs = multierr.Append(errs, utils.NewOutOfRangeError(path, "n_obstacles", p.NObstacles, ">= 0"))
	}
	if p.NPaths < 0 {
		errs = multierr.Append(errs, utils.NewOutOfRangeError(path, "n_paths", p.NPaths, ">= 0"))
	}
	return errs
}
