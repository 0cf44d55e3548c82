// Package config defines the file format used to configure the planner and a simulated scenario.
package config

import (
	"fmt"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/dwa/logging"
	"go.viam.com/dwa/motionplan/dwa"
	"go.viam.com/dwa/utils"
)

// Scenario defaults applied by Ensure.
const (
	DefaultMaxTicks      = 1000
	DefaultGoalTolerance = 0.5
)

// A Config describes the planner parameters and the scenario they are exercised in. The planner
// keys sit at the top level of the file.
type Config struct {
	Planner  dwa.Parameters                `json:"planner" mapstructure:",squash"`
	Scenario ScenarioConfig                `json:"scenario" mapstructure:"scenario"`
	Log      []logging.LoggerPatternConfig `json:"log,omitempty" mapstructure:"log"`
	// Debug turns on debug output for every logger.
	Debug bool `json:"debug,omitempty" mapstructure:"debug"`

	ConfigFilePath string `json:"-" mapstructure:"-"`
}

// ScenarioConfig describes one simulated episode. Every field is optional.
type ScenarioConfig struct {
	// Start and Goal are [x, y] pairs.
	Start         []float64 `json:"start,omitempty" mapstructure:"start"`
	Goal          []float64 `json:"goal,omitempty" mapstructure:"goal"`
	Seed          int64     `json:"seed,omitempty" mapstructure:"seed"`
	MaxTicks      int       `json:"max_ticks,omitempty" mapstructure:"max_ticks"`
	GoalTolerance float64   `json:"goal_tolerance,omitempty" mapstructure:"goal_tolerance"`
	Realtime      bool      `json:"realtime,omitempty" mapstructure:"realtime"`
	// Obstacles replaces random placement when set.
	Obstacles []dwa.Obstacle `json:"obstacles,omitempty" mapstructure:"obstacles"`
}

// StartPoint returns the configured start position.
func (sc *ScenarioConfig) StartPoint() r2.Point {
	return pointFromPair(sc.Start)
}

// GoalPoint returns the configured goal position.
func (sc *ScenarioConfig) GoalPoint() r2.Point {
	return pointFromPair(sc.Goal)
}

func pointFromPair(pair []float64) r2.Point {
	if len(pair) != 2 {
		return r2.Point{}
	}
	return r2.Point{X: pair[0], Y: pair[1]}
}

func (sc *ScenarioConfig) applyDefaults(params dwa.Parameters) {
	if len(sc.Start) == 0 {
		sc.Start = []float64{0, 0}
	}
	if len(sc.Goal) == 0 {
		sc.Goal = []float64{params.GridSize, params.GridSize}
	}
	if sc.MaxTicks == 0 {
		sc.MaxTicks = DefaultMaxTicks
	}
	if sc.GoalTolerance == 0 {
		sc.GoalTolerance = DefaultGoalTolerance
	}
}

// Validate ensures all parts of the scenario are valid.
func (sc *ScenarioConfig) Validate(path string) error {
	var errs error
	if len(sc.Start) != 2 {
		errs = multierr.Append(errs, utils.NewConfigValidationError(path,
			errors.Errorf(`"start" must be an [x, y] pair, got %v`, sc.Start)))
	}
	if len(sc.Goal) != 2 {
		errs = multierr.Append(errs, utils.NewConfigValidationError(path,
			errors.Errorf(`"goal" must be an [x, y] pair, got %v`, sc.Goal)))
	}
	if sc.MaxTicks <= 0 {
		errs = multierr.Append(errs, utils.NewOutOfRangeError(path, "max_ticks", sc.MaxTicks, "> 0"))
	}
	if !(sc.GoalTolerance > 0) {
		errs = multierr.Append(errs, utils.NewOutOfRangeError(path, "goal_tolerance", sc.GoalTolerance, "> 0"))
	}
	for idx, o := range sc.Obstacles {
		if !(o.R >= 0) {
			errs = multierr.Append(errs,
				utils.NewOutOfRangeError(fmt.Sprintf("%s.obstacles.%d", path, idx), "r", o.R, ">= 0"))
		}
	}
	return errs
}

// Ensure applies scenario defaults and validates every section. Malformed logger patterns are
// only warned about.
func (c *Config) Ensure(logger logging.Logger) error {
	c.Scenario.applyDefaults(c.Planner)

	errs := multierr.Combine(
		c.Planner.Validate("planner"),
		c.Scenario.Validate("scenario"),
	)
	for idx, lpc := range c.Log {
		if _, err := logging.LevelFromString(lpc.Level); err != nil {
			errs = multierr.Append(errs, utils.NewConfigValidationError(fmt.Sprintf("log.%d", idx), err))
		}
	}
	for _, pattern := range logging.ValidatePatterns(c.Log) {
		logger.Warnw("failed to validate a pattern", "pattern", pattern)
	}
	return errs
}

// NewMissingFieldsError reports every required key absent at path.
func NewMissingFieldsError(path string, fields []string) error {
	var errs error
	for _, field := range fields {
		errs = multierr.Append(errs, utils.NewConfigValidationFieldRequiredError(path, field))
	}
	return errs
}
