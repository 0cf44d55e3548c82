package dwa

import (
	"testing"

	"go.uber.org/multierr"
	"go.viam.com/test"
)

func TestParametersValidate(t *testing.T) {
	p := testParams()
	test.That(t, p.Validate("planner"), test.ShouldBeNil)

	for _, tc := range []struct {
		name   string
		modify func(*Parameters)
		errStr string
	}{
		{"zero dt", func(p *Parameters) { p.Dt = 0 }, `"dt" must be > 0, got 0`},
		{"inverted linear limits", func(p *Parameters) { p.MinV = 2 }, `"min_v" must be <= max_v, got 2`},
		{"no turning", func(p *Parameters) { p.MaxOmega = 0 }, `"max_omega" must be > 0, got 0`},
		{"negative gain", func(p *Parameters) { p.GainBeta = -1 }, `"gain_beta" must be >= 0, got -1`},
		{"zero step", func(p *Parameters) { p.OmegaStep = 0 }, `"omega_step" must be > 0, got 0`},
		{"no sentinel", func(p *Parameters) { p.LargeDist = 0 }, `"large_dist" must be > 0, got 0`},
		{"negative obstacle count", func(p *Parameters) { p.NObstacles = -3 }, `"n_obstacles" must be >= 0, got -3`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			p := testParams()
			tc.modify(&p)
			err := p.Validate("planner")
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, err.Error(), test.ShouldContainSubstring, tc.errStr)
			test.That(t, err.Error(), test.ShouldContainSubstring, `error validating "planner"`)
		})
	}
}

func TestParametersValidateReportsAll(t *testing.T) {
	p := testParams()
	p.Dt = -1
	p.GainAlpha = -1
	p.VStep = 0
	err := p.Validate("planner")
	test.That(t, multierr.Errors(err), test.ShouldHaveLength, 3)
}
