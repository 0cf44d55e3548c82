package dwa

import (
	"github.com/golang/geo/r2"
)

// testParams mirrors the reference scenario: a robot limited to 1 m/s and 1 rad/s, ticking at
// 10 Hz, with equal weights.
func testParams() Parameters {
	return Parameters{
		Dt:         0.1,
		MinV:       0,
		MaxV:       1,
		MaxA:       0.5,
		MaxOmega:   1,
		MaxAlpha:   0.5,
		VStep:      0.1,
		OmegaStep:  0.1,
		RBot:       0.2,
		RObstacle:  0.2,
		LargeDist:  1000,
		GainAlpha:  1,
		GainBeta:   1,
		GainGamma:  1,
		NObstacles: 0,
		NPaths:     5,
		GridSize:   10,
	}
}

func r2Point(x, y float64) r2.Point {
	return r2.Point{X: x, Y: y}
}

type commandValues struct {
	V, Omega, Clearance float64
}

func commandsOf(candidates []*Candidate) []commandValues {
	out := make([]commandValues, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, commandValues{c.V, c.Omega, c.Clearance})
	}
	return out
}
