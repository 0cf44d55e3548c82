package dwa

import (
	"context"

	"github.com/samber/lo"

	"go.viam.com/dwa/utils"
)

// commandDecimals is the precision enumerated velocities are rounded to, which bounds floating
// point drift and merges near-identical commands.
const commandDecimals = 2

type command struct {
	v, omega float64
}

// steps enumerates the half-open range [lo, hi) by step, rounding each value and skipping values
// that round to the previous one. Values are computed from the index rather than accumulated. A
// value that rounds up to hi or beyond ends the range.
func steps(lo, hi, step float64) []float64 {
	if !(step > 0) || lo >= hi {
		return nil
	}
	var values []float64
	for i := 0; ; i++ {
		raw := lo + float64(i)*step
		if raw >= hi {
			break
		}
		value := utils.RoundTo(raw, commandDecimals)
		if value >= hi {
			break
		}
		if len(values) > 0 && values[len(values)-1] == value {
			continue
		}
		values = append(values, value)
	}
	return values
}

// commandGrid returns every (v, omega) pair in the window, v in the outer loop. This order is the
// tie-break order used by SelectBest.
func commandGrid(window VelocityWindow, params Parameters) []command {
	if window.Empty() {
		return nil
	}
	vs := steps(window.MinV, window.MaxV, params.VStep)
	omegas := steps(window.MinOmega, window.MaxOmega, params.OmegaStep)
	grid := make([]command, 0, len(vs)*len(omegas))
	for _, v := range vs {
		for _, omega := range omegas {
			grid = append(grid, command{v, omega})
		}
	}
	return grid
}

// admissible builds the candidate for cmd and returns it with its clearance recorded, or nil if
// CheckCollision rejects it.
func admissible(state RobotState, cmd command, obstacles []Obstacle, params Parameters) *Candidate {
	candidate := NewCandidate(state, cmd.v, cmd.omega, params)
	collision, clearance := CheckCollision(state, candidate, obstacles, params)
	if collision {
		return nil
	}
	candidate.Clearance = clearance
	return candidate
}

// GenerateCandidates enumerates the commands inside window and returns the collision-free ones in
// grid order. The result is empty when the window is empty or every command is rejected.
func GenerateCandidates(state RobotState, window VelocityWindow, obstacles []Obstacle, params Parameters) []*Candidate {
	grid := commandGrid(window, params)
	candidates := make([]*Candidate, 0, len(grid))
	for _, cmd := range grid {
		if c := admissible(state, cmd, obstacles, params); c != nil {
			candidates = append(candidates, c)
		}
	}
	return candidates
}

// generateCandidatesParallel is GenerateCandidates with collision checks spread over workers.
// Each grid cell writes only its own slot, so the output keeps grid order.
func generateCandidatesParallel(
	ctx context.Context,
	workers int,
	state RobotState,
	window VelocityWindow,
	obstacles []Obstacle,
	params Parameters,
) ([]*Candidate, error) {
	grid := commandGrid(window, params)
	slots := make([]*Candidate, len(grid))
	err := utils.GroupWorkParallelN(ctx, workers, len(grid), nil,
		func(groupNum, groupSize, from, to int) (utils.MemberWorkFunc, utils.GroupWorkDoneFunc) {
			return func(memberNum, workNum int) {
				slots[workNum] = admissible(state, grid[workNum], obstacles, params)
			}, nil
		})
	if err != nil {
		return nil, err
	}
	return lo.Filter(slots, func(c *Candidate, _ int) bool { return c != nil }), nil
}
