package simulation

import (
	"context"

	"go.uber.org/multierr"

	"go.viam.com/dwa/utils"
)

// RunBatch runs every scenario, spreading the episodes over the available cores. Episodes are
// returned in scenario order.
func (r *Runner) RunBatch(ctx context.Context, scenarios []Scenario) ([]*Episode, error) {
	episodes := make([]*Episode, len(scenarios))
	errs := make([]error, len(scenarios))
	err := utils.GroupWorkParallel(ctx, len(scenarios), nil,
		func(groupNum, groupSize, from, to int) (utils.MemberWorkFunc, utils.GroupWorkDoneFunc) {
			return func(memberNum, workNum int) {
				episodes[workNum], errs[workNum] = r.Run(ctx, scenarios[workNum])
			}, nil
		})
	if err != nil {
		return nil, err
	}
	if err := multierr.Combine(errs...); err != nil {
		return nil, err
	}
	return episodes, nil
}
