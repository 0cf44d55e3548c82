package main

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/golang/geo/r2"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.viam.com/utils"

	"go.viam.com/dwa/config"
	"go.viam.com/dwa/logging"
	"go.viam.com/dwa/motionplan/dwa"
	"go.viam.com/dwa/render"
	"go.viam.com/dwa/simulation"
)

// newLogger builds the command's logger. The returned function releases the log file, if any.
func newLogger(c *cli.Context) (logging.Logger, func()) {
	var logger logging.Logger
	if c.Bool(flagDebug) {
		logger = logging.NewDebugLogger(loggerName)
	} else {
		logger = logging.NewLogger(loggerName)
	}
	closeLog := func() {}
	if path := c.String(flagLogFile); path != "" {
		appender, closer := logging.NewFileAppender(path)
		logger.AddAppender(appender)
		closeLog = func() {
			utils.UncheckedError(logger.Sync())
			utils.UncheckedError(closer.Close())
		}
	}
	logging.RegisterLogger(loggerName, logger)
	logging.ReplaceGlobal(logger)
	config.InitLoggingSettings(logger, c.Bool(flagDebug))
	return logger, closeLog
}

func loadConfig(c *cli.Context, logger logging.Logger) (*config.Config, error) {
	cfg, err := config.Read(c.Context, c.String(flagConfig), logger)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading config %q", c.String(flagConfig))
	}
	if err := config.ApplyLogSettings(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateAction(c *cli.Context) error {
	logger, closeLog := newLogger(c)
	defer closeLog()
	if _, err := loadConfig(c, logger); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s is valid\n", c.String(flagConfig))
	return nil
}

func runAction(c *cli.Context) error {
	logger, closeLog := newLogger(c)
	defer closeLog()
	cfg, err := loadConfig(c, logger)
	if err != nil {
		return err
	}

	sc, err := baseScenario(c, cfg)
	if err != nil {
		return err
	}
	if sc, err = withObstacles(sc, cfg.Planner, firstSeed(c, cfg)); err != nil {
		return err
	}

	planner, err := dwa.NewPlanner(cfg.Planner, logger.Sublogger("planner"), dwa.WithParallelism(c.Int(flagParallel)))
	if err != nil {
		return err
	}
	ctx := c.Context
	if c.Bool(flagDebug) {
		ctx = logging.EnableDebugMode(ctx, "")
	}

	runner := simulation.NewRunner(planner, nil, logger.Sublogger("runner"))
	ep, err := runner.Run(ctx, sc)
	if err != nil {
		return err
	}

	if plotPath := c.String(flagPlot); plotPath != "" {
		if err := render.Episode(ep, cfg.Planner, plotPath); err != nil {
			return err
		}
		logger.Infow("wrote plot", "path", plotPath)
	}

	fmt.Fprintln(c.App.Writer, summaryTable(ep.Summary()))
	return nil
}

// baseScenario combines the config's scenario with command line overrides.
func baseScenario(c *cli.Context, cfg *config.Config) (simulation.Scenario, error) {
	sc := simulation.Scenario{
		Start:         cfg.Scenario.StartPoint(),
		Goal:          cfg.Scenario.GoalPoint(),
		Obstacles:     cfg.Scenario.Obstacles,
		MaxTicks:      cfg.Scenario.MaxTicks,
		GoalTolerance: cfg.Scenario.GoalTolerance,
		Realtime:      cfg.Scenario.Realtime || c.Bool(flagRealtime),
	}

	var err error
	if c.IsSet(flagStart) {
		if sc.Start, err = parsePoint(c.String(flagStart)); err != nil {
			return simulation.Scenario{}, errors.Wrapf(err, "invalid --%s", flagStart)
		}
	}
	if c.IsSet(flagGoal) {
		if sc.Goal, err = parsePoint(c.String(flagGoal)); err != nil {
			return simulation.Scenario{}, errors.Wrapf(err, "invalid --%s", flagGoal)
		}
	}
	if c.IsSet(flagMaxTicks) {
		if c.Int(flagMaxTicks) <= 0 {
			return simulation.Scenario{}, errors.Errorf("--%s must be > 0", flagMaxTicks)
		}
		sc.MaxTicks = c.Int(flagMaxTicks)
	}
	return sc, nil
}

func firstSeed(c *cli.Context, cfg *config.Config) int64 {
	if c.IsSet(flagSeed) {
		return c.Int64(flagSeed)
	}
	return cfg.Scenario.Seed
}

// withObstacles places obstacles randomly from seed unless the scenario already lists some.
func withObstacles(sc simulation.Scenario, params dwa.Parameters, seed int64) (simulation.Scenario, error) {
	if len(sc.Obstacles) > 0 {
		return sc, nil
	}
	//nolint:gosec
	rng := rand.New(rand.NewSource(seed))
	obstacles, err := simulation.PlaceObstacles(rng, params, sc.Start, sc.Goal)
	if err != nil {
		return simulation.Scenario{}, err
	}
	sc.Obstacles = obstacles
	return sc, nil
}

func benchAction(c *cli.Context) error {
	logger, closeLog := newLogger(c)
	defer closeLog()
	cfg, err := loadConfig(c, logger)
	if err != nil {
		return err
	}
	if c.Int(flagEpisodes) <= 0 {
		return errors.Errorf("--%s must be > 0", flagEpisodes)
	}
	base, err := baseScenario(c, cfg)
	if err != nil {
		return err
	}

	seeds := make([]int64, c.Int(flagEpisodes))
	scenarios := make([]simulation.Scenario, len(seeds))
	for i := range seeds {
		seeds[i] = firstSeed(c, cfg) + int64(i)
		if scenarios[i], err = withObstacles(base, cfg.Planner, seeds[i]); err != nil {
			return err
		}
	}

	planner, err := dwa.NewPlanner(cfg.Planner, logger.Sublogger("planner"))
	if err != nil {
		return err
	}
	runner := simulation.NewRunner(planner, nil, logger.Sublogger("runner"))
	episodes, err := runner.RunBatch(c.Context, scenarios)
	if err != nil {
		return err
	}

	summaries := make([]simulation.Summary, len(episodes))
	for i, ep := range episodes {
		summaries[i] = ep.Summary()
	}
	fmt.Fprintln(c.App.Writer, benchTable(seeds, summaries))
	return nil
}

// parsePoint parses "x,y".
func parsePoint(s string) (r2.Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return r2.Point{}, errors.Errorf("expected x,y but got %q", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return r2.Point{}, err
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return r2.Point{}, err
	}
	return r2.Point{X: x, Y: y}, nil
}

var summaryHeader = table.Row{"Outcome", "Ticks", "Path", "Mean v", "Max v", "Min clearance", "To goal", "Plan time", "P95 plan time", "Overruns"}

func summaryTable(s simulation.Summary) string {
	t := table.NewWriter()
	t.AppendHeader(summaryHeader)
	t.AppendRow(summaryRow(s))
	return t.Render()
}

func benchTable(seeds []int64, summaries []simulation.Summary) string {
	t := table.NewWriter()
	t.AppendHeader(append(table.Row{"Seed"}, summaryHeader...))
	reached := 0
	for i, s := range summaries {
		if s.Outcome == simulation.Reached {
			reached++
		}
		t.AppendRow(append(table.Row{seeds[i]}, summaryRow(s)...))
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("reached %d/%d", reached, len(summaries))})
	return t.Render()
}

func summaryRow(s simulation.Summary) table.Row {
	return table.Row{
		s.Outcome.String(),
		s.Ticks,
		fmt.Sprintf("%.2f", s.PathLength),
		fmt.Sprintf("%.2f", s.MeanSpeed),
		fmt.Sprintf("%.2f", s.MaxSpeed),
		fmt.Sprintf("%.3f", s.MinClearance),
		fmt.Sprintf("%.2f", s.FinalDistance),
		s.MeanPlanTime.String(),
		s.P95PlanTime.String(),
		s.Overruns,
	}
}
