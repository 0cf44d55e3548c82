// Package main is the dwasim command: it loads a planner config and drives a simulated robot to
// its goal.
package main

import (
	"io"
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

const (
	// Flags.
	flagConfig   = "config"
	flagSeed     = "seed"
	flagStart    = "start"
	flagGoal     = "goal"
	flagMaxTicks = "max-ticks"
	flagRealtime = "realtime"
	flagParallel = "parallel"
	flagPlot     = "plot"
	flagDebug    = "debug"
	flagEpisodes = "episodes"
	flagLogFile  = "log-file"

	loggerName = "dwasim"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(out io.Writer) *cli.App {
	configFlag := &cli.StringFlag{
		Name:     flagConfig,
		Aliases:  []string{"c"},
		Usage:    "load configuration from `FILE` (json or yaml)",
		Required: true,
	}
	debugFlag := &cli.BoolFlag{
		Name:  flagDebug,
		Usage: "enable debug logging",
	}
	logFileFlag := &cli.StringFlag{
		Name:  flagLogFile,
		Usage: "also write logs to `FILE`, rotated by size",
	}

	return &cli.App{
		Name:   "dwasim",
		Usage:  "simulate a dynamic window approach planner",
		Writer: out,
		Commands: []*cli.Command{
			{
				Name:      "run",
				Usage:     "run one episode and print its summary",
				UsageText: "dwasim run -c FILE [--seed N] [--start x,y] [--goal x,y] [--plot FILE]",
				Flags: []cli.Flag{
					configFlag,
					&cli.Int64Flag{
						Name:  flagSeed,
						Usage: "seed for random obstacle placement, overrides the config",
					},
					&cli.StringFlag{
						Name:  flagStart,
						Usage: "start position `x,y`, overrides the config",
					},
					&cli.StringFlag{
						Name:  flagGoal,
						Usage: "goal position `x,y`, overrides the config",
					},
					&cli.IntFlag{
						Name:  flagMaxTicks,
						Usage: "tick limit, overrides the config",
					},
					&cli.BoolFlag{
						Name:  flagRealtime,
						Usage: "pace ticks to dt",
					},
					&cli.IntFlag{
						Name:  flagParallel,
						Usage: "number of collision checking workers",
						Value: 1,
					},
					&cli.StringFlag{
						Name:  flagPlot,
						Usage: "render the episode to `FILE` (png, svg or pdf)",
					},
					debugFlag,
					logFileFlag,
				},
				Action: runAction,
			},
			{
				Name:      "bench",
				Usage:     "run episodes over consecutive seeds and print one row per episode",
				UsageText: "dwasim bench -c FILE [--episodes N] [--seed FIRST]",
				Flags: []cli.Flag{
					configFlag,
					&cli.IntFlag{
						Name:  flagEpisodes,
						Usage: "number of episodes",
						Value: 10,
					},
					&cli.Int64Flag{
						Name:  flagSeed,
						Usage: "seed of the first episode, overrides the config",
					},
					&cli.StringFlag{
						Name:  flagStart,
						Usage: "start position `x,y`, overrides the config",
					},
					&cli.StringFlag{
						Name:  flagGoal,
						Usage: "goal position `x,y`, overrides the config",
					},
					&cli.IntFlag{
						Name:  flagMaxTicks,
						Usage: "tick limit, overrides the config",
					},
					debugFlag,
					logFileFlag,
				},
				Action: benchAction,
			},
			{
				Name:      "validate",
				Usage:     "check a config file and exit non-zero if it is invalid",
				UsageText: "dwasim validate -c FILE",
				Flags:     []cli.Flag{configFlag, debugFlag},
				Action:    validateAction,
			},
		},
	}
}
