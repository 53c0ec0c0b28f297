// Package main calibrates floating-body parameters with CMA-ES so bodies
// settle at a target submersion and drift at a target speed. Each candidate
// is scored over several headless runs; the best one is written out as
// best_config.yaml next to its window stats in best_stats.csv.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/swell/config"
)

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	maxTicks := flag.Int("max-ticks", 3600, "Simulation duration per run in ticks")
	seeds := flag.Int("seeds", 3, "Number of seeds per evaluation")
	maxEvals := flag.Int("max-evals", 200, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = 4 + 3*dim/2)")
	outputDir := flag.String("output", "", "Output directory for results")
	targetSubmersion := flag.Float64("target-submersion", 0.5, "Target mean submersion")
	targetSpeed := flag.Float64("target-speed", 1.0, "Target mean horizontal speed")
	flag.Parse()

	if *outputDir == "" {
		fmt.Fprintln(os.Stderr, "--output is required")
		os.Exit(2)
	}
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	baseCfg := config.Cfg()

	params := NewParamVector()
	evalSeeds := make([]int64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}
	targets := Targets{Submersion: *targetSubmersion, Speed: *targetSpeed}
	evaluator := NewFitnessEvaluator(params, int32(*maxTicks), evalSeeds, baseCfg, targets)

	cal, err := newCalibration(*outputDir, params, evaluator.Evaluate, *maxEvals)
	if err != nil {
		slog.Error("failed to start calibration", "error", err)
		os.Exit(1)
	}
	defer cal.Close()

	popSize := *population
	if popSize == 0 {
		popSize = 4 + 3*params.Dim()/2
	}
	slog.Info("starting calibration",
		"params", params.Dim(),
		"population", popSize,
		"max_evals", *maxEvals,
		"seeds", *seeds,
		"ticks", *maxTicks,
		"target_submersion", targets.Submersion,
		"target_speed", targets.Speed,
	)

	// Start from the base config so a good hand-tuned setup is the first guess.
	initX := params.Normalize(params.ExtractFromConfig(baseCfg))
	problem := optimize.Problem{Func: cal.objective}
	settings := &optimize.Settings{FuncEvaluations: *maxEvals}
	method := &optimize.CmaEsChol{InitStepSize: 0.3, Population: popSize}
	if _, err := optimize.Minimize(problem, initX, settings, method); err != nil {
		slog.Warn("optimization ended", "error", err)
	}

	bestCfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to reload base config", "error", err)
		os.Exit(1)
	}
	if err := cal.save(bestCfg); err != nil {
		slog.Error("failed to save best candidate", "error", err)
		os.Exit(1)
	}

	best := cal.best
	attrs := []any{
		"evals", cal.evals,
		"quality", best.Quality,
		"submersion_err", best.SubmersionError,
		"speed_err", best.SpeedError,
		"latency_frames", best.LatencyFrames,
		"output", *outputDir,
	}
	for i, spec := range params.Specs {
		attrs = append(attrs, spec.Name, cal.bestParams[i])
	}
	slog.Info("calibration complete", attrs...)
}
