package main

import (
	"log/slog"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/swell/config"
	"github.com/pthm-cable/swell/game"
	"github.com/pthm-cable/swell/telemetry"
)

// Targets describes the body behavior the calibration aims for.
type Targets struct {
	Submersion float64 // Mean fraction of body height under water
	Speed      float64 // Mean horizontal speed in world units per second
}

// EvalReport summarises one evaluation across all seeds.
type EvalReport struct {
	Fitness         float64 // Negative quality, lower is better
	Quality         float64
	SubmersionError float64 // Mean absolute distance from the target submersion
	SpeedError      float64 // Mean absolute distance from the target speed
	LatencyFrames   float64 // Mean frames between dispatch and harvest

	// Windows of the first seed
	Windows []telemetry.WindowStats
}

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int32
	seeds       []int64
	baseConfig  *config.Config
	targets     Targets
	statsWindow float64
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config, targets Targets) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		targets:     targets,
		statsWindow: 5.0,
	}
}

// Evaluate runs every seed with the parameters x and reports fitness
// averaged over the seeds. A config that fails validation scores 0.
func (fe *FitnessEvaluator) Evaluate(x []float64) EvalReport {
	cfg, err := fe.configFor(x)
	if err != nil {
		slog.Warn("invalid candidate config", "error", err)
		return EvalReport{}
	}

	runs := make([][]telemetry.WindowStats, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			runs[idx] = fe.runSimulation(cfg, s)
		}(i, seed)
	}
	wg.Wait()

	return fe.report(runs)
}

// report folds the per-seed windows into one EvalReport.
func (fe *FitnessEvaluator) report(runs [][]telemetry.WindowStats) EvalReport {
	var r EvalReport
	if len(runs) == 0 {
		return r
	}
	qualities := make([]float64, len(runs))
	subErrs := make([]float64, len(runs))
	speedErrs := make([]float64, len(runs))
	latencies := make([]float64, len(runs))
	for i, windows := range runs {
		qualities[i] = fe.computeQuality(windows)
		subErrs[i], speedErrs[i], latencies[i] = fe.targetErrors(windows)
	}
	r.Quality = stat.Mean(qualities, nil)
	r.Fitness = -r.Quality
	r.SubmersionError = stat.Mean(subErrs, nil)
	r.SpeedError = stat.Mean(speedErrs, nil)
	r.LatencyFrames = stat.Mean(latencies, nil)
	r.Windows = runs[0]
	return r
}

// targetErrors returns the mean absolute submersion and speed errors and the
// mean readback latency over the windows after warmup that held bodies.
func (fe *FitnessEvaluator) targetErrors(windows []telemetry.WindowStats) (subErr, speedErr, latency float64) {
	if len(windows) <= qualityWarmupWindows {
		return 0, 0, 0
	}
	var sub, speed, lat []float64
	for _, w := range windows[qualityWarmupWindows:] {
		if w.Bodies == 0 {
			continue
		}
		sub = append(sub, math.Abs(w.SubmersionMean-fe.targets.Submersion))
		speed = append(speed, math.Abs(w.SpeedMean-fe.targets.Speed))
		if w.Harvests > 0 {
			lat = append(lat, w.LatencyMean)
		}
	}
	if len(sub) > 0 {
		subErr = stat.Mean(sub, nil)
		speedErr = stat.Mean(speed, nil)
	}
	if len(lat) > 0 {
		latency = stat.Mean(lat, nil)
	}
	return subErr, speedErr, latency
}

// configFor copies the base config and applies x.
func (fe *FitnessEvaluator) configFor(x []float64) (*config.Config, error) {
	cfg := *fe.baseConfig
	fe.params.ApplyToConfig(&cfg, x)
	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// runSimulation executes a single headless run and returns its window stats.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) []telemetry.WindowStats {
	var windows []telemetry.WindowStats

	g := game.NewGameWithOptions(game.Options{
		Config:         cfg,
		Seed:           seed,
		Headless:       true,
		StatsWindowSec: fe.statsWindow,
		StepsPerUpdate: 1,
		StatsCallback: func(stats telemetry.WindowStats) {
			windows = append(windows, stats)
		},
	})
	defer g.Unload()

	for g.Tick() < fe.maxTicks {
		g.UpdateHeadless()
	}
	return windows
}

// Quality component weights.
const (
	qualityWeightSubmersion = 0.35
	qualityWeightSpeed      = 0.25
	qualityWeightAfloat     = 0.25
	qualityWeightEngine     = 0.15

	qualityWarmupWindows = 1 // skip first N windows while bodies settle
)

// computeQuality computes body behavior quality ∈ [0, 1] from window stats.
func (fe *FitnessEvaluator) computeQuality(windows []telemetry.WindowStats) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}
	valid := windows[qualityWarmupWindows:]

	var subSum, speedSum, afloatSum, engineSum float64
	for _, w := range valid {
		if w.Bodies == 0 {
			continue
		}

		// 1. Mean submersion near target
		subErr := (w.SubmersionMean - fe.targets.Submersion) / 0.15
		subSum += math.Exp(-subErr * subErr)

		// 2. Mean speed near target on a log scale
		if w.SpeedMean > 0 && fe.targets.Speed > 0 {
			logErr := math.Log(w.SpeedMean / fe.targets.Speed)
			speedSum += math.Exp(-logErr * logErr)
		}

		// 3. Few grounded bodies
		afloatSum += 1 - float64(w.Grounded)/float64(w.Bodies)

		// 4. Engine health: dispatches that were not skipped or refused
		if w.Dispatches > 0 {
			lost := float64(w.RingFull+w.PostFailures) / float64(w.Dispatches)
			engineSum += math.Exp(-lost)
		}
	}

	n := float64(len(valid))
	quality := qualityWeightSubmersion*subSum/n +
		qualityWeightSpeed*speedSum/n +
		qualityWeightAfloat*afloatSum/n +
		qualityWeightEngine*engineSum/n

	return clamp01(quality)
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
