package main

import (
	"bytes"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/pthm-cable/swell/config"
	"github.com/pthm-cable/swell/telemetry"
)

func TestParamVectorRoundTrip(t *testing.T) {
	pv := NewParamVector()
	cfg := config.Default()

	raw := pv.ExtractFromConfig(cfg)
	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		if math.Abs(raw[i]-back[i]) > 1e-9 {
			t.Errorf("%s: %v -> %v", pv.Specs[i].Name, raw[i], back[i])
		}
	}

	pv.ApplyToConfig(cfg, []float64{-1, 100, 0.3, 6, 0.25})
	if cfg.Bodies.Density != pv.Specs[0].Min || cfg.Bodies.Drag != pv.Specs[1].Max {
		t.Errorf("expected values clamped to bounds, got density %v drag %v", cfg.Bodies.Density, cfg.Bodies.Drag)
	}
}

func TestComputeQualityPrefersTargets(t *testing.T) {
	fe := &FitnessEvaluator{targets: Targets{Submersion: 0.5, Speed: 1}}

	window := func(sub, speed float64, grounded int) telemetry.WindowStats {
		return telemetry.WindowStats{
			Bodies:         10,
			Grounded:       grounded,
			Dispatches:     100,
			SubmersionMean: sub,
			SpeedMean:      speed,
		}
	}

	good := []telemetry.WindowStats{window(0, 0, 10), window(0.5, 1, 0), window(0.52, 1.1, 0)}
	bad := []telemetry.WindowStats{window(0, 0, 10), window(0.95, 8, 6), window(0.9, 6, 7)}

	qGood := fe.computeQuality(good)
	qBad := fe.computeQuality(bad)
	if qGood <= qBad {
		t.Errorf("expected on-target windows to score higher: good %.3f bad %.3f", qGood, qBad)
	}
	if qGood > 1 || qBad < 0 {
		t.Errorf("quality out of range: %v %v", qGood, qBad)
	}

	if q := fe.computeQuality(good[:1]); q != 0 {
		t.Errorf("warmup-only run should score 0, got %v", q)
	}
}

func TestEvaluateRejectsInvalidConfig(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	base := config.Default()
	base.Physics.DT = 0
	pv := NewParamVector()
	fe := NewFitnessEvaluator(pv, 10, []int64{1}, base, Targets{Submersion: 0.5, Speed: 1})

	r := fe.Evaluate(pv.DefaultVector())
	if r.Fitness != 0 || r.Quality != 0 || r.Windows != nil {
		t.Errorf("expected an empty report for an invalid config, got %+v", r)
	}
	if !strings.Contains(buf.String(), "invalid candidate config") {
		t.Errorf("expected a warning for the invalid config, got log %q", buf.String())
	}
}

func TestReportAveragesTargetErrors(t *testing.T) {
	fe := &FitnessEvaluator{targets: Targets{Submersion: 0.5, Speed: 1}}

	window := func(sub, speed, latency float64) telemetry.WindowStats {
		return telemetry.WindowStats{
			Bodies:         4,
			Dispatches:     10,
			Harvests:       10,
			SubmersionMean: sub,
			SpeedMean:      speed,
			LatencyMean:    latency,
		}
	}
	warmup := telemetry.WindowStats{Bodies: 4, SubmersionMean: 5, SpeedMean: 50, Harvests: 1, LatencyMean: 40}
	runs := [][]telemetry.WindowStats{
		{warmup, window(0.6, 1.5, 2), window(0.4, 0.5, 2)},
		{warmup, window(0.7, 1, 3), {}},
	}

	r := fe.report(runs)
	if math.Abs(r.SubmersionError-0.15) > 1e-9 {
		t.Errorf("submersion error = %v, want 0.15", r.SubmersionError)
	}
	if math.Abs(r.SpeedError-0.25) > 1e-9 {
		t.Errorf("speed error = %v, want 0.25", r.SpeedError)
	}
	if math.Abs(r.LatencyFrames-2.5) > 1e-9 {
		t.Errorf("latency = %v, want 2.5", r.LatencyFrames)
	}
	if r.Fitness != -r.Quality {
		t.Errorf("fitness %v should be negative quality %v", r.Fitness, r.Quality)
	}
	if len(r.Windows) != 3 {
		t.Errorf("expected the first seed's windows, got %d", len(r.Windows))
	}
}
