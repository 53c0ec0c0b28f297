package main

import (
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/swell/config"
	"github.com/pthm-cable/swell/telemetry"
)

func TestCalibrationKeepsBestAndSavesStats(t *testing.T) {
	dir := t.TempDir()
	pv := NewParamVector()

	// Fitness is the distance of density from 0.5; the window carries the
	// density through so the saved stats identify the winning candidate.
	evaluate := func(raw []float64) EvalReport {
		return EvalReport{
			Fitness:         math.Abs(raw[0] - 0.5),
			Quality:         1 - math.Abs(raw[0]-0.5),
			SubmersionError: math.Abs(raw[0] - 0.5),
			Windows: []telemetry.WindowStats{
				{WindowEndTick: 300, Bodies: 3, SubmersionMean: raw[0]},
			},
		}
	}
	cal, err := newCalibration(dir, pv, evaluate, 3)
	if err != nil {
		t.Fatalf("newCalibration: %v", err)
	}

	for _, density := range []float64{0.3, 0.5, 0.8} {
		raw := pv.DefaultVector()
		raw[0] = density
		cal.objective(pv.Normalize(raw))
	}
	if math.Abs(cal.bestParams[0]-0.5) > 1e-9 {
		t.Errorf("expected best density 0.5, got %v", cal.bestParams[0])
	}

	if err := cal.save(config.Default()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := cal.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	best, err := config.Load(filepath.Join(dir, "best_config.yaml"))
	if err != nil {
		t.Fatalf("loading best config: %v", err)
	}
	if math.Abs(best.Bodies.Density-0.5) > 1e-9 {
		t.Errorf("best config density = %v, want 0.5", best.Bodies.Density)
	}

	f, err := os.Open(filepath.Join(dir, "best_stats.csv"))
	if err != nil {
		t.Fatalf("opening best stats: %v", err)
	}
	defer f.Close()
	var windows []telemetry.WindowStats
	if err := gocsv.UnmarshalFile(f, &windows); err != nil {
		t.Fatalf("reading best stats: %v", err)
	}
	if len(windows) != 1 || math.Abs(windows[0].SubmersionMean-0.5) > 1e-6 {
		t.Errorf("expected the best candidate's window, got %+v", windows)
	}

	logFile, err := os.Open(filepath.Join(dir, "optimize_log.csv"))
	if err != nil {
		t.Fatalf("opening eval log: %v", err)
	}
	defer logFile.Close()
	rows, err := csv.NewReader(logFile).ReadAll()
	if err != nil {
		t.Fatalf("reading eval log: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header plus 3 evals, got %d rows", len(rows))
	}
	if rows[0][3] != "submersion_err" || len(rows[1]) != 6+pv.Dim() {
		t.Errorf("unexpected eval log layout: %v / %v", rows[0], rows[1])
	}
}

func TestCalibrationSaveWithoutEvals(t *testing.T) {
	cal, err := newCalibration(t.TempDir(), NewParamVector(), func([]float64) EvalReport { return EvalReport{} }, 1)
	if err != nil {
		t.Fatalf("newCalibration: %v", err)
	}
	defer cal.Close()
	if err := cal.save(config.Default()); err == nil {
		t.Error("expected save to fail before any evaluation")
	}
}
