package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/swell/config"
)

// calibration drives one CMA-ES run: it logs every evaluation to
// optimize_log.csv and keeps the best candidate with its window stats.
type calibration struct {
	dir      string
	params   *ParamVector
	evaluate func([]float64) EvalReport
	maxEvals int

	logFile *os.File
	log     *csv.Writer
	start   time.Time

	evals      int
	best       EvalReport
	bestParams []float64
}

func newCalibration(dir string, params *ParamVector, evaluate func([]float64) EvalReport, maxEvals int) (*calibration, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(filepath.Join(dir, "optimize_log.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating eval log: %w", err)
	}

	w := csv.NewWriter(f)
	header := []string{"eval", "fitness", "quality", "submersion_err", "speed_err", "latency_frames"}
	for _, spec := range params.Specs {
		header = append(header, spec.Name)
	}
	if err := w.Write(header); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing eval log header: %w", err)
	}

	return &calibration{
		dir:      dir,
		params:   params,
		evaluate: evaluate,
		maxEvals: maxEvals,
		logFile:  f,
		log:      w,
		start:    time.Now(),
	}, nil
}

// objective scores a normalized parameter vector. CMA-ES may step outside
// the bounds, so values are clamped before they reach the simulation.
func (c *calibration) objective(x []float64) float64 {
	raw := c.params.Clamp(c.params.Denormalize(x))
	r := c.evaluate(raw)
	c.evals++

	if c.bestParams == nil || r.Fitness < c.best.Fitness {
		c.best = r
		c.bestParams = raw
	}

	row := []string{
		strconv.Itoa(c.evals),
		formatFloat(r.Fitness),
		formatFloat(r.Quality),
		formatFloat(r.SubmersionError),
		formatFloat(r.SpeedError),
		formatFloat(r.LatencyFrames),
	}
	for _, v := range raw {
		row = append(row, formatFloat(v))
	}
	if err := c.log.Write(row); err != nil {
		slog.Warn("failed to write eval log", "error", err)
	}
	c.log.Flush()

	slog.Info("eval",
		"n", c.evals,
		"max", c.maxEvals,
		"quality", r.Quality,
		"submersion_err", r.SubmersionError,
		"speed_err", r.SpeedError,
		"latency_frames", r.LatencyFrames,
		"best_quality", c.best.Quality,
		"elapsed", time.Since(c.start).Round(time.Second),
	)
	return r.Fitness
}

// save applies the best candidate to cfg and writes best_config.yaml plus
// the candidate's window stats as best_stats.csv.
func (c *calibration) save(cfg *config.Config) error {
	if c.bestParams == nil {
		return errors.New("no evaluations completed")
	}
	c.params.ApplyToConfig(cfg, c.bestParams)
	if err := cfg.WriteYAML(filepath.Join(c.dir, "best_config.yaml")); err != nil {
		return fmt.Errorf("writing best config: %w", err)
	}

	f, err := os.Create(filepath.Join(c.dir, "best_stats.csv"))
	if err != nil {
		return fmt.Errorf("creating best stats: %w", err)
	}
	defer f.Close()
	if err := gocsv.MarshalFile(&c.best.Windows, f); err != nil {
		return fmt.Errorf("writing best stats: %w", err)
	}
	return nil
}

func (c *calibration) Close() error {
	c.log.Flush()
	if err := c.log.Error(); err != nil {
		c.logFile.Close()
		return err
	}
	return c.logFile.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
