package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Bodies at window end
	Bodies   int `csv:"bodies"`
	Grounded int `csv:"grounded"`

	// Query engine events during the window, all kernels
	Dispatches       int `csv:"dispatches"`
	PointsDispatched int `csv:"points_dispatched"`
	Harvests         int `csv:"harvests"`
	DedupHits        int `csv:"dedup_hits"`
	Superseded       int `csv:"superseded"`
	ReadbackFailures int `csv:"readback_failures"`
	PostFailures     int `csv:"post_failures"`
	RingFull         int `csv:"ring_full"`
	Evicted          int `csv:"evicted"`

	// Frames between dispatch and harvest
	LatencyMean float64 `csv:"latency_mean"`
	LatencyP50  float64 `csv:"latency_p50"`
	LatencyP90  float64 `csv:"latency_p90"`

	// Fraction of each body below the surface, sampled at window end
	SubmersionMean float64 `csv:"submersion_mean"`
	SubmersionStd  float64 `csv:"submersion_std"`
	SubmersionP10  float64 `csv:"submersion_p10"`
	SubmersionP50  float64 `csv:"submersion_p50"`
	SubmersionP90  float64 `csv:"submersion_p90"`

	// Horizontal body speed, sampled at window end
	SpeedMean float64 `csv:"speed_mean"`
	SpeedP90  float64 `csv:"speed_p90"`
}

// Percentile returns the empirical p-quantile of sorted. p is clamped to
// [0, 1]; an empty slice yields 0.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	p = min(max(p, 0), 1)
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// Distribution summarises values by mean, population std and the 10th, 50th
// and 90th percentiles. values is not modified.
func Distribution(values []float64) (mean, std, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0, 0
	}
	mean, std = stat.PopMeanStdDev(values, nil)

	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return mean, std, Percentile(sorted, 0.10), Percentile(sorted, 0.50), Percentile(sorted, 0.90)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("bodies", s.Bodies),
		slog.Int("grounded", s.Grounded),
		slog.Int("dispatches", s.Dispatches),
		slog.Int("points_dispatched", s.PointsDispatched),
		slog.Int("harvests", s.Harvests),
		slog.Int("dedup_hits", s.DedupHits),
		slog.Int("superseded", s.Superseded),
		slog.Int("readback_failures", s.ReadbackFailures),
		slog.Int("post_failures", s.PostFailures),
		slog.Int("ring_full", s.RingFull),
		slog.Int("evicted", s.Evicted),
		slog.Float64("latency_mean", s.LatencyMean),
		slog.Float64("latency_p90", s.LatencyP90),
		slog.Float64("submersion_mean", s.SubmersionMean),
		slog.Float64("submersion_p50", s.SubmersionP50),
		slog.Float64("speed_mean", s.SpeedMean),
	)
}

// LogStats logs the window stats at info level.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
