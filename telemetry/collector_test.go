package telemetry

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/swell/config"
	"github.com/pthm-cable/swell/query"
)

func TestCollector_FlushAggregatesAndResets(t *testing.T) {
	c := NewCollector(1.25, 0.125)
	if c.WindowDurationTicks() != 10 {
		t.Fatalf("expected 10 ticks per window, got %d", c.WindowDurationTicks())
	}

	var obs query.Observer = c
	obs.Dispatched(query.KernelDepth, 12)
	obs.Dispatched(query.KernelFlow, 3)
	obs.Harvested(query.KernelDepth, 1)
	obs.Harvested(query.KernelFlow, 3)
	obs.DedupHit(query.KernelDepth)
	obs.PostFailed(query.KernelDepth, errors.New("full"))
	obs.RingFull(query.KernelDisplacement)

	if c.ShouldFlush(9) {
		t.Error("window should not be complete at tick 9")
	}
	if !c.ShouldFlush(10) {
		t.Error("window should be complete at tick 10")
	}

	stats := c.Flush(10, BodySample{
		Bodies:     3,
		Grounded:   1,
		Submersion: []float64{0.2, 0.4, 0.6},
		Speeds:     []float64{1, 1, 1},
	})

	if stats.Dispatches != 2 || stats.PointsDispatched != 15 {
		t.Errorf("dispatches = %d/%d points, want 2/15", stats.Dispatches, stats.PointsDispatched)
	}
	if stats.Harvests != 2 || abs(stats.LatencyMean-2) > 1e-9 {
		t.Errorf("harvests = %d, latency mean %v", stats.Harvests, stats.LatencyMean)
	}
	if stats.DedupHits != 1 || stats.PostFailures != 1 || stats.RingFull != 1 {
		t.Errorf("unexpected event counts %+v", stats)
	}
	if abs(stats.SubmersionMean-0.4) > 1e-9 || stats.SpeedMean != 1 {
		t.Errorf("unexpected body stats %+v", stats)
	}
	if abs(stats.SimTimeSec-1.25) > 1e-9 {
		t.Errorf("sim time = %v, want 1.25", stats.SimTimeSec)
	}

	next := c.Flush(20, BodySample{})
	if next.Dispatches != 0 || next.Harvests != 0 || next.LatencyMean != 0 {
		t.Errorf("expected counters reset, got %+v", next)
	}
	if next.WindowStartTick != 10 {
		t.Errorf("window start = %d, want 10", next.WindowStartTick)
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func TestOutputManager_WritesHeaderOnce(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("creating output manager: %v", err)
	}

	if err := om.WriteConfig(config.Default()); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	for i := int32(1); i <= 2; i++ {
		if err := om.WriteTelemetry(WindowStats{WindowEndTick: i * 10, Bodies: 4}); err != nil {
			t.Fatalf("writing telemetry: %v", err)
		}
		if err := om.WritePerf(PerfStats{TicksPerSecond: 60}, i*10); err != nil {
			t.Fatalf("writing perf: %v", err)
		}
	}
	if err := om.WriteBookmark(Bookmark{Type: BookmarkStarved, Tick: 20, Description: "no readbacks"}); err != nil {
		t.Fatalf("writing bookmark: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("closing: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatalf("reading telemetry.csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines:\n%s", len(lines), data)
	}
	if !strings.HasPrefix(lines[0], "window_end,sim_time,bodies") {
		t.Errorf("unexpected header %q", lines[0])
	}

	bookmarks, err := os.ReadFile(filepath.Join(dir, "bookmarks.csv"))
	if err != nil {
		t.Fatalf("reading bookmarks.csv: %v", err)
	}
	if !strings.HasPrefix(string(bookmarks), "type,tick,description\nstarved,20,") {
		t.Errorf("unexpected bookmarks.csv:\n%s", bookmarks)
	}

	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("expected config.yaml: %v", err)
	}
}

func TestOutputManager_DisabledIsNil(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("expected nil manager without error, got %v %v", om, err)
	}
	if err := om.WriteTelemetry(WindowStats{}); err != nil {
		t.Errorf("nil manager should ignore writes, got %v", err)
	}
	if err := om.Close(); err != nil {
		t.Errorf("nil manager close: %v", err)
	}
}
