package game

import (
	"log/slog"
	"math"

	"github.com/pthm-cable/swell/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	stats := g.collector.Flush(g.tick, g.sampleBodies())
	perfStats := g.perfCollector.Stats()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := g.outputManager.WriteTelemetry(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
		slog.Error("failed to write perf", "error", err)
	}

	for _, bm := range g.bookmarkDetector.Check(stats) {
		if g.logStats {
			bm.LogBookmark()
		}
		if err := g.outputManager.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
		if g.snapshotDir != "" {
			g.saveSnapshot(&bm)
		}
	}
}

// sampleBodies gathers the end-of-window body state.
func (g *Game) sampleBodies() telemetry.BodySample {
	var s telemetry.BodySample

	query := g.bodyFilter.Query()
	for query.Next() {
		_, vel, body := query.Get()
		s.Bodies++
		if body.Grounded {
			s.Grounded++
		}
		s.Submersion = append(s.Submersion, float64(body.Submersion))
		s.Speeds = append(s.Speeds, float64(vel.HorizontalSpeed()))
	}
	return s
}

// saveSnapshot creates and saves a snapshot to disk.
func (g *Game) saveSnapshot(bookmark *telemetry.Bookmark) {
	path, err := telemetry.SaveSnapshot(g.Snapshot(bookmark), g.snapshotDir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}
	slog.Info("snapshot saved", "path", path, "tick", g.tick)
}

// Snapshot captures the current bodies and ocean state.
func (g *Game) Snapshot(bookmark *telemetry.Bookmark) *telemetry.Snapshot {
	snapshot := &telemetry.Snapshot{
		Version:    telemetry.SnapshotVersion,
		RNGSeed:    g.rngSeed,
		WorldWidth: float32(g.cfg.World.Width),
		WorldDepth: float32(g.cfg.World.Depth),
		Tick:       g.tick,
		OceanFrame: g.ocean.Frame(),
		Bookmark:   bookmark,
	}
	if cascade := g.ocean.Cascade(); cascade != nil {
		snapshot.OceanEnabled = true
		snapshot.OceanTime = cascade.Time()
		snapshot.CascadeX, snapshot.CascadeZ = cascade.Center()
	}

	query := g.bodyFilter.Query()
	for query.Next() {
		pos, vel, body := query.Get()
		state := telemetry.BodyState{
			ID:          body.ID,
			Radius:      body.Radius,
			X:           pos.X,
			Y:           pos.Y,
			Z:           pos.Z,
			VelX:        vel.X,
			VelY:        vel.Y,
			VelZ:        vel.Z,
			WaterHeight: body.WaterHeight,
			Submersion:  body.Submersion,
			FlowX:       body.Flow.X,
			FlowZ:       body.Flow.Y,
			Grounded:    body.Grounded,
		}
		if !math.IsInf(float64(body.WaterDepth), 1) {
			depth := body.WaterDepth
			state.WaterDepth = &depth
		}
		snapshot.Bodies = append(snapshot.Bodies, state)
	}
	return snapshot
}
