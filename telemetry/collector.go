// Package telemetry provides windowed query engine statistics, bookmarks
// and snapshots.
package telemetry

import "github.com/pthm-cable/swell/query"

// Collector accumulates query engine events within time windows and produces
// WindowStats. It implements query.Observer.
type Collector struct {
	windowDurationTicks int32
	dt                  float32

	windowStartTick int32

	dispatches       int
	points           int
	harvests         int
	dedupHits        int
	superseded       int
	readbackFailures int
	postFailures     int
	ringFull         int
	evicted          int
	latencies        []float64
}

// NewCollector creates a collector whose windows last windowDurationSec of
// simulation time at dt seconds per tick.
func NewCollector(windowDurationSec float64, dt float32) *Collector {
	ticks := int32(windowDurationSec / float64(dt))
	if ticks < 1 {
		ticks = 1
	}
	return &Collector{
		windowDurationTicks: ticks,
		dt:                  dt,
	}
}

func (c *Collector) Dispatched(_ query.Kernel, points int) {
	c.dispatches++
	c.points += points
}

func (c *Collector) Harvested(_ query.Kernel, latencyFrames int) {
	c.harvests++
	c.latencies = append(c.latencies, float64(latencyFrames))
}

func (c *Collector) DedupHit(query.Kernel)          { c.dedupHits++ }
func (c *Collector) Superseded(query.Kernel)        { c.superseded++ }
func (c *Collector) ReadbackFailed(query.Kernel)    { c.readbackFailures++ }
func (c *Collector) PostFailed(query.Kernel, error) { c.postFailures++ }
func (c *Collector) RingFull(query.Kernel)          { c.ringFull++ }
func (c *Collector) Evicted(query.Kernel)           { c.evicted++ }

// ShouldFlush reports whether the current window is complete.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// BodySample is the end-of-window state the caller gathers from the world.
type BodySample struct {
	Bodies     int
	Grounded   int
	Submersion []float64
	Speeds     []float64
}

// Flush produces a WindowStats and resets the counters for the next window.
func (c *Collector) Flush(currentTick int32, bodies BodySample) WindowStats {
	latMean, _, _, latP50, latP90 := Distribution(c.latencies)
	subMean, subStd, subP10, subP50, subP90 := Distribution(bodies.Submersion)
	speedMean, _, _, _, speedP90 := Distribution(bodies.Speeds)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * float64(c.dt),

		Bodies:   bodies.Bodies,
		Grounded: bodies.Grounded,

		Dispatches:       c.dispatches,
		PointsDispatched: c.points,
		Harvests:         c.harvests,
		DedupHits:        c.dedupHits,
		Superseded:       c.superseded,
		ReadbackFailures: c.readbackFailures,
		PostFailures:     c.postFailures,
		RingFull:         c.ringFull,
		Evicted:          c.evicted,

		LatencyMean: latMean,
		LatencyP50:  latP50,
		LatencyP90:  latP90,

		SubmersionMean: subMean,
		SubmersionStd:  subStd,
		SubmersionP10:  subP10,
		SubmersionP50:  subP50,
		SubmersionP90:  subP90,

		SpeedMean: speedMean,
		SpeedP90:  speedP90,
	}

	c.windowStartTick = currentTick
	c.dispatches = 0
	c.points = 0
	c.harvests = 0
	c.dedupHits = 0
	c.superseded = 0
	c.readbackFailures = 0
	c.postFailures = 0
	c.ringFull = 0
	c.evicted = 0
	c.latencies = c.latencies[:0]

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
