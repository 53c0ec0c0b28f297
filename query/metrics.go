package query

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Observer receives engine events. Implementations must be cheap; they run
// inline on the simulation goroutine.
type Observer interface {
	Dispatched(k Kernel, points int)
	Harvested(k Kernel, latencyFrames int)
	DedupHit(k Kernel)
	Superseded(k Kernel)
	ReadbackFailed(k Kernel)
	PostFailed(k Kernel, err error)
	RingFull(k Kernel)
	Evicted(k Kernel)
}

// Metrics exports engine events as Prometheus series, labelled by kernel.
type Metrics struct {
	dispatches *prometheus.CounterVec
	points     *prometheus.HistogramVec
	latency    *prometheus.HistogramVec
	events     *prometheus.CounterVec
}

// NewMetrics registers the query series with reg. A nil reg creates
// unregistered collectors, which tests use.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		dispatches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "swell",
			Subsystem: "query",
			Name:      "dispatches_total",
			Help:      "Compute dispatches issued by kernel",
		}, []string{"kernel"}),
		points: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "swell",
			Subsystem: "query",
			Name:      "dispatch_points",
			Help:      "Points packed into one dispatch",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8), // 1 to 16k
		}, []string{"kernel"}),
		latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "swell",
			Subsystem: "query",
			Name:      "readback_latency_frames",
			Help:      "Frames between dispatch and harvest",
			Buckets:   []float64{1, 2, 3, 4, 6, 8},
		}, []string{"kernel"}),
		events: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "swell",
			Subsystem: "query",
			Name:      "events_total",
			Help:      "Query engine events by kernel and event",
		}, []string{"kernel", "event"}),
	}
}

func (m *Metrics) Dispatched(k Kernel, points int) {
	m.dispatches.WithLabelValues(k.String()).Inc()
	m.points.WithLabelValues(k.String()).Observe(float64(points))
}

func (m *Metrics) Harvested(k Kernel, latencyFrames int) {
	m.latency.WithLabelValues(k.String()).Observe(float64(latencyFrames))
}

func (m *Metrics) DedupHit(k Kernel)       { m.event(k, "dedup") }
func (m *Metrics) Superseded(k Kernel)     { m.event(k, "superseded") }
func (m *Metrics) ReadbackFailed(k Kernel) { m.event(k, "readback_failed") }
func (m *Metrics) RingFull(k Kernel)       { m.event(k, "ring_full") }
func (m *Metrics) Evicted(k Kernel)        { m.event(k, "evicted") }

func (m *Metrics) PostFailed(k Kernel, err error) {
	switch {
	case errors.Is(err, ErrBufferFull):
		m.event(k, "buffer_full")
	case errors.Is(err, ErrTooManyHashes):
		m.event(k, "too_many_hashes")
	default:
		m.event(k, "post_invalid")
	}
}

func (m *Metrics) event(k Kernel, name string) {
	m.events.WithLabelValues(k.String(), name).Inc()
}
