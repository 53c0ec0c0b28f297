package query

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/pthm-cable/swell/field"
)

// Depth answers depth queries through a KernelDepth engine.
type Depth struct {
	engine *Engine
}

// NewDepth wraps an engine running the depth kernel.
func NewDepth(e *Engine) *Depth {
	if e.Kernel() != KernelDepth {
		panic(fmt.Sprintf("query: depth provider needs depth kernel, got %s", e.Kernel()))
	}
	return &Depth{engine: e}
}

// Query fills results with (water depth, shoreline distance) per point.
// Undefined depth is reported as +Inf, never NaN.
func (d *Depth) Query(hash int, minLength float32, points []field.Vec3, results []field.Vec2) Status {
	if !d.engine.Ready() {
		return NoDepth.Query(hash, minLength, points, results)
	}
	if len(points) != len(results) {
		d.engine.postFailed(hash, ErrLengthMismatch)
		return StatusPostFailed | StatusRetrieveFailed
	}

	_, samples := d.engine.scratch(len(points))
	status := d.engine.Query(hash, minLength, points, samples)
	if !RetrieveSucceeded(status) {
		return status
	}
	for i, s := range samples {
		results[i] = field.Vec2{X: sanitizeDepth(s.X, hash), Y: sanitizeDepth(s.Y, hash)}
	}
	return status
}

func sanitizeDepth(v float32, hash int) float32 {
	if math.IsNaN(float64(v)) {
		return float32(math.Inf(1))
	}
	if math.IsInf(float64(v), -1) {
		if debugAssertions {
			panic(fmt.Sprintf("query: depth readback for hash %d holds -Inf", hash))
		}
		slog.Error("depth readback holds -Inf", "hash", hash)
	}
	return v
}
