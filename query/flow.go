package query

import (
	"fmt"

	"github.com/pthm-cable/swell/field"
)

// Flow answers flow queries through a KernelFlow engine.
type Flow struct {
	engine *Engine
}

// NewFlow wraps an engine running the flow kernel.
func NewFlow(e *Engine) *Flow {
	if e.Kernel() != KernelFlow {
		panic(fmt.Sprintf("query: flow provider needs flow kernel, got %s", e.Kernel()))
	}
	return &Flow{engine: e}
}

func (f *Flow) Query(hash int, minLength float32, points []field.Vec3, results []field.Vec2) Status {
	if !f.engine.Ready() {
		return NoFlow.Query(hash, minLength, points, results)
	}
	if len(points) != len(results) {
		f.engine.postFailed(hash, ErrLengthMismatch)
		return StatusPostFailed | StatusRetrieveFailed
	}

	_, samples := f.engine.scratch(len(points))
	status := f.engine.Query(hash, minLength, points, samples)
	if !RetrieveSucceeded(status) {
		return status
	}
	for i, s := range samples {
		results[i] = field.Vec2{X: s.X, Y: s.Y}
	}
	return status
}
