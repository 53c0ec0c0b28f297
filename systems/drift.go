package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/swell/components"
	"github.com/pthm-cable/swell/field"
	"github.com/pthm-cable/swell/query"
)

// DriftSystem carries bodies along the surface current.
type DriftSystem struct {
	filter   ecs.Filter4[components.Position, components.Velocity, components.Body, components.Probe]
	coupling float32

	point  [1]field.Vec3
	result [1]field.Vec2
}

// NewDriftSystem creates a drift system. coupling is the rate per second at
// which a fully submerged body adopts the current.
func NewDriftSystem(w *ecs.World, coupling float32) *DriftSystem {
	return &DriftSystem{
		filter:   *ecs.NewFilter4[components.Position, components.Velocity, components.Body, components.Probe](w),
		coupling: coupling,
	}
}

// Update queries the flow under every body and pulls its horizontal velocity
// toward it. Only the wet part of a body feels the current.
func (s *DriftSystem) Update(flow query.FlowProvider, dt float32) {
	q := s.filter.Query()
	for q.Next() {
		pos, vel, body, probe := q.Get()

		s.point[0] = pos.Vec3()
		if query.RetrieveSucceeded(flow.Query(probe.Drift, body.Radius, s.point[:], s.result[:])) {
			body.Flow = s.result[0]
		}

		k := 1 - decay(s.coupling*body.Submersion, dt)
		vel.X += (body.Flow.X - vel.X) * k
		vel.Z += (body.Flow.Y - vel.Z) * k
	}
}
