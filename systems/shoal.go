package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/swell/components"
	"github.com/pthm-cable/swell/field"
	"github.com/pthm-cable/swell/query"
)

// ShoalSystem grounds bodies that drift into shallow water or onto land.
type ShoalSystem struct {
	filter       ecs.Filter4[components.Position, components.Velocity, components.Body, components.Probe]
	groundedDrag float32

	point  [1]field.Vec3
	result [1]field.Vec2
}

// NewShoalSystem creates a shoal system. groundedDrag is the horizontal
// damping rate per second applied to grounded bodies.
func NewShoalSystem(w *ecs.World, groundedDrag float32) *ShoalSystem {
	return &ShoalSystem{
		filter:       *ecs.NewFilter4[components.Position, components.Velocity, components.Body, components.Probe](w),
		groundedDrag: groundedDrag,
	}
}

// Update queries water depth under every body, flags grounded bodies and
// slows them down.
func (s *ShoalSystem) Update(depth query.DepthProvider, dt float32) {
	damp := decay(s.groundedDrag, dt)

	q := s.filter.Query()
	for q.Next() {
		pos, vel, body, probe := q.Get()

		s.point[0] = pos.Vec3()
		if query.RetrieveSucceeded(depth.Query(probe.Shoal, body.Radius, s.point[:], s.result[:])) {
			body.WaterDepth = s.result[0].X
			body.ShoreDistance = s.result[0].Y
		}

		body.Grounded = Grounded(body.WaterDepth, body.ShoreDistance, body.Radius)
		if body.Grounded {
			vel.X *= damp
			vel.Z *= damp
		}
	}
}

// Grounded reports whether a body of the given radius touches the seabed.
// +Inf depth means the field holds no data there, which never grounds.
func Grounded(waterDepth, shoreDistance, radius float32) bool {
	if math.IsInf(float64(waterDepth), 1) {
		return false
	}
	return shoreDistance > 0 || waterDepth < radius
}
