// Package systems contains ECS systems that move floating bodies through the
// ocean. Each system reads one query provider.
package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/swell/components"
	"github.com/pthm-cable/swell/field"
	"github.com/pthm-cable/swell/query"
)

// slopePush scales how strongly a tilted surface pushes a body downhill.
const slopePush = 0.5

var up = field.Vec3{Y: 1}

// BuoyancySystem samples the water surface under every body and applies
// buoyancy, vertical drag toward the surface motion and a downhill push.
type BuoyancySystem struct {
	filter  ecs.Filter4[components.Position, components.Velocity, components.Body, components.Probe]
	gravity float32

	point    [1]field.Vec3
	height   [1]float32
	normal   [1]field.Vec3
	velocity [1]field.Vec3
}

// NewBuoyancySystem creates a new buoyancy system.
func NewBuoyancySystem(w *ecs.World, gravity float32) *BuoyancySystem {
	return &BuoyancySystem{
		filter:  *ecs.NewFilter4[components.Position, components.Velocity, components.Body, components.Probe](w),
		gravity: gravity,
	}
}

// Update queries the collision provider for every body and accelerates it.
// A body whose query has no data yet keeps the last water state it saw.
func (s *BuoyancySystem) Update(water query.CollisionProvider, dt float32) {
	q := s.filter.Query()
	for q.Next() {
		pos, vel, body, probe := q.Get()

		s.point[0] = pos.Vec3()
		status := water.QueryHeights(probe.Buoyancy, body.Radius, s.point[:], s.height[:], s.normal[:], s.velocity[:])
		if water.RetrieveSucceeded(status) {
			body.WaterHeight = s.height[0]
			body.Normal = s.normal[0]
			if body.Normal == (field.Vec3{}) {
				body.Normal = up
			}
		}
		if query.VelocitiesValid(status) {
			body.SurfaceVel = s.velocity[0]
		}

		body.Submersion = Submersion(pos.Y, body.Radius, body.WaterHeight)
		ay := s.gravity * (body.Submersion/body.Density - 1)
		ay += body.Drag * body.Submersion * (body.SurfaceVel.Y - vel.Y)
		vel.Y += ay * dt

		push := s.gravity * body.Submersion * slopePush * dt
		vel.X += body.Normal.X * push
		vel.Z += body.Normal.Z * push
	}
}

// Submersion returns the fraction of a sphere's height below the water
// surface, in [0, 1].
func Submersion(centerY, radius, waterHeight float32) float32 {
	if radius <= 0 {
		if centerY < waterHeight {
			return 1
		}
		return 0
	}
	return clamp01((waterHeight - (centerY - radius)) / (2 * radius))
}
