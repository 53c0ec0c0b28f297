package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/swell/components"
)

const (
	maxSpeed   = 40  // World units per second
	airDrag    = 0.1 // Horizontal damping per second
	wallBounce = 0.3
)

// MotionSystem integrates body positions and keeps bodies inside the world.
type MotionSystem struct {
	filter ecs.Filter3[components.Position, components.Velocity, components.Body]
	bounds Bounds
}

// Bounds represents the simulation bounds on the XZ plane.
type Bounds struct {
	MinX, MinZ float32
	MaxX, MaxZ float32
}

// NewMotionSystem creates a new motion system.
func NewMotionSystem(w *ecs.World, bounds Bounds) *MotionSystem {
	return &MotionSystem{
		filter: *ecs.NewFilter3[components.Position, components.Velocity, components.Body](w),
		bounds: bounds,
	}
}

// Update runs the motion system.
func (s *MotionSystem) Update(dt float32) {
	damp := decay(airDrag, dt)

	query := s.filter.Query()
	for query.Next() {
		pos, vel, body := query.Get()

		// Limit velocity
		speed := vel.HorizontalSpeed()
		if speed > maxSpeed {
			scale := maxSpeed / speed
			vel.X *= scale
			vel.Z *= scale
		}

		pos.X += vel.X * dt
		pos.Y += vel.Y * dt
		pos.Z += vel.Z * dt

		vel.X *= damp
		vel.Z *= damp

		// World edges are walls
		r := body.Radius
		if pos.X < s.bounds.MinX+r {
			pos.X = s.bounds.MinX + r
			vel.X *= -wallBounce
		}
		if pos.X > s.bounds.MaxX-r {
			pos.X = s.bounds.MaxX - r
			vel.X *= -wallBounce
		}
		if pos.Z < s.bounds.MinZ+r {
			pos.Z = s.bounds.MinZ + r
			vel.Z *= -wallBounce
		}
		if pos.Z > s.bounds.MaxZ-r {
			pos.Z = s.bounds.MaxZ - r
			vel.Z *= -wallBounce
		}
	}
}
