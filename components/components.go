// Package components defines ECS components for the floating bodies.
package components

import "github.com/pthm-cable/swell/field"

// Position is a body's world position. Y is up; the ocean surface spans XZ.
type Position struct {
	X, Y, Z float32
}

// Vec3 returns the position as a field vector.
func (p Position) Vec3() field.Vec3 { return field.Vec3{X: p.X, Y: p.Y, Z: p.Z} }

// Velocity represents a body's velocity in world units per second.
type Velocity struct {
	X, Y, Z float32
}

// HorizontalSpeed returns the speed across the XZ plane.
func (v Velocity) HorizontalSpeed() float32 {
	return field.Vec2{X: v.X, Y: v.Z}.Len()
}

// Body holds the physical properties of a floating sphere and the water
// state last observed around it.
type Body struct {
	ID      uint64
	Radius  float32
	Density float32 // Relative to water
	Drag    float32

	// Water state, updated by the query systems. Kept across frames so a
	// body keeps floating while a query is waiting on data.
	WaterHeight   float32
	Normal        field.Vec3
	SurfaceVel    field.Vec3
	Submersion    float32 // 0 = airborne, 1 = fully under
	Flow          field.Vec2
	WaterDepth    float32 // +Inf where unknown
	ShoreDistance float32 // Negative over water
	Grounded      bool
}

// Probe holds the query sites a body samples the ocean through.
type Probe struct {
	Buoyancy int
	Drift    int
	Shoal    int
}
