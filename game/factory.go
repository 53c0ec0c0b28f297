package game

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/swell/components"
	"github.com/pthm-cable/swell/field"
	"github.com/pthm-cable/swell/query"
)

// Salts keep each system's query sites apart for the same body.
const (
	saltBuoyancy = "/buoyancy"
	saltDrift    = "/drift"
	saltShoal    = "/shoal"
)

// spawnInitialBodies scatters the configured number of bodies over the world.
func (g *Game) spawnInitialBodies() {
	w := float32(g.cfg.World.Width)
	d := float32(g.cfg.World.Depth)
	for range g.cfg.Bodies.Count {
		g.spawnBody(g.rng.Float32()*w, g.rng.Float32()*d)
	}
}

// spawnBody creates one body resting at sea level.
func (g *Game) spawnBody(x, z float32) ecs.Entity {
	g.nextID++
	id := g.nextID

	radius := float32(g.cfg.Bodies.Radius + (g.rng.Float64()*2-1)*g.cfg.Bodies.RadiusJitter)
	radius = max(radius, 0.1)
	level := g.cfg.Derived.SeaLevel32

	pos := components.Position{X: x, Y: level, Z: z}
	vel := components.Velocity{}
	body := components.Body{
		ID:          id,
		Radius:      radius,
		Density:     float32(g.cfg.Bodies.Density),
		Drag:        float32(g.cfg.Bodies.Drag),
		WaterHeight: level,
		Normal:      field.Vec3{Y: 1},
		WaterDepth:  float32(math.Inf(1)),
	}
	probe := g.probeFor(id)

	return g.bodyMapper.NewEntity(&pos, &vel, &body, &probe)
}

// probeFor derives a body's query sites from its id.
func (g *Game) probeFor(id uint64) components.Probe {
	salt := g.cfg.Query.HashSalt
	return components.Probe{
		Buoyancy: query.SaltedHash(salt+saltBuoyancy, id),
		Drift:    query.SaltedHash(salt+saltDrift, id),
		Shoal:    query.SaltedHash(salt+saltShoal, id),
	}
}
