// Package ocean owns one simulated water body: its field cascade, the compute
// device and one query engine per kernel. Callers get providers from it
// instead of reaching for globals.
package ocean

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pthm-cable/swell/config"
	"github.com/pthm-cable/swell/field"
	"github.com/pthm-cable/swell/gpu"
	"github.com/pthm-cable/swell/query"
)

// Ocean is the per-simulation context object.
type Ocean struct {
	cfg     *config.Config
	cascade *field.Cascade
	device  *gpu.Device
	metrics *query.Metrics

	displacement *query.Engine
	flowEngine   *query.Engine
	depthEngine  *query.Engine

	collision *query.Collision
	flow      *query.Flow
	depth     *query.Depth

	frame uint64
}

// New builds an ocean from cfg and registers its query metrics with reg
// (nil skips registration). With ocean.enabled false every provider is null.
func New(cfg *config.Config, reg prometheus.Registerer) *Ocean {
	o := &Ocean{
		cfg:     cfg,
		metrics: query.NewMetrics(reg),
	}
	if !cfg.Ocean.Enabled {
		slog.Info("ocean disabled, providers are null")
		return o
	}

	o.cascade = field.NewCascade(cfg.Ocean, cfg.Derived.CascadeCenterX32, cfg.Derived.CascadeCenterZ32)
	o.device = gpu.NewDevice(cfg.GPU)

	o.displacement = query.NewEngine(query.KernelDisplacement, o.cascade, o.device, cfg.Query, o.metrics)
	o.flowEngine = query.NewEngine(query.KernelFlow, o.cascade, o.device, cfg.Query, o.metrics)
	o.depthEngine = query.NewEngine(query.KernelDepth, o.cascade, o.device, cfg.Query, o.metrics)

	o.collision = query.NewCollision(o.displacement, float32(cfg.Query.NormalOffset))
	o.flow = query.NewFlow(o.flowEngine)
	o.depth = query.NewDepth(o.depthEngine)

	slog.Info("ocean ready",
		"slices", cfg.Ocean.SliceCount,
		"resolution", cfg.Ocean.SliceResolution,
		"coarsest_extent", cfg.Derived.CoarsestExtent,
		"readback_latency", cfg.GPU.ReadbackLatency,
	)
	return o
}

// Enabled reports whether the ocean has a field source.
func (o *Ocean) Enabled() bool { return o.cascade != nil }

// Frame returns the number of completed steps.
func (o *Ocean) Frame() uint64 { return o.frame }

// Step advances the field by dt, dispatches the frame's queries and ends the
// device frame. Call once per tick after all systems have queried.
func (o *Ocean) Step(dt float64) {
	o.frame++
	if o.cascade == nil {
		return
	}
	o.cascade.Update(dt)
	t := o.cascade.Time()
	for _, e := range o.Engines() {
		e.Update(t)
	}
	o.device.EndFrame()
}

// Recenter moves the cascade focus.
func (o *Ocean) Recenter(x, z float32) {
	if o.cascade != nil {
		o.cascade.Recenter(x, z)
	}
}

// Collision returns the surface provider.
func (o *Ocean) Collision() query.CollisionProvider {
	if o.collision == nil {
		return query.NoCollision
	}
	return o.collision
}

// Flow returns the flow provider.
func (o *Ocean) Flow() query.FlowProvider {
	if o.flow == nil {
		return query.NoFlow
	}
	return o.flow
}

// Depth returns the depth provider.
func (o *Ocean) Depth() query.DepthProvider {
	if o.depth == nil {
		return query.NoDepth
	}
	return o.depth
}

// Cascade returns the field cascade, nil when disabled.
func (o *Ocean) Cascade() *field.Cascade { return o.cascade }

// Device returns the compute device, nil when disabled.
func (o *Ocean) Device() *gpu.Device { return o.device }

// Metrics returns the Prometheus collectors shared by all engines.
func (o *Ocean) Metrics() *query.Metrics { return o.metrics }

// Engines returns the displacement, flow and depth engines, or nil when disabled.
func (o *Ocean) Engines() []*query.Engine {
	if o.cascade == nil {
		return nil
	}
	return []*query.Engine{o.displacement, o.flowEngine, o.depthEngine}
}

// Engine returns the engine for kernel k, or nil.
func (o *Ocean) Engine(k query.Kernel) *query.Engine {
	for _, e := range o.Engines() {
		if e.Kernel() == k {
			return e
		}
	}
	return nil
}

// AddObserver attaches obs to every engine.
func (o *Ocean) AddObserver(obs query.Observer) {
	for _, e := range o.Engines() {
		e.AddObserver(obs)
	}
}
