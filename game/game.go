// Package game runs the floating-body demo: an ark world of bodies that
// sample the ocean through the query providers every tick.
package game

import (
	"log/slog"
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pthm-cable/swell/camera"
	"github.com/pthm-cable/swell/components"
	"github.com/pthm-cable/swell/config"
	"github.com/pthm-cable/swell/ocean"
	"github.com/pthm-cable/swell/renderer"
	"github.com/pthm-cable/swell/systems"
	"github.com/pthm-cable/swell/telemetry"
	"github.com/pthm-cable/swell/ui"
)

// Options configures a game instance.
type Options struct {
	Config         *config.Config // nil = config.Cfg()
	Seed           int64
	LogStats       bool
	StatsWindowSec float64 // 0 = telemetry.stats_window
	OutputDir      string
	SnapshotDir    string // "" = no snapshots on bookmarks
	Headless       bool
	StepsPerUpdate int
	Registerer     prometheus.Registerer // nil = metrics not registered
	StatsCallback  func(telemetry.WindowStats)
}

// Game holds the complete simulation state.
type Game struct {
	cfg *config.Config

	world      *ecs.World
	bodyMapper *ecs.Map4[components.Position, components.Velocity, components.Body, components.Probe]
	bodyFilter *ecs.Filter3[components.Position, components.Velocity, components.Body]

	ocean    *ocean.Ocean
	buoyancy *systems.BuoyancySystem
	drift    *systems.DriftSystem
	shoal    *systems.ShoalSystem
	motion   *systems.MotionSystem

	camera        *camera.Camera
	oceanRenderer *renderer.OceanRenderer

	// UI
	overlays  *ui.OverlayRegistry
	hud       *ui.HUD
	controls  *ui.ControlsPanel
	inspector *ui.Inspector
	perfPanel *ui.PerfPanel
	showPerf  bool
	selected  ecs.Entity
	selecting bool

	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	outputManager    *telemetry.OutputManager
	bookmarkDetector *telemetry.BookmarkDetector
	snapshotDir      string
	logStats         bool
	statsCallback    func(telemetry.WindowStats)

	rng            *rand.Rand
	rngSeed        int64
	nextID         uint64
	tick           int32
	paused         bool
	headless       bool
	stepsPerUpdate int
	screenWidth    float32
	screenHeight   float32
}

// NewGameWithOptions builds the world, the ocean and the systems, and spawns
// the initial bodies.
func NewGameWithOptions(opts Options) *Game {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}
	steps := opts.StepsPerUpdate
	if steps < 1 {
		steps = 1
	}
	window := opts.StatsWindowSec
	if window <= 0 {
		window = cfg.Telemetry.StatsWindow
	}

	world := ecs.NewWorld()
	bounds := systems.Bounds{MaxX: float32(cfg.World.Width), MaxZ: float32(cfg.World.Depth)}

	g := &Game{
		cfg:        cfg,
		world:      world,
		bodyMapper: ecs.NewMap4[components.Position, components.Velocity, components.Body, components.Probe](world),
		bodyFilter: ecs.NewFilter3[components.Position, components.Velocity, components.Body](world),

		ocean:    ocean.New(cfg, opts.Registerer),
		buoyancy: systems.NewBuoyancySystem(world, float32(cfg.Physics.Gravity)),
		drift:    systems.NewDriftSystem(world, float32(cfg.Bodies.FlowCoupling)),
		shoal:    systems.NewShoalSystem(world, float32(cfg.Bodies.GroundedDrag)),
		motion:   systems.NewMotionSystem(world, bounds),

		camera: camera.New(float32(cfg.Screen.Width), float32(cfg.Screen.Height),
			bounds.MinX, bounds.MinZ, bounds.MaxX, bounds.MaxZ),

		collector:        telemetry.NewCollector(window, cfg.Derived.DT32),
		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		bookmarkDetector: telemetry.NewBookmarkDetector(cfg.Telemetry.BookmarkHistory),
		snapshotDir:      opts.SnapshotDir,
		logStats:         opts.LogStats,
		statsCallback:    opts.StatsCallback,

		overlays: ui.NewOverlayRegistry(),

		rng:            rand.New(rand.NewSource(opts.Seed)),
		rngSeed:        opts.Seed,
		headless:       opts.Headless,
		stepsPerUpdate: steps,
		screenWidth:    float32(cfg.Screen.Width),
		screenHeight:   float32(cfg.Screen.Height),
	}
	g.ocean.AddObserver(g.collector)

	if !opts.Headless {
		g.oceanRenderer = renderer.NewOceanRenderer(cfg.Ocean.SliceResolution,
			float32(cfg.Ocean.WaveAmplitude), float32(cfg.Ocean.SeabedDepth))
		g.hud = ui.NewHUD()
		g.controls = ui.NewControlsPanel(10, 200, 220)
		g.inspector = ui.NewInspector(int32(cfg.Screen.Width)-270, 10, 260)
		g.perfPanel = ui.NewPerfPanel(int32(cfg.Screen.Width)-270, 10)
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		slog.Error("failed to create output manager", "error", err)
	}
	g.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	g.spawnInitialBodies()
	return g
}

// Update handles input and runs the configured number of simulation steps.
func (g *Game) Update() {
	g.handleInput()

	if g.paused {
		return
	}
	for range g.stepsPerUpdate {
		g.simulationStep()
	}
}

// UpdateHeadless runs simulation steps without reading input.
func (g *Game) UpdateHeadless() {
	for range g.stepsPerUpdate {
		g.simulationStep()
	}
}

// Tick returns the current simulation tick.
func (g *Game) Tick() int32 {
	return g.tick
}

// Ocean returns the ocean the bodies float on.
func (g *Game) Ocean() *ocean.Ocean {
	return g.ocean
}

// BodyCount returns the number of live bodies.
func (g *Game) BodyCount() int {
	n := 0
	query := g.bodyFilter.Query()
	for query.Next() {
		n++
	}
	return n
}

// Select inspects the body nearest to (x, z), if one lies within twice its
// radius. Returns false and clears the selection otherwise.
func (g *Game) Select(x, z float32) bool {
	g.selected, g.selecting = g.bodyAt(x, z)
	return g.selecting
}

// Selected returns a copy of the inspected body's state.
func (g *Game) Selected() (*ui.InspectorData, bool) {
	if !g.selecting || !g.world.Alive(g.selected) {
		return nil, false
	}
	pos, vel, body, _ := g.bodyMapper.Get(g.selected)
	return &ui.InspectorData{Position: *pos, Velocity: *vel, Body: *body}, true
}

// bodyAt finds the closest body whose pick radius covers (x, z).
func (g *Game) bodyAt(x, z float32) (ecs.Entity, bool) {
	var best ecs.Entity
	found := false
	bestD := float32(math.Inf(1))
	query := g.bodyFilter.Query()
	for query.Next() {
		pos, _, body := query.Get()
		dx, dz := pos.X-x, pos.Z-z
		d := dx*dx + dz*dz
		pick := 2 * body.Radius
		if d <= pick*pick && d < bestD {
			best, bestD, found = query.Entity(), d, true
		}
	}
	return best, found
}

// Unload releases all resources.
func (g *Game) Unload() {
	if g.oceanRenderer != nil {
		g.oceanRenderer.Unload()
	}
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}
