package game

import (
	"github.com/pthm-cable/swell/telemetry"
	"github.com/pthm-cable/swell/ui"
)

// simulationStep runs a single tick. Systems query the providers first, then
// the ocean steps, which dispatches everything they posted.
func (g *Game) simulationStep() {
	dt := g.cfg.Derived.DT32
	g.perfCollector.StartTick()

	g.perfCollector.StartPhase(telemetry.PhaseBuoyancy)
	g.buoyancy.Update(g.ocean.Collision(), dt)

	g.perfCollector.StartPhase(telemetry.PhaseDrift)
	g.drift.Update(g.ocean.Flow(), dt)

	g.perfCollector.StartPhase(telemetry.PhaseShoal)
	g.shoal.Update(g.ocean.Depth(), dt)

	g.perfCollector.StartPhase(telemetry.PhaseMotion)
	g.motion.Update(dt)

	g.perfCollector.StartPhase(telemetry.PhaseField)
	if g.overlays.IsEnabled(ui.OverlayFollowCascade) {
		g.ocean.Recenter(g.camera.X, g.camera.Z)
	}
	g.ocean.Step(g.cfg.Physics.DT)

	g.tick++

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()

	g.perfCollector.EndTick()
}
