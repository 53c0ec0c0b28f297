package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/swell/renderer"
	"github.com/pthm-cable/swell/telemetry"
	"github.com/pthm-cable/swell/ui"
)

const controlsLegend = "Space: pause | </>: speed | LMB: drop body | RMB: inspect | Tab: overlays | P: perf | Home: reset view"

// Draw renders the ocean, the bodies and the UI.
func (g *Game) Draw() {
	g.perfCollector.RecordFrame()

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	if cascade := g.ocean.Cascade(); cascade != nil {
		g.oceanRenderer.ShowOutline = g.overlays.IsEnabled(ui.OverlaySliceOutlines)
		g.oceanRenderer.Update(cascade)
		g.oceanRenderer.Draw(cascade, g.camera)
	}

	style := renderer.BodyStyle{
		Tint:    g.bodyTint(),
		Normals: g.overlays.IsEnabled(ui.OverlayNormals),
		Flow:    g.overlays.IsEnabled(ui.OverlayFlowVectors),
	}
	query := g.bodyFilter.Query()
	for query.Next() {
		pos, vel, body := query.Get()
		style.Selected = g.selecting && query.Entity() == g.selected
		renderer.DrawBody(g.camera, *pos, *vel, *body, style)
	}

	g.drawUI()

	rl.EndDrawing()
}

func (g *Game) bodyTint() renderer.Tint {
	switch {
	case g.overlays.IsEnabled(ui.OverlayDepthTint):
		return renderer.TintDepth
	case g.overlays.IsEnabled(ui.OverlaySpeedTint):
		return renderer.TintSpeed
	}
	return renderer.TintSubmersion
}

func (g *Game) drawUI() {
	data := ui.HUDData{
		Title:     "Swell",
		Tick:      g.tick,
		Frame:     g.ocean.Frame(),
		Bodies:    g.BodyCount(),
		Speed:     g.stepsPerUpdate,
		FPS:       rl.GetFPS(),
		Paused:    g.paused,
		Following: g.overlays.IsEnabled(ui.OverlayFollowCascade),
	}
	for _, e := range g.ocean.Engines() {
		data.Engines = append(data.Engines, ui.EngineLine{
			Name:     e.Kernel().String(),
			Sites:    e.Sites(),
			InFlight: e.InFlight(),
		})
	}
	y := g.hud.Draw(data)

	g.controls.SetPosition(10, y)
	g.controls.Draw(g.overlays)

	right := int32(g.screenWidth) - 270
	top := int32(10)
	if body, ok := g.Selected(); ok {
		g.inspector.SetPosition(right, top)
		top = g.inspector.Draw(body) + 10
	}
	if g.showPerf {
		stats := g.perfCollector.Stats()
		g.perfPanel.SetPosition(right, top)
		g.perfPanel.Draw(telemetry.Phases, stats.PhaseAvg, stats.PhasePct, stats.AvgTickDuration)
	}

	g.hud.DrawControls(int32(g.screenHeight), controlsLegend)
}
