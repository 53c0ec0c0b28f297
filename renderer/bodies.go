package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/swell/camera"
	"github.com/pthm-cable/swell/components"
)

// Tint selects how bodies are colored.
type Tint int

const (
	TintSubmersion Tint = iota // Fill fades as the body sinks
	TintDepth                  // Shallow to deep water under the body
	TintSpeed                  // Still to fast across the surface
)

// BodyStyle controls per-body decorations.
type BodyStyle struct {
	Tint     Tint
	Normals  bool
	Flow     bool
	Selected bool
}

var (
	bodyFloating = rl.Color{R: 250, G: 120, B: 40, A: 255}
	bodyGrounded = rl.Color{R: 120, G: 90, B: 70, A: 255}
	bodyRim      = rl.Color{R: 20, G: 20, B: 20, A: 200}
	bodySelected = rl.Color{R: 255, G: 255, B: 120, A: 255}
	bodyShallow  = rl.Color{R: 240, G: 220, B: 120, A: 255}
	bodyDeep     = rl.Color{R: 90, G: 60, B: 200, A: 255}
	bodyStill    = rl.Color{R: 80, G: 160, B: 255, A: 255}
	bodyFast     = rl.Color{R: 255, G: 60, B: 60, A: 255}
	normalColor  = rl.Color{R: 255, G: 255, B: 255, A: 220}
	flowColor    = rl.Color{R: 60, G: 255, B: 200, A: 220}
)

// Scales from world quantities to tint ramps and vector lengths.
const (
	depthTintRange = 8
	speedTintRange = 6
	normalLength   = 6 // world units for a fully tilted normal
	flowLength     = 2 // world units per unit of current
)

// BodyColor returns the fill for a body under the given tint.
func BodyColor(vel components.Velocity, body components.Body, tint Tint) rl.Color {
	switch tint {
	case TintDepth:
		if math.IsInf(float64(body.WaterDepth), 1) {
			return rl.Gray
		}
		return mix(bodyShallow, bodyDeep, clamp01(body.WaterDepth/depthTintRange))
	case TintSpeed:
		return mix(bodyStill, bodyFast, clamp01(vel.HorizontalSpeed()/speedTintRange))
	}

	fill := bodyFloating
	if body.Grounded {
		fill = bodyGrounded
	}
	fill.A = uint8(255 - 155*clamp01(body.Submersion))
	return fill
}

// DrawBody draws one floating body with the decorations style asks for.
func DrawBody(cam *camera.Camera, pos components.Position, vel components.Velocity, body components.Body, style BodyStyle) {
	if !cam.IsVisible(pos.X, pos.Z, body.Radius) {
		return
	}
	sx, sy := cam.WorldToScreen(pos.X, pos.Z)
	center := rl.Vector2{X: sx, Y: sy}
	r := max(body.Radius*cam.Zoom, 2)

	rl.DrawCircleV(center, r, BodyColor(vel, body, style.Tint))
	rim := bodyRim
	if style.Selected {
		rim = bodySelected
		rl.DrawCircleLinesV(center, r+3, rim)
	}
	rl.DrawCircleLinesV(center, r, rim)

	// The normal's horizontal part points downhill; draw it from the center.
	if style.Normals {
		tip := rl.Vector2{
			X: sx + body.Normal.X*normalLength*cam.Zoom,
			Y: sy + body.Normal.Z*normalLength*cam.Zoom,
		}
		rl.DrawLineV(center, tip, normalColor)
	}
	if style.Flow {
		tip := rl.Vector2{
			X: sx + body.Flow.X*flowLength*cam.Zoom,
			Y: sy + body.Flow.Y*flowLength*cam.Zoom,
		}
		rl.DrawLineV(center, tip, flowColor)
		rl.DrawCircleV(tip, 1.5, flowColor)
	}
}
