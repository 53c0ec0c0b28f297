package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// EngineLine summarizes one query engine for the HUD.
type EngineLine struct {
	Name     string
	Sites    int
	InFlight int
}

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title     string
	Tick      int32
	Frame     uint64
	Bodies    int
	Speed     int
	FPS       int32
	Paused    bool
	Following bool
	Engines   []EngineLine
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer()}
}

// Draw renders the HUD and returns the Y below it.
func (h *HUD) Draw(data HUDData) int32 {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Tick: %d | Frame: %d | Bodies: %d", data.Tick, data.Frame, data.Bodies),
		10, 35, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Speed: %dx | FPS: %d", data.Speed, data.FPS),
		10, 55, 16, rl.LightGray,
	)

	y := int32(75)
	for _, e := range data.Engines {
		rl.DrawText(fmt.Sprintf("%-12s %3d sites %2d in flight", e.Name, e.Sites, e.InFlight), 10, y, 14, rl.Gray)
		y += 16
	}

	status := "Running"
	if data.Paused {
		status = "PAUSED"
	}
	if data.Following {
		status += " | cascade follows camera"
	}
	rl.DrawText(status, 10, y+2, 16, rl.Yellow)
	return y + 24
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders per-phase tick timings.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{renderer: NewRenderer(), x: x, y: y}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders phase averages in the given order.
func (p *PerfPanel) Draw(phases []string, avg map[string]time.Duration, pct map[string]float64, total time.Duration) {
	x, y := p.x, p.y

	rl.DrawText("Tick Phases", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Total: %s", total.Round(time.Microsecond)), x, y, 14, rl.Yellow)
	y += 16

	for _, name := range phases {
		share := pct[name]
		color := rl.LightGray
		if share > 50 {
			color = rl.Red
		} else if share > 25 {
			color = rl.Orange
		}
		rl.DrawText(
			fmt.Sprintf("%-10s %8s %5.1f%%", name, avg[name].Round(time.Microsecond), share),
			x, y, 12, color,
		)
		y += 14
	}
}
