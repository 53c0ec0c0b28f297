// LOD preview tool - pick a point and a minimum length, watch which slice
// answers and what each provider returns.
//
// Usage: go run ./cmd/lodpreview [-config path]
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/swell/camera"
	"github.com/pthm-cable/swell/config"
	"github.com/pthm-cable/swell/field"
	"github.com/pthm-cable/swell/ocean"
	"github.com/pthm-cable/swell/query"
	"github.com/pthm-cable/swell/renderer"
)

const (
	windowWidth  = 1100
	windowHeight = 720
	previewSize  = 700
	panelWidth   = windowWidth - previewSize - 30
)

var (
	selectedOutline = rl.Color{R: 255, G: 220, B: 0, A: 255}
	probeColor      = rl.Color{R: 255, G: 60, B: 60, A: 255}
)

// probe is the query site the preview samples every frame.
type probe struct {
	pos       field.Vec3
	minLength float32

	lod    [1]query.Sample
	height *query.SampleHeightHelper
	flow   *query.SampleFlowHelper
	depth  *query.SampleDepthHelper
	lodKey int
}

func newProbe() *probe {
	return &probe{
		height: query.NewSampleHeightHelper(1),
		flow:   query.NewSampleFlowHelper(1),
		depth:  query.NewSampleDepthHelper(1),
		lodKey: query.SaltedHash("lodpreview", 1),
	}
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	rl.InitWindow(windowWidth, windowHeight, "LOD Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	o := ocean.New(cfg, nil)
	view := newView(o, cfg)
	defer view.Unload()

	p := newProbe()
	p.pos = field.Vec3{X: cfg.Derived.CascadeCenterX32, Z: cfg.Derived.CascadeCenterZ32}
	maxLength := cfg.Derived.CoarsestTexel * 2
	animating := true

	for !rl.WindowShouldClose() {
		// Click inside the preview moves the probe
		mouse := rl.GetMousePosition()
		if rl.IsMouseButtonDown(rl.MouseButtonLeft) && mouse.X < previewSize && mouse.Y < previewSize {
			x, z := view.cam.ScreenToWorld(mouse.X, mouse.Y)
			p.pos.X, p.pos.Z = x, z
		}

		status := p.sample(o)
		if animating {
			o.Step(cfg.Physics.DT)
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		rl.BeginScissorMode(0, 0, previewSize, previewSize)
		view.Draw(o, p)
		rl.EndScissorMode()
		rl.DrawRectangleLines(0, 0, previewSize, previewSize, rl.DarkGray)

		// Control panel
		panelX := float32(previewSize + 20)
		panelY := float32(10)

		rl.DrawText("Query LOD", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		rl.DrawText("Minimum length (world units)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		p.minLength = gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0", fmt.Sprintf("%.0f", maxLength),
			p.minLength, 0, maxLength,
		)
		rl.DrawText(fmt.Sprintf("%.2f", p.minLength), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		panelY += 40

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, toggleText(animating, "Pause", "Animate")) {
			animating = !animating
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Step") {
			o.Step(cfg.Physics.DT)
		}
		panelY += 40

		if dev := o.Device(); dev != nil {
			if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, toggleText(dev.Lost(), "Restore", "Lose device")) {
				if dev.Lost() {
					dev.Restore()
				} else {
					dev.Lose()
				}
			}
			panelY += 45
		}

		for _, line := range p.report(o, status) {
			rl.DrawText(line, int32(panelX), int32(panelY), 16, rl.DarkGray)
			panelY += 22
		}

		rl.EndDrawing()
	}
}

// sample points the helpers at the probe and queries the depth engine
// directly, whose samples carry the slice index that answered.
func (p *probe) sample(o *ocean.Ocean) query.Status {
	p.height.Init(p.pos, p.minLength)
	p.flow.Init(p.pos, p.minLength)
	p.depth.Init(p.pos, p.minLength)

	e := o.Engine(query.KernelDepth)
	if e == nil {
		return query.StatusOK
	}
	return e.Query(p.lodKey, p.minLength, []field.Vec3{p.pos}, p.lod[:])
}

// report formats the probe results for the panel.
func (p *probe) report(o *ocean.Ocean, status query.Status) []string {
	lines := []string{
		fmt.Sprintf("Probe: (%.1f, %.1f)", p.pos.X, p.pos.Z),
		fmt.Sprintf("Frame: %d", o.Frame()),
	}
	if cascade := o.Cascade(); cascade != nil {
		lines = append(lines, fmt.Sprintf("Preferred slice: %d", query.SelectSlice(cascade, p.minLength)))
	}
	if query.RetrieveSucceeded(status) {
		lines = append(lines, fmt.Sprintf("Sampled slice: %d", int(p.lod[0].W)))
	} else {
		lines = append(lines, "Sampled slice: pending")
	}

	lines = append(lines, "")
	if h, n, v, ok := p.height.Sample(o.Collision()); ok {
		lines = append(lines,
			fmt.Sprintf("Height: %.3f", h),
			fmt.Sprintf("Normal: (%.2f, %.2f, %.2f)", n.X, n.Y, n.Z),
			fmt.Sprintf("Surface vel: (%.2f, %.2f, %.2f)", v.X, v.Y, v.Z),
		)
	} else {
		lines = append(lines, "Height: pending")
	}
	if f, ok := p.flow.Sample(o.Flow()); ok {
		lines = append(lines, fmt.Sprintf("Flow: (%.2f, %.2f)", f.X, f.Y))
	}
	if d, shore, ok := p.depth.Sample(o.Depth()); ok {
		lines = append(lines, fmt.Sprintf("Depth: %.2f  Shore: %.2f", d, shore))
	}

	lines = append(lines, "")
	if e := o.Engine(query.KernelDepth); e != nil {
		lines = append(lines, fmt.Sprintf("Probe site: %s", e.State(p.lodKey)))
	}
	for _, e := range o.Engines() {
		lines = append(lines, fmt.Sprintf("%s: %d sites, %d in flight", e.Kernel(), e.Sites(), e.InFlight()))
	}
	return lines
}

// view draws the cascade inside the preview square.
type view struct {
	cam   *camera.Camera
	ocean *renderer.OceanRenderer
}

func newView(o *ocean.Ocean, cfg *config.Config) *view {
	half := cfg.Derived.CoarsestExtent / 2
	cx, cz := cfg.Derived.CascadeCenterX32, cfg.Derived.CascadeCenterZ32
	v := &view{
		cam: camera.New(previewSize, previewSize, cx-half, cz-half, cx+half, cz+half),
		ocean: renderer.NewOceanRenderer(cfg.Ocean.SliceResolution,
			float32(cfg.Ocean.WaveAmplitude), float32(cfg.Ocean.SeabedDepth)),
	}
	if o.Cascade() != nil {
		v.ocean.Init(o.Cascade().SliceCount())
	}
	return v
}

func (v *view) Draw(o *ocean.Ocean, p *probe) {
	cascade := o.Cascade()
	if cascade == nil {
		rl.DrawText("ocean disabled", 20, 20, 20, rl.Gray)
		return
	}
	v.ocean.Update(cascade)
	v.ocean.Draw(cascade, v.cam)

	if w := int(p.lod[0].W); w >= 0 && w < cascade.SliceCount() {
		b := cascade.Slice(w).Bounds()
		x0, y0 := v.cam.WorldToScreen(b.MinX, b.MinZ)
		x1, y1 := v.cam.WorldToScreen(b.MaxX, b.MaxZ)
		rl.DrawRectangleLinesEx(rl.Rectangle{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}, 2, selectedOutline)
	}

	sx, sy := v.cam.WorldToScreen(p.pos.X, p.pos.Z)
	rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, 5, probeColor)
	if p.minLength > 0 {
		rl.DrawCircleLinesV(rl.Vector2{X: sx, Y: sy}, p.minLength*v.cam.Zoom, probeColor)
	}
}

func (v *view) Unload() {
	v.ocean.Unload()
}

// toggleText returns ifTrue when cond holds, otherwise ifFalse.
func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
