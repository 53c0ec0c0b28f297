// Package renderer draws the ocean cascade and the floating bodies with raylib.
package renderer

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/swell/camera"
	"github.com/pthm-cable/swell/field"
)

var (
	deepWater    = color.RGBA{R: 8, G: 36, B: 74, A: 255}
	shallowWater = color.RGBA{R: 40, G: 140, B: 170, A: 255}
	crestFoam    = color.RGBA{R: 220, G: 235, B: 240, A: 255}
	sand         = color.RGBA{R: 194, G: 178, B: 128, A: 255}
	sliceOutline = rl.Color{R: 255, G: 255, B: 255, A: 60}
)

// OceanRenderer draws the field slices as textures, coarsest first so finer
// slices cover it.
type OceanRenderer struct {
	textures    []rl.Texture2D
	pixels      []color.RGBA
	resolution  int
	amplitude   float32 // Height that maps to full foam
	depthScale  float32 // Depth that maps to full deep water
	ShowOutline bool

	initialized bool
}

// NewOceanRenderer creates a renderer for slices of the given resolution.
func NewOceanRenderer(resolution int, amplitude, depthScale float32) *OceanRenderer {
	return &OceanRenderer{
		resolution:  resolution,
		amplitude:   amplitude,
		depthScale:  depthScale,
		ShowOutline: true,
	}
}

// Init creates one texture per slice (must be called after raylib window is created).
func (r *OceanRenderer) Init(slices int) {
	if r.initialized {
		return
	}
	img := rl.GenImageColor(r.resolution, r.resolution, rl.Black)
	r.textures = make([]rl.Texture2D, slices)
	for i := range r.textures {
		r.textures[i] = rl.LoadTextureFromImage(img)
		rl.SetTextureFilter(r.textures[i], rl.FilterBilinear)
	}
	rl.UnloadImage(img)
	r.pixels = make([]color.RGBA, r.resolution*r.resolution)
	r.initialized = true
}

// Update uploads the current slice contents.
func (r *OceanRenderer) Update(src field.Source) {
	if !src.Initialized() {
		return
	}
	if !r.initialized {
		r.Init(src.SliceCount())
	}
	for i := range min(len(r.textures), src.SliceCount()) {
		s := src.Slice(i)
		if s.Resolution != r.resolution {
			continue
		}
		for iz := range s.Resolution {
			for ix := range s.Resolution {
				r.pixels[iz*s.Resolution+ix] = r.shade(s.Displacement(ix, iz), s.WaterDepth(ix, iz))
			}
		}
		rl.UpdateTexture(r.textures[i], r.pixels)
	}
}

// shade colors one texel: sand where dry, otherwise blue by depth with foam
// toward the crests.
func (r *OceanRenderer) shade(disp field.Vec3, depth float32) color.RGBA {
	if depth <= 0 {
		return sand
	}
	water := mix(shallowWater, deepWater, clamp01(depth/r.depthScale))
	return mix(water, crestFoam, clamp01(disp.Y/r.amplitude)*0.6)
}

// Draw renders every slice through the camera.
func (r *OceanRenderer) Draw(src field.Source, cam *camera.Camera) {
	if !r.initialized || !src.Initialized() {
		return
	}
	texRect := rl.Rectangle{Width: float32(r.resolution), Height: float32(r.resolution)}
	for i := min(len(r.textures), src.SliceCount()) - 1; i >= 0; i-- {
		dst := screenRect(cam, src.Slice(i).Bounds())
		rl.DrawTexturePro(r.textures[i], texRect, dst, rl.Vector2{}, 0, rl.White)
		if r.ShowOutline {
			rl.DrawRectangleLinesEx(dst, 1, sliceOutline)
		}
	}
}

// Unload frees GPU resources.
func (r *OceanRenderer) Unload() {
	if !r.initialized {
		return
	}
	for _, t := range r.textures {
		rl.UnloadTexture(t)
	}
	r.textures = nil
	r.initialized = false
}

func screenRect(cam *camera.Camera, b field.Rect) rl.Rectangle {
	x0, y0 := cam.WorldToScreen(b.MinX, b.MinZ)
	x1, y1 := cam.WorldToScreen(b.MaxX, b.MaxZ)
	return rl.Rectangle{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

func mix(a, b color.RGBA, t float32) color.RGBA {
	l := func(x, y uint8) uint8 { return uint8(float32(x) + (float32(y)-float32(x))*t) }
	return color.RGBA{R: l(a.R, b.R), G: l(a.G, b.G), B: l(a.B, b.B), A: 255}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
