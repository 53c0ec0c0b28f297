// Field snapshot tool - steps the ocean and renders its slices to a PNG file
// for inspection.
//
// Usage: go run ./cmd/fieldshot -steps 120 -out field.png
package main

import (
	"flag"
	"fmt"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/swell/camera"
	"github.com/pthm-cable/swell/config"
	"github.com/pthm-cable/swell/ocean"
	"github.com/pthm-cable/swell/renderer"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	outPath := flag.String("out", "field.png", "Output PNG path")
	size := flag.Int("size", 768, "Render width and height")
	steps := flag.Int("steps", 60, "Ocean steps before the snapshot")
	outline := flag.Bool("outline", true, "Draw slice outlines")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	o := ocean.New(cfg, nil)
	cascade := o.Cascade()
	if cascade == nil {
		fmt.Fprintln(os.Stderr, "Ocean is disabled in this config")
		os.Exit(1)
	}
	for range *steps {
		o.Step(cfg.Physics.DT)
	}

	// Initialize raylib with hidden window
	rl.SetConfigFlags(rl.FlagWindowHidden)
	rl.InitWindow(int32(*size), int32(*size), "Field Snapshot")
	defer rl.CloseWindow()

	half := cfg.Derived.CoarsestExtent / 2
	cx, cz := cascade.Center()
	cam := camera.New(float32(*size), float32(*size), cx-half, cz-half, cx+half, cz+half)

	view := renderer.NewOceanRenderer(cfg.Ocean.SliceResolution,
		float32(cfg.Ocean.WaveAmplitude), float32(cfg.Ocean.SeabedDepth))
	view.ShowOutline = *outline
	view.Init(cascade.SliceCount())
	view.Update(cascade)
	defer view.Unload()

	// Create render texture
	target := rl.LoadRenderTexture(int32(*size), int32(*size))
	defer rl.UnloadRenderTexture(target)

	rl.BeginTextureMode(target)
	rl.ClearBackground(rl.Black)
	view.Draw(cascade, cam)
	rl.EndTextureMode()

	// Get image from texture and flip it (OpenGL convention)
	img := rl.LoadImageFromTexture(target.Texture)
	rl.ImageFlipVertical(img)

	success := rl.ExportImage(*img, *outPath)
	rl.UnloadImage(img)

	if success {
		fmt.Printf("Field rendered to: %s (%dx%d, t=%.2fs)\n", *outPath, *size, *size, cascade.Time())
	} else {
		fmt.Fprintf(os.Stderr, "Failed to export image\n")
		os.Exit(1)
	}
}
