package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultsDerived(t *testing.T) {
	cfg := Default()

	if cfg.Derived.DT32 != float32(cfg.Physics.DT) {
		t.Errorf("DT32 = %v, want %v", cfg.Derived.DT32, cfg.Physics.DT)
	}
	// 5 slices from texel 1: coarsest texel 16, 64 texels wide
	if cfg.Derived.CoarsestTexel != 16 || cfg.Derived.CoarsestExtent != 1024 {
		t.Errorf("coarsest texel/extent = %v/%v, want 16/1024",
			cfg.Derived.CoarsestTexel, cfg.Derived.CoarsestExtent)
	}
	if cfg.Derived.CascadeCenterX32 != 512 || cfg.Derived.CascadeCenterZ32 != 512 {
		t.Errorf("cascade center = %v,%v, want 512,512",
			cfg.Derived.CascadeCenterX32, cfg.Derived.CascadeCenterZ32)
	}
	if want := cfg.Query.FramesInFlight + cfg.GPU.ReadbackLatency + 1; cfg.Query.StaleFrames != want {
		t.Errorf("stale frames = %d, want %d", cfg.Query.StaleFrames, want)
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := writeFile(t, "ocean:\n  slice_count: 3\nbodies:\n  count: 7\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Ocean.SliceCount != 3 || cfg.Bodies.Count != 7 {
		t.Errorf("overrides not applied: slices=%d bodies=%d", cfg.Ocean.SliceCount, cfg.Bodies.Count)
	}
	if cfg.Ocean.SliceResolution != 64 || cfg.Query.MaxPoints != 4096 {
		t.Error("unset fields should keep their defaults")
	}
	if cfg.Derived.CoarsestTexel != 4 {
		t.Errorf("derived values should follow overrides, coarsest texel = %v", cfg.Derived.CoarsestTexel)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad yaml", "ocean: [", "parsing config file"},
		{"zero dt", "physics:\n  dt: 0\n", "physics.dt"},
		{"no slices", "ocean:\n  slice_count: 0\n", "ocean.slice_count"},
		{"tiny slices", "ocean:\n  slice_resolution: 1\n", "ocean.slice_resolution"},
		{"no points", "query:\n  max_points: 0\n", "query.max_points"},
		{"no latency", "gpu:\n  readback_latency: 0\n", "gpu.readback_latency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load error = %v, want mention of %q", err, tt.want)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFinalizeRecomputes(t *testing.T) {
	cfg := Default()
	cfg.Ocean.BaseTexelSize = 2
	cfg.World.Center = false
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if cfg.Derived.CoarsestTexel != 32 {
		t.Errorf("coarsest texel = %v, want 32", cfg.Derived.CoarsestTexel)
	}

	cfg.Query.FramesInFlight = 0
	if err := cfg.Finalize(); err == nil {
		t.Error("expected validation error")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Bodies.Density = 0.7
	path := filepath.Join(t.TempDir(), "out.yaml")

	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Bodies.Density != 0.7 || loaded.Query.HashSalt != cfg.Query.HashSalt {
		t.Errorf("round trip lost values: %+v", loaded.Bodies)
	}
}

func TestCfgAfterInit(t *testing.T) {
	MustInit("")
	if Cfg().Physics.Gravity != 9.81 {
		t.Errorf("gravity = %v, want 9.81", Cfg().Physics.Gravity)
	}
}
