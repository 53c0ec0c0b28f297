package ui

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func TestOverlayRegistry_ToggleAndExclusive(t *testing.T) {
	reg := NewOverlayRegistry()

	if reg.IsEnabled(OverlayDepthTint) {
		t.Fatal("overlays should start disabled")
	}
	if !reg.Toggle(OverlayDepthTint) {
		t.Fatal("toggle should enable depth tint")
	}
	if !reg.Toggle(OverlaySpeedTint) {
		t.Fatal("toggle should enable speed tint")
	}
	if reg.IsEnabled(OverlayDepthTint) {
		t.Error("enabling speed tint should disable depth tint")
	}
	if reg.Toggle(OverlaySpeedTint) {
		t.Error("second toggle should disable speed tint")
	}
	if reg.Toggle("missing") {
		t.Error("unknown overlay should never enable")
	}
}

func TestOverlayRegistry_HandleKeyPress(t *testing.T) {
	reg := NewOverlayRegistry()

	id, on, ok := reg.HandleKeyPress(rl.KeyO)
	if !ok || id != OverlaySliceOutlines || !on {
		t.Fatalf("KeyO = (%q, %v, %v), want slice outlines enabled", id, on, ok)
	}
	if _, _, ok := reg.HandleKeyPress(rl.KeyQ); ok {
		t.Error("unbound key should not toggle anything")
	}
	if len(reg.Keys()) != 6 {
		t.Errorf("expected 6 bound keys, got %d", len(reg.Keys()))
	}
}

func TestOverlayRegistry_Categories(t *testing.T) {
	reg := NewOverlayRegistry()
	cats := reg.Categories()
	if len(cats) != 2 || cats[0] != "ocean" || cats[1] != "bodies" {
		t.Fatalf("categories = %v, want [ocean bodies]", cats)
	}
	if n := len(reg.ByCategory("bodies")); n != 4 {
		t.Errorf("bodies category has %d overlays, want 4", n)
	}
}
