package renderer

import (
	"math"
	"testing"

	"github.com/pthm-cable/swell/components"
)

func TestBodyColor_SubmersionFades(t *testing.T) {
	dry := BodyColor(components.Velocity{}, components.Body{Submersion: 0}, TintSubmersion)
	wet := BodyColor(components.Velocity{}, components.Body{Submersion: 1}, TintSubmersion)
	if dry.A != 255 || wet.A != 100 {
		t.Errorf("alpha dry=%d wet=%d, want 255 and 100", dry.A, wet.A)
	}

	grounded := BodyColor(components.Velocity{}, components.Body{Grounded: true}, TintSubmersion)
	if grounded.R != bodyGrounded.R || grounded.G != bodyGrounded.G {
		t.Errorf("grounded body should use the grounded fill, got %+v", grounded)
	}
}

func TestBodyColor_DepthTint(t *testing.T) {
	unknown := components.Body{WaterDepth: float32(math.Inf(1))}
	if c := BodyColor(components.Velocity{}, unknown, TintDepth); c.R != 130 || c.G != 130 {
		t.Errorf("unknown depth should be gray, got %+v", c)
	}

	shallow := BodyColor(components.Velocity{}, components.Body{WaterDepth: 0}, TintDepth)
	deep := BodyColor(components.Velocity{}, components.Body{WaterDepth: 100}, TintDepth)
	if shallow != bodyShallow || deep != bodyDeep {
		t.Errorf("depth ramp ends = %+v %+v", shallow, deep)
	}
}

func TestBodyColor_SpeedTint(t *testing.T) {
	still := BodyColor(components.Velocity{}, components.Body{}, TintSpeed)
	fast := BodyColor(components.Velocity{X: 30}, components.Body{}, TintSpeed)
	if still != bodyStill || fast != bodyFast {
		t.Errorf("speed ramp ends = %+v %+v", still, fast)
	}
}
