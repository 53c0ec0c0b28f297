package ui

import (
	"fmt"
	"math"
	"testing"

	"github.com/pthm-cable/swell/components"
	"github.com/pthm-cable/swell/field"
)

func findField(t *testing.T, id string) FieldDescriptor {
	t.Helper()
	for _, sd := range BodySections() {
		for _, fd := range sd.Fields {
			if fd.ID == id {
				return fd
			}
		}
	}
	t.Fatalf("no field %q", id)
	return FieldDescriptor{}
}

func TestBodySections_Getters(t *testing.T) {
	data := &InspectorData{
		Velocity: components.Velocity{X: 3, Z: 4},
		Body: components.Body{
			ID:         7,
			Submersion: 0.4,
			Normal:     field.Vec3{X: 0.1, Y: 0.99},
			Flow:       field.Vec2{X: -1, Y: 2},
			Grounded:   true,
		},
	}

	tests := []struct {
		id   string
		want float32
	}{
		{"speed", 5},
		{"submersion", 0.4},
		{"normal_x", 0.1},
		{"flow_z", 2},
		{"grounded", 1},
	}
	for _, tt := range tests {
		fd := findField(t, tt.id)
		if got := fd.Getter(data); math.Abs(float64(got-tt.want)) > 1e-6 {
			t.Errorf("%s = %v, want %v", tt.id, got, tt.want)
		}
	}

	if got := findField(t, "id").TextGetter(data); got != "#7" {
		t.Errorf("id text = %q, want #7", got)
	}
}

func TestBodySections_UnknownDepth(t *testing.T) {
	data := &InspectorData{Body: components.Body{WaterDepth: float32(math.Inf(1))}}

	if findField(t, "depth").Visible(data) {
		t.Error("numeric depth should be hidden while unknown")
	}
	if !findField(t, "depth_unknown").Visible(data) {
		t.Error("unknown depth label should be shown")
	}

	data.Body.WaterDepth = 2.5
	if !findField(t, "depth").Visible(data) {
		t.Error("numeric depth should be shown once known")
	}
	if got := fmt.Sprintf(findField(t, "depth").Format, findField(t, "depth").Getter(data)); got != "2.50" {
		t.Errorf("depth text = %q", got)
	}
}

func TestSectionHeight_SkipsHiddenFields(t *testing.T) {
	r := NewRenderer()
	sd := SectionDescriptor{
		Title: "T",
		Fields: []FieldDescriptor{
			{Widget: WidgetText},
			{Widget: WidgetBar},
			{Widget: WidgetText, Visible: func(any) bool { return false }},
		},
	}
	want := 4 + r.Theme.LineHeight*2 + r.Theme.LineHeight + 2
	if got := r.SectionHeight(sd, nil); got != want {
		t.Errorf("SectionHeight = %d, want %d", got, want)
	}

	sd.Visible = func(any) bool { return false }
	if got := r.SectionHeight(sd, nil); got != 0 {
		t.Errorf("hidden section height = %d, want 0", got)
	}
}

func TestNormalize(t *testing.T) {
	if normalize(5, 0, 10) != 0.5 || normalize(-1, 0, 1) != 0 || normalize(3, 0, 1) != 1 {
		t.Error("normalize should clamp into [0, 1]")
	}
	if normalize(1, 1, 1) != 0 {
		t.Error("empty range should map to 0")
	}
}
