package ui

import (
	"fmt"
	"math"

	"github.com/pthm-cable/swell/components"
)

// InspectorData is the selected body as the inspector sees it.
type InspectorData struct {
	Position components.Position
	Velocity components.Velocity
	Body     components.Body
}

func body(d any) *components.Body { return &d.(*InspectorData).Body }

func knownDepth(d any) bool { return !math.IsInf(float64(body(d).WaterDepth), 1) }

func flag(b bool) float32 {
	if b {
		return 1
	}
	return 0
}

// BodySections describes the inspector layout.
func BodySections() []SectionDescriptor {
	return []SectionDescriptor{
		{
			ID:    "body",
			Title: "Body",
			Fields: []FieldDescriptor{
				{ID: "id", Label: "ID", Widget: WidgetText, TextGetter: func(d any) string {
					return fmt.Sprintf("#%d", body(d).ID)
				}},
				{ID: "position", Label: "Position", Widget: WidgetText, TextGetter: func(d any) string {
					p := d.(*InspectorData).Position
					return fmt.Sprintf("%.1f, %.2f, %.1f", p.X, p.Y, p.Z)
				}},
				{ID: "radius", Label: "Radius", Widget: WidgetText, Format: "%.2f",
					Getter: func(d any) float32 { return body(d).Radius }},
				{ID: "speed", Label: "Speed", Widget: WidgetText, Format: "%.2f",
					Getter: func(d any) float32 { return d.(*InspectorData).Velocity.HorizontalSpeed() }},
				{ID: "vy", Label: "Vertical", Widget: WidgetCenteredBar, Range: FieldRange{Min: -5, Max: 5},
					Getter: func(d any) float32 { return d.(*InspectorData).Velocity.Y }},
			},
		},
		{
			ID:    "surface",
			Title: "Surface",
			Fields: []FieldDescriptor{
				{ID: "height", Label: "Height", Widget: WidgetText, Format: "%.3f",
					Getter: func(d any) float32 { return body(d).WaterHeight }},
				{ID: "submersion", Label: "Submerged", Widget: WidgetBar, Range: DefaultRange(),
					Getter: func(d any) float32 { return body(d).Submersion }},
				{ID: "normal_x", Label: "Normal X", Widget: WidgetCenteredBar, Range: CenteredRange(),
					Getter: func(d any) float32 { return body(d).Normal.X }},
				{ID: "normal_z", Label: "Normal Z", Widget: WidgetCenteredBar, Range: CenteredRange(),
					Getter: func(d any) float32 { return body(d).Normal.Z }},
				{ID: "surface_vy", Label: "Surface Vy", Widget: WidgetCenteredBar, Range: FieldRange{Min: -2, Max: 2},
					Getter: func(d any) float32 { return body(d).SurfaceVel.Y }},
			},
		},
		{
			ID:    "flow",
			Title: "Current",
			Fields: []FieldDescriptor{
				{ID: "flow_x", Label: "Flow X", Widget: WidgetCenteredBar, Range: FieldRange{Min: -3, Max: 3},
					Getter: func(d any) float32 { return body(d).Flow.X }},
				{ID: "flow_z", Label: "Flow Z", Widget: WidgetCenteredBar, Range: FieldRange{Min: -3, Max: 3},
					Getter: func(d any) float32 { return body(d).Flow.Y }},
			},
		},
		{
			ID:    "seabed",
			Title: "Seabed",
			Fields: []FieldDescriptor{
				{ID: "depth", Label: "Depth", Widget: WidgetText, Format: "%.2f", Visible: knownDepth,
					Getter: func(d any) float32 { return body(d).WaterDepth }},
				{ID: "depth_unknown", Label: "Depth", Widget: WidgetText,
					Visible:    func(d any) bool { return !knownDepth(d) },
					TextGetter: func(any) string { return "unknown" }},
				{ID: "shore", Label: "Shore", Widget: WidgetText, Format: "%.2f", Visible: knownDepth,
					Getter: func(d any) float32 { return body(d).ShoreDistance }},
				{ID: "grounded", Label: "Grounded", Widget: WidgetFlag,
					Getter: func(d any) float32 { return flag(body(d).Grounded) }},
			},
		},
	}
}

// Inspector renders the selected-body panel.
type Inspector struct {
	renderer *Renderer
	sections []SectionDescriptor
	x, y     int32
	width    int32
}

// NewInspector creates a new inspector panel.
func NewInspector(x, y, width int32) *Inspector {
	return &Inspector{
		renderer: NewRenderer(),
		sections: BodySections(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the inspector position.
func (ins *Inspector) SetPosition(x, y int32) {
	ins.x = x
	ins.y = y
}

// Draw renders the inspector panel for data and returns the Y below it.
func (ins *Inspector) Draw(data *InspectorData) int32 {
	r := ins.renderer
	padding := r.Theme.Padding

	height := padding * 2
	for _, sd := range ins.sections {
		height += r.SectionHeight(sd, data)
	}
	r.DrawPanel(ins.x, ins.y, ins.width, height)

	y := ins.y + padding
	for _, sd := range ins.sections {
		y = r.DrawSection(ins.x+padding, y, sd, data, ins.width-padding*2)
	}
	return ins.y + height
}
