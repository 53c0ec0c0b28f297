// Package main provides CMA-ES calibration of the floating-body parameters.
package main

import (
	"github.com/pthm-cable/swell/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "density", Path: "bodies.density", Min: 0.2, Max: 0.9, Default: 0.55},
			{Name: "drag", Path: "bodies.drag", Min: 0.1, Max: 4.0, Default: 0.8},
			{Name: "flow_coupling", Path: "bodies.flow_coupling", Min: 0.05, Max: 3.0, Default: 0.6},
			{Name: "grounded_drag", Path: "bodies.grounded_drag", Min: 0.5, Max: 20.0, Default: 6.0},
			{Name: "normal_offset", Path: "query.normal_offset", Min: 0.05, Max: 2.0, Default: 0.25},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)

	cfg.Bodies.Density = clamped[0]
	cfg.Bodies.Drag = clamped[1]
	cfg.Bodies.FlowCoupling = clamped[2]
	cfg.Bodies.GroundedDrag = clamped[3]
	cfg.Query.NormalOffset = clamped[4]
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Bodies.Density,
		cfg.Bodies.Drag,
		cfg.Bodies.FlowCoupling,
		cfg.Bodies.GroundedDrag,
		cfg.Query.NormalOffset,
	}
}
