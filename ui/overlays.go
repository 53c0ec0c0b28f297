package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// OverlayID uniquely identifies an overlay.
type OverlayID string

// Standard overlay IDs.
const (
	OverlaySliceOutlines OverlayID = "slice_outlines"
	OverlayFollowCascade OverlayID = "follow_cascade"
	OverlayNormals       OverlayID = "normals"
	OverlayFlowVectors   OverlayID = "flow_vectors"
	OverlayDepthTint     OverlayID = "depth_tint"
	OverlaySpeedTint     OverlayID = "speed_tint"
)

// OverlayDescriptor defines an overlay that can be toggled.
type OverlayDescriptor struct {
	ID          OverlayID   // Unique identifier
	Name        string      // Display name
	Description string      // What this overlay shows
	Key         int32       // Keyboard key to toggle (0 = no key)
	KeyLabel    string      // Key label for display (e.g., "O", "N")
	Category    string      // Grouping (e.g., "ocean", "bodies")
	Exclusive   []OverlayID // Other overlays to disable when this is enabled
}

// OverlayRegistry manages overlay state and metadata.
type OverlayRegistry struct {
	descriptors []OverlayDescriptor
	byID        map[OverlayID]OverlayDescriptor
	enabled     map[OverlayID]bool
}

// NewOverlayRegistry creates a registry with default overlays.
func NewOverlayRegistry() *OverlayRegistry {
	reg := &OverlayRegistry{
		byID:    make(map[OverlayID]OverlayDescriptor),
		enabled: make(map[OverlayID]bool),
	}
	reg.registerDefaults()
	return reg
}

func (r *OverlayRegistry) registerDefaults() {
	r.Register(OverlayDescriptor{
		ID:          OverlaySliceOutlines,
		Name:        "Slice Outlines",
		Description: "Outline the footprint of every LOD slice",
		Key:         rl.KeyO,
		KeyLabel:    "O",
		Category:    "ocean",
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayFollowCascade,
		Name:        "Follow Camera",
		Description: "Recenter the cascade on the camera every tick",
		Key:         rl.KeyF,
		KeyLabel:    "F",
		Category:    "ocean",
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayNormals,
		Name:        "Normals",
		Description: "Draw the sampled surface normal of each body",
		Key:         rl.KeyN,
		KeyLabel:    "N",
		Category:    "bodies",
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayFlowVectors,
		Name:        "Flow",
		Description: "Draw the sampled current under each body",
		Key:         rl.KeyV,
		KeyLabel:    "V",
		Category:    "bodies",
	})

	r.Register(OverlayDescriptor{
		ID:          OverlayDepthTint,
		Name:        "Depth Tint",
		Description: "Color bodies by water depth",
		Key:         rl.KeyD,
		KeyLabel:    "D",
		Category:    "bodies",
		Exclusive:   []OverlayID{OverlaySpeedTint},
	})

	r.Register(OverlayDescriptor{
		ID:          OverlaySpeedTint,
		Name:        "Speed Tint",
		Description: "Color bodies by horizontal speed",
		Key:         rl.KeyS,
		KeyLabel:    "S",
		Category:    "bodies",
		Exclusive:   []OverlayID{OverlayDepthTint},
	})
}

// Register adds an overlay to the registry, initially disabled.
func (r *OverlayRegistry) Register(desc OverlayDescriptor) {
	r.descriptors = append(r.descriptors, desc)
	r.byID[desc.ID] = desc
	r.enabled[desc.ID] = false
}

// Toggle switches an overlay on/off and handles exclusivity.
func (r *OverlayRegistry) Toggle(id OverlayID) bool {
	if _, ok := r.byID[id]; !ok {
		return false
	}
	newState := !r.enabled[id]
	r.SetEnabled(id, newState)
	return newState
}

// SetEnabled explicitly sets an overlay's state.
func (r *OverlayRegistry) SetEnabled(id OverlayID, enabled bool) {
	desc, ok := r.byID[id]
	if !ok {
		return
	}

	r.enabled[id] = enabled

	// If enabling, disable exclusive overlays
	if enabled {
		for _, excl := range desc.Exclusive {
			r.enabled[excl] = false
		}
	}
}

// IsEnabled returns whether an overlay is active.
func (r *OverlayRegistry) IsEnabled(id OverlayID) bool {
	return r.enabled[id]
}

// ByCategory returns overlays filtered by category.
func (r *OverlayRegistry) ByCategory(category string) []OverlayDescriptor {
	var result []OverlayDescriptor
	for _, desc := range r.descriptors {
		if desc.Category == category {
			result = append(result, desc)
		}
	}
	return result
}

// Categories returns all unique categories in order.
func (r *OverlayRegistry) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, desc := range r.descriptors {
		if !seen[desc.Category] {
			seen[desc.Category] = true
			cats = append(cats, desc.Category)
		}
	}
	return cats
}

// HandleKeyPress checks if a key corresponds to an overlay toggle.
// Returns the overlay ID and new state if a toggle occurred.
func (r *OverlayRegistry) HandleKeyPress(key int32) (OverlayID, bool, bool) {
	for _, desc := range r.descriptors {
		if desc.Key == key {
			newState := r.Toggle(desc.ID)
			return desc.ID, newState, true
		}
	}
	return "", false, false
}

// Keys returns every key bound to an overlay.
func (r *OverlayRegistry) Keys() []int32 {
	var keys []int32
	for _, desc := range r.descriptors {
		if desc.Key != 0 {
			keys = append(keys, desc.Key)
		}
	}
	return keys
}
