package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the simulation state at one tick for offline inspection.
type Snapshot struct {
	Version int   `json:"version"`
	RNGSeed int64 `json:"rng_seed"`

	WorldWidth float32 `json:"world_width"`
	WorldDepth float32 `json:"world_depth"`

	Tick int32 `json:"tick"`

	// Ocean state
	OceanFrame   uint64  `json:"ocean_frame"`
	OceanTime    float64 `json:"ocean_time"`
	CascadeX     float32 `json:"cascade_x"`
	CascadeZ     float32 `json:"cascade_z"`
	OceanEnabled bool    `json:"ocean_enabled"`

	Bodies []BodyState `json:"bodies"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// BodyState holds one body's position, motion and last observed water state.
type BodyState struct {
	ID     uint64  `json:"id"`
	Radius float32 `json:"radius"`

	X    float32 `json:"x"`
	Y    float32 `json:"y"`
	Z    float32 `json:"z"`
	VelX float32 `json:"vel_x"`
	VelY float32 `json:"vel_y"`
	VelZ float32 `json:"vel_z"`

	WaterHeight float32 `json:"water_height"`
	Submersion  float32 `json:"submersion"`
	FlowX       float32 `json:"flow_x"`
	FlowZ       float32 `json:"flow_z"`

	// Nil where the depth is unknown; JSON has no infinity.
	WaterDepth *float32 `json:"water_depth,omitempty"`
	Grounded   bool     `json:"grounded"`
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%d", snapshot.Tick)
	if snapshot.Bookmark != nil {
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Tick, sanitized)
	}
	path := filepath.Join(dir, name+".json")

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}

	return &snapshot, nil
}
