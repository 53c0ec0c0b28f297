// Package config provides configuration loading and access for the ocean simulation.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	World     WorldConfig     `yaml:"world"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Ocean     OceanConfig     `yaml:"ocean"`
	Query     QueryConfig     `yaml:"query"`
	GPU       GPUConfig       `yaml:"gpu"`
	Bodies    BodiesConfig    `yaml:"bodies"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig holds the extent of the playable area in world units (XZ plane).
type WorldConfig struct {
	Width  float64 `yaml:"width"`
	Depth  float64 `yaml:"depth"`
	Center bool    `yaml:"center"` // Center the LOD cascade on the world midpoint instead of the origin
}

// PhysicsConfig holds simulation physics parameters.
type PhysicsConfig struct {
	DT      float64 `yaml:"dt"`
	Gravity float64 `yaml:"gravity"`
}

// OceanConfig describes the field source: the LOD cascade and the synthetic
// waves, currents and seabed it is filled with.
type OceanConfig struct {
	Enabled         bool    `yaml:"enabled"`          // false = no field source, all providers are null
	SliceCount      int     `yaml:"slice_count"`      // Number of LOD slices (resolution count)
	SliceResolution int     `yaml:"slice_resolution"` // Texels per side of each slice
	BaseTexelSize   float64 `yaml:"base_texel_size"`  // World units per texel of slice 0; doubles per slice
	SeaLevel        float64 `yaml:"sea_level"`
	Damping         float64 `yaml:"damping"`        // Per-second decay applied to currents
	CourantNumber   float64 `yaml:"courant_number"` // Max texels a wave crest may travel per substep
	Seed            int64   `yaml:"seed"`

	WaveAmplitude float64 `yaml:"wave_amplitude"`
	WaveLength    float64 `yaml:"wave_length"`
	WaveSpeed     float64 `yaml:"wave_speed"`
	Choppiness    float64 `yaml:"choppiness"` // Horizontal displacement as a fraction of height

	FlowStrength float64 `yaml:"flow_strength"`
	FlowScale    float64 `yaml:"flow_scale"`

	SeabedDepth  float64 `yaml:"seabed_depth"`  // Mean seabed depth below sea level
	SeabedRelief float64 `yaml:"seabed_relief"` // Amplitude of seabed/island relief
	SeabedScale  float64 `yaml:"seabed_scale"`  // Feature size of the relief in world units
}

// QueryConfig holds query dispatch engine limits.
type QueryConfig struct {
	MaxPoints      int     `yaml:"max_points"`       // Points per frame across all callers of one engine
	MaxHashes      int     `yaml:"max_hashes"`       // Distinct query sites per engine
	FramesInFlight int     `yaml:"frames_in_flight"` // Dispatches awaiting readback before new work is skipped
	StaleFrames    int     `yaml:"stale_frames"`     // Frames without a query before a site is evicted
	NormalOffset   float64 `yaml:"normal_offset"`    // Minimum sample offset used for surface normals
	HashSalt       string  `yaml:"hash_salt"`
}

// GPUConfig holds simulated compute device parameters.
type GPUConfig struct {
	ReadbackLatency int `yaml:"readback_latency"` // Frames between dispatch and readable results
	Workers         int `yaml:"workers"`          // Kernel worker goroutines (0 = GOMAXPROCS)
	ChunkSize       int `yaml:"chunk_size"`       // Points per kernel work item
}

// BodiesConfig holds the floating demo bodies.
type BodiesConfig struct {
	Count        int     `yaml:"count"`
	Radius       float64 `yaml:"radius"`
	RadiusJitter float64 `yaml:"radius_jitter"`
	Density      float64 `yaml:"density"` // Relative to water (0.5 floats half submerged)
	Drag         float64 `yaml:"drag"`
	FlowCoupling float64 `yaml:"flow_coupling"` // How quickly bodies adopt the surface current
	GroundedDrag float64 `yaml:"grounded_drag"` // Horizontal damping when beached
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
	BookmarkHistory     int     `yaml:"bookmark_history"` // Windows of history for bookmark detection
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32             float32 // Physics.DT as float32
	SeaLevel32       float32 // Ocean.SeaLevel as float32
	CoarsestTexel    float32 // Texel size of the last slice
	CoarsestExtent   float32 // World extent covered by the last slice
	CascadeCenterX32 float32
	CascadeCenterZ32 float32
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Finalize validates the config and recomputes derived values. Call it after
// changing fields of a loaded config.
func (c *Config) Finalize() error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.computeDerived()
	return nil
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Physics.DT <= 0:
		return fmt.Errorf("physics.dt must be positive, got %v", c.Physics.DT)
	case c.Ocean.SliceCount < 1:
		return fmt.Errorf("ocean.slice_count must be at least 1, got %d", c.Ocean.SliceCount)
	case c.Ocean.SliceResolution < 2:
		return fmt.Errorf("ocean.slice_resolution must be at least 2, got %d", c.Ocean.SliceResolution)
	case c.Ocean.BaseTexelSize <= 0:
		return fmt.Errorf("ocean.base_texel_size must be positive, got %v", c.Ocean.BaseTexelSize)
	case c.Ocean.CourantNumber <= 0:
		return fmt.Errorf("ocean.courant_number must be positive, got %v", c.Ocean.CourantNumber)
	case c.Query.MaxPoints < 1:
		return fmt.Errorf("query.max_points must be at least 1, got %d", c.Query.MaxPoints)
	case c.Query.MaxHashes < 1:
		return fmt.Errorf("query.max_hashes must be at least 1, got %d", c.Query.MaxHashes)
	case c.Query.FramesInFlight < 1:
		return fmt.Errorf("query.frames_in_flight must be at least 1, got %d", c.Query.FramesInFlight)
	case c.GPU.ReadbackLatency < 1:
		return fmt.Errorf("gpu.readback_latency must be at least 1, got %d", c.GPU.ReadbackLatency)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Physics.DT)
	c.Derived.SeaLevel32 = float32(c.Ocean.SeaLevel)

	coarsest := c.Ocean.BaseTexelSize * math.Pow(2, float64(c.Ocean.SliceCount-1))
	c.Derived.CoarsestTexel = float32(coarsest)
	c.Derived.CoarsestExtent = float32(coarsest * float64(c.Ocean.SliceResolution))

	if c.World.Center {
		c.Derived.CascadeCenterX32 = float32(c.World.Width / 2)
		c.Derived.CascadeCenterZ32 = float32(c.World.Depth / 2)
	}

	if c.Query.StaleFrames < 1 {
		c.Query.StaleFrames = c.Query.FramesInFlight + c.GPU.ReadbackLatency + 1
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
