package field

import (
	"math"

	"github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/swell/config"
)

// wave is one Gerstner component of the synthetic sea state.
type wave struct {
	dirX, dirZ float64
	k          float64 // wavenumber
	omega      float64 // angular frequency
	amplitude  float64
	phase      float64
}

// Cascade is a CPU stand-in for the external wave simulation. It fills a set
// of LOD slices centered on a focus point with Gerstner waves modulated by
// simplex noise, a curl-noise current and a static noise seabed.
type Cascade struct {
	cfg    config.OceanConfig
	slices []*Slice

	waves        []wave
	swellNoise   opensimplex.Noise
	currentNoise opensimplex.Noise
	seabedNoise  opensimplex.Noise

	centerX, centerZ float32
	time             float64
	currentGain      float64 // currents spin up from rest at the damping rate
	substeps         int
	initialized      bool
	seabedDirty      bool
}

// NewCascade creates a cascade centered on (centerX, centerZ). It reports
// uninitialized until the first Update.
func NewCascade(cfg config.OceanConfig, centerX, centerZ float32) *Cascade {
	c := &Cascade{
		cfg:          cfg,
		slices:       make([]*Slice, cfg.SliceCount),
		swellNoise:   opensimplex.New(cfg.Seed),
		currentNoise: opensimplex.New(cfg.Seed + 1),
		seabedNoise:  opensimplex.New(cfg.Seed + 2),
		seabedDirty:  true,
	}

	texel := float32(cfg.BaseTexelSize)
	for i := range c.slices {
		c.slices[i] = NewSlice(i, cfg.SliceResolution, texel)
		texel *= 2
	}

	c.waves = buildWaves(cfg)
	c.placeSlices(centerX, centerZ)
	return c
}

// buildWaves spreads a few wave components around the dominant direction.
func buildWaves(cfg config.OceanConfig) []wave {
	spreads := []struct{ angle, lengthScale, ampScale float64 }{
		{0, 1, 1},
		{0.45, 0.62, 0.55},
		{-0.6, 0.41, 0.35},
		{1.1, 0.27, 0.2},
	}

	waves := make([]wave, len(spreads))
	for i, s := range spreads {
		length := cfg.WaveLength * s.lengthScale
		k := 2 * math.Pi / length
		waves[i] = wave{
			dirX:      math.Cos(s.angle),
			dirZ:      math.Sin(s.angle),
			k:         k,
			omega:     k * cfg.WaveSpeed,
			amplitude: cfg.WaveAmplitude * s.ampScale,
			phase:     float64(i) * 1.7,
		}
	}
	return waves
}

// Initialized reports whether Update has populated the slices.
func (c *Cascade) Initialized() bool { return c.initialized }

// SliceCount returns the number of LOD slices.
func (c *Cascade) SliceCount() int { return len(c.slices) }

// Slice returns LOD slice i.
func (c *Cascade) Slice(i int) *Slice { return c.slices[i] }

// SeaLevel returns the still-water height.
func (c *Cascade) SeaLevel() float32 { return float32(c.cfg.SeaLevel) }

// Time returns the simulated time of the current slice contents.
func (c *Cascade) Time() float64 { return c.time }

// Substeps returns how many substeps the last Update took.
func (c *Cascade) Substeps() int { return c.substeps }

// Center returns the focus point the cascade is built around.
func (c *Cascade) Center() (x, z float32) { return c.centerX, c.centerZ }

// Recenter moves the cascade focus. Slices snap to their own texel grid so
// static channels stay stable while the focus moves.
func (c *Cascade) Recenter(x, z float32) {
	if x == c.centerX && z == c.centerZ {
		return
	}
	c.placeSlices(x, z)
}

func (c *Cascade) placeSlices(x, z float32) {
	c.centerX, c.centerZ = x, z
	for _, s := range c.slices {
		half := s.TexelSize * float32(s.Resolution) / 2
		ox := snap(x-half, s.TexelSize)
		oz := snap(z-half, s.TexelSize)
		if ox != s.OriginX || oz != s.OriginZ {
			s.OriginX, s.OriginZ = ox, oz
			c.seabedDirty = true
		}
	}
}

func snap(v, step float32) float32 {
	return float32(math.Floor(float64(v/step))) * step
}

// Update advances the field by dt seconds and refreshes every slice.
// The step is split so no wave crest moves more than CourantNumber texels of
// the finest slice per substep.
func (c *Cascade) Update(dt float64) {
	maxStep := c.cfg.CourantNumber * c.cfg.BaseTexelSize / math.Max(c.cfg.WaveSpeed, 1e-6)
	c.substeps = max(1, int(math.Ceil(dt/maxStep)))
	sub := dt / float64(c.substeps)
	for i := 0; i < c.substeps; i++ {
		c.time += sub
		c.currentGain += (1 - c.currentGain) * (1 - math.Exp(-c.cfg.Damping*sub))
	}

	if c.seabedDirty {
		c.rebuildSeabed()
	}
	for _, s := range c.slices {
		c.fillSlice(s)
	}
	c.initialized = true
}

// rebuildSeabed recomputes water depth and shoreline distance for all slices.
func (c *Cascade) rebuildSeabed() {
	seaLevel := float32(c.cfg.SeaLevel)
	for _, s := range c.slices {
		for iz := 0; iz < s.Resolution; iz++ {
			for ix := 0; ix < s.Resolution; ix++ {
				x, z := s.TexelCenter(ix, iz)
				s.waterDepth[iz*s.Resolution+ix] = seaLevel - c.SeabedHeight(x, z)
			}
		}
		if !signedShoreDistance(s.waterDepth, s.Resolution, s.TexelSize, s.shoreline) {
			for i := range s.shoreline {
				s.shoreline[i] = borderDepth
			}
		}
	}
	c.seabedDirty = false
}

// SeabedHeight returns the analytic seabed height at a world position.
func (c *Cascade) SeabedHeight(x, z float32) float32 {
	scale := c.cfg.SeabedScale
	nx, nz := float64(x)/scale, float64(z)/scale
	relief := c.seabedNoise.Eval2(nx, nz) + 0.5*c.seabedNoise.Eval2(nx*2.03, nz*2.03)
	return float32(-c.cfg.SeabedDepth + c.cfg.SeabedRelief*relief)
}

// fillSlice writes displacement and flow for every texel of s.
func (c *Cascade) fillSlice(s *Slice) {
	for iz := 0; iz < s.Resolution; iz++ {
		for ix := 0; ix < s.Resolution; ix++ {
			x, z := s.TexelCenter(ix, iz)
			i := iz*s.Resolution + ix
			depth := s.waterDepth[i]
			s.displacement[i] = c.displacementAt(float64(x), float64(z), depth)
			s.flow[i] = c.flowAt(float64(x), float64(z), depth)
		}
	}
}

func (c *Cascade) displacementAt(x, z float64, depth float32) Vec3 {
	if depth <= 0 {
		return Vec3{}
	}
	// Waves shoal out near the coast
	shoal := math.Min(float64(depth)/(0.5*c.cfg.WaveLength), 1)
	mod := 0.75 + 0.25*c.swellNoise.Eval3(x/c.cfg.WaveLength, z/c.cfg.WaveLength, c.time*0.05)

	var dx, dy, dz float64
	for _, w := range c.waves {
		theta := w.k*(w.dirX*x+w.dirZ*z) - w.omega*c.time + w.phase
		a := w.amplitude * mod * shoal
		dy += a * math.Sin(theta)
		horiz := c.cfg.Choppiness * a * math.Cos(theta)
		dx += w.dirX * horiz
		dz += w.dirZ * horiz
	}
	return Vec3{float32(dx), float32(dy), float32(dz)}
}

// flowAt returns a divergence-free current from the curl of a noise potential.
func (c *Cascade) flowAt(x, z float64, depth float32) Vec2 {
	if depth <= 0 {
		return Vec2{}
	}
	scale := c.cfg.FlowScale
	const eps = 0.01
	t := c.time * 0.01
	px, pz := x/scale, z/scale
	dpdx := (c.currentNoise.Eval3(px+eps, pz, t) - c.currentNoise.Eval3(px-eps, pz, t)) / (2 * eps)
	dpdz := (c.currentNoise.Eval3(px, pz+eps, t) - c.currentNoise.Eval3(px, pz-eps, t)) / (2 * eps)

	shallow := math.Min(float64(depth)/2, 1)
	gain := c.cfg.FlowStrength * c.currentGain * shallow
	return Vec2{float32(dpdz * gain), float32(-dpdx * gain)}
}
