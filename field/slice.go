// Package field holds the simulated water field: a cascade of LOD slices at
// doubling texel sizes, each carrying displacement, flow and depth channels.
// Query code only ever reads slices through the Source interface.
package field

import "math"

// Border values returned when sampling outside a slice.
var (
	borderDisplacement = Vec3{}
	borderFlow         = Vec2{}
	borderDepth        = float32(math.NaN())
)

// Slice is one LOD level of the field. Texel centers sit at
// Origin + (i + 0.5) * TexelSize along each axis.
type Slice struct {
	Index      int
	TexelSize  float32
	Resolution int
	OriginX    float32
	OriginZ    float32

	displacement []Vec3
	flow         []Vec2
	waterDepth   []float32
	shoreline    []float32
}

// NewSlice allocates a slice with zeroed channels and an undefined shoreline.
func NewSlice(index, resolution int, texelSize float32) *Slice {
	n := resolution * resolution
	s := &Slice{
		Index:        index,
		TexelSize:    texelSize,
		Resolution:   resolution,
		displacement: make([]Vec3, n),
		flow:         make([]Vec2, n),
		waterDepth:   make([]float32, n),
		shoreline:    make([]float32, n),
	}
	for i := range s.shoreline {
		s.shoreline[i] = borderDepth
	}
	return s
}

// Bounds returns the world-space region covered by the slice.
func (s *Slice) Bounds() Rect {
	extent := s.TexelSize * float32(s.Resolution)
	return Rect{
		MinX: s.OriginX,
		MinZ: s.OriginZ,
		MaxX: s.OriginX + extent,
		MaxZ: s.OriginZ + extent,
	}
}

// Contains reports whether the world position falls inside the slice.
func (s *Slice) Contains(x, z float32) bool {
	return s.Bounds().Contains(x, z)
}

// TexelCenter returns the world position of texel (ix, iz).
func (s *Slice) TexelCenter(ix, iz int) (x, z float32) {
	x = s.OriginX + (float32(ix)+0.5)*s.TexelSize
	z = s.OriginZ + (float32(iz)+0.5)*s.TexelSize
	return x, z
}

// SetTexel writes all channels of one texel.
func (s *Slice) SetTexel(ix, iz int, disp Vec3, flow Vec2, waterDepth float32) {
	i := iz*s.Resolution + ix
	s.displacement[i] = disp
	s.flow[i] = flow
	s.waterDepth[i] = waterDepth
}

// SetShoreDistance overrides the signed shoreline distance of one texel.
func (s *Slice) SetShoreDistance(ix, iz int, d float32) {
	s.shoreline[iz*s.Resolution+ix] = d
}

// Displacement returns the raw displacement stored at texel (ix, iz).
func (s *Slice) Displacement(ix, iz int) Vec3 {
	return s.displacement[iz*s.Resolution+ix]
}

// WaterDepth returns the raw water depth stored at texel (ix, iz).
func (s *Slice) WaterDepth(ix, iz int) float32 {
	return s.waterDepth[iz*s.Resolution+ix]
}

// SampleDisplacement bilinearly samples the displacement channel.
func (s *Slice) SampleDisplacement(x, z float32) Vec3 {
	if !s.Contains(x, z) {
		return borderDisplacement
	}
	i00, i10, i01, i11, fx, fz := s.taps(x, z)
	d := s.displacement
	return lerp3(lerp3(d[i00], d[i10], fx), lerp3(d[i01], d[i11], fx), fz)
}

// SampleFlow bilinearly samples the horizontal flow channel.
func (s *Slice) SampleFlow(x, z float32) Vec2 {
	if !s.Contains(x, z) {
		return borderFlow
	}
	i00, i10, i01, i11, fx, fz := s.taps(x, z)
	f := s.flow
	a := Vec2{lerp(f[i00].X, f[i10].X, fx), lerp(f[i00].Y, f[i10].Y, fx)}
	b := Vec2{lerp(f[i01].X, f[i11].X, fx), lerp(f[i01].Y, f[i11].Y, fx)}
	return Vec2{lerp(a.X, b.X, fz), lerp(a.Y, b.Y, fz)}
}

// SampleDepth returns (water depth, signed shoreline distance). Both are NaN
// outside the slice; the distance is NaN when the slice holds no shoreline.
func (s *Slice) SampleDepth(x, z float32) (waterDepth, shoreDistance float32) {
	if !s.Contains(x, z) {
		return borderDepth, borderDepth
	}
	i00, i10, i01, i11, fx, fz := s.taps(x, z)
	w := s.waterDepth
	sh := s.shoreline
	waterDepth = lerp(lerp(w[i00], w[i10], fx), lerp(w[i01], w[i11], fx), fz)
	shoreDistance = lerp(lerp(sh[i00], sh[i10], fx), lerp(sh[i01], sh[i11], fx), fz)
	return waterDepth, shoreDistance
}

// taps returns the four texel indices around (x, z) and the blend weights.
// Positions between the outermost texel centers and the slice edge clamp.
func (s *Slice) taps(x, z float32) (i00, i10, i01, i11 int, fx, fz float32) {
	u := (x-s.OriginX)/s.TexelSize - 0.5
	v := (z-s.OriginZ)/s.TexelSize - 0.5
	last := float32(s.Resolution - 1)
	u = clamp(u, 0, last)
	v = clamp(v, 0, last)

	x0 := int(u)
	z0 := int(v)
	x1 := min(x0+1, s.Resolution-1)
	z1 := min(z0+1, s.Resolution-1)
	fx = u - float32(x0)
	fz = v - float32(z0)

	r := s.Resolution
	return z0*r + x0, z0*r + x1, z1*r + x0, z1*r + x1, fx, fz
}

func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

func lerp3(a, b Vec3, t float32) Vec3 {
	return Vec3{lerp(a.X, b.X, t), lerp(a.Y, b.Y, t), lerp(a.Z, b.Z, t)}
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
