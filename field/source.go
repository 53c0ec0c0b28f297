package field

// Source is the read-only view of a simulated field the query engine samples.
// Slices are ordered finest first; slice i+1 has twice the texel size of slice i.
type Source interface {
	// Initialized reports whether the slices hold valid data for this step.
	Initialized() bool
	SliceCount() int
	Slice(i int) *Slice
	SeaLevel() float32
}

// Static is a Source over caller-built slices. It never changes on its own.
type Static struct {
	Slices []*Slice
	Level  float32
	Ready  bool
}

// NewStatic builds count slices of the given resolution with doubling texel
// sizes, all centered on the origin.
func NewStatic(count, resolution int, baseTexel float32) *Static {
	st := &Static{Ready: true}
	texel := baseTexel
	for i := 0; i < count; i++ {
		s := NewSlice(i, resolution, texel)
		half := texel * float32(resolution) / 2
		s.OriginX, s.OriginZ = -half, -half
		st.Slices = append(st.Slices, s)
		texel *= 2
	}
	return st
}

// Initialized reports whether the source is marked ready.
func (s *Static) Initialized() bool { return s.Ready }

// SliceCount returns the number of slices.
func (s *Static) SliceCount() int { return len(s.Slices) }

// Slice returns slice i.
func (s *Static) Slice(i int) *Slice { return s.Slices[i] }

// SeaLevel returns the configured still-water height.
func (s *Static) SeaLevel() float32 { return s.Level }
