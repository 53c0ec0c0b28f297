package query

import "github.com/pthm-cable/swell/field"

// SelectSlice returns the finest slice whose texel size is at least
// minLength: the coarsest slice that still resolves features of that size.
// When no slice is coarse enough the last slice is used. Returns -1 for a
// source without slices.
func SelectSlice(src field.Source, minLength float32) int {
	n := src.SliceCount()
	for i := 0; i < n; i++ {
		if src.Slice(i).TexelSize >= minLength {
			return i
		}
	}
	return n - 1
}

// sliceFor picks the slice a kernel samples for one point: the selected
// slice, or the first coarser one that covers the point. -1 when no slice
// covers it.
func sliceFor(src field.Source, minLength, x, z float32) int {
	start := SelectSlice(src, minLength)
	if start < 0 {
		return -1
	}
	for i := start; i < src.SliceCount(); i++ {
		if src.Slice(i).Contains(x, z) {
			return i
		}
	}
	return -1
}
