package query

import (
	"math"

	"github.com/pthm-cable/swell/field"
	"github.com/pthm-cable/swell/gpu"
)

// sampleStride is the number of floats a kernel writes per point.
const sampleStride = 4

// displacementIterations is the number of fixed-point steps used to find the
// undisplaced position that the waves move onto the query point.
const displacementIterations = 4

// Sample is one raw kernel output. W holds the slice index that was sampled,
// or -1 when the point was outside every slice.
type Sample struct {
	X, Y, Z, W float32
}

// upload is one GPU-visible query record.
type upload struct {
	x, z      float32
	minLength float32
}

func (e *Engine) job() gpu.Job {
	return gpu.Job{
		Name:   e.kernel.String(),
		Count:  len(e.uploads),
		Stride: sampleStride,
		Run:    e.run,
	}
}

// run is the compute kernel body. It only reads the source and the upload
// buffer, so chunks may run concurrently.
func (e *Engine) run(start, end int, out []float32) {
	for i := start; i < end; i++ {
		var s Sample
		u := e.uploads[i]
		switch e.kernel {
		case KernelDisplacement:
			s = sampleDisplacement(e.source, u)
		case KernelFlow:
			s = sampleFlow(e.source, u)
		case KernelDepth:
			s = sampleDepth(e.source, u)
		}
		o := (i - start) * sampleStride
		out[o], out[o+1], out[o+2], out[o+3] = s.X, s.Y, s.Z, s.W
	}
}

func sampleDisplacement(src field.Source, u upload) Sample {
	idx := sliceFor(src, u.minLength, u.x, u.z)
	if idx < 0 {
		return Sample{W: -1}
	}
	s := src.Slice(idx)

	px, pz := u.x, u.z
	for i := 0; i < displacementIterations; i++ {
		d := s.SampleDisplacement(px, pz)
		px, pz = u.x-d.X, u.z-d.Z
	}
	d := s.SampleDisplacement(px, pz)
	return Sample{d.X, d.Y, d.Z, float32(idx)}
}

func sampleFlow(src field.Source, u upload) Sample {
	idx := sliceFor(src, u.minLength, u.x, u.z)
	if idx < 0 {
		return Sample{W: -1}
	}
	f := src.Slice(idx).SampleFlow(u.x, u.z)
	return Sample{f.X, f.Y, 0, float32(idx)}
}

func sampleDepth(src field.Source, u upload) Sample {
	idx := sliceFor(src, u.minLength, u.x, u.z)
	if idx < 0 {
		nan := float32(math.NaN())
		return Sample{nan, nan, 0, -1}
	}
	depth, shore := src.Slice(idx).SampleDepth(u.x, u.z)
	return Sample{depth, shore, 0, float32(idx)}
}
