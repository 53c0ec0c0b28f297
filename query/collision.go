package query

import (
	"fmt"

	"github.com/pthm-cable/swell/field"
)

// Collision answers surface queries through a KernelDisplacement engine.
//
// Normals are taken from two extra samples per point, offset along +X and +Z
// by max(minLength, normalOffset). Velocities are finite differences between
// the two newest harvested results, so they need two readbacks of the same
// query shape before they are valid.
type Collision struct {
	engine       *Engine
	normalOffset float32
}

// NewCollision wraps an engine running the displacement kernel.
func NewCollision(e *Engine, normalOffset float32) *Collision {
	if e.Kernel() != KernelDisplacement {
		panic(fmt.Sprintf("query: collision provider needs displacement kernel, got %s", e.Kernel()))
	}
	return &Collision{engine: e, normalOffset: normalOffset}
}

func (c *Collision) Query(hash int, minLength float32, points []field.Vec3, displacements, normals, velocities []field.Vec3) Status {
	if !c.engine.Ready() {
		return NoCollision.Query(hash, minLength, points, displacements, normals, velocities)
	}
	if !c.lengthsMatch(len(points), len(displacements), normals, velocities) {
		c.engine.postFailed(hash, ErrLengthMismatch)
		return StatusPostFailed | StatusRetrieveFailed
	}

	samples, status := c.query(hash, minLength, points, normals != nil)
	if !RetrieveSucceeded(status) {
		return status
	}
	for i := range points {
		s := samples[i]
		displacements[i] = field.Vec3{X: s.X, Y: s.Y, Z: s.Z}
	}
	return status | c.finish(hash, minLength, points, samples, normals, velocities)
}

func (c *Collision) QueryHeights(hash int, minLength float32, points []field.Vec3, heights []float32, normals, velocities []field.Vec3) Status {
	if !c.engine.Ready() {
		return NoCollision.QueryHeights(hash, minLength, points, heights, normals, velocities)
	}
	if !c.lengthsMatch(len(points), len(heights), normals, velocities) {
		c.engine.postFailed(hash, ErrLengthMismatch)
		return StatusPostFailed | StatusRetrieveFailed
	}

	samples, status := c.query(hash, minLength, points, normals != nil)
	if !RetrieveSucceeded(status) {
		return status
	}
	level := c.engine.Source().SeaLevel()
	for i := range points {
		heights[i] = level + samples[i].Y
	}
	return status | c.finish(hash, minLength, points, samples, normals, velocities)
}

func (c *Collision) RetrieveSucceeded(status Status) bool {
	return RetrieveSucceeded(status)
}

func (c *Collision) lengthsMatch(n, out int, normals, velocities []field.Vec3) bool {
	if out != n {
		return false
	}
	if normals != nil && len(normals) != n {
		return false
	}
	return velocities == nil || len(velocities) == n
}

// offset returns the horizontal distance used for normal samples.
func (c *Collision) offset(minLength float32) float32 {
	return max(minLength, c.normalOffset)
}

// query posts points, plus the +X and +Z normal samples when withNormals is
// set, and returns the raw samples in the same layout.
func (c *Collision) query(hash int, minLength float32, points []field.Vec3, withNormals bool) ([]Sample, Status) {
	n := len(points)
	total := n
	if withNormals {
		total = 3 * n
	}
	pts, samples := c.engine.scratch(total)
	copy(pts, points)
	if withNormals {
		off := c.offset(minLength)
		for i, p := range points {
			pts[n+i] = field.Vec3{X: p.X + off, Y: p.Y, Z: p.Z}
			pts[2*n+i] = field.Vec3{X: p.X, Y: p.Y, Z: p.Z + off}
		}
	}
	return samples, c.engine.Query(hash, minLength, pts, samples)
}

func (c *Collision) finish(hash int, minLength float32, points []field.Vec3, samples []Sample, normals, velocities []field.Vec3) Status {
	if normals != nil {
		n := len(points)
		off := c.offset(minLength)
		for i := range points {
			p0 := surfacePoint(0, 0, samples[i])
			p1 := surfacePoint(off, 0, samples[n+i])
			p2 := surfacePoint(0, off, samples[2*n+i])
			normals[i] = p2.Sub(p0).Cross(p1.Sub(p0)).Normalize()
		}
	}
	if velocities == nil {
		return StatusOK
	}
	return c.engine.velocities(hash, velocities)
}

// surfacePoint places a displaced sample relative to the query point. The
// kernel already inverted the horizontal displacement, so the surface sits
// directly above the sample position.
func surfacePoint(dx, dz float32, s Sample) field.Vec3 {
	return field.Vec3{X: dx, Y: s.Y, Z: dz}
}
