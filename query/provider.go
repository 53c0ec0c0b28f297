package query

import "github.com/pthm-cable/swell/field"

// DepthProvider answers water depth queries. Result X is the water depth
// (+Inf where the field holds no data), Y the signed distance to the
// shoreline, negative over water.
type DepthProvider interface {
	Query(hash int, minLength float32, points []field.Vec3, results []field.Vec2) Status
}

// FlowProvider answers horizontal water flow queries. Result Y holds the Z
// component.
type FlowProvider interface {
	Query(hash int, minLength float32, points []field.Vec3, results []field.Vec2) Status
}

// CollisionProvider answers surface displacement queries. normals and
// velocities are optional and may be nil.
type CollisionProvider interface {
	Query(hash int, minLength float32, points []field.Vec3, displacements, normals, velocities []field.Vec3) Status
	// QueryHeights returns absolute water heights instead of displacements.
	QueryHeights(hash int, minLength float32, points []field.Vec3, heights []float32, normals, velocities []field.Vec3) Status
	RetrieveSucceeded(status Status) bool
}

// Null providers answer every query with zeros and success.
var (
	NoDepth     DepthProvider     = nullDepth{}
	NoFlow      FlowProvider      = nullFlow{}
	NoCollision CollisionProvider = nullCollision{}
)

type nullDepth struct{}

func (nullDepth) Query(_ int, _ float32, _ []field.Vec3, results []field.Vec2) Status {
	clear(results)
	return StatusOK
}

type nullFlow struct{}

func (nullFlow) Query(_ int, _ float32, _ []field.Vec3, results []field.Vec2) Status {
	clear(results)
	return StatusOK
}

type nullCollision struct{}

func (nullCollision) Query(_ int, _ float32, _ []field.Vec3, displacements, normals, velocities []field.Vec3) Status {
	clear(displacements)
	clear(normals)
	clear(velocities)
	return StatusOK
}

func (nullCollision) QueryHeights(_ int, _ float32, _ []field.Vec3, heights []float32, normals, velocities []field.Vec3) Status {
	clear(heights)
	clear(normals)
	clear(velocities)
	return StatusOK
}

func (nullCollision) RetrieveSucceeded(status Status) bool {
	return RetrieveSucceeded(status)
}
