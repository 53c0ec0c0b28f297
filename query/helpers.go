package query

import "github.com/pthm-cable/swell/field"

// helperHash derives a helper's query site from its kind and caller id, so
// helpers of different kinds never share a site.
func helperHash(kind string, id uint64) int {
	return SaltedHash(kind+"-helper", id)
}

// SampleHeightHelper queries the water surface at a single point under a
// hash of its own. Callers pick ids that are unique per helper kind. Call Init whenever the point moves, then Sample once per
// frame.
type SampleHeightHelper struct {
	hash      int
	minLength float32
	point     [1]field.Vec3
	height    [1]float32
	normal    [1]field.Vec3
	velocity  [1]field.Vec3
}

func NewSampleHeightHelper(id uint64) *SampleHeightHelper {
	return &SampleHeightHelper{hash: helperHash("height", id)}
}

// Hash returns the helper's query site.
func (h *SampleHeightHelper) Hash() int { return h.hash }

func (h *SampleHeightHelper) Init(pos field.Vec3, minLength float32) {
	h.point[0] = pos
	h.minLength = minLength
}

// Sample returns the water height, surface normal and surface velocity at
// the point. ok is false until the first readback arrives.
func (h *SampleHeightHelper) Sample(p CollisionProvider) (height float32, normal, velocity field.Vec3, ok bool) {
	status := p.QueryHeights(h.hash, h.minLength, h.point[:], h.height[:], h.normal[:], h.velocity[:])
	if !p.RetrieveSucceeded(status) {
		return 0, field.Vec3{}, field.Vec3{}, false
	}
	return h.height[0], h.normal[0], h.velocity[0], true
}

// SampleFlowHelper queries the flow at a single point.
type SampleFlowHelper struct {
	hash      int
	minLength float32
	point     [1]field.Vec3
	flow      [1]field.Vec2
}

func NewSampleFlowHelper(id uint64) *SampleFlowHelper {
	return &SampleFlowHelper{hash: helperHash("flow", id)}
}

func (h *SampleFlowHelper) Hash() int { return h.hash }

func (h *SampleFlowHelper) Init(pos field.Vec3, minLength float32) {
	h.point[0] = pos
	h.minLength = minLength
}

func (h *SampleFlowHelper) Sample(p FlowProvider) (flow field.Vec2, ok bool) {
	status := p.Query(h.hash, h.minLength, h.point[:], h.flow[:])
	if !RetrieveSucceeded(status) {
		return field.Vec2{}, false
	}
	return h.flow[0], true
}

// SampleDepthHelper queries water depth and shoreline distance at a single point.
type SampleDepthHelper struct {
	hash      int
	minLength float32
	point     [1]field.Vec3
	result    [1]field.Vec2
}

func NewSampleDepthHelper(id uint64) *SampleDepthHelper {
	return &SampleDepthHelper{hash: helperHash("depth", id)}
}

func (h *SampleDepthHelper) Hash() int { return h.hash }

func (h *SampleDepthHelper) Init(pos field.Vec3, minLength float32) {
	h.point[0] = pos
	h.minLength = minLength
}

func (h *SampleDepthHelper) Sample(p DepthProvider) (depth, shoreDistance float32, ok bool) {
	status := p.Query(h.hash, h.minLength, h.point[:], h.result[:])
	if !RetrieveSucceeded(status) {
		return 0, 0, false
	}
	return h.result[0].X, h.result[0].Y, true
}
