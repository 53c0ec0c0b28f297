// Package query answers batched point queries against a simulated water field.
//
// Callers identify each query site with a hash and post their points every
// frame. Once per frame the engine packs all changed sites into one upload
// buffer and issues a single compute dispatch. Results arrive a few frames
// later through an asynchronous readback; until then Query keeps returning
// the newest result already harvested for that hash. A site whose points
// change while a dispatch is in flight keeps that dispatch and sends the new
// points once it lands.
package query

import (
	"errors"
	"log/slog"
	"maps"
	"math"
	"slices"

	"github.com/pthm-cable/swell/config"
	"github.com/pthm-cable/swell/field"
	"github.com/pthm-cable/swell/gpu"
)

// minVelocityDt is the smallest time between two results that velocities are
// derived from.
const minVelocityDt = 1e-4

// errDispatch keys the dispatch failure warning.
var errDispatch = errors.New("query: dispatch failed")

// span locates one query site inside a dispatch's upload buffer.
type span struct {
	start, count int
}

// batch is one dispatch awaiting readback.
type batch struct {
	readback *gpu.Readback
	frame    uint64
	time     float64
	spans    map[int]span
}

// segment is the engine's record for one query hash.
type segment struct {
	hash      int
	minLength float32
	points    []field.Vec3
	posted    uint64
	dirty     bool
	inflight  *batch
	failed    bool

	result      []Sample
	resultTime  float64
	resultFrame uint64
	hasResult   bool

	prev        []Sample
	prevTime    float64
	hasPrev     bool
	invalidated bool
}

func (s *segment) sameInputs(minLength float32, points []field.Vec3) bool {
	return s.minLength == minLength && slices.Equal(s.points, points)
}

// reshape drops every result; old samples no longer line up with the points.
func (s *segment) reshape() {
	s.hasResult = false
	s.hasPrev = false
	s.invalidated = true
	s.result = s.result[:0]
	s.prev = s.prev[:0]
}

// Engine is the query engine for one kernel. It is not safe for concurrent
// use; all calls happen on the simulation goroutine.
type Engine struct {
	kernel Kernel
	source field.Source
	device *gpu.Device
	cfg    config.QueryConfig

	observers []Observer

	frame    uint64
	queued   int
	segments map[int]*segment
	batches  []*batch
	uploads  []upload
	warned   map[error]bool

	scratchPoints  []field.Vec3
	scratchSamples []Sample
}

// NewEngine creates an engine that samples source with the given kernel and
// dispatches on device. Observers are notified of dispatch events.
func NewEngine(kernel Kernel, source field.Source, device *gpu.Device, cfg config.QueryConfig, observers ...Observer) *Engine {
	return &Engine{
		kernel:    kernel,
		source:    source,
		device:    device,
		cfg:       cfg,
		observers: observers,
		frame:     1,
		segments:  make(map[int]*segment),
		warned:    make(map[error]bool),
	}
}

// AddObserver registers another event observer.
func (e *Engine) AddObserver(o Observer) {
	e.observers = append(e.observers, o)
}

// Kernel returns the kernel this engine dispatches.
func (e *Engine) Kernel() Kernel { return e.kernel }

// Source returns the sampled field.
func (e *Engine) Source() field.Source { return e.source }

// Frame returns the engine's frame counter.
func (e *Engine) Frame() uint64 { return e.frame }

// Ready reports whether the field can be sampled.
func (e *Engine) Ready() bool {
	return e.source != nil && e.source.Initialized() && e.source.SliceCount() > 0
}

// Sites returns the number of registered query hashes.
func (e *Engine) Sites() int { return len(e.segments) }

// InFlight returns the number of dispatches awaiting readback.
func (e *Engine) InFlight() int { return len(e.batches) }

// Query posts points under hash for the next dispatch and copies the newest
// harvested result for hash into results. Stale data is returned rather than
// blocking: results lag the posted points by the readback latency.
func (e *Engine) Query(hash int, minLength float32, points []field.Vec3, results []Sample) Status {
	if len(points) != len(results) {
		e.postFailed(hash, ErrLengthMismatch)
		return StatusPostFailed | StatusRetrieveFailed
	}

	e.harvest()

	var status Status
	if err := e.post(hash, minLength, points); err != nil {
		e.postFailed(hash, err)
		status |= StatusPostFailed
	}
	if len(points) == 0 {
		return status
	}
	if !e.retrieve(hash, results) {
		status |= StatusRetrieveFailed
	}
	return status
}

// State returns the lifecycle state of the query site for hash.
func (e *Engine) State(hash int) RequestStatus {
	seg, ok := e.segments[hash]
	switch {
	case !ok:
		return Invalid
	case seg.hasResult:
		return Success
	case seg.failed:
		return Failure
	default:
		return Pending
	}
}

// ResultTime returns the field time of the newest result harvested for hash.
func (e *Engine) ResultTime(hash int) (float64, bool) {
	seg, ok := e.segments[hash]
	if !ok || !seg.hasResult {
		return 0, false
	}
	return seg.resultTime, true
}

// Update advances the engine by one frame: harvests completed readbacks,
// evicts stale sites and dispatches every changed site in one batch. time is
// the field time the dispatch samples.
func (e *Engine) Update(time float64) {
	e.harvest()
	e.evict()
	if e.Ready() {
		e.dispatch(time)
	}
	e.frame++

	e.queued = 0
	for _, seg := range e.segments {
		if seg.dirty {
			e.queued += len(seg.points)
		}
	}
}

func (e *Engine) post(hash int, minLength float32, points []field.Vec3) error {
	if minLength < 0 || math.IsNaN(float64(minLength)) {
		return ErrNegativeLength
	}

	seg, ok := e.segments[hash]
	if len(points) == 0 {
		if ok {
			e.remove(seg)
		}
		return nil
	}
	if !ok {
		if len(e.segments) >= e.cfg.MaxHashes {
			return ErrTooManyHashes
		}
		seg = &segment{hash: hash}
		e.segments[hash] = seg
	}

	if seg.posted == e.frame {
		e.notify(func(o Observer) { o.DedupHit(e.kernel) })
	}
	seg.posted = e.frame

	if seg.sameInputs(minLength, points) {
		if seg.dirty || seg.inflight != nil {
			return nil
		}
	}

	had := 0
	if seg.dirty {
		had = len(seg.points)
	}
	if e.queued-had+len(points) > e.cfg.MaxPoints {
		return ErrBufferFull
	}
	e.queued += len(points) - had

	// The in-flight batch still lands; the new inputs wait behind it.
	if seg.inflight != nil && !seg.dirty {
		e.notify(func(o Observer) { o.Superseded(e.kernel) })
	}
	if len(seg.points) > 0 && len(seg.points) != len(points) {
		seg.reshape()
	}
	seg.minLength = minLength
	seg.points = append(seg.points[:0], points...)
	seg.dirty = true
	return nil
}

func (e *Engine) retrieve(hash int, results []Sample) bool {
	seg, ok := e.segments[hash]
	if !ok || !seg.hasResult || len(seg.result) != len(results) {
		return false
	}
	copy(results, seg.result)
	return true
}

// velocities fills dst with the finite difference of the first len(dst)
// samples of the current and previous results for hash.
func (e *Engine) velocities(hash int, dst []field.Vec3) Status {
	seg, ok := e.segments[hash]
	if !ok || !seg.hasResult {
		return StatusNotEnoughDataForVels
	}
	if !seg.hasPrev {
		if seg.invalidated {
			return StatusVelocityDataInvalidated
		}
		return StatusNotEnoughDataForVels
	}
	dt := seg.resultTime - seg.prevTime
	if dt < minVelocityDt {
		return StatusInvalidDtForVelocity
	}
	inv := float32(1 / dt)
	for i := range dst {
		c, p := seg.result[i], seg.prev[i]
		dst[i] = field.Vec3{X: (c.X - p.X) * inv, Y: (c.Y - p.Y) * inv, Z: (c.Z - p.Z) * inv}
	}
	return StatusOK
}

// harvest consumes every finished readback, oldest first.
func (e *Engine) harvest() {
	kept := e.batches[:0]
	for _, b := range e.batches {
		switch b.readback.State() {
		case gpu.ReadbackPending:
			kept = append(kept, b)
			continue
		case gpu.ReadbackDone:
			e.deliver(b)
		case gpu.ReadbackFailed:
			e.fail(b)
		}
		b.readback.Release()
	}
	clear(e.batches[len(kept):])
	e.batches = kept
}

func (e *Engine) deliver(b *batch) {
	data := b.readback.Data()
	latency := int(e.frame - b.frame)
	for hash, sp := range b.spans {
		seg, ok := e.segments[hash]
		if !ok || seg.inflight != b || b.frame < seg.resultFrame {
			continue
		}
		seg.inflight = nil
		seg.failed = false
		if sp.count != len(seg.points) {
			continue
		}

		if seg.hasResult && len(seg.result) == sp.count {
			seg.prev, seg.result = seg.result, seg.prev
			seg.prevTime = seg.resultTime
			seg.hasPrev = true
			seg.invalidated = false
		} else {
			seg.hasPrev = false
		}

		seg.result = slices.Grow(seg.result[:0], sp.count)[:sp.count]
		for i := range sp.count {
			o := (sp.start + i) * sampleStride
			seg.result[i] = Sample{data[o], data[o+1], data[o+2], data[o+3]}
		}
		seg.resultTime = b.time
		seg.resultFrame = b.frame
		seg.hasResult = true
	}
	e.notify(func(o Observer) { o.Harvested(e.kernel, latency) })
}

// fail marks every site still waiting on b as failed and queues it again.
func (e *Engine) fail(b *batch) {
	for hash := range b.spans {
		seg, ok := e.segments[hash]
		if !ok || seg.inflight != b {
			continue
		}
		seg.inflight = nil
		seg.failed = true
		if !seg.dirty && e.queued+len(seg.points) <= e.cfg.MaxPoints {
			seg.dirty = true
			e.queued += len(seg.points)
		}
	}
	e.notify(func(o Observer) { o.ReadbackFailed(e.kernel) })
}

func (e *Engine) evict() {
	for hash, seg := range e.segments {
		if e.frame-seg.posted >= uint64(e.cfg.StaleFrames) {
			delete(e.segments, hash)
			e.notify(func(o Observer) { o.Evicted(e.kernel) })
		}
	}
}

func (e *Engine) remove(seg *segment) {
	if seg.dirty {
		e.queued -= len(seg.points)
	}
	delete(e.segments, seg.hash)
}

func (e *Engine) dispatch(time float64) {
	var dirty []*segment
	for _, hash := range slices.Sorted(maps.Keys(e.segments)) {
		if seg := e.segments[hash]; seg.dirty && seg.inflight == nil {
			dirty = append(dirty, seg)
		}
	}
	if len(dirty) == 0 {
		return
	}
	if len(e.batches) >= e.cfg.FramesInFlight {
		e.notify(func(o Observer) { o.RingFull(e.kernel) })
		return
	}

	e.uploads = e.uploads[:0]
	spans := make(map[int]span, len(dirty))
	for _, seg := range dirty {
		spans[seg.hash] = span{start: len(e.uploads), count: len(seg.points)}
		for _, p := range seg.points {
			e.uploads = append(e.uploads, upload{x: p.X, z: p.Z, minLength: seg.minLength})
		}
	}

	rb, err := e.device.Dispatch(e.job())
	if err != nil {
		for _, seg := range dirty {
			seg.failed = true
		}
		if !e.warned[errDispatch] {
			e.warned[errDispatch] = true
			slog.Warn("query dispatch failed", "kernel", e.kernel.String(), "sites", len(dirty), "error", err)
		}
		e.notify(func(o Observer) { o.ReadbackFailed(e.kernel) })
		return
	}

	b := &batch{readback: rb, frame: e.frame, time: time, spans: spans}
	e.batches = append(e.batches, b)
	for _, seg := range dirty {
		seg.dirty = false
		seg.inflight = b
	}
	n := len(e.uploads)
	e.notify(func(o Observer) { o.Dispatched(e.kernel, n) })
}

// postFailed logs the first occurrence of each error kind.
func (e *Engine) postFailed(hash int, err error) {
	e.notify(func(o Observer) { o.PostFailed(e.kernel, err) })
	if e.warned[err] {
		return
	}
	e.warned[err] = true
	slog.Warn("query post failed",
		"kernel", e.kernel.String(),
		"hash", hash,
		"sites", len(e.segments),
		"queued", e.queued,
		"error", err,
	)
}

func (e *Engine) notify(fn func(Observer)) {
	for _, o := range e.observers {
		fn(o)
	}
}

// scratch returns engine-owned buffers of length n for provider calls.
func (e *Engine) scratch(n int) ([]field.Vec3, []Sample) {
	if cap(e.scratchPoints) < n {
		e.scratchPoints = make([]field.Vec3, n)
		e.scratchSamples = make([]Sample, n)
	}
	return e.scratchPoints[:n], e.scratchSamples[:n]
}
