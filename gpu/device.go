// Package gpu models the compute device the query engine dispatches to.
//
// Kernels execute across worker goroutines when dispatched, but their output
// only becomes readable after the configured number of frames, the way an
// asynchronous GPU readback arrives a few frames after the work was queued.
// The device can be "lost", which fails every readback still in flight.
package gpu

import (
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/pthm-cable/swell/config"
)

var (
	// ErrDeviceLost is returned by Dispatch while the device is lost.
	ErrDeviceLost = errors.New("gpu: device lost")
	// ErrEmptyJob is returned when a job has no work items.
	ErrEmptyJob = errors.New("gpu: empty job")
)

// Job describes one compute dispatch. Run is called for contiguous ranges of
// work items [start, end) and writes Stride floats per item into out, which
// is already offset to item start.
type Job struct {
	Name   string
	Count  int
	Stride int
	Run    func(start, end int, out []float32)
}

// Device executes jobs and hands back readbacks that complete after a fixed
// number of frames.
type Device struct {
	latency   uint64
	workers   int
	chunkSize int

	frame    uint64
	nextID   uint64
	lost     bool
	inFlight []*Readback
	free     [][]float32
}

// NewDevice creates a device from GPU config.
func NewDevice(cfg config.GPUConfig) *Device {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	chunk := cfg.ChunkSize
	if chunk <= 0 {
		chunk = 256
	}
	latency := cfg.ReadbackLatency
	if latency < 1 {
		latency = 1
	}
	return &Device{
		latency:   uint64(latency),
		workers:   workers,
		chunkSize: chunk,
	}
}

// Frame returns the number of completed frames.
func (d *Device) Frame() uint64 { return d.frame }

// Latency returns the readback latency in frames.
func (d *Device) Latency() int { return int(d.latency) }

// InFlight returns the number of readbacks not yet completed or failed.
func (d *Device) InFlight() int { return len(d.inFlight) }

// Lost reports whether the device is currently lost.
func (d *Device) Lost() bool { return d.lost }

// Dispatch runs the job and returns a readback that completes after the
// device latency has elapsed.
func (d *Device) Dispatch(job Job) (*Readback, error) {
	if d.lost {
		return nil, ErrDeviceLost
	}
	if job.Count <= 0 || job.Stride <= 0 {
		return nil, fmt.Errorf("dispatching %q: %w", job.Name, ErrEmptyJob)
	}

	out := d.acquire(job.Count * job.Stride)

	var g errgroup.Group
	g.SetLimit(d.workers)
	for start := 0; start < job.Count; start += d.chunkSize {
		end := min(start+d.chunkSize, job.Count)
		g.Go(func() error {
			job.Run(start, end, out[start*job.Stride:end*job.Stride])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		d.release(out)
		return nil, fmt.Errorf("dispatching %q: %w", job.Name, err)
	}

	d.nextID++
	rb := &Readback{
		id:      d.nextID,
		name:    job.Name,
		issued:  d.frame,
		readyAt: d.frame + d.latency,
		data:    out,
		device:  d,
	}
	d.inFlight = append(d.inFlight, rb)
	return rb, nil
}

// EndFrame advances the device clock and completes readbacks whose latency
// has elapsed.
func (d *Device) EndFrame() {
	d.frame++
	kept := d.inFlight[:0]
	for _, rb := range d.inFlight {
		if rb.state == ReadbackPending && d.frame >= rb.readyAt {
			rb.state = ReadbackDone
		}
		if rb.state == ReadbackPending {
			kept = append(kept, rb)
		}
	}
	clear(d.inFlight[len(kept):])
	d.inFlight = kept
}

// Lose fails every in-flight readback and rejects dispatches until Restore.
func (d *Device) Lose() {
	d.lost = true
	for _, rb := range d.inFlight {
		rb.state = ReadbackFailed
	}
	clear(d.inFlight)
	d.inFlight = d.inFlight[:0]
}

// Restore brings a lost device back.
func (d *Device) Restore() {
	d.lost = false
}

func (d *Device) acquire(n int) []float32 {
	for i, buf := range d.free {
		if cap(buf) >= n {
			d.free[i] = d.free[len(d.free)-1]
			d.free = d.free[:len(d.free)-1]
			return buf[:n]
		}
	}
	return make([]float32, n)
}

func (d *Device) release(buf []float32) {
	if buf == nil {
		return
	}
	d.free = append(d.free, buf)
}
