package gpu

import (
	"errors"
	"testing"

	"github.com/pthm-cable/swell/config"
)

func newTestDevice(latency int) *Device {
	return NewDevice(config.GPUConfig{ReadbackLatency: latency, Workers: 2, ChunkSize: 3})
}

func fillJob(count int) Job {
	return Job{
		Name:   "fill",
		Count:  count,
		Stride: 2,
		Run: func(start, end int, out []float32) {
			for i := start; i < end; i++ {
				o := (i - start) * 2
				out[o] = float32(i)
				out[o+1] = float32(i * 10)
			}
		},
	}
}

func TestDevice_ReadbackCompletesAfterLatency(t *testing.T) {
	d := newTestDevice(2)

	rb, err := d.Dispatch(fillJob(10))
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if rb.State() != ReadbackPending {
		t.Fatalf("expected pending readback, got %s", rb.State())
	}
	if rb.Data() != nil {
		t.Error("expected no data while pending")
	}

	d.EndFrame()
	if rb.State() != ReadbackPending {
		t.Fatalf("expected pending after 1 frame, got %s", rb.State())
	}

	d.EndFrame()
	if rb.State() != ReadbackDone {
		t.Fatalf("expected done after 2 frames, got %s", rb.State())
	}
	if d.InFlight() != 0 {
		t.Errorf("expected no readbacks in flight, got %d", d.InFlight())
	}

	data := rb.Data()
	if len(data) != 20 {
		t.Fatalf("expected 20 floats, got %d", len(data))
	}
	for i := 0; i < 10; i++ {
		if data[i*2] != float32(i) || data[i*2+1] != float32(i*10) {
			t.Errorf("item %d: got (%v, %v)", i, data[i*2], data[i*2+1])
		}
	}
}

func TestDevice_EmptyJob(t *testing.T) {
	d := newTestDevice(1)
	_, err := d.Dispatch(fillJob(0))
	if !errors.Is(err, ErrEmptyJob) {
		t.Errorf("expected ErrEmptyJob, got %v", err)
	}
}

func TestDevice_LoseFailsInFlight(t *testing.T) {
	d := newTestDevice(3)
	rb, err := d.Dispatch(fillJob(4))
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	d.Lose()
	if rb.State() != ReadbackFailed {
		t.Errorf("expected failed readback after device loss, got %s", rb.State())
	}
	if _, err := d.Dispatch(fillJob(4)); !errors.Is(err, ErrDeviceLost) {
		t.Errorf("expected ErrDeviceLost, got %v", err)
	}

	d.Restore()
	if _, err := d.Dispatch(fillJob(4)); err != nil {
		t.Errorf("expected dispatch to succeed after restore, got %v", err)
	}
}

func TestDevice_ReleaseRecyclesBuffer(t *testing.T) {
	d := newTestDevice(1)
	rb, _ := d.Dispatch(fillJob(8))
	d.EndFrame()
	first := &rb.Data()[0]
	rb.Release()
	rb.Release()

	if rb.Data() != nil {
		t.Error("expected released readback to expose no data")
	}

	rb2, _ := d.Dispatch(fillJob(4))
	d.EndFrame()
	if &rb2.Data()[0] != first {
		t.Error("expected released buffer to be reused")
	}
}
