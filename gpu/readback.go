package gpu

// ReadbackState is the completion state of an asynchronous readback.
type ReadbackState int

const (
	ReadbackPending ReadbackState = iota
	ReadbackDone
	ReadbackFailed
)

func (s ReadbackState) String() string {
	switch s {
	case ReadbackPending:
		return "pending"
	case ReadbackDone:
		return "done"
	case ReadbackFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Readback is the CPU side of one dispatch's output buffer.
type Readback struct {
	id      uint64
	name    string
	issued  uint64
	readyAt uint64
	state   ReadbackState
	data    []float32
	device  *Device
}

// ID returns the dispatch sequence number.
func (r *Readback) ID() uint64 { return r.id }

// Issued returns the device frame the dispatch was issued on.
func (r *Readback) Issued() uint64 { return r.issued }

// State returns the current completion state.
func (r *Readback) State() ReadbackState { return r.state }

// Data returns the output buffer. Only valid while the readback is done and
// not yet released.
func (r *Readback) Data() []float32 {
	if r.state != ReadbackDone {
		return nil
	}
	return r.data
}

// Release returns the buffer to the device for reuse. Safe to call more than once.
func (r *Readback) Release() {
	if r.data == nil {
		return
	}
	r.device.release(r.data)
	r.data = nil
}
