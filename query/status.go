package query

import "errors"

// Kernel selects which field channels a dispatch samples.
type Kernel int

const (
	KernelDisplacement Kernel = 0
	KernelFlow         Kernel = 1
	KernelDepth        Kernel = 2
)

func (k Kernel) String() string {
	switch k {
	case KernelDisplacement:
		return "displacement"
	case KernelFlow:
		return "flow"
	case KernelDepth:
		return "depth"
	default:
		return "unknown"
	}
}

// Status is the bitmask every Query returns. Zero means the results buffer
// was filled; null providers always return zero.
type Status uint32

const (
	StatusOK Status = 0

	// StatusRetrieveFailed: no harvested data for this query site yet, or the
	// last data was dropped. The results buffer was not written.
	StatusRetrieveFailed Status = 1 << iota
	// StatusPostFailed: the query could not be registered for the next dispatch.
	StatusPostFailed
	// StatusNotEnoughDataForVels: velocities need two harvested results.
	StatusNotEnoughDataForVels
	// StatusVelocityDataInvalidated: the query shape changed since the last result.
	StatusVelocityDataInvalidated
	// StatusInvalidDtForVelocity: the two results are too close in time.
	StatusInvalidDtForVelocity
)

// RetrieveSucceeded reports whether a Query status means results were delivered.
func RetrieveSucceeded(s Status) bool {
	return s&StatusRetrieveFailed == 0
}

// velocityBits are the Status bits that mean velocities were not written.
const velocityBits = StatusNotEnoughDataForVels | StatusVelocityDataInvalidated | StatusInvalidDtForVelocity

// VelocitiesValid reports whether a collision Query status means the
// velocities buffer was filled.
func VelocitiesValid(s Status) bool {
	return RetrieveSucceeded(s) && s&velocityBits == 0
}

// RequestStatus is the lifecycle state of one query site.
type RequestStatus int

const (
	// Pending: posted, GPU work not yet harvested.
	Pending RequestStatus = iota
	// Success: harvested data is available.
	Success
	// Failure: work completed without producing data.
	Failure
	// Invalid: unknown or evicted hash.
	Invalid
)

func (s RequestStatus) String() string {
	switch s {
	case Pending:
		return "pending"
	case Success:
		return "success"
	case Failure:
		return "failure"
	case Invalid:
		return "invalid"
	default:
		return "unknown"
	}
}

var (
	// ErrTooManyHashes means the engine already tracks MaxHashes query sites.
	ErrTooManyHashes = errors.New("query: too many query sites registered")
	// ErrBufferFull means this frame's upload buffer cannot take the points.
	ErrBufferFull = errors.New("query: point buffer full for this frame")
	// ErrLengthMismatch means points and result buffers differ in length.
	ErrLengthMismatch = errors.New("query: points and results differ in length")
	// ErrNegativeLength means the minimum spatial length was negative or NaN.
	ErrNegativeLength = errors.New("query: minimum spatial length must be >= 0")
)
