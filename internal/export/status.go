package export

import (
	"fmt"
	"sync"

	"autocut/internal/metrics"
)

// State identifies the current phase of the export state machine.
type State int

const (
	// StateIdle means no export is running.
	StateIdle State = iota
	// StateInitializing means the engine is being loaded.
	StateInitializing
	// StateWriting means input bytes are being moved into the engine.
	StateWriting
	// StateEncoding means the engine is executing the operation.
	StateEncoding
	// StateReading means output bytes are being retrieved.
	StateReading
	// StatePackaging means the output is being wrapped for download.
	StatePackaging
	// StateDone means the export completed successfully.
	StateDone
	// StateFailed means the export aborted.
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInitializing:
		return "initializing"
	case StateWriting:
		return "writing"
	case StateEncoding:
		return "encoding"
	case StateReading:
		return "reading"
	case StatePackaging:
		return "packaging"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Snapshot is a point-in-time view of the export status, suitable for
// polling clients.
type Snapshot struct {
	State   string `json:"state"`
	Percent int    `json:"percent"`
	Message string `json:"message,omitempty"`
}

// Status tracks the state and progress of the export in flight.
// Percent values are monotonically non-decreasing within one export and
// always within [0,100].
type Status struct {
	mu      sync.Mutex
	state   State
	percent int
	message string
	gen     uint64
}

// Begin resets progress for a new export and enters initializing.
// It returns a generation token identifying this export.
func (s *Status) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	s.state = StateInitializing
	s.percent = 0
	s.message = ""
	metrics.ExportProgress.Set(0)
	return s.gen
}

// SetState moves the machine to the given phase.
func (s *Status) SetState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Advance raises the displayed percent. Lower values than the current
// percent are ignored; values outside [0,100] are clamped.
func (s *Status) Advance(percent int) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if percent <= s.percent {
		return
	}
	s.percent = percent
	metrics.ExportProgress.Set(float64(percent))
}

// Fail marks the export failed with a user-facing message.
func (s *Status) Fail(message string) {
	s.mu.Lock()
	s.state = StateFailed
	s.message = message
	s.mu.Unlock()
}

// ResetIfCurrent returns the status to idle with zero progress, but
// only while gen still identifies the latest export. A newer export's
// display is never clobbered by an older reset timer.
func (s *Status) ResetIfCurrent(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != gen {
		return
	}
	s.state = StateIdle
	s.percent = 0
	s.message = ""
	metrics.ExportProgress.Set(0)
}

// Snapshot returns the current state, percent, and message.
func (s *Status) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		State:   s.state.String(),
		Percent: s.percent,
		Message: s.message,
	}
}
