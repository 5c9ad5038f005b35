package export

import (
	"errors"
	"fmt"
)

// ErrBusy is returned when an export is requested while another is in
// flight. Concurrent requests are rejected, not queued.
var ErrBusy = errors.New("an export is already in progress")

// ValidationError reports a request rejected before any engine work.
// It is surfaced directly to the user and never recorded as telemetry.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// UserMessage returns the message shown to the user.
func (e *ValidationError) UserMessage() string {
	return e.Reason
}

// InitError reports a failed engine initialization.
type InitError struct {
	Err error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("engine initialization failed: %v", e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

// UserMessage returns the message shown to the user.
func (e *InitError) UserMessage() string {
	return "engine initialization failed"
}

// IOError reports a failed transfer against the engine's working
// filesystem. The underlying detail goes to telemetry, not the user.
type IOError struct {
	Op  string // "write" or "read"
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("engine filesystem %s failed: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// UserMessage returns the message shown to the user.
func (e *IOError) UserMessage() string {
	if e.Op == "write" {
		return "input preparation failed"
	}
	return "processing failed"
}

// EncodeError reports a failed execute step.
type EncodeError struct {
	Err error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encoding failed: %v", e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// UserMessage returns the message shown to the user.
func (e *EncodeError) UserMessage() string {
	return "processing failed"
}

// userMessenger is satisfied by every error in the export taxonomy.
type userMessenger interface {
	UserMessage() string
}

// UserMessage extracts the user-facing message for an export error,
// falling back to a generic message for unclassified failures.
func UserMessage(err error) string {
	var um userMessenger
	if errors.As(err, &um) {
		return um.UserMessage()
	}
	return "processing failed"
}
