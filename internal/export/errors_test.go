package export

import (
	"errors"
	"fmt"
	"testing"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"Validation", &ValidationError{Reason: "end marker must be after the start marker"}, "end marker must be after the start marker"},
		{"Init", &InitError{Err: errors.New("not found")}, "engine initialization failed"},
		{"Write", &IOError{Op: "write", Err: errors.New("disk full")}, "input preparation failed"},
		{"Read", &IOError{Op: "read", Err: errors.New("gone")}, "processing failed"},
		{"Encode", &EncodeError{Err: errors.New("bad args")}, "processing failed"},
		{"Wrapped", fmt.Errorf("context: %w", &InitError{Err: errors.New("x")}), "engine initialization failed"},
		{"Unclassified", errors.New("mystery"), "processing failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	inner := errors.New("root cause")

	for _, err := range []error{
		&InitError{Err: inner},
		&IOError{Op: "write", Err: inner},
		&EncodeError{Err: inner},
	} {
		if !errors.Is(err, inner) {
			t.Errorf("%T does not unwrap to the root cause", err)
		}
	}
}
