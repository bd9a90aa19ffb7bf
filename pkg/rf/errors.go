package rf

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeout indicates no acknowledge arrived in time.
	ErrTimeout = errors.New("ack timeout")
	// ErrNotConnected indicates the radio link isn't up.
	ErrNotConnected = errors.New("radio not connected")
	// ErrWired indicates the operation is meaningless in wired mode.
	ErrWired = errors.New("wired mode")
)

// TimeoutError is returned when a command is not acknowledged.
type TimeoutError struct {
	Cmd      Command
	Attempts int
}

// Error implements error.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: no ack after %d attempts", e.Cmd, e.Attempts)
}

// Is matches ErrTimeout.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}
