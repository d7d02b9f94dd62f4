package pru

import (
	"errors"
	"fmt"
)

var (
	// ErrCoprocessorUnresponsive indicates lanes did not become idle in time.
	ErrCoprocessorUnresponsive = errors.New("co-processor unresponsive")
	// ErrLaneNotRunning indicates a lane was asked to stop while not running.
	ErrLaneNotRunning = errors.New("lane not running")
	// ErrFrameTooLarge indicates a frame exceeds the shared memory window.
	ErrFrameTooLarge = errors.New("frame too large for shared memory")
)

// LaneError wraps a firmware lifecycle failure of a lane.
type LaneError struct {
	Lane int
	Op   string
	Err  error
}

// Error implements error.
func (e *LaneError) Error() string {
	return fmt.Sprintf("lane %d %s: %v", e.Lane, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *LaneError) Unwrap() error {
	return e.Err
}
