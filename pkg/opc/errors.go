package opc

import (
	"errors"
	"fmt"
)

var (
	// ErrNoListener indicates no configured address could be bound.
	ErrNoListener = errors.New("no address could be bound")
	// ErrServerStarted indicates Start was called twice.
	ErrServerStarted = errors.New("server already started")
	// ErrPeerClosed indicates the peer sent a WebSocket close frame.
	ErrPeerClosed = errors.New("peer closed")
	// ErrUnknownCommand indicates a handler was registered for an unsupported command.
	ErrUnknownCommand = errors.New("unknown command")
)

// ProtocolError indicates malformed input from a client.
type ProtocolError struct {
	State  string
	Reason string
}

// Error implements error.
func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol violation in %s: %s", e.State, e.Reason)
}
