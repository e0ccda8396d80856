package errors

import (
	"errors"
	"fmt"
)

// ChannelError is the base interface for all agent channel errors.
type ChannelError interface {
	error
	IsChannelError() bool
}

// Compile-time verification that all error types implement ChannelError.
var (
	_ ChannelError = (*NotFoundError)(nil)
	_ ChannelError = (*SpawnError)(nil)
	_ ChannelError = (*IOError)(nil)
	_ ChannelError = (*ProtocolError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrChannelClosed indicates the channel has been closed and cannot be reused.
	ErrChannelClosed = errors.New("channel closed: channels are single-use, create a new one with New()")

	// ErrChannelStarted indicates Start was called on a channel that is already running.
	ErrChannelStarted = errors.New("channel already started")

	// ErrEndOfStream indicates the agent closed its output.
	ErrEndOfStream = errors.New("agent closed its output")

	// ErrWouldBlock indicates a non-blocking read or write could not make progress.
	ErrWouldBlock = errors.New("operation would block")

	// ErrOutboxFull indicates the agent stopped draining its input and the
	// outbound queue reached its limit.
	ErrOutboxFull = errors.New("outbound queue full")

	// ErrExitRequested indicates the agent asked the host to terminate.
	// Dispatch stops at the record carrying the request.
	ErrExitRequested = errors.New("exit requested by agent")
)

// NotFoundError indicates the agent executable could not be located.
type NotFoundError struct {
	SearchedPaths []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("agent executable not found in: %v", e.SearchedPaths)
}

// IsChannelError implements ChannelError.
func (e *NotFoundError) IsChannelError() bool { return true }

// SpawnError indicates the agent process could not be started.
// Op names the failed step ("resolve", "pipe", "start").
type SpawnError struct {
	Path string
	Op   string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to spawn agent %q (%s): %v", e.Path, e.Op, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// IsChannelError implements ChannelError.
func (e *SpawnError) IsChannelError() bool { return true }

// IOError indicates a read or write on an agent pipe failed.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("agent pipe %s failed: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// IsChannelError implements ChannelError.
func (e *IOError) IsChannelError() bool { return true }

// ProtocolError indicates the agent sent a line longer than the inbound
// buffer can hold.
type ProtocolError struct {
	Length int
	Limit  int
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("agent line exceeds maximum length: %d bytes buffered without terminator (limit %d)",
		e.Length, e.Limit)
}

// IsChannelError implements ChannelError.
func (e *ProtocolError) IsChannelError() bool { return true }
