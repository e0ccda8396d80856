package agentchan

import "github.com/wagiedev/agent-channel-go/internal/errors"

// Re-export error types from internal package

// NotFoundError indicates the agent executable was not found.
type NotFoundError = errors.NotFoundError

// SpawnError indicates the agent process could not be started.
type SpawnError = errors.SpawnError

// IOError indicates a read or write on an agent pipe failed.
type IOError = errors.IOError

// ProtocolError indicates the agent sent a line longer than the inbound buffer.
type ProtocolError = errors.ProtocolError

// ChannelError is the base interface for all channel errors.
type ChannelError = errors.ChannelError

// Re-export sentinel errors from internal package.
var (
	// ErrChannelClosed indicates the channel has been closed and cannot be reused.
	ErrChannelClosed = errors.ErrChannelClosed

	// ErrChannelStarted indicates Start was called twice.
	ErrChannelStarted = errors.ErrChannelStarted

	// ErrEndOfStream indicates the agent closed its output.
	ErrEndOfStream = errors.ErrEndOfStream

	// ErrOutboxFull indicates the agent stopped reading its input.
	ErrOutboxFull = errors.ErrOutboxFull

	// ErrExitRequested indicates the agent sent "exit".
	ErrExitRequested = errors.ErrExitRequested
)
