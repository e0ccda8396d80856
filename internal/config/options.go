// Package config provides configuration types for the agent channel.
package config

import (
	"log/slog"
	"os"
)

const (
	// DefaultBufferSize is the inbound buffer capacity, and therefore the
	// longest line an agent may send including its terminator.
	DefaultBufferSize = 2048

	// MinBufferSize is the smallest usable inbound buffer: one byte of
	// command plus the terminator.
	MinBufferSize = 2

	// DefaultMaxPendingBytes bounds the outbound queue when the agent stops
	// reading its input.
	DefaultMaxPendingBytes = 64 * 1024

	// Handshake is the line sent to the agent once the channel is running.
	Handshake = "init\n"
)

// Options configures an agent channel.
type Options struct {
	// Logger is the slog logger for debug output.
	// If nil, logging is disabled (silent operation).
	Logger *slog.Logger

	// AgentPath is the agent executable. A bare name is looked up in PATH.
	// If empty, the channel is never started.
	AgentPath string

	// BufferSize is the inbound buffer capacity in bytes.
	// Lines that do not fit close the channel. Zero selects DefaultBufferSize.
	BufferSize int

	// Handshake controls whether "init\n" is sent once the agent is running.
	Handshake bool

	// MaxPendingBytes bounds outbound bytes queued while the agent pipe is full.
	// Zero selects DefaultMaxPendingBytes.
	MaxPendingBytes int

	// Inject receives the text of every "send" command.
	// If nil, send commands are dropped.
	Inject func(text string)

	// Exit terminates the host process. It is called with 0 when the agent
	// sends "exit" and with 1 when the agent cannot be spawned.
	// If nil, os.Exit is used.
	Exit func(code int)
}

// Default returns Options with the handshake enabled and default limits.
func Default() *Options {
	return &Options{
		BufferSize:      DefaultBufferSize,
		Handshake:       true,
		MaxPendingBytes: DefaultMaxPendingBytes,
	}
}

// Normalize fills zero values with defaults and clamps the buffer size.
func (o *Options) Normalize() {
	if o.BufferSize == 0 {
		o.BufferSize = DefaultBufferSize
	}

	if o.BufferSize < MinBufferSize {
		o.BufferSize = MinBufferSize
	}

	if o.MaxPendingBytes <= 0 {
		o.MaxPendingBytes = DefaultMaxPendingBytes
	}

	if o.Exit == nil {
		o.Exit = os.Exit
	}
}
