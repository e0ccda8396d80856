package agentchan

import (
	"log/slog"

	"github.com/wagiedev/agent-channel-go/internal/config"
)

// Options configures a Channel.
type Options = config.Options

// Env holds channel settings read from AGENTCHAN_* environment variables.
type Env = config.Env

// LoadEnv parses the AGENTCHAN_* environment variables.
func LoadEnv() (*Env, error) {
	return config.LoadEnv()
}

// Option configures Options using the functional options pattern.
type Option func(*Options)

// applyOptions applies functional options on top of the defaults.
func applyOptions(opts []Option) *Options {
	options := config.Default()
	for _, opt := range opts {
		opt(options)
	}

	options.Normalize()

	return options
}

// WithLogger sets the logger for debug output.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithAgentPath sets the agent executable. A bare name is searched in PATH.
// An empty path leaves the channel unstarted.
func WithAgentPath(path string) Option {
	return func(o *Options) {
		o.AgentPath = path
	}
}

// WithBufferSize sets the inbound buffer capacity, which is also the longest
// line the agent may send, terminator included.
func WithBufferSize(size int) Option {
	return func(o *Options) {
		o.BufferSize = size
	}
}

// WithHandshake controls whether "init\n" is sent once the agent is running.
// Enabled by default.
func WithHandshake(enabled bool) Option {
	return func(o *Options) {
		o.Handshake = enabled
	}
}

// WithMaxPendingBytes bounds the bytes queued for an agent that is not
// reading its input. Exceeding it closes the channel.
func WithMaxPendingBytes(n int) Option {
	return func(o *Options) {
		o.MaxPendingBytes = n
	}
}

// WithInjector sets the function receiving the text of "send" commands.
func WithInjector(inject func(text string)) Option {
	return func(o *Options) {
		o.Inject = inject
	}
}

// WithExitFunc replaces os.Exit for agent-requested and spawn-failure exits.
func WithExitFunc(exit func(code int)) Option {
	return func(o *Options) {
		o.Exit = exit
	}
}

// WithEnv applies settings loaded by LoadEnv.
func WithEnv(e *Env) Option {
	return func(o *Options) {
		if e != nil {
			e.Apply(o)
		}
	}
}
