package agentchan

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/oklog/ulid/v2"

	"github.com/wagiedev/agent-channel-go/internal/config"
	"github.com/wagiedev/agent-channel-go/internal/discovery"
	"github.com/wagiedev/agent-channel-go/internal/errors"
	"github.com/wagiedev/agent-channel-go/internal/framing"
	"github.com/wagiedev/agent-channel-go/internal/protocol"
	"github.com/wagiedev/agent-channel-go/internal/subprocess"
)

// State is the lifecycle state of a Channel.
type State int

const (
	// StateNotStarted is the initial state: no agent configured or Start not called.
	StateNotStarted State = iota
	// StateRunning means the agent was spawned and its pipes are open.
	StateRunning
	// StateClosed is terminal. A new Channel is needed to talk to an agent again.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateRunning:
		return "running"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Command is one parsed agent record.
type Command = protocol.Command

// HandlerFunc handles an agent command. A non-nil error stops the batch and
// closes the channel.
type HandlerFunc = protocol.HandlerFunc

// Command names understood by every Channel.
const (
	CommandExit = protocol.CommandExit
	CommandSend = protocol.CommandSend
)

// Channel is one session with an agent process.
//
// A Channel is driven by a single host event loop and is not safe for
// concurrent use.
type Channel struct {
	log       *slog.Logger
	options   *Options
	sessionID string
	state     State

	proc   *subprocess.Process
	output *subprocess.FD
	input  *subprocess.FD

	assembler  *framing.Assembler
	dispatcher *protocol.Dispatcher
	outbox     *protocol.Outbox
}

// New creates a Channel in StateNotStarted.
func New(opts ...Option) *Channel {
	options := applyOptions(opts)

	log := options.Logger
	if log == nil {
		log = NopLogger()
	}

	sessionID := ulid.Make().String()
	log = log.With("component", "agent_channel", "session_id", sessionID)

	c := &Channel{
		log:        log,
		options:    options,
		sessionID:  sessionID,
		assembler:  framing.New(options.BufferSize),
		dispatcher: protocol.NewDispatcher(log),
		outbox:     protocol.NewOutbox(options.MaxPendingBytes),
	}

	c.dispatcher.Handle(CommandExit, protocol.ExitHandler())
	c.dispatcher.Handle(CommandSend, protocol.SendHandler(options.Inject))

	return c
}

// State returns the lifecycle state.
func (c *Channel) State() State {
	return c.state
}

// SessionID returns the identifier attached to this channel's log records.
func (c *Channel) SessionID() string {
	return c.sessionID
}

// Pid returns the agent's process id, or 0 when no agent was spawned.
func (c *Channel) Pid() int {
	if c.proc == nil {
		return 0
	}

	return c.proc.Pid()
}

// Handle registers fn for an agent command, replacing any earlier handler,
// including the built-in exit and send handlers.
func (c *Channel) Handle(name string, fn HandlerFunc) {
	c.dispatcher.Handle(name, fn)
}

// Start spawns the configured agent.
//
// With no agent path configured Start does nothing and the channel stays in
// StateNotStarted. A spawn failure is fatal: it is logged, the exit function
// is called with status 1, and the *SpawnError is returned in case the exit
// function returns.
//
// The agent receives the configured path as argv[0], even when a bare name
// was resolved through PATH. ctx only decides whether the spawn happens; it
// is not tied to the agent's lifetime, which ends with Close.
func (c *Channel) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	switch c.state {
	case StateRunning:
		return errors.ErrChannelStarted
	case StateClosed:
		return errors.ErrChannelClosed
	}

	path := c.options.AgentPath
	if path == "" {
		c.log.Debug("No agent configured")

		return nil
	}

	c.log.Info("Starting agent", "agent_path", path, "buffer_size", c.assembler.Cap())

	resolved, err := discovery.NewDiscoverer(&discovery.Config{Path: path, Logger: c.log}).Discover()
	if err != nil {
		return c.fail(&errors.SpawnError{Path: path, Op: "resolve", Err: err})
	}

	proc, err := subprocess.Launch(c.log, resolved, path)
	if err != nil {
		return c.fail(err)
	}

	c.proc = proc
	c.attach(proc.Output, proc.Input)

	if c.options.Handshake {
		return c.Send(config.Handshake)
	}

	return nil
}

// attach makes the channel use the given pipe ends and enters StateRunning.
func (c *Channel) attach(output, input *subprocess.FD) {
	c.output = output
	c.input = input
	c.state = StateRunning
}

func (c *Channel) fail(err error) error {
	c.log.Error("Failed to start agent", "error", err)
	c.state = StateClosed
	c.options.Exit(1)

	return err
}

// Close closes both pipes, discards buffered input and pending output, and
// reaps the agent if it has already exited. Closing a closed channel is a
// no-op.
func (c *Channel) Close() error {
	if c.state != StateRunning {
		c.state = StateClosed

		return nil
	}

	c.state = StateClosed
	c.assembler.Reset()
	c.outbox.Reset()

	var err error

	if c.proc != nil {
		err = c.proc.Close()
	} else {
		err = stderrors.Join(c.output.Close(), c.input.Close())
	}

	c.log.Debug("Agent channel closed")

	return err
}

// closeWith closes the channel after a failure and returns cause.
func (c *Channel) closeWith(cause error) error {
	if stderrors.Is(cause, errors.ErrEndOfStream) {
		c.log.Info("Agent closed its output")
	} else {
		c.log.Warn("Closing agent channel", "error", cause)
	}

	if err := c.Close(); err != nil {
		c.log.Debug("Error while closing agent channel", "error", err)
	}

	return cause
}

// RegisterForReadiness adds the channel's descriptors to sets: the agent
// output for reading, and the agent input for writing while output to the
// agent is queued. It does nothing unless the channel is running.
func (c *Channel) RegisterForReadiness(sets *Sets) error {
	if c.state != StateRunning {
		return nil
	}

	if err := sets.Read.Add(c.output.Fd()); err != nil {
		return err
	}

	if c.outbox.Pending() > 0 {
		return sets.Write.Add(c.input.Fd())
	}

	return nil
}

// IsReady reports whether the agent output is marked readable in sets.
func (c *Channel) IsReady(sets *Sets) bool {
	return c.state == StateRunning && sets.Read.Has(c.output.Fd())
}

// IsWritable reports whether the agent input is marked writable in sets.
func (c *Channel) IsWritable(sets *Sets) bool {
	return c.state == StateRunning && sets.Write.Has(c.input.Fd())
}

// Check services the channel after a select call: it flushes queued output
// when the agent input is writable and pumps and dispatches agent commands
// when the agent output is readable.
//
// The returned error is the reason the channel closed, or ErrExitRequested
// when the agent asked the host to exit and the exit function returned.
func (c *Channel) Check(sets *Sets) error {
	if c.IsWritable(sets) {
		if err := c.flush(); err != nil {
			return err
		}
	}

	if c.IsReady(sets) {
		return c.Pump()
	}

	return nil
}

// Pump performs one non-blocking read from the agent and dispatches every
// command it completed, in order. Call it only when the agent output is
// readable. It does nothing unless the channel is running.
func (c *Channel) Pump() error {
	if c.state != StateRunning {
		return nil
	}

	c.log.Debug("Reading from agent")

	records, pumpErr := c.assembler.Pump(c.output)

	if err := c.dispatcher.DispatchAll(records); err != nil {
		if stderrors.Is(err, errors.ErrExitRequested) {
			c.log.Info("Exiting on agent request")
			_ = c.Close()
			c.options.Exit(0)

			return err
		}

		return c.closeWith(fmt.Errorf("handle agent command: %w", err))
	}

	if pumpErr != nil {
		return c.closeWith(pumpErr)
	}

	return nil
}

// Send queues text for the agent and writes as much as the pipe accepts.
// The caller supplies the trailing newline. Send does nothing unless the
// channel is running.
func (c *Channel) Send(text string) error {
	if c.state != StateRunning {
		c.log.Debug("Agent not running, dropping message", "text", text)

		return nil
	}

	c.log.Debug("Sending to agent", "text", text)

	if err := c.outbox.Send(c.input, text); err != nil {
		if stderrors.Is(err, errors.ErrOutboxFull) {
			err = &errors.IOError{Op: "write", Err: err}
		}

		return c.closeWith(err)
	}

	return nil
}

// Sendf formats according to a format specifier and sends the result.
func (c *Channel) Sendf(format string, args ...any) error {
	return c.Send(fmt.Sprintf(format, args...))
}

// Pending returns the number of bytes queued for the agent.
func (c *Channel) Pending() int {
	return c.outbox.Pending()
}

func (c *Channel) flush() error {
	if err := c.outbox.Flush(c.input); err != nil {
		return c.closeWith(err)
	}

	return nil
}
