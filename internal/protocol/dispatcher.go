package protocol

import (
	"log/slog"

	"github.com/wagiedev/agent-channel-go/internal/errors"
)

// HandlerFunc handles one command. A non-nil error stops the current batch.
type HandlerFunc func(cmd Command) error

// Dispatcher routes parsed records to command handlers.
// It is not safe for concurrent use; the host's event loop owns it.
type Dispatcher struct {
	log      *slog.Logger
	handlers map[string]HandlerFunc
}

// NewDispatcher creates a Dispatcher with no handlers registered.
func NewDispatcher(log *slog.Logger) *Dispatcher {
	return &Dispatcher{
		log:      log.With("component", "dispatcher"),
		handlers: make(map[string]HandlerFunc, 2),
	}
}

// Handle registers fn for the command name, replacing any earlier handler.
// Registering a nil fn removes the handler.
func (d *Dispatcher) Handle(name string, fn HandlerFunc) {
	if fn == nil {
		delete(d.handlers, name)

		return
	}

	d.log.Debug("Registering command handler", "command", name)
	d.handlers[name] = fn
}

// Dispatch parses one record and runs its handler.
// Records without a name and unknown commands are ignored.
func (d *Dispatcher) Dispatch(record string) error {
	cmd, ok := ParseCommand(record)
	if !ok {
		d.log.Debug("Ignoring record without command", "record", record)

		return nil
	}

	if cmd.HasArg {
		d.log.Debug("Received command from agent", "cmd", cmd.Name, "arg", cmd.Arg)
	} else {
		d.log.Debug("Received command from agent", "cmd", cmd.Name)
	}

	handler, exists := d.handlers[cmd.Name]
	if !exists {
		d.log.Debug("Ignoring unknown command", "command", cmd.String())

		return nil
	}

	return handler(cmd)
}

// DispatchAll dispatches records in order and stops at the first handler
// error, leaving the remaining records unprocessed.
func (d *Dispatcher) DispatchAll(records []string) error {
	for _, record := range records {
		if err := d.Dispatch(record); err != nil {
			return err
		}
	}

	return nil
}

// ExitHandler returns a handler that reports errors.ErrExitRequested.
func ExitHandler() HandlerFunc {
	return func(Command) error {
		return errors.ErrExitRequested
	}
}

// SendHandler returns a handler that passes the argument to inject.
// A send without an argument does nothing.
func SendHandler(inject func(text string)) HandlerFunc {
	return func(cmd Command) error {
		if !cmd.HasArg || inject == nil {
			return nil
		}

		inject(cmd.Arg)

		return nil
	}
}
