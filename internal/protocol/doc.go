// Package protocol implements the agent's line-oriented command protocol.
//
// Every record received from the agent is one line of text of the form
//
//	name [argument]
//
// where the argument, if any, is everything after the first space. The
// Dispatcher parses records into Commands and invokes the handler registered
// for the command name; unknown names are ignored so newer agents keep
// working with older hosts.
//
// Messages to the agent go through an Outbox, which queues bytes the agent
// pipe cannot accept yet and flushes them once the pipe is writable again.
//
// Example usage:
//
//	d := protocol.NewDispatcher(log)
//	d.Handle(protocol.CommandSend, protocol.SendHandler(inject))
//	d.Handle(protocol.CommandExit, protocol.ExitHandler())
//
//	if err := d.DispatchAll(records); errors.Is(err, errors.ErrExitRequested) {
//	    // terminate the host
//	}
package protocol
