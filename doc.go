// Package agentchan connects a host application to an external helper
// program (the agent) over a pair of pipes.
//
// The agent's standard output carries newline-terminated commands to the host
// and its standard input carries lines from the host. The channel never blocks
// and never starts goroutines: the host registers the channel's descriptors
// in its own select loop and calls Check when they become ready.
//
// # Basic Usage
//
//	ch := agentchan.New(
//	    agentchan.WithAgentPath("/usr/libexec/my-agent"),
//	    agentchan.WithInjector(func(text string) { keyboard.Type(text) }),
//	)
//	if err := ch.Start(ctx); err != nil {
//	    return err
//	}
//	defer ch.Close()
//
//	sets := agentchan.NewSets()
//	for ch.State() == agentchan.StateRunning {
//	    sets.Reset()
//	    _ = ch.RegisterForReadiness(sets)
//	    // add the host's own descriptors to sets here
//
//	    if _, err := agentchan.Wait(sets, -1); err != nil {
//	        return err
//	    }
//	    if err := ch.Check(sets); err != nil {
//	        log.Printf("agent channel closed: %v", err)
//	    }
//	}
//
// # Protocol
//
// The agent sends one command per line:
//
//	send <text>   inject <text> as synthetic input
//	exit          terminate the host process
//
// Any other line is ignored. Once running, the host sends "init\n" unless
// WithHandshake(false) is given.
//
// # Error Handling
//
// A failure to spawn the agent terminates the host (see WithExitFunc).
// Every later failure, including the agent closing its output, closes the
// channel and is returned from Check or Send; the host keeps running:
//
//	if err := ch.Check(sets); err != nil {
//	    if protoErr, ok := errors.AsType[*agentchan.ProtocolError](err); ok {
//	        log.Printf("agent line too long (limit %d)", protoErr.Limit)
//	    }
//	}
package agentchan
