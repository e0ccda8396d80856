package main

import (
	"errors"
	"log/slog"

	"golang.org/x/sys/unix"

	agentchan "github.com/wagiedev/agent-channel-go"
)

// hostLoop multiplexes the agent channel, the host's stdin and a wake pipe.
type hostLoop struct {
	ch      *agentchan.Channel
	stdinFD int // -1 when stdin is not forwarded
	wakeFD  int
	log     *slog.Logger
}

// run serves the channel until it closes or the wake pipe becomes readable.
// It returns the error that closed the channel, if any.
func (l *hostLoop) run() error {
	sets := agentchan.NewSets()
	buf := make([]byte, 4096)

	for l.ch.State() == agentchan.StateRunning {
		sets.Reset()

		if err := l.ch.RegisterForReadiness(sets); err != nil {
			return err
		}

		if err := sets.Read.Add(l.wakeFD); err != nil {
			return err
		}

		if l.stdinFD >= 0 {
			if err := sets.Read.Add(l.stdinFD); err != nil {
				return err
			}
		}

		if _, err := agentchan.Wait(sets, -1); err != nil {
			return err
		}

		if sets.Read.Has(l.wakeFD) {
			l.log.Debug("Host loop woken for shutdown")

			return nil
		}

		if l.stdinFD >= 0 && sets.Read.Has(l.stdinFD) {
			if err := l.forwardStdin(buf); err != nil {
				return err
			}
		}

		if err := l.ch.Check(sets); err != nil {
			return err
		}
	}

	return nil
}

// forwardStdin copies whatever stdin has ready to the agent. At end of input
// stdin is no longer watched.
func (l *hostLoop) forwardStdin(buf []byte) error {
	n, err := unix.Read(l.stdinFD, buf)

	switch {
	case errors.Is(err, unix.EINTR), errors.Is(err, unix.EAGAIN):
		return nil
	case err != nil || n == 0:
		l.log.Debug("Host stdin closed, no longer forwarding", "error", err)
		l.stdinFD = -1

		return nil
	}

	return l.ch.Send(string(buf[:n]))
}
