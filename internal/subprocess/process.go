package subprocess

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"golang.org/x/sys/unix"

	"github.com/wagiedev/agent-channel-go/internal/errors"
)

// Process is a running agent and the host ends of its pipes.
type Process struct {
	log *slog.Logger
	cmd *exec.Cmd

	// Output reads what the agent writes to its standard output.
	Output *FD
	// Input writes to the agent's standard input.
	Input *FD

	reaped bool
}

// Launch spawns the executable at path with name as its only argument,
// argv[0]. An empty name means path.
//
// The agent's stdout is the write end of one pipe and its stdin the read end
// of another; stderr is inherited. Every failure is reported as an
// *errors.SpawnError and leaves no descriptors open.
func Launch(log *slog.Logger, path, name string) (*Process, error) {
	log = log.With("component", "subprocess")

	var fromAgent, toAgent [2]int

	if err := unix.Pipe2(fromAgent[:], unix.O_CLOEXEC); err != nil {
		log.Error("Failed to create agent output pipe", "error", err)

		return nil, &errors.SpawnError{Path: path, Op: "pipe", Err: err}
	}

	if err := unix.Pipe2(toAgent[:], unix.O_CLOEXEC); err != nil {
		log.Error("Failed to create agent input pipe", "error", err)
		closeAll(fromAgent[0], fromAgent[1])

		return nil, &errors.SpawnError{Path: path, Op: "pipe", Err: err}
	}

	childStdout := os.NewFile(uintptr(fromAgent[1]), "agent-stdout")
	childStdin := os.NewFile(uintptr(toAgent[0]), "agent-stdin")

	//nolint:gosec // G204: the agent path comes from host configuration
	cmd := exec.Command(path)
	if name != "" {
		cmd.Args = []string{name}
	}

	cmd.Stdin = childStdin
	cmd.Stdout = childStdout
	cmd.Stderr = os.Stderr

	startErr := cmd.Start()

	// The child holds its own copies now; the host never uses these ends.
	_ = childStdout.Close()
	_ = childStdin.Close()

	if startErr != nil {
		log.Error("Failed to start agent process", "path", path, "error", startErr)
		closeAll(fromAgent[0], toAgent[1])

		return nil, &errors.SpawnError{Path: path, Op: "start", Err: startErr}
	}

	output, err := NewFD(fromAgent[0])
	if err != nil {
		closeAll(fromAgent[0], toAgent[1])
		_ = cmd.Process.Kill()

		return nil, &errors.SpawnError{Path: path, Op: "pipe", Err: fmt.Errorf("set nonblocking: %w", err)}
	}

	input, err := NewFD(toAgent[1])
	if err != nil {
		closeAll(fromAgent[0], toAgent[1])
		_ = cmd.Process.Kill()

		return nil, &errors.SpawnError{Path: path, Op: "pipe", Err: fmt.Errorf("set nonblocking: %w", err)}
	}

	log.Info("Agent process started", "path", path, "pid", cmd.Process.Pid)

	return &Process{
		log:    log,
		cmd:    cmd,
		Output: output,
		Input:  input,
	}, nil
}

// Pid returns the agent's process id.
func (p *Process) Pid() int {
	return p.cmd.Process.Pid
}

// Close closes both host pipe ends and tries to reap the agent without
// waiting. Safe to call more than once.
func (p *Process) Close() error {
	var errs []error

	if err := p.Output.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close agent output: %w", err))
	}

	if err := p.Input.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close agent input: %w", err))
	}

	p.Reap()

	return stderrors.Join(errs...)
}

// Reap collects the agent's exit status if it has already exited.
// It reports whether the agent is gone.
func (p *Process) Reap() bool {
	if p.reaped {
		return true
	}

	var status unix.WaitStatus

	pid, err := unix.Wait4(p.cmd.Process.Pid, &status, unix.WNOHANG, nil)
	if err != nil {
		p.log.Debug("Agent wait failed", "pid", p.cmd.Process.Pid, "error", err)

		return false
	}

	if pid == 0 {
		p.log.Debug("Agent still running", "pid", p.cmd.Process.Pid)

		return false
	}

	p.reaped = true
	_ = p.cmd.Process.Release()

	p.log.Info("Agent process exited", "pid", pid, "exit_code", status.ExitStatus())

	return true
}

func closeAll(fds ...int) {
	for _, fd := range fds {
		_ = unix.Close(fd)
	}
}
