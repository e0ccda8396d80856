// Package subprocess spawns the agent process and owns the host side of its
// pipes.
//
// The agent's standard output and standard input are connected to two
// anonymous pipes; its standard error is shared with the host. The host keeps
// the read end of the agent's output and the write end of the agent's input,
// both in non-blocking mode, so they can be driven from a select(2) loop.
package subprocess
