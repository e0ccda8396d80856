package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	agentchan "github.com/wagiedev/agent-channel-go"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "agent.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))

	return path
}

func newPipe(t *testing.T) (r, w int) {
	t.Helper()

	var p [2]int
	require.NoError(t, unix.Pipe2(p[:], unix.O_CLOEXEC))

	t.Cleanup(func() {
		_ = unix.Close(p[0])
		_ = unix.Close(p[1])
	})

	return p[0], p[1]
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const echoAgent = `while read line; do
	printf 'send got:%s\n' "$line"
	[ "$line" = "bye" ] && exit 0
done
`

func TestHostLoop_ForwardsStdinAndInjects(t *testing.T) {
	var injected []string

	ch := agentchan.New(
		agentchan.WithAgentPath(writeScript(t, echoAgent)),
		agentchan.WithInjector(func(text string) { injected = append(injected, text) }),
		agentchan.WithExitFunc(func(int) {}),
	)
	require.NoError(t, ch.Start(context.Background()))

	defer ch.Close()

	stdinR, stdinW := newPipe(t)
	wakeR, _ := newPipe(t)

	_, err := unix.Write(stdinW, []byte("hello\nbye\n"))
	require.NoError(t, err)

	loop := &hostLoop{ch: ch, stdinFD: stdinR, wakeFD: wakeR, log: discardLogger()}

	err = loop.run()
	require.ErrorIs(t, err, agentchan.ErrEndOfStream)
	require.Equal(t, []string{"got:init", "got:hello", "got:bye"}, injected)
	require.Equal(t, agentchan.StateClosed, ch.State())
}

func TestHostLoop_StdinEndOfInput(t *testing.T) {
	ch := agentchan.New(
		agentchan.WithAgentPath(writeScript(t, echoAgent)),
		agentchan.WithHandshake(false),
		agentchan.WithExitFunc(func(int) {}),
	)
	require.NoError(t, ch.Start(context.Background()))

	defer ch.Close()

	var stdin [2]int
	require.NoError(t, unix.Pipe2(stdin[:], unix.O_CLOEXEC))

	defer unix.Close(stdin[0])

	wakeR, _ := newPipe(t)

	_, err := unix.Write(stdin[1], []byte("bye\n"))
	require.NoError(t, err)
	require.NoError(t, unix.Close(stdin[1]))

	loop := &hostLoop{ch: ch, stdinFD: stdin[0], wakeFD: wakeR, log: discardLogger()}

	require.ErrorIs(t, loop.run(), agentchan.ErrEndOfStream)
	require.Equal(t, -1, loop.stdinFD)
}

func TestHostLoop_WakeStops(t *testing.T) {
	ch := agentchan.New(
		agentchan.WithAgentPath(writeScript(t, "read line\n")),
		agentchan.WithHandshake(false),
		agentchan.WithExitFunc(func(int) {}),
	)
	require.NoError(t, ch.Start(context.Background()))

	defer ch.Close()

	wakeR, wakeW := newPipe(t)

	_, err := unix.Write(wakeW, []byte{0})
	require.NoError(t, err)

	loop := &hostLoop{ch: ch, stdinFD: -1, wakeFD: wakeR, log: discardLogger()}

	require.NoError(t, loop.run())
	require.Equal(t, agentchan.StateRunning, ch.State())
}

func TestRunCmd_PrintsInjectedText(t *testing.T) {
	t.Setenv("AGENTCHAN_AGENT", "")

	agent := writeScript(t, "read line\nprintf 'send hi from %s\\n' \"$line\"\n")

	var out bytes.Buffer

	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{
		"run",
		"--agent", agent,
		"--no-stdin",
		"--env-file", filepath.Join(t.TempDir(), "missing.env"),
	})

	require.NoError(t, cmd.Execute())
	require.Equal(t, "hi from init\n", out.String())
}

func TestRunCmd_NoAgentConfigured(t *testing.T) {
	t.Setenv("AGENTCHAN_AGENT", "")

	cmd := newRootCmd()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"run", "--no-stdin", "--env-file", filepath.Join(t.TempDir(), "missing.env")})

	err := cmd.Execute()
	require.Error(t, err)
	require.Contains(t, err.Error(), "no agent configured")
}

func TestRunCmd_EnvFile(t *testing.T) {
	// godotenv does not override variables that are already set.
	t.Setenv("AGENTCHAN_AGENT", "")
	require.NoError(t, os.Unsetenv("AGENTCHAN_AGENT"))

	agent := writeScript(t, "read line\nprintf 'send from env\\n'\n")
	envFile := filepath.Join(t.TempDir(), "agent.env")
	require.NoError(t, os.WriteFile(envFile, []byte("AGENTCHAN_AGENT="+agent+"\n"), 0o600))

	var out bytes.Buffer

	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"run", "--no-stdin", "--env-file", envFile})

	require.NoError(t, cmd.Execute())
	require.Equal(t, "from env\n", out.String())
}

func TestVersionCmd(t *testing.T) {
	var out bytes.Buffer

	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	require.True(t, strings.HasPrefix(out.String(), "agenthost dev"))
}
