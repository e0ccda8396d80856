package agentchan

import (
	"errors"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestErrors_ChannelErrorFamily tests that every exported error type
// satisfies ChannelError.
func TestErrors_ChannelErrorFamily(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
	}{
		{name: "not found", err: &NotFoundError{SearchedPaths: []string{"$PATH"}}},
		{name: "spawn", err: &SpawnError{Path: "agent", Op: "start", Err: syscall.ENOENT}},
		{name: "io", err: &IOError{Op: "read", Err: syscall.EIO}},
		{name: "protocol", err: &ProtocolError{Length: 8, Limit: 8}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			chErr, ok := errors.AsType[ChannelError](tt.err)
			require.True(t, ok)
			require.True(t, chErr.IsChannelError())
		})
	}
}

// TestErrors_WrappedCauses tests that wrapping errors expose their causes.
func TestErrors_WrappedCauses(t *testing.T) {
	t.Parallel()

	spawn := &SpawnError{
		Path: "missing",
		Op:   "resolve",
		Err:  &NotFoundError{SearchedPaths: []string{"$PATH"}},
	}

	_, ok := errors.AsType[*NotFoundError](spawn)
	require.True(t, ok)

	full := &IOError{Op: "write", Err: ErrOutboxFull}
	require.ErrorIs(t, full, ErrOutboxFull)
	require.Contains(t, full.Error(), "outbound queue full")

	pipe := &IOError{Op: "write", Err: syscall.EPIPE}
	require.ErrorIs(t, pipe, syscall.EPIPE)
}

// TestErrors_SentinelsDistinct tests that sentinel errors do not match each other.
func TestErrors_SentinelsDistinct(t *testing.T) {
	t.Parallel()

	sentinels := []error{
		ErrChannelClosed,
		ErrChannelStarted,
		ErrEndOfStream,
		ErrOutboxFull,
		ErrExitRequested,
	}

	for i, a := range sentinels {
		for j, b := range sentinels {
			require.Equal(t, i == j, errors.Is(a, b), "%v vs %v", a, b)
		}
	}
}
