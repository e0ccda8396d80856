package framing

import (
	stderrors "errors"
	"io"
	"math/rand/v2"
	"strings"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wagiedev/agent-channel-go/internal/errors"
)

// chunkSource delivers data in controlled chunks, one chunk per Read.
// A chunk larger than the caller's buffer is delivered over several reads.
// Once drained it reports end.
type chunkSource struct {
	chunks [][]byte
	end    error
}

func newChunkSource(chunks ...string) *chunkSource {
	byteChunks := make([][]byte, len(chunks))
	for i, chunk := range chunks {
		byteChunks[i] = []byte(chunk)
	}

	return &chunkSource{chunks: byteChunks, end: errors.ErrWouldBlock}
}

func (s *chunkSource) Read(p []byte) (int, error) {
	if len(s.chunks) == 0 {
		return 0, s.end
	}

	n := copy(p, s.chunks[0])
	if n == len(s.chunks[0]) {
		s.chunks = s.chunks[1:]
	} else {
		s.chunks[0] = s.chunks[0][n:]
	}

	return n, nil
}

func (s *chunkSource) drained() bool {
	return len(s.chunks) == 0
}

// pumpAll pumps until the source is drained and returns every record.
func pumpAll(t *testing.T, a *Assembler, src *chunkSource) []string {
	t.Helper()

	var all []string

	for !src.drained() {
		records, err := a.Pump(src)
		require.NoError(t, err)

		all = append(all, records...)
	}

	return all
}

func TestPump_SingleRecord(t *testing.T) {
	a := New(64)

	records, err := a.Pump(newChunkSource("send hello\n"))
	require.NoError(t, err)
	require.Equal(t, []string{"send hello"}, records)
	require.Zero(t, a.Buffered())
}

func TestPump_MultipleRecordsInOneRead(t *testing.T) {
	a := New(64)

	records, err := a.Pump(newChunkSource("send a\nexit\nsend b\n"))
	require.NoError(t, err)
	require.Equal(t, []string{"send a", "exit", "send b"}, records)
}

func TestPump_RecordSplitAcrossReads(t *testing.T) {
	a := New(64)
	src := newChunkSource("se", "nd hello\n")

	records, err := a.Pump(src)
	require.NoError(t, err)
	require.Empty(t, records)
	require.Equal(t, 2, a.Buffered())

	records, err = a.Pump(src)
	require.NoError(t, err)
	require.Equal(t, []string{"send hello"}, records)
	require.Zero(t, a.Buffered())
}

func TestPump_TrailingPartialKept(t *testing.T) {
	a := New(64)
	src := newChunkSource("exit\nsend pa", "rtial\n")

	records, err := a.Pump(src)
	require.NoError(t, err)
	require.Equal(t, []string{"exit"}, records)
	require.Equal(t, len("send pa"), a.Buffered())

	records, err = a.Pump(src)
	require.NoError(t, err)
	require.Equal(t, []string{"send partial"}, records)
}

func TestPump_EmptyLines(t *testing.T) {
	a := New(64)

	records, err := a.Pump(newChunkSource("\n\nexit\n"))
	require.NoError(t, err)
	require.Equal(t, []string{"", "", "exit"}, records)
}

func TestPump_WouldBlock(t *testing.T) {
	a := New(64)

	records, err := a.Pump(newChunkSource())
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestPump_EndOfStream(t *testing.T) {
	tests := []struct {
		name string
		end  error
	}{
		{name: "zero byte read", end: nil},
		{name: "io.EOF", end: io.EOF},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := New(64)
			src := newChunkSource("send unfinished")
			src.end = tc.end

			records, err := a.Pump(src)
			require.NoError(t, err)
			require.Empty(t, records)

			records, err = a.Pump(src)
			require.ErrorIs(t, err, errors.ErrEndOfStream)
			require.Empty(t, records)
		})
	}
}

func TestPump_ReadError(t *testing.T) {
	a := New(64)
	src := newChunkSource()
	src.end = syscall.EIO

	_, err := a.Pump(src)
	require.Error(t, err)

	ioErr, ok := stderrors.AsType[*errors.IOError](err)
	require.True(t, ok)
	require.Equal(t, "read", ioErr.Op)
	require.ErrorIs(t, err, syscall.EIO)
}

func TestPump_LineExceedsCapacity(t *testing.T) {
	a := New(8)

	records, err := a.Pump(newChunkSource(strings.Repeat("x", 8)))
	require.Empty(t, records)

	protoErr, ok := stderrors.AsType[*errors.ProtocolError](err)
	require.True(t, ok)
	require.Equal(t, 8, protoErr.Length)
	require.Equal(t, 8, protoErr.Limit)
	require.Zero(t, a.Buffered())
}

func TestPump_LineExceedsCapacityAcrossReads(t *testing.T) {
	a := New(8)
	src := newChunkSource("xxxx", "xxxx", "\n")

	_, err := a.Pump(src)
	require.NoError(t, err)

	_, err = a.Pump(src)

	_, ok := stderrors.AsType[*errors.ProtocolError](err)
	require.True(t, ok)
}

func TestPump_RecordsBeforeOverflowReturned(t *testing.T) {
	a := New(8)

	records, err := a.Pump(newChunkSource("ab\nxxxxx"))
	require.NoError(t, err)
	require.Equal(t, []string{"ab"}, records)

	records, err = a.Pump(newChunkSource("yyy"))
	require.Empty(t, records)

	_, ok := stderrors.AsType[*errors.ProtocolError](err)
	require.True(t, ok)
}

func TestPump_LongestAcceptedLine(t *testing.T) {
	a := New(8)
	line := strings.Repeat("x", 7)

	records := pumpAll(t, a, newChunkSource(line+"\n"))
	require.Equal(t, []string{line}, records)
}

func TestPump_ChunkLargerThanFreeSpace(t *testing.T) {
	a := New(8)
	src := newChunkSource("abc\ndefg\nhij\n")

	records := pumpAll(t, a, src)
	require.Equal(t, []string{"abc", "defg", "hij"}, records)
}

// TestPump_SplitInvariance feeds a message split at every pair of positions
// and checks the records match a single-read delivery.
func TestPump_SplitInvariance(t *testing.T) {
	message := "send hello world\nexit\n\nunknown foo\nsend  two  spaces \nsend\n"

	want, err := New(128).Pump(newChunkSource(message))
	require.NoError(t, err)
	require.Len(t, want, 6)

	for i := 1; i < len(message); i++ {
		for j := i; j < len(message); j++ {
			chunks := []string{message[:i], message[i:j], message[j:]}
			if j == i {
				chunks = []string{message[:i], message[i:]}
			}

			got := pumpAll(t, New(128), newChunkSource(chunks...))
			require.Equal(t, want, got, "split at %d,%d", i, j)
		}
	}
}

func TestPump_RandomSplits(t *testing.T) {
	var sb strings.Builder

	for i := range 200 {
		sb.WriteString("send line ")
		sb.WriteString(strings.Repeat("z", i%37))
		sb.WriteByte('\n')
	}

	message := sb.String()

	want, err := New(len(message) + 1).Pump(newChunkSource(message))
	require.NoError(t, err)
	require.Len(t, want, 200)

	rng := rand.New(rand.NewPCG(1, 2))

	for range 50 {
		var chunks []string

		rest := message
		for rest != "" {
			n := min(1+rng.IntN(40), len(rest))
			chunks = append(chunks, rest[:n])
			rest = rest[n:]
		}

		got := pumpAll(t, New(64), newChunkSource(chunks...))
		require.Equal(t, want, got)
	}
}
