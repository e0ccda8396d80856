// Package framing reassembles newline-terminated records from a byte stream
// that arrives in arbitrary chunks.
//
// An Assembler owns a fixed-capacity buffer. Each Pump performs exactly one
// read into the free tail of that buffer, extracts every record the read
// completed, and keeps the unterminated remainder for the next call. A line
// that fills the whole buffer without a terminator is rejected.
package framing

import (
	"bytes"
	stderrors "errors"
	"io"

	"github.com/wagiedev/agent-channel-go/internal/errors"
)

// Terminator ends every record on the wire.
const Terminator = '\n'

// Source is a non-blocking byte source.
//
// Read reports errors.ErrWouldBlock when no data is available, and either
// (0, nil) or io.EOF when the stream has ended.
type Source interface {
	Read(p []byte) (int, error)
}

// Assembler accumulates bytes and yields complete records.
type Assembler struct {
	buf []byte
	n   int // buffered, unterminated bytes at the front of buf
}

// New creates an Assembler whose buffer holds capacity bytes. The longest
// accepted record is capacity-1 bytes plus its terminator.
func New(capacity int) *Assembler {
	return &Assembler{buf: make([]byte, max(capacity, 1))}
}

// Cap returns the buffer capacity.
func (a *Assembler) Cap() int {
	return len(a.buf)
}

// Buffered returns the number of bytes waiting for a terminator.
func (a *Assembler) Buffered() int {
	return a.n
}

// Reset discards any partial record.
func (a *Assembler) Reset() {
	a.n = 0
}

// Pump performs one read from src and returns the records it completed, in
// the order their terminators arrived.
//
// The returned error is errors.ErrEndOfStream when the source has ended, an
// *errors.IOError for a failed read, or an *errors.ProtocolError when the
// buffer filled up without a terminator. A would-block read yields no records
// and no error.
func (a *Assembler) Pump(src Source) ([]string, error) {
	if a.n == len(a.buf) {
		return nil, a.overflow()
	}

	n, err := src.Read(a.buf[a.n:])

	var records []string

	if n > 0 {
		records = a.scan(n)
		if a.n == len(a.buf) {
			return records, a.overflow()
		}
	}

	switch {
	case err == nil && n == 0:
		return records, errors.ErrEndOfStream
	case err == nil, stderrors.Is(err, errors.ErrWouldBlock):
		return records, nil
	case stderrors.Is(err, io.EOF):
		return records, errors.ErrEndOfStream
	default:
		return records, &errors.IOError{Op: "read", Err: err}
	}
}

// scan extracts records terminated within the n bytes just appended and
// moves the unterminated tail to the front of the buffer.
func (a *Assembler) scan(n int) []string {
	end := a.n + n
	start := 0
	pos := a.n

	var records []string

	for {
		i := bytes.IndexByte(a.buf[pos:end], Terminator)
		if i < 0 {
			break
		}

		records = append(records, string(a.buf[start:pos+i]))
		start = pos + i + 1
		pos = start
	}

	a.n = copy(a.buf, a.buf[start:end])

	return records
}

func (a *Assembler) overflow() error {
	err := &errors.ProtocolError{Length: a.n, Limit: len(a.buf)}
	a.n = 0

	return err
}
