package protocol

import (
	"bytes"
	stderrors "errors"

	"github.com/wagiedev/agent-channel-go/internal/errors"
)

// Sink is a non-blocking byte sink. Write reports errors.ErrWouldBlock when
// the destination cannot accept more bytes right now.
type Sink interface {
	Write(p []byte) (int, error)
}

// Outbox queues outbound bytes that the agent pipe has not accepted yet.
type Outbox struct {
	buf   bytes.Buffer
	limit int
}

// NewOutbox creates an Outbox that tolerates at most limit unwritten bytes.
func NewOutbox(limit int) *Outbox {
	return &Outbox{limit: limit}
}

// Send queues text and flushes the queue to dst. It fails with
// errors.ErrOutboxFull when more than the limit is still queued afterwards.
func (o *Outbox) Send(dst Sink, text string) error {
	o.buf.WriteString(text)

	if err := o.Flush(dst); err != nil {
		return err
	}

	if o.buf.Len() > o.limit {
		return errors.ErrOutboxFull
	}

	return nil
}

// Flush writes queued bytes to dst until the queue is empty or dst would
// block. Bytes accepted by a short write are removed from the queue.
func (o *Outbox) Flush(dst Sink) error {
	for o.buf.Len() > 0 {
		n, err := dst.Write(o.buf.Bytes())
		o.buf.Next(max(n, 0))

		switch {
		case err == nil && n == 0:
			return nil
		case err == nil:
			continue
		case stderrors.Is(err, errors.ErrWouldBlock):
			return nil
		default:
			return &errors.IOError{Op: "write", Err: err}
		}
	}

	return nil
}

// Pending returns the number of queued bytes.
func (o *Outbox) Pending() int {
	return o.buf.Len()
}

// Reset discards all queued bytes.
func (o *Outbox) Reset() {
	o.buf.Reset()
}
