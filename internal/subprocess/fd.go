package subprocess

import (
	stderrors "errors"
	"io"

	"golang.org/x/sys/unix"

	"github.com/wagiedev/agent-channel-go/internal/errors"
)

// FD is a non-blocking pipe descriptor.
//
// Read and Write never block: when the pipe is empty or full they return
// errors.ErrWouldBlock. Read returns io.EOF once the peer closed its end.
type FD struct {
	fd     int
	closed bool
}

// NewFD takes ownership of fd and switches it to non-blocking mode.
func NewFD(fd int) (*FD, error) {
	if err := unix.SetNonblock(fd, true); err != nil {
		return nil, err
	}

	return &FD{fd: fd}, nil
}

// Fd returns the descriptor number for readiness registration.
func (f *FD) Fd() int {
	return f.fd
}

// Read implements framing.Source.
func (f *FD) Read(p []byte) (int, error) {
	if f.closed {
		return 0, unix.EBADF
	}

	for {
		n, err := unix.Read(f.fd, p)

		switch {
		case stderrors.Is(err, unix.EINTR):
			continue
		case stderrors.Is(err, unix.EAGAIN):
			return 0, errors.ErrWouldBlock
		case err != nil:
			return 0, err
		case n == 0 && len(p) > 0:
			return 0, io.EOF
		default:
			return n, nil
		}
	}
}

// Write implements protocol.Sink. A short count with errors.ErrWouldBlock
// means the pipe filled up part way.
func (f *FD) Write(p []byte) (int, error) {
	if f.closed {
		return 0, unix.EBADF
	}

	written := 0

	for written < len(p) {
		n, err := unix.Write(f.fd, p[written:])
		if n > 0 {
			written += n
		}

		switch {
		case stderrors.Is(err, unix.EINTR):
			continue
		case stderrors.Is(err, unix.EAGAIN):
			return written, errors.ErrWouldBlock
		case err != nil:
			return written, err
		}
	}

	return written, nil
}

// Close closes the descriptor. Closing twice is a no-op.
func (f *FD) Close() error {
	if f.closed {
		return nil
	}

	f.closed = true

	return unix.Close(f.fd)
}
