// Package readiness wraps select(2) descriptor sets.
//
// A Sets value is filled with the descriptors a host wants to watch, handed
// to Wait, and then holds only the descriptors that became ready, exactly
// like the fd_set arguments of select(2).
package readiness

import (
	"errors"
	"fmt"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// SetSize is the number of descriptors an fd set can hold (FD_SETSIZE).
const SetSize = int(unsafe.Sizeof(unix.FdSet{})) * 8

// Set is a select(2) descriptor set that remembers its highest member.
type Set struct {
	fds unix.FdSet
	max int
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{max: -1}
}

// Add puts fd into the set. Descriptors outside [0, SetSize) are rejected.
func (s *Set) Add(fd int) error {
	if fd < 0 || fd >= SetSize {
		return fmt.Errorf("descriptor %d outside select range [0, %d)", fd, SetSize)
	}

	s.fds.Set(fd)
	s.max = max(s.max, fd)

	return nil
}

// Has reports whether fd is in the set.
func (s *Set) Has(fd int) bool {
	if s == nil || fd < 0 || fd >= SetSize {
		return false
	}

	return s.fds.IsSet(fd)
}

// Reset empties the set.
func (s *Set) Reset() {
	s.fds.Zero()
	s.max = -1
}

// Max returns the highest descriptor added since the last Reset, or -1.
func (s *Set) Max() int {
	return s.max
}

// Sets groups the read and write interest of one select call.
type Sets struct {
	Read  *Set
	Write *Set
}

// NewSets returns empty read and write sets.
func NewSets() *Sets {
	return &Sets{Read: NewSet(), Write: NewSet()}
}

// Reset empties both sets.
func (s *Sets) Reset() {
	s.Read.Reset()
	s.Write.Reset()
}

// Wait blocks in select(2) until a descriptor in sets is ready or the timeout
// expires. A negative timeout waits indefinitely. On return the sets hold only
// ready descriptors. An interrupted wait reports zero ready descriptors.
func Wait(sets *Sets, timeout time.Duration) (int, error) {
	nfd := max(sets.Read.max, sets.Write.max) + 1

	var tv *unix.Timeval

	if timeout >= 0 {
		t := unix.NsecToTimeval(timeout.Nanoseconds())
		tv = &t
	}

	n, err := unix.Select(nfd, &sets.Read.fds, &sets.Write.fds, nil, tv)
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			sets.Reset()

			return 0, nil
		}

		return 0, fmt.Errorf("select: %w", err)
	}

	return n, nil
}
