package agentchan

import (
	"time"

	"github.com/wagiedev/agent-channel-go/internal/readiness"
)

// Sets holds the read and write descriptor sets of one select(2) call.
type Sets = readiness.Sets

// NewSets returns empty descriptor sets.
func NewSets() *Sets {
	return readiness.NewSets()
}

// Wait runs select(2) over sets. A negative timeout waits indefinitely.
// On return sets contain only ready descriptors.
func Wait(sets *Sets, timeout time.Duration) (int, error) {
	return readiness.Wait(sets, timeout)
}
