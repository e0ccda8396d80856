// Package errors defines error types for the agent channel.
//
// This package provides structured error types for the failure classes of
// an agent channel: spawning the agent, pipe I/O, and protocol violations.
// All error types support unwrapping and can be checked using errors.Is,
// errors.As, and errors.AsType.
package errors
