// Package discovery locates the agent executable.
//
// A path containing a slash is used as given; a bare name is searched for in
// PATH, the same way execlp(3) resolves its first argument.
package discovery

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/wagiedev/agent-channel-go/internal/errors"
)

// Config holds configuration for agent discovery.
type Config struct {
	// Path is the configured agent executable.
	Path string

	// Logger is an optional logger for discovery operations.
	// If nil, a default no-op logger is used.
	Logger *slog.Logger
}

// Discoverer locates the agent executable.
type Discoverer interface {
	// Discover returns the path to execute or a *errors.NotFoundError.
	Discover() (string, error)
}

type discoverer struct {
	cfg *Config
	log *slog.Logger
}

// Compile-time verification that discoverer implements Discoverer.
var _ Discoverer = (*discoverer)(nil)

// NewDiscoverer creates a new agent discoverer with the given configuration.
func NewDiscoverer(cfg *Config) Discoverer {
	if cfg == nil {
		cfg = &Config{}
	}

	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 1}))
	}

	return &discoverer{
		cfg: cfg,
		log: log,
	}
}

// Resolve is a shorthand for NewDiscoverer(&Config{Path: path}).Discover().
func Resolve(path string) (string, error) {
	return NewDiscoverer(&Config{Path: path}).Discover()
}

// Discover locates the agent executable.
func (d *discoverer) Discover() (string, error) {
	path := d.cfg.Path
	if path == "" {
		return "", &errors.NotFoundError{SearchedPaths: []string{}}
	}

	if strings.ContainsRune(path, os.PathSeparator) {
		d.log.Debug("Using explicit agent path", "agent_path", path)

		if err := checkExecutable(path); err != nil {
			d.log.Debug("Explicit agent path not usable", "agent_path", path, "error", err)

			return "", &errors.NotFoundError{SearchedPaths: []string{path}}
		}

		return path, nil
	}

	d.log.Debug("Searching for agent in PATH", "name", path)

	found, err := exec.LookPath(path)
	if err != nil {
		d.log.Warn("Agent not found in PATH", "name", path, "error", err)

		return "", &errors.NotFoundError{SearchedPaths: []string{"$PATH"}}
	}

	d.log.Debug("Found agent in PATH", "path", found)

	return found, nil
}

// checkExecutable reports whether path is a regular file with an execute bit.
func checkExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", path)
	}

	if info.Mode().Perm()&0o111 == 0 {
		return fmt.Errorf("%s is not executable", path)
	}

	return nil
}
