package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env holds agent channel settings read from the process environment.
type Env struct {
	AgentPath       string `env:"AGENTCHAN_AGENT"`
	BufferSize      int    `env:"AGENTCHAN_BUFFER_SIZE" envDefault:"2048"`
	Handshake       bool   `env:"AGENTCHAN_HANDSHAKE" envDefault:"true"`
	MaxPendingBytes int    `env:"AGENTCHAN_MAX_PENDING" envDefault:"65536"`
}

// LoadEnv parses the AGENTCHAN_* environment variables.
func LoadEnv() (*Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	return &e, nil
}

// Apply copies the environment settings onto o.
func (e *Env) Apply(o *Options) {
	o.AgentPath = e.AgentPath
	o.BufferSize = e.BufferSize
	o.Handshake = e.Handshake
	o.MaxPendingBytes = e.MaxPendingBytes
}
