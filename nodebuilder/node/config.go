package node

import (
	"fmt"
	"time"
)

// Config holds the lifecycle settings of the node.
type Config struct {
	// StartupTimeout bounds the start of all node components.
	StartupTimeout time.Duration
	// ShutdownTimeout bounds the graceful stop of all node components.
	ShutdownTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		StartupTimeout:  20 * time.Second,
		ShutdownTimeout: 2 * time.Minute,
	}
}

// Validate performs basic validation of the config.
func (cfg *Config) Validate() error {
	if cfg.StartupTimeout <= 0 {
		return fmt.Errorf("node: StartupTimeout must be positive, got %v", cfg.StartupTimeout)
	}
	if cfg.ShutdownTimeout <= 0 {
		return fmt.Errorf("node: ShutdownTimeout must be positive, got %v", cfg.ShutdownTimeout)
	}
	return nil
}
