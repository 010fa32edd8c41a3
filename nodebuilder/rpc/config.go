package rpc

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

const defaultEndpoint = "ws://127.0.0.1:9944"

// Config combines the settings of the connection to the full nodes.
type Config struct {
	// Endpoints of the full nodes serving headers and cells. The last endpoint that answered is
	// used first, the rest are tried in random order.
	Endpoints []string
	// Timeout bounds a single request to a full node.
	Timeout time.Duration
	// PollInterval is the period between queries of the finalized head.
	PollInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		Endpoints:    []string{defaultEndpoint},
		Timeout:      30 * time.Second,
		PollInterval: 5 * time.Second,
	}
}

// Validate performs basic validation of the config.
func (cfg *Config) Validate() error {
	if len(cfg.Endpoints) == 0 {
		return errors.New("nodebuilder/rpc: at least one endpoint is required")
	}
	for _, endpoint := range cfg.Endpoints {
		u, err := url.Parse(endpoint)
		if err != nil {
			return fmt.Errorf("nodebuilder/rpc: invalid endpoint %q: %w", endpoint, err)
		}
		switch u.Scheme {
		case "ws", "wss", "http", "https":
		default:
			return fmt.Errorf("nodebuilder/rpc: unsupported scheme of endpoint %q", endpoint)
		}
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("nodebuilder/rpc: Timeout must be positive, got %v", cfg.Timeout)
	}
	if cfg.PollInterval <= 0 {
		return fmt.Errorf("nodebuilder/rpc: PollInterval must be positive, got %v", cfg.PollInterval)
	}
	return nil
}
