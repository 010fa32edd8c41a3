package gateway

import (
	"fmt"
	"net"
	"strconv"
)

const (
	defaultBindAddress = "localhost"
	defaultPort        = "7007"
)

type Config struct {
	Address string
	Port    string
	Enabled bool
	// CORSAllowedOrigins lists the origins allowed to query the gateway from a browser.
	// An empty list allows every origin.
	CORSAllowedOrigins []string
}

func DefaultConfig() Config {
	return Config{
		Address:            defaultBindAddress,
		Port:               defaultPort,
		Enabled:            true,
		CORSAllowedOrigins: []string{},
	}
}

func (cfg *Config) Validate() error {
	if cfg.Address != defaultBindAddress {
		if ip := net.ParseIP(cfg.Address); ip == nil {
			return fmt.Errorf("nodebuilder/gateway: invalid listen address format: %s", cfg.Address)
		}
	}
	_, err := strconv.Atoi(cfg.Port)
	if err != nil {
		return fmt.Errorf("nodebuilder/gateway: invalid port: %s", err.Error())
	}
	return nil
}
