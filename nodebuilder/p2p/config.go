package p2p

import (
	"fmt"

	"github.com/libp2p/go-libp2p/core/peer"
	ma "github.com/multiformats/go-multiaddr"
)

// Config combines all configuration fields for P2P subsystem.
type Config struct {
	// ListenAddresses - Addresses to listen to on local NIC.
	ListenAddresses []string
	// Bootstrappers are the peers the DHT is joined through.
	Bootstrappers []string
	// DHTServer makes the node answer DHT queries of other peers and keep their records.
	DHTServer bool
	// Disabled disables the P2P networking. Cells are cached in memory only.
	Disabled bool
}

// DefaultConfig returns default configuration for P2P subsystem.
func DefaultConfig() Config {
	return Config{
		ListenAddresses: []string{
			"/ip4/0.0.0.0/udp/37000/quic-v1",
			"/ip6/::/udp/37000/quic-v1",
			"/ip4/0.0.0.0/tcp/37000",
			"/ip6/::/tcp/37000",
		},
		Bootstrappers: []string{},
	}
}

// Validate performs basic validation of the config.
func (cfg *Config) Validate() error {
	if cfg.Disabled {
		return nil
	}
	for _, addr := range cfg.ListenAddresses {
		if _, err := ma.NewMultiaddr(addr); err != nil {
			return fmt.Errorf("p2p: invalid listen address %q: %w", addr, err)
		}
	}
	_, err := cfg.bootstrappers()
	return err
}

func (cfg *Config) bootstrappers() (_ []peer.AddrInfo, err error) {
	maddrs := make([]ma.Multiaddr, len(cfg.Bootstrappers))
	for i, addr := range cfg.Bootstrappers {
		maddrs[i], err = ma.NewMultiaddr(addr)
		if err != nil {
			return nil, fmt.Errorf("failure to parse config.P2P.Bootstrappers: %w", err)
		}
	}

	return peer.AddrInfosFromP2pAddrs(maddrs...)
}
