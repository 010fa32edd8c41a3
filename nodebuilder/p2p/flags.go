package p2p

import (
	"fmt"

	"github.com/multiformats/go-multiaddr"
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"
)

var (
	bootstrappersFlag = "p2p.bootstrappers"
	listenFlag        = "p2p.listen"
	dhtServerFlag     = "p2p.dht-server"
	disabledFlag      = "p2p.disabled"
)

// Flags gives a set of p2p flags.
func Flags() *flag.FlagSet {
	flags := &flag.FlagSet{}

	flags.StringSlice(
		bootstrappersFlag,
		nil,
		"Comma-separated multiaddresses of the peers to join the DHT through. (Format: multiformats.io/multiaddr)",
	)
	flags.StringSlice(
		listenFlag,
		nil,
		"Comma-separated multiaddresses to listen on",
	)
	flags.Bool(
		dhtServerFlag,
		false,
		"Serves DHT queries and stores records of other peers",
	)
	flags.Bool(
		disabledFlag,
		false,
		"Disables peer-to-peer networking and caches cells in memory only",
	)

	return flags
}

// ParseFlags parses P2P flags from the given cmd and saves them to the passed config.
func ParseFlags(
	cmd *cobra.Command,
	cfg *Config,
) error {
	for _, name := range []string{bootstrappersFlag, listenFlag} {
		if !cmd.Flags().Changed(name) {
			continue
		}
		addrs, err := cmd.Flags().GetStringSlice(name)
		if err != nil {
			return err
		}
		for _, addr := range addrs {
			_, err = multiaddr.NewMultiaddr(addr)
			if err != nil {
				return fmt.Errorf("cmd: while parsing '%s': %w", name, err)
			}
		}
		if name == bootstrappersFlag {
			cfg.Bootstrappers = addrs
		} else {
			cfg.ListenAddresses = addrs
		}
	}

	if cmd.Flags().Changed(dhtServerFlag) {
		server, err := cmd.Flags().GetBool(dhtServerFlag)
		if err != nil {
			return err
		}
		cfg.DHTServer = server
	}
	if cmd.Flags().Changed(disabledFlag) {
		disabled, err := cmd.Flags().GetBool(disabledFlag)
		if err != nil {
			return err
		}
		cfg.Disabled = disabled
	}
	return nil
}
