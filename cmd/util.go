package cmd

import (
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"

	"github.com/availproject/avail-light-go/nodebuilder/das"
	"github.com/availproject/avail-light-go/nodebuilder/gateway"
	"github.com/availproject/avail-light-go/nodebuilder/p2p"
	"github.com/availproject/avail-light-go/nodebuilder/rpc"
	"github.com/availproject/avail-light-go/nodebuilder/share"
)

// PersistentPreRunEnv loads the stored config, overrides it with the passed flags and puts the
// result into the command context.
func PersistentPreRunEnv(cmd *cobra.Command, _ []string) error {
	var (
		ctx = cmd.Context()
		err error
	)

	// loads existing config into the environment
	ctx, err = ParseNodeFlags(ctx, cmd)
	if err != nil {
		return err
	}

	cfg := NodeConfig(ctx)

	err = p2p.ParseFlags(cmd, &cfg.P2P)
	if err != nil {
		return err
	}

	err = rpc.ParseFlags(cmd, &cfg.RPC)
	if err != nil {
		return err
	}

	err = das.ParseFlags(cmd, &cfg.DASer)
	if err != nil {
		return err
	}

	share.ParseFlags(cmd, &cfg.Share)
	gateway.ParseFlags(cmd, &cfg.Gateway)

	// set config before the misc flags, metrics depend on it
	ctx = WithNodeConfig(ctx, &cfg)
	ctx, err = ParseMiscFlags(ctx, cmd)
	if err != nil {
		return err
	}

	cmd.SetContext(ctx)
	return nil
}

// WithFlagSet adds the given flagset to the command.
func WithFlagSet(fset []*flag.FlagSet) func(*cobra.Command) {
	return func(c *cobra.Command) {
		for _, set := range fset {
			c.Flags().AddFlagSet(set)
		}
	}
}
