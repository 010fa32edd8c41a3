package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/availproject/avail-light-go/nodebuilder/das"
	"github.com/availproject/avail-light-go/nodebuilder/gateway"
	"github.com/availproject/avail-light-go/nodebuilder/p2p"
	"github.com/availproject/avail-light-go/nodebuilder/rpc"
	"github.com/availproject/avail-light-go/nodebuilder/share"
)

// NOTE: We should always ensure that the added Flags below are parsed somewhere, like in the
// PersistentPreRun func on parent command.

func WithSubcommands() func(*cobra.Command, []*pflag.FlagSet) {
	return func(c *cobra.Command, flags []*pflag.FlagSet) {
		c.AddCommand(
			Init(flags...),
			Start(WithFlagSet(flags)),
			RemoveConfigCmd(flags...),
			UpdateConfigCmd(flags...),
		)
	}
}

func NewLight(options ...func(*cobra.Command, []*pflag.FlagSet)) *cobra.Command {
	flags := []*pflag.FlagSet{
		NodeFlags(),
		p2p.Flags(),
		rpc.Flags(),
		share.Flags(),
		das.Flags(),
		gateway.Flags(),
		MiscFlags(),
	}
	cmd := &cobra.Command{
		Use:               "light [subcommand]",
		Args:              cobra.NoArgs,
		Short:             "Manage your light client",
		PersistentPreRunE: PersistentPreRunEnv,
	}
	for _, option := range options {
		option(cmd, flags)
	}
	return cmd
}
