package cmd

import (
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"

	"github.com/availproject/avail-light-go/nodebuilder"
)

// RemoveConfigCmd constructs a CLI command to remove the stored config.
func RemoveConfigCmd(fsets ...*flag.FlagSet) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config-remove",
		Short: "Deletes the node's config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return nodebuilder.RemoveConfig(StorePath(ctx))
		},
	}

	for _, set := range fsets {
		cmd.Flags().AddFlagSet(set)
	}
	return cmd
}

// UpdateConfigCmd constructs a CLI command to fill the stored config with missing default values.
func UpdateConfigCmd(fsets ...*flag.FlagSet) *cobra.Command {
	cmd := &cobra.Command{
		Use: "config-update",
		Short: "Updates the node's outdated config with default values from newly-added fields. Check the config " +
			" afterwards to ensure all old custom values were preserved.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return nodebuilder.UpdateConfig(StorePath(ctx))
		},
	}

	for _, set := range fsets {
		cmd.Flags().AddFlagSet(set)
	}
	return cmd
}
