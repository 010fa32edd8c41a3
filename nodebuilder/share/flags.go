package share

import (
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"
)

var (
	disableVerificationFlag = "share.disable-verification"
	disableRPCFlag          = "share.disable-rpc"
)

// Flags gives a set of hardcoded share module flags.
func Flags() *flag.FlagSet {
	flags := &flag.FlagSet{}

	flags.Bool(
		disableVerificationFlag,
		false,
		"Accepts fetched cells without checking their proofs",
	)
	flags.Bool(
		disableRPCFlag,
		false,
		"Fetches cells from the peer-to-peer cache only, never from the full nodes",
	)

	return flags
}

// ParseFlags parses share module flags from the given cmd and saves them to the passed config.
func ParseFlags(cmd *cobra.Command, cfg *Config) {
	disabled, err := cmd.Flags().GetBool(disableVerificationFlag)
	if cmd.Flags().Changed(disableVerificationFlag) && err == nil {
		cfg.DisableVerification = disabled
	}
	disabled, err = cmd.Flags().GetBool(disableRPCFlag)
	if cmd.Flags().Changed(disableRPCFlag) && err == nil {
		cfg.DisableRPC = disabled
	}
}
