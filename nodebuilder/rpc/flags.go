package rpc

import (
	"fmt"

	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"
)

var (
	endpointsFlag    = "rpc.endpoints"
	timeoutFlag      = "rpc.timeout"
	pollIntervalFlag = "rpc.poll-interval"
)

// Flags gives a set of hardcoded node/rpc package flags.
func Flags() *flag.FlagSet {
	flags := &flag.FlagSet{}

	flags.StringSlice(
		endpointsFlag,
		nil,
		fmt.Sprintf("Comma-separated list of full node RPC endpoints (default: %s)", defaultEndpoint),
	)
	flags.Duration(
		timeoutFlag,
		0,
		"Timeout of a single request to a full node",
	)
	flags.Duration(
		pollIntervalFlag,
		0,
		"Interval between queries of the finalized head",
	)

	return flags
}

// ParseFlags parses RPC flags from the given cmd and saves them to the passed config.
func ParseFlags(cmd *cobra.Command, cfg *Config) error {
	if cmd.Flags().Changed(endpointsFlag) {
		endpoints, err := cmd.Flags().GetStringSlice(endpointsFlag)
		if err != nil {
			return err
		}
		cfg.Endpoints = endpoints
	}
	if cmd.Flags().Changed(timeoutFlag) {
		timeout, err := cmd.Flags().GetDuration(timeoutFlag)
		if err != nil {
			return err
		}
		cfg.Timeout = timeout
	}
	if cmd.Flags().Changed(pollIntervalFlag) {
		interval, err := cmd.Flags().GetDuration(pollIntervalFlag)
		if err != nil {
			return err
		}
		cfg.PollInterval = interval
	}
	return nil
}
