package das

import (
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"
)

var (
	appIDFlag      = "das.app-id"
	confidenceFlag = "das.confidence"
	partitionFlag  = "das.partition"
	sampleFromFlag = "das.sample-from"
)

// Flags gives a set of hardcoded DASer flags.
func Flags() *flag.FlagSet {
	flags := &flag.FlagSet{}

	flags.Uint32(
		appIDFlag,
		0,
		"Application to recover data of. Zero runs the client in light mode",
	)
	flags.Float64(
		confidenceFlag,
		0,
		"Target confidence, in percent, that the data of a block is available",
	)
	flags.String(
		partitionFlag,
		"",
		"Fraction of every block fetched in full, e.g. 1/10",
	)
	flags.Uint64(
		sampleFromFlag,
		0,
		"Block to start catching up from when no checkpoint is stored. Zero disables catching up",
	)

	return flags
}

// ParseFlags parses DASer flags from the given cmd and saves them to the passed config.
func ParseFlags(cmd *cobra.Command, cfg *Config) error {
	if cmd.Flags().Changed(appIDFlag) {
		appID, err := cmd.Flags().GetUint32(appIDFlag)
		if err != nil {
			return err
		}
		cfg.AppID = appID
	}
	if cmd.Flags().Changed(confidenceFlag) {
		confidence, err := cmd.Flags().GetFloat64(confidenceFlag)
		if err != nil {
			return err
		}
		cfg.Confidence = confidence
	}
	if cmd.Flags().Changed(partitionFlag) {
		cfg.Partition = cmd.Flag(partitionFlag).Value.String()
	}
	if cmd.Flags().Changed(sampleFromFlag) {
		from, err := cmd.Flags().GetUint64(sampleFromFlag)
		if err != nil {
			return err
		}
		cfg.SampleFrom = from
	}
	return cfg.Validate()
}
