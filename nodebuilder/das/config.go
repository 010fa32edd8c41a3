package das

import (
	"fmt"

	"github.com/availproject/avail-light-go/das"
)

// Config sets the confidence target of block processing, how far back the node catches up and
// which application's data it recovers.
type Config das.Parameters

func DefaultConfig() Config {
	return Config(das.DefaultParameters())
}

func (cfg *Config) parameters() das.Parameters {
	return das.Parameters(*cfg)
}

// Validate reports settings the processing pipeline cannot run with.
func (cfg *Config) Validate() error {
	params := cfg.parameters()
	if err := params.Validate(); err != nil {
		return fmt.Errorf("das config: %w", err)
	}
	return nil
}
