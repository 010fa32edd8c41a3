package share

import (
	"fmt"

	"github.com/availproject/avail-light-go/share/getters"
)

// Config combines the settings of cell retrieval, verification and reconstruction.
type Config struct {
	getters.Parameters
	// DisableVerification accepts fetched cells without checking their proofs.
	DisableVerification bool
	// CacheSize is the amount of cells kept in memory by the cache.
	CacheSize int
	// ReconstructParallelism bounds the rows decoded at once. Zero uses every CPU.
	ReconstructParallelism int
}

// DefaultConfig returns the default share module configuration
func DefaultConfig() Config {
	return Config{
		Parameters: getters.DefaultParameters(),
		CacheSize:  100_000,
	}
}

// Validate performs basic validation of the config.
func (cfg *Config) Validate() error {
	err := cfg.Parameters.Validate()
	if err != nil {
		return fmt.Errorf("modshare misconfiguration: %w", err)
	}
	if cfg.CacheSize <= 0 {
		return fmt.Errorf("modshare misconfiguration: CacheSize must be positive, got %d", cfg.CacheSize)
	}
	if cfg.ReconstructParallelism < 0 {
		return fmt.Errorf("modshare misconfiguration: ReconstructParallelism must not be negative, got %d",
			cfg.ReconstructParallelism)
	}
	return nil
}
