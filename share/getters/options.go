package getters

import (
	"errors"
	"fmt"
	"time"
)

var errInvalidOptionValue = errors.New("getters: invalid option value")

// Parameters tune how the Fetcher reaches its sources.
type Parameters struct {
	// CacheParallelism bounds concurrent lookups against the cache.
	CacheParallelism int
	// CacheTimeout bounds a single cache lookup.
	CacheTimeout time.Duration
	// RPCBatchSize is the maximum amount of positions requested from the node in one call.
	RPCBatchSize int
	// RPCParallelism bounds concurrent calls to the node.
	RPCParallelism int
	// RPCTimeout bounds a single call to the node.
	RPCTimeout time.Duration
	// DisableRPC stops the fetcher from falling back to the node.
	DisableRPC bool
	// PutBatchSize is the maximum amount of cells stored back into the cache by one task.
	PutBatchSize int
	// PutWorkers bounds concurrent back-fill tasks.
	PutWorkers int
}

// DefaultParameters returns the default configuration values for the Fetcher.
func DefaultParameters() Parameters {
	return Parameters{
		CacheParallelism: 8,
		CacheTimeout:     5 * time.Second,
		RPCBatchSize:     30,
		RPCParallelism:   8,
		RPCTimeout:       20 * time.Second,
		PutBatchSize:     64,
		PutWorkers:       4,
	}
}

// Validate checks the parameters.
func (p *Parameters) Validate() error {
	switch {
	case p.CacheParallelism <= 0:
		return fmt.Errorf("%w: CacheParallelism: must be positive, got %d", errInvalidOptionValue, p.CacheParallelism)
	case p.CacheTimeout <= 0:
		return fmt.Errorf("%w: CacheTimeout: must be positive, got %v", errInvalidOptionValue, p.CacheTimeout)
	case p.RPCBatchSize <= 0:
		return fmt.Errorf("%w: RPCBatchSize: must be positive, got %d", errInvalidOptionValue, p.RPCBatchSize)
	case p.RPCParallelism <= 0:
		return fmt.Errorf("%w: RPCParallelism: must be positive, got %d", errInvalidOptionValue, p.RPCParallelism)
	case p.RPCTimeout <= 0:
		return fmt.Errorf("%w: RPCTimeout: must be positive, got %v", errInvalidOptionValue, p.RPCTimeout)
	case p.PutBatchSize <= 0:
		return fmt.Errorf("%w: PutBatchSize: must be positive, got %d", errInvalidOptionValue, p.PutBatchSize)
	case p.PutWorkers <= 0:
		return fmt.Errorf("%w: PutWorkers: must be positive, got %d", errInvalidOptionValue, p.PutWorkers)
	}
	return nil
}
