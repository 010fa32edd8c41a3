package das

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidOption is an error that is returned by Parameters.Validate
// when supplied with invalid values.
// This error will also be returned by NewDASer if supplied with an invalid option
var ErrInvalidOption = errors.New("das: invalid option")

// errInvalidOptionValue is a utility function to dedup code for error-returning
// when dealing with invalid parameter values
func errInvalidOptionValue(optionName, value string) error {
	return fmt.Errorf("%w: value %s cannot be %s", ErrInvalidOption, optionName, value)
}

// Option is the functional option that is applied to the daser instance
// to configure DASing parameters (the Parameters struct)
type Option func(*DASer)

// Parameters is the set of parameters that must be configured for the daser
type Parameters struct {
	//  SamplingRange is the maximum amount of headers processed in one job.
	SamplingRange uint64

	// ConcurrencyLimit defines the maximum amount of sampling workers running in parallel.
	ConcurrencyLimit int

	// BackgroundStoreInterval is the period of time for background checkpointStore to perform a
	// checkpoint backup.
	BackgroundStoreInterval time.Duration

	// SampleFrom is the height sampling will start from if no previous checkpoint was saved.
	// Zero disables catching up with blocks finalized before the first received head.
	SampleFrom uint64

	// SampleTimeout is a maximum amount time sampling of a single block may take during a job.
	SampleTimeout time.Duration

	// Confidence is the target probability, in percent, that the data of a block is available.
	Confidence float64

	// AppID of the application to recover data of. Zero runs the client in light mode.
	AppID uint32

	// Partition makes the client fetch a whole fraction of every block, e.g. "1/10".
	// Empty disables fat-client mode.
	Partition string

	// BackoffInitialInterval is the delay before the first retry of a block.
	BackoffInitialInterval time.Duration
	// BackoffMultiplier multiplies the delay after every retry.
	BackoffMultiplier int
	// BackoffMaxRetryCount is the amount of retries with growing delay. Further retries keep the
	// last delay.
	BackoffMaxRetryCount int
}

// DefaultParameters returns the default configuration values for the daser parameters
func DefaultParameters() Parameters {
	return Parameters{
		SamplingRange:           100,
		ConcurrencyLimit:        16,
		BackgroundStoreInterval: 10 * time.Minute,
		SampleFrom:              1,
		SampleTimeout:           time.Minute,
		Confidence:              92.0,
		BackoffInitialInterval:  time.Minute,
		BackoffMultiplier:       4,
		BackoffMaxRetryCount:    4,
	}
}

// Validate validates the values in Parameters
//
//	All parameters must be positive and non-zero, except:
//		BackgroundStoreInterval = 0 disables background storer,
//		SampleFrom = 0 disables catching up,
//		Partition = "" disables fat-client mode
func (p *Parameters) Validate() error {
	// SamplingRange = 0 will cause the jobs' queue to be empty
	// Therefore no sampling jobs will be reserved and more importantly the DASer will break
	if p.SamplingRange <= 0 {
		return errInvalidOptionValue(
			"SamplingRange",
			"negative or 0",
		)
	}

	// ConcurrencyLimit = 0 will cause the number of workers to be 0 and
	// Thus no threads will be assigned to the waiting jobs therefore breaking the DASer
	if p.ConcurrencyLimit <= 0 {
		return errInvalidOptionValue(
			"ConcurrencyLimit",
			"negative or 0",
		)
	}

	// BackgroundStoreInterval = 0 disables background storer,
	// which means checkpoints will only be stored upon DASer stop
	if p.BackgroundStoreInterval < 0 {
		return errInvalidOptionValue(
			"BackgroundStoreInterval",
			"negative",
		)
	}

	if p.SampleTimeout <= 0 {
		return errInvalidOptionValue(
			"SampleTimeout",
			"negative or 0",
		)
	}

	// confidence of 100 would require the whole matrix
	if p.Confidence <= 0 || p.Confidence >= 100 {
		return errInvalidOptionValue(
			"Confidence",
			fmt.Sprintf("%v, must be within (0, 100)", p.Confidence),
		)
	}

	if p.Partition != "" {
		if _, err := ParsePartition(p.Partition); err != nil {
			return fmt.Errorf("%w: Partition: %w", ErrInvalidOption, err)
		}
		if p.AppID != 0 {
			return errInvalidOptionValue("Partition", "combined with AppID")
		}
	}

	if p.BackoffInitialInterval <= 0 || p.BackoffMultiplier <= 0 || p.BackoffMaxRetryCount < 0 {
		return errInvalidOptionValue(
			"Backoff",
			"negative or 0",
		)
	}

	return nil
}

// WithSamplingRange is a functional option to configure the daser's `SamplingRange` parameter
//
//	Usage:
//	```
//		WithSamplingRange(10)(daser)
//	```
//
// or
//
//	```
//		option := WithSamplingRange(10)
//		// shenanigans to create daser
//		option(daser)
//
// ```
func WithSamplingRange(samplingRange uint64) Option {
	return func(d *DASer) {
		d.params.SamplingRange = samplingRange
	}
}

// WithConcurrencyLimit is a functional option to configure the daser's `ConcurrencyLimit` parameter
// Refer to WithSamplingRange documentation to see an example of how to use this
func WithConcurrencyLimit(concurrencyLimit int) Option {
	return func(d *DASer) {
		d.params.ConcurrencyLimit = concurrencyLimit
	}
}

// WithBackgroundStoreInterval is a functional option to configure the daser's
// `backgroundStoreInterval` parameter Refer to WithSamplingRange documentation to see an example
// of how to use this
func WithBackgroundStoreInterval(backgroundStoreInterval time.Duration) Option {
	return func(d *DASer) {
		d.params.BackgroundStoreInterval = backgroundStoreInterval
	}
}

// WithSampleFrom is a functional option to configure the daser's `SampleFrom` parameter
// Refer to WithSamplingRange documentation to see an example of how to use this
func WithSampleFrom(sampleFrom uint64) Option {
	return func(d *DASer) {
		d.params.SampleFrom = sampleFrom
	}
}

// WithSampleTimeout is a functional option to configure the daser's `SampleTimeout` parameter
// Refer to WithSamplingRange documentation to see an example of how to use this
func WithSampleTimeout(sampleTimeout time.Duration) Option {
	return func(d *DASer) {
		d.params.SampleTimeout = sampleTimeout
	}
}

// WithBackoff configures the retry policy of failed and incomplete blocks.
func WithBackoff(initial time.Duration, multiplier, maxRetries int) Option {
	return func(d *DASer) {
		d.params.BackoffInitialInterval = initial
		d.params.BackoffMultiplier = multiplier
		d.params.BackoffMaxRetryCount = maxRetries
	}
}

// WithOnProcessed registers a hook invoked after every processed block.
func WithOnProcessed(hook func(context.Context, Outcome)) Option {
	return func(d *DASer) {
		d.hooks = append(d.hooks, hook)
	}
}
