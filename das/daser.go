package das

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/benbjohnson/clock"
	"github.com/ipfs/go-datastore"
	logging "github.com/ipfs/go-log/v2"

	"github.com/availproject/avail-light-go/header"
	"github.com/availproject/avail-light-go/store"
)

var log = logging.Logger("das")

// errShortfall marks blocks which were processed, but are worth another pass.
var errShortfall = errors.New("das: block processed with shortfall")

// DASer continuously validates availability of data committed to block headers.
type DASer struct {
	params Parameters

	pipeline *Pipeline
	results  *store.Store
	hsub     header.Subscriber
	// getter fetches headers of blocks the subscription did not deliver
	getter header.Getter

	store      checkpointStore
	sampler    *samplingCoordinator
	subscriber subscriber
	clock      clock.Clock
	metrics    *metrics

	hooks []func(context.Context, Outcome)

	cancel  context.CancelFunc
	running int32
}

type (
	listenFn func(context.Context, *header.BlockHeader)
	sampleFn func(context.Context, *header.BlockHeader) error
	skipFn   func(context.Context, uint64) bool
)

// NewDASer creates a new DASer.
func NewDASer(
	pipeline *Pipeline,
	results *store.Store,
	hsub header.Subscriber,
	getter header.Getter,
	dstore datastore.Datastore,
	options ...Option,
) (*DASer, error) {
	d := &DASer{
		params:     DefaultParameters(),
		pipeline:   pipeline,
		results:    results,
		hsub:       hsub,
		getter:     getter,
		subscriber: newSubscriber(),
		clock:      clock.New(),
	}

	for _, applyOpt := range options {
		applyOpt(d)
	}

	err := d.params.Validate()
	if err != nil {
		return nil, err
	}

	d.store = newCheckpointStore(dstore, d.clock)
	d.sampler = newSamplingCoordinator(d.params, getter, d.sample, d.processed, d.clock)
	return d, nil
}

// Start initiates subscription for new blocks and spawns the sampling routines.
func (d *DASer) Start(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&d.running, 0, 1) {
		return errors.New("das: DASer already started")
	}

	sub, err := d.hsub.Subscribe()
	if err != nil {
		atomic.StoreInt32(&d.running, 0)
		return err
	}

	cp, err := d.store.load(ctx)
	if err != nil {
		if !errors.Is(err, datastore.ErrNotFound) {
			log.Warnw("loading checkpoint", "err", err)
		}
		cp = d.initialCheckpoint(ctx)
	}
	log.Infow("starting DASer from checkpoint", "checkpoint", cp.String(), "mode", d.pipeline.Mode().String())

	runCtx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel

	go d.sampler.run(runCtx, cp)
	go d.subscriber.run(runCtx, sub, d.sampler.listen)
	go d.store.runBackgroundStore(runCtx, d.params.BackgroundStoreInterval, d.sampler.getCheckpoint)

	return nil
}

// initialCheckpoint builds the checkpoint of a node without stored progress.
func (d *DASer) initialCheckpoint(ctx context.Context) checkpoint {
	cp := checkpoint{
		SampleFrom:  d.params.SampleFrom,
		NetworkHead: d.params.SampleFrom,
	}

	// the head may as well arrive through the subscription later
	h, err := d.getter.Head(ctx)
	if err != nil {
		log.Warnw("getting network head", "err", err)
		return cp
	}

	cp.NetworkHead = h.Height()
	if cp.SampleFrom == 0 {
		// catch-up is disabled, so only the current head is processed
		cp.SampleFrom = h.Height()
	}
	if cp.SampleFrom > cp.NetworkHead {
		cp.NetworkHead = cp.SampleFrom
	}
	return cp
}

// Stop stops sampling.
func (d *DASer) Stop(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&d.running, 1, 0) {
		return nil
	}

	// store checkpoint without waiting for coordinator and workers to stop
	cp, err := d.sampler.getCheckpoint(ctx)
	if err != nil {
		log.Error("DASer coordinator checkpoint is unavailable")
	} else if err = d.store.store(ctx, cp); err != nil {
		log.Errorw("storing checkpoint", "err", err)
	}

	d.cancel()
	if err = d.sampler.wait(ctx); err != nil {
		return fmt.Errorf("DASer force quit: %w", err)
	}

	// store the final checkpoint after all workers are shut down
	if err = d.store.store(ctx, newCheckpoint(d.sampler.state.unsafeStats())); err != nil {
		log.Errorw("storing checkpoint", "err", err)
	}
	if err = d.store.wait(ctx); err != nil {
		return fmt.Errorf("DASer force quit with err: %w", err)
	}
	return d.subscriber.wait(ctx)
}

func (d *DASer) sample(ctx context.Context, h *header.BlockHeader) error {
	out, err := d.pipeline.Process(ctx, h)
	if err != nil {
		return err
	}

	d.metrics.observeOutcome(ctx, out)
	for _, hook := range d.hooks {
		hook(ctx, out)
	}

	if out.Shortfall {
		return fmt.Errorf("%w: state %s, confidence %.4f",
			errShortfall, out.State, out.Confidence.Confidence)
	}
	return nil
}

// processed reports whether a block already reached a final state.
func (d *DASer) processed(ctx context.Context, height uint64) bool {
	state, err := d.results.State(ctx, uint32(height))
	if err != nil {
		return false
	}
	return state.IsTerminal()
}

// SamplingStats returns the current statistics of the sampling process.
func (d *DASer) SamplingStats(ctx context.Context) (SamplingStats, error) {
	return d.sampler.stats(ctx)
}

// WaitCatchUp waits for the DASer to indicate catchup is done.
func (d *DASer) WaitCatchUp(ctx context.Context) error {
	return d.sampler.state.waitCatchUp(ctx)
}

// Mode returns the operating mode.
func (d *DASer) Mode() Mode {
	return d.pipeline.Mode()
}

// Confidence returns the confidence record of a block.
func (d *DASer) Confidence(ctx context.Context, block uint32) (*ConfidenceRecord, error) {
	return d.results.Confidence(ctx, block)
}

// AppData returns the application data of a block recovered in app mode.
func (d *DASer) AppData(ctx context.Context, block uint32) (*AppData, error) {
	return d.results.AppData(ctx, block)
}

// State returns the processing state of a block.
func (d *DASer) State(ctx context.Context, block uint32) (BlockState, error) {
	return d.results.State(ctx, block)
}

// LatestProcessedBlock returns the highest block which completed a pass.
func (d *DASer) LatestProcessedBlock(ctx context.Context) (uint32, error) {
	return d.results.LatestProcessed(ctx)
}

// withClock replaces the clock driving backoff and background storing.
func withClock(clk clock.Clock) Option {
	return func(d *DASer) {
		d.clock = clk
	}
}
