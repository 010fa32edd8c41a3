package das

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/availproject/avail-light-go/header"
)

// samplingCoordinator runs workers over block ranges and keeps the sampling state.
type samplingCoordinator struct {
	concurrencyLimit int
	sampleTimeout    time.Duration
	retryInterval    time.Duration

	getter   header.Getter
	sampleFn sampleFn
	skipFn   skipFn
	clock    clock.Clock

	state coordinatorState

	// resultCh fans-in results from workers
	resultCh chan result
	// updHeadCh announces new live blocks
	updHeadCh chan *header.BlockHeader
	// waitCh pauses the coordinator for external access to state
	waitCh chan *sync.WaitGroup

	workersWg sync.WaitGroup
	metrics   *metrics
	done
}

// result carries the outcome of a job back to the coordinator.
type result struct {
	job
	failed map[uint64]int
	err    error
}

func newSamplingCoordinator(
	params Parameters,
	getter header.Getter,
	sample sampleFn,
	skip skipFn,
	clk clock.Clock,
) *samplingCoordinator {
	return &samplingCoordinator{
		concurrencyLimit: params.ConcurrencyLimit,
		sampleTimeout:    params.SampleTimeout,
		retryInterval:    params.BackoffInitialInterval,
		getter:           getter,
		sampleFn:         sample,
		skipFn:           skip,
		clock:            clk,
		state:            newCoordinatorState(params, clk),
		resultCh:         make(chan result),
		updHeadCh:        make(chan *header.BlockHeader),
		waitCh:           make(chan *sync.WaitGroup),
		done:             newDone("sampling coordinator"),
	}
}

func (sc *samplingCoordinator) run(ctx context.Context, cp checkpoint) {
	sc.state.resumeFromCheckpoint(cp)
	sc.metrics.recordTotalSampled(cp.totalSampled())

	// resumed recent jobs lose their header and are picked up as catch-up
	for _, wk := range cp.Workers {
		sc.runWorker(ctx, sc.state.newJob(catchupJob, wk.From, wk.To))
	}

	// due retries are otherwise noticed only on the next head or result
	retryTicker := sc.clock.Ticker(sc.retryInterval)
	defer retryTicker.Stop()

	for {
		for !sc.concurrencyLimitReached() {
			next, found := sc.state.nextJob()
			if !found {
				break
			}
			sc.runWorker(ctx, next)
		}

		select {
		case h := <-sc.updHeadCh:
			if sc.state.isNewHead(h.Height()) {
				// recent jobs ignore the concurrency limit to reduce delay
				sc.runWorker(ctx, sc.state.recentJob(h))
				sc.state.updateHead(h.Height())
				sc.metrics.observeNewHead(ctx)
			}
		case res := <-sc.resultCh:
			sc.state.handleResult(res)
		case wg := <-sc.waitCh:
			wg.Wait()
		case <-retryTicker.C:
		case <-ctx.Done():
			sc.workersWg.Wait()
			sc.indicateDone()
			return
		}
	}
}

func (sc *samplingCoordinator) runWorker(ctx context.Context, j job) {
	w := newWorker(j, sc.getter, sc.sampleFn, sc.skipFn, sc.metrics, sc.sampleTimeout)
	sc.state.putInProgress(j.id, w.getState)

	sc.workersWg.Add(1)
	go func() {
		defer sc.workersWg.Done()
		w.run(ctx, sc.resultCh)
	}()
}

// listen notifies the coordinator about a new live block.
func (sc *samplingCoordinator) listen(ctx context.Context, h *header.BlockHeader) {
	select {
	case sc.updHeadCh <- h:
	case <-ctx.Done():
	}
}

// stats pauses the coordinator to read its state safely.
func (sc *samplingCoordinator) stats(ctx context.Context) (SamplingStats, error) {
	var wg sync.WaitGroup
	wg.Add(1)
	defer wg.Done()

	select {
	case sc.waitCh <- &wg:
	case <-ctx.Done():
		return SamplingStats{}, ctx.Err()
	}

	return sc.state.unsafeStats(), nil
}

func (sc *samplingCoordinator) getCheckpoint(ctx context.Context) (checkpoint, error) {
	stats, err := sc.stats(ctx)
	if err != nil {
		return checkpoint{}, err
	}
	return newCheckpoint(stats), nil
}

func (sc *samplingCoordinator) concurrencyLimitReached() bool {
	return len(sc.state.inProgress) >= sc.concurrencyLimit
}
