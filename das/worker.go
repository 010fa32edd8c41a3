package das

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/availproject/avail-light-go/header"
)

const (
	catchupJob jobType = "catchup"
	recentJob  jobType = "recent"
	retryJob   jobType = "retry"
)

type worker struct {
	lock  sync.Mutex
	state workerState

	getter   header.Getter
	sampleFn sampleFn
	skipFn   skipFn
	metrics  *metrics
	timeout  time.Duration
}

// workerState contains important information about the state of a
// current sampling routine.
type workerState struct {
	result

	curr uint64
}

type jobType string

// job represents headers interval to be processed by worker
type job struct {
	id      int
	jobType jobType
	from    uint64
	to      uint64

	// header is set only for recentJobs, avoiding an unnecessary call to the header store
	header *header.BlockHeader
}

func newWorker(j job,
	getter header.Getter,
	sample sampleFn,
	skip skipFn,
	metrics *metrics,
	timeout time.Duration,
) worker {
	return worker{
		getter:   getter,
		sampleFn: sample,
		skipFn:   skip,
		metrics:  metrics,
		timeout:  timeout,
		state: workerState{
			curr: j.from,
			result: result{
				job:    j,
				failed: make(map[uint64]int),
			},
		},
	}
}

func (w *worker) run(ctx context.Context, resultCh chan<- result) {
	jobStart := time.Now()
	log.Debugw("start sampling worker", "from", w.state.from, "to", w.state.to)

	for curr := w.state.from; curr <= w.state.to; curr++ {
		err := w.sample(ctx, curr)
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			// sampling worker will resume upon restart
			return
		}
		w.setResult(curr, err)
	}

	if w.state.jobType != recentJob {
		log.Infow("finished sampling headers",
			"type", w.state.jobType,
			"from", w.state.from,
			"to", w.state.curr,
			"errors", len(w.state.failed),
			"finished (s)", time.Since(jobStart).Seconds())
	}

	select {
	case resultCh <- w.state.result:
	case <-ctx.Done():
	}
}

func (w *worker) sample(ctx context.Context, height uint64) error {
	if w.state.jobType == catchupJob && w.skipFn(ctx, height) {
		log.Debugw("skipping already processed block", "height", height)
		return nil
	}

	h, err := w.getHeader(ctx, height)
	if err != nil {
		return err
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	err = w.sampleFn(ctx, h)
	w.metrics.observeSample(ctx, h, time.Since(start), w.state.jobType, err)
	if err != nil {
		if !errors.Is(err, errShortfall) {
			log.Debugw("failed to sample header", "height", h.Height(), "err", err)
		}
		return err
	}

	logout := log.Debugw
	if w.state.jobType == recentJob {
		logout = log.Infow
	}
	logout("sampled header",
		"type", w.state.jobType,
		"height", h.Height(),
		"hash", fmt.Sprintf("%X", h.Hash()),
		"rows", h.Rows,
		"cols", h.Cols,
		"finished (s)", time.Since(start).Seconds())
	return nil
}

func (w *worker) getHeader(ctx context.Context, height uint64) (*header.BlockHeader, error) {
	if w.state.header != nil {
		return w.state.header, nil
	}

	// TODO: get headers in batches
	start := time.Now()
	h, err := w.getter.GetByHeight(ctx, height)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Errorw("failed to get header from header store", "height", height,
				"finished (s)", time.Since(start).Seconds())
		}
		return nil, err
	}

	w.metrics.observeGetHeader(ctx, time.Since(start))
	log.Debugw("got header from header store", "height", h.Height(),
		"finished (s)", time.Since(start).Seconds())
	return h, nil
}

func (w *worker) setResult(curr uint64, err error) {
	w.lock.Lock()
	defer w.lock.Unlock()
	if err != nil {
		w.state.failed[curr]++
		w.state.err = multierr.Append(w.state.err, fmt.Errorf("height: %v, err: %w", curr, err))
	}
	w.state.curr = curr
}

func (w *worker) getState() workerState {
	w.lock.Lock()
	defer w.lock.Unlock()
	return w.state
}
