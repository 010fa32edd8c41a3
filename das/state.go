package das

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/availproject/avail-light-go/header"
)

// coordinatorState tracks which blocks were handed out to workers, which are
// waiting for a retry and how far the catch-up has progressed.
type coordinatorState struct {
	// sampleFrom is the lowest block catch-up covers. Zero turns catch-up off.
	sampleFrom uint64
	// samplingRange is the maximum amount of blocks processed in one job.
	samplingRange uint64

	// running workers by job id
	inProgress map[int]func() workerState

	retryStrategy retryStrategy
	// failed keeps blocks waiting for a retry together with their attempt
	failed map[uint64]retryAttempt
	// inRetry keeps blocks currently being retried by workers
	inRetry map[uint64]retryAttempt
	// recent keeps announced blocks above next handed to live jobs, catch-up skips them
	recent map[uint64]struct{}

	nextJobID int
	// every block below next was handed out to a worker
	next uint64
	// networkHead is the latest block announced by the subscription
	networkHead uint64

	clock clock.Clock

	catchUpDone   atomic.Bool
	catchUpDoneCh chan struct{}
}

// retryAttempt is the backoff position of a single failed block.
type retryAttempt struct {
	// count of attempts made so far
	count int
	// after is the earliest time of the next attempt
	after time.Time
}

func newCoordinatorState(params Parameters, clk clock.Clock) coordinatorState {
	return coordinatorState{
		sampleFrom:    params.SampleFrom,
		samplingRange: params.SamplingRange,
		inProgress:    make(map[int]func() workerState),
		retryStrategy: newRetryStrategy(exponentialBackoff(
			params.BackoffInitialInterval,
			params.BackoffMultiplier,
			params.BackoffMaxRetryCount)),
		failed:        make(map[uint64]retryAttempt),
		inRetry:       make(map[uint64]retryAttempt),
		recent:        make(map[uint64]struct{}),
		next:          params.SampleFrom,
		networkHead:   params.SampleFrom,
		clock:         clk,
		catchUpDoneCh: make(chan struct{}),
	}
}

func (s *coordinatorState) resumeFromCheckpoint(c checkpoint) {
	s.next = c.SampleFrom
	s.networkHead = c.NetworkHead

	now := s.clock.Now()
	for h, count := range c.Failed {
		// resumed retries start without backoff delay
		s.failed[h] = retryAttempt{
			count: count,
			after: now,
		}
	}
}

func (s *coordinatorState) handleResult(res result) {
	delete(s.inProgress, res.id)

	switch res.jobType {
	case recentJob, catchupJob:
		s.handleRecentOrCatchupResult(res)
	case retryJob:
		s.handleRetryResult(res)
	}

	s.checkDone()
}

func (s *coordinatorState) handleRecentOrCatchupResult(res result) {
	// a recent block may have been failed before and succeeded now
	for h := range s.failed {
		if h < res.from || h > res.to {
			continue
		}
		if res.failed[h] == 0 {
			delete(s.failed, h)
		}
	}

	now := s.clock.Now()
	for h := range res.failed {
		nextRetry, _ := s.retryStrategy.nextRetry(retryAttempt{}, now)
		s.failed[h] = nextRetry
	}
}

func (s *coordinatorState) handleRetryResult(res result) {
	now := s.clock.Now()
	for h := range res.failed {
		nextRetry, exceeded := s.retryStrategy.nextRetry(s.inRetry[h], now)
		if exceeded {
			log.Warnw("block exceeded maximum amount of processing attempts, retrying at the longest interval",
				"height", h,
				"attempts", nextRetry.count)
		}
		s.failed[h] = nextRetry
	}

	for h := res.from; h <= res.to; h++ {
		delete(s.inRetry, h)
	}
}

func (s *coordinatorState) isNewHead(newHead uint64) bool {
	if newHead <= s.networkHead && s.next != 0 {
		log.Warnw("received head which is lower or the same as previously known",
			"height", newHead,
			"known", s.networkHead)
		return false
	}
	return true
}

func (s *coordinatorState) updateHead(newHead uint64) {
	if s.next == 0 {
		// catch-up is disabled, everything up to the first head is skipped
		log.Infow("found first block, catch-up is disabled", "height", newHead)
		s.next = newHead + 1
	} else if s.networkHead == s.sampleFrom {
		log.Infow("found first block, starting catch-up", "height", newHead)
	}

	log.Debugw("updated head", "from_height", s.networkHead, "to_height", newHead)
	s.networkHead = newHead
	s.checkDone()
}

// recentJob creates a job for a freshly announced block.
func (s *coordinatorState) recentJob(h *header.BlockHeader) job {
	// move next, so catch-up does not process the same block
	if s.next == h.Height() {
		s.next++
	} else if s.next != 0 && s.next < h.Height() {
		s.recent[h.Height()] = struct{}{}
	}
	j := s.newJob(recentJob, h.Height(), h.Height())
	j.header = h
	return j
}

// nextJob returns a retry job if any is due, a catch-up job otherwise.
func (s *coordinatorState) nextJob() (next job, found bool) {
	if j, found := s.retryJob(); found {
		return j, found
	}
	return s.catchupJob()
}

func (s *coordinatorState) catchupJob() (next job, found bool) {
	if s.next == 0 {
		return job{}, false
	}
	for s.next <= s.networkHead {
		if _, ok := s.recent[s.next]; !ok {
			break
		}
		delete(s.recent, s.next)
		s.next++
	}
	if s.next > s.networkHead {
		return job{}, false
	}

	to := s.next + s.samplingRange - 1
	if to > s.networkHead {
		to = s.networkHead
	}
	// stop right below a block already sampled by a live job
	for h := s.next + 1; h <= to; h++ {
		if _, ok := s.recent[h]; ok {
			to = h - 1
			break
		}
	}
	j := s.newJob(catchupJob, s.next, to)
	s.next = to + 1
	return j, true
}

func (s *coordinatorState) retryJob() (next job, found bool) {
	now := s.clock.Now()
	for h, attempt := range s.failed {
		if !attempt.canRetry(now) {
			continue
		}

		delete(s.failed, h)
		s.inRetry[h] = attempt
		return s.newJob(retryJob, h, h), true
	}
	return job{}, false
}

func (s *coordinatorState) putInProgress(jobID int, getState func() workerState) {
	s.inProgress[jobID] = getState
}

func (s *coordinatorState) newJob(jobType jobType, from, to uint64) job {
	s.nextJobID++
	return job{
		id:      s.nextJobID,
		jobType: jobType,
		from:    from,
		to:      to,
	}
}

// unsafeStats collects coordinator stats without synchronization.
func (s *coordinatorState) unsafeStats() SamplingStats {
	workers := make([]WorkerStats, 0, len(s.inProgress))
	lowestFailedOrInProgress := s.next
	failed := make(map[uint64]int)

	for _, getStats := range s.inProgress {
		wstats := getStats()
		var errMsg string
		if wstats.err != nil {
			errMsg = wstats.err.Error()
		}
		workers = append(workers, WorkerStats{
			JobType: wstats.job.jobType,
			Curr:    wstats.curr,
			From:    wstats.from,
			To:      wstats.to,
			ErrMsg:  errMsg,
		})

		for h := range wstats.failed {
			failed[h]++
			if h < lowestFailedOrInProgress {
				lowestFailedOrInProgress = h
			}
		}
		if wstats.curr < lowestFailedOrInProgress {
			lowestFailedOrInProgress = wstats.curr
		}
	}

	for h, retry := range s.failed {
		failed[h] += retry.count
		if h < lowestFailedOrInProgress {
			lowestFailedOrInProgress = h
		}
	}
	for h, retry := range s.inRetry {
		failed[h] += retry.count
	}

	var sampledHead, catchupHead uint64
	if lowestFailedOrInProgress > 0 {
		sampledHead = lowestFailedOrInProgress - 1
	}
	if s.next > 0 {
		catchupHead = s.next - 1
	}

	return SamplingStats{
		SampledChainHead: sampledHead,
		CatchupHead:      catchupHead,
		NetworkHead:      s.networkHead,
		Failed:           failed,
		Workers:          workers,
		Concurrency:      len(workers),
		CatchUpDone:      s.catchUpDone.Load(),
		IsRunning:        len(workers) > 0 || s.catchUpDone.Load(),
	}
}

func (s *coordinatorState) checkDone() {
	if len(s.inProgress) == 0 && len(s.failed) == 0 && s.next > s.networkHead {
		if s.catchUpDone.CompareAndSwap(false, true) {
			close(s.catchUpDoneCh)
		}
		return
	}

	if s.catchUpDone.Load() {
		s.catchUpDoneCh = make(chan struct{})
		s.catchUpDone.Store(false)
	}
}

// waitCatchUp blocks until every known block was processed.
func (s *coordinatorState) waitCatchUp(ctx context.Context) error {
	if s.catchUpDone.Load() {
		return nil
	}
	select {
	case <-s.catchUpDoneCh:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

func (r retryAttempt) canRetry(now time.Time) bool {
	return !r.after.After(now)
}
