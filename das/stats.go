package das

// SamplingStats collects information about the sampling process.
type SamplingStats struct {
	// all blocks up to and including SampledChainHead were processed
	SampledChainHead uint64 `json:"head_of_sampled_chain"`
	// all blocks up to and including CatchupHead were handed out to workers
	CatchupHead uint64 `json:"head_of_catchup"`
	// NetworkHead is the latest block announced by the subscription
	NetworkHead uint64 `json:"network_head_height"`
	// Failed holds blocks waiting for a retry with the amount of attempts
	Failed map[uint64]int `json:"failed,omitempty"`
	// Workers has information about each currently running worker
	Workers []WorkerStats `json:"workers,omitempty"`
	// Concurrency is the amount of currently running workers
	Concurrency int `json:"concurrency"`
	// CatchUpDone indicates whether all known blocks are processed
	CatchUpDone bool `json:"catch_up_done"`
	// IsRunning tracks whether the DASer service is running
	IsRunning bool `json:"is_running"`
}

type WorkerStats struct {
	JobType jobType `json:"job_type"`
	Curr    uint64  `json:"current"`
	From    uint64  `json:"from"`
	To      uint64  `json:"to"`

	ErrMsg string `json:"error,omitempty"`
}

// totalSampled returns the total amount of processed blocks.
func (s SamplingStats) totalSampled() uint64 {
	var inProgress uint64
	for _, w := range s.Workers {
		// don't count retry jobs, they are already in failed
		if w.JobType != retryJob && w.Curr >= w.From {
			inProgress += w.To - w.Curr + 1
		}
	}
	total := s.CatchupHead
	if pending := inProgress + uint64(len(s.Failed)); pending < total {
		return total - pending
	}
	return 0
}

// workersByJobType returns a map of job types to the amount of workers.
func (s SamplingStats) workersByJobType() map[jobType]int64 {
	workers := make(map[jobType]int64)
	for _, w := range s.Workers {
		workers[w.JobType]++
	}
	return workers
}
