package das

import (
	"fmt"
)

// checkpoint is the persisted progress of the sampling process.
type checkpoint struct {
	SampleFrom  uint64 `json:"sample_from"`
	NetworkHead uint64 `json:"network_head"`
	// Failed blocks with the amount of attempts made
	Failed map[uint64]int `json:"failed,omitempty"`
	// Workers holds ranges that were in progress at the moment of storing
	Workers []workerCheckpoint `json:"workers,omitempty"`
}

type workerCheckpoint struct {
	From    uint64  `json:"from"`
	To      uint64  `json:"to"`
	JobType jobType `json:"job_type"`
}

func newCheckpoint(stats SamplingStats) checkpoint {
	workers := make([]workerCheckpoint, 0, len(stats.Workers))
	for _, w := range stats.Workers {
		// retried blocks are already listed in Failed
		if w.JobType == retryJob {
			continue
		}
		workers = append(workers, workerCheckpoint{
			From:    w.Curr,
			To:      w.To,
			JobType: w.JobType,
		})
	}
	return checkpoint{
		SampleFrom:  stats.CatchupHead + 1,
		NetworkHead: stats.NetworkHead,
		Failed:      stats.Failed,
		Workers:     workers,
	}
}

// totalSampled estimates the amount of blocks processed before the checkpoint.
func (c checkpoint) totalSampled() uint64 {
	if c.SampleFrom == 0 {
		return 0
	}

	var pending uint64
	for _, w := range c.Workers {
		pending += w.To - w.From + 1
	}
	pending += uint64(len(c.Failed))

	done := c.SampleFrom - 1
	if pending > done {
		return 0
	}
	return done - pending
}

func (c checkpoint) String() string {
	str := fmt.Sprintf("SampleFrom: %v, NetworkHead: %v", c.SampleFrom, c.NetworkHead)

	if len(c.Workers) > 0 {
		str += fmt.Sprintf(", Workers: %v", len(c.Workers))
	}

	if len(c.Failed) > 0 {
		str += fmt.Sprintf("\nFailed: %v", c.Failed)
	}

	return str
}
