package das

import (
	"context"

	"github.com/availproject/avail-light-go/das"
)

var _ Module = (*das.DASer)(nil)

// Module exposes the sampling results and the progress of the DASer.
type Module interface {
	// SamplingStats returns the current statistic over the DA sampling process.
	SamplingStats(ctx context.Context) (das.SamplingStats, error)
	// WaitCatchUp blocks until DASer finishes catching up to the network head.
	WaitCatchUp(ctx context.Context) error
	// Mode reports what the client fetches for every block.
	Mode() das.Mode
	// Confidence returns the confidence record of the block.
	Confidence(ctx context.Context, block uint32) (*das.ConfidenceRecord, error)
	// AppData returns the recovered application data of the block.
	AppData(ctx context.Context, block uint32) (*das.AppData, error)
	// State returns how far the processing of the block got.
	State(ctx context.Context, block uint32) (das.BlockState, error)
	// LatestProcessedBlock returns the highest block processed so far.
	LatestProcessedBlock(ctx context.Context) (uint32, error)
}

// Hook observes every processed block.
type Hook func(context.Context, das.Outcome)
