package store

import (
	"fmt"
	"math"
)

// BlockState is the terminal state a block reached in its latest processing pass.
type BlockState uint8

const (
	// Unknown is reported for blocks that were never processed.
	Unknown BlockState = iota
	// Unavailable means no usable cell of the block could be fetched.
	Unavailable
	// ConfidenceComputed means confidence was recorded, but application data was not recovered.
	ConfidenceComputed
	// Done means every step required by the operating mode completed.
	Done
)

func (s BlockState) String() string {
	switch s {
	case Unavailable:
		return "unavailable"
	case ConfidenceComputed:
		return "confidence_computed"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether a block in this state needs no further backfill processing.
func (s BlockState) IsTerminal() bool {
	return s == Done || s == Unavailable
}

// confidenceScale is the precision confidence is serialized with.
const confidenceScale = 1e7

// ConfidenceRecord holds the probability, in percent, that the data of a block is available.
type ConfidenceRecord struct {
	Block         uint32  `json:"block"`
	Confidence    float64 `json:"confidence"`
	VerifiedCells int     `json:"verified_cells"`
}

// Serialized packs the block number and the confidence into a single integer, the block number
// taking the upper 32 bits.
func (r ConfidenceRecord) Serialized() uint64 {
	return uint64(r.Block)<<32 | uint64(math.Round(r.Confidence*confidenceScale))
}

// Merge returns the record with the greater confidence. Confidence of a block never decreases.
func (r ConfidenceRecord) Merge(other ConfidenceRecord) ConfidenceRecord {
	if other.Confidence > r.Confidence ||
		(other.Confidence == r.Confidence && other.VerifiedCells > r.VerifiedCells) {
		return other
	}
	return r
}

// String implements fmt.Stringer.
func (r ConfidenceRecord) String() string {
	return fmt.Sprintf("block %d: %.4f%% (%d cells)", r.Block, r.Confidence, r.VerifiedCells)
}
