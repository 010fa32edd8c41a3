package das

import (
	"math"

	"github.com/availproject/avail-light-go/share"
	"github.com/availproject/avail-light-go/store"
)

type (
	// ConfidenceRecord holds the availability confidence of a block.
	ConfidenceRecord = store.ConfidenceRecord
	// BlockState is the terminal state of a block processing pass.
	BlockState = store.BlockState
	// AppData is the data an application submitted in a block.
	AppData = share.AppData
)

// maxCellCount bounds CellCount for targets indistinguishable from 100 in float64.
const maxCellCount = 64

// CellCount returns the minimal amount of verified cells reaching the confidence target: the
// smallest N satisfying 1 - 0.5^N >= confidence/100.
func CellCount(confidence float64) int {
	if confidence <= 0 {
		return 0
	}
	target := confidence / 100
	for n := 1; n <= maxCellCount; n++ {
		if 1-math.Pow(0.5, float64(n)) >= target {
			return n
		}
	}
	return maxCellCount
}

// Compute scores the amount of verified cells of a block.
func Compute(block uint32, verified int) ConfidenceRecord {
	conf := 100 * (1 - math.Pow(0.5, float64(verified)))
	return ConfidenceRecord{
		Block:         block,
		Confidence:    math.Max(0, math.Min(100, conf)),
		VerifiedCells: verified,
	}
}
