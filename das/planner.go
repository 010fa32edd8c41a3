package das

import (
	"crypto/sha256"
	"math/rand/v2"

	"github.com/availproject/avail-light-go/header"
	"github.com/availproject/avail-light-go/share"
)

// SamplingPlan lists the distinct positions to fetch for a block.
type SamplingPlan struct {
	Block      uint32
	Confidence float64
	Positions  []share.Position
}

// Planner decides which cells of a block to fetch.
type Planner interface {
	Plan(hdr *header.BlockHeader, confidence float64) SamplingPlan
}

// NewPlanner returns the planner of the given mode.
func NewPlanner(mode Mode) Planner {
	if mode.Partition != nil {
		return partitionPlanner{partition: *mode.Partition}
	}
	return randomPlanner{}
}

// randomPlanner samples the minimal amount of cells reaching the target confidence. Positions are
// drawn without replacement from a stream seeded by the block's data root, so a plan can be
// reproduced for the same block and target.
type randomPlanner struct{}

func (randomPlanner) Plan(hdr *header.BlockHeader, confidence float64) SamplingPlan {
	plan := SamplingPlan{Block: hdr.Number, Confidence: confidence}
	total := hdr.TotalCells()
	if total == 0 {
		return plan
	}

	n := min(CellCount(confidence), total)
	rng := rand.New(rand.NewChaCha8(sha256.Sum256(hdr.DataRoot())))
	seen := make(map[int]struct{}, n)
	plan.Positions = make([]share.Position, 0, n)
	if n == total {
		for idx := range total {
			plan.Positions = append(plan.Positions, position(hdr, idx))
		}
		return plan
	}
	for len(plan.Positions) < n {
		idx := rng.IntN(total)
		if _, ok := seen[idx]; ok {
			continue
		}
		seen[idx] = struct{}{}
		plan.Positions = append(plan.Positions, position(hdr, idx))
	}
	return plan
}

// partitionPlanner covers a contiguous fraction of the matrix.
type partitionPlanner struct {
	partition Partition
}

func (pp partitionPlanner) Plan(hdr *header.BlockHeader, confidence float64) SamplingPlan {
	plan := SamplingPlan{Block: hdr.Number, Confidence: confidence}
	start, end := pp.partition.Range(hdr.TotalCells())
	plan.Positions = make([]share.Position, 0, end-start)
	for idx := start; idx < end; idx++ {
		plan.Positions = append(plan.Positions, position(hdr, idx))
	}
	return plan
}

// PlanApp returns the data cells of every row holding data of the application. Together they meet
// the decoding threshold of each row.
func PlanApp(hdr *header.BlockHeader, appID uint32) []share.Position {
	rows := hdr.AppRows(appID)
	positions := make([]share.Position, 0, len(rows)*int(hdr.DataCols()))
	for _, row := range rows {
		for col := uint16(0); col < hdr.DataCols(); col++ {
			positions = append(positions, share.Position{Row: row, Col: col})
		}
	}
	return positions
}

// PlanRepair returns the parity cells of the given rows, used when some data cells of an
// application row could not be fetched.
func PlanRepair(hdr *header.BlockHeader, rows []uint16) []share.Position {
	positions := make([]share.Position, 0, len(rows)*int(hdr.Cols-hdr.DataCols()))
	for _, row := range rows {
		for col := hdr.DataCols(); col < hdr.Cols; col++ {
			positions = append(positions, share.Position{Row: row, Col: col})
		}
	}
	return positions
}

func position(hdr *header.BlockHeader, idx int) share.Position {
	return share.Position{
		Row: uint16(idx / int(hdr.Cols)),
		Col: uint16(idx % int(hdr.Cols)),
	}
}
