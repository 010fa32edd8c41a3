package headertest

import (
	"github.com/stretchr/testify/require"

	"github.com/availproject/avail-light-go/share/sharetest"
)

// NewChain builds count consecutive blocks starting at block number from, each linked to its
// parent and carrying random data of the given applications.
func NewChain(t require.TestingT, from uint32, count int, rows, cols uint16, appIDs ...uint32) []*sharetest.Block {
	chain := make([]*sharetest.Block, 0, count)
	for i := 0; i < count; i++ {
		blk := sharetest.RandBlock(t, from+uint32(i), rows, cols, appIDs...)
		if i > 0 {
			blk.Header.ParentHash = chain[i-1].Header.Hash()
		}
		chain = append(chain, blk)
	}
	return chain
}
