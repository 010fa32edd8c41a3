package utils

import "sync"

// StripLock shards a fixed set of mutexes across block numbers, so that work on distinct blocks
// rarely contends while work on the same block is serialized.
type StripLock struct {
	blocks []*sync.Mutex
}

// NewStripLock creates a new StripLock with the specified number of mutexes.
func NewStripLock(size int) *StripLock {
	if size <= 0 {
		size = 1
	}
	blocks := make([]*sync.Mutex, size)
	for i := range blocks {
		blocks[i] = &sync.Mutex{}
	}
	return &StripLock{blocks: blocks}
}

// ByBlock returns the mutex guarding the given block number.
func (l *StripLock) ByBlock(number uint32) *sync.Mutex {
	return l.blocks[uint64(number)%uint64(len(l.blocks))]
}
