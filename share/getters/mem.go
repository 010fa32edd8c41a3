package getters

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/multierr"

	"github.com/availproject/avail-light-go/header"
	"github.com/availproject/avail-light-go/share"
)

// MemStore keeps cells in a bounded in-memory LRU. It serves as the cache when the node does not
// participate in the peer-to-peer network.
type MemStore struct {
	cells *lru.Cache[string, []byte]
}

var (
	_ Getter = (*MemStore)(nil)
	_ Putter = (*MemStore)(nil)
)

// NewMemStore creates a MemStore holding up to size cells.
func NewMemStore(size int) (*MemStore, error) {
	cells, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("creating cell cache: %w", err)
	}
	return &MemStore{cells: cells}, nil
}

func (s *MemStore) GetCells(_ context.Context, hdr *header.BlockHeader, positions []share.Position) ([]share.Cell, error) {
	cells := make([]share.Cell, 0, len(positions))
	for _, pos := range positions {
		value, ok := s.cells.Get(CellKey(hdr.Number, pos))
		if !ok {
			continue
		}
		cell, err := share.UnmarshalCell(pos, value)
		if err != nil {
			continue
		}
		cells = append(cells, cell)
	}
	return cells, nil
}

func (s *MemStore) PutCells(_ context.Context, hdr *header.BlockHeader, cells []share.Cell) error {
	var err error
	for _, cell := range cells {
		value, merr := cell.MarshalBinary()
		if merr != nil {
			err = multierr.Append(err, merr)
			continue
		}
		s.cells.Add(CellKey(hdr.Number, cell.Position), value)
	}
	return err
}
