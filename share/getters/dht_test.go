package getters

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/libp2p/go-libp2p/core/routing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/availproject/avail-light-go/share"
	"github.com/availproject/avail-light-go/share/sharetest"
)

// valueStore is an in-memory routing.ValueStore validating records the way the DHT does.
type valueStore struct {
	mu      sync.Mutex
	records map[string][]byte
	gets    int
}

func newValueStore() *valueStore {
	return &valueStore{records: make(map[string][]byte)}
}

func (vs *valueStore) PutValue(_ context.Context, key string, value []byte, _ ...routing.Option) error {
	if err := (CellValidator{}).Validate(key, value); err != nil {
		return err
	}
	vs.mu.Lock()
	defer vs.mu.Unlock()
	vs.records[key] = value
	return nil
}

func (vs *valueStore) GetValue(_ context.Context, key string, _ ...routing.Option) ([]byte, error) {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	vs.gets++
	value, ok := vs.records[key]
	if !ok {
		return nil, routing.ErrNotFound
	}
	return value, nil
}

func (vs *valueStore) SearchValue(context.Context, string, ...routing.Option) (<-chan []byte, error) {
	return nil, errors.New("not supported")
}

func TestDHTStore(t *testing.T) {
	ctx := context.Background()
	blk := sharetest.RandBlock(t, 42, 2, 4, 1)
	vs := newValueStore()

	writer, err := NewDHTStore(vs, 16)
	require.NoError(t, err)
	require.NoError(t, writer.PutCells(ctx, blk.Header, blk.Cells[1]))
	assert.Contains(t, vs.records, "/cell/42:1:3")

	reader, err := NewDHTStore(vs, 16)
	require.NoError(t, err)
	positions := []share.Position{{Row: 1, Col: 0}, {Row: 1, Col: 3}, {Row: 0, Col: 0}}
	cells, err := reader.GetCells(ctx, blk.Header, positions)
	require.NoError(t, err)
	require.Len(t, cells, 2)
	assert.Equal(t, blk.Cell(positions[0]), cells[0])
	assert.Equal(t, blk.Cell(positions[1]), cells[1])

	// found records are served locally afterwards
	gets := vs.gets
	_, err = reader.GetCells(ctx, blk.Header, positions[:2])
	require.NoError(t, err)
	assert.Equal(t, gets, vs.gets)

	malformed := blk.Cell(share.Position{Row: 0, Col: 1})
	malformed.Proof = nil
	require.Error(t, writer.PutCells(ctx, blk.Header, []share.Cell{malformed}))
}

func TestCellValidator(t *testing.T) {
	blk := sharetest.RandBlock(t, 3, 2, 4, 1)
	cell := blk.Cell(share.Position{Row: 1, Col: 2})
	value, err := cell.MarshalBinary()
	require.NoError(t, err)

	v := CellValidator{}
	require.NoError(t, v.Validate(CellKey(3, cell.Position), value))
	require.Error(t, v.Validate("/ipns/3:1:2", value))
	require.Error(t, v.Validate("/cell/three", value))
	require.Error(t, v.Validate(CellKey(3, cell.Position), value[:share.CellSize]))

	idx, err := v.Select(CellKey(3, cell.Position), [][]byte{value, value})
	require.NoError(t, err)
	assert.Zero(t, idx)
}
