package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ipfs/go-datastore"
	ds_sync "github.com/ipfs/go-datastore/sync"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/availproject/avail-light-go/share"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(ds_sync.MutexWrap(datastore.NewMapDatastore()))
}

func TestConfidenceRecord_Serialized(t *testing.T) {
	rec := ConfidenceRecord{Block: 1, Confidence: 93.75, VerifiedCells: 4}
	assert.Equal(t, uint64(5232467296), rec.Serialized())

	rec = ConfidenceRecord{Block: 0, Confidence: 99.21875}
	assert.Equal(t, uint64(992187500), rec.Serialized())
}

func TestStore_Commit(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	t.Cleanup(cancel)
	s := newTestStore(t)

	_, err := s.Confidence(ctx, 10)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.LatestProcessed(ctx)
	require.ErrorIs(t, err, ErrNotFound)
	state, err := s.State(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, Unknown, state)

	data := &share.AppData{AppID: 1, BlockNumber: 10, Extrinsics: [][]byte{{1, 2}}}
	err = s.Commit(ctx, Commit{
		Block:      10,
		State:      Done,
		Confidence: &ConfidenceRecord{Block: 10, Confidence: 93.75, VerifiedCells: 4},
		AppData:    data,
	})
	require.NoError(t, err)

	rec, err := s.Confidence(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 93.75, rec.Confidence)
	stored, err := s.AppData(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, data, stored)
	latest, err := s.LatestProcessed(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 10, latest)

	// a worse pass over the same block and an older block
	err = s.Commit(ctx, Commit{
		Block:      10,
		State:      Unavailable,
		Confidence: &ConfidenceRecord{Block: 10, Confidence: 50, VerifiedCells: 1},
	})
	require.NoError(t, err)
	err = s.Commit(ctx, Commit{Block: 3, State: Unavailable, Confidence: &ConfidenceRecord{Block: 3}})
	require.NoError(t, err)

	rec, err = s.Confidence(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 93.75, rec.Confidence)
	state, err = s.State(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, Done, state)
	latest, err = s.LatestProcessed(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 10, latest)
	state, err = s.State(ctx, 3)
	require.NoError(t, err)
	assert.True(t, state.IsTerminal())
}

func TestStore_ConcurrentMonotonic(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	t.Cleanup(cancel)
	s := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(verified int) {
			defer wg.Done()
			rec := ConfidenceRecord{Block: 7, Confidence: float64(verified), VerifiedCells: verified}
			assert.NoError(t, s.Commit(ctx, Commit{Block: 7, State: ConfidenceComputed, Confidence: &rec}))
		}(i)
	}
	wg.Wait()

	rec, err := s.Confidence(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 19, rec.VerifiedCells)
}
