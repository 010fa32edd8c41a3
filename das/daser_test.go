package das

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/ipfs/go-datastore"
	ds_sync "github.com/ipfs/go-datastore/sync"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/availproject/avail-light-go/header"
	"github.com/availproject/avail-light-go/header/headertest"
	"github.com/availproject/avail-light-go/share/proof"
	"github.com/availproject/avail-light-go/share/recovery"
	"github.com/availproject/avail-light-go/share/sharetest"
	"github.com/availproject/avail-light-go/store"
)

func headersOf(blocks []*sharetest.Block) []*header.BlockHeader {
	out := make([]*header.BlockHeader, 0, len(blocks))
	for _, blk := range blocks {
		out = append(out, blk.Header)
	}
	return out
}

func newTestDASer(
	t *testing.T,
	ds datastore.Batching,
	hstore *headertest.Store,
	f Fetcher,
	opts ...Option,
) (*DASer, *store.Store) {
	t.Helper()
	results := store.NewStore(ds)
	p, err := NewPipeline(DefaultParameters(), f, proof.NewVerifier(false), recovery.NewReconstructor(2), results)
	require.NoError(t, err)

	daser, err := NewDASer(p, results, hstore, hstore, ds, opts...)
	require.NoError(t, err)
	return daser, results
}

// requireState waits until every block in [from, to] reaches the state.
func requireState(t *testing.T, results *store.Store, from, to uint32, want BlockState) {
	t.Helper()
	require.Eventually(t, func() bool {
		for h := from; h <= to; h++ {
			state, err := results.State(context.Background(), h)
			if err != nil || state != want {
				return false
			}
		}
		return true
	}, time.Second*10, time.Millisecond*20)
}

// TestDASerLifecycle ensures every block is processed and the checkpoint moves to the network head.
func TestDASerLifecycle(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*15)
	t.Cleanup(cancel)

	ds := ds_sync.MutexWrap(datastore.NewMapDatastore())
	// 15 blocks from the past and 5 future blocks
	chain := headertest.NewChain(t, 1, 20, 2, 4, 1)
	hstore := headertest.NewStore(headersOf(chain[:15])...)
	f := newBlockFetcher(chain...)

	var processed atomic.Int32
	daser, results := newTestDASer(t, ds, hstore, f,
		WithSamplingRange(4),
		WithOnProcessed(func(_ context.Context, out Outcome) {
			if out.State == Done {
				processed.Add(1)
			}
		}),
	)
	require.NoError(t, daser.Start(ctx))
	require.Error(t, daser.Start(ctx))

	for _, blk := range chain[15:] {
		hstore.Append(blk.Header)
	}

	requireState(t, results, 1, 20, Done)
	require.NoError(t, daser.WaitCatchUp(ctx))
	assert.GreaterOrEqual(t, processed.Load(), int32(20))

	stats, err := daser.SamplingStats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 20, stats.SampledChainHead)
	assert.EqualValues(t, 20, stats.NetworkHead)
	assert.True(t, stats.CatchUpDone)
	assert.Empty(t, stats.Failed)

	latest, err := daser.LatestProcessedBlock(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 20, latest)

	rec, err := daser.Confidence(ctx, 7)
	require.NoError(t, err)
	assert.EqualValues(t, 7, rec.Block)
	assert.GreaterOrEqual(t, rec.Confidence, DefaultParameters().Confidence)

	require.NoError(t, daser.Stop(ctx))
	require.NoError(t, daser.Stop(ctx))

	cp, err := daser.store.load(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 21, cp.SampleFrom)
	assert.EqualValues(t, 20, cp.NetworkHead)
	assert.Empty(t, cp.Workers)
}

func TestDASer_Restart(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*15)
	t.Cleanup(cancel)

	ds := ds_sync.MutexWrap(datastore.NewMapDatastore())
	chain := headertest.NewChain(t, 1, 26, 2, 4)
	hstore := headertest.NewStore(headersOf(chain[:15])...)
	f := newBlockFetcher(chain...)

	daser, results := newTestDASer(t, ds, hstore, f)
	require.NoError(t, daser.Start(ctx))
	requireState(t, results, 1, 15, Done)
	require.NoError(t, daser.WaitCatchUp(ctx))
	require.NoError(t, daser.Stop(ctx))

	// blocks finalized while the node was down
	for _, blk := range chain[15:25] {
		hstore.Append(blk.Header)
	}

	daser, results = newTestDASer(t, ds, hstore, f)
	require.NoError(t, daser.Start(ctx))
	t.Cleanup(func() {
		require.NoError(t, daser.Stop(context.Background()))
	})

	// the next head reveals the gap
	hstore.Append(chain[25].Header)
	requireState(t, results, 1, 26, Done)
	require.NoError(t, daser.WaitCatchUp(ctx))
}

func TestDASer_CatchUpDisabled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*15)
	t.Cleanup(cancel)

	ds := ds_sync.MutexWrap(datastore.NewMapDatastore())
	chain := headertest.NewChain(t, 1, 11, 2, 4)
	hstore := headertest.NewStore(headersOf(chain[:10])...)

	daser, results := newTestDASer(t, ds, hstore, newBlockFetcher(chain...), WithSampleFrom(0))
	require.NoError(t, daser.Start(ctx))
	t.Cleanup(func() {
		require.NoError(t, daser.Stop(context.Background()))
	})

	hstore.Append(chain[10].Header)
	requireState(t, results, 10, 11, Done)
	require.NoError(t, daser.WaitCatchUp(ctx))

	for h := uint32(1); h < 10; h++ {
		state, err := results.State(ctx, h)
		require.NoError(t, err)
		assert.Equal(t, store.Unknown, state, "block %d", h)
	}
}

func TestDASer_SkipsProcessedBlocks(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*15)
	t.Cleanup(cancel)

	ds := ds_sync.MutexWrap(datastore.NewMapDatastore())
	chain := headertest.NewChain(t, 1, 5, 2, 4)
	hstore := headertest.NewStore(headersOf(chain)...)
	// block 3 can not be fetched anymore, but it was processed before
	f := newBlockFetcher(chain[0], chain[1], chain[3], chain[4])

	daser, results := newTestDASer(t, ds, hstore, f)
	require.NoError(t, results.Commit(ctx, store.Commit{Block: 3, State: Done}))

	require.NoError(t, daser.Start(ctx))
	t.Cleanup(func() {
		require.NoError(t, daser.Stop(context.Background()))
	})

	requireState(t, results, 1, 5, Done)
	require.NoError(t, daser.WaitCatchUp(ctx))

	stats, err := daser.SamplingStats(ctx)
	require.NoError(t, err)
	assert.Empty(t, stats.Failed)
}

func TestDASer_RetriesUnavailable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*15)
	t.Cleanup(cancel)

	ds := ds_sync.MutexWrap(datastore.NewMapDatastore())
	chain := headertest.NewChain(t, 1, 4, 2, 4)
	hstore := headertest.NewStore(headersOf(chain)...)
	f := newBlockFetcher(chain[0], chain[1], chain[3])

	clk := clock.NewMock()
	daser, results := newTestDASer(t, ds, hstore, f,
		WithBackoff(time.Second, 2, 2),
		withClock(clk),
	)
	require.NoError(t, daser.Start(ctx))
	t.Cleanup(func() {
		require.NoError(t, daser.Stop(context.Background()))
	})

	requireState(t, results, 3, 3, Unavailable)
	require.Eventually(t, func() bool {
		stats, err := daser.SamplingStats(ctx)
		return err == nil && len(stats.Failed) == 1
	}, time.Second*5, time.Millisecond*20)

	// the cells become reachable later
	f.add(chain[2])
	require.Eventually(t, func() bool {
		clk.Add(time.Second)
		state, err := results.State(ctx, 3)
		return err == nil && state == Done
	}, time.Second*10, time.Millisecond*50)
	require.NoError(t, daser.WaitCatchUp(ctx))
}

func TestNewDASer_InvalidOption(t *testing.T) {
	ds := ds_sync.MutexWrap(datastore.NewMapDatastore())
	hstore := headertest.NewStore()
	_, err := NewDASer(nil, nil, hstore, hstore, ds, WithSamplingRange(0))
	assert.ErrorIs(t, err, ErrInvalidOption)
}
