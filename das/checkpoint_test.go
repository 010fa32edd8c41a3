package das

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/ipfs/go-datastore"
	"github.com/ipfs/go-datastore/sync"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckpointStore(t *testing.T) {
	ds := newCheckpointStore(sync.MutexWrap(datastore.NewMapDatastore()), clock.New())
	cp := checkpoint{
		SampleFrom:  1,
		NetworkHead: 6,
		Failed:      map[uint64]int{2: 1, 3: 2},
		Workers: []workerCheckpoint{
			{
				From:    1,
				To:      2,
				JobType: catchupJob,
			},
			{
				From:    5,
				To:      10,
				JobType: recentJob,
			},
		},
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	t.Cleanup(cancel)

	_, err := ds.load(ctx)
	assert.ErrorIs(t, err, datastore.ErrNotFound)

	assert.NoError(t, ds.store(ctx, cp))
	got, err := ds.load(ctx)
	require.NoError(t, err)
	assert.Equal(t, cp, got)
}

func TestCheckpointStore_Background(t *testing.T) {
	clk := clock.NewMock()
	ds := newCheckpointStore(sync.MutexWrap(datastore.NewMapDatastore()), clk)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	t.Cleanup(cancel)

	runCtx, stop := context.WithCancel(ctx)
	calls := make(chan struct{}, 1)
	go ds.runBackgroundStore(runCtx, time.Minute, func(context.Context) (checkpoint, error) {
		defer func() {
			select {
			case calls <- struct{}{}:
			default:
			}
		}()
		return checkpoint{SampleFrom: 10, NetworkHead: 12}, nil
	})

	// the ticker might not be registered with the mock yet
	require.Eventually(t, func() bool {
		clk.Add(time.Minute)
		select {
		case <-calls:
			return true
		default:
			return false
		}
	}, time.Second*3, time.Millisecond*10)

	stop()
	require.NoError(t, ds.wait(ctx))

	got, err := ds.load(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 10, got.SampleFrom)
}

func TestNewCheckpoint(t *testing.T) {
	stats := SamplingStats{
		CatchupHead: 40,
		NetworkHead: 50,
		Failed:      map[uint64]int{3: 1},
		Workers: []WorkerStats{
			{JobType: catchupJob, Curr: 35, From: 31, To: 40},
			{JobType: recentJob, Curr: 50, From: 50, To: 50},
			{JobType: retryJob, Curr: 3, From: 3, To: 3},
		},
	}

	cp := newCheckpoint(stats)
	assert.EqualValues(t, 41, cp.SampleFrom)
	assert.EqualValues(t, 50, cp.NetworkHead)
	assert.Equal(t, stats.Failed, cp.Failed)
	assert.Equal(t, []workerCheckpoint{
		{From: 35, To: 40, JobType: catchupJob},
		{From: 50, To: 50, JobType: recentJob},
	}, cp.Workers)
	// 40 handed out, minus 6 + 1 in progress, minus 1 failed
	assert.EqualValues(t, 32, cp.totalSampled())

	assert.Zero(t, checkpoint{}.totalSampled())
}
