package getters

import (
	"context"
	"sync"
	"time"

	"github.com/gammazero/workerpool"
	logging "github.com/ipfs/go-log/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/availproject/avail-light-go/header"
	"github.com/availproject/avail-light-go/libs/utils"
	"github.com/availproject/avail-light-go/share"
)

var log = logging.Logger("share/getters")

// Fetcher retrieves cells from the cache first and falls back to the node for the positions the
// cache misses. Cells served by the node are stored back into the cache in the background, so
// subsequent lookups of other clients are served by the cache.
type Fetcher struct {
	cache  Getter
	putter Putter
	rpc    Getter

	params Parameters
	// poolMu guards submissions against a concurrent Stop
	poolMu sync.RWMutex
	pool   *workerpool.WorkerPool

	metrics *metrics
}

// NewFetcher creates a new Fetcher. Both putter and rpc may be nil, which disables back-fill
// and fallback respectively.
func NewFetcher(cache Getter, putter Putter, rpc Getter, params Parameters) *Fetcher {
	return &Fetcher{
		cache:  cache,
		putter: putter,
		rpc:    rpc,
		params: params,
		pool:   workerpool.New(params.PutWorkers),
	}
}

// Stop waits for pending back-fill tasks to finish.
func (f *Fetcher) Stop(context.Context) error {
	f.poolMu.Lock()
	defer f.poolMu.Unlock()
	f.pool.StopWait()
	return nil
}

// Fetch returns exactly one result per distinct requested position. Failures of single lookups
// never abort the rest, they only leave their positions not found.
func (f *Fetcher) Fetch(ctx context.Context, hdr *header.BlockHeader, positions []share.Position) Results {
	ctx, span := tracer.Start(ctx, "fetcher/fetch", trace.WithAttributes(
		attribute.Int64("block", int64(hdr.Number)),
		attribute.Int("positions", len(positions)),
	))
	defer span.End()

	results := make(Results, len(positions))
	pending := make([]share.Position, 0, len(positions))
	for _, pos := range positions {
		if _, ok := results[pos]; ok {
			continue
		}
		results[pos] = FetchResult{Status: NotFoundAnywhere}
		pending = append(pending, pos)
	}

	// leave the fallback a share of the deadline
	cacheCtx, cancel := ctx, context.CancelFunc(func() {})
	if f.rpc != nil && !f.params.DisableRPC {
		cacheCtx, cancel = utils.CtxWithSplitTimeout(ctx, 2, 0)
	}
	start := time.Now()
	cached := f.fetchFrom(cacheCtx, f.cache, hdr, pending, 1, f.params.CacheParallelism, f.params.CacheTimeout)
	cancel()
	f.metrics.observeStage(ctx, SourceCache, len(pending), len(cached), time.Since(start))
	pending = recordFound(results, pending, cached, SourceCache, NotFoundOnCache)

	if len(pending) == 0 {
		return results
	}
	if f.rpc == nil || f.params.DisableRPC {
		// without the fallback a cache miss is final
		for _, pos := range pending {
			results[pos] = FetchResult{Status: NotFoundAnywhere}
		}
		return results
	}

	start = time.Now()
	fetched := f.fetchFrom(ctx, f.rpc, hdr, pending, f.params.RPCBatchSize, f.params.RPCParallelism, f.params.RPCTimeout)
	f.metrics.observeStage(ctx, SourceRPC, len(pending), len(fetched), time.Since(start))
	pending = recordFound(results, pending, fetched, SourceRPC, NotFoundAnywhere)

	span.SetAttributes(
		attribute.Int("cache", len(cached)),
		attribute.Int("rpc", len(fetched)),
		attribute.Int("missing", len(pending)),
	)
	log.Debugw("fetched cells",
		"block", hdr.Number,
		"cache", len(cached),
		"rpc", len(fetched),
		"missing", len(pending),
	)

	f.backfill(hdr, fetched)
	return results
}

// fetchFrom looks up positions in batches, running up to parallelism lookups at once, each bounded
// by timeout. Only cells at requested positions are accepted.
func (f *Fetcher) fetchFrom(
	ctx context.Context,
	getter Getter,
	hdr *header.BlockHeader,
	positions []share.Position,
	batchSize, parallelism int,
	timeout time.Duration,
) map[share.Position]share.Cell {
	var (
		mu    sync.Mutex
		found = make(map[share.Position]share.Cell, len(positions))
		eg    errgroup.Group
	)
	if getter == nil {
		return found
	}
	eg.SetLimit(parallelism)

	for from := 0; from < len(positions); from += batchSize {
		batch := positions[from:min(from+batchSize, len(positions))]
		eg.Go(func() error {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			cells, err := getter.GetCells(ctx, hdr, batch)
			if err != nil {
				log.Debugw("lookup failed", "block", hdr.Number, "positions", len(batch), "err", err)
				return nil
			}

			wanted := make(map[share.Position]struct{}, len(batch))
			for _, pos := range batch {
				wanted[pos] = struct{}{}
			}
			mu.Lock()
			defer mu.Unlock()
			for _, cell := range cells {
				if _, ok := wanted[cell.Position]; ok {
					found[cell.Position] = cell
				}
			}
			return nil
		})
	}
	_ = eg.Wait()
	return found
}

// recordFound stores cells found by src and marks the rest with miss. It returns positions still missing.
func recordFound(
	results Results,
	pending []share.Position,
	found map[share.Position]share.Cell,
	src Source,
	miss Status,
) []share.Position {
	missing := make([]share.Position, 0, len(pending))
	for _, pos := range pending {
		cell, ok := found[pos]
		if !ok {
			results[pos] = FetchResult{Status: miss}
			missing = append(missing, pos)
			continue
		}
		results[pos] = FetchResult{Status: Found, Source: src, Cell: cell}
	}
	return missing
}

// backfill schedules storing of well-formed cells into the cache without blocking the caller.
func (f *Fetcher) backfill(hdr *header.BlockHeader, found map[share.Position]share.Cell) {
	if f.putter == nil || len(found) == 0 {
		return
	}

	cells := make([]share.Cell, 0, len(found))
	for _, cell := range found {
		if hdr.Contains(cell.Position) && cell.Validate() == nil {
			cells = append(cells, cell)
		}
	}
	sortCells(cells)

	f.poolMu.RLock()
	defer f.poolMu.RUnlock()
	if f.pool.Stopped() {
		log.Debugw("fetcher stopped, skipping back-fill", "block", hdr.Number, "cells", len(cells))
		return
	}
	for from := 0; from < len(cells); from += f.params.PutBatchSize {
		batch := cells[from:min(from+f.params.PutBatchSize, len(cells))]
		f.pool.Submit(func() {
			ctx, cancel := context.WithTimeout(context.Background(), f.params.CacheTimeout*time.Duration(len(batch)))
			defer cancel()

			err := f.putter.PutCells(ctx, hdr, batch)
			f.metrics.observeBackfill(ctx, len(batch), err != nil)
			if err != nil {
				log.Warnw("storing cells into cache", "block", hdr.Number, "cells", len(batch), "err", err)
			}
		})
	}
}
