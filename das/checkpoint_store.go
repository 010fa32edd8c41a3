package das

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/ipfs/go-datastore"
	"github.com/ipfs/go-datastore/namespace"
)

var (
	storePrefix   = datastore.NewKey("das")
	checkpointKey = datastore.NewKey("checkpoint")
)

// checkpointStore persists the sampling checkpoint under the `das` prefix.
type checkpointStore struct {
	datastore.Datastore
	clock clock.Clock
	done
}

func newCheckpointStore(ds datastore.Datastore, clk clock.Clock) checkpointStore {
	return checkpointStore{
		Datastore: namespace.Wrap(ds, storePrefix),
		clock:     clk,
		done:      newDone("checkpoint store"),
	}
}

func (s *checkpointStore) load(ctx context.Context) (checkpoint, error) {
	bs, err := s.Get(ctx, checkpointKey)
	if err != nil {
		return checkpoint{}, err
	}

	cp := checkpoint{}
	err = json.Unmarshal(bs, &cp)
	return cp, err
}

func (s *checkpointStore) store(ctx context.Context, cp checkpoint) error {
	bs, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}

	if err = s.Put(ctx, checkpointKey, bs); err != nil {
		return err
	}

	log.Infow("stored checkpoint", "checkpoint", cp.String())
	return nil
}

// runBackgroundStore periodically saves the checkpoint, so a force quit loses
// at most one interval of progress. A zero interval disables it.
func (s *checkpointStore) runBackgroundStore(
	ctx context.Context,
	storeInterval time.Duration,
	getCheckpoint func(ctx context.Context) (checkpoint, error),
) {
	defer s.indicateDone()

	if storeInterval == 0 {
		log.Info("background checkpoint store is disabled")
		return
	}

	ticker := s.clock.Ticker(storeInterval)
	defer ticker.Stop()

	var prev uint64
	for {
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}

		cp, err := getCheckpoint(ctx)
		if err != nil {
			log.Debug("coordinator checkpoint is unavailable")
			continue
		}
		if cp.SampleFrom > prev {
			if err = s.store(ctx, cp); err != nil {
				log.Errorw("storing checkpoint", "err", err)
			}
			prev = cp.SampleFrom
		}
	}
}
