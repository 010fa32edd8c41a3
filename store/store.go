package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/ipfs/go-datastore"
	"github.com/ipfs/go-datastore/namespace"
	logging "github.com/ipfs/go-log/v2"

	"github.com/availproject/avail-light-go/libs/utils"
	"github.com/availproject/avail-light-go/share"
)

var log = logging.Logger("store")

var ErrNotFound = errors.New("store: record not found")

var (
	storePrefix   = datastore.NewKey("results")
	confidenceKey = datastore.NewKey("confidence")
	appDataKey    = datastore.NewKey("appdata")
	stateKey      = datastore.NewKey("state")
	latestKey     = datastore.NewKey("latest")
)

// Commit is the outcome of a single processing pass over a block.
type Commit struct {
	Block      uint32
	State      BlockState
	Confidence *ConfidenceRecord
	AppData    *share.AppData
}

// Store persists per-block processing results. All results of a pass are written atomically and
// merged monotonically with whatever a previous pass stored: confidence and block state never
// decrease, application data once stored is kept. Store is thread-safe.
type Store struct {
	ds datastore.Batching

	// stripLock serializes read-modify-write cycles of the same block
	stripLock *utils.StripLock
	latestMu  sync.Mutex

	metrics *metrics
}

// NewStore creates a new Store over the given datastore.
func NewStore(ds datastore.Batching) *Store {
	return &Store{
		ds:        namespace.Wrap(ds, storePrefix),
		stripLock: utils.NewStripLock(256),
	}
}

// Commit merges results of a processing pass with the stored ones.
func (s *Store) Commit(ctx context.Context, c Commit) (err error) {
	tNow := time.Now()
	defer func() {
		s.metrics.observeCommit(ctx, time.Since(tNow), err != nil)
	}()

	lk := s.stripLock.ByBlock(c.Block)
	lk.Lock()
	defer lk.Unlock()

	batch, err := s.ds.Batch(ctx)
	if err != nil {
		return fmt.Errorf("store: creating batch: %w", err)
	}

	state, err := s.State(ctx, c.Block)
	if err != nil {
		return err
	}
	if c.State > state {
		if err = batch.Put(ctx, blockKey(stateKey, c.Block), []byte{byte(c.State)}); err != nil {
			return fmt.Errorf("store: putting state: %w", err)
		}
	}

	if c.Confidence != nil {
		merged := *c.Confidence
		stored, err := s.Confidence(ctx, c.Block)
		switch {
		case errors.Is(err, ErrNotFound):
		case err != nil:
			return err
		default:
			merged = stored.Merge(merged)
		}
		if stored == nil || merged != *stored {
			bin, err := json.Marshal(merged)
			if err != nil {
				return fmt.Errorf("store: marshaling confidence: %w", err)
			}
			if err = batch.Put(ctx, blockKey(confidenceKey, c.Block), bin); err != nil {
				return fmt.Errorf("store: putting confidence: %w", err)
			}
		}
	}

	if c.AppData != nil {
		has, err := s.ds.Has(ctx, blockKey(appDataKey, c.Block))
		if err != nil {
			return fmt.Errorf("store: checking app data: %w", err)
		}
		if !has {
			bin, err := json.Marshal(c.AppData)
			if err != nil {
				return fmt.Errorf("store: marshaling app data: %w", err)
			}
			if err = batch.Put(ctx, blockKey(appDataKey, c.Block), bin); err != nil {
				return fmt.Errorf("store: putting app data: %w", err)
			}
		}
	}

	s.latestMu.Lock()
	defer s.latestMu.Unlock()
	latest, err := s.LatestProcessed(ctx)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if errors.Is(err, ErrNotFound) || c.Block > latest {
		if err = batch.Put(ctx, latestKey, binary.BigEndian.AppendUint32(nil, c.Block)); err != nil {
			return fmt.Errorf("store: putting latest block: %w", err)
		}
	}

	if err = batch.Commit(ctx); err != nil {
		return fmt.Errorf("store: committing block %d: %w", c.Block, err)
	}
	log.Debugw("committed block results", "block", c.Block, "state", c.State)
	return nil
}

// Confidence returns the stored confidence of the block.
func (s *Store) Confidence(ctx context.Context, block uint32) (*ConfidenceRecord, error) {
	bin, err := s.get(ctx, blockKey(confidenceKey, block))
	if err != nil {
		return nil, err
	}
	rec := &ConfidenceRecord{}
	if err = json.Unmarshal(bin, rec); err != nil {
		return nil, fmt.Errorf("store: unmarshaling confidence of block %d: %w", block, err)
	}
	return rec, nil
}

// AppData returns the stored application data of the block.
func (s *Store) AppData(ctx context.Context, block uint32) (*share.AppData, error) {
	bin, err := s.get(ctx, blockKey(appDataKey, block))
	if err != nil {
		return nil, err
	}
	data := &share.AppData{}
	if err = json.Unmarshal(bin, data); err != nil {
		return nil, fmt.Errorf("store: unmarshaling app data of block %d: %w", block, err)
	}
	return data, nil
}

// State returns the state of the block, Unknown if it was never processed.
func (s *Store) State(ctx context.Context, block uint32) (BlockState, error) {
	bin, err := s.get(ctx, blockKey(stateKey, block))
	switch {
	case errors.Is(err, ErrNotFound):
		return Unknown, nil
	case err != nil:
		return Unknown, err
	case len(bin) != 1:
		return Unknown, fmt.Errorf("store: malformed state of block %d", block)
	}
	return BlockState(bin[0]), nil
}

// LatestProcessed returns the highest block number a pass was committed for.
func (s *Store) LatestProcessed(ctx context.Context) (uint32, error) {
	bin, err := s.get(ctx, latestKey)
	if err != nil {
		return 0, err
	}
	if len(bin) != 4 {
		return 0, errors.New("store: malformed latest block")
	}
	return binary.BigEndian.Uint32(bin), nil
}

func (s *Store) get(ctx context.Context, key datastore.Key) ([]byte, error) {
	tNow := time.Now()
	bin, err := s.ds.Get(ctx, key)
	s.metrics.observeGet(ctx, time.Since(tNow), err != nil && !errors.Is(err, datastore.ErrNotFound))
	switch {
	case errors.Is(err, datastore.ErrNotFound):
		return nil, ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("store: getting %s: %w", key, err)
	}
	return bin, nil
}

func blockKey(kind datastore.Key, block uint32) datastore.Key {
	return kind.ChildString(strconv.FormatUint(uint64(block), 10))
}
