package getters

import (
	"context"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	record "github.com/libp2p/go-libp2p-record"
	"github.com/libp2p/go-libp2p/core/routing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/multierr"

	"github.com/availproject/avail-light-go/header"
	"github.com/availproject/avail-light-go/libs/utils"
	"github.com/availproject/avail-light-go/share"
)

// CellKeyNamespace prefixes DHT keys of cells, binding them to the CellValidator.
const CellKeyNamespace = "cell"

// CellKey returns the DHT key of the cell at pos of the given block.
func CellKey(block uint32, pos share.Position) string {
	return fmt.Sprintf("/%s/%d:%d:%d", CellKeyNamespace, block, pos.Row, pos.Col)
}

func parseCellKey(key string) (uint32, share.Position, error) {
	ns, rest, err := record.SplitKey(key)
	if err != nil {
		return 0, share.Position{}, err
	}
	if ns != CellKeyNamespace {
		return 0, share.Position{}, fmt.Errorf("unexpected key namespace %q", ns)
	}
	var (
		block    uint32
		row, col uint16
	)
	if _, err := fmt.Sscanf(rest, "%d:%d:%d", &block, &row, &col); err != nil {
		return 0, share.Position{}, fmt.Errorf("malformed cell key %q: %w", key, err)
	}
	return block, share.Position{Row: row, Col: col}, nil
}

// CellValidator accepts DHT records holding a well-formed cell under a well-formed key.
// Cells are immutable, so any valid record is as good as another.
type CellValidator struct{}

var _ record.Validator = CellValidator{}

func (CellValidator) Validate(key string, value []byte) error {
	_, pos, err := parseCellKey(key)
	if err != nil {
		return err
	}
	_, err = share.UnmarshalCell(pos, value)
	return err
}

func (CellValidator) Select(_ string, values [][]byte) (int, error) {
	if len(values) == 0 {
		return 0, errors.New("no values to select from")
	}
	return 0, nil
}

// DHTStore serves cells from the peer-to-peer network, fronted by a local LRU of recently seen
// records.
type DHTStore struct {
	routing routing.ValueStore
	local   *lru.Cache[string, []byte]
}

var (
	_ Getter = (*DHTStore)(nil)
	_ Putter = (*DHTStore)(nil)
)

// NewDHTStore creates a DHTStore keeping up to localSize records in memory.
func NewDHTStore(vs routing.ValueStore, localSize int) (*DHTStore, error) {
	local, err := lru.New[string, []byte](localSize)
	if err != nil {
		return nil, fmt.Errorf("creating local cell cache: %w", err)
	}
	return &DHTStore{routing: vs, local: local}, nil
}

func (s *DHTStore) GetCells(
	ctx context.Context,
	hdr *header.BlockHeader,
	positions []share.Position,
) (cells []share.Cell, err error) {
	ctx, span := tracer.Start(ctx, "dht/get-cells", trace.WithAttributes(
		attribute.Int64("block", int64(hdr.Number)),
		attribute.Int("positions", len(positions)),
	))
	defer func() {
		utils.SetStatusAndEnd(span, err)
	}()

	cells = make([]share.Cell, 0, len(positions))
	for _, pos := range positions {
		key := CellKey(hdr.Number, pos)
		value, ok := s.local.Get(key)
		if !ok {
			value, err = s.routing.GetValue(ctx, key)
			switch {
			case errors.Is(err, routing.ErrNotFound):
				continue
			case err != nil:
				if ctx.Err() != nil {
					return cells, ctx.Err()
				}
				log.Debugw("dht lookup", "key", key, "err", err)
				continue
			}
		}

		cell, err := share.UnmarshalCell(pos, value)
		if err != nil {
			log.Debugw("malformed dht record", "key", key, "err", err)
			continue
		}
		s.local.Add(key, value)
		cells = append(cells, cell)
	}
	span.SetAttributes(attribute.Int("found", len(cells)))
	return cells, nil
}

func (s *DHTStore) PutCells(ctx context.Context, hdr *header.BlockHeader, cells []share.Cell) (err error) {
	ctx, span := tracer.Start(ctx, "dht/put-cells", trace.WithAttributes(
		attribute.Int64("block", int64(hdr.Number)),
		attribute.Int("cells", len(cells)),
	))
	defer func() {
		utils.SetStatusAndEnd(span, err)
	}()

	for _, cell := range cells {
		value, merr := cell.MarshalBinary()
		if merr != nil {
			err = multierr.Append(err, merr)
			continue
		}
		key := CellKey(hdr.Number, cell.Position)
		s.local.Add(key, value)
		if perr := s.routing.PutValue(ctx, key, value); perr != nil {
			err = multierr.Append(err, fmt.Errorf("putting %s: %w", key, perr))
		}
	}
	return err
}
