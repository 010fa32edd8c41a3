// Package recovery restores application data from a subset of verified cells using the row
// erasure code.
package recovery

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	logging "github.com/ipfs/go-log/v2"
	"github.com/klauspost/reedsolomon"
	"golang.org/x/sync/errgroup"

	"github.com/availproject/avail-light-go/header"
	"github.com/availproject/avail-light-go/share"
)

var log = logging.Logger("share/recovery")

// ErrDeferred is returned when too few cells are present to decode some of the application rows.
// Decoding may succeed once more cells are gathered.
type ErrDeferred struct {
	Rows []uint16
}

func (e *ErrDeferred) Error() string {
	return fmt.Sprintf("recovery: not enough cells to decode rows %v", e.Rows)
}

// ErrFailed is returned when cells were sufficient but do not decode into application data.
type ErrFailed struct {
	Err error
}

func (e *ErrFailed) Error() string {
	return fmt.Sprintf("recovery: decoding failed: %v", e.Err)
}

func (e *ErrFailed) Unwrap() error {
	return e.Err
}

// Reconstructor decodes application data out of verified cells. It is safe for concurrent use.
type Reconstructor struct {
	parallelism int

	encMu    sync.Mutex
	encoders map[int]reedsolomon.Encoder
}

// NewReconstructor creates a Reconstructor decoding up to parallelism rows at once.
func NewReconstructor(parallelism int) *Reconstructor {
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}
	return &Reconstructor{
		parallelism: parallelism,
		encoders:    make(map[int]reedsolomon.Encoder),
	}
}

// Threshold reports the amount of distinct cells a row requires to be decoded.
func Threshold(hdr *header.BlockHeader) int {
	return int(hdr.DataCols())
}

// Reconstruct recovers the extrinsics of the application from cells, which must already be
// verified against the header. Cells outside of the application rows are ignored. Reconstruct
// neither mutates nor retains cells, so repeated calls over the same input yield the same result.
func (r *Reconstructor) Reconstruct(
	ctx context.Context,
	hdr *header.BlockHeader,
	appID uint32,
	cells []share.Cell,
) (*share.AppData, error) {
	data := &share.AppData{AppID: appID, BlockNumber: hdr.Number}
	start, end, ok := hdr.AppLookup.Range(appID)
	if !ok {
		return data, nil
	}

	appRows := hdr.AppRows(appID)
	byRow := make(map[uint16][][]byte, len(appRows))
	for _, row := range appRows {
		byRow[row] = make([][]byte, hdr.Cols)
	}
	for _, cell := range cells {
		shards, ok := byRow[cell.Position.Row]
		if !ok || !hdr.Contains(cell.Position) {
			continue
		}
		shards[cell.Position.Col] = cell.Data
	}

	var deferred []uint16
	for _, row := range appRows {
		if countPresent(byRow[row]) < Threshold(hdr) {
			deferred = append(deferred, row)
		}
	}
	if len(deferred) > 0 {
		return nil, &ErrDeferred{Rows: deferred}
	}

	enc, err := r.encoder(int(hdr.DataCols()))
	if err != nil {
		return nil, &ErrFailed{Err: err}
	}

	decoded := make([][][]byte, len(appRows))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(r.parallelism)
	for i, row := range appRows {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			shards, err := decodeRow(enc, byRow[row])
			if err != nil {
				return &ErrFailed{Err: fmt.Errorf("row %d: %w", row, err)}
			}
			decoded[i] = shards
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	dataCols := uint32(hdr.DataCols())
	firstRow := uint32(appRows[0])
	segment := make([]byte, 0, int(end-start)*share.CellSize)
	for idx := start; idx < end; idx++ {
		row, col := idx/dataCols, idx%dataCols
		segment = append(segment, decoded[row-firstRow][col]...)
	}

	data.Extrinsics, err = share.DecodeSegment(segment)
	if err != nil {
		return nil, &ErrFailed{Err: err}
	}
	log.Debugw("reconstructed app data",
		"block", hdr.Number, "app_id", appID, "rows", len(appRows), "extrinsics", len(data.Extrinsics))
	return data, nil
}

func (r *Reconstructor) encoder(dataCols int) (reedsolomon.Encoder, error) {
	r.encMu.Lock()
	defer r.encMu.Unlock()
	if enc, ok := r.encoders[dataCols]; ok {
		return enc, nil
	}
	enc, err := reedsolomon.New(dataCols, dataCols)
	if err != nil {
		return nil, err
	}
	r.encoders[dataCols] = enc
	return enc, nil
}

// decodeRow restores the whole row out of present shards and checks it is a valid codeword, so
// that rows committed inconsistently are never decoded into data.
func decodeRow(enc reedsolomon.Encoder, present [][]byte) ([][]byte, error) {
	shards := make([][]byte, len(present))
	copy(shards, present)
	if err := enc.Reconstruct(shards); err != nil {
		return nil, err
	}
	ok, err := enc.Verify(shards)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New("row is not a valid codeword")
	}
	return shards, nil
}

func countPresent(shards [][]byte) int {
	var n int
	for _, s := range shards {
		if s != nil {
			n++
		}
	}
	return n
}
