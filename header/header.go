package header

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/celestiaorg/go-square/merkle"
	"github.com/multiformats/go-varint"
	"golang.org/x/crypto/blake2b"

	"github.com/availproject/avail-light-go/share"
)

// ErrInvalidHeader is returned by ValidateBasic for headers that cannot describe a block.
var ErrInvalidHeader = errors.New("header: invalid header")

// BlockHeader is the finalized block header as announced by the chain. Besides the chain linkage
// it commits to an extended matrix of cells: one commitment per row, and the layout of the data
// region per application.
type BlockHeader struct {
	Number     uint32 `json:"number"`
	ParentHash []byte `json:"parent_hash"`
	// Rows of the extended matrix.
	Rows uint16 `json:"rows"`
	// Cols of the extended matrix. The left half of every row is data, the right half parity.
	Cols uint16 `json:"cols"`
	// Commitments holds the root of every extended row.
	Commitments [][]byte  `json:"commitments"`
	AppLookup   AppLookup `json:"app_lookup"`
}

// Height returns the block number widened to a height.
func (h *BlockHeader) Height() uint64 {
	return uint64(h.Number)
}

// DataCols reports the amount of data cells in every row.
func (h *BlockHeader) DataCols() uint16 {
	return h.Cols / 2
}

// TotalCells reports the size of the extended matrix.
func (h *BlockHeader) TotalCells() int {
	return int(h.Rows) * int(h.Cols)
}

// IsEmpty reports whether the block commits to no cells at all.
func (h *BlockHeader) IsEmpty() bool {
	return h.Rows == 0 || h.Cols == 0
}

// Contains reports whether the position lies within the extended matrix.
func (h *BlockHeader) Contains(pos share.Position) bool {
	return pos.Row < h.Rows && pos.Col < h.Cols
}

// Hash returns the blake2b-256 hash of the canonical header encoding.
func (h *BlockHeader) Hash() []byte {
	hash := blake2b.Sum256(h.marshalCanonical())
	return hash[:]
}

// DataRoot returns the merkle root over row commitments. It uniquely identifies the extended
// matrix and seeds sampling.
func (h *BlockHeader) DataRoot() []byte {
	return merkle.HashFromByteSlices(h.Commitments)
}

// String implements fmt.Stringer.
func (h *BlockHeader) String() string {
	return fmt.Sprintf("block %d (%dx%d, %d apps)", h.Number, h.Rows, h.Cols, len(h.AppLookup.Index))
}

// ValidateBasic performs stateless checks over the header.
func (h *BlockHeader) ValidateBasic() error {
	if h.IsEmpty() {
		if h.Rows != 0 || h.Cols != 0 || len(h.Commitments) != 0 || h.AppLookup.Size != 0 {
			return fmt.Errorf("%w: block %d: partially empty matrix %dx%d",
				ErrInvalidHeader, h.Number, h.Rows, h.Cols)
		}
		return nil
	}
	if h.Cols%2 != 0 || h.Cols > share.MaxCols {
		return fmt.Errorf("%w: block %d: unsupported width %d", ErrInvalidHeader, h.Number, h.Cols)
	}
	if len(h.Commitments) != int(h.Rows) {
		return fmt.Errorf("%w: block %d: %d commitments for %d rows",
			ErrInvalidHeader, h.Number, len(h.Commitments), h.Rows)
	}
	for i, c := range h.Commitments {
		if len(c) == 0 {
			return fmt.Errorf("%w: block %d: empty commitment of row %d", ErrInvalidHeader, h.Number, i)
		}
	}
	if err := h.AppLookup.validate(int(h.Rows) * int(h.DataCols())); err != nil {
		return fmt.Errorf("%w: block %d: %w", ErrInvalidHeader, h.Number, err)
	}
	return nil
}

// NamespaceAt returns the namespace a cell at the given position is committed under.
func (h *BlockHeader) NamespaceAt(pos share.Position) share.Namespace {
	if pos.Col >= h.DataCols() {
		return share.ParityNamespace
	}
	idx := uint32(pos.Row)*uint32(h.DataCols()) + uint32(pos.Col)
	appID, ok := h.AppLookup.owner(idx)
	if !ok {
		return share.TailPaddingNamespace
	}
	return share.AppNamespace(appID)
}

// AppRows returns the rows holding data of the given application in ascending order.
func (h *BlockHeader) AppRows(appID uint32) []uint16 {
	start, end, ok := h.AppLookup.Range(appID)
	if !ok || h.DataCols() == 0 {
		return nil
	}
	first, last := start/uint32(h.DataCols()), (end-1)/uint32(h.DataCols())
	rows := make([]uint16, 0, last-first+1)
	for r := first; r <= last; r++ {
		rows = append(rows, uint16(r))
	}
	return rows
}

func (h *BlockHeader) marshalCanonical() []byte {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.BigEndian, h.Number)
	writeBytes(&buf, h.ParentHash)
	_ = binary.Write(&buf, binary.BigEndian, h.Rows)
	_ = binary.Write(&buf, binary.BigEndian, h.Cols)
	buf.Write(varint.ToUvarint(uint64(len(h.Commitments))))
	for _, c := range h.Commitments {
		writeBytes(&buf, c)
	}
	_ = binary.Write(&buf, binary.BigEndian, h.AppLookup.Size)
	buf.Write(varint.ToUvarint(uint64(len(h.AppLookup.Index))))
	for _, idx := range h.AppLookup.Index {
		_ = binary.Write(&buf, binary.BigEndian, idx.AppID)
		_ = binary.Write(&buf, binary.BigEndian, idx.Start)
	}
	return buf.Bytes()
}

func writeBytes(buf *bytes.Buffer, b []byte) {
	buf.Write(varint.ToUvarint(uint64(len(b))))
	buf.Write(b)
}
