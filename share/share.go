package share

import (
	"errors"
	"fmt"
	"sort"
)

const (
	// CellSize is the system-wide size of a cell's data, without namespace or proof.
	CellSize = 32
	// MaxCols is the maximum width of an extended matrix. The erasure code works over GF(2^8),
	// which bounds the total amount of shards in a row.
	MaxCols = 256
)

// ErrInvalidCell is returned when a cell is malformed regardless of any commitment.
var ErrInvalidCell = errors.New("share: invalid cell")

// Position addresses a single cell of the extended matrix.
type Position struct {
	Row uint16 `json:"row"`
	Col uint16 `json:"col"`
}

// String implements fmt.Stringer.
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Row, p.Col)
}

// Less reports whether p precedes other in row-major order.
func (p Position) Less(other Position) bool {
	if p.Row != other.Row {
		return p.Row < other.Row
	}
	return p.Col < other.Col
}

// SortPositions sorts positions in row-major order.
func SortPositions(positions []Position) {
	sort.Slice(positions, func(i, j int) bool {
		return positions[i].Less(positions[j])
	})
}

// Cell is a single fixed-size unit of the extended matrix together with the serialized proof of
// its inclusion under the row commitment.
type Cell struct {
	Position Position `json:"position"`
	Data     []byte   `json:"data"`
	Proof    []byte   `json:"proof"`
}

// Validate checks that the cell is well-formed.
func (c Cell) Validate() error {
	if len(c.Data) != CellSize {
		return fmt.Errorf("%w: data size %d, expected %d", ErrInvalidCell, len(c.Data), CellSize)
	}
	if len(c.Proof) == 0 {
		return fmt.Errorf("%w: empty proof", ErrInvalidCell)
	}
	return nil
}

// MarshalBinary encodes the cell content as data followed by the proof.
// The position is not part of the encoding as it is carried by the lookup key.
func (c Cell) MarshalBinary() ([]byte, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(c.Data)+len(c.Proof))
	out = append(out, c.Data...)
	return append(out, c.Proof...), nil
}

// UnmarshalCell decodes a cell previously encoded with MarshalBinary.
func UnmarshalCell(pos Position, value []byte) (Cell, error) {
	if len(value) <= CellSize {
		return Cell{}, fmt.Errorf("%w: encoded size %d", ErrInvalidCell, len(value))
	}
	cell := Cell{
		Position: pos,
		Data:     append([]byte(nil), value[:CellSize]...),
		Proof:    append([]byte(nil), value[CellSize:]...),
	}
	return cell, nil
}
