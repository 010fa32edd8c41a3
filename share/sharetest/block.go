package sharetest

import (
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/klauspost/reedsolomon"
	"github.com/stretchr/testify/require"

	"github.com/availproject/avail-light-go/header"
	"github.com/availproject/avail-light-go/share"
)

// App holds the extrinsics an application submits to a block.
type App struct {
	ID         uint32
	Extrinsics [][]byte
}

// Block is a fully built extended matrix along with the header committing to it.
type Block struct {
	Header *header.BlockHeader
	// Cells of the extended matrix indexed as [row][col].
	Cells [][]share.Cell
	Apps  map[uint32][][]byte
}

// Cell returns the cell at the given position.
func (b *Block) Cell(pos share.Position) share.Cell {
	return b.Cells[pos.Row][pos.Col]
}

// AllPositions lists every position of the extended matrix in row-major order.
func (b *Block) AllPositions() []share.Position {
	out := make([]share.Position, 0, b.Header.TotalCells())
	for r := range b.Cells {
		for c := range b.Cells[r] {
			out = append(out, share.Position{Row: uint16(r), Col: uint16(c)})
		}
	}
	return out
}

// NewBlock lays out the applications' extrinsics over the data half of a rows x cols matrix,
// extends every row with parity and commits to it. It uses require.TestingT to be able to take
// both a *testing.T and a *testing.B.
func NewBlock(t require.TestingT, number uint32, rows, cols uint16, apps ...App) *Block {
	require.True(t, cols%2 == 0 && cols > 0 && rows > 0, "invalid matrix %dx%d", rows, cols)
	sort.Slice(apps, func(i, j int) bool { return apps[i].ID < apps[j].ID })

	dataCols := int(cols / 2)
	capacity := int(rows) * dataCols
	data := make([][]byte, capacity)

	lookup := header.AppLookup{}
	appData := make(map[uint32][][]byte, len(apps))
	var cursor int
	for _, app := range apps {
		segment := share.EncodeSegment(app.Extrinsics)
		require.LessOrEqual(t, cursor+len(segment)/share.CellSize, capacity,
			"application %d does not fit into the matrix", app.ID)
		lookup.Index = append(lookup.Index, header.AppDataIndex{AppID: app.ID, Start: uint32(cursor)})
		for off := 0; off < len(segment); off += share.CellSize {
			data[cursor] = segment[off : off+share.CellSize]
			cursor++
		}
		appData[app.ID] = app.Extrinsics
	}
	lookup.Size = uint32(cursor)
	for i := cursor; i < capacity; i++ {
		data[i] = make([]byte, share.CellSize)
	}

	enc, err := reedsolomon.New(dataCols, dataCols)
	require.NoError(t, err)

	hdr := &header.BlockHeader{
		Number:      number,
		ParentHash:  make([]byte, 32),
		Rows:        rows,
		Cols:        cols,
		Commitments: make([][]byte, rows),
		AppLookup:   lookup,
	}
	cells := make([][]share.Cell, rows)
	for r := 0; r < int(rows); r++ {
		shards := make([][]byte, cols)
		copy(shards, data[r*dataCols:(r+1)*dataCols])
		for c := dataCols; c < int(cols); c++ {
			shards[c] = make([]byte, share.CellSize)
		}
		require.NoError(t, enc.Encode(shards))

		tree := share.NewTree()
		for c, shard := range shards {
			ns := hdr.NamespaceAt(share.Position{Row: uint16(r), Col: uint16(c)})
			leaf := append(append(make([]byte, 0, share.NamespaceSize+len(shard)), ns...), shard...)
			require.NoError(t, tree.Push(leaf))
		}
		hdr.Commitments[r], err = tree.Root()
		require.NoError(t, err)

		cells[r] = make([]share.Cell, cols)
		for c, shard := range shards {
			proof, err := tree.Prove(c)
			require.NoError(t, err)
			bin, err := share.MarshalProof(proof)
			require.NoError(t, err)
			cells[r][c] = share.Cell{
				Position: share.Position{Row: uint16(r), Col: uint16(c)},
				Data:     shard,
				Proof:    bin,
			}
		}
	}
	require.NoError(t, hdr.ValidateBasic())

	return &Block{Header: hdr, Cells: cells, Apps: appData}
}

// RandBlock builds a block filled with random extrinsics of the given applications.
func RandBlock(t require.TestingT, number uint32, rows, cols uint16, appIDs ...uint32) *Block {
	capacity := int(rows) * int(cols/2) * share.CellSize
	// leave room for the segment framing of every application
	perApp := capacity / (len(appIDs) + 1) / 2

	apps := make([]App, 0, len(appIDs))
	for _, id := range appIDs {
		apps = append(apps, App{ID: id, Extrinsics: RandExtrinsics(id, 3, perApp/3)})
	}
	return NewBlock(t, number, rows, cols, apps...)
}

// RandExtrinsics generates count data submissions of the given application, each carrying up to
// size random bytes.
func RandExtrinsics(appID uint32, count, size int) [][]byte {
	out := make([][]byte, count)
	for i := range out {
		rndMu.Lock()
		payload := make([]byte, 1+rnd.Intn(max(size-16, 1)))
		rnd.Read(payload)
		rndMu.Unlock()
		out[i] = share.EncodeExtrinsic(appID, payload)
	}
	return out
}

var (
	rnd   = rand.New(rand.NewSource(time.Now().Unix())) //nolint:gosec
	rndMu sync.Mutex
)
