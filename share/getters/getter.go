package getters

import (
	"context"
	"sort"

	"go.opentelemetry.io/otel"

	"github.com/availproject/avail-light-go/header"
	"github.com/availproject/avail-light-go/share"
)

var tracer = otel.Tracer("share/getters")

// Getter retrieves cells of a block from a single source. Positions the source does not have are
// omitted from the result, so a partial result is not an error.
//
//go:generate mockgen -destination=mocks/getter.go -package=mocks . Getter,Putter
type Getter interface {
	GetCells(ctx context.Context, hdr *header.BlockHeader, positions []share.Position) ([]share.Cell, error)
}

// Putter stores cells of a block into a source so that later lookups are served from it.
type Putter interface {
	PutCells(ctx context.Context, hdr *header.BlockHeader, cells []share.Cell) error
}

// Status reports the outcome of fetching a single position.
type Status uint8

const (
	// NotFoundAnywhere means no source returned the cell.
	NotFoundAnywhere Status = iota
	// NotFoundOnCache means the cache missed and the fallback is yet to be consulted.
	NotFoundOnCache
	// Found means the cell was returned by one of the sources.
	Found
)

func (s Status) String() string {
	switch s {
	case Found:
		return "found"
	case NotFoundOnCache:
		return "not_found_on_cache"
	default:
		return "not_found_anywhere"
	}
}

// Source names where a found cell came from.
type Source uint8

const (
	SourceNone Source = iota
	SourceCache
	SourceRPC
)

func (s Source) String() string {
	switch s {
	case SourceCache:
		return "cache"
	case SourceRPC:
		return "rpc"
	default:
		return "none"
	}
}

// FetchResult is the outcome of fetching a single position.
type FetchResult struct {
	Status Status
	Source Source
	Cell   share.Cell
}

// Results holds exactly one FetchResult per distinct requested position.
type Results map[share.Position]FetchResult

// Found returns the found cells in row-major order.
func (r Results) Found() []share.Cell {
	cells := make([]share.Cell, 0, len(r))
	for _, res := range r {
		if res.Status == Found {
			cells = append(cells, res.Cell)
		}
	}
	sortCells(cells)
	return cells
}

// Count reports how many results carry the given status.
func (r Results) Count(status Status) int {
	var n int
	for _, res := range r {
		if res.Status == status {
			n++
		}
	}
	return n
}

// CountFrom reports how many cells were found in the given source.
func (r Results) CountFrom(src Source) int {
	var n int
	for _, res := range r {
		if res.Status == Found && res.Source == src {
			n++
		}
	}
	return n
}

func sortCells(cells []share.Cell) {
	sort.Slice(cells, func(i, j int) bool {
		return cells[i].Position.Less(cells[j].Position)
	})
}
