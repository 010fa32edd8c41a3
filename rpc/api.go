package rpc

import (
	"context"

	"github.com/availproject/avail-light-go/header"
	"github.com/availproject/avail-light-go/share"
)

// ChainNamespace exposes finalized headers of the chain.
const ChainNamespace = "chain"

// KateNamespace exposes cells of the extended matrix along with their proofs.
const KateNamespace = "kate"

// ChainAPI is the client side of the chain namespace.
type ChainAPI struct {
	Internal struct {
		GetFinalizedHead  func(ctx context.Context) (*header.BlockHeader, error)
		GetHeaderByNumber func(ctx context.Context, number uint32) (*header.BlockHeader, error)
	}
}

// GetFinalizedHead returns the header of the latest finalized block.
func (api *ChainAPI) GetFinalizedHead(ctx context.Context) (*header.BlockHeader, error) {
	return api.Internal.GetFinalizedHead(ctx)
}

// GetHeaderByNumber returns the header of the finalized block, nil if the node does not know it.
func (api *ChainAPI) GetHeaderByNumber(ctx context.Context, number uint32) (*header.BlockHeader, error) {
	return api.Internal.GetHeaderByNumber(ctx, number)
}

// KateAPI is the client side of the kate namespace.
type KateAPI struct {
	Internal struct {
		QueryProof func(ctx context.Context, block uint32, positions []share.Position) ([]share.Cell, error)
	}
}

// QueryProof returns the cells at the given positions together with their proofs. Positions
// outside of the matrix are left out.
func (api *KateAPI) QueryProof(ctx context.Context, block uint32, positions []share.Position) ([]share.Cell, error) {
	return api.Internal.QueryProof(ctx, block, positions)
}
